package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ronaldwopara/AI-Post-Sales-Copilot/service"
)

type DashboardHandler struct {
	dashboard *service.DashboardService
}

func NewDashboardHandler(dashboard *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// Summary returns the headline dashboard metrics.
func (h *DashboardHandler) Summary(c *gin.Context) {
	summary, err := h.dashboard.Summary()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build summary: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, summary)
}

// RenewalForecast returns renewals grouped by month for the next N
// months (default 6).
func (h *DashboardHandler) RenewalForecast(c *gin.Context) {
	months, err := strconv.Atoi(c.DefaultQuery("months", "6"))
	if err != nil || months < 1 || months > 24 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "months must be between 1 and 24"})
		return
	}

	forecast, err := h.dashboard.RenewalForecast(months)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build forecast: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, forecast)
}

// Metrics returns the detailed business metrics.
func (h *DashboardHandler) Metrics(c *gin.Context) {
	metrics, err := h.dashboard.Metrics()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build metrics: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, metrics)
}
