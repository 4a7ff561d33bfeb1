package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ronaldwopara/AI-Post-Sales-Copilot/crm"
	"github.com/ronaldwopara/AI-Post-Sales-Copilot/model"
	"github.com/ronaldwopara/AI-Post-Sales-Copilot/pkg/logger"
	"github.com/ronaldwopara/AI-Post-Sales-Copilot/service"
)

type CRMHandler struct {
	syncService *crm.SyncService
	store       *service.Store
}

func NewCRMHandler(syncService *crm.SyncService, store *service.Store) *CRMHandler {
	return &CRMHandler{
		syncService: syncService,
		store:       store,
	}
}

type syncRequest struct {
	Source string `json:"source"`
	// FullSync is accepted but has no effect yet; every sync fetches
	// the vendor's full account set.
	FullSync bool `json:"full_sync"`
}

// Sync kicks off a CRM synchronization in the background and replies
// immediately.
func (h *CRMHandler) Sync(c *gin.Context) {
	var req syncRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if req.Source == "" {
		req.Source = "all"
	}
	switch req.Source {
	case "all", model.SourceSalesforce, model.SourceHubSpot:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown CRM source"})
		return
	}

	// The sync outlives the request, so it gets a fresh context that
	// only carries the logging identifiers.
	ctx := context.Background()
	if requestID, ok := c.Get("request_id"); ok {
		ctx = context.WithValue(ctx, logger.RequestIDKey, requestID)
	}
	ctx = context.WithValue(ctx, logger.SyncSourceKey, req.Source)

	// Fire and forget; the sync service logs its own completion.
	go h.syncService.Sync(ctx, req.Source)

	c.JSON(http.StatusAccepted, gin.H{
		"message": "CRM sync initiated for " + req.Source,
		"status":  "processing",
	})
}

// ListRecords returns stored CRM records, optionally filtered by
// source, with skip/limit paging.
func (h *CRMHandler) ListRecords(c *gin.Context) {
	source := c.Query("source")
	if source != "" && source != model.SourceSalesforce && source != model.SourceHubSpot {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown CRM source"})
		return
	}

	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 || limit > 100 {
		limit = 100
	}

	records, err := h.store.ListCRMRecords(source, skip, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list records: " + err.Error()})
		return
	}
	if records == nil {
		records = []*model.CRMRecord{}
	}

	c.JSON(http.StatusOK, gin.H{"records": records})
}

// SyncStatus reports last sync time and record count per source.
func (h *CRMHandler) SyncStatus(c *gin.Context) {
	status := gin.H{}
	for _, source := range []string{model.SourceSalesforce, model.SourceHubSpot} {
		s, err := h.store.SyncStatus(source)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read sync status: " + err.Error()})
			return
		}
		status[source] = s
	}

	c.JSON(http.StatusOK, status)
}

// UnifiedAccount merges the latest stored records for an account
// across sources into one canonical view.
func (h *CRMHandler) UnifiedAccount(c *gin.Context) {
	name := c.Param("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Account name required"})
		return
	}

	account, err := h.syncService.UnifiedAccount(name)
	if errors.Is(err, crm.ErrAccountNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to unify account: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, account)
}
