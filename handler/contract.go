package handler

import (
	"context"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ronaldwopara/AI-Post-Sales-Copilot/middleware"
	"github.com/ronaldwopara/AI-Post-Sales-Copilot/model"
	"github.com/ronaldwopara/AI-Post-Sales-Copilot/nlp"
	"github.com/ronaldwopara/AI-Post-Sales-Copilot/pkg/logger"
	"github.com/ronaldwopara/AI-Post-Sales-Copilot/service"
)

var allowedExtensions = map[string]string{
	".pdf":  "application/pdf",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".xls":  "application/vnd.ms-excel",
	".txt":  "text/plain",
	".md":   "text/markdown",
}

type ContractHandler struct {
	minioService *service.MinioService
	store        *service.Store
	extractor    *nlp.ContractFieldExtractor
}

func NewContractHandler(minioSvc *service.MinioService, store *service.Store, extractor *nlp.ContractFieldExtractor) *ContractHandler {
	return &ContractHandler{
		minioService: minioSvc,
		store:        store,
		extractor:    extractor,
	}
}

// Upload stores a contract document, extracts its fields and persists
// the resulting contract record.
func (h *ContractHandler) Upload(c *gin.Context) {
	tenant := middleware.GetTenant(c)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	expectedContentType, ok := allowedExtensions[ext]
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported file type"})
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = expectedContentType
	}

	content, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file"})
		return
	}

	contractID := uuid.New().String()
	objectName := service.ContractObjectName(tenant, contractID, header.Filename)

	fileURL, err := h.minioService.UploadContract(c.Request.Context(), objectName, content, contentType)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload file: " + err.Error()})
		return
	}

	contract := &model.Contract{
		ID:             contractID,
		ContractNumber: contractNumber(contractID),
		Title:          c.PostForm("title"),
		Tenant:         tenant,
		CustomerID:     c.PostForm("customer_id"),
		Filename:       header.Filename,
		FileURL:        fileURL,
		Status:         model.StatusActive,
	}
	if contract.Title == "" {
		contract.Title = header.Filename
	}

	h.extractFields(c.Request.Context(), contract, content)

	if err := h.store.SaveContract(contract); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save contract: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, contract)
}

// contractNumber derives a short human-facing number from the id.
func contractNumber(contractID string) string {
	return "CN-" + strings.ToUpper(strings.SplitN(contractID, "-", 2)[0])
}

// extractFields decodes the document to text and fills the contract's
// extracted fields. A document that yields no text marks the contract
// failed instead of erroring the request.
func (h *ContractHandler) extractFields(ctx context.Context, contract *model.Contract, content []byte) {
	text := service.ParseDocument(ctx, content, contract.Filename)
	if text == "" {
		contract.Status = model.StatusFailed
		contract.ErrorMsg = "Unable to extract text from document"
		return
	}

	h.applyExtraction(ctx, contract, text)
}

// applyExtraction re-runs field extraction over already-decoded text.
func (h *ContractHandler) applyExtraction(ctx context.Context, contract *model.Contract, text string) {
	fields := h.extractor.Extract(text)
	contract.RawText = text
	contract.Parsed = &fields
	contract.PaymentTerms = fields.PaymentTerms
	contract.PaymentFrequency = service.InferPaymentFrequency(fields.PaymentTerms)
	contract.TotalValue = fields.TotalValue
	contract.Obligations = fields.Obligations
	contract.ErrorMsg = ""

	contract.RenewalDate = nil
	if fields.RenewalDate != "" {
		if t, err := time.Parse("2006-01-02", fields.RenewalDate); err == nil {
			contract.RenewalDate = &t
		} else {
			logger.Warn(ctx, "Renewal date is not normalized", "contract_id", contract.ID, "value", fields.RenewalDate)
		}
	}
}

// List returns the tenant's contracts, optionally filtered by the
// status query parameter.
func (h *ContractHandler) List(c *gin.Context) {
	tenant := middleware.GetTenant(c)
	status := c.Query("status")

	contracts, err := h.store.ListContracts(tenant, status)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list contracts: " + err.Error()})
		return
	}

	// The list view omits extracted detail.
	result := make([]gin.H, len(contracts))
	for i, contract := range contracts {
		result[i] = gin.H{
			"id":              contract.ID,
			"contract_number": contract.ContractNumber,
			"title":           contract.Title,
			"filename":        contract.Filename,
			"status":          contract.Status,
			"file_url":        contract.FileURL,
			"renewal_date":    contract.RenewalDate,
			"total_value":     contract.TotalValue,
			"created_at":      contract.CreatedAt.Format(time.RFC3339),
			"updated_at":      contract.UpdatedAt.Format(time.RFC3339),
		}
	}

	c.JSON(http.StatusOK, gin.H{"contracts": result})
}

// Get returns a single contract with its extracted fields.
func (h *ContractHandler) Get(c *gin.Context) {
	contract, ok := h.loadTenantContract(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, contract)
}

type contractUpdateRequest struct {
	Title        *string  `json:"title"`
	RenewalDate  *string  `json:"renewal_date"`
	PaymentTerms *string  `json:"payment_terms"`
	TotalValue   *float64 `json:"total_value"`
	Status       *string  `json:"status"`
}

// Update applies a partial update to a contract's editable fields.
func (h *ContractHandler) Update(c *gin.Context) {
	contract, ok := h.loadTenantContract(c)
	if !ok {
		return
	}

	var req contractUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if req.Status != nil {
		switch *req.Status {
		case model.StatusActive, model.StatusExpired, model.StatusFailed:
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
			return
		}
	}

	upd := service.ContractUpdate{
		Title:        req.Title,
		PaymentTerms: req.PaymentTerms,
		TotalValue:   req.TotalValue,
		Status:       req.Status,
	}
	if req.RenewalDate != nil {
		t, err := time.Parse("2006-01-02", *req.RenewalDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid renewal date, expected YYYY-MM-DD"})
			return
		}
		upd.RenewalDate = &t
	}

	updated, err := h.store.UpdateContract(contract.ID, upd)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update contract: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, updated)
}

// Reparse runs extraction again over the contract's stored raw text.
func (h *ContractHandler) Reparse(c *gin.Context) {
	contract, ok := h.loadTenantContract(c)
	if !ok {
		return
	}

	if contract.RawText == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No extracted text available for this contract"})
		return
	}

	contract.Status = model.StatusActive
	h.applyExtraction(c.Request.Context(), contract, contract.RawText)

	if err := h.store.SaveContract(contract); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save contract: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, contract)
}

// Delete removes a contract and its stored document.
func (h *ContractHandler) Delete(c *gin.Context) {
	contract, ok := h.loadTenantContract(c)
	if !ok {
		return
	}

	objectName := service.ContractObjectName(contract.Tenant, contract.ID, contract.Filename)
	if err := h.minioService.DeleteContract(c.Request.Context(), objectName); err != nil {
		logger.Warn(c.Request.Context(), "Failed to delete stored document", "contract_id", contract.ID, "error", err)
	}

	if err := h.store.DeleteContract(contract.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete contract: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Contract deleted"})
}

// loadTenantContract resolves :id within the caller's tenant, writing
// a 404 response when the contract is missing or foreign.
func (h *ContractHandler) loadTenantContract(c *gin.Context) (*model.Contract, bool) {
	tenant := middleware.GetTenant(c)
	id := c.Param("id")

	contract, err := h.store.GetContract(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load contract: " + err.Error()})
		return nil, false
	}
	if contract == nil || contract.Tenant != tenant {
		c.JSON(http.StatusNotFound, gin.H{"error": "Contract not found"})
		return nil, false
	}
	return contract, true
}
