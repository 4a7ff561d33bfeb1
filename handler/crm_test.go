package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ronaldwopara/AI-Post-Sales-Copilot/config"
	"github.com/ronaldwopara/AI-Post-Sales-Copilot/crm"
	"github.com/ronaldwopara/AI-Post-Sales-Copilot/model"
	"github.com/ronaldwopara/AI-Post-Sales-Copilot/service"
)

func newTestCRMHandler(t *testing.T) (*CRMHandler, *service.Store) {
	t.Helper()
	store := setupTestStore(t)
	syncService := crm.NewSyncService(&config.CRMConfig{
		Salesforce: config.SalesforceConfig{LoginURL: "http://localhost:1"},
		HubSpot:    config.HubSpotConfig{BaseURL: "http://localhost:1"},
	}, store)
	return NewCRMHandler(syncService, store), store
}

func TestCRMHandlerSyncAccepted(t *testing.T) {
	handler, _ := newTestCRMHandler(t)

	router := gin.New()
	router.POST("/sync", func(c *gin.Context) {
		c.Set("request_id", "test-request-id")
		handler.Sync(c)
	})

	tests := []struct {
		name string
		body string
	}{
		{name: "explicit source", body: `{"source": "salesforce"}`},
		{name: "default source", body: `{}`},
		{name: "empty body", body: ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/sync", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			if w.Code != http.StatusAccepted {
				t.Errorf("Expected status 202, got %d: %s", w.Code, w.Body.String())
			}

			var response map[string]string
			if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
				t.Fatalf("Failed to parse response: %v", err)
			}
			if response["status"] != "processing" {
				t.Errorf("Expected processing status, got %s", response["status"])
			}
		})
	}
}

func TestCRMHandlerSyncUnknownSource(t *testing.T) {
	handler, _ := newTestCRMHandler(t)

	router := gin.New()
	router.POST("/sync", handler.Sync)

	req := httptest.NewRequest("POST", "/sync", bytes.NewBufferString(`{"source": "pipedrive"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestCRMHandlerListRecords(t *testing.T) {
	handler, store := newTestCRMHandler(t)

	for _, rec := range []*model.CRMRecord{
		{Source: model.SourceSalesforce, SourceID: "sf-1", AccountName: "Acme Corp"},
		{Source: model.SourceSalesforce, SourceID: "sf-2", AccountName: "Globex"},
		{Source: model.SourceHubSpot, SourceID: "hs-1", AccountName: "Acme Corp"},
	} {
		if err := store.UpsertCRMRecord(rec); err != nil {
			t.Fatalf("UpsertCRMRecord: %v", err)
		}
	}

	router := gin.New()
	router.GET("/records", handler.ListRecords)

	tests := []struct {
		name     string
		query    string
		expected int
	}{
		{name: "all records", query: "", expected: 3},
		{name: "salesforce only", query: "?source=salesforce", expected: 2},
		{name: "hubspot only", query: "?source=hubspot", expected: 1},
		{name: "limit", query: "?limit=2", expected: 2},
		{name: "skip past everything", query: "?skip=10", expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/records"+tt.query, nil)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			if w.Code != http.StatusOK {
				t.Fatalf("Expected status 200, got %d", w.Code)
			}

			var response map[string][]map[string]interface{}
			if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
				t.Fatalf("Failed to parse response: %v", err)
			}
			if len(response["records"]) != tt.expected {
				t.Errorf("Expected %d records, got %d", tt.expected, len(response["records"]))
			}
		})
	}
}

func TestCRMHandlerListRecordsUnknownSource(t *testing.T) {
	handler, _ := newTestCRMHandler(t)

	router := gin.New()
	router.GET("/records", handler.ListRecords)

	req := httptest.NewRequest("GET", "/records?source=pipedrive", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestCRMHandlerSyncStatus(t *testing.T) {
	handler, store := newTestCRMHandler(t)

	if err := store.UpsertCRMRecord(&model.CRMRecord{
		Source: model.SourceSalesforce, SourceID: "sf-1", AccountName: "Acme Corp",
	}); err != nil {
		t.Fatalf("UpsertCRMRecord: %v", err)
	}

	router := gin.New()
	router.GET("/sync-status", handler.SyncStatus)

	req := httptest.NewRequest("GET", "/sync-status", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var response map[string]struct {
		LastSync    *time.Time `json:"last_sync"`
		RecordCount int        `json:"record_count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}

	sf := response[model.SourceSalesforce]
	if sf.RecordCount != 1 || sf.LastSync == nil {
		t.Errorf("Expected 1 salesforce record with a sync time, got %+v", sf)
	}
	hs := response[model.SourceHubSpot]
	if hs.RecordCount != 0 || hs.LastSync != nil {
		t.Errorf("Expected no hubspot sync state, got %+v", hs)
	}
}

func TestCRMHandlerUnifiedAccount(t *testing.T) {
	handler, store := newTestCRMHandler(t)

	revenue := 1200000.0
	employees := 250
	if err := store.UpsertCRMRecord(&model.CRMRecord{
		Source: model.SourceSalesforce, SourceID: "sf-1",
		AccountName: "Acme Corp", Industry: "Manufacturing", AnnualRevenue: &revenue,
	}); err != nil {
		t.Fatalf("UpsertCRMRecord: %v", err)
	}
	if err := store.UpsertCRMRecord(&model.CRMRecord{
		Source: model.SourceHubSpot, SourceID: "hs-1",
		AccountName: "Acme Corp", Industry: "Industrial", EmployeeCount: &employees,
	}); err != nil {
		t.Fatalf("UpsertCRMRecord: %v", err)
	}

	router := gin.New()
	router.GET("/accounts/:name/unified", handler.UnifiedAccount)

	req := httptest.NewRequest("GET", "/accounts/Acme%20Corp/unified", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var account crm.CanonicalAccountRecord
	if err := json.Unmarshal(w.Body.Bytes(), &account); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}

	if account.AccountName != "Acme Corp" {
		t.Errorf("Expected account name Acme Corp, got %s", account.AccountName)
	}
	// Salesforce wins the contested field.
	if account.Industry != "Manufacturing" {
		t.Errorf("Expected salesforce industry to win, got %s", account.Industry)
	}
	// HubSpot fills the field salesforce is missing.
	if account.EmployeeCount == nil || *account.EmployeeCount != 250 {
		t.Errorf("Expected employee count 250 from hubspot, got %v", account.EmployeeCount)
	}
	if account.AnnualRevenue == nil || *account.AnnualRevenue != 1200000.0 {
		t.Errorf("Expected annual revenue from salesforce, got %v", account.AnnualRevenue)
	}
}

func TestCRMHandlerUnifiedAccountNotFound(t *testing.T) {
	handler, _ := newTestCRMHandler(t)

	router := gin.New()
	router.GET("/accounts/:name/unified", handler.UnifiedAccount)

	req := httptest.NewRequest("GET", "/accounts/Nobody%20Inc/unified", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}
