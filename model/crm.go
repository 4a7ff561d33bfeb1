package model

import (
	"time"
)

// CRM source constants
const (
	SourceSalesforce = "salesforce"
	SourceHubSpot    = "hubspot"
)

// CRMRecord is one account record as synced from a single CRM vendor,
// already mapped to the unified field shape. The raw vendor payload is
// kept alongside for audit and re-unification.
type CRMRecord struct {
	ID               string         `json:"id"`
	CustomerID       string         `json:"customer_id,omitempty"`
	Source           string         `json:"source"`
	SourceID         string         `json:"source_id"`
	AccountName      string         `json:"account_name,omitempty"`
	Industry         string         `json:"industry,omitempty"`
	AnnualRevenue    *float64       `json:"annual_revenue,omitempty"`
	EmployeeCount    *int           `json:"employee_count,omitempty"`
	PrimaryContact   string         `json:"primary_contact,omitempty"`
	PrimaryEmail     string         `json:"primary_email,omitempty"`
	LastActivityDate *time.Time     `json:"last_activity_date,omitempty"`
	Raw              map[string]any `json:"raw_data,omitempty"`
	SyncedAt         time.Time      `json:"synced_at"`
}
