package model

import (
	"time"

	"github.com/ronaldwopara/AI-Post-Sales-Copilot/nlp"
)

// Contract represents an uploaded contract document together with the
// fields extracted from its text.
type Contract struct {
	ID             string              `json:"id"`
	ContractNumber string              `json:"contract_number"`
	Title          string              `json:"title"`
	Tenant         string              `json:"tenant"`
	CustomerID     string              `json:"customer_id,omitempty"`
	Filename       string              `json:"filename"`
	FileURL        string              `json:"file_url,omitempty"`
	Status         string              `json:"status"`
	RawText        string              `json:"-"`
	RenewalDate    *time.Time          `json:"renewal_date,omitempty"`
	PaymentTerms   string              `json:"payment_terms,omitempty"`
	// PaymentFrequency is one of monthly, quarterly or annually when it
	// can be derived from the payment terms, empty otherwise.
	PaymentFrequency string `json:"payment_frequency,omitempty"`
	TotalValue     *float64            `json:"total_value,omitempty"`
	Obligations    []string            `json:"obligations,omitempty"`
	Parsed         *nlp.ContractFields `json:"parsed_data,omitempty"`
	ErrorMsg       string              `json:"error_msg,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

// Contract status constants
const (
	StatusActive  = "active"
	StatusExpired = "expired"
	StatusFailed  = "failed"
)
