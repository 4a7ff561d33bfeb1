package crm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ronaldwopara/AI-Post-Sales-Copilot/config"
	"github.com/ronaldwopara/AI-Post-Sales-Copilot/model"
	"github.com/ronaldwopara/AI-Post-Sales-Copilot/pkg/logger"
)

// ErrAccountNotFound marks an account no CRM source has a record for.
var ErrAccountNotFound = errors.New("account not found")

// Store is the persistence the sync service needs; the service package
// implements it.
type Store interface {
	EnsureCustomer(name, email string) (*model.Customer, error)
	UpsertCRMRecord(record *model.CRMRecord) error
	LatestCRMRecord(source, accountName string) (*model.CRMRecord, error)
}

// SyncResult summarizes one synchronization run. Errors are collected
// per vendor instead of aborting the run.
type SyncResult struct {
	SalesforceAccounts int      `json:"salesforce_accounts"`
	HubSpotCompanies   int      `json:"hubspot_companies"`
	Errors             []string `json:"errors"`
}

// SyncService pulls records from both CRM vendors and persists them in
// the unified shape. Callers run Sync in the background; it offers no
// cancellation beyond the passed context and no consistency guarantee
// to the request that triggered it.
type SyncService struct {
	salesforce *SalesforceClient
	hubspot    *HubSpotClient
	store      Store
}

func NewSyncService(cfg *config.CRMConfig, store Store) *SyncService {
	return &SyncService{
		salesforce: NewSalesforceClient(&cfg.Salesforce),
		hubspot:    NewHubSpotClient(&cfg.HubSpot),
		store:      store,
	}
}

// Sync fetches from the requested source ("salesforce", "hubspot" or
// "all"). A vendor failure is recorded and the other vendor still runs.
func (s *SyncService) Sync(ctx context.Context, source string) SyncResult {
	result := SyncResult{Errors: []string{}}

	if source == "all" || source == model.SourceSalesforce {
		n, err := s.syncSalesforce(ctx)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("salesforce sync error: %v", err))
		}
		result.SalesforceAccounts = n
	}

	if source == "all" || source == model.SourceHubSpot {
		n, err := s.syncHubSpot(ctx)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("hubspot sync error: %v", err))
		}
		result.HubSpotCompanies = n
	}

	logger.Info(ctx, "crm sync finished",
		"source", source,
		"salesforce_accounts", result.SalesforceAccounts,
		"hubspot_companies", result.HubSpotCompanies,
		"errors", len(result.Errors),
	)
	return result
}

func (s *SyncService) syncSalesforce(ctx context.Context) (int, error) {
	accounts, err := s.salesforce.FetchAccounts(ctx)
	if err != nil {
		return 0, err
	}

	stored := 0
	for _, raw := range accounts {
		canonical := Unify(AdaptSalesforceAccount(raw), nil)
		sourceID := asString(raw["Id"])
		record := recordFromCanonical(model.SourceSalesforce, sourceID, canonical, raw)

		if canonical.AccountName != "" {
			email := canonical.PrimaryEmail
			if email == "" {
				// Salesforce accounts carry no email of their own.
				email = fmt.Sprintf("%s@salesforce.invalid", sourceID)
			}
			customer, err := s.store.EnsureCustomer(canonical.AccountName, email)
			if err == nil {
				record.CustomerID = customer.ID
			}
		}

		if err := s.store.UpsertCRMRecord(record); err != nil {
			logger.Warn(ctx, "failed to store salesforce record", "source_id", sourceID, "error", err)
			continue
		}
		stored++
	}
	return stored, nil
}

func (s *SyncService) syncHubSpot(ctx context.Context) (int, error) {
	companies, err := s.hubspot.FetchCompanies(ctx)
	if err != nil {
		return 0, err
	}

	stored := 0
	for _, raw := range companies {
		canonical := Unify(AdaptHubSpotCompany(raw), nil)
		sourceID := asString(raw["hs_object_id"])
		record := recordFromCanonical(model.SourceHubSpot, sourceID, canonical, raw)

		if canonical.AccountName != "" {
			email := canonical.PrimaryEmail
			if email == "" {
				email = fmt.Sprintf("%s@hubspot.invalid", sourceID)
			}
			customer, err := s.store.EnsureCustomer(canonical.AccountName, email)
			if err == nil {
				record.CustomerID = customer.ID
			}
		}

		if err := s.store.UpsertCRMRecord(record); err != nil {
			logger.Warn(ctx, "failed to store hubspot record", "source_id", sourceID, "error", err)
			continue
		}
		stored++
	}
	return stored, nil
}

// UnifiedAccount merges the most recent record from each vendor for
// the named account, Salesforce taking precedence. Having only one
// vendor record is fine; having none is an error.
func (s *SyncService) UnifiedAccount(accountName string) (CanonicalAccountRecord, error) {
	sf, err := s.store.LatestCRMRecord(model.SourceSalesforce, accountName)
	if err != nil {
		return CanonicalAccountRecord{}, fmt.Errorf("loading salesforce record: %w", err)
	}
	hs, err := s.store.LatestCRMRecord(model.SourceHubSpot, accountName)
	if err != nil {
		return CanonicalAccountRecord{}, fmt.Errorf("loading hubspot record: %w", err)
	}
	if sf == nil && hs == nil {
		return CanonicalAccountRecord{}, fmt.Errorf("%w: %q", ErrAccountNotFound, accountName)
	}
	return Unify(recordFromStored(sf), recordFromStored(hs)), nil
}

// recordFromCanonical flattens a canonical record into the persisted
// per-source row.
func recordFromCanonical(source, sourceID string, canonical CanonicalAccountRecord, raw map[string]any) *model.CRMRecord {
	return &model.CRMRecord{
		ID:               uuid.New().String(),
		Source:           source,
		SourceID:         sourceID,
		AccountName:      canonical.AccountName,
		Industry:         canonical.Industry,
		AnnualRevenue:    canonical.AnnualRevenue,
		EmployeeCount:    canonical.EmployeeCount,
		PrimaryContact:   canonical.PrimaryContact,
		PrimaryEmail:     canonical.PrimaryEmail,
		LastActivityDate: canonical.LastActivityDate,
		Raw:              raw,
		SyncedAt:         time.Now().UTC(),
	}
}

// recordFromStored rebuilds the canonical input shape from a persisted
// row so stored vendor records can be re-unified on demand.
func recordFromStored(rec *model.CRMRecord) Record {
	if rec == nil {
		return nil
	}
	r := Record{
		FieldName:           rec.AccountName,
		FieldIndustry:       rec.Industry,
		FieldPrimaryContact: rec.PrimaryContact,
		FieldEmail:          rec.PrimaryEmail,
	}
	if rec.AnnualRevenue != nil {
		r[FieldAnnualRevenue] = *rec.AnnualRevenue
	}
	if rec.EmployeeCount != nil {
		r[FieldEmployeeCount] = *rec.EmployeeCount
	}
	if rec.LastActivityDate != nil {
		r[FieldLastActivity] = *rec.LastActivityDate
	}
	return r
}
