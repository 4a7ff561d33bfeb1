package service

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ronaldwopara/AI-Post-Sales-Copilot/model"
)

// DashboardService aggregates contract and CRM data into the summary,
// forecast and metrics views.
type DashboardService struct {
	store *Store
}

func NewDashboardService(store *Store) *DashboardService {
	return &DashboardService{store: store}
}

// Summary is the headline view of the contract portfolio.
type Summary struct {
	TotalContracts          int               `json:"total_contracts"`
	ContractsExpiring30Days int               `json:"contracts_expiring_30_days"`
	ContractsExpiring60Days int               `json:"contracts_expiring_60_days"`
	ContractsExpiring90Days int               `json:"contracts_expiring_90_days"`
	TotalContractValue      float64           `json:"total_contract_value"`
	PaymentReminders        []PaymentReminder `json:"payment_reminders"`
	RecentActivities        []Activity        `json:"recent_activities"`
}

// PaymentReminder projects the next expected payment for a contract
// with a recognized payment frequency.
type PaymentReminder struct {
	ContractID      string    `json:"contract_id"`
	ContractNumber  string    `json:"contract_number"`
	CustomerID      string    `json:"customer_id,omitempty"`
	NextPaymentDate time.Time `json:"next_payment_date"`
	Amount          *float64  `json:"amount,omitempty"`
	PaymentTerms    string    `json:"payment_terms"`
}

// Activity is a recent event: a CRM sync or a newly added contract.
type Activity struct {
	Type           string    `json:"type"`
	Source         string    `json:"source,omitempty"`
	AccountName    string    `json:"account_name,omitempty"`
	ContractNumber string    `json:"contract_number,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
	Details        string    `json:"details"`
}

// Summary builds the dashboard summary.
func (d *DashboardService) Summary() (*Summary, error) {
	total, err := d.store.CountContracts(model.StatusActive)
	if err != nil {
		return nil, err
	}

	var expiring [3]int
	for i, days := range []int{30, 60, 90} {
		contracts, err := d.store.ExpiringContracts(days)
		if err != nil {
			return nil, err
		}
		expiring[i] = len(contracts)
	}

	totalValue, err := d.store.TotalContractValue()
	if err != nil {
		return nil, err
	}

	reminders, err := d.paymentReminders()
	if err != nil {
		return nil, err
	}

	activities, err := d.recentActivities()
	if err != nil {
		return nil, err
	}

	return &Summary{
		TotalContracts:          total,
		ContractsExpiring30Days: expiring[0],
		ContractsExpiring60Days: expiring[1],
		ContractsExpiring90Days: expiring[2],
		TotalContractValue:      totalValue,
		PaymentReminders:        reminders,
		RecentActivities:        activities,
	}, nil
}

const maxReminders = 10

func (d *DashboardService) paymentReminders() ([]PaymentReminder, error) {
	contracts, err := d.store.ActiveContracts()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	reminders := []PaymentReminder{}
	for _, c := range contracts {
		var next time.Time
		switch c.PaymentFrequency {
		case "monthly":
			next = now.AddDate(0, 0, 30)
		case "quarterly":
			next = now.AddDate(0, 0, 90)
		case "annually":
			next = now.AddDate(0, 0, 365)
		default:
			continue
		}
		reminders = append(reminders, PaymentReminder{
			ContractID:      c.ID,
			ContractNumber:  c.ContractNumber,
			CustomerID:      c.CustomerID,
			NextPaymentDate: next,
			Amount:          c.TotalValue,
			PaymentTerms:    c.PaymentTerms,
		})
	}

	sort.Slice(reminders, func(i, j int) bool {
		return reminders[i].NextPaymentDate.Before(reminders[j].NextPaymentDate)
	})
	if len(reminders) > maxReminders {
		reminders = reminders[:maxReminders]
	}
	return reminders, nil
}

const maxActivities = 10

func (d *DashboardService) recentActivities() ([]Activity, error) {
	activities := []Activity{}

	records, err := d.store.RecentCRMRecords(5)
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		activities = append(activities, Activity{
			Type:        "crm_sync",
			Source:      rec.Source,
			AccountName: rec.AccountName,
			Timestamp:   rec.SyncedAt,
			Details:     fmt.Sprintf("Synced from %s", rec.Source),
		})
	}

	contracts, err := d.store.RecentContracts(5)
	if err != nil {
		return nil, err
	}
	for _, c := range contracts {
		activities = append(activities, Activity{
			Type:           "contract_added",
			ContractNumber: c.ContractNumber,
			Timestamp:      c.CreatedAt,
			Details:        fmt.Sprintf("New contract: %s", c.Title),
		})
	}

	sort.Slice(activities, func(i, j int) bool {
		return activities[i].Timestamp.After(activities[j].Timestamp)
	})
	if len(activities) > maxActivities {
		activities = activities[:maxActivities]
	}
	return activities, nil
}

// ForecastMonth accumulates the renewals landing in one month.
type ForecastMonth struct {
	Count      int                `json:"count"`
	TotalValue float64            `json:"total_value"`
	Contracts  []ForecastContract `json:"contracts"`
}

type ForecastContract struct {
	ID     string   `json:"id"`
	Number string   `json:"number"`
	Value  *float64 `json:"value,omitempty"`
}

// RenewalForecast groups active contracts renewing in the next N
// months by renewal month ("2026-01").
func (d *DashboardService) RenewalForecast(months int) (map[string]*ForecastMonth, error) {
	contracts, err := d.store.ExpiringContracts(months * 30)
	if err != nil {
		return nil, err
	}

	forecast := map[string]*ForecastMonth{}
	for _, c := range contracts {
		if c.RenewalDate == nil {
			continue
		}
		key := c.RenewalDate.Format("2006-01")
		month, ok := forecast[key]
		if !ok {
			month = &ForecastMonth{Contracts: []ForecastContract{}}
			forecast[key] = month
		}
		month.Count++
		if c.TotalValue != nil {
			month.TotalValue += *c.TotalValue
		}
		month.Contracts = append(month.Contracts, ForecastContract{
			ID:     c.ID,
			Number: c.ContractNumber,
			Value:  c.TotalValue,
		})
	}
	return forecast, nil
}

// Metrics is the detailed business metrics view.
type Metrics struct {
	Contracts ContractMetrics `json:"contracts"`
	Customers CustomerMetrics `json:"customers"`
	Payments  PaymentMetrics  `json:"payments"`
}

type ContractMetrics struct {
	TotalActive  int     `json:"total_active"`
	TotalExpired int     `json:"total_expired"`
	AvgValue     float64 `json:"avg_value"`
	TotalValue   float64 `json:"total_value"`
}

type CustomerMetrics struct {
	Total               int             `json:"total"`
	WithActiveContracts int             `json:"with_active_contracts"`
	TopByValue          []CustomerValue `json:"top_by_value"`
}

type PaymentMetrics struct {
	Upcoming30Days int     `json:"upcoming_30_days"`
	TotalExpected  float64 `json:"total_expected"`
}

// Metrics builds the detailed metrics view.
func (d *DashboardService) Metrics() (*Metrics, error) {
	var m Metrics
	var err error

	if m.Contracts.TotalActive, err = d.store.CountContracts(model.StatusActive); err != nil {
		return nil, err
	}
	if m.Contracts.TotalExpired, err = d.store.CountContracts(model.StatusExpired); err != nil {
		return nil, err
	}
	if m.Contracts.AvgValue, err = d.store.AverageContractValue(); err != nil {
		return nil, err
	}
	if m.Contracts.TotalValue, err = d.store.TotalContractValue(); err != nil {
		return nil, err
	}

	if m.Customers.Total, err = d.store.CountCustomers(); err != nil {
		return nil, err
	}
	if m.Customers.WithActiveContracts, err = d.store.CountCustomersWithActiveContracts(); err != nil {
		return nil, err
	}
	if m.Customers.TopByValue, err = d.store.TopCustomersByValue(5); err != nil {
		return nil, err
	}
	if m.Customers.TopByValue == nil {
		m.Customers.TopByValue = []CustomerValue{}
	}

	reminders, err := d.paymentReminders()
	if err != nil {
		return nil, err
	}
	cutoff := time.Now().UTC().AddDate(0, 0, 30)
	for _, r := range reminders {
		if !r.NextPaymentDate.After(cutoff) {
			m.Payments.Upcoming30Days++
		}
		if r.Amount != nil {
			m.Payments.TotalExpected += *r.Amount
		}
	}

	return &m, nil
}

// InferPaymentFrequency guesses a billing cadence from free-form
// payment terms. Returns empty when nothing recognizable is present.
func InferPaymentFrequency(paymentTerms string) string {
	terms := strings.ToLower(paymentTerms)
	switch {
	case strings.Contains(terms, "month"):
		return "monthly"
	case strings.Contains(terms, "quarter"):
		return "quarterly"
	case strings.Contains(terms, "annual"), strings.Contains(terms, "year"):
		return "annually"
	default:
		return ""
	}
}
