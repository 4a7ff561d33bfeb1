// Package crm reconciles customer records pulled from two CRM vendors
// into one canonical account shape, and hosts the vendor clients and
// the background synchronization service around that merge.
package crm

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// Canonical field keys consumed by Unify. Vendor adapters map their
// native key names onto these before the merge.
const (
	FieldName           = "name"
	FieldIndustry       = "industry"
	FieldAnnualRevenue  = "annual_revenue"
	FieldEmployeeCount  = "employee_count"
	FieldPrimaryContact = "primary_contact"
	FieldEmail          = "email"
	FieldLastActivity   = "last_activity_date"
)

// Record is a raw source record keyed by canonical field names.
type Record map[string]any

// CanonicalAccountRecord is the unified, vendor-agnostic account
// representation. Every field is optional.
type CanonicalAccountRecord struct {
	AccountName      string     `json:"account_name,omitempty"`
	Industry         string     `json:"industry,omitempty"`
	AnnualRevenue    *float64   `json:"annual_revenue,omitempty"`
	EmployeeCount    *int       `json:"employee_count,omitempty"`
	PrimaryContact   string     `json:"primary_contact,omitempty"`
	PrimaryEmail     string     `json:"primary_email,omitempty"`
	LastActivityDate *time.Time `json:"last_activity_date,omitempty"`
}

// Unify merges two source records field by field: the primary source
// wins whenever it has a present value, otherwise the secondary is
// consulted, otherwise the field stays absent. Either record may be
// nil. Presence is an explicit predicate, not truthiness: a zero
// revenue or employee count is a real value and survives the merge.
func Unify(primary, secondary Record) CanonicalAccountRecord {
	return CanonicalAccountRecord{
		AccountName:      asString(pick(primary, secondary, FieldName)),
		Industry:         asString(pick(primary, secondary, FieldIndustry)),
		AnnualRevenue:    asFloat(pick(primary, secondary, FieldAnnualRevenue)),
		EmployeeCount:    asInt(pick(primary, secondary, FieldEmployeeCount)),
		PrimaryContact:   asString(pick(primary, secondary, FieldPrimaryContact)),
		PrimaryEmail:     asString(pick(primary, secondary, FieldEmail)),
		LastActivityDate: asTime(pick(primary, secondary, FieldLastActivity)),
	}
}

// pick evaluates the two sources left to right and returns the first
// present value, or nil.
func pick(primary, secondary Record, key string) any {
	if v, ok := primary[key]; ok && present(v) {
		return v
	}
	if v, ok := secondary[key]; ok && present(v) {
		return v
	}
	return nil
}

// present reports whether a raw value counts as supplied: non-nil,
// non-empty string, or a non-NaN number. Everything else (times,
// booleans, nested structures) counts as supplied when non-nil.
func present(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case string:
		return x != ""
	case float64:
		return !math.IsNaN(x)
	case float32:
		return !math.IsNaN(float64(x))
	case json.Number:
		return x.String() != ""
	default:
		return true
	}
}

func asString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case json.Number:
		return x.String()
	default:
		return ""
	}
}

func asFloat(v any) *float64 {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case json.Number:
		parsed, err := x.Float64()
		if err != nil {
			return nil
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.ReplaceAll(x, ",", ""), 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	return &f
}

func asInt(v any) *int {
	f := asFloat(v)
	if f == nil {
		return nil
	}
	n := int(*f)
	return &n
}

// activityDateLayouts is the fallback chain behind the RFC 3339 parse:
// timestamps without a zone, then plain dates.
var activityDateLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// asTime parses a date-valued field tolerantly: RFC 3339 first (a
// trailing Z reads as UTC), then a zoneless timestamp, then a plain
// YYYY-MM-DD. Unparsable input yields absent, never an error.
func asTime(v any) *time.Time {
	switch x := v.(type) {
	case time.Time:
		return &x
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return nil
		}
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return &t
		}
		for _, layout := range activityDateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return &t
			}
		}
		return nil
	default:
		return nil
	}
}
