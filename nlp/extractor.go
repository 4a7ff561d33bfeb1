// Package nlp extracts structured fields from raw contract text using
// pattern-matching heuristics. Extraction is best-effort: an extractor
// that finds nothing reports an absent or empty field, never an error,
// and the orchestrator runs every extractor regardless of what the
// others found.
package nlp

// ContractFields is the aggregate result of extracting one document.
type ContractFields struct {
	RenewalDate  string          `json:"renewal_date,omitempty"`
	PaymentTerms string          `json:"payment_terms,omitempty"`
	Obligations  []string        `json:"obligations"`
	TotalValue   *float64        `json:"total_value,omitempty"`
	Parties      []string        `json:"parties"`
	KeyDates     []ExtractedDate `json:"key_dates"`
}

// ContractFieldExtractor runs every field extractor over one document.
type ContractFieldExtractor struct {
	dates       *DateExtractor
	payments    *PaymentTermExtractor
	values      *ValueExtractor
	obligations *ObligationExtractor
	parties     *PartyExtractor
}

// NewContractFieldExtractor assembles the orchestrator. The recognizer
// may be nil; see PartyExtractor.
func NewContractFieldExtractor(recognizer EntityRecognizer) *ContractFieldExtractor {
	return &ContractFieldExtractor{
		dates:       NewDateExtractor(),
		payments:    NewPaymentTermExtractor(),
		values:      NewValueExtractor(),
		obligations: NewObligationExtractor(),
		parties:     NewPartyExtractor(recognizer),
	}
}

// Extract is a pure function of the text: every sub-extractor runs
// unconditionally and a miss in one leaves only its own field empty.
func (e *ContractFieldExtractor) Extract(text string) ContractFields {
	fields := ContractFields{
		Obligations: e.obligations.FindObligations(text),
		Parties:     e.parties.FindParties(text),
		KeyDates:    e.dates.FindDates(text),
	}
	if date, ok := e.dates.FindPrimaryRenewalDate(text); ok {
		fields.RenewalDate = date
	}
	if terms, ok := e.payments.FindPaymentTerms(text); ok {
		fields.PaymentTerms = terms
	}
	if value, ok := e.values.FindTotalValue(text); ok {
		fields.TotalValue = &value
	}
	return fields
}
