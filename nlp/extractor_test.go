package nlp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleContract = `SERVICE AGREEMENT

This agreement is made between Acme Industries and the client.
PARTIES: Acme Industries, Beta Logistics

The total value: $48,000.00 covers the full term, with a setup fee of $1,500.
Payment terms: Net 30 days from invoice date.
The vendor shall deliver goods within 14 days of each order.
The customer must pay all invoices before the due date.
This agreement automatically renews on 01/15/2026 unless terminated.
Signed on March 1, 2025.`

func TestExtractFullDocument(t *testing.T) {
	e := NewContractFieldExtractor(nil)

	fields := e.Extract(sampleContract)

	assert.Equal(t, "2026-01-15", fields.RenewalDate)
	assert.Equal(t, "net 30 days from invoice date", fields.PaymentTerms)

	require.NotNil(t, fields.TotalValue)
	assert.Equal(t, 48000.0, *fields.TotalValue)

	require.Len(t, fields.Obligations, 2)
	assert.Contains(t, fields.Obligations[0], "shall deliver goods")
	assert.Contains(t, fields.Obligations[1], "must pay all invoices")

	assert.NotEmpty(t, fields.Parties)
	assert.LessOrEqual(t, len(fields.Parties), 5)

	assert.NotEmpty(t, fields.KeyDates)
	assert.LessOrEqual(t, len(fields.KeyDates), 10)
}

func TestExtractEmptyText(t *testing.T) {
	e := NewContractFieldExtractor(nil)

	fields := e.Extract("")

	assert.Empty(t, fields.RenewalDate)
	assert.Empty(t, fields.PaymentTerms)
	assert.Nil(t, fields.TotalValue)
	assert.Empty(t, fields.Obligations)
	assert.Empty(t, fields.Parties)
	assert.Empty(t, fields.KeyDates)
}

func TestExtractSubExtractorMissLeavesOthersIntact(t *testing.T) {
	e := NewContractFieldExtractor(nil)

	// No dates and no amounts, but an obligation is still found.
	fields := e.Extract("The vendor shall keep records confidential at all times.")

	assert.Empty(t, fields.RenewalDate)
	assert.Nil(t, fields.TotalValue)
	require.Len(t, fields.Obligations, 1)
	assert.Contains(t, fields.Obligations[0], "keep records confidential")
}
