package nlp

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindObligationsCueRequired(t *testing.T) {
	e := NewObligationExtractor()

	got := e.FindObligations("The vendor shall deliver goods. The sky is blue.")
	require.Len(t, got, 1)
	assert.Contains(t, got[0], "shall deliver goods")
}

func TestFindObligationsAllCues(t *testing.T) {
	e := NewObligationExtractor()

	text := "The vendor shall deliver goods monthly. " +
		"The customer must pay on time every month. " +
		"The provider will host the platform. " +
		"Supplier agrees to maintain the service levels. " +
		"The licensee commits to quarterly reporting. " +
		"The operator is responsible for site safety. " +
		"The contractor undertakes to remedy all defects. " +
		"The buyer is obligated to inspect deliveries."
	got := e.FindObligations(text)
	assert.Len(t, got, 8)
}

func TestFindObligationsLengthBounds(t *testing.T) {
	e := NewObligationExtractor()

	// Too short after trimming, and far too long, are both rejected.
	short := "They shall."
	long := "The vendor shall " + strings.Repeat("x", 500) + "."
	got := e.FindObligations(short + " " + long)
	assert.Empty(t, got)
}

func TestFindObligationsDedupPreservesFirstSeenOrder(t *testing.T) {
	e := NewObligationExtractor()

	text := "The vendor shall deliver goods. " +
		"The customer must pay invoices promptly. " +
		"The vendor shall deliver goods."
	got := e.FindObligations(text)
	require.Len(t, got, 2)
	assert.Contains(t, got[0], "shall deliver goods")
	assert.Contains(t, got[1], "must pay invoices")
}

func TestFindObligationsCap(t *testing.T) {
	e := NewObligationExtractor()

	var b strings.Builder
	for i := 0; i < 15; i++ {
		fmt.Fprintf(&b, "The vendor shall deliver item number %d on time. ", i)
	}
	got := e.FindObligations(b.String())
	assert.Len(t, got, maxObligations)
	assert.Contains(t, got[0], "item number 0")
	assert.Contains(t, got[9], "item number 9")
}

func TestFindObligationsEmptyText(t *testing.T) {
	e := NewObligationExtractor()

	assert.Empty(t, e.FindObligations(""))
}
