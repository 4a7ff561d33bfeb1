package nlp

import (
	"regexp"
	"sort"
	"strings"
	"time"
)

const maxKeyDates = 10

// ExtractedDate is a single date found in contract text, with enough
// surrounding context to let a reviewer judge what the date refers to.
type ExtractedDate struct {
	Date     string `json:"date"`
	Context  string `json:"context"`
	Original string `json:"original"`
}

// renewalPatterns are tried in priority order against lower-cased text.
// The first pattern that matches anywhere wins; there is no scoring of
// competing matches beyond that ordering.
var renewalPatterns = []*regexp.Regexp{
	regexp.MustCompile(`renew(?:al|s)?\s+(?:date|on|by)[\s:]+(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`),
	regexp.MustCompile(`expires?\s+(?:on|by)[\s:]+(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`),
	regexp.MustCompile(`term\s+ends?\s+(?:on|by)[\s:]+(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`),
	regexp.MustCompile(`(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})\s+renewal`),
	regexp.MustCompile(`automatically\s+renew(?:s|ed)?\s+on\s+(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`),
}

// broadDatePatterns catch any date-looking token for the all-dates scan:
// numeric, "DD Month YYYY" and "Month DD, YYYY" forms.
var broadDatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`),
	regexp.MustCompile(`(?i)(\d{1,2}\s+(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\s+\d{2,4})`),
	regexp.MustCompile(`(?i)((?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\s+\d{1,2},?\s+\d{2,4})`),
}

// dateLayouts are tried in order by NormalizeDate. Non-padded layouts
// also accept zero-padded input, so "03/05/2024" and "3/5/2024" both
// parse with the first entry.
var dateLayouts = []string{
	"1/2/2006", "1-2-2006", "2006-1-2",
	"1/2/06", "1-2-06",
	"January 2, 2006", "Jan 2, 2006",
	"2 January 2006", "2 Jan 2006",
}

// DateExtractor finds and normalizes calendar dates in free text.
type DateExtractor struct{}

func NewDateExtractor() *DateExtractor {
	return &DateExtractor{}
}

// FindPrimaryRenewalDate returns the single best renewal date in the
// text, normalized to YYYY-MM-DD where possible. When the matched token
// cannot be normalized the literal token is returned instead; only a
// total pattern miss reports absence.
func (e *DateExtractor) FindPrimaryRenewalDate(text string) (string, bool) {
	lower := strings.ToLower(text)
	for _, re := range renewalPatterns {
		if m := re.FindStringSubmatch(lower); m != nil {
			return NormalizeDate(m[1]), true
		}
	}
	return "", false
}

// FindDates scans the whole text with every broad pattern and returns
// up to 10 dates in document order. Matches from different patterns are
// interleaved by position, not grouped by pattern.
func (e *DateExtractor) FindDates(text string) []ExtractedDate {
	type candidate struct {
		start, end int
	}
	var found []candidate
	for _, re := range broadDatePatterns {
		for _, loc := range re.FindAllStringSubmatchIndex(text, -1) {
			// loc[2], loc[3] bound the first capture group.
			found = append(found, candidate{start: loc[2], end: loc[3]})
		}
	}

	sort.SliceStable(found, func(i, j int) bool {
		return found[i].start < found[j].start
	})
	if len(found) > maxKeyDates {
		found = found[:maxKeyDates]
	}

	dates := make([]ExtractedDate, 0, len(found))
	for _, c := range found {
		original := text[c.start:c.end]
		ctxStart := c.start - 20
		if ctxStart < 0 {
			ctxStart = 0
		}
		ctxEnd := c.end + 20
		if ctxEnd > len(text) {
			ctxEnd = len(text)
		}
		dates = append(dates, ExtractedDate{
			Date:     NormalizeDate(original),
			Context:  strings.ReplaceAll(text[ctxStart:ctxEnd], "\n", " "),
			Original: original,
		})
	}
	return dates
}

// NormalizeDate reformats a date string as YYYY-MM-DD, trying a fixed
// list of layouts in order. Input that parses with none of them is
// returned verbatim rather than rejected, so callers always get a
// displayable value. Already-normalized input round-trips unchanged.
func NormalizeDate(s string) string {
	trimmed := strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return s
}
