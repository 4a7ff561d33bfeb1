package nlp

import (
	"regexp"
	"strconv"
	"strings"
)

// valuePatterns are applied to lower-cased text, so the currency-code
// form is written in lower case too.
var valuePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\$\s*([0-9,]+(?:\.[0-9]{2})?)`),
	regexp.MustCompile(`usd\s*([0-9,]+(?:\.[0-9]{2})?)`),
	regexp.MustCompile(`total\s+(?:value|amount|price)[\s:]+\$?\s*([0-9,]+(?:\.[0-9]{2})?)`),
	regexp.MustCompile(`contract\s+(?:value|amount|price)[\s:]+\$?\s*([0-9,]+(?:\.[0-9]{2})?)`),
}

// ValueExtractor finds the monetary value of a contract.
type ValueExtractor struct{}

func NewValueExtractor() *ValueExtractor {
	return &ValueExtractor{}
}

// FindTotalValue collects every amount matched by the first pattern
// that matches at all (patterns are not merged) and returns the largest
// one. The largest figure in a contract is almost always the aggregate
// total rather than a line item. Amounts that fail to parse are
// skipped; if a pattern yields only unparsable amounts the next pattern
// gets its turn.
func (e *ValueExtractor) FindTotalValue(text string) (float64, bool) {
	lower := strings.ToLower(text)
	for _, re := range valuePatterns {
		matches := re.FindAllStringSubmatch(lower, -1)
		if len(matches) == 0 {
			continue
		}
		var amounts []float64
		for _, m := range matches {
			raw := strings.ReplaceAll(m[1], ",", "")
			amount, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				continue
			}
			amounts = append(amounts, amount)
		}
		if len(amounts) == 0 {
			continue
		}
		max := amounts[0]
		for _, a := range amounts[1:] {
			if a > max {
				max = a
			}
		}
		return max, true
	}
	return 0, false
}
