package nlp

import (
	"regexp"
	"strings"
)

// paymentPatterns cover the phrasings that show up in practice: an
// explicit "payment terms:" clause, net-N terms, due clauses, frequency
// words on either side of "payment", and invoice-relative terms.
var paymentPatterns = []*regexp.Regexp{
	regexp.MustCompile(`payment\s+terms?[\s:]+([^\n.]+)`),
	regexp.MustCompile(`net\s+(\d+)\s+days?`),
	regexp.MustCompile(`payment\s+due\s+([^\n.]+)`),
	regexp.MustCompile(`(monthly|quarterly|annually|yearly)\s+payment`),
	regexp.MustCompile(`payment\s+(monthly|quarterly|annually|yearly)`),
	regexp.MustCompile(`(\d+)\s+days?\s+after\s+invoice`),
}

// PaymentTermExtractor finds the payment-term phrase in contract text.
type PaymentTermExtractor struct{}

func NewPaymentTermExtractor() *PaymentTermExtractor {
	return &PaymentTermExtractor{}
}

// FindPaymentTerms tries each pattern in order against the lower-cased
// text and returns the trimmed first capture group of the first match.
// No match means no payment terms, not an error.
func (e *PaymentTermExtractor) FindPaymentTerms(text string) (string, bool) {
	lower := strings.ToLower(text)
	for _, re := range paymentPatterns {
		if m := re.FindStringSubmatch(lower); m != nil {
			return strings.TrimSpace(m[1]), true
		}
	}
	return "", false
}
