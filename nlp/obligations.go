package nlp

import (
	"strings"
)

const (
	maxObligations      = 10
	minObligationLength = 10
	maxObligationLength = 500
)

// obligationCues are lexical markers that flag a sentence as describing
// a contractual duty, tested in this order; the first cue found settles
// the sentence.
var obligationCues = []string{
	"shall", "must", "will", "agrees to", "commits to",
	"is responsible for", "undertakes to", "obligated to",
}

// ObligationExtractor finds obligation-bearing sentences.
type ObligationExtractor struct{}

func NewObligationExtractor() *ObligationExtractor {
	return &ObligationExtractor{}
}

// FindObligations splits the text into sentences on the period
// character and keeps every sentence that carries an obligation cue and
// has a plausible length. Splitting on the literal '.' mis-splits
// abbreviations and decimal numbers; that behavior is inherited and
// kept as-is. Duplicates are dropped with first-seen order preserved,
// then the result is capped at 10.
func (e *ObligationExtractor) FindObligations(text string) []string {
	var obligations []string
	for _, sentence := range strings.Split(text, ".") {
		lower := strings.ToLower(sentence)
		for _, cue := range obligationCues {
			if strings.Contains(lower, cue) {
				obligation := strings.TrimSpace(sentence)
				if len(obligation) > minObligationLength && len(obligation) < maxObligationLength {
					obligations = append(obligations, obligation)
				}
				break
			}
		}
	}

	seen := make(map[string]struct{}, len(obligations))
	unique := obligations[:0]
	for _, o := range obligations {
		if _, ok := seen[o]; ok {
			continue
		}
		seen[o] = struct{}{}
		unique = append(unique, o)
	}

	if len(unique) > maxObligations {
		unique = unique[:maxObligations]
	}
	return unique
}
