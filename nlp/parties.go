package nlp

import (
	"regexp"
)

const (
	maxParties          = 5
	recognizerTextLimit = 5000
)

// partyPatterns run over the original-case text: capitalization is the
// signal here.
var partyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`between\s+([A-Z][A-Za-z\s&,]+)\s+and`),
	regexp.MustCompile(`PARTIES:\s*([^\n]+)`),
	regexp.MustCompile(`"([A-Z][A-Za-z\s&,]+)"\s+\(.*Company\)`),
}

// PartyExtractor finds the organizations and people a contract names.
// The recognizer is an optional capability; a nil recognizer degrades
// silently to the pattern-only path.
type PartyExtractor struct {
	recognizer EntityRecognizer
}

func NewPartyExtractor(recognizer EntityRecognizer) *PartyExtractor {
	return &PartyExtractor{recognizer: recognizer}
}

// FindParties pools candidates from the entity recognizer (first 5000
// characters only) and from the patterns (whole text), deduplicates
// them with set semantics and caps the result at 5. Order is not
// significant; when more than 5 unique candidates exist, which 5
// survive is best-effort and not deterministic.
func (e *PartyExtractor) FindParties(text string) []string {
	var candidates []string

	if e.recognizer != nil {
		prefix := text
		if len(prefix) > recognizerTextLimit {
			prefix = prefix[:recognizerTextLimit]
		}
		for _, ent := range e.recognizer.Entities(prefix) {
			candidates = append(candidates, ent.Text)
		}
	}

	for _, re := range partyPatterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			candidates = append(candidates, m[1])
		}
	}

	set := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		set[c] = struct{}{}
	}

	parties := make([]string, 0, len(set))
	for p := range set {
		if len(parties) == maxParties {
			break
		}
		parties = append(parties, p)
	}
	return parties
}
