package nlp

import (
	"log/slog"
	"sync"

	"github.com/jdkato/prose/v2"
)

// Entity is a named entity found by a recognizer.
type Entity struct {
	Text  string
	Label string
}

// EntityRecognizer is the optional NER capability consulted by the
// party extractor. Implementations must be safe for concurrent use.
type EntityRecognizer interface {
	Entities(text string) []Entity
}

var (
	recognizerOnce sync.Once
	recognizer     EntityRecognizer
)

// DefaultRecognizer returns the process-wide entity recognizer,
// constructing it on first call. Model loading is expensive, so the
// result is shared; it is read-only after construction and safe to use
// from any goroutine. A nil return means no recognizer is available and
// party extraction runs on patterns alone.
func DefaultRecognizer() EntityRecognizer {
	recognizerOnce.Do(func() {
		r, err := newProseRecognizer()
		if err != nil {
			slog.Warn("entity recognizer unavailable, falling back to pattern-only party extraction", "error", err)
			return
		}
		recognizer = r
	})
	return recognizer
}

// LazyRecognizer defers loading the recognizer until the first
// extraction needs it. If loading fails, every call degrades to the
// no-entity result.
func LazyRecognizer() EntityRecognizer {
	return lazyRecognizer{}
}

type lazyRecognizer struct{}

func (lazyRecognizer) Entities(text string) []Entity {
	r := DefaultRecognizer()
	if r == nil {
		return nil
	}
	return r.Entities(text)
}

// entityLabels are the prose tags treated as party candidates. GPE is
// included because prose labels many company names as geopolitical
// entities.
var entityLabels = map[string]bool{
	"PERSON": true,
	"ORG":    true,
	"GPE":    true,
}

type proseRecognizer struct{}

func newProseRecognizer() (*proseRecognizer, error) {
	// Force the model load now so later calls only pay for tagging.
	if _, err := prose.NewDocument("Acme Corporation signed."); err != nil {
		return nil, err
	}
	return &proseRecognizer{}, nil
}

func (r *proseRecognizer) Entities(text string) []Entity {
	doc, err := prose.NewDocument(text, prose.WithSegmentation(false))
	if err != nil {
		return nil
	}
	var entities []Entity
	for _, ent := range doc.Entities() {
		if entityLabels[ent.Label] {
			entities = append(entities, Entity{Text: ent.Text, Label: ent.Label})
		}
	}
	return entities
}
