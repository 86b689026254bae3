// Package vector holds the validated request-side value objects for upsert.
package vector

import (
	"math"
	"strconv"
	"strings"

	"github.com/kailas-cloud/vecgate/internal/domain"
)

// MaxTextLength caps the raw text a caller may submit for embedding.
const MaxTextLength = 8192

// Kind discriminates the two forms of a Source.
type Kind uint8

const (
	// KindText means the caller supplied raw text to be embedded.
	KindText Kind = iota + 1
	// KindValues means the caller supplied the vector directly.
	KindValues
)

// Source is exactly one of raw text or vector values.
type Source struct {
	kind   Kind
	text   string
	values []float32
}

// FromText builds a text source.
func FromText(text string) Source { return Source{kind: KindText, text: text} }

// FromValues builds a vector source.
func FromValues(values []float32) Source { return Source{kind: KindValues, values: values} }

// NewSource enforces the exactly-one-of rule on the request's text and vector fields.
// An empty string or an empty slice counts as absent.
func NewSource(text *string, values []float32) (Source, error) {
	hasText := text != nil && *text != ""
	hasValues := len(values) > 0

	switch {
	case hasText == hasValues:
		return Source{}, domain.NewValidationError("", "Provide exactly one of 'text' or 'vector'")
	case hasText:
		if len(*text) > MaxTextLength {
			return Source{}, domain.NewValidationError("text", "too long (max "+strconv.Itoa(MaxTextLength)+" chars)")
		}
		return FromText(*text), nil
	default:
		for i, v := range values {
			if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
				return Source{}, domain.NewValidationError("vector", "element "+strconv.Itoa(i)+" is not a finite number")
			}
		}
		return FromValues(values), nil
	}
}

// Kind reports which form the source holds.
func (s Source) Kind() Kind { return s.kind }

// Text returns the text and true for text sources.
func (s Source) Text() (string, bool) { return s.text, s.kind == KindText }

// Values returns the vector and true for vector sources.
func (s Source) Values() ([]float32, bool) { return s.values, s.kind == KindValues }

// Canonical renders the source as the stable string used for id derivation:
// the text itself, or the values as "[v1, v2, ...]" in shortest float form.
func (s Source) Canonical() string {
	if s.kind == KindText {
		return s.text
	}
	var b strings.Builder
	b.WriteByte('[')
	for i, v := range s.values {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(strconv.FormatFloat(float64(v), 'g', -1, 32))
	}
	b.WriteByte(']')
	return b.String()
}
