package request

import (
	"strconv"

	"github.com/kailas-cloud/vecgate/internal/domain"
	"github.com/kailas-cloud/vecgate/internal/domain/vector"
)

// Search parameter limits and defaults.
const (
	DefaultTopK            = 5
	MinTopK                = 1
	MaxTopK                = 100
	DefaultIncludeValues   = false
	DefaultIncludeMetadata = true
)

// Request is a validated similarity search.
type Request struct {
	namespace       string
	source          vector.Source
	topK            int
	includeValues   bool
	includeMetadata bool
}

// New validates search parameters. An empty namespace means the default namespace.
func New(
	namespace string,
	source vector.Source,
	topK int,
	includeValues, includeMetadata bool,
) (Request, error) {
	if source.Kind() == 0 {
		return Request{}, domain.NewValidationError("", "Provide exactly one of 'text' or 'vector'")
	}
	if topK < MinTopK || topK > MaxTopK {
		return Request{}, domain.NewValidationError("top_k",
			"must be between "+strconv.Itoa(MinTopK)+" and "+strconv.Itoa(MaxTopK))
	}
	if namespace == "" {
		namespace = vector.DefaultNamespace
	}

	return Request{
		namespace:       namespace,
		source:          source,
		topK:            topK,
		includeValues:   includeValues,
		includeMetadata: includeMetadata,
	}, nil
}

// Namespace returns the namespace to search.
func (r *Request) Namespace() string { return r.namespace }

// Source returns the query text or vector.
func (r *Request) Source() vector.Source { return r.source }

// TopK returns the number of matches to request from the engine.
func (r *Request) TopK() int { return r.topK }

// IncludeValues reports whether matches should carry their vectors.
func (r *Request) IncludeValues() bool { return r.includeValues }

// IncludeMetadata reports whether matches should carry their metadata.
func (r *Request) IncludeMetadata() bool { return r.includeMetadata }
