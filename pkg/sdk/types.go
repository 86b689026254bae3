package vecgate

// Vector is one upsert entry. Set exactly one of Text and Values.
// An empty ID is derived from the namespace and the content, so the same
// input always maps to the same id. An empty Namespace means "default".
type Vector struct {
	ID        string
	Namespace string
	Text      string
	Values    []float32
	Metadata  map[string]string
}

// Query is a similarity search. Set exactly one of Text and Values.
type Query struct {
	Namespace string
	Text      string
	Values    []float32
	// TopK defaults to 5 when zero. Valid range is 1..100.
	TopK int
	// IncludeValues returns the stored vectors with each match.
	IncludeValues bool
	// ExcludeMetadata drops metadata from matches; it is returned by default.
	ExcludeMetadata bool
}

// Match is one search hit. Values and Metadata are nil unless requested.
type Match struct {
	ID       string
	Score    float64
	Values   []float32
	Metadata map[string]string
}
