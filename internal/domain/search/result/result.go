package result

// Match is a single engine hit as returned to callers.
// Values and metadata are nil unless the request asked for them.
type Match struct {
	id       string
	score    float64
	values   []float32
	metadata map[string]string
}

// New creates a match.
func New(id string, score float64, values []float32, metadata map[string]string) Match {
	return Match{id: id, score: score, values: values, metadata: metadata}
}

// ID returns the vector identifier.
func (m *Match) ID() string { return m.id }

// Score returns the engine similarity score.
func (m *Match) Score() float64 { return m.score }

// Values returns the stored vector, nil when omitted.
func (m *Match) Values() []float32 { return m.values }

// Metadata returns the stored metadata, nil when omitted.
func (m *Match) Metadata() map[string]string { return m.metadata }
