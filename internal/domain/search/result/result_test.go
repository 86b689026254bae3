package result

import "testing"

func TestNew(t *testing.T) {
	meta := map[string]string{"lang": "go"}
	vals := []float32{0.1, 0.2}

	m := New("vec-1", 0.95, vals, meta)

	if m.ID() != "vec-1" {
		t.Errorf("ID() = %q", m.ID())
	}
	if m.Score() != 0.95 {
		t.Errorf("Score() = %f", m.Score())
	}
	if m.Metadata()["lang"] != "go" {
		t.Errorf("Metadata() = %v", m.Metadata())
	}
	if len(m.Values()) != 2 {
		t.Errorf("Values() len = %d", len(m.Values()))
	}
}

func TestNew_NilFields(t *testing.T) {
	m := New("id", 0, nil, nil)
	if m.Metadata() != nil {
		t.Errorf("Metadata() = %v, want nil", m.Metadata())
	}
	if m.Values() != nil {
		t.Errorf("Values() = %v, want nil", m.Values())
	}
}
