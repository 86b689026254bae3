// Package enginepb holds the typed wire messages and client for the engine's
// vector_service.VectorService, as defined in api/proto/vector_service.proto.
// The messages are encoded by hand with protowire; TestMessages_MatchProtoSchema
// fails when their field numbers or wire types drift from the .proto file.
package enginepb

import "google.golang.org/protobuf/encoding/protowire"

// Vector is vector_service.Vector.
type Vector struct {
	Id       string
	Values   []float32
	Metadata map[string]string
}

// UpsertRequest is vector_service.UpsertRequest.
type UpsertRequest struct {
	Namespace string
	Vectors   []*Vector
}

// UpsertResponse is vector_service.UpsertResponse.
type UpsertResponse struct {
	UpsertedCount int32
}

// QueryRequest is vector_service.QueryRequest.
type QueryRequest struct {
	Namespace       string
	Vector          []float32
	TopK            int32
	IncludeValues   bool
	IncludeMetadata bool
}

// Match is vector_service.Match.
type Match struct {
	Id       string
	Score    float64
	Values   []float32
	Metadata map[string]string
}

// QueryResponse is vector_service.QueryResponse.
type QueryResponse struct {
	Matches []*Match
}

// Message is implemented by every type in this package.
type Message interface {
	Marshal() ([]byte, error)
	Unmarshal(b []byte) error
}

var (
	_ Message = (*Vector)(nil)
	_ Message = (*UpsertRequest)(nil)
	_ Message = (*UpsertResponse)(nil)
	_ Message = (*QueryRequest)(nil)
	_ Message = (*Match)(nil)
	_ Message = (*QueryResponse)(nil)
)

func (m *Vector) appendTo(b []byte) []byte {
	b = appendString(b, 1, m.Id)
	b = appendFloats(b, 2, m.Values)
	return appendStringMap(b, 3, m.Metadata)
}

// Marshal encodes the message.
func (m *Vector) Marshal() ([]byte, error) { return m.appendTo(nil), nil }

// Unmarshal decodes b into the message, replacing its contents.
func (m *Vector) Unmarshal(b []byte) error {
	*m = Vector{}
	return walk(b, func(f field) error {
		var err error
		switch f.num {
		case 1:
			m.Id = string(f.bytes)
		case 2:
			m.Values, err = f.floats(m.Values)
		case 3:
			if m.Metadata == nil {
				m.Metadata = map[string]string{}
			}
			err = f.mapEntry(m.Metadata)
		}
		return err
	})
}

// Marshal encodes the message.
func (m *UpsertRequest) Marshal() ([]byte, error) {
	b := appendString(nil, 1, m.Namespace)
	for _, v := range m.Vectors {
		b = appendMessage(b, 2, v.appendTo(nil))
	}
	return b, nil
}

// Unmarshal decodes b into the message, replacing its contents.
func (m *UpsertRequest) Unmarshal(b []byte) error {
	*m = UpsertRequest{}
	return walk(b, func(f field) error {
		switch f.num {
		case 1:
			m.Namespace = string(f.bytes)
		case 2:
			v := &Vector{}
			if err := v.Unmarshal(f.bytes); err != nil {
				return err
			}
			m.Vectors = append(m.Vectors, v)
		}
		return nil
	})
}

// Marshal encodes the message.
func (m *UpsertResponse) Marshal() ([]byte, error) {
	return appendInt32(nil, 1, m.UpsertedCount), nil
}

// Unmarshal decodes b into the message, replacing its contents.
func (m *UpsertResponse) Unmarshal(b []byte) error {
	*m = UpsertResponse{}
	return walk(b, func(f field) error {
		if f.num == 1 && f.typ == protowire.VarintType {
			m.UpsertedCount = int32(f.varint)
		}
		return nil
	})
}

// Marshal encodes the message.
func (m *QueryRequest) Marshal() ([]byte, error) {
	b := appendString(nil, 1, m.Namespace)
	b = appendFloats(b, 2, m.Vector)
	b = appendInt32(b, 3, m.TopK)
	b = appendBool(b, 4, m.IncludeValues)
	return appendBool(b, 5, m.IncludeMetadata), nil
}

// Unmarshal decodes b into the message, replacing its contents.
func (m *QueryRequest) Unmarshal(b []byte) error {
	*m = QueryRequest{}
	return walk(b, func(f field) error {
		var err error
		switch f.num {
		case 1:
			m.Namespace = string(f.bytes)
		case 2:
			m.Vector, err = f.floats(m.Vector)
		case 3:
			m.TopK = int32(f.varint)
		case 4:
			m.IncludeValues = protowire.DecodeBool(f.varint)
		case 5:
			m.IncludeMetadata = protowire.DecodeBool(f.varint)
		}
		return err
	})
}

func (m *Match) appendTo(b []byte) []byte {
	b = appendString(b, 1, m.Id)
	b = appendDouble(b, 2, m.Score)
	b = appendFloats(b, 3, m.Values)
	return appendStringMap(b, 4, m.Metadata)
}

// Marshal encodes the message.
func (m *Match) Marshal() ([]byte, error) { return m.appendTo(nil), nil }

// Unmarshal decodes b into the message, replacing its contents.
func (m *Match) Unmarshal(b []byte) error {
	*m = Match{}
	return walk(b, func(f field) error {
		var err error
		switch f.num {
		case 1:
			m.Id = string(f.bytes)
		case 2:
			m.Score = f.double()
		case 3:
			m.Values, err = f.floats(m.Values)
		case 4:
			if m.Metadata == nil {
				m.Metadata = map[string]string{}
			}
			err = f.mapEntry(m.Metadata)
		}
		return err
	})
}

// Marshal encodes the message.
func (m *QueryResponse) Marshal() ([]byte, error) {
	var b []byte
	for _, mt := range m.Matches {
		b = appendMessage(b, 1, mt.appendTo(nil))
	}
	return b, nil
}

// Unmarshal decodes b into the message, replacing its contents.
func (m *QueryResponse) Unmarshal(b []byte) error {
	*m = QueryResponse{}
	return walk(b, func(f field) error {
		if f.num != 1 {
			return nil
		}
		mt := &Match{}
		if err := mt.Unmarshal(f.bytes); err != nil {
			return err
		}
		m.Matches = append(m.Matches, mt)
		return nil
	})
}
