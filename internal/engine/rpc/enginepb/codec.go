package enginepb

import (
	"fmt"

	"google.golang.org/protobuf/proto"
)

// CodecName matches the standard protobuf codec so requests carry
// content-type application/grpc+proto.
const CodecName = "proto"

// Codec marshals this package's messages and falls back to the protobuf
// runtime for generated messages. It is applied per call and never
// registered globally.
type Codec struct{}

// Marshal encodes v.
func (Codec) Marshal(v any) ([]byte, error) {
	switch m := v.(type) {
	case Message:
		return m.Marshal()
	case proto.Message:
		return proto.Marshal(m)
	default:
		return nil, fmt.Errorf("enginepb: cannot marshal %T", v)
	}
}

// Unmarshal decodes data into v.
func (Codec) Unmarshal(data []byte, v any) error {
	switch m := v.(type) {
	case Message:
		return m.Unmarshal(data)
	case proto.Message:
		return proto.Unmarshal(data, m)
	default:
		return fmt.Errorf("enginepb: cannot unmarshal into %T", v)
	}
}

// Name returns the codec's content subtype.
func (Codec) Name() string { return CodecName }
