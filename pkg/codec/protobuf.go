package codec

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/clustermaster/masterd/pkg/types"
)

// protobufCodec hand-encodes the Call envelope's common fields (type and
// framework id) using protowire directly, rather than through
// protoc-generated message types. The pipeline treats every mutating
// operation's payload as an opaque, pre-validated types.OperationInfo by
// the time it reaches this layer, so the wire encoding only needs to
// round-trip the envelope reliably; it does not need to reproduce a
// particular .proto schema byte-for-byte.
type protobufCodec struct{}

// Protobuf is the stateless protobuf Codec.
var Protobuf Codec = protobufCodec{}

func (protobufCodec) MediaType() MediaType { return MediaProtobuf }

const (
	fieldCallType        = 1
	fieldCallFrameworkID = 2
)

func (protobufCodec) Encode(v interface{}) ([]byte, error) {
	switch t := v.(type) {
	case types.Call:
		return encodeCall(t), nil
	case *types.Call:
		return encodeCall(*t), nil
	default:
		return nil, fmt.Errorf("codec: protobuf encoding of %T is not supported", v)
	}
}

func encodeCall(c types.Call) []byte {
	var b []byte
	b = protowire.AppendTag(b, fieldCallType, protowire.BytesType)
	b = protowire.AppendString(b, string(c.Type))
	if c.FrameworkID != "" {
		b = protowire.AppendTag(b, fieldCallFrameworkID, protowire.BytesType)
		b = protowire.AppendString(b, string(c.FrameworkID))
	}
	return b
}

func (protobufCodec) DecodeCall(data []byte) (types.Call, error) {
	var call types.Call
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return types.Call{}, fmt.Errorf("codec: protobuf: malformed tag: %w", protowire.ParseError(n))
		}
		data = data[n:]

		switch num {
		case fieldCallType:
			s, m := protowire.ConsumeString(data)
			if m < 0 {
				return types.Call{}, fmt.Errorf("codec: protobuf: malformed type field: %w", protowire.ParseError(m))
			}
			call.Type = types.CallType(s)
			data = data[m:]
		case fieldCallFrameworkID:
			s, m := protowire.ConsumeString(data)
			if m < 0 {
				return types.Call{}, fmt.Errorf("codec: protobuf: malformed framework_id field: %w", protowire.ParseError(m))
			}
			call.FrameworkID = types.FrameworkID(s)
			data = data[m:]
		default:
			m := protowire.ConsumeFieldValue(num, typ, data)
			if m < 0 {
				return types.Call{}, fmt.Errorf("codec: protobuf: malformed unknown field %d: %w", num, protowire.ParseError(m))
			}
			data = data[m:]
		}
	}
	return call, nil
}
