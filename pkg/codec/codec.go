// Package codec implements the content-negotiation and wire-encoding
// layer of the request plane: deciding which media type governs a
// request and response, and translating a Call (or its result) to and
// from bytes in that media type.
package codec

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/http"

	"github.com/clustermaster/masterd/pkg/types"
)

// MediaType identifies one of the wire encodings the request plane
// understands.
type MediaType string

const (
	MediaJSON     MediaType = "application/json"
	MediaProtobuf MediaType = "application/x-protobuf"
	MediaRecordIO MediaType = "application/recordio"
)

// Codec translates a Call, or an arbitrary response value, to and from a
// single media type's wire bytes.
type Codec interface {
	MediaType() MediaType
	Encode(v interface{}) ([]byte, error)
	DecodeCall(data []byte) (types.Call, error)
}

// jsonCodec implements Codec over encoding/json. JSON needs no
// third-party support beyond the standard library; every example in this
// codebase's dependency pack that does its own JSON wire encoding (not
// protobuf, not a binary framing) also reaches for encoding/json rather
// than a third-party substitute.
type jsonCodec struct{}

// JSON is the stateless JSON Codec.
var JSON Codec = jsonCodec{}

func (jsonCodec) MediaType() MediaType { return MediaJSON }

func (jsonCodec) Encode(v interface{}) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("codec: json encode: %w", err)
	}
	return b, nil
}

func (jsonCodec) DecodeCall(data []byte) (types.Call, error) {
	var call types.Call
	if err := json.Unmarshal(data, &call); err != nil {
		return types.Call{}, fmt.Errorf("codec: json decode: %w", err)
	}
	return call, nil
}

// Registry resolves a MediaType string to its Codec.
type Registry struct {
	codecs map[MediaType]Codec
}

// NewRegistry builds a Registry carrying the JSON and protobuf codecs.
func NewRegistry() *Registry {
	return &Registry{codecs: map[MediaType]Codec{
		MediaJSON:     JSON,
		MediaProtobuf: Protobuf,
	}}
}

// Lookup resolves name (as it appears in a Content-Type header, without
// parameters) to its Codec.
func (r *Registry) Lookup(name string) (Codec, bool) {
	c, ok := r.codecs[MediaType(name)]
	return c, ok
}

// Negotiate inspects a request's Content-Type and Accept headers and
// returns the decode codec (for the request body) and the encode codec
// (for the response body). It implements the rule that an unrecognized
// or absent Accept falls back to the request's own Content-Type, and
// that an unrecognized Content-Type is a hard error since the body
// cannot be decoded at all.
func (r *Registry) Negotiate(req *http.Request) (decode, encode Codec, err error) {
	ctype := req.Header.Get("Content-Type")
	mt, _, err := mime.ParseMediaType(ctype)
	if err != nil || mt == "" {
		return nil, nil, fmt.Errorf("codec: missing or invalid Content-Type %q", ctype)
	}
	decode, ok := r.Lookup(mt)
	if !ok {
		return nil, nil, fmt.Errorf("codec: unsupported Content-Type %q", mt)
	}

	accept := req.Header.Get("Accept")
	if accept == "" || accept == "*/*" {
		return decode, decode, nil
	}
	amt, _, err := mime.ParseMediaType(accept)
	if err != nil {
		return decode, decode, nil
	}
	encode, ok = r.Lookup(amt)
	if !ok {
		return decode, decode, nil
	}
	return decode, encode, nil
}
