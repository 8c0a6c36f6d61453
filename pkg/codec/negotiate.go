package codec

import (
	"mime"
	"net/http"
)

// StreamIDHeader is the header carrying a scheduler's stream identifier
// on every non-SUBSCRIBE call after subscription.
const StreamIDHeader = "X-Stream-Id"

// MessageContentType and MessageAccept are the secondary negotiation
// headers used when the outer body is recordio-framed: the outer
// Content-Type/Accept govern the framing, while these govern the media
// type of each individual record inside the frame.
const (
	MessageContentTypeHeader = "Message-Content-Type"
	MessageAcceptHeader      = "Message-Accept"
)

// IsRecordIO reports whether a Content-Type or Accept value names the
// recordio framing, ignoring parameters.
func IsRecordIO(headerValue string) bool {
	mt, _, err := mime.ParseMediaType(headerValue)
	if err != nil {
		return false
	}
	return MediaType(mt) == MediaRecordIO
}

// InnerCodec resolves the Message-Content-Type / Message-Accept header
// pair to the Codec governing individual records, falling back to outer
// when no inner codec is named. It implements the secondary-negotiation
// rule for recordio-framed requests and responses.
func (r *Registry) InnerCodec(req *http.Request, outer Codec) (decode, encode Codec) {
	decode, encode = outer, outer
	if v := req.Header.Get(MessageContentTypeHeader); v != "" {
		if mt, _, err := mime.ParseMediaType(v); err == nil {
			if c, ok := r.Lookup(mt); ok {
				decode = c
			}
		}
	}
	if v := req.Header.Get(MessageAcceptHeader); v != "" {
		if mt, _, err := mime.ParseMediaType(v); err == nil {
			if c, ok := r.Lookup(mt); ok {
				encode = c
			}
		}
	}
	return decode, encode
}
