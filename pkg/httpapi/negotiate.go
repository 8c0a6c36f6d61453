package httpapi

import (
	"fmt"
	"mime"
	"net/http"
	"strings"

	"github.com/clustermaster/masterd/pkg/codec"
)

// negotiated carries the outcome of content negotiation: the codec the
// request body must be decoded with, the codec the response must be
// encoded with, and whether the outer body is recordio-framed.
type negotiated struct {
	decode    codec.Codec
	encode    codec.Codec
	streaming bool
}

// negotiateContentType implements the request-plane's content
// negotiation rules (outer Content-Type/Accept, and the
// Message-Content-Type/Message-Accept pair governing records inside a
// recordio frame). allowStreaming is false on surfaces (the scheduler
// endpoint) that never accept recordio.
// recordio is a framing, not itself a Codec the registry carries, so an
// outer media type of application/recordio resolves its actual decode
// or encode codec from the paired Message-Content-Type/Message-Accept
// header rather than from a registry lookup on "recordio" itself.
func (s *Server) negotiateContentType(r *http.Request, allowStreaming bool) (negotiated, *httpError) {
	ctypeHeader := r.Header.Get("Content-Type")
	if ctypeHeader == "" {
		return negotiated{}, badRequest("missing Content-Type")
	}
	if _, _, err := mime.ParseMediaType(ctypeHeader); err != nil {
		return negotiated{}, badRequest("malformed Content-Type: " + err.Error())
	}

	streaming := codec.IsRecordIO(ctypeHeader)
	if streaming && !allowStreaming {
		return negotiated{}, unsupportedMedia("this endpoint does not accept recordio-framed requests")
	}

	innerContentType := r.Header.Get(codec.MessageContentTypeHeader)
	if streaming && innerContentType == "" {
		return negotiated{}, badRequest("recordio request requires " + codec.MessageContentTypeHeader)
	}
	if !streaming && innerContentType != "" {
		return negotiated{}, unsupportedMedia(codec.MessageContentTypeHeader + " is only meaningful on a recordio-framed request")
	}

	decode, httpErr := s.resolveMediaType(ctypeHeader, innerContentType, codec.MessageContentTypeHeader, allowStreaming)
	if httpErr != nil {
		return negotiated{}, httpErr
	}

	encode, httpErr := s.negotiateAccept(r, decode, allowStreaming)
	if httpErr != nil {
		return negotiated{}, httpErr
	}

	return negotiated{decode: decode, encode: encode, streaming: streaming}, nil
}

// resolveMediaType resolves outerHeader to its Codec, following into
// innerHeader's value when outerHeader names the recordio framing.
// innerName is the header name to mention in the error if innerHeader
// itself turns out to be unsupported.
func (s *Server) resolveMediaType(outerHeader, innerHeader, innerName string, allowStreaming bool) (codec.Codec, *httpError) {
	if codec.IsRecordIO(outerHeader) {
		mt := mediaTypeOf(innerHeader)
		c, ok := s.codecs.Lookup(mt)
		if !ok {
			return nil, unsupportedMedia(fmt.Sprintf("unsupported %s %q", innerName, innerHeader))
		}
		return c, nil
	}
	mt := mediaTypeOf(outerHeader)
	c, ok := s.codecs.Lookup(mt)
	if !ok {
		return nil, unsupportedMedia(fmt.Sprintf("unsupported Content-Type %q, accepted: %s", mt, s.acceptedMediaTypes(allowStreaming)))
	}
	return c, nil
}

func mediaTypeOf(headerValue string) string {
	mt, _, err := mime.ParseMediaType(headerValue)
	if err != nil {
		return headerValue
	}
	return mt
}

// negotiateAccept resolves the outer Accept header. A missing or
// wildcard Accept falls back to the request's own Content-Type, per
// the request plane's rule that a caller need not repeat itself when it
// wants a response shaped like what it sent.
func (s *Server) negotiateAccept(r *http.Request, fallback codec.Codec, allowStreaming bool) (codec.Codec, *httpError) {
	accept := r.Header.Get("Accept")
	if accept == "" || accept == "*/*" {
		return fallback, nil
	}
	if _, _, err := mime.ParseMediaType(accept); err != nil {
		return nil, notAcceptable("malformed Accept header")
	}

	streaming := codec.IsRecordIO(accept)
	if streaming && !allowStreaming {
		return nil, notAcceptable("this endpoint does not produce recordio-framed responses")
	}

	innerAccept := r.Header.Get(codec.MessageAcceptHeader)
	if streaming && innerAccept == "" {
		return nil, notAcceptable("recordio Accept requires " + codec.MessageAcceptHeader)
	}
	if !streaming && innerAccept != "" {
		return nil, notAcceptable(codec.MessageAcceptHeader + " is only meaningful with a recordio Accept")
	}

	if streaming {
		mt := mediaTypeOf(innerAccept)
		c, ok := s.codecs.Lookup(mt)
		if !ok {
			return nil, notAcceptable(fmt.Sprintf("unsupported %s %q", codec.MessageAcceptHeader, innerAccept))
		}
		return c, nil
	}

	mt := mediaTypeOf(accept)
	c, ok := s.codecs.Lookup(mt)
	if !ok {
		return nil, notAcceptable(fmt.Sprintf("cannot produce Accept %q, accepted: %s", mt, s.acceptedMediaTypes(allowStreaming)))
	}
	return c, nil
}

func (s *Server) acceptedMediaTypes(allowStreaming bool) string {
	types := []string{string(codec.MediaJSON), string(codec.MediaProtobuf)}
	if allowStreaming {
		types = append(types, string(codec.MediaRecordIO))
	}
	return strings.Join(types, ", ")
}
