package httpapi

import (
	"io"
	"net/http"

	"github.com/clustermaster/masterd/pkg/stream"
	"github.com/clustermaster/masterd/pkg/types"
)

// decodeCall reads and decodes the Call a request carries. A
// recordio-framed body only ever yields its first record here; only
// SUBSCRIBE may open one, and everything after that first record is
// the scheduler's ongoing stream of... nothing, since this is a
// request body, not a duplex connection, so a second record would be
// malformed input rather than a legitimate read.
func decodeCall(r *http.Request, neg negotiated) (types.Call, *httpError) {
	if neg.streaming {
		dec := stream.DecoderFunc(func(data []byte) (interface{}, error) {
			call, err := neg.decode.DecodeCall(data)
			return call, err
		})
		rd := stream.NewReader(r.Context(), r.Body, dec)
		defer rd.Close()

		rec, err := rd.Read().Wait(r.Context())
		if err != nil {
			return types.Call{}, badRequest("malformed recordio request: " + err.Error())
		}
		if rec.Err != nil {
			return types.Call{}, badRequest("malformed recordio request: " + rec.Err.Error())
		}
		if rec.EOF {
			return types.Call{}, badRequest("malformed recordio request: empty body")
		}
		return rec.Value.(types.Call), nil
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return types.Call{}, badRequest("failed to read request body: " + err.Error())
	}
	call, err := neg.decode.DecodeCall(body)
	if err != nil {
		return types.Call{}, badRequest("malformed call body: " + err.Error())
	}
	return call, nil
}
