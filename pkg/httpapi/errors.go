package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/clustermaster/masterd/pkg/codec"
)

// httpError is a request-plane failure already attributed to one of the
// status codes the pipeline can produce. Every pipeline step that can
// reject a request returns one of these instead of a bare error, so the
// top-level handler never has to re-derive a status code from error
// text.
type httpError struct {
	status  int
	message string
	header  http.Header // optional extra response headers, e.g. Allow
}

func newHTTPError(status int, message string) *httpError {
	return &httpError{status: status, message: message}
}

func (e *httpError) Error() string { return e.message }

func badRequest(msg string) *httpError          { return newHTTPError(http.StatusBadRequest, msg) }
func forbidden(msg string) *httpError           { return newHTTPError(http.StatusForbidden, msg) }
func notFound(msg string) *httpError            { return newHTTPError(http.StatusNotFound, msg) }
func notAcceptable(msg string) *httpError       { return newHTTPError(http.StatusNotAcceptable, msg) }
func conflict(msg string) *httpError            { return newHTTPError(http.StatusConflict, msg) }
func unsupportedMedia(msg string) *httpError    { return newHTTPError(http.StatusUnsupportedMediaType, msg) }
func internalError(msg string) *httpError       { return newHTTPError(http.StatusInternalServerError, msg) }
func notImplemented(msg string) *httpError      { return newHTTPError(http.StatusNotImplemented, msg) }
func unavailable(msg string) *httpError         { return newHTTPError(http.StatusServiceUnavailable, msg) }

func methodNotAllowed(msg string, allowed []string) *httpError {
	e := newHTTPError(http.StatusMethodNotAllowed, msg)
	e.header = http.Header{"Allow": allowed}
	return e
}

// writeError renders a pipeline failure as a JSON body, independent of
// whatever codec governs the call itself: a request that fails before
// content negotiation completes may have no negotiated codec to use.
func writeError(w http.ResponseWriter, err *httpError) {
	for k, vs := range err.header {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	w.Header().Set("Content-Type", string(codec.MediaJSON))
	w.WriteHeader(err.status)
	_ = json.NewEncoder(w).Encode(struct {
		Error string `json:"error"`
	}{Error: err.message})
}
