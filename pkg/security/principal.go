package security

import (
	"fmt"
	"net/http"
)

// Principal identifies the caller a mutating HTTP call is attributed to,
// for authorization decisions on RESERVE/UNRESERVE/CREATE_VOLUMES and
// similar operator calls.
type Principal string

// PrincipalFromRequest extracts the principal from the CommonName of the
// client certificate presented over mTLS. It returns an error if the
// connection was not made over TLS or the client presented no
// certificate — callers on an unauthenticated listener should not call
// this.
func PrincipalFromRequest(r *http.Request) (Principal, error) {
	if r.TLS == nil {
		return "", fmt.Errorf("security: request was not made over TLS")
	}
	if len(r.TLS.PeerCertificates) == 0 {
		return "", fmt.Errorf("security: no client certificate presented")
	}
	return Principal(r.TLS.PeerCertificates[0].Subject.CommonName), nil
}
