package httpapi

import (
	"net/http"
	"net/url"

	"github.com/clustermaster/masterd/pkg/log"
	"github.com/clustermaster/masterd/pkg/master"
	"github.com/clustermaster/masterd/pkg/security"
	"github.com/clustermaster/masterd/pkg/types"
)

// principalFor extracts the caller's principal. A connection made
// without a client certificate is anonymous, not an error; a
// connection that authenticated but presented an empty CommonName is a
// Forbidden, since that is a caller actively lying about who it is.
func principalFor(r *http.Request) (string, *httpError) {
	p, err := security.PrincipalFromRequest(r)
	if err != nil {
		return "", nil
	}
	if p == "" {
		return "", forbidden("authenticated request carries an empty principal")
	}
	return string(p), nil
}

// checkLeadership redirects to the current leader when this node does
// not hold it, or reports 503 when no leader is known at all. It
// writes directly to w and returns false when the request should stop
// here.
func (s *Server) checkLeadership(w http.ResponseWriter, r *http.Request) bool {
	if s.master.IsLeader() {
		return true
	}
	leader := s.master.LeaderAddress()
	if leader == "" {
		writeError(w, unavailable("no leader is currently known"))
		return false
	}
	target := leaderRedirectURL(leader, r.URL)
	http.Redirect(w, r, target, http.StatusTemporaryRedirect)
	return false
}

// leaderRedirectURL rebuilds r's URL against the leader's advertised
// host, preserving path and query.
func leaderRedirectURL(leaderAddr string, u *url.URL) string {
	out := *u
	out.Scheme = "http"
	out.Host = leaderAddr
	return out.String()
}

// checkRecovery reports 503 while this leader has not finished
// replaying registrar state, since it has no durable basis yet for
// accepting calls.
func (s *Server) checkRecovery(w http.ResponseWriter) bool {
	if s.master.Recovered() {
		return true
	}
	writeError(w, unavailable("master is still recovering state from the registrar"))
	return false
}

// submit runs a decoded, validated call through the master actor and
// translates the result into either a response payload or an
// httpError, per the status-code taxonomy the request plane commits
// to: an authorization denial is forbidden (403), unknown/gone ids and
// bad payload shapes are client mistakes (400/404), registrar-backed
// mutations rejected by the agent side are conflicts (409), and
// anything else unexpected is internal (500).
func (s *Server) submit(r *http.Request, call *types.Call) (*master.Result, *httpError) {
	result, err := s.master.Submit(r.Context(), call)
	if err != nil {
		return nil, internalError("master: " + err.Error())
	}
	if result.Err != nil {
		if master.IsAuthzError(result.Err) {
			return result, forbidden(result.Err.Error())
		}
		if master.IsNotFoundError(result.Err) {
			return result, notFound(result.Err.Error())
		}
		if master.IsCallError(result.Err) {
			return result, badRequest(result.Err.Error())
		}
		httpapiLogger := log.WithComponent("httpapi")
		httpapiLogger.Error().Err(result.Err).Str("call", string(call.Type)).Msg("call rejected")
		return result, conflict(result.Err.Error())
	}
	return result, nil
}
