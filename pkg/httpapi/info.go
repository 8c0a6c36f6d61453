package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/clustermaster/masterd/pkg/log"
	"github.com/clustermaster/masterd/pkg/metrics"
)

// handleHealth reports process liveness independent of leadership or
// recovery, so a load balancer never treats a healthy standby as down.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := metrics.GetHealth()
	status := http.StatusOK
	if health.Status == "unhealthy" {
		status = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(health)
}

// handleRedirect sends a 307 to the current leader's own /redirect,
// mirroring Mesos's operator convenience endpoint for finding the
// leading master from any node in the cluster.
func (s *Server) handleRedirect(w http.ResponseWriter, r *http.Request) {
	if s.master.IsLeader() {
		http.Redirect(w, r, r.URL.Path, http.StatusTemporaryRedirect)
		return
	}
	leader := s.master.LeaderAddress()
	if leader == "" {
		writeError(w, unavailable("no leader is currently known"))
		return
	}
	http.Redirect(w, r, leaderRedirectURL(leader, r.URL), http.StatusTemporaryRedirect)
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(struct {
		Version string `json:"version"`
		NodeID  string `json:"node_id"`
	}{Version: s.version, NodeID: s.master.NodeID()})
}

func (s *Server) handleGetLoggingLevel(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(struct {
		Level string `json:"level"`
	}{Level: string(log.CurrentLevel())})
}

// handleSetLoggingLevel accepts the plain REST form of SET_LOGGING_LEVEL,
// form-encoded the way the legacy operator endpoints all are: level and
// duration_seconds as query or form values. The level reverts after
// duration_seconds elapses, the same way Mesos's own /logging/toggle
// is temporary by design rather than a durable configuration change.
// Logging level is process-local state, not something the registrar
// or the other peers need to agree on, so this never goes through
// Submit.
func (s *Server) handleSetLoggingLevel(w http.ResponseWriter, r *http.Request) {
	if !s.checkLeadership(w, r) {
		return
	}
	if err := r.ParseForm(); err != nil {
		writeError(w, badRequest("malformed form body: "+err.Error()))
		return
	}
	level := log.Level(r.Form.Get("level"))
	seconds, err := strconv.ParseUint(r.Form.Get("duration_seconds"), 10, 64)
	if err != nil {
		writeError(w, badRequest("malformed duration_seconds: "+err.Error()))
		return
	}
	if err := log.ToggleLevel(level, time.Duration(seconds)*time.Second); err != nil {
		writeError(w, badRequest(err.Error()))
		return
	}
	w.WriteHeader(http.StatusAccepted)
}
