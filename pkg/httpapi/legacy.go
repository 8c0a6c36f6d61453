package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/clustermaster/masterd/pkg/types"
)

// The legacy single-resource endpoints (/reserve, /unreserve,
// /create-volumes, /destroy-volumes, /teardown) predate the operator
// API and are still form-encoded: slaveId/frameworkId as a plain form
// value, resources/volumes as a JSON-encoded array within the form.

func (s *Server) decodeResourcesForm(w http.ResponseWriter, r *http.Request) (types.AgentID, []types.Resources, bool) {
	if err := r.ParseForm(); err != nil {
		writeError(w, badRequest("malformed form body: "+err.Error()))
		return "", nil, false
	}
	slaveID := types.AgentID(r.Form.Get("slaveId"))
	if slaveID == "" {
		writeError(w, badRequest("slaveId is required"))
		return "", nil, false
	}
	raw := r.Form.Get("resources")
	if raw == "" {
		raw = r.Form.Get("volumes")
	}
	var resources []types.Resources
	if err := json.Unmarshal([]byte(raw), &resources); err != nil {
		writeError(w, badRequest("malformed resources: "+err.Error()))
		return "", nil, false
	}
	return slaveID, resources, true
}

func (s *Server) handleLegacyReserve(w http.ResponseWriter, r *http.Request) {
	if !s.checkLeadership(w, r) || !s.checkRecovery(w) {
		return
	}
	slaveID, resources, ok := s.decodeResourcesForm(w, r)
	if !ok || len(resources) != 1 {
		if ok {
			writeError(w, badRequest("RESERVE takes exactly one resource vector"))
		}
		return
	}
	call := &types.Call{
		Type:             types.CallReserveResources,
		ReserveResources: &types.CallReserveResourcesData{AgentID: slaveID, Resources: resources[0]},
	}
	if _, herr := s.submit(r, call); herr != nil {
		writeError(w, herr)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleLegacyUnreserve(w http.ResponseWriter, r *http.Request) {
	if !s.checkLeadership(w, r) || !s.checkRecovery(w) {
		return
	}
	slaveID, resources, ok := s.decodeResourcesForm(w, r)
	if !ok || len(resources) != 1 {
		if ok {
			writeError(w, badRequest("UNRESERVE takes exactly one resource vector"))
		}
		return
	}
	call := &types.Call{
		Type:               types.CallUnreserveResources,
		UnreserveResources: &types.CallUnreserveResourcesData{AgentID: slaveID, Resources: resources[0]},
	}
	if _, herr := s.submit(r, call); herr != nil {
		writeError(w, herr)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleLegacyCreateVolumes(w http.ResponseWriter, r *http.Request) {
	if !s.checkLeadership(w, r) || !s.checkRecovery(w) {
		return
	}
	slaveID, volumes, ok := s.decodeResourcesForm(w, r)
	if !ok {
		return
	}
	call := &types.Call{
		Type:          types.CallCreateVolumes,
		CreateVolumes: &types.CallCreateVolumesData{AgentID: slaveID, Volumes: volumes},
	}
	if _, herr := s.submit(r, call); herr != nil {
		writeError(w, herr)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleLegacyDestroyVolumes(w http.ResponseWriter, r *http.Request) {
	if !s.checkLeadership(w, r) || !s.checkRecovery(w) {
		return
	}
	slaveID, volumes, ok := s.decodeResourcesForm(w, r)
	if !ok {
		return
	}
	call := &types.Call{
		Type:           types.CallDestroyVolumes,
		DestroyVolumes: &types.CallDestroyVolumesData{AgentID: slaveID, Volumes: volumes},
	}
	if _, herr := s.submit(r, call); herr != nil {
		writeError(w, herr)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleLegacyTeardown(w http.ResponseWriter, r *http.Request) {
	if !s.checkLeadership(w, r) || !s.checkRecovery(w) {
		return
	}
	if err := r.ParseForm(); err != nil {
		writeError(w, badRequest("malformed form body: "+err.Error()))
		return
	}
	frameworkID := types.FrameworkID(r.Form.Get("frameworkId"))
	if frameworkID == "" {
		writeError(w, badRequest("frameworkId is required"))
		return
	}
	call := &types.Call{
		Type:        types.CallTeardown,
		FrameworkID: frameworkID,
		Teardown:    &types.CallTeardownData{FrameworkID: frameworkID},
	}
	if _, herr := s.submit(r, call); herr != nil {
		writeError(w, herr)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}
