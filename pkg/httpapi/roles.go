package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/clustermaster/masterd/pkg/master"
	"github.com/clustermaster/masterd/pkg/types"
)

// approvedRoles filters snap's role list down to those the Authorizer
// approves for principal, per GET_ROLES/GET_WEIGHTS/GET_QUOTA's status
// as authorization-filtered reports rather than a plain state dump.
func (s *Server) approvedRoles(principal string, snap *master.Snapshot) []*types.RoleState {
	authz := s.master.Authorizer()
	roles := make([]*types.RoleState, 0, len(snap.Roles))
	for _, role := range snap.Roles {
		if authz.ApproveRole(principal, role.Name) {
			roles = append(roles, role)
		}
	}
	return roles
}

func (s *Server) listRoles(r *http.Request, principal string) ([]*types.RoleState, error) {
	v, err := s.batcher.Do(r.Context(), func(snap *master.Snapshot) (interface{}, error) {
		return s.approvedRoles(principal, snap), nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]*types.RoleState), nil
}

func (s *Server) handleGetRoles(w http.ResponseWriter, r *http.Request) {
	if !s.checkRecovery(w) {
		return
	}
	principal, herr := principalFor(r)
	if herr != nil {
		writeError(w, herr)
		return
	}
	roles, err := s.listRoles(r, principal)
	if err != nil {
		writeError(w, internalError("readbatch: "+err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, rolesResponse{Roles: roles})
}

func (s *Server) handleGetWeights(w http.ResponseWriter, r *http.Request) {
	if !s.checkRecovery(w) {
		return
	}
	principal, herr := principalFor(r)
	if herr != nil {
		writeError(w, herr)
		return
	}
	roles, err := s.listRoles(r, principal)
	if err != nil {
		writeError(w, internalError("readbatch: "+err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, rolesResponse{Roles: roles})
}

func (s *Server) handleUpdateWeights(w http.ResponseWriter, r *http.Request) {
	if !s.checkLeadership(w, r) {
		return
	}
	if !s.checkRecovery(w) {
		return
	}
	principal, herr := principalFor(r)
	if herr != nil {
		writeError(w, herr)
		return
	}
	var weights []types.RoleState
	if err := json.NewDecoder(r.Body).Decode(&weights); err != nil {
		writeError(w, badRequest("malformed weights: "+err.Error()))
		return
	}
	call := &types.Call{Type: types.CallUpdateWeights, Principal: principal, UpdateWeights: &types.CallUpdateWeightsData{Weights: weights}}
	if _, herr := s.submit(r, call); herr != nil {
		writeError(w, herr)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleGetQuota(w http.ResponseWriter, r *http.Request) {
	if !s.checkRecovery(w) {
		return
	}
	principal, herr := principalFor(r)
	if herr != nil {
		writeError(w, herr)
		return
	}
	roles, err := s.listRoles(r, principal)
	if err != nil {
		writeError(w, internalError("readbatch: "+err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, rolesResponse{Roles: roles})
}
