package httpapi

import (
	"net/http"
	"strconv"

	"github.com/clustermaster/masterd/pkg/codec"
	"github.com/clustermaster/masterd/pkg/log"
	"github.com/clustermaster/masterd/pkg/master"
	"github.com/clustermaster/masterd/pkg/metrics"
	"github.com/clustermaster/masterd/pkg/types"
)

// operatorAllowed is the set of calls the operator surface accepts.
// Calls that belong to the scheduler's task/executor lifecycle
// (ACCEPT, DECLINE, KILL, and so on) are rejected here even though
// they decode fine, since they only make sense against a framework's
// own subscription.
var operatorAllowed = map[types.CallType]bool{
	types.CallGetHealth:                   true,
	types.CallGetFlags:                    true,
	types.CallGetVersion:                  true,
	types.CallGetMetrics:                  true,
	types.CallGetLoggingLevel:             true,
	types.CallSetLoggingLevel:             true,
	types.CallGetMaster:                   true,
	types.CallGetAgents:                   true,
	types.CallGetFrameworks:               true,
	types.CallGetState:                    true,
	types.CallGetOperations:               true,
	types.CallGetRoles:                    true,
	types.CallGetWeights:                  true,
	types.CallUpdateWeights:               true,
	types.CallGetQuota:                    true,
	types.CallSetQuota:                    true,
	types.CallUpdateQuota:                 true,
	types.CallRemoveQuota:                 true,
	types.CallGetMaintenanceSchedule:      true,
	types.CallUpdateMaintenanceSchedule:   true,
	types.CallGetMaintenanceStatus:        true,
	types.CallStartMaintenance:            true,
	types.CallStopMaintenance:             true,
	types.CallMarkAgentGone:               true,
	types.CallTeardown:                    true,
	types.CallReserveResources:            true,
	types.CallUnreserveResources:          true,
	types.CallCreateVolumes:               true,
	types.CallDestroyVolumes:              true,
	types.CallGrowVolume:                  true,
	types.CallShrinkVolume:                true,
	types.CallSubscribe:                   true,
}

// fireAndForget is the set of mutating calls whose result carries
// nothing back worth echoing, so a successful submit reports 202
// rather than 200.
var fireAndForget = map[types.CallType]bool{
	types.CallUpdateWeights:             true,
	types.CallSetQuota:                  true,
	types.CallUpdateQuota:               true,
	types.CallRemoveQuota:               true,
	types.CallStartMaintenance:          true,
	types.CallStopMaintenance:           true,
	types.CallMarkAgentGone:             true,
	types.CallTeardown:                  true,
	types.CallReserveResources:          true,
	types.CallUnreserveResources:        true,
	types.CallCreateVolumes:             true,
	types.CallDestroyVolumes:            true,
	types.CallGrowVolume:                true,
	types.CallShrinkVolume:              true,
	types.CallSetLoggingLevel:           true,
}

func (s *Server) handleOperator(w http.ResponseWriter, r *http.Request) {
	principal, herr := principalFor(r)
	if herr != nil {
		writeError(w, herr)
		return
	}
	if !s.checkLeadership(w, r) {
		return
	}
	if !s.checkRecovery(w) {
		return
	}

	neg, herr := s.negotiateContentType(r, true)
	if herr != nil {
		writeError(w, herr)
		return
	}

	call, herr := decodeCall(r, neg)
	if herr != nil {
		writeError(w, herr)
		return
	}
	call.Principal = principal
	if neg.streaming && call.Type != types.CallSubscribe {
		writeError(w, badRequest("first record of a streamed request must be SUBSCRIBE"))
		return
	}
	if herr := validateStructure(&call); herr != nil {
		writeError(w, herr)
		return
	}
	if !operatorAllowed[call.Type] {
		writeError(w, notImplemented(string(call.Type)+" is not served by the operator API"))
		return
	}

	timer := metrics.NewTimer()
	status := s.dispatchOperatorCall(w, r, principal, &call, neg.encode)
	timer.ObserveDurationVec(metrics.APIRequestDuration, string(call.Type))
	metrics.APIRequestsTotal.WithLabelValues(string(call.Type), strconv.Itoa(status)).Inc()
}

func (s *Server) dispatchOperatorCall(w http.ResponseWriter, r *http.Request, principal string, call *types.Call, enc codec.Codec) int {
	switch call.Type {
	case types.CallGetHealth:
		return s.writeOK(w, enc, struct {
			Healthy bool `json:"healthy"`
		}{Healthy: true})
	case types.CallGetVersion:
		return s.writeOK(w, enc, struct {
			Version string `json:"version"`
		}{Version: s.version})
	case types.CallGetFlags:
		return s.writeOK(w, enc, struct {
			NodeID string `json:"node_id"`
		}{NodeID: s.master.NodeID()})
	case types.CallGetMetrics:
		return s.writeOK(w, enc, struct {
			Note string `json:"note"`
		}{Note: "scrape /metrics for the Prometheus exposition format"})
	case types.CallGetLoggingLevel:
		return s.writeOK(w, enc, struct {
			Level string `json:"level"`
		}{Level: string(log.CurrentLevel())})
	case types.CallSetLoggingLevel:
		return s.writeAccepted(w, enc, call.Type)
	case types.CallGetMaster:
		return s.writeOK(w, enc, struct {
			NodeID   string `json:"node_id"`
			IsLeader bool   `json:"is_leader"`
		}{NodeID: s.master.NodeID(), IsLeader: s.master.IsLeader()})
	case types.CallGetAgents:
		return s.readBatch(w, r, enc, func(snap *master.Snapshot) interface{} {
			return agentsResponse{Agents: snap.ListAgents()}
		})
	case types.CallGetFrameworks:
		return s.readBatch(w, r, enc, func(snap *master.Snapshot) interface{} {
			return frameworksResponse{Frameworks: snap.ListFrameworks()}
		})
	case types.CallGetState:
		return s.readBatch(w, r, enc, func(snap *master.Snapshot) interface{} {
			return stateResponse{
				Frameworks: snap.ListFrameworks(),
				Agents:     snap.ListAgents(),
				Offers:     snap.ListOffers(),
				Operations: snap.ListOperations(),
			}
		})
	case types.CallGetOperations:
		return s.readBatch(w, r, enc, func(snap *master.Snapshot) interface{} {
			return operationsResponse{Operations: snap.ListOperations()}
		})
	case types.CallGetRoles:
		return s.readBatch(w, r, enc, func(snap *master.Snapshot) interface{} {
			return rolesResponse{Roles: s.approvedRoles(principal, snap)}
		})
	case types.CallGetWeights:
		return s.readBatch(w, r, enc, func(snap *master.Snapshot) interface{} {
			return rolesResponse{Roles: s.approvedRoles(principal, snap)}
		})
	case types.CallGetQuota:
		return s.readBatch(w, r, enc, func(snap *master.Snapshot) interface{} {
			return rolesResponse{Roles: s.approvedRoles(principal, snap)}
		})
	case types.CallGetMaintenanceSchedule:
		return s.readBatch(w, r, enc, func(snap *master.Snapshot) interface{} {
			return scheduleResponse{Schedule: snap.Schedule}
		})
	case types.CallGetMaintenanceStatus:
		return s.readBatch(w, r, enc, func(snap *master.Snapshot) interface{} {
			return machinesResponse{Machines: snap.ListMachines()}
		})
	case types.CallSubscribe:
		s.handleOperatorSubscribe(w, r, enc)
		return http.StatusOK
	default:
		return s.submitAndRespond(w, r, call, enc)
	}
}

// submitAndRespond is the shared path for every call the operator (or
// legacy form) surface hands to the master's mutation pipeline.
func (s *Server) submitAndRespond(w http.ResponseWriter, r *http.Request, call *types.Call, enc codec.Codec) int {
	result, herr := s.submit(r, call)
	if herr != nil {
		writeError(w, herr)
		return herr.status
	}
	var payload interface{} = accepted{Type: string(call.Type)}
	switch {
	case result.Operation != nil:
		payload = operationResponse{Operation: result.Operation}
	case result.Operations != nil:
		payload = operationsResponse{Operations: result.Operations}
	case result.Schedule != nil:
		payload = scheduleResponse{Schedule: result.Schedule}
	}
	status := http.StatusOK
	if fireAndForget[call.Type] && !result.AlreadyGone {
		status = http.StatusAccepted
	}
	if herr := writeEncoded(w, enc, status, payload); herr != nil {
		writeError(w, herr)
		return herr.status
	}
	return status
}

func (s *Server) readBatch(w http.ResponseWriter, r *http.Request, enc codec.Codec, fn func(*master.Snapshot) interface{}) int {
	v, err := s.batcher.Do(r.Context(), func(snap *master.Snapshot) (interface{}, error) {
		return fn(snap), nil
	})
	if err != nil {
		writeError(w, internalError("readbatch: "+err.Error()))
		return http.StatusInternalServerError
	}
	if herr := writeEncoded(w, enc, http.StatusOK, v); herr != nil {
		writeError(w, herr)
		return herr.status
	}
	return http.StatusOK
}

func (s *Server) writeOK(w http.ResponseWriter, enc codec.Codec, v interface{}) int {
	if herr := writeEncoded(w, enc, http.StatusOK, v); herr != nil {
		writeError(w, herr)
		return herr.status
	}
	return http.StatusOK
}

func (s *Server) writeAccepted(w http.ResponseWriter, enc codec.Codec, t types.CallType) int {
	if herr := writeEncoded(w, enc, http.StatusAccepted, accepted{Type: string(t)}); herr != nil {
		writeError(w, herr)
		return herr.status
	}
	return http.StatusAccepted
}
