package httpapi

import (
	"net/http"

	"github.com/clustermaster/masterd/pkg/codec"
	"github.com/clustermaster/masterd/pkg/types"
)

// accepted is the body of a 202 response to a mutating call that the
// master queued but does not otherwise echo data back for.
type accepted struct {
	Type string `json:"type"`
}

type agentsResponse struct {
	Agents []*types.Agent `json:"agents"`
}

type frameworksResponse struct {
	Frameworks []*types.Framework `json:"frameworks"`
}

type offersResponse struct {
	Offers []*types.Offer `json:"offers"`
}

type operationsResponse struct {
	Operations []*types.Operation `json:"operations"`
}

type operationResponse struct {
	Operation *types.Operation `json:"operation"`
}

type machinesResponse struct {
	Machines []*types.Machine `json:"machines"`
}

type rolesResponse struct {
	Roles []*types.RoleState `json:"roles"`
}

type scheduleResponse struct {
	Schedule *types.MaintenanceSchedule `json:"schedule"`
}

type stateResponse struct {
	Frameworks []*types.Framework `json:"frameworks"`
	Agents     []*types.Agent     `json:"agents"`
	Offers     []*types.Offer     `json:"offers"`
	Operations []*types.Operation `json:"operations"`
}

type subscribedResponse struct {
	StreamID string `json:"stream_id"`
}

// writeEncoded encodes v with enc and writes it with status, setting
// Content-Type from the codec's own media type.
func writeEncoded(w http.ResponseWriter, enc codec.Codec, status int, v interface{}) *httpError {
	b, err := enc.Encode(v)
	if err != nil {
		return internalError("encode response: " + err.Error())
	}
	w.Header().Set("Content-Type", string(enc.MediaType()))
	w.WriteHeader(status)
	_, _ = w.Write(b)
	return nil
}
