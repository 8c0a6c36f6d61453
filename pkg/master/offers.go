package master

import (
	"context"

	"github.com/google/uuid"

	"github.com/clustermaster/masterd/pkg/types"
)

// dispatchAccept consumes a batch of offers and runs each attached
// operation against the agent each offer named. Offers not mentioned
// by any operation are simply released back to the agent.
func (m *Master) dispatchAccept(ctx context.Context, call *types.Call) *Result {
	if call.Accept == nil {
		return &Result{Err: errMissingPayload(call.Type)}
	}

	agentByOffer := make(map[types.OfferID]types.AgentID)
	for _, offerID := range call.Accept.OfferIDs {
		offer, ok := m.offers[offerID]
		if !ok {
			return &Result{Err: errInvalidCall("unknown offer " + string(offerID))}
		}
		if offer.FrameworkID != call.FrameworkID {
			return &Result{Err: errInvalidCall("offer " + string(offerID) + " does not belong to this framework")}
		}
		agentByOffer[offerID] = offer.AgentID
	}

	var applied []*types.Operation
	for _, info := range call.Accept.Operations {
		if err := validateOperationInfo(info); err != nil {
			return &Result{Err: err, Operations: applied}
		}

		agentID := agentIDForOperation(info, agentByOffer)
		agent, err := m.validateAgentExists(agentID)
		if err != nil {
			return &Result{Err: err, Operations: applied}
		}

		principal := ""
		if fw, ok := m.frameworks[call.FrameworkID]; ok {
			principal = fw.Info.Principal
		}
		if err := m.authorizer.Authorize(principal, info); err != nil {
			return &Result{Err: err, Operations: applied}
		}

		op := &types.Operation{
			UUID:        types.OperationID(uuid.New()),
			Info:        info,
			FrameworkID: call.FrameworkID,
			AgentID:     agentID,
			Status:      types.OperationPending,
		}
		if err := m.applyOperation(agent, op); err != nil {
			op.Status = types.OperationFailed
			m.operations[op.UUID] = op
			return &Result{Err: err, Operations: append(applied, op)}
		}
		op.Status = types.OperationFinished
		m.operations[op.UUID] = op
		agent.Operations[op.UUID] = op
		applied = append(applied, op)
	}

	m.releaseOffers(call.FrameworkID, call.Accept.OfferIDs)

	return &Result{Accepted: true, Operations: applied}
}

// agentIDForOperation resolves which agent an ACCEPT operation targets:
// the agent of the lone offer being accepted when exactly one offer is
// accepted, and "" otherwise. info is not consulted; OperationInfo
// carries no agent id.
func agentIDForOperation(info types.OperationInfo, agentByOffer map[types.OfferID]types.AgentID) types.AgentID {
	if len(agentByOffer) == 1 {
		for _, id := range agentByOffer {
			return id
		}
	}
	return ""
}

// dispatchDecline releases a batch of offers without consuming them.
func (m *Master) dispatchDecline(call *types.Call) *Result {
	if call.Decline == nil {
		return &Result{Err: errMissingPayload(call.Type)}
	}
	m.releaseOffers(call.FrameworkID, call.Decline.OfferIDs)
	return &Result{Accepted: true}
}

// releaseOffers removes a set of offers from the framework and agent
// indexes; their resources are already accounted for on the agent, so
// nothing further needs to change there.
func (m *Master) releaseOffers(frameworkID types.FrameworkID, ids []types.OfferID) {
	fw, ok := m.frameworks[frameworkID]
	for _, id := range ids {
		offer, exists := m.offers[id]
		if !exists {
			continue
		}
		delete(m.offers, id)
		if agent, ok := m.agents[offer.AgentID]; ok {
			delete(agent.Offers, id)
		}
		if ok {
			delete(fw.Offers, id)
		}
	}
}
