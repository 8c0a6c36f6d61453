package master

import (
	"github.com/clustermaster/masterd/pkg/log"
	"github.com/clustermaster/masterd/pkg/types"
)

// dispatchMarkAgentGone marks an agent permanently gone. The
// MarkingUnreachable/Removing fields guard against a transition
// arriving mid-way through one of the other destructive agent
// transitions this master will eventually model (MARK_AGENT_UNREACHABLE,
// agent removal); they are checked here for forward compatibility even
// though nothing in this tree sets them yet. There is no equivalent
// self-guard against a second concurrent MARK_AGENT_GONE for the same
// agent, because none is needed: Master.Run dispatches one Call to
// completion before taking the next off the queue, so a second call
// for the same agent can only ever be dispatched after this one has
// already returned and agent.Status is already AgentGone — it lands on
// the idempotent branch below, never mid-transition.
func (m *Master) dispatchMarkAgentGone(call *types.Call) *Result {
	if call.MarkAgentGone == nil {
		return &Result{Err: errMissingPayload(call.Type)}
	}
	id := call.MarkAgentGone.AgentID

	agent, ok := m.agents[id]
	if !ok {
		return &Result{Err: errNotFound("unknown agent " + string(id))}
	}
	if agent.Status == types.AgentGone {
		return &Result{Accepted: true, AlreadyGone: true} // already gone; idempotent
	}
	if agent.MarkingUnreachable || agent.Removing {
		return &Result{Err: errInvalidCall("agent " + string(id) + " has a conflicting transition in flight")}
	}

	for offerID := range agent.Offers {
		if offer, ok := m.offers[offerID]; ok {
			m.rescindOffer(offer)
		}
	}

	agent.Status = types.AgentGone
	agent.GoneTime = now()

	if m.registrar != nil {
		if err := m.registrar.PutGoneAgent(id, agent.GoneTime.Unix()); err != nil {
			Abort("master: registrar commit for gone agent " + string(id) + " failed: " + err.Error())
			return &Result{Err: err}
		}
	}

	agentLogger := log.WithAgentID(id)
	agentLogger.Info().Msg("agent marked gone")
	return &Result{Accepted: true}
}
