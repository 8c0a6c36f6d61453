package master

import (
	"context"

	"github.com/google/uuid"

	"github.com/clustermaster/masterd/pkg/events"
	"github.com/clustermaster/masterd/pkg/log"
	"github.com/clustermaster/masterd/pkg/types"
)

// operationInfoFromCall extracts the OperationInfo and target agent id
// from whichever typed payload call carries.
func operationInfoFromCall(call *types.Call, op types.OperationType) (types.AgentID, types.OperationInfo) {
	switch op {
	case types.OpReserve:
		d := call.ReserveResources
		return d.AgentID, types.OperationInfo{Type: op, Resources: d.Resources}
	case types.OpUnreserve:
		d := call.UnreserveResources
		return d.AgentID, types.OperationInfo{Type: op, Resources: d.Resources}
	case types.OpCreateVolumes:
		d := call.CreateVolumes
		return d.AgentID, types.OperationInfo{Type: op, Volumes: d.Volumes}
	case types.OpDestroyVolumes:
		d := call.DestroyVolumes
		return d.AgentID, types.OperationInfo{Type: op, Volumes: d.Volumes}
	case types.OpGrowVolume:
		d := call.GrowVolume
		return d.AgentID, types.OperationInfo{Type: op, Volume: d.Volume, Addition: d.Addition}
	case types.OpShrinkVolume:
		d := call.ShrinkVolume
		return d.AgentID, types.OperationInfo{Type: op, Volume: d.Volume, Addition: d.Subtract}
	default:
		return "", types.OperationInfo{}
	}
}

// dispatchOperation runs the validate -> authorize -> rescind -> apply
// pipeline shared by RESERVE, UNRESERVE, CREATE_VOLUMES,
// DESTROY_VOLUMES, GROW_VOLUME, and SHRINK_VOLUME.
func (m *Master) dispatchOperation(ctx context.Context, call *types.Call, op types.OperationType) *Result {
	agentID, info := operationInfoFromCall(call, op)
	if agentID == "" {
		return &Result{Err: errMissingPayload(call.Type)}
	}

	if err := validateOperationInfo(info); err != nil {
		return &Result{Err: err}
	}

	agent, err := m.validateAgentExists(agentID)
	if err != nil {
		return &Result{Err: err}
	}

	principal := ""
	if fw, ok := m.frameworks[call.FrameworkID]; ok {
		principal = fw.Info.Principal
	}
	if err := m.authorizer.Authorize(principal, info); err != nil {
		return &Result{Err: err}
	}

	if err := m.rescindUntilCovered(agent, info); err != nil {
		return &Result{Err: err}
	}

	operation := &types.Operation{
		UUID:        types.OperationID(uuid.New()),
		Info:        info,
		FrameworkID: call.FrameworkID,
		AgentID:     agentID,
		Status:      types.OperationPending,
	}

	if err := m.applyOperation(agent, operation); err != nil {
		operation.Status = types.OperationFailed
		m.operations[operation.UUID] = operation
		return &Result{Err: err, Operation: operation}
	}

	operation.Status = types.OperationFinished
	m.operations[operation.UUID] = operation
	agent.Operations[operation.UUID] = operation

	agentLogger := log.WithAgentID(agentID)
	agentLogger.Info().
		Str("operation", string(op)).
		Str("operation_id", operation.UUID.String()).
		Msg("operation applied")

	return &Result{Accepted: true, Operation: operation}
}

// requiredResources is the resource vector an operation needs free on
// the agent before it can be applied, one definition per operation
// kind: RESERVE needs the resources minus one reservation level;
// UNRESERVE needs the resources as given; CREATE_VOLUMES needs the
// volumes with disk info stripped; DESTROY_VOLUMES needs the volumes
// as given; GROW_VOLUME needs the old volume plus the addition;
// SHRINK_VOLUME needs the old volume.
func requiredResources(info types.OperationInfo) types.Resources {
	switch info.Type {
	case types.OpReserve:
		return info.Resources.Unreserved()
	case types.OpUnreserve:
		return info.Resources
	case types.OpCreateVolumes:
		var total types.Resources
		for _, v := range info.Volumes {
			total = total.Add(v.StrippedOfVolume())
		}
		return total
	case types.OpDestroyVolumes:
		var total types.Resources
		for _, v := range info.Volumes {
			total = total.Add(v)
		}
		return total
	case types.OpGrowVolume:
		return info.Volume.Add(info.Addition)
	case types.OpShrinkVolume:
		return info.Volume
	default:
		return types.Resources{}
	}
}

// isZero reports whether every resource dimension rescindUntilCovered
// tracks is exhausted.
func isZero(r types.Resources) bool {
	return r.CPUs == 0 && r.Mem == 0 && r.Disk == 0
}

// sameAmount reports whether a and b carry the same CPU/mem/disk
// amounts, ignoring reservation and volume metadata. Used to detect an
// offer that carries none of what an operation still needs.
func sameAmount(a, b types.Resources) bool {
	return a.CPUs == b.CPUs && a.Mem == b.Mem && a.Disk == b.Disk
}

// rescindUntilCovered walks the agent's outstanding offers in
// arbitrary order. remaining tracks the gap between what the
// operation requires and what is already free on the agent; an offer
// that would not close any of that gap is left alone, since rescinding
// it buys nothing. Otherwise it is rescinded (removed from master
// state, with a RESCIND event sent to the owning framework, and
// credited against remaining; no refuse filter is recorded for it), and
// rescinding stops as soon as
// remaining reaches zero — the point at which the agent's recovered
// total can satisfy the operation.
func (m *Master) rescindUntilCovered(agent *types.Agent, info types.OperationInfo) error {
	required := requiredResources(info)
	free := agent.Resources.Sub(agent.UsedResources)
	remaining := required.Sub(free)
	if isZero(remaining) {
		return nil
	}

	for offerID := range agent.Offers {
		offer, ok := m.offers[offerID]
		if !ok {
			continue
		}
		reduced := remaining.Sub(offer.Resources)
		if sameAmount(reduced, remaining) {
			continue
		}
		m.rescindOffer(offer)
		remaining = reduced
		if isZero(remaining) {
			return nil
		}
	}

	return errInvalidCall("agent does not have enough free resources, even after rescinding outstanding offers")
}

// rescindOffer revokes a single offer: it is deleted from the master's,
// the agent's, and the framework's offer sets, and the owning framework
// is sent a RESCIND event. The agent's free resources are computed from
// Resources and UsedResources alone, so they do not change.
func (m *Master) rescindOffer(offer *types.Offer) {
	delete(m.offers, offer.ID)
	if agent, ok := m.agents[offer.AgentID]; ok {
		delete(agent.Offers, offer.ID)
	}
	if fw, ok := m.frameworks[offer.FrameworkID]; ok {
		delete(fw.Offers, offer.ID)
		m.broker.Send(fw.ID, &events.Event{Type: events.EventRescind, Timestamp: now(), Payload: offer.ID})
	}
}

// applyOperation mutates the agent's resource bookkeeping to reflect a
// validated, authorized operation.
func (m *Master) applyOperation(agent *types.Agent, operation *types.Operation) error {
	info := operation.Info
	switch info.Type {
	case types.OpReserve:
		agent.Resources = agent.Resources.Add(info.Resources)
	case types.OpUnreserve:
		agent.Resources = agent.Resources.Sub(info.Resources.Unreserved())
	case types.OpCreateVolumes:
		for _, v := range info.Volumes {
			agent.Resources = agent.Resources.Add(v)
		}
	case types.OpDestroyVolumes:
		for _, v := range info.Volumes {
			agent.Resources = agent.Resources.Sub(v.StrippedOfVolume())
		}
	case types.OpGrowVolume:
		agent.Resources = agent.Resources.Add(info.Addition)
	case types.OpShrinkVolume:
		agent.Resources = agent.Resources.Sub(info.Addition)
	default:
		return errInvalidCall("unknown operation type " + string(info.Type))
	}
	return nil
}
