package master

import (
	"context"

	"github.com/google/uuid"

	"github.com/clustermaster/masterd/pkg/log"
	"github.com/clustermaster/masterd/pkg/types"
)

// RegisterAgent admits a new agent or re-admits a previously recovered
// one, with the given total resources. Agent registration itself rides
// a separate agent-to-master channel outside this HTTP request plane,
// so callers (the agent-facing RPC listener, or tests standing in for
// it) invoke this directly rather than through a Call.
func (m *Master) RegisterAgent(ctx context.Context, info types.AgentInfo, resources types.Resources, machineID types.MachineID) (*types.Agent, error) {
	var agent *types.Agent
	err := m.runExclusive(ctx, func() {
		if existing, ok := m.agents[info.ID]; ok {
			existing.Info = info
			existing.Status = types.AgentRegistered
			existing.Resources = resources
			agent = existing
		} else {
			agent = types.NewAgent(info)
			agent.Resources = resources
			agent.MachineID = machineID
			m.agents[info.ID] = agent
		}
		if machineID != (types.MachineID{}) {
			if machine, ok := m.machines[machineID]; ok {
				machine.Agents[info.ID] = struct{}{}
			}
		}
		agentLogger := log.WithAgentID(info.ID)
		agentLogger.Info().Str("hostname", info.Hostname).Msg("agent registered")
	})
	return agent, err
}

// CreateOffer hands a slice of an agent's free resources to a
// framework. Exported for tests and the allocator loop (not modeled
// here) that would otherwise produce offers on a timer.
func (m *Master) CreateOffer(ctx context.Context, frameworkID types.FrameworkID, agentID types.AgentID, resources types.Resources) (*types.Offer, error) {
	var offer *types.Offer
	var resultErr error
	err := m.runExclusive(ctx, func() {
		fw, ok := m.frameworks[frameworkID]
		if !ok {
			resultErr = errInvalidCall("unknown framework " + string(frameworkID))
			return
		}
		agent, ok := m.agents[agentID]
		if !ok {
			resultErr = errInvalidCall("unknown agent " + string(agentID))
			return
		}
		offer = &types.Offer{
			ID:          types.OfferID(uuid.New().String()),
			FrameworkID: frameworkID,
			AgentID:     agentID,
			Resources:   resources,
		}
		m.offers[offer.ID] = offer
		fw.Offers[offer.ID] = struct{}{}
		agent.Offers[offer.ID] = struct{}{}
	})
	if err != nil {
		return nil, err
	}
	return offer, resultErr
}
