package master

import (
	"github.com/clustermaster/masterd/pkg/log"
	"github.com/clustermaster/masterd/pkg/types"
)

// dispatchTeardown disconnects a framework, rescinding every offer it
// still holds and closing its event subscription. The framework's
// record itself is kept, inactive, so a reconnect after a crash is
// distinguishable from a first-time SUBSCRIBE.
func (m *Master) dispatchTeardown(call *types.Call) *Result {
	id := call.FrameworkID
	if call.Teardown != nil && call.Teardown.FrameworkID != "" {
		id = call.Teardown.FrameworkID
	}

	fw, ok := m.frameworks[id]
	if !ok {
		return &Result{Err: errInvalidCall("unknown framework " + string(id))}
	}

	for offerID := range fw.Offers {
		if offer, ok := m.offers[offerID]; ok {
			delete(m.offers, offerID)
			if agent, ok := m.agents[offer.AgentID]; ok {
				delete(agent.Offers, offerID)
			}
		}
	}
	fw.Offers = make(map[types.OfferID]struct{})
	fw.Active = false
	fw.Connected = false
	fw.UnregisteredAt = now()

	m.broker.Unsubscribe(id)
	fwLogger := log.WithFrameworkID(id)
	fwLogger.Info().Msg("framework torn down")

	return &Result{Accepted: true}
}
