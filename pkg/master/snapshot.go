package master

import "github.com/clustermaster/masterd/pkg/types"

// Snapshot is a point-in-time, read-only view of the actor's state,
// valid only for the duration of the Batch call that produced it.
type Snapshot struct {
	Frameworks map[types.FrameworkID]*types.Framework
	Agents     map[types.AgentID]*types.Agent
	Offers     map[types.OfferID]*types.Offer
	Operations map[types.OperationID]*types.Operation
	Machines   map[types.MachineID]*types.Machine
	Schedule   *types.MaintenanceSchedule
	Roles      map[string]*types.RoleState
}

// snapshot copies the maps but not the records they point to, which the
// actor mutates in place, so a reader iterating Snapshot's maps never
// observes a concurrent insert or delete; the records themselves are
// only safe to read while the Batch call that produced the Snapshot is
// running.
func (m *Master) snapshot() *Snapshot {
	s := &Snapshot{
		Frameworks: make(map[types.FrameworkID]*types.Framework, len(m.frameworks)),
		Agents:     make(map[types.AgentID]*types.Agent, len(m.agents)),
		Offers:     make(map[types.OfferID]*types.Offer, len(m.offers)),
		Operations: make(map[types.OperationID]*types.Operation, len(m.operations)),
		Machines:   make(map[types.MachineID]*types.Machine, len(m.machines)),
		Schedule:   m.schedule,
		Roles:      make(map[string]*types.RoleState, len(m.roles)),
	}
	for k, v := range m.frameworks {
		s.Frameworks[k] = v
	}
	for k, v := range m.agents {
		s.Agents[k] = v
	}
	for k, v := range m.offers {
		s.Offers[k] = v
	}
	for k, v := range m.operations {
		s.Operations[k] = v
	}
	for k, v := range m.machines {
		s.Machines[k] = v
	}
	for k, v := range m.roles {
		s.Roles[k] = v
	}
	return s
}

// ListFrameworks returns every framework, for metrics and the GET_FRAMEWORKS
// operator call.
func (s *Snapshot) ListFrameworks() []*types.Framework {
	out := make([]*types.Framework, 0, len(s.Frameworks))
	for _, f := range s.Frameworks {
		out = append(out, f)
	}
	return out
}

// ListAgents returns every agent.
func (s *Snapshot) ListAgents() []*types.Agent {
	out := make([]*types.Agent, 0, len(s.Agents))
	for _, a := range s.Agents {
		out = append(out, a)
	}
	return out
}

// ListOffers returns every outstanding offer.
func (s *Snapshot) ListOffers() []*types.Offer {
	out := make([]*types.Offer, 0, len(s.Offers))
	for _, o := range s.Offers {
		out = append(out, o)
	}
	return out
}

// ListOperations returns every tracked operation.
func (s *Snapshot) ListOperations() []*types.Operation {
	out := make([]*types.Operation, 0, len(s.Operations))
	for _, op := range s.Operations {
		out = append(out, op)
	}
	return out
}

// ListMachines returns every machine in the maintenance graph.
func (s *Snapshot) ListMachines() []*types.Machine {
	out := make([]*types.Machine, 0, len(s.Machines))
	for _, mm := range s.Machines {
		out = append(out, mm)
	}
	return out
}
