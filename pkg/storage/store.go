package storage

import (
	"github.com/clustermaster/masterd/pkg/types"
)

// Store is the master's durable state: the maintenance graph and the set
// of agents marked gone, both written by the registrar's FSM as it
// applies committed commands, and the master's own CA material, written
// directly by pkg/security rather than through the replicated log.
// Framework and agent bookkeeping, offers, and operations live in memory
// in the actor and are rebuilt as frameworks and agents re-register
// after a failover; they are not read back from Store.
type Store interface {
	// Machines
	PutMachine(m *types.Machine) error
	GetMachine(id types.MachineID) (*types.Machine, error)
	ListMachines() ([]*types.Machine, error)
	DeleteMachine(id types.MachineID) error

	// Maintenance schedule (a single, wholesale-replaceable record)
	PutMaintenanceSchedule(s *types.MaintenanceSchedule) error
	GetMaintenanceSchedule() (*types.MaintenanceSchedule, error)

	// Agents marked gone, keyed by agent id, with the unix time of the
	// marking. Master recovery does not read these back.
	PutGoneAgent(id types.AgentID, at int64) error
	IsGoneAgent(id types.AgentID) (bool, error)
	ListGoneAgents() (map[types.AgentID]int64, error)

	// Certificate authority material backing principal extraction.
	SaveCA(data []byte) error
	GetCA() ([]byte, error)

	Close() error
}
