package registrar

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/hashicorp/raft"

	"github.com/clustermaster/masterd/pkg/storage"
	"github.com/clustermaster/masterd/pkg/types"
)

// CommandOp enumerates the replicated mutations the FSM knows how to
// apply. Everything the actor needs strong consistency for — the
// maintenance graph and gone-agent markers — goes through one of these;
// offers and operations stay in the leader's memory and are never
// replicated directly.
type CommandOp string

const (
	OpPutMachine          CommandOp = "put_machine"
	OpDeleteMachine       CommandOp = "delete_machine"
	OpPutMaintenance      CommandOp = "put_maintenance"
	OpPutGoneAgent        CommandOp = "put_gone_agent"
)

// Command is the payload appended to the replicated log.
type Command struct {
	Op   CommandOp
	Data json.RawMessage
}

// FSM applies committed Commands to a storage.Store.
type FSM struct {
	store storage.Store
}

// NewFSM wraps store as a raft.FSM.
func NewFSM(store storage.Store) *FSM {
	return &FSM{store: store}
}

// Apply is invoked once per committed raft.Log entry, in log order, by
// the raft library's own goroutine.
func (f *FSM) Apply(log *raft.Log) interface{} {
	var cmd Command
	if err := json.Unmarshal(log.Data, &cmd); err != nil {
		return fmt.Errorf("fsm: decode command: %w", err)
	}

	switch cmd.Op {
	case OpPutMachine:
		var m types.Machine
		if err := json.Unmarshal(cmd.Data, &m); err != nil {
			return err
		}
		return f.store.PutMachine(&m)

	case OpDeleteMachine:
		var id types.MachineID
		if err := json.Unmarshal(cmd.Data, &id); err != nil {
			return err
		}
		return f.store.DeleteMachine(id)

	case OpPutMaintenance:
		var s types.MaintenanceSchedule
		if err := json.Unmarshal(cmd.Data, &s); err != nil {
			return err
		}
		return f.store.PutMaintenanceSchedule(&s)

	case OpPutGoneAgent:
		var payload struct {
			AgentID types.AgentID
			At      int64
		}
		if err := json.Unmarshal(cmd.Data, &payload); err != nil {
			return err
		}
		return f.store.PutGoneAgent(payload.AgentID, payload.At)

	default:
		return fmt.Errorf("fsm: unknown command op %q", cmd.Op)
	}
}

// Snapshot captures the entire store for raft's log compaction.
func (f *FSM) Snapshot() (raft.FSMSnapshot, error) {
	machines, err := f.store.ListMachines()
	if err != nil {
		return nil, err
	}
	schedule, err := f.store.GetMaintenanceSchedule()
	if err != nil {
		return nil, err
	}
	gone, err := f.store.ListGoneAgents()
	if err != nil {
		return nil, err
	}
	return &fsmSnapshot{Machines: machines, Schedule: schedule, GoneAgents: gone}, nil
}

// Restore replaces the store's contents with a previously taken
// snapshot.
func (f *FSM) Restore(rc io.ReadCloser) error {
	defer rc.Close()

	var snap fsmSnapshot
	if err := json.NewDecoder(rc).Decode(&snap); err != nil {
		return fmt.Errorf("fsm: decode snapshot: %w", err)
	}

	for _, m := range snap.Machines {
		if err := f.store.PutMachine(m); err != nil {
			return err
		}
	}
	if snap.Schedule != nil {
		if err := f.store.PutMaintenanceSchedule(snap.Schedule); err != nil {
			return err
		}
	}
	for id, at := range snap.GoneAgents {
		if err := f.store.PutGoneAgent(id, at); err != nil {
			return err
		}
	}
	return nil
}

type fsmSnapshot struct {
	Machines   []*types.Machine
	Schedule   *types.MaintenanceSchedule
	GoneAgents map[types.AgentID]int64
}

func (s *fsmSnapshot) Persist(sink raft.SnapshotSink) error {
	err := json.NewEncoder(sink).Encode(s)
	if err != nil {
		sink.Cancel()
		return err
	}
	return sink.Close()
}

func (s *fsmSnapshot) Release() {}
