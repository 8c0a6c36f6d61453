// Package registrar wraps a Raft-replicated log over the durable
// maintenance graph and gone-agent markers. Every transition the actor
// must survive a restart is committed here before it takes effect.
package registrar

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/raft"
	raftboltdb "github.com/hashicorp/raft-boltdb"

	"github.com/clustermaster/masterd/pkg/storage"
	"github.com/clustermaster/masterd/pkg/types"
)

// Config configures a Registrar.
type Config struct {
	NodeID   string
	BindAddr string
	DataDir  string
}

// Registrar owns a raft.Raft instance and the Store its FSM applies
// committed commands to.
type Registrar struct {
	nodeID   string
	bindAddr string
	dataDir  string

	raft  *raft.Raft
	fsm   *FSM
	store storage.Store
}

// New creates a Registrar backed by a fresh BoltDB store under
// cfg.DataDir. Bootstrap or Join must be called before it is usable.
func New(cfg Config) (*Registrar, error) {
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("registrar: create data dir: %w", err)
	}

	store, err := storage.NewBoltStore(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("registrar: open store: %w", err)
	}

	return &Registrar{
		nodeID:   cfg.NodeID,
		bindAddr: cfg.BindAddr,
		dataDir:  cfg.DataDir,
		fsm:      NewFSM(store),
		store:    store,
	}, nil
}

// Store returns the registrar's underlying Store, for read paths that
// bypass the replicated log.
func (r *Registrar) Store() storage.Store { return r.store }

func raftConfig(nodeID string) *raft.Config {
	cfg := raft.DefaultConfig()
	cfg.LocalID = raft.ServerID(nodeID)

	// Tuned for LAN/edge deployment rather than raft's WAN-conservative
	// defaults, targeting sub-10s leader failover.
	cfg.HeartbeatTimeout = 500 * time.Millisecond
	cfg.ElectionTimeout = 500 * time.Millisecond
	cfg.CommitTimeout = 50 * time.Millisecond
	cfg.LeaderLeaseTimeout = 250 * time.Millisecond
	return cfg
}

func (r *Registrar) newRaft() (*raft.Raft, *raft.NetworkTransport, error) {
	addr, err := net.ResolveTCPAddr("tcp", r.bindAddr)
	if err != nil {
		return nil, nil, fmt.Errorf("registrar: resolve bind address: %w", err)
	}
	transport, err := raft.NewTCPTransport(r.bindAddr, addr, 3, 10*time.Second, os.Stderr)
	if err != nil {
		return nil, nil, fmt.Errorf("registrar: create transport: %w", err)
	}
	snapshotStore, err := raft.NewFileSnapshotStore(r.dataDir, 2, os.Stderr)
	if err != nil {
		return nil, nil, fmt.Errorf("registrar: create snapshot store: %w", err)
	}
	logStore, err := raftboltdb.NewBoltStore(filepath.Join(r.dataDir, "raft-log.db"))
	if err != nil {
		return nil, nil, fmt.Errorf("registrar: create log store: %w", err)
	}
	stableStore, err := raftboltdb.NewBoltStore(filepath.Join(r.dataDir, "raft-stable.db"))
	if err != nil {
		return nil, nil, fmt.Errorf("registrar: create stable store: %w", err)
	}

	rf, err := raft.NewRaft(raftConfig(r.nodeID), r.fsm, logStore, stableStore, snapshotStore, transport)
	if err != nil {
		return nil, nil, fmt.Errorf("registrar: create raft: %w", err)
	}
	return rf, transport, nil
}

// Bootstrap starts a brand new single-node cluster with this node as its
// only voter.
func (r *Registrar) Bootstrap() error {
	rf, transport, err := r.newRaft()
	if err != nil {
		return err
	}
	r.raft = rf

	cfg := raft.Configuration{Servers: []raft.Server{
		{ID: raft.ServerID(r.nodeID), Address: transport.LocalAddr()},
	}}
	if err := r.raft.BootstrapCluster(cfg).Error(); err != nil {
		return fmt.Errorf("registrar: bootstrap cluster: %w", err)
	}
	return nil
}

// Join starts raft for this node and waits to be added as a voter by the
// existing leader; the caller is responsible for getting this node's
// (nodeID, bindAddr) to the leader out of band and invoking AddVoter
// there — typically over the very HTTP surface this registrar backs.
func (r *Registrar) Join() error {
	rf, _, err := r.newRaft()
	if err != nil {
		return err
	}
	r.raft = rf
	return nil
}

// AddVoter adds a new server to the cluster. Only the leader can do
// this; raft itself rejects the call otherwise.
func (r *Registrar) AddVoter(nodeID, address string) error {
	if r.raft == nil {
		return fmt.Errorf("registrar: raft not initialized")
	}
	future := r.raft.AddVoter(raft.ServerID(nodeID), raft.ServerAddress(address), 0, 10*time.Second)
	return future.Error()
}

// RemoveServer removes a server from the cluster.
func (r *Registrar) RemoveServer(nodeID string) error {
	if r.raft == nil {
		return fmt.Errorf("registrar: raft not initialized")
	}
	future := r.raft.RemoveServer(raft.ServerID(nodeID), 0, 10*time.Second)
	return future.Error()
}

// IsLeader reports whether this node currently holds leadership.
func (r *Registrar) IsLeader() bool {
	return r.raft != nil && r.raft.State() == raft.Leader
}

// LeaderAddress returns the current leader's raft bind address, if
// known.
func (r *Registrar) LeaderAddress() string {
	if r.raft == nil {
		return ""
	}
	addr, _ := r.raft.LeaderWithID()
	return string(addr)
}

// apply submits a Command to the replicated log and blocks until it is
// committed and applied, returning the FSM's Apply return value wrapped
// as an error, if it was one.
func (r *Registrar) apply(op CommandOp, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("registrar: encode command: %w", err)
	}
	cmd := Command{Op: op, Data: payload}
	b, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("registrar: encode command envelope: %w", err)
	}

	future := r.raft.Apply(b, 5*time.Second)
	if err := future.Error(); err != nil {
		return fmt.Errorf("registrar: apply: %w", err)
	}
	if resp := future.Response(); resp != nil {
		if err, ok := resp.(error); ok && err != nil {
			return fmt.Errorf("registrar: fsm apply: %w", err)
		}
	}
	return nil
}

// PutMachine replicates an upsert of a machine record.
func (r *Registrar) PutMachine(m *types.Machine) error {
	return r.apply(OpPutMachine, m)
}

// DeleteMachine replicates the removal of a machine record.
func (r *Registrar) DeleteMachine(id types.MachineID) error {
	return r.apply(OpDeleteMachine, id)
}

// PutMaintenanceSchedule replicates a wholesale replacement of the
// maintenance schedule.
func (r *Registrar) PutMaintenanceSchedule(s *types.MaintenanceSchedule) error {
	return r.apply(OpPutMaintenance, s)
}

// PutGoneAgent replicates a gone-agent marking.
func (r *Registrar) PutGoneAgent(id types.AgentID, at int64) error {
	return r.apply(OpPutGoneAgent, struct {
		AgentID types.AgentID
		At      int64
	}{id, at})
}

// Stats exposes raft's internal counters (last_log_index,
// applied_index, term, and so on) for the metrics collector.
func (r *Registrar) Stats() map[string]string {
	if r.raft == nil {
		return nil
	}
	return r.raft.Stats()
}

// NumPeers returns the number of voters in the current raft
// configuration, including this node.
func (r *Registrar) NumPeers() int {
	if r.raft == nil {
		return 0
	}
	future := r.raft.GetConfiguration()
	if err := future.Error(); err != nil {
		return 0
	}
	return len(future.Configuration().Servers)
}

// Shutdown stops raft and closes the underlying store.
func (r *Registrar) Shutdown() error {
	if r.raft != nil {
		if err := r.raft.Shutdown().Error(); err != nil {
			return fmt.Errorf("registrar: raft shutdown: %w", err)
		}
	}
	return r.store.Close()
}
