// Package master implements the single-threaded actor at the center of
// the request plane: one goroutine dispatches every Call in arrival
// order against in-memory framework, agent, offer, and operation
// state, so no two mutations can race.
package master

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/clustermaster/masterd/pkg/events"
	"github.com/clustermaster/masterd/pkg/log"
	"github.com/clustermaster/masterd/pkg/registrar"
	"github.com/clustermaster/masterd/pkg/types"
)

// Abort is invoked when the actor detects a condition the real system
// would treat as fatal (a validation invariant broken by state it
// trusted, a registrar write that must not be allowed to silently
// fail). Tests replace it to observe the failure instead of crashing
// the process.
var Abort = func(reason string) { panic(reason) }

// Result is what a Call dispatch resolves its Future with. Exactly one
// of the payload fields is meaningful, selected by the Call's Type;
// Err is set instead when the call was rejected.
type Result struct {
	Accepted  bool
	Err       error
	Operation *types.Operation

	// AlreadyGone is set by MARK_AGENT_GONE's idempotent branch: the
	// agent was gone before this call arrived, so nothing changed and
	// the HTTP layer reports 200 rather than 202.
	AlreadyGone bool

	Frameworks []*types.Framework
	Agents     []*types.Agent
	Offers     []*types.Offer
	Operations []*types.Operation
	Machines   []*types.Machine
	Roles      []*types.RoleState
	Schedule   *types.MaintenanceSchedule

	StreamID types.StreamID
}

// job is the internal unit of work the actor's queue carries. Exactly
// one of call, snapshotFn, or exclusiveFn is set.
type job struct {
	call        *types.Call
	snapshotFn  func(*Snapshot)
	exclusiveFn func()
}

// Master owns every piece of leader-local state: the registered
// frameworks and agents, outstanding offers and operations, and the
// maintenance graph mirrored from the registrar. Reads and writes both
// flow through the single actor goroutine started by Run.
type Master struct {
	nodeID    string
	registrar *registrar.Registrar
	broker    *events.Broker

	mailbox *mailbox

	mu sync.RWMutex // guards maps below from non-actor goroutines (tests, metrics collector)

	frameworks map[types.FrameworkID]*types.Framework
	agents     map[types.AgentID]*types.Agent
	offers     map[types.OfferID]*types.Offer
	operations map[types.OperationID]*types.Operation
	machines   map[types.MachineID]*types.Machine
	schedule   *types.MaintenanceSchedule
	roles      map[string]*types.RoleState

	recovered bool // true once this leader has finished replaying registrar state

	authorizer Authorizer

	stopCh chan struct{}
	doneCh chan struct{}
}

// Config configures a Master.
type Config struct {
	NodeID     string
	Registrar  *registrar.Registrar
	Broker     *events.Broker
	QueueDepth int

	// Authorizer is the capability oracle the mutating-operation
	// pipeline and the role/weight/quota surface authorize against. A
	// nil Authorizer defaults to the request plane's own minimum
	// principal-ownership check.
	Authorizer Authorizer
}

// New creates a Master. It does not start the actor loop; call Run.
func New(cfg Config) *Master {
	depth := cfg.QueueDepth
	if depth <= 0 {
		depth = 1024
	}
	authorizer := cfg.Authorizer
	if authorizer == nil {
		authorizer = principalAuthorizer{}
	}
	return &Master{
		nodeID:     cfg.NodeID,
		registrar:  cfg.Registrar,
		broker:     cfg.Broker,
		authorizer: authorizer,
		mailbox:    newMailbox(depth),
		frameworks: make(map[types.FrameworkID]*types.Framework),
		agents:     make(map[types.AgentID]*types.Agent),
		offers:     make(map[types.OfferID]*types.Offer),
		operations: make(map[types.OperationID]*types.Operation),
		machines:   make(map[types.MachineID]*types.Machine),
		schedule:   &types.MaintenanceSchedule{},
		roles:      make(map[string]*types.RoleState),
		stopCh:     make(chan struct{}),
		doneCh:     make(chan struct{}),
	}
}

// Run starts the actor loop and blocks the calling goroutine; callers
// invoke it with `go`. Recover replays the registrar's durable state
// before the loop begins accepting calls.
func (m *Master) Run(ctx context.Context) {
	defer close(m.doneCh)

	if err := m.recover(); err != nil {
		log.Errorf("master: recover from registrar failed", err)
	}

	for {
		item, ok := m.mailbox.get(ctx)
		if !ok {
			return
		}
		j := item.value
		if j.snapshotFn != nil {
			j.snapshotFn(m.snapshot())
			item.future.resolve(nil)
			continue
		}
		if j.exclusiveFn != nil {
			j.exclusiveFn()
			item.future.resolve(nil)
			continue
		}
		result := m.dispatch(ctx, j.call)
		item.future.resolve(result)

		select {
		case <-m.stopCh:
			return
		default:
		}
	}
}

// Stop asks the actor loop to exit after finishing its current item,
// and waits for it to do so.
func (m *Master) Stop() {
	close(m.stopCh)
	m.mailbox.close()
	<-m.doneCh
}

// Submit enqueues call for dispatch and blocks until the actor has
// processed it, returning its Result.
func (m *Master) Submit(ctx context.Context, call *types.Call) (*Result, error) {
	future, err := m.mailbox.put(ctx, job{call: call})
	if err != nil {
		return nil, fmt.Errorf("master: submit: %w", err)
	}
	v, err := future.wait(ctx)
	if err != nil {
		return nil, err
	}
	return v.(*Result), nil
}

// Batch hands fn a point-in-time Snapshot while the actor loop is
// blocked servicing no other call, then resumes normal dispatch. Used
// by the read-batching scheduler to run many concurrent read-only
// queries without racing a mutation.
func (m *Master) Batch(ctx context.Context, fn func(*Snapshot)) error {
	future, err := m.mailbox.put(ctx, job{snapshotFn: fn})
	if err != nil {
		return fmt.Errorf("master: batch: %w", err)
	}
	_, err = future.wait(ctx)
	return err
}

// runExclusive runs fn on the actor goroutine with exclusive access to
// the state maps, and blocks until it has finished. It backs agent
// registration and other mutations that arrive outside the Call
// protocol (the agent-to-master registration channel is out of scope
// for this HTTP request plane).
func (m *Master) runExclusive(ctx context.Context, fn func()) error {
	future, err := m.mailbox.put(ctx, job{exclusiveFn: fn})
	if err != nil {
		return fmt.Errorf("master: runExclusive: %w", err)
	}
	_, err = future.wait(ctx)
	return err
}

// IsLeader reports whether this node currently holds raft leadership.
func (m *Master) IsLeader() bool { return m.registrar != nil && m.registrar.IsLeader() }

// LeaderAddress returns the raft bind address of the current leader, if
// known. The HTTP layer uses this to build a redirect target; an empty
// result means no leader is currently known.
func (m *Master) LeaderAddress() string {
	if m.registrar == nil {
		return ""
	}
	return m.registrar.LeaderAddress()
}

// Broker returns the event broker backing scheduler subscriptions. The
// HTTP layer subscribes and unsubscribes directly against it; the
// broker's own locking makes this safe to call from outside the actor
// goroutine.
func (m *Master) Broker() *events.Broker { return m.broker }

// NodeID returns this master's raft node identifier.
func (m *Master) NodeID() string { return m.nodeID }

// Authorizer returns the capability oracle backing this master's
// mutating-operation pipeline and role/weight/quota surface. Safe to
// call concurrently with the actor loop: the Authorizer contract
// requires it never touch actor-owned state.
func (m *Master) Authorizer() Authorizer { return m.authorizer }

// Recovered reports whether this leader has finished replaying
// registrar state and is accepting calls normally. The HTTP layer
// rejects mutating calls with 503 while this is false.
func (m *Master) Recovered() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.recovered
}

func (m *Master) dispatch(ctx context.Context, call *types.Call) *Result {
	if op, ok := call.Type.OperationType(); ok {
		return m.dispatchOperation(ctx, call, op)
	}

	switch call.Type {
	case types.CallSubscribe:
		return m.dispatchSubscribe(call)
	case types.CallTeardown:
		return m.dispatchTeardown(call)
	case types.CallAccept:
		return m.dispatchAccept(ctx, call)
	case types.CallDecline:
		return m.dispatchDecline(call)
	case types.CallKill, types.CallAcknowledge, types.CallReconcile, types.CallMessage,
		types.CallRevive, types.CallSuppress, types.CallShutdown, types.CallRequest,
		types.CallAcceptInverseOffers, types.CallDeclineInverseOffers, types.CallReconcileOperations:
		return &Result{Err: fmt.Errorf("master: %s is part of the task/executor surface, which this master does not model", call.Type)}
	case types.CallUpdateMaintenanceSchedule:
		return m.dispatchUpdateMaintenanceSchedule(call)
	case types.CallStartMaintenance:
		return m.dispatchStartMaintenance(call)
	case types.CallStopMaintenance:
		return m.dispatchStopMaintenance(call)
	case types.CallMarkAgentGone:
		return m.dispatchMarkAgentGone(call)
	case types.CallUpdateWeights:
		return m.dispatchUpdateWeights(call)
	case types.CallSetQuota, types.CallUpdateQuota:
		return m.dispatchSetQuota(call)
	case types.CallRemoveQuota:
		return m.dispatchRemoveQuota(call)
	default:
		return &Result{Err: fmt.Errorf("master: unsupported call type %s", call.Type)}
	}
}

// now is overridden in tests that need deterministic timestamps.
var now = time.Now
