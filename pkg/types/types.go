package types

import (
	"time"

	"github.com/google/uuid"
)

// StreamID identifies a live scheduler subscription. Minted at SUBSCRIBE,
// rotated on re-subscription, discarded on teardown.
type StreamID uuid.UUID

// NewStreamID mints a new random stream identifier.
func NewStreamID() StreamID {
	return StreamID(uuid.New())
}

func (s StreamID) String() string {
	return uuid.UUID(s).String()
}

// ParseStreamID parses a stream id previously rendered by String.
func ParseStreamID(s string) (StreamID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return StreamID{}, err
	}
	return StreamID(id), nil
}

// FrameworkID is the durable identity of a registered scheduler.
type FrameworkID string

// AgentID is the durable identity of a cluster agent.
type AgentID string

// OfferID identifies a single outstanding resource offer.
type OfferID string

// OperationID identifies a durable mutating operation on agent resources.
type OperationID uuid.UUID

func (o OperationID) String() string { return uuid.UUID(o).String() }

// MachineID identifies a physical or virtual host participating in the
// maintenance schedule. Hostname and IP together, so a machine can be
// named even before it has ever registered an agent.
type MachineID struct {
	Hostname string
	IP       string
}

func (m MachineID) String() string {
	if m.IP == "" {
		return m.Hostname
	}
	return m.Hostname + "@" + m.IP
}

// PortRange is an inclusive [Begin, End] range of port numbers.
type PortRange struct {
	Begin uint64
	End   uint64
}

// Resources is a coarse stand-in for the resource-vector algebra the
// allocator owns. The request plane only needs to add, subtract, and
// compare vectors when rescinding offers and applying operations; it does
// not need to understand individual resource-type semantics.
type Resources struct {
	CPUs  float64
	Mem   float64
	Disk  float64
	Ports []PortRange

	// Reservation. An empty Role means unreserved.
	Role      string
	Principal string

	// Persistent-volume marker; DiskID identifies the backing disk.
	IsVolume bool
	DiskID   string
}

// Add returns the element-wise sum of two resource vectors.
func (r Resources) Add(o Resources) Resources {
	r.CPUs += o.CPUs
	r.Mem += o.Mem
	r.Disk += o.Disk
	return r
}

// Sub returns the element-wise difference, clamped at zero per dimension.
func (r Resources) Sub(o Resources) Resources {
	r.CPUs = nonNeg(r.CPUs - o.CPUs)
	r.Mem = nonNeg(r.Mem - o.Mem)
	r.Disk = nonNeg(r.Disk - o.Disk)
	return r
}

func nonNeg(f float64) float64 {
	if f < 0 {
		return 0
	}
	return f
}

// Covers reports whether r contains at least as much of every dimension as
// need, the test the rescind loop uses to decide when it can stop
// recovering offers.
func (r Resources) Covers(need Resources) bool {
	return r.CPUs >= need.CPUs && r.Mem >= need.Mem && r.Disk >= need.Disk
}

// Unreserved strips reservation metadata, used when computing the
// resources a RESERVE rescind must recover.
func (r Resources) Unreserved() Resources {
	r.Role = ""
	r.Principal = ""
	return r
}

// StrippedOfVolume returns r with persistent-volume metadata removed, used
// when computing the resources a CREATE_VOLUMES rescind must recover.
func (r Resources) StrippedOfVolume() Resources {
	r.IsVolume = false
	r.DiskID = ""
	return r
}

// FrameworkInfo is the subset of scheduler-declared identity the master
// cares about for validation and authorization.
type FrameworkInfo struct {
	ID           FrameworkID
	Name         string
	Principal    string
	Roles        []string
	Capabilities []string
}

// Framework is the master's per-scheduler bookkeeping record.
type Framework struct {
	ID        FrameworkID
	Info      FrameworkInfo
	Active    bool
	Connected bool // has a live HTTP subscription
	Recovered bool // reconstructed from the registrar, not yet re-subscribed

	StreamID StreamID

	RegisteredAt   time.Time
	ReregisteredAt time.Time
	UnregisteredAt time.Time

	Offers        map[OfferID]struct{}
	InverseOffers map[OfferID]struct{}
}

// NewFramework builds a Framework record in its initial, disconnected
// state.
func NewFramework(info FrameworkInfo) *Framework {
	return &Framework{
		ID:            info.ID,
		Info:          info,
		Offers:        make(map[OfferID]struct{}),
		InverseOffers: make(map[OfferID]struct{}),
	}
}

// AgentStatus is the mutually exclusive lifecycle state of an Agent.
type AgentStatus string

const (
	AgentRegistered  AgentStatus = "registered"
	AgentRecovered   AgentStatus = "recovered"
	AgentUnreachable AgentStatus = "unreachable"
	AgentGone        AgentStatus = "gone"
	AgentUnknown     AgentStatus = "unknown"
)

// AgentInfo is the subset of agent-declared identity relevant to the
// request plane.
type AgentInfo struct {
	ID       AgentID
	Hostname string
	Address  string // host:port of the agent's own RPC endpoint
}

// Agent is the master's per-agent bookkeeping record.
type Agent struct {
	ID     AgentID
	Info   AgentInfo
	Status AgentStatus

	Capabilities []string

	Resources             Resources
	CheckpointedResources Resources
	UsedResources         Resources

	Operations map[OperationID]*Operation
	Offers     map[OfferID]struct{}

	MachineID MachineID

	// MarkingUnreachable/Removing guard against a destructive agent
	// transition landing mid-way through another one.
	MarkingUnreachable bool
	Removing           bool
	GoneTime           time.Time
}

// NewAgent builds an Agent record in its initial registered state.
func NewAgent(info AgentInfo) *Agent {
	return &Agent{
		ID:         info.ID,
		Info:       info,
		Status:     AgentRegistered,
		Operations: make(map[OperationID]*Operation),
		Offers:     make(map[OfferID]struct{}),
	}
}

// Offer is an outstanding, revocable allocation of agent resources to a
// framework.
type Offer struct {
	ID          OfferID
	FrameworkID FrameworkID
	AgentID     AgentID
	Resources   Resources
}

// OperationType enumerates the mutating operation kinds the pipeline
// accepts.
type OperationType string

const (
	OpReserve        OperationType = "RESERVE"
	OpUnreserve      OperationType = "UNRESERVE"
	OpCreateVolumes  OperationType = "CREATE_VOLUMES"
	OpDestroyVolumes OperationType = "DESTROY_VOLUMES"
	OpGrowVolume     OperationType = "GROW_VOLUME"
	OpShrinkVolume   OperationType = "SHRINK_VOLUME"
)

// OperationStatusState is the terminal/non-terminal status of an
// Operation.
type OperationStatusState string

const (
	OperationPending  OperationStatusState = "OPERATION_PENDING"
	OperationFinished OperationStatusState = "OPERATION_FINISHED"
	OperationFailed   OperationStatusState = "OPERATION_FAILED"
	OperationError    OperationStatusState = "OPERATION_ERROR"
)

// OperationInfo carries an operation's type and its type-specific
// payload. Only the fields relevant to Type are meaningful.
type OperationInfo struct {
	Type OperationType

	// RESERVE / UNRESERVE
	Resources Resources

	// CREATE_VOLUMES / DESTROY_VOLUMES
	Volumes []Resources

	// GROW_VOLUME / SHRINK_VOLUME
	Volume   Resources
	Addition Resources // GROW_VOLUME: amount added; SHRINK_VOLUME: amount removed
}

// Operation is a durable, id-bearing mutating intent on agent resources.
type Operation struct {
	UUID        OperationID
	Info        OperationInfo
	FrameworkID FrameworkID // empty if operator-initiated
	AgentID     AgentID
	Status      OperationStatusState
}

// MachineMode is a machine's position in the maintenance state machine.
// Machines never named in a schedule are implicitly "unknown" and are not
// tracked as a Machine record at all.
type MachineMode string

const (
	MachineUp       MachineMode = "UP"
	MachineDraining MachineMode = "DRAINING"
	MachineDown     MachineMode = "DOWN"
)

// Unavailability describes a single planned maintenance window. A zero
// Duration means the window is unbounded.
type Unavailability struct {
	Start    time.Time
	Duration time.Duration
}

// Machine is a node in the maintenance graph.
type Machine struct {
	ID             MachineID
	Mode           MachineMode
	Unavailability Unavailability
	Agents         map[AgentID]struct{}
}

// NewMachine builds a Machine entering DRAINING, the mode a machine takes
// the instant it is named in a posted schedule.
func NewMachine(id MachineID) *Machine {
	return &Machine{ID: id, Mode: MachineDraining, Agents: make(map[AgentID]struct{})}
}

// MaintenanceWindow is one entry of a maintenance schedule: a set of
// machines sharing a single unavailability window.
type MaintenanceWindow struct {
	Machines       []MachineID
	Unavailability Unavailability
}

// MaintenanceSchedule is the wholesale-replaceable maintenance plan.
type MaintenanceSchedule struct {
	Windows []MaintenanceWindow
}

// RoleState is the structural, non-scheduling bookkeeping for a role's
// weight and quota, serving the GET_ROLES/GET_WEIGHTS/GET_QUOTA read
// views.
type RoleState struct {
	Name   string
	Weight float64
	Quota  Resources
}
