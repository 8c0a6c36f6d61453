package types

// CallType enumerates every Call variant the request plane can dispatch,
// across both the scheduler and operator surfaces.
type CallType string

const (
	CallUnknown CallType = "UNKNOWN"

	// Scheduler calls.
	CallSubscribe              CallType = "SUBSCRIBE"
	CallTeardown               CallType = "TEARDOWN"
	CallAccept                 CallType = "ACCEPT"
	CallDecline                CallType = "DECLINE"
	CallAcceptInverseOffers    CallType = "ACCEPT_INVERSE_OFFERS"
	CallDeclineInverseOffers   CallType = "DECLINE_INVERSE_OFFERS"
	CallRevive                 CallType = "REVIVE"
	CallSuppress               CallType = "SUPPRESS"
	CallKill                   CallType = "KILL"
	CallShutdown               CallType = "SHUTDOWN"
	CallAcknowledge            CallType = "ACKNOWLEDGE"
	CallAcknowledgeOperationStatus CallType = "ACKNOWLEDGE_OPERATION_STATUS"
	CallReconcile              CallType = "RECONCILE"
	CallReconcileOperations    CallType = "RECONCILE_OPERATIONS"
	CallMessage                CallType = "MESSAGE"
	CallRequest                CallType = "REQUEST"

	// Mutating resource operations, reachable from both surfaces.
	CallReserveResources   CallType = "RESERVE_RESOURCES"
	CallUnreserveResources CallType = "UNRESERVE_RESOURCES"
	CallCreateVolumes      CallType = "CREATE_VOLUMES"
	CallDestroyVolumes     CallType = "DESTROY_VOLUMES"
	CallGrowVolume         CallType = "GROW_VOLUME"
	CallShrinkVolume       CallType = "SHRINK_VOLUME"

	// Operator read calls.
	CallGetHealth            CallType = "GET_HEALTH"
	CallGetFlags             CallType = "GET_FLAGS"
	CallGetVersion           CallType = "GET_VERSION"
	CallGetMetrics           CallType = "GET_METRICS"
	CallGetLoggingLevel      CallType = "GET_LOGGING_LEVEL"
	CallSetLoggingLevel      CallType = "SET_LOGGING_LEVEL"
	CallGetMaster            CallType = "GET_MASTER"
	CallGetAgents            CallType = "GET_AGENTS"
	CallGetFrameworks        CallType = "GET_FRAMEWORKS"
	CallGetExecutors         CallType = "GET_EXECUTORS"
	CallGetTasks             CallType = "GET_TASKS"
	CallGetState             CallType = "GET_STATE"
	CallGetOperations        CallType = "GET_OPERATIONS"
	CallGetRoles             CallType = "GET_ROLES"
	CallGetWeights           CallType = "GET_WEIGHTS"
	CallUpdateWeights        CallType = "UPDATE_WEIGHTS"
	CallGetQuota             CallType = "GET_QUOTA"
	CallSetQuota             CallType = "SET_QUOTA"
	CallUpdateQuota          CallType = "UPDATE_QUOTA"
	CallRemoveQuota          CallType = "REMOVE_QUOTA"

	// Maintenance and agent lifecycle, operator surface only.
	CallGetMaintenanceSchedule    CallType = "GET_MAINTENANCE_SCHEDULE"
	CallUpdateMaintenanceSchedule CallType = "UPDATE_MAINTENANCE_SCHEDULE"
	CallGetMaintenanceStatus      CallType = "GET_MAINTENANCE_STATUS"
	CallStartMaintenance          CallType = "START_MAINTENANCE"
	CallStopMaintenance           CallType = "STOP_MAINTENANCE"
	CallMarkAgentGone             CallType = "MARK_AGENT_GONE"

	// Sandbox file access, operator surface only.
	CallListFiles CallType = "LIST_FILES"
	CallReadFile  CallType = "READ_FILE"
)

// schedulerCalls is the set of CallTypes legal on the scheduler endpoint.
var schedulerCalls = map[CallType]bool{
	CallSubscribe:                  true,
	CallTeardown:                   true,
	CallAccept:                     true,
	CallDecline:                    true,
	CallAcceptInverseOffers:        true,
	CallDeclineInverseOffers:       true,
	CallRevive:                     true,
	CallSuppress:                   true,
	CallKill:                       true,
	CallShutdown:                   true,
	CallAcknowledge:                true,
	CallAcknowledgeOperationStatus: true,
	CallReconcile:                  true,
	CallReconcileOperations:        true,
	CallMessage:                    true,
	CallRequest:                    true,
	CallReserveResources:           true,
	CallUnreserveResources:         true,
	CallCreateVolumes:              true,
	CallDestroyVolumes:             true,
	CallGrowVolume:                 true,
	CallShrinkVolume:               true,
}

// IsSchedulerCall reports whether t is accepted on the scheduler
// endpoint.
func (t CallType) IsSchedulerCall() bool { return schedulerCalls[t] }

// mutatingOperationCalls is the subset of resource-operation call types
// that pass through the validate -> authorize -> rescind -> apply
// pipeline, as opposed to the plain state-machine calls above.
var mutatingOperationCalls = map[CallType]OperationType{
	CallReserveResources:   OpReserve,
	CallUnreserveResources: OpUnreserve,
	CallCreateVolumes:      OpCreateVolumes,
	CallDestroyVolumes:     OpDestroyVolumes,
	CallGrowVolume:         OpGrowVolume,
	CallShrinkVolume:       OpShrinkVolume,
}

// OperationType reports the OperationType a mutating call maps to, and
// whether t is a mutating operation call at all.
func (t CallType) OperationType() (OperationType, bool) {
	op, ok := mutatingOperationCalls[t]
	return op, ok
}

// Call is the envelope every request on both the scheduler and operator
// surfaces is decoded into before dispatch. Exactly one of the
// type-specific payload fields below is populated, selected by Type.
type Call struct {
	Type        CallType
	FrameworkID FrameworkID // required on the scheduler surface after SUBSCRIBE

	// Principal is the caller's authenticated identity, set by the HTTP
	// layer from the request's mTLS CommonName (empty when anonymous).
	// Operator calls with no framework context authorize against this
	// directly; scheduler calls authorize against the subscribed
	// framework's own registered principal instead.
	Principal string

	Subscribe    *CallSubscribeData
	Teardown     *CallTeardownData
	Accept       *CallAcceptData
	Decline      *CallDeclineData
	Kill         *CallKillData
	Acknowledge  *CallAcknowledgeData
	Reconcile    *CallReconcileData
	Message      *CallMessageData

	ReserveResources   *CallReserveResourcesData
	UnreserveResources *CallUnreserveResourcesData
	CreateVolumes      *CallCreateVolumesData
	DestroyVolumes     *CallDestroyVolumesData
	GrowVolume         *CallGrowVolumeData
	ShrinkVolume       *CallShrinkVolumeData

	UpdateMaintenanceSchedule *CallUpdateMaintenanceScheduleData
	StartMaintenance          *CallStartMaintenanceData
	StopMaintenance           *CallStopMaintenanceData
	MarkAgentGone             *CallMarkAgentGoneData

	SetLoggingLevel *CallSetLoggingLevelData
	UpdateWeights   *CallUpdateWeightsData
	SetQuota        *CallSetQuotaData
	UpdateQuota     *CallUpdateQuotaData
	RemoveQuota     *CallRemoveQuotaData

	GetMetrics *CallGetMetricsData
}

type CallSubscribeData struct {
	FrameworkInfo FrameworkInfo
}

type CallTeardownData struct {
	FrameworkID FrameworkID
}

type CallAcceptData struct {
	OfferIDs   []OfferID
	Operations []OperationInfo
}

type CallDeclineData struct {
	OfferIDs []OfferID
}

type CallKillData struct {
	TaskID  string
	AgentID AgentID
}

type CallAcknowledgeData struct {
	AgentID AgentID
	TaskID  string
	UUID    []byte
}

type CallReconcileData struct {
	Tasks []string
}

type CallMessageData struct {
	AgentID AgentID
	Data    []byte
}

type CallReserveResourcesData struct {
	AgentID   AgentID
	Resources Resources
}

type CallUnreserveResourcesData struct {
	AgentID   AgentID
	Resources Resources
}

type CallCreateVolumesData struct {
	AgentID AgentID
	Volumes []Resources
}

type CallDestroyVolumesData struct {
	AgentID AgentID
	Volumes []Resources
}

type CallGrowVolumeData struct {
	AgentID  AgentID
	Volume   Resources
	Addition Resources
}

type CallShrinkVolumeData struct {
	AgentID AgentID
	Volume  Resources
	Subtract Resources
}

type CallUpdateMaintenanceScheduleData struct {
	Schedule MaintenanceSchedule
}

type CallStartMaintenanceData struct {
	Machines []MachineID
}

type CallStopMaintenanceData struct {
	Machines []MachineID
}

type CallMarkAgentGoneData struct {
	AgentID AgentID
}

type CallSetLoggingLevelData struct {
	Level    uint32
	Duration uint64 // seconds
}

type CallUpdateWeightsData struct {
	Weights []RoleState
}

type CallSetQuotaData struct {
	Role  string
	Quota Resources
}

type CallUpdateQuotaData struct {
	Role  string
	Quota Resources
}

type CallRemoveQuotaData struct {
	Role string
}

type CallGetMetricsData struct {
	TimeoutNanoseconds int64
}
