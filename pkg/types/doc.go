/*
Package types defines the core data structures shared by the registrar,
the request-handling actor, and the HTTP surface.

It has no knowledge of HTTP, storage, or the replicated log; it just
describes the entities those layers pass around: frameworks, agents,
offers, operations, machines, and the Call envelope every inbound
request is decoded into before dispatch.

# Core Types

Cluster membership:
  - Framework, FrameworkInfo, FrameworkID
  - Agent, AgentInfo, AgentID, AgentStatus

Resource bookkeeping:
  - Offer, OfferID
  - Resources (the coarse CPU/Mem/Disk/Ports vector the pipeline adds,
    subtracts, and compares; it does not model individual resource
    types)
  - Operation, OperationInfo, OperationType, OperationStatusState

Maintenance:
  - Machine, MachineID, MachineMode
  - MaintenanceSchedule, MaintenanceWindow, Unavailability

Dispatch:
  - Call, CallType and its per-variant payload structs
*/
package types
