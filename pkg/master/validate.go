package master

import (
	"fmt"

	"github.com/clustermaster/masterd/pkg/types"
)

// callError distinguishes a client mistake (bad request body, unknown
// id) from other rejections, so the HTTP layer can map the former to
// 400 rather than the 409 it gives any other dispatch error.
type callError struct {
	msg string
}

func (e *callError) Error() string { return e.msg }

func errInvalidCall(msg string) error { return &callError{msg: msg} }

// IsCallError reports whether err was produced by a Call validation
// failure rather than an internal error.
func IsCallError(err error) bool {
	_, ok := err.(*callError)
	return ok
}

// notFoundError marks a call targeting an id that does not exist
// anywhere this master tracks it, distinct from a callError: most
// unknown-id rejections are a generic client mistake (400), but a few
// calls promise a caller that an id absent from every state bucket
// they check is specifically Not Found.
type notFoundError struct{ msg string }

func (e *notFoundError) Error() string { return e.msg }

func errNotFound(msg string) error { return &notFoundError{msg: msg} }

// IsNotFoundError reports whether err was produced by one of those
// distinguished not-found rejections.
func IsNotFoundError(err error) bool {
	_, ok := err.(*notFoundError)
	return ok
}

// validateAgentExists looks up an agent, returning a callError if it is
// unknown or gone; gone agents are never a valid operation target.
func (m *Master) validateAgentExists(id types.AgentID) (*types.Agent, error) {
	agent, ok := m.agents[id]
	if !ok {
		return nil, errInvalidCall(fmt.Sprintf("unknown agent %s", id))
	}
	if agent.Status == types.AgentGone {
		return nil, errInvalidCall(fmt.Sprintf("agent %s is gone", id))
	}
	return agent, nil
}

// validateOperationInfo checks the shape of an operation's payload
// against its declared type, before it reaches authorization.
func validateOperationInfo(info types.OperationInfo) error {
	switch info.Type {
	case types.OpReserve, types.OpUnreserve:
		if info.Resources.CPUs == 0 && info.Resources.Mem == 0 && info.Resources.Disk == 0 && len(info.Resources.Ports) == 0 {
			return errInvalidCall(string(info.Type) + " carries no resources")
		}
	case types.OpCreateVolumes, types.OpDestroyVolumes:
		if len(info.Volumes) == 0 {
			return errInvalidCall(string(info.Type) + " names no volumes")
		}
	case types.OpGrowVolume:
		if !info.Volume.IsVolume {
			return errInvalidCall("GROW_VOLUME target is not a volume")
		}
	case types.OpShrinkVolume:
		if !info.Volume.IsVolume {
			return errInvalidCall("SHRINK_VOLUME target is not a volume")
		}
	default:
		return errInvalidCall("unknown operation type " + string(info.Type))
	}
	return nil
}
