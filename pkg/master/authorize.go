package master

import "github.com/clustermaster/masterd/pkg/types"

// Authorizer is the out-of-scope capability oracle every mutating
// operation and every role-report read is checked against. It mirrors
// Mesos's authorizer/ObjectApprover pair: Authorize answers a single
// yes/no for a mutating action, ApproveRole answers the same for a
// single role in a viewer set. Both are expected to be read-only and
// safe under concurrent calls, since they never touch actor-owned
// state; the default implementation below is. Callers supply their own
// via Config.Authorizer to back it with a real ACL store.
type Authorizer interface {
	// Authorize decides whether principal may carry out a RESERVE,
	// UNRESERVE, CREATE_VOLUMES, DESTROY_VOLUMES, GROW_VOLUME, or
	// SHRINK_VOLUME operation. A non-nil error denies the operation.
	Authorize(principal string, info types.OperationInfo) error

	// ApproveRole decides whether principal may see or mutate role in a
	// GET_ROLES/GET_WEIGHTS/GET_QUOTA report or an UPDATE_WEIGHTS/
	// SET_QUOTA/REMOVE_QUOTA call.
	ApproveRole(principal, role string) bool
}

// authzError marks an authorization denial, distinct from a callError,
// so the HTTP layer maps it to Forbidden instead of BadRequest.
type authzError struct{ msg string }

func (e *authzError) Error() string { return e.msg }

func errForbidden(msg string) error { return &authzError{msg: msg} }

// IsAuthzError reports whether err was produced by an Authorizer denial.
func IsAuthzError(err error) bool {
	_, ok := err.(*authzError)
	return ok
}

// principalAuthorizer is the default Authorizer: a reservation or
// volume carrying a principal may only be touched by that same
// principal, and every role is visible and mutable by every caller.
// It reproduces the request plane's minimum viable ACL story without
// an external authorizer wired in; replace it via Config.Authorizer
// for anything stronger.
type principalAuthorizer struct{}

func (principalAuthorizer) Authorize(principal string, info types.OperationInfo) error {
	switch info.Type {
	case types.OpReserve:
		if info.Resources.Principal != "" && info.Resources.Principal != principal {
			return errForbidden("principal does not match reservation")
		}
	case types.OpUnreserve:
		if info.Resources.Principal != "" && info.Resources.Principal != principal {
			return errForbidden("principal is not authorized to unreserve this role's resources")
		}
	case types.OpCreateVolumes:
		for _, v := range info.Volumes {
			if v.Principal != "" && v.Principal != principal {
				return errForbidden("principal does not match volume reservation")
			}
		}
	case types.OpDestroyVolumes:
		for _, v := range info.Volumes {
			if v.Principal != "" && v.Principal != principal {
				return errForbidden("principal is not authorized to destroy this volume")
			}
		}
	case types.OpGrowVolume, types.OpShrinkVolume:
		if info.Volume.Principal != "" && info.Volume.Principal != principal {
			return errForbidden("principal does not match volume ownership")
		}
	}
	return nil
}

func (principalAuthorizer) ApproveRole(principal, role string) bool { return true }
