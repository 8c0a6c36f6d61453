package httpapi

import (
	"github.com/clustermaster/masterd/pkg/types"
)

// validateStructure implements the structural checks every decoded call
// must pass before it reaches the master: it must declare a type, and
// every scheduler call after the initial SUBSCRIBE must carry the
// framework_id the subscription was opened under.
func validateStructure(call *types.Call) *httpError {
	if call.Type == "" {
		return badRequest("call is missing a type")
	}
	if call.Type != types.CallSubscribe && call.Type.IsSchedulerCall() && call.FrameworkID == "" {
		return badRequest(string(call.Type) + " requires a framework_id")
	}
	if call.Type == types.CallSubscribe {
		if call.Subscribe == nil || call.Subscribe.FrameworkInfo.ID == "" {
			return badRequest("SUBSCRIBE requires framework_info.id")
		}
		if call.FrameworkID != "" && call.FrameworkID != call.Subscribe.FrameworkInfo.ID {
			return badRequest("framework_id does not match framework_info.id")
		}
	}
	return nil
}

// validateSubscribePrincipal checks that a caller's authenticated
// principal, if any, agrees with the principal named in the
// framework's own declared identity. Either side may be silent; only
// an outright mismatch is rejected.
func validateSubscribePrincipal(principal string, call *types.Call) *httpError {
	if call.Type != types.CallSubscribe || call.Subscribe == nil {
		return nil
	}
	declared := call.Subscribe.FrameworkInfo.Principal
	if principal != "" && declared != "" && principal != declared {
		return badRequest("authenticated principal does not match framework_info.principal")
	}
	return nil
}

// validateStreamID implements the rule that every scheduler call after
// SUBSCRIBE must carry the stream id that SUBSCRIBE minted, and that
// SUBSCRIBE itself must not carry one.
func validateStreamID(call *types.Call, headerValue string, current types.StreamID, subscribed bool) *httpError {
	if call.Type == types.CallSubscribe {
		if headerValue != "" {
			return badRequest("SUBSCRIBE must not carry a stream id")
		}
		return nil
	}
	if !subscribed {
		return badRequest("framework is not subscribed")
	}
	if headerValue == "" {
		return badRequest("call requires a stream id")
	}
	got, err := types.ParseStreamID(headerValue)
	if err != nil {
		return badRequest("malformed stream id")
	}
	if got != current {
		return badRequest("stream id does not match the active subscription")
	}
	return nil
}
