package httpapi

import (
	"net/http"
	"strconv"

	"github.com/clustermaster/masterd/pkg/codec"
	"github.com/clustermaster/masterd/pkg/master"
	"github.com/clustermaster/masterd/pkg/metrics"
	"github.com/clustermaster/masterd/pkg/types"
)

// schedulerModeled is the set of scheduler calls the master actor
// actually implements. Everything else a scheduler is entitled to send
// under the scheduler wire protocol (KILL, ACKNOWLEDGE, RECONCILE, and
// so on) decodes and validates fine but has no handler in the actor's
// dispatch, so it is rejected here rather than reaching Submit only to
// be told the same thing with less context.
var schedulerModeled = map[types.CallType]bool{
	types.CallSubscribe:           true,
	types.CallAccept:              true,
	types.CallDecline:             true,
	types.CallTeardown:            true,
	types.CallReserveResources:    true,
	types.CallUnreserveResources:  true,
	types.CallCreateVolumes:       true,
	types.CallDestroyVolumes:      true,
	types.CallGrowVolume:          true,
	types.CallShrinkVolume:        true,
}

func (s *Server) handleScheduler(w http.ResponseWriter, r *http.Request) {
	principal, herr := principalFor(r)
	if herr != nil {
		writeError(w, herr)
		return
	}
	if !s.checkLeadership(w, r) {
		return
	}
	if !s.checkRecovery(w) {
		return
	}

	// The scheduler endpoint is JSON or protobuf only: recordio framing
	// only ever describes the response once a subscription is open, so
	// the request side never negotiates streaming here.
	neg, herr := s.negotiateContentType(r, false)
	if herr != nil {
		writeError(w, herr)
		return
	}

	call, herr := decodeCall(r, neg)
	if herr != nil {
		writeError(w, herr)
		return
	}
	call.Principal = principal
	if herr := validateStructure(&call); herr != nil {
		writeError(w, herr)
		return
	}
	if !call.Type.IsSchedulerCall() {
		writeError(w, badRequest(string(call.Type)+" is not a scheduler call"))
		return
	}
	if herr := validateSubscribePrincipal(principal, &call); herr != nil {
		writeError(w, herr)
		return
	}
	if herr := s.checkStreamID(r, &call); herr != nil {
		writeError(w, herr)
		return
	}
	if !schedulerModeled[call.Type] {
		writeError(w, notImplemented(string(call.Type)+" is accepted by the wire protocol but not served yet"))
		return
	}

	timer := metrics.NewTimer()
	status := s.dispatchSchedulerCall(w, r, &call, neg.encode)
	timer.ObserveDurationVec(metrics.APIRequestDuration, string(call.Type))
	metrics.APIRequestsTotal.WithLabelValues(string(call.Type), strconv.Itoa(status)).Inc()
}

// checkStreamID validates the stream-id header (codec.StreamIDHeader) against the
// framework's current subscription, read from a consistent snapshot so
// a concurrent re-subscribe cannot race this check.
func (s *Server) checkStreamID(r *http.Request, call *types.Call) *httpError {
	header := r.Header.Get(codec.StreamIDHeader)
	if call.Type == types.CallSubscribe {
		return validateStreamID(call, header, types.StreamID{}, false)
	}

	v, err := s.batcher.Do(r.Context(), func(snap *master.Snapshot) (interface{}, error) {
		fw, ok := snap.Frameworks[call.FrameworkID]
		if !ok {
			return [2]interface{}{types.StreamID{}, false}, nil
		}
		return [2]interface{}{fw.StreamID, fw.Connected}, nil
	})
	if err != nil {
		return internalError("readbatch: " + err.Error())
	}
	pair := v.([2]interface{})
	current := pair[0].(types.StreamID)
	subscribed := pair[1].(bool)
	return validateStreamID(call, header, current, subscribed)
}

func (s *Server) dispatchSchedulerCall(w http.ResponseWriter, r *http.Request, call *types.Call, enc codec.Codec) int {
	if call.Type == types.CallSubscribe {
		s.handleSchedulerSubscribe(w, r, call, enc)
		return http.StatusOK
	}
	return s.submitAndRespond(w, r, call, enc)
}
