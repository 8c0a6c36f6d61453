package httpapi

import (
	"net/http"
	"time"

	"github.com/clustermaster/masterd/pkg/codec"
	"github.com/clustermaster/masterd/pkg/events"
	"github.com/clustermaster/masterd/pkg/log"
	"github.com/clustermaster/masterd/pkg/master"
	"github.com/clustermaster/masterd/pkg/stream"
	"github.com/clustermaster/masterd/pkg/types"
)

// heartbeatInterval is how often a subscriber pipe gets a HEARTBEAT
// record; the ticker fires on this interval whatever other records are
// written to the pipe.
const heartbeatInterval = 15 * time.Second

// streamRecord is the wire shape of every record after SUBSCRIBED on a
// subscriber pipe.
type streamRecord struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

func eventRecord(ev *events.Event) streamRecord {
	return streamRecord{Type: string(ev.Type), Timestamp: ev.Timestamp, Payload: ev.Payload}
}

// handleSchedulerSubscribe submits the SUBSCRIBE call, then turns the
// response into a recordio pipe: SUBSCRIBED first, then every event the
// broker delivers to this framework, with a synthetic HEARTBEAT filling
// the gaps.
func (s *Server) handleSchedulerSubscribe(w http.ResponseWriter, r *http.Request, call *types.Call, enc codec.Codec) {
	if _, ok := w.(http.Flusher); !ok {
		writeError(w, internalError("response writer does not support streaming"))
		return
	}

	result, herr := s.submit(r, call)
	if herr != nil {
		writeError(w, herr)
		return
	}

	frameworkID := call.Subscribe.FrameworkInfo.ID
	sub := s.master.Broker().Subscribe(frameworkID)

	w.Header().Set(codec.StreamIDHeader, result.StreamID.String())
	w.Header().Set("Content-Type", string(enc.MediaType()))
	w.WriteHeader(http.StatusOK)
	w.(http.Flusher).Flush()

	rw := stream.NewWriter(w)
	first := streamRecord{Type: string(events.EventSubscribed), Timestamp: time.Now(), Payload: subscribedResponse{StreamID: result.StreamID.String()}}
	if !writeStreamRecord(rw, enc, first) {
		return
	}

	runSubscriberLoop(r, rw, enc, sub)
}

// handleOperatorSubscribe serves the operator API's read-only event
// stream: a consistent snapshot delivered as SUBSCRIBED, taken while
// the actor is paused so no mutation can land between it and the first
// event, followed by a heartbeat on a timer for the life of the
// connection. The operator surface has no per-caller framework
// identity to fan further events out against, so SUBSCRIBED plus
// heartbeats is the full stream.
func (s *Server) handleOperatorSubscribe(w http.ResponseWriter, r *http.Request, enc codec.Codec) {
	if _, ok := w.(http.Flusher); !ok {
		writeError(w, internalError("response writer does not support streaming"))
		return
	}

	var snap stateResponse
	_, err := s.batcher.Do(r.Context(), func(m *master.Snapshot) (interface{}, error) {
		snap = stateResponse{
			Frameworks: m.ListFrameworks(),
			Agents:     m.ListAgents(),
			Offers:     m.ListOffers(),
			Operations: m.ListOperations(),
		}
		return nil, nil
	})
	if err != nil {
		writeError(w, internalError("readbatch: "+err.Error()))
		return
	}

	w.Header().Set("Content-Type", string(enc.MediaType()))
	w.WriteHeader(http.StatusOK)
	w.(http.Flusher).Flush()

	rw := stream.NewWriter(w)
	first := streamRecord{Type: string(events.EventSubscribed), Timestamp: time.Now(), Payload: snap}
	if !writeStreamRecord(rw, enc, first) {
		return
	}

	runSubscriberLoop(r, rw, enc, nil)
}

// runSubscriberLoop drains sub (nil for the operator's event-less
// stream) and a heartbeat ticker onto rw until the request context is
// done or a write fails.
func runSubscriberLoop(r *http.Request, rw *stream.Writer, enc codec.Codec, sub events.Subscriber) {
	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			if !writeStreamRecord(rw, enc, streamRecord{Type: string(events.EventHeartbeat), Timestamp: time.Now()}) {
				return
			}
		case ev, ok := <-orNilChan(sub):
			if !ok {
				return
			}
			if !writeStreamRecord(rw, enc, eventRecord(ev)) {
				return
			}
		}
	}
}

// orNilChan returns sub, or a nil channel (which blocks forever in a
// select) when sub is nil, so runSubscriberLoop's select works
// uniformly whether or not there is a broker subscription to drain.
func orNilChan(sub events.Subscriber) events.Subscriber {
	return sub
}

func writeStreamRecord(rw *stream.Writer, enc codec.Codec, rec streamRecord) bool {
	b, err := enc.Encode(rec)
	if err != nil {
		httpapiLogger := log.WithComponent("httpapi")
		httpapiLogger.Error().Err(err).Msg("failed to encode stream record")
		return false
	}
	if err := rw.WriteRecord(b); err != nil {
		return false
	}
	return true
}
