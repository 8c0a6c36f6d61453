package master

import (
	"github.com/clustermaster/masterd/pkg/events"
	"github.com/clustermaster/masterd/pkg/log"
	"github.com/clustermaster/masterd/pkg/types"
)

// dispatchSubscribe registers a new framework, or re-subscribes one
// that already had a disconnected record, minting a fresh StreamID
// either way and opening its event subscription.
func (m *Master) dispatchSubscribe(call *types.Call) *Result {
	if call.Subscribe == nil {
		return &Result{Err: errMissingPayload(call.Type)}
	}
	info := call.Subscribe.FrameworkInfo
	if info.ID == "" {
		return &Result{Err: errInvalidCall("SUBSCRIBE requires a framework id")}
	}

	fw, exists := m.frameworks[info.ID]
	if !exists {
		fw = types.NewFramework(info)
		fw.RegisteredAt = now()
		m.frameworks[info.ID] = fw
	} else {
		fw.Info = info
		fw.ReregisteredAt = now()
		fw.Recovered = false
	}
	fw.Active = true
	fw.Connected = true
	fw.StreamID = types.NewStreamID()

	sub := m.broker.Subscribe(fw.ID)
	m.broker.Send(fw.ID, &events.Event{Type: events.EventSubscribed, Timestamp: now(), Payload: fw.StreamID})

	fwLogger := log.WithFrameworkID(fw.ID)
	fwLogger.Info().Str("stream_id", fw.StreamID.String()).Msg("framework subscribed")

	_ = sub // the HTTP layer serving the stream calls Broker().Subscribe for this framework itself, which closes this subscription and replaces it

	return &Result{Accepted: true, StreamID: fw.StreamID}
}

func errMissingPayload(t types.CallType) error {
	return errInvalidCall(string(t) + " call is missing its payload")
}
