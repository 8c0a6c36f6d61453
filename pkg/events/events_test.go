package events

import (
	"testing"

	"github.com/clustermaster/masterd/pkg/types"
)

func TestSubscribeSendUnsubscribe(t *testing.T) {
	b := NewBroker()
	fw := types.FrameworkID("fw-1")

	sub := b.Subscribe(fw)
	if !b.IsSubscribed(fw) {
		t.Fatal("IsSubscribed = false after Subscribe")
	}

	b.Send(fw, &Event{Type: EventHeartbeat})
	got := <-sub
	if got.Type != EventHeartbeat {
		t.Errorf("Type = %v, want EventHeartbeat", got.Type)
	}

	b.Unsubscribe(fw)
	if b.IsSubscribed(fw) {
		t.Fatal("IsSubscribed = true after Unsubscribe")
	}
	if _, ok := <-sub; ok {
		t.Error("subscriber channel should be closed after Unsubscribe")
	}
}

func TestResubscribeClosesPrevious(t *testing.T) {
	b := NewBroker()
	fw := types.FrameworkID("fw-1")

	first := b.Subscribe(fw)
	second := b.Subscribe(fw)

	if _, ok := <-first; ok {
		t.Error("first subscription should be closed by re-subscribe")
	}

	b.Send(fw, &Event{Type: EventOffers})
	got := <-second
	if got.Type != EventOffers {
		t.Errorf("Type = %v, want EventOffers", got.Type)
	}
}

func TestSendToUnknownFrameworkIsNoop(t *testing.T) {
	b := NewBroker()
	b.Send(types.FrameworkID("missing"), &Event{Type: EventHeartbeat})
}

func TestBroadcast(t *testing.T) {
	b := NewBroker()
	a, c := types.FrameworkID("a"), types.FrameworkID("c")
	subA := b.Subscribe(a)
	subC := b.Subscribe(c)

	b.Broadcast(&Event{Type: EventRescind}, a, c)

	if (<-subA).Type != EventRescind {
		t.Error("subscriber a did not receive broadcast event")
	}
	if (<-subC).Type != EventRescind {
		t.Error("subscriber c did not receive broadcast event")
	}
}

func TestSubscriberCount(t *testing.T) {
	b := NewBroker()
	if b.SubscriberCount() != 0 {
		t.Fatalf("SubscriberCount = %d, want 0", b.SubscriberCount())
	}
	b.Subscribe(types.FrameworkID("fw-1"))
	b.Subscribe(types.FrameworkID("fw-2"))
	if b.SubscriberCount() != 2 {
		t.Fatalf("SubscriberCount = %d, want 2", b.SubscriberCount())
	}
}
