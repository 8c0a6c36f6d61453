package queue

import (
	"context"
	"testing"
	"time"
)

func TestPutBeforeGetResolvesImmediately(t *testing.T) {
	q := New[string]()
	q.Put("hello")

	f := q.Get()
	v, err := f.Wait(context.Background())
	if err != nil {
		t.Fatalf("Wait returned error: %v", err)
	}
	if v != "hello" {
		t.Fatalf("Wait value = %q, want hello", v)
	}
}

func TestGetParksUntilPut(t *testing.T) {
	q := New[string]()
	f := q.Get()

	select {
	case <-f.done:
		t.Fatal("future settled before any Put")
	default:
	}

	q.Put("later")

	v, err := f.Wait(context.Background())
	if err != nil {
		t.Fatalf("Wait returned error: %v", err)
	}
	if v != "later" {
		t.Fatalf("Wait value = %q, want later", v)
	}
}

// TestDiscardThenPut reproduces the queue-cancel-then-put scenario:
// two parked Gets, the first discarded, and a single Put that must
// land on the second, still-pending one.
func TestDiscardThenPut(t *testing.T) {
	q := New[string]()
	f1 := q.Get()
	f2 := q.Get()

	f1.Discard()

	if _, err := f1.Wait(context.Background()); err != ErrDiscarded {
		t.Fatalf("f1.Wait err = %v, want ErrDiscarded", err)
	}

	q.Put("x")

	v, err := f2.Wait(context.Background())
	if err != nil {
		t.Fatalf("f2.Wait returned error: %v", err)
	}
	if v != "x" {
		t.Fatalf("f2.Wait value = %q, want x", v)
	}
}

func TestPutOrderMatchesGetOrderForSingleProducer(t *testing.T) {
	q := New[int]()
	f1 := q.Get()
	f2 := q.Get()
	f3 := q.Get()

	q.Put(1)
	q.Put(2)
	q.Put(3)

	ctx := context.Background()
	for i, f := range []*Future[int]{f1, f2, f3} {
		v, err := f.Wait(ctx)
		if err != nil {
			t.Fatalf("f%d.Wait returned error: %v", i+1, err)
		}
		if v != i+1 {
			t.Fatalf("f%d.Wait value = %d, want %d", i+1, v, i+1)
		}
	}
}

func TestDiscardAfterSettleIsNoop(t *testing.T) {
	q := New[string]()
	q.Put("buffered")
	f := q.Get()

	v, err := f.Wait(context.Background())
	if err != nil || v != "buffered" {
		t.Fatalf("Wait = (%q, %v), want (buffered, nil)", v, err)
	}

	f.Discard()

	v2, err2 := f.Wait(context.Background())
	if err2 != nil || v2 != "buffered" {
		t.Fatalf("Wait after Discard = (%q, %v), want unchanged (buffered, nil)", v2, err2)
	}
}

func TestCloseLeavesParkedFuturesPendingForever(t *testing.T) {
	q := New[string]()
	f := q.Get()

	q.Close()

	waitCtx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := f.Wait(waitCtx); err != context.DeadlineExceeded {
		t.Fatalf("Wait on a future orphaned by Close returned err=%v, want DeadlineExceeded", err)
	}

	// A future Close already detached ignores Discard instead of
	// panicking or attempting to touch the destroyed waiter list.
	f.Discard()
	if _, err := f.Wait(waitCtx); err != context.DeadlineExceeded {
		t.Fatalf("Wait after Discard post-Close returned err=%v, want still pending", err)
	}
}

func TestWaitContextDeadline(t *testing.T) {
	q := New[string]()
	f := q.Get()

	waitCtx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if _, err := f.Wait(waitCtx); err != context.DeadlineExceeded {
		t.Fatalf("Wait returned err=%v, want DeadlineExceeded", err)
	}

	// The future is still parked after a Wait timeout; a later Put
	// still reaches it.
	q.Put("eventually")
	v, err := f.Wait(context.Background())
	if err != nil || v != "eventually" {
		t.Fatalf("Wait = (%q, %v), want (eventually, nil)", v, err)
	}
}
