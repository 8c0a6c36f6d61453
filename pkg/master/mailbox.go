package master

import (
	"context"
	"errors"
	"sync"
)

// mailbox is the actor's own request/response channel: Put hands the
// actor a job and gets back a future for the Result the actor will
// eventually resolve it with, and the actor's Run loop drains jobs
// with Get. This is a different primitive from pkg/queue's
// asynchronous value FIFO — here the *consumer* of Get is the one
// that settles the future, not the producer — so it is kept local to
// this package rather than built on pkg/queue, the same way
// pkg/events.Broker owns its per-subscriber channels directly instead
// of routing them through a shared abstraction that does not fit.
type mailbox struct {
	ch chan mailboxItem

	mu     sync.Mutex
	closed bool
}

// errMailboxClosed is returned by Put once the mailbox has been
// closed.
var errMailboxClosed = errors.New("master: mailbox closed")

// mailboxFuture is a single pending job's result, settled exactly
// once by the actor goroutine that dequeues it.
type mailboxFuture struct {
	done  chan struct{}
	once  sync.Once
	value interface{}
}

func newMailboxFuture() *mailboxFuture {
	return &mailboxFuture{done: make(chan struct{})}
}

// resolve settles the future. Only the first call has any effect.
func (f *mailboxFuture) resolve(v interface{}) {
	f.once.Do(func() {
		f.value = v
		close(f.done)
	})
}

// wait blocks until the future settles or ctx is done, whichever
// comes first.
func (f *mailboxFuture) wait(ctx context.Context) (interface{}, error) {
	select {
	case <-f.done:
		return f.value, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// mailboxItem is a unit of work carried through the mailbox alongside
// the future its result settles.
type mailboxItem struct {
	value  job
	future *mailboxFuture
}

// newMailbox creates a mailbox buffering up to depth jobs before Put
// blocks.
func newMailbox(depth int) *mailbox {
	return &mailbox{ch: make(chan mailboxItem, depth)}
}

// put enqueues v and returns a future the caller waits on for the
// actor's result.
func (b *mailbox) put(ctx context.Context, v job) (*mailboxFuture, error) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil, errMailboxClosed
	}
	b.mu.Unlock()

	f := newMailboxFuture()
	item := mailboxItem{value: v, future: f}

	select {
	case b.ch <- item:
		return f, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// get dequeues the next item, blocking until one is available, the
// mailbox is closed, or ctx is done.
func (b *mailbox) get(ctx context.Context) (mailboxItem, bool) {
	select {
	case item, ok := <-b.ch:
		return item, ok
	case <-ctx.Done():
		return mailboxItem{}, false
	}
}

// close closes the mailbox. Items already buffered are still
// delivered to get; their futures are the consumer's responsibility
// to settle.
func (b *mailbox) close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	close(b.ch)
}
