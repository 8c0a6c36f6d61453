// Package readbatch implements the read-batching scheduler: it lets many
// read-only operator calls (GET_AGENTS, GET_FRAMEWORKS, GET_STATE, ...)
// observe one consistent snapshot of master state without serializing
// behind the actor's write path one at a time.
package readbatch

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/clustermaster/masterd/pkg/master"
	"github.com/clustermaster/masterd/pkg/metrics"
)

// DefaultMaxConcurrentReaders bounds how many queued reads run at once
// against one snapshot, guarding against worker-pool deadlock when a
// handler itself blocks.
const DefaultMaxConcurrentReaders = 32

// Handler produces a response from a point-in-time Snapshot.
type Handler func(*master.Snapshot) (interface{}, error)

type request struct {
	handler Handler
	resultC chan result
}

type result struct {
	v   interface{}
	err error
}

// Batcher accepts Do calls from many HTTP handler goroutines and, for
// each window of requests that accumulates before the master actor can
// service them, runs all of them concurrently against one Snapshot.
type Batcher struct {
	m             *master.Master
	maxConcurrent int

	mu      sync.Mutex
	pending []*request
}

// New creates a Batcher bound to m. A maxConcurrent of zero uses
// DefaultMaxConcurrentReaders.
func New(m *master.Master, maxConcurrent int) *Batcher {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentReaders
	}
	return &Batcher{m: m, maxConcurrent: maxConcurrent}
}

// Do enqueues handler and blocks until it has run against a snapshot.
// If the batch was empty, this call is responsible for arming the
// continuation that flushes it on the master actor; every other
// concurrent caller just appends and waits for that flush.
func (b *Batcher) Do(ctx context.Context, handler Handler) (interface{}, error) {
	req := &request{handler: handler, resultC: make(chan result, 1)}

	b.mu.Lock()
	b.pending = append(b.pending, req)
	first := len(b.pending) == 1
	b.mu.Unlock()

	if first {
		go b.flush(ctx)
	}

	select {
	case res := <-req.resultC:
		return res.v, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// flush takes everything accumulated so far and hands it to the master
// actor as a single Batch call, bounding fan-out with a weighted
// semaphore and awaiting every request before the actor resumes normal
// dispatch.
func (b *Batcher) flush(ctx context.Context) {
	timer := metrics.NewTimer()

	err := b.m.Batch(ctx, func(s *master.Snapshot) {
		b.mu.Lock()
		batch := b.pending
		b.pending = nil
		b.mu.Unlock()

		metrics.ReadBatchSize.Observe(float64(len(batch)))

		sem := semaphore.NewWeighted(int64(b.maxConcurrent))
		g, gctx := errgroup.WithContext(ctx)
		for _, req := range batch {
			req := req
			g.Go(func() error {
				if err := sem.Acquire(gctx, 1); err != nil {
					req.resultC <- result{err: err}
					return nil
				}
				defer sem.Release(1)
				v, err := req.handler(s)
				req.resultC <- result{v: v, err: err}
				return nil
			})
		}
		_ = g.Wait()
	})

	timer.ObserveDuration(metrics.ReadBatchLatency)

	if err != nil {
		b.mu.Lock()
		leftover := b.pending
		b.pending = nil
		b.mu.Unlock()
		for _, req := range leftover {
			req.resultC <- result{err: fmt.Errorf("readbatch: batch dispatch failed: %w", err)}
		}
	}
}
