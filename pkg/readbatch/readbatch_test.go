package readbatch

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clustermaster/masterd/pkg/events"
	"github.com/clustermaster/masterd/pkg/master"
	"github.com/clustermaster/masterd/pkg/types"
)

func newTestMaster(t *testing.T) (*master.Master, context.Context) {
	t.Helper()
	m := master.New(master.Config{NodeID: "test-node", Broker: events.NewBroker()})
	ctx, cancel := context.WithCancel(context.Background())
	go m.Run(ctx)
	t.Cleanup(func() {
		m.Stop()
		cancel()
	})
	return m, ctx
}

func TestDoReturnsSnapshotResult(t *testing.T) {
	m, ctx := newTestMaster(t)
	b := New(m, 4)

	_, err := m.RegisterAgent(ctx, types.AgentInfo{ID: "agent-1"}, types.Resources{CPUs: 2}, types.MachineID{})
	require.NoError(t, err)

	v, err := b.Do(ctx, func(s *master.Snapshot) (interface{}, error) {
		return len(s.ListAgents()), nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}

func TestConcurrentDoCallsShareOneSnapshot(t *testing.T) {
	m, ctx := newTestMaster(t)
	b := New(m, 8)

	const n = 20
	var wg sync.WaitGroup
	results := make([]interface{}, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := b.Do(ctx, func(s *master.Snapshot) (interface{}, error) {
				return len(s.Agents), nil
			})
			assert.NoError(t, err)
			results[i] = v
		}(i)
	}
	wg.Wait()

	for _, v := range results {
		assert.Equal(t, 0, v)
	}
}

func TestDoPropagatesHandlerError(t *testing.T) {
	m, ctx := newTestMaster(t)
	b := New(m, 4)

	_, err := b.Do(ctx, func(s *master.Snapshot) (interface{}, error) {
		return nil, assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)
}

func TestDoRespectsContextCancellation(t *testing.T) {
	// An actor that was never started never services the queued snapshot
	// job, so Batch's wait never completes; Do must still return once ctx
	// expires.
	m := master.New(master.Config{NodeID: "test-node", Broker: events.NewBroker()})
	b := New(m, 4)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := b.Do(ctx, func(s *master.Snapshot) (interface{}, error) {
		return nil, nil
	})
	assert.Error(t, err)
}
