package metrics

import (
	"context"
	"strconv"
	"time"

	"github.com/clustermaster/masterd/pkg/master"
	"github.com/clustermaster/masterd/pkg/registrar"
)

// Collector periodically samples the actor's state and the registrar's
// raft stats into the package's Prometheus metrics.
type Collector struct {
	master    *master.Master
	registrar *registrar.Registrar
	stopCh    chan struct{}
}

// NewCollector creates a Collector. registrar may be nil for a
// single-node master running without raft, in which case raft metrics
// are left unset.
func NewCollector(m *master.Master, reg *registrar.Registrar) *Collector {
	return &Collector{
		master:    m,
		registrar: reg,
		stopCh:    make(chan struct{}),
	}
}

// Start begins collecting metrics every 15 seconds.
func (c *Collector) Start() {
	ticker := time.NewTicker(15 * time.Second)
	go func() {
		c.collect()
		for {
			select {
			case <-ticker.C:
				c.collect()
			case <-c.stopCh:
				ticker.Stop()
				return
			}
		}
	}()
}

// Stop stops the collector.
func (c *Collector) Stop() {
	close(c.stopCh)
}

func (c *Collector) collect() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := c.master.Batch(ctx, func(s *master.Snapshot) {
		c.collectFrameworks(s)
		c.collectAgents(s)
		c.collectOffers(s)
		c.collectOperations(s)
		c.collectMachines(s)
	})
	if err != nil {
		return
	}

	c.collectRaft()
}

func (c *Collector) collectFrameworks(s *master.Snapshot) {
	counts := map[string]int{}
	for _, fw := range s.ListFrameworks() {
		state := "disconnected"
		if fw.Connected {
			state = "connected"
		}
		counts[state]++
	}
	FrameworksTotal.Reset()
	for state, n := range counts {
		FrameworksTotal.WithLabelValues(state).Set(float64(n))
	}
}

func (c *Collector) collectAgents(s *master.Snapshot) {
	counts := map[string]int{}
	for _, agent := range s.ListAgents() {
		counts[string(agent.Status)]++
	}
	AgentsTotal.Reset()
	for status, n := range counts {
		AgentsTotal.WithLabelValues(status).Set(float64(n))
	}
}

func (c *Collector) collectOffers(s *master.Snapshot) {
	OffersTotal.Set(float64(len(s.Offers)))
}

func (c *Collector) collectOperations(s *master.Snapshot) {
	counts := map[string]int{}
	for _, op := range s.ListOperations() {
		counts[string(op.Status)]++
	}
	OperationsTotal.Reset()
	for state, n := range counts {
		OperationsTotal.WithLabelValues(state).Set(float64(n))
	}
}

func (c *Collector) collectMachines(s *master.Snapshot) {
	counts := map[string]int{}
	for _, m := range s.ListMachines() {
		counts[string(m.Mode)]++
	}
	MachinesTotal.Reset()
	for mode, n := range counts {
		MachinesTotal.WithLabelValues(mode).Set(float64(n))
	}
}

func (c *Collector) collectRaft() {
	if c.master.IsLeader() {
		RaftLeader.Set(1)
	} else {
		RaftLeader.Set(0)
	}

	if c.registrar == nil {
		return
	}

	RaftPeers.Set(float64(c.registrar.NumPeers()))

	stats := c.registrar.Stats()
	if stats == nil {
		return
	}
	if v, ok := parseRaftIndex(stats["last_log_index"]); ok {
		RaftLogIndex.Set(v)
	}
	if v, ok := parseRaftIndex(stats["applied_index"]); ok {
		RaftAppliedIndex.Set(v)
	}
}

// parseRaftIndex parses one of raft.Raft.Stats' decimal string values.
func parseRaftIndex(s string) (float64, bool) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return float64(v), true
}
