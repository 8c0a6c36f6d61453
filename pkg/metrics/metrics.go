package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Cluster metrics
	FrameworksTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "masterd_frameworks_total",
			Help: "Total number of frameworks by connection state",
		},
		[]string{"state"},
	)

	AgentsTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "masterd_agents_total",
			Help: "Total number of agents by status",
		},
		[]string{"status"},
	)

	OffersTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "masterd_offers_outstanding",
			Help: "Total number of outstanding offers",
		},
	)

	OperationsTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "masterd_operations_total",
			Help: "Total number of operations by state",
		},
		[]string{"state"},
	)

	MachinesTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "masterd_machines_total",
			Help: "Total number of maintenance machines by mode",
		},
		[]string{"mode"},
	)

	// Raft metrics
	RaftLeader = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "masterd_raft_is_leader",
			Help: "Whether this node is the Raft leader (1 = leader, 0 = follower)",
		},
	)

	RaftPeers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "masterd_raft_peers_total",
			Help: "Total number of Raft peers in the cluster",
		},
	)

	RaftLogIndex = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "masterd_raft_log_index",
			Help: "Current Raft log index",
		},
	)

	RaftAppliedIndex = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "masterd_raft_applied_index",
			Help: "Last applied Raft log index",
		},
	)

	// API metrics
	APIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "masterd_api_requests_total",
			Help: "Total number of API requests by call type and status",
		},
		[]string{"call", "status"},
	)

	APIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "masterd_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"call"},
	)

	// Read-batching metrics
	ReadBatchLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "masterd_read_batch_latency_seconds",
			Help:    "Time the actor spends paused servicing a read batch",
			Buckets: prometheus.DefBuckets,
		},
	)

	ReadBatchSize = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "masterd_read_batch_size",
			Help:    "Number of read requests serviced per batch",
			Buckets: prometheus.LinearBuckets(1, 4, 10),
		},
	)

	OperationsFailed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "masterd_operations_failed_total",
			Help: "Total number of mutating operations that failed validation or application",
		},
		[]string{"type"},
	)
)

func init() {
	prometheus.MustRegister(FrameworksTotal)
	prometheus.MustRegister(AgentsTotal)
	prometheus.MustRegister(OffersTotal)
	prometheus.MustRegister(OperationsTotal)
	prometheus.MustRegister(MachinesTotal)
	prometheus.MustRegister(RaftLeader)
	prometheus.MustRegister(RaftPeers)
	prometheus.MustRegister(RaftLogIndex)
	prometheus.MustRegister(RaftAppliedIndex)
	prometheus.MustRegister(APIRequestsTotal)
	prometheus.MustRegister(APIRequestDuration)
	prometheus.MustRegister(ReadBatchLatency)
	prometheus.MustRegister(ReadBatchSize)
	prometheus.MustRegister(OperationsFailed)
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}
