/*
Package metrics defines and registers the master's Prometheus metrics
and exposes them over /metrics.

# Metrics Catalog

Actor state (sampled by Collector every 15s via a Batch call):

	masterd_frameworks_total{state}       Gauge   connected / disconnected
	masterd_agents_total{status}          Gauge   registered / recovered / unreachable / gone / unknown
	masterd_offers_outstanding            Gauge
	masterd_operations_total{state}       Gauge   OPERATION_PENDING / _FINISHED / _FAILED / _ERROR
	masterd_machines_total{mode}          Gauge   UP / DRAINING / DOWN

Raft:

	masterd_raft_is_leader                Gauge   1 = leader, 0 = follower
	masterd_raft_peers_total              Gauge
	masterd_raft_log_index                Gauge
	masterd_raft_applied_index            Gauge

HTTP request plane:

	masterd_api_requests_total{call,status}        Counter
	masterd_api_request_duration_seconds{call}      Histogram

Read-batching:

	masterd_read_batch_latency_seconds    Histogram  duration of each batch's whole Batch call, including the wait for the actor to take it
	masterd_read_batch_size               Histogram  requests serviced per batch

Mutating operations:

	masterd_operations_failed_total{type} Counter

# Usage

	timer := metrics.NewTimer()
	// ... handle the call ...
	timer.ObserveDurationVec(metrics.APIRequestDuration, string(call.Type))

	http.Handle("/metrics", metrics.Handler())

Collector owns the periodic sampling of actor and raft state; callers
on the request path update APIRequestsTotal, APIRequestDuration,
ReadBatchLatency, and ReadBatchSize directly as requests are handled.
OperationsFailed is registered, but nothing in this tree increments it.
*/
package metrics
