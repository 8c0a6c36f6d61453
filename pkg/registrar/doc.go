/*
Package registrar replicates the master's durable state — the
maintenance graph and gone-agent markers — across a Raft quorum
(hashicorp/raft, BoltDB-backed log and stable stores) so a newly
elected leader recovers exactly what the previous leader had committed.

Offers, operations, and framework/agent bookkeeping are not replicated
here; they are leader-local and rebuilt on re-registration after a
failover, matching the source system's own recovery model.
*/
package registrar
