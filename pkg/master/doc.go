/*
Package master implements the request plane's single-threaded actor.

Every Call — SUBSCRIBE, TEARDOWN, ACCEPT/DECLINE, the six mutating
resource operations, maintenance transitions, MARK_AGENT_GONE, and role
weight/quota updates — is dispatched from one goroutine (Run), so the
in-memory framework, agent, offer, and operation maps never need a
mutex against themselves. Batch hands that same goroutine's exclusive
access to a point-in-time Snapshot for the read-batching scheduler in
pkg/readbatch, which is how read-heavy operator calls avoid serializing
behind writes without risking a race.

The maintenance graph and gone-agent markers are committed through
pkg/registrar, but recovery replays only the maintenance graph into the
actor; gone-agent markers stay in the registrar's store and are not
read back into agent records. Frameworks, agents, offers, and
operations are rebuilt from re-registration, as in the system this
mirrors.
*/
package master
