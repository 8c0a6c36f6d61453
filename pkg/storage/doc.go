/*
Package storage persists the durable state of the master: the
maintenance graph and the set of agents ever marked gone, applied by the
registrar's FSM from committed commands, and the master's own CA
material, written directly and not replicated.

BoltStore backs Store with BoltDB (bbolt), one bucket per record kind,
values JSON-encoded. Framework and agent bookkeeping, offers, and
operations are not stored here; they live in the actor's memory and are
rebuilt as frameworks and agents re-register after a failover.
*/
package storage
