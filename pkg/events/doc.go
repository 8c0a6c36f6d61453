/*
Package events fans SUBSCRIBED/HEARTBEAT/OFFERS/RESCIND/UPDATE/MESSAGE/
FAILURE messages out to subscribed schedulers.

Each framework has at most one live subscription at a time; Subscribe
replaces any previous one rather than adding a second. Delivery is
best-effort: a full subscriber buffer drops the event rather than
blocking the actor that published it.
*/
package events
