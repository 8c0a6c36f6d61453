// Package httpapi is the request plane's HTTP surface: the operator API
// at /api/v1, the scheduler API at /api/v1/scheduler, the legacy
// form-encoded endpoints, and the maintenance/role/info endpoints that
// sit beside them. It owns content negotiation, structural validation,
// leadership redirection, and recovery gating, then hands accepted
// calls to the master actor (via Submit for mutations, via the
// read-batching scheduler for GET_* calls).
package httpapi
