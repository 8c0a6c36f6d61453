// Package log provides structured logging via zerolog: a global
// Logger configured once at startup, and child-logger constructors
// (WithComponent, WithFrameworkID, WithAgentID, WithMachineID,
// WithStreamID) that attach the usual correlation fields without
// threading them through every call.
package log
