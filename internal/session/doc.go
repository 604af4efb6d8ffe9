// Package session is the single entry point a front end talks to. A Session
// owns one world, one program and one progression, and exposes the inbound
// operations (generate, edit, run, reset) plus read-only views of its state.
//
// # Run lifecycle
//
//	Idle --Run--> Running --terminal--> Attempted --NextPuzzle/Reset--> Idle
//	                 |
//	                 +--Abort--> Idle
//
// Edits are accepted only while Idle. An empty program never leaves Idle.
// An aborted run records no attempt and puts the agent back on its start.
//
// # Errors
//
// Rejected operations leave the session unchanged, emit a diagnostic event,
// and return a sentinel error that callers classify with errors.Is.
package session
