// Package ingesterr declares the error taxonomy shared across the ingestion
// pipeline. The hot path never panics: every defect is one of these,
// counted and optionally logged, per the propagation policy — the public
// API signals contract violations through explicit error returns instead.
package ingesterr

import "errors"

var (
	// ErrParseFailure marks a malformed frame or a row with the wrong field
	// count. The event is discarded; a parse-error counter is incremented.
	ErrParseFailure = errors.New("ingesterr: parse failure")

	// ErrCapacityExceeded is returned by Upsert when a table is already at
	// its slot cap. Never a panic — the caller decides how to react.
	ErrCapacityExceeded = errors.New("ingesterr: capacity exceeded")

	// ErrShuttingDown is a sentinel for cancellation, not a failure. No
	// function in this repository returns it; Channel.Enqueue reports a
	// cancelled context as ctx.Err().
	ErrShuttingDown = errors.New("ingesterr: shutting down")

	// ErrTransport marks a broken connection. The owning handler
	// terminates; the listener that spawned it keeps accepting.
	ErrTransport = errors.New("ingesterr: transport error")

	// ErrConfig marks a startup configuration failure. Fatal: the process
	// exits with code 1 before any listener starts.
	ErrConfig = errors.New("ingesterr: config error")
)
