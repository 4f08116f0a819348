package domain

import "errors"

// Sentinel errors surfaced across layer boundaries. The HTTP layer maps
// these onto status codes; everything else wraps them with context.
var (
	// ErrNotFound indicates the requested record does not exist within the
	// caller's organization scope.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyRunning indicates an automation's run claim is held by an
	// unfinished run.
	ErrAlreadyRunning = errors.New("run already in progress")

	// ErrNotRunnable indicates the automation cannot start a run right now,
	// because it is disabled or its type has no registered runner.
	ErrNotRunnable = errors.New("automation is not runnable")
)
