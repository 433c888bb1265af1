package sim

import "errors"

// Invocation failures. Each is reported through Outcome.Err and never
// aborts the caller.
var (
	// ErrProcessLaunch indicates the simulator binary could not be started.
	ErrProcessLaunch = errors.New("sim: simulator failed to launch")

	// ErrProcessTimeout indicates the simulator was killed after exceeding its wait.
	ErrProcessTimeout = errors.New("sim: simulator exceeded timeout")

	// ErrProcessExit indicates the simulator exited with a non-zero status.
	ErrProcessExit = errors.New("sim: simulator exited with non-zero status")
)
