// ABOUTME: Error types for per-session failures
// ABOUTME: Distinguishes connection failures from premature channel termination
package sampler

import "fmt"

// ConnectionError means channel establishment failed. Fatal to this
// session only; the session ends with zero samples.
type ConnectionError struct {
	Endpoint string
	Err      error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connect to %s: %v", e.Endpoint, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// PrematureTerminationError means the channel closed before the sample
// quota was reached. Collected reports how many samples were gathered
// so the caller can decide whether the partial result is usable.
type PrematureTerminationError struct {
	Collected int
	Target    int
	Err       error
}

func (e *PrematureTerminationError) Error() string {
	return fmt.Sprintf("session terminated after %d of %d samples: %v", e.Collected, e.Target, e.Err)
}

func (e *PrematureTerminationError) Unwrap() error { return e.Err }
