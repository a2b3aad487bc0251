// Package drain tracks whether the process is shutting down so handlers
// can refuse new chat requests while in-flight streams finish.
package drain

import "sync/atomic"

var draining atomic.Bool

// Start marks the process as draining.
func Start() { draining.Store(true) }

// Stop clears the draining flag.
func Stop() { draining.Store(false) }

// IsDraining reports whether shutdown is in progress.
func IsDraining() bool { return draining.Load() }
