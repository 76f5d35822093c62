// Package lifecycle holds shared defaults for start and stop hooks.
package lifecycle

import "time"

// DefaultTimeout bounds startup checks and graceful shutdown of long-lived components.
const DefaultTimeout = 10 * time.Second
