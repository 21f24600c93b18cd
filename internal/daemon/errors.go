// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package daemon

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrMissingEngine is returned when a daemon is created without an engine.
	ErrMissingEngine = errors.New("build engine is required")

	// ErrMissingLoader is returned when a daemon is created without a record loader.
	ErrMissingLoader = errors.New("record loader is required")
)

// ThrottledError is returned by Rebuild when rebuilds come in faster than
// the configured minimum interval.
type ThrottledError struct {
	Wait time.Duration
}

func (e *ThrottledError) Error() string {
	return fmt.Sprintf("rebuild throttled, retry in %s", e.Wait.Round(time.Millisecond))
}

// RetryAfter is how long the caller should wait.
func (e *ThrottledError) RetryAfter() time.Duration { return e.Wait }
