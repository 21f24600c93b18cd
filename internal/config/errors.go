// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownConfigField classifies strict YAML parse failures caused by unknown keys.
	ErrUnknownConfigField = errors.New("unknown config field")
	// ErrInvalidConfig wraps every validation failure.
	ErrInvalidConfig = errors.New("invalid config")
)

// ConfigurationError reports a mapping source that could not be used. The
// affected mapping falls back to identity; the load itself does not fail.
type ConfigurationError struct {
	Mapping string
	Path    string
	Err     error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s mapping %s: %v", e.Mapping, e.Path, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}
