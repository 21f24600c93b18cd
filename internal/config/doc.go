// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package config loads the jukebox configuration.
//
// Precedence is ENV > file > defaults. The loaded *Config is treated as
// immutable: it is built once, validated, and passed explicitly to every
// component of the catalog build.
package config
