// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"runtime"
	"slices"
	"strings"

	"github.com/ManuGH/jukebox/internal/category"
	"github.com/ManuGH/jukebox/internal/record"
)

// Set master rating policies.
const (
	SetRatingFirst   = "first"
	SetRatingMax     = "max"
	SetRatingAverage = "average"
)

// Set master TV rules.
const (
	SetTVMajority = "majority"
	SetTVAny      = "any"
)

// State backends.
const (
	BackendFS     = "fs"
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendBadger = "badger"
	BackendRedis  = "redis"
)

// HasIndex reports whether dimension is enabled.
func (c *Config) HasIndex(dimension string) bool {
	return slices.Contains(c.Indexes, dimension)
}

// CategoryName resolves the display name of an original category name. A
// category renamed to the empty string is disabled and reported as absent.
func (c *Config) CategoryName(original string) (string, bool) {
	if display, ok := c.Categories.Rename[original]; ok {
		display = strings.TrimSpace(display)
		return display, display != ""
	}
	return original, true
}

// OriginalCategory maps a display name back to the original category name.
func (c *Config) OriginalCategory(display string) string {
	for original, renamed := range c.Categories.Rename {
		if renamed == display && renamed != "" {
			return original
		}
	}
	return display
}

// MinCount is the number of records a key of dimension needs to be written.
func (c *Config) MinCount(dimension string) int {
	if v, ok := c.Categories.MinCountBy[dimension]; ok {
		return v
	}
	return c.Categories.MinCount
}

// MaxKeys caps the distinct keys of dimension. 0 is unlimited.
func (c *Config) MaxKeys(dimension string) int {
	if v, ok := c.Categories.MaxCountBy[dimension]; ok {
		return v
	}
	return c.Categories.MaxCount
}

// MovieMaxCount caps the records listed under one key of dimension. 0 is unlimited.
func (c *Config) MovieMaxCount(dimension string) int {
	if v, ok := c.Categories.MovieMaxCountBy[dimension]; ok {
		return v
	}
	return c.Categories.MovieMaxCount
}

// RatingPolicy returns the policy records resolve their rating with.
func (c *Config) RatingPolicy() record.RatingPolicy {
	return record.RatingPolicy{
		Sources: slices.Clone(c.Rating.Sources),
		Ignore:  slices.Clone(c.Rating.Ignore),
	}
}

// Workers is the size of the build worker pool.
func (c *Config) Workers() int {
	if c.Build.Workers > 0 {
		return c.Build.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// ExplodesIn reports whether sets are exploded in dimension, or for the Other
// dimension in the property category key.
func (c *Config) ExplodesIn(dimension, key string) bool {
	if slices.Contains(c.Explode.Categories, dimension) {
		return true
	}
	if dimension == category.Other {
		return slices.Contains(c.Explode.Categories, key) ||
			slices.Contains(c.Explode.Categories, c.OriginalCategory(key))
	}
	return false
}
