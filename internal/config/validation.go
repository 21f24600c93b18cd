// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"errors"
	"fmt"
	"slices"

	"github.com/ManuGH/jukebox/internal/category"
)

// Validate checks cfg for values the build cannot run with.
func Validate(cfg *Config) error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if len(cfg.Indexes) == 0 {
		add("indexes: at least one dimension must be enabled")
	}
	for _, dim := range cfg.Indexes {
		if !category.IsDimension(dim) {
			add("indexes: unknown dimension %q", dim)
		}
	}
	if cfg.Categories.MinCount < 0 {
		add("categories.min_count: must be >= 0, got %d", cfg.Categories.MinCount)
	}
	if cfg.Categories.MaxCount < 0 {
		add("categories.max_count: must be >= 0, got %d", cfg.Categories.MaxCount)
	}
	if cfg.Sets.MinSetCount < 1 {
		add("sets.min_set_count: must be >= 1, got %d", cfg.Sets.MinSetCount)
	}
	if !slices.Contains([]string{SetRatingFirst, SetRatingMax, SetRatingAverage}, cfg.Sets.Rating) {
		add("sets.rating: must be one of first, max, average, got %q", cfg.Sets.Rating)
	}
	if !slices.Contains([]string{SetTVMajority, SetTVAny}, cfg.Sets.TVRule) {
		add("sets.tv_rule: must be one of majority, any, got %q", cfg.Sets.TVRule)
	}
	if cfg.Genres.Max < 0 {
		add("genres.max: must be >= 0, got %d", cfg.Genres.Max)
	}
	if cfg.New.MovieDays < 0 || cfg.New.TVDays < 0 {
		add("new: day windows must be >= 0")
	}
	if cfg.New.MovieCount < 0 || cfg.New.TVCount < 0 {
		add("new: counts must be >= 0")
	}
	for name, size := range map[string]int{
		"movies": cfg.Pages.Movies,
		"tv":     cfg.Pages.TV,
		"set":    cfg.Pages.Set,
		"tv_set": cfg.Pages.TVSet,
	} {
		if size < 1 {
			add("pages.%s: must be >= 1, got %d", name, size)
		}
	}
	if cfg.Build.Workers < 0 {
		add("build.workers: must be >= 0, got %d", cfg.Build.Workers)
	}
	if !slices.Contains([]string{BackendFS, BackendMemory, BackendSQLite, BackendBadger, BackendRedis}, cfg.State.Backend) {
		add("state.backend: unknown backend %q", cfg.State.Backend)
	}
	if cfg.State.Backend == BackendRedis && cfg.State.RedisAddr == "" {
		add("state.redis_addr: required for backend redis")
	}
	if cfg.Telemetry.Enabled && cfg.Telemetry.Exporter != "grpc" && cfg.Telemetry.Exporter != "http" {
		add("telemetry.exporter: must be grpc or http, got %q", cfg.Telemetry.Exporter)
	}
	if cfg.Telemetry.SamplingRate < 0 || cfg.Telemetry.SamplingRate > 1 {
		add("telemetry.sampling_rate: must be within [0,1], got %v", cfg.Telemetry.SamplingRate)
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
}
