// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"slices"
	"time"

	"github.com/ManuGH/jukebox/internal/category"
)

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Indexes: slices.Clone(category.DefaultIndexes),
		Categories: CategoriesConfig{
			MinCount: 3,
		},
		Sets: SetsConfig{
			MinSetCount: 2,
			Rating:      SetRatingFirst,
			TVRule:      SetTVMajority,
		},
		Explode: ExplodeConfig{
			KeepTV: true,
		},
		Genres: GenresConfig{
			Max: 3,
		},
		New: NewConfig{
			MovieDays:   7,
			TVDays:      7,
			HideWatched: true,
		},
		Watched: WatchedConfig{
			ScannerEnabled: true,
		},
		Indexing: IndexingConfig{
			HD720Width:         1280,
			HD1080Width:        1920,
			ProcessExtras:      true,
			SortIgnorePrefixes: []string{"The", "A", "An"},
		},
		People: PeopleConfig{
			Complete: true,
		},
		Rating: RatingConfig{
			Sources: []string{"average"},
		},
		Pages: PagesConfig{
			Movies: 10,
			TV:     10,
			Set:    10,
			TVSet:  10,
		},
		Build: BuildConfig{
			OutputDir: "jukebox",
			PlanPath:  "jukebox/plan.json",
		},
		State: StateConfig{
			Backend:     BackendFS,
			RedisPrefix: "jukebox:page:",
		},
		Server: ServerConfig{
			Listen:     ":8088",
			RateLimit:  120,
			RateWindow: time.Minute,
		},
		Watch: WatchConfig{
			Enabled:     true,
			Debounce:    500 * time.Millisecond,
			MinInterval: 5 * time.Second,
		},
		Telemetry: TelemetryConfig{
			Exporter:     "grpc",
			SamplingRate: 1.0,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}
