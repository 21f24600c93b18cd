// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import "time"

// Config is the resolved configuration of a jukebox run.
type Config struct {
	Version string `yaml:"-"`

	// Indexes is the ordered list of enabled dimensions.
	Indexes       []string            `yaml:"indexes,omitempty"`
	Categories    CategoriesConfig    `yaml:"categories,omitempty"`
	Sets          SetsConfig          `yaml:"sets,omitempty"`
	Explode       ExplodeConfig       `yaml:"explode,omitempty"`
	Genres        GenresConfig        `yaml:"genres,omitempty"`
	Certification CertificationConfig `yaml:"certification,omitempty"`
	New           NewConfig           `yaml:"new,omitempty"`
	Watched       WatchedConfig       `yaml:"watched,omitempty"`
	Indexing      IndexingConfig      `yaml:"indexing,omitempty"`
	People        PeopleConfig        `yaml:"people,omitempty"`
	Awards        AwardsConfig        `yaml:"awards,omitempty"`
	Rating        RatingConfig        `yaml:"rating,omitempty"`
	// Sort overrides the sort rule of a category, keyed by its original name.
	Sort  map[string]SortRule `yaml:"sort,omitempty"`
	Pages PagesConfig         `yaml:"pages,omitempty"`

	Build     BuildConfig     `yaml:"build,omitempty"`
	State     StateConfig     `yaml:"state,omitempty"`
	Source    SourceConfig    `yaml:"source,omitempty"`
	Server    ServerConfig    `yaml:"server,omitempty"`
	Watch     WatchConfig     `yaml:"watch,omitempty"`
	Telemetry TelemetryConfig `yaml:"telemetry,omitempty"`
	Log       LogConfig       `yaml:"log,omitempty"`
}

// CategoriesConfig controls category naming and thresholds.
type CategoriesConfig struct {
	// Rename maps an original category name to its display name. An empty
	// display name disables the category.
	Rename map[string]string `yaml:"rename,omitempty"`
	// File is an optional YAML file holding more Rename entries.
	File string `yaml:"file,omitempty"`

	// MinCount is the number of records a key needs to be written.
	MinCount   int            `yaml:"min_count"`
	MinCountBy map[string]int `yaml:"min_count_by,omitempty"`
	// MaxCount caps the number of distinct keys of a dimension. 0 is unlimited.
	MaxCount   int            `yaml:"max_count"`
	MaxCountBy map[string]int `yaml:"max_count_by,omitempty"`
	// MovieMaxCount caps the number of records listed under one key. 0 is unlimited.
	MovieMaxCount   int            `yaml:"movie_max_count"`
	MovieMaxCountBy map[string]int `yaml:"movie_max_count_by,omitempty"`
}

// SetsConfig controls set consolidation.
type SetsConfig struct {
	MinSetCount int  `yaml:"min_set_count"`
	RequireAll  bool `yaml:"require_all"`
	// Rating is the master rating policy: first, max or average.
	Rating string `yaml:"rating"`
	// TVRule decides when a master is a TV set: majority or any.
	TVRule string `yaml:"tv_rule"`
	// Reindex forces every Set page to be regenerated.
	Reindex bool `yaml:"reindex"`
	// SingleSeriesPage groups all seasons of a show under its original title.
	SingleSeriesPage bool `yaml:"single_series_page"`
}

// ExplodeConfig controls expanding set masters back into their members.
type ExplodeConfig struct {
	// Categories lists dimensions, or Other sub-categories, to explode sets in.
	Categories []string `yaml:"categories,omitempty"`
	Remove     bool     `yaml:"remove"`
	KeepTV     bool     `yaml:"keep_tv"`
	BeforeSort bool     `yaml:"before_sort"`
	// RemoveTitle keeps set masters out of the Title dimension.
	RemoveTitle bool `yaml:"remove_title"`
}

// GenresConfig controls genre bucketing.
type GenresConfig struct {
	Max    int  `yaml:"max"`
	Filter bool `yaml:"filter"`
	// Map sends a genre (lowercased) to its master genre.
	Map  map[string]string `yaml:"map,omitempty"`
	File string            `yaml:"file,omitempty"`
}

// CertificationConfig controls certification bucketing.
type CertificationConfig struct {
	Filter   bool              `yaml:"filter"`
	Map      map[string]string `yaml:"map,omitempty"`
	Default  string            `yaml:"default,omitempty"`
	Ordering []string          `yaml:"ordering,omitempty"`
	File     string            `yaml:"file,omitempty"`
}

// NewConfig controls the New-Movie and New-TV categories.
type NewConfig struct {
	MovieDays   int  `yaml:"movie_days"`
	TVDays      int  `yaml:"tv_days"`
	MovieCount  int  `yaml:"movie_count"`
	TVCount     int  `yaml:"tv_count"`
	HideWatched bool `yaml:"hide_watched"`
}

// WatchedConfig controls watched-state categories.
type WatchedConfig struct {
	ScannerEnabled bool `yaml:"scanner_enabled"`
}

// IndexingConfig holds dimension specific switches.
type IndexingConfig struct {
	CharGroupEnglish   bool              `yaml:"char_group_english"`
	CharMap            map[string]string `yaml:"char_map,omitempty"`
	SplitHD            bool              `yaml:"split_hd"`
	HD720Width         int               `yaml:"hd720_width"`
	HD1080Width        int               `yaml:"hd1080_width"`
	ProcessExtras      bool              `yaml:"process_extras"`
	SortIgnorePrefixes []string          `yaml:"sort_ignore_prefixes,omitempty"`
}

// PeopleConfig controls the people dimensions.
type PeopleConfig struct {
	Scan      bool `yaml:"scan"`
	Exclusive bool `yaml:"exclusive"`
	// Complete requires a person to have a backing file to be listed.
	Complete bool `yaml:"complete"`
}

// AwardsConfig filters the Award dimension.
type AwardsConfig struct {
	Events    []string `yaml:"events,omitempty"`
	Names     []string `yaml:"names,omitempty"`
	Won       []string `yaml:"won,omitempty"`
	Nominated []string `yaml:"nominated,omitempty"`
	// WonOnly ignores nominations.
	WonOnly bool `yaml:"won_only"`
}

// RatingConfig selects how a record's rating is resolved.
type RatingConfig struct {
	Sources []string `yaml:"sources,omitempty"`
	Ignore  []string `yaml:"ignore,omitempty"`
}

// SortRule orders the records of a category.
type SortRule struct {
	By        string `yaml:"by"`
	Ascending *bool  `yaml:"ascending,omitempty"`
}

// PagesConfig sets the page sizes per kind of category.
type PagesConfig struct {
	Movies int `yaml:"movies"`
	TV     int `yaml:"tv"`
	Set    int `yaml:"set"`
	TVSet  int `yaml:"tv_set"`
}

// BuildConfig controls the build run.
type BuildConfig struct {
	Workers             int    `yaml:"workers"`
	ForceIndexOverwrite bool   `yaml:"force_index_overwrite"`
	OutputDir           string `yaml:"output_dir"`
	PlanPath            string `yaml:"plan_path"`
}

// StateConfig selects where generated page state is kept.
type StateConfig struct {
	Backend     string `yaml:"backend"`
	Path        string `yaml:"path,omitempty"`
	RedisAddr   string `yaml:"redis_addr,omitempty"`
	RedisPrefix string `yaml:"redis_prefix,omitempty"`
}

// SourceConfig points at the scanner output.
type SourceConfig struct {
	Records string `yaml:"records"`
}

// ServerConfig controls the read API.
type ServerConfig struct {
	Listen     string        `yaml:"listen"`
	RateLimit  int           `yaml:"rate_limit"`
	RateWindow time.Duration `yaml:"rate_window"`
}

// WatchConfig controls rebuild-on-change in serve mode.
type WatchConfig struct {
	Enabled     bool          `yaml:"enabled"`
	Debounce    time.Duration `yaml:"debounce"`
	MinInterval time.Duration `yaml:"min_interval"`
}

// TelemetryConfig controls OpenTelemetry tracing.
type TelemetryConfig struct {
	Enabled      bool    `yaml:"enabled"`
	Exporter     string  `yaml:"exporter"`
	Endpoint     string  `yaml:"endpoint,omitempty"`
	SamplingRate float64 `yaml:"sampling_rate"`
}

// LogConfig controls the global logger.
type LogConfig struct {
	Level string `yaml:"level"`
}
