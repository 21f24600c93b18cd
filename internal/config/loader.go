// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ManuGH/jukebox/internal/log"
	"gopkg.in/yaml.v3"
)

// Loader handles configuration loading with precedence
type Loader struct {
	configPath      string
	version         string
	ConsumedEnvKeys map[string]struct{}
}

// NewLoader creates a new configuration loader
func NewLoader(configPath, version string) *Loader {
	return &Loader{
		configPath:      configPath,
		version:         version,
		ConsumedEnvKeys: make(map[string]struct{}),
	}
}

func (l *Loader) envString(key, defaultVal string) string {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseString(key, defaultVal)
}

func (l *Loader) envBool(key string, defaultVal bool) bool {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseBool(key, defaultVal)
}

func (l *Loader) envInt(key string, defaultVal int) int {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseInt(key, defaultVal)
}

func (l *Loader) envDuration(key string, defaultVal time.Duration) time.Duration {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseDuration(key, defaultVal)
}

func (l *Loader) envFloat(key string, defaultVal float64) float64 {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseFloat(key, defaultVal)
}

func (l *Loader) envList(key string, defaultVal []string) []string {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseList(key, defaultVal)
}

// Load loads configuration with precedence: ENV > File > Defaults.
// Mapping files named by the configuration are read last; a broken mapping
// file is logged and leaves that mapping empty.
func (l *Loader) Load() (*Config, error) {
	cfg := Default()

	if l.configPath != "" {
		if err := l.loadFile(l.configPath, &cfg); err != nil {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	l.mergeEnv(&cfg)
	cfg.Version = l.version

	logger := log.WithComponent("config")
	for _, err := range loadMappings(&cfg, filepath.Dir(l.configPath)) {
		logger.Error().
			Err(err).
			Str(log.FieldEvent, "config.mapping_failed").
			Msg("mapping source unusable, falling back to identity mapping")
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadFile decodes the YAML file strictly on top of the defaults in cfg.
func (l *Loader) loadFile(path string, cfg *Config) error {
	path = filepath.Clean(path)

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("unsupported config format: %s (only YAML supported)", ext)
	}

	// #nosec G304 -- configuration file paths are provided by the operator via CLI/ENV
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		if strings.Contains(err.Error(), "field") && strings.Contains(err.Error(), "not found") {
			return fmt.Errorf("strict config parse error: %w: %w", ErrUnknownConfigField, err)
		}
		return fmt.Errorf("strict config parse error: %w", err)
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("config file contains multiple documents or trailing content")
	}
	return nil
}

func (l *Loader) mergeEnv(cfg *Config) {
	cfg.Indexes = l.envList(EnvPrefix+"INDEXES", cfg.Indexes)
	cfg.Categories.MinCount = l.envInt(EnvPrefix+"CATEGORIES_MIN_COUNT", cfg.Categories.MinCount)
	cfg.Categories.MaxCount = l.envInt(EnvPrefix+"CATEGORIES_MAX_COUNT", cfg.Categories.MaxCount)

	cfg.Sets.MinSetCount = l.envInt(EnvPrefix+"SETS_MIN_COUNT", cfg.Sets.MinSetCount)
	cfg.Sets.RequireAll = l.envBool(EnvPrefix+"SETS_REQUIRE_ALL", cfg.Sets.RequireAll)
	cfg.Sets.Rating = l.envString(EnvPrefix+"SETS_RATING", cfg.Sets.Rating)
	cfg.Sets.TVRule = l.envString(EnvPrefix+"SETS_TV_RULE", cfg.Sets.TVRule)
	cfg.Sets.Reindex = l.envBool(EnvPrefix+"SETS_REINDEX", cfg.Sets.Reindex)
	cfg.Sets.SingleSeriesPage = l.envBool(EnvPrefix+"SINGLE_SERIES_PAGE", cfg.Sets.SingleSeriesPage)

	cfg.Explode.Categories = l.envList(EnvPrefix+"EXPLODE_CATEGORIES", cfg.Explode.Categories)
	cfg.Explode.Remove = l.envBool(EnvPrefix+"EXPLODE_REMOVE", cfg.Explode.Remove)
	cfg.Explode.KeepTV = l.envBool(EnvPrefix+"EXPLODE_KEEP_TV", cfg.Explode.KeepTV)
	cfg.Explode.BeforeSort = l.envBool(EnvPrefix+"EXPLODE_BEFORE_SORT", cfg.Explode.BeforeSort)

	cfg.New.MovieDays = l.envInt(EnvPrefix+"NEW_MOVIE_DAYS", cfg.New.MovieDays)
	cfg.New.TVDays = l.envInt(EnvPrefix+"NEW_TV_DAYS", cfg.New.TVDays)
	cfg.New.MovieCount = l.envInt(EnvPrefix+"NEW_MOVIE_COUNT", cfg.New.MovieCount)
	cfg.New.TVCount = l.envInt(EnvPrefix+"NEW_TV_COUNT", cfg.New.TVCount)

	cfg.Build.Workers = l.envInt(EnvPrefix+"WORKERS", cfg.Build.Workers)
	cfg.Build.ForceIndexOverwrite = l.envBool(EnvPrefix+"FORCE_INDEX_OVERWRITE", cfg.Build.ForceIndexOverwrite)
	cfg.Build.OutputDir = l.envString(EnvPrefix+"OUTPUT_DIR", cfg.Build.OutputDir)
	cfg.Build.PlanPath = l.envString(EnvPrefix+"PLAN_PATH", cfg.Build.PlanPath)

	cfg.State.Backend = l.envString(EnvPrefix+"STATE_BACKEND", cfg.State.Backend)
	cfg.State.Path = l.envString(EnvPrefix+"STATE_PATH", cfg.State.Path)
	cfg.State.RedisAddr = l.envString(EnvPrefix+"REDIS_ADDR", cfg.State.RedisAddr)

	cfg.Source.Records = l.envString(EnvPrefix+"RECORDS", cfg.Source.Records)

	cfg.Server.Listen = l.envString(EnvPrefix+"LISTEN", cfg.Server.Listen)
	cfg.Server.RateLimit = l.envInt(EnvPrefix+"RATE_LIMIT", cfg.Server.RateLimit)

	cfg.Watch.Enabled = l.envBool(EnvPrefix+"WATCH", cfg.Watch.Enabled)
	cfg.Watch.Debounce = l.envDuration(EnvPrefix+"WATCH_DEBOUNCE", cfg.Watch.Debounce)
	cfg.Watch.MinInterval = l.envDuration(EnvPrefix+"WATCH_MIN_INTERVAL", cfg.Watch.MinInterval)

	cfg.Telemetry.Enabled = l.envBool(EnvPrefix+"TELEMETRY_ENABLED", cfg.Telemetry.Enabled)
	cfg.Telemetry.Exporter = l.envString(EnvPrefix+"TELEMETRY_EXPORTER", cfg.Telemetry.Exporter)
	cfg.Telemetry.Endpoint = l.envString(EnvPrefix+"OTLP_ENDPOINT", cfg.Telemetry.Endpoint)
	cfg.Telemetry.SamplingRate = l.envFloat(EnvPrefix+"TELEMETRY_SAMPLING_RATE", cfg.Telemetry.SamplingRate)

	cfg.Log.Level = l.envString(EnvPrefix+"LOG_LEVEL", cfg.Log.Level)
}
