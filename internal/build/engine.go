// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package build runs a catalog build: it indexes every record by dimension,
// consolidates sets, sorts, links navigation and decides which category pages
// have to be regenerated.
//
// Stages run in a fixed order with a barrier between them. Work inside a stage
// runs on a bounded worker pool; a failing task fails the stage and the build.
package build

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ManuGH/jukebox/internal/category"
	"github.com/ManuGH/jukebox/internal/config"
	"github.com/ManuGH/jukebox/internal/dirty"
	"github.com/ManuGH/jukebox/internal/indexer"
	"github.com/ManuGH/jukebox/internal/log"
	"github.com/ManuGH/jukebox/internal/metrics"
	"github.com/ManuGH/jukebox/internal/record"
	"github.com/ManuGH/jukebox/internal/sets"
	"github.com/ManuGH/jukebox/internal/sorting"
	"github.com/ManuGH/jukebox/internal/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ErrBuildRunning is returned when a build is requested while another one is
// still running on the same engine.
var ErrBuildRunning = errors.New("build already running")

// TaskError reports the pool task that failed a stage.
type TaskError struct {
	Stage string
	Task  string
	Err   error
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("%s stage: task %s: %v", e.Stage, e.Task, e.Err)
}

func (e *TaskError) Unwrap() error {
	return e.Err
}

// Options are the per-build inputs that are not part of the configuration.
type Options struct {
	// DirtyLibraries names libraries whose content changed since the last build.
	DirtyLibraries []string
	// Now is the reference time of the New and Year categories. Zero means
	// the wall clock.
	Now time.Time
}

// Engine runs builds for one configuration. Builds are serialized: a Build
// call while another is running returns ErrBuildRunning.
type Engine struct {
	cfg        *config.Config
	pages      dirty.Pages
	table      *sorting.Table
	sets       *sets.Consolidator
	dimensions []string

	mu   sync.Mutex
	last atomic.Pointer[Result]
}

// NewEngine returns an engine for cfg. pages answers whether a generated page
// already exists; nil means no page exists.
func NewEngine(cfg *config.Config, pages dirty.Pages) *Engine {
	if pages == nil {
		pages = noPages{}
	}
	return &Engine{
		cfg:        cfg,
		pages:      pages,
		table:      sorting.NewTable(cfg),
		sets:       sets.New(cfg),
		dimensions: dimensions(cfg),
	}
}

// dimensions returns the enabled dimensions in configuration order. The Set
// dimension is always built since consolidation needs it.
func dimensions(cfg *config.Config) []string {
	logger := log.WithComponent("build")
	out := make([]string, 0, len(cfg.Indexes)+1)
	seen := make(map[string]struct{}, len(cfg.Indexes)+1)
	for _, dim := range cfg.Indexes {
		if _, dup := seen[dim]; dup {
			continue
		}
		if _, ok := indexer.Lookup(dim); !ok {
			logger.Warn().
				Str(log.FieldEvent, "build.unknown_dimension").
				Str(log.FieldDimension, dim).
				Msg("ignoring unknown dimension")
			continue
		}
		seen[dim] = struct{}{}
		out = append(out, dim)
	}
	if _, ok := seen[category.Set]; !ok {
		out = append(out, category.Set)
	}
	return out
}

// Last returns the result of the last successful build, or nil.
func (e *Engine) Last() *Result {
	return e.last.Load()
}

// Build runs a full build over records. Records are updated in place: their
// memberships are reset and rebuilt, navigation links are recomputed and a
// changed link raises DirtyInfo on the record.
func (e *Engine) Build(ctx context.Context, records []*record.Record, opts Options) (*Result, error) {
	if !e.mu.TryLock() {
		metrics.RecordBuild(metrics.ResultBusy, 0)
		return nil, ErrBuildRunning
	}
	defer e.mu.Unlock()

	started := time.Now()
	now := opts.Now
	if now.IsZero() {
		now = started
	}
	id := uuid.NewString()
	ctx = log.ContextWithBuildID(ctx, id)
	logger := log.WithComponentFromContext(ctx, "build")

	input := make([]*record.Record, 0, len(records))
	for _, r := range records {
		if r != nil {
			input = append(input, r)
		}
	}

	ctx, span := telemetry.Tracer().Start(ctx, "build",
		trace.WithAttributes(telemetry.BuildAttributes(id, len(input), e.cfg.Workers())...))
	defer span.End()

	logger.Info().
		Str(log.FieldEvent, "build.started").
		Int("records", len(input)).
		Int("workers", e.cfg.Workers()).
		Strs("dimensions", e.dimensions).
		Msg("catalog build started")

	r := &run{
		cfg:     e.cfg,
		table:   e.table,
		sets:    e.sets,
		decider: dirty.NewDecider(e.cfg, e.pages, opts.DirtyLibraries),
		env:     indexer.NewEnv(e.cfg, now),
		logger:  logger,
		dims:    e.dimensions,
		records: input,
	}
	res, err := r.execute(ctx)
	elapsed := time.Since(started)
	if err != nil {
		result := metrics.ResultFailed
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			result = metrics.ResultCancelled
		}
		metrics.RecordBuild(result, elapsed)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.Error().
			Err(err).
			Str(log.FieldEvent, "build.failed").
			Str("result", result).
			Dur("duration", elapsed).
			Msg("catalog build failed")
		return nil, err
	}

	res.BuildID = id
	res.StartedAt = started
	res.FinishedAt = started.Add(elapsed)
	skipped, regenerated := res.PageCounts()
	span.SetAttributes(telemetry.PageAttributes(skipped, regenerated)...)

	metrics.RecordBuild(metrics.ResultSuccess, elapsed)
	metrics.SetRecords(len(input))
	logger.Info().
		Str(log.FieldEvent, "build.completed").
		Int("records", len(input)).
		Int("masters", len(res.Masters)).
		Int("pages_skipped", skipped).
		Int("pages_regenerated", regenerated).
		Dur("duration", elapsed).
		Msg("catalog build completed")

	e.last.Store(res)
	return res, nil
}

type noPages struct{}

func (noPages) Exists(context.Context, string) (bool, error) { return false, nil }
