// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package indexer classifies records into the category keys of one dimension.
//
// Every indexer is a pure function over the record list. The only state it
// touches besides its own result is the membership map of each record it lists.
package indexer

import (
	"context"
	"fmt"
	"time"

	"github.com/ManuGH/jukebox/internal/category"
	"github.com/ManuGH/jukebox/internal/config"
	"github.com/ManuGH/jukebox/internal/index"
	"github.com/ManuGH/jukebox/internal/log"
	"github.com/ManuGH/jukebox/internal/metrics"
	"github.com/ManuGH/jukebox/internal/record"
	"github.com/rs/zerolog"
)

// checkEvery is how many records an indexer handles between cancellation checks.
const checkEvery = 256

// Env is the read-only input shared by every indexer of one build.
type Env struct {
	Config *config.Config
	Now    time.Time
	Logger zerolog.Logger
}

// NewEnv returns an Env logging under the indexer component.
func NewEnv(cfg *config.Config, now time.Time) Env {
	return Env{Config: cfg, Now: now, Logger: log.WithComponent("indexer")}
}

// Func builds the index of one dimension.
type Func func(ctx context.Context, env Env, records []*record.Record) (*index.Index, error)

var registry = map[string]Func{
	category.Other:         Other,
	category.Genres:        Genres,
	category.Title:         Title,
	category.Certification: Certification,
	category.Year:          Year,
	category.Library:       Library,
	category.Set:           Set,
	category.Cast:          Cast,
	category.Director:      Director,
	category.Writer:        Writer,
	category.Person:        Person,
	category.Country:       Country,
	category.Award:         Award,
	category.Ratings:       Ratings,
}

// Lookup returns the indexer of dimension.
func Lookup(dimension string) (Func, bool) {
	fn, ok := registry[dimension]
	return fn, ok
}

// each calls fn for every record. A panic while handling one record skips
// that record for this dimension only.
func each(ctx context.Context, env Env, dimension string, records []*record.Record, fn func(*record.Record)) error {
	for i, r := range records {
		if i%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("index %s: %w", dimension, err)
			}
		}
		if r == nil {
			continue
		}
		safely(env, dimension, r, fn)
	}
	return nil
}

func safely(env Env, dimension string, r *record.Record, fn func(*record.Record)) {
	defer func() {
		if p := recover(); p != nil {
			env.Logger.Warn().
				Str(log.FieldEvent, "index.record_skipped").
				Str(log.FieldDimension, dimension).
				Str(log.FieldRecordKey, r.Key()).
				Interface("panic", p).
				Msg("skipping record for dimension")
			metrics.RecordIndexerSkip(dimension)
		}
	}()
	fn(r)
}

// add lists r under key and records the membership on r.
func add(idx *index.Index, dimension, key string, r *record.Record) {
	if idx.AddRecord(key, r) || idx.Contains(key, r) {
		r.AddIndex(dimension, key)
	}
}

func newIndex(env Env, dimension string, opts ...index.Option) *index.Index {
	return index.New(append([]index.Option{index.WithMaxKeys(env.Config.MaxKeys(dimension))}, opts...)...)
}
