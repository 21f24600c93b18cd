// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package indexer

import (
	"context"
	"time"

	"github.com/ManuGH/jukebox/internal/category"
	"github.com/ManuGH/jukebox/internal/index"
	"github.com/ManuGH/jukebox/internal/record"
)

// Other lists records under the property categories. Keys are the display
// names of the categories; disabled categories are skipped.
func Other(ctx context.Context, env Env, records []*record.Record) (*index.Index, error) {
	cfg := env.Config
	policy := cfg.RatingPolicy()
	scanner := cfg.Watched.ScannerEnabled
	idx := newIndex(env, category.Other)

	err := each(ctx, env, category.Other, records, func(r *record.Record) {
		put := func(original string) {
			if name, ok := cfg.CategoryName(original); ok {
				add(idx, category.Other, name, r)
			}
		}

		if r.IsExtra() {
			if cfg.Indexing.ProcessExtras {
				put(category.Extras)
			}
			return
		}

		if cfg.Indexing.SplitHD {
			switch {
			case r.IsHD1080(cfg.Indexing.HD1080Width):
				put(category.HD1080)
			case r.IsHD(cfg.Indexing.HD720Width):
				put(category.HD720)
			}
		} else if r.IsHD(cfg.Indexing.HD720Width) {
			put(category.HD)
		}

		if r.Is3D() {
			put(category.ThreeD)
		}
		if r.Top250() > 0 {
			put(category.Top250)
		}
		if r.Rating(policy) > 0 {
			put(category.Rating)
		}

		if scanner {
			if r.Watched() {
				put(category.Watched)
			} else {
				put(category.Unwatched)
			}
		}

		hidden := r.Watched() && cfg.New.HideWatched && scanner
		if !hidden {
			if r.IsTVShow() {
				if withinDays(r.LastModified(), env.Now, cfg.New.TVDays) {
					put(category.NewTV)
				}
			} else if withinDays(r.LastModified(), env.Now, cfg.New.MovieDays) {
				put(category.NewMovie)
			}
		}

		put(category.All)
		if r.IsTVShow() {
			put(category.TVShows)
		} else {
			put(category.Movies)
			if len(r.SetKeys()) > 0 {
				put(category.Sets)
			}
		}
	})
	return idx, err
}

func withinDays(t, now time.Time, days int) bool {
	if days <= 0 || t.IsZero() {
		return false
	}
	return now.Sub(t) <= time.Duration(days)*24*time.Hour
}
