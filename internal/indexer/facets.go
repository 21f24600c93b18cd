// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package indexer

import (
	"context"
	"fmt"
	"strings"

	"github.com/ManuGH/jukebox/internal/category"
	"github.com/ManuGH/jukebox/internal/config"
	"github.com/ManuGH/jukebox/internal/index"
	"github.com/ManuGH/jukebox/internal/record"
)

// Genres lists each record under at most Genres.Max of its genres.
func Genres(ctx context.Context, env Env, records []*record.Record) (*index.Index, error) {
	cfg := env.Config
	idx := newIndex(env, category.Genres)
	err := each(ctx, env, category.Genres, records, func(r *record.Record) {
		if r.IsExtra() {
			return
		}
		count := 0
		for _, g := range r.Genres() {
			if count >= cfg.Genres.Max {
				break
			}
			add(idx, category.Genres, GenreKey(g, cfg), r)
			count++
		}
	})
	return idx, err
}

// GenreKey maps a genre to its master genre when genre filtering is on.
func GenreKey(genre string, cfg *config.Config) string {
	if cfg.Genres.Filter {
		if master, ok := cfg.Genres.Map[strings.ToLower(strings.TrimSpace(genre))]; ok && master != "" {
			return master
		}
	}
	return genre
}

// Certification lists records by certification, keys ordered by the
// configured ordering when there is one.
func Certification(ctx context.Context, env Env, records []*record.Record) (*index.Index, error) {
	cfg := env.Config
	var opts []index.Option
	if len(cfg.Certification.Ordering) > 0 {
		opts = append(opts, index.WithKeyOrder(index.ExplicitOrder(cfg.Certification.Ordering)))
	}
	idx := newIndex(env, category.Certification, opts...)
	err := each(ctx, env, category.Certification, records, func(r *record.Record) {
		if r.IsExtra() {
			return
		}
		add(idx, category.Certification, CertificationKey(r.Certification(), cfg), r)
	})
	return idx, err
}

// CertificationKey remaps a certification through the table, then the default,
// then keeps the raw value.
func CertificationKey(raw string, cfg *config.Config) string {
	if !cfg.Certification.Filter {
		return raw
	}
	if mapped, ok := cfg.Certification.Map[strings.ToLower(strings.TrimSpace(raw))]; ok && mapped != "" {
		return mapped
	}
	if cfg.Certification.Default != "" {
		return cfg.Certification.Default
	}
	return raw
}

// Country lists records under each of their countries.
func Country(ctx context.Context, env Env, records []*record.Record) (*index.Index, error) {
	idx := newIndex(env, category.Country)
	err := each(ctx, env, category.Country, records, func(r *record.Record) {
		if r.IsExtra() {
			return
		}
		for _, c := range r.Countries() {
			add(idx, category.Country, c, r)
		}
	})
	return idx, err
}

// Library lists records under their library description.
func Library(ctx context.Context, env Env, records []*record.Record) (*index.Index, error) {
	idx := newIndex(env, category.Library)
	err := each(ctx, env, category.Library, records, func(r *record.Record) {
		if r.IsExtra() || r.Library() == "" {
			return
		}
		add(idx, category.Library, r.Library(), r)
	})
	return idx, err
}

// Ratings bands records in ten point ranges labelled "N.0-N.9".
func Ratings(ctx context.Context, env Env, records []*record.Record) (*index.Index, error) {
	policy := env.Config.RatingPolicy()
	idx := newIndex(env, category.Ratings)
	err := each(ctx, env, category.Ratings, records, func(r *record.Record) {
		if r.IsExtra() {
			return
		}
		if key, ok := RatingKey(r.Rating(policy)); ok {
			add(idx, category.Ratings, key, r)
		}
	})
	return idx, err
}

// RatingKey returns the band of a resolved rating. Unrated records have none.
func RatingKey(rating int) (string, bool) {
	if rating <= 0 {
		return "", false
	}
	n := rating / 10
	return fmt.Sprintf("%d.0-%d.9", n, n), true
}

// Set lists records under each set they belong to and, in single series page
// mode, TV seasons under their show's original title. The set index is never capped.
func Set(ctx context.Context, env Env, records []*record.Record) (*index.Index, error) {
	cfg := env.Config
	idx := index.New()
	err := each(ctx, env, category.Set, records, func(r *record.Record) {
		if r.IsExtra() {
			return
		}
		if cfg.Sets.SingleSeriesPage && r.IsTVShow() && r.OriginalTitle() != record.Unknown {
			add(idx, category.Set, r.OriginalTitle(), r)
		}
		for _, key := range r.SetKeys() {
			add(idx, category.Set, key, r)
		}
	})
	return idx, err
}
