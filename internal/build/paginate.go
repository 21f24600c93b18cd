// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package build

import (
	"context"
	"slices"

	"github.com/ManuGH/jukebox/internal/category"
	"github.com/ManuGH/jukebox/internal/dirty"
	"github.com/ManuGH/jukebox/internal/log"
	"github.com/ManuGH/jukebox/internal/metrics"
	"github.com/ManuGH/jukebox/internal/record"
	"github.com/ManuGH/jukebox/internal/telemetry"
	"go.opentelemetry.io/otel/trace"
)

// paginate splits every category into pages and decides whether they can be
// skipped. Keys below the minimum count are dropped unless their dimension is
// always written.
func (r *run) paginate(ctx context.Context) error {
	if other, ok := r.indexes[category.Other]; ok {
		if all, ok := r.cfg.CategoryName(category.All); ok {
			r.decider.Prepare(other.Get(all))
		}
	}

	dims := make([]Dimension, len(r.dims))
	tasks := make([]task, len(r.dims))
	for i, dim := range r.dims {
		tasks[i] = task{name: dim, fn: func(ctx context.Context) error {
			d, err := r.dimension(ctx, dim)
			dims[i] = d
			return err
		}}
	}
	if err := r.pool(ctx, StagePaginate, tasks); err != nil {
		return err
	}
	r.dimensions = dims
	return nil
}

func (r *run) dimension(ctx context.Context, dim string) (Dimension, error) {
	out := Dimension{Name: dim}
	minCount := r.cfg.MinCount(dim)
	maxCount := r.cfg.MovieMaxCount(dim)
	for key, list := range r.indexes[dim].All() {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		if len(list) == 0 {
			continue
		}
		if n := r.count(dim, key, list); n < minCount && !category.IsAlwaysWritten(dim) {
			metrics.RecordCategoryOmitted(dim, "below_min")
			r.logger.Debug().
				Str(log.FieldEvent, "build.category_omitted").
				Str(log.FieldDimension, dim).
				Str(log.FieldCategoryKey, key).
				Int("count", n).
				Int("min_count", minCount).
				Msg("category below minimum count, omitted")
			continue
		}

		list = slices.Clone(list)
		if maxCount > 0 && len(list) > maxCount {
			list = list[:maxCount]
		}
		c := Category{
			Dimension:    dim,
			Key:          key,
			OriginalName: key,
			Records:      list,
			PageSize:     r.pageSize(dim, key, list),
		}
		if dim == category.Other {
			c.OriginalName = r.cfg.OriginalCategory(key)
		}
		c.Pages = pages(dim, key, list, c.PageSize)

		in := dirty.Input{Dimension: dim, Key: key, Records: list, Pages: len(c.Pages)}
		if dim == category.Set {
			in.Master = r.masters[key]
		}
		decision, err := r.decider.Decide(ctx, in)
		if err != nil {
			return out, err
		}
		c.Skip, c.Reason = decision.Skip, decision.Reason
		for i := range c.Pages {
			c.Pages[i].Skip = decision.Skip
		}
		metrics.RecordPages(decision.Skip, len(c.Pages))
		recordDecision(ctx, dim, decision, len(c.Pages))
		out.Categories = append(out.Categories, c)
	}

	metrics.SetCategoryKeys(dim, len(out.Categories))
	trace.SpanFromContext(ctx).AddEvent("dimension",
		trace.WithAttributes(telemetry.DimensionAttributes(dim, len(out.Categories))...))
	return out, nil
}

// count is the number of records listed under key before consolidation.
func (r *run) count(dim, key string, list []*record.Record) int {
	if idx, ok := r.uncompressed[dim]; ok && idx.Has(key) {
		return len(idx.Get(key))
	}
	return len(list)
}

func (r *run) pageSize(dim, key string, list []*record.Record) int {
	size := r.cfg.Pages.Movies
	switch {
	case dim == category.Set:
		size = r.cfg.Pages.Set
		if list[0].IsTVShow() {
			size = r.cfg.Pages.TVSet
		}
	case dim == category.Other && r.cfg.OriginalCategory(key) == category.TVShows:
		size = r.cfg.Pages.TV
	}
	if size <= 0 {
		size = len(list)
	}
	return size
}

func pages(dim, key string, list []*record.Record, size int) []Page {
	last := 1 + (len(list)-1)/size
	out := make([]Page, 0, last)
	for n := 1; n <= last; n++ {
		lo := (n - 1) * size
		hi := min(lo+size, len(list))
		out = append(out, Page{
			Number:  n,
			Name:    category.PageName(dim, key, n),
			Records: list[lo:hi],
		})
	}
	return out
}
