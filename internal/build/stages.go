// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package build

import (
	"context"
	"slices"

	"github.com/ManuGH/jukebox/internal/category"
	"github.com/ManuGH/jukebox/internal/config"
	"github.com/ManuGH/jukebox/internal/dirty"
	"github.com/ManuGH/jukebox/internal/index"
	"github.com/ManuGH/jukebox/internal/indexer"
	"github.com/ManuGH/jukebox/internal/log"
	"github.com/ManuGH/jukebox/internal/record"
	"github.com/ManuGH/jukebox/internal/sets"
	"github.com/ManuGH/jukebox/internal/sorting"
	"github.com/rs/zerolog"
)

// Stage names, used in spans, metrics and task errors.
const (
	StageIndex       = "index"
	StageConsolidate = "consolidate"
	StageSort        = "sort"
	StageNew         = "new"
	StageExplode     = "explode"
	StageNavigation  = "navigation"
	StageMasters     = "masters"
	StagePaginate    = "paginate"
)

// run holds the state of one build.
type run struct {
	cfg     *config.Config
	table   *sorting.Table
	sets    *sets.Consolidator
	decider *dirty.Decider
	env     indexer.Env
	logger  zerolog.Logger
	dims    []string
	records []*record.Record

	indexes      map[string]*index.Index
	uncompressed map[string]*index.Index
	masters      sets.Masters
	navigation   []*record.Record
	dimensions   []Dimension
}

func (r *run) execute(ctx context.Context) (*Result, error) {
	stages := []struct {
		name string
		fn   func(context.Context) error
	}{
		{StageIndex, r.index},
		{StageConsolidate, r.consolidate},
		{StageSort, r.sort},
		{StageNew, r.mergeNew},
		{StageExplode, r.explode},
		{StageNavigation, r.link},
		{StageMasters, r.assignMasters},
		{StagePaginate, r.paginate},
	}
	for _, s := range stages {
		if err := r.stage(ctx, s.name, s.fn); err != nil {
			return nil, err
		}
	}
	return &Result{
		Dimensions:   r.dimensions,
		Records:      r.navigation,
		Masters:      r.masters,
		cfg:          r.cfg,
		uncompressed: r.uncompressed,
		byKey:        keyed(r.records, r.masters),
	}, nil
}

// index runs one indexer per dimension. Each task hands its index to a single
// merging goroutine.
func (r *run) index(ctx context.Context) error {
	for _, rec := range r.records {
		rec.ResetIndexes()
	}

	type built struct {
		dimension string
		idx       *index.Index
	}
	out := make(chan built)
	merged := make(chan map[string]*index.Index, 1)
	go func() {
		m := make(map[string]*index.Index, len(r.dims))
		for b := range out {
			m[b.dimension] = b.idx
		}
		merged <- m
	}()

	tasks := make([]task, 0, len(r.dims))
	for _, dim := range r.dims {
		fn, _ := indexer.Lookup(dim)
		tasks = append(tasks, task{name: dim, fn: func(ctx context.Context) error {
			idx, err := fn(ctx, r.env, r.records)
			if err != nil {
				return err
			}
			select {
			case out <- built{dimension: dim, idx: idx}:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		}})
	}
	err := r.pool(ctx, StageIndex, tasks)
	close(out)
	r.indexes = <-merged
	if err != nil {
		return err
	}

	for _, dim := range r.dims {
		r.logger.Debug().
			Str(log.FieldEvent, "build.dimension_indexed").
			Str(log.FieldDimension, dim).
			Int("keys", r.indexes[dim].Len()).
			Msg("dimension indexed")
	}
	return nil
}

// consolidate keeps an uncompressed copy of every index, builds the set
// masters and substitutes them into every category but the sets themselves.
func (r *run) consolidate(ctx context.Context) error {
	r.uncompressed = make(map[string]*index.Index, len(r.indexes))
	for dim, idx := range r.indexes {
		r.uncompressed[dim] = idx.Clone()
	}
	setIndex := r.uncompressed[category.Set]

	masters, err := r.sets.BuildMasters(ctx, setIndex)
	if err != nil {
		return &TaskError{Stage: StageConsolidate, Task: category.Set, Err: err}
	}
	r.masters = masters

	tasks := make([]task, 0, len(r.dims))
	for _, dim := range r.dims {
		if dim == category.Set {
			continue
		}
		idx := r.indexes[dim]
		tasks = append(tasks, task{name: dim, fn: func(ctx context.Context) error {
			for _, key := range idx.Keys() {
				if err := ctx.Err(); err != nil {
					return err
				}
				idx.Put(key, r.sets.Compress(idx.Get(key), setIndex, masters, dim, key))
			}
			return nil
		}})
	}
	if err := r.pool(ctx, StageConsolidate, tasks); err != nil {
		return err
	}

	title, ok := r.indexes[category.Title]
	if !ok || r.cfg.Explode.RemoveTitle {
		return nil
	}
	for _, key := range setIndex.Keys() {
		m, ok := masters[key]
		if !ok || !r.sets.Qualifies(setIndex, key) {
			continue
		}
		titleKey := indexer.TitleKey(m.StrippedTitleSort(r.cfg.Indexing.SortIgnorePrefixes), r.cfg)
		if title.AddRecord(titleKey, m) || title.Contains(titleKey, m) {
			m.AddIndex(category.Title, titleKey)
		}
	}
	return nil
}

type sortJob struct {
	dimension string
	key       string
	list      []*record.Record
}

// sort orders every list. Jobs sort their own copies; results are written
// back once the pool is done.
func (r *run) sort(ctx context.Context) error {
	var jobs []*sortJob
	for _, dim := range r.dims {
		for key, list := range r.indexes[dim].All() {
			jobs = append(jobs, &sortJob{dimension: dim, key: key, list: slices.Clone(list)})
		}
	}
	tasks := make([]task, len(jobs))
	for i, job := range jobs {
		tasks[i] = task{name: job.dimension + "/" + job.key, fn: func(context.Context) error {
			r.table.Sort(job.list, r.table.Comparator(job.dimension, job.key))
			return nil
		}}
	}
	if err := r.pool(ctx, StageSort, tasks); err != nil {
		return err
	}
	for _, job := range jobs {
		r.indexes[job.dimension].Put(job.key, job.list)
	}
	return nil
}

func newestFirst(a, b *record.Record) int {
	return b.LastModified().Compare(a.LastModified())
}

// mergeNew trims New-Movie and New-TV to the most recent records and merges
// what is left into the New category.
func (r *run) mergeNew(context.Context) error {
	other, ok := r.indexes[category.Other]
	if !ok {
		return nil
	}
	var merged []*record.Record
	for _, sub := range []struct {
		name  string
		count int
	}{
		{category.NewMovie, r.cfg.New.MovieCount},
		{category.NewTV, r.cfg.New.TVCount},
	} {
		key, ok := r.cfg.CategoryName(sub.name)
		if !ok {
			continue
		}
		list := other.Get(key)
		if len(list) == 0 {
			other.Remove(key)
			continue
		}
		if sub.count > 0 && len(list) > sub.count {
			r.table.Sort(list, newestFirst)
			list = list[:sub.count]
			r.table.Sort(list, r.table.Comparator(category.Other, key))
			other.Put(key, list)
		}
		merged = append(merged, list...)
	}

	key, ok := r.cfg.CategoryName(category.New)
	if !ok || len(merged) == 0 {
		return nil
	}
	r.table.Sort(merged, r.table.Comparator(category.Other, key))
	if other.Put(key, merged) {
		r.logger.Debug().
			Str(log.FieldEvent, "build.new_merged").
			Str(log.FieldCategoryKey, key).
			Int("records", len(other.Get(key))).
			Msg("new category merged")
	}
	return nil
}

// explode expands masters of configured categories after sorting.
func (r *run) explode(ctx context.Context) error {
	if r.cfg.Explode.BeforeSort || len(r.cfg.Explode.Categories) == 0 {
		return nil
	}
	setIndex := r.indexes[category.Set]
	tasks := make([]task, 0, len(r.dims))
	for _, dim := range r.dims {
		if dim == category.Set {
			continue
		}
		idx, uncompressed := r.indexes[dim], r.uncompressed[dim]
		tasks = append(tasks, task{name: dim, fn: func(ctx context.Context) error {
			for _, key := range idx.Keys() {
				if err := ctx.Err(); err != nil {
					return err
				}
				list := idx.Get(key)
				out := r.sets.Explode(list, setIndex, uncompressed, dim, key)
				if !slices.Equal(out, list) {
					idx.Put(key, out)
				}
			}
			return nil
		}})
	}
	return r.pool(ctx, StageExplode, tasks)
}

// link recomputes navigation over all records in natural order. Extras form
// their own chain.
func (r *run) link(context.Context) error {
	all := slices.Clone(r.records)
	r.table.Sort(all, nil)

	var main, extras []*record.Record
	for _, rec := range all {
		if rec.IsExtra() {
			extras = append(extras, rec)
		} else {
			main = append(main, rec)
		}
	}
	changed := chain(main, false) + chain(extras, true)
	r.navigation = append(main, extras...)

	r.logger.Debug().
		Str(log.FieldEvent, "build.navigation_linked").
		Int("records", len(main)).
		Int("extras", len(extras)).
		Int("changed", changed).
		Msg("navigation linked")
	return nil
}

// chain links list in order. With closed set, the first record is its own
// previous and the last its own next; otherwise those links are empty.
func chain(list []*record.Record, closed bool) int {
	if len(list) == 0 {
		return 0
	}
	first, last := list[0].BaseName(), list[len(list)-1].BaseName()
	changed := 0
	for i, rec := range list {
		var prev, next string
		switch {
		case i > 0:
			prev = list[i-1].BaseName()
		case closed:
			prev = first
		}
		switch {
		case i < len(list)-1:
			next = list[i+1].BaseName()
		case closed:
			next = last
		}
		if record.Track(rec, record.DirtyInfo, rec.SetNavigation(first, prev, next, last)) {
			changed++
		}
	}
	return changed
}

// assignMasters points each master's poster and files at its first member in
// set order.
func (r *run) assignMasters(context.Context) error {
	setIndex := r.indexes[category.Set]
	for key, m := range r.masters {
		members := setIndex.Get(key)
		if len(members) == 0 {
			continue
		}
		m.SetPoster(members[0].BaseName() + ".jpg")
		var files []record.MovieFile
		for _, member := range members {
			files = append(files, member.Files()...)
		}
		m.SetFiles(files)
	}
	return nil
}

// keyed maps record keys to records. Master keys carry their own prefix, so
// they never shadow an input record.
func keyed(records []*record.Record, masters sets.Masters) map[string]*record.Record {
	out := make(map[string]*record.Record, len(records)+len(masters))
	for _, m := range masters {
		out[m.Key()] = m
	}
	for _, rec := range records {
		out[rec.Key()] = rec
	}
	return out
}
