// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package indexer

import (
	"context"

	"github.com/ManuGH/jukebox/internal/category"
	"github.com/ManuGH/jukebox/internal/index"
	"github.com/ManuGH/jukebox/internal/record"
)

// Cast lists records under each actor.
func Cast(ctx context.Context, env Env, records []*record.Record) (*index.Index, error) {
	return byRole(ctx, env, records, category.Cast, record.DepartmentActors, (*record.Record).Cast)
}

// Director lists records under each director.
func Director(ctx context.Context, env Env, records []*record.Record) (*index.Index, error) {
	return byRole(ctx, env, records, category.Director, record.DepartmentDirecting, (*record.Record).Directors)
}

// Writer lists records under each writer.
func Writer(ctx context.Context, env Env, records []*record.Record) (*index.Index, error) {
	return byRole(ctx, env, records, category.Writer, record.DepartmentWriting, (*record.Record).Writers)
}

// byRole reads plain name lists, or in exclusive people scan mode the people
// credits of department.
func byRole(ctx context.Context, env Env, records []*record.Record, dimension, department string,
	names func(*record.Record) []string) (*index.Index, error) {
	people := env.Config.People
	idx := newIndex(env, dimension)
	err := each(ctx, env, dimension, records, func(r *record.Record) {
		if r.IsExtra() {
			return
		}
		if people.Scan && people.Exclusive {
			for _, p := range r.People() {
				if p.Department != department || (people.Complete && p.Filename == "") {
					continue
				}
				add(idx, dimension, p.Name, r)
			}
			return
		}
		for _, name := range names(r) {
			add(idx, dimension, name, r)
		}
	})
	return idx, err
}

// Person lists records under every credited person.
func Person(ctx context.Context, env Env, records []*record.Record) (*index.Index, error) {
	complete := env.Config.People.Complete
	idx := newIndex(env, category.Person)
	err := each(ctx, env, category.Person, records, func(r *record.Record) {
		if r.IsExtra() {
			return
		}
		for _, p := range r.People() {
			if complete && p.Filename == "" {
				continue
			}
			add(idx, category.Person, p.Name, r)
		}
	})
	return idx, err
}
