// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package build

import (
	"slices"
	"time"

	"github.com/ManuGH/jukebox/internal/category"
	"github.com/ManuGH/jukebox/internal/config"
	"github.com/ManuGH/jukebox/internal/dirty"
	"github.com/ManuGH/jukebox/internal/index"
	"github.com/ManuGH/jukebox/internal/record"
	"github.com/ManuGH/jukebox/internal/sets"
)

// Page is one page of a category.
type Page struct {
	Number  int
	Name    string
	Records []*record.Record
	Skip    bool
}

// Category is one key of a dimension, ready to be written. Key is the display
// name; OriginalName differs from it only for renamed property categories.
type Category struct {
	Dimension    string
	Key          string
	OriginalName string
	Records      []*record.Record
	PageSize     int
	Pages        []Page
	Skip         bool
	Reason       dirty.Reason
}

// Dimension holds the categories of one dimension in key order.
type Dimension struct {
	Name       string
	Categories []Category
}

// Result is the outcome of a build. It is not modified after Build returns.
type Result struct {
	BuildID    string
	StartedAt  time.Time
	FinishedAt time.Time
	// Dimensions are in configuration order; Set is always present.
	Dimensions []Dimension
	// Records are the input records in navigation order, extras last.
	Records []*record.Record
	Masters sets.Masters

	cfg          *config.Config
	uncompressed map[string]*index.Index
	byKey        map[string]*record.Record
}

// Dimension returns the dimension called name.
func (r *Result) Dimension(name string) (Dimension, bool) {
	for _, d := range r.Dimensions {
		if d.Name == name {
			return d, true
		}
	}
	return Dimension{}, false
}

// Category returns the category key of dimension.
func (r *Result) Category(dimension, key string) (Category, bool) {
	d, ok := r.Dimension(dimension)
	if !ok {
		return Category{}, false
	}
	for _, c := range d.Categories {
		if c.Key == key {
			return c, true
		}
	}
	return Category{}, false
}

// Record returns the record or master with the given key.
func (r *Result) Record(key string) (*record.Record, bool) {
	rec, ok := r.byKey[key]
	return rec, ok
}

// Memberships returns the category keys per dimension the record with
// recordKey was indexed under.
func (r *Result) Memberships(recordKey string) map[string][]string {
	rec, ok := r.byKey[recordKey]
	if !ok {
		return nil
	}
	return rec.Indexes()
}

// DefaultCategory returns the first non-empty property category in property
// order, by display name.
func (r *Result) DefaultCategory() (string, bool) {
	for _, d := range r.Dimensions {
		for _, name := range category.Properties {
			display, ok := r.cfg.CategoryName(name)
			if !ok {
				continue
			}
			for _, c := range d.Categories {
				if c.Key == display && len(c.Records) > 0 {
					return display, true
				}
			}
		}
	}
	return "", false
}

// MatchingRecords returns the members listed under key of dimension before
// set consolidation, in member order.
func (r *Result) MatchingRecords(dimension string, members []*record.Record, key string) []*record.Record {
	idx, ok := r.uncompressed[dimension]
	if !ok {
		return nil
	}
	return sets.MatchingRecords(idx, members, key)
}

// PeopleByJob returns the names of people credited in job that have a backing
// file and enough records in dimension to get a page of their own. An empty
// job accepts every department.
func (r *Result) PeopleByJob(people []record.Filmography, job, dimension string) []string {
	idx, ok := r.uncompressed[dimension]
	if !ok {
		return nil
	}
	minCount := r.cfg.MinCount(dimension)
	var out []string
	for _, p := range people {
		if (job != "" && p.Department != job) || p.Filename == "" {
			continue
		}
		if !idx.Has(p.Name) || len(idx.Get(p.Name)) < minCount || slices.Contains(out, p.Name) {
			continue
		}
		out = append(out, p.Name)
	}
	return out
}

// PageCounts returns the number of skipped and regenerated pages.
func (r *Result) PageCounts() (skipped, regenerated int) {
	for _, d := range r.Dimensions {
		for _, c := range d.Categories {
			if c.Skip {
				skipped += len(c.Pages)
			} else {
				regenerated += len(c.Pages)
			}
		}
	}
	return skipped, regenerated
}
