// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package dirty decides which category pages need to be regenerated.
package dirty

import (
	"context"
	"fmt"
	"strings"

	"github.com/ManuGH/jukebox/internal/category"
	"github.com/ManuGH/jukebox/internal/config"
	"github.com/ManuGH/jukebox/internal/record"
)

// Pages reports whether a generated page already exists.
type Pages interface {
	Exists(ctx context.Context, name string) (bool, error)
}

// Reason explains why a category is regenerated. The empty reason means the
// category is skipped.
type Reason string

const (
	ReasonNone           Reason = ""
	ReasonForced         Reason = "force_overwrite"
	ReasonSetReindex     Reason = "set_reindex"
	ReasonMasterDirty    Reason = "master_dirty"
	ReasonRecordDirty    Reason = "record_dirty"
	ReasonWatchedChanged Reason = "watched_changed"
	ReasonLibraryDirty   Reason = "library_dirty"
	ReasonPageMissing    Reason = "page_missing"
)

// Decision is the outcome for every page of one category key.
type Decision struct {
	Skip   bool
	Reason Reason
}

// Input describes one category key. Key is the display name for property
// categories; Master is the set master when Dimension is the Set dimension.
type Input struct {
	Dimension string
	Key       string
	Records   []*record.Record
	Master    *record.Record
	Pages     int
}

// Decider applies the skip rules of one build.
type Decider struct {
	cfg       *config.Config
	pages     Pages
	libraries map[string]struct{}
	watched   map[string]struct{}
}

// NewDecider returns a decider. dirtyLibraries names libraries whose
// membership changed since the last build.
func NewDecider(cfg *config.Config, pages Pages, dirtyLibraries []string) *Decider {
	libs := make(map[string]struct{}, len(dirtyLibraries))
	for _, l := range dirtyLibraries {
		libs[strings.ToLower(strings.TrimSpace(l))] = struct{}{}
	}
	return &Decider{cfg: cfg, pages: pages, libraries: libs}
}

// Prepare inspects the All category. A record whose watched state changed
// forces the Watched, Unwatched and New categories to regenerate. It must run
// before Decide is called for property categories.
func (d *Decider) Prepare(all []*record.Record) {
	d.watched = nil
	if !d.cfg.Watched.ScannerEnabled {
		return
	}
	for _, r := range all {
		if !r.IsDirty(record.DirtyWatched) {
			continue
		}
		d.watched = make(map[string]struct{})
		for _, name := range []string{category.Watched, category.Unwatched, category.New, category.NewMovie, category.NewTV} {
			if display, ok := d.cfg.CategoryName(name); ok {
				d.watched[display] = struct{}{}
			}
		}
		return
	}
}

// LibraryDirty reports whether library was marked as changed.
func (d *Decider) LibraryDirty(library string) bool {
	_, ok := d.libraries[strings.ToLower(strings.TrimSpace(library))]
	return ok
}

// Decide reports whether all pages of in can be skipped. The category is
// skipped only if every page already exists.
func (d *Decider) Decide(ctx context.Context, in Input) (Decision, error) {
	if reason := d.reason(in); reason != ReasonNone {
		return Decision{Reason: reason}, nil
	}
	for page := 1; page <= in.Pages; page++ {
		name := category.PageName(in.Dimension, in.Key, page)
		ok, err := d.pages.Exists(ctx, name)
		if err != nil {
			return Decision{}, fmt.Errorf("check page %s: %w", name, err)
		}
		if !ok {
			return Decision{Reason: ReasonPageMissing}, nil
		}
	}
	return Decision{Skip: true}, nil
}

func (d *Decider) reason(in Input) Reason {
	if d.cfg.Build.ForceIndexOverwrite {
		return ReasonForced
	}
	if in.Dimension == category.Set {
		if d.cfg.Sets.Reindex {
			return ReasonSetReindex
		}
		if in.Master != nil && in.Master.IsDirty(record.DirtyInfo) {
			return ReasonMasterDirty
		}
	}
	for _, r := range in.Records {
		if r.IsDirtyAny(record.DirtyInfo, record.DirtyRecheck) {
			return ReasonRecordDirty
		}
	}
	if in.Dimension == category.Other {
		if _, ok := d.watched[in.Key]; ok {
			return ReasonWatchedChanged
		}
	}
	if in.Dimension == category.Library && d.LibraryDirty(in.Key) {
		return ReasonLibraryDirty
	}
	return ReasonNone
}
