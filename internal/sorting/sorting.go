// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package sorting orders category lists. The rule of a category comes from a
// table keyed by the original category name; categories without a rule use
// the natural order of records.
package sorting

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"github.com/ManuGH/jukebox/internal/category"
	"github.com/ManuGH/jukebox/internal/config"
	"github.com/ManuGH/jukebox/internal/log"
	"github.com/ManuGH/jukebox/internal/record"
	"github.com/rs/zerolog"
	"golang.org/x/text/cases"
)

// By names a sort dimension.
type By string

const (
	ByTitle  By = "title"
	ByRating By = "rating"
	ByTop250 By = "top250"
	ByYear   By = "year"
	ByNew    By = "new"
)

// Valid reports whether b is a known sort dimension.
func (b By) Valid() bool {
	switch b {
	case ByTitle, ByRating, ByTop250, ByYear, ByNew:
		return true
	}
	return false
}

// defaultAscending is the direction used when a rule does not name one.
func (b By) defaultAscending() bool {
	return b != ByRating && b != ByNew
}

// Rule orders one category.
type Rule struct {
	By        By
	Ascending bool
}

// Comparator is the primary ordering of a category. Ties fall back to the
// natural order.
type Comparator func(a, b *record.Record) int

var defaultRules = func() map[string]Rule {
	rules := make(map[string]Rule)
	for _, name := range []string{
		category.Person, category.Cast, category.Director, category.Writer,
		category.Genres, category.Title, category.Certification, category.Year,
		category.Library, category.Country, category.Award,
		category.HD, category.HD1080, category.HD720, category.ThreeD,
		category.Watched, category.Unwatched, category.All, category.TVShows,
		category.Movies, category.Extras, category.Sets,
	} {
		rules[name] = Rule{By: ByTitle, Ascending: true}
	}
	rules[category.Ratings] = Rule{By: ByRating}
	rules[category.Rating] = Rule{By: ByRating}
	rules[category.Top250] = Rule{By: ByTop250, Ascending: true}
	rules[category.New] = Rule{By: ByNew}
	rules[category.NewMovie] = Rule{By: ByNew}
	rules[category.NewTV] = Rule{By: ByNew}
	return rules
}()

// Table resolves comparators for categories.
type Table struct {
	cfg      *config.Config
	rules    map[string]Rule
	prefixes []string
	policy   record.RatingPolicy
}

// NewTable builds the rule table from the defaults and cfg.Sort. An override
// naming an unknown dimension is logged and the default rule kept.
func NewTable(cfg *config.Config) *Table {
	return newTable(cfg, log.WithComponent("sorting"))
}

func newTable(cfg *config.Config, logger zerolog.Logger) *Table {
	rules := make(map[string]Rule, len(defaultRules)+len(cfg.Sort))
	for name, rule := range defaultRules {
		rules[name] = rule
	}
	for name, override := range cfg.Sort {
		by := By(strings.ToLower(strings.TrimSpace(override.By)))
		if !by.Valid() {
			logger.Warn().
				Str(log.FieldEvent, "sort.invalid_rule").
				Str("category", name).
				Str("by", override.By).
				Msg("invalid sort dimension, keeping default")
			continue
		}
		asc := by.defaultAscending()
		if override.Ascending != nil {
			asc = *override.Ascending
		}
		rules[name] = Rule{By: by, Ascending: asc}
	}
	return &Table{
		cfg:      cfg,
		rules:    rules,
		prefixes: cfg.Indexing.SortIgnorePrefixes,
		policy:   cfg.RatingPolicy(),
	}
}

// Rule returns the rule of the original category name.
func (t *Table) Rule(name string) (Rule, bool) {
	r, ok := t.rules[name]
	return r, ok
}

// Comparator selects the comparator for key within dimension. Set lists follow
// set order; Other keys are display names and resolve through the category
// renames. A nil comparator means natural order.
func (t *Table) Comparator(dimension, key string) Comparator {
	switch dimension {
	case category.Set:
		return SetOrder(key)
	case category.Other:
		if rule, ok := t.rules[t.cfg.OriginalCategory(key)]; ok {
			return t.compile(rule)
		}
		return nil
	}
	if rule, ok := t.rules[dimension]; ok {
		return t.compile(rule)
	}
	return nil
}

func (t *Table) compile(rule Rule) Comparator {
	var c Comparator
	switch rule.By {
	case ByTitle:
		if rule.Ascending {
			return nil
		}
		return func(a, b *record.Record) int {
			return -t.Natural(a, b)
		}
	case ByRating:
		c = func(a, b *record.Record) int {
			return cmp.Compare(a.Rating(t.policy), b.Rating(t.policy))
		}
	case ByTop250:
		return func(a, b *record.Record) int {
			return compareRank(a.Top250(), b.Top250(), rule.Ascending)
		}
	case ByYear:
		c = func(a, b *record.Record) int {
			return cmp.Compare(yearOf(a), yearOf(b))
		}
	case ByNew:
		c = func(a, b *record.Record) int {
			return a.LastModified().Compare(b.LastModified())
		}
	default:
		return nil
	}
	if rule.Ascending {
		return c
	}
	return func(a, b *record.Record) int { return -c(a, b) }
}

// compareRank orders ranked records by rank; unranked records sort last in
// either direction.
func compareRank(a, b int, ascending bool) int {
	switch {
	case a <= 0 && b <= 0:
		return 0
	case a <= 0:
		return 1
	case b <= 0:
		return -1
	}
	if ascending {
		return cmp.Compare(a, b)
	}
	return cmp.Compare(b, a)
}

func yearOf(r *record.Record) int {
	y, err := strconv.Atoi(strings.TrimSpace(r.Year()))
	if err != nil {
		return 0
	}
	return y
}

// SetOrder orders the members of set key by their explicit position; members
// without one follow in natural order.
func SetOrder(key string) Comparator {
	return func(a, b *record.Record) int {
		oa, hasA := a.SetOrder(key)
		ob, hasB := b.SetOrder(key)
		switch {
		case hasA && hasB:
			return cmp.Compare(oa, ob)
		case hasA:
			return -1
		case hasB:
			return 1
		}
		return 0
	}
}

// Natural compares records by their case-folded stripped sort titles.
func (t *Table) Natural(a, b *record.Record) int {
	fold := cases.Fold()
	return strings.Compare(t.naturalKey(fold, a), t.naturalKey(fold, b))
}

// naturalKey folds with the caller's caser; a Caser is not safe to share
// between goroutines.
func (t *Table) naturalKey(fold cases.Caser, r *record.Record) string {
	return fold.String(r.StrippedTitleSort(t.prefixes))
}

type keyed struct {
	r   *record.Record
	key string
	id  string
}

// Sort orders list in place by c, breaking ties by natural order and then by
// record key so the result does not depend on the input order.
func (t *Table) Sort(list []*record.Record, c Comparator) {
	fold := cases.Fold()
	items := make([]keyed, len(list))
	for i, r := range list {
		items[i] = keyed{r: r, key: t.naturalKey(fold, r), id: r.Key()}
	}
	slices.SortStableFunc(items, func(a, b keyed) int {
		if c != nil {
			if v := c(a.r, b.r); v != 0 {
				return v
			}
		}
		if v := strings.Compare(a.key, b.key); v != 0 {
			return v
		}
		return strings.Compare(a.id, b.id)
	})
	for i := range items {
		list[i] = items[i].r
	}
}
