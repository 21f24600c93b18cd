// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package sets consolidates collections into master records. A master stands
// for all members of a set in every other category; explosion reverses that
// for configured categories.
package sets

import (
	"context"
	"fmt"
	"time"

	"github.com/ManuGH/jukebox/internal/category"
	"github.com/ManuGH/jukebox/internal/config"
	"github.com/ManuGH/jukebox/internal/index"
	"github.com/ManuGH/jukebox/internal/log"
	"github.com/ManuGH/jukebox/internal/record"
	"github.com/rs/zerolog"
)

// Masters maps a set key to its master record.
type Masters map[string]*record.Record

// Consolidator builds masters and substitutes them into category lists.
type Consolidator struct {
	cfg    *config.Config
	policy record.RatingPolicy
	logger zerolog.Logger
}

// New returns a consolidator for cfg.
func New(cfg *config.Config) *Consolidator {
	return &Consolidator{
		cfg:    cfg,
		policy: cfg.RatingPolicy(),
		logger: log.WithComponent("sets"),
	}
}

// Qualifies reports whether set key has enough members to be consolidated.
func (c *Consolidator) Qualifies(setIndex index.Reader, key string) bool {
	return len(setIndex.Get(key)) >= c.cfg.Sets.MinSetCount
}

// BuildMasters synthesizes one master per non-empty set in setIndex.
func (c *Consolidator) BuildMasters(ctx context.Context, setIndex index.Reader) (Masters, error) {
	masters := make(Masters, setIndex.Len())
	for key, members := range setIndex.All() {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("build set masters: %w", err)
		}
		if len(members) == 0 {
			continue
		}
		m := c.buildMaster(key, members)
		masters[key] = m
		c.logger.Debug().
			Str(log.FieldEvent, "sets.master_built").
			Str(log.FieldSetKey, key).
			Int("members", len(members)).
			Bool("tv", m.IsTVShow()).
			Bool("watched", m.Watched()).
			Int("top250", m.Top250()).
			Str("dirty", m.DirtyFlags().String()).
			Msg("set master built")
	}
	return masters, nil
}

// primary picks the member with the lowest explicit set order. Ties and
// members without an order keep the first-seen member.
func primary(key string, members []*record.Record) *record.Record {
	best := members[0]
	bestOrder, hasBest := best.SetOrder(key)
	for _, m := range members[1:] {
		order, ok := m.SetOrder(key)
		if !ok {
			continue
		}
		if !hasBest || order < bestOrder {
			best, bestOrder, hasBest = m, order, true
		}
	}
	return best
}

func (c *Consolidator) buildMaster(key string, members []*record.Record) *record.Record {
	m := primary(key, members).Clone()
	m.MarkSetMaster(key, len(members))
	if !m.IsTVShow() {
		m.SetTitleSort(key)
	}
	m.SetBaseName(BaseName(key))
	m.ClearDirty()

	var (
		tvCount   int
		hd        bool
		watched   = true
		top250    = -1
		fileDate  time.Time
		files     []record.MovieFile
		maxRating int
		sumRating int
	)
	for _, member := range members {
		if member.IsTVShow() {
			tvCount++
		}
		hd = hd || member.IsHD(c.cfg.Indexing.HD720Width)
		watched = watched && member.Watched()
		if rank := member.Top250(); rank > 0 && (top250 < 0 || rank < top250) {
			top250 = rank
		}
		if rating := member.Rating(c.policy); rating >= 0 {
			sumRating += rating
			maxRating = max(maxRating, rating)
		}
		if lm := member.LastModified(); lm.After(fileDate) {
			fileDate = lm
		}
		files = append(files, member.Files()...)
		m.MergeDirty(member.DirtyFlags())
	}

	if c.tvMaster(tvCount, len(members)) {
		m.SetMovieType(record.TypeTVShow)
	} else {
		m.SetMovieType(record.TypeMovie)
		m.SetSeason(-1)
	}
	m.MarkHD(hd)
	m.SetWatchedFile(watched)
	m.SetWatchedNFO(false)
	m.SetTop250(top250)
	m.SetFiles(files)
	m.SetFileDate(fileDate)

	switch c.cfg.Sets.Rating {
	case config.SetRatingMax:
		m.SetRatings(map[string]int{record.SetRatingSource: maxRating})
	case config.SetRatingAverage:
		m.SetRatings(map[string]int{record.SetRatingSource: sumRating / len(members)})
	}
	m.ResetLastModified()
	return m
}

// tvMaster decides whether a master with tvCount TV members out of size is a
// TV set.
func (c *Consolidator) tvMaster(tvCount, size int) bool {
	if c.cfg.Sets.TVRule == config.SetTVAny {
		return tvCount > 0
	}
	return tvCount*2 > size
}

// Compress replaces every qualifying group of set members in list with the
// set's master. dimension and key name the category the list belongs to;
// categories configured to explode before sorting keep their members. Masters
// that are inserted record the category in their memberships.
func (c *Consolidator) Compress(list []*record.Record, setIndex index.Reader, masters Masters, dimension, key string) []*record.Record {
	present := make(map[*record.Record]struct{}, len(list))
	for _, r := range list {
		present[r] = struct{}{}
	}

	explode := c.cfg.ExplodesIn(dimension, key)
	removed := make(map[*record.Record]struct{})
	var added []*record.Record
	for setKey, members := range setIndex.All() {
		var group []*record.Record
		for _, m := range members {
			if _, ok := present[m]; ok {
				group = append(group, m)
			}
		}
		if len(group) == 0 || len(group) < c.cfg.Sets.MinSetCount {
			continue
		}
		if c.cfg.Sets.RequireAll && len(group) != len(members) {
			continue
		}
		master, ok := masters[setKey]
		if !ok {
			continue
		}

		tvSet := c.cfg.Explode.KeepTV && group[0].IsTVShow()
		before := c.cfg.Explode.BeforeSort
		if !before || !explode || tvSet {
			for _, m := range group {
				removed[m] = struct{}{}
			}
		}
		if !before || !explode || tvSet || !c.cfg.Explode.Remove {
			added = append(added, master)
		}
	}
	if len(removed) == 0 && len(added) == 0 {
		return list
	}

	out := make([]*record.Record, 0, len(list)-len(removed)+len(added))
	for _, r := range list {
		if _, ok := removed[r]; !ok {
			out = append(out, r)
		}
	}
	for _, m := range added {
		m.AddIndex(dimension, key)
	}
	return append(out, added...)
}

// Explode expands masters in a sorted list back into their members. Only
// members listed under the same key of the uncompressed dimension index are
// inserted, at the master's position. It is a no-op when explosion runs
// before sorting or the category is not configured to explode.
func (c *Consolidator) Explode(list []*record.Record, setIndex, uncompressed index.Reader, dimension, key string) []*record.Record {
	if c.cfg.Explode.BeforeSort || !c.cfg.ExplodesIn(dimension, key) {
		return list
	}
	var out []*record.Record
	for i, r := range list {
		if !r.IsSetMaster() || (c.cfg.Explode.KeepTV && r.IsTVShow()) {
			if out != nil {
				out = append(out, r)
			}
			continue
		}
		if out == nil {
			out = append(make([]*record.Record, 0, len(list)), list[:i]...)
		}
		members := MatchingRecords(uncompressed, setIndex.Get(r.MasterSet()), key)
		c.logger.Debug().
			Str(log.FieldEvent, "sets.exploded").
			Str(log.FieldDimension, dimension).
			Str(log.FieldCategoryKey, key).
			Str(log.FieldSetKey, r.MasterSet()).
			Int("members", len(members)).
			Msg("set exploded")
		out = append(out, members...)
		if c.cfg.Explode.Remove {
			r.RemoveIndex(dimension, key)
		} else {
			out = append(out, r)
		}
	}
	if out == nil {
		return list
	}
	return out
}

// MatchingRecords returns the members that are listed under key in idx, in
// member order.
func MatchingRecords(idx index.Reader, members []*record.Record, key string) []*record.Record {
	if idx == nil {
		return nil
	}
	listed := idx.Get(key)
	if len(listed) == 0 {
		return nil
	}
	in := make(map[*record.Record]struct{}, len(listed))
	for _, r := range listed {
		in[r] = struct{}{}
	}
	var out []*record.Record
	for _, m := range members {
		if _, ok := in[m]; ok {
			out = append(out, m)
		}
	}
	return out
}

// BaseName is the base filename of the master of set key.
func BaseName(key string) string {
	return category.PageName(category.Set, key, 1)
}
