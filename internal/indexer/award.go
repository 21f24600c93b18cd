// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package indexer

import (
	"context"
	"slices"

	"github.com/ManuGH/jukebox/internal/category"
	"github.com/ManuGH/jukebox/internal/config"
	"github.com/ManuGH/jukebox/internal/index"
	"github.com/ManuGH/jukebox/internal/record"
)

// Award lists records under each award event that passes the award filters.
func Award(ctx context.Context, env Env, records []*record.Record) (*index.Index, error) {
	filter := env.Config.Awards
	idx := newIndex(env, category.Award)
	err := each(ctx, env, category.Award, records, func(r *record.Record) {
		if r.IsExtra() {
			return
		}
		for _, ev := range r.Awards() {
			if AwardEventMatches(ev, filter) {
				add(idx, category.Award, ev.Name, r)
			}
		}
	})
	return idx, err
}

// AwardEventMatches applies the event and name allow-lists, then the
// won/nominated filters to each award of ev. The first matching award decides.
// Without allow-lists an event that lists no awards still matches.
func AwardEventMatches(ev record.AwardEvent, f config.AwardsConfig) bool {
	unfiltered := len(f.Events) == 0 && len(f.Names) == 0
	if !unfiltered && !slices.Contains(f.Events, ev.Name) && len(f.Names) == 0 {
		return false
	}
	if unfiltered && len(ev.Awards) == 0 {
		return true
	}
	for _, a := range ev.Awards {
		if len(f.Names) > 0 && !slices.Contains(f.Names, a.Name) {
			continue
		}
		if awardMatches(a, f) {
			return true
		}
	}
	return false
}

// awardMatches scores which lists are configured and which the award has:
//
//	8 nominated list set, 4 award has nominations (both skipped when WonOnly)
//	2 won list set,       1 award has wins
//
// A bare win or nomination with no list configured matches outright; otherwise
// the award must hit the configured nominated or won list.
func awardMatches(a record.Award, f config.AwardsConfig) bool {
	flag := 0
	if !f.WonOnly {
		if len(f.Nominated) > 0 {
			flag += 8
		}
		if len(a.Nominations) > 0 {
			flag += 4
		}
	}
	if len(f.Won) > 0 {
		flag += 2
	}
	if len(a.Wons) > 0 {
		flag++
	}

	switch flag {
	case 1, 4, 5:
		return true
	}
	if flag > 10 && intersects(a.Nominations, f.Nominated) {
		return true
	}
	return len(f.Won) > 0 && len(a.Wons) > 0 && intersects(a.Wons, f.Won)
}

func intersects(values, allowed []string) bool {
	for _, v := range values {
		if slices.Contains(allowed, v) {
			return true
		}
	}
	return false
}
