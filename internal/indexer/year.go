// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package indexer

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ManuGH/jukebox/internal/category"
	"github.com/ManuGH/jukebox/internal/index"
	"github.com/ManuGH/jukebox/internal/record"
)

// Year buckets records into This Year, Last Year and decade ranges.
func Year(ctx context.Context, env Env, records []*record.Record) (*index.Index, error) {
	idx := newIndex(env, category.Year)
	err := each(ctx, env, category.Year, records, func(r *record.Record) {
		if r.IsExtra() {
			return
		}
		add(idx, category.Year, YearKey(r.Year(), env.Now), r)
	})
	return idx, err
}

// YearKey returns the Year bucket of year relative to now. The range of the
// current decade ends two years before now so it never names unreleased years.
func YearKey(year string, now time.Time) string {
	y, err := strconv.Atoi(strings.TrimSpace(year))
	if err != nil || y <= 0 {
		return record.Unknown
	}
	current := now.Year()
	switch y {
	case current:
		return category.ThisYear
	case current - 1:
		return category.LastYear
	}
	final := current - 2
	currentDecade := final / 10 * 10
	begin := y / 10 * 10
	end := begin + 9
	if begin == currentDecade {
		end = final
	}
	return fmt.Sprintf("%d-%d", begin, end)
}
