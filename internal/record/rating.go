// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package record

import "strings"

const (
	// AverageSource is the pseudo rating site averaging all non-ignored sites.
	AverageSource = "average"
	// SetRatingSource holds the aggregated rating of a set master.
	SetRatingSource = "setrating"
	// NoRating is returned when nothing can be resolved.
	NoRating = -1
)

// RatingPolicy selects how a single rating is resolved from several sites.
type RatingPolicy struct {
	// Sources are tried in order. AverageSource averages every non-ignored site.
	Sources []string
	// Ignore lists sites left out of the average, matched exactly or as a prefix.
	Ignore []string
}

// Rating resolves the record's rating under p. A record without ratings yields NoRating.
func (r *Record) Rating(p RatingPolicy) int {
	if len(r.d.ratings) == 0 {
		return NoRating
	}
	if v, ok := r.d.ratings[SetRatingSource]; ok {
		return v
	}
	sources := p.Sources
	if len(sources) == 0 {
		sources = []string{AverageSource}
	}
	for _, src := range sources {
		if strings.EqualFold(src, AverageSource) {
			return r.averageRating(p.Ignore)
		}
		if v, ok := r.d.ratings[src]; ok {
			return v
		}
	}
	return NoRating
}

func (r *Record) averageRating(ignore []string) int {
	sum, count := 0, 0
	for site, v := range r.d.ratings {
		if ignored(site, ignore) {
			continue
		}
		sum += v
		count++
	}
	if count == 0 {
		return 0
	}
	return sum / count
}

func ignored(site string, ignore []string) bool {
	for _, ig := range ignore {
		if site == ig || strings.HasPrefix(site, ig) {
			return true
		}
	}
	return false
}
