// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package record

import (
	"reflect"
	"slices"
	"strings"
	"time"
)

// Track raises flag on r when changed is true and passes changed through.
func Track(r *Record, flag DirtyFlag, changed bool) bool {
	if changed {
		r.SetDirty(flag, true)
	}
	return changed
}

// Set applies setter and raises flag on r if the setter reported a change.
//
//	record.Set(r, record.DirtyInfo, r.SetTitle, "Alien")
func Set[T any](r *Record, flag DirtyFlag, setter func(T) bool, v T) bool {
	return Track(r, flag, setter(v))
}

func setString(dst *string, v string) bool {
	v = normalize(v)
	if strings.EqualFold(*dst, v) {
		return false
	}
	*dst = v
	return true
}

func setList(dst *[]string, v []string) bool {
	v = cleanList(v)
	if slices.EqualFunc(*dst, v, strings.EqualFold) {
		return false
	}
	*dst = v
	return true
}

// SetTitle changes the title. A title sort that tracked the old title follows it.
func (r *Record) SetTitle(v string) bool {
	old := r.d.title
	if !setString(&r.d.title, v) {
		return false
	}
	if r.d.titleSort == Unknown || r.d.titleSort == old {
		r.d.titleSort = r.d.title
	}
	r.resetTitleSort()
	return true
}

// SetTitleSort changes the sort title, dropping enclosing quotes.
func (r *Record) SetTitleSort(v string) bool {
	if !setString(&r.d.titleSort, stripQuotes(v)) {
		return false
	}
	r.resetTitleSort()
	return true
}

func (r *Record) SetOriginalTitle(v string) bool { return setString(&r.d.originalTitle, v) }
func (r *Record) SetCertification(v string) bool { return setString(&r.d.certification, v) }
func (r *Record) SetResolution(v string) bool    { return setString(&r.d.resolution, v) }
func (r *Record) SetVideoSource(v string) bool   { return setString(&r.d.videoSource, v) }
func (r *Record) SetReleaseDate(v string) bool   { return setString(&r.d.releaseDate, v) }

func (r *Record) SetYear(v string) bool {
	if !setString(&r.d.year, v) {
		return false
	}
	r.resetTitleSort()
	return true
}

func (r *Record) SetGenres(v []string) bool    { return setList(&r.d.genres, v) }
func (r *Record) SetCast(v []string) bool      { return setList(&r.d.cast, v) }
func (r *Record) SetDirectors(v []string) bool { return setList(&r.d.directors, v) }
func (r *Record) SetWriters(v []string) bool   { return setList(&r.d.writers, v) }
func (r *Record) SetCountries(v []string) bool { return setList(&r.d.countries, v) }

// SetLibrary changes the library description. Blank means no library.
func (r *Record) SetLibrary(v string) bool {
	v = strings.TrimSpace(v)
	if strings.EqualFold(r.d.library, v) {
		return false
	}
	r.d.library = v
	return true
}

// SetBaseName changes the output base name. Base names are compared exactly.
func (r *Record) SetBaseName(v string) bool {
	v = strings.TrimSpace(v)
	if r.d.baseName == v {
		return false
	}
	r.d.baseName = v
	return true
}

func (r *Record) SetSeason(v int) bool {
	if r.d.season == v {
		return false
	}
	r.d.season = v
	r.resetTitleSort()
	return true
}

func (r *Record) SetMovieType(v MovieType) bool {
	if v == "" {
		v = TypeMovie
	}
	if r.d.movieType == v {
		return false
	}
	r.d.movieType = v
	return true
}

func (r *Record) SetTop250(v int) bool {
	if v <= 0 {
		v = -1
	}
	if r.d.top250 == v {
		return false
	}
	r.d.top250 = v
	return true
}

func (r *Record) SetWatchedFile(v bool) bool {
	if r.d.watchedFile == v {
		return false
	}
	r.d.watchedFile = v
	return true
}

func (r *Record) SetWatchedNFO(v bool) bool {
	if r.d.watchedNFO == v {
		return false
	}
	r.d.watchedNFO = v
	return true
}

// SetRating stores the score of one rating site.
func (r *Record) SetRating(site string, v int) bool {
	site = strings.TrimSpace(site)
	if site == "" {
		return false
	}
	if old, ok := r.d.ratings[site]; ok && old == v {
		return false
	}
	if r.d.ratings == nil {
		r.d.ratings = make(map[string]int)
	}
	r.d.ratings[site] = v
	return true
}

// SetRatings replaces all rating sites.
func (r *Record) SetRatings(v map[string]int) bool {
	if len(v) == len(r.d.ratings) {
		same := true
		for k, x := range v {
			if y, ok := r.d.ratings[k]; !ok || x != y {
				same = false
				break
			}
		}
		if same {
			return false
		}
	}
	r.d.ratings = make(map[string]int, len(v))
	for k, x := range v {
		r.d.ratings[k] = x
	}
	return true
}

// AddSet places the record in a set. An existing membership only changes its order.
func (r *Record) AddSet(name string, order *int) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}
	for i, s := range r.d.sets {
		if s.Name != name {
			continue
		}
		if intPtrEqual(s.Order, order) {
			return false
		}
		r.d.sets[i].Order = order
		return true
	}
	r.d.sets = append(r.d.sets, SetMembership{Name: name, Order: order})
	return true
}

func intPtrEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// SetAwards replaces the award events.
func (r *Record) SetAwards(v []AwardEvent) bool {
	if reflect.DeepEqual(r.d.awards, v) {
		return false
	}
	r.d.awards = slices.Clone(v)
	return true
}

// SetPeople replaces the people credits.
func (r *Record) SetPeople(v []Filmography) bool {
	if reflect.DeepEqual(r.d.people, v) {
		return false
	}
	r.d.people = slices.Clone(v)
	return true
}

// SetFiles replaces the constituent files.
func (r *Record) SetFiles(v []MovieFile) bool {
	if slices.Equal(r.d.files, v) {
		return false
	}
	r.d.files = slices.Clone(v)
	return true
}

// SetFileDate replaces the file date when it differs.
func (r *Record) SetFileDate(t time.Time) bool {
	if r.d.fileDate.Equal(t) {
		return false
	}
	r.d.fileDate = t
	return true
}

// SetPoster sets the poster file name.
func (r *Record) SetPoster(v string) bool {
	if r.d.poster == v {
		return false
	}
	r.d.poster = v
	return true
}

// MarkHD forces the HD classification regardless of resolution.
func (r *Record) MarkHD(hd bool) bool {
	v := ""
	if hd {
		v = "HD"
	}
	if r.d.videoType == v {
		return false
	}
	r.d.videoType = v
	return true
}

// MarkSetMaster turns the record into the master of set key with size
// members. Title and original title become the key, whatever their case.
func (r *Record) MarkSetMaster(key string, size int) {
	key = strings.TrimSpace(key)
	r.d.setMaster = true
	r.d.setKey = key
	r.d.setSize = size
	if r.d.titleSort == Unknown || r.d.titleSort == r.d.title {
		r.d.titleSort = normalize(key)
	}
	r.d.title = normalize(key)
	r.d.originalTitle = r.d.title
	r.resetTitleSort()
}

// SetNavigation stores the first/previous/next/last base names.
func (r *Record) SetNavigation(first, previous, next, last string) bool {
	changed := false
	for _, p := range []struct {
		dst *string
		v   string
	}{
		{&r.d.first, first},
		{&r.d.previous, previous},
		{&r.d.next, next},
		{&r.d.last, last},
	} {
		if *p.dst != p.v {
			*p.dst = p.v
			changed = true
		}
	}
	return changed
}
