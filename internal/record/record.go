// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package record holds the media record model consumed by the catalog build.
package record

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Unknown is stored in place of blank scalar values.
const Unknown = "UNKNOWN"

// MasterKeyPrefix starts the key of every set master.
const MasterKeyPrefix = "set:"

// MovieType distinguishes movies from TV seasons.
type MovieType string

const (
	TypeMovie  MovieType = "MOVIE"
	TypeTVShow MovieType = "TVSHOW"
)

// SetMembership places a record in a named set, optionally at an explicit position.
type SetMembership struct {
	Name  string `json:"name" yaml:"name"`
	Order *int   `json:"order,omitempty" yaml:"order,omitempty"`
}

// MovieFile is one physical part of a record.
type MovieFile struct {
	Filename     string    `json:"filename" yaml:"filename"`
	Part         int       `json:"part,omitempty" yaml:"part,omitempty"`
	LastModified time.Time `json:"last_modified,omitempty" yaml:"last_modified,omitempty"`
}

// Fields is the plain input shape a scanner hands over. New turns it into a Record.
type Fields struct {
	BaseName      string          `json:"base_name" yaml:"base_name"`
	Title         string          `json:"title" yaml:"title"`
	TitleSort     string          `json:"title_sort,omitempty" yaml:"title_sort,omitempty"`
	OriginalTitle string          `json:"original_title,omitempty" yaml:"original_title,omitempty"`
	Year          string          `json:"year,omitempty" yaml:"year,omitempty"`
	Season        *int            `json:"season,omitempty" yaml:"season,omitempty"`
	MovieType     MovieType       `json:"movie_type,omitempty" yaml:"movie_type,omitempty"`
	Extra         bool            `json:"extra,omitempty" yaml:"extra,omitempty"`
	Certification string          `json:"certification,omitempty" yaml:"certification,omitempty"`
	Library       string          `json:"library,omitempty" yaml:"library,omitempty"`
	Resolution    string          `json:"resolution,omitempty" yaml:"resolution,omitempty"`
	VideoSource   string          `json:"video_source,omitempty" yaml:"video_source,omitempty"`
	ReleaseDate   string          `json:"release_date,omitempty" yaml:"release_date,omitempty"`
	Top250        int             `json:"top250,omitempty" yaml:"top250,omitempty"`
	WatchedFile   bool            `json:"watched_file,omitempty" yaml:"watched_file,omitempty"`
	WatchedNFO    bool            `json:"watched_nfo,omitempty" yaml:"watched_nfo,omitempty"`
	Genres        []string        `json:"genres,omitempty" yaml:"genres,omitempty"`
	Cast          []string        `json:"cast,omitempty" yaml:"cast,omitempty"`
	Directors     []string        `json:"directors,omitempty" yaml:"directors,omitempty"`
	Writers       []string        `json:"writers,omitempty" yaml:"writers,omitempty"`
	Countries     []string        `json:"countries,omitempty" yaml:"countries,omitempty"`
	Ratings       map[string]int  `json:"ratings,omitempty" yaml:"ratings,omitempty"`
	Sets          []SetMembership `json:"sets,omitempty" yaml:"sets,omitempty"`
	Awards        []AwardEvent    `json:"awards,omitempty" yaml:"awards,omitempty"`
	People        []Filmography   `json:"people,omitempty" yaml:"people,omitempty"`
	Files         []MovieFile     `json:"files,omitempty" yaml:"files,omitempty"`
	FileDate      time.Time       `json:"file_date,omitempty" yaml:"file_date,omitempty"`
	Dirty         []DirtyFlag     `json:"dirty,omitempty" yaml:"dirty,omitempty"`
}

type data struct {
	baseName      string
	title         string
	titleSort     string
	originalTitle string
	year          string
	season        int
	movieType     MovieType
	extra         bool
	certification string
	library       string
	resolution    string
	videoSource   string
	videoType     string
	releaseDate   string
	top250        int
	watchedFile   bool
	watchedNFO    bool
	genres        []string
	cast          []string
	directors     []string
	writers       []string
	countries     []string
	ratings       map[string]int
	sets          []SetMembership
	awards        []AwardEvent
	people        []Filmography
	files         []MovieFile
	fileDate      time.Time

	setMaster bool
	setKey    string
	setSize   int
	poster    string

	first, previous, next, last string
}

// Record is a movie or TV season aggregate. Scalar setters report whether the
// stored value changed; raising dirty flags is left to the caller (see Track).
type Record struct {
	d     data
	dirty DirtySet

	lmMu         sync.Mutex
	lmDone       bool
	lastModified time.Time

	idxMu   sync.Mutex
	indexes map[string]map[string]struct{}

	sortMu       sync.Mutex
	sortKey      string
	sortPrefixes []string
	sortDone     bool
}

// New builds a record from scanner output. Blank scalars become Unknown.
func New(f Fields) *Record {
	r := &Record{}
	r.d.baseName = strings.TrimSpace(f.BaseName)
	r.d.title = normalize(f.Title)
	r.d.titleSort = normalize(stripQuotes(f.TitleSort))
	if r.d.titleSort == Unknown {
		r.d.titleSort = r.d.title
	}
	r.d.originalTitle = normalize(f.OriginalTitle)
	if r.d.originalTitle == Unknown {
		r.d.originalTitle = r.d.title
	}
	r.d.year = normalize(f.Year)
	r.d.season = -1
	if f.Season != nil {
		r.d.season = *f.Season
	}
	r.d.movieType = f.MovieType
	if r.d.movieType == "" {
		r.d.movieType = TypeMovie
	}
	r.d.extra = f.Extra
	r.d.certification = normalize(f.Certification)
	r.d.library = strings.TrimSpace(f.Library)
	r.d.resolution = normalize(f.Resolution)
	r.d.videoSource = normalize(f.VideoSource)
	r.d.releaseDate = normalize(f.ReleaseDate)
	r.d.top250 = f.Top250
	if r.d.top250 <= 0 {
		r.d.top250 = -1
	}
	r.d.watchedFile = f.WatchedFile
	r.d.watchedNFO = f.WatchedNFO
	r.d.genres = cleanList(f.Genres)
	r.d.cast = cleanList(f.Cast)
	r.d.directors = cleanList(f.Directors)
	r.d.writers = cleanList(f.Writers)
	r.d.countries = cleanList(f.Countries)
	r.d.ratings = maps.Clone(f.Ratings)
	r.d.sets = cleanSets(f.Sets)
	r.d.awards = slices.Clone(f.Awards)
	r.d.people = slices.Clone(f.People)
	r.d.files = slices.Clone(f.Files)
	r.d.fileDate = f.FileDate
	for _, flag := range f.Dirty {
		r.dirty = r.dirty.With(flag)
	}
	return r
}

// Clone returns a copy of the record's data and dirty flags. Navigation,
// memberships and the cached last-modified time are not carried over.
func (r *Record) Clone() *Record {
	c := &Record{d: r.d, dirty: r.dirty}
	c.d.genres = slices.Clone(r.d.genres)
	c.d.cast = slices.Clone(r.d.cast)
	c.d.directors = slices.Clone(r.d.directors)
	c.d.writers = slices.Clone(r.d.writers)
	c.d.countries = slices.Clone(r.d.countries)
	c.d.ratings = maps.Clone(r.d.ratings)
	c.d.sets = slices.Clone(r.d.sets)
	c.d.awards = slices.Clone(r.d.awards)
	c.d.people = slices.Clone(r.d.people)
	c.d.files = slices.Clone(r.d.files)
	c.d.first, c.d.previous, c.d.next, c.d.last = "", "", "", ""
	return c
}

// Key is the stable identity of the record: lowercased "title (year)" with a
// zero-padded season suffix for TV seasons. Masters are keyed "set:<set key>"
// so they never collide with a member named like the set.
func (r *Record) Key() string {
	if r.d.setMaster {
		return strings.ToLower(MasterKeyPrefix + r.d.setKey)
	}
	key := r.d.title + " (" + r.d.year + ")"
	if r.IsTVShow() && r.d.season >= 0 {
		key += fmt.Sprintf(" Season %03d", r.d.season)
	}
	return strings.ToLower(key)
}

func (r *Record) String() string {
	return r.Key()
}

func (r *Record) BaseName() string      { return r.d.baseName }
func (r *Record) Title() string         { return r.d.title }
func (r *Record) TitleSort() string     { return r.d.titleSort }
func (r *Record) OriginalTitle() string { return r.d.originalTitle }
func (r *Record) Year() string          { return r.d.year }
func (r *Record) Season() int           { return r.d.season }
func (r *Record) MovieType() MovieType  { return r.d.movieType }
func (r *Record) IsExtra() bool         { return r.d.extra }
func (r *Record) Certification() string { return r.d.certification }
func (r *Record) Library() string       { return r.d.library }
func (r *Record) Resolution() string    { return r.d.resolution }
func (r *Record) VideoSource() string   { return r.d.videoSource }
func (r *Record) ReleaseDate() string   { return r.d.releaseDate }
func (r *Record) Top250() int           { return r.d.top250 }
func (r *Record) IsSetMaster() bool     { return r.d.setMaster }
func (r *Record) SetSize() int          { return r.d.setSize }
func (r *Record) MasterSet() string     { return r.d.setKey }
func (r *Record) Poster() string        { return r.d.poster }
func (r *Record) FileDate() time.Time   { return r.d.fileDate }
func (r *Record) WatchedFile() bool     { return r.d.watchedFile }
func (r *Record) WatchedNFO() bool      { return r.d.watchedNFO }

func (r *Record) Genres() []string        { return slices.Clone(r.d.genres) }
func (r *Record) Cast() []string          { return slices.Clone(r.d.cast) }
func (r *Record) Directors() []string     { return slices.Clone(r.d.directors) }
func (r *Record) Writers() []string       { return slices.Clone(r.d.writers) }
func (r *Record) Countries() []string     { return slices.Clone(r.d.countries) }
func (r *Record) Ratings() map[string]int { return maps.Clone(r.d.ratings) }
func (r *Record) Sets() []SetMembership   { return slices.Clone(r.d.sets) }
func (r *Record) Awards() []AwardEvent    { return slices.Clone(r.d.awards) }
func (r *Record) People() []Filmography   { return slices.Clone(r.d.people) }
func (r *Record) Files() []MovieFile      { return slices.Clone(r.d.files) }
func (r *Record) First() string           { return r.d.first }
func (r *Record) Previous() string        { return r.d.previous }
func (r *Record) Next() string            { return r.d.next }
func (r *Record) Last() string            { return r.d.last }

// Watched reports whether either the file marker or the NFO marks the record watched.
func (r *Record) Watched() bool {
	return r.d.watchedFile || r.d.watchedNFO
}

// IsTVShow reports whether the record is a TV season.
func (r *Record) IsTVShow() bool {
	return r.d.movieType == TypeTVShow || r.d.season != -1
}

// Width parses the horizontal resolution from a "WxH" value. Unparsable values yield 0.
func (r *Record) Width() int {
	res := strings.ToLower(r.d.resolution)
	i := strings.IndexByte(res, 'x')
	if i <= 0 {
		return 0
	}
	w, err := strconv.Atoi(strings.TrimSpace(res[:i]))
	if err != nil {
		return 0
	}
	return w
}

// IsHD reports whether the record reaches minWidth, or was marked HD by set aggregation.
func (r *Record) IsHD(minWidth int) bool {
	return r.d.videoType == "HD" || r.Width() >= minWidth
}

// IsHD1080 reports whether the resolution reaches minWidth.
func (r *Record) IsHD1080(minWidth int) bool {
	return r.Width() >= minWidth
}

// Is3D reports whether the video source names a 3D release.
func (r *Record) Is3D() bool {
	return strings.Contains(strings.ToUpper(r.d.videoSource), "3D")
}

// SetKeys lists the names of every set the record belongs to, in insertion order.
func (r *Record) SetKeys() []string {
	keys := make([]string, 0, len(r.d.sets))
	for _, s := range r.d.sets {
		keys = append(keys, s.Name)
	}
	return keys
}

// SetOrder returns the explicit position of the record within set name.
func (r *Record) SetOrder(name string) (int, bool) {
	for _, s := range r.d.sets {
		if s.Name == name && s.Order != nil {
			return *s.Order, true
		}
	}
	return 0, false
}

// cleanSets trims set names, drops blank ones and merges duplicates. The last
// order given for a name wins.
func cleanSets(in []SetMembership) []SetMembership {
	var out []SetMembership
	for _, s := range in {
		s.Name = strings.TrimSpace(s.Name)
		if s.Name == "" {
			continue
		}
		if i := slices.IndexFunc(out, func(o SetMembership) bool { return o.Name == s.Name }); i >= 0 {
			if s.Order != nil {
				out[i].Order = s.Order
			}
			continue
		}
		out = append(out, s)
	}
	return out
}

func normalize(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return Unknown
	}
	return v
}

func stripQuotes(v string) string {
	v = strings.TrimSpace(v)
	if len(v) >= 2 && v[0] == '"' && v[len(v)-1] == '"' {
		return v[1 : len(v)-1]
	}
	return v
}

func cleanList(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" || slices.ContainsFunc(out, func(o string) bool { return strings.EqualFold(o, v) }) {
			continue
		}
		out = append(out, v)
	}
	return out
}
