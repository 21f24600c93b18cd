// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package record

import (
	"fmt"
	"strings"
)

// DirtyFlag names one facet of a record whose generated output is stale.
type DirtyFlag uint8

const (
	DirtyInfo DirtyFlag = iota
	DirtyWatched
	DirtyRecheck
	DirtyNFO
	DirtyFanart
	DirtyPoster
	DirtyBanner
	DirtyClearArt
	DirtyClearLogo
	DirtyTVThumb
	DirtySeasonThumb
	DirtyMovieDisc

	dirtyFlagCount
)

var dirtyFlagNames = [...]string{
	DirtyInfo:        "INFO",
	DirtyWatched:     "WATCHED",
	DirtyRecheck:     "RECHECK",
	DirtyNFO:         "NFO",
	DirtyFanart:      "FANART",
	DirtyPoster:      "POSTER",
	DirtyBanner:      "BANNER",
	DirtyClearArt:    "CLEARART",
	DirtyClearLogo:   "CLEARLOGO",
	DirtyTVThumb:     "TVTHUMB",
	DirtySeasonThumb: "SEASONTHUMB",
	DirtyMovieDisc:   "MOVIEDISC",
}

func (f DirtyFlag) String() string {
	if f < dirtyFlagCount {
		return dirtyFlagNames[f]
	}
	return fmt.Sprintf("DirtyFlag(%d)", uint8(f))
}

// MarshalText implements encoding.TextMarshaler.
func (f DirtyFlag) MarshalText() ([]byte, error) {
	if f >= dirtyFlagCount {
		return nil, fmt.Errorf("invalid dirty flag %d", uint8(f))
	}
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *DirtyFlag) UnmarshalText(text []byte) error {
	flag, err := ParseDirtyFlag(string(text))
	if err != nil {
		return err
	}
	*f = flag
	return nil
}

// ParseDirtyFlag resolves a flag by its case-insensitive name.
func ParseDirtyFlag(name string) (DirtyFlag, error) {
	for i, n := range dirtyFlagNames {
		if strings.EqualFold(n, strings.TrimSpace(name)) {
			return DirtyFlag(i), nil
		}
	}
	return 0, fmt.Errorf("unknown dirty flag %q", name)
}

// DirtySet is a bit set of DirtyFlag values.
type DirtySet uint16

// Has reports whether flag is in the set.
func (s DirtySet) Has(flag DirtyFlag) bool {
	return s&(1<<flag) != 0
}

// With returns s with flag added.
func (s DirtySet) With(flag DirtyFlag) DirtySet {
	return s | 1<<flag
}

// Without returns s with flag removed.
func (s DirtySet) Without(flag DirtyFlag) DirtySet {
	return s &^ (1 << flag)
}

// Union returns the flags present in either set.
func (s DirtySet) Union(o DirtySet) DirtySet {
	return s | o
}

// Empty reports whether no flag is set.
func (s DirtySet) Empty() bool {
	return s == 0
}

// Flags lists the members of the set in declaration order.
func (s DirtySet) Flags() []DirtyFlag {
	var out []DirtyFlag
	for f := DirtyFlag(0); f < dirtyFlagCount; f++ {
		if s.Has(f) {
			out = append(out, f)
		}
	}
	return out
}

func (s DirtySet) String() string {
	flags := s.Flags()
	names := make([]string, len(flags))
	for i, f := range flags {
		names[i] = f.String()
	}
	return "[" + strings.Join(names, ",") + "]"
}
