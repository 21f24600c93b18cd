// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package record

import (
	"fmt"
	"slices"
	"strings"
)

// StrippedTitleSort is the natural sort key: the sort title without any of the
// given leading words, followed by the zero-padded season and the year, lowercased.
// The key is cached until a setter touches title, sort title, season or year,
// or a call asks for other prefixes.
func (r *Record) StrippedTitleSort(ignorePrefixes []string) string {
	r.sortMu.Lock()
	defer r.sortMu.Unlock()
	if r.sortDone && slices.Equal(r.sortPrefixes, ignorePrefixes) {
		return r.sortKey
	}
	r.sortKey = r.strippedTitleSort(ignorePrefixes)
	r.sortPrefixes = slices.Clone(ignorePrefixes)
	r.sortDone = true
	return r.sortKey
}

func (r *Record) resetTitleSort() {
	r.sortMu.Lock()
	defer r.sortMu.Unlock()
	r.sortDone = false
}

func (r *Record) strippedTitleSort(ignorePrefixes []string) string {
	text := r.d.titleSort
	if text == "" || text == Unknown {
		text = r.d.title
	}
	lower := strings.ToLower(text)
	for _, p := range ignorePrefixes {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		if strings.HasPrefix(lower, p+" ") && len(lower) > len(p)+1 {
			text = strings.TrimSpace(text[len(p)+1:])
			break
		}
	}
	var b strings.Builder
	b.WriteString(text)
	if r.d.season >= 0 {
		fmt.Fprintf(&b, " %02d", r.d.season)
	}
	b.WriteString(" (")
	b.WriteString(r.d.year)
	b.WriteString(") ")
	return strings.ToLower(b.String())
}
