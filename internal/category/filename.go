// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package category

import (
	"fmt"
	"strconv"
	"strings"
)

const unsafeFilenameChars = `<>:"/\|?*`

// SafeFilename encodes characters that are not portable in file names as
// "$" followed by their upper-case hex code.
func SafeFilename(name string) string {
	if !strings.ContainsAny(name, unsafeFilenameChars) {
		return name
	}
	var b strings.Builder
	b.Grow(len(name) + 8)
	for _, r := range name {
		if strings.ContainsRune(unsafeFilenameChars, r) {
			fmt.Fprintf(&b, "$%X", r)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Prefix is the base name shared by every page of key in dimension.
func Prefix(dimension, key string) string {
	return SafeFilename(dimension + "_" + key + "_")
}

// PageName is the base name of page number page (1-based) of key in dimension.
func PageName(dimension, key string, page int) string {
	return Prefix(dimension, key) + strconv.Itoa(page)
}
