// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package indexer

import (
	"context"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ManuGH/jukebox/internal/category"
	"github.com/ManuGH/jukebox/internal/config"
	"github.com/ManuGH/jukebox/internal/index"
	"github.com/ManuGH/jukebox/internal/record"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Title buckets records by the first letter of their stripped sort title.
func Title(ctx context.Context, env Env, records []*record.Record) (*index.Index, error) {
	cfg := env.Config
	idx := newIndex(env, category.Title)
	err := each(ctx, env, category.Title, records, func(r *record.Record) {
		if r.IsExtra() || (r.IsSetMaster() && cfg.Explode.RemoveTitle) {
			return
		}
		add(idx, category.Title, TitleKey(r.StrippedTitleSort(cfg.Indexing.SortIgnorePrefixes), cfg), r)
	})
	return idx, err
}

// TitleKey returns the Title bucket of a sort title.
func TitleKey(sortTitle string, cfg *config.Config) string {
	first, _ := utf8.DecodeRuneInString(strings.TrimSpace(sortTitle))
	if first == utf8.RuneError {
		return category.Symbols
	}
	first = unicode.ToUpper(first)
	if !unicode.IsLetter(first) {
		return category.Symbols
	}
	key := string(first)
	if mapped, ok := cfg.Indexing.CharMap[key]; ok && mapped != "" {
		key = mapped
	} else {
		key = foldAccents(key)
	}
	if cfg.Indexing.CharGroupEnglish && len(key) == 1 && key[0] >= 'A' && key[0] <= 'Z' {
		return category.Latin
	}
	return key
}

// foldAccents drops combining marks, so "É" buckets with "E".
func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil || out == "" {
		return s
	}
	return strings.ToUpper(out)
}
