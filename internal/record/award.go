// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package record

// AwardEvent groups the awards a record received at one event.
type AwardEvent struct {
	Name   string  `json:"name" yaml:"name"`
	Awards []Award `json:"awards" yaml:"awards"`
}

// Award lists the categories won and nominated for a single award.
type Award struct {
	Name        string   `json:"name" yaml:"name"`
	Year        int      `json:"year,omitempty" yaml:"year,omitempty"`
	Wons        []string `json:"wons,omitempty" yaml:"wons,omitempty"`
	Nominations []string `json:"nominations,omitempty" yaml:"nominations,omitempty"`
}
