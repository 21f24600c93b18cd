// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package record

// Departments used by the people scanner.
const (
	DepartmentActors    = "Actors"
	DepartmentDirecting = "Directing"
	DepartmentWriting   = "Writing"
)

// Kind discriminates a plain filmography credit from a full person entry.
type Kind uint8

const (
	KindCredit Kind = iota
	KindPerson
)

// Filmography is one person credit attached to a record. Person is only set
// when Kind is KindPerson.
type Filmography struct {
	Kind       Kind           `json:"kind,omitempty" yaml:"kind,omitempty"`
	Name       string         `json:"name" yaml:"name"`
	Job        string         `json:"job,omitempty" yaml:"job,omitempty"`
	Department string         `json:"department,omitempty" yaml:"department,omitempty"`
	Character  string         `json:"character,omitempty" yaml:"character,omitempty"`
	Filename   string         `json:"filename,omitempty" yaml:"filename,omitempty"`
	Order      int            `json:"order,omitempty" yaml:"order,omitempty"`
	Person     *PersonDetails `json:"person,omitempty" yaml:"person,omitempty"`
}

// PersonDetails carries the fields only a scanned person has.
type PersonDetails struct {
	Biography   string        `json:"biography,omitempty" yaml:"biography,omitempty"`
	Birthday    string        `json:"birthday,omitempty" yaml:"birthday,omitempty"`
	Birthplace  string        `json:"birthplace,omitempty" yaml:"birthplace,omitempty"`
	Aka         []string      `json:"aka,omitempty" yaml:"aka,omitempty"`
	KnownMovies int           `json:"known_movies,omitempty" yaml:"known_movies,omitempty"`
	Credits     []Filmography `json:"credits,omitempty" yaml:"credits,omitempty"`
}

// IsPerson reports whether the entry carries person details.
func (f Filmography) IsPerson() bool {
	return f.Kind == KindPerson && f.Person != nil
}
