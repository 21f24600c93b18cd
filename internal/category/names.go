// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package category names the catalog dimensions and the property categories
// listed under the Other dimension.
package category

import "slices"

// Dimensions.
const (
	Other         = "Other"
	Genres        = "Genres"
	Title         = "Title"
	Certification = "Certification"
	Year          = "Year"
	Library       = "Library"
	Set           = "Set"
	Cast          = "Cast"
	Director      = "Director"
	Writer        = "Writer"
	Person        = "Person"
	Country       = "Country"
	Award         = "Award"
	Ratings       = "Ratings"
)

// Property categories keyed under Other.
const (
	New       = "New"
	NewMovie  = "New-Movie"
	NewTV     = "New-TV"
	Top250    = "Top250"
	Rating    = "Rating"
	Watched   = "Watched"
	Unwatched = "Unwatched"
	HD        = "HD"
	HD720     = "HD-720"
	HD1080    = "HD-1080"
	ThreeD    = "3D"
	All       = "All"
	TVShows   = "TV Shows"
	Movies    = "Movies"
	Sets      = "Sets"
	Extras    = "Extras"
)

// Fixed keys.
const (
	ThisYear = "This Year"
	LastYear = "Last Year"
	Symbols  = "09"
	Latin    = "AZ"
)

// DefaultIndexes is the dimension list enabled when none is configured.
var DefaultIndexes = []string{Other, Genres, Title, Certification, Year, Library, Set}

// Dimensions lists every dimension the build knows how to index.
var Dimensions = []string{
	Other, Genres, Title, Certification, Year, Library, Set,
	Cast, Director, Writer, Person, Country, Award, Ratings,
}

// Properties lists every property category of the Other dimension.
var Properties = []string{
	New, NewMovie, NewTV, Top250, Rating, Watched, Unwatched,
	HD, HD720, HD1080, ThreeD, All, TVShows, Movies, Sets, Extras,
}

// AlwaysWritten are dimensions whose keys are kept even below the minimum count.
var AlwaysWritten = []string{Other, Genres, Title, Year, Library, Set}

// IsDimension reports whether name is a known dimension.
func IsDimension(name string) bool {
	return slices.Contains(Dimensions, name)
}

// IsProperty reports whether name is a property category.
func IsProperty(name string) bool {
	return slices.Contains(Properties, name)
}

// IsAlwaysWritten reports whether dimension ignores the minimum count.
func IsAlwaysWritten(dimension string) bool {
	return slices.Contains(AlwaysWritten, dimension)
}
