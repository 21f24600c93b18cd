// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldService   = "service"
	FieldVersion   = "version"
	FieldRequestID = "request_id"
	FieldBuildID   = "build_id"
	FieldRecordKey = "record_key"

	// Process / pipeline fields
	FieldEvent     = "event"
	FieldComponent = "component"
	FieldStage     = "stage"
	FieldTask      = "task"

	// Catalog fields
	FieldDimension   = "dimension"
	FieldCategoryKey = "category_key"
	FieldSetKey      = "set_key"
	FieldPage        = "page"

	// Path fields
	FieldPath = "path"
)
