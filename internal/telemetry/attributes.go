// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Attribute keys of build spans.
const (
	BuildIDKey       = "jukebox.build.id"
	BuildRecordsKey  = "jukebox.build.records"
	BuildWorkersKey  = "jukebox.build.workers"
	StageKey         = "jukebox.build.stage"
	StageTasksKey    = "jukebox.build.stage.tasks"
	DimensionKey     = "jukebox.category.dimension"
	CategoryKeysKey  = "jukebox.category.keys"
	PagesSkippedKey  = "jukebox.pages.skipped"
	PagesRenderedKey = "jukebox.pages.regenerated"
)

// BuildAttributes describes a build span.
func BuildAttributes(buildID string, records, workers int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(BuildIDKey, buildID),
		attribute.Int(BuildRecordsKey, records),
		attribute.Int(BuildWorkersKey, workers),
	}
}

// StageAttributes describes a stage span.
func StageAttributes(stage string, tasks int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(StageKey, stage),
		attribute.Int(StageTasksKey, tasks),
	}
}

// DimensionAttributes describes the index of one dimension.
func DimensionAttributes(dimension string, keys int) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 2)
	if dimension != "" {
		attrs = append(attrs, attribute.String(DimensionKey, dimension))
	}
	return append(attrs, attribute.Int(CategoryKeysKey, keys))
}

// PageAttributes summarizes the skip decisions of a build.
func PageAttributes(skipped, regenerated int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(PagesSkippedKey, skipped),
		attribute.Int(PagesRenderedKey, regenerated),
	}
}
