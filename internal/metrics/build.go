// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package metrics provides Prometheus metrics for the jukebox build.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// No record keys, category keys or build IDs in labels: dimensions and
// stages are bounded sets.

var (
	buildsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jukebox_builds_total",
		Help: "Total number of catalog builds, by result (success, failed, cancelled, busy).",
	}, []string{"result"})

	buildDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "jukebox_build_duration_seconds",
		Help:    "Wall time of completed catalog builds.",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 14),
	})

	stageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "jukebox_build_stage_duration_seconds",
		Help:    "Wall time of build stages, by stage.",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
	}, []string{"stage"})

	recordsIndexed = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "jukebox_records",
		Help: "Number of records in the last build, set masters excluded.",
	})

	categoryKeys = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "jukebox_category_keys",
		Help: "Number of category keys written by the last build, by dimension.",
	}, []string{"dimension"})

	categoriesOmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jukebox_categories_omitted_total",
		Help: "Total number of category keys left out of a build, by dimension and reason.",
	}, []string{"dimension", "reason"})

	pagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jukebox_pages_total",
		Help: "Total number of pages decided, by decision (skip, regenerate).",
	}, []string{"decision"})

	recordsSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jukebox_indexer_records_skipped_total",
		Help: "Total number of records an indexer skipped after a failure, by dimension.",
	}, []string{"dimension"})

	rebuildTriggers = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jukebox_rebuild_triggers_total",
		Help: "Total number of rebuild triggers, by source (startup, watch, api).",
	}, []string{"source"})
)

// Build results.
const (
	ResultSuccess   = "success"
	ResultFailed    = "failed"
	ResultCancelled = "cancelled"
	ResultBusy      = "busy"
)

// RecordBuild counts a finished build; the duration is observed for completed builds only.
func RecordBuild(result string, d time.Duration) {
	buildsTotal.WithLabelValues(result).Inc()
	if result == ResultSuccess {
		buildDuration.Observe(d.Seconds())
	}
}

// ObserveStage records the duration of one build stage.
func ObserveStage(stage string, d time.Duration) {
	stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// SetRecords sets the record gauge.
func SetRecords(n int) {
	recordsIndexed.Set(float64(n))
}

// SetCategoryKeys sets the key gauge of dimension.
func SetCategoryKeys(dimension string, n int) {
	categoryKeys.WithLabelValues(dimension).Set(float64(n))
}

// RecordCategoryOmitted counts a category key left out of the output.
func RecordCategoryOmitted(dimension, reason string) {
	categoriesOmitted.WithLabelValues(dimension, reason).Inc()
}

// RecordPages counts page decisions.
func RecordPages(skip bool, n int) {
	decision := "regenerate"
	if skip {
		decision = "skip"
	}
	pagesTotal.WithLabelValues(decision).Add(float64(n))
}

// RecordIndexerSkip counts a record skipped by the indexer of dimension.
func RecordIndexerSkip(dimension string) {
	recordsSkipped.WithLabelValues(dimension).Inc()
}

// RecordRebuildTrigger counts a rebuild request.
func RecordRebuildTrigger(source string) {
	rebuildTriggers.WithLabelValues(source).Inc()
}
