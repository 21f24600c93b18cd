// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package build

import (
	"context"
	"fmt"
	"time"

	"github.com/ManuGH/jukebox/internal/dirty"
	"github.com/ManuGH/jukebox/internal/log"
	"github.com/ManuGH/jukebox/internal/metrics"
	"github.com/ManuGH/jukebox/internal/telemetry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const meterName = "jukebox.build"

// task is one unit of work of a pooled stage.
type task struct {
	name string
	fn   func(context.Context) error
}

// stage runs fn inside a span and records its duration. A cancelled context
// stops the build before the stage starts.
func (r *run) stage(ctx context.Context, name string, fn func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s stage: %w", name, err)
	}
	ctx, span := telemetry.Tracer().Start(ctx, "build."+name)
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	metrics.ObserveStage(name, elapsed)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	r.logger.Debug().
		Str(log.FieldEvent, "build.stage_completed").
		Str(log.FieldStage, name).
		Dur("duration", elapsed).
		Msg("build stage completed")
	return nil
}

// pool runs tasks on the bounded worker pool and waits for all of them. The
// first failing task cancels the others; its error is returned as a TaskError.
func (r *run) pool(ctx context.Context, stage string, tasks []task) error {
	trace.SpanFromContext(ctx).SetAttributes(telemetry.StageAttributes(stage, len(tasks))...)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Workers())
	for _, t := range tasks {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return &TaskError{Stage: stage, Task: t.name, Err: err}
			}
			if err := t.fn(gctx); err != nil {
				return &TaskError{Stage: stage, Task: t.name, Err: err}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		r.logger.Warn().
			Err(err).
			Str(log.FieldEvent, "build.task_failed").
			Str(log.FieldStage, stage).
			Msg("build stage task failed")
		return err
	}
	return nil
}

// recordDecision counts the pages of one category decision on the global
// meter provider.
func recordDecision(ctx context.Context, dimension string, d dirty.Decision, pages int) {
	meter := otel.GetMeterProvider().Meter(meterName)
	counter, err := meter.Int64Counter("jukebox_page_decisions_total",
		metric.WithDescription("Category pages by skip decision"))
	if err != nil {
		return
	}
	reason := string(d.Reason)
	if reason == "" {
		reason = "none"
	}
	counter.Add(ctx, int64(pages), metric.WithAttributes(
		attribute.String("dimension", dimension),
		attribute.Bool("skip", d.Skip),
		attribute.String("reason", reason),
	))
}
