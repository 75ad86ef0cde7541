// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package pipeline

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/petar-djukic/go-codemap/pkg/types"
)

const instrumentationName = "codemap.pipeline"

// Tracer and meter are resolved lazily so tests can install providers.
func tracer() trace.Tracer { return otel.Tracer(instrumentationName) }

var (
	stageLatency metric.Float64Histogram
	runTotal     metric.Int64Counter
	nodesRender  metric.Int64Histogram
	diagTotal    metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics creates the instruments once.
func initMetrics() error {
	metricsOnce.Do(func() {
		meter := otel.Meter(instrumentationName)
		var err error

		stageLatency, err = meter.Float64Histogram(
			"codemap_stage_duration_seconds",
			metric.WithDescription("Duration of pipeline stages"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		runTotal, err = meter.Int64Counter(
			"codemap_runs_total",
			metric.WithDescription("Total number of pipeline runs"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		nodesRender, err = meter.Int64Histogram(
			"codemap_rendered_nodes",
			metric.WithDescription("Nodes in the rendered diagram"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		diagTotal, err = meter.Int64Counter(
			"codemap_diagnostics_total",
			metric.WithDescription("Diagnostics emitted, by kind"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

func recordStage(ctx context.Context, stage types.Stage, d time.Duration) {
	if err := initMetrics(); err != nil {
		return
	}
	stageLatency.Record(ctx, d.Seconds(), metric.WithAttributes(attribute.String("stage", string(stage))))
}

func recordRun(ctx context.Context, res *Result, success bool) {
	if err := initMetrics(); err != nil {
		return
	}
	runTotal.Add(ctx, 1, metric.WithAttributes(attribute.Bool("success", success)))
	if !success {
		return
	}
	nodesRender.Record(ctx, int64(res.Stats.Nodes))
	for _, d := range res.Diagnostics {
		diagTotal.Add(ctx, int64(max(d.Count, 1)), metric.WithAttributes(attribute.String("kind", string(d.Kind))))
	}
}

func startRunSpan(ctx context.Context, runID string, in Input) (context.Context, trace.Span) {
	return tracer().Start(ctx, "codemap.Run",
		trace.WithAttributes(
			attribute.String("codemap.run_id", runID),
			attribute.Int("codemap.tags", len(in.Tags)),
			attribute.Int("codemap.call_sites", len(in.Calls)),
		),
	)
}

func startStageSpan(ctx context.Context, stage types.Stage) (context.Context, trace.Span) {
	return tracer().Start(ctx, "codemap."+string(stage),
		trace.WithAttributes(attribute.String("codemap.stage", string(stage))),
	)
}
