// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package pipeline runs the stages that turn tagger output into a diagram
// document.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/petar-djukic/go-codemap/internal/budget"
	"github.com/petar-djukic/go-codemap/internal/callgraph"
	"github.com/petar-djukic/go-codemap/internal/diagram"
	"github.com/petar-djukic/go-codemap/internal/hierarchy"
	"github.com/petar-djukic/go-codemap/internal/index"
	"github.com/petar-djukic/go-codemap/internal/resolve"
	"github.com/petar-djukic/go-codemap/internal/theme"
	"github.com/petar-djukic/go-codemap/pkg/types"
)

// Input is the tagger output for one run. RawCallSite.Caller refers to
// a position in Tags.
type Input struct {
	Tags  []types.RawTag
	Calls []types.RawCallSite
}

// Config holds everything a run needs. Nothing is read from globals.
type Config struct {
	Budget            types.RenderBudget
	Theme             string
	Themes            *theme.Registry // nil uses the built-in themes
	Hierarchy         hierarchy.Config
	EntryNames        []string
	CallDepth         int // Keep only nodes this many calls from an entry point; 0 keeps all
	Direction         string
	Revision          string
	ResolverCacheSize int
	Instrument        bool         // Record per-stage checkpoints
	Logger            *slog.Logger // nil discards
}

// Stats summarizes a run.
type Stats struct {
	Symbols     int
	CallSites   int
	Resolved    int
	Unresolved  int
	Ambiguous   int
	ByRule      map[string]int // Resolved sites per resolution rule
	GraphNodes  int            // Before truncation
	GraphEdges  int            // Before truncation
	Nodes       int            // Rendered
	Edges       int            // Rendered
	Subgraphs   int            // Rendered
	TextSize    int
	Cycles      int
	Unreachable int // Graph nodes no entry point reaches, before truncation
	EntryPoints int
}

// Checkpoint is the timing and memory snapshot taken after a stage.
type Checkpoint struct {
	Stage      types.Stage
	Duration   time.Duration
	HeapAlloc  uint64
	TotalAlloc uint64
}

// Result is the outcome of a run.
type Result struct {
	RunID       string
	Document    *types.DiagramDocument
	Diagnostics types.Diagnostics
	Stats       Stats
	Checkpoints []Checkpoint
	EntryPoints []string   // Qualified names of rendered entry points
	Cycles      [][]string // Qualified names per multi-node cycle, before truncation
}

// Runner executes the pipeline.
type Runner struct {
	cfg    Config
	themes *theme.Registry
	log    *slog.Logger
}

// New creates a Runner. Configuration errors surface from Run.
func New(cfg Config) *Runner {
	r := &Runner{cfg: cfg, themes: cfg.Themes, log: cfg.Logger}
	if r.themes == nil {
		r.themes = theme.NewRegistry()
	}
	if r.log == nil {
		r.log = slog.New(slog.DiscardHandler)
	}
	return r
}

// Run executes every stage in order: index, resolve, graph, reach,
// group, budget, theme, render. Non-fatal findings accumulate in
// Result.Diagnostics; errors are returned only for invalid configuration,
// cancellation and render invariant violations.
func (r *Runner) Run(ctx context.Context, in Input) (res *Result, err error) {
	if err := r.cfg.Budget.Validate(); err != nil {
		return nil, err
	}
	if err := diagram.ValidateDirection(r.cfg.Direction); err != nil {
		return nil, err
	}
	th, err := r.themes.Get(r.cfg.Theme)
	if err != nil {
		return nil, err
	}

	res = &Result{RunID: uuid.NewString()}
	ctx, span := startRunSpan(ctx, res.RunID, in)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}
		span.End()
		recordRun(ctx, res, err == nil)
	}()

	log := r.log.With("run_id", res.RunID)
	log.Info("run.start", "tags", len(in.Tags), "call_sites", len(in.Calls), "theme", th.Name)
	start := time.Now()

	// Step 1: Index symbols.
	var idx *index.Index
	if err := r.stage(ctx, res, types.StageIndex, func(ctx context.Context, span trace.Span) error {
		var diags types.Diagnostics
		idx, diags = index.Build(in.Tags)
		res.Diagnostics = append(res.Diagnostics, diags...)
		res.Stats.Symbols = idx.Len()
		span.SetAttributes(attribute.Int("codemap.symbols", idx.Len()))
		return nil
	}); err != nil {
		return res, err
	}

	// Step 2: Resolve call sites.
	var edges []types.CallEdge
	if err := r.stage(ctx, res, types.StageResolve, func(ctx context.Context, span trace.Span) error {
		resolver := resolve.New(idx, resolve.Config{CacheSize: r.cfg.ResolverCacheSize})
		var stats resolve.Stats
		var diags types.Diagnostics
		edges, stats, diags = resolver.Resolve(in.Calls)
		res.Diagnostics = append(res.Diagnostics, diags...)
		res.Stats.CallSites = stats.Sites
		res.Stats.Resolved = stats.Resolved
		res.Stats.Unresolved = stats.Unresolved
		res.Stats.Ambiguous = stats.Ambiguous
		res.Stats.ByRule = make(map[string]int, len(stats.ByRule))
		for rule, n := range stats.ByRule {
			if rule != resolve.RuleUnresolved {
				res.Stats.ByRule[rule.String()] = n
			}
		}
		span.SetAttributes(
			attribute.Int("codemap.resolved", stats.Resolved),
			attribute.Int("codemap.unresolved", stats.Unresolved),
			attribute.Int("codemap.ambiguous", stats.Ambiguous),
		)
		return nil
	}); err != nil {
		return res, err
	}

	// Step 3: Build the call graph.
	var g *callgraph.Graph
	if err := r.stage(ctx, res, types.StageGraph, func(ctx context.Context, span trace.Span) error {
		var diags types.Diagnostics
		g, diags = callgraph.Build(idx, edges, callgraph.Options{EntryNames: r.cfg.EntryNames})
		res.Diagnostics = append(res.Diagnostics, diags...)
		res.Stats.GraphNodes = g.NodeCount()
		res.Stats.GraphEdges = g.EdgeCount()
		res.Stats.Cycles = len(g.Cycles())
		res.Stats.Unreachable = len(g.Unreachable())
		res.Cycles = cycleNames(g)
		span.SetAttributes(
			attribute.Int("codemap.nodes", g.NodeCount()),
			attribute.Int("codemap.edges", g.EdgeCount()),
			attribute.Int("codemap.cycles", res.Stats.Cycles),
		)
		return nil
	}); err != nil {
		return res, err
	}

	// Step 4: Optionally keep only what entry points reach.
	if r.cfg.CallDepth > 0 {
		if err := r.stage(ctx, res, types.StageReach, func(ctx context.Context, span trace.Span) error {
			g = trimUnreached(g, r.cfg.CallDepth)
			span.SetAttributes(attribute.Int("codemap.nodes", g.NodeCount()))
			return nil
		}); err != nil {
			return res, err
		}
	}

	// Step 5: Group into directories, files and classes.
	var forest *hierarchy.Forest
	if err := r.stage(ctx, res, types.StageGroup, func(ctx context.Context, span trace.Span) error {
		var diags types.Diagnostics
		var err error
		forest, diags, err = hierarchy.Build(ctx, g, r.cfg.Hierarchy)
		if err != nil {
			return fmt.Errorf("grouping: %w", err)
		}
		res.Diagnostics = append(res.Diagnostics, diags...)
		if len(forest.Dropped) > 0 {
			_, hadSynthetic := g.SyntheticEntry()
			g = g.Without(forest.Dropped, nil)
			if !hadSynthetic {
				if d, ok := callgraph.SyntheticDiagnostic(g, types.StageGroup); ok {
					res.Diagnostics = append(res.Diagnostics, d)
				}
			}
		}
		span.SetAttributes(
			attribute.Int("codemap.groups", forest.GroupCount()),
			attribute.Int("codemap.grouped", len(forest.Symbols())),
			attribute.Int("codemap.dropped", len(forest.Dropped)),
		)
		return nil
	}); err != nil {
		return res, err
	}

	// Step 6: Enforce the render budget.
	opts := diagram.Options{Direction: r.cfg.Direction, Revision: r.cfg.Revision}
	if err := r.stage(ctx, res, types.StageBudget, func(ctx context.Context, span trace.Span) error {
		enforcer := &budget.Enforcer{Measure: diagram.Measurer(th, opts)}
		var diags types.Diagnostics
		var err error
		forest, g, diags, err = enforcer.Enforce(forest, g, r.cfg.Budget)
		if err != nil {
			return err
		}
		res.Diagnostics = append(res.Diagnostics, diags...)
		span.SetAttributes(
			attribute.Int("codemap.nodes", g.NodeCount()),
			attribute.Int("codemap.edges", g.EdgeCount()),
			attribute.Int("codemap.groups", forest.GroupCount()),
		)
		return nil
	}); err != nil {
		return res, err
	}

	// Step 7: Assign colours.
	var styled *theme.Styled
	if err := r.stage(ctx, res, types.StageTheme, func(ctx context.Context, span trace.Span) error {
		var err error
		styled, err = r.themes.Assign(forest, g, r.cfg.Theme)
		return err
	}); err != nil {
		return res, err
	}

	// Step 8: Render.
	if err := r.stage(ctx, res, types.StageRender, func(ctx context.Context, span trace.Span) error {
		doc, err := diagram.Render(styled, r.cfg.Budget, opts)
		if err != nil {
			return err
		}
		res.Document = doc
		res.Stats.Nodes = doc.NodeCount
		res.Stats.Edges = doc.EdgeCount
		res.Stats.Subgraphs = doc.SubgraphCount
		res.Stats.TextSize = doc.Len()
		span.SetAttributes(attribute.Int("codemap.text_size", doc.Len()))
		return nil
	}); err != nil {
		return res, err
	}

	for _, id := range g.EntryPoints() {
		res.EntryPoints = append(res.EntryPoints, idx.Symbol(id).QualifiedName())
	}
	res.Stats.EntryPoints = len(res.EntryPoints)

	log.Info("run.done",
		"nodes", res.Stats.Nodes,
		"edges", res.Stats.Edges,
		"subgraphs", res.Stats.Subgraphs,
		"bytes", res.Stats.TextSize,
		"diagnostics", len(res.Diagnostics),
		"elapsed", time.Since(start),
	)
	return res, nil
}

// stage runs fn inside a span after checking for cancellation.
func (r *Runner) stage(ctx context.Context, res *Result, stage types.Stage, fn func(context.Context, trace.Span) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ctx, span := startStageSpan(ctx, stage)
	defer span.End()

	start := time.Now()
	err := fn(ctx, span)
	elapsed := time.Since(start)
	recordStage(ctx, stage, elapsed)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		r.log.Error("stage.failed", "stage", stage, "error", err)
		return err
	}
	span.SetStatus(codes.Ok, "")

	if r.cfg.Instrument {
		var ms runtime.MemStats
		runtime.ReadMemStats(&ms)
		res.Checkpoints = append(res.Checkpoints, Checkpoint{
			Stage:      stage,
			Duration:   elapsed,
			HeapAlloc:  ms.HeapAlloc,
			TotalAlloc: ms.TotalAlloc,
		})
		r.log.Debug("stage.timing", "run_id", res.RunID, "stage", stage, "elapsed", elapsed, "heap_alloc", ms.HeapAlloc)
	}
	return nil
}

// trimUnreached keeps the nodes within depth calls of an entry point.
func trimUnreached(g *callgraph.Graph, depth int) *callgraph.Graph {
	keep := make(map[types.SymbolID]bool, g.NodeCount())
	for _, id := range g.Reachable(g.EntryPoints(), depth) {
		keep[id] = true
	}
	var drop []types.SymbolID
	for _, id := range g.Nodes() {
		if !keep[id] {
			drop = append(drop, id)
		}
	}
	if len(drop) == 0 {
		return g
	}
	return g.Without(drop, nil)
}

func cycleNames(g *callgraph.Graph) [][]string {
	var out [][]string
	for _, c := range g.Cycles() {
		names := make([]string, len(c))
		for i, id := range c {
			names[i] = g.Index().Symbol(id).QualifiedName()
		}
		out = append(out, names)
	}
	return out
}
