// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package pipeline

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/petar-djukic/go-codemap/internal/diagram"
	"github.com/petar-djukic/go-codemap/internal/hierarchy"
	"github.com/petar-djukic/go-codemap/internal/theme"
	"github.com/petar-djukic/go-codemap/pkg/types"
)

func testConfig() Config {
	return Config{
		Budget: types.RenderBudget{MaxNodes: 10, MaxEdges: 10, MaxSubgraphs: 10, MaxTextSize: 50000},
		Theme:  theme.DefaultName,
	}
}

// fiveSymbols is A,B in f1 and C,D,E in f2 with A->B->C->A and D->E.
func fiveSymbols() Input {
	return Input{
		Tags: []types.RawTag{
			{Name: "A", Kind: "function", File: "f1.go", LineStart: 1},
			{Name: "B", Kind: "function", File: "f1.go", LineStart: 10},
			{Name: "C", Kind: "function", File: "f2.go", LineStart: 1},
			{Name: "D", Kind: "function", File: "f2.go", LineStart: 10},
			{Name: "E", Kind: "function", File: "f2.go", LineStart: 20},
		},
		Calls: []types.RawCallSite{
			{Caller: 0, CalleeName: "B", Line: 2},
			{Caller: 1, CalleeName: "C", Line: 11},
			{Caller: 2, CalleeName: "A", Line: 2},
			{Caller: 3, CalleeName: "E", Line: 11},
		},
	}
}

func TestRun_FiveSymbols(t *testing.T) {
	res, err := New(testConfig()).Run(context.Background(), fiveSymbols())
	require.NoError(t, err)

	assert.Equal(t, 5, res.Stats.Nodes)
	assert.Equal(t, 4, res.Stats.Edges)
	assert.Equal(t, 2, res.Stats.Subgraphs)
	assert.Equal(t, []string{"D"}, res.EntryPoints)
	assert.Equal(t, [][]string{{"A", "B", "C"}}, res.Cycles)
	assert.Equal(t, 3, res.Stats.Unreachable)
	assert.Equal(t, 2, res.Stats.ByRule["same_file"])
	total := 0
	for _, n := range res.Stats.ByRule {
		total += n
	}
	assert.Equal(t, 4, total)
	assert.False(t, res.Diagnostics.Has(types.DiagBudgetExceeded))
	assert.Empty(t, res.Diagnostics)
	assert.NotEmpty(t, res.RunID)

	text := res.Document.String()
	assert.Equal(t, 1, strings.Count(text, `"f1.go"`))
	assert.Equal(t, 1, strings.Count(text, `"f2.go"`))
	for _, name := range []string{"A", "B", "C"} {
		assert.Equal(t, 1, strings.Count(text, `"`+name+`"`), name)
	}
}

func TestRun_NodeBudgetTruncates(t *testing.T) {
	cfg := testConfig()
	cfg.Budget.MaxNodes = 3

	res, err := New(cfg).Run(context.Background(), fiveSymbols())
	require.NoError(t, err)

	assert.Equal(t, 3, res.Document.NodeCount)
	assert.True(t, res.Diagnostics.Has(types.DiagBudgetExceeded))
	text := res.Document.String()
	assert.NotContains(t, text, `"D"`)
	assert.NotContains(t, text, `"E"`)
}

func TestRun_Deterministic(t *testing.T) {
	first, err := New(testConfig()).Run(context.Background(), fiveSymbols())
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := New(testConfig()).Run(context.Background(), fiveSymbols())
		require.NoError(t, err)
		assert.Equal(t, first.Document.String(), again.Document.String())
		assert.Equal(t, first.Diagnostics, again.Diagnostics)
	}
}

func TestRun_ConfigErrors(t *testing.T) {
	t.Run("unknown theme", func(t *testing.T) {
		cfg := testConfig()
		cfg.Theme = "neon"
		res, err := New(cfg).Run(context.Background(), fiveSymbols())
		assert.ErrorIs(t, err, theme.ErrUnknownTheme)
		assert.Nil(t, res)
	})

	t.Run("invalid direction", func(t *testing.T) {
		cfg := testConfig()
		cfg.Direction = "up"
		res, err := New(cfg).Run(context.Background(), fiveSymbols())
		assert.ErrorIs(t, err, diagram.ErrInvalidDirection)
		assert.Nil(t, res)
	})

	t.Run("invalid budget", func(t *testing.T) {
		cfg := testConfig()
		cfg.Budget.MaxEdges = 0
		_, err := New(cfg).Run(context.Background(), fiveSymbols())
		assert.ErrorIs(t, err, types.ErrInvalidBudget)
	})
}

func TestRun_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := New(testConfig()).Run(ctx, fiveSymbols())
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, res)
	assert.Nil(t, res.Document)
}

func TestRun_DiagnosticsAccumulate(t *testing.T) {
	in := fiveSymbols()
	in.Tags = append(in.Tags, types.RawTag{Kind: "function", File: "f3.go"})
	in.Calls = append(in.Calls, types.RawCallSite{Caller: 0, CalleeName: "printf", Line: 3})

	res, err := New(testConfig()).Run(context.Background(), in)
	require.NoError(t, err)

	assert.True(t, res.Diagnostics.Has(types.DiagMalformedTag))
	assert.True(t, res.Diagnostics.Has(types.DiagUnresolvedCall))
	assert.Equal(t, 1, res.Stats.Unresolved)
	assert.Equal(t, 5, res.Stats.Nodes)
}

func TestRun_CallDepth(t *testing.T) {
	in := Input{
		Tags: []types.RawTag{
			{Name: "main", Kind: "function", File: "main.go"},
			{Name: "serve", Kind: "function", File: "main.go"},
			{Name: "handle", Kind: "function", File: "main.go"},
			{Name: "ping", Kind: "function", File: "x.go"},
			{Name: "pong", Kind: "function", File: "x.go"},
		},
		Calls: []types.RawCallSite{
			{Caller: 0, CalleeName: "serve"},
			{Caller: 1, CalleeName: "handle"},
			{Caller: 3, CalleeName: "pong"},
			{Caller: 4, CalleeName: "ping"},
		},
	}
	cfg := testConfig()
	cfg.CallDepth = 1

	res, err := New(cfg).Run(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Stats.Nodes)
	assert.Equal(t, []string{"main"}, res.EntryPoints)
	assert.NotContains(t, res.Document.String(), "handle")
}

func TestRun_FolderCapDropsEntryPoint(t *testing.T) {
	in := Input{
		Tags: []types.RawTag{
			{Name: "main", Kind: "function", File: "z/main.go", LineStart: 1},
			{Name: "foo", Kind: "function", File: "a/x.go", LineStart: 1},
			{Name: "bar", Kind: "function", File: "a/x.go", LineStart: 10},
		},
		Calls: []types.RawCallSite{
			{Caller: 0, CalleeName: "foo", Line: 2},
			{Caller: 1, CalleeName: "bar", Line: 2},
			{Caller: 2, CalleeName: "foo", Line: 11},
		},
	}
	cfg := testConfig()
	cfg.Hierarchy = hierarchy.Config{MaxFolders: 1}

	res, err := New(cfg).Run(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, []string{"foo"}, res.EntryPoints)
	assert.True(t, res.Diagnostics.Has(types.DiagGroupOverflow))
	synthetic := res.Diagnostics.OfKind(types.DiagSyntheticEntry)
	require.Len(t, synthetic, 1)
	assert.Equal(t, types.StageGroup, synthetic[0].Stage)
	assert.Contains(t, synthetic[0].Message, "foo")
	assert.NotContains(t, res.Document.String(), `"main"`)
}

func TestRun_Instrumented(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	cfg := testConfig()
	cfg.Instrument = true
	res, err := New(cfg).Run(context.Background(), fiveSymbols())
	require.NoError(t, err)

	var stages []types.Stage
	for _, c := range res.Checkpoints {
		stages = append(stages, c.Stage)
		assert.Positive(t, c.TotalAlloc)
	}
	assert.Equal(t, []types.Stage{
		types.StageIndex, types.StageResolve, types.StageGraph, types.StageGroup,
		types.StageBudget, types.StageTheme, types.StageRender,
	}, stages)

	var names []string
	for _, s := range sr.Ended() {
		names = append(names, s.Name())
	}
	assert.Contains(t, names, "codemap.Run")
	assert.Contains(t, names, "codemap.resolve")
	assert.Contains(t, names, "codemap.render")
	assert.Len(t, names, 8)
}
