// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petar-djukic/go-codemap/internal/index"
	"github.com/petar-djukic/go-codemap/pkg/types"
)

func buildIndex(t *testing.T) *index.Index {
	t.Helper()
	idx, diags := index.Build([]types.RawTag{
		{Name: "main", Kind: "function", File: "cmd/main.go", LineStart: 1},   // 0
		{Name: "helper", Kind: "function", File: "cmd/main.go", LineStart: 9}, // 1
		{Name: "helper", Kind: "function", File: "lib/util.go", LineStart: 1}, // 2
		{Name: "Store", Kind: "class", File: "lib/store.go", LineStart: 1},    // 3
		{Name: "Save", Kind: "method", File: "lib/store.go", ParentClass: "Store", LineStart: 4},
		{Name: "Store", Kind: "function", File: "lib/factory.go", LineStart: 2},
	})
	require.Empty(t, diags)
	return idx
}

func TestResolve_EdgesAndStats(t *testing.T) {
	idx := buildIndex(t)
	r := New(idx, Config{})

	edges, stats, diags := r.Resolve([]types.RawCallSite{
		{Caller: 0, CalleeName: "helper", Line: 3},  // same file -> 1
		{Caller: 0, CalleeName: "Save", Line: 4},    // unique global -> 4
		{Caller: 0, CalleeName: "Store", Line: 5},   // class skipped, function -> 5
		{Caller: 0, CalleeName: "missing", Line: 6}, // unresolved
		{Caller: 0, CalleeName: "helper", Line: 7},  // duplicate pair kept
		{Caller: 3, CalleeName: "helper", Line: 2},  // class caller is invalid
		{Caller: 42, CalleeName: "helper", Line: 2}, // out of range
	})

	require.Len(t, edges, 4)
	assert.Equal(t, types.CallEdge{Caller: 0, Callee: 1, Line: 3, Sites: 1}, edges[0])
	assert.Equal(t, types.SymbolID(4), edges[1].Callee)
	assert.Equal(t, types.SymbolID(5), edges[2].Callee)
	assert.Equal(t, types.SymbolID(1), edges[3].Callee)

	assert.Equal(t, 7, stats.Sites)
	assert.Equal(t, 4, stats.Resolved)
	assert.Equal(t, 1, stats.Unresolved)
	assert.Equal(t, 2, stats.InvalidCaller)
	assert.Equal(t, 0, stats.Ambiguous)
	assert.Equal(t, 2, stats.ByRule[RuleSameFile])

	require.True(t, diags.Has(types.DiagUnresolvedCall))
	assert.Contains(t, diags.OfKind(types.DiagUnresolvedCall)[0].Message, "missing")
	assert.True(t, diags.Has(types.DiagInvalidCaller))
	assert.False(t, diags.Has(types.DiagAmbiguousCall))
}

func TestResolve_AmbiguousCountedAsDiagnostic(t *testing.T) {
	idx, _ := index.Build([]types.RawTag{
		{Name: "run", Kind: "function", File: "app/run.go"},
		{Name: "log", Kind: "function", File: "app/sub/log.go"},
		{Name: "log", Kind: "function", File: "vendor/log.go"},
	})
	r := New(idx, Config{CacheSize: 1})

	edges, stats, diags := r.Resolve([]types.RawCallSite{
		{Caller: 0, CalleeName: "log", Line: 2},
		{Caller: 0, CalleeName: "log", Line: 3},
	})

	require.Len(t, edges, 2)
	assert.Equal(t, types.SymbolID(1), edges[0].Callee)
	assert.Equal(t, 2, stats.Ambiguous)
	require.True(t, diags.Has(types.DiagAmbiguousCall))
	assert.Equal(t, 2, diags.OfKind(types.DiagAmbiguousCall)[0].Count)
}

func TestResolve_SelfRecursion(t *testing.T) {
	idx, _ := index.Build([]types.RawTag{
		{Name: "fact", Kind: "function", File: "m.py"},
	})
	edges, _, diags := New(idx, Config{}).Resolve([]types.RawCallSite{
		{Caller: 0, CalleeName: "fact", Line: 3},
	})

	require.Len(t, edges, 1)
	assert.Equal(t, edges[0].Caller, edges[0].Callee)
	assert.Empty(t, diags)
}

func TestSampleNames_Truncates(t *testing.T) {
	got := sampleNames(map[string]int{"a": 1, "b": 3, "c": 2, "d": 1, "e": 1, "f": 1})
	assert.Equal(t, "b, c, a, d, e, ...", got)
}
