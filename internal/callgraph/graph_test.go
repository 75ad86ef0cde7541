// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package callgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petar-djukic/go-codemap/internal/index"
	"github.com/petar-djukic/go-codemap/pkg/types"
)

// ids for the five-symbol fixture.
const (
	idA types.SymbolID = iota
	idB
	idC
	idD
	idE
)

func fixtureIndex(t *testing.T) *index.Index {
	t.Helper()
	idx, diags := index.Build([]types.RawTag{
		{Name: "A", Kind: "function", File: "f1.go", LineStart: 1},
		{Name: "B", Kind: "function", File: "f1.go", LineStart: 10},
		{Name: "C", Kind: "function", File: "f2.go", LineStart: 1},
		{Name: "D", Kind: "function", File: "f2.go", LineStart: 10},
		{Name: "E", Kind: "function", File: "f2.go", LineStart: 20},
	})
	require.Empty(t, diags)
	return idx
}

func fixtureEdges() []types.CallEdge {
	return []types.CallEdge{
		{Caller: idA, Callee: idB, Line: 2, Sites: 1},
		{Caller: idB, Callee: idC, Line: 11, Sites: 1},
		{Caller: idC, Callee: idA, Line: 2, Sites: 1},
		{Caller: idD, Callee: idE, Line: 11, Sites: 1},
	}
}

func TestBuild_FixtureShape(t *testing.T) {
	g, diags := Build(fixtureIndex(t), fixtureEdges(), Options{})

	assert.Empty(t, diags)
	assert.Equal(t, 5, g.NodeCount())
	assert.Equal(t, 4, g.EdgeCount())
	assert.Equal(t, []types.SymbolID{idD}, g.EntryPoints())
	_, synthetic := g.SyntheticEntry()
	assert.False(t, synthetic)

	assert.Equal(t, [][]types.SymbolID{{idA, idB, idC}}, g.Cycles())
	assert.True(t, g.Recursive(idB))
	assert.False(t, g.Recursive(idD))

	assert.Equal(t, 2, g.Connectivity(idA))
	assert.Equal(t, 1, g.Connectivity(idE))
}

func TestBuild_DeduplicatesPairs(t *testing.T) {
	idx := fixtureIndex(t)
	g, _ := Build(idx, []types.CallEdge{
		{Caller: idD, Callee: idE, Line: 15, Sites: 1},
		{Caller: idA, Callee: idB, Line: 3, Sites: 1},
		{Caller: idD, Callee: idE, Line: 12, Sites: 1},
		{Caller: idD, Callee: idE, Line: 18},
	}, Options{})

	edges := g.Edges()
	require.Len(t, edges, 2)
	assert.Equal(t, types.CallEdge{Caller: idA, Callee: idB, Line: 3, Sites: 1}, edges[0])
	assert.Equal(t, types.CallEdge{Caller: idD, Callee: idE, Line: 12, Sites: 3}, edges[1])
	assert.Equal(t, 1, g.OutDegree(idD))
}

func TestBuild_SkipsNonCallableAndUnknownEndpoints(t *testing.T) {
	idx, _ := index.Build([]types.RawTag{
		{Name: "Store", Kind: "class", File: "s.py"},
		{Name: "save", Kind: "method", File: "s.py", ParentClass: "Store"},
		{Name: "s", Kind: "module", File: "s.py"},
	})
	g, _ := Build(idx, []types.CallEdge{
		{Caller: 2, Callee: 1, Sites: 1},
		{Caller: 0, Callee: 1, Sites: 1},
		{Caller: 2, Callee: 9, Sites: 1},
	}, Options{})

	assert.Equal(t, []types.SymbolID{1, 2}, g.Nodes())
	assert.False(t, g.Has(0))
	assert.Equal(t, 1, g.EdgeCount())
}

func TestBuild_EntryUnion(t *testing.T) {
	idx, _ := index.Build([]types.RawTag{
		{Name: "main", Kind: "function", File: "main.go"},
		{Name: "serve", Kind: "function", File: "main.go"},
		{Name: "handler", Kind: "function", File: "h.go", Entry: true},
	})
	g, _ := Build(idx, []types.CallEdge{
		{Caller: 1, Callee: 0, Sites: 1},
		{Caller: 0, Callee: 2, Sites: 1},
	}, Options{EntryNames: []string{"main"}})

	assert.Equal(t, []types.SymbolID{0, 1, 2}, g.EntryPoints())
}

func TestBuild_SyntheticEntryForPureCycle(t *testing.T) {
	idx, _ := index.Build([]types.RawTag{
		{Name: "ping", Kind: "function", File: "p.go"},
		{Name: "pong", Kind: "function", File: "p.go"},
	})
	g, diags := Build(idx, []types.CallEdge{
		{Caller: 0, Callee: 1, Sites: 1},
		{Caller: 1, Callee: 0, Sites: 1},
		{Caller: 1, Callee: 1, Sites: 1},
	}, Options{})

	id, ok := g.SyntheticEntry()
	require.True(t, ok)
	assert.Equal(t, types.SymbolID(1), id)
	assert.Equal(t, []types.SymbolID{1}, g.EntryPoints())
	require.True(t, diags.Has(types.DiagSyntheticEntry))
	assert.Contains(t, diags[0].Message, "pong")
}

func TestBuild_SelfLoopDoesNotBlockEntry(t *testing.T) {
	idx, _ := index.Build([]types.RawTag{
		{Name: "fact", Kind: "function", File: "m.py"},
	})
	g, diags := Build(idx, []types.CallEdge{{Caller: 0, Callee: 0, Sites: 1}}, Options{})

	assert.Empty(t, diags)
	assert.True(t, g.IsEntry(0))
	assert.True(t, g.Recursive(0))
	assert.Empty(t, g.Cycles())
}

func TestBuild_EmptyGraph(t *testing.T) {
	idx, _ := index.Build(nil)
	g, diags := Build(idx, nil, Options{})

	assert.Empty(t, diags)
	assert.Zero(t, g.NodeCount())
	assert.Empty(t, g.EntryPoints())
}

func TestGraph_Without(t *testing.T) {
	g, _ := Build(fixtureIndex(t), fixtureEdges(), Options{})

	t.Run("edges only", func(t *testing.T) {
		h := g.Without(nil, []Pair{{Caller: idC, Callee: idA}})
		assert.Equal(t, 5, h.NodeCount())
		assert.Equal(t, 3, h.EdgeCount())
		assert.Empty(t, h.Cycles())
		assert.Equal(t, []types.SymbolID{idD}, h.EntryPoints())
	})

	t.Run("entry removed falls back", func(t *testing.T) {
		h := g.Without([]types.SymbolID{idD, idE}, nil)
		assert.Equal(t, []types.SymbolID{idA, idB, idC}, h.Nodes())
		assert.Equal(t, 3, h.EdgeCount())
		id, ok := h.SyntheticEntry()
		require.True(t, ok)
		assert.Equal(t, idA, id)

		d, ok := SyntheticDiagnostic(h, types.StageBudget)
		require.True(t, ok)
		assert.Equal(t, types.StageBudget, d.Stage)
	})

	t.Run("source graph untouched", func(t *testing.T) {
		assert.Equal(t, 5, g.NodeCount())
		assert.Equal(t, 4, g.EdgeCount())
	})
}

func TestGraph_WalkVisitsCycleOnce(t *testing.T) {
	g, _ := Build(fixtureIndex(t), fixtureEdges(), Options{})

	visits := map[types.SymbolID]int{}
	var edges int
	g.Walk([]types.SymbolID{idA, idA}, 0, Visitor{
		Node: func(id types.SymbolID, _ int) { visits[id]++ },
		Edge: func(types.CallEdge, int) { edges++ },
	})

	assert.Equal(t, map[types.SymbolID]int{idA: 1, idB: 1, idC: 1}, visits)
	assert.Equal(t, 3, edges)
}

func TestGraph_ReachableDepth(t *testing.T) {
	g, _ := Build(fixtureIndex(t), fixtureEdges(), Options{})

	tests := []struct {
		name  string
		roots []types.SymbolID
		depth int
		want  []types.SymbolID
	}{
		{"unbounded", []types.SymbolID{idA}, 0, []types.SymbolID{idA, idB, idC}},
		{"depth one", []types.SymbolID{idA}, 1, []types.SymbolID{idA, idB}},
		{"two roots", []types.SymbolID{idD, idC}, 1, []types.SymbolID{idD, idC, idE, idA}},
		{"unknown root", []types.SymbolID{99}, 0, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, g.Reachable(tt.roots, tt.depth))
		})
	}
}

func TestGraph_Unreachable(t *testing.T) {
	g, _ := Build(fixtureIndex(t), fixtureEdges(), Options{})
	assert.Equal(t, []types.SymbolID{idA, idB, idC}, g.Unreachable())
}
