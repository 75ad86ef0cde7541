// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package callgraph

import (
	"sort"

	"github.com/petar-djukic/go-codemap/pkg/types"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// computeCycles finds strongly connected components with more than one
// member and marks their nodes recursive. Self-loops are marked during
// assembly and are not reported as cycles.
func (g *Graph) computeCycles() {
	dg := simple.NewDirectedGraph()
	for _, id := range g.nodes {
		dg.AddNode(simple.Node(int64(id)))
	}
	for _, e := range g.edges {
		if e.Caller == e.Callee {
			continue
		}
		dg.SetEdge(simple.Edge{F: simple.Node(int64(e.Caller)), T: simple.Node(int64(e.Callee))})
	}

	for _, scc := range topo.TarjanSCC(dg) {
		if len(scc) < 2 {
			continue
		}
		cycle := make([]types.SymbolID, len(scc))
		for i, n := range scc {
			cycle[i] = types.SymbolID(n.ID())
			g.recursive.set(cycle[i])
		}
		sort.Slice(cycle, func(i, j int) bool { return cycle[i] < cycle[j] })
		g.cycles = append(g.cycles, cycle)
	}
	sort.Slice(g.cycles, func(i, j int) bool { return g.cycles[i][0] < g.cycles[j][0] })
}

// Cycles returns the multi-node cycles, each sorted by id, ordered by
// their smallest member.
func (g *Graph) Cycles() [][]types.SymbolID {
	out := make([][]types.SymbolID, len(g.cycles))
	for i, c := range g.cycles {
		out[i] = append([]types.SymbolID(nil), c...)
	}
	return out
}

// Recursive reports whether id calls itself directly or sits on a cycle.
func (g *Graph) Recursive(id types.SymbolID) bool { return g.recursive.has(id) }
