// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package callgraph assembles resolved call edges into a directed call
// graph with entry points and cycle information.
package callgraph

import (
	"fmt"
	"sort"

	"github.com/petar-djukic/go-codemap/internal/index"
	"github.com/petar-djukic/go-codemap/pkg/types"
)

// Options configures entry point detection.
type Options struct {
	EntryNames []string // Symbol names always treated as entry points (e.g. "main")
}

// Pair identifies an edge by its ordered endpoints.
type Pair struct {
	Caller types.SymbolID
	Callee types.SymbolID
}

// Graph is a directed call graph over the callable symbols of an index.
// Nodes and edges live in flat slices; per-node adjacency holds edge
// positions, so cycles need no special representation. A Graph is not
// modified after construction; Without derives a new one.
type Graph struct {
	idx       *index.Index
	opts      Options
	nodes     []types.SymbolID // Sorted ascending
	present   bitset
	edges     []types.CallEdge // Sorted by (caller, callee)
	out       map[types.SymbolID][]int
	in        map[types.SymbolID][]int
	entries   []types.SymbolID
	isEntry   bitset
	synthetic types.SymbolID
	cycles    [][]types.SymbolID
	recursive bitset
}

// Build constructs the call graph from an index and resolved edges.
// Every callable symbol becomes a node. Edges between the same ordered
// pair collapse into one that keeps the earliest call line and counts
// the collapsed sites. Edges whose endpoints are not nodes are dropped.
func Build(idx *index.Index, edges []types.CallEdge, opts Options) (*Graph, types.Diagnostics) {
	var nodes []types.SymbolID
	for _, s := range idx.All() {
		if s.Kind.Callable() {
			nodes = append(nodes, s.ID)
		}
	}

	g := assemble(idx, opts, nodes, dedupe(edges), nil)

	var diags types.Diagnostics
	if g.synthetic != types.NoSymbol {
		diags = append(diags, syntheticDiagnostic(idx, g.synthetic, types.StageGraph))
	}
	return g, diags
}

// dedupe collapses edges per ordered pair.
func dedupe(edges []types.CallEdge) []types.CallEdge {
	merged := make(map[Pair]*types.CallEdge, len(edges))
	order := make([]Pair, 0, len(edges))
	for _, e := range edges {
		key := Pair{Caller: e.Caller, Callee: e.Callee}
		sites := e.Sites
		if sites <= 0 {
			sites = 1
		}
		if m, ok := merged[key]; ok {
			m.Sites += sites
			if e.Line < m.Line {
				m.Line = e.Line
			}
			continue
		}
		edge := e
		edge.Sites = sites
		merged[key] = &edge
		order = append(order, key)
	}
	out := make([]types.CallEdge, 0, len(order))
	for _, key := range order {
		out = append(out, *merged[key])
	}
	return out
}

// assemble builds a graph from a node list and de-duplicated edges. When
// keepEntries is non-nil, entry points are inherited from it instead of
// being derived from in-degree.
func assemble(idx *index.Index, opts Options, nodes []types.SymbolID, edges []types.CallEdge, keepEntries bitset) *Graph {
	g := &Graph{
		idx:       idx,
		opts:      opts,
		present:   newBitset(idx.Len()),
		isEntry:   newBitset(idx.Len()),
		recursive: newBitset(idx.Len()),
		out:       make(map[types.SymbolID][]int),
		in:        make(map[types.SymbolID][]int),
		synthetic: types.NoSymbol,
	}

	g.nodes = append([]types.SymbolID(nil), nodes...)
	sort.Slice(g.nodes, func(i, j int) bool { return g.nodes[i] < g.nodes[j] })
	for _, id := range g.nodes {
		g.present.set(id)
	}

	for _, e := range edges {
		if g.present.has(e.Caller) && g.present.has(e.Callee) {
			g.edges = append(g.edges, e)
		}
	}
	sort.Slice(g.edges, func(i, j int) bool {
		if g.edges[i].Caller != g.edges[j].Caller {
			return g.edges[i].Caller < g.edges[j].Caller
		}
		return g.edges[i].Callee < g.edges[j].Callee
	})
	for i, e := range g.edges {
		g.out[e.Caller] = append(g.out[e.Caller], i)
		g.in[e.Callee] = append(g.in[e.Callee], i)
		if e.Caller == e.Callee {
			g.recursive.set(e.Caller)
		}
	}

	g.computeEntries(keepEntries)
	g.computeCycles()
	return g
}

// computeEntries marks zero in-degree nodes (self-loops ignored) and
// flagged nodes, or inherits entries from a parent graph. An empty result
// on a non-empty graph falls back to the node with the highest out-degree.
func (g *Graph) computeEntries(keep bitset) {
	names := make(map[string]bool, len(g.opts.EntryNames))
	for _, n := range g.opts.EntryNames {
		names[n] = true
	}

	for _, id := range g.nodes {
		var entry bool
		if keep != nil {
			entry = keep.has(id)
		} else {
			sym := g.idx.Symbol(id)
			entry = sym.Entry || names[sym.Name] || g.callerCount(id) == 0
		}
		if entry {
			g.isEntry.set(id)
			g.entries = append(g.entries, id)
		}
	}

	if len(g.entries) > 0 || len(g.nodes) == 0 {
		return
	}
	best := g.nodes[0]
	for _, id := range g.nodes[1:] {
		if g.OutDegree(id) > g.OutDegree(best) {
			best = id
		}
	}
	g.synthetic = best
	g.isEntry.set(best)
	g.entries = []types.SymbolID{best}
}

// callerCount returns the in-degree excluding self-loops.
func (g *Graph) callerCount(id types.SymbolID) int {
	n := 0
	for _, ei := range g.in[id] {
		if g.edges[ei].Caller != id {
			n++
		}
	}
	return n
}

// Without returns a new graph with the given nodes (and their incident
// edges) and edges removed. Entry points carry over from g; if none
// survive, the out-degree fallback applies to the new graph.
func (g *Graph) Without(nodes []types.SymbolID, edges []Pair) *Graph {
	dropNode := newBitset(g.idx.Len())
	for _, id := range nodes {
		if g.idx.Valid(id) {
			dropNode.set(id)
		}
	}
	dropEdge := make(map[Pair]bool, len(edges))
	for _, p := range edges {
		dropEdge[p] = true
	}

	keptNodes := make([]types.SymbolID, 0, len(g.nodes))
	for _, id := range g.nodes {
		if !dropNode.has(id) {
			keptNodes = append(keptNodes, id)
		}
	}
	keptEdges := make([]types.CallEdge, 0, len(g.edges))
	for _, e := range g.edges {
		if !dropEdge[Pair{Caller: e.Caller, Callee: e.Callee}] {
			keptEdges = append(keptEdges, e)
		}
	}

	keep := newBitset(g.idx.Len())
	for _, id := range g.entries {
		if id != g.synthetic {
			keep.set(id)
		}
	}
	return assemble(g.idx, g.opts, keptNodes, keptEdges, keep)
}

// Index returns the index the graph was built from.
func (g *Graph) Index() *index.Index { return g.idx }

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Nodes returns the node ids in ascending order.
func (g *Graph) Nodes() []types.SymbolID {
	return append([]types.SymbolID(nil), g.nodes...)
}

// Edges returns the edges sorted by (caller, callee).
func (g *Graph) Edges() []types.CallEdge {
	return append([]types.CallEdge(nil), g.edges...)
}

// Has reports whether id is a node of the graph.
func (g *Graph) Has(id types.SymbolID) bool { return g.present.has(id) }

// Out returns the edges leaving id.
func (g *Graph) Out(id types.SymbolID) []types.CallEdge { return g.pick(g.out[id]) }

// In returns the edges entering id.
func (g *Graph) In(id types.SymbolID) []types.CallEdge { return g.pick(g.in[id]) }

func (g *Graph) pick(positions []int) []types.CallEdge {
	if len(positions) == 0 {
		return nil
	}
	out := make([]types.CallEdge, len(positions))
	for i, p := range positions {
		out[i] = g.edges[p]
	}
	return out
}

// OutDegree returns the number of edges leaving id.
func (g *Graph) OutDegree(id types.SymbolID) int { return len(g.out[id]) }

// InDegree returns the number of edges entering id.
func (g *Graph) InDegree(id types.SymbolID) int { return len(g.in[id]) }

// Connectivity returns the combined in- and out-degree of id.
func (g *Graph) Connectivity(id types.SymbolID) int {
	return len(g.out[id]) + len(g.in[id])
}

// IsEntry reports whether id is an entry point.
func (g *Graph) IsEntry(id types.SymbolID) bool { return g.isEntry.has(id) }

// EntryPoints returns the entry point ids in ascending order.
func (g *Graph) EntryPoints() []types.SymbolID {
	return append([]types.SymbolID(nil), g.entries...)
}

// SyntheticEntry returns the fallback entry point, if one was needed.
func (g *Graph) SyntheticEntry() (types.SymbolID, bool) {
	return g.synthetic, g.synthetic != types.NoSymbol
}

func syntheticDiagnostic(idx *index.Index, id types.SymbolID, stage types.Stage) types.Diagnostic {
	sym := idx.Symbol(id)
	return types.Diagnostic{
		Kind:    types.DiagSyntheticEntry,
		Stage:   stage,
		Message: fmt.Sprintf("no uncalled symbol found; %s (%s) designated entry point by out-degree", sym.QualifiedName(), sym.File),
		Count:   1,
	}
}

// SyntheticDiagnostic describes the fallback entry point of g for the
// given stage. ok is false when g has none.
func SyntheticDiagnostic(g *Graph, stage types.Stage) (types.Diagnostic, bool) {
	id, ok := g.SyntheticEntry()
	if !ok {
		return types.Diagnostic{}, false
	}
	return syntheticDiagnostic(g.idx, id, stage), true
}
