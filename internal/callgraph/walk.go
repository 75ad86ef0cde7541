// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package callgraph

import "github.com/petar-djukic/go-codemap/pkg/types"

// Visitor receives walk events. Either field may be nil.
type Visitor struct {
	Node func(id types.SymbolID, depth int)
	Edge func(e types.CallEdge, depth int)
}

// Walk traverses the graph breadth-first from roots. Each reachable node
// is visited exactly once; every traversed edge is reported, including
// edges back into visited nodes, which are not expanded again. A
// maxDepth of zero or less means unbounded. Roots that are not nodes
// are ignored.
func (g *Graph) Walk(roots []types.SymbolID, maxDepth int, v Visitor) {
	visited := newBitset(g.idx.Len())
	type item struct {
		id    types.SymbolID
		depth int
	}

	var queue []item
	for _, r := range roots {
		if !g.Has(r) || visited.has(r) {
			continue
		}
		visited.set(r)
		queue = append(queue, item{id: r})
	}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if v.Node != nil {
			v.Node(cur.id, cur.depth)
		}
		if maxDepth > 0 && cur.depth >= maxDepth {
			continue
		}
		for _, ei := range g.out[cur.id] {
			e := g.edges[ei]
			if v.Edge != nil {
				v.Edge(e, cur.depth)
			}
			if visited.has(e.Callee) {
				continue
			}
			visited.set(e.Callee)
			queue = append(queue, item{id: e.Callee, depth: cur.depth + 1})
		}
	}
}

// Reachable returns the nodes reachable from roots within maxDepth, in
// visit order.
func (g *Graph) Reachable(roots []types.SymbolID, maxDepth int) []types.SymbolID {
	var out []types.SymbolID
	g.Walk(roots, maxDepth, Visitor{Node: func(id types.SymbolID, _ int) {
		out = append(out, id)
	}})
	return out
}

// Unreachable returns the nodes not reachable from any entry point, in
// ascending order.
func (g *Graph) Unreachable() []types.SymbolID {
	seen := newBitset(g.idx.Len())
	for _, id := range g.Reachable(g.entries, 0) {
		seen.set(id)
	}
	var out []types.SymbolID
	for _, id := range g.nodes {
		if !seen.has(id) {
			out = append(out, id)
		}
	}
	return out
}
