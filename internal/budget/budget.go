// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package budget truncates a grouped call graph until its diagram fits
// a render budget.
package budget

import (
	"fmt"
	"sort"

	"github.com/petar-djukic/go-codemap/internal/callgraph"
	"github.com/petar-djukic/go-codemap/internal/hierarchy"
	"github.com/petar-djukic/go-codemap/pkg/types"
)

// Per-item text estimates used when no Measure is injected.
const (
	estNodeBytes  = 64
	estEdgeBytes  = 40
	estGroupBytes = 48
)

// Floors for the text-size loop.
const (
	floorNodes     = 1
	floorEdges     = 0
	floorSubgraphs = 0
)

// Measurer returns the serialized size of the diagram for f and g.
type Measurer func(f *hierarchy.Forest, g *callgraph.Graph) int

// Enforcer applies a RenderBudget.
type Enforcer struct {
	Measure Measurer // Text size estimator; nil uses a per-item estimate
}

// limits are the working caps of one enforcement round.
type limits struct {
	nodes, edges, subgraphs int
}

// Enforce truncates f and g to fit b. It removes nodes, then edges, then
// collapses groups, and halves the limits while the text size is over
// budget. Input already within budget is returned unchanged.
func (e *Enforcer) Enforce(f *hierarchy.Forest, g *callgraph.Graph, b types.RenderBudget) (*hierarchy.Forest, *callgraph.Graph, types.Diagnostics, error) {
	if err := b.Validate(); err != nil {
		return nil, nil, nil, err
	}
	if e.fits(f, g, b) {
		return f, g, nil, nil
	}

	_, hadSynthetic := g.SyntheticEntry()
	lim := limits{nodes: b.MaxNodes, edges: b.MaxEdges, subgraphs: b.MaxSubgraphs}
	f, g, diags := e.round(f, g, lim)

	for size := e.measure(f, g); size > b.MaxTextSize; size = e.measure(f, g) {
		if g.NodeCount() <= floorNodes && g.EdgeCount() <= floorEdges && f.GroupCount() <= floorSubgraphs {
			diags = append(diags, types.Diagnostic{
				Kind:    types.DiagBudgetExceeded,
				Stage:   types.StageBudget,
				Message: fmt.Sprintf("text size %d still exceeds max %d at minimum diagram size", size, b.MaxTextSize),
				Count:   size - b.MaxTextSize,
			})
			break
		}
		lim = limits{
			nodes:     max(floorNodes, g.NodeCount()/2),
			edges:     max(floorEdges, g.EdgeCount()/2),
			subgraphs: max(floorSubgraphs, f.GroupCount()/2),
		}
		diags = append(diags, types.Diagnostic{
			Kind:    types.DiagBudgetExceeded,
			Stage:   types.StageBudget,
			Message: fmt.Sprintf("text size %d exceeds max %d; halving to %d nodes, %d edges, %d subgraphs", size, b.MaxTextSize, lim.nodes, lim.edges, lim.subgraphs),
			Count:   size - b.MaxTextSize,
		})
		var more types.Diagnostics
		f, g, more = e.round(f, g, lim)
		diags = append(diags, more...)
	}

	if !hadSynthetic {
		if d, ok := callgraph.SyntheticDiagnostic(g, types.StageBudget); ok {
			diags = append(diags, d)
		}
	}
	return f, g, diags, nil
}

func (e *Enforcer) fits(f *hierarchy.Forest, g *callgraph.Graph, b types.RenderBudget) bool {
	return g.NodeCount() <= b.MaxNodes &&
		g.EdgeCount() <= b.MaxEdges &&
		f.GroupCount() <= b.MaxSubgraphs &&
		e.measure(f, g) <= b.MaxTextSize
}

func (e *Enforcer) measure(f *hierarchy.Forest, g *callgraph.Graph) int {
	if e.Measure != nil {
		return e.Measure(f, g)
	}
	return g.NodeCount()*estNodeBytes + g.EdgeCount()*estEdgeBytes + f.GroupCount()*estGroupBytes
}

// round runs the node, edge and subgraph steps once.
func (e *Enforcer) round(f *hierarchy.Forest, g *callgraph.Graph, lim limits) (*hierarchy.Forest, *callgraph.Graph, types.Diagnostics) {
	var diags types.Diagnostics

	if n := g.NodeCount(); n > lim.nodes {
		drop := NodeRemovalOrder(g)[:n-lim.nodes]
		g = g.Without(drop, nil)
		f = f.Without(drop)
		diags = append(diags, exceeded("nodes", n, g.NodeCount(), lim.nodes))
	}

	if n := g.EdgeCount(); n > lim.edges {
		drop := EdgeRemovalOrder(g)[:n-lim.edges]
		g = g.Without(nil, drop)
		diags = append(diags, exceeded("edges", n, g.EdgeCount(), lim.edges))
	}

	if n := f.GroupCount(); n > lim.subgraphs {
		f = f.Clone()
		for f.GroupCount() > lim.subgraphs && f.CollapseDeepest(g.Index()) {
		}
		diags = append(diags, exceeded("subgraphs", n, f.GroupCount(), lim.subgraphs))
	}

	return f, g, diags
}

func exceeded(dim string, before, after, limit int) types.Diagnostic {
	return types.Diagnostic{
		Kind:    types.DiagBudgetExceeded,
		Stage:   types.StageBudget,
		Message: fmt.Sprintf("%s: %d exceed max %d, truncated to %d", dim, before, limit, after),
		Count:   before - after,
	}
}

// NodeRemovalOrder ranks nodes for removal: lowest connectivity first,
// later-declared symbols first among equals.
func NodeRemovalOrder(g *callgraph.Graph) []types.SymbolID {
	ids := g.Nodes()
	sort.SliceStable(ids, func(i, j int) bool {
		ci, cj := g.Connectivity(ids[i]), g.Connectivity(ids[j])
		if ci != cj {
			return ci < cj
		}
		return ids[i] > ids[j]
	})
	return ids
}

// EdgeRemovalOrder ranks edges for removal: edges of the callers with the
// most outgoing calls first, then by descending caller and callee id.
func EdgeRemovalOrder(g *callgraph.Graph) []callgraph.Pair {
	edges := g.Edges()
	sort.SliceStable(edges, func(i, j int) bool {
		oi, oj := g.OutDegree(edges[i].Caller), g.OutDegree(edges[j].Caller)
		if oi != oj {
			return oi > oj
		}
		if edges[i].Caller != edges[j].Caller {
			return edges[i].Caller > edges[j].Caller
		}
		return edges[i].Callee > edges[j].Callee
	})
	pairs := make([]callgraph.Pair, len(edges))
	for i, e := range edges {
		pairs[i] = callgraph.Pair{Caller: e.Caller, Callee: e.Callee}
	}
	return pairs
}
