// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package theme assigns colour schemes to the groups, nodes and edges of
// a grouped call graph.
package theme

import (
	"github.com/petar-djukic/go-codemap/internal/callgraph"
	"github.com/petar-djukic/go-codemap/internal/hierarchy"
	"github.com/petar-djukic/go-codemap/pkg/types"
)

// Theme is a named palette plus fixed schemes for entry points, plain
// nodes, files and classes.
type Theme struct {
	Name    string              `yaml:"name" validate:"required"`
	Palette []types.ColorScheme `yaml:"palette" validate:"required,min=1,dive"`
	Entry   types.ColorScheme   `yaml:"entry"`
	Node    types.ColorScheme   `yaml:"node"`
	File    types.ColorScheme   `yaml:"file"`
	Class   types.ColorScheme   `yaml:"class"`
}

// Styled is a grouped graph with a colour scheme for every element.
type Styled struct {
	Theme  string
	Forest *hierarchy.Forest
	Graph  *callgraph.Graph
	Groups map[*hierarchy.GroupNode]types.ColorScheme
	Nodes  map[types.SymbolID]types.ColorScheme
	Edges  []string // Stroke colour per Graph.Edges() position
}

// Assign colours f and g. Directory groups rotate through the palette in
// pre-order; entry points always get the entry scheme; edges take the
// stroke of their destination node. The result depends only on the
// inputs.
func (t *Theme) Assign(f *hierarchy.Forest, g *callgraph.Graph) *Styled {
	s := &Styled{
		Theme:  t.Name,
		Forest: f,
		Graph:  g,
		Groups: make(map[*hierarchy.GroupNode]types.ColorScheme),
		Nodes:  make(map[types.SymbolID]types.ColorScheme, g.NodeCount()),
	}

	dirs := 0
	f.Walk(func(n, _ *hierarchy.GroupNode) bool {
		switch n.Kind {
		case hierarchy.KindDirectory:
			s.Groups[n] = t.Palette[dirs%len(t.Palette)]
			dirs++
		case hierarchy.KindFile:
			s.Groups[n] = t.File
		case hierarchy.KindClass:
			s.Groups[n] = t.Class
		}
		return true
	})

	for _, id := range g.Nodes() {
		if g.IsEntry(id) {
			s.Nodes[id] = t.Entry
		} else {
			s.Nodes[id] = t.Node
		}
	}

	edges := g.Edges()
	s.Edges = make([]string, len(edges))
	for i, e := range edges {
		s.Edges[i] = s.Nodes[e.Callee].Stroke
	}
	return s
}
