// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package diagram renders a styled call graph as a Mermaid flowchart.
package diagram

import (
	"errors"
	"fmt"
	"strings"

	"github.com/petar-djukic/go-codemap/internal/callgraph"
	"github.com/petar-djukic/go-codemap/internal/hierarchy"
	"github.com/petar-djukic/go-codemap/internal/theme"
	"github.com/petar-djukic/go-codemap/pkg/types"
)

// MaxLabelLen is the longest label emitted, in runes.
const MaxLabelLen = 60

// Directions accepted by Mermaid flowcharts.
var Directions = []string{"TD", "TB", "LR", "RL", "BT"}

// ErrRenderInvariant is returned when a rendered document breaks a
// structural guarantee. It indicates a bug upstream, not bad input.
var ErrRenderInvariant = errors.New("render invariant violated")

// ErrInvalidDirection is returned for an unknown flowchart direction.
var ErrInvalidDirection = errors.New("invalid direction")

// RenderInvariantViolation describes a failed post-render check.
type RenderInvariantViolation struct {
	Check  string
	Got    int
	Limit  int
	Detail string
}

func (e *RenderInvariantViolation) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("render invariant %s: %s", e.Check, e.Detail)
	}
	return fmt.Sprintf("render invariant %s: %d exceeds %d", e.Check, e.Got, e.Limit)
}

func (e *RenderInvariantViolation) Unwrap() error { return ErrRenderInvariant }

// Options controls the document header.
type Options struct {
	Direction string // Flowchart direction (default TD)
	Revision  string // Source revision written as a leading comment
}

// Render produces the diagram document for s and checks it against b.
func Render(s *theme.Styled, b types.RenderBudget, opts Options) (*types.DiagramDocument, error) {
	dir, err := direction(opts.Direction)
	if err != nil {
		return nil, err
	}
	doc, declared := build(s, dir, opts.Revision)
	if err := verify(doc, declared, s.Graph, b); err != nil {
		return nil, err
	}
	return doc, nil
}

// Measurer returns a function giving the rendered byte length of a
// forest and graph under t and opts.
func Measurer(t *theme.Theme, opts Options) func(*hierarchy.Forest, *callgraph.Graph) int {
	dir, err := direction(opts.Direction)
	if err != nil {
		dir = Directions[0]
	}
	return func(f *hierarchy.Forest, g *callgraph.Graph) int {
		doc, _ := build(t.Assign(f, g), dir, opts.Revision)
		return doc.Len()
	}
}

// ValidateDirection returns ErrInvalidDirection unless d is empty or one
// of Directions in either case.
func ValidateDirection(d string) error {
	_, err := direction(d)
	return err
}

func direction(d string) (string, error) {
	if d == "" {
		return Directions[0], nil
	}
	up := strings.ToUpper(d)
	for _, ok := range Directions {
		if up == ok {
			return up, nil
		}
	}
	return "", fmt.Errorf("%w: %q (want one of %s)", ErrInvalidDirection, d, strings.Join(Directions, ", "))
}

// writer accumulates declarations and the synthetic identifiers.
type writer struct {
	s      *theme.Styled
	doc    *types.DiagramDocument
	nodes  map[types.SymbolID]int // Symbol -> N index
	order  []types.SymbolID       // Symbols in declaration order
	groups []*hierarchy.GroupNode // Groups in declaration order
}

func (w *writer) line(kind types.DeclKind, depth int, format string, args ...any) {
	w.doc.Declarations = append(w.doc.Declarations, types.Declaration{
		Kind:  kind,
		Depth: depth,
		Text:  fmt.Sprintf(format, args...),
	})
}

func build(s *theme.Styled, dir, revision string) (*types.DiagramDocument, map[types.SymbolID]int) {
	w := &writer{
		s:     s,
		doc:   &types.DiagramDocument{},
		nodes: make(map[types.SymbolID]int, s.Graph.NodeCount()),
	}

	if revision != "" {
		w.line(types.DeclComment, 0, "%%%% revision %s", revision)
	}
	w.line(types.DeclHeader, 0, "flowchart %s", dir)
	if s.Forest.Omitted > 0 {
		w.line(types.DeclComment, 1, "%%%% +%d more directories", s.Forest.Omitted)
	}
	if s.Forest.LooseOmitted > 0 {
		w.line(types.DeclComment, 1, "%%%% +%d more in ungrouped nodes", s.Forest.LooseOmitted)
	}

	for _, r := range s.Forest.Roots {
		w.group(r, 1)
	}
	for _, id := range s.Forest.Loose {
		w.node(id, 1)
	}
	// Graph nodes missing from the forest are declared loose.
	for _, id := range s.Graph.Nodes() {
		if _, ok := w.nodes[id]; !ok {
			w.node(id, 1)
		}
	}

	var links []string
	for i, e := range s.Graph.Edges() {
		from, okFrom := w.nodes[e.Caller]
		to, okTo := w.nodes[e.Callee]
		if !okFrom || !okTo {
			continue
		}
		w.line(types.DeclEdge, 1, "N%d --> N%d", from, to)
		w.doc.EdgeCount++
		var stroke string
		if i < len(s.Edges) {
			stroke = s.Edges[i]
		}
		links = append(links, stroke)
	}

	for i, g := range w.groups {
		if cs, ok := s.Groups[g]; ok {
			w.line(types.DeclStyle, 1, "style G%d %s", i, cs.Directive())
		}
	}
	for i, id := range w.order {
		w.line(types.DeclStyle, 1, "style N%d %s", i, s.Nodes[id].Directive())
	}
	for k, stroke := range links {
		if stroke != "" {
			w.line(types.DeclStyle, 1, "linkStyle %d stroke:%s", k, stroke)
		}
	}
	return w.doc, w.nodes
}

func (w *writer) group(n *hierarchy.GroupNode, depth int) {
	gid := len(w.groups)
	w.groups = append(w.groups, n)
	w.doc.SubgraphCount++

	label := n.Name
	if n.Omitted > 0 {
		label = fmt.Sprintf("%s (+%d more)", label, n.Omitted)
	}
	w.line(types.DeclGroupOpen, depth, "subgraph G%d[\"%s\"]", gid, Label(label))
	for _, c := range n.Children {
		w.group(c, depth+1)
	}
	for _, id := range n.Symbols {
		w.node(id, depth+1)
	}
	w.line(types.DeclGroupClose, depth, "end")
}

func (w *writer) node(id types.SymbolID, depth int) {
	if _, dup := w.nodes[id]; dup || !w.s.Graph.Has(id) {
		return
	}
	n := len(w.order)
	w.nodes[id] = n
	w.order = append(w.order, id)
	w.doc.NodeCount++

	label := Label(w.s.Graph.Index().Symbol(id).QualifiedName())
	if w.s.Graph.IsEntry(id) {
		w.line(types.DeclNode, depth, "N%d[[\"%s\"]]", n, label)
		return
	}
	w.line(types.DeclNode, depth, "N%d[\"%s\"]", n, label)
}

// Label makes s safe inside a quoted Mermaid label and trims it to
// MaxLabelLen runes.
func Label(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > MaxLabelLen {
		s = string(r[:MaxLabelLen-3]) + "..."
	}
	return strings.ReplaceAll(s, `"`, "#quot;")
}

// verify re-checks the finished document against the budget and the
// graph.
func verify(doc *types.DiagramDocument, declared map[types.SymbolID]int, g *callgraph.Graph, b types.RenderBudget) error {
	switch {
	case doc.NodeCount > b.MaxNodes:
		return &RenderInvariantViolation{Check: "max_nodes", Got: doc.NodeCount, Limit: b.MaxNodes}
	case doc.EdgeCount > b.MaxEdges:
		return &RenderInvariantViolation{Check: "max_edges", Got: doc.EdgeCount, Limit: b.MaxEdges}
	case doc.SubgraphCount > b.MaxSubgraphs:
		return &RenderInvariantViolation{Check: "max_subgraphs", Got: doc.SubgraphCount, Limit: b.MaxSubgraphs}
	}
	for _, e := range g.Edges() {
		for _, id := range []types.SymbolID{e.Caller, e.Callee} {
			if _, ok := declared[id]; !ok {
				return &RenderInvariantViolation{
					Check:  "edge_endpoint",
					Detail: fmt.Sprintf("edge %d -> %d references undeclared symbol %d", e.Caller, e.Callee, id),
				}
			}
		}
	}
	return nil
}
