// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package hierarchy groups call graph nodes into a directory, file and
// class forest used as diagram subgraphs.
package hierarchy

import (
	"sort"

	"github.com/petar-djukic/go-codemap/internal/index"
	"github.com/petar-djukic/go-codemap/pkg/types"
)

// Kind identifies the level of a group.
type Kind int

const (
	KindDirectory Kind = iota
	KindFile
	KindClass
)

func (k Kind) String() string {
	switch k {
	case KindDirectory:
		return "directory"
	case KindFile:
		return "file"
	case KindClass:
		return "class"
	}
	return "unknown"
}

// GroupNode is one container in the forest. Children come before
// Symbols when rendered.
type GroupNode struct {
	Kind     Kind
	Name     string // Display name, relative to the parent group
	Path     string // Directory path, file path, or file#class
	Children []*GroupNode
	Symbols  []types.SymbolID
	Omitted  int // Children or members cut by a breadth cap
	Depth    int // Nesting level; roots are 0
}

// Members returns the number of direct children and symbols.
func (n *GroupNode) Members() int { return len(n.Children) + len(n.Symbols) }

// Forest is the grouping of a graph's nodes. Root files (directory ".")
// appear directly in Roots after the root directories.
type Forest struct {
	Roots        []*GroupNode
	Loose        []types.SymbolID // Nodes rendered outside any group
	Omitted      int              // Root directories cut by the folder cap
	LooseOmitted int              // Omitted counts of root groups dissolved into Loose
	Dropped      []types.SymbolID // Symbols removed with omitted groups, ascending
}

// Walk visits every group in pre-order. Returning false from visit skips
// the group's children.
func (f *Forest) Walk(visit func(n *GroupNode, parent *GroupNode) bool) {
	var rec func(n, parent *GroupNode)
	rec = func(n, parent *GroupNode) {
		if !visit(n, parent) {
			return
		}
		for _, c := range n.Children {
			rec(c, n)
		}
	}
	for _, r := range f.Roots {
		rec(r, nil)
	}
}

// GroupCount returns the number of groups in the forest.
func (f *Forest) GroupCount() int {
	n := 0
	f.Walk(func(*GroupNode, *GroupNode) bool { n++; return true })
	return n
}

// Symbols returns every grouped and loose symbol in ascending id order.
func (f *Forest) Symbols() []types.SymbolID {
	var out []types.SymbolID
	f.Walk(func(n *GroupNode, _ *GroupNode) bool {
		out = append(out, n.Symbols...)
		return true
	})
	out = append(out, f.Loose...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Clone returns a deep copy of the forest.
func (f *Forest) Clone() *Forest {
	c := &Forest{
		Loose:        append([]types.SymbolID(nil), f.Loose...),
		Omitted:      f.Omitted,
		LooseOmitted: f.LooseOmitted,
		Dropped:      append([]types.SymbolID(nil), f.Dropped...),
	}
	for _, r := range f.Roots {
		c.Roots = append(c.Roots, cloneNode(r))
	}
	return c
}

func cloneNode(n *GroupNode) *GroupNode {
	c := *n
	c.Symbols = append([]types.SymbolID(nil), n.Symbols...)
	c.Children = nil
	for _, ch := range n.Children {
		c.Children = append(c.Children, cloneNode(ch))
	}
	return &c
}

// Without returns a copy of the forest with the given symbols removed.
// Groups left with no members disappear.
func (f *Forest) Without(ids []types.SymbolID) *Forest {
	drop := make(map[types.SymbolID]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	keep := func(in []types.SymbolID) []types.SymbolID {
		var out []types.SymbolID
		for _, id := range in {
			if !drop[id] {
				out = append(out, id)
			}
		}
		return out
	}

	c := f.Clone()
	c.Loose = keep(c.Loose)
	var prune func(nodes []*GroupNode) []*GroupNode
	prune = func(nodes []*GroupNode) []*GroupNode {
		var out []*GroupNode
		for _, n := range nodes {
			n.Symbols = keep(n.Symbols)
			n.Children = prune(n.Children)
			if n.Members() > 0 {
				out = append(out, n)
			}
		}
		return out
	}
	c.Roots = prune(c.Roots)
	return c
}

// CollapseDeepest merges the deepest group into its parent, or into
// Loose when it is a root. Ties go to the group with the fewest members,
// then the last in pre-order. It reports false when the forest has no
// groups.
func (f *Forest) CollapseDeepest(idx *index.Index) bool {
	var target, targetParent *GroupNode
	f.Walk(func(n, parent *GroupNode) bool {
		switch {
		case target == nil,
			n.Depth > target.Depth,
			n.Depth == target.Depth && n.Members() <= target.Members():
			target, targetParent = n, parent
		}
		return true
	})
	if target == nil {
		return false
	}

	if targetParent == nil {
		f.Roots = removeChild(f.Roots, target)
		for _, c := range target.Children {
			shiftDepth(c, -1)
		}
		f.Roots = append(f.Roots, target.Children...)
		f.Loose = SortSymbols(idx, append(f.Loose, target.Symbols...))
		f.LooseOmitted += target.Omitted
		return true
	}

	targetParent.Children = removeChild(targetParent.Children, target)
	for _, c := range target.Children {
		shiftDepth(c, -1)
	}
	targetParent.Children = append(targetParent.Children, target.Children...)
	targetParent.Symbols = SortSymbols(idx, append(targetParent.Symbols, target.Symbols...))
	targetParent.Omitted += target.Omitted
	return true
}

func removeChild(nodes []*GroupNode, target *GroupNode) []*GroupNode {
	out := nodes[:0:0]
	for _, n := range nodes {
		if n != target {
			out = append(out, n)
		}
	}
	return out
}

func shiftDepth(n *GroupNode, delta int) {
	n.Depth += delta
	for _, c := range n.Children {
		shiftDepth(c, delta)
	}
}

// SortSymbols orders ids by file, start line, name, then id.
func SortSymbols(idx *index.Index, ids []types.SymbolID) []types.SymbolID {
	sort.SliceStable(ids, func(i, j int) bool {
		a, b := idx.Symbol(ids[i]), idx.Symbol(ids[j])
		if a.File != b.File {
			return a.File < b.File
		}
		if a.StartLine != b.StartLine {
			return a.StartLine < b.StartLine
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID < b.ID
	})
	return ids
}
