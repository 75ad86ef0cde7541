// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package hierarchy

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/petar-djukic/go-codemap/internal/callgraph"
	"github.com/petar-djukic/go-codemap/internal/index"
	"github.com/petar-djukic/go-codemap/pkg/types"
)

// Config limits the shape of the forest. Zero means unlimited.
type Config struct {
	TreeDepth            int // Directory levels expanded before collapsing
	MaxFolders           int // Child directories per directory, and root directories
	MaxFunctionsPerClass int // Members per class group
}

// dirTrie is the raw directory structure before caps are applied.
type dirTrie struct {
	path  string
	name  string
	dirs  map[string]*dirTrie
	files map[string][]types.SymbolID // Keyed by file path
}

func newTrie(p, name string) *dirTrie {
	return &dirTrie{path: p, name: name, dirs: map[string]*dirTrie{}, files: map[string][]types.SymbolID{}}
}

// built is a finished subtree plus what was cut from it.
type built struct {
	node    *GroupNode
	score   int
	symbols []types.SymbolID
	dropped []types.SymbolID
	diags   types.Diagnostics
}

// Build groups the nodes of g. Top-level directories are grouped in
// parallel; the result does not depend on scheduling.
func Build(ctx context.Context, g *callgraph.Graph, cfg Config) (*Forest, types.Diagnostics, error) {
	idx := g.Index()
	root := newTrie(".", ".")
	for _, id := range g.Nodes() {
		sym := idx.Symbol(id)
		kept := collapseDir(sym.Dir, cfg.TreeDepth)
		t := root
		if kept != "." {
			segs := strings.Split(kept, "/")
			for i, seg := range segs {
				child, ok := t.dirs[seg]
				if !ok {
					child = newTrie(strings.Join(segs[:i+1], "/"), seg)
					t.dirs[seg] = child
				}
				t = child
			}
		}
		t.files[sym.File] = append(t.files[sym.File], id)
	}

	b := &builder{idx: idx, g: g, cfg: cfg}

	names := sortedKeys(root.dirs)
	results := make([]built, len(names))
	eg, egCtx := errgroup.WithContext(ctx)
	for i, name := range names {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			results[i] = b.directory(root.dirs[name], 0)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, nil, err
	}

	forest := &Forest{}
	var diags types.Diagnostics
	var dropped []types.SymbolID

	kept, cut := capByScore(results, cfg.MaxFolders, func(r built) string { return r.node.Name })
	for _, r := range kept {
		forest.Roots = append(forest.Roots, r.node)
		dropped = append(dropped, r.dropped...)
		diags = append(diags, r.diags...)
	}
	for _, r := range cut {
		dropped = append(dropped, r.symbols...)
	}
	if len(cut) > 0 {
		forest.Omitted = len(cut)
		diags = append(diags, overflow("root", ".", len(kept), len(results), "directories"))
	}

	for _, file := range sortedKeys(root.files) {
		r := b.file(file, file, root.files[file], 0)
		forest.Roots = append(forest.Roots, r.node)
		dropped = append(dropped, r.dropped...)
		diags = append(diags, r.diags...)
	}

	sort.Slice(dropped, func(i, j int) bool { return dropped[i] < dropped[j] })
	forest.Dropped = dropped
	return forest, diags, nil
}

// collapseDir keeps the first depth segments of dir.
func collapseDir(dir string, depth int) string {
	dir = strings.Trim(dir, "/")
	if dir == "" || dir == "." {
		return "."
	}
	if depth <= 0 {
		return dir
	}
	segs := strings.Split(dir, "/")
	if len(segs) <= depth {
		return dir
	}
	return strings.Join(segs[:depth], "/")
}

type builder struct {
	idx *index.Index
	g   *callgraph.Graph
	cfg Config
}

func (b *builder) directory(t *dirTrie, depth int) built {
	n := &GroupNode{Kind: KindDirectory, Name: t.name, Path: t.path, Depth: depth}
	var out built

	subs := make([]built, 0, len(t.dirs))
	for _, name := range sortedKeys(t.dirs) {
		subs = append(subs, b.directory(t.dirs[name], depth+1))
	}
	kept, cut := capByScore(subs, b.cfg.MaxFolders, func(r built) string { return r.node.Name })
	for _, r := range kept {
		n.Children = append(n.Children, r.node)
		out.merge(r)
	}
	for _, r := range cut {
		out.symbols = append(out.symbols, r.symbols...)
		out.dropped = append(out.dropped, r.symbols...)
	}
	if len(cut) > 0 {
		n.Omitted = len(cut)
		out.diags = append(out.diags, overflow("directory", t.path, len(kept), len(subs), "subdirectories"))
	}

	for _, file := range sortedKeys(t.files) {
		r := b.file(file, relativeTo(t.path, file), t.files[file], depth+1)
		n.Children = append(n.Children, r.node)
		out.merge(r)
	}

	out.node = n
	return out
}

func (b *builder) file(file, name string, ids []types.SymbolID, depth int) built {
	n := &GroupNode{Kind: KindFile, Name: name, Path: file, Depth: depth}
	var out built

	classes := map[string][]types.SymbolID{}
	for _, id := range ids {
		if cls := b.idx.Symbol(id).Class; cls != "" {
			classes[cls] = append(classes[cls], id)
			continue
		}
		n.Symbols = append(n.Symbols, id)
		out.symbols = append(out.symbols, id)
		out.score += b.g.Connectivity(id)
	}
	n.Symbols = SortSymbols(b.idx, n.Symbols)

	for _, cls := range sortedKeys(classes) {
		r := b.class(file, cls, classes[cls], depth+1)
		n.Children = append(n.Children, r.node)
		out.merge(r)
	}
	out.node = n
	return out
}

func (b *builder) class(file, cls string, ids []types.SymbolID, depth int) built {
	n := &GroupNode{Kind: KindClass, Name: cls, Path: file + "#" + cls, Depth: depth}
	out := built{node: n}

	members := make([]built, len(ids))
	for i, id := range ids {
		members[i] = built{symbols: []types.SymbolID{id}, score: b.g.Connectivity(id)}
	}
	kept, cut := capByScore(members, b.cfg.MaxFunctionsPerClass, func(r built) string {
		return b.idx.Symbol(r.symbols[0]).Name
	})
	for _, r := range kept {
		n.Symbols = append(n.Symbols, r.symbols[0])
		out.symbols = append(out.symbols, r.symbols[0])
		out.score += r.score
	}
	for _, r := range cut {
		out.symbols = append(out.symbols, r.symbols[0])
		out.dropped = append(out.dropped, r.symbols[0])
	}
	n.Symbols = SortSymbols(b.idx, n.Symbols)
	if len(cut) > 0 {
		n.Omitted = len(cut)
		out.diags = append(out.diags, overflow("class", n.Path, len(kept), len(members), "members"))
	}
	return out
}

// merge folds a kept child result into out.
func (out *built) merge(r built) {
	out.score += r.score
	out.symbols = append(out.symbols, r.symbols...)
	out.dropped = append(out.dropped, r.dropped...)
	out.diags = append(out.diags, r.diags...)
}

// capByScore keeps the limit highest-scoring items; ties keep the
// alphabetically first name. Kept items stay in their input order.
func capByScore(items []built, limit int, name func(built) string) (kept, cut []built) {
	if limit <= 0 || len(items) <= limit {
		return items, nil
	}
	order := make([]int, len(items))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ia, ib := items[order[a]], items[order[b]]
		if ia.score != ib.score {
			return ia.score > ib.score
		}
		return name(ia) < name(ib)
	})
	keep := make([]bool, len(items))
	for _, i := range order[:limit] {
		keep[i] = true
	}
	for i, it := range items {
		if keep[i] {
			kept = append(kept, it)
		} else {
			cut = append(cut, it)
		}
	}
	return kept, cut
}

func overflow(kind, where string, kept, total int, what string) types.Diagnostic {
	return types.Diagnostic{
		Kind:    types.DiagGroupOverflow,
		Stage:   types.StageGroup,
		Message: fmt.Sprintf("%s %s: kept %d of %d %s", kind, where, kept, total, what),
		Count:   total - kept,
	}
}

// relativeTo labels file relative to dir.
func relativeTo(dir, file string) string {
	if dir == "." {
		return file
	}
	if rel := strings.TrimPrefix(file, dir+"/"); rel != file {
		return rel
	}
	return path.Base(file)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
