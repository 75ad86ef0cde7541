// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package resolve turns textual call sites into call edges between
// indexed symbols.
package resolve

import (
	"fmt"
	"sort"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/petar-djukic/go-codemap/internal/index"
	"github.com/petar-djukic/go-codemap/pkg/types"
)

const (
	defaultCacheSize   = 4096
	maxUnresolvedShown = 5
)

// Config configures a Resolver.
type Config struct {
	CacheSize int // Memo entries for (file, class, name) lookups (default 4096)
}

// Stats summarizes one resolution pass.
type Stats struct {
	Sites         int
	Resolved      int
	Unresolved    int
	Ambiguous     int
	InvalidCaller int
	ByRule        map[Rule]int
}

// memoKey captures everything Pick looks at besides the candidate set.
type memoKey struct {
	file  string
	dir   string
	class string
	name  string
}

// Resolver resolves call sites against an index. It never fails: sites
// that cannot be resolved are dropped and counted.
type Resolver struct {
	idx  *index.Index
	memo *lru.Cache[memoKey, Choice]
}

// New creates a Resolver for idx.
func New(idx *index.Index, cfg Config) *Resolver {
	size := cfg.CacheSize
	if size <= 0 {
		size = defaultCacheSize
	}
	memo, err := lru.New[memoKey, Choice](size)
	if err != nil {
		panic(err) // lru.New only fails for non-positive sizes
	}
	return &Resolver{idx: idx, memo: memo}
}

// Resolve returns one edge per resolvable call site, in input order.
// Duplicate pairs are kept; the graph builder collapses them.
func (r *Resolver) Resolve(sites []types.RawCallSite) ([]types.CallEdge, Stats, types.Diagnostics) {
	stats := Stats{Sites: len(sites), ByRule: make(map[Rule]int)}
	edges := make([]types.CallEdge, 0, len(sites))
	unresolvedNames := make(map[string]int)

	for _, site := range sites {
		callerID, ok := r.idx.IDForTag(site.Caller)
		if !ok || !r.idx.Symbol(callerID).Kind.Callable() {
			stats.InvalidCaller++
			continue
		}
		caller := r.idx.Symbol(callerID)
		name := strings.TrimSpace(site.CalleeName)

		choice := r.choose(caller, name)
		stats.ByRule[choice.Rule]++
		if choice.Rule == RuleUnresolved {
			stats.Unresolved++
			if name != "" {
				unresolvedNames[name]++
			}
			continue
		}
		if choice.Ambiguous {
			stats.Ambiguous++
		}
		stats.Resolved++
		edges = append(edges, types.CallEdge{
			Caller: callerID,
			Callee: choice.Callee,
			Line:   site.Line,
			Sites:  1,
		})
	}

	return edges, stats, diagnose(stats, unresolvedNames)
}

// choose memoizes Pick per (caller location, callee name).
func (r *Resolver) choose(caller types.Symbol, name string) Choice {
	key := memoKey{file: caller.File, dir: caller.Dir, class: caller.Class, name: name}
	if c, ok := r.memo.Get(key); ok {
		return c
	}
	c := Pick(caller, r.candidates(name))
	r.memo.Add(key, c)
	return c
}

// candidates returns the callable callee candidates for a name.
func (r *Resolver) candidates(name string) []types.Symbol {
	if name == "" {
		return nil
	}
	var out []types.Symbol
	for _, id := range r.idx.ByName(name) {
		s := r.idx.Symbol(id)
		if s.Kind == types.Function || s.Kind == types.Method {
			out = append(out, s)
		}
	}
	return out
}

// diagnose folds resolution counts into aggregate diagnostics.
func diagnose(stats Stats, unresolvedNames map[string]int) types.Diagnostics {
	var diags types.Diagnostics
	if stats.Unresolved > 0 {
		msg := fmt.Sprintf("%d call sites dropped without a matching symbol", stats.Unresolved)
		if len(unresolvedNames) > 0 {
			msg += " (" + sampleNames(unresolvedNames) + ")"
		}
		diags = append(diags, types.Diagnostic{
			Kind:    types.DiagUnresolvedCall,
			Stage:   types.StageResolve,
			Message: msg,
			Count:   stats.Unresolved,
		})
	}
	if stats.Ambiguous > 0 {
		diags = append(diags, types.Diagnostic{
			Kind:    types.DiagAmbiguousCall,
			Stage:   types.StageResolve,
			Message: fmt.Sprintf("%d call sites resolved by tie-break among several candidates", stats.Ambiguous),
			Count:   stats.Ambiguous,
		})
	}
	if stats.InvalidCaller > 0 {
		diags = append(diags, types.Diagnostic{
			Kind:    types.DiagInvalidCaller,
			Stage:   types.StageResolve,
			Message: fmt.Sprintf("%d call sites reference a missing or non-callable caller", stats.InvalidCaller),
			Count:   stats.InvalidCaller,
		})
	}
	return diags
}

// sampleNames lists the most frequent unresolved names, most frequent first.
func sampleNames(counts map[string]int) string {
	names := make([]string, 0, len(counts))
	for n := range counts {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool {
		if counts[names[i]] != counts[names[j]] {
			return counts[names[i]] > counts[names[j]]
		}
		return names[i] < names[j]
	})
	if len(names) > maxUnresolvedShown {
		return strings.Join(names[:maxUnresolvedShown], ", ") + ", ..."
	}
	return strings.Join(names, ", ")
}
