// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package resolve

import (
	"sort"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/petar-djukic/go-codemap/pkg/types"
)

// Rule identifies which resolution rule selected a callee.
type Rule int

const (
	RuleSameFile     Rule = iota // Candidate declared in the caller's file
	RuleSameClass                // Candidate is a member of the caller's class
	RuleUniqueGlobal             // Only one candidate exists
	RuleNearestFile              // Tie-break by file proximity
	RuleUnresolved               // No candidate
)

func (r Rule) String() string {
	switch r {
	case RuleSameFile:
		return "same_file"
	case RuleSameClass:
		return "same_class"
	case RuleUniqueGlobal:
		return "unique_global"
	case RuleNearestFile:
		return "nearest_file"
	case RuleUnresolved:
		return "unresolved"
	default:
		return "unknown"
	}
}

// Choice is the outcome of picking a callee among candidates.
type Choice struct {
	Callee    types.SymbolID
	Rule      Rule
	Ambiguous bool // More than one candidate survived the deciding rule
}

// Pick selects the callee for a call made from caller among candidates.
// Candidates must already be filtered to callable symbols with the callee
// name. The result is deterministic for a given input set.
func Pick(caller types.Symbol, candidates []types.Symbol) Choice {
	if len(candidates) == 0 {
		return Choice{Callee: types.NoSymbol, Rule: RuleUnresolved}
	}

	if same := filter(candidates, func(c types.Symbol) bool { return c.File == caller.File }); len(same) > 0 {
		return narrow(caller, same, RuleSameFile)
	}

	if caller.Class != "" {
		if same := filter(candidates, func(c types.Symbol) bool {
			return c.Class == caller.Class && c.Dir == caller.Dir
		}); len(same) > 0 {
			return narrow(caller, same, RuleSameClass)
		}
	}

	if len(candidates) == 1 {
		return Choice{Callee: candidates[0].ID, Rule: RuleUniqueGlobal}
	}

	ranked := make([]types.Symbol, len(candidates))
	copy(ranked, candidates)
	sort.SliceStable(ranked, func(i, j int) bool {
		return closer(caller, ranked[i], ranked[j])
	})
	return Choice{Callee: ranked[0].ID, Rule: RuleNearestFile, Ambiguous: true}
}

// narrow picks within a rule's candidate set: a unique same-class member
// wins, otherwise the earliest declaration.
func narrow(caller types.Symbol, set []types.Symbol, rule Rule) Choice {
	if len(set) == 1 {
		return Choice{Callee: set[0].ID, Rule: rule}
	}
	if caller.Class != "" {
		members := filter(set, func(c types.Symbol) bool { return c.Class == caller.Class })
		if len(members) == 1 {
			return Choice{Callee: members[0].ID, Rule: rule}
		}
		if len(members) > 1 {
			set = members
		}
	}
	best := set[0]
	for _, c := range set[1:] {
		if c.StartLine < best.StartLine || (c.StartLine == best.StartLine && c.ID < best.ID) {
			best = c
		}
	}
	return Choice{Callee: best.ID, Rule: rule, Ambiguous: true}
}

// closer orders candidates by proximity to the caller's file.
func closer(caller, a, b types.Symbol) bool {
	aSame, bSame := a.Dir == caller.Dir, b.Dir == caller.Dir
	if aSame != bSame {
		return aSame
	}
	aShared, bShared := sharedSegments(caller.Dir, a.Dir), sharedSegments(caller.Dir, b.Dir)
	if aShared != bShared {
		return aShared > bShared
	}
	aSim, bSim := dirSimilarity(caller.Dir, a.Dir), dirSimilarity(caller.Dir, b.Dir)
	if aSim != bSim {
		return aSim > bSim
	}
	if a.File != b.File {
		return a.File < b.File
	}
	if a.StartLine != b.StartLine {
		return a.StartLine < b.StartLine
	}
	return a.ID < b.ID
}

// sharedSegments counts the leading path segments two directories share.
func sharedSegments(a, b string) int {
	if a == "." || b == "." {
		return 0
	}
	as, bs := strings.Split(a, "/"), strings.Split(b, "/")
	n := 0
	for n < len(as) && n < len(bs) && as[n] == bs[n] {
		n++
	}
	return n
}

// dirSimilarity scores two directories by segment edit distance: 1 when
// equal, 0 when no segment lines up. Segments are mapped to single runes
// so the Levenshtein count is in whole path segments.
func dirSimilarity(a, b string) float64 {
	if a == b {
		return 1
	}
	as, bs := segments(a), segments(b)
	if len(as) == 0 || len(bs) == 0 {
		return 0
	}
	dmp := diffmatchpatch.New()
	ca, cb, _ := dmp.DiffLinesToChars(strings.Join(as, "\n")+"\n", strings.Join(bs, "\n")+"\n")
	edits := dmp.DiffLevenshtein(dmp.DiffMain(ca, cb, false))
	return 1 - float64(edits)/float64(max(len(as), len(bs)))
}

func segments(dir string) []string {
	if dir == "" || dir == "." {
		return nil
	}
	return strings.Split(dir, "/")
}

func filter(in []types.Symbol, keep func(types.Symbol) bool) []types.Symbol {
	var out []types.Symbol
	for _, s := range in {
		if keep(s) {
			out = append(out, s)
		}
	}
	return out
}
