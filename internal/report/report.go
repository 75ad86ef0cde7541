// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package report formats a run's statistics and diagnostics for people.
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/petar-djukic/go-codemap/pkg/codemap"
	"github.com/petar-djukic/go-codemap/pkg/types"
)

const defaultMaxPerKind = 10

// Config configures report formatting.
type Config struct {
	MaxPerKind  int  // Diagnostics listed per kind before eliding (default 10)
	Checkpoints bool // Include per-stage timing
	Cycles      bool // List detected cycles
}

// Format produces a sectioned text report for res.
func Format(res *codemap.Result, cfg Config) string {
	maxPerKind := cfg.MaxPerKind
	if maxPerKind == 0 {
		maxPerKind = defaultMaxPerKind
	}

	var buf strings.Builder

	s := res.Stats
	buf.WriteString("## Summary\n\n")
	fmt.Fprintf(&buf, "- symbols: %d, call sites: %d (resolved %d, unresolved %d, ambiguous %d)\n",
		s.Symbols, s.CallSites, s.Resolved, s.Unresolved, s.Ambiguous)
	fmt.Fprintf(&buf, "- graph: %d nodes, %d edges, %d cycles\n", s.GraphNodes, s.GraphEdges, s.Cycles)
	fmt.Fprintf(&buf, "- diagram: %d nodes, %d edges, %d subgraphs, %d bytes\n", s.Nodes, s.Edges, s.Subgraphs, s.TextSize)
	if len(s.ByRule) > 0 {
		fmt.Fprintf(&buf, "- resolved by rule: %s\n", byRule(s.ByRule))
	}
	if s.Unreachable > 0 {
		fmt.Fprintf(&buf, "- unreachable from entry points: %d\n", s.Unreachable)
	}
	if len(res.EntryPoints) > 0 {
		fmt.Fprintf(&buf, "- entry points: %s\n", strings.Join(res.EntryPoints, ", "))
	}
	buf.WriteString("\n")

	if len(res.Diagnostics) > 0 {
		buf.WriteString("## Diagnostics\n\n")
		for _, kind := range kinds(res.Diagnostics) {
			ds := res.Diagnostics.OfKind(kind)
			for i, d := range ds {
				if i == maxPerKind {
					fmt.Fprintf(&buf, "- ... %d more %s\n", len(ds)-maxPerKind, kind)
					break
				}
				fmt.Fprintf(&buf, "- %s\n", d.String())
			}
		}
		buf.WriteString("\n")
	}

	if cfg.Cycles && len(res.Cycles) > 0 {
		buf.WriteString("## Cycles\n\n")
		for _, c := range res.Cycles {
			fmt.Fprintf(&buf, "- %s -> %s\n", strings.Join(c, " -> "), c[0])
		}
		buf.WriteString("\n")
	}

	if cfg.Checkpoints && len(res.Checkpoints) > 0 {
		buf.WriteString("## Checkpoints\n\n")
		for _, c := range res.Checkpoints {
			fmt.Fprintf(&buf, "%-8s %10s  heap %s  total %s\n", c.Stage, c.Duration, bytes(c.HeapAlloc), bytes(c.TotalAlloc))
		}
		buf.WriteString("\n")
	}

	return buf.String()
}

// byRule lists rule counts by rule name.
func byRule(counts map[string]int) string {
	rules := make([]string, 0, len(counts))
	for rule := range counts {
		rules = append(rules, rule)
	}
	sort.Strings(rules)
	parts := make([]string, len(rules))
	for i, rule := range rules {
		parts[i] = fmt.Sprintf("%s %d", rule, counts[rule])
	}
	return strings.Join(parts, ", ")
}

// kinds returns the diagnostic kinds present, in first-seen order.
func kinds(ds types.Diagnostics) []types.DiagnosticKind {
	seen := map[types.DiagnosticKind]int{}
	for i, d := range ds {
		if _, ok := seen[d.Kind]; !ok {
			seen[d.Kind] = i
		}
	}
	out := make([]types.DiagnosticKind, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return seen[out[i]] < seen[out[j]] })
	return out
}

func bytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%dB", n)
	}
	div, exp := uint64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f%ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
