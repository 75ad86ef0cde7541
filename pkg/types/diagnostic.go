// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package types

import "fmt"

// DiagnosticKind classifies a non-fatal condition found during a run.
type DiagnosticKind string

const (
	DiagMalformedTag   DiagnosticKind = "malformed_tag"
	DiagDuplicateTag   DiagnosticKind = "duplicate_tag"
	DiagUnresolvedCall DiagnosticKind = "unresolved_call"
	DiagAmbiguousCall  DiagnosticKind = "ambiguous_call"
	DiagInvalidCaller  DiagnosticKind = "invalid_caller"
	DiagSyntheticEntry DiagnosticKind = "synthetic_entry"
	DiagGroupOverflow  DiagnosticKind = "group_overflow"
	DiagBudgetExceeded DiagnosticKind = "budget_exceeded"
)

// Stage names the pipeline stage that produced a diagnostic or checkpoint.
type Stage string

const (
	StageIndex   Stage = "index"
	StageResolve Stage = "resolve"
	StageGraph   Stage = "graph"
	StageReach   Stage = "reach"
	StageGroup   Stage = "group"
	StageBudget  Stage = "budget"
	StageTheme   Stage = "theme"
	StageRender  Stage = "render"
)

// Diagnostic is a non-fatal warning returned alongside the document.
type Diagnostic struct {
	Kind    DiagnosticKind
	Stage   Stage
	Message string
	Count   int // Number of occurrences folded into this diagnostic
}

func (d Diagnostic) String() string {
	if d.Count > 1 {
		return fmt.Sprintf("[%s/%s] %s (x%d)", d.Stage, d.Kind, d.Message, d.Count)
	}
	return fmt.Sprintf("[%s/%s] %s", d.Stage, d.Kind, d.Message)
}

// Diagnostics is the accumulated warning list of a run.
type Diagnostics []Diagnostic

// Has reports whether any diagnostic of the given kind is present.
func (ds Diagnostics) Has(kind DiagnosticKind) bool {
	for _, d := range ds {
		if d.Kind == kind {
			return true
		}
	}
	return false
}

// OfKind returns the diagnostics of the given kind in order.
func (ds Diagnostics) OfKind(kind DiagnosticKind) Diagnostics {
	var out Diagnostics
	for _, d := range ds {
		if d.Kind == kind {
			out = append(out, d)
		}
	}
	return out
}
