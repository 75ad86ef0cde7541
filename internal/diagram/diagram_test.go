// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package diagram

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petar-djukic/go-codemap/internal/callgraph"
	"github.com/petar-djukic/go-codemap/internal/hierarchy"
	"github.com/petar-djukic/go-codemap/internal/index"
	"github.com/petar-djukic/go-codemap/internal/theme"
	"github.com/petar-djukic/go-codemap/pkg/types"
)

func roomy() types.RenderBudget {
	return types.RenderBudget{MaxNodes: 10, MaxEdges: 10, MaxSubgraphs: 10, MaxTextSize: 100000}
}

func monoTheme(t *testing.T) *theme.Theme {
	t.Helper()
	th, err := theme.NewRegistry().Get("mono")
	require.NoError(t, err)
	return th
}

func styledFixture(t *testing.T, cfg hierarchy.Config) *theme.Styled {
	t.Helper()
	idx, diags := index.Build([]types.RawTag{
		{Name: "A", Kind: "function", File: "f1.go", LineStart: 1},
		{Name: "B", Kind: "function", File: "f1.go", LineStart: 10},
		{Name: "C", Kind: "function", File: "f2.go", LineStart: 1},
		{Name: "D", Kind: "function", File: "f2.go", LineStart: 10},
		{Name: "E", Kind: "function", File: "f2.go", LineStart: 20},
	})
	require.Empty(t, diags)
	g, _ := callgraph.Build(idx, []types.CallEdge{
		{Caller: 0, Callee: 1}, {Caller: 1, Callee: 2}, {Caller: 2, Callee: 0}, {Caller: 3, Callee: 4},
	}, callgraph.Options{})
	f, _, err := hierarchy.Build(context.Background(), g, cfg)
	require.NoError(t, err)
	return monoTheme(t).Assign(f, g)
}

func TestRender_Golden(t *testing.T) {
	doc, err := Render(styledFixture(t, hierarchy.Config{}), roomy(), Options{})
	require.NoError(t, err)

	node := "fill:#FFFFFF,stroke:#616161,color:#000000,stroke-width:1px"
	file := "fill:#FAFAFA,stroke:#9E9E9E,color:#000000,stroke-width:1px"
	want := strings.Join([]string{
		"flowchart TD",
		`  subgraph G0["f1.go"]`,
		`    N0["A"]`,
		`    N1["B"]`,
		"  end",
		`  subgraph G1["f2.go"]`,
		`    N2["C"]`,
		`    N3[["D"]]`,
		`    N4["E"]`,
		"  end",
		"  N0 --> N1",
		"  N1 --> N2",
		"  N2 --> N0",
		"  N3 --> N4",
		"  style G0 " + file,
		"  style G1 " + file,
		"  style N0 " + node,
		"  style N1 " + node,
		"  style N2 " + node,
		"  style N3 fill:#000000,stroke:#000000,color:#FFFFFF,stroke-width:3px",
		"  style N4 " + node,
		"  linkStyle 0 stroke:#616161",
		"  linkStyle 1 stroke:#616161",
		"  linkStyle 2 stroke:#616161",
		"  linkStyle 3 stroke:#616161",
	}, "\n") + "\n"

	assert.Equal(t, want, doc.String())
	assert.Equal(t, len(want), doc.Len())
	assert.Equal(t, 5, doc.NodeCount)
	assert.Equal(t, 4, doc.EdgeCount)
	assert.Equal(t, 2, doc.SubgraphCount)
}

func TestRender_GroupsDeclaredBeforeNodes(t *testing.T) {
	doc, err := Render(styledFixture(t, hierarchy.Config{}), roomy(), Options{})
	require.NoError(t, err)

	open := 0
	for _, d := range doc.Declarations {
		switch d.Kind {
		case types.DeclGroupOpen:
			open++
		case types.DeclGroupClose:
			open--
		case types.DeclNode:
			if d.Depth > 1 {
				assert.Positive(t, open, d.Text)
			}
		}
	}
	assert.Zero(t, open)
}

func TestRender_HeaderOptions(t *testing.T) {
	doc, err := Render(styledFixture(t, hierarchy.Config{}), roomy(), Options{Direction: "lr", Revision: "abc123"})
	require.NoError(t, err)

	lines := strings.Split(doc.String(), "\n")
	assert.Equal(t, "%% revision abc123", lines[0])
	assert.Equal(t, "flowchart LR", lines[1])
}

func TestRender_InvalidDirection(t *testing.T) {
	_, err := Render(styledFixture(t, hierarchy.Config{}), roomy(), Options{Direction: "up"})
	assert.ErrorIs(t, err, ErrInvalidDirection)
}

func TestRender_InvariantViolation(t *testing.T) {
	tests := []struct {
		name   string
		budget types.RenderBudget
		check  string
	}{
		{"nodes", types.RenderBudget{MaxNodes: 4, MaxEdges: 10, MaxSubgraphs: 10, MaxTextSize: 1}, "max_nodes"},
		{"edges", types.RenderBudget{MaxNodes: 10, MaxEdges: 3, MaxSubgraphs: 10, MaxTextSize: 1}, "max_edges"},
		{"subgraphs", types.RenderBudget{MaxNodes: 10, MaxEdges: 10, MaxSubgraphs: 1, MaxTextSize: 1}, "max_subgraphs"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Render(styledFixture(t, hierarchy.Config{}), tt.budget, Options{})
			require.ErrorIs(t, err, ErrRenderInvariant)
			var v *RenderInvariantViolation
			require.ErrorAs(t, err, &v)
			assert.Equal(t, tt.check, v.Check)
		})
	}
}

func TestRender_OmittedLabel(t *testing.T) {
	idx, _ := index.Build([]types.RawTag{
		{Name: "m1", Kind: "method", File: "s.py", ParentClass: "S"},
		{Name: "m2", Kind: "method", File: "s.py", ParentClass: "S"},
	})
	g, _ := callgraph.Build(idx, nil, callgraph.Options{})
	f, _, err := hierarchy.Build(context.Background(), g, hierarchy.Config{MaxFunctionsPerClass: 1})
	require.NoError(t, err)
	g = g.Without(f.Dropped, nil)

	doc, err := Render(monoTheme(t).Assign(f, g), roomy(), Options{})
	require.NoError(t, err)
	assert.Contains(t, doc.String(), `subgraph G1["S (+1 more)"]`)
	assert.Equal(t, 1, doc.NodeCount)
}

func TestRender_CollapsedRootKeepsOmitted(t *testing.T) {
	idx, _ := index.Build([]types.RawTag{
		{Name: "m1", Kind: "method", File: "s.py", ParentClass: "S"},
		{Name: "m2", Kind: "method", File: "s.py", ParentClass: "S"},
	})
	g, _ := callgraph.Build(idx, nil, callgraph.Options{})
	f, _, err := hierarchy.Build(context.Background(), g, hierarchy.Config{MaxFunctionsPerClass: 1})
	require.NoError(t, err)
	g = g.Without(f.Dropped, nil)
	for f.CollapseDeepest(idx) {
	}

	doc, err := Render(monoTheme(t).Assign(f, g), roomy(), Options{})
	require.NoError(t, err)
	assert.Contains(t, doc.String(), "%% +1 more in ungrouped nodes")
	assert.Zero(t, doc.SubgraphCount)
}

func TestMeasurer_MatchesRender(t *testing.T) {
	s := styledFixture(t, hierarchy.Config{})
	opts := Options{Revision: "deadbeef"}
	doc, err := Render(s, roomy(), opts)
	require.NoError(t, err)

	measure := Measurer(monoTheme(t), opts)
	assert.Equal(t, doc.Len(), measure(s.Forest, s.Graph))
}

func TestLabel(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Store.Save", "Store.Save"},
		{`say "hi"`, "say #quot;hi#quot;"},
		{"multi\nline\ttext", "multi line text"},
		{strings.Repeat("x", 61), strings.Repeat("x", 57) + "..."},
		{strings.Repeat("é", 60), strings.Repeat("é", 60)},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Label(tt.in))
	}
}
