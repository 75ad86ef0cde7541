// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package types

import "strings"

// DeclKind identifies one line of a DiagramDocument.
type DeclKind int

const (
	DeclComment    DeclKind = iota // %% comment
	DeclHeader                     // flowchart direction
	DeclGroupOpen                  // subgraph ...
	DeclGroupClose                 // end
	DeclNode                       // node declaration
	DeclEdge                       // edge declaration
	DeclStyle                      // style / linkStyle directive
)

// Declaration is a single line of the diagram description.
type Declaration struct {
	Kind  DeclKind
	Depth int    // Nesting depth used for indentation
	Text  string // Line text without indentation
}

// DiagramDocument is the rendered, line-oriented diagram description.
// It is not modified after rendering.
type DiagramDocument struct {
	Declarations  []Declaration
	NodeCount     int
	EdgeCount     int
	SubgraphCount int
}

// String serializes the document with two-space indentation per depth.
func (d *DiagramDocument) String() string {
	var buf strings.Builder
	for _, decl := range d.Declarations {
		buf.WriteString(strings.Repeat("  ", decl.Depth))
		buf.WriteString(decl.Text)
		buf.WriteByte('\n')
	}
	return buf.String()
}

// Len returns the byte length of String().
func (d *DiagramDocument) Len() int {
	n := 0
	for _, decl := range d.Declarations {
		n += 2*decl.Depth + len(decl.Text) + 1
	}
	return n
}
