// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package types defines the data model shared by the code map packages.
package types

import (
	"errors"
	"fmt"
)

// SymbolKind identifies the category of a code symbol.
type SymbolKind int

const (
	Function SymbolKind = iota // Free function
	Method                     // Function bound to a class
	Class                      // Class, struct or type declaration
	Module                     // Module-level code (script body, package init)
)

// String returns the lower-case tag name of the kind.
func (k SymbolKind) String() string {
	switch k {
	case Function:
		return "function"
	case Method:
		return "method"
	case Class:
		return "class"
	case Module:
		return "module"
	default:
		return "unknown"
	}
}

// Callable reports whether symbols of this kind become call graph nodes.
func (k SymbolKind) Callable() bool {
	return k == Function || k == Method || k == Module
}

// ParseSymbolKind converts a tag kind name into a SymbolKind.
func ParseSymbolKind(s string) (SymbolKind, bool) {
	switch s {
	case "function":
		return Function, true
	case "method":
		return Method, true
	case "class":
		return Class, true
	case "module":
		return Module, true
	default:
		return 0, false
	}
}

// SymbolID is an index into the symbol arena of a single run.
type SymbolID int

// NoSymbol marks an absent symbol reference.
const NoSymbol SymbolID = -1

// RawTag is one record produced by the external tagger.
type RawTag struct {
	Name        string       `yaml:"name" json:"name" validate:"required"`
	Kind        string       `yaml:"kind" json:"kind" validate:"required,oneof=function method class module"`
	File        string       `yaml:"file" json:"file" validate:"required"`
	LineStart   int          `yaml:"line_start" json:"line_start" validate:"gte=0"`
	LineEnd     int          `yaml:"line_end" json:"line_end" validate:"gte=0"`
	ParentClass string       `yaml:"parent_class,omitempty" json:"parent_class,omitempty"`
	Entry       bool         `yaml:"entry,omitempty" json:"entry,omitempty"` // Caller-designated entry point
	Calls       []RawCallRef `yaml:"calls,omitempty" json:"calls,omitempty"` // Call sites inside this symbol
}

// RawCallRef is a call site nested under the tag that contains it.
type RawCallRef struct {
	Name string `yaml:"name" json:"name"`
	Line int    `yaml:"line" json:"line"`
}

// RawCallSite is a textual reference from a caller symbol to a callee name.
// Caller is the position of the calling tag in the RawTag slice of the same run.
type RawCallSite struct {
	Caller     int    `yaml:"caller" json:"caller"`
	CalleeName string `yaml:"callee" json:"callee"`
	Line       int    `yaml:"line" json:"line"`
}

// Symbol is a named code entity with its location. Symbols are immutable
// once the index that owns them is built.
type Symbol struct {
	ID        SymbolID
	Name      string
	Kind      SymbolKind
	File      string // Slash-separated, cleaned file path
	Dir       string // Directory of File ("." for root files)
	StartLine int
	EndLine   int
	Class     string   // Enclosing class name (empty when none)
	ClassID   SymbolID // Enclosing class symbol, NoSymbol when unknown
	FileID    int      // Index into the owning index's file table
	Entry     bool     // Flagged as an entry point by the tagger
}

// QualifiedName returns Class.Name for members and Name otherwise.
func (s Symbol) QualifiedName() string {
	if s.Class == "" {
		return s.Name
	}
	return s.Class + "." + s.Name
}

// CallEdge is a directed call relation between two symbols.
type CallEdge struct {
	Caller SymbolID
	Callee SymbolID
	Line   int // Line of the (first) call site
	Sites  int // Number of call sites collapsed into this edge
}

// ErrMalformedTag is the sentinel matched by MalformedTagError.
var ErrMalformedTag = errors.New("malformed tag")

// MalformedTagError describes a tag that failed boundary validation.
type MalformedTagError struct {
	Position int    // Index of the tag in the input slice
	Name     string // Tag name, possibly empty
	Reason   string
}

func (e *MalformedTagError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("tag %d: %s", e.Position, e.Reason)
	}
	return fmt.Sprintf("tag %d (%s): %s", e.Position, e.Name, e.Reason)
}

// Unwrap allows errors.Is(err, ErrMalformedTag).
func (e *MalformedTagError) Unwrap() error {
	return ErrMalformedTag
}
