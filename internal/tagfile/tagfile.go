// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package tagfile reads tagger output from YAML or JSON files.
package tagfile

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/petar-djukic/go-codemap/pkg/types"
)

// ErrInvalidTagFile is returned when a tag file cannot be decoded.
var ErrInvalidTagFile = errors.New("invalid tag file")

// document is the file layout. A file may also be a bare list of tags.
type document struct {
	Tags  []types.RawTag      `yaml:"tags"`
	Calls []types.RawCallSite `yaml:"calls"`
}

// Set is the decoded content of one or more tag files.
type Set struct {
	Tags  []types.RawTag
	Calls []types.RawCallSite // Caller is a position in Tags
}

// Load decodes one tag document. Calls nested under a tag become call
// sites whose caller is that tag; top-level calls follow them in file
// order. JSON input is accepted as YAML.
func Load(r io.Reader) (*Set, error) {
	var root yaml.Node
	if err := yaml.NewDecoder(r).Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return &Set{}, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidTagFile, err)
	}

	var doc document
	body := &root
	if root.Kind == yaml.DocumentNode && len(root.Content) == 1 {
		body = root.Content[0]
	}
	switch body.Kind {
	case yaml.SequenceNode:
		if err := body.Decode(&doc.Tags); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidTagFile, err)
		}
	case yaml.MappingNode:
		if err := body.Decode(&doc); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidTagFile, err)
		}
	default:
		return nil, fmt.Errorf("%w: expected a list of tags or a mapping with tags and calls (line %d)", ErrInvalidTagFile, body.Line)
	}

	set := &Set{Tags: doc.Tags}
	for pos, tag := range doc.Tags {
		for _, c := range tag.Calls {
			set.Calls = append(set.Calls, types.RawCallSite{Caller: pos, CalleeName: c.Name, Line: c.Line})
		}
	}
	set.Calls = append(set.Calls, doc.Calls...)
	return set, nil
}

// LoadFile decodes the tag file at path.
func LoadFile(path string) (*Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening tag file: %w", err)
	}
	defer f.Close()

	set, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return set, nil
}

// LoadFiles decodes several tag files into one set. Callers are
// renumbered so they keep pointing at their own file's tags.
func LoadFiles(paths ...string) (*Set, error) {
	merged := &Set{}
	for _, path := range paths {
		set, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		merged.Merge(set)
	}
	return merged, nil
}

// Merge appends other to s, shifting other's caller positions past the
// tags already in s.
func (s *Set) Merge(other *Set) {
	offset := len(s.Tags)
	s.Tags = append(s.Tags, other.Tags...)
	for _, c := range other.Calls {
		c.Caller += offset
		s.Calls = append(s.Calls, c)
	}
}
