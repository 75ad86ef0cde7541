// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package output writes rendered diagrams and checks committed diagrams
// for staleness.
package output

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// DefaultName is the file written inside an output directory.
const DefaultName = "codemap.mmd"

// ErrStale is returned by Check when the file differs from the document.
var ErrStale = errors.New("diagram is out of date")

// Target says where a document goes. An empty Dir means Stdout.
type Target struct {
	Dir    string
	Name   string    // File name inside Dir (default codemap.mmd)
	Stdout io.Writer // Used when Dir is empty
}

// Path returns the destination file, or "" for stdout.
func (t Target) Path() string {
	if t.Dir == "" {
		return ""
	}
	name := t.Name
	if name == "" {
		name = DefaultName
	}
	return filepath.Join(t.Dir, name)
}

// Write stores doc at the target and returns the path written ("" for
// stdout).
func (t Target) Write(doc string) (string, error) {
	path := t.Path()
	if path == "" {
		w := t.Stdout
		if w == nil {
			w = os.Stdout
		}
		if _, err := io.WriteString(w, doc); err != nil {
			return "", fmt.Errorf("writing diagram: %w", err)
		}
		return "", nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("creating output dir: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(doc), 0o644); err != nil {
		return "", fmt.Errorf("writing diagram: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return "", fmt.Errorf("replacing diagram: %w", err)
	}
	return path, nil
}

// Check compares the file at the target with doc. A missing file or any
// difference returns ErrStale together with a line diff.
func (t Target) Check(doc string) (string, error) {
	path := t.Path()
	if path == "" {
		return "", fmt.Errorf("check needs an output directory")
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Diff("", doc), fmt.Errorf("%w: %s does not exist", ErrStale, path)
	}
	if err != nil {
		return "", fmt.Errorf("reading diagram: %w", err)
	}
	if string(data) == doc {
		return "", nil
	}
	return Diff(string(data), doc), fmt.Errorf("%w: %s", ErrStale, path)
}

// Diff returns a line diff from old to updated with "-", "+" and " "
// prefixes. Equal runs longer than six lines are elided.
func Diff(old, updated string) string {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(old, updated)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var buf strings.Builder
	for _, d := range diffs {
		chunk := strings.SplitAfter(d.Text, "\n")
		if chunk[len(chunk)-1] == "" {
			chunk = chunk[:len(chunk)-1]
		}
		prefix := " "
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		case diffmatchpatch.DiffEqual:
			if len(chunk) > 6 {
				writeLines(&buf, " ", chunk[:3])
				fmt.Fprintf(&buf, " ... (%d unchanged lines)\n", len(chunk)-6)
				chunk = chunk[len(chunk)-3:]
			}
		}
		writeLines(&buf, prefix, chunk)
	}
	return buf.String()
}

func writeLines(buf *strings.Builder, prefix string, lines []string) {
	for _, l := range lines {
		buf.WriteString(prefix)
		buf.WriteString(l)
		if !strings.HasSuffix(l, "\n") {
			buf.WriteByte('\n')
		}
	}
}
