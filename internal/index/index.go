// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package index normalizes raw tagger output into an arena of symbols with
// lookup tables by name, file and class.
package index

import (
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/petar-djukic/go-codemap/pkg/types"
)

var tagValidate = validator.New()

// tagKey identifies tags that describe the same symbol.
type tagKey struct {
	file string
	name string
	kind types.SymbolKind
	line int
}

// Index holds every symbol of a run and provides lookups by name, file
// and class. Symbols are stored in a flat slice and referenced by
// types.SymbolID.
type Index struct {
	symbols []types.Symbol
	files   []string
	fileIDs map[string]int
	byName  map[string][]types.SymbolID
	byFile  map[string][]types.SymbolID
	byClass map[string][]types.SymbolID // classKey(dir, class) -> members
	byTag   []types.SymbolID            // raw tag position -> symbol
}

// Build creates an Index from raw tags. Malformed tags are skipped and
// reported as diagnostics; the build itself never fails.
func Build(tags []types.RawTag) (*Index, types.Diagnostics) {
	idx := &Index{
		fileIDs: make(map[string]int),
		byName:  make(map[string][]types.SymbolID),
		byFile:  make(map[string][]types.SymbolID),
		byClass: make(map[string][]types.SymbolID),
		byTag:   make([]types.SymbolID, len(tags)),
	}

	var diags types.Diagnostics
	seen := make(map[tagKey]types.SymbolID, len(tags))
	duplicates := 0

	for pos, tag := range tags {
		idx.byTag[pos] = types.NoSymbol

		sym, err := normalize(pos, tag)
		if err != nil {
			diags = append(diags, types.Diagnostic{
				Kind:    types.DiagMalformedTag,
				Stage:   types.StageIndex,
				Message: err.Error(),
				Count:   1,
			})
			continue
		}

		key := tagKey{file: sym.File, name: sym.Name, kind: sym.Kind, line: sym.StartLine}
		if id, ok := seen[key]; ok {
			idx.byTag[pos] = id
			if sym.Entry {
				idx.symbols[id].Entry = true
			}
			duplicates++
			continue
		}

		id := types.SymbolID(len(idx.symbols))
		sym.ID = id
		sym.FileID = idx.fileID(sym.File)
		idx.symbols = append(idx.symbols, sym)
		seen[key] = id
		idx.byTag[pos] = id

		idx.byName[sym.Name] = append(idx.byName[sym.Name], id)
		idx.byFile[sym.File] = append(idx.byFile[sym.File], id)
		if sym.Class != "" {
			ck := classKey(sym.Dir, sym.Class)
			idx.byClass[ck] = append(idx.byClass[ck], id)
		}
	}

	if duplicates > 0 {
		diags = append(diags, types.Diagnostic{
			Kind:    types.DiagDuplicateTag,
			Stage:   types.StageIndex,
			Message: fmt.Sprintf("%d duplicate tags merged", duplicates),
			Count:   duplicates,
		})
	}

	idx.linkClasses()
	return idx, diags
}

// normalize validates a raw tag and converts it to a Symbol without an id.
func normalize(pos int, tag types.RawTag) (types.Symbol, error) {
	tag.Name = strings.TrimSpace(tag.Name)
	tag.File = strings.TrimSpace(tag.File)
	tag.Kind = strings.ToLower(strings.TrimSpace(tag.Kind))

	if err := tagValidate.Struct(tag); err != nil {
		return types.Symbol{}, &types.MalformedTagError{
			Position: pos,
			Name:     tag.Name,
			Reason:   describeValidation(err),
		}
	}

	kind, _ := types.ParseSymbolKind(tag.Kind)
	file := NormalizePath(tag.File)
	end := tag.LineEnd
	if end < tag.LineStart {
		end = tag.LineStart
	}

	return types.Symbol{
		Name:      tag.Name,
		Kind:      kind,
		File:      file,
		Dir:       path.Dir(file),
		StartLine: tag.LineStart,
		EndLine:   end,
		Class:     strings.TrimSpace(tag.ParentClass),
		ClassID:   types.NoSymbol,
		Entry:     tag.Entry,
	}, nil
}

// describeValidation turns validator errors into a short reason.
func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			parts = append(parts, fmt.Sprintf("missing %s", strings.ToLower(fe.Field())))
		case "oneof":
			parts = append(parts, fmt.Sprintf("unknown kind %q", fe.Value()))
		default:
			parts = append(parts, fmt.Sprintf("invalid %s", strings.ToLower(fe.Field())))
		}
	}
	return strings.Join(parts, ", ")
}

// NormalizePath cleans a tagger path into slash form without a leading "./".
func NormalizePath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	p = path.Clean(p)
	return strings.TrimPrefix(p, "./")
}

// fileID returns the file table index for a path, adding it when new.
func (idx *Index) fileID(file string) int {
	if id, ok := idx.fileIDs[file]; ok {
		return id
	}
	id := len(idx.files)
	idx.files = append(idx.files, file)
	idx.fileIDs[file] = id
	return id
}

// linkClasses sets ClassID on members whose class is declared as a tag,
// preferring a declaration in the same file over one in the same directory.
func (idx *Index) linkClasses() {
	for i := range idx.symbols {
		sym := &idx.symbols[i]
		if sym.Class == "" {
			continue
		}
		sameDir := types.NoSymbol
		for _, cand := range idx.byName[sym.Class] {
			c := idx.symbols[cand]
			if c.Kind != types.Class {
				continue
			}
			if c.File == sym.File {
				sym.ClassID = cand
				break
			}
			if c.Dir == sym.Dir && sameDir == types.NoSymbol {
				sameDir = cand
			}
		}
		if sym.ClassID == types.NoSymbol {
			sym.ClassID = sameDir
		}
	}
}

func classKey(dir, class string) string {
	return dir + "#" + class
}

// Len returns the number of symbols.
func (idx *Index) Len() int {
	return len(idx.symbols)
}

// Symbol returns the symbol with the given id.
func (idx *Index) Symbol(id types.SymbolID) types.Symbol {
	return idx.symbols[id]
}

// Valid reports whether id refers to a symbol of this index.
func (idx *Index) Valid(id types.SymbolID) bool {
	return id >= 0 && int(id) < len(idx.symbols)
}

// All returns a copy of every symbol in id order.
func (idx *Index) All() []types.Symbol {
	result := make([]types.Symbol, len(idx.symbols))
	copy(result, idx.symbols)
	return result
}

// ByName returns the ids of all symbols with the given name.
func (idx *Index) ByName(name string) []types.SymbolID {
	return clone(idx.byName[name])
}

// ByFile returns the ids of all symbols declared in the given file.
func (idx *Index) ByFile(file string) []types.SymbolID {
	return clone(idx.byFile[NormalizePath(file)])
}

// ByClass returns the ids of the members of a class declared in dir.
func (idx *Index) ByClass(dir, class string) []types.SymbolID {
	return clone(idx.byClass[classKey(dir, class)])
}

// Files returns the distinct file paths, sorted.
func (idx *Index) Files() []string {
	files := make([]string, len(idx.files))
	copy(files, idx.files)
	sort.Strings(files)
	return files
}

// IDForTag maps a raw tag position to its symbol. It returns false for
// out-of-range positions and malformed tags.
func (idx *Index) IDForTag(pos int) (types.SymbolID, bool) {
	if pos < 0 || pos >= len(idx.byTag) {
		return types.NoSymbol, false
	}
	id := idx.byTag[pos]
	return id, id != types.NoSymbol
}

func clone(ids []types.SymbolID) []types.SymbolID {
	if len(ids) == 0 {
		return nil
	}
	out := make([]types.SymbolID, len(ids))
	copy(out, ids)
	return out
}
