// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package theme

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/petar-djukic/go-codemap/internal/callgraph"
	"github.com/petar-djukic/go-codemap/internal/hierarchy"
	"github.com/petar-djukic/go-codemap/pkg/types"
)

// ErrUnknownTheme is returned when a theme name is not registered.
var ErrUnknownTheme = errors.New("unknown theme")

// ErrInvalidTheme is returned when a theme file cannot be used.
var ErrInvalidTheme = errors.New("invalid theme")

// UnknownThemeError names the missing theme and what is available.
type UnknownThemeError struct {
	Name      string
	Available []string
}

func (e *UnknownThemeError) Error() string {
	return fmt.Sprintf("unknown theme %q (available: %s)", e.Name, strings.Join(e.Available, ", "))
}

func (e *UnknownThemeError) Unwrap() error { return ErrUnknownTheme }

var themeValidate = validator.New()

// file is the on-disk theme file layout.
type file struct {
	Themes []*Theme `yaml:"themes"`
}

// Registry holds themes by name.
type Registry struct {
	themes map[string]*Theme
}

// NewRegistry returns a registry holding the built-in themes.
func NewRegistry() *Registry {
	r := &Registry{themes: make(map[string]*Theme)}
	for _, t := range builtins() {
		r.themes[t.Name] = t
	}
	return r
}

// Add registers t, replacing any theme with the same name. Missing file
// and class schemes default to the node scheme.
func (r *Registry) Add(t *Theme) error {
	if t == nil {
		return fmt.Errorf("%w: empty theme", ErrInvalidTheme)
	}
	if t.File == (types.ColorScheme{}) {
		t.File = t.Node
	}
	if t.Class == (types.ColorScheme{}) {
		t.Class = t.File
	}
	if err := themeValidate.Struct(t); err != nil {
		return fmt.Errorf("%w: theme %s: %v", ErrInvalidTheme, t.Name, err)
	}
	r.themes[t.Name] = t
	return nil
}

// Load adds every theme in a YAML document of the form
// "themes: [{name, palette, entry, node, file, class}]".
func (r *Registry) Load(rd io.Reader) error {
	var f file
	if err := yaml.NewDecoder(rd).Decode(&f); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTheme, err)
	}
	if len(f.Themes) == 0 {
		return fmt.Errorf("%w: no themes defined", ErrInvalidTheme)
	}
	for _, t := range f.Themes {
		if err := r.Add(t); err != nil {
			return err
		}
	}
	return nil
}

// LoadFile adds the themes defined in a YAML file.
func (r *Registry) LoadFile(path string) error {
	fh, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening theme file: %w", err)
	}
	defer fh.Close()
	if err := r.Load(fh); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// Get returns the named theme.
func (r *Registry) Get(name string) (*Theme, error) {
	t, ok := r.themes[name]
	if !ok {
		return nil, &UnknownThemeError{Name: name, Available: r.Names()}
	}
	return t, nil
}

// Names returns the registered theme names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.themes))
	for n := range r.themes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Assign colours f and g with the named theme. Unknown names fail; there
// is no fallback theme.
func (r *Registry) Assign(f *hierarchy.Forest, g *callgraph.Graph, name string) (*Styled, error) {
	t, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	return t.Assign(f, g), nil
}
