// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package codemap

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/petar-djukic/go-codemap/internal/hierarchy"
	"github.com/petar-djukic/go-codemap/internal/pipeline"
	"github.com/petar-djukic/go-codemap/internal/theme"
	"github.com/petar-djukic/go-codemap/pkg/types"
)

const (
	defaultMaxNodes             = 150
	defaultMaxEdges             = 300
	defaultMaxSubgraphs         = 60
	defaultMaxTextSize          = 50000
	defaultTreeDepth            = 3
	defaultMaxFolders           = 20
	defaultMaxFunctionsPerClass = 25
	defaultResolverCacheSize    = 4096
)

var configValidate = validator.New()

// Generator renders diagrams with a fixed configuration. It is safe for
// concurrent use.
type Generator struct {
	cfg    Config
	runner *pipeline.Runner
}

// New validates the config, applies defaults, loads theme files and
// checks that the theme exists.
func New(cfg Config) (*Generator, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	applyDefaults(&cfg)

	themes := theme.NewRegistry()
	for _, path := range cfg.ThemeFiles {
		if err := themes.LoadFile(path); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	}
	if _, err := themes.Get(cfg.Theme); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	runner := pipeline.New(pipeline.Config{
		Budget: cfg.Budget(),
		Theme:  cfg.Theme,
		Themes: themes,
		Hierarchy: hierarchy.Config{
			TreeDepth:            unlimited(cfg.TreeDepth),
			MaxFolders:           unlimited(cfg.MaxFolders),
			MaxFunctionsPerClass: unlimited(cfg.MaxFunctionsPerClass),
		},
		EntryNames:        cfg.EntryNames,
		CallDepth:         cfg.CallDepth,
		Direction:         cfg.Direction,
		Revision:          cfg.Revision,
		ResolverCacheSize: cfg.ResolverCacheSize,
		Instrument:        cfg.Instrument,
		Logger:            cfg.Logger,
	})

	return &Generator{cfg: cfg, runner: runner}, nil
}

// Config returns the effective configuration after defaults.
func (g *Generator) Config() Config { return g.cfg }

// Generate runs the pipeline over tags and call sites. Each
// RawCallSite.Caller is a position in tags.
func (g *Generator) Generate(ctx context.Context, tags []types.RawTag, calls []types.RawCallSite) (*Result, error) {
	ir, err := g.runner.Run(ctx, pipeline.Input{Tags: tags, Calls: calls})
	if ir == nil {
		return &Result{}, err
	}
	res := &Result{
		Document:    ir.Document,
		Diagnostics: ir.Diagnostics,
		Stats:       ir.Stats,
		Checkpoints: ir.Checkpoints,
		RunID:       ir.RunID,
		EntryPoints: ir.EntryPoints,
		Cycles:      ir.Cycles,
	}
	if ir.Document != nil {
		res.Diagram = ir.Document.String()
	}
	return res, err
}

// Budget returns the render budget described by the config.
func (c Config) Budget() types.RenderBudget {
	return types.RenderBudget{
		MaxNodes:     c.MaxNodes,
		MaxEdges:     c.MaxEdges,
		MaxSubgraphs: c.MaxSubgraphs,
		MaxTextSize:  c.MaxTextSize,
	}
}

// validateConfig checks field constraints before defaults apply.
func validateConfig(cfg Config) error {
	return configValidate.Struct(cfg)
}

// applyDefaults fills in zero-value fields with their defaults.
func applyDefaults(cfg *Config) {
	if cfg.MaxNodes == 0 {
		cfg.MaxNodes = defaultMaxNodes
	}
	if cfg.MaxEdges == 0 {
		cfg.MaxEdges = defaultMaxEdges
	}
	if cfg.MaxSubgraphs == 0 {
		cfg.MaxSubgraphs = defaultMaxSubgraphs
	}
	if cfg.MaxTextSize == 0 {
		cfg.MaxTextSize = defaultMaxTextSize
	}
	if cfg.TreeDepth == 0 {
		cfg.TreeDepth = defaultTreeDepth
	}
	if cfg.MaxFolders == 0 {
		cfg.MaxFolders = defaultMaxFolders
	}
	if cfg.MaxFunctionsPerClass == 0 {
		cfg.MaxFunctionsPerClass = defaultMaxFunctionsPerClass
	}
	if cfg.Theme == "" {
		cfg.Theme = theme.DefaultName
	}
	if cfg.EntryNames == nil {
		cfg.EntryNames = []string{"main"}
	}
	if cfg.ResolverCacheSize == 0 {
		cfg.ResolverCacheSize = defaultResolverCacheSize
	}
}

// unlimited maps negative limits to zero, which the grouper reads as no
// limit.
func unlimited(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
