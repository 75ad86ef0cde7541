// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package codemap generates call-graph diagrams from symbol and call-site
// tags produced by an external tagger.
package codemap

import (
	"errors"
	"log/slog"

	"github.com/petar-djukic/go-codemap/internal/pipeline"
	"github.com/petar-djukic/go-codemap/pkg/types"
)

// Error types for the codemap API.
var (
	ErrInvalidConfig = errors.New("invalid config")
)

// Config configures a Generator. Zero values take the defaults noted on
// each field; negative grouping limits mean unlimited.
type Config struct {
	MaxNodes             int          `validate:"gte=0"` // Default 150
	MaxEdges             int          `validate:"gte=0"` // Default 300
	MaxSubgraphs         int          `validate:"gte=0"` // Default 60
	MaxTextSize          int          `validate:"gte=0"` // Default 50000 bytes
	TreeDepth            int          // Default 3
	MaxFolders           int          // Default 20
	MaxFunctionsPerClass int          // Default 25
	Theme                string       // Default "default"
	ThemeFiles           []string     `validate:"dive,required"` // Extra YAML theme files
	EntryNames           []string     // Default ["main"]
	CallDepth            int          `validate:"gte=0"`                                         // 0 renders the whole graph
	Direction            string       `validate:"omitempty,oneof=TD TB LR RL BT td tb lr rl bt"` // Default TD
	Revision             string       // Written as a leading comment
	ResolverCacheSize    int          `validate:"gte=0"` // Default 4096
	Instrument           bool         // Record per-stage checkpoints
	Logger               *slog.Logger // nil discards
}

// Stats summarizes a run.
type Stats = pipeline.Stats

// Checkpoint is the timing and memory snapshot taken after a stage.
type Checkpoint = pipeline.Checkpoint

// Result holds the outcome of a Generate call.
type Result struct {
	Diagram     string                 // Serialized document
	Document    *types.DiagramDocument // Line-level document
	Diagnostics types.Diagnostics      // Non-fatal findings
	Stats       Stats
	Checkpoints []Checkpoint // Set when Config.Instrument is true
	RunID       string
	EntryPoints []string
	Cycles      [][]string
}
