// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package types

import (
	"errors"
	"fmt"
)

// ErrInvalidBudget is returned when a RenderBudget has non-positive limits.
var ErrInvalidBudget = errors.New("invalid render budget")

// RenderBudget holds the size ceilings a diagram must respect. It is
// read-only for the duration of a run.
type RenderBudget struct {
	MaxNodes     int `yaml:"max_nodes" validate:"gt=0"`
	MaxEdges     int `yaml:"max_edges" validate:"gt=0"`
	MaxSubgraphs int `yaml:"max_subgraphs" validate:"gt=0"`
	MaxTextSize  int `yaml:"max_text_size" validate:"gt=0"` // Bytes of serialized document
}

// Validate rejects budgets with non-positive limits.
func (b RenderBudget) Validate() error {
	switch {
	case b.MaxNodes <= 0:
		return fmt.Errorf("%w: max_nodes must be positive, got %d", ErrInvalidBudget, b.MaxNodes)
	case b.MaxEdges <= 0:
		return fmt.Errorf("%w: max_edges must be positive, got %d", ErrInvalidBudget, b.MaxEdges)
	case b.MaxSubgraphs <= 0:
		return fmt.Errorf("%w: max_subgraphs must be positive, got %d", ErrInvalidBudget, b.MaxSubgraphs)
	case b.MaxTextSize <= 0:
		return fmt.Errorf("%w: max_text_size must be positive, got %d", ErrInvalidBudget, b.MaxTextSize)
	}
	return nil
}
