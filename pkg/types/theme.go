// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package types

import "fmt"

// ColorScheme is one named set of colours applied to a node or subgraph.
type ColorScheme struct {
	Name        string `yaml:"name"`
	Fill        string `yaml:"fill" validate:"required"`
	Stroke      string `yaml:"stroke" validate:"required"`
	Text        string `yaml:"text" validate:"required"`
	StrokeWidth int    `yaml:"stroke_width" validate:"gte=0"`
}

// Directive returns the Mermaid style properties for the scheme.
func (c ColorScheme) Directive() string {
	width := c.StrokeWidth
	if width <= 0 {
		width = 1
	}
	return fmt.Sprintf("fill:%s,stroke:%s,color:%s,stroke-width:%dpx", c.Fill, c.Stroke, c.Text, width)
}
