// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package theme

import "github.com/petar-djukic/go-codemap/pkg/types"

// DefaultName is the theme used when none is configured.
const DefaultName = "default"

func scheme(name, fill, stroke, text string, width int) types.ColorScheme {
	return types.ColorScheme{Name: name, Fill: fill, Stroke: stroke, Text: text, StrokeWidth: width}
}

// builtins returns fresh copies of the bundled themes.
func builtins() []*Theme {
	return []*Theme{
		{
			Name: "default",
			Palette: []types.ColorScheme{
				scheme("blue", "#E3F2FD", "#1E88E5", "#0D47A1", 1),
				scheme("green", "#E8F5E9", "#43A047", "#1B5E20", 1),
				scheme("amber", "#FFF8E1", "#FFB300", "#FF6F00", 1),
				scheme("purple", "#F3E5F5", "#8E24AA", "#4A148C", 1),
				scheme("teal", "#E0F2F1", "#00897B", "#004D40", 1),
				scheme("red", "#FFEBEE", "#E53935", "#B71C1C", 1),
			},
			Entry: scheme("entry", "#FFD54F", "#F57F17", "#000000", 3),
			Node:  scheme("node", "#FFFFFF", "#607D8B", "#263238", 1),
			File:  scheme("file", "#FAFAFA", "#9E9E9E", "#424242", 1),
			Class: scheme("class", "#F5F5F5", "#757575", "#212121", 1),
		},
		{
			Name: "dark",
			Palette: []types.ColorScheme{
				scheme("navy", "#1A237E", "#5C6BC0", "#E8EAF6", 1),
				scheme("pine", "#1B5E20", "#66BB6A", "#E8F5E9", 1),
				scheme("plum", "#4A148C", "#AB47BC", "#F3E5F5", 1),
				scheme("rust", "#BF360C", "#FF7043", "#FBE9E7", 1),
				scheme("slate", "#263238", "#78909C", "#ECEFF1", 1),
			},
			Entry: scheme("entry", "#FFB300", "#FFE082", "#000000", 3),
			Node:  scheme("node", "#37474F", "#90A4AE", "#ECEFF1", 1),
			File:  scheme("file", "#212121", "#616161", "#E0E0E0", 1),
			Class: scheme("class", "#303030", "#757575", "#EEEEEE", 1),
		},
		{
			Name: "forest",
			Palette: []types.ColorScheme{
				scheme("moss", "#DCEDC8", "#689F38", "#33691E", 1),
				scheme("fern", "#C8E6C9", "#388E3C", "#1B5E20", 1),
				scheme("bark", "#D7CCC8", "#6D4C41", "#3E2723", 1),
				scheme("lichen", "#F0F4C3", "#AFB42B", "#827717", 1),
			},
			Entry: scheme("entry", "#FF8F00", "#E65100", "#FFFFFF", 3),
			Node:  scheme("node", "#F1F8E9", "#558B2F", "#1B5E20", 1),
			File:  scheme("file", "#FAFAF5", "#8D9F87", "#2E3B2B", 1),
			Class: scheme("class", "#EEF3E8", "#7C9070", "#2E3B2B", 1),
		},
		{
			Name: "ocean",
			Palette: []types.ColorScheme{
				scheme("teal", "#2CD7C7", "#16858E", "#0F1923", 1),
				scheme("deep", "#1D9EA3", "#104855", "#FFFFFF", 1),
				scheme("sea", "#157483", "#0C424E", "#FFFFFF", 1),
				scheme("midnight", "#0D2F39", "#2C4A54", "#E0F7FA", 1),
			},
			Entry: scheme("entry", "#F4D03F", "#B7950B", "#0F1923", 3),
			Node:  scheme("node", "#E0F7FA", "#20B9B4", "#0D2F39", 1),
			File:  scheme("file", "#F0FBFC", "#1D9DA0", "#0D2F39", 1),
			Class: scheme("class", "#E6F6F7", "#157483", "#0D2F39", 1),
		},
		{
			Name: "mono",
			Palette: []types.ColorScheme{
				scheme("light", "#FFFFFF", "#000000", "#000000", 1),
				scheme("grey", "#EEEEEE", "#424242", "#000000", 1),
			},
			Entry: scheme("entry", "#000000", "#000000", "#FFFFFF", 3),
			Node:  scheme("node", "#FFFFFF", "#616161", "#000000", 1),
			File:  scheme("file", "#FAFAFA", "#9E9E9E", "#000000", 1),
			Class: scheme("class", "#F5F5F5", "#757575", "#000000", 1),
		},
	}
}
