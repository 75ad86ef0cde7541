// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/petar-djukic/go-codemap/internal/theme"
	"github.com/petar-djukic/go-codemap/internal/ui"
)

// newThemesCmd creates the "themes" command.
func newThemesCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "themes [name...]",
		Short: "List available themes",
		Long:  "Themes prints the built-in themes and those from theme files with a swatch for every color scheme.",
		RunE: func(cmd *cobra.Command, args []string) error {
			extra, _ := cmd.Flags().GetStringSlice("file")
			return listThemes(cmd, v, append(v.GetStringSlice("theme-file"), extra...), args)
		},
	}
	cmd.Flags().StringSlice("file", nil, "YAML file with extra themes; repeatable")
	return cmd
}

// listThemes prints the named themes, or all of them when names is
// empty. The configured theme is marked as selected.
func listThemes(cmd *cobra.Command, v *viper.Viper, files, names []string) error {
	reg := theme.NewRegistry()
	for _, path := range files {
		if err := reg.LoadFile(path); err != nil {
			return err
		}
	}

	selected := v.GetString("theme")
	if selected == "" {
		selected = theme.DefaultName
	}
	if len(names) == 0 {
		names = reg.Names()
	}

	printer := ui.NewPrinter(cmd.OutOrStdout())
	for i, name := range names {
		t, err := reg.Get(name)
		if err != nil {
			return err
		}
		if i > 0 {
			fmt.Fprintln(cmd.OutOrStdout())
		}
		printer.Theme(t, name == selected)
	}
	return nil
}
