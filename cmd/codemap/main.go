// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Command codemap renders call-graph diagrams from symbol tag files.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/petar-djukic/go-codemap/internal/ui"
)

const version = "0.1.0"

func main() {
	// .env is optional.
	_ = godotenv.Load()

	if err := newRootCmd(viper.New()).Execute(); err != nil {
		ui.NewPrinter(os.Stderr).Errorf("%v", err)
		os.Exit(1)
	}
}

// newRootCmd builds the command tree around v so tests can use a fresh
// viper instance.
func newRootCmd(v *viper.Viper) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "codemap",
		Short:         "Render call-graph diagrams from symbol tags",
		Long:          "codemap reads symbol tags and call sites, resolves calls, groups symbols by directory, file and class, and writes a size-bounded Mermaid flowchart.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig(v)
		},
	}

	// Global flags.
	rootCmd.PersistentFlags().String("config", "", "Config file (default .codemap.yaml in the working directory)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log pipeline stages to stderr")

	// Bind flags to viper.
	v.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	v.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	// Env vars: CODEMAP_THEME, CODEMAP_MAX_NODES, etc.
	v.SetEnvPrefix("CODEMAP")
	v.SetEnvKeyReplacer(envReplacer)
	v.AutomaticEnv()

	rootCmd.AddCommand(newRenderCmd(v))
	rootCmd.AddCommand(newThemesCmd(v))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// loadConfig reads the config file. A missing default file is ignored;
// a missing explicit file is an error.
func loadConfig(v *viper.Viper) error {
	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config %s: %w", path, err)
		}
		return nil
	}

	v.SetConfigName(".codemap")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("reading config: %w", err)
		}
	}
	return nil
}

// newLogger returns a text logger on w, or a discarding one unless
// verbose is set.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	if !verbose {
		return slog.New(slog.DiscardHandler)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// newVersionCmd creates the "version" command.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print codemap version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "codemap %s\n", version)
		},
	}
}
