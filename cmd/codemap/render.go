// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	gitpkg "github.com/petar-djukic/go-codemap/internal/git"
	"github.com/petar-djukic/go-codemap/internal/output"
	"github.com/petar-djukic/go-codemap/internal/report"
	"github.com/petar-djukic/go-codemap/internal/tagfile"
	"github.com/petar-djukic/go-codemap/internal/ui"
	"github.com/petar-djukic/go-codemap/internal/watch"
	"github.com/petar-djukic/go-codemap/pkg/codemap"
)

var envReplacer = strings.NewReplacer("-", "_")

// renderFlags are the local flags of the render command. Every one is
// bound to viper under the same key.
var renderFlags = []string{
	"input", "output-dir", "output", "theme", "theme-file",
	"max-nodes", "max-edges", "max-subgraphs", "max-text-size",
	"tree-depth", "max-folders", "max-functions-per-class",
	"entry", "call-depth", "direction", "revision", "repo", "no-git",
	"check", "watch", "instrument", "quiet",
}

// newRenderCmd creates the "render" command.
func newRenderCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a diagram from tag files",
		Long:  "Render loads one or more tag files, builds the call graph and writes a Mermaid flowchart to the output directory or stdout.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, v)
		},
	}

	f := cmd.Flags()
	f.StringSliceP("input", "i", nil, "Tag file (YAML or JSON); repeatable")
	f.StringP("output-dir", "o", "", "Directory for the diagram (stdout when empty)")
	f.String("output", output.DefaultName, "Diagram file name inside the output directory")
	f.StringP("theme", "t", "", "Theme name (default \"default\")")
	f.StringSlice("theme-file", nil, "YAML file with extra themes; repeatable")
	f.Int("max-nodes", 0, "Maximum nodes in the diagram (default 150)")
	f.Int("max-edges", 0, "Maximum edges in the diagram (default 300)")
	f.Int("max-subgraphs", 0, "Maximum subgraphs in the diagram (default 60)")
	f.Int("max-text-size", 0, "Maximum diagram size in bytes (default 50000)")
	f.Int("tree-depth", 0, "Directory levels shown as subgraphs (default 3, negative for unlimited)")
	f.Int("max-folders", 0, "Directories kept per parent (default 20, negative for unlimited)")
	f.Int("max-functions-per-class", 0, "Methods kept per class (default 25, negative for unlimited)")
	f.StringSlice("entry", nil, "Entry point names (default main)")
	f.Int("call-depth", 0, "Only render symbols this many calls from an entry point (0 for all)")
	f.String("direction", "", "Flowchart direction: TD, LR, RL or BT")
	f.String("revision", "", "Revision written into the diagram header (default HEAD of --repo)")
	f.String("repo", ".", "Repository used to stamp the revision")
	f.Bool("no-git", false, "Do not stamp the diagram with the git revision")
	f.Bool("check", false, "Fail when the file in the output directory is out of date")
	f.BoolP("watch", "w", false, "Re-render when an input or theme file changes")
	f.Bool("instrument", false, "Report per-stage timing and memory")
	f.BoolP("quiet", "q", false, "Do not print the run report")

	for _, name := range renderFlags {
		v.BindPFlag(name, f.Lookup(name))
	}

	return cmd
}

// renderOptions collects the CLI settings that are not part of
// codemap.Config.
type renderOptions struct {
	inputs []string
	target output.Target
	check  bool
	watch  bool
	quiet  bool
}

// runRender executes one render, then keeps re-rendering in watch mode.
func runRender(cmd *cobra.Command, v *viper.Viper) error {
	logger := newLogger(cmd.ErrOrStderr(), v.GetBool("verbose"))
	printer := ui.NewPrinter(cmd.ErrOrStderr())

	opts := renderOptions{
		inputs: v.GetStringSlice("input"),
		target: output.Target{
			Dir:    v.GetString("output-dir"),
			Name:   v.GetString("output"),
			Stdout: cmd.OutOrStdout(),
		},
		check: v.GetBool("check"),
		watch: v.GetBool("watch"),
		quiet: v.GetBool("quiet"),
	}
	if len(opts.inputs) == 0 {
		return errors.New("at least one --input tag file is required")
	}
	if opts.check && opts.watch {
		return errors.New("--check and --watch cannot be combined")
	}

	cfg := configFromViper(v, logger)
	if cfg.Revision == "" && !v.GetBool("no-git") {
		cfg.Revision = revision(v.GetString("repo"), logger)
	}

	sess, err := newRenderSession(cfg, opts, printer, cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer cancel()

	err = sess.render(ctx)
	if !opts.watch {
		return err
	}
	if err != nil {
		printer.Errorf("%v", err)
	}

	w, err := watch.New(append(append([]string(nil), opts.inputs...), cfg.ThemeFiles...), watch.Options{Logger: logger})
	if err != nil {
		return err
	}
	printer.Successf("watching %d files, press Ctrl-C to stop", len(opts.inputs)+len(cfg.ThemeFiles))
	return w.Run(ctx, sess.changed)
}

// renderSession holds the generator between renders. Theme files are
// only read when a generator is built, so it is rebuilt when one of
// them changes.
type renderSession struct {
	cfg        codemap.Config
	gen        *codemap.Generator
	opts       renderOptions
	printer    *ui.Printer
	stderr     io.Writer
	themeFiles map[string]bool // Absolute paths
}

func newRenderSession(cfg codemap.Config, opts renderOptions, printer *ui.Printer, stderr io.Writer) (*renderSession, error) {
	if cfg.Logger == nil {
		cfg.Logger = newLogger(stderr, false)
	}
	gen, err := codemap.New(cfg)
	if err != nil {
		return nil, err
	}
	s := &renderSession{
		cfg:        cfg,
		gen:        gen,
		opts:       opts,
		printer:    printer,
		stderr:     stderr,
		themeFiles: make(map[string]bool, len(cfg.ThemeFiles)),
	}
	for _, path := range cfg.ThemeFiles {
		if abs, err := filepath.Abs(path); err == nil {
			s.themeFiles[abs] = true
		}
	}
	return s, nil
}

func (s *renderSession) render(ctx context.Context) error {
	return renderOnce(ctx, s.gen, s.opts, s.printer, s.stderr)
}

// changed re-renders after a watch batch. Errors are printed and never
// stop the watch; a broken theme file keeps the previous generator.
func (s *renderSession) changed(ctx context.Context, paths []string) error {
	s.cfg.Logger.Info("render.changed", "files", paths)
	if s.touchesTheme(paths) {
		gen, err := codemap.New(s.cfg)
		if err != nil {
			s.printer.Errorf("reloading themes: %v", err)
			return nil
		}
		s.gen = gen
	}
	if err := s.render(ctx); err != nil {
		s.printer.Errorf("%v", err)
	}
	return nil
}

func (s *renderSession) touchesTheme(paths []string) bool {
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err == nil && s.themeFiles[abs] {
			return true
		}
	}
	return false
}

// renderOnce loads the inputs, generates the diagram and writes or
// checks it.
func renderOnce(ctx context.Context, gen *codemap.Generator, opts renderOptions, printer *ui.Printer, stderr io.Writer) error {
	set, err := tagfile.LoadFiles(opts.inputs...)
	if err != nil {
		return err
	}

	res, err := gen.Generate(ctx, set.Tags, set.Calls)
	if err != nil {
		return err
	}

	if !opts.quiet {
		printer.Report(report.Format(res, report.Config{
			Checkpoints: gen.Config().Instrument,
			Cycles:      true,
		}))
	}

	if opts.check {
		diff, err := opts.target.Check(res.Diagram)
		if errors.Is(err, output.ErrStale) {
			fmt.Fprint(stderr, diff)
		}
		if err != nil {
			return err
		}
		printer.Successf("%s is up to date", opts.target.Path())
		return nil
	}

	path, err := opts.target.Write(res.Diagram)
	if err != nil {
		return err
	}
	if path != "" {
		printer.Successf("wrote %s (%d nodes, %d edges)", path, res.Stats.Nodes, res.Stats.Edges)
	}
	return nil
}

// configFromViper maps flags, env vars and config file values onto a
// codemap.Config.
func configFromViper(v *viper.Viper, logger *slog.Logger) codemap.Config {
	return codemap.Config{
		MaxNodes:             v.GetInt("max-nodes"),
		MaxEdges:             v.GetInt("max-edges"),
		MaxSubgraphs:         v.GetInt("max-subgraphs"),
		MaxTextSize:          v.GetInt("max-text-size"),
		TreeDepth:            v.GetInt("tree-depth"),
		MaxFolders:           v.GetInt("max-folders"),
		MaxFunctionsPerClass: v.GetInt("max-functions-per-class"),
		Theme:                v.GetString("theme"),
		ThemeFiles:           v.GetStringSlice("theme-file"),
		EntryNames:           nilIfEmpty(v.GetStringSlice("entry")),
		CallDepth:            v.GetInt("call-depth"),
		Direction:            v.GetString("direction"),
		Revision:             v.GetString("revision"),
		Instrument:           v.GetBool("instrument"),
		Logger:               logger,
	}
}

// revision stamps the diagram with the repository HEAD. Outside a
// repository the diagram is left unstamped.
func revision(repo string, logger *slog.Logger) string {
	stamp, err := gitpkg.Stamp(repo)
	if err != nil {
		logger.Debug("render.revision", "repo", repo, "error", err)
		return ""
	}
	return stamp
}

func nilIfEmpty(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	return s
}
