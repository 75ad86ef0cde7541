// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package watch reruns a callback when input files change.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period before a batch of changes fires.
const DefaultDebounce = 200 * time.Millisecond

// ErrNoPaths is returned when there is nothing to watch.
var ErrNoPaths = errors.New("no paths to watch")

// Handler receives the sorted, de-duplicated list of changed files.
// A returned error is logged and watching continues.
type Handler func(ctx context.Context, changed []string) error

// Options configures a Watcher.
type Options struct {
	Debounce time.Duration
	Logger   *slog.Logger
}

// Watcher observes a fixed set of files. Editors often replace files
// with a rename, so the parent directories are watched and events are
// filtered by name.
type Watcher struct {
	files    map[string]bool
	dirs     []string
	debounce time.Duration
	log      *slog.Logger
}

// New prepares a Watcher for paths. Nothing is opened until Run.
func New(paths []string, opts Options) (*Watcher, error) {
	if len(paths) == 0 {
		return nil, ErrNoPaths
	}
	w := &Watcher{
		files:    make(map[string]bool, len(paths)),
		debounce: opts.Debounce,
		log:      opts.Logger,
	}
	if w.debounce <= 0 {
		w.debounce = DefaultDebounce
	}
	if w.log == nil {
		w.log = slog.New(slog.DiscardHandler)
	}

	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", p, err)
		}
		w.files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for d := range dirs {
		w.dirs = append(w.dirs, d)
	}
	sort.Strings(w.dirs)
	return w, nil
}

// Dirs returns the directories Run registers with the OS.
func (w *Watcher) Dirs() []string { return w.dirs }

// Matches reports whether an event path names a watched file.
func (w *Watcher) Matches(name string) bool {
	abs, err := filepath.Abs(name)
	if err != nil {
		return false
	}
	return w.files[abs]
}

// Run blocks until ctx is done, calling fn once per debounced batch of
// changes. It returns nil on cancellation.
func (w *Watcher) Run(ctx context.Context, fn Handler) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fw.Close()

	for _, d := range w.dirs {
		if err := fw.Add(d); err != nil {
			return fmt.Errorf("watching %s: %w", d, err)
		}
	}
	w.log.Info("watch.start", "files", len(w.files), "dirs", len(w.dirs))

	return w.loop(ctx, fw.Events, fw.Errors, fn)
}

func (w *Watcher) loop(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error, fn Handler) error {
	pending := make(map[string]bool)
	var timer *time.Timer
	var timerC <-chan time.Time

	flush := func() {
		if len(pending) == 0 {
			return
		}
		changed := make([]string, 0, len(pending))
		for p := range pending {
			changed = append(changed, p)
		}
		sort.Strings(changed)
		clear(pending)

		w.log.Debug("watch.flush", "changed", changed)
		if err := fn(ctx, changed); err != nil {
			w.log.Warn("watch.handler", "error", err)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			w.log.Info("watch.stop")
			return nil

		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if !relevant(ev.Op) || !w.Matches(ev.Name) {
				continue
			}
			abs, _ := filepath.Abs(ev.Name)
			pending[abs] = true
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				timer.Reset(w.debounce)
			}

		case err, ok := <-errs:
			if !ok {
				return nil
			}
			w.log.Warn("watch.error", "error", err)

		case <-timerC:
			timer = nil
			timerC = nil
			flush()
		}
	}
}

// relevant filters out chmod-only events.
func relevant(op fsnotify.Op) bool {
	return op.Has(fsnotify.Create) || op.Has(fsnotify.Write) ||
		op.Has(fsnotify.Remove) || op.Has(fsnotify.Rename)
}
