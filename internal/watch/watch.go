// Package watch re-runs an audit whenever source files under the root change.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/hashicorp/go-hclog"

	"github.com/scan-io-git/egressguard/internal/selector"
)

const DefaultDebounce = 300 * time.Millisecond

type Options struct {
	Root       string
	IgnoreDirs []string
	Debounce   time.Duration
	// Relevant filters file events; nil accepts every file.
	Relevant func(path string) bool
}

type Watcher struct {
	opts    Options
	ignored map[string]bool
	logger  hclog.Logger
	watcher *fsnotify.Watcher
}

// New registers every non-ignored directory under the root.
func New(opts Options, logger hclog.Logger) (*Watcher, error) {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch init failed: %w", err)
	}
	ignored := make(map[string]bool, len(opts.IgnoreDirs))
	for _, dir := range opts.IgnoreDirs {
		ignored[dir] = true
	}
	w := &Watcher{opts: opts, ignored: ignored, logger: logger, watcher: fw}
	if err := w.addRecursive(opts.Root); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch failed: %w", err)
	}
	return w, nil
}

func (w *Watcher) Close() error {
	return w.watcher.Close()
}

// Run calls trigger after each burst of relevant changes until ctx is cancelled.
// Triggers never overlap since they run on the calling goroutine.
func (w *Watcher) Run(ctx context.Context, trigger func(context.Context)) error {
	var pending <-chan time.Time
	var timer *time.Timer

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.handle(ev) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(w.opts.Debounce)
			pending = timer.C
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watch error", "err", err)
		case <-pending:
			pending = nil
			timer = nil
			trigger(ctx)
		}
	}
}

// handle registers new directories and reports whether the event should schedule a run.
func (w *Watcher) handle(ev fsnotify.Event) bool {
	rel := w.relative(ev.Name)
	if selector.HasIgnoredSegment(rel, w.ignored) {
		return false
	}
	if ev.Has(fsnotify.Create) {
		if err := w.addRecursive(ev.Name); err != nil {
			w.logger.Debug("failed to watch new path", "path", ev.Name, "err", err)
		}
	}
	if w.opts.Relevant != nil && !w.opts.Relevant(ev.Name) {
		return false
	}
	w.logger.Debug("change detected", "path", rel, "op", ev.Op.String())
	return true
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.opts.Root && (w.ignored[d.Name()] || selector.HasIgnoredSegment(w.relative(path), w.ignored)) {
			return filepath.SkipDir
		}
		return w.watcher.Add(path)
	})
}

func (w *Watcher) relative(path string) string {
	rel, err := filepath.Rel(w.opts.Root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
