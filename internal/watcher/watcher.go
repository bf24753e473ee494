// Package watcher re-lints NetLogo files of a project as they change on disk.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/zeebo/xxh3"

	"github.com/DeusData/netlogo-intel/internal/discover"
)

// DefaultDebounce is how long changes are collected before a flush.
const DefaultDebounce = 300 * time.Millisecond

// ChangeFunc receives the absolute paths of NetLogo files whose content
// changed and of those that disappeared since the last flush.
type ChangeFunc func(ctx context.Context, changed, removed []string) error

// Options configures a Watcher.
type Options struct {
	Debounce time.Duration
	Ignore   []string
}

// Watcher watches a project tree and reports NetLogo file changes in
// debounced batches.
type Watcher struct {
	root     string
	debounce time.Duration
	patterns []string
	onChange ChangeFunc
	fsw      *fsnotify.Watcher

	mu      sync.Mutex
	pending map[string]bool // absolute path -> seen since last flush
	hashes  map[string]uint64
}

// New creates a Watcher for root. fn is called for every non-empty batch.
func New(root string, opts Options, fn ChangeFunc) (*Watcher, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("fsnotify: %w", err)
	}
	return &Watcher{
		root:     abs,
		debounce: opts.Debounce,
		patterns: discover.Patterns(abs, &discover.Options{Ignore: opts.Ignore}),
		onChange: fn,
		fsw:      fsw,
		pending:  make(map[string]bool),
		hashes:   make(map[string]uint64),
	}, nil
}

// Run records a baseline of the current files, then blocks handling events
// until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()
	if err := w.addTree(w.root); err != nil {
		return err
	}
	if err := w.baseline(ctx); err != nil {
		return err
	}
	slog.Info("watcher.start", "root", w.root, "files", len(w.hashes), "debounce", w.debounce)

	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handle(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watcher.error", "err", err)
		case <-ticker.C:
			if err := w.flush(ctx); err != nil && !errors.Is(err, context.Canceled) {
				slog.Warn("watcher.flush", "err", err)
			}
		}
	}
}

// baseline hashes every file so the first flush only reports real edits.
func (w *Watcher) baseline(ctx context.Context) error {
	files, err := discover.Discover(ctx, w.root, &discover.Options{Ignore: w.patterns})
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, f := range files {
		if h, err := hashFile(f.Path); err == nil {
			w.hashes[f.Path] = h
		}
	}
	return nil
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && (discover.SkipDir(d.Name()) || discover.Ignored(w.rel(path), w.patterns)) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			slog.Warn("watcher.add", "path", path, "err", err)
		}
		return nil
	})
}

func (w *Watcher) rel(path string) string {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}

// handle queues a NetLogo file event and starts watching new directories.
func (w *Watcher) handle(ev fsnotify.Event) {
	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if !discover.SkipDir(info.Name()) && !discover.Ignored(w.rel(ev.Name), w.patterns) {
				if err := w.addTree(ev.Name); err != nil {
					slog.Warn("watcher.add", "path", ev.Name, "err", err)
				}
				w.queueTree(ev.Name)
			}
			return
		}
	}
	w.queue(ev.Name)
}

func (w *Watcher) queue(path string) {
	if _, ok := discover.KindOf(path); !ok || discover.Ignored(w.rel(path), w.patterns) {
		return
	}
	w.mu.Lock()
	w.pending[path] = true
	w.mu.Unlock()
}

// queueTree queues files of a directory that appeared with content, such as
// one moved into the tree.
func (w *Watcher) queueTree(dir string) {
	files, err := discover.Discover(context.Background(), dir, &discover.Options{Ignore: w.patterns})
	if err != nil {
		return
	}
	for _, f := range files {
		w.queue(f.Path)
	}
}

// flush hashes the queued files and reports the batch. Files whose content
// is unchanged are dropped.
func (w *Watcher) flush(ctx context.Context) error {
	w.mu.Lock()
	if len(w.pending) == 0 {
		w.mu.Unlock()
		return nil
	}
	paths := make([]string, 0, len(w.pending))
	for p := range w.pending {
		paths = append(paths, p)
	}
	w.pending = make(map[string]bool)
	w.mu.Unlock()
	sort.Strings(paths)

	var changed, removed []string
	for _, p := range paths {
		h, err := hashFile(p)
		w.mu.Lock()
		old, known := w.hashes[p]
		switch {
		case errors.Is(err, os.ErrNotExist):
			if known {
				delete(w.hashes, p)
				removed = append(removed, p)
			}
		case err != nil:
			slog.Warn("watcher.read", "path", w.rel(p), "err", err)
		case !known || old != h:
			w.hashes[p] = h
			changed = append(changed, p)
		}
		w.mu.Unlock()
	}
	if len(changed) == 0 && len(removed) == 0 {
		return nil
	}
	slog.Info("watcher.changed", "changed", len(changed), "removed", len(removed))
	return w.onChange(ctx, changed, removed)
}

func hashFile(path string) (uint64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return xxh3.Hash(data), nil
}
