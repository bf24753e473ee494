package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu      sync.Mutex
	changed []string
	removed []string
	calls   int
}

func (r *recorder) fn(_ context.Context, changed, removed []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	r.changed = append(r.changed, changed...)
	r.removed = append(r.removed, removed...)
	return nil
}

func (r *recorder) snapshot() (changed, removed []string, calls int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.changed...), append([]string(nil), r.removed...), r.calls
}

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func newWatcher(t *testing.T, root string, rec *recorder, ignore ...string) *Watcher {
	t.Helper()
	w, err := New(root, Options{Debounce: 20 * time.Millisecond, Ignore: ignore}, rec.fn)
	require.NoError(t, err)
	t.Cleanup(func() { w.fsw.Close() })
	require.NoError(t, w.baseline(context.Background()))
	return w
}

func TestFlushReportsOnlyContentChanges(t *testing.T) {
	dir := t.TempDir()
	model := filepath.Join(dir, "model.nlogo")
	lib := filepath.Join(dir, "lib.nls")
	write(t, model, "to go\nend\n")
	write(t, lib, "to helper\nend\n")

	rec := &recorder{}
	w := newWatcher(t, dir, rec)

	w.queue(model)
	require.NoError(t, w.flush(context.Background()))
	_, _, calls := rec.snapshot()
	assert.Equal(t, 0, calls, "touching without editing reports nothing")

	write(t, model, "to go\n  tick\nend\n")
	require.NoError(t, os.Remove(lib))
	w.queue(model)
	w.queue(lib)
	require.NoError(t, w.flush(context.Background()))

	changed, removed, calls := rec.snapshot()
	assert.Equal(t, 1, calls)
	assert.Equal(t, []string{w.root + string(filepath.Separator) + "model.nlogo"}, changed)
	assert.Equal(t, []string{w.root + string(filepath.Separator) + "lib.nls"}, removed)
}

func TestQueueFiltersFiles(t *testing.T) {
	dir := t.TempDir()
	rec := &recorder{}
	w := newWatcher(t, dir, rec, "drafts/**")

	w.queue(filepath.Join(w.root, "notes.txt"))
	w.queue(filepath.Join(w.root, "drafts", "old.nls"))
	assert.Empty(t, w.pending)

	w.queue(filepath.Join(w.root, "new.nls"))
	assert.Len(t, w.pending, 1)
}

func TestNewFileIsReported(t *testing.T) {
	dir := t.TempDir()
	rec := &recorder{}
	w := newWatcher(t, dir, rec)

	path := filepath.Join(w.root, "fresh.nls")
	write(t, path, "to setup\nend\n")
	w.queue(path)
	require.NoError(t, w.flush(context.Background()))

	changed, _, _ := rec.snapshot()
	assert.Equal(t, []string{path}, changed)
}

func TestRunPicksUpEdits(t *testing.T) {
	dir := t.TempDir()
	model := filepath.Join(dir, "model.nlogo")
	write(t, model, "to go\nend\n")

	rec := &recorder{}
	w, err := New(dir, Options{Debounce: 20 * time.Millisecond}, rec.fn)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Wait until the baseline is recorded before editing.
	require.Eventually(t, func() bool {
		w.mu.Lock()
		defer w.mu.Unlock()
		return len(w.hashes) == 1
	}, 2*time.Second, 10*time.Millisecond)

	write(t, model, "to go\n  tick\nend\n")
	assert.Eventually(t, func() bool {
		changed, _, _ := rec.snapshot()
		return len(changed) > 0
	}, 3*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}
