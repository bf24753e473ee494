// Package editor coordinates the documents of one project. Each document
// keeps its own tree and symbol fragment; the workspace merges the fragments
// into an immutable Shared value and hands the same pointer to every
// document. A change in any document replaces Shared with a new version.
package editor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/DeusData/netlogo-intel/internal/assist"
	"github.com/DeusData/netlogo-intel/internal/lint"
	"github.com/DeusData/netlogo-intel/internal/metrics"
	"github.com/DeusData/netlogo-intel/internal/parser"
	"github.com/DeusData/netlogo-intel/internal/primitives"
	"github.com/DeusData/netlogo-intel/internal/repair"
	"github.com/DeusData/netlogo-intel/internal/state"
	"github.com/DeusData/netlogo-intel/internal/syntax"
	"github.com/DeusData/netlogo-intel/internal/textedit"
)

// ErrUnknownDocument is returned for an editor id that is not open.
var ErrUnknownDocument = errors.New("editor: unknown document")

// maxAttempts bounds how often a diagnostics run restarts after a
// concurrent write made its snapshot stale.
const maxAttempts = 4

// Shared is the merged symbol state of every document. It is never mutated
// after publication.
type Shared struct {
	Lint       *state.LintContext
	Preprocess *state.PreprocessContext
	Version    uint64
}

// Options configures a workspace.
type Options struct {
	Catalog *primitives.Catalog
	Repair  repair.Options
}

// Workspace owns a set of documents sharing one namespace.
type Workspace struct {
	mu      sync.Mutex
	cat     *primitives.Catalog
	repair  repair.Options
	docs    []*Document
	byID    map[string]*Document
	widgets []string
	shared  *Shared

	completer *assist.Completer
	afterLint func() // called after each unlocked lint pass
}

// New returns an empty workspace.
func New(opts Options) *Workspace {
	if opts.Catalog == nil {
		opts.Catalog = primitives.Default()
	}
	if opts.Repair.Catalog == nil {
		opts.Repair.Catalog = opts.Catalog
	}
	return &Workspace{
		cat:       opts.Catalog,
		repair:    opts.Repair,
		byID:      map[string]*Document{},
		shared:    &Shared{Lint: state.NewLintContext(), Preprocess: state.NewPreprocessContext()},
		completer: assist.NewCompleter(opts.Catalog),
	}
}

// Open adds a document. An empty id is replaced by a fresh uuid; the id in
// use is returned. Documents are layered in the order they are opened.
func (w *Workspace) Open(id string, mode syntax.Mode, code string) string {
	w.mu.Lock()
	defer w.mu.Unlock()
	if id == "" {
		id = uuid.NewString()
	}
	d, ok := w.byID[id]
	if !ok {
		d = newDocument(id, mode, w.cat)
		w.docs = append(w.docs, d)
		w.byID[id] = d
	} else {
		d.setMode(mode)
	}
	d.setCode(code)
	w.refresh()
	slog.Debug("editor.open", "editor", id, "mode", mode.String(), "documents", len(w.docs))
	return id
}

// Close removes a document and republishes the shared state without it.
func (w *Workspace) Close(id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	d, ok := w.byID[id]
	if !ok {
		return fmt.Errorf("close %q: %w", id, ErrUnknownDocument)
	}
	delete(w.byID, id)
	for i, have := range w.docs {
		if have == d {
			w.docs = append(w.docs[:i], w.docs[i+1:]...)
			break
		}
	}
	w.refresh()
	return nil
}

// IDs lists the open documents in layering order.
func (w *Workspace) IDs() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, len(w.docs))
	for i, d := range w.docs {
		out[i] = d.id
	}
	return out
}

func (w *Workspace) doc(id string) (*Document, error) {
	d, ok := w.byID[id]
	if !ok {
		return nil, fmt.Errorf("document %q: %w", id, ErrUnknownDocument)
	}
	return d, nil
}

// refresh re-runs the pre-pass over every document, flushes their parsers,
// re-extracts fragments that changed and publishes a new Shared. Callers
// hold w.mu.
func (w *Workspace) refresh() {
	start := time.Now()
	pre := state.NewPreprocessContext()
	for i, d := range w.docs {
		pre.Add(i, d.svc.Source())
	}
	pre.SetWidgetGlobals(w.widgets)
	res := parser.NewResolver(pre, w.cat)

	fragments := make([]*state.LintContext, 0, len(w.docs))
	for _, d := range w.docs {
		d.svc.SetResolver(res)
		fragments = append(fragments, d.extract(pre, w.cat, res.Fingerprint()))
	}
	merged := state.Merge(fragments...)
	for _, name := range w.widgets {
		if _, ok := merged.WidgetGlobals[name]; !ok {
			merged.WidgetGlobals[name] = ""
		}
	}
	w.shared = &Shared{Lint: merged, Preprocess: pre, Version: w.shared.Version + 1}
	for _, d := range w.docs {
		d.shared = w.shared
	}
	metrics.Since("extract", start)
}

// flush folds queued edits into the trees when any document has some.
func (w *Workspace) flush() {
	for _, d := range w.docs {
		if d.svc.Pending() > 0 {
			w.refresh()
			return
		}
	}
}

// ForceParse flushes pending edits of every document.
func (w *Workspace) ForceParse() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.flush()
}

// Shared returns the current merged state.
func (w *Workspace) Shared() *Shared {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.flush()
	return w.shared
}

// GetState returns the merged tree-derived symbol tables.
func (w *Workspace) GetState() *state.LintContext { return w.Shared().Lint }

// GetPreprocessState returns the merged pattern-derived symbol tables.
func (w *Workspace) GetPreprocessState() *state.PreprocessContext { return w.Shared().Preprocess }

// SetCode replaces the whole text of a document.
func (w *Workspace) SetCode(id, code string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	d, err := w.doc(id)
	if err != nil {
		return err
	}
	d.setCode(code)
	w.refresh()
	return nil
}

// GetCode returns the current text of a document, queued edits included.
func (w *Workspace) GetCode(id string) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	d, err := w.doc(id)
	if err != nil {
		return "", err
	}
	return d.svc.Source(), nil
}

// Edit queues a replacement of [from, to) with insert. The trees catch up on
// the next query or ForceParse.
func (w *Workspace) Edit(id string, from, to int, insert string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	d, err := w.doc(id)
	if err != nil {
		return err
	}
	size := len(d.svc.Source())
	if from < 0 || to < from || to > size {
		return fmt.Errorf("edit [%d,%d) outside document of %d bytes", from, to, size)
	}
	d.svc.Edit(from, to, insert)
	d.version++
	return nil
}

// ApplyFix applies the changes of a quick fix to a document. Fixes are
// offered by diagnostics and only ever applied through here, after the lint
// pass that produced them has finished.
func (w *Workspace) ApplyFix(id string, fix lint.Fix) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	d, err := w.doc(id)
	if err != nil {
		return err
	}
	d.setCode(textedit.Apply(d.svc.Source(), fix.Changes))
	w.refresh()
	slog.Debug("editor.fix", "editor", id, "title", fix.Title, "changes", len(fix.Changes))
	return nil
}

// SetWidgetVariables declares the globals that come from interface widgets.
func (w *Workspace) SetWidgetVariables(names []string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.widgets = append([]string(nil), names...)
	w.refresh()
}

// SetCompilerErrors replaces the compiler errors shown for a document.
func (w *Workspace) SetCompilerErrors(id string, errs []lint.ExternalError) error {
	return w.setExternal(id, lint.SourceCompiler, errs)
}

// SetRuntimeErrors replaces the runtime errors shown for a document.
func (w *Workspace) SetRuntimeErrors(id string, errs []lint.ExternalError) error {
	return w.setExternal(id, lint.SourceRuntime, errs)
}

func (w *Workspace) setExternal(id, source string, errs []lint.ExternalError) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	d, err := w.doc(id)
	if err != nil {
		return err
	}
	d.external[source] = append([]lint.ExternalError(nil), errs...)
	return nil
}

// View returns a consistent snapshot of a document for read-only queries.
func (w *Workspace) View(id string) (*state.View, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	d, err := w.doc(id)
	if err != nil {
		return nil, err
	}
	w.flush()
	return d.view(w.cat), nil
}

// Diagnostics lints a document against the current shared state. The lint
// pass runs without the workspace lock; a result computed from a snapshot
// that a concurrent write superseded is discarded and recomputed. The last
// attempt holds the lock throughout, so a stale result is never returned.
func (w *Workspace) Diagnostics(ctx context.Context, id string) ([]lint.Diagnostic, error) {
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		final := attempt >= maxAttempts
		w.mu.Lock()
		d, err := w.doc(id)
		if err != nil {
			w.mu.Unlock()
			return nil, err
		}
		w.flush()
		v := d.view(w.cat)
		docVersion, external := d.version, d.externalDiagnostics()
		if final {
			diags := d.cache.Lint(v, docVersion, v.Version)
			w.mu.Unlock()
			return collect(diags, external), nil
		}
		w.mu.Unlock()

		diags := d.cache.Lint(v, docVersion, v.Version)
		if w.afterLint != nil {
			w.afterLint()
		}

		w.mu.Lock()
		stale := d.version != docVersion || w.shared.Version != v.Version
		w.mu.Unlock()
		if stale {
			slog.Debug("editor.stale", "editor", id, "attempt", attempt)
			continue
		}
		return collect(diags, external), nil
	}
}

func collect(diags, external []lint.Diagnostic) []lint.Diagnostic {
	out := make([]lint.Diagnostic, 0, len(diags)+len(external))
	out = append(out, diags...)
	out = append(out, external...)
	lint.Sort(out)
	return out
}

// Tooltip describes the range [from, to) of a document.
func (w *Workspace) Tooltip(id string, from, to int) (assist.Info, bool, error) {
	v, err := w.View(id)
	if err != nil {
		return assist.Info{}, false, err
	}
	info, ok := assist.Tooltip(v, from, to)
	return info, ok, nil
}

// Complete lists completions for the word ending at pos.
func (w *Workspace) Complete(id string, pos int) (assist.Completion, error) {
	v, err := w.View(id)
	if err != nil {
		return assist.Completion{}, err
	}
	return w.completer.Complete(v, pos), nil
}

// Prettify rewrites one document in canonical layout.
func (w *Workspace) Prettify(id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	d, err := w.doc(id)
	if err != nil {
		return err
	}
	d.prettify(w.cat)
	w.refresh()
	return nil
}

// PrettifyAll rewrites every document in canonical layout.
func (w *Workspace) PrettifyAll() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, d := range w.docs {
		d.prettify(w.cat)
	}
	w.refresh()
}

// Snapshot captures the declarations of the whole workspace, suitable as
// the parent of FixGeneratedCode.
func (w *Workspace) Snapshot() *repair.Snapshot {
	return repair.BuildSnapshot(w.Shared().Lint)
}

// FixGeneratedCode repairs source with the workspace's repair options. The
// result is returned, not stored.
func (w *Workspace) FixGeneratedCode(source string, parent *repair.Snapshot) string {
	return repair.FixGeneratedCode(source, parent, w.repair)
}
