package editor

import (
	"github.com/DeusData/netlogo-intel/internal/lint"
	"github.com/DeusData/netlogo-intel/internal/parser"
	"github.com/DeusData/netlogo-intel/internal/primitives"
	"github.com/DeusData/netlogo-intel/internal/repair"
	"github.com/DeusData/netlogo-intel/internal/state"
	"github.com/DeusData/netlogo-intel/internal/syntax"
)

// Document is one editor buffer. All fields are guarded by the owning
// workspace's lock.
type Document struct {
	id      string
	mode    syntax.Mode
	svc     *parser.Service
	version uint64
	cache   *lint.Cache

	// fragment is the document's own symbol table, extracted from tree with
	// the pre-pass whose fingerprint is fp.
	tree     *syntax.Tree
	fp       uint64
	fragment *state.LintContext

	shared   *Shared
	external map[string][]lint.ExternalError
}

func newDocument(id string, mode syntax.Mode, cat *primitives.Catalog) *Document {
	return &Document{
		id:       id,
		mode:     mode,
		svc:      parser.NewService(mode, parser.NewResolver(nil, cat)),
		cache:    lint.NewCache(),
		external: map[string][]lint.ExternalError{},
	}
}

// ID returns the editor id.
func (d *Document) ID() string { return d.id }

func (d *Document) setMode(mode syntax.Mode) {
	d.mode = mode
	d.svc.SetMode(mode)
}

func (d *Document) setCode(code string) {
	d.svc.SetSource(code)
	d.version++
}

// extract brings the fragment up to date. It is recomputed only when the
// tree or the pre-pass changed since the last call.
func (d *Document) extract(pre *state.PreprocessContext, cat *primitives.Catalog, fp uint64) *state.LintContext {
	tree := d.svc.ForceParse()
	if d.fragment != nil && tree == d.tree && fp == d.fp {
		return d.fragment
	}
	d.tree, d.fp = tree, fp
	d.fragment = state.Extract(tree, pre, cat, d.id)
	return d.fragment
}

// view pairs the document's tree with the shared tables. The document's own
// snippet is attached to a shallow copy so the shared value stays untouched.
func (d *Document) view(cat *primitives.Catalog) *state.View {
	sh := d.shared
	lc := sh.Lint
	if d.fragment != nil && d.fragment.Snippet != nil {
		cp := *sh.Lint
		cp.Snippet = d.fragment.Snippet
		lc = &cp
	}
	return &state.View{
		Tree:     d.tree,
		Pre:      sh.Preprocess,
		Lint:     lc,
		Catalog:  cat,
		EditorID: d.id,
		Version:  sh.Version,
	}
}

func (d *Document) externalDiagnostics() []lint.Diagnostic {
	size := len(d.svc.Source())
	var out []lint.Diagnostic
	for _, source := range []string{lint.SourceCompiler, lint.SourceRuntime} {
		out = append(out, lint.ExternalErrors(source, d.external[source], size)...)
	}
	return out
}

func (d *Document) prettify(cat *primitives.Catalog) {
	src := d.svc.Source()
	out := repair.PrettifyWith(src, d.mode, cat)
	if out != src {
		d.setCode(out)
	}
}
