// Package parser is the syntax tree service: it keeps a document's tree
// current under incremental edits and adapts the primitive catalog and the
// symbol pre-pass into the resolver the NetLogo parser consumes.
package parser

import (
	"log/slog"
	"sync"

	"github.com/DeusData/netlogo-intel/internal/breeds"
	"github.com/DeusData/netlogo-intel/internal/primitives"
	"github.com/DeusData/netlogo-intel/internal/state"
	"github.com/DeusData/netlogo-intel/internal/syntax"
)

// Resolver classifies words for the parser from the catalog and the regex
// tier symbols.
type Resolver struct {
	pre *state.PreprocessContext
	cat *primitives.Catalog
	fp  uint64
}

// NewResolver builds a resolver. A nil catalog means the default one.
func NewResolver(pre *state.PreprocessContext, cat *primitives.Catalog) *Resolver {
	if cat == nil {
		cat = primitives.Default()
	}
	return &Resolver{pre: pre, cat: cat, fp: pre.Fingerprint()}
}

// Fingerprint implements syntax.Resolver.
func (r *Resolver) Fingerprint() uint64 { return r.fp }

// Resolve implements syntax.Resolver.
func (r *Resolver) Resolve(word string) syntax.Signature {
	var sym state.Symbols
	if r.pre != nil {
		sym = r.pre
	}
	w := state.Classify(sym, r.cat, word)
	switch w.Class {
	case state.ClassConstant:
		return syntax.Signature{Class: syntax.WordConstant}
	case state.ClassPrimitive, state.ClassBreedPrimitive:
		if w.Primitive != nil {
			return Signature(w.Primitive)
		}
		return syntax.Signature{Class: syntax.WordReporter, Precedence: primitives.PrecNormal}
	case state.ClassProcedure:
		sig := syntax.Signature{
			Class:      syntax.WordCommand,
			Args:       make([]syntax.Shape, w.Arity),
			Default:    w.Arity,
			Precedence: primitives.PrecNormal,
		}
		if w.Reporter {
			sig.Class = syntax.WordReporter
		}
		return sig
	case state.ClassGlobal, state.ClassWidgetGlobal, state.ClassBuiltinVariable, state.ClassBreedVariable:
		return syntax.Signature{Class: syntax.WordVariable}
	case state.ClassBreed:
		sig := syntax.Signature{Class: syntax.WordReporter, Precedence: primitives.PrecNormal}
		if w.Breed.Kind == breeds.KindSingular {
			// wolf 3
			sig.Args = []syntax.Shape{syntax.ShapeAny}
			sig.Default = 1
		}
		return sig
	}
	return syntax.Signature{}
}

// Signature derives the parse signature of a primitive.
func Signature(p *primitives.Primitive) syntax.Signature {
	sig := syntax.Signature{
		Class:      syntax.WordReporter,
		Infix:      p.IsInfix(),
		Default:    p.DefaultArgs(),
		Variadic:   p.Variadic(),
		Precedence: p.Precedence,
		RightAssoc: p.RightAssociative,
	}
	if p.IsCommand() {
		sig.Class = syntax.WordCommand
	}
	for _, a := range p.Right {
		sig.Args = append(sig.Args, shapeOf(a.Types))
	}
	for i, a := range p.Right {
		if a.CanRepeat {
			sig.Repeat, sig.RepeatIndex = true, i
			break
		}
	}
	return sig
}

func shapeOf(t primitives.Type) syntax.Shape {
	switch {
	case t.Only(primitives.TypeCommandBlock):
		return syntax.ShapeCommandBlock
	case t.Only(primitives.TypeReporterBlock):
		return syntax.ShapeReporterBlock
	case t.Only(primitives.TypeCommand):
		return syntax.ShapeAnonCommand
	case t.Only(primitives.TypeReporter):
		return syntax.ShapeAnonReporter
	case t.Only(primitives.TypeList):
		return syntax.ShapeList
	case t.Has(primitives.TypeCommandBlock) && !t.Has(primitives.TypeList):
		return syntax.ShapeCommandBlock
	}
	return syntax.ShapeAny
}

// Service keeps the current tree of one document. Edits are queued and
// folded into the tree by ForceParse.
type Service struct {
	mu      sync.Mutex
	mode    syntax.Mode
	res     syntax.Resolver
	source  string
	tree    *syntax.Tree
	pending []syntax.Edit
}

// NewService returns a service for an empty document.
func NewService(mode syntax.Mode, res syntax.Resolver) *Service {
	return &Service{mode: mode, res: res}
}

// SetSource replaces the whole document; the next ForceParse is a full parse.
func (s *Service) SetSource(src string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.source = src
	s.tree = nil
	s.pending = nil
}

// SetMode changes the parse mode and drops the current tree.
func (s *Service) SetMode(mode syntax.Mode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mode != mode {
		s.mode = mode
		s.tree = nil
		s.pending = nil
	}
}

// SetResolver swaps the resolver. Trees parsed with a different fingerprint
// are re-parsed in full on the next flush.
func (s *Service) SetResolver(res syntax.Resolver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.res = res
}

// Edit queues a replacement of [from, to) with insert, in coordinates of the
// source with all earlier edits applied.
func (s *Service) Edit(from, to int, insert string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := syntax.Edit{From: from, To: to, Insert: insert}
	s.source = e.Apply(s.source)
	if s.tree != nil {
		s.pending = append(s.pending, e)
	}
}

// Source returns the document text including queued edits.
func (s *Service) Source() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.source
}

// Pending reports how many edits await ForceParse.
func (s *Service) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// ForceParse flushes queued edits and returns the current tree.
func (s *Service) ForceParse() *syntax.Tree {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tree == nil || (len(s.pending) == 0 && s.res != nil && s.tree.Fingerprint != s.res.Fingerprint()) {
		s.tree = syntax.Parse(s.source, s.mode, s.res)
		s.pending = nil
		return s.tree
	}
	for _, e := range s.pending {
		s.tree = syntax.Reparse(s.tree, e, s.res)
	}
	if n := len(s.pending); n > 0 {
		slog.Debug("parser.reparse", "edits", n, "bytes", len(s.source))
	}
	s.pending = nil
	return s.tree
}

// Analyze runs the whole single-document pipeline: pre-pass, parse and
// extraction.
func Analyze(src string, mode syntax.Mode, cat *primitives.Catalog, editorID string) *state.View {
	if cat == nil {
		cat = primitives.Default()
	}
	pre := state.Preprocess(src)
	tree := syntax.Parse(src, mode, NewResolver(pre, cat))
	return &state.View{
		Tree:     tree,
		Pre:      pre,
		Lint:     state.Extract(tree, pre, cat, editorID),
		Catalog:  cat,
		EditorID: editorID,
	}
}

// Walk traverses the subtree rooted at n depth-first.
func Walk(n *syntax.Node, fn syntax.WalkFunc) { syntax.Walk(n, fn) }

// NodeText returns the source text covered by n.
func NodeText(n *syntax.Node, source []byte) string {
	if n == nil || n.From < 0 || n.To > len(source) || n.From > n.To {
		return ""
	}
	return string(source[n.From:n.To])
}
