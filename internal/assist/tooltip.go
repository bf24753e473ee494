// Package assist answers editor questions about a position in a document:
// what a word is (tooltips and jump-to-definition) and which words may be
// typed there (completion).
package assist

import (
	"strconv"

	"github.com/DeusData/netlogo-intel/internal/breeds"
	"github.com/DeusData/netlogo-intel/internal/state"
	"github.com/DeusData/netlogo-intel/internal/syntax"
)

// Kind classifies what a tooltip or completion item names.
type Kind string

const (
	KindSyntax          Kind = "syntax"
	KindKeyword         Kind = "keyword"
	KindConstant        Kind = "constant"
	KindPrimitive       Kind = "primitive"
	KindProcedure       Kind = "procedure"
	KindGlobal          Kind = "global"
	KindWidgetGlobal    Kind = "widget-global"
	KindBuiltinVariable Kind = "builtin-variable"
	KindBreed           Kind = "breed"
	KindBreedVariable   Kind = "breed-variable"
	KindBreedPrimitive  Kind = "breed-primitive"
	KindLocal           Kind = "local"
	KindArgument        Kind = "argument"
	KindExtension       Kind = "extension"
)

// Tooltip message keys. Primitives, keywords and constants use their own
// name as the key.
const (
	KeyProcedureCommand  = "Command procedure _ with _ inputs"
	KeyProcedureReporter = "Reporter procedure _ with _ inputs"
	KeyGlobal            = "Global variable _"
	KeyWidgetGlobal      = "Interface global _"
	KeyBreedPlural       = "Agentset of breed _"
	KeyBreedSingular     = "Agent of breed _"
	KeyBreedVariable     = "Variable _ of breed _"
	KeyBuiltinVariable   = "Built-in _ variable _"
	KeyLocal             = "Local variable _"
	KeyArgument          = "Input _"
	KeyExtension         = "Extension _"
)

// Span locates a definition, possibly in another document.
type Span struct {
	EditorID string `json:"editor_id"`
	From     int    `json:"from"`
	To       int    `json:"to"`
}

// Info is the resolved tooltip for a range.
type Info struct {
	From       int      `json:"from"`
	To         int      `json:"to"`
	Word       string   `json:"word"`
	Kind       Kind     `json:"kind"`
	Key        string   `json:"key"`
	Args       []string `json:"args,omitempty"`
	Definition *Span    `json:"definition,omitempty"`
}

// syntaxKeys names the nodes that have help of their own.
var syntaxKeys = map[syntax.Kind]string{
	syntax.Number:             "number",
	syntax.String:             "string",
	syntax.LineComment:        "comment",
	syntax.Arrow:              "->",
	syntax.List:               "list",
	syntax.AnonymousProcedure: "anonymous-procedure",
	syntax.CommandBlock:       "command-block",
	syntax.ReporterBlock:      "reporter-block",
}

// Tooltip resolves the most specific node covering [from, to). It reports
// false when nothing there has a tooltip.
func Tooltip(v *state.View, from, to int) (Info, bool) {
	if v == nil || v.Tree == nil {
		return Info{}, false
	}
	if to < from {
		from, to = to, from
	}
	n := v.Tree.ResolveAt(from, 1)
	for n != nil && n.To < to {
		n = n.Parent
	}
	if n == nil || n.Kind == syntax.Program {
		return Info{}, false
	}
	info := Info{From: n.From, To: n.To, Word: n.Text}

	if key, ok := syntaxKeys[n.Kind]; ok {
		info.Kind, info.Key = KindSyntax, key
		return info, true
	}
	if !n.Kind.IsLeaf() {
		return Info{}, false
	}
	if qualified(v, n, &info) {
		return info, true
	}
	switch n.Kind {
	case syntax.Identifier, syntax.Command, syntax.Reporter, syntax.ProcedureName, syntax.Constant:
		return lookup(v, n, info)
	}
	return Info{}, false
}

// qualified handles leaves whose parent decides what they are.
func qualified(v *state.View, n *syntax.Node, info *Info) bool {
	self := &Span{EditorID: v.EditorID, From: n.From, To: n.To}
	switch n.Kind {
	case syntax.Keyword, syntax.To, syntax.End:
		info.Kind, info.Key = KindKeyword, n.Text
		return true
	}
	if n.Kind != syntax.Identifier || n.Parent == nil {
		return false
	}
	switch n.Parent.Kind {
	case syntax.Extensions:
		info.Kind, info.Key, info.Args = KindExtension, KeyExtension, []string{n.Text}
		info.Definition = self
		return true
	case syntax.Arguments:
		owner := "->"
		if proc := n.Parent.Parent; proc != nil && proc.Kind == syntax.Procedure {
			owner = proc.Name()
		}
		info.Kind, info.Key, info.Args = KindArgument, KeyArgument, []string{n.Text, owner}
		info.Definition = self
		return true
	case syntax.Let:
		if n.Parent.Child(syntax.Identifier) == n {
			info.Kind, info.Key, info.Args = KindLocal, KeyLocal, []string{n.Text}
			info.Definition = self
			return true
		}
	}
	return false
}

func lookup(v *state.View, n *syntax.Node, info Info) (Info, bool) {
	name := n.Text
	w := v.Classify(name)
	switch w.Class {
	case state.ClassKeyword:
		info.Kind, info.Key = KindKeyword, name
		return info, true
	case state.ClassConstant:
		info.Kind, info.Key = KindConstant, name
		return info, true
	case state.ClassPrimitive:
		info.Kind, info.Key = KindPrimitive, w.Primitive.FullName()
		return info, true
	case state.ClassProcedure:
		key := KeyProcedureCommand
		if w.Reporter {
			key = KeyProcedureReporter
		}
		info.Kind, info.Key, info.Args = KindProcedure, key, []string{name, strconv.Itoa(w.Arity)}
		if p, ok := v.Lint.Procedures[name]; ok {
			info.Definition = &Span{EditorID: p.EditorID, From: p.NameFrom, To: p.NameTo}
		}
		return info, true
	}

	sym := v.Symbols()
	switch {
	case sym.IsGlobal(name):
		info.Kind, info.Key, info.Args = KindGlobal, KeyGlobal, []string{name}
		info.Definition = declaration(v, syntax.Globals, v.Lint.Globals[name], name)
		return info, true
	case sym.IsWidgetGlobal(name):
		info.Kind, info.Key, info.Args = KindWidgetGlobal, KeyWidgetGlobal, []string{name}
		return info, true
	}
	if b, singular, ok := breedNamed(v, name); ok {
		key := KeyBreedPlural
		if singular {
			key = KeyBreedSingular
		}
		info.Kind, info.Key, info.Args = KindBreed, key, []string{b.Plural}
		if rec := v.Lint.Breeds[b.Singular]; rec != nil && !rec.Default {
			info.Definition = &Span{EditorID: rec.EditorID, From: rec.From, To: rec.To}
		}
		return info, true
	}
	if owner, ok := sym.BreedVariableOwner(name); ok {
		info.Kind, info.Key, info.Args = KindBreedVariable, KeyBreedVariable, []string{name, owner}
		info.Definition = ownDeclaration(v, owner, name)
		return info, true
	}
	if proc := v.Lint.ProcedureAt(v.EditorID, n.From); proc.Visible(name, n.From) {
		return local(v, n, info)
	}
	switch w.Class {
	case state.ClassBuiltinVariable:
		info.Kind, info.Key, info.Args = KindBuiltinVariable, KeyBuiltinVariable, []string{w.Variable.Category.String(), name}
		return info, true
	case state.ClassBreedPrimitive:
		info.Kind, info.Key, info.Args = KindBreedPrimitive, w.Breed.Prototype, []string{w.Breed.Plural}
		return info, true
	}
	return Info{}, false
}

// breedNamed disambiguates a breed name by membership in either name set.
func breedNamed(v *state.View, name string) (breeds.Info, bool, bool) {
	sym := v.Symbols()
	if b, ok := sym.BreedByPlural(name); ok {
		return b, false, true
	}
	if b, ok := breeds.BuiltinByPlural(name); ok {
		return b, false, true
	}
	if b, ok := sym.BreedBySingular(name); ok {
		return b, true, true
	}
	if b, ok := breeds.BuiltinBySingular(name); ok {
		return b, true, true
	}
	return breeds.Info{}, false, false
}

// local finds the let or input that declares the variable at n, searching
// enclosing scopes from the innermost out.
func local(v *state.View, n *syntax.Node, info Info) (Info, bool) {
	name := n.Text
	info.Kind, info.Key, info.Args = KindLocal, KeyLocal, []string{name}
	for a := n.Parent; a != nil; a = a.Parent {
		for _, c := range a.Children {
			if c.From >= n.From {
				break
			}
			switch c.Kind {
			case syntax.Let:
				if id := c.Child(syntax.Identifier); id != nil && id.Text == name {
					info.Definition = &Span{EditorID: v.EditorID, From: id.From, To: id.To}
				}
			case syntax.Arguments:
				for _, id := range c.ChildrenOf(syntax.Identifier) {
					if id.Text == name {
						owner := "->"
						if a.Kind == syntax.Procedure {
							owner = a.Name()
						}
						info.Kind, info.Key, info.Args = KindArgument, KeyArgument, []string{name, owner}
						info.Definition = &Span{EditorID: v.EditorID, From: id.From, To: id.To}
					}
				}
			}
		}
		if info.Definition != nil {
			break
		}
	}
	return info, true
}

// declaration finds name in the first top-level declaration of kind, when
// the current document is the one declaring it.
func declaration(v *state.View, kind syntax.Kind, owner, name string) *Span {
	if owner != "" && owner != v.EditorID {
		return &Span{EditorID: owner, From: -1, To: -1}
	}
	for _, d := range v.Tree.Root.ChildrenOf(kind) {
		for _, id := range d.ChildrenOf(syntax.Identifier) {
			if id.Text == name {
				return &Span{EditorID: v.EditorID, From: id.From, To: id.To}
			}
		}
	}
	return nil
}

func ownDeclaration(v *state.View, plural, name string) *Span {
	for _, d := range v.Tree.Root.ChildrenOf(syntax.BreedsOwn) {
		if d.Head().Text != plural+"-own" {
			continue
		}
		for _, id := range d.ChildrenOf(syntax.Identifier) {
			if id.Text == name {
				return &Span{EditorID: v.EditorID, From: id.From, To: id.To}
			}
		}
	}
	return nil
}
