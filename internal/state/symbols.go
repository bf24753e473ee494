// Package state extracts NetLogo symbol tables: a regex pre-pass that survives
// syntax errors and a precise pass over the syntax tree. Both tiers implement
// Symbols so consumers can use whichever is freshest.
package state

import (
	"strings"

	"github.com/DeusData/netlogo-intel/internal/breeds"
	"github.com/DeusData/netlogo-intel/internal/primitives"
)

// Symbols answers name questions about user declarations.
type Symbols interface {
	breeds.Lookup
	IsGlobal(name string) bool
	IsWidgetGlobal(name string) bool
	HasExtension(name string) bool
	// ProcedureArity reports a user procedure's argument count and kind.
	ProcedureArity(name string) (arity int, reporter bool, ok bool)
}

// Class is what a word denotes.
type Class uint8

const (
	ClassUnknown Class = iota
	ClassKeyword
	ClassConstant
	ClassPrimitive
	ClassProcedure
	ClassGlobal
	ClassWidgetGlobal
	ClassBuiltinVariable
	ClassBreedVariable
	ClassBreed
	ClassBreedPrimitive
)

var classNames = [...]string{
	ClassUnknown:         "unknown",
	ClassKeyword:         "keyword",
	ClassConstant:        "constant",
	ClassPrimitive:       "primitive",
	ClassProcedure:       "procedure",
	ClassGlobal:          "global",
	ClassWidgetGlobal:    "widget-global",
	ClassBuiltinVariable: "builtin-variable",
	ClassBreedVariable:   "breed-variable",
	ClassBreed:           "breed",
	ClassBreedPrimitive:  "breed-primitive",
}

func (c Class) String() string { return classNames[c] }

// Word is the classification of one word.
type Word struct {
	Class     Class
	Primitive *primitives.Primitive // primitives and breed primitives
	Variable  primitives.Variable   // built-in variables
	Breed     breeds.Result         // breed names, variables and primitives
	Arity     int                   // user procedures
	Reporter  bool                  // user procedures
	// Unsupported marks a known primitive this editor cannot run.
	Unsupported bool
	// MissingExtension marks an extension primitive whose extension is not declared.
	MissingExtension bool
}

// Classify resolves word against the keyword list, the catalog and the user
// symbols. User names shadow unsupported primitives.
func Classify(sym Symbols, cat *primitives.Catalog, word string) Word {
	w := strings.ToLower(word)
	switch {
	case primitives.IsKeyword(w) || w == "let" || w == "set":
		return Word{Class: ClassKeyword}
	case primitives.IsConstant(w):
		return Word{Class: ClassConstant}
	}
	if cat != nil {
		if p, ok := cat.Lookup(w); ok {
			unsupported := cat.IsUnsupported(w)
			if !unsupported || !isUserName(sym, w) {
				out := Word{Class: ClassPrimitive, Primitive: p, Unsupported: unsupported}
				if p.Extension != "" && sym != nil && !sym.HasExtension(p.Extension) {
					out.MissingExtension = true
				}
				return out
			}
		}
	}
	if sym != nil {
		if arity, reporter, ok := sym.ProcedureArity(w); ok {
			return Word{Class: ClassProcedure, Arity: arity, Reporter: reporter}
		}
		if sym.IsGlobal(w) {
			return Word{Class: ClassGlobal}
		}
		if sym.IsWidgetGlobal(w) {
			return Word{Class: ClassWidgetGlobal}
		}
	}
	r := breeds.Match(w, sym, false)
	if r.Valid && r.Kind == breeds.KindVariable {
		return Word{Class: ClassBreedVariable, Breed: r}
	}
	if v, ok := primitives.BuiltinVariable(w); ok {
		return Word{Class: ClassBuiltinVariable, Variable: v}
	}
	if r.Valid {
		switch r.Kind {
		case breeds.KindSingular, breeds.KindPlural:
			return Word{Class: ClassBreed, Breed: r}
		case breeds.KindPrimitive:
			out := Word{Class: ClassBreedPrimitive, Breed: r}
			if cat != nil {
				out.Primitive, _ = cat.Prototype(r.Prototype)
			}
			return out
		}
	}
	return Word{Class: ClassUnknown, Breed: r}
}

func isUserName(sym Symbols, w string) bool {
	if sym == nil {
		return false
	}
	if _, _, ok := sym.ProcedureArity(w); ok {
		return true
	}
	if sym.IsGlobal(w) || sym.IsWidgetGlobal(w) {
		return true
	}
	_, ok := sym.BreedVariableOwner(w)
	return ok
}

// BreedKinds maps a breed type to the agent kinds its members run as.
func BreedKinds(t breeds.Type) (primitives.AgentContext, bool) {
	switch {
	case t == breeds.Turtle:
		return primitives.AgentContext{Turtle: true}, true
	case t == breeds.Patch:
		return primitives.AgentContext{Patch: true}, true
	case t.IsLink():
		return primitives.AgentContext{Link: true}, true
	}
	return primitives.AnyContext(), false
}

// BreedVariableContext is the context that may read a variable owned by a
// breed of type t. Turtles read the patch they stand on.
func BreedVariableContext(t breeds.Type) (primitives.AgentContext, bool) {
	switch {
	case t == breeds.Turtle:
		return primitives.AgentContext{Turtle: true}, true
	case t == breeds.Patch:
		return primitives.AgentContext{Turtle: true, Patch: true}, true
	case t.IsLink():
		return primitives.AgentContext{Link: true}, true
	}
	return primitives.AnyContext(), false
}

// Layer answers from the first Symbols that knows a name.
type Layer []Symbols

func (l Layer) BreedByPlural(p string) (breeds.Info, bool) {
	for _, s := range l {
		if s == nil {
			continue
		}
		if info, ok := s.BreedByPlural(p); ok {
			return info, true
		}
	}
	return breeds.Info{}, false
}

func (l Layer) BreedBySingular(name string) (breeds.Info, bool) {
	for _, s := range l {
		if s == nil {
			continue
		}
		if info, ok := s.BreedBySingular(name); ok {
			return info, true
		}
	}
	return breeds.Info{}, false
}

func (l Layer) BreedVariableOwner(name string) (string, bool) {
	for _, s := range l {
		if s == nil {
			continue
		}
		if owner, ok := s.BreedVariableOwner(name); ok {
			return owner, true
		}
	}
	return "", false
}

func (l Layer) IsGlobal(name string) bool {
	for _, s := range l {
		if s != nil && s.IsGlobal(name) {
			return true
		}
	}
	return false
}

func (l Layer) IsWidgetGlobal(name string) bool {
	for _, s := range l {
		if s != nil && s.IsWidgetGlobal(name) {
			return true
		}
	}
	return false
}

func (l Layer) HasExtension(name string) bool {
	for _, s := range l {
		if s != nil && s.HasExtension(name) {
			return true
		}
	}
	return false
}

func (l Layer) ProcedureArity(name string) (int, bool, bool) {
	for _, s := range l {
		if s == nil {
			continue
		}
		if n, rep, ok := s.ProcedureArity(name); ok {
			return n, rep, true
		}
	}
	return 0, false, false
}
