package lint

import (
	"strings"

	"github.com/DeusData/netlogo-intel/internal/breeds"
	"github.com/DeusData/netlogo-intel/internal/repair"
	"github.com/DeusData/netlogo-intel/internal/state"
	"github.com/DeusData/netlogo-intel/internal/syntax"
)

// Message keys of the identifier and breed linters.
const (
	KeyUnrecognizedIdentifier = "Unrecognized identifier _"
	KeyUnsupported            = "Unsupported statement _"
	KeyMissingExtension       = "Missing extension _ for _"
	KeyUnrecognizedBreed      = "Unrecognized breed name _"
	KeyInvalidBreed           = "Invalid breed declaration _"
	KeyAddBreed               = "Add breed _ _"
)

// references calls fn for every word that uses a name: identifiers and the
// heads of calls, excluding declared names and visible locals.
func references(pass *Pass, fn func(n *syntax.Node)) {
	syntax.Walk(pass.Tree.Root, func(n *syntax.Node) bool {
		switch n.Kind {
		case syntax.Identifier, syntax.Command, syntax.Reporter:
		default:
			return true
		}
		if declared(n) || pass.Local(n.Text, n.From) {
			return false
		}
		fn(n)
		return false
	})
}

// unknownExtension reports whether word belongs to a declared extension the
// catalog has no primitives for; such words cannot be checked.
func unknownExtension(pass *Pass, word string) bool {
	ext, _, ok := strings.Cut(word, ":")
	if !ok {
		return false
	}
	return len(pass.Catalog.Extension(ext)) == 0
}

// Identifiers requires every name to resolve to a declaration, a primitive or
// a visible local. Unsupported primitives only warn, and user declarations
// shadow them.
var Identifiers = Linter{
	Name: "identifiers",
	Doc:  "Report names that resolve to nothing and primitives this editor does not support.",
	Run: func(pass *Pass) {
		sym := pass.View.Symbols()
		references(pass, func(n *syntax.Node) {
			w := pass.Classify(n.Text)
			switch w.Class {
			case state.ClassUnknown:
				if breeds.Match(n.Text, sym, true).Template != nil || unknownExtension(pass, n.Text) {
					return
				}
				pass.Reportf(n, SeverityError, KeyUnrecognizedIdentifier, n.Text)
			case state.ClassPrimitive:
				switch {
				case w.MissingExtension:
					pass.Reportf(n, SeverityError, KeyMissingExtension, w.Primitive.Extension, n.Text)
				case w.Unsupported:
					pass.Reportf(n, SeverityWarning, KeyUnsupported, n.Text)
				}
			}
		})
	},
}

// BreedNames checks words shaped like breed primitives against the declared
// breeds and offers to declare the missing breed.
var BreedNames = Linter{
	Name: "breed-names",
	Doc:  "Report breed primitives whose breed is not declared.",
	Run: func(pass *Pass) {
		for _, n := range pass.Tree.Root.Children {
			if n.Kind != syntax.Breed {
				continue
			}
			if len(n.ChildrenOf(syntax.Identifier)) != 2 {
				pass.Reportf(n, SeverityError, KeyInvalidBreed, pass.Text(n))
			}
		}
		sym := pass.View.Symbols()
		references(pass, func(n *syntax.Node) {
			if pass.Classify(n.Text).Class != state.ClassUnknown {
				return
			}
			r := breeds.Match(n.Text, sym, true)
			if r.Template == nil {
				return
			}
			d := Diagnostic{From: n.From, To: n.To, Severity: SeverityError, Key: KeyUnrecognizedBreed, Args: []string{n.Text}}
			if r.Guessed {
				if changes := repair.AddBreed(pass.View, r.Type, r.Plural, r.Singular); len(changes) > 0 {
					d.Fixes = []Fix{{Title: KeyAddBreed, Args: []string{r.Plural, r.Singular}, Changes: changes}}
				}
			}
			pass.Report(d)
		})
	},
}
