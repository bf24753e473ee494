package state

import (
	"github.com/DeusData/netlogo-intel/internal/primitives"
	"github.com/DeusData/netlogo-intel/internal/syntax"
)

// View is one consistent snapshot of a document: its tree and the symbol
// tables extracted from the same version.
type View struct {
	Tree     *syntax.Tree
	Pre      *PreprocessContext
	Lint     *LintContext
	Catalog  *primitives.Catalog
	EditorID string
	Version  uint64
}

// Symbols layers the tree tier over the regex tier.
func (v *View) Symbols() Symbols { return Layer{v.Lint, v.Pre} }

// Mode returns the parse mode of the view's tree.
func (v *View) Mode() syntax.Mode {
	if v.Tree == nil {
		return syntax.Model
	}
	return v.Tree.Mode
}

// Classify resolves a word against the view's symbols and catalog.
func (v *View) Classify(word string) Word {
	return Classify(v.Symbols(), v.Catalog, word)
}

// Source returns the document text.
func (v *View) Source() string {
	if v.Tree == nil {
		return ""
	}
	return v.Tree.Source
}
