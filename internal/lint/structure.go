package lint

import (
	"github.com/DeusData/netlogo-intel/internal/syntax"
)

// Message keys of the structural linters.
const (
	KeyUnrecognizedStatement = "Unrecognized statement _"
	KeyUnrecognizedGlobal    = "Unrecognized global statement _"
	KeyUnmatchedItem         = "Unmatched item _"
	KeyInvalidForMode        = "Invalid _ in _ mode"
	KeyTooManyExpressions    = "Too many expressions in _ mode"
	KeyBlockContent          = "Invalid code block content _"
)

// UnrecognizedStatement reports every parser error node. Nested error nodes
// are covered by their outermost ancestor, and stray closing brackets are
// left to Brackets.
var UnrecognizedStatement = Linter{
	Name: "unrecognized-statement",
	Doc:  "Report code the parser could not recognize.",
	Run: func(pass *Pass) {
		syntax.Walk(pass.Tree.Root, func(n *syntax.Node) bool {
			if n.Kind != syntax.Error {
				return true
			}
			if len(n.Children) == 1 {
				switch n.Children[0].Kind {
				case syntax.CloseBracket, syntax.CloseParen:
					return false
				}
			}
			pass.Reportf(n, SeverityError, KeyUnrecognizedStatement, pass.Text(n))
			return false
		})
	},
}

// UnrecognizedGlobal reports top-level code of a model that is neither a
// declaration nor a procedure.
var UnrecognizedGlobal = Linter{
	Name: "unrecognized-global",
	Doc:  "Report statements written outside any procedure.",
	Run: func(pass *Pass) {
		if pass.Tree.Mode != syntax.Model {
			return
		}
		for _, n := range pass.Tree.Root.Children {
			switch {
			case n.Kind == syntax.Misplaced:
				pass.Reportf(n, SeverityError, KeyUnrecognizedGlobal, pass.Text(n))
			case n.Kind == syntax.Procedure && n.Child(syntax.To) == nil:
				pass.Reportf(n, SeverityError, KeyUnrecognizedGlobal, pass.Text(n))
			}
		}
	},
}

// Brackets reports every bracket or parenthesis without a partner.
var Brackets = Linter{
	Name: "brackets",
	Doc:  "Report unmatched brackets and parentheses.",
	Run: func(pass *Pass) {
		syntax.Walk(pass.Tree.Root, func(n *syntax.Node) bool {
			switch n.Kind {
			case syntax.OpenBracket, syntax.CloseBracket, syntax.OpenParen, syntax.CloseParen:
				if _, ok := pass.Tree.MatchBracket(n.From); !ok {
					pass.Reportf(n, SeverityError, KeyUnmatchedItem, pass.Text(n))
				}
			}
			return true
		})
	},
}

// Mode reports top-level constructs the document's parse mode does not allow.
// Models are covered by UnrecognizedGlobal.
var Mode = Linter{
	Name: "mode",
	Doc:  "Report constructs that are illegal for the document's parse mode.",
	Run: func(pass *Pass) {
		mode := pass.Tree.Mode
		switch mode {
		case syntax.Embedded:
			for _, n := range pass.Tree.Root.Children {
				if n.Kind == syntax.Procedure || n.Kind.IsDeclaration() {
					pass.Reportf(n, SeverityError, KeyInvalidForMode, pass.Text(n), mode.String())
				}
			}
		case syntax.OneLine:
			seen := false
			for _, n := range pass.Tree.Root.Children {
				switch {
				case n.Kind == syntax.LineComment || n.Kind == syntax.Error:
					continue
				case seen:
					pass.Reportf(n, SeverityError, KeyTooManyExpressions, mode.String())
				case !isExpression(n.Kind):
					pass.Reportf(n, SeverityError, KeyInvalidForMode, pass.Text(n), mode.String())
				}
				seen = true
			}
		}
	},
}

func isExpression(k syntax.Kind) bool {
	switch k {
	case syntax.ReporterCall, syntax.Identifier, syntax.Number, syntax.String, syntax.Constant,
		syntax.List, syntax.ReporterBlock, syntax.Parenthesized, syntax.AnonymousProcedure:
		return true
	}
	return false
}

// BlockContent reports declarations nested inside procedure bodies and
// blocks, where only statements may appear.
var BlockContent = Linter{
	Name: "block-content",
	Doc:  "Report declarations mixed into procedure or block content.",
	Run: func(pass *Pass) {
		syntax.Walk(pass.Tree.Root, func(n *syntax.Node) bool {
			if n.Kind.IsDeclaration() && n.Parent != nil && n.Parent.Kind != syntax.Program {
				pass.Reportf(n, SeverityError, KeyBlockContent, pass.Text(n))
				return false
			}
			return true
		})
	},
}
