package lint

import (
	"strconv"

	"github.com/DeusData/netlogo-intel/internal/breeds"
	"github.com/DeusData/netlogo-intel/internal/state"
	"github.com/DeusData/netlogo-intel/internal/syntax"
)

// Message keys of the arity linter.
const (
	KeyLeftArgs              = "Left args for _. Expected _ found _."
	KeyTooFewArgs            = "Too few right args for _. Expected _ found _."
	KeyTooManyArgs           = "Too many right args for _. Expected _ found _."
	KeyUnrecognizedPrimitive = "Unrecognized primitive _"
)

// Arity compares the arguments of every call with what its primitive,
// procedure or breed reporter expects. let and set take exactly one variable
// and one value.
var Arity = Linter{
	Name: "arity",
	Doc:  "Report calls with the wrong number of arguments.",
	Run: func(pass *Pass) {
		syntax.Walk(pass.Tree.Root, func(n *syntax.Node) bool {
			switch n.Kind {
			case syntax.CommandStatement, syntax.ReporterCall:
				checkCall(pass, n)
			case syntax.Let, syntax.Set:
				checkAssignment(pass, n)
			}
			return true
		})
	},
}

type bounds struct {
	left     int
	min, max int // max < 0 is unbounded
}

func checkCall(pass *Pass, n *syntax.Node) {
	head := n.Head()
	if head == nil {
		return
	}
	w := pass.Classify(head.Text)
	paren := n.Parenthesized()
	var b bounds
	switch w.Class {
	case state.ClassPrimitive, state.ClassBreedPrimitive:
		p := w.Primitive
		if p == nil {
			pass.Reportf(head, SeverityError, KeyUnrecognizedPrimitive, head.Text)
			return
		}
		b.min, b.max = p.ArityBounds(paren)
		if p.IsInfix() {
			b.left = 1
		}
	case state.ClassProcedure:
		b.min, b.max = w.Arity, w.Arity
	case state.ClassBreed:
		if w.Breed.Kind == breeds.KindSingular {
			b.min, b.max = 1, 1
		}
	default:
		return
	}
	left, right := n.Args()
	if len(left) != b.left {
		pass.Reportf(n, SeverityError, KeyLeftArgs, head.Text, strconv.Itoa(b.left), strconv.Itoa(len(left)))
	}
	switch {
	case len(right) < b.min:
		pass.Reportf(n, SeverityError, KeyTooFewArgs, head.Text, strconv.Itoa(b.min), strconv.Itoa(len(right)))
	case b.max >= 0 && len(right) > b.max:
		extra := right[b.max:]
		pass.Report(Diagnostic{
			From:     extra[0].From,
			To:       extra[len(extra)-1].To,
			Severity: SeverityError,
			Key:      KeyTooManyArgs,
			Args:     []string{head.Text, strconv.Itoa(b.max), strconv.Itoa(len(right))},
		})
	}
}

func checkAssignment(pass *Pass, n *syntax.Node) {
	kw := n.Child(syntax.Keyword)
	if kw == nil {
		return
	}
	var operands []*syntax.Node
	for _, c := range n.Children {
		if c != kw && c.Kind != syntax.LineComment {
			operands = append(operands, c)
		}
	}
	const want = 2
	switch {
	case len(operands) < want:
		pass.Reportf(n, SeverityError, KeyTooFewArgs, kw.Text, strconv.Itoa(want), strconv.Itoa(len(operands)))
	case len(operands) > want:
		extra := operands[want:]
		pass.Report(Diagnostic{
			From:     extra[0].From,
			To:       extra[len(extra)-1].To,
			Severity: SeverityError,
			Key:      KeyTooManyArgs,
			Args:     []string{kw.Text, strconv.Itoa(want), strconv.Itoa(len(operands))},
		})
	}
}
