package repair

import (
	"strings"

	"github.com/DeusData/netlogo-intel/internal/parser"
	"github.com/DeusData/netlogo-intel/internal/primitives"
	"github.com/DeusData/netlogo-intel/internal/syntax"
)

const indentUnit = "  "

// Prettify reformats source with the default catalog.
func Prettify(source string, mode syntax.Mode) string {
	return PrettifyWith(source, mode, primitives.Default())
}

// PrettifyWith reformats source, resolving words against cat.
func PrettifyWith(source string, mode syntax.Mode, cat *primitives.Catalog) string {
	v := parser.Analyze(source, mode, cat, "")
	return Print(v.Tree)
}

// Print renders a tree canonically: one declaration per line, procedure
// bodies indented per block level, normalised bracket spacing. Comments are
// kept in place and error nodes are copied verbatim.
func Print(t *syntax.Tree) string {
	if t == nil || t.Root == nil {
		return ""
	}
	p := &printer{src: t.Source, mode: t.Mode}
	p.program(t.Root)
	out := strings.TrimRight(p.b.String(), " \n")
	if out == "" {
		return ""
	}
	return out + "\n"
}

type printer struct {
	src     string
	mode    syntax.Mode
	b       strings.Builder
	indent  int
	inLine  bool // the current line has content
	glue    bool // next token attaches without a space
	lastEnd int  // source offset after the last printed token
}

func (p *printer) newline() {
	if p.inLine {
		p.b.WriteByte('\n')
		p.inLine = false
	}
	p.glue = false
}

func (p *printer) blank() {
	p.newline()
	if p.b.Len() > 0 && !strings.HasSuffix(p.b.String(), "\n\n") {
		p.b.WriteByte('\n')
	}
}

func (p *printer) write(s string, glueLeft bool) {
	if !p.inLine {
		p.b.WriteString(strings.Repeat(indentUnit, p.indent))
	} else if !p.glue && !glueLeft {
		p.b.WriteByte(' ')
	}
	p.b.WriteString(s)
	p.inLine = true
	p.glue = false
}

func (p *printer) leaf(n *syntax.Node, glueLeft bool) {
	p.write(p.src[n.From:n.To], glueLeft)
	p.lastEnd = n.To
}

// comment prints a line comment, on the current line when it trailed code
// in the source.
func (p *printer) comment(n *syntax.Node) {
	text := strings.TrimRight(p.src[n.From:n.To], " \t\r")
	trailing := p.inLine && p.lastEnd <= n.From && !strings.Contains(p.src[p.lastEnd:n.From], "\n")
	if !trailing {
		p.newline()
	}
	p.write(text, false)
	p.lastEnd = n.To
	p.newline()
}

func (p *printer) program(root *syntax.Node) {
	var prev *syntax.Node
	items := root.Children
	for i, n := range items {
		if n.Kind == syntax.LineComment {
			trailing := p.inLine && !strings.Contains(p.src[p.lastEnd:n.From], "\n")
			if !trailing && p.startsGroup(items, i) && separate(prev, nextItem(items, i)) {
				p.blank()
			}
			p.comment(n)
			continue
		}
		if p.startsGroup(items, i) && separate(prev, n) {
			p.blank()
		} else if p.mode != syntax.OneLine {
			p.newline()
		}
		p.top(n)
		prev = n
	}
}

// startsGroup reports whether items[i] begins a new run of leading comments
// plus the item they precede.
func (p *printer) startsGroup(items []*syntax.Node, i int) bool {
	if p.mode == syntax.OneLine {
		return false
	}
	return i == 0 || items[i-1].Kind != syntax.LineComment || p.trailingAt(items, i-1)
}

func (p *printer) trailingAt(items []*syntax.Node, i int) bool {
	if i == 0 {
		return false
	}
	prevEnd := items[i-1].To
	return !strings.Contains(p.src[prevEnd:items[i].From], "\n")
}

func nextItem(items []*syntax.Node, i int) *syntax.Node {
	for _, n := range items[i:] {
		if n.Kind != syntax.LineComment {
			return n
		}
	}
	return nil
}

func separate(prev, next *syntax.Node) bool {
	if prev == nil {
		return false
	}
	return prev.Kind == syntax.Procedure || (next != nil && next.Kind == syntax.Procedure)
}

func (p *printer) top(n *syntax.Node) {
	p.indent = 0
	switch n.Kind {
	case syntax.Procedure:
		p.procedure(n)
	case syntax.Misplaced:
		for _, c := range n.Children {
			p.node(c, false)
		}
	default:
		p.node(n, false)
	}
}

func (p *printer) procedure(n *syntax.Node) {
	for _, c := range n.Children {
		switch c.Kind {
		case syntax.To, syntax.ProcedureName:
			p.leaf(c, false)
		case syntax.Arguments:
			p.node(c, false)
		case syntax.End:
			p.indent = 0
			p.newline()
			p.leaf(c, false)
		case syntax.LineComment:
			p.indent = 1
			p.comment(c)
		default:
			p.indent = 1
			p.newline()
			p.node(c, false)
		}
	}
	p.indent = 0
}

func (p *printer) node(n *syntax.Node, glueLeft bool) {
	switch {
	case n.Kind == syntax.LineComment:
		p.comment(n)
		return
	case n.Kind == syntax.Error:
		p.verbatim(n, glueLeft)
		return
	case n.Kind.IsLeaf():
		p.leaf(n, glueLeft)
		return
	}
	switch n.Kind {
	case syntax.CommandBlock, syntax.AnonymousProcedure:
		if p.multiline(n) {
			p.block(n, glueLeft)
			return
		}
	case syntax.List:
		p.list(n, glueLeft)
		return
	}
	p.children(n, glueLeft)
}

// children prints a node's children on one line. Parentheses hug their
// contents.
func (p *printer) children(n *syntax.Node, glueLeft bool) {
	for i, c := range n.Children {
		left := i == 0 && glueLeft
		if c.Kind == syntax.CloseParen {
			left = true
		}
		p.node(c, left)
		if c.Kind == syntax.OpenParen {
			p.glue = true
		}
	}
}

func (p *printer) list(n *syntax.Node, glueLeft bool) {
	for i, c := range n.Children {
		left := i == 0 && glueLeft
		if c.Kind == syntax.CloseBracket {
			left = true
		}
		p.node(c, left)
		if c.Kind == syntax.OpenBracket {
			p.glue = true
		}
	}
}

// block prints a bracketed block one statement per line.
func (p *printer) block(n *syntax.Node, glueLeft bool) {
	base := p.indent
	for i, c := range n.Children {
		switch c.Kind {
		case syntax.OpenBracket:
			p.node(c, i == 0 && glueLeft)
			p.indent = base + 1
		case syntax.Arguments, syntax.Arrow:
			p.node(c, false)
		case syntax.CloseBracket:
			p.indent = base
			p.newline()
			p.leaf(c, false)
		case syntax.LineComment:
			p.comment(c)
		default:
			p.newline()
			p.node(c, false)
		}
	}
	p.indent = base
}

// multiline reports whether a command block is printed one statement per
// line: it holds a comment, several statements, or already spanned lines.
func (p *printer) multiline(n *syntax.Node) bool {
	body := 0
	for _, c := range n.Children {
		switch c.Kind {
		case syntax.OpenBracket, syntax.CloseBracket, syntax.Arguments, syntax.Arrow, syntax.LineComment:
		default:
			if n.Kind == syntax.AnonymousProcedure && !c.Kind.IsStatement() {
				return false
			}
			body++
		}
	}
	if body == 0 {
		return false
	}
	if body > 1 {
		return true
	}
	hasComment := false
	syntax.Walk(n, func(d *syntax.Node) bool {
		if d.Kind == syntax.LineComment {
			hasComment = true
		}
		return !hasComment
	})
	return hasComment || strings.Contains(p.src[n.From:n.To], "\n")
}

// verbatim copies an unparseable region unchanged.
func (p *printer) verbatim(n *syntax.Node, glueLeft bool) {
	text := strings.TrimSpace(p.src[n.From:n.To])
	if text == "" {
		return
	}
	p.write(text, glueLeft)
	p.lastEnd = n.To
}
