package syntax

import (
	"fmt"
	"slices"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type testResolver map[string]Signature

func (r testResolver) Resolve(w string) Signature { return r[w] }
func (testResolver) Fingerprint() uint64          { return 1 }

func newTestResolver() testResolver {
	return testResolver{
		"fd":             {Class: WordCommand, Args: []Shape{ShapeAny}, Default: 1},
		"show":           {Class: WordCommand, Args: []Shape{ShapeAny}, Default: 1},
		"die":            {Class: WordCommand},
		"ask":            {Class: WordCommand, Args: []Shape{ShapeAny, ShapeCommandBlock}, Default: 2},
		"create-turtles": {Class: WordCommand, Args: []Shape{ShapeAny, ShapeCommandBlock}, Default: 1, Variadic: true},
		"foreach":        {Class: WordCommand, Args: []Shape{ShapeList, ShapeAnonCommand}, Repeat: true, Default: 2, Variadic: true},
		"ifelse":         {Class: WordCommand, Args: []Shape{ShapeAny, ShapeCommandBlock, ShapeCommandBlock}, Default: 3, Variadic: true},
		"report":         {Class: WordCommand, Args: []Shape{ShapeAny}, Default: 1},
		"count":          {Class: WordReporter, Args: []Shape{ShapeAny}, Default: 1, Precedence: precNormal},
		"list":           {Class: WordReporter, Args: []Shape{ShapeAny}, Repeat: true, Default: 2, Variadic: true, Precedence: precNormal},
		"random":         {Class: WordReporter, Args: []Shape{ShapeAny}, Default: 1, Precedence: precNormal},
		"turtles":        {Class: WordReporter, Precedence: precNormal},
		"patches":        {Class: WordReporter, Precedence: precNormal},
		"of":             {Class: WordReporter, Infix: true, Args: []Shape{ShapeAny}, Default: 1, Precedence: 11, RightAssoc: true},
		"with":           {Class: WordReporter, Infix: true, Args: []Shape{ShapeReporterBlock}, Default: 1, Precedence: 12},
		"+":              {Class: WordReporter, Infix: true, Default: 1, Precedence: 7},
		"-":              {Class: WordReporter, Infix: true, Default: 1, Precedence: 7},
		"*":              {Class: WordReporter, Infix: true, Default: 1, Precedence: 8},
		"=":              {Class: WordReporter, Infix: true, Default: 1, Precedence: 5},
		"color":          {Class: WordVariable},
		"heading":        {Class: WordVariable},
		"red":            {Class: WordConstant},
		"true":           {Class: WordConstant},
	}
}

// dump renders a subtree compactly for comparisons.
func dump(n *Node) string {
	var b strings.Builder
	var rec func(n *Node)
	rec = func(n *Node) {
		fmt.Fprintf(&b, "%s[%d,%d]", n.Kind, n.From, n.To)
		if n.Kind.IsLeaf() {
			fmt.Fprintf(&b, "%q", n.Text)
			return
		}
		b.WriteString("(")
		for i, c := range n.Children {
			if i > 0 {
				b.WriteString(" ")
			}
			rec(c)
		}
		b.WriteString(")")
	}
	rec(n)
	return b.String()
}

func kinds(nodes []*Node) []Kind {
	out := make([]Kind, len(nodes))
	for i, n := range nodes {
		out[i] = n.Kind
	}
	return out
}

func TestLex(t *testing.T) {
	toks := Lex(`to go ; note
  show "a \"b\"" -1.5e3 [x] {`)
	want := []TokenType{TokWord, TokWord, TokComment, TokWord, TokString, TokNumber, TokLBracket, TokWord, TokRBracket, TokOther}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(toks), len(want), toks)
	}
	for i, tok := range toks {
		if tok.Type != want[i] {
			t.Errorf("token %d (%q): type %d, want %d", i, tok.Value, tok.Type, want[i])
		}
	}
	if toks[2].Value != "; note" {
		t.Errorf("comment = %q", toks[2].Value)
	}
}

func TestLexUnterminatedString(t *testing.T) {
	toks := Lex("show \"abc\nfd 1")
	if toks[1].Type != TokOther || toks[1].Value != `"abc` {
		t.Fatalf("unterminated string = %v", toks[1])
	}
	if toks[2].Value != "fd" {
		t.Errorf("lexing did not resume on the next line: %v", toks[2])
	}
}

func TestParseProcedure(t *testing.T) {
	src := "to go\n  create-turtles 5 [ fd 1 ]\nend"
	tree := Parse(src, Model, newTestResolver())
	if len(tree.Root.Children) != 1 {
		t.Fatalf("expected one item, got %s", dump(tree.Root))
	}
	proc := tree.Root.Children[0]
	if proc.Kind != Procedure || proc.Name() != "go" || proc.Child(End) == nil {
		t.Fatalf("bad procedure: %s", dump(proc))
	}
	stmt := proc.Child(CommandStatement)
	if stmt == nil {
		t.Fatalf("missing statement: %s", dump(proc))
	}
	if got, want := kinds(stmt.Children), []Kind{Command, Number, CommandBlock}; !cmp.Equal(got, want) {
		t.Errorf("statement children = %v, want %v", got, want)
	}
	if tree.Root.From != 0 || tree.Root.To != len(src) {
		t.Errorf("program span = [%d,%d]", tree.Root.From, tree.Root.To)
	}
}

func TestParseModes(t *testing.T) {
	res := newTestResolver()
	model := Parse("fd 1", Model, res)
	if k := model.Root.Children[0].Kind; k != Misplaced {
		t.Errorf("model mode: got %s, want Misplaced", k)
	}
	embedded := Parse("fd 1 show 2", Embedded, res)
	if got := kinds(embedded.Root.Children); !cmp.Equal(got, []Kind{CommandStatement, CommandStatement}) {
		t.Errorf("embedded mode: got %v", got)
	}
	oneLine := Parse("count turtles", OneLine, res)
	if k := oneLine.Root.Children[0].Kind; k != ReporterCall {
		t.Errorf("one-line mode: got %s", k)
	}
}

func TestParseProcedureRecovery(t *testing.T) {
	res := newTestResolver()

	headless := Parse("fd 1\nend", Model, res)
	if p := headless.Root.Children[0]; p.Kind != Procedure || p.Child(To) != nil || p.Child(End) == nil {
		t.Errorf("statements closed by end: %s", dump(headless.Root))
	}

	unterminated := Parse("to a fd 1\nto b end", Model, res)
	if n := len(unterminated.Root.Children); n != 2 {
		t.Fatalf("want two procedures, got %s", dump(unterminated.Root))
	}
	if unterminated.Root.Children[0].Child(End) != nil {
		t.Errorf("first procedure should have no end")
	}

	stray := Parse("to a fd 1 ] end", Model, res)
	var errs int
	Walk(stray.Root, func(n *Node) bool {
		if n.Kind == Error {
			errs++
		}
		return true
	})
	if errs != 1 {
		t.Errorf("stray bracket: %d error nodes in %s", errs, dump(stray.Root))
	}
}

func TestParseDeclarations(t *testing.T) {
	tree := Parse("extensions [table]\nglobals [a b]\nbreed [wolves wolf]\nwolves-own [energy]", Model, newTestResolver())
	want := []Kind{Extensions, Globals, Breed, BreedsOwn}
	if got := kinds(tree.Root.Children); !cmp.Equal(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	ids := tree.Root.Children[1].ChildrenOf(Identifier)
	if len(ids) != 2 || ids[0].Text != "a" || ids[1].Text != "b" {
		t.Errorf("globals identifiers: %s", dump(tree.Root.Children[1]))
	}
}

func TestParsePrecedence(t *testing.T) {
	tree := Parse("1 + 2 * 3", OneLine, newTestResolver())
	top := tree.Root.Children[0]
	if top.Kind != ReporterCall || top.Head().Text != "+" {
		t.Fatalf("top = %s", dump(top))
	}
	right := top.Children[2]
	if right.Kind != ReporterCall || right.Head().Text != "*" {
		t.Errorf("right operand = %s", dump(right))
	}
}

func TestParseOfWith(t *testing.T) {
	tree := Parse("[ color ] of turtles with [ color = red ]", OneLine, newTestResolver())
	of := tree.Root.Children[0]
	if of.Head().Text != "of" {
		t.Fatalf("top = %s", dump(of))
	}
	if of.Children[0].Kind != ReporterBlock {
		t.Errorf("left of of = %s", of.Children[0].Kind)
	}
	with := of.Children[2]
	if with.Kind != ReporterCall || with.Head().Text != "with" {
		t.Errorf("right of of = %s", dump(with))
	}
}

func TestParseAnonymousProcedure(t *testing.T) {
	tree := Parse("foreach [1 2] [ x -> show x ]", Embedded, newTestResolver())
	stmt := tree.Root.Children[0]
	if got := kinds(stmt.Children); !cmp.Equal(got, []Kind{Command, List, AnonymousProcedure}) {
		t.Fatalf("foreach children = %v", got)
	}
	anon := stmt.Children[2]
	if anon.Child(Arguments) == nil || anon.Child(Arrow) == nil {
		t.Errorf("anonymous procedure: %s", dump(anon))
	}
	show := anon.Child(CommandStatement)
	if show == nil || show.Children[1].Kind != Identifier {
		t.Errorf("argument reference: %s", dump(anon))
	}
}

func TestParseLocalsShadowUnknownCommands(t *testing.T) {
	tree := Parse("to f [n]\n  let m n\n  show m\nend", Model, newTestResolver())
	proc := tree.Root.Children[0]
	stmts := proc.ChildrenOf(CommandStatement)
	if len(stmts) != 1 || stmts[0].Children[1].Kind != Identifier {
		t.Fatalf("show m: %s", dump(proc))
	}
	let := proc.Child(Let)
	if let == nil || let.Children[2].Kind != Identifier {
		t.Errorf("let m n: %s", dump(proc))
	}
}

func TestParseParenthesizedVariadic(t *testing.T) {
	tree := Parse("show (list 1 2 3)", Embedded, newTestResolver())
	call := tree.Root.Children[0].Children[1]
	if call.Kind != ReporterCall || !call.Parenthesized() {
		t.Fatalf("call = %s", dump(call))
	}
	if n := len(call.ChildrenOf(Number)); n != 3 {
		t.Errorf("got %d arguments, want 3", n)
	}
}

func TestParseParenthesizedRepeatBeforeTrailing(t *testing.T) {
	tests := []struct {
		src  string
		want []Kind
	}{
		{"(foreach [1 2] [ x -> show x ])", []Kind{List, AnonymousProcedure}},
		{"(foreach [1 2] [3 4] [ [a b] -> show a ])", []Kind{List, List, AnonymousProcedure}},
		{"(foreach [1] [2] [3] [ [a b c] -> show (list a b c) ])", []Kind{List, List, List, AnonymousProcedure}},
		{"(foreach xs [3 4] [ [a b] -> show a ])", []Kind{Identifier, List, AnonymousProcedure}},
	}
	for _, tt := range tests {
		tree := Parse(tt.src, Embedded, newTestResolver())
		if len(tree.Root.Children) != 1 {
			t.Fatalf("%q: got %d statements: %s", tt.src, len(tree.Root.Children), dump(tree.Root))
		}
		stmt := tree.Root.Children[0]
		var got []Kind
		for _, c := range stmt.Children {
			switch c.Kind {
			case OpenParen, CloseParen, Command:
			default:
				got = append(got, c.Kind)
			}
		}
		if !slices.Equal(got, tt.want) {
			t.Errorf("%q: arguments = %v, want %v", tt.src, got, tt.want)
		}
	}
}

func TestParseGreedyArguments(t *testing.T) {
	tree := Parse("fd 1 2\nfd 1 show 2", Embedded, newTestResolver())
	if got := len(tree.Root.Children); got != 3 {
		t.Fatalf("got %d statements: %s", got, dump(tree.Root))
	}
	if n := len(tree.Root.Children[0].ChildrenOf(Number)); n != 2 {
		t.Errorf("surplus argument not attached: %s", dump(tree.Root.Children[0]))
	}
}

func TestCommentsAttachInside(t *testing.T) {
	tree := Parse("to go ; start\n  fd 1\nend\n; trailing", Model, newTestResolver())
	proc := tree.Root.Children[0]
	if proc.Child(LineComment) == nil {
		t.Errorf("comment inside procedure missing: %s", dump(proc))
	}
	last := tree.Root.Children[len(tree.Root.Children)-1]
	if last.Kind != LineComment || last.Text != "; trailing" {
		t.Errorf("trailing comment = %s", dump(last))
	}
}

func TestMatchBracket(t *testing.T) {
	src := "to go ask turtles [ fd 1 ] end"
	tree := Parse(src, Model, newTestResolver())
	open := strings.Index(src, "[")
	closeAt := strings.Index(src, "]")
	m, ok := tree.MatchBracket(open)
	if !ok || m.From != closeAt {
		t.Errorf("match for [ = %v %v", m, ok)
	}
	m, ok = tree.MatchBracket(closeAt)
	if !ok || m.From != open {
		t.Errorf("match for ] = %v %v", m, ok)
	}

	unclosed := Parse("to go ask turtles [ fd 1 end", Model, newTestResolver())
	if _, ok := unclosed.MatchBracket(strings.Index(unclosed.Source, "[")); ok {
		t.Errorf("unclosed bracket should not match")
	}
}

func TestResolveAt(t *testing.T) {
	src := "to go fd 1 end"
	tree := Parse(src, Model, newTestResolver())
	fd := strings.Index(src, "fd")
	if n := tree.ResolveAt(fd, 1); n.Kind != Command || n.Text != "fd" {
		t.Errorf("at fd: %s", dump(n))
	}
	if n := tree.ResolveAt(fd+2, -1); n.Kind != Command {
		t.Errorf("after fd: %s", dump(n))
	}
	line, col := LineCol("a\nbc", 3)
	if line != 2 || col != 2 {
		t.Errorf("LineCol = %d:%d", line, col)
	}
}

func TestReparseMatchesFullParse(t *testing.T) {
	res := newTestResolver()
	src := "globals [a]\n\nto setup\n  fd 1\nend\n\n; between\nto go\n  ask turtles [ fd 2 ]\nend\n\nto-report r\n  report 1\nend\n"
	edits := []Edit{
		{From: strings.Index(src, "fd 1"), To: strings.Index(src, "fd 1") + 4, Insert: "show 3"},
		{From: strings.Index(src, "end\n\n; between"), To: strings.Index(src, "end\n\n; between") + 3},
		{From: 0, To: 0, Insert: "fd 9\n"},
		{From: len(src), To: len(src), Insert: "to extra\nend\n"},
		{From: strings.Index(src, "to go"), To: strings.Index(src, "to go") + 5, Insert: "end fd"},
		{From: strings.Index(src, "[a]"), To: strings.Index(src, "[a]") + 3, Insert: "[a b"},
		{From: strings.Index(src, "; between"), To: strings.Index(src, "; between") + 1, Insert: ""},
	}
	old := Parse(src, Model, res)
	for _, e := range edits {
		t.Run(fmt.Sprintf("%d-%d", e.From, e.To), func(t *testing.T) {
			got := Reparse(old, e, res)
			want := Parse(e.Apply(src), Model, res)
			if diff := cmp.Diff(dump(want.Root), dump(got.Root)); diff != "" {
				t.Errorf("reparse mismatch (-full +incremental):\n%s", diff)
			}
			if got.Source != want.Source {
				t.Errorf("source mismatch")
			}
		})
	}
}

func TestReparseFallsBackOnFingerprintChange(t *testing.T) {
	res := newTestResolver()
	old := Parse("to go foo 1 end", Model, res)
	res2 := testResolverWithFingerprint{newTestResolver(), 2}
	res2.testResolver["foo"] = Signature{Class: WordReporter, Args: []Shape{ShapeAny}, Default: 1, Precedence: precNormal}
	e := Edit{From: 0, To: 0, Insert: " "}
	got := Reparse(old, e, res2)
	want := Parse(e.Apply(old.Source), Model, res2)
	if diff := cmp.Diff(dump(want.Root), dump(got.Root)); diff != "" {
		t.Errorf("mismatch:\n%s", diff)
	}
}

type testResolverWithFingerprint struct {
	testResolver
	fp uint64
}

func (r testResolverWithFingerprint) Fingerprint() uint64 { return r.fp }

func TestKindNames(t *testing.T) {
	for _, name := range []string{"Procedure", "BreedDeclaration", "Breed", "NewVariableDeclaration", "⚠", "Error"} {
		if _, ok := KindByName(name); !ok {
			t.Errorf("KindByName(%q) failed", name)
		}
	}
}
