package parser

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/DeusData/netlogo-intel/internal/primitives"
	"github.com/DeusData/netlogo-intel/internal/state"
	"github.com/DeusData/netlogo-intel/internal/syntax"
)

func outline(n *syntax.Node) string {
	var b strings.Builder
	var rec func(n *syntax.Node)
	rec = func(n *syntax.Node) {
		fmt.Fprintf(&b, "%s[%d,%d]", n.Kind, n.From, n.To)
		if n.Kind.IsLeaf() {
			fmt.Fprintf(&b, "%q", n.Text)
			return
		}
		b.WriteString("(")
		for _, c := range n.Children {
			rec(c)
		}
		b.WriteString(")")
	}
	rec(n)
	return b.String()
}

func TestSignature(t *testing.T) {
	cat := primitives.Default()
	lookup := func(name string) *primitives.Primitive {
		p, ok := cat.Lookup(name)
		if !ok {
			t.Fatalf("primitive %s missing", name)
		}
		return p
	}

	tests := []struct {
		name string
		want syntax.Signature
	}{
		{"fd", syntax.Signature{Class: syntax.WordCommand, Args: []syntax.Shape{syntax.ShapeAny}, Default: 1, Precedence: primitives.PrecNormal}},
		{"ask", syntax.Signature{Class: syntax.WordCommand, Args: []syntax.Shape{syntax.ShapeAny, syntax.ShapeCommandBlock}, Default: 2, Precedence: primitives.PrecNormal}},
		{"map", syntax.Signature{Class: syntax.WordReporter, Args: []syntax.Shape{syntax.ShapeAnonReporter, syntax.ShapeList}, Repeat: true, RepeatIndex: 1, Default: 2, Variadic: true, Precedence: primitives.PrecNormal}},
		{"foreach", syntax.Signature{Class: syntax.WordCommand, Args: []syntax.Shape{syntax.ShapeList, syntax.ShapeAnonCommand}, Repeat: true, Default: 2, Variadic: true, Precedence: primitives.PrecNormal}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, Signature(lookup(tt.name))); diff != "" {
				t.Errorf("Signature(%s) (-want +got):\n%s", tt.name, diff)
			}
		})
	}

	of := Signature(lookup("of"))
	if !of.Infix || of.Class != syntax.WordReporter {
		t.Errorf("of = %+v", of)
	}
	with := Signature(lookup("with"))
	if len(with.Args) != 1 || with.Args[0] != syntax.ShapeReporterBlock {
		t.Errorf("with args = %v", with.Args)
	}
	crt := Signature(lookup("create-turtles"))
	if crt.Default != 1 || len(crt.Args) != 2 || crt.Args[1] != syntax.ShapeCommandBlock {
		t.Errorf("create-turtles = %+v", crt)
	}
}

func TestResolverUserSymbols(t *testing.T) {
	pre := state.Preprocess(`globals [ speed ]
breed [ wolves wolf ]
to hunt [ a b ] end
to-report score report 1 end`)
	r := NewResolver(pre, nil)

	tests := []struct {
		word  string
		class syntax.WordClass
		args  int
	}{
		{"speed", syntax.WordVariable, 0},
		{"hunt", syntax.WordCommand, 2},
		{"score", syntax.WordReporter, 0},
		{"wolves", syntax.WordReporter, 0},
		{"wolf", syntax.WordReporter, 1},
		{"create-wolves", syntax.WordCommand, 2},
		{"red", syntax.WordConstant, 0},
		{"xyzzy", syntax.WordUnknown, 0},
	}
	for _, tt := range tests {
		got := r.Resolve(tt.word)
		if got.Class != tt.class || len(got.Args) != tt.args {
			t.Errorf("Resolve(%s) = class %v args %d, want %v %d", tt.word, got.Class, len(got.Args), tt.class, tt.args)
		}
	}
	if r.Fingerprint() != pre.Fingerprint() {
		t.Errorf("resolver fingerprint should follow the pre-pass")
	}
}

func TestServiceEditsMatchFullParse(t *testing.T) {
	src := "globals [ a ]\n\nto setup\n  clear-all\nend\n\nto go\n  fd 1\nend\n"
	res := NewResolver(state.Preprocess(src), nil)
	s := NewService(syntax.Model, res)
	s.SetSource(src)
	s.ForceParse()

	edits := []struct {
		from, to int
		insert   string
	}{
		{strings.Index(src, "fd 1"), strings.Index(src, "fd 1") + 4, "rt 90 fd 2"},
		{0, 0, "; header\n"},
		{len("; header\n") + strings.Index(src, "clear-all"), len("; header\n") + strings.Index(src, "clear-all") + len("clear-all"), "ask turtles [ die ]"},
	}
	for _, e := range edits {
		s.Edit(e.from, e.to, e.insert)
	}
	if s.Pending() != len(edits) {
		t.Fatalf("pending = %d", s.Pending())
	}
	got := s.ForceParse()
	if s.Pending() != 0 {
		t.Errorf("edits not flushed")
	}
	want := syntax.Parse(s.Source(), syntax.Model, res)
	if diff := cmp.Diff(outline(want.Root), outline(got.Root)); diff != "" {
		t.Errorf("incremental tree differs (-full +incremental):\n%s", diff)
	}
	if !strings.Contains(got.Source, "rt 90 fd 2") || !strings.HasPrefix(got.Source, "; header") {
		t.Errorf("tree source = %q", got.Source)
	}
}

func TestServiceModeChangeReparses(t *testing.T) {
	s := NewService(syntax.Model, NewResolver(state.Preprocess(""), nil))
	s.SetSource("fd 1")
	if got := s.ForceParse(); got.Root.Children[0].Kind != syntax.Misplaced {
		t.Errorf("model mode should wrap stray statements, got %s", got.Root.Children[0].Kind)
	}
	s.SetMode(syntax.Embedded)
	if got := s.ForceParse(); got.Mode != syntax.Embedded || got.Root.Children[0].Kind != syntax.CommandStatement {
		t.Errorf("embedded tree = %s", outline(got.Root))
	}
}

func TestAnalyze(t *testing.T) {
	v := Analyze("to go\n  ask turtles [ fd 1 ]\nend", syntax.Model, nil, "main")
	if v.Source() == "" || v.Lint == nil || v.Pre == nil {
		t.Fatalf("incomplete view: %+v", v)
	}
	if w := v.Classify("go"); w.Class != state.ClassProcedure {
		t.Errorf("go classified as %v", w.Class)
	}
	var texts []string
	Walk(v.Tree.Root, func(n *syntax.Node) bool {
		if n.Kind == syntax.CommandBlock {
			texts = append(texts, NodeText(n, []byte(v.Source())))
		}
		return true
	})
	if !cmp.Equal(texts, []string{"[ fd 1 ]"}) {
		t.Errorf("blocks = %q", texts)
	}
}
