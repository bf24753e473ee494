package primitives

import "testing"

func TestContextCombine(t *testing.T) {
	turtle := ParseContext("-T--")
	patch := ParseContext("--P-")
	if got := turtle.Combine(patch); !got.IsEmpty() {
		t.Errorf("turtle ∩ patch = %s, want empty", got)
	}
	tp := ParseContext("-TP-")
	if got := tp.Combine(patch); got != patch {
		t.Errorf("TP ∩ P = %s, want %s", got, patch)
	}
	if !AnyContext().IsAny() {
		t.Error("AnyContext should allow every kind")
	}
	if s := ParseContext("O--L").String(); s != "O--L" {
		t.Errorf("String() = %q", s)
	}
}

func TestLookupAliases(t *testing.T) {
	cat := Default()
	for _, name := range []string{"fd", "forward", "crt", "create-turtles", "se", "bf", "FD"} {
		if _, ok := cat.Lookup(name); !ok {
			t.Errorf("Lookup(%q) failed", name)
		}
	}
	if p, ok := cat.Lookup("table:make"); !ok || p.Extension != "table" {
		t.Errorf("table:make = %+v, %v", p, ok)
	}
	if _, ok := cat.Lookup("make"); ok {
		t.Error("extension primitive should not resolve unqualified")
	}
	if _, ok := cat.Prototype("hatch-turtles"); !ok {
		t.Error("hatch-turtles prototype missing")
	}
}

func TestArityBounds(t *testing.T) {
	cat := Default()
	tests := []struct {
		name    string
		parens  bool
		wantMin int
		wantMax int
	}{
		{"fd", false, 1, 1},
		{"list", false, 2, 2},
		{"list", true, 0, -1},
		{"foreach", false, 2, 2},
		{"foreach", true, 2, -1},
		{"ifelse", false, 3, 3},
		{"ifelse", true, 2, -1},
		{"create-turtles", false, 1, 2},
		{"run", false, 1, 1},
		{"clear-all", false, 0, 0},
		{"clear-all", true, 0, 0},
	}
	for _, tt := range tests {
		p, ok := cat.Lookup(tt.name)
		if !ok {
			t.Fatalf("missing %s", tt.name)
		}
		min, max := p.ArityBounds(tt.parens)
		if min != tt.wantMin || max != tt.wantMax {
			t.Errorf("%s parens=%v: got (%d,%d), want (%d,%d)", tt.name, tt.parens, min, max, tt.wantMin, tt.wantMax)
		}
	}
}

func TestBlockMetadata(t *testing.T) {
	cat := Default()
	hatch, _ := cat.Lookup("hatch")
	if hatch.BlockKind != BlockFixed || !hatch.BlockContext.Turtle || hatch.BlockContext.Patch {
		t.Errorf("hatch block = %v %+v", hatch.BlockKind, hatch.BlockContext)
	}
	ask, _ := cat.Lookup("ask")
	if ask.BlockKind != BlockAgentset || ask.AgentsetArg != 0 {
		t.Errorf("ask block = %v arg %d", ask.BlockKind, ask.AgentsetArg)
	}
	with, _ := cat.Lookup("with")
	if with.AgentsetArg != LeftArg || !with.IsInfix() {
		t.Errorf("with = %+v", with)
	}
	ifp, _ := cat.Lookup("if")
	if ifp.IntroducesContext {
		t.Error("if should inherit its caller's context")
	}
}

func TestReturnKindsPassThrough(t *testing.T) {
	cat := Default()
	oneOf, _ := cat.Lookup("one-of")
	got := oneOf.ReturnKinds(func(int) (AgentContext, bool) { return ParseContext("--P-"), true })
	if got != ParseContext("--P-") {
		t.Errorf("one-of patches kinds = %s", got)
	}
	turtles, _ := cat.Lookup("turtles")
	if got := turtles.ReturnKinds(nil); got != ParseContext("-T--") {
		t.Errorf("turtles kinds = %s", got)
	}
}

func TestBuiltinVariables(t *testing.T) {
	tests := map[string]string{
		"heading": "-T--",
		"pcolor":  "-TP-",
		"color":   "-T-L",
		"end1":    "---L",
	}
	for name, want := range tests {
		v, ok := BuiltinVariable(name)
		if !ok {
			t.Fatalf("missing %s", name)
		}
		if v.Context.String() != want {
			t.Errorf("%s context = %s, want %s", name, v.Context, want)
		}
	}
	if !IsConstant("red") || IsConstant("fd") {
		t.Error("IsConstant misclassified")
	}
}

func TestWithUnsupported(t *testing.T) {
	cat := Default().WithUnsupported([]string{"Inspect"})
	if !cat.IsUnsupported("inspect") || !cat.IsUnsupported("file-open") {
		t.Error("unsupported set not extended")
	}
	if Default().IsUnsupported("inspect") {
		t.Error("WithUnsupported mutated the default catalog")
	}
}
