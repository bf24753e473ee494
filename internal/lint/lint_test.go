package lint_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/DeusData/netlogo-intel/internal/lint"
	"github.com/DeusData/netlogo-intel/internal/parser"
	"github.com/DeusData/netlogo-intel/internal/state"
	"github.com/DeusData/netlogo-intel/internal/syntax"
	"github.com/DeusData/netlogo-intel/internal/textedit"
)

func analyze(src string) *state.View {
	return parser.Analyze(src, syntax.Model, nil, "main")
}

func keys(diags []lint.Diagnostic) []string {
	out := make([]string, 0, len(diags))
	for _, d := range diags {
		out = append(out, d.Message())
	}
	return out
}

func TestCleanModel(t *testing.T) {
	srcs := []string{
		"to go create-turtles 5 [ fd 1 ] end",
		`extensions [ table ]
globals [ score ]
breed [ wolves wolf ]
wolves-own [ energy ]

to setup
  clear-all
  create-wolves 10 [ set energy 5 setxy random-xcor random-ycor ]
  set score 0
end

to go
  ask wolves [ fd 1 set energy energy - 1 ]
  let t table:make
  foreach [ 1 2 3 ] [ n -> set score score + n ]
  show (list 1 2 3)
end`,
	}
	for _, src := range srcs {
		if diags := lint.Run(analyze(src)); len(diags) != 0 {
			t.Errorf("%q: unexpected diagnostics %v", src, keys(diags))
		}
	}
}

func TestScenarioPatchBlockSetsHeading(t *testing.T) {
	src := "to paint\n  ask patches [ set pcolor red set heading 90 ]\nend"
	diags := lint.Run(analyze(src), lint.Context)
	if len(diags) != 1 {
		t.Fatalf("want one context diagnostic, got %v", keys(diags))
	}
	d := diags[0]
	from := strings.Index(src, "[")
	to := strings.LastIndex(src, "]") + 1
	if d.From != from || d.To != to || d.Key != lint.KeyInvalidContext {
		t.Errorf("diagnostic = %+v, want block span [%d,%d)", d, from, to)
	}
}

// Every scope has a context diagnostic on exactly its span iff its context
// is empty.
func TestContextDiagnosticsMatchEmptyContexts(t *testing.T) {
	srcs := []string{
		"to paint\n  ask patches [ set pcolor red set heading 90 ]\nend",
		"to walk\n  fd 1\nend\nto go\n  ask patches [ walk ]\nend",
		"to f\n  fd 1\n  if true [ set pcolor red ]\nend",
		"to g\n  fd 1\n  sprout 1\nend",
		"to h\n  ask turtles [ ask patches [ fd 1 ] ]\nend",
		"to k\n  ask links [ set pcolor red ]\nend",
	}
	for _, src := range srcs {
		v := analyze(src)
		spans := map[[2]int]bool{}
		for _, d := range lint.Run(v, lint.Context) {
			spans[[2]int{d.From, d.To}] = true
		}
		want := map[[2]int]bool{}
		var visit func(s *state.Scope)
		visit = func(s *state.Scope) {
			for _, b := range s.CodeBlocks {
				if b.Context.IsEmpty() {
					want[[2]int{b.From, b.To}] = true
				}
				visit(&b.Scope)
			}
			for _, a := range s.AnonymousProcedures {
				if a.Context.IsEmpty() {
					want[[2]int{a.From, a.To}] = true
				}
				visit(&a.Scope)
			}
		}
		for _, p := range v.Lint.Procedures {
			if p.Context.IsEmpty() {
				want[[2]int{p.From, p.To}] = true
			}
			visit(&p.Scope)
		}
		if diff := cmp.Diff(want, spans); diff != "" {
			t.Errorf("%q (-empty contexts +diagnostics):\n%s", src, diff)
		}
	}
}

func TestArity(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{"too few", "to go fd end", []string{"Too few right args for fd. Expected 1 found 0."}},
		{"too many", "to go fd 1 2 end", []string{"Too many right args for fd. Expected 1 found 2."}},
		{"default form", "to go ifelse true [ fd 1 ] [ fd 2 ] end", nil},
		{"default plus one", "to go ifelse true [ fd 1 ] [ fd 2 ] [ fd 3 ] end", []string{"Too many right args for ifelse. Expected 3 found 4."}},
		{"parenthesized variadic", "to go (ifelse true [ fd 1 ] false [ fd 2 ] [ fd 3 ]) end", nil},
		{"below minimum", "to go (ifelse true) end", []string{"Too few right args for ifelse. Expected 2 found 1."}},
		{"reporter variadic", "to go show (list 1 2 3 4) end", nil},
		{"repeat before trailing slot", "to go (foreach [1] [2] [ [a b] -> show a + b ]) end", nil},
		{"repeat before trailing slot too few", "to go (foreach [ x -> show x ]) end", []string{"Too few right args for foreach. Expected 2 found 1."}},
		{"missing left", "to go show + 2 end", []string{"Left args for +. Expected 1 found 0."}},
		{"let without value", "to go let x end", []string{"Too few right args for let. Expected 2 found 1."}},
		{"let with surplus", "to go let x 1 2 end", []string{"Too many right args for let. Expected 2 found 3."}},
		{"procedure", "to walk [ n ] fd n end\nto go walk end", []string{"Too few right args for walk. Expected 1 found 0."}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := keys(lint.Run(analyze(tt.src), lint.Arity))
			if diff := cmp.Diff(tt.want, got, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
		})
	}
}

func TestParenthesizedForeachWithLiteralLists(t *testing.T) {
	got := keys(lint.Run(analyze("to go (foreach [1 2] [3 4] [ [a b] -> show a + b ]) end")))
	if len(got) != 0 {
		t.Errorf("diagnostics = %v", got)
	}
}

func TestNamingCollisionSymmetry(t *testing.T) {
	for _, src := range []string{
		"globals [ x ]\nbreed [ xs x ]",
		"breed [ xs x ]\nglobals [ x ]",
	} {
		diags := lint.Run(analyze(src), lint.Naming)
		if len(diags) != 1 {
			t.Fatalf("%q: diagnostics = %v", src, keys(diags))
		}
		if d := diags[0]; d.Key != lint.KeyAlreadyUsed || d.From != strings.LastIndex(src, "x") {
			t.Errorf("%q: %+v should flag the second declaration", src, d)
		}
	}
}

func TestNaming(t *testing.T) {
	tests := []struct {
		src  string
		want []string
	}{
		{"globals [ fd ]", []string{"Term fd reserved."}},
		{"turtles-own [ pcolor ]", []string{"Term pcolor reserved."}},
		{"patches-own [ color ]", nil},
		{"links-own [ color ]", []string{"Term color reserved."}},
		{"to go [ a ] let a 1 end", []string{"Term a already used."}},
		{"to f let x 1 end\nto g let x 2 end", nil},
		{"to f ask turtles [ let x 1 ] let x 2 end", nil},
		{"to f let x 1 ask turtles [ let x 2 ] end", []string{"Term x already used."}},
		{"to go end\nto go end", []string{"Term go already used."}},
		{"breed [ wolves wolves ]", []string{"Breed wolves uses the same name for singular and plural."}},
		{"breed [ wolves wolf ]\nbreed [ wolves sheep ]", []string{"Term wolves already used."}},
		{"breed [ wolves wolf ]\nto hatch-wolves end", []string{"Term hatch-wolves reserved."}},
		{"breed [ wolves wolf ]\nbreed [ sheep a-sheep ]\nwolves-own [ energy ]\nsheep-own [ energy ]", nil},
		{"breed [ wolves wolf ]\nturtles-own [ energy ]\nwolves-own [ energy ]", []string{"Term energy already used."}},
	}
	for _, tt := range tests {
		got := keys(lint.Run(analyze(tt.src), lint.Naming))
		if diff := cmp.Diff(tt.want, got, cmpopts.EquateEmpty()); diff != "" {
			t.Errorf("%q (-want +got):\n%s", tt.src, diff)
		}
	}
}

func TestNamingSingularIsPluralIsWarning(t *testing.T) {
	diags := lint.Run(analyze("breed [ wolves wolves ]"), lint.Naming)
	if len(diags) != 1 {
		t.Fatalf("diagnostics = %v", keys(diags))
	}
	if d := diags[0]; d.Key != lint.KeySingularIsPlural || d.Severity != lint.SeverityWarning {
		t.Errorf("got %+v, want a warning keyed %q", d, lint.KeySingularIsPlural)
	}
}

func TestNamingAcrossDocuments(t *testing.T) {
	first := analyze("globals [ shared ]")
	second := parser.Analyze("to shared end", syntax.Model, nil, "panel")
	merged := state.Merge(first.Lint, second.Lint)
	second.Lint = merged
	diags := lint.Run(second, lint.Naming)
	if got := keys(diags); !cmp.Equal(got, []string{"Term shared already used."}) {
		t.Errorf("diagnostics = %v", got)
	}
	first.Lint = merged
	if diags := lint.Run(first, lint.Naming); len(diags) != 0 {
		t.Errorf("first declarer should be clean: %v", keys(diags))
	}
}

func TestIdentifiers(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{"unknown", "to go show foo end", []string{"Unrecognized identifier foo"}},
		{"local", "to go let x 1 show x end", nil},
		{"forward reference", "to go show x let x 1 end", []string{"Unrecognized identifier x"}},
		{"argument", "to go [ n ] show n end", nil},
		{"anonymous argument", "to go foreach [ 1 2 ] [ n -> show n ] end", nil},
		{"unsupported", "to go show user-directory end", []string{"Unsupported statement user-directory"}},
		{"missing extension", "to go let t table:make end", []string{"Missing extension table for table:make"}},
		{"declared extension", "extensions [ table ]\nto go let t table:make end", nil},
		{"uncatalogued extension", "extensions [ gis ]\nto go gis:load-dataset \"x\" end", nil},
		{"breed shaped words are left to breed-names", "to go create-wolves 3 end", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := keys(lint.Run(analyze(tt.src), lint.Identifiers))
			if diff := cmp.Diff(tt.want, got, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
		})
	}
	diags := lint.Run(analyze("to go show user-directory end"), lint.Identifiers)
	if diags[0].Severity != lint.SeverityWarning {
		t.Errorf("unsupported primitives should warn, got %s", diags[0].Severity)
	}
}

func TestBreedNameFix(t *testing.T) {
	src := "to go\n  create-wolves 3\nend"
	diags := lint.Run(analyze(src), lint.BreedNames)
	if len(diags) != 1 || diags[0].Key != lint.KeyUnrecognizedBreed {
		t.Fatalf("diagnostics = %v", keys(diags))
	}
	if len(diags[0].Fixes) != 1 {
		t.Fatalf("want an add-breed fix, got %+v", diags[0].Fixes)
	}
	fix := diags[0].Fixes[0]
	if !cmp.Equal(fix.Args, []string{"wolves", "wolve"}) {
		t.Errorf("guessed names = %v", fix.Args)
	}
	fixed := textedit.Apply(src, fix.Changes)
	if !strings.HasPrefix(fixed, "breed [ wolves wolve ]\n") {
		t.Errorf("fixed source = %q", fixed)
	}
	if rest := lint.Run(analyze(fixed)); len(rest) != 0 {
		t.Errorf("fixed source still has diagnostics: %v", keys(rest))
	}
}

func TestBreedNameRejectedType(t *testing.T) {
	diags := lint.Run(analyze("breed [ wolves wolf ]\nto go ask turtle 0 [ show my-wolves ] end"), lint.BreedNames)
	if len(diags) != 1 || len(diags[0].Fixes) != 0 {
		t.Errorf("my-wolves on a turtle breed should be flagged without a fix: %+v", diags)
	}
}

func TestStructure(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		mode   syntax.Mode
		linter lint.Linter
		want   []string
	}{
		{"stray arrow", "to go fd 1 -> end", syntax.Model, lint.UnrecognizedStatement, []string{"Unrecognized statement ->"}},
		{"misplaced", "globals [ a ]\nfd 1\nto go end", syntax.Model, lint.UnrecognizedGlobal, []string{"Unrecognized global statement fd 1"}},
		{"headless procedure", "fd 1 end", syntax.Model, lint.UnrecognizedGlobal, []string{"Unrecognized global statement fd 1 end"}},
		{"stray close", "to go ] end", syntax.Model, lint.Brackets, []string{"Unmatched item ]"}},
		{"unclosed block", "to go ask turtles [ fd 1 end", syntax.Model, lint.Brackets, []string{"Unmatched item ["}},
		{"unclosed paren", "to go show (1 + 2 end", syntax.Model, lint.Brackets, []string{"Unmatched item ("}},
		{"procedure in snippet", "to go end", syntax.Embedded, lint.Mode, []string{"Invalid to go end in embedded mode"}},
		{"command in one-liner", "fd 1", syntax.OneLine, lint.Mode, []string{"Invalid fd 1 in oneline mode"}},
		{"two expressions", "1 2", syntax.OneLine, lint.Mode, []string{"Too many expressions in oneline mode"}},
		{"one expression", "1 + 2", syntax.OneLine, lint.Mode, nil},
		{"declaration in block", "to go\n  ask turtles [ globals [ x ] ]\nend", syntax.Model, lint.BlockContent, []string{"Invalid code block content globals [ x ]"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := parser.Analyze(tt.src, tt.mode, nil, "main")
			got := keys(lint.Run(v, tt.linter))
			if diff := cmp.Diff(tt.want, got, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
		})
	}
}

func TestPanickingLinterIsIsolated(t *testing.T) {
	boom := lint.Linter{Name: "boom", Run: func(*lint.Pass) { panic("boom") }}
	note := lint.Linter{Name: "note", Run: func(p *lint.Pass) {
		p.Reportf(p.Tree.Root, lint.SeverityInfo, "checked")
	}}
	diags := lint.Run(analyze("to go end"), boom, note)
	if len(diags) != 1 || diags[0].Source != "note" {
		t.Errorf("diagnostics = %+v", diags)
	}
}

func TestCacheVersions(t *testing.T) {
	runs := 0
	counter := lint.Linter{Name: "count", Run: func(*lint.Pass) { runs++ }}
	c := lint.NewCache(counter)
	v := analyze("to go end")

	steps := []struct {
		doc, ctx uint64
		want     int
	}{
		{1, 1, 1},
		{1, 1, 1},
		{1, 2, 2},
		{2, 2, 3},
		{2, 2, 3},
	}
	for _, s := range steps {
		c.Lint(v, s.doc, s.ctx)
		if runs != s.want {
			t.Fatalf("after (%d,%d) runs = %d, want %d", s.doc, s.ctx, runs, s.want)
		}
	}
	c.Invalidate()
	c.Lint(v, 2, 2)
	if runs != 4 {
		t.Errorf("Invalidate did not force a run")
	}
}

func TestExternalErrors(t *testing.T) {
	diags := lint.ExternalErrors(lint.SourceCompiler, []lint.ExternalError{
		{Message: " Nothing named FOO has been defined. ", Start: 3, End: 6},
		{Message: "out of range", Start: 40, End: 2},
	}, 10)
	want := []lint.Diagnostic{
		{From: 3, To: 6, Key: lint.KeyExternal, Args: []string{"Nothing named FOO has been defined."}, Source: "compiler"},
		{From: 10, To: 10, Key: lint.KeyExternal, Args: []string{"out of range"}, Source: "compiler"},
	}
	if diff := cmp.Diff(want, diags); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	if got := diags[0].Message(); got != "Nothing named FOO has been defined." {
		t.Errorf("Message = %q", got)
	}
}
