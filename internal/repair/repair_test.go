package repair_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/DeusData/netlogo-intel/internal/breeds"
	"github.com/DeusData/netlogo-intel/internal/parser"
	"github.com/DeusData/netlogo-intel/internal/repair"
	"github.com/DeusData/netlogo-intel/internal/state"
	"github.com/DeusData/netlogo-intel/internal/syntax"
	"github.com/DeusData/netlogo-intel/internal/textedit"
)

func TestPrettify(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "procedure body",
			in:   "to go fd 1 rt 90 end",
			want: "to go\n  fd 1\n  rt 90\nend\n",
		},
		{
			name: "declarations then procedure",
			in:   "globals [a  b]\nto go ask turtles [fd 1] end",
			want: "globals [ a b ]\n\nto go\n  ask turtles [ fd 1 ]\nend\n",
		},
		{
			name: "multi statement block",
			in:   "to go ask turtles [ fd 1 rt 90 ] end",
			want: "to go\n  ask turtles [\n    fd 1\n    rt 90\n  ]\nend\n",
		},
		{
			name: "comments stay put",
			in:   "; header\nto go ; start\n  fd 1   ; move\nend",
			want: "; header\nto go ; start\n  fd 1 ; move\nend\n",
		},
		{
			name: "parentheses and lists",
			in:   "to go show ( 1 + 2 ) * 3 show [ 1 2 3 ] end",
			want: "to go\n  show (1 + 2) * 3\n  show [1 2 3]\nend\n",
		},
		{
			name: "procedures separated",
			in:   "to a fd 1 end to b rt 1 end",
			want: "to a\n  fd 1\nend\n\nto b\n  rt 1\nend\n",
		},
		{
			name: "empty",
			in:   "  \n ",
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := repair.Prettify(tt.in, syntax.Model)
			if got != tt.want {
				t.Errorf("Prettify(%q)\n got: %q\nwant: %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestPrettifyIdempotent(t *testing.T) {
	inputs := []string{
		"to go fd 1 end",
		"breed [wolves wolf]\nwolves-own [energy]\nto go ask wolves [ fd 1 ; step\n rt 90 ] end",
		"to-report f [x] report map [ y -> y * x ] [1 2 3] end",
		"to go ifelse any? turtles [ fd 1 ] [ rt 90 lt 3 ] end",
		"to go fd 1 ] end",
		"fd 1\nto go end",
		"to go ask patches [ ; only a comment\n ] end",
	}
	for _, in := range inputs {
		once := repair.Prettify(in, syntax.Model)
		twice := repair.Prettify(once, syntax.Model)
		if once != twice {
			t.Errorf("Prettify not idempotent for %q\nonce:  %q\ntwice: %q", in, once, twice)
		}
	}
}

func TestFixGeneratedCode(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "procedure structure preserved",
			in:   "to go create-turtles 5 [ fd 1 ] end",
			want: "to go\n  create-turtles 5 [ fd 1 ]\nend",
		},
		{
			name: "globals hoisted and merged",
			in:   "globals [ a ]\nto go\n  set a 1\nend\nglobals [ a b ]",
			want: "globals [ a b ]\n\nto go\n  set a 1\nend",
		},
		{
			name: "singular equal to plural",
			in:   "breed [ wolves wolves ]\nto go\n  create-wolves 1\nend",
			want: "breed [ wolves wolve ]\n\nto go\n  create-wolves 1\nend",
		},
		{
			name: "bare statement wrapped",
			in:   "fd 1",
			want: "to play\n  fd 1\nend",
		},
		{
			name: "misplaced statement after declarations",
			in:   "to go\n  fd 1\nend\nglobals [ g ]\nshow g",
			want: "globals [ g ]\n\nto play\n  show g\nend\n\nto go\n  fd 1\nend",
		},
		{
			name: "duplicate and reserved globals stripped",
			in:   "globals [ a a color ]\nto go set a 1 end",
			want: "globals [ a ]\n\nto go\n  set a 1\nend",
		},
		{
			name: "reserved procedure name",
			in:   "to clear-all fd 1 end",
			want: "to setup-all\n  fd 1\nend",
		},
		{
			name: "empty procedure dropped",
			in:   "to helper end\nto go fd 1 end",
			want: "to go\n  fd 1\nend",
		},
		{
			name: "referenced empty procedure kept",
			in:   "to helper end\nto go helper fd 1 end",
			want: "to helper\nend\n\nto go\n  helper\n  fd 1\nend",
		},
		{
			name: "delegating procedure dropped",
			in:   "to setup clear-all end\nto go setup end",
			want: "to setup\n  clear-all\nend",
		},
		{
			name: "empty callee of delegating procedure kept",
			in:   "to helper end\nto go helper end",
			want: "to helper\nend\n\nto go\n  helper\nend",
		},
		{
			name: "empty procedure referenced by delegating caller kept",
			in:   "to go end\nto setup go end",
			want: "to go\nend\n\nto setup\n  go\nend",
		},
		{
			name: "reserved rename avoids existing name",
			in:   "to setup ca end\nto fd fd 1 end",
			want: "to setup\n  ca\nend\n\nto setup-2\n  fd 1\nend",
		},
		{
			name: "two reserved renames stay distinct",
			in:   "to fd fd 1 end\nto bk bk 1 end",
			want: "to setup\n  fd 1\nend\n\nto setup-2\n  bk 1\nend",
		},
		{
			name: "zero argument noise skipped",
			in:   "clear-all\nfd 1",
			want: "to play\n  fd 1\nend",
		},
		{
			name: "empty input",
			in:   "   ",
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := repair.FixGeneratedCode(tt.in, nil, repair.DefaultOptions())
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("FixGeneratedCode(%q) mismatch (-want +got):\n%s", tt.in, diff)
			}
			again := repair.FixGeneratedCode(got, nil, repair.DefaultOptions())
			if again != got {
				t.Errorf("not a fixed point:\nfirst:  %q\nsecond: %q", got, again)
			}
		})
	}
}

func TestFixGeneratedCodeKeepsDelegatingWhenDisabled(t *testing.T) {
	opts := repair.DefaultOptions()
	opts.DropDelegatingProcedures = false
	got := repair.FixGeneratedCode("to setup clear-all end\nto go setup end", nil, opts)
	want := "to setup\n  clear-all\nend\n\nto go\n  setup\nend"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestFixGeneratedCodeMergesParent(t *testing.T) {
	parent := &repair.Snapshot{
		Globals: []string{"score"},
		Breeds: []repair.SnapshotBreed{
			{Plural: "sheep", Singular: "a-sheep", Type: breeds.Turtle, Variables: []string{"wool"}},
		},
	}
	got := repair.FixGeneratedCode("to go\n  create-sheep 1\nend", parent, repair.DefaultOptions())
	want := "globals [ score ]\nbreed [ sheep a-sheep ]\nsheep-own [ wool ]\n\nto go\n  create-sheep 1\nend"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
	if again := repair.FixGeneratedCode(got, parent, repair.DefaultOptions()); again != got {
		t.Errorf("not a fixed point:\nfirst:  %q\nsecond: %q", got, again)
	}
}

func TestBuildSnapshot(t *testing.T) {
	src := "extensions [ table ]\nglobals [ b a ]\nbreed [ wolves wolf ]\nwolves-own [ energy ]\nturtles-own [ age ]\nto go end\nto-report r report 1 end"
	v := parser.Analyze(src, syntax.Model, nil, "main")
	got := repair.BuildSnapshot(v.Lint)
	want := &repair.Snapshot{
		Extensions: []string{"table"},
		Globals:    []string{"a", "b"},
		Breeds: []repair.SnapshotBreed{
			{Plural: "wolves", Singular: "wolf", Type: breeds.Turtle, Variables: []string{"energy"}},
			{Plural: "turtles", Singular: "turtle", Type: breeds.Turtle, Variables: []string{"age"}, Builtin: true},
		},
		Procedures: []string{"go", "r"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("BuildSnapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestCodeEditing(t *testing.T) {
	tests := []struct {
		name string
		src  string
		edit func(v *state.View) []textedit.Change
		want string
	}{
		{
			name: "globals appended to existing list",
			src:  "globals [ a ]\nto go end",
			edit: func(v *state.View) []textedit.Change { return repair.AddGlobals(v, "a", "b") },
			want: "globals [ a b ]\nto go end",
		},
		{
			name: "extensions declared at the top",
			src:  "to go end",
			edit: func(v *state.View) []textedit.Change { return repair.AddExtensions(v, "table") },
			want: "extensions [ table ]\nto go end",
		},
		{
			name: "breed after globals",
			src:  "globals [ a ]\nto go end",
			edit: func(v *state.View) []textedit.Change {
				return repair.AddBreed(v, breeds.Turtle, "wolves", "wolf")
			},
			want: "globals [ a ]\nbreed [ wolves wolf ]\nto go end",
		},
		{
			name: "existing breed untouched",
			src:  "breed [ wolves wolf ]",
			edit: func(v *state.View) []textedit.Change {
				return repair.AddBreed(v, breeds.Turtle, "wolves", "wolf")
			},
			want: "breed [ wolves wolf ]",
		},
		{
			name: "breed variables join the own list",
			src:  "breed [ wolves wolf ]\nwolves-own [ energy ]",
			edit: func(v *state.View) []textedit.Change {
				return repair.AddBreedVariables(v, "wolves", "energy", "age")
			},
			want: "breed [ wolves wolf ]\nwolves-own [ energy age ]",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := parser.Analyze(tt.src, syntax.Model, nil, "main")
			got := textedit.Apply(tt.src, tt.edit(v))
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
