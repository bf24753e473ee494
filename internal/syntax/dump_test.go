package syntax

import (
	"strings"
	"testing"
)

func TestDump(t *testing.T) {
	tree := Parse("to go\n  fd 1\nend", Model, nil)
	var b strings.Builder
	if err := Dump(&b, tree); err != nil {
		t.Fatal(err)
	}
	out := b.String()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if !strings.HasPrefix(lines[0], tree.Root.Kind.String()+" [0,") {
		t.Errorf("first line = %q, want the root", lines[0])
	}
	if !strings.Contains(out, `"fd"`) || !strings.Contains(out, `"end"`) {
		t.Errorf("leaves missing from dump:\n%s", out)
	}
	for _, l := range lines[1:] {
		if !strings.HasPrefix(l, "  ") {
			t.Errorf("child line %q is not indented", l)
		}
	}
}
