package syntax

import (
	"fmt"
	"io"
	"strings"
)

// Dump writes an indented outline of the tree, one node per line with its
// range and, for leaves, its text.
func Dump(w io.Writer, t *Tree) error {
	if t == nil || t.Root == nil {
		return nil
	}
	var err error
	var rec func(n *Node, depth int)
	rec = func(n *Node, depth int) {
		if err != nil {
			return
		}
		line := fmt.Sprintf("%s%s [%d,%d]", strings.Repeat("  ", depth), n.Kind, n.From, n.To)
		if n.Kind.IsLeaf() {
			text := t.Source[n.From:n.To]
			if len(text) > 60 {
				text = text[:60] + "..."
			}
			line += fmt.Sprintf(" %q", text)
		}
		if _, err = fmt.Fprintln(w, line); err != nil {
			return
		}
		for _, c := range n.Children {
			rec(c, depth+1)
		}
	}
	rec(t.Root, 0)
	return err
}
