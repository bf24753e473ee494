package syntax

import "strings"

// Mode is the kind of source a tree was parsed from.
type Mode uint8

const (
	// Model is a full model: declarations and procedures only.
	Model Mode = iota
	// Embedded is a multi-statement snippet such as a button's commands.
	Embedded
	// OneLine is a single reporter expression such as a monitor.
	OneLine
)

func (m Mode) String() string {
	switch m {
	case Embedded:
		return "embedded"
	case OneLine:
		return "oneline"
	}
	return "model"
}

// ParseMode maps a mode name to a Mode.
func ParseMode(s string) (Mode, bool) {
	switch strings.ToLower(s) {
	case "", "model":
		return Model, true
	case "embedded":
		return Embedded, true
	case "oneline", "one-line":
		return OneLine, true
	}
	return Model, false
}

// Node is one node of the concrete syntax tree. Offsets are byte offsets
// into Tree.Source; To is exclusive.
type Node struct {
	Kind     Kind
	From     int
	To       int
	Text     string // lower-cased token text, leaves only
	Parent   *Node
	Children []*Node
}

// Tree is an immutable parse result.
type Tree struct {
	Source      string
	Root        *Node
	Mode        Mode
	Fingerprint uint64
}

func (n *Node) add(children ...*Node) *Node {
	for _, c := range children {
		if c == nil {
			continue
		}
		if len(n.Children) == 0 {
			n.From, n.To = c.From, c.To
		}
		if c.From < n.From {
			n.From = c.From
		}
		if c.To > n.To {
			n.To = c.To
		}
		c.Parent = n
		n.Children = append(n.Children, c)
	}
	return n
}

func newNode(k Kind, children ...*Node) *Node {
	n := &Node{Kind: k}
	return n.add(children...)
}

// Child returns the first child of kind k.
func (n *Node) Child(k Kind) *Node {
	for _, c := range n.Children {
		if c.Kind == k {
			return c
		}
	}
	return nil
}

// ChildrenOf returns every child of kind k.
func (n *Node) ChildrenOf(k Kind) []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.Kind == k {
			out = append(out, c)
		}
	}
	return out
}

// Ancestors returns the parent chain, nearest first.
func (n *Node) Ancestors() []*Node {
	var out []*Node
	for p := n.Parent; p != nil; p = p.Parent {
		out = append(out, p)
	}
	return out
}

// Ancestor returns the nearest ancestor of one of the given kinds.
func (n *Node) Ancestor(kinds ...Kind) *Node {
	for p := n.Parent; p != nil; p = p.Parent {
		for _, k := range kinds {
			if p.Kind == k {
				return p
			}
		}
	}
	return nil
}

// Index returns n's position among its parent's children.
func (n *Node) Index() int {
	if n.Parent == nil {
		return -1
	}
	for i, c := range n.Parent.Children {
		if c == n {
			return i
		}
	}
	return -1
}

// PrevSibling returns the previous sibling or nil.
func (n *Node) PrevSibling() *Node {
	i := n.Index()
	if i <= 0 {
		return nil
	}
	return n.Parent.Children[i-1]
}

// NextSibling returns the next sibling or nil.
func (n *Node) NextSibling() *Node {
	i := n.Index()
	if i < 0 || i+1 >= len(n.Parent.Children) {
		return nil
	}
	return n.Parent.Children[i+1]
}

// Head returns the primitive leaf of a call or statement node.
func (n *Node) Head() *Node {
	for _, c := range n.Children {
		switch c.Kind {
		case Command, Reporter, Keyword:
			return c
		}
	}
	return nil
}

// Parenthesized reports whether a call node wraps itself in parentheses.
func (n *Node) Parenthesized() bool {
	return len(n.Children) > 0 && n.Children[0].Kind == OpenParen
}

// Name returns the declared name of a Procedure node.
func (n *Node) Name() string {
	if c := n.Child(ProcedureName); c != nil {
		return c.Text
	}
	return ""
}

// Text returns the raw source covered by n.
func (t *Tree) Text(n *Node) string {
	if n == nil || n.From < 0 || n.To > len(t.Source) || n.From > n.To {
		return ""
	}
	return t.Source[n.From:n.To]
}

// WalkFunc is called for each node in depth-first order. Returning false
// skips the node's children.
type WalkFunc func(n *Node) bool

// Walk traverses the subtree rooted at n in depth-first order.
func Walk(n *Node, fn WalkFunc) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		Walk(c, fn)
	}
}

// Iterate visits nodes overlapping [from, to) depth-first, calling enter
// before and leave after each node's children. enter returning false skips
// the children (leave is still called).
func (t *Tree) Iterate(from, to int, enter func(*Node) bool, leave func(*Node)) {
	var visit func(n *Node)
	visit = func(n *Node) {
		if n.To < from || n.From > to {
			return
		}
		descend := enter == nil || enter(n)
		if descend {
			for _, c := range n.Children {
				visit(c)
			}
		}
		if leave != nil {
			leave(n)
		}
	}
	if t.Root != nil {
		visit(t.Root)
	}
}

// ResolveAt returns the innermost node covering pos. side < 0 prefers a node
// ending at pos, side > 0 a node starting at pos; side 0 tries both.
func (t *Tree) ResolveAt(pos, side int) *Node {
	if t.Root == nil {
		return nil
	}
	if side < 0 {
		if n := t.deepest(pos - 1); n != t.Root || pos == 0 {
			return n
		}
		return t.deepest(pos)
	}
	n := t.deepest(pos)
	if side == 0 && n == t.Root && pos > 0 {
		return t.deepest(pos - 1)
	}
	return n
}

func (t *Tree) deepest(pos int) *Node {
	n := t.Root
	for {
		var next *Node
		for _, c := range n.Children {
			if c.From <= pos && pos < c.To {
				next = c
				break
			}
		}
		if next == nil {
			return n
		}
		n = next
	}
}

// Leaves returns every token leaf in source order.
func (t *Tree) Leaves() []*Node {
	var out []*Node
	Walk(t.Root, func(n *Node) bool {
		if n.Kind.IsLeaf() {
			out = append(out, n)
		}
		return true
	})
	return out
}

// MatchBracket finds the bracket or parenthesis matching the one at pos.
// Brackets match among siblings, so a bracket the parser could not close
// has no match.
func (t *Tree) MatchBracket(pos int) (*Node, bool) {
	n := t.deepest(pos)
	if n == nil || n.From != pos || n.Parent == nil {
		return nil, false
	}
	var open, close Kind
	forward := true
	switch n.Kind {
	case OpenBracket:
		open, close = OpenBracket, CloseBracket
	case OpenParen:
		open, close = OpenParen, CloseParen
	case CloseBracket:
		open, close, forward = CloseBracket, OpenBracket, false
	case CloseParen:
		open, close, forward = CloseParen, OpenParen, false
	default:
		return nil, false
	}
	sibs := n.Parent.Children
	idx := n.Index()
	depth := 0
	step := 1
	if !forward {
		step = -1
	}
	for i := idx + step; i >= 0 && i < len(sibs); i += step {
		switch sibs[i].Kind {
		case open:
			depth++
		case close:
			if depth == 0 {
				return sibs[i], true
			}
			depth--
		}
	}
	return nil, false
}

// Line returns the zero-based line number of pos.
func (t *Tree) Line(pos int) int {
	if pos > len(t.Source) {
		pos = len(t.Source)
	}
	return strings.Count(t.Source[:pos], "\n")
}

// LineCol returns one-based line and column numbers for pos.
func LineCol(src string, pos int) (line, col int) {
	if pos > len(src) {
		pos = len(src)
	}
	if pos < 0 {
		pos = 0
	}
	line = strings.Count(src[:pos], "\n") + 1
	col = pos - strings.LastIndex(src[:pos], "\n")
	return line, col
}

// Args splits a call node's operands around its head, skipping parentheses
// and comments. Left holds the infix left operand, if any.
func (n *Node) Args() (left, right []*Node) {
	head := n.Head()
	seen := false
	for _, c := range n.Children {
		switch {
		case c == head:
			seen = true
			continue
		case c.Kind == OpenParen || c.Kind == CloseParen || c.Kind == LineComment:
			continue
		}
		if seen {
			right = append(right, c)
		} else {
			left = append(left, c)
		}
	}
	return left, right
}
