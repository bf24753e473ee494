package syntax

// Edit replaces source bytes [From, To) with Insert.
type Edit struct {
	From   int    `json:"from"`
	To     int    `json:"to"`
	Insert string `json:"insert"`
}

// Apply returns src with the edit applied. Out-of-range offsets are clamped.
func (e Edit) Apply(src string) string {
	from, to := clampRange(e.From, e.To, len(src))
	return src[:from] + e.Insert + src[to:]
}

func clampRange(from, to, n int) (int, int) {
	if from < 0 {
		from = 0
	}
	if from > n {
		from = n
	}
	if to < from {
		to = from
	}
	if to > n {
		to = n
	}
	return from, to
}

// Reparse produces the tree for old.Source with e applied, re-parsing only the
// top-level items the edit can affect and reusing the rest with shifted
// offsets. The result is equivalent to a full Parse of the new source.
func Reparse(old *Tree, e Edit, res Resolver) *Tree {
	if old == nil {
		return Parse(e.Insert, Model, res)
	}
	if res == nil {
		res = nopResolver{}
	}
	e.From, e.To = clampRange(e.From, e.To, len(old.Source))
	src := e.Apply(old.Source)
	if old.Mode != Model || old.Root == nil || len(old.Root.Children) == 0 || res.Fingerprint() != old.Fingerprint {
		return Parse(src, old.Mode, res)
	}
	items := old.Root.Children
	delta := len(e.Insert) - (e.To - e.From)

	start := len(items) - 1
	for i, it := range items {
		if it.To >= e.From {
			start = i
			break
		}
	}
	if start > 0 {
		start--
	}
	// Runs of misplaced statements parse as a group.
	for start > 0 && groupMember(items[start]) {
		start--
	}

	anchors := map[int]int{}
	for j := start + 1; j < len(items); j++ {
		it := items[j]
		if it.From >= e.To && anchor(it) {
			if _, dup := anchors[it.From+delta]; !dup {
				anchors[it.From+delta] = j
			}
		}
	}

	begin := items[start].From
	p := newParser(src, lexFrom(src, begin), res, Model)
	reuse, stop := len(items), len(src)
	var fresh []*Node
	for !p.eof() {
		if j, ok := anchors[p.peek().Pos]; ok {
			reuse, stop = j, p.peek().Pos
			break
		}
		fresh = append(fresh, p.parseTopItem()...)
	}

	region := newNode(Program, fresh...)
	region.From, region.To = begin, stop
	var comments []Token
	for _, c := range p.comments {
		if c.Pos < stop {
			comments = append(comments, c)
		}
	}
	attachComments(region, comments)

	root := newNode(Program)
	for _, it := range items[:start] {
		root.add(cloneShift(it, 0))
	}
	root.add(region.Children...)
	for _, it := range items[reuse:] {
		root.add(cloneShift(it, delta))
	}
	root.From, root.To = 0, len(src)
	return &Tree{Source: src, Root: root, Mode: Model, Fingerprint: res.Fingerprint()}
}

func groupMember(n *Node) bool {
	switch n.Kind {
	case Misplaced, Error, LineComment:
		return true
	case Procedure:
		return n.Child(To) == nil
	}
	return false
}

// anchor reports whether parsing can safely resume at n.
func anchor(n *Node) bool {
	switch n.Kind {
	case Extensions, Globals, Breed, BreedsOwn:
		return true
	case Procedure:
		return n.Child(To) != nil
	}
	return false
}

func cloneShift(n *Node, delta int) *Node {
	c := &Node{Kind: n.Kind, From: n.From + delta, To: n.To + delta, Text: n.Text}
	if len(n.Children) > 0 {
		c.Children = make([]*Node, len(n.Children))
		for i, ch := range n.Children {
			cc := cloneShift(ch, delta)
			cc.Parent = c
			c.Children[i] = cc
		}
	}
	return c
}
