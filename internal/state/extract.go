package state

import (
	"github.com/DeusData/netlogo-intel/internal/breeds"
	"github.com/DeusData/netlogo-intel/internal/primitives"
	"github.com/DeusData/netlogo-intel/internal/syntax"
)

// Extract builds a fresh LintContext fragment from tree. sym supplies names
// declared elsewhere (usually the preprocess context); the fragment's own
// declarations take precedence. Extract is total and idempotent.
func Extract(tree *syntax.Tree, sym Symbols, cat *primitives.Catalog, editorID string) *LintContext {
	lc := NewLintContext()
	if tree == nil || tree.Root == nil {
		return lc
	}
	if cat == nil {
		cat = primitives.Default()
	}
	x := &extractor{tree: tree, lc: lc, cat: cat, editor: editorID}
	x.sym = Layer{lc, sym}
	x.declarations()
	x.headers()
	x.bodies()
	x.narrowCalls()
	for _, p := range lc.Procedures {
		foldScope(&p.Scope, p.Context)
	}
	if lc.Snippet != nil {
		foldScope(&lc.Snippet.Scope, lc.Snippet.Context)
	}
	return lc
}

type extractor struct {
	tree   *syntax.Tree
	lc     *LintContext
	sym    Symbols
	cat    *primitives.Catalog
	editor string
	procs  []*Procedure // source order
}

// identifiers returns the names of a declaration's bracket list.
func identifiers(n *syntax.Node) []string {
	var out []string
	for _, c := range n.ChildrenOf(syntax.Identifier) {
		out = append(out, c.Text)
	}
	return out
}

func (x *extractor) declarations() {
	var owns []*syntax.Node
	for _, n := range x.tree.Root.Children {
		switch n.Kind {
		case syntax.Extensions:
			for _, name := range identifiers(n) {
				setOwner(x.lc.Extensions, name, x.editor)
			}
		case syntax.Globals:
			for _, name := range identifiers(n) {
				setOwner(x.lc.Globals, name, x.editor)
			}
		case syntax.Breed:
			names := identifiers(n)
			if len(names) != 2 || n.Child(syntax.CloseBracket) == nil {
				continue
			}
			plural, singular := names[0], names[1]
			if _, ok := x.lc.Breeds[singular]; ok {
				continue
			}
			if _, ok := x.lc.BreedByPlural(plural); ok {
				continue
			}
			x.lc.Breeds[singular] = &Breed{
				Singular: singular,
				Plural:   plural,
				Type:     breeds.TypeForKeyword(n.Head().Text),
				EditorID: x.editor,
				From:     n.From,
				To:       n.To,
			}
		case syntax.BreedsOwn:
			owns = append(owns, n)
		}
	}
	// Own declarations may precede the breed they extend.
	for _, n := range owns {
		kw := n.Head().Text
		plural := kw[:len(kw)-len("-own")]
		info, ok := x.lc.BreedByPlural(plural)
		if !ok {
			builtin, isBuiltin := breeds.BuiltinByPlural(plural)
			if !isBuiltin {
				continue
			}
			x.lc.Breeds[builtin.Singular] = &Breed{
				Singular: builtin.Singular,
				Plural:   builtin.Plural,
				Type:     builtin.Type,
				EditorID: x.editor,
				Default:  true,
				From:     n.From,
				To:       n.To,
			}
			info = builtin
		}
		b := x.lc.Breeds[info.Singular]
		b.Variables = appendUnique(b.Variables, identifiers(n)...)
	}
}

func setOwner(m map[string]string, name, editor string) {
	if _, ok := m[name]; !ok {
		m[name] = editor
	}
}

func (x *extractor) headers() {
	for _, n := range x.tree.Root.Children {
		if n.Kind != syntax.Procedure || n.Child(syntax.To) == nil {
			continue
		}
		nameNode := n.Child(syntax.ProcedureName)
		if nameNode == nil {
			continue
		}
		if _, dup := x.lc.Procedures[nameNode.Text]; dup {
			continue
		}
		p := &Procedure{
			Name:      nameNode.Text,
			IsCommand: n.Child(syntax.To).Text == "to",
			From:      n.From,
			To:        n.To,
			NameFrom:  nameNode.From,
			NameTo:    nameNode.To,
			HasEnd:    n.Child(syntax.End) != nil,
			Context:   primitives.AnyContext(),
			EditorID:  x.editor,
		}
		if args := n.Child(syntax.Arguments); args != nil {
			p.Arguments = identifiers(args)
		}
		x.lc.Procedures[p.Name] = p
		x.procs = append(x.procs, p)
	}
}

// frame is the scope under construction while walking a body.
type frame struct {
	scope    *Scope
	ctx      *primitives.AgentContext
	locals   map[string]bool
	from, to int
}

func (f *frame) child(scope *Scope, ctx *primitives.AgentContext, from, to int, names ...string) *frame {
	locals := make(map[string]bool, len(f.locals)+len(names))
	for k := range f.locals {
		locals[k] = true
	}
	for _, n := range names {
		locals[n] = true
	}
	return &frame{scope: scope, ctx: ctx, locals: locals, from: from, to: to}
}

func (x *extractor) bodies() {
	for _, n := range x.tree.Root.Children {
		if n.Kind != syntax.Procedure {
			continue
		}
		name := n.Name()
		p, ok := x.lc.Procedures[name]
		if !ok || p.From != n.From {
			continue
		}
		f := &frame{scope: &p.Scope, ctx: &p.Context, locals: map[string]bool{}, from: p.From, to: p.To}
		for _, a := range p.Arguments {
			f.locals[a] = true
		}
		for _, c := range n.Children {
			switch c.Kind {
			case syntax.To, syntax.ProcedureName, syntax.Arguments, syntax.End, syntax.LineComment:
				continue
			}
			x.visit(c, f)
		}
	}
	if x.tree.Mode == syntax.Model {
		return
	}
	s := &Procedure{
		IsCommand: x.tree.Mode == syntax.Embedded,
		From:      x.tree.Root.From,
		To:        x.tree.Root.To,
		HasEnd:    true,
		Context:   primitives.AnyContext(),
		EditorID:  x.editor,
	}
	f := &frame{scope: &s.Scope, ctx: &s.Context, locals: map[string]bool{}, from: s.From, to: s.To}
	for _, c := range x.tree.Root.Children {
		if c.Kind != syntax.Procedure && !c.Kind.IsDeclaration() {
			x.visit(c, f)
		}
	}
	x.lc.Snippet = s
}

func (x *extractor) classify(word string, f *frame) (Word, bool) {
	if f.locals[word] {
		return Word{}, false
	}
	return Classify(x.sym, x.cat, word), true
}

func (x *extractor) narrowByVariable(w Word, f *frame) {
	switch w.Class {
	case ClassBuiltinVariable:
		*f.ctx = f.ctx.Combine(w.Variable.Context)
	case ClassBreedVariable:
		if c, ok := BreedVariableContext(w.Breed.Type); ok {
			*f.ctx = f.ctx.Combine(c)
		}
	}
}

func (x *extractor) visit(n *syntax.Node, f *frame) {
	switch n.Kind {
	case syntax.Let:
		var name string
		for _, c := range n.Children {
			switch {
			case c.Kind == syntax.Keyword || c.Kind == syntax.LineComment:
			case c.Kind == syntax.Identifier && name == "":
				name = c.Text
			default:
				x.visit(c, f)
			}
		}
		if name != "" {
			f.scope.Variables = append(f.scope.Variables, LocalVariable{
				Name:        name,
				Type:        primitives.TypeWildcard,
				CreationPos: n.To,
				From:        f.from,
				To:          f.to,
			})
			f.locals[name] = true
		}
	case syntax.Set:
		for _, c := range n.Children {
			if c.Kind != syntax.Keyword {
				x.visit(c, f)
			}
		}
	case syntax.CommandStatement, syntax.ReporterCall:
		x.visitCall(n, f)
	case syntax.CommandBlock, syntax.ReporterBlock:
		// A block that is not an argument of a call runs in place.
		x.block(n, "", primitives.AnyContext(), true, "", f)
	case syntax.AnonymousProcedure:
		x.anonymous(n, f)
	case syntax.Identifier:
		if w, ok := x.classify(n.Text, f); ok {
			x.narrowByVariable(w, f)
		}
	default:
		for _, c := range n.Children {
			x.visit(c, f)
		}
	}
}

func (x *extractor) visitCall(n *syntax.Node, f *frame) {
	head := n.Head()
	if head == nil {
		for _, c := range n.Children {
			x.visit(c, f)
		}
		return
	}
	w, ok := x.classify(head.Text, f)
	var prim *primitives.Primitive
	if ok {
		switch w.Class {
		case ClassPrimitive, ClassBreedPrimitive:
			prim = w.Primitive
			if prim != nil {
				*f.ctx = f.ctx.Combine(prim.Context)
			}
		case ClassProcedure:
			f.scope.Calls = append(f.scope.Calls, Call{Name: head.Text, From: head.From, To: head.To})
		default:
			x.narrowByVariable(w, f)
		}
	}
	left, right := n.Args()
	for _, arg := range left {
		x.visitArg(arg, head.Text, prim, w, left, right, f)
	}
	for _, arg := range right {
		x.visitArg(arg, head.Text, prim, w, left, right, f)
	}
}

func (x *extractor) visitArg(arg *syntax.Node, name string, prim *primitives.Primitive, w Word, left, right []*syntax.Node, f *frame) {
	switch arg.Kind {
	case syntax.CommandBlock, syntax.ReporterBlock:
		ctx, inherit := primitives.AnyContext(), true
		breed := ""
		if prim != nil {
			ctx, inherit, breed = x.blockContext(prim, left, right, f)
		}
		if w.Class == ClassBreedPrimitive {
			breed = w.Breed.Plural
		}
		if prim == nil {
			name = ""
		}
		x.block(arg, name, ctx, inherit, breed, f)
	default:
		x.visit(arg, f)
	}
}

// blockContext decides the agent kinds a primitive's block runs as.
func (x *extractor) blockContext(p *primitives.Primitive, left, right []*syntax.Node, f *frame) (primitives.AgentContext, bool, string) {
	switch p.BlockKind {
	case primitives.BlockFixed:
		if p.BlockContext != nil {
			return *p.BlockContext, false, ""
		}
		return primitives.AnyContext(), false, ""
	case primitives.BlockAgentset:
		src := argNode(p.AgentsetArg, left, right)
		breed := ""
		if src != nil && src.Kind == syntax.ReporterCall {
			if h := src.Head(); h != nil {
				if w, ok := x.classify(h.Text, f); ok && w.Class == ClassBreed {
					breed = w.Breed.Plural
				}
			}
		}
		if k, ok := x.kindsOf(src, f); ok {
			return k, false, breed
		}
		return primitives.AnyContext(), false, breed
	}
	return primitives.AnyContext(), true, ""
}

func argNode(i int, left, right []*syntax.Node) *syntax.Node {
	if i == primitives.LeftArg {
		if len(left) == 0 {
			return nil
		}
		return left[len(left)-1]
	}
	if i >= 0 && i < len(right) {
		return right[i]
	}
	return nil
}

// kindsOf infers the agent kinds an expression denotes. ok is false when
// nothing is known.
func (x *extractor) kindsOf(n *syntax.Node, f *frame) (primitives.AgentContext, bool) {
	if n == nil {
		return primitives.AnyContext(), false
	}
	switch n.Kind {
	case syntax.Parenthesized:
		for _, c := range n.Children {
			if !c.Kind.IsLeaf() {
				return x.kindsOf(c, f)
			}
		}
	case syntax.ReporterCall:
		head := n.Head()
		if head == nil {
			break
		}
		w, ok := x.classify(head.Text, f)
		if !ok {
			break
		}
		switch w.Class {
		case ClassBreed:
			return BreedKinds(w.Breed.Type)
		case ClassPrimitive, ClassBreedPrimitive:
			if w.Primitive == nil {
				break
			}
			if w.Class == ClassBreedPrimitive && w.Primitive.Return.Has(primitives.TypeAgent|primitives.TypeAgentset) {
				if k, ok := BreedKinds(w.Breed.Type); ok {
					return k, true
				}
			}
			if w.Primitive.BlockKind == primitives.BlockAgentset && w.Primitive.Return == primitives.TypeWildcard {
				// [ expr ] of agents reports whatever the block reports.
				break
			}
			left, right := n.Args()
			k := w.Primitive.ReturnKinds(func(i int) (primitives.AgentContext, bool) {
				return x.kindsOf(argNode(i, left, right), f)
			})
			if k.IsEmpty() || k.IsAny() {
				break
			}
			return k, true
		}
	case syntax.Identifier:
		if w, ok := x.classify(n.Text, f); ok && w.Class == ClassBreed {
			return BreedKinds(w.Breed.Type)
		}
	}
	return primitives.AnyContext(), false
}

func (x *extractor) block(n *syntax.Node, prim string, ctx primitives.AgentContext, inherit bool, breed string, f *frame) {
	b := &CodeBlock{
		From:                 n.From,
		To:                   n.To,
		Primitive:            prim,
		Breed:                breed,
		Reporter:             n.Kind == syntax.ReporterBlock,
		Context:              ctx,
		InheritParentContext: inherit,
	}
	f.scope.CodeBlocks = append(f.scope.CodeBlocks, b)
	inner := f.child(&b.Scope, &b.Context, n.From, n.To)
	for _, c := range n.Children {
		x.visit(c, inner)
	}
}

func (x *extractor) anonymous(n *syntax.Node, f *frame) {
	a := &AnonymousProcedure{From: n.From, To: n.To, Context: primitives.AnyContext()}
	if args := n.Child(syntax.Arguments); args != nil {
		a.Arguments = identifiers(args)
	}
	command := false
	for _, c := range n.Children {
		if c.Kind.IsStatement() {
			command = true
		}
	}
	a.Reporter = !command
	f.scope.AnonymousProcedures = append(f.scope.AnonymousProcedures, a)
	inner := f.child(&a.Scope, &a.Context, n.From, n.To, a.Arguments...)
	for _, c := range n.Children {
		if c.Kind == syntax.Arguments {
			continue
		}
		x.visit(c, inner)
	}
}

// narrowCalls intersects each scope with the contexts of the user procedures
// it calls until nothing changes. Callees with no valid context are skipped
// so one error does not cascade through the call graph.
func (x *extractor) narrowCalls() {
	for i := 0; i <= len(x.procs); i++ {
		changed := false
		for _, p := range x.procs {
			if x.narrowScope(&p.Scope, &p.Context) {
				changed = true
			}
		}
		if !changed {
			break
		}
	}
	if s := x.lc.Snippet; s != nil {
		x.narrowScope(&s.Scope, &s.Context)
	}
}

func (x *extractor) narrowScope(s *Scope, ctx *primitives.AgentContext) bool {
	changed := false
	for _, c := range s.Calls {
		callee, ok := x.lc.Procedures[c.Name]
		if !ok {
			continue
		}
		eff := callee.Effective()
		if eff.IsEmpty() {
			continue
		}
		if next := ctx.Combine(eff); next != *ctx {
			*ctx = next
			changed = true
		}
	}
	for _, b := range s.CodeBlocks {
		if x.narrowScope(&b.Scope, &b.Context) {
			changed = true
		}
	}
	for _, a := range s.AnonymousProcedures {
		if x.narrowScope(&a.Scope, &a.Context) {
			changed = true
		}
	}
	return changed
}

// foldScope intersects blocks that run as their parent's agent with the
// parent's context.
func foldScope(s *Scope, parent primitives.AgentContext) {
	for _, b := range s.CodeBlocks {
		if b.InheritParentContext && !parent.IsEmpty() {
			b.Context = b.Context.Combine(parent)
		}
		foldScope(&b.Scope, b.Context)
	}
	for _, a := range s.AnonymousProcedures {
		foldScope(&a.Scope, a.Context)
	}
}
