package lint

import (
	"strings"

	"github.com/DeusData/netlogo-intel/internal/breeds"
	"github.com/DeusData/netlogo-intel/internal/primitives"
	"github.com/DeusData/netlogo-intel/internal/syntax"
)

// Message keys of the naming linter.
const (
	KeyAlreadyUsed      = "Term _ already used."
	KeyReserved         = "Term _ reserved."
	KeySingularIsPlural = "Breed _ uses the same name for singular and plural."
)

type declKind uint8

const (
	declGlobal declKind = iota
	declBreed
	declBreedVariable
	declProcedure
	declArgument
	declLocal
)

// decl is one introduced name and the span where it is visible.
type decl struct {
	name     string
	kind     declKind
	node     *syntax.Node
	from, to int
	owner    string       // plural of the owning breed, breed variables only
	group    *syntax.Node // declaring statement, breeds only
	category primitives.Category
}

func (d decl) global() bool { return d.kind <= declProcedure }

// overlaps reports whether later, declared after d, shares a scope with it.
func (d decl) overlaps(later decl) bool {
	if d.kind == declBreedVariable && later.kind == declBreedVariable {
		if d.owner == later.owner {
			return true
		}
		// A breed inherits the variables of its built-in kind.
		return d.category == later.category && (isBuiltinPlural(d.owner) || isBuiltinPlural(later.owner))
	}
	if d.global() || later.global() {
		return true
	}
	return d.from <= later.node.From && later.node.From <= d.to
}

func isBuiltinPlural(p string) bool {
	_, ok := breeds.BuiltinByPlural(p)
	return ok
}

// Naming reports names declared twice within one scope and names that
// collide with keywords, primitives, built-in variables or breed primitives.
var Naming = Linter{
	Name: "naming",
	Doc:  "Report duplicate and reserved names.",
	Run: func(pass *Pass) {
		decls := collectDecls(pass)
		for i, d := range decls {
			if reserved(pass, d) {
				pass.Reportf(d.node, SeverityError, KeyReserved, d.name)
				continue
			}
			dup, self := false, false
			for _, prev := range decls[:i] {
				if prev.name == d.name && prev.overlaps(d) {
					dup = true
					self = d.kind == declBreed && prev.kind == declBreed && prev.group == d.group
					break
				}
			}
			if self {
				pass.Reportf(d.node, SeverityWarning, KeySingularIsPlural, d.name)
				continue
			}
			if !dup && d.kind != declBreedVariable {
				if owner, ok := pass.Lint.Owner(d.name); ok && owner != pass.View.EditorID {
					dup = true
				}
			}
			if dup {
				pass.Reportf(d.node, SeverityError, KeyAlreadyUsed, d.name)
			}
		}
	},
}

func collectDecls(pass *Pass) []decl {
	var out []decl
	whole := func(n *syntax.Node, kind declKind) decl {
		return decl{name: n.Text, kind: kind, node: n, from: pass.Tree.Root.From, to: pass.Tree.Root.To}
	}
	for _, top := range pass.Tree.Root.Children {
		switch top.Kind {
		case syntax.Globals:
			for _, id := range top.ChildrenOf(syntax.Identifier) {
				out = append(out, whole(id, declGlobal))
			}
		case syntax.Breed:
			for _, id := range top.ChildrenOf(syntax.Identifier) {
				d := whole(id, declBreed)
				d.group = top
				out = append(out, d)
			}
		case syntax.BreedsOwn:
			owner := strings.TrimSuffix(top.Children[0].Text, "-own")
			cat := ownerCategory(pass, owner)
			for _, id := range top.ChildrenOf(syntax.Identifier) {
				d := whole(id, declBreedVariable)
				d.owner, d.category = owner, cat
				out = append(out, d)
			}
		case syntax.Procedure:
			if name := top.Child(syntax.ProcedureName); name != nil && top.Child(syntax.To) != nil {
				out = append(out, whole(name, declProcedure))
			}
			if args := top.Child(syntax.Arguments); args != nil {
				for _, id := range args.ChildrenOf(syntax.Identifier) {
					out = append(out, decl{name: id.Text, kind: declArgument, node: id, from: top.From, to: top.To})
				}
			}
			out = collectLocals(top, out)
		default:
			out = collectLocals(top, out)
		}
	}
	return out
}

// collectLocals gathers let variables and anonymous procedure arguments
// below n. A let is visible in the rest of its enclosing body.
func collectLocals(n *syntax.Node, out []decl) []decl {
	syntax.Walk(n, func(c *syntax.Node) bool {
		switch c.Kind {
		case syntax.Let:
			id := c.Child(syntax.Identifier)
			if id == nil {
				return true
			}
			scope := c.Parent
			for scope != nil && scope.Parent != nil && !introducesScope(scope.Kind) {
				scope = scope.Parent
			}
			out = append(out, decl{name: id.Text, kind: declLocal, node: id, from: c.From, to: scope.To})
		case syntax.AnonymousProcedure:
			if args := c.Child(syntax.Arguments); args != nil {
				for _, id := range args.ChildrenOf(syntax.Identifier) {
					out = append(out, decl{name: id.Text, kind: declArgument, node: id, from: c.From, to: c.To})
				}
			}
		}
		return true
	})
	return out
}

func introducesScope(k syntax.Kind) bool {
	switch k {
	case syntax.Procedure, syntax.CommandBlock, syntax.ReporterBlock, syntax.AnonymousProcedure:
		return true
	}
	return false
}

// ownerCategory decides which built-in variables a <plural>-own list may not
// reuse. Unknown breeds yield category zero.
func ownerCategory(pass *Pass, plural string) primitives.Category {
	info, ok := pass.Lint.BreedByPlural(plural)
	if !ok {
		info, ok = pass.Pre.BreedByPlural(plural)
	}
	if !ok {
		info, ok = breeds.BuiltinByPlural(plural)
	}
	if !ok {
		if isLink, known := pass.Pre.IsLinkBreed(plural); known && isLink {
			return primitives.CategoryLink
		}
		return 0
	}
	switch {
	case info.Type == breeds.Patch:
		return primitives.CategoryPatch
	case info.Type.IsLink():
		return primitives.CategoryLink
	case info.Type == breeds.Turtle:
		return primitives.CategoryTurtle
	}
	return 0
}

func reserved(pass *Pass, d decl) bool {
	name := d.name
	if primitives.IsKeyword(name) || primitives.IsConstant(name) || name == "let" || name == "set" {
		return true
	}
	if _, ok := pass.Catalog.Lookup(name); ok && !pass.Catalog.IsUnsupported(name) {
		return true
	}
	if d.kind == declBreedVariable {
		for _, v := range primitives.ReservedVariables(d.category) {
			if v == name {
				return true
			}
		}
	} else if _, ok := primitives.BuiltinVariable(name); ok {
		return true
	}
	if d.kind == declBreed {
		return false
	}
	r := breeds.Match(name, pass.View.Symbols(), false)
	return r.Valid && r.Kind == breeds.KindPrimitive
}
