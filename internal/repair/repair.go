// Package repair rewrites NetLogo text: a canonical prettifier, append
// operations that insert declarations at the right top-level spot, and
// FixGeneratedCode, which turns malformed or generated code into a valid
// model.
package repair

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/DeusData/netlogo-intel/internal/breeds"
	"github.com/DeusData/netlogo-intel/internal/metrics"
	"github.com/DeusData/netlogo-intel/internal/parser"
	"github.com/DeusData/netlogo-intel/internal/primitives"
	"github.com/DeusData/netlogo-intel/internal/state"
	"github.com/DeusData/netlogo-intel/internal/syntax"
	"github.com/DeusData/netlogo-intel/internal/textedit"
)

// DefaultWrapperName names the procedure that collects stray statements.
const DefaultWrapperName = "play"

// Options tunes FixGeneratedCode.
type Options struct {
	Catalog *primitives.Catalog
	// WrapperName names the procedure stray top-level statements move into.
	WrapperName string
	// DropDelegatingProcedures removes unreferenced procedures whose whole
	// body is a call to another procedure, as in "to go setup end".
	DropDelegatingProcedures bool
}

// DefaultOptions returns the options used when none are configured.
func DefaultOptions() Options {
	return Options{
		Catalog:                  primitives.Default(),
		WrapperName:              DefaultWrapperName,
		DropDelegatingProcedures: true,
	}
}

func (o Options) withDefaults() Options {
	if o.Catalog == nil {
		o.Catalog = primitives.Default()
	}
	if o.WrapperName == "" {
		o.WrapperName = DefaultWrapperName
	}
	return o
}

// FixGeneratedCode rewrites source into valid NetLogo model code, merging in
// the declarations of parent when given. It never fails: empty input yields
// "", and a panic anywhere falls back to the trimmed input.
func FixGeneratedCode(source string, parent *Snapshot, opts Options) (out string) {
	trimmed := strings.TrimSpace(source)
	if trimmed == "" {
		metrics.RepairRuns.WithLabelValues("empty").Inc()
		return ""
	}
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			slog.Error("repair.panic", "panic", fmt.Sprint(r), "bytes", len(trimmed))
			metrics.RepairRuns.WithLabelValues("recovered").Inc()
			out = trimmed
		}
		metrics.Since("repair", start)
	}()

	f := &fixer{opts: opts.withDefaults()}
	src := f.prettify(trimmed)
	captured := BuildSnapshot(f.analyze(src).Lint)
	src = f.reorder(src)
	src, queued := f.cleanup(src)
	src = f.wrap(src, queued)
	src = f.merge(src, captured, parent)
	src = f.prettify(src)

	metrics.RepairRuns.WithLabelValues("ok").Inc()
	return strings.TrimSpace(src)
}

type fixer struct {
	opts Options
}

func (f *fixer) analyze(src string) *state.View {
	return parser.Analyze(src, syntax.Model, f.opts.Catalog, "")
}

func (f *fixer) prettify(src string) string {
	return Print(f.analyze(src).Tree)
}

func (f *fixer) commit(step, src string, changes []textedit.Change) string {
	slog.Debug("repair.step", "step", step, "changes", len(changes))
	return textedit.Apply(src, changes)
}

// reorder hoists declarations written after the first procedure above it and
// merges repeated globals and extensions lists into one.
func (f *fixer) reorder(src string) string {
	v := f.analyze(src)
	items := v.Tree.Root.Children
	first := -1
	for i, n := range items {
		if n.Kind == syntax.Procedure {
			first = i
			break
		}
	}

	type occurrence struct {
		node  *syntax.Node
		early bool // top level, before the first procedure
	}
	var extensions, globals []occurrence
	var moved []*syntax.Node
	syntax.Walk(v.Tree.Root, func(n *syntax.Node) bool {
		if !n.Kind.IsDeclaration() {
			return true
		}
		early := n.Parent == v.Tree.Root && (first < 0 || n.Index() < first)
		switch n.Kind {
		case syntax.Extensions:
			extensions = append(extensions, occurrence{n, early})
		case syntax.Globals:
			globals = append(globals, occurrence{n, early})
		default:
			if !early {
				moved = append(moved, n)
			}
		}
		return false
	})

	anchor := 0
	if first >= 0 {
		anchor = items[leadingComments(src, items, first)].From
	}
	var hoisted strings.Builder
	var changes []textedit.Change
	merge := func(keyword string, occ []occurrence) {
		if len(occ) == 0 || (len(occ) == 1 && occ[0].early) {
			return
		}
		var names []string
		seen := map[string]bool{}
		for _, o := range occ {
			for _, id := range o.node.ChildrenOf(syntax.Identifier) {
				if !seen[id.Text] {
					seen[id.Text] = true
					names = append(names, id.Text)
				}
			}
		}
		text := bracketed(keyword, names)
		if occ[0].early {
			changes = append(changes, textedit.Replace(occ[0].node.From, occ[0].node.To, text))
		} else {
			hoisted.WriteString(comment(src, occ[0].node, &changes))
			hoisted.WriteString(text + "\n")
			changes = append(changes, lineDelete(src, occ[0].node))
		}
		for _, o := range occ[1:] {
			changes = append(changes, lineDelete(src, o.node))
		}
	}
	merge("extensions", extensions)
	merge("globals", globals)
	for _, n := range moved {
		hoisted.WriteString(comment(src, n, &changes))
		hoisted.WriteString(strings.TrimSpace(src[n.From:n.To]) + "\n")
		changes = append(changes, lineDelete(src, n))
	}
	if hoisted.Len() > 0 {
		text := hoisted.String()
		if anchor > 0 {
			text = "\n" + text
		}
		changes = append(changes, textedit.Insert(anchor, text+"\n"))
	}
	return f.commit("reorder", src, changes)
}

// leadingComments returns the index of the first comment in the run directly
// above items[i].
func leadingComments(src string, items []*syntax.Node, i int) int {
	for i > 0 && items[i-1].Kind == syntax.LineComment {
		if i > 1 && !strings.Contains(src[items[i-2].To:items[i-1].From], "\n") {
			// Trails the item before it.
			break
		}
		i--
	}
	return i
}

// comment moves the comment line directly above n along with it.
func comment(src string, n *syntax.Node, changes *[]textedit.Change) string {
	prev := n.PrevSibling()
	if prev == nil || prev.Kind != syntax.LineComment {
		return ""
	}
	if strings.Count(src[prev.To:n.From], "\n") != 1 {
		return ""
	}
	*changes = append(*changes, lineDelete(src, prev))
	return strings.TrimSpace(src[prev.From:prev.To]) + "\n"
}

// lineDelete removes n, taking its whole line when nothing else is on it.
func lineDelete(src string, n *syntax.Node) textedit.Change {
	from, to := n.From, n.To
	i := from
	for i > 0 && (src[i-1] == ' ' || src[i-1] == '\t') {
		i--
	}
	j := to
	for j < len(src) && (src[j] == ' ' || src[j] == '\t' || src[j] == '\r') {
		j++
	}
	if (i == 0 || src[i-1] == '\n') && (j == len(src) || src[j] == '\n') {
		from = i
		to = j
		if to < len(src) {
			to++
		}
	}
	return textedit.Delete(from, to)
}

// cleanup is the second tree pass. It returns the repaired text and the
// statements queued for the wrapper procedure.
func (f *fixer) cleanup(src string) (string, []string) {
	v := f.analyze(src)
	c := &cleaner{fixer: f, v: v, src: src}
	for _, n := range v.Tree.Root.Children {
		switch n.Kind {
		case syntax.Misplaced:
			c.misplaced(n)
		case syntax.Error:
			c.stray(n)
		case syntax.Procedure:
			if n.Child(syntax.To) == nil {
				c.headless(n)
			}
		}
	}
	c.breeds()
	c.declarations()
	c.procedures()
	return f.commit("cleanup", src, c.changes), c.queued
}

type cleaner struct {
	*fixer
	v       *state.View
	src     string
	changes []textedit.Change
	queued  []string
}

func (c *cleaner) text(n *syntax.Node) string {
	return strings.TrimSpace(c.src[n.From:n.To])
}

func (c *cleaner) misplaced(n *syntax.Node) {
	c.changes = append(c.changes, lineDelete(c.src, n))
	for _, stmt := range n.Children {
		if stmt.Kind == syntax.LineComment || c.noise(stmt) {
			continue
		}
		c.queued = append(c.queued, c.text(stmt))
	}
}

// noise reports a bare call to a primitive command that takes no arguments.
func (c *cleaner) noise(stmt *syntax.Node) bool {
	if stmt.Kind != syntax.CommandStatement || len(stmt.Children) != 1 {
		return false
	}
	p, ok := c.opts.Catalog.Lookup(stmt.Children[0].Text)
	return ok && p.IsCommand() && p.DefaultArgs() == 0
}

// stray moves an unparseable top-level region to the top of the text.
// Lone closing tokens carry nothing worth keeping and are dropped.
func (c *cleaner) stray(n *syntax.Node) {
	c.changes = append(c.changes, lineDelete(c.src, n))
	if len(n.Children) == 1 {
		switch n.Children[0].Kind {
		case syntax.End, syntax.CloseBracket, syntax.CloseParen:
			return
		}
	}
	c.changes = append(c.changes, textedit.Insert(0, c.text(n)+"\n"))
}

func (c *cleaner) headless(n *syntax.Node) {
	c.changes = append(c.changes, lineDelete(c.src, n))
	for _, stmt := range n.Children {
		if stmt.Kind == syntax.End || stmt.Kind == syntax.LineComment || c.noise(stmt) {
			continue
		}
		c.queued = append(c.queued, c.text(stmt))
	}
}

// breeds renames breed declarations whose names collide with an earlier
// breed or with each other, and drops those it cannot fix.
func (c *cleaner) breeds() {
	seen := map[string]bool{}
	for _, b := range breeds.Builtin {
		seen[b.Plural], seen[b.Singular] = true, true
	}
	for _, n := range c.v.Tree.Root.Children {
		if n.Kind != syntax.Breed {
			continue
		}
		ids := n.ChildrenOf(syntax.Identifier)
		if len(ids) == 0 {
			c.changes = append(c.changes, lineDelete(c.src, n))
			continue
		}
		plural, singular := ids[0].Text, ""
		if len(ids) > 1 {
			singular = ids[1].Text
		}
		p, s, ok := fixBreedNames(plural, singular, seen)
		if !ok {
			c.changes = append(c.changes, lineDelete(c.src, n))
			continue
		}
		seen[p], seen[s] = true, true
		if p != plural || s != singular || len(ids) != 2 || n.Child(syntax.CloseBracket) == nil {
			line := fmt.Sprintf("%s [ %s %s ]", n.Head().Text, p, s)
			c.changes = append(c.changes, textedit.Replace(n.From, n.To, line))
		}
	}
}

// fixBreedNames resolves collisions with seen names and between the pair.
// A missing singular is derived from the plural.
func fixBreedNames(plural, singular string, seen map[string]bool) (string, string, bool) {
	if singular == "" || singular == plural {
		singular = breeds.Singularize(plural)
	}
	pc, sc := seen[plural], seen[singular]
	switch {
	case pc && sc:
		return "", "", false
	case sc:
		singular = breeds.Singularize(plural)
	case pc:
		plural = breeds.Pluralize(singular)
	}
	if seen[plural] || seen[singular] || plural == singular {
		return "", "", false
	}
	return plural, singular, true
}

// declarations strips repeated names and names that shadow built-in
// variables from globals, extensions and -own lists.
func (c *cleaner) declarations() {
	globals, extensions := map[string]bool{}, map[string]bool{}
	owned := map[string]map[string]bool{}
	for _, n := range c.v.Tree.Root.Children {
		var seen map[string]bool
		var reserved func(string) bool
		switch n.Kind {
		case syntax.Globals:
			seen = globals
			reserved = func(name string) bool {
				_, ok := primitives.BuiltinVariable(name)
				return ok
			}
		case syntax.Extensions:
			seen = extensions
			reserved = func(string) bool { return false }
		case syntax.BreedsOwn:
			kw := n.Head().Text
			plural := strings.TrimSuffix(kw, "-own")
			if owned[plural] == nil {
				owned[plural] = map[string]bool{}
			}
			seen = owned[plural]
			names := primitives.ReservedVariables(c.category(plural))
			reserved = func(name string) bool { return contains(names, name) }
		default:
			continue
		}
		var prev *syntax.Node
		for _, ch := range n.Children {
			if ch.Kind == syntax.Identifier {
				if seen[ch.Text] || reserved(ch.Text) {
					c.changes = append(c.changes, textedit.Delete(prev.To, ch.To))
				} else {
					seen[ch.Text] = true
				}
			}
			prev = ch
		}
	}
}

func (c *cleaner) category(plural string) primitives.Category {
	info, ok := c.v.Lint.BreedByPlural(plural)
	if !ok {
		info, ok = breeds.BuiltinByPlural(plural)
	}
	if !ok {
		return 0
	}
	return categoryOf(info.Type)
}

func categoryOf(t breeds.Type) primitives.Category {
	switch {
	case t == breeds.Patch:
		return primitives.CategoryPatch
	case t.IsLink():
		return primitives.CategoryLink
	case t == breeds.Turtle:
		return primitives.CategoryTurtle
	}
	return 0
}

// procedures renames procedures named after reserved words and drops empty
// or delegating procedures nothing refers to.
func (c *cleaner) procedures() {
	var procs []*syntax.Node
	for _, n := range c.v.Tree.Root.Children {
		if n.Kind == syntax.Procedure && n.Child(syntax.To) != nil && n.Child(syntax.ProcedureName) != nil {
			procs = append(procs, n)
		}
	}
	words := syntax.Lex(c.src)
	byName := make(map[string]*syntax.Node, len(procs))
	for _, n := range procs {
		byName[n.Child(syntax.ProcedureName).Text] = n
	}
	// References are counted in the original text only, so dropping one
	// procedure never makes another droppable.
	dropped := map[*syntax.Node]bool{}
	for _, n := range procs {
		name := n.Child(syntax.ProcedureName).Text
		if !c.droppable(n, procs) || referenced(words, name, n) {
			continue
		}
		// A delegating procedure stays when it is the only reason its
		// callee is kept.
		if callee := byName[delegate(n)]; callee != nil && c.droppable(callee, procs) &&
			!referenced(words, delegate(n), callee, n) {
			continue
		}
		dropped[n] = true
	}
	taken := map[string]bool{}
	for _, n := range procs {
		if name := n.Child(syntax.ProcedureName).Text; !dropped[n] && !c.reservedName(name) {
			taken[name] = true
		}
	}
	// Call sites keep their text: a reserved word resolves to the built-in.
	for _, n := range procs {
		if dropped[n] {
			slog.Debug("repair.drop_procedure", "name", n.Child(syntax.ProcedureName).Text)
			c.changes = append(c.changes, lineDelete(c.src, n))
			continue
		}
		name := n.Child(syntax.ProcedureName)
		if c.reservedName(name.Text) {
			c.changes = append(c.changes, textedit.Replace(name.From, name.To, rename(name.Text, taken)))
		}
	}
}

func body(n *syntax.Node) []*syntax.Node {
	var out []*syntax.Node
	for _, ch := range n.Children {
		switch ch.Kind {
		case syntax.To, syntax.ProcedureName, syntax.Arguments, syntax.End, syntax.LineComment:
		default:
			out = append(out, ch)
		}
	}
	return out
}

func (c *cleaner) droppable(n *syntax.Node, procs []*syntax.Node) bool {
	stmts := body(n)
	if len(stmts) == 0 {
		return true
	}
	if !c.opts.DropDelegatingProcedures || len(stmts) != 1 {
		return false
	}
	callee := delegate(n)
	self := n.Child(syntax.ProcedureName).Text
	if callee == "" {
		return false
	}
	for _, other := range procs {
		if other != n && other.Child(syntax.ProcedureName).Text == callee && callee != self {
			return true
		}
	}
	return false
}

// delegate returns the procedure a single-call body invokes, or "".
func delegate(n *syntax.Node) string {
	stmts := body(n)
	if len(stmts) != 1 {
		return ""
	}
	stmt := stmts[0]
	if stmt.Kind != syntax.CommandStatement || len(stmt.Children) != 1 {
		return ""
	}
	return stmt.Children[0].Text
}

// referenced reports whether name occurs in the text outside the given
// procedures.
func referenced(words []syntax.Token, name string, outside ...*syntax.Node) bool {
	for _, t := range words {
		if t.Type != syntax.TokWord || t.Lower() != name {
			continue
		}
		within := false
		for _, n := range outside {
			if n.From <= t.Pos && t.Pos < n.To {
				within = true
				break
			}
		}
		if !within {
			return true
		}
	}
	return false
}

func (c *cleaner) reservedName(name string) bool {
	if primitives.IsKeyword(name) || primitives.IsConstant(name) || name == "let" || name == "set" {
		return true
	}
	if _, ok := c.opts.Catalog.Lookup(name); ok && !c.opts.Catalog.IsUnsupported(name) {
		return true
	}
	_, ok := primitives.BuiltinVariable(name)
	return ok
}

// rename replaces the first hyphen-delimited segment of name with "setup",
// adding a numeric suffix while the result is taken. The result is marked
// taken.
func rename(name string, taken map[string]bool) string {
	base := "setup"
	if i := strings.IndexByte(name, '-'); i >= 0 {
		base += name[i:]
	}
	out := base
	for i := 2; taken[out]; i++ {
		out = fmt.Sprintf("%s-%d", base, i)
	}
	taken[out] = true
	return out
}

// wrap adds the wrapper procedure holding the queued statements after the
// top-level declarations.
func (f *fixer) wrap(src string, queued []string) string {
	if len(queued) == 0 {
		return src
	}
	v := f.analyze(src)
	name := f.opts.WrapperName
	for i := 2; ; i++ {
		if _, ok := v.Lint.Procedures[name]; !ok {
			break
		}
		name = fmt.Sprintf("%s-%d", f.opts.WrapperName, i)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "to %s\n", name)
	for _, stmt := range queued {
		sb.WriteString(indentUnit + stmt + "\n")
	}
	sb.WriteString("end\n")

	var anchor *syntax.Node
	for _, n := range v.Tree.Root.Children {
		if n.Kind == syntax.Procedure {
			break
		}
		if n.Kind.IsDeclaration() || n.Kind == syntax.Error {
			anchor = n
		}
	}
	if anchor == nil {
		return f.commit("wrap", src, []textedit.Change{textedit.Insert(0, sb.String()+"\n")})
	}
	return f.commit("wrap", src, []textedit.Change{textedit.Insert(anchor.To, "\n\n"+sb.String())})
}

// merge re-declares what the captured and parent snapshots declare and the
// text no longer does.
func (f *fixer) merge(src string, snaps ...*Snapshot) string {
	v := f.analyze(src)
	var extensions, globals []string
	var breedList []SnapshotBreed
	for _, s := range snaps {
		if s == nil {
			continue
		}
		extensions = append(extensions, s.Extensions...)
		for _, g := range s.Globals {
			if _, ok := primitives.BuiltinVariable(g); !ok {
				globals = append(globals, g)
			}
		}
		breedList = append(breedList, s.Breeds...)
	}
	var changes []textedit.Change
	changes = append(changes, AddExtensions(v, extensions...)...)
	changes = append(changes, AddGlobals(v, globals...)...)

	taken := map[string]bool{}
	for _, b := range breeds.Builtin {
		taken[b.Plural], taken[b.Singular] = true, true
	}
	for _, b := range v.Lint.BreedList() {
		taken[b.Plural], taken[b.Singular] = true, true
	}
	var plurals []string
	vars := map[string][]string{}
	for _, b := range breedList {
		if !b.Builtin && b.Plural != b.Singular && !taken[b.Plural] && !taken[b.Singular] {
			changes = append(changes, AddBreed(v, b.Type, b.Plural, b.Singular)...)
			taken[b.Plural], taken[b.Singular] = true, true
		}
		if !taken[b.Plural] {
			continue
		}
		if _, ok := vars[b.Plural]; !ok {
			plurals = append(plurals, b.Plural)
		}
		reserved := primitives.ReservedVariables(categoryOf(b.Type))
		for _, name := range b.Variables {
			if !contains(reserved, name) && !contains(vars[b.Plural], name) {
				vars[b.Plural] = append(vars[b.Plural], name)
			}
		}
	}
	for _, plural := range plurals {
		changes = append(changes, AddBreedVariables(v, plural, vars[plural]...)...)
	}
	return f.commit("merge", src, changes)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
