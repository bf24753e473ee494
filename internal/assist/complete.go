package assist

import (
	"sort"
	"strings"
	"sync"

	"github.com/DeusData/netlogo-intel/internal/breeds"
	"github.com/DeusData/netlogo-intel/internal/primitives"
	"github.com/DeusData/netlogo-intel/internal/state"
)

// Item is one completion candidate.
type Item struct {
	Label  string `json:"label"`
	Kind   Kind   `json:"kind"`
	Detail string `json:"detail,omitempty"`
}

// Completion is the answer to one completion request. [From, To) is the
// partial word the chosen label replaces.
type Completion struct {
	From   int    `json:"from"`
	To     int    `json:"to"`
	Prefix string `json:"prefix"`
	Items  []Item `json:"items"`
}

// Completer produces completions. Static items are built once; extension
// primitives are rebuilt only when the declared extension set changes.
type Completer struct {
	cat    *primitives.Catalog
	static []Item

	mu       sync.Mutex
	extKey   string
	extItems []Item
	extValid bool
	rebuilds int
}

// NewCompleter returns a completer over cat.
func NewCompleter(cat *primitives.Catalog) *Completer {
	if cat == nil {
		cat = primitives.Default()
	}
	c := &Completer{cat: cat}
	for _, k := range primitives.Keywords {
		c.static = append(c.static, Item{Label: k, Kind: KindKeyword})
	}
	c.static = append(c.static, Item{Label: "let", Kind: KindKeyword}, Item{Label: "set", Kind: KindKeyword})
	for _, k := range primitives.Constants() {
		c.static = append(c.static, Item{Label: k, Kind: KindConstant})
	}
	for _, p := range cat.Core() {
		if cat.IsUnsupported(p.Name) {
			continue
		}
		c.static = append(c.static, Item{Label: p.Name, Kind: KindPrimitive, Detail: primitiveDetail(p)})
	}
	for _, category := range []primitives.Category{primitives.CategoryTurtle, primitives.CategoryPatch, primitives.CategoryLink} {
		for _, name := range primitives.VariablesOf(category) {
			c.static = append(c.static, Item{Label: name, Kind: KindBuiltinVariable, Detail: category.String()})
		}
	}
	return c
}

func primitiveDetail(p *primitives.Primitive) string {
	if p.IsCommand() {
		return "command"
	}
	return "reporter"
}

// Complete lists the candidates for the word ending at pos.
func (c *Completer) Complete(v *state.View, pos int) Completion {
	src := v.Source()
	if pos > len(src) {
		pos = len(src)
	}
	if pos < 0 {
		pos = 0
	}
	from := pos
	for from > 0 && wordByte(src[from-1]) {
		from--
	}
	prefix := strings.ToLower(src[from:pos])
	out := Completion{From: from, To: pos, Prefix: prefix}

	seen := map[string]bool{}
	add := func(items ...Item) {
		for _, it := range items {
			if seen[it.Label] || !strings.HasPrefix(it.Label, prefix) {
				continue
			}
			seen[it.Label] = true
			out.Items = append(out.Items, it)
		}
	}
	// Innermost names first so they win over same-named globals.
	add(locals(v, pos)...)
	add(c.static...)
	add(c.extensions(declaredExtensions(v))...)
	add(userItems(v)...)
	sort.SliceStable(out.Items, func(i, j int) bool { return out.Items[i].Label < out.Items[j].Label })
	return out
}

func wordByte(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\f', '[', ']', '(', ')', '{', '}', '"', ';', ',':
		return false
	}
	return true
}

func declaredExtensions(v *state.View) []string {
	set := map[string]bool{}
	if v.Lint != nil {
		for name := range v.Lint.Extensions {
			set[name] = true
		}
	}
	if v.Pre != nil {
		for name := range v.Pre.Extensions {
			set[name] = true
		}
	}
	out := make([]string, 0, len(set))
	for name := range set {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// extensions returns the primitives of the declared extensions, cached by
// the joined extension list.
func (c *Completer) extensions(names []string) []Item {
	key := strings.Join(names, ",")
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.extValid && key == c.extKey {
		return c.extItems
	}
	var items []Item
	for _, ext := range names {
		for _, p := range c.cat.Extension(ext) {
			items = append(items, Item{Label: p.FullName(), Kind: KindPrimitive, Detail: primitiveDetail(p)})
		}
	}
	c.extKey, c.extItems, c.extValid = key, items, true
	c.rebuilds++
	return items
}

// Rebuilds reports how often the extension cache was recomputed.
func (c *Completer) Rebuilds() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rebuilds
}

func locals(v *state.View, pos int) []Item {
	if v.Lint == nil {
		return nil
	}
	proc := v.Lint.ProcedureAt(v.EditorID, pos)
	if proc == nil {
		return nil
	}
	args := map[string]bool{}
	for _, a := range proc.Arguments {
		args[a] = true
	}
	var out []Item
	names := proc.LocalsAt(pos)
	for i := len(names) - 1; i >= 0; i-- {
		kind := KindLocal
		if args[names[i]] {
			kind = KindArgument
		}
		out = append(out, Item{Label: names[i], Kind: kind})
	}
	return out
}

// userItems lists what the documents declare, from both symbol tiers.
func userItems(v *state.View) []Item {
	var out []Item
	lc, pre := v.Lint, v.Pre
	if lc == nil {
		lc = state.NewLintContext()
	}
	if pre == nil {
		pre = state.NewPreprocessContext()
	}
	for _, p := range sortedProcedures(lc) {
		detail := "command"
		if !p.IsCommand {
			detail = "reporter"
		}
		out = append(out, Item{Label: p.Name, Kind: KindProcedure, Detail: detail})
	}
	for _, name := range sortedNames(pre.Commands) {
		out = append(out, Item{Label: name, Kind: KindProcedure, Detail: "command"})
	}
	for _, name := range sortedNames(pre.Reporters) {
		out = append(out, Item{Label: name, Kind: KindProcedure, Detail: "reporter"})
	}
	for _, name := range sortedNames(lc.Globals) {
		out = append(out, Item{Label: name, Kind: KindGlobal})
	}
	for _, name := range sortedNames(pre.Globals) {
		out = append(out, Item{Label: name, Kind: KindGlobal})
	}
	for _, name := range sortedNames(lc.WidgetGlobals) {
		out = append(out, Item{Label: name, Kind: KindWidgetGlobal})
	}
	for _, name := range sortedNames(pre.WidgetGlobals) {
		out = append(out, Item{Label: name, Kind: KindWidgetGlobal})
	}
	for _, b := range lc.BreedList() {
		if !b.Default {
			out = append(out,
				Item{Label: b.Plural, Kind: KindBreed, Detail: "plural"},
				Item{Label: b.Singular, Kind: KindBreed, Detail: "singular"})
			for _, name := range breeds.Synthesize(b.Info()) {
				out = append(out, Item{Label: name, Kind: KindBreedPrimitive, Detail: b.Plural})
			}
		}
		for _, name := range b.Variables {
			out = append(out, Item{Label: name, Kind: KindBreedVariable, Detail: b.Plural})
		}
	}
	return out
}

func sortedProcedures(lc *state.LintContext) []*state.Procedure {
	out := make([]*state.Procedure, 0, len(lc.Procedures))
	for _, p := range lc.Procedures {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func sortedNames[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
