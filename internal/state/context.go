package state

import (
	"sort"

	"github.com/DeusData/netlogo-intel/internal/breeds"
	"github.com/DeusData/netlogo-intel/internal/primitives"
)

// Breed is a declared (or implicitly extended built-in) breed.
type Breed struct {
	Singular  string      `json:"singular"`
	Plural    string      `json:"plural"`
	Type      breeds.Type `json:"type"`
	Variables []string    `json:"variables"`
	EditorID  string      `json:"editor_id"`
	// Default marks a built-in breed record synthesized by an -own declaration.
	Default bool `json:"default,omitempty"`
	From    int  `json:"from"`
	To      int  `json:"to"`
}

// Info returns the breed's name pair and type.
func (b *Breed) Info() breeds.Info {
	return breeds.Info{Plural: b.Plural, Singular: b.Singular, Type: b.Type}
}

// LocalVariable is a let-declared variable. It is visible from CreationPos
// up to To.
type LocalVariable struct {
	Name        string          `json:"name"`
	Type        primitives.Type `json:"type"`
	CreationPos int             `json:"creation_pos"`
	From        int             `json:"from"`
	To          int             `json:"to"`
}

// Call is a call to a user procedure.
type Call struct {
	Name string `json:"name"`
	From int    `json:"from"`
	To   int    `json:"to"`
}

// Scope holds what a procedure, code block or anonymous procedure declares.
type Scope struct {
	Variables           []LocalVariable       `json:"variables,omitempty"`
	AnonymousProcedures []*AnonymousProcedure `json:"anonymous_procedures,omitempty"`
	CodeBlocks          []*CodeBlock          `json:"code_blocks,omitempty"`
	Calls               []Call                `json:"calls,omitempty"`
}

// CodeBlock is a bracketed block passed to a primitive.
type CodeBlock struct {
	From      int                     `json:"from"`
	To        int                     `json:"to"`
	Primitive string                  `json:"primitive"`
	Breed     string                  `json:"breed,omitempty"`
	Reporter  bool                    `json:"reporter,omitempty"`
	Context   primitives.AgentContext `json:"context"`
	// InheritParentContext is set when the block runs as the same agent as
	// its parent, so both contexts must hold at once.
	InheritParentContext bool `json:"inherit_parent_context"`
	Scope
}

// AnonymousProcedure is an arrow literal such as [ x -> x + 1 ].
type AnonymousProcedure struct {
	Arguments []string                `json:"arguments"`
	From      int                     `json:"from"`
	To        int                     `json:"to"`
	Reporter  bool                    `json:"reporter,omitempty"`
	Context   primitives.AgentContext `json:"context"`
	Scope
}

// Procedure is a to / to-report definition.
type Procedure struct {
	Name      string                  `json:"name"`
	Arguments []string                `json:"arguments"`
	IsCommand bool                    `json:"is_command"`
	From      int                     `json:"from"`
	To        int                     `json:"to"`
	NameFrom  int                     `json:"name_from"`
	NameTo    int                     `json:"name_to"`
	HasEnd    bool                    `json:"has_end"`
	Context   primitives.AgentContext `json:"context"`
	EditorID  string                  `json:"editor_id"`
	Scope
}

// LintContext is the tree tier symbol table. Map values carry the editor id
// of the declaring document.
type LintContext struct {
	Extensions    map[string]string     `json:"extensions"`
	Globals       map[string]string     `json:"globals"`
	WidgetGlobals map[string]string     `json:"widget_globals"`
	Breeds        map[string]*Breed     `json:"breeds"` // keyed by singular
	Procedures    map[string]*Procedure `json:"procedures"`
	// Snippet holds the statements of an embedded or one-line document.
	Snippet *Procedure `json:"snippet,omitempty"`
}

// NewLintContext returns an empty context.
func NewLintContext() *LintContext {
	lc := &LintContext{}
	lc.reset()
	return lc
}

func (lc *LintContext) reset() {
	lc.Extensions = map[string]string{}
	lc.Globals = map[string]string{}
	lc.WidgetGlobals = map[string]string{}
	lc.Breeds = map[string]*Breed{}
	lc.Procedures = map[string]*Procedure{}
	lc.Snippet = nil
}

// Merge layers fragments in document order. The first document to declare a
// name owns it; variables added to a built-in breed accumulate.
func Merge(fragments ...*LintContext) *LintContext {
	out := NewLintContext()
	for _, f := range fragments {
		if f == nil {
			continue
		}
		mergeOwners(out.Extensions, f.Extensions)
		mergeOwners(out.Globals, f.Globals)
		mergeOwners(out.WidgetGlobals, f.WidgetGlobals)
		for _, key := range sortedKeys(f.Breeds) {
			b := f.Breeds[key]
			if have, ok := out.Breeds[key]; ok {
				if have.Default {
					cp := *have
					cp.Variables = appendUnique(append([]string(nil), have.Variables...), b.Variables...)
					out.Breeds[key] = &cp
				}
				continue
			}
			out.Breeds[key] = b
		}
		for name, p := range f.Procedures {
			if _, ok := out.Procedures[name]; !ok {
				out.Procedures[name] = p
			}
		}
	}
	return out
}

func mergeOwners(dst, src map[string]string) {
	for k, v := range src {
		if _, ok := dst[k]; !ok {
			dst[k] = v
		}
	}
}

func appendUnique(list []string, names ...string) []string {
	for _, n := range names {
		dup := false
		for _, have := range list {
			if have == n {
				dup = true
				break
			}
		}
		if !dup {
			list = append(list, n)
		}
	}
	return list
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Owner reports which editor declared name, searching every category.
func (lc *LintContext) Owner(name string) (string, bool) {
	if lc == nil {
		return "", false
	}
	for _, m := range []map[string]string{lc.Extensions, lc.Globals, lc.WidgetGlobals} {
		if id, ok := m[name]; ok {
			return id, true
		}
	}
	if p, ok := lc.Procedures[name]; ok {
		return p.EditorID, true
	}
	if info, ok := lc.BreedByPlural(name); ok {
		return lc.Breeds[info.Singular].EditorID, true
	}
	if b, ok := lc.Breeds[name]; ok {
		return b.EditorID, true
	}
	if owner, ok := lc.BreedVariableOwner(name); ok {
		if info, found := lc.BreedByPlural(owner); found {
			return lc.Breeds[info.Singular].EditorID, true
		}
	}
	return "", false
}

// BreedList returns the breeds sorted by declaration position.
func (lc *LintContext) BreedList() []*Breed {
	out := make([]*Breed, 0, len(lc.Breeds))
	for _, b := range lc.Breeds {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].EditorID != out[j].EditorID {
			return out[i].EditorID < out[j].EditorID
		}
		if out[i].From != out[j].From {
			return out[i].From < out[j].From
		}
		return out[i].Plural < out[j].Plural
	})
	return out
}

// BreedByPlural implements breeds.Lookup.
func (lc *LintContext) BreedByPlural(plural string) (breeds.Info, bool) {
	if lc == nil {
		return breeds.Info{}, false
	}
	for _, b := range lc.Breeds {
		if b.Plural == plural {
			return b.Info(), true
		}
	}
	return breeds.Info{}, false
}

// BreedBySingular implements breeds.Lookup.
func (lc *LintContext) BreedBySingular(singular string) (breeds.Info, bool) {
	if lc == nil {
		return breeds.Info{}, false
	}
	if b, ok := lc.Breeds[singular]; ok {
		return b.Info(), true
	}
	return breeds.Info{}, false
}

// BreedVariableOwner implements breeds.Lookup.
func (lc *LintContext) BreedVariableOwner(name string) (string, bool) {
	if lc == nil {
		return "", false
	}
	for _, b := range lc.BreedList() {
		for _, v := range b.Variables {
			if v == name {
				return b.Plural, true
			}
		}
	}
	return "", false
}

func (lc *LintContext) IsGlobal(name string) bool {
	if lc == nil {
		return false
	}
	_, ok := lc.Globals[name]
	return ok
}

func (lc *LintContext) IsWidgetGlobal(name string) bool {
	if lc == nil {
		return false
	}
	_, ok := lc.WidgetGlobals[name]
	return ok
}

func (lc *LintContext) HasExtension(name string) bool {
	if lc == nil {
		return false
	}
	_, ok := lc.Extensions[name]
	return ok
}

func (lc *LintContext) ProcedureArity(name string) (int, bool, bool) {
	if lc == nil {
		return 0, false, false
	}
	p, ok := lc.Procedures[name]
	if !ok {
		return 0, false, false
	}
	return len(p.Arguments), !p.IsCommand, true
}

// ProcedureAt finds the procedure of editorID whose span covers pos, falling
// back to the document snippet.
func (lc *LintContext) ProcedureAt(editorID string, pos int) *Procedure {
	if lc == nil {
		return nil
	}
	for _, p := range lc.Procedures {
		if p.EditorID == editorID && p.From <= pos && pos <= p.To {
			return p
		}
	}
	if s := lc.Snippet; s != nil && s.EditorID == editorID {
		return s
	}
	return nil
}

// Visible reports whether name is an argument or a local variable visible at pos.
func (p *Procedure) Visible(name string, pos int) bool {
	if p == nil {
		return false
	}
	for _, a := range p.Arguments {
		if a == name {
			return true
		}
	}
	return p.Scope.visible(name, pos)
}

func (s *Scope) visible(name string, pos int) bool {
	for _, v := range s.Variables {
		if v.Name == name && v.CreationPos <= pos && pos <= v.To {
			return true
		}
	}
	for _, b := range s.CodeBlocks {
		if b.From <= pos && pos < b.To && b.Scope.visible(name, pos) {
			return true
		}
	}
	for _, a := range s.AnonymousProcedures {
		if a.From > pos || pos >= a.To {
			continue
		}
		for _, arg := range a.Arguments {
			if arg == name {
				return true
			}
		}
		if a.Scope.visible(name, pos) {
			return true
		}
	}
	return false
}

// LocalsAt lists the arguments and locals visible at pos, innermost last.
func (p *Procedure) LocalsAt(pos int) []string {
	if p == nil {
		return nil
	}
	out := append([]string(nil), p.Arguments...)
	return p.Scope.localsAt(pos, out)
}

func (s *Scope) localsAt(pos int, out []string) []string {
	for _, v := range s.Variables {
		if v.CreationPos <= pos && pos <= v.To {
			out = append(out, v.Name)
		}
	}
	for _, b := range s.CodeBlocks {
		if b.From <= pos && pos < b.To {
			out = b.Scope.localsAt(pos, out)
		}
	}
	for _, a := range s.AnonymousProcedures {
		if a.From <= pos && pos < a.To {
			out = append(out, a.Arguments...)
			out = a.Scope.localsAt(pos, out)
		}
	}
	return out
}

// Effective is the procedure's context narrowed by every block that runs as
// the same agent.
func (p *Procedure) Effective() primitives.AgentContext {
	return p.Context.Combine(p.Scope.inherited())
}

func (s *Scope) inherited() primitives.AgentContext {
	ctx := primitives.AnyContext()
	for _, b := range s.CodeBlocks {
		if b.InheritParentContext {
			ctx = ctx.Combine(b.Context).Combine(b.Scope.inherited())
		}
	}
	return ctx
}
