package state

import (
	"regexp"
	"sort"
	"strings"

	"github.com/zeebo/xxh3"

	"github.com/DeusData/netlogo-intel/internal/breeds"
	"github.com/DeusData/netlogo-intel/internal/syntax"
)

// PreprocessContext is the regex tier: declarations found by pattern matching
// over raw text, available even while the tree is broken. Values of the
// index maps are the index of the declaring document.
type PreprocessContext struct {
	PluralBreeds     map[string]int         `json:"plural_breeds"`
	SingularBreeds   map[string]int         `json:"singular_breeds"`
	SingularToPlural map[string]string      `json:"singular_to_plural"`
	PluralToSingular map[string]string      `json:"plural_to_singular"`
	BreedTypes       map[string]breeds.Type `json:"breed_types"`
	BreedVars        map[string]string      `json:"breed_vars"` // variable -> owning plural
	Commands         map[string]int         `json:"commands"`   // name -> arity
	Reporters        map[string]int         `json:"reporters"`
	CommandSources   map[string]int         `json:"command_sources"`
	ReporterSources  map[string]int         `json:"reporter_sources"`
	Globals          map[string]int         `json:"globals"`
	Extensions       map[string]int         `json:"extensions"`
	WidgetGlobals    map[string]bool        `json:"widget_globals"`
}

// NewPreprocessContext returns an empty context.
func NewPreprocessContext() *PreprocessContext {
	return &PreprocessContext{
		PluralBreeds:     map[string]int{},
		SingularBreeds:   map[string]int{},
		SingularToPlural: map[string]string{},
		PluralToSingular: map[string]string{},
		BreedTypes:       map[string]breeds.Type{},
		BreedVars:        map[string]string{},
		Commands:         map[string]int{},
		Reporters:        map[string]int{},
		CommandSources:   map[string]int{},
		ReporterSources:  map[string]int{},
		Globals:          map[string]int{},
		Extensions:       map[string]int{},
		WidgetGlobals:    map[string]bool{},
	}
}

// Preprocess scans a single document.
func Preprocess(src string) *PreprocessContext {
	pc := NewPreprocessContext()
	pc.Add(0, src)
	return pc
}

const lead = `(?:^|[\s\[\]()])`

var (
	breedDeclRe = regexp.MustCompile(lead + `(undirected-link-breed|directed-link-breed|breed)\s*\[([^\[\]]*)\]`)
	ownRe       = regexp.MustCompile(lead + `([^\s\[\]()";]+)-own\s*\[([^\[\]]*)\]`)
	procRe      = regexp.MustCompile(lead + `(to-report|to)\s+([^\s\[\]()";]+)(?:\s*\[([^\[\]]*)\])?`)
	globalsRe   = regexp.MustCompile(lead + `globals\s*\[([^\[\]]*)\]`)
	extRe       = regexp.MustCompile(lead + `extensions\s*\[([^\[\]]*)\]`)
)

// stripText lower-cases src and blanks out comments and string literals so
// the patterns never match inside them. Offsets are preserved.
func stripText(src string) string {
	b := []byte(strings.ToLower(src))
	for _, t := range syntax.Lex(src) {
		if t.Type != syntax.TokComment && t.Type != syntax.TokString && !(t.Type == syntax.TokOther && strings.HasPrefix(t.Value, `"`)) {
			continue
		}
		for i := t.Pos; i < t.End; i++ {
			if b[i] != '\n' {
				b[i] = ' '
			}
		}
	}
	return string(b)
}

// Add scans document doc and layers its declarations over what is already
// known. Earlier documents keep names they declared first.
func (pc *PreprocessContext) Add(doc int, src string) {
	text := stripText(src)
	for _, m := range extRe.FindAllStringSubmatch(text, -1) {
		for _, name := range strings.Fields(m[1]) {
			setFirst(pc.Extensions, name, doc)
		}
	}
	for _, m := range globalsRe.FindAllStringSubmatch(text, -1) {
		for _, name := range strings.Fields(m[1]) {
			setFirst(pc.Globals, name, doc)
		}
	}
	for _, m := range breedDeclRe.FindAllStringSubmatch(text, -1) {
		names := strings.Fields(m[2])
		if len(names) != 2 {
			continue
		}
		plural, singular := names[0], names[1]
		if _, ok := pc.PluralBreeds[plural]; ok {
			continue
		}
		pc.PluralBreeds[plural] = doc
		setFirst(pc.SingularBreeds, singular, doc)
		pc.PluralToSingular[plural] = singular
		if _, ok := pc.SingularToPlural[singular]; !ok {
			pc.SingularToPlural[singular] = plural
		}
		pc.BreedTypes[plural] = breeds.TypeForKeyword(m[1])
	}
	for _, m := range ownRe.FindAllStringSubmatch(text, -1) {
		owner := m[1]
		for _, name := range strings.Fields(m[2]) {
			if _, ok := pc.BreedVars[name]; !ok {
				pc.BreedVars[name] = owner
			}
		}
	}
	for _, m := range procRe.FindAllStringSubmatch(text, -1) {
		name := m[2]
		arity := len(strings.Fields(m[3]))
		if m[1] == "to-report" {
			if _, ok := pc.Reporters[name]; !ok {
				pc.Reporters[name] = arity
				pc.ReporterSources[name] = doc
			}
			continue
		}
		if _, ok := pc.Commands[name]; !ok {
			pc.Commands[name] = arity
			pc.CommandSources[name] = doc
		}
	}
}

func setFirst(m map[string]int, key string, doc int) {
	if _, ok := m[key]; !ok {
		m[key] = doc
	}
}

// SetWidgetGlobals replaces the widget-declared globals.
func (pc *PreprocessContext) SetWidgetGlobals(names []string) {
	pc.WidgetGlobals = make(map[string]bool, len(names))
	for _, n := range names {
		pc.WidgetGlobals[strings.ToLower(n)] = true
	}
}

// BreedByPlural implements breeds.Lookup.
func (pc *PreprocessContext) BreedByPlural(plural string) (breeds.Info, bool) {
	if pc == nil {
		return breeds.Info{}, false
	}
	if _, ok := pc.PluralBreeds[plural]; !ok {
		return breeds.Info{}, false
	}
	return breeds.Info{Plural: plural, Singular: pc.PluralToSingular[plural], Type: pc.BreedTypes[plural]}, true
}

// BreedBySingular implements breeds.Lookup.
func (pc *PreprocessContext) BreedBySingular(singular string) (breeds.Info, bool) {
	if pc == nil {
		return breeds.Info{}, false
	}
	plural, ok := pc.SingularToPlural[singular]
	if !ok {
		return breeds.Info{}, false
	}
	return breeds.Info{Plural: plural, Singular: singular, Type: pc.BreedTypes[plural]}, true
}

// BreedVariableOwner implements breeds.Lookup.
func (pc *PreprocessContext) BreedVariableOwner(name string) (string, bool) {
	if pc == nil {
		return "", false
	}
	owner, ok := pc.BreedVars[name]
	return owner, ok
}

func (pc *PreprocessContext) IsGlobal(name string) bool {
	if pc == nil {
		return false
	}
	_, ok := pc.Globals[name]
	return ok
}

func (pc *PreprocessContext) IsWidgetGlobal(name string) bool {
	return pc != nil && pc.WidgetGlobals[name]
}

func (pc *PreprocessContext) HasExtension(name string) bool {
	if pc == nil {
		return false
	}
	_, ok := pc.Extensions[name]
	return ok
}

func (pc *PreprocessContext) ProcedureArity(name string) (int, bool, bool) {
	if pc == nil {
		return 0, false, false
	}
	if n, ok := pc.Reporters[name]; ok {
		return n, true, true
	}
	if n, ok := pc.Commands[name]; ok {
		return n, false, true
	}
	return 0, false, false
}

// IsLinkBreed reports whether plural names a link breed. ok is false when the
// breed is unknown.
func (pc *PreprocessContext) IsLinkBreed(plural string) (isLink, ok bool) {
	if b, found := breeds.BuiltinByPlural(plural); found {
		return b.Type.IsLink(), true
	}
	if pc == nil {
		return false, false
	}
	t, found := pc.BreedTypes[plural]
	if !found {
		return false, false
	}
	return t.IsLink(), true
}

// Fingerprint hashes everything that changes how words parse.
func (pc *PreprocessContext) Fingerprint() uint64 {
	if pc == nil {
		return 0
	}
	var b strings.Builder
	section := func(tag string, keys []string) {
		sort.Strings(keys)
		b.WriteString(tag)
		for _, k := range keys {
			b.WriteByte(' ')
			b.WriteString(k)
		}
		b.WriteByte('\n')
	}
	section("b", breedKeys(pc))
	section("v", mapKeys(pc.BreedVars))
	section("c", arityKeys(pc.Commands))
	section("r", arityKeys(pc.Reporters))
	section("g", mapKeys(pc.Globals))
	section("w", boolKeys(pc.WidgetGlobals))
	section("e", mapKeys(pc.Extensions))
	return xxh3.HashString(b.String())
}

func breedKeys(pc *PreprocessContext) []string {
	out := make([]string, 0, len(pc.PluralBreeds))
	for p := range pc.PluralBreeds {
		out = append(out, p+"/"+pc.PluralToSingular[p]+"/"+pc.BreedTypes[p].String())
	}
	return out
}

func mapKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func arityKeys(m map[string]int) []string {
	out := make([]string, 0, len(m))
	for k, n := range m {
		out = append(out, k+"/"+strings.Repeat("a", n))
	}
	return out
}

func boolKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k, v := range m {
		if v {
			out = append(out, k)
		}
	}
	return out
}
