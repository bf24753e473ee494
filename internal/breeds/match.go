package breeds

import "strings"

// Kind classifies what a word turned out to be.
type Kind uint8

const (
	KindNone Kind = iota
	KindVariable
	KindSingular
	KindPlural
	KindPrimitive
)

func (k Kind) String() string {
	switch k {
	case KindVariable:
		return "variable"
	case KindSingular:
		return "singular"
	case KindPlural:
		return "plural"
	case KindPrimitive:
		return "primitive"
	}
	return "none"
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Result is the outcome of matching one word.
type Result struct {
	Valid     bool   `json:"valid"`
	Kind      Kind   `json:"kind"`
	Plural    string `json:"plural,omitempty"`
	Singular  string `json:"singular,omitempty"`
	Type      Type   `json:"type"`
	Prototype string `json:"prototype,omitempty"`
	// Template is the matched shape; nil for literal names.
	Template *Template `json:"-"`
	// Guessed is set when the names were synthesized for an undeclared breed.
	Guessed bool `json:"guessed,omitempty"`
	// Rejected is set when the breed exists but has the wrong type for the shape.
	Rejected bool `json:"rejected,omitempty"`
}

// Match decides whether word is a breed variable, a bare breed name or a
// breed-synthesized primitive. With guessing set, a word shaped like a template
// whose breed is unknown comes back invalid with guessed names attached.
// Without guessing such a word yields the zero Result.
func Match(word string, lk Lookup, guessing bool) Result {
	word = strings.ToLower(word)
	if lk != nil {
		if plural, ok := lk.BreedVariableOwner(word); ok {
			info, _ := lookupPlural(lk, plural)
			return Result{Valid: true, Kind: KindVariable, Plural: plural, Singular: info.Singular, Type: info.Type}
		}
	}
	if info, ok := lookupSingular(lk, word); ok {
		return Result{Valid: true, Kind: KindSingular, Plural: info.Plural, Singular: info.Singular, Type: info.Type}
	}
	if info, ok := lookupPlural(lk, word); ok {
		return Result{Valid: true, Kind: KindPlural, Plural: info.Plural, Singular: info.Singular, Type: info.Type}
	}

	var first *Template
	var firstFrag string
	var rejected Result
	for _, t := range Templates {
		m := t.pattern.FindStringSubmatch(word)
		if m == nil {
			continue
		}
		frag := m[1]
		if first == nil {
			first, firstFrag = t, frag
		}
		info, form, ok := resolve(lk, t, frag)
		if !ok {
			continue
		}
		if !t.Expect.accepts(info.Type) {
			if !rejected.Rejected {
				rejected = Result{Kind: KindPrimitive, Plural: info.Plural, Singular: info.Singular,
					Type: info.Type, Template: t, Rejected: true}
			}
			continue
		}
		return Result{
			Valid:     true,
			Kind:      KindPrimitive,
			Plural:    info.Plural,
			Singular:  info.Singular,
			Type:      info.Type,
			Template:  t,
			Prototype: prototype(t, info.Type, form),
		}
	}
	if rejected.Rejected {
		return rejected
	}
	if first == nil || !guessing {
		return Result{}
	}
	return guess(first, firstFrag)
}

func resolve(lk Lookup, t *Template, frag string) (Info, Form, bool) {
	if t.Form != Singular {
		if info, ok := lookupPlural(lk, frag); ok {
			return info, Plural, true
		}
	}
	if t.Form != Plural {
		if info, ok := lookupSingular(lk, frag); ok {
			return info, Singular, true
		}
	}
	return Info{}, t.Form, false
}

func lookupPlural(lk Lookup, plural string) (Info, bool) {
	if info, ok := BuiltinByPlural(plural); ok {
		return info, true
	}
	if lk == nil {
		return Info{}, false
	}
	return lk.BreedByPlural(plural)
}

func lookupSingular(lk Lookup, singular string) (Info, bool) {
	if info, ok := BuiltinBySingular(singular); ok {
		return info, true
	}
	if lk == nil {
		return Info{}, false
	}
	return lk.BreedBySingular(singular)
}

func guess(t *Template, frag string) Result {
	r := Result{Kind: KindPrimitive, Template: t, Guessed: true}
	form := t.Form
	if form == Either {
		form = Singular
		if strings.HasSuffix(frag, "s") {
			form = Plural
		}
	}
	if form == Plural {
		r.Plural, r.Singular = frag, Singularize(frag)
	} else {
		r.Singular, r.Plural = frag, Pluralize(frag)
	}
	switch t.Expect {
	case ExpectLink:
		r.Type = UndirectedLink
		if t.Directed {
			r.Type = DirectedLink
		}
	default:
		r.Type = Turtle
	}
	r.Prototype = prototype(t, r.Type, form)
	return r
}

// prototype replaces the breed fragment with the generic built-in name.
func prototype(t *Template, typ Type, form Form) string {
	var generic Info
	switch {
	case typ == Patch:
		generic = Builtin[1]
	case typ.IsLink():
		generic = Builtin[2]
	default:
		generic = Builtin[0]
	}
	if form == Singular {
		return t.Build(generic.Singular)
	}
	return t.Build(generic.Plural)
}

// Pluralize guesses a plural: foo -> foos.
func Pluralize(singular string) string {
	return singular + "s"
}

// Singularize guesses a singular: foos -> foo, foo -> a-foo.
func Singularize(plural string) string {
	if len(plural) > 1 && strings.HasSuffix(plural, "s") {
		return plural[:len(plural)-1]
	}
	return "a-" + plural
}

// Synthesize lists every breed primitive name a breed introduces.
func Synthesize(info Info) []string {
	var out []string
	for _, t := range Templates {
		if !t.Expect.accepts(info.Type) {
			continue
		}
		switch t.Form {
		case Plural:
			out = append(out, t.Build(info.Plural))
		case Singular:
			out = append(out, t.Build(info.Singular))
		default:
			out = append(out, t.Build(info.Singular))
			if info.Plural != info.Singular {
				out = append(out, t.Build(info.Plural))
			}
		}
	}
	return out
}
