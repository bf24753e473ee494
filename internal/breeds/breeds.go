// Package breeds recognises breed-synthesized primitive names such as
// hatch-wolves, my-out-roads or is-sheep? against the declared breeds.
package breeds

import (
	"fmt"
	"regexp"
	"strings"
)

// Type is the agent type of a breed.
type Type uint8

const (
	Unknown Type = iota
	Turtle
	Patch
	UndirectedLink
	DirectedLink
)

// IsLink reports whether t is either link type.
func (t Type) IsLink() bool { return t == UndirectedLink || t == DirectedLink }

func (t Type) String() string {
	switch t {
	case Turtle:
		return "turtle"
	case Patch:
		return "patch"
	case UndirectedLink:
		return "undirected-link"
	case DirectedLink:
		return "directed-link"
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (t Type) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// Keyword returns the declaration keyword for a breed of type t.
func (t Type) Keyword() string {
	switch t {
	case UndirectedLink:
		return "undirected-link-breed"
	case DirectedLink:
		return "directed-link-breed"
	}
	return "breed"
}

// TypeForKeyword maps a declaration keyword to a breed type.
func TypeForKeyword(kw string) Type {
	switch strings.ToLower(kw) {
	case "breed":
		return Turtle
	case "undirected-link-breed":
		return UndirectedLink
	case "directed-link-breed":
		return DirectedLink
	}
	return Unknown
}

// Info is the name pair and type of one breed.
type Info struct {
	Plural   string `json:"plural"`
	Singular string `json:"singular"`
	Type     Type   `json:"type"`
}

// Lookup answers breed questions from a symbol table.
type Lookup interface {
	BreedByPlural(plural string) (Info, bool)
	BreedBySingular(singular string) (Info, bool)
	BreedVariableOwner(name string) (plural string, ok bool)
}

// Builtin breeds exist implicitly in every model.
var Builtin = []Info{
	{Plural: "turtles", Singular: "turtle", Type: Turtle},
	{Plural: "patches", Singular: "patch", Type: Patch},
	{Plural: "links", Singular: "link", Type: UndirectedLink},
}

// BuiltinByPlural finds a built-in breed.
func BuiltinByPlural(plural string) (Info, bool) {
	for _, b := range Builtin {
		if b.Plural == plural {
			return b, true
		}
	}
	return Info{}, false
}

// BuiltinBySingular finds a built-in breed by singular name.
func BuiltinBySingular(singular string) (Info, bool) {
	for _, b := range Builtin {
		if b.Singular == singular {
			return b, true
		}
	}
	return Info{}, false
}

// Form says which name of the breed a template embeds.
type Form uint8

const (
	Plural Form = iota
	Singular
	Either
)

// Expect is the breed type a template requires.
type Expect uint8

const (
	ExpectAny Expect = iota
	ExpectTurtle
	ExpectLink
)

func (e Expect) accepts(t Type) bool {
	switch e {
	case ExpectTurtle:
		return t == Turtle
	case ExpectLink:
		return t.IsLink()
	}
	return true
}

// Template is one breed-primitive shape. Format holds a single %s where the
// breed name goes.
type Template struct {
	Format   string
	Form     Form
	Expect   Expect
	Directed bool
	pattern  *regexp.Regexp
}

// Name renders the template with a placeholder, e.g. "hatch-<breeds>".
func (t *Template) Name() string {
	switch t.Form {
	case Plural:
		return fmt.Sprintf(t.Format, "<breeds>")
	case Singular:
		return fmt.Sprintf(t.Format, "<breed>")
	}
	return fmt.Sprintf(t.Format, "<breed(s)>")
}

// Build synthesizes the primitive name for a breed name.
func (t *Template) Build(name string) string {
	return fmt.Sprintf(t.Format, name)
}

func newTemplate(format string, form Form, expect Expect, directed bool) *Template {
	i := strings.Index(format, "%s")
	expr := "^" + regexp.QuoteMeta(format[:i]) + "(.+)" + regexp.QuoteMeta(format[i+2:]) + "$"
	return &Template{
		Format:   format,
		Form:     form,
		Expect:   expect,
		Directed: directed,
		pattern:  regexp.MustCompile(expr),
	}
}

// Templates in matching priority: multi-part shapes before single suffixes.
var Templates = []*Template{
	newTemplate("create-ordered-%s", Plural, ExpectTurtle, false),
	newTemplate("create-%s-to", Either, ExpectLink, true),
	newTemplate("create-%s-from", Either, ExpectLink, true),
	newTemplate("create-%s-with", Either, ExpectLink, false),
	newTemplate("create-%s", Plural, ExpectTurtle, false),
	newTemplate("hatch-%s", Plural, ExpectTurtle, false),
	newTemplate("sprout-%s", Plural, ExpectTurtle, false),
	newTemplate("in-%s-neighbor?", Singular, ExpectLink, true),
	newTemplate("out-%s-neighbor?", Singular, ExpectLink, true),
	newTemplate("in-%s-neighbors", Singular, ExpectLink, true),
	newTemplate("out-%s-neighbors", Singular, ExpectLink, true),
	newTemplate("in-%s-from", Singular, ExpectLink, true),
	newTemplate("out-%s-to", Singular, ExpectLink, true),
	newTemplate("my-in-%s", Plural, ExpectLink, true),
	newTemplate("my-out-%s", Plural, ExpectLink, true),
	newTemplate("my-%s", Plural, ExpectLink, false),
	newTemplate("is-%s?", Singular, ExpectAny, false),
	newTemplate("%s-own", Plural, ExpectAny, false),
	newTemplate("%s-here", Plural, ExpectTurtle, false),
	newTemplate("%s-at", Plural, ExpectTurtle, false),
	newTemplate("%s-on", Plural, ExpectTurtle, false),
	newTemplate("%s-neighbor?", Either, ExpectLink, false),
	newTemplate("%s-neighbors", Either, ExpectLink, false),
	newTemplate("%s-with", Either, ExpectLink, false),
}
