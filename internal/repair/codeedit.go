package repair

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/DeusData/netlogo-intel/internal/breeds"
	"github.com/DeusData/netlogo-intel/internal/state"
	"github.com/DeusData/netlogo-intel/internal/syntax"
	"github.com/DeusData/netlogo-intel/internal/textedit"
)

// layout indexes the top-level declarations of a document.
type layout struct {
	src        string
	extensions *syntax.Node
	globals    *syntax.Node
	lastBreed  *syntax.Node
	lastOwn    *syntax.Node
	owns       map[string]*syntax.Node // plural -> first <plural>-own
}

func scan(v *state.View) *layout {
	l := &layout{src: v.Source(), owns: map[string]*syntax.Node{}}
	if v.Tree == nil {
		return l
	}
	for _, n := range v.Tree.Root.Children {
		switch n.Kind {
		case syntax.Extensions:
			if l.extensions == nil {
				l.extensions = n
			}
		case syntax.Globals:
			if l.globals == nil {
				l.globals = n
			}
		case syntax.Breed:
			l.lastBreed = n
		case syntax.BreedsOwn:
			l.lastOwn = n
			plural := strings.TrimSuffix(n.Children[0].Text, "-own")
			if _, ok := l.owns[plural]; !ok {
				l.owns[plural] = n
			}
		}
	}
	return l
}

// into appends names to the bracket list of decl. It returns false when the
// declaration has no closing bracket to insert before.
func (l *layout) into(decl *syntax.Node, names []string) (textedit.Change, bool) {
	if decl == nil {
		return textedit.Change{}, false
	}
	cb := decl.Child(syntax.CloseBracket)
	if cb == nil {
		return textedit.Change{}, false
	}
	text := strings.Join(names, " ") + " "
	if cb.From > 0 {
		if r := rune(l.src[cb.From-1]); !unicode.IsSpace(r) && r != '[' {
			text = " " + text
		}
	}
	return textedit.Insert(cb.From, text), true
}

// after places a new top-level line after the first non-nil anchor, or at the
// top of the document.
func after(line string, anchors ...*syntax.Node) textedit.Change {
	for _, a := range anchors {
		if a != nil {
			return textedit.Insert(a.To, "\n"+line)
		}
	}
	return textedit.Insert(0, line+"\n")
}

func fresh(names []string, known func(string) bool) []string {
	seen := map[string]bool{}
	var out []string
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		if n == "" || seen[n] || known(n) {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

func bracketed(keyword string, names []string) string {
	return fmt.Sprintf("%s [ %s ]", keyword, strings.Join(names, " "))
}

// AddExtensions returns the changes declaring the extensions v does not
// declare yet.
func AddExtensions(v *state.View, names ...string) []textedit.Change {
	missing := fresh(names, v.Lint.HasExtension)
	if len(missing) == 0 {
		return nil
	}
	l := scan(v)
	if c, ok := l.into(l.extensions, missing); ok {
		return []textedit.Change{c}
	}
	return []textedit.Change{after(bracketed("extensions", missing))}
}

// AddGlobals returns the changes declaring the globals v does not declare yet.
func AddGlobals(v *state.View, names ...string) []textedit.Change {
	missing := fresh(names, v.Lint.IsGlobal)
	if len(missing) == 0 {
		return nil
	}
	l := scan(v)
	if c, ok := l.into(l.globals, missing); ok {
		return []textedit.Change{c}
	}
	return []textedit.Change{after(bracketed("globals", missing), l.extensions)}
}

// AddBreed returns the change declaring a breed, or nil when either name is
// already a breed.
func AddBreed(v *state.View, typ breeds.Type, plural, singular string) []textedit.Change {
	plural, singular = strings.ToLower(plural), strings.ToLower(singular)
	if plural == "" || singular == "" {
		return nil
	}
	if _, ok := v.Lint.BreedByPlural(plural); ok {
		return nil
	}
	if _, ok := v.Lint.BreedBySingular(singular); ok {
		return nil
	}
	if typ == breeds.Unknown || typ == breeds.Patch {
		typ = breeds.Turtle
	}
	l := scan(v)
	line := fmt.Sprintf("%s [ %s %s ]", typ.Keyword(), plural, singular)
	return []textedit.Change{after(line, l.lastBreed, l.globals, l.extensions)}
}

// AddBreedVariables returns the changes adding variables to <plural>-own.
func AddBreedVariables(v *state.View, plural string, names ...string) []textedit.Change {
	plural = strings.ToLower(plural)
	owned := map[string]bool{}
	if info, ok := v.Lint.BreedByPlural(plural); ok {
		if b := v.Lint.Breeds[info.Singular]; b != nil {
			for _, name := range b.Variables {
				owned[name] = true
			}
		}
	}
	missing := fresh(names, func(n string) bool { return owned[n] })
	if len(missing) == 0 {
		return nil
	}
	l := scan(v)
	if c, ok := l.into(l.owns[plural], missing); ok {
		return []textedit.Change{c}
	}
	return []textedit.Change{after(bracketed(plural+"-own", missing), l.lastOwn, l.lastBreed, l.globals, l.extensions)}
}
