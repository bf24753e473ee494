// Package primitives holds the static NetLogo primitive catalog: commands,
// reporters, built-in variables and constants, with arity and agent context data.
package primitives

import (
	"sort"
	"strings"
	"sync"
)

// Catalog indexes primitives by lower-cased, extension-qualified name.
// A Catalog is immutable once built.
type Catalog struct {
	prims       map[string]*Primitive
	byExt       map[string][]*Primitive
	prototypes  map[string]*Primitive
	unsupported map[string]bool
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the process-wide catalog built from the static tables.
func Default() *Catalog {
	defaultOnce.Do(func() {
		all := append(corePrimitives(), extensionPrimitives()...)
		defaultCatalog = New(all, DefaultUnsupported)
		for _, p := range breedPrototypes() {
			defaultCatalog.prototypes[p.Name] = p
		}
	})
	return defaultCatalog
}

// New builds a catalog from prims; names in unsupported are flagged as known
// but not available in this editor.
func New(prims []*Primitive, unsupported []string) *Catalog {
	c := &Catalog{
		prims:       make(map[string]*Primitive, len(prims)),
		byExt:       make(map[string][]*Primitive),
		prototypes:  make(map[string]*Primitive),
		unsupported: make(map[string]bool, len(unsupported)),
	}
	for _, p := range prims {
		c.prims[strings.ToLower(p.FullName())] = p
		if p.Extension != "" {
			c.byExt[p.Extension] = append(c.byExt[p.Extension], p)
		}
	}
	for _, name := range unsupported {
		c.unsupported[strings.ToLower(name)] = true
	}
	return c
}

// WithUnsupported returns a copy of c that additionally flags names as unsupported.
func (c *Catalog) WithUnsupported(names []string) *Catalog {
	if len(names) == 0 {
		return c
	}
	out := &Catalog{
		prims:       c.prims,
		byExt:       c.byExt,
		prototypes:  c.prototypes,
		unsupported: make(map[string]bool, len(c.unsupported)+len(names)),
	}
	for k := range c.unsupported {
		out.unsupported[k] = true
	}
	for _, name := range names {
		out.unsupported[strings.ToLower(name)] = true
	}
	return out
}

// Lookup finds a primitive by its (extension-qualified) name.
func (c *Catalog) Lookup(name string) (*Primitive, bool) {
	p, ok := c.prims[strings.ToLower(name)]
	return p, ok
}

// Prototype finds the generic primitive a breed template stands for, such as
// "hatch-turtles" or "my-links".
func (c *Catalog) Prototype(name string) (*Primitive, bool) {
	if p, ok := c.prototypes[name]; ok {
		return p, true
	}
	return c.Lookup(name)
}

// IsUnsupported reports whether name is a known primitive this editor cannot run.
func (c *Catalog) IsUnsupported(name string) bool {
	return c.unsupported[strings.ToLower(name)]
}

// Extension returns the primitives of one extension, sorted by name.
func (c *Catalog) Extension(ext string) []*Primitive {
	prims := append([]*Primitive(nil), c.byExt[strings.ToLower(ext)]...)
	sort.Slice(prims, func(i, j int) bool { return prims[i].Name < prims[j].Name })
	return prims
}

// ExtensionNames lists every extension with catalog entries.
func (c *Catalog) ExtensionNames() []string {
	names := make([]string, 0, len(c.byExt))
	for name := range c.byExt {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Core returns every core primitive sorted by name.
func (c *Catalog) Core() []*Primitive {
	var out []*Primitive
	for _, p := range c.prims {
		if p.Extension == "" {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ReturnKinds resolves the agent kinds a reporter returns. Pass-through
// reporters (one-of, other, with) defer to argKinds for their agentset argument.
func (p *Primitive) ReturnKinds(argKinds func(arg int) (AgentContext, bool)) AgentContext {
	if p.AgentsetArg != NoArg && p.Return.Has(TypeAgent|TypeAgentset|TypeList) && !p.Return.Only(TypeList) {
		if k, ok := argKinds(p.AgentsetArg); ok {
			return k
		}
	}
	return p.Return.Kinds()
}
