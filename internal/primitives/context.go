package primitives

import "strings"

// AgentContext is the set of agent kinds allowed to run a piece of code.
// An empty context is always an error.
type AgentContext struct {
	Observer bool `json:"observer"`
	Turtle   bool `json:"turtle"`
	Patch    bool `json:"patch"`
	Link     bool `json:"link"`
}

// AnyContext allows every agent kind.
func AnyContext() AgentContext {
	return AgentContext{Observer: true, Turtle: true, Patch: true, Link: true}
}

// ParseContext reads a four letter "OTPL" mask; '-' marks a disallowed kind.
func ParseContext(mask string) AgentContext {
	mask = strings.ToUpper(mask)
	return AgentContext{
		Observer: strings.ContainsRune(mask, 'O'),
		Turtle:   strings.ContainsRune(mask, 'T'),
		Patch:    strings.ContainsRune(mask, 'P'),
		Link:     strings.ContainsRune(mask, 'L'),
	}
}

// Combine intersects two contexts.
func (c AgentContext) Combine(o AgentContext) AgentContext {
	return AgentContext{
		Observer: c.Observer && o.Observer,
		Turtle:   c.Turtle && o.Turtle,
		Patch:    c.Patch && o.Patch,
		Link:     c.Link && o.Link,
	}
}

// Union joins two contexts.
func (c AgentContext) Union(o AgentContext) AgentContext {
	return AgentContext{
		Observer: c.Observer || o.Observer,
		Turtle:   c.Turtle || o.Turtle,
		Patch:    c.Patch || o.Patch,
		Link:     c.Link || o.Link,
	}
}

// IsEmpty reports whether no agent kind is allowed.
func (c AgentContext) IsEmpty() bool {
	return !c.Observer && !c.Turtle && !c.Patch && !c.Link
}

// IsAny reports whether every agent kind is allowed.
func (c AgentContext) IsAny() bool {
	return c.Observer && c.Turtle && c.Patch && c.Link
}

func (c AgentContext) String() string {
	b := []byte("----")
	if c.Observer {
		b[0] = 'O'
	}
	if c.Turtle {
		b[1] = 'T'
	}
	if c.Patch {
		b[2] = 'P'
	}
	if c.Link {
		b[3] = 'L'
	}
	return string(b)
}
