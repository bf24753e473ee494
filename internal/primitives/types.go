package primitives

import "strings"

// Type is a bitmask of NetLogo value types accepted or returned by a primitive.
type Type uint32

const (
	TypeNumber Type = 1 << iota
	TypeBoolean
	TypeString
	TypeList
	TypeTurtle
	TypePatch
	TypeLink
	TypeTurtleset
	TypePatchset
	TypeLinkset
	TypeNobody
	TypeCommandBlock
	TypeReporterBlock
	TypeCommand  // anonymous command
	TypeReporter // anonymous reporter
	TypeSymbol   // new variable name (let)
	TypeReference
	TypeUnit // commands return nothing
)

const (
	TypeAgent     = TypeTurtle | TypePatch | TypeLink
	TypeAgentset  = TypeTurtleset | TypePatchset | TypeLinkset
	TypeWildcard  = TypeNumber | TypeBoolean | TypeString | TypeList | TypeAgent | TypeAgentset | TypeNobody | TypeCommand | TypeReporter
	TypeCodeBlock = TypeCommandBlock | TypeReporterBlock
)

// Has reports whether any bit of o is set in t.
func (t Type) Has(o Type) bool { return t&o != 0 }

// Only reports whether t is non-empty and contains nothing outside o.
func (t Type) Only(o Type) bool { return t != 0 && t&^o == 0 }

// Kinds returns the agent kinds a turtle/patch/link typed value denotes.
func (t Type) Kinds() AgentContext {
	return AgentContext{
		Turtle: t.Has(TypeTurtle | TypeTurtleset),
		Patch:  t.Has(TypePatch | TypePatchset),
		Link:   t.Has(TypeLink | TypeLinkset),
	}
}

var typeNames = []struct {
	t    Type
	name string
}{
	{TypeNumber, "number"},
	{TypeBoolean, "boolean"},
	{TypeString, "string"},
	{TypeList, "list"},
	{TypeTurtle, "turtle"},
	{TypePatch, "patch"},
	{TypeLink, "link"},
	{TypeTurtleset, "turtleset"},
	{TypePatchset, "patchset"},
	{TypeLinkset, "linkset"},
	{TypeNobody, "nobody"},
	{TypeCommandBlock, "command block"},
	{TypeReporterBlock, "reporter block"},
	{TypeCommand, "anonymous command"},
	{TypeReporter, "anonymous reporter"},
	{TypeSymbol, "symbol"},
	{TypeReference, "variable"},
	{TypeUnit, "unit"},
}

func (t Type) String() string {
	if t == TypeWildcard {
		return "anything"
	}
	var parts []string
	for _, tn := range typeNames {
		if t.Has(tn.t) {
			parts = append(parts, tn.name)
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "/")
}

// Arg describes one argument slot.
type Arg struct {
	Types     Type `json:"types"`
	CanRepeat bool `json:"can_repeat,omitempty"`
	Optional  bool `json:"optional,omitempty"`
}

// BlockKind tells the extraction pass how a primitive's block gets its context.
type BlockKind uint8

const (
	// BlockInherit blocks run in the caller's context (if, repeat, while).
	BlockInherit BlockKind = iota
	// BlockFixed blocks run in BlockContext (hatch, sprout, create-link-with).
	BlockFixed
	// BlockAgentset blocks run as the agents denoted by AgentsetArg (ask, with, of).
	BlockAgentset
)

// Argument references for AgentsetArg.
const (
	NoArg   = -2
	LeftArg = -1
)

// Primitive is one built-in command or reporter.
type Primitive struct {
	Name       string `json:"name"`
	Extension  string `json:"extension,omitempty"`
	Left       *Arg   `json:"left,omitempty"`
	Right      []Arg  `json:"right"`
	Return     Type   `json:"return"`
	Precedence int    `json:"precedence"`

	Context      AgentContext  `json:"context"`
	BlockContext *AgentContext `json:"block_context,omitempty"`
	BlockKind    BlockKind     `json:"block_kind"`
	// AgentsetArg is the argument whose agents run the block for BlockAgentset,
	// or whose agent kinds a pass-through reporter returns.
	AgentsetArg int `json:"agentset_arg"`

	// DefaultOption is the right argument count without parentheses (-1: len(Right)).
	DefaultOption int `json:"default_option"`
	// MinimumOption is the smallest right argument count with parentheses (-1: required count).
	MinimumOption int `json:"minimum_option"`

	RightAssociative  bool `json:"right_associative,omitempty"`
	IntroducesContext bool `json:"introduces_context,omitempty"`
}

// Precedence levels.
const (
	PrecBoolean    = 4
	PrecEquality   = 5
	PrecComparison = 6
	PrecAdditive   = 7
	PrecMultiply   = 8
	PrecPower      = 9
	PrecNormal     = 10
	PrecOf         = 11
	PrecWith       = 12
)

// FullName returns the extension-qualified name.
func (p *Primitive) FullName() string {
	if p.Extension == "" {
		return p.Name
	}
	return p.Extension + ":" + p.Name
}

// IsCommand reports whether the primitive returns nothing.
func (p *Primitive) IsCommand() bool { return p.Return == TypeUnit }

// IsInfix reports whether the primitive takes a left argument.
func (p *Primitive) IsInfix() bool { return p.Left != nil }

// Required counts right arguments that are not optional. A repeatable
// argument counts once.
func (p *Primitive) Required() int {
	n := 0
	for _, a := range p.Right {
		if !a.Optional {
			n++
		}
	}
	return n
}

// Variadic reports whether parentheses unlock an unbounded argument list.
func (p *Primitive) Variadic() bool {
	for _, a := range p.Right {
		if a.CanRepeat {
			return true
		}
	}
	return false
}

// DefaultArgs is the argument count expected without parentheses.
func (p *Primitive) DefaultArgs() int {
	if p.DefaultOption >= 0 {
		return p.DefaultOption
	}
	return p.Required()
}

// ArityBounds returns the allowed right argument count. max < 0 means unbounded.
func (p *Primitive) ArityBounds(parenthesized bool) (min, max int) {
	if !parenthesized {
		d := p.DefaultArgs()
		min = d
		if p.DefaultOption < 0 {
			max = len(p.Right)
			for _, a := range p.Right {
				if a.CanRepeat {
					max = d
					break
				}
			}
		} else {
			max = d
		}
		return min, max
	}
	if p.MinimumOption >= 0 {
		min = p.MinimumOption
	} else {
		min = p.Required()
	}
	if p.Variadic() {
		return min, -1
	}
	return min, len(p.Right)
}

// ArgAt returns the descriptor for right argument i, following repeatable tails.
func (p *Primitive) ArgAt(i int) (Arg, bool) {
	if i < len(p.Right) {
		return p.Right[i], true
	}
	if n := len(p.Right); n > 0 && p.Right[n-1].CanRepeat {
		return p.Right[n-1], true
	}
	return Arg{}, false
}
