package primitives

// Category groups built-in agent variables.
type Category uint8

const (
	CategoryTurtle Category = iota + 1
	CategoryPatch
	CategoryLink
)

func (c Category) String() string {
	switch c {
	case CategoryTurtle:
		return "turtle"
	case CategoryPatch:
		return "patch"
	case CategoryLink:
		return "link"
	}
	return "unknown"
}

// Variable is a built-in agent variable.
type Variable struct {
	Name     string       `json:"name"`
	Context  AgentContext `json:"context"`
	Category Category     `json:"category"`
}

// TurtleVariables are the built-in variables every turtle owns.
var TurtleVariables = []string{
	"who", "color", "heading", "xcor", "ycor", "shape", "label", "label-color",
	"breed", "hidden?", "size", "pen-size", "pen-mode",
}

// PatchVariables are the built-in variables every patch owns.
var PatchVariables = []string{"pxcor", "pycor", "pcolor", "plabel", "plabel-color"}

// LinkVariables are the built-in variables every link owns.
var LinkVariables = []string{
	"end1", "end2", "color", "label", "label-color", "hidden?", "breed",
	"thickness", "shape", "tie-mode",
}

var builtinVariables = buildVariables()

func buildVariables() map[string]Variable {
	vars := make(map[string]Variable)
	for _, name := range TurtleVariables {
		vars[name] = Variable{Name: name, Context: ParseContext(ctxTurtle), Category: CategoryTurtle}
	}
	for _, name := range PatchVariables {
		// Turtles read the variables of the patch they stand on.
		vars[name] = Variable{Name: name, Context: ParseContext(ctxTP), Category: CategoryPatch}
	}
	for _, name := range LinkVariables {
		if v, ok := vars[name]; ok {
			v.Context = ParseContext(ctxTL)
			vars[name] = v
			continue
		}
		vars[name] = Variable{Name: name, Context: ParseContext(ctxLink), Category: CategoryLink}
	}
	return vars
}

// BuiltinVariable looks up a built-in agent variable.
func BuiltinVariable(name string) (Variable, bool) {
	v, ok := builtinVariables[name]
	return v, ok
}

// VariablesOf returns the built-in variable names of a category. Category zero
// (unknown) returns the union of all three.
func VariablesOf(c Category) []string {
	switch c {
	case CategoryTurtle:
		return TurtleVariables
	case CategoryPatch:
		return PatchVariables
	case CategoryLink:
		return LinkVariables
	}
	seen := make(map[string]bool)
	var out []string
	for _, list := range [][]string{TurtleVariables, PatchVariables, LinkVariables} {
		for _, name := range list {
			if !seen[name] {
				seen[name] = true
				out = append(out, name)
			}
		}
	}
	return out
}

// ReservedVariables lists the built-in names a breed variable of category c
// may not reuse. Turtles also see the variables of the patch they stand on.
func ReservedVariables(c Category) []string {
	if c == CategoryTurtle {
		return append(append([]string(nil), TurtleVariables...), PatchVariables...)
	}
	return VariablesOf(c)
}

// Colors are the named color constants.
var Colors = []string{
	"black", "gray", "white", "red", "orange", "brown", "yellow", "green", "lime",
	"turquoise", "cyan", "sky", "blue", "violet", "magenta", "pink",
}

var constants = func() map[string]bool {
	m := map[string]bool{"true": true, "false": true, "nobody": true, "e": true, "pi": true}
	for _, c := range Colors {
		m[c] = true
	}
	return m
}()

// IsConstant reports whether name is a literal constant.
func IsConstant(name string) bool { return constants[name] }

// Constants lists every literal constant.
func Constants() []string {
	out := []string{"true", "false", "nobody", "e", "pi"}
	return append(out, Colors...)
}

// Keywords are structural words handled by the parser, not the catalog.
var Keywords = []string{
	"to", "to-report", "end", "globals", "extensions", "breed",
	"directed-link-breed", "undirected-link-breed", "turtles-own", "patches-own", "links-own",
}

var keywordSet = func() map[string]bool {
	m := make(map[string]bool, len(Keywords))
	for _, k := range Keywords {
		m[k] = true
	}
	return m
}()

// IsKeyword reports whether name is a structural keyword.
func IsKeyword(name string) bool { return keywordSet[name] }

// DefaultUnsupported lists primitives known to NetLogo that this editor
// cannot run.
var DefaultUnsupported = []string{
	"file-open", "file-close", "file-close-all", "file-delete", "file-flush",
	"file-print", "file-show", "file-type", "file-write", "file-at-end?",
	"file-exists?", "file-read", "file-read-characters", "file-read-line",
	"user-directory", "user-file", "user-new-file", "set-current-directory",
	"import-drawing", "import-pcolors-rgb", "export-interface", "ask-concurrent",
	"without-interruption", "hubnet-reset", "hubnet-fetch-message", "hubnet-send",
	"hubnet-broadcast", "hubnet-message", "hubnet-message?", "hubnet-message-source",
	"hubnet-message-tag", "hubnet-enter-message?", "hubnet-exit-message?",
}
