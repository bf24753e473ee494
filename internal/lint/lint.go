// Package lint checks NetLogo documents. Each Linter is an independent pass
// over one consistent view of a document (tree plus symbol tables) that
// reports Diagnostics. Diagnostics carry a message key and positional
// arguments; rendering them is left to the caller.
package lint

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/DeusData/netlogo-intel/internal/metrics"
	"github.com/DeusData/netlogo-intel/internal/primitives"
	"github.com/DeusData/netlogo-intel/internal/state"
	"github.com/DeusData/netlogo-intel/internal/syntax"
	"github.com/DeusData/netlogo-intel/internal/textedit"
)

// Severity ranks a diagnostic.
type Severity uint8

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInfo
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	}
	return "error"
}

// MarshalText implements encoding.TextMarshaler.
func (s Severity) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Severity) UnmarshalText(b []byte) error {
	switch string(b) {
	case "error":
		*s = SeverityError
	case "warning":
		*s = SeverityWarning
	case "info":
		*s = SeverityInfo
	default:
		return fmt.Errorf("unknown severity %q", b)
	}
	return nil
}

// Fix is a quick fix: a titled set of changes the caller may apply after the
// lint pass has finished.
type Fix struct {
	Title   string            `json:"title"`
	Args    []string          `json:"args,omitempty"`
	Changes []textedit.Change `json:"changes"`
}

// Diagnostic is one finding over the byte range [From, To).
type Diagnostic struct {
	From     int      `json:"from"`
	To       int      `json:"to"`
	Severity Severity `json:"severity"`
	Key      string   `json:"key"`
	Args     []string `json:"args,omitempty"`
	Source   string   `json:"source"`
	Fixes    []Fix    `json:"fixes,omitempty"`
}

// Message substitutes the positional arguments into the key's "_" slots.
func (d Diagnostic) Message() string {
	return Fill(d.Key, d.Args)
}

// Fill replaces each "_" of key with the next argument.
func Fill(key string, args []string) string {
	if len(args) == 0 {
		return key
	}
	var b strings.Builder
	i := 0
	for _, r := range key {
		if r == '_' && i < len(args) {
			b.WriteString(args[i])
			i++
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Linter is one named check.
type Linter struct {
	Name string
	Doc  string
	Run  func(pass *Pass)
}

// Pass is the state handed to a Linter for one document.
type Pass struct {
	View    *state.View
	Tree    *syntax.Tree
	Lint    *state.LintContext
	Pre     *state.PreprocessContext
	Catalog *primitives.Catalog

	linter string
	diags  []Diagnostic
}

func newPass(v *state.View, linter string) *Pass {
	cat := v.Catalog
	if cat == nil {
		cat = primitives.Default()
	}
	return &Pass{View: v, Tree: v.Tree, Lint: v.Lint, Pre: v.Pre, Catalog: cat, linter: linter}
}

// Report records d, stamping the linter name as its source.
func (p *Pass) Report(d Diagnostic) {
	if d.Source == "" {
		d.Source = p.linter
	}
	p.diags = append(p.diags, d)
}

// Reportf reports a diagnostic spanning n.
func (p *Pass) Reportf(n *syntax.Node, sev Severity, key string, args ...string) {
	p.Report(Diagnostic{From: n.From, To: n.To, Severity: sev, Key: key, Args: args})
}

// Text returns the source covered by n with runs of whitespace collapsed.
func (p *Pass) Text(n *syntax.Node) string {
	src := p.View.Source()
	if n == nil || n.From < 0 || n.To > len(src) || n.From > n.To {
		return ""
	}
	text := strings.Join(strings.Fields(src[n.From:n.To]), " ")
	const max = 60
	if len(text) > max {
		text = text[:max] + "..."
	}
	return text
}

// Classify resolves a word against the pass's symbols.
func (p *Pass) Classify(word string) state.Word {
	return state.Classify(p.View.Symbols(), p.Catalog, word)
}

// Local reports whether word names an argument or local variable visible at pos.
func (p *Pass) Local(word string, pos int) bool {
	proc := p.Lint.ProcedureAt(p.View.EditorID, pos)
	return proc.Visible(word, pos)
}

// All returns every linter in reporting order.
func All() []Linter {
	return []Linter{
		UnrecognizedStatement,
		UnrecognizedGlobal,
		Identifiers,
		Arity,
		Brackets,
		BreedNames,
		Naming,
		Mode,
		BlockContent,
		Context,
	}
}

// Run lints v with linters, or with All when none are given. A linter that
// panics contributes no diagnostics and does not stop the others.
func Run(v *state.View, linters ...Linter) []Diagnostic {
	if v == nil || v.Tree == nil {
		return nil
	}
	if len(linters) == 0 {
		linters = All()
	}
	start := time.Now()
	var out []Diagnostic
	for _, l := range linters {
		out = append(out, runOne(v, l)...)
	}
	Sort(out)
	for _, d := range out {
		metrics.Diagnostics.WithLabelValues(d.Severity.String()).Inc()
	}
	metrics.Since("lint", start)
	return out
}

func runOne(v *state.View, l Linter) (diags []Diagnostic) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("lint.panic", "linter", l.Name, "editor", v.EditorID, "err", r)
			metrics.LinterPanics.WithLabelValues(l.Name).Inc()
			diags = nil
		}
	}()
	pass := newPass(v, l.Name)
	l.Run(pass)
	metrics.LintRuns.WithLabelValues(l.Name).Inc()
	return pass.diags
}

// Sort orders diagnostics by position, then source and key.
func Sort(diags []Diagnostic) {
	sort.SliceStable(diags, func(i, j int) bool {
		a, b := diags[i], diags[j]
		if a.From != b.From {
			return a.From < b.From
		}
		if a.To != b.To {
			return a.To < b.To
		}
		if a.Source != b.Source {
			return a.Source < b.Source
		}
		return a.Key < b.Key
	})
}

// declared reports whether the leaf n is a declaration of a name rather than a use.
func declared(n *syntax.Node) bool {
	par := n.Parent
	if par == nil {
		return false
	}
	switch par.Kind {
	case syntax.Extensions, syntax.Globals, syntax.Breed, syntax.BreedsOwn, syntax.Arguments:
		return true
	case syntax.Let:
		return n.Kind == syntax.Identifier && par.Child(syntax.Identifier) == n
	}
	return false
}
