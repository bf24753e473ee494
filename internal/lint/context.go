package lint

import (
	"sort"

	"github.com/DeusData/netlogo-intel/internal/primitives"
	"github.com/DeusData/netlogo-intel/internal/state"
)

// KeyInvalidContext reports code no agent kind can run.
const KeyInvalidContext = "Invalid context _"

// Context reports every procedure, block and anonymous procedure whose agent
// context is empty, and every inheriting block whose context does not
// intersect its parent's. Checking continues below an invalid node so every
// violation is reported in one pass.
var Context = Linter{
	Name: "context",
	Doc:  "Report code whose primitives cannot all run as one agent kind.",
	Run: func(pass *Pass) {
		var procs []*state.Procedure
		for _, p := range pass.Lint.Procedures {
			if p.EditorID == pass.View.EditorID {
				procs = append(procs, p)
			}
		}
		sort.Slice(procs, func(i, j int) bool { return procs[i].From < procs[j].From })
		if s := pass.Lint.Snippet; s != nil && s.EditorID == pass.View.EditorID {
			procs = append(procs, s)
		}
		for _, p := range procs {
			if p.Context.IsEmpty() {
				pass.Report(contextDiag(p.From, p.To, p.Name))
			}
			checkScope(pass, &p.Scope, p.Context)
		}
	},
}

func contextDiag(from, to int, name string) Diagnostic {
	return Diagnostic{From: from, To: to, Severity: SeverityError, Key: KeyInvalidContext, Args: []string{name}}
}

func checkScope(pass *Pass, s *state.Scope, parent primitives.AgentContext) {
	for _, b := range s.CodeBlocks {
		switch {
		case b.Context.IsEmpty():
			pass.Report(contextDiag(b.From, b.To, b.Primitive))
		case b.InheritParentContext && !parent.IsEmpty() && b.Context.Combine(parent).IsEmpty():
			pass.Report(contextDiag(b.From, b.To, b.Primitive))
		}
		checkScope(pass, &b.Scope, b.Context)
	}
	for _, a := range s.AnonymousProcedures {
		if a.Context.IsEmpty() {
			pass.Report(contextDiag(a.From, a.To, "->"))
		}
		checkScope(pass, &a.Scope, a.Context)
	}
}
