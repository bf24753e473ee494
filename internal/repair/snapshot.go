package repair

import (
	"sort"

	"github.com/DeusData/netlogo-intel/internal/breeds"
	"github.com/DeusData/netlogo-intel/internal/state"
)

// Snapshot captures the declarations of a document so they can be merged
// back into repaired or generated code.
type Snapshot struct {
	Extensions []string        `json:"extensions"`
	Globals    []string        `json:"globals"`
	Breeds     []SnapshotBreed `json:"breeds"`
	Procedures []string        `json:"procedures"`
}

// SnapshotBreed is one breed of a Snapshot. Builtin marks turtles, patches
// or links that only carry -own variables.
type SnapshotBreed struct {
	Plural    string      `json:"plural"`
	Singular  string      `json:"singular"`
	Type      breeds.Type `json:"type"`
	Variables []string    `json:"variables,omitempty"`
	Builtin   bool        `json:"builtin,omitempty"`
}

// BuildSnapshot copies the declarations of lc. Lists are sorted, breeds by
// declaration position.
func BuildSnapshot(lc *state.LintContext) *Snapshot {
	s := &Snapshot{}
	if lc == nil {
		return s
	}
	s.Extensions = keys(lc.Extensions)
	s.Globals = keys(lc.Globals)
	for name := range lc.Procedures {
		s.Procedures = append(s.Procedures, name)
	}
	sort.Strings(s.Procedures)
	for _, b := range lc.BreedList() {
		if b.Default && len(b.Variables) == 0 {
			continue
		}
		s.Breeds = append(s.Breeds, SnapshotBreed{
			Plural:    b.Plural,
			Singular:  b.Singular,
			Type:      b.Type,
			Variables: append([]string(nil), b.Variables...),
			Builtin:   b.Default,
		})
	}
	return s
}

func keys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
