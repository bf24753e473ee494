package lint

import "strings"

// External error sources.
const (
	SourceCompiler = "compiler"
	SourceRuntime  = "runtime"
)

// KeyExternal carries an error message produced outside this package.
const KeyExternal = "_"

// ExternalError is an error reported by the NetLogo compiler or runtime.
type ExternalError struct {
	Message string `json:"message"`
	Start   int    `json:"start"`
	End     int    `json:"end"`
}

// ExternalErrors turns injected errors into diagnostics clamped to a buffer of
// length size. The messages are passed through uninterpreted.
func ExternalErrors(source string, errs []ExternalError, size int) []Diagnostic {
	out := make([]Diagnostic, 0, len(errs))
	for _, e := range errs {
		from, to := clampSpan(e.Start, e.End, size)
		out = append(out, Diagnostic{
			From:     from,
			To:       to,
			Severity: SeverityError,
			Key:      KeyExternal,
			Args:     []string{strings.TrimSpace(e.Message)},
			Source:   source,
		})
	}
	return out
}

func clampSpan(from, to, size int) (int, int) {
	if from < 0 {
		from = 0
	}
	if from > size {
		from = size
	}
	if to < from {
		to = from
	}
	if to > size {
		to = size
	}
	return from, to
}
