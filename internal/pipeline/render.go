package pipeline

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/DeusData/netlogo-intel/internal/lint"
	"github.com/DeusData/netlogo-intel/internal/syntax"
)

// WriteDiagnostics prints diags of one file as "path:line:col: severity: message".
func WriteDiagnostics(w io.Writer, path, code string, diags []lint.Diagnostic) error {
	for _, d := range diags {
		line, col := syntax.LineCol(code, d.From)
		if _, err := fmt.Fprintf(w, "%s:%d:%d: %s: %s\n", path, line, col, d.Severity, d.Message()); err != nil {
			return err
		}
	}
	return nil
}

// WriteReport prints every diagnostic of r with paths relative to root.
func WriteReport(w io.Writer, root string, r *Report) error {
	for _, f := range r.Files {
		path := filepath.Join(root, filepath.FromSlash(f.RelPath))
		if err := WriteDiagnostics(w, path, f.Code, f.Diagnostics); err != nil {
			return err
		}
	}
	return nil
}
