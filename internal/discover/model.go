package discover

import (
	"fmt"
	"os"
	"strings"
)

// SectionSeparator splits the sections of a .nlogo file.
const SectionSeparator = "@#$#@#$#@"

// Source is the code of one file ready for analysis. Offsets into Code are
// offsets into the file, since the code section always comes first.
type Source struct {
	FileInfo
	Code          string
	WidgetGlobals []string
}

// Load reads a discovered file.
func Load(f FileInfo) (*Source, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.RelPath, err)
	}
	return Parse(f, string(data)), nil
}

// Parse splits content according to the file's kind.
func Parse(f FileInfo, content string) *Source {
	src := &Source{FileInfo: f, Code: content}
	if f.Kind != KindModel {
		return src
	}
	sections := strings.Split(content, SectionSeparator)
	src.Code = sections[0]
	if len(sections) > 1 {
		src.WidgetGlobals = WidgetGlobals(sections[1])
	}
	return src
}

// variableLine is the line of each widget kind naming its global, counted
// from the widget type line.
var variableLine = map[string]int{
	"SLIDER":   6,
	"SWITCH":   6,
	"CHOOSER":  6,
	"INPUTBOX": 5,
}

// WidgetGlobals extracts the globals declared by the widgets of an interface
// section. Widgets are blocks separated by blank lines.
func WidgetGlobals(section string) []string {
	var out []string
	seen := map[string]bool{}
	for _, block := range strings.Split(strings.ReplaceAll(section, "\r\n", "\n"), "\n\n") {
		lines := strings.Split(strings.Trim(block, "\n"), "\n")
		at, ok := variableLine[strings.TrimSpace(lines[0])]
		if !ok || at >= len(lines) {
			continue
		}
		name := strings.ToLower(strings.TrimSpace(lines[at]))
		if name == "" || name == "nil" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

// WithCode returns content with its code replaced. For model files only the
// first section changes; the code section keeps a trailing newline before
// the separator.
func WithCode(kind Kind, content, code string) string {
	if kind != KindModel {
		return code
	}
	i := strings.Index(content, SectionSeparator)
	if i < 0 {
		return code
	}
	if !strings.HasSuffix(code, "\n") {
		code += "\n"
	}
	return code + content[i:]
}
