package tools

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DeusData/netlogo-intel/internal/store"
)

type handler func(context.Context, *mcp.CallToolRequest) (*mcp.CallToolResult, error)

func call(t *testing.T, h handler, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	raw, err := json.Marshal(args)
	require.NoError(t, err)
	res, err := h(context.Background(), &mcp.CallToolRequest{Params: &mcp.CallToolParamsRaw{Arguments: raw}})
	require.NoError(t, err)
	require.NotNil(t, res)
	return res
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.Len(t, res.Content, 1)
	tc, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	return tc.Text
}

func decode(t *testing.T, res *mcp.CallToolResult, v any) {
	t.Helper()
	require.False(t, res.IsError, text(t, res))
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), v))
}

type lintResult struct {
	EditorID    string           `json:"editor_id"`
	Diagnostics []diagnosticView `json:"diagnostics"`
}

func TestLintCode(t *testing.T) {
	s := NewServer(Options{})
	var out lintResult
	decode(t, call(t, s.handleLintCode, map[string]any{"code": "to go\n  set missing 1\nend\n"}), &out)

	assert.Equal(t, "main", out.EditorID)
	require.NotEmpty(t, out.Diagnostics)
	d := out.Diagnostics[0]
	assert.Equal(t, "Unrecognized identifier missing", d.Message)
	assert.Equal(t, 2, d.Line)
	assert.Equal(t, 7, d.Column)

	res := call(t, s.handleLintCode, map[string]any{})
	assert.True(t, res.IsError)
	res = call(t, s.handleLintCode, map[string]any{"code": "", "mode": "bogus"})
	assert.True(t, res.IsError)
}

func TestLintCodeSeesOtherDocuments(t *testing.T) {
	s := NewServer(Options{})
	call(t, s.handleLintCode, map[string]any{"editor_id": "decls", "code": "globals [ score ]\n"})

	var out lintResult
	decode(t, call(t, s.handleLintCode, map[string]any{"code": "to go\n  set score 1\nend\n"}), &out)
	assert.Empty(t, out.Diagnostics)

	call(t, s.handleCloseDocument, map[string]any{"editor_id": "decls"})
	decode(t, call(t, s.handleLintCode, map[string]any{"code": "to go\n  set score 1\nend\n"}), &out)
	assert.NotEmpty(t, out.Diagnostics)
}

func TestLintCodeWidgetGlobals(t *testing.T) {
	s := NewServer(Options{})
	var out lintResult
	decode(t, call(t, s.handleLintCode, map[string]any{
		"code":           "to go\n  fd speed\nend\n",
		"widget_globals": []string{"speed"},
	}), &out)
	assert.Empty(t, out.Diagnostics)
}

func TestApplyFix(t *testing.T) {
	s := NewServer(Options{})
	var out lintResult
	decode(t, call(t, s.handleLintCode, map[string]any{"code": "to setup\n  create-wolves 1\nend\n"}), &out)

	idx := -1
	for i, d := range out.Diagnostics {
		if len(d.Fixes) > 0 {
			idx = i
			break
		}
	}
	require.GreaterOrEqual(t, idx, 0, "expected a diagnostic with a fix")

	var fixed struct {
		Code string `json:"code"`
	}
	decode(t, call(t, s.handleApplyFix, map[string]any{"diagnostic": idx}), &fixed)
	assert.Contains(t, fixed.Code, "breed [ wolves ")

	res := call(t, s.handleApplyFix, map[string]any{"diagnostic": 99})
	assert.True(t, res.IsError)
}

func TestReportErrors(t *testing.T) {
	s := NewServer(Options{})
	call(t, s.handleLintCode, map[string]any{"code": "to go\nend\n"})
	res := call(t, s.handleReportErrors, map[string]any{
		"kind":   "runtime",
		"errors": []map[string]any{{"message": "division by zero", "start": 0, "end": 2}},
	})
	require.False(t, res.IsError, text(t, res))

	var out lintResult
	decode(t, call(t, s.handleLintCode, map[string]any{"code": "to go\nend\n"}), &out)
	var messages []string
	for _, d := range out.Diagnostics {
		messages = append(messages, d.Message)
	}
	assert.Contains(t, messages, "division by zero")

	res = call(t, s.handleReportErrors, map[string]any{"kind": "other"})
	assert.True(t, res.IsError)
}

func TestTooltipAndComplete(t *testing.T) {
	s := NewServer(Options{})
	code := "globals [ score ]\nto go\n  show score\nend\n"
	pos := strings.LastIndex(code, "score")

	var tip struct {
		Found bool `json:"found"`
		Info  struct {
			Kind string `json:"kind"`
			Word string `json:"word"`
		} `json:"info"`
	}
	decode(t, call(t, s.handleTooltip, map[string]any{"code": code, "from": pos, "to": pos + 5}), &tip)
	assert.True(t, tip.Found)
	assert.Equal(t, "global", tip.Info.Kind)

	var comp struct {
		Prefix string `json:"prefix"`
		Items  []struct {
			Label string `json:"label"`
		} `json:"items"`
	}
	decode(t, call(t, s.handleComplete, map[string]any{"pos": pos + 2}), &comp)
	assert.Equal(t, "sc", comp.Prefix)
	var labels []string
	for _, it := range comp.Items {
		labels = append(labels, it.Label)
	}
	assert.Contains(t, labels, "score")
}

func TestPrettifyAndDump(t *testing.T) {
	s := NewServer(Options{})
	res := call(t, s.handlePrettify, map[string]any{"code": "to go fd 1 end"})
	require.False(t, res.IsError)
	assert.Equal(t, "to go\n  fd 1\nend", strings.TrimSpace(text(t, res)))

	res = call(t, s.handleDumpTree, map[string]any{"code": "to go fd 1 end"})
	require.False(t, res.IsError)
	assert.Contains(t, text(t, res), `"fd"`)

	res = call(t, s.handleDumpTree, map[string]any{"editor_id": "nope"})
	assert.True(t, res.IsError)
}

func TestFixGeneratedCode(t *testing.T) {
	s := NewServer(Options{})
	res := call(t, s.handleFixGeneratedCode, map[string]any{"source": "fd 1"})
	require.False(t, res.IsError)
	assert.Contains(t, text(t, res), "to play")

	res = call(t, s.handleFixGeneratedCode, map[string]any{"source": "  "})
	assert.True(t, res.IsError)
}

func TestStateAndBreedMatch(t *testing.T) {
	s := NewServer(Options{})
	call(t, s.handleLintCode, map[string]any{"code": "breed [ wolves wolf ]\nwolves-own [ energy ]\n"})

	var st struct {
		Version   uint64   `json:"version"`
		Documents []string `json:"documents"`
		State     struct {
			Breeds map[string]struct {
				Plural    string   `json:"plural"`
				Variables []string `json:"variables"`
			} `json:"breeds"`
		} `json:"state"`
	}
	decode(t, call(t, s.handleGetState, map[string]any{}), &st)
	assert.Equal(t, []string{"main"}, st.Documents)
	assert.Equal(t, "wolves", st.State.Breeds["wolf"].Plural)
	assert.Equal(t, []string{"energy"}, st.State.Breeds["wolf"].Variables)

	var m struct {
		Valid  bool   `json:"valid"`
		Kind   string `json:"kind"`
		Plural string `json:"plural"`
	}
	decode(t, call(t, s.handleBreedMatch, map[string]any{"word": "create-wolves"}), &m)
	assert.True(t, m.Valid)
	assert.Equal(t, "primitive", m.Kind)
	assert.Equal(t, "wolves", m.Plural)
}

func TestLintProjectAndProjects(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.nls"), []byte("to helper\n  set missing 1\nend\n"), 0o600))
	router := store.NewRouter()
	defer router.CloseAll()
	s := NewServer(Options{Router: router})

	var out struct {
		Project string `json:"project"`
		Files   int    `json:"files"`
		Linted  int    `json:"linted"`
		Cached  int    `json:"cached"`
		Errors  int    `json:"errors"`
	}
	decode(t, call(t, s.handleLintProject, map[string]any{"repo_path": dir}), &out)
	assert.Equal(t, 1, out.Files)
	assert.Equal(t, 1, out.Linted)
	assert.Equal(t, 1, out.Errors)

	decode(t, call(t, s.handleLintProject, map[string]any{"repo_path": dir}), &out)
	assert.Equal(t, 1, out.Cached)

	var projects []struct {
		Name  string `json:"name"`
		Files int    `json:"files"`
	}
	decode(t, call(t, s.handleListProjects, map[string]any{}), &projects)
	require.Len(t, projects, 1)
	assert.Equal(t, out.Project, projects[0].Name)
	assert.Equal(t, 1, projects[0].Files)

	res := call(t, s.handleDeleteProject, map[string]any{"project_name": out.Project})
	assert.False(t, res.IsError, text(t, res))
	res = call(t, s.handleDeleteProject, map[string]any{"project_name": out.Project})
	assert.True(t, res.IsError)

	res = call(t, s.handleLintProject, map[string]any{"repo_path": dir, "min_severity": "fatal"})
	assert.True(t, res.IsError)
}
