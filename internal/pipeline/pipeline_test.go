package pipeline

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DeusData/netlogo-intel/internal/config"
	"github.com/DeusData/netlogo-intel/internal/lint"
	"github.com/DeusData/netlogo-intel/internal/store"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

const cleanModel = `globals [ score ]
to go
  set score score + 1
  fd speed
end
@#$#@#$#@
SLIDER
20
95
190
128
speed
speed
0
10
1.0
1
1
NIL
HORIZONTAL

@#$#@#$#@
`

func setupProject(t *testing.T) string {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "model.nlogo"), cleanModel)
	writeFile(t, filepath.Join(dir, "lib", "broken.nls"), "to helper\n  set missing 1\nend\n")
	return dir
}

func byPath(r *Report) map[string]*FileResult {
	out := map[string]*FileResult{}
	for _, f := range r.Files {
		out[f.RelPath] = f
	}
	return out
}

func messages(f *FileResult) []string {
	var out []string
	for _, d := range f.Diagnostics {
		out = append(out, d.Message())
	}
	return out
}

func TestRunLintsProject(t *testing.T) {
	dir := setupProject(t)
	report, err := New(context.Background(), nil, dir, nil).Run()
	require.NoError(t, err)

	files := byPath(report)
	require.Len(t, files, 2)
	assert.Empty(t, files["model.nlogo"].Diagnostics, "widget globals come from the interface section")

	broken := files["lib/broken.nls"].Diagnostics
	require.NotEmpty(t, broken)
	assert.Equal(t, lint.KeyUnrecognizedIdentifier, broken[0].Key)
	assert.Equal(t, []string{"missing"}, broken[0].Args)
	assert.Equal(t, 2, report.Linted)
	assert.GreaterOrEqual(t, report.Count(lint.SeverityError), 1)
}

func TestRunReusesCache(t *testing.T) {
	dir := setupProject(t)
	s, err := store.OpenMemory()
	require.NoError(t, err)
	defer s.Close()

	first, err := New(context.Background(), s, dir, nil).Run()
	require.NoError(t, err)
	assert.Equal(t, 2, first.Linted)

	second, err := New(context.Background(), s, dir, nil).Run()
	require.NoError(t, err)
	assert.Equal(t, 0, second.Linted)
	assert.Equal(t, 2, second.Cached)
	assert.Equal(t, messages(byPath(first)["lib/broken.nls"]), messages(byPath(second)["lib/broken.nls"]))

	writeFile(t, filepath.Join(dir, "lib", "broken.nls"), "to helper\nend\n")
	third, err := New(context.Background(), s, dir, nil).Run()
	require.NoError(t, err)
	assert.Equal(t, 1, third.Linted)
	assert.Empty(t, byPath(third)["lib/broken.nls"].Diagnostics)

	cfg := config.Default()
	cfg.UnsupportedPrimitives = []string{"fd"}
	fourth, err := New(context.Background(), s, dir, cfg).Run()
	require.NoError(t, err)
	assert.Equal(t, 2, fourth.Linted, "a settings change invalidates every entry")
}

func TestRunPrunesDeletedFiles(t *testing.T) {
	dir := setupProject(t)
	s, err := store.OpenMemory()
	require.NoError(t, err)
	defer s.Close()

	_, err = New(context.Background(), s, dir, nil).Run()
	require.NoError(t, err)
	require.NoError(t, os.Remove(filepath.Join(dir, "lib", "broken.nls")))

	report, err := New(context.Background(), s, dir, nil).Run()
	require.NoError(t, err)
	assert.Equal(t, 1, report.Pruned)

	hashes, err := s.FileHashes(ProjectNameFromPath(dir))
	require.NoError(t, err)
	assert.Len(t, hashes, 1)
}

func TestRunHonoursIgnore(t *testing.T) {
	dir := setupProject(t)
	cfg := config.Default()
	cfg.Ignore = []string{"lib/**"}
	report, err := New(context.Background(), nil, dir, cfg).Run()
	require.NoError(t, err)
	assert.Len(t, report.Files, 1)
}

func TestRunCancelled(t *testing.T) {
	dir := setupProject(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(ctx, nil, dir, nil).Run()
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLintFileAndRender(t *testing.T) {
	dir := setupProject(t)
	p := New(context.Background(), nil, dir, nil)
	res, err := p.LintFile(filepath.Join(dir, "lib", "broken.nls"))
	require.NoError(t, err)
	assert.Equal(t, "lib/broken.nls", res.RelPath)

	var buf bytes.Buffer
	require.NoError(t, WriteDiagnostics(&buf, "broken.nls", res.Code, res.Diagnostics))
	assert.True(t, strings.HasPrefix(buf.String(), "broken.nls:2:7: error: Unrecognized identifier missing"), buf.String())
}

func TestProjectNameFromPath(t *testing.T) {
	assert.Equal(t, "home-user-models", ProjectNameFromPath("/home/user/models"))
	assert.Equal(t, "root", ProjectNameFromPath("/"))
}
