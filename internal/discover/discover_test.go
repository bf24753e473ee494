package discover

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, root, rel, body string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
}

func relPaths(files []FileInfo) map[string]Kind {
	out := map[string]Kind{}
	for _, f := range files {
		out[f.RelPath] = f.Kind
	}
	return out
}

func TestDiscoverBasic(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "wolf-sheep.nlogo", "to go end\n")
	write(t, dir, "lib/util.nls", "to helper end\n")
	write(t, dir, "README.md", "# readme\n")
	write(t, dir, ".git/hooks/x.nls", "")

	files, err := Discover(context.Background(), dir, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]Kind{
		"wolf-sheep.nlogo": KindModel,
		"lib/util.nls":     KindSource,
	}, relPaths(files))
	for _, f := range files {
		assert.True(t, filepath.IsAbs(f.Path), f.Path)
	}
}

func TestDiscoverIgnore(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "a.nls", "")
	write(t, dir, "generated/b.nls", "")
	write(t, dir, "models/old/c.nlogo", "")
	write(t, dir, "models/d.nlogo", "")
	write(t, dir, IgnoreFileName, "# comment\nmodels/old/**\n")

	files, err := Discover(context.Background(), dir, &Options{Ignore: []string{"generated"}})
	require.NoError(t, err)
	assert.Equal(t, map[string]Kind{"a.nls": KindSource, "models/d.nlogo": KindModel}, relPaths(files))
}

func TestDiscoverCancellation(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "a.nls", "")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Discover(ctx, dir, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

const modelFile = `globals [ tick-count ]
to go end
@#$#@#$#@
GRAPHICS-WINDOW
210
10
647
448
-1
-1
13.0
1
10

SLIDER
20
95
190
128
number-of-sheep
number-of-sheep
0
250
100.0
1
1
NIL
HORIZONTAL

SWITCH
40
140
180
173
show-energy?
show-energy?
1
1
-1000

CHOOSER
10
200
160
245
model-version
model-version
"sheep-wolves" "sheep-wolves-grass"
1

INPUTBOX
5
260
160
320
Fish-Size
1.0
1
0
Number

BUTTON
10
10
80
43
NIL
setup
NIL
1
T
OBSERVER
NIL
NIL
NIL
NIL
1

@#$#@#$#@
## WHAT IS IT?
`

func TestParseModel(t *testing.T) {
	src := Parse(FileInfo{RelPath: "m.nlogo", Kind: KindModel}, modelFile)
	assert.Equal(t, "globals [ tick-count ]\nto go end\n", src.Code)
	assert.Equal(t, []string{"number-of-sheep", "show-energy?", "model-version", "fish-size"}, src.WidgetGlobals)

	plain := Parse(FileInfo{RelPath: "u.nls", Kind: KindSource}, modelFile)
	assert.Equal(t, modelFile, plain.Code)
	assert.Empty(t, plain.WidgetGlobals)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "m.nlogo", modelFile)
	files, err := Discover(context.Background(), dir, nil)
	require.NoError(t, err)
	require.Len(t, files, 1)

	src, err := Load(files[0])
	require.NoError(t, err)
	assert.Contains(t, src.WidgetGlobals, "number-of-sheep")

	_, err = Load(FileInfo{Path: filepath.Join(dir, "gone.nls"), RelPath: "gone.nls"})
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestWithCode(t *testing.T) {
	out := WithCode(KindModel, modelFile, "to go\nend")
	assert.True(t, strings.HasPrefix(out, "to go\nend\n"+SectionSeparator))
	assert.Equal(t, "to go\nend\n", Parse(FileInfo{Kind: KindModel}, out).Code)
	assert.Len(t, strings.Split(out, SectionSeparator), len(strings.Split(modelFile, SectionSeparator)))

	assert.Equal(t, "fd 1", WithCode(KindSource, "rt 1", "fd 1"))
	assert.Equal(t, "fd 1", WithCode(KindModel, "no sections", "fd 1"))
}

func TestIgnoredAndPatterns(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, IgnoreFileName, "# comment\nold/**\n")
	patterns := Patterns(dir, &Options{Ignore: []string{"*.bak.nls"}})
	assert.Equal(t, []string{"*.bak.nls", "old/**"}, patterns)
	assert.True(t, Ignored("old/a.nls", patterns))
	assert.True(t, Ignored("lib/x.bak.nls", patterns))
	assert.False(t, Ignored("lib/x.nls", patterns))
	assert.True(t, SkipDir(".git"))
}
