package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DeusData/netlogo-intel/internal/repair"
	"github.com/DeusData/netlogo-intel/internal/syntax"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, syntax.Model, cfg.ParseMode())
	assert.True(t, cfg.CacheEnabled())
	assert.Equal(t, filepath.Join("/proj", DefaultCacheDir, "lint.db"), cfg.CachePath("/proj"))

	opts := cfg.RepairOptions(cfg.Catalog())
	assert.Equal(t, repair.DefaultWrapperName, opts.WrapperName)
	assert.True(t, opts.DropDelegatingProcedures)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr error
	}{
		{name: "default", modify: func(*Config) {}},
		{name: "embedded mode", modify: func(c *Config) { c.Mode = "embedded" }},
		{name: "unknown mode", modify: func(c *Config) { c.Mode = "script" }, wantErr: ErrInvalidMode},
		{name: "bad glob", modify: func(c *Config) { c.Ignore = []string{"models/[a-"} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.name == "bad glob":
				assert.Error(t, err)
			default:
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadDir(dir)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	body := `mode: embedded
widget_globals: [speed, population]
unsupported_primitives: [movie-start]
ignore: ["vendor/**"]
repair:
  drop_delegating_procedures: false
cache:
  enabled: false
  dir: /tmp/cache
metrics:
  addr: ":9464"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(body), 0o644))
	cfg, err = LoadDir(dir)
	require.NoError(t, err)

	assert.Equal(t, syntax.Embedded, cfg.ParseMode())
	assert.Equal(t, []string{"speed", "population"}, cfg.WidgetGlobals)
	assert.Equal(t, []string{"vendor/**"}, cfg.Ignore)
	assert.Equal(t, ":9464", cfg.Metrics.Addr)
	assert.False(t, cfg.CacheEnabled())
	assert.Equal(t, "/tmp/cache/lint.db", cfg.CachePath(dir))
	assert.True(t, cfg.Catalog().IsUnsupported("movie-start"))

	opts := cfg.RepairOptions(cfg.Catalog())
	assert.Equal(t, repair.DefaultWrapperName, opts.WrapperName, "unset fields keep defaults")
	assert.False(t, opts.DropDelegatingProcedures)
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)

	require.NoError(t, os.WriteFile(path, []byte("mode: [unterminated"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte("mode: script\n"), 0o644))
	_, err = LoadDir(dir)
	assert.ErrorIs(t, err, ErrInvalidMode)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
