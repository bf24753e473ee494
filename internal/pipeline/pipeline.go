// Package pipeline lints every NetLogo file of a project, reusing cached
// results for files whose content and analysis settings are unchanged.
package pipeline

import (
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/zeebo/xxh3"
	"golang.org/x/sync/errgroup"

	"github.com/DeusData/netlogo-intel/internal/config"
	"github.com/DeusData/netlogo-intel/internal/discover"
	"github.com/DeusData/netlogo-intel/internal/editor"
	"github.com/DeusData/netlogo-intel/internal/lint"
	"github.com/DeusData/netlogo-intel/internal/metrics"
	"github.com/DeusData/netlogo-intel/internal/primitives"
	"github.com/DeusData/netlogo-intel/internal/store"
	"github.com/DeusData/netlogo-intel/internal/syntax"
)

// analysisVersion is folded into every context hash; bump it when linter
// output changes so stale cache entries stop matching.
const analysisVersion = "1"

// Pipeline lints the files of one project.
type Pipeline struct {
	ctx         context.Context
	Store       *store.Store // nil disables the cache
	RepoPath    string
	ProjectName string

	cfg *config.Config
	cat *primitives.Catalog
}

// FileResult is the outcome for one file.
type FileResult struct {
	RelPath     string            `json:"path"`
	Kind        discover.Kind     `json:"kind"`
	Code        string            `json:"-"`
	Diagnostics []lint.Diagnostic `json:"diagnostics"`
	Cached      bool              `json:"cached"`
}

// Report summarises one run.
type Report struct {
	Project string        `json:"project"`
	Files   []*FileResult `json:"files"`
	Linted  int           `json:"linted"`
	Cached  int           `json:"cached"`
	Pruned  int           `json:"pruned"`
}

// Count returns the number of diagnostics at least as severe as sev.
func (r *Report) Count(sev lint.Severity) int {
	n := 0
	for _, f := range r.Files {
		for _, d := range f.Diagnostics {
			if d.Severity <= sev {
				n++
			}
		}
	}
	return n
}

// New creates a pipeline. A nil cfg means the defaults.
func New(ctx context.Context, s *store.Store, repoPath string, cfg *config.Config) *Pipeline {
	if cfg == nil {
		cfg = config.Default()
	}
	if abs, err := filepath.Abs(repoPath); err == nil {
		repoPath = abs
	}
	return &Pipeline{
		ctx:         ctx,
		Store:       s,
		RepoPath:    repoPath,
		ProjectName: ProjectNameFromPath(repoPath),
		cfg:         cfg,
		cat:         cfg.Catalog(),
	}
}

// ProjectNameFromPath derives a unique project name from an absolute path
// by replacing path separators with dashes and trimming the leading dash.
func ProjectNameFromPath(absPath string) string {
	cleaned := filepath.ToSlash(filepath.Clean(absPath))
	name := strings.ReplaceAll(cleaned, "/", "-")
	name = strings.TrimLeft(name, "-")
	if name == "" {
		return "root"
	}
	return name
}

// Run discovers and lints the project. Files are linted concurrently, one
// file per goroutine; cache writes happen in a single transaction afterwards.
func (p *Pipeline) Run() (*Report, error) {
	start := time.Now()
	defer metrics.Since("project", start)
	slog.Info("pipeline.start", "project", p.ProjectName, "path", p.RepoPath)

	files, err := discover.Discover(p.ctx, p.RepoPath, &discover.Options{Ignore: p.cfg.Ignore})
	if err != nil {
		return nil, fmt.Errorf("discover: %w", err)
	}
	slog.Info("pipeline.discovered", "files", len(files))

	results := make([]*FileResult, len(files))
	hashes := make([][2]string, len(files))

	g, ctx := errgroup.WithContext(p.ctx)
	g.SetLimit(runtime.NumCPU())
	for i, f := range files {
		g.Go(func() error {
			src, err := discover.Load(f)
			if err != nil {
				slog.Warn("pipeline.read", "path", f.RelPath, "err", err)
				return nil
			}
			res, fileHash, ctxHash, err := p.lintSource(ctx, src)
			if err != nil {
				return err
			}
			results[i], hashes[i] = res, [2]string{fileHash, ctxHash}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &Report{Project: p.ProjectName}
	for _, r := range results {
		if r == nil {
			continue
		}
		report.Files = append(report.Files, r)
		if r.Cached {
			report.Cached++
		} else {
			report.Linted++
		}
	}
	if p.Store != nil {
		if report.Pruned, err = p.save(results, hashes); err != nil {
			return nil, err
		}
	}
	slog.Info("pipeline.done", "files", len(report.Files), "linted", report.Linted,
		"cached", report.Cached, "errors", report.Count(lint.SeverityError), "elapsed", time.Since(start))
	return report, nil
}

// lintSource lints one file, consulting the cache first.
func (p *Pipeline) lintSource(ctx context.Context, src *discover.Source) (*FileResult, string, string, error) {
	fileHash := Hash(src.Code)
	widgets := append(append([]string(nil), p.cfg.WidgetGlobals...), src.WidgetGlobals...)
	mode := p.modeOf(src.Kind)
	ctxHash := p.contextHash(mode, widgets)

	res := &FileResult{RelPath: src.RelPath, Kind: src.Kind, Code: src.Code}
	if p.Store != nil {
		if diags, ok := p.Store.Lookup(p.ProjectName, src.RelPath, fileHash, ctxHash); ok {
			res.Diagnostics, res.Cached = diags, true
			return res, fileHash, ctxHash, nil
		}
	}
	diags, err := p.lint(ctx, src.RelPath, src.Code, mode, widgets)
	if err != nil {
		return nil, "", "", err
	}
	res.Diagnostics = diags
	return res, fileHash, ctxHash, nil
}

func (p *Pipeline) lint(ctx context.Context, id, code string, mode syntax.Mode, widgets []string) ([]lint.Diagnostic, error) {
	ws := editor.New(editor.Options{Catalog: p.cat, Repair: p.cfg.RepairOptions(p.cat)})
	ws.Open(id, mode, code)
	if len(widgets) > 0 {
		ws.SetWidgetVariables(widgets)
	}
	diags, err := ws.Diagnostics(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("lint %s: %w", id, err)
	}
	return diags, nil
}

// LintFile lints a single file outside of a project run. The cache is
// consulted and updated when the pipeline has a store.
func (p *Pipeline) LintFile(path string) (*FileResult, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	kind, ok := discover.KindOf(abs)
	if !ok {
		kind = discover.KindSource
	}
	rel, err := filepath.Rel(p.RepoPath, abs)
	if err != nil || strings.HasPrefix(rel, "..") {
		rel = filepath.Base(abs)
	}
	src, err := discover.Load(discover.FileInfo{Path: abs, RelPath: filepath.ToSlash(rel), Kind: kind})
	if err != nil {
		return nil, err
	}
	res, fileHash, ctxHash, err := p.lintSource(p.ctx, src)
	if err != nil {
		return nil, err
	}
	if p.Store != nil && !res.Cached {
		if err := p.Store.UpsertProject(p.ProjectName, p.RepoPath); err != nil {
			return nil, fmt.Errorf("upsert project: %w", err)
		}
		if err := p.Store.PutResult(p.ProjectName, &store.Result{
			RelPath: res.RelPath, Hash: fileHash, Context: ctxHash, Diagnostics: res.Diagnostics,
		}); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// save writes fresh results and drops entries of files that disappeared.
func (p *Pipeline) save(results []*FileResult, hashes [][2]string) (int, error) {
	pruned := 0
	err := p.Store.WithTransaction(func(tx *store.Store) error {
		if err := tx.UpsertProject(p.ProjectName, p.RepoPath); err != nil {
			return fmt.Errorf("upsert project: %w", err)
		}
		var keep []string
		for i, r := range results {
			if r == nil {
				continue
			}
			keep = append(keep, r.RelPath)
			if r.Cached {
				continue
			}
			if err := tx.PutResult(p.ProjectName, &store.Result{
				RelPath: r.RelPath, Hash: hashes[i][0], Context: hashes[i][1], Diagnostics: r.Diagnostics,
			}); err != nil {
				return err
			}
		}
		var err error
		pruned, err = tx.Prune(p.ProjectName, keep)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("save results: %w", err)
	}
	return pruned, nil
}

func (p *Pipeline) modeOf(kind discover.Kind) syntax.Mode {
	if kind == discover.KindModel {
		return syntax.Model
	}
	return p.cfg.ParseMode()
}

// contextHash fingerprints everything besides the file's own text that
// affects its diagnostics.
func (p *Pipeline) contextHash(mode syntax.Mode, widgets []string) string {
	w := append([]string(nil), widgets...)
	sort.Strings(w)
	u := append([]string(nil), p.cfg.UnsupportedPrimitives...)
	sort.Strings(u)
	return Hash(strings.Join([]string{
		analysisVersion, mode.String(), strings.Join(w, ","), strings.Join(u, ","),
	}, "\x00"))
}

// Hash returns the hex xxh3 digest of s.
func Hash(s string) string {
	sum := xxh3.HashString128(s).Bytes()
	return hex.EncodeToString(sum[:])
}
