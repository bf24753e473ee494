package tools

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/DeusData/netlogo-intel/internal/config"
	"github.com/DeusData/netlogo-intel/internal/lint"
	"github.com/DeusData/netlogo-intel/internal/pipeline"
	"github.com/DeusData/netlogo-intel/internal/store"
)

func (s *Server) handleLintProject(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := parseArgs(req)
	if err != nil {
		return errResult(err.Error()), nil
	}

	repoPath := getStringArg(args, "repo_path")
	if repoPath == "" {
		return errResult("repo_path is required"), nil
	}
	minSev, err := severityArg(args, "min_severity")
	if err != nil {
		return errResult(err.Error()), nil
	}

	absPath, err := filepath.Abs(repoPath)
	if err != nil {
		return errResult(fmt.Sprintf("invalid path: %v", err)), nil
	}
	cfg, err := config.LoadDir(absPath)
	if err != nil {
		return errResult(err.Error()), nil
	}

	s.lintMu.Lock()
	defer s.lintMu.Unlock()

	var st *store.Store
	if s.router != nil && cfg.CacheEnabled() {
		if st, err = s.router.ForPath(cfg.CachePath(absPath)); err != nil {
			return errResult(err.Error()), nil
		}
	}
	report, err := pipeline.New(ctx, st, absPath, cfg).Run()
	if err != nil {
		return errResult(fmt.Sprintf("lint failed: %v", err)), nil
	}

	type fileView struct {
		Path        string           `json:"path"`
		Cached      bool             `json:"cached"`
		Diagnostics []diagnosticView `json:"diagnostics"`
	}
	files := make([]fileView, 0, len(report.Files))
	for _, f := range report.Files {
		diags := viewDiagnostics(f.Code, f.Diagnostics, minSev)
		if len(diags) == 0 {
			continue
		}
		files = append(files, fileView{Path: f.RelPath, Cached: f.Cached, Diagnostics: diags})
	}
	return jsonResult(map[string]any{
		"project":  report.Project,
		"files":    len(report.Files),
		"linted":   report.Linted,
		"cached":   report.Cached,
		"pruned":   report.Pruned,
		"errors":   report.Count(lint.SeverityError),
		"warnings": report.Count(lint.SeverityWarning) - report.Count(lint.SeverityError),
		"results":  files,
	}), nil
}

func (s *Server) handleListProjects(_ context.Context, _ *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	type projectInfo struct {
		Name      string `json:"name"`
		RootPath  string `json:"root_path"`
		IndexedAt string `json:"indexed_at"`
		Files     int    `json:"files"`
		Cache     string `json:"cache"`
	}

	result := []projectInfo{}
	if s.router == nil {
		return jsonResult(result), nil
	}
	for _, st := range s.router.All() {
		projects, err := st.ListProjects()
		if err != nil {
			return errResult(fmt.Sprintf("list projects: %v", err)), nil
		}
		for _, p := range projects {
			hashes, _ := st.FileHashes(p.Name)
			result = append(result, projectInfo{
				Name:      p.Name,
				RootPath:  p.RootPath,
				IndexedAt: p.IndexedAt,
				Files:     len(hashes),
				Cache:     st.Path(),
			})
		}
	}
	return jsonResult(result), nil
}

func (s *Server) handleDeleteProject(_ context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := parseArgs(req)
	if err != nil {
		return errResult(err.Error()), nil
	}

	name := getStringArg(args, "project_name")
	if name == "" {
		return errResult("project_name is required"), nil
	}
	if s.router == nil {
		return errResult(fmt.Sprintf("project not found: %s", name)), nil
	}

	s.lintMu.Lock()
	defer s.lintMu.Unlock()
	for _, st := range s.router.All() {
		if _, err := st.GetProject(name); err != nil {
			continue
		}
		if err := st.DeleteProject(name); err != nil {
			return errResult(fmt.Sprintf("delete failed: %v", err)), nil
		}
		return jsonResult(map[string]any{
			"deleted": name,
			"status":  "ok",
		}), nil
	}
	return errResult(fmt.Sprintf("project not found: %s", name)), nil
}
