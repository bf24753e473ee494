package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/DeusData/netlogo-intel/internal/config"
	"github.com/DeusData/netlogo-intel/internal/lint"
	"github.com/DeusData/netlogo-intel/internal/pipeline"
	"github.com/DeusData/netlogo-intel/internal/store"
)

type lintFlags struct {
	noCache bool
	format  string
	failOn  string
}

func lintCmd(g *globalFlags) *cobra.Command {
	f := &lintFlags{}
	cmd := &cobra.Command{
		Use:   "lint [path...]",
		Short: "Lint NetLogo files or project directories",
		Long: `Lint .nlogo, .nlogo3d and .nls files. Directories are searched
recursively and their results cached in the project's cache database.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = []string{"."}
			}
			failOn, err := parseSeverity(f.failOn)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			router := store.NewRouter()
			defer router.CloseAll()

			var reports []*pipeline.Report
			for _, arg := range args {
				r, err := lintPath(ctx, g, f, router, arg)
				if err != nil {
					return err
				}
				reports = append(reports, r)
			}
			if err := writeReports(cmd.OutOrStdout(), f.format, reports); err != nil {
				return err
			}
			if failOn != nil {
				for _, r := range reports {
					if r.Count(*failOn) > 0 {
						return errFindings
					}
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "Do not read or write the lint cache")
	cmd.Flags().StringVar(&f.format, "format", "text", "Output format (text, json)")
	cmd.Flags().StringVar(&f.failOn, "fail-on", "error", "Exit non-zero on diagnostics at least this severe (error, warning, info, none)")
	return cmd
}

// lintPath lints a directory as a project, or a single file against the
// configuration of its directory.
func lintPath(ctx context.Context, g *globalFlags, f *lintFlags, router *store.Router, path string) (*pipeline.Report, error) {
	root, isDir, err := projectRoot(path)
	if err != nil {
		return nil, err
	}
	cfg, err := loadConfig(g, root)
	if err != nil {
		return nil, err
	}
	st, err := cacheStore(router, cfg, root, f.noCache)
	if err != nil {
		return nil, err
	}
	p := pipeline.New(ctx, st, root, cfg)
	if isDir {
		return p.Run()
	}
	res, err := p.LintFile(path)
	if err != nil {
		return nil, err
	}
	return &pipeline.Report{Project: p.ProjectName, Files: []*pipeline.FileResult{res}, Linted: 1}, nil
}

func cacheStore(router *store.Router, cfg *config.Config, root string, disabled bool) (*store.Store, error) {
	if disabled || !cfg.CacheEnabled() {
		return nil, nil
	}
	return router.ForPath(cfg.CachePath(root))
}

func writeReports(w io.Writer, format string, reports []*pipeline.Report) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(reports)
	case "text", "":
		for _, r := range reports {
			for _, f := range r.Files {
				if err := pipeline.WriteDiagnostics(w, filepath.FromSlash(f.RelPath), f.Code, f.Diagnostics); err != nil {
					return err
				}
			}
		}
		return nil
	}
	return fmt.Errorf("unknown format %q", format)
}

// parseSeverity maps a flag value to a severity; "none" yields nil.
func parseSeverity(s string) (*lint.Severity, error) {
	if s == "none" {
		return nil, nil
	}
	var sev lint.Severity
	if err := sev.UnmarshalText([]byte(s)); err != nil {
		return nil, err
	}
	return &sev, nil
}
