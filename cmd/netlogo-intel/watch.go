package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/DeusData/netlogo-intel/internal/pipeline"
	"github.com/DeusData/netlogo-intel/internal/store"
	"github.com/DeusData/netlogo-intel/internal/watcher"
)

func watchCmd(g *globalFlags) *cobra.Command {
	var debounce time.Duration
	var noCache bool
	cmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "Lint a project, then re-lint files as they change",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			root, _, err := projectRoot(dir)
			if err != nil {
				return err
			}
			cfg, err := loadConfig(g, root)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			router := store.NewRouter()
			defer router.CloseAll()
			st, err := cacheStore(router, cfg, root, noCache)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			p := pipeline.New(ctx, st, root, cfg)
			report, err := p.Run()
			if err != nil {
				return err
			}
			if err := writeReports(out, "text", []*pipeline.Report{report}); err != nil {
				return err
			}

			w, err := watcher.New(root, watcher.Options{Debounce: debounce, Ignore: cfg.Ignore},
				func(ctx context.Context, changed, removed []string) error {
					for _, path := range changed {
						res, err := p.LintFile(path)
						if err != nil {
							slog.Warn("watch.lint", "path", path, "err", err)
							continue
						}
						if err := pipeline.WriteDiagnostics(out, filepath.FromSlash(res.RelPath), res.Code, res.Diagnostics); err != nil {
							return err
						}
					}
					if st == nil {
						return nil
					}
					for _, path := range removed {
						rel, err := filepath.Rel(root, path)
						if err != nil {
							continue
						}
						if err := st.DeleteResult(p.ProjectName, filepath.ToSlash(rel)); err != nil {
							slog.Warn("watch.prune", "path", rel, "err", err)
						}
					}
					return nil
				})
			if err != nil {
				return err
			}
			return w.Run(ctx)
		},
	}
	cmd.Flags().DurationVar(&debounce, "debounce", watcher.DefaultDebounce, "Wait this long for more changes before re-linting")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Do not read or write the lint cache")
	return cmd
}
