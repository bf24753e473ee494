package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/DeusData/netlogo-intel/internal/metrics"
	"github.com/DeusData/netlogo-intel/internal/store"
	"github.com/DeusData/netlogo-intel/internal/tools"
)

func serveCmd(g *globalFlags) *cobra.Command {
	var root, metricsAddr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server on stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _, err := projectRoot(root)
			if err != nil {
				return err
			}
			cfg, err := loadConfig(g, dir)
			if err != nil {
				return err
			}
			if metricsAddr == "" {
				metricsAddr = cfg.Metrics.Addr
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if metricsAddr != "" {
				go func() {
					if err := metrics.Serve(ctx, metricsAddr); err != nil {
						slog.Error("metrics.serve", "err", err)
					}
				}()
			}

			router := store.NewRouter()
			defer router.CloseAll()
			srv := tools.NewServer(tools.Options{Config: cfg, Router: router, Version: version})
			slog.Info("serve.start", "root", dir, "version", version)
			return srv.MCPServer().Run(ctx, &mcp.StdioTransport{})
		},
	}
	cmd.Flags().StringVar(&root, "root", ".", "Project root used to find the config file")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9464)")
	return cmd
}
