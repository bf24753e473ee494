// Command netlogo-intel lints, repairs and formats NetLogo code, and serves
// the same analysis to editors and agents over MCP.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/DeusData/netlogo-intel/internal/config"
)

var version = "dev"

// errFindings makes the process exit non-zero without printing an error;
// the findings were already written.
var errFindings = errors.New("findings reported")

type globalFlags struct {
	configPath string
	logLevel   string
}

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		if !errors.Is(err, errFindings) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	g := &globalFlags{}
	cmd := &cobra.Command{
		Use:   "netlogo-intel",
		Short: "NetLogo source intelligence",
		Long: `netlogo-intel analyses NetLogo models and include files.

It provides:
- Linting with agent context checks and quick fixes
- Repair of machine-generated code and canonical formatting
- An MCP server exposing linting, tooltips and completion`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(g.logLevel)
		},
	}
	cmd.PersistentFlags().StringVarP(&g.configPath, "config", "c", "", "Config file path (YAML); default is "+config.FileName+" in the project root")
	cmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		serveCmd(g),
		lintCmd(g),
		fixCmd(g),
		prettifyCmd(g),
		watchCmd(g),
		installCmd(),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "netlogo-intel %s\n", version)
			},
		},
	)
	return cmd
}

// setupLogging installs a text handler on stderr; stdout carries results
// and, for serve, the MCP stream.
func setupLogging(logLevel string) {
	level := slog.LevelWarn
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "error":
		level = slog.LevelError
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// loadConfig reads --config when given, else the config file of root.
func loadConfig(g *globalFlags, root string) (*config.Config, error) {
	if g.configPath != "" {
		cfg, err := config.Load(g.configPath)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		return cfg, nil
	}
	cfg, err := config.LoadDir(root)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// projectRoot resolves a path argument to a directory: the path itself, or
// the directory holding a file.
func projectRoot(path string) (string, bool, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", false, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", false, err
	}
	if info.IsDir() {
		return abs, true, nil
	}
	return filepath.Dir(abs), false, nil
}
