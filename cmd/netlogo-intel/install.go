package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

const mcpServerKey = "netlogo-intel"

// installConfig holds settings for the install command.
type installConfig struct {
	dryRun    bool
	uninstall bool
	out       io.Writer
}

// editorTarget is an MCP client configured through a JSON file with an
// "mcpServers" object.
type editorTarget struct {
	name string
	path string
}

func installCmd() *cobra.Command {
	var configFiles []string
	cfg := installConfig{}
	cmd := &cobra.Command{
		Use:   "install",
		Short: "Register the MCP server with Cursor and Windsurf",
		Long: `Register "netlogo-intel serve" in the MCP configuration of Cursor and
Windsurf, or of the JSON files given with --config-file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.out = cmd.OutOrStdout()
			binaryPath, err := detectBinaryPath()
			if err != nil {
				return err
			}
			targets := []editorTarget{
				{name: "Cursor", path: cursorConfigPath()},
				{name: "Windsurf", path: windsurfConfigPath()},
			}
			if len(configFiles) > 0 {
				targets = targets[:0]
				for _, p := range configFiles {
					targets = append(targets, editorTarget{name: filepath.Base(p), path: p})
				}
			}
			for _, t := range targets {
				if cfg.uninstall {
					err = removeEditorMCP(t, cfg)
				} else {
					err = installEditorMCP(binaryPath, t, cfg)
				}
				if err != nil {
					return fmt.Errorf("%s: %w", t.name, err)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&cfg.dryRun, "dry-run", false, "Print what would change without writing")
	cmd.Flags().BoolVar(&cfg.uninstall, "uninstall", false, "Remove the server entry instead")
	cmd.Flags().StringSliceVar(&configFiles, "config-file", nil, "MCP config file to update instead of the editor defaults")
	return cmd
}

func detectBinaryPath() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("detect binary: %w", err)
	}
	resolved, err := filepath.EvalSymlinks(exe)
	if err != nil {
		return "", fmt.Errorf("resolve symlink: %w", err)
	}
	return resolved, nil
}

func cursorConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".cursor", "mcp.json")
}

func windsurfConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".codeium", "windsurf", "mcp_config.json")
}

// readMCPConfig returns the parsed file, or an empty object when the file is
// missing or not valid JSON.
func readMCPConfig(path string) (root, servers map[string]any, exists bool) {
	root = make(map[string]any)
	if data, err := os.ReadFile(path); err == nil {
		exists = true
		if json.Unmarshal(data, &root) != nil {
			root = make(map[string]any)
		}
	}
	servers, ok := root["mcpServers"].(map[string]any)
	if !ok {
		servers = make(map[string]any)
	}
	return root, servers, exists
}

func writeMCPConfig(path string, root map[string]any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("mkdir %s: %w", filepath.Dir(path), err)
	}
	out, err := json.MarshalIndent(root, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}
	return os.WriteFile(path, append(out, '\n'), 0o600)
}

func installEditorMCP(binaryPath string, t editorTarget, cfg installConfig) error {
	if t.path == "" {
		return nil
	}
	fmt.Fprintf(cfg.out, "[%s] MCP config: %s\n", t.name, t.path)
	if cfg.dryRun {
		fmt.Fprintf(cfg.out, "  [dry-run] Would upsert %s in %s\n", mcpServerKey, t.path)
		return nil
	}

	root, servers, _ := readMCPConfig(t.path)
	servers[mcpServerKey] = map[string]any{
		"command": binaryPath,
		"args":    []string{"serve"},
	}
	root["mcpServers"] = servers
	if err := writeMCPConfig(t.path, root); err != nil {
		return err
	}
	fmt.Fprintf(cfg.out, "  MCP server registered in %s\n", t.path)
	return nil
}

func removeEditorMCP(t editorTarget, cfg installConfig) error {
	if t.path == "" {
		return nil
	}
	root, servers, exists := readMCPConfig(t.path)
	if !exists {
		return nil
	}
	if _, ok := servers[mcpServerKey]; !ok {
		return nil
	}
	fmt.Fprintf(cfg.out, "[%s] MCP config: %s\n", t.name, t.path)
	if cfg.dryRun {
		fmt.Fprintf(cfg.out, "  [dry-run] Would remove %s from %s\n", mcpServerKey, t.path)
		return nil
	}

	delete(servers, mcpServerKey)
	root["mcpServers"] = servers
	if err := writeMCPConfig(t.path, root); err != nil {
		return err
	}
	fmt.Fprintf(cfg.out, "  Removed %s from %s\n", mcpServerKey, t.path)
	return nil
}
