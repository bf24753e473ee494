package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/DeusData/netlogo-intel/internal/config"
	"github.com/DeusData/netlogo-intel/internal/discover"
	"github.com/DeusData/netlogo-intel/internal/editor"
	"github.com/DeusData/netlogo-intel/internal/syntax"
)

// codeFile is the code of one file given on the command line, or of stdin
// for "-".
type codeFile struct {
	path    string
	kind    discover.Kind
	content string
	code    string
}

func readCodeFile(path string, in io.Reader) (*codeFile, error) {
	if path == "-" {
		data, err := io.ReadAll(in)
		if err != nil {
			return nil, err
		}
		return &codeFile{path: path, kind: discover.KindSource, content: string(data), code: string(data)}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	kind, ok := discover.KindOf(path)
	if !ok {
		kind = discover.KindSource
	}
	src := discover.Parse(discover.FileInfo{Path: path, Kind: kind}, string(data))
	return &codeFile{path: path, kind: kind, content: string(data), code: src.Code}, nil
}

func (f *codeFile) mode(cfg *config.Config) syntax.Mode {
	if f.kind == discover.KindModel {
		return syntax.Model
	}
	return cfg.ParseMode()
}

// output prints the new code, or writes it back in place of the old.
func (f *codeFile) output(w io.Writer, code string, write bool) error {
	if !write || f.path == "-" {
		_, err := fmt.Fprint(w, code)
		return err
	}
	content := discover.WithCode(f.kind, f.content, code)
	if content == f.content {
		return nil
	}
	info, err := os.Stat(f.path)
	if err != nil {
		return err
	}
	return os.WriteFile(f.path, []byte(content), info.Mode().Perm())
}

func newWorkspace(cfg *config.Config) *editor.Workspace {
	cat := cfg.Catalog()
	return editor.New(editor.Options{Catalog: cat, Repair: cfg.RepairOptions(cat)})
}

func fixCmd(g *globalFlags) *cobra.Command {
	var write bool
	cmd := &cobra.Command{
		Use:   "fix <file|->",
		Short: "Repair machine-generated NetLogo code",
		Long: `Repair generated code: loose statements are wrapped in a procedure,
declarations are hoisted and deduplicated, and the result is laid out
canonically. Reads stdin for "-".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := readCodeFile(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			root := "."
			if f.path != "-" {
				if root, _, err = projectRoot(f.path); err != nil {
					return err
				}
			}
			cfg, err := loadConfig(g, root)
			if err != nil {
				return err
			}
			fixed := newWorkspace(cfg).FixGeneratedCode(f.code, nil)
			return f.output(cmd.OutOrStdout(), fixed, write)
		},
	}
	cmd.Flags().BoolVarP(&write, "write", "w", false, "Write the result back to the file")
	return cmd
}

func prettifyCmd(g *globalFlags) *cobra.Command {
	var write bool
	cmd := &cobra.Command{
		Use:   "prettify <file|->...",
		Short: "Lay out NetLogo code canonically",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, path := range args {
				f, err := readCodeFile(path, cmd.InOrStdin())
				if err != nil {
					return err
				}
				root := "."
				if f.path != "-" {
					if root, _, err = projectRoot(f.path); err != nil {
						return err
					}
				}
				cfg, err := loadConfig(g, root)
				if err != nil {
					return err
				}
				ws := newWorkspace(cfg)
				id := ws.Open("", f.mode(cfg), f.code)
				if err := ws.Prettify(id); err != nil {
					return err
				}
				code, err := ws.GetCode(id)
				if err != nil {
					return err
				}
				if err := f.output(cmd.OutOrStdout(), code, write); err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&write, "write", "w", false, "Write results back to the files")
	return cmd
}
