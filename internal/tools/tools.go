// Package tools exposes the NetLogo analysis surface as MCP tools.
package tools

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/DeusData/netlogo-intel/internal/config"
	"github.com/DeusData/netlogo-intel/internal/editor"
	"github.com/DeusData/netlogo-intel/internal/lint"
	"github.com/DeusData/netlogo-intel/internal/primitives"
	"github.com/DeusData/netlogo-intel/internal/store"
	"github.com/DeusData/netlogo-intel/internal/syntax"
)

// defaultEditor is the document id used when a call names none.
const defaultEditor = "main"

// Options configures a Server.
type Options struct {
	Config  *config.Config
	Router  *store.Router // nil disables the project lint cache
	Version string
}

// Server wraps the MCP server with tool handlers. Documents sent by the
// client live in one session workspace, so procedures and declarations of
// one document are visible from the others.
type Server struct {
	mcp    *mcp.Server
	cfg    *config.Config
	cat    *primitives.Catalog
	ws     *editor.Workspace
	router *store.Router

	// lintMu serialises project runs sharing a cache database.
	lintMu sync.Mutex
}

// NewServer creates a new MCP server with all tools registered.
func NewServer(opts Options) *Server {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	version := opts.Version
	if version == "" {
		version = "dev"
	}
	cat := cfg.Catalog()
	srv := &Server{
		cfg:    cfg,
		cat:    cat,
		ws:     editor.New(editor.Options{Catalog: cat, Repair: cfg.RepairOptions(cat)}),
		router: opts.Router,
		mcp: mcp.NewServer(
			&mcp.Implementation{
				Name:    "netlogo-intel",
				Version: version,
			},
			nil,
		),
	}
	if len(cfg.WidgetGlobals) > 0 {
		srv.ws.SetWidgetVariables(cfg.WidgetGlobals)
	}
	srv.registerTools()
	return srv
}

// MCPServer returns the underlying MCP server.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcp
}

// Workspace returns the session workspace.
func (s *Server) Workspace() *editor.Workspace {
	return s.ws
}

func (s *Server) registerTools() {
	s.mcp.AddTool(&mcp.Tool{
		Name:        "lint_code",
		Description: "Lint NetLogo code. The code is stored as a document of the session workspace under editor_id, so declarations made in other documents are visible. Returns diagnostics with line, column, severity, message and available quick fixes.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"code": {
					"type": "string",
					"description": "NetLogo source"
				},
				"editor_id": {
					"type": "string",
					"description": "Document id (default 'main')"
				},
				"mode": {
					"type": "string",
					"description": "How the code is parsed",
					"enum": ["model", "embedded", "oneline"]
				},
				"widget_globals": {
					"type": "array",
					"items": {"type": "string"},
					"description": "Global variables declared by interface widgets"
				}
			},
			"required": ["code"]
		}`),
	}, s.handleLintCode)

	s.mcp.AddTool(&mcp.Tool{
		Name:        "apply_fix",
		Description: "Apply a quick fix offered by lint_code to a session document and return the updated code.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"editor_id": {"type": "string", "description": "Document id (default 'main')"},
				"diagnostic": {"type": "integer", "description": "Index into the diagnostics returned by lint_code"},
				"fix": {"type": "integer", "description": "Index into the diagnostic's fixes (default 0)"}
			},
			"required": ["diagnostic"]
		}`),
	}, s.handleApplyFix)

	s.mcp.AddTool(&mcp.Tool{
		Name:        "report_errors",
		Description: "Attach compiler or runtime errors reported by NetLogo itself to a session document. They are returned by lint_code alongside the linter's own diagnostics until replaced.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"editor_id": {"type": "string", "description": "Document id (default 'main')"},
				"kind": {"type": "string", "enum": ["compiler", "runtime"]},
				"errors": {
					"type": "array",
					"items": {
						"type": "object",
						"properties": {
							"message": {"type": "string"},
							"start": {"type": "integer"},
							"end": {"type": "integer"}
						}
					}
				}
			},
			"required": ["kind"]
		}`),
	}, s.handleReportErrors)

	s.mcp.AddTool(&mcp.Tool{
		Name:        "lint_project",
		Description: "Lint every .nlogo, .nlogo3d and .nls file under a directory. Results are cached per file in the project's cache database, so unchanged files are not linted again.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"repo_path": {
					"type": "string",
					"description": "Absolute path to the project directory"
				},
				"min_severity": {
					"type": "string",
					"description": "Drop diagnostics less severe than this",
					"enum": ["error", "warning", "info"]
				}
			},
			"required": ["repo_path"]
		}`),
	}, s.handleLintProject)

	s.mcp.AddTool(&mcp.Tool{
		Name:        "tooltip",
		Description: "Describe the word or syntax element covering a range of a session document: its kind, help key and where it is defined.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"editor_id": {"type": "string", "description": "Document id (default 'main')"},
				"code": {"type": "string", "description": "Replaces the document's code first when given"},
				"from": {"type": "integer", "description": "Start offset"},
				"to": {"type": "integer", "description": "End offset (default from)"}
			},
			"required": ["from"]
		}`),
	}, s.handleTooltip)

	s.mcp.AddTool(&mcp.Tool{
		Name:        "complete",
		Description: "List completions for the partial word ending at an offset of a session document.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"editor_id": {"type": "string", "description": "Document id (default 'main')"},
				"code": {"type": "string", "description": "Replaces the document's code first when given"},
				"pos": {"type": "integer", "description": "Cursor offset"},
				"limit": {"type": "integer", "description": "Max items (default 50)"}
			},
			"required": ["pos"]
		}`),
	}, s.handleComplete)

	s.mcp.AddTool(&mcp.Tool{
		Name:        "prettify",
		Description: "Rewrite NetLogo code in canonical layout. With code, the code is formatted on its own; without, the session document is formatted in place.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"code": {"type": "string", "description": "Code to format"},
				"mode": {"type": "string", "enum": ["model", "embedded", "oneline"]},
				"editor_id": {"type": "string", "description": "Session document to format when code is omitted"}
			}
		}`),
	}, s.handlePrettify)

	s.mcp.AddTool(&mcp.Tool{
		Name:        "fix_generated_code",
		Description: "Repair machine-generated NetLogo code: wrap loose statements in a procedure, add missing declarations and drop duplicates, then lay it out canonically.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"source": {"type": "string", "description": "Generated code"},
				"use_workspace": {
					"type": "boolean",
					"description": "Treat the session workspace's declarations as already present"
				}
			},
			"required": ["source"]
		}`),
	}, s.handleFixGeneratedCode)

	s.mcp.AddTool(&mcp.Tool{
		Name:        "get_state",
		Description: "Return the merged symbol tables of the session workspace: extensions, globals, breeds with their variables, and procedures with their scopes.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"preprocess": {"type": "boolean", "description": "Also return the quick scan tables"}
			}
		}`),
	}, s.handleGetState)

	s.mcp.AddTool(&mcp.Tool{
		Name:        "breed_match",
		Description: "Tell whether a word is a breed name, a breed variable or a breed primitive (such as create-wolves) given the session workspace's breeds.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"word": {"type": "string"},
				"guessing": {"type": "boolean", "description": "Suggest names for undeclared breeds"}
			},
			"required": ["word"]
		}`),
	}, s.handleBreedMatch)

	s.mcp.AddTool(&mcp.Tool{
		Name:        "dump_tree",
		Description: "Print the concrete syntax tree of code or of a session document.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"code": {"type": "string"},
				"mode": {"type": "string", "enum": ["model", "embedded", "oneline"]},
				"editor_id": {"type": "string", "description": "Session document to dump when code is omitted"}
			}
		}`),
	}, s.handleDumpTree)

	s.mcp.AddTool(&mcp.Tool{
		Name:        "close_document",
		Description: "Remove a document from the session workspace.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"editor_id": {"type": "string"}
			},
			"required": ["editor_id"]
		}`),
	}, s.handleCloseDocument)

	s.mcp.AddTool(&mcp.Tool{
		Name:        "list_projects",
		Description: "List projects linted in this session with their root path, last run and number of cached files.",
		InputSchema: json.RawMessage(`{"type": "object"}`),
	}, s.handleListProjects)

	s.mcp.AddTool(&mcp.Tool{
		Name:        "delete_project",
		Description: "Delete the cached lint results of a project.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"project_name": {
					"type": "string",
					"description": "Name of the project to delete"
				}
			},
			"required": ["project_name"]
		}`),
	}, s.handleDeleteProject)
}

// jsonResult marshals data to JSON and returns as tool result.
func jsonResult(data any) *mcp.CallToolResult {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return errResult("json marshal err=" + err.Error())
	}
	return textResult(string(b))
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

// errResult returns a tool result indicating an error.
func errResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: msg},
		},
		IsError: true,
	}
}

// parseArgs unmarshals the raw JSON arguments into a map.
func parseArgs(req *mcp.CallToolRequest) (map[string]any, error) {
	if req.Params == nil || len(req.Params.Arguments) == 0 {
		return map[string]any{}, nil
	}
	var m map[string]any
	if err := json.Unmarshal(req.Params.Arguments, &m); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}
	return m, nil
}

// getStringArg extracts a string argument from parsed args.
func getStringArg(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}

// hasArg reports whether key was passed at all.
func hasArg(args map[string]any, key string) bool {
	_, ok := args[key]
	return ok
}

// getIntArg extracts an integer argument with a default value.
func getIntArg(args map[string]any, key string, defaultVal int) int {
	f, ok := args[key].(float64) // JSON numbers decode as float64
	if !ok {
		return defaultVal
	}
	return int(f)
}

// getBoolArg extracts a boolean argument from parsed args.
func getBoolArg(args map[string]any, key string) bool {
	b, _ := args[key].(bool)
	return b
}

// getStringSliceArg extracts a list of strings, skipping other elements.
func getStringSliceArg(args map[string]any, key string) []string {
	raw, ok := args[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func editorArg(args map[string]any) string {
	if id := getStringArg(args, "editor_id"); id != "" {
		return id
	}
	return defaultEditor
}

// modeArg parses the optional mode argument, falling back to the
// configured mode.
func (s *Server) modeArg(args map[string]any) (syntax.Mode, error) {
	name := getStringArg(args, "mode")
	if name == "" {
		return s.cfg.ParseMode(), nil
	}
	mode, ok := syntax.ParseMode(name)
	if !ok {
		return mode, fmt.Errorf("mode %q: %w", name, config.ErrInvalidMode)
	}
	return mode, nil
}

func severityArg(args map[string]any, key string) (lint.Severity, error) {
	switch getStringArg(args, key) {
	case "", "info":
		return lint.SeverityInfo, nil
	case "warning":
		return lint.SeverityWarning, nil
	case "error":
		return lint.SeverityError, nil
	}
	return lint.SeverityInfo, fmt.Errorf("%s must be error, warning or info", key)
}
