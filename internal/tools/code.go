package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/DeusData/netlogo-intel/internal/breeds"
	"github.com/DeusData/netlogo-intel/internal/editor"
	"github.com/DeusData/netlogo-intel/internal/lint"
	"github.com/DeusData/netlogo-intel/internal/parser"
	"github.com/DeusData/netlogo-intel/internal/syntax"
)

// diagnosticView is a diagnostic as returned to clients.
type diagnosticView struct {
	From     int           `json:"from"`
	To       int           `json:"to"`
	Line     int           `json:"line"`
	Column   int           `json:"column"`
	Severity lint.Severity `json:"severity"`
	Message  string        `json:"message"`
	Key      string        `json:"key"`
	Source   string        `json:"source"`
	Fixes    []string      `json:"fixes,omitempty"`
}

func viewDiagnostics(code string, diags []lint.Diagnostic, min lint.Severity) []diagnosticView {
	out := make([]diagnosticView, 0, len(diags))
	for _, d := range diags {
		if d.Severity > min {
			continue
		}
		line, col := syntax.LineCol(code, d.From)
		v := diagnosticView{
			From: d.From, To: d.To, Line: line, Column: col,
			Severity: d.Severity, Message: d.Message(), Key: d.Key, Source: d.Source,
		}
		for _, f := range d.Fixes {
			v.Fixes = append(v.Fixes, lint.Fill(f.Title, f.Args))
		}
		out = append(out, v)
	}
	return out
}

// openArg stores the optional code argument in the session document.
func (s *Server) openArg(args map[string]any, id string) error {
	if !hasArg(args, "code") {
		return nil
	}
	mode, err := s.modeArg(args)
	if err != nil {
		return err
	}
	s.ws.Open(id, mode, getStringArg(args, "code"))
	return nil
}

func (s *Server) handleLintCode(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := parseArgs(req)
	if err != nil {
		return errResult(err.Error()), nil
	}
	if !hasArg(args, "code") {
		return errResult("code is required"), nil
	}
	id := editorArg(args)
	if err := s.openArg(args, id); err != nil {
		return errResult(err.Error()), nil
	}
	if hasArg(args, "widget_globals") {
		widgets := append(append([]string(nil), s.cfg.WidgetGlobals...), getStringSliceArg(args, "widget_globals")...)
		s.ws.SetWidgetVariables(widgets)
	}
	return s.lintDocument(ctx, id)
}

func (s *Server) lintDocument(ctx context.Context, id string) (*mcp.CallToolResult, error) {
	diags, err := s.ws.Diagnostics(ctx, id)
	if err != nil {
		return errResult(fmt.Sprintf("lint: %v", err)), nil
	}
	code, err := s.ws.GetCode(id)
	if err != nil {
		return errResult(err.Error()), nil
	}
	return jsonResult(map[string]any{
		"editor_id":   id,
		"version":     s.ws.Shared().Version,
		"diagnostics": viewDiagnostics(code, diags, lint.SeverityInfo),
	}), nil
}

func (s *Server) handleApplyFix(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := parseArgs(req)
	if err != nil {
		return errResult(err.Error()), nil
	}
	id := editorArg(args)
	diags, err := s.ws.Diagnostics(ctx, id)
	if err != nil {
		return errResult(err.Error()), nil
	}
	di, fi := getIntArg(args, "diagnostic", -1), getIntArg(args, "fix", 0)
	if di < 0 || di >= len(diags) {
		return errResult(fmt.Sprintf("diagnostic %d out of range (%d diagnostics)", di, len(diags))), nil
	}
	fixes := diags[di].Fixes
	if fi < 0 || fi >= len(fixes) {
		return errResult(fmt.Sprintf("fix %d out of range (%d fixes)", fi, len(fixes))), nil
	}
	if err := s.ws.ApplyFix(id, fixes[fi]); err != nil {
		return errResult(err.Error()), nil
	}
	code, err := s.ws.GetCode(id)
	if err != nil {
		return errResult(err.Error()), nil
	}
	return jsonResult(map[string]any{"editor_id": id, "code": code}), nil
}

func (s *Server) handleReportErrors(_ context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := parseArgs(req)
	if err != nil {
		return errResult(err.Error()), nil
	}
	var errs []lint.ExternalError
	raw, _ := args["errors"].([]any)
	for _, item := range raw {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		errs = append(errs, lint.ExternalError{
			Message: getStringArg(m, "message"),
			Start:   getIntArg(m, "start", 0),
			End:     getIntArg(m, "end", 0),
		})
	}
	id := editorArg(args)
	switch kind := getStringArg(args, "kind"); kind {
	case "compiler":
		err = s.ws.SetCompilerErrors(id, errs)
	case "runtime":
		err = s.ws.SetRuntimeErrors(id, errs)
	default:
		return errResult(fmt.Sprintf("kind must be compiler or runtime, got %q", kind)), nil
	}
	if err != nil {
		return errResult(err.Error()), nil
	}
	return jsonResult(map[string]any{"editor_id": id, "errors": len(errs)}), nil
}

func (s *Server) handleTooltip(_ context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := parseArgs(req)
	if err != nil {
		return errResult(err.Error()), nil
	}
	id := editorArg(args)
	if err := s.openArg(args, id); err != nil {
		return errResult(err.Error()), nil
	}
	from := getIntArg(args, "from", 0)
	info, ok, err := s.ws.Tooltip(id, from, getIntArg(args, "to", from))
	if err != nil {
		return errResult(err.Error()), nil
	}
	if !ok {
		return jsonResult(map[string]any{"found": false}), nil
	}
	return jsonResult(map[string]any{
		"found":   true,
		"info":    info,
		"message": lint.Fill(info.Key, info.Args),
	}), nil
}

func (s *Server) handleComplete(_ context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := parseArgs(req)
	if err != nil {
		return errResult(err.Error()), nil
	}
	id := editorArg(args)
	if err := s.openArg(args, id); err != nil {
		return errResult(err.Error()), nil
	}
	c, err := s.ws.Complete(id, getIntArg(args, "pos", 0))
	if err != nil {
		return errResult(err.Error()), nil
	}
	limit := getIntArg(args, "limit", 50)
	total := len(c.Items)
	if limit > 0 && len(c.Items) > limit {
		c.Items = c.Items[:limit]
	}
	return jsonResult(map[string]any{
		"from":   c.From,
		"to":     c.To,
		"prefix": c.Prefix,
		"items":  c.Items,
		"total":  total,
	}), nil
}

func (s *Server) handlePrettify(_ context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := parseArgs(req)
	if err != nil {
		return errResult(err.Error()), nil
	}
	if !hasArg(args, "code") {
		id := editorArg(args)
		if err := s.ws.Prettify(id); err != nil {
			return errResult(err.Error()), nil
		}
		code, err := s.ws.GetCode(id)
		if err != nil {
			return errResult(err.Error()), nil
		}
		return textResult(code), nil
	}

	mode, err := s.modeArg(args)
	if err != nil {
		return errResult(err.Error()), nil
	}
	scratch := editor.New(editor.Options{Catalog: s.cat, Repair: s.cfg.RepairOptions(s.cat)})
	id := scratch.Open("", mode, getStringArg(args, "code"))
	if err := scratch.Prettify(id); err != nil {
		return errResult(err.Error()), nil
	}
	code, err := scratch.GetCode(id)
	if err != nil {
		return errResult(err.Error()), nil
	}
	return textResult(code), nil
}

func (s *Server) handleFixGeneratedCode(_ context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := parseArgs(req)
	if err != nil {
		return errResult(err.Error()), nil
	}
	source := getStringArg(args, "source")
	if strings.TrimSpace(source) == "" {
		return errResult("source is required"), nil
	}
	if !getBoolArg(args, "use_workspace") {
		return textResult(s.ws.FixGeneratedCode(source, nil)), nil
	}
	return textResult(s.ws.FixGeneratedCode(source, s.ws.Snapshot())), nil
}

func (s *Server) handleGetState(_ context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := parseArgs(req)
	if err != nil {
		return errResult(err.Error()), nil
	}
	shared := s.ws.Shared()
	out := map[string]any{
		"version":   shared.Version,
		"documents": s.ws.IDs(),
		"state":     shared.Lint,
	}
	if getBoolArg(args, "preprocess") {
		out["preprocess"] = shared.Preprocess
	}
	return jsonResult(out), nil
}

func (s *Server) handleBreedMatch(_ context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := parseArgs(req)
	if err != nil {
		return errResult(err.Error()), nil
	}
	word := getStringArg(args, "word")
	if word == "" {
		return errResult("word is required"), nil
	}
	return jsonResult(breeds.Match(word, s.ws.GetState(), getBoolArg(args, "guessing"))), nil
}

func (s *Server) handleDumpTree(_ context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := parseArgs(req)
	if err != nil {
		return errResult(err.Error()), nil
	}
	var tree *syntax.Tree
	if hasArg(args, "code") {
		mode, err := s.modeArg(args)
		if err != nil {
			return errResult(err.Error()), nil
		}
		tree = parser.Analyze(getStringArg(args, "code"), mode, s.cat, defaultEditor).Tree
	} else {
		v, err := s.ws.View(editorArg(args))
		if err != nil {
			return errResult(err.Error()), nil
		}
		tree = v.Tree
	}
	var b strings.Builder
	if err := syntax.Dump(&b, tree); err != nil {
		return errResult(err.Error()), nil
	}
	return textResult(b.String()), nil
}

func (s *Server) handleCloseDocument(_ context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := parseArgs(req)
	if err != nil {
		return errResult(err.Error()), nil
	}
	id := getStringArg(args, "editor_id")
	if err := s.ws.Close(id); err != nil {
		return errResult(err.Error()), nil
	}
	return jsonResult(map[string]any{"closed": id, "documents": s.ws.IDs()}), nil
}
