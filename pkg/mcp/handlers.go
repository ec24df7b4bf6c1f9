package mcp

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/gnana997/refract/pkg/refactor"
)

// --- argument helpers ---

func argString(args map[string]any, key string) (string, bool) {
	s, ok := args[key].(string)
	return s, ok && s != ""
}

func argUint(args map[string]any, key string) (uint32, bool) {
	f, ok := args[key].(float64)
	if !ok || f < 0 {
		return 0, false
	}
	return uint32(f), true
}

func argBool(args map[string]any, key string) bool {
	b, _ := args[key].(bool)
	return b
}

// resolvePath makes relative paths workspace-rooted.
func (s *Server) resolvePath(file string) string {
	if filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(s.ws.Root(), file)
}

// refactorContext builds a loaded Context from the shared file/selection
// arguments. The second return value is a ready error result when the
// arguments are unusable.
func (s *Server) refactorContext(args map[string]any) (*refactor.Context, *mcp.CallToolResult) {
	file, ok := argString(args, "file")
	if !ok {
		return nil, mcp.NewToolResultError("file is required")
	}

	startLine, ok := argUint(args, "start_line")
	if !ok {
		return nil, mcp.NewToolResultError("start_line is required")
	}
	startCol, ok := argUint(args, "start_column")
	if !ok {
		return nil, mcp.NewToolResultError("start_column is required")
	}
	endLine, ok := argUint(args, "end_line")
	if !ok {
		endLine = startLine
	}
	endCol, ok := argUint(args, "end_column")
	if !ok {
		endCol = startCol
	}

	ctx := refactor.NewContext(s.ws.Root(), s.resolvePath(file), s.parsers, s.queries, s.slogger).
		WithSelection(startLine, startCol, endLine, endCol)

	if err := ctx.LoadSource(); err != nil {
		return nil, mcp.NewToolResultError(err.Error())
	}

	return ctx, nil
}

// fileContext builds a loaded Context without a selection.
func (s *Server) fileContext(args map[string]any) (*refactor.Context, *mcp.CallToolResult) {
	file, ok := argString(args, "file")
	if !ok {
		return nil, mcp.NewToolResultError("file is required")
	}

	ctx := refactor.NewContext(s.ws.Root(), s.resolvePath(file), s.parsers, s.queries, s.slogger)
	if err := ctx.LoadSource(); err != nil {
		return nil, mcp.NewToolResultError(err.Error())
	}

	return ctx, nil
}

// runOperation runs an operation through the runner, dry-run unless apply
// is set, and refreshes workspace snapshots for files written to disk.
func (s *Server) runOperation(op refactor.Operation, ctx *refactor.Context, apply bool) (*mcp.CallToolResult, error) {
	runner := refactor.NewRunner(s.slogger)
	if !apply {
		runner.WithDryRun()
	}

	result, err := runner.Run(op, ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if apply {
		for _, f := range result.ModifiedFiles {
			if _, err := s.ws.Refresh(f); err != nil {
				s.slogger.Warn("failed to refresh workspace snapshot",
					"file", f,
					"error", err)
			}
		}
	}

	return mcp.NewToolResultText(result.Description), nil
}

// --- tool handlers ---

func (s *Server) handleExtractFunction(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()

	name, ok := argString(args, "name")
	if !ok {
		return mcp.NewToolResultError("name is required"), nil
	}

	ctx, errResult := s.refactorContext(args)
	if errResult != nil {
		return errResult, nil
	}

	op := refactor.NewExtractFunction(name)
	if argBool(args, "public") {
		op.Public()
	}

	return s.runOperation(op, ctx, argBool(args, "apply"))
}

func (s *Server) handleExtractVariable(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()

	name, ok := argString(args, "name")
	if !ok {
		return mcp.NewToolResultError("name is required"), nil
	}

	ctx, errResult := s.refactorContext(args)
	if errResult != nil {
		return errResult, nil
	}

	op := refactor.NewExtractVariable(name)
	if argBool(args, "replace_all") {
		op.ReplaceAllOccurrences()
	}

	return s.runOperation(op, ctx, argBool(args, "apply"))
}

func (s *Server) handleInlineVariable(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()

	ctx, errResult := s.refactorContext(args)
	if errResult != nil {
		return errResult, nil
	}

	op := refactor.NewInlineVariable()
	if argBool(args, "keep_declaration") {
		op.KeepDeclaration()
	}

	return s.runOperation(op, ctx, argBool(args, "apply"))
}

func (s *Server) handleChangeSignature(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()

	ctx, errResult := s.refactorContext(args)
	if errResult != nil {
		return errResult, nil
	}

	op := refactor.NewChangeSignature()
	changed := false

	if addName, ok := argString(args, "add_name"); ok {
		addType, ok := argString(args, "add_type")
		if !ok {
			return mcp.NewToolResultError("add_type is required when add_name is set"), nil
		}
		spec := refactor.NewParameterSpec(addName, addType)
		if def, ok := argString(args, "add_default"); ok {
			spec = spec.WithDefault(def)
		}
		op.AddParameter(spec)
		changed = true
	}

	if remove, ok := argString(args, "remove"); ok {
		op.RemoveParameter(remove)
		changed = true
	}

	if from, ok := argString(args, "rename_from"); ok {
		to, ok := argString(args, "rename_to")
		if !ok {
			return mcp.NewToolResultError("rename_to is required when rename_from is set"), nil
		}
		op.RenameParameter(from, to)
		changed = true
	}

	if !changed {
		return mcp.NewToolResultError("no signature changes specified"), nil
	}

	return s.runOperation(op, ctx, argBool(args, "apply"))
}

func (s *Server) handleSafeDelete(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()

	ctx, errResult := s.refactorContext(args)
	if errResult != nil {
		return errResult, nil
	}

	op := refactor.NewSafeDelete()
	if argBool(args, "force") {
		op.Forced()
	}
	if argBool(args, "search_workspace") {
		op.WithSearchPaths(s.ws.Root())
	}

	return s.runOperation(op, ctx, argBool(args, "apply"))
}

func (s *Server) handleFindDeadCode(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()

	ctx, errResult := s.fileContext(args)
	if errResult != nil {
		return errResult, nil
	}

	op := refactor.NewFindDeadCode()
	if argBool(args, "all_kinds") {
		op.IncludeAll()
	}
	if argBool(args, "search_workspace") {
		op.WithSearchPaths(s.ws.Root())
	}

	report, err := op.Analyze(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(report.Render()), nil
}

func (s *Server) handleFindReferences(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()

	name, ok := argString(args, "name")
	if !ok {
		return mcp.NewToolResultError("name is required"), nil
	}

	info, err := s.ws.Usages(name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d reference(s) to '%s'\n", info.Count(), name)
	fmt.Fprintf(&sb, "Defined in %s:%d\n", info.Binding.File, info.Binding.DefinitionRange.Start.Line+1)
	for _, ref := range info.Usages {
		fmt.Fprintf(&sb, "- %s:%d:%d [%s, %s]\n",
			ref.File,
			ref.Range.Start.Line+1,
			ref.Range.Start.Character+1,
			ref.Kind,
			ref.Confidence)
	}

	return mcp.NewToolResultText(sb.String()), nil
}
