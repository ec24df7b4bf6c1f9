package mcp

import "github.com/mark3labs/mcp-go/mcp"

// Selection arguments shared by the position-based tools. Lines and
// columns are zero-indexed; end_line/end_column default to the start so a
// bare cursor position is enough for cursor-driven operations.
func withSelectionArgs(opts ...mcp.ToolOption) []mcp.ToolOption {
	base := []mcp.ToolOption{
		mcp.WithString("file",
			mcp.Required(),
			mcp.Description("Path to the source file, absolute or relative to the workspace root"),
		),
		mcp.WithNumber("start_line",
			mcp.Required(),
			mcp.Description("Selection start line (0-indexed)"),
		),
		mcp.WithNumber("start_column",
			mcp.Required(),
			mcp.Description("Selection start column (0-indexed)"),
		),
		mcp.WithNumber("end_line",
			mcp.Description("Selection end line (defaults to start_line)"),
		),
		mcp.WithNumber("end_column",
			mcp.Description("Selection end column (defaults to start_column)"),
		),
		mcp.WithBoolean("apply",
			mcp.Description("Write changes to disk; false returns a dry-run preview"),
		),
	}
	return append(base, opts...)
}

func extractFunctionTool() mcp.Tool {
	return mcp.NewTool("extract_function",
		withSelectionArgs(
			mcp.WithDescription("Extract the selected code into a new function and replace the selection with a call"),
			mcp.WithString("name",
				mcp.Required(),
				mcp.Description("Name for the extracted function"),
			),
			mcp.WithBoolean("public",
				mcp.Description("Give the extracted function public visibility"),
			),
		)...,
	)
}

func extractVariableTool() mcp.Tool {
	return mcp.NewTool("extract_variable",
		withSelectionArgs(
			mcp.WithDescription("Extract the selected expression into a named variable"),
			mcp.WithString("name",
				mcp.Required(),
				mcp.Description("Name for the extracted variable"),
			),
			mcp.WithBoolean("replace_all",
				mcp.Description("Replace every occurrence of the expression, not just the selection"),
			),
		)...,
	)
}

func inlineVariableTool() mcp.Tool {
	return mcp.NewTool("inline_variable",
		withSelectionArgs(
			mcp.WithDescription("Replace usages of the variable at the cursor with its value and remove the declaration"),
			mcp.WithBoolean("keep_declaration",
				mcp.Description("Keep the original declaration in place"),
			),
		)...,
	)
}

func changeSignatureTool() mcp.Tool {
	return mcp.NewTool("change_signature",
		withSelectionArgs(
			mcp.WithDescription("Modify the signature of the function at the cursor, updating call sites in the file"),
			mcp.WithString("add_name",
				mcp.Description("Name of a parameter to add"),
			),
			mcp.WithString("add_type",
				mcp.Description("Type of the added parameter"),
			),
			mcp.WithString("add_default",
				mcp.Description("Default value inserted at call sites for the added parameter"),
			),
			mcp.WithString("remove",
				mcp.Description("Name of a parameter to remove"),
			),
			mcp.WithString("rename_from",
				mcp.Description("Current name of a parameter to rename"),
			),
			mcp.WithString("rename_to",
				mcp.Description("New name for the renamed parameter"),
			),
		)...,
	)
}

func safeDeleteTool() mcp.Tool {
	return mcp.NewTool("safe_delete",
		withSelectionArgs(
			mcp.WithDescription("Delete the symbol at the cursor after checking for remaining usages"),
			mcp.WithBoolean("force",
				mcp.Description("Delete even when usages remain"),
			),
			mcp.WithBoolean("search_workspace",
				mcp.Description("Also search the rest of the workspace for usages"),
			),
		)...,
	)
}

func findDeadCodeTool() mcp.Tool {
	return mcp.NewTool("find_dead_code",
		mcp.WithDescription("Report unused functions, variables, imports and other dead code in a file"),
		mcp.WithString("file",
			mcp.Required(),
			mcp.Description("Path to the source file, absolute or relative to the workspace root"),
		),
		mcp.WithBoolean("all_kinds",
			mcp.Description("Include every dead code category, not just unused functions, variables and imports"),
		),
		mcp.WithBoolean("search_workspace",
			mcp.Description("Also analyze the rest of the workspace"),
		),
	)
}

func findReferencesTool() mcp.Tool {
	return mcp.NewTool("find_references",
		mcp.WithDescription("Find all references to a named binding across the scanned workspace"),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Binding name to look up"),
		),
	)
}
