package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"memoriakit/internal/application"
)

// RegisterWriteTools adds all mutating editing tools to the MCP server.
func RegisterWriteTools(s *server.MCPServer, session *application.Session, registry *application.TemplateRegistry) {
	s.AddTool(replaceEntryTool(), replaceEntryHandler(session))
	s.AddTool(appendEntryTool(), appendEntryHandler(session))
	s.AddTool(deleteEntryTool(), deleteEntryHandler(session))
	s.AddTool(insertTemplateTool(), insertTemplateHandler(session, registry))
	s.AddTool(undoTool(), undoHandler(session))
	s.AddTool(redoTool(), redoHandler(session))
	s.AddTool(saveTool(), saveHandler(session))
	s.AddTool(revertTool(), revertHandler(session))
}

// --- replace_entry ---

func replaceEntryTool() mcp.Tool {
	return mcp.NewTool("replace_entry",
		mcp.WithDescription("Replace the entry at an index with new text. The new entry must be of the same kind as the one it replaces."),
		mcp.WithNumber("index",
			mcp.Description("Entry index as shown by list_entries"),
			mcp.Required(),
		),
		mcp.WithString("text",
			mcp.Description("Full replacement entry text, header line included"),
			mcp.Required(),
		),
	)
}

func replaceEntryHandler(session *application.Session) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		index := req.GetInt("index", -1)
		text := req.GetString("text", "")

		if err := session.ReplaceEntry(ctx, index, text); err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(fmt.Sprintf("Replaced entry %d.", index)), nil
	}
}

// --- append_entry ---

func appendEntryTool() mcp.Tool {
	return mcp.NewTool("append_entry",
		mcp.WithDescription("Append a new entry at the end of the open file."),
		mcp.WithString("text",
			mcp.Description("Full entry text, header line included"),
			mcp.Required(),
		),
	)
}

func appendEntryHandler(session *application.Session) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		text := req.GetString("text", "")
		if err := session.AppendEntry(ctx, text); err != nil {
			return toolError(err)
		}
		n := len(session.Document().Blocks)
		return mcp.NewToolResultText(fmt.Sprintf("Appended entry %d.", n-1)), nil
	}
}

// --- delete_entry ---

func deleteEntryTool() mcp.Tool {
	return mcp.NewTool("delete_entry",
		mcp.WithDescription("Delete the entry at an index. Undoable."),
		mcp.WithNumber("index",
			mcp.Description("Entry index as shown by list_entries"),
			mcp.Required(),
		),
	)
}

func deleteEntryHandler(session *application.Session) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		index := req.GetInt("index", -1)
		if err := session.DeleteEntry(ctx, index); err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(fmt.Sprintf("Deleted entry %d.", index)), nil
	}
}

// --- insert_template ---

func insertTemplateTool() mcp.Tool {
	return mcp.NewTool("insert_template",
		mcp.WithDescription("Render a template and insert the result into the open file: without a slot it is appended, with a slot it replaces the entry there (same-kind check applies)."),
		mcp.WithString("category",
			mcp.Description("Template category"),
			mcp.Required(),
		),
		mcp.WithString("name",
			mcp.Description("Template name"),
			mcp.Required(),
		),
		mcp.WithObject("values",
			mcp.Description("Placeholder name to value map"),
		),
		mcp.WithNumber("slot",
			mcp.Description("Entry index to replace. Omit to append."),
		),
	)
}

func insertTemplateHandler(session *application.Session, registry *application.TemplateRegistry) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		category := req.GetString("category", "")
		name := req.GetString("name", "")
		slot := req.GetInt("slot", -1)

		tpl, err := findTemplate(registry, category, name)
		if err != nil {
			return toolError(err)
		}

		if err := session.InsertTemplate(ctx, tpl, placeholderValues(req), slot); err != nil {
			return toolError(err)
		}
		if slot < 0 {
			return mcp.NewToolResultText(fmt.Sprintf("Inserted template %s/%s at end of file.", category, name)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Inserted template %s/%s into slot %d.", category, name, slot)), nil
	}
}

// --- undo / redo ---

func undoTool() mcp.Tool {
	return mcp.NewTool("undo",
		mcp.WithDescription("Undo the most recent edit."),
	)
}

func undoHandler(session *application.Session) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := session.Undo(ctx)
		if errors.Is(err, application.ErrNothingToUndo) {
			return mcp.NewToolResultText("Nothing to undo."), nil
		}
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(fmt.Sprintf("Undid %s.", name)), nil
	}
}

func redoTool() mcp.Tool {
	return mcp.NewTool("redo",
		mcp.WithDescription("Re-apply the most recently undone edit."),
	)
}

func redoHandler(session *application.Session) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := session.Redo(ctx)
		if errors.Is(err, application.ErrNothingToRedo) {
			return mcp.NewToolResultText("Nothing to redo."), nil
		}
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(fmt.Sprintf("Redid %s.", name)), nil
	}
}

// --- save / revert ---

func saveTool() mcp.Tool {
	return mcp.NewTool("save",
		mcp.WithDescription("Write the open file back to disk atomically. The undo history survives the save."),
	)
}

func saveHandler(session *application.Session) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if err := session.Save(ctx); err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(fmt.Sprintf("Saved %s.", session.Path())), nil
	}
}

func revertTool() mcp.Tool {
	return mcp.NewTool("revert",
		mcp.WithDescription("Discard all unsaved edits by re-reading the file from disk. Clears the undo history; this cannot be undone."),
	)
}

func revertHandler(session *application.Session) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if err := session.Revert(ctx); err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(fmt.Sprintf("Reverted %s to its on-disk state.", session.Path())), nil
	}
}
