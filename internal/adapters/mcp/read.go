package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"memoriakit/internal/application"
	"memoriakit/internal/domain"
)

// RegisterReadTools adds all read-only editing tools to the MCP server.
func RegisterReadTools(s *server.MCPServer, session *application.Session, registry *application.TemplateRegistry) {
	s.AddTool(listEntriesTool(), listEntriesHandler(session))
	s.AddTool(readEntryTool(), readEntryHandler(session))
	s.AddTool(listTemplatesTool(), listTemplatesHandler(registry))
	s.AddTool(renderTemplateTool(), renderTemplateHandler(registry))
}

// --- list_entries ---

func listEntriesTool() mcp.Tool {
	return mcp.NewTool("list_entries",
		mcp.WithDescription("List the entries of the open file: index, kind, ID, and comment of each. Optionally filter by header prefix (e.g. '>SA' or '>AA 11')."),
		mcp.WithString("prefix",
			mcp.Description("Header prefix filter. Omit to list every entry."),
		),
	)
}

func listEntriesHandler(session *application.Session) server.ToolHandlerFunc {
	return func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		doc := session.Document()
		prefix := req.GetString("prefix", "")

		indices := make([]int, 0, len(doc.Blocks))
		if prefix == "" {
			for i := range doc.Blocks {
				indices = append(indices, i)
			}
		} else {
			indices = doc.FilterByHeaderPrefix(prefix)
		}

		if len(indices) == 0 {
			return mcp.NewToolResultText("No entries."), nil
		}

		var sb strings.Builder
		for _, i := range indices {
			sb.WriteString(formatEntry(i, &doc.Blocks[i]))
			sb.WriteByte('\n')
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// --- read_entry ---

func readEntryTool() mcp.Tool {
	return mcp.NewTool("read_entry",
		mcp.WithDescription("Read the full raw text of one entry by its index."),
		mcp.WithNumber("index",
			mcp.Description("Entry index as shown by list_entries"),
			mcp.Required(),
		),
	)
}

func readEntryHandler(session *application.Session) server.ToolHandlerFunc {
	return func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		index := req.GetInt("index", -1)
		block, err := session.EntryAt(index)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(block.Raw), nil
	}
}

// --- list_templates ---

func listTemplatesTool() mcp.Tool {
	return mcp.NewTool("list_templates",
		mcp.WithDescription("List registered templates: category, name, produced entry kind, and placeholders."),
	)
}

func listTemplatesHandler(registry *application.TemplateRegistry) server.ToolHandlerFunc {
	return func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		templates := registry.List()
		if len(templates) == 0 {
			return mcp.NewToolResultText("No templates registered."), nil
		}

		var sb strings.Builder
		for _, tpl := range templates {
			fmt.Fprintf(&sb, "%s/%s  [%s]", tpl.Category, tpl.Name, tpl.Kind)
			if len(tpl.Placeholders) > 0 {
				names := make([]string, len(tpl.Placeholders))
				for i, p := range tpl.Placeholders {
					names[i] = p.Name
				}
				fmt.Fprintf(&sb, "  placeholders: %s", strings.Join(names, ", "))
			}
			sb.WriteByte('\n')
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// --- render_template ---

func renderTemplateTool() mcp.Tool {
	return mcp.NewTool("render_template",
		mcp.WithDescription("Render a template with placeholder values, without touching the open file. Returns the rendered entry text."),
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
	)
}

func renderTemplateHandler(registry *application.TemplateRegistry) server.ToolHandlerFunc {
	return func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		category := req.GetString("category", "")
		name := req.GetString("name", "")

		tpl, err := findTemplate(registry, category, name)
		if err != nil {
			return toolError(err)
		}

		rendered, err := tpl.Render(placeholderValues(req))
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(rendered), nil
	}
}

// --- helpers ---

func toolError(err error) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(err.Error()), nil
}

func formatEntry(index int, b *domain.Block) string {
	id := domain.EntryID(b)
	comment, _ := b.Field("Comment")
	if b.Kind == domain.KindInstruction {
		id, _ = b.Field("Op")
	}
	if b.Kind == domain.KindComment {
		comment, _ = b.Field("Text")
	}
	return fmt.Sprintf("[%d] %s  %s  %s", index, b.Kind, id, comment)
}

// findTemplate resolves a template by category and name, trying every
// kind. Template identity includes the kind, but callers address
// templates by the (category, name) pair.
func findTemplate(registry *application.TemplateRegistry, category, name string) (domain.Template, error) {
	for _, tpl := range registry.Find(name) {
		if tpl.Category == category {
			return tpl, nil
		}
	}
	return domain.Template{}, fmt.Errorf("no template %q in category %q", name, category)
}

// placeholderValues extracts the values argument as a string map.
func placeholderValues(req mcp.CallToolRequest) map[string]string {
	values := make(map[string]string)
	raw := req.GetArguments()
	obj, ok := raw["values"].(map[string]any)
	if !ok {
		return values
	}
	for k, v := range obj {
		values[k] = fmt.Sprintf("%v", v)
	}
	return values
}
