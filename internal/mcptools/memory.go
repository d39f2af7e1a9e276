package mcptools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/p-blackswan/mission-control/internal/models"
)

// MemorySaveTool handles the memory_save MCP tool.
type MemorySaveTool struct {
	boards Boards
}

// NewMemorySaveTool creates a MemorySaveTool.
func NewMemorySaveTool(b Boards) *MemorySaveTool {
	return &MemorySaveTool{boards: b}
}

// Definition returns the MCP tool definition for memory_save.
func (t *MemorySaveTool) Definition() mcp.Tool {
	return mcp.NewTool("memory_save",
		mcp.WithDescription("Save a note to the shared memory view. It is also sent to the memory service when one is configured."),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Short, searchable title"),
		),
		mcp.WithString("content",
			mcp.Required(),
			mcp.Description("Note body"),
		),
		mcp.WithString("category",
			mcp.Description("Category (default: note)"),
		),
		mcp.WithString("importance",
			mcp.Description("Importance (default: medium)"),
			mcp.Enum(enumValues(models.Priorities)...),
		),
		mcp.WithString("tags",
			mcp.Description("Comma-separated tags"),
		),
	)
}

// Handle processes the memory_save tool call.
func (t *MemorySaveTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if t.boards.Memories == nil {
		return mcp.NewToolResultError("memory view not available"), nil
	}
	content := req.GetString("content", "")
	if content == "" {
		return mcp.NewToolResultError("'content' is required"), nil
	}
	entry, err := t.boards.Memories.Create(ctx, models.MemoryDraft{
		Title:      req.GetString("title", ""),
		Content:    content,
		Category:   req.GetString("category", ""),
		Importance: models.Priority(req.GetString("importance", "")),
		Tags:       listArg(req, "tags"),
	})
	if entry == nil {
		return resultFor(err, ""), nil
	}
	msg := fmt.Sprintf("Memory saved: %q (%s, %d words)\nID: %s", entry.Title, entry.Category, entry.WordCount, entry.ID)
	if entry.File != "" {
		msg += "\nFile: " + entry.File
	}
	return resultFor(err, msg), nil
}
