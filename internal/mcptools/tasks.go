package mcptools

import (
	"context"
	"fmt"
	"math"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/p-blackswan/mission-control/internal/board"
	"github.com/p-blackswan/mission-control/internal/models"
)

// TaskCreateTool handles the task_create MCP tool.
type TaskCreateTool struct {
	boards Boards
}

// NewTaskCreateTool creates a TaskCreateTool.
func NewTaskCreateTool(b Boards) *TaskCreateTool {
	return &TaskCreateTool{boards: b}
}

// Definition returns the MCP tool definition for task_create.
func (t *TaskCreateTool) Definition() mcp.Tool {
	return mcp.NewTool("task_create",
		mcp.WithDescription("Create a card on the tasks board. New cards start in To Do unless a status is given."),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Short task title"),
		),
		mcp.WithString("assignee",
			mcp.Required(),
			mcp.Description("Agent responsible for the task"),
			mcp.Enum(enumValues(models.Agents)...),
		),
		mcp.WithString("description",
			mcp.Description("Longer description"),
		),
		mcp.WithString("priority",
			mcp.Description("Priority (default: medium)"),
			mcp.Enum(enumValues(models.Priorities)...),
		),
		mcp.WithString("status",
			mcp.Description("Initial status (default: todo)"),
			mcp.Enum(enumValues(models.TaskStatuses)...),
		),
		mcp.WithString("tags",
			mcp.Description("Comma-separated tags"),
		),
	)
}

// Handle processes the task_create tool call.
func (t *TaskCreateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if t.boards.Tasks == nil {
		return mcp.NewToolResultError("tasks board not available"), nil
	}
	d := models.TaskDraft{
		Title:       req.GetString("title", ""),
		Description: req.GetString("description", ""),
		Assignee:    models.Agent(req.GetString("assignee", "")),
		Status:      models.TaskStatus(req.GetString("status", "")),
		Priority:    models.Priority(req.GetString("priority", "")),
		Tags:        listArg(req, "tags"),
	}
	tk, err := t.boards.Tasks.HandleCreate(ctx, d)
	if tk == nil {
		return resultFor(err, ""), nil
	}
	return resultFor(err, fmt.Sprintf("Task created: %q\nID: %s\nStatus: %s", tk.Title, tk.ID, tk.Status)), nil
}

// TaskMoveTool handles the task_move MCP tool.
type TaskMoveTool struct {
	boards Boards
}

// NewTaskMoveTool creates a TaskMoveTool.
func NewTaskMoveTool(b Boards) *TaskMoveTool {
	return &TaskMoveTool{boards: b}
}

// Definition returns the MCP tool definition for task_move.
func (t *TaskMoveTool) Definition() mcp.Tool {
	return mcp.NewTool("task_move",
		mcp.WithDescription("Move a task to another status column, the same way dragging a card does."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Task ID"),
		),
		mcp.WithString("status",
			mcp.Required(),
			mcp.Description("Destination status"),
			mcp.Enum(enumValues(models.TaskStatuses)...),
		),
		mcp.WithNumber("index",
			mcp.Description("Position in the destination column, 0 is the top (default: bottom)"),
		),
	)
}

// Handle processes the task_move tool call.
func (t *TaskMoveTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if t.boards.Tasks == nil {
		return mcp.NewToolResultError("tasks board not available"), nil
	}
	id := req.GetString("id", "")
	status := models.TaskStatus(req.GetString("status", ""))
	if id == "" {
		return mcp.NewToolResultError("'id' is required"), nil
	}
	if !status.Valid() {
		return mcp.NewToolResultError(fmt.Sprintf("unknown status %q", status)), nil
	}

	cur, ok := t.boards.Tasks.Store().Get(id)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("task %s not found", id)), nil
	}
	moved, err := t.boards.Tasks.HandleDragComplete(ctx, board.DropEvent{
		DraggableID: id,
		Source:      board.Location{DroppableID: string(cur.Status)},
		Destination: &board.Location{DroppableID: string(status), Index: intArg(req, "index", math.MaxInt32)},
	})
	if err == nil && !moved {
		return mcp.NewToolResultText(fmt.Sprintf("Task %s is already there; nothing changed.", id)), nil
	}
	return resultFor(err, fmt.Sprintf("Task %s moved: %s → %s", id, cur.Status, status)), nil
}
