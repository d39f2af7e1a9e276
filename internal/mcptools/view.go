package mcptools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/p-blackswan/mission-control/internal/board"
)

// BoardViewTool handles the board_view MCP tool.
type BoardViewTool struct {
	boards Boards
}

// NewBoardViewTool creates a BoardViewTool.
func NewBoardViewTool(b Boards) *BoardViewTool {
	return &BoardViewTool{boards: b}
}

// Definition returns the MCP tool definition for board_view.
func (t *BoardViewTool) Definition() mcp.Tool {
	return mcp.NewTool("board_view",
		mcp.WithDescription("Show a Mission Control board grouped by status, with completion stats. Filters combine."),
		mcp.WithString("board",
			mcp.Required(),
			mcp.Description("Which board to show"),
			mcp.Enum("tasks", "content", "calendar"),
		),
		mcp.WithString("search",
			mcp.Description("Case-insensitive text match on title, description and tags"),
		),
		mcp.WithString("assignee",
			mcp.Description("Only cards assigned to this agent"),
		),
		mcp.WithString("range",
			mcp.Description("Only cards updated in this window"),
			mcp.Enum("all", "today", "week", "month"),
		),
	)
}

// Handle processes the board_view tool call.
func (t *BoardViewTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	r, err := board.ParseRange(req.GetString("range", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	crit := board.Criteria{
		Search:   req.GetString("search", ""),
		Assignee: req.GetString("assignee", ""),
		Range:    r,
	}
	now := t.boards.now()

	switch name := req.GetString("board", ""); name {
	case "tasks":
		return renderBoard(t.boards.Tasks, crit, now)
	case "content":
		return renderBoard(t.boards.Content, crit, now)
	case "calendar":
		return renderBoard(t.boards.Calendar, crit, now)
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown board %q: expected tasks, content or calendar", name)), nil
	}
}

func renderBoard[T board.Bucketed[T, S], S ~string](ctrl *board.Controller[T, S], crit board.Criteria, now time.Time) (*mcp.CallToolResult, error) {
	if ctrl == nil {
		return mcp.NewToolResultError("board not available"), nil
	}
	v := ctrl.View(crit, now)

	var sb strings.Builder
	fmt.Fprintf(&sb, "## %s (%d)\n\n", ctrl.Kind().Name, v.Stats.Total)
	fmt.Fprintf(&sb, "- **Completion**: %d%%\n", v.Stats.CompletionRate)
	if v.Stats.TopAssignee != "" {
		fmt.Fprintf(&sb, "- **Busiest**: %s\n", v.Stats.TopAssignee)
	}
	for _, col := range v.Columns {
		fmt.Fprintf(&sb, "\n### %s (%d)\n", col.Label, len(col.Items))
		for _, rec := range col.Items {
			title := rec.Meta().ID
			if l, ok := any(rec).(interface{ Label() string }); ok {
				title = l.Label()
			}
			line := fmt.Sprintf("- %s `%s`", title, rec.Meta().ID)
			if a := rec.Facets().Assignee; a != "" {
				line += " · " + a
			}
			sb.WriteString(line + "\n")
		}
	}
	return mcp.NewToolResultText(sb.String()), nil
}
