// Package mcptools exposes the boards to agents as MCP tools. Every tool
// goes through the same controllers as the HTTP API, so agent changes are
// validated, persisted and recorded in the activity log like user changes.
package mcptools

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/p-blackswan/mission-control/internal/board"
	"github.com/p-blackswan/mission-control/internal/memories"
	"github.com/p-blackswan/mission-control/internal/models"
)

// Boards are the collaborators the tools act on.
type Boards struct {
	Tasks    *board.Controller[*models.Task, models.TaskStatus]
	Content  *board.Controller[*models.ContentItem, models.ContentStage]
	Calendar *board.Controller[*models.CalendarEvent, models.EventStatus]
	Memories *memories.Service
	Clock    func() time.Time
}

func (b Boards) now() time.Time {
	if b.Clock == nil {
		return time.Now()
	}
	return b.Clock()
}

// NewServer creates the MCP server with every tool registered.
func NewServer(b Boards, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"mission-control",
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)

	view := NewBoardViewTool(b)
	s.AddTool(view.Definition(), view.Handle)

	create := NewTaskCreateTool(b)
	s.AddTool(create.Definition(), create.Handle)

	move := NewTaskMoveTool(b)
	s.AddTool(move.Definition(), move.Handle)

	save := NewMemorySaveTool(b)
	s.AddTool(save.Definition(), save.Handle)

	return s
}

// intArg extracts an integer argument from a tool request, returning
// defaultVal if the key is missing or not a number (JSON numbers are float64).
func intArg(req mcp.CallToolRequest, key string, defaultVal int) int {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return defaultVal
	}
	return int(v)
}

// listArg splits a comma-separated argument.
func listArg(req mcp.CallToolRequest, key string) []string {
	var out []string
	for _, part := range strings.Split(req.GetString(key, ""), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func enumValues[S ~string](values []S) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}

// resultFor turns a controller error into a tool result. A save failure
// still reports success with a note, since the change was applied.
func resultFor(err error, ok string) *mcp.CallToolResult {
	switch {
	case err == nil:
		return mcp.NewToolResultText(ok)
	case errors.Is(err, board.ErrPersist):
		return mcp.NewToolResultText(ok + "\nWarning: the change could not be saved and will be lost on restart.")
	}
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		return mcp.NewToolResultError(verr.Error())
	}
	return mcp.NewToolResultError(fmt.Sprintf("failed: %v", err))
}
