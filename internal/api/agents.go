package api

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/p-blackswan/mission-control/internal/upstream"
)

// AgentDirectory is the read-only agents collaborator.
type AgentDirectory interface {
	Enabled() bool
	ListAgents(ctx context.Context) (*upstream.AgentList, error)
	AgentFiles(ctx context.Context, id string) (*upstream.AgentFiles, error)
}

func (s *Server) agentsDisabled() bool {
	return s.deps.Agents == nil || !s.deps.Agents.Enabled()
}

// listAgents handles GET /api/v1/agents.
func (s *Server) listAgents(c *fiber.Ctx) error {
	if s.agentsDisabled() {
		return problemResponse(c, fiber.StatusServiceUnavailable, "upstream_disabled", "Service Unavailable",
			"No agents service is configured")
	}
	list, err := s.deps.Agents.ListAgents(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	if list.Agents == nil {
		list.Agents = []upstream.Agent{}
	}
	return c.JSON(list)
}

// agentFiles handles GET /api/v1/agents/:id/files.
func (s *Server) agentFiles(c *fiber.Ctx) error {
	if s.agentsDisabled() {
		return problemResponse(c, fiber.StatusServiceUnavailable, "upstream_disabled", "Service Unavailable",
			"No agents service is configured")
	}
	files, err := s.deps.Agents.AgentFiles(c.UserContext(), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(files)
}
