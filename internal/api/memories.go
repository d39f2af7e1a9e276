package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/p-blackswan/mission-control/internal/memories"
	"github.com/p-blackswan/mission-control/internal/models"
)

// listMemories handles GET /api/v1/memories.
func (s *Server) listMemories(c *fiber.Ctx) error {
	crit, err := criteriaFromQuery(c)
	if err != nil {
		return fail(c, err)
	}
	entries := s.deps.Memories.List(crit, s.now())
	return c.JSON(MemoryListResponse{
		Memories:  entries,
		Stats:     memories.Summarize(entries),
		Filtering: crit.Active(),
	})
}

// createMemory handles POST /api/v1/memories.
func (s *Server) createMemory(c *fiber.Ctx) error {
	var d models.MemoryDraft
	if err := c.BodyParser(&d); err != nil {
		return badBody(c, err)
	}
	entry, err := s.deps.Memories.Create(c.UserContext(), d)
	warning, err := splitPersist(err)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(RecordResponse[*models.MemoryEntry]{Applied: true, Record: entry, Warning: warning})
}

// editMemory handles PUT /api/v1/memories/:id.
func (s *Server) editMemory(c *fiber.Ctx) error {
	var d models.MemoryDraft
	if err := c.BodyParser(&d); err != nil {
		return badBody(c, err)
	}
	entry, applied, err := s.deps.Memories.Edit(c.UserContext(), c.Params("id"), d)
	warning, err := splitPersist(err)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(RecordResponse[*models.MemoryEntry]{Applied: applied, Record: entry, Warning: warning})
}

// deleteMemory handles DELETE /api/v1/memories/:id.
func (s *Server) deleteMemory(c *fiber.Ctx) error {
	applied, err := s.deps.Memories.Delete(c.UserContext(), c.Params("id"))
	warning, err := splitPersist(err)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(MutationResponse{Applied: applied, Warning: warning})
}

// pinMemory handles POST /api/v1/memories/:id/pin.
func (s *Server) pinMemory(c *fiber.Ctx) error {
	entry, applied, err := s.deps.Memories.TogglePin(c.UserContext(), c.Params("id"))
	warning, err := splitPersist(err)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(RecordResponse[*models.MemoryEntry]{Applied: applied, Record: entry, Warning: warning})
}
