package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/p-blackswan/mission-control/internal/activity"
)

// listActivity handles GET /api/v1/activity.
func (s *Server) listActivity(c *fiber.Ctx) error {
	crit, err := criteriaFromQuery(c)
	if err != nil {
		return fail(c, err)
	}
	items := s.deps.Activity.List(crit, s.now())
	summary := activity.Summarize(items)
	if limit := c.QueryInt("limit", 0); limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return c.JSON(ActivityListResponse{Activity: items, Summary: summary})
}

// exportActivity handles GET /api/v1/activity/export. The body is a dated
// JSON attachment of the entries matching the query.
func (s *Server) exportActivity(c *fiber.Ctx) error {
	crit, err := criteriaFromQuery(c)
	if err != nil {
		return fail(c, err)
	}
	name, raw, err := s.deps.Activity.Export(crit, s.now())
	if err != nil {
		return err
	}
	c.Attachment(name)
	return c.Send(raw)
}

// clearActivity handles DELETE /api/v1/activity?confirm=true.
func (s *Server) clearActivity(c *fiber.Ctx) error {
	n, err := s.deps.Activity.Clear(c.UserContext(), c.QueryBool("confirm", false))
	warning, err := splitPersist(err)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(ClearResponse{Removed: n, Warning: warning})
}
