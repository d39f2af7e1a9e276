package api

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/p-blackswan/mission-control/internal/health"
)

// liveness handles GET /healthz.
func (s *Server) liveness(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// readiness handles GET /readyz.
func (s *Server) readiness(c *fiber.Ctx) error {
	if s.deps.Checker != nil && !s.deps.Checker.IsReady(c.UserContext()) {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "not_ready",
		})
	}
	return c.JSON(fiber.Map{"status": "ready"})
}

// healthDetail handles GET /api/v1/health.
func (s *Server) healthDetail(c *fiber.Ctx) error {
	resp := HealthDetailResponse{
		Uptime:  s.now().Sub(s.started).Round(time.Second).String(),
		Version: s.config.Version,
		Records: s.recordCounts(),
	}
	if s.deps.Checker != nil {
		resp.Report = s.deps.Checker.RunAll(c.UserContext())
	} else {
		resp.Report.Status = health.StatusOK
	}
	return c.JSON(resp)
}

func (s *Server) recordCounts() map[string]int {
	out := make(map[string]int, 5)
	if s.deps.Tasks != nil {
		out["tasks"] = s.deps.Tasks.Store().Len()
	}
	if s.deps.Content != nil {
		out["content"] = s.deps.Content.Store().Len()
	}
	if s.deps.Calendar != nil {
		out["calendar"] = s.deps.Calendar.Store().Len()
	}
	if s.deps.Memories != nil {
		out["memories"] = s.deps.Memories.Store().Len()
	}
	if s.deps.Activity != nil {
		out["activity"] = s.deps.Activity.Store().Len()
	}
	return out
}

// getConfig handles GET /api/v1/config.
func (s *Server) getConfig(c *fiber.Ctx) error {
	return c.JSON(s.config.Public)
}

// notifications handles GET /api/v1/notifications.
func (s *Server) notifications(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)
	since := int64(c.QueryInt("since", 0))
	return c.JSON(fiber.Map{"notifications": s.deps.Feed.Recent(limit, since)})
}
