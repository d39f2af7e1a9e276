package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/p-blackswan/mission-control/internal/board"
	"github.com/p-blackswan/mission-control/internal/models"
)

// criteriaFromQuery reads filter criteria from the query string. "all" is
// the same as an absent filter.
func criteriaFromQuery(c *fiber.Ctx) (board.Criteria, error) {
	r, err := board.ParseRange(c.Query("range"))
	if err != nil {
		return board.Criteria{}, &models.ValidationError{Field: "range", Reason: "expected all, today, week or month"}
	}
	crit := board.Criteria{
		Search:     c.Query("search"),
		Assignee:   allToEmpty(c.Query("assignee")),
		Category:   allToEmpty(c.Query("category")),
		Importance: allToEmpty(c.Query("importance")),
		Range:      r,
	}
	for _, a := range strings.Split(c.Query("action"), ",") {
		if a = strings.TrimSpace(a); a != "" && a != "all" {
			crit.Actions = append(crit.Actions, a)
		}
	}
	return crit, nil
}

func allToEmpty(v string) string {
	v = strings.TrimSpace(v)
	if strings.EqualFold(v, "all") {
		return ""
	}
	return v
}
