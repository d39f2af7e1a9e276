package api

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/p-blackswan/mission-control/internal/board"
	"github.com/p-blackswan/mission-control/internal/models"
)

// boardHandlers serve one status-bucketed kind. D is the kind's draft type.
type boardHandlers[T board.Bucketed[T, S], S ~string, D board.Draft[T]] struct {
	ctrl *board.Controller[T, S]
	now  func() time.Time
}

func mountBoard[T board.Bucketed[T, S], S ~string, D board.Draft[T]](r fiber.Router, ctrl *board.Controller[T, S], now func() time.Time) {
	h := &boardHandlers[T, S, D]{ctrl: ctrl, now: now}
	r.Get("", h.view)
	r.Post("", h.create)
	r.Post("/drop", h.drop)
	r.Post("/bulk", h.bulk)
	r.Get("/:id", h.get)
	r.Put("/:id", h.edit)
	r.Delete("/:id", h.remove)
}

// view handles GET /api/v1/{kind}.
func (h *boardHandlers[T, S, D]) view(c *fiber.Ctx) error {
	crit, err := criteriaFromQuery(c)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(BoardResponse[T, S]{
		Kind:      h.ctrl.Kind().Name,
		Filtering: crit.Active(),
		Criteria:  crit,
		View:      h.ctrl.View(crit, h.now()),
	})
}

// create handles POST /api/v1/{kind}.
func (h *boardHandlers[T, S, D]) create(c *fiber.Ctx) error {
	var d D
	if err := c.BodyParser(&d); err != nil {
		return badBody(c, err)
	}
	rec, err := h.ctrl.HandleCreate(c.UserContext(), d)
	warning, err := splitPersist(err)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(RecordResponse[T]{Applied: true, Record: rec, Warning: warning})
}

// get handles GET /api/v1/{kind}/:id.
func (h *boardHandlers[T, S, D]) get(c *fiber.Ctx) error {
	id := c.Params("id")
	rec, ok := h.ctrl.Store().Get(id)
	if !ok {
		return problemResponse(c, fiber.StatusNotFound, "not_found", "Not Found",
			h.ctrl.Kind().Name+" record not found: "+id)
	}
	return c.JSON(rec)
}

// edit handles PUT /api/v1/{kind}/:id.
func (h *boardHandlers[T, S, D]) edit(c *fiber.Ctx) error {
	var d D
	if err := c.BodyParser(&d); err != nil {
		return badBody(c, err)
	}
	rec, applied, err := h.ctrl.HandleEdit(c.UserContext(), c.Params("id"), d)
	warning, err := splitPersist(err)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(RecordResponse[T]{Applied: applied, Record: rec, Warning: warning})
}

// remove handles DELETE /api/v1/{kind}/:id.
func (h *boardHandlers[T, S, D]) remove(c *fiber.Ctx) error {
	applied, err := h.ctrl.HandleDelete(c.UserContext(), c.Params("id"))
	warning, err := splitPersist(err)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(MutationResponse{Applied: applied, Warning: warning})
}

// drop handles POST /api/v1/{kind}/drop with the outcome of a drag. The
// board's filter query params describe the view the drop was made on.
func (h *boardHandlers[T, S, D]) drop(c *fiber.Ctx) error {
	var ev board.DropEvent
	if err := c.BodyParser(&ev); err != nil {
		return badBody(c, err)
	}
	crit, err := criteriaFromQuery(c)
	if err != nil {
		return fail(c, err)
	}
	if crit.Active() {
		ev.Criteria = crit
	}
	applied, err := h.ctrl.HandleDragComplete(c.UserContext(), ev)
	warning, err := splitPersist(err)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(MutationResponse{Applied: applied, Warning: warning})
}

// bulk handles POST /api/v1/{kind}/bulk.
func (h *boardHandlers[T, S, D]) bulk(c *fiber.Ctx) error {
	var req BulkRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if len(req.IDs) == 0 {
		return fail(c, &models.ValidationError{Field: "ids", Reason: "required"})
	}

	ctx := c.UserContext()
	var (
		n   int
		err error
	)
	action := strings.ToLower(strings.TrimSpace(req.Action))
	switch action {
	case "status":
		n, err = h.ctrl.HandleBulkStatusChange(ctx, req.IDs, S(req.Status))
	case "priority":
		n, err = h.ctrl.HandleBulkPriorityChange(ctx, req.IDs, models.Priority(req.Priority))
	case "delete":
		n, err = h.ctrl.HandleBulkDelete(ctx, req.IDs)
	default:
		return fail(c, &models.ValidationError{Field: "action", Reason: "expected status, priority or delete"})
	}
	warning, err := splitPersist(err)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(BulkResponse{Action: action, Affected: n, Warning: warning})
}
