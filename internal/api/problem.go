package api

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/p-blackswan/mission-control/internal/board"
	perrors "github.com/p-blackswan/mission-control/internal/errors"
	"github.com/p-blackswan/mission-control/internal/models"
)

// ProblemDetail follows RFC 7807 for error responses.
type ProblemDetail struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
	Field    string `json:"field,omitempty"`
}

func problemResponse(c *fiber.Ctx, status int, errType, title, detail string) error {
	return c.Status(status).JSON(ProblemDetail{
		Type:     errType,
		Title:    title,
		Status:   status,
		Detail:   detail,
		Instance: c.Path(),
	})
}

const persistWarning = "Change applied but could not be saved; it will be lost on restart"

// splitPersist separates a save failure, which still leaves the change
// applied, from an error that aborted the operation.
func splitPersist(err error) (warning string, hard error) {
	if err == nil {
		return "", nil
	}
	if errors.Is(err, board.ErrPersist) {
		return persistWarning, nil
	}
	return "", err
}

// fail maps domain errors to problem responses. Anything it does not
// recognize goes to the error handler as a 500.
func fail(c *fiber.Ctx, err error) error {
	var (
		verr   *models.ValidationError
		apiErr *perrors.APIError
	)
	switch {
	case errors.As(err, &verr):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(ProblemDetail{
			Type:     "validation_failed",
			Title:    "Unprocessable Entity",
			Status:   fiber.StatusUnprocessableEntity,
			Detail:   verr.Error(),
			Instance: c.Path(),
			Field:    verr.Field,
		})
	case errors.Is(err, perrors.ErrInvalidInput):
		return problemResponse(c, fiber.StatusUnprocessableEntity, "validation_failed", "Unprocessable Entity", err.Error())
	case errors.Is(err, perrors.ErrConfirmationRequired):
		return problemResponse(c, fiber.StatusConflict, "confirmation_required", "Conflict",
			"This action is destructive; repeat it with confirm=true")
	case errors.Is(err, board.ErrUnsupported):
		return problemResponse(c, fiber.StatusBadRequest, "unsupported", "Bad Request", err.Error())
	case errors.Is(err, board.ErrDuplicateID):
		return problemResponse(c, fiber.StatusConflict, "duplicate_id", "Conflict", err.Error())
	case errors.Is(err, perrors.ErrNotFound):
		return problemResponse(c, fiber.StatusNotFound, "not_found", "Not Found", err.Error())
	case errors.Is(err, perrors.ErrUnavailable):
		return problemResponse(c, fiber.StatusServiceUnavailable, "upstream_unavailable", "Service Unavailable", err.Error())
	case errors.Is(err, perrors.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return problemResponse(c, fiber.StatusGatewayTimeout, "upstream_timeout", "Gateway Timeout", err.Error())
	case errors.As(err, &apiErr):
		return problemResponse(c, fiber.StatusBadGateway, "upstream_error", "Bad Gateway", apiErr.Error())
	}
	return err
}

func badBody(c *fiber.Ctx, err error) error {
	return problemResponse(c, fiber.StatusBadRequest, "invalid_body", "Bad Request",
		"Invalid request body: "+err.Error())
}
