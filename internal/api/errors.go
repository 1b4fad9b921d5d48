package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"FastNotes/internal/database"
	"FastNotes/internal/notes"
)

// Status maps an error to the HTTP status and the detail shown to the
// client. Storage failures get a generic detail.
func Status(err error) (int, string) {
	var validationErr *notes.ValidationError
	var refErr *database.ReferenceError
	var fiberErr *fiber.Error

	switch {
	case errors.As(err, &validationErr):
		return fiber.StatusBadRequest, validationErr.Error()
	case errors.As(err, &refErr):
		return fiber.StatusBadRequest, refErr.Error()
	case errors.Is(err, database.ErrNotFound):
		return fiber.StatusNotFound, "Note not found"
	case errors.As(err, &fiberErr):
		return fiberErr.Code, fiberErr.Message
	}
	return fiber.StatusInternalServerError, "Internal server error"
}

// ErrorHandler renders every error returned by a handler as
// {"detail": "..."}.
func ErrorHandler(log zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status, detail := Status(err)
		if status >= fiber.StatusInternalServerError {
			log.Error().Err(err).
				Str("method", c.Method()).
				Str("path", c.Path()).
				Msg("request failed")
		}
		return c.Status(status).JSON(fiber.Map{"detail": detail})
	}
}
