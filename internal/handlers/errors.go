package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"nihith303/interview-ace/internal/interview"
	"nihith303/interview-ace/internal/repositories"
)

// respondError maps domain errors to status codes. Only display-safe
// messages reach the client; wrapped causes are logged.
func respondError(c *fiber.Ctx, logger *slog.Logger, err error) error {
	var validationErr *interview.ValidationError
	var preconditionErr *interview.PreconditionError

	switch {
	case errors.As(err, &validationErr):
		body := fiber.Map{"error": validationErr.Reason}
		if validationErr.Field != "" {
			body["field"] = validationErr.Field
		}
		return c.Status(fiber.StatusBadRequest).JSON(body)
	case errors.As(err, &preconditionErr):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": preconditionErr.Error(),
		})
	case errors.Is(err, repositories.ErrSessionNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Session not found",
		})
	case errors.Is(err, repositories.ErrReportNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Report not found",
		})
	case errors.Is(err, repositories.ErrSessionConflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Session was updated by another request. Please try again.",
		})
	}

	logger.Error("request failed", "method", c.Method(), "path", c.Path(), "error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Internal server error",
	})
}
