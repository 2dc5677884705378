package http

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/naijafloodwatch/backend/internal/domain"
)

// ErrorHandler renders every error as {"error": true, "message": ...}.
func ErrorHandler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code, message := statusFor(err)
		if code >= fiber.StatusInternalServerError {
			logger.Error("request failed",
				"method", c.Method(),
				"path", c.Path(),
				"status", code,
				"error", err,
			)
		}

		return c.Status(code).JSON(fiber.Map{
			"error":   true,
			"message": message,
		})
	}
}

func statusFor(err error) (int, string) {
	var (
		fiberErr *fiber.Error
		fetchErr *domain.FetchError
		loadErr  *domain.LoadError
	)

	switch {
	case errors.As(err, &fiberErr):
		return fiberErr.Code, fiberErr.Message
	case errors.As(err, &fetchErr):
		return fiber.StatusBadGateway, "Failed to fetch discharge data: " + fetchErr.Error()
	case errors.As(err, &loadErr):
		return fiber.StatusServiceUnavailable, "Static data unavailable: " + loadErr.Error()
	case errors.Is(err, domain.ErrAreaNotFound), errors.Is(err, domain.ErrNoChart):
		return fiber.StatusNotFound, err.Error()
	case errors.Is(err, domain.ErrNoSelection),
		errors.Is(err, domain.ErrDateOutOfRange),
		errors.Is(err, domain.ErrInvalidMode),
		errors.Is(err, domain.ErrInvalidCoordinates):
		return fiber.StatusBadRequest, err.Error()
	}
	return fiber.StatusInternalServerError, "Internal Server Error"
}
