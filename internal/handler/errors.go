package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"

	"github.com/Spunkeroo/scam-stream/internal/middleware"
	"github.com/Spunkeroo/scam-stream/internal/service"
)

// serviceError maps a service error to the API error envelope. Unknown errors
// are logged and reported as 500 with fallback as the message.
func serviceError(c fiber.Ctx, err error, fallback string) error {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, ve.Code, ve.Message)
	case errors.Is(err, service.ErrNotFound):
		return middleware.ErrorResponse(c, fiber.StatusNotFound, "NOT_FOUND", "Item not found")
	case errors.Is(err, service.ErrReportNotFound):
		return middleware.ErrorResponse(c, fiber.StatusNotFound, "NOT_FOUND", "Report not found")
	case errors.Is(err, service.ErrInvalidDirection):
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_DIRECTION", err.Error())
	case errors.Is(err, service.ErrInvalidSort):
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_SORT", err.Error())
	}

	log.Error().Err(err).Str("path", c.Path()).Msg(fallback)
	return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", fallback)
}
