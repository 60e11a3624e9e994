package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Spunkeroo/scam-stream/internal/middleware"
	"github.com/Spunkeroo/scam-stream/internal/model"
)

// parseVote reads and validates the {direction} body of a vote request.
// On failure it has already written the error response and returns ok=false.
func parseVote(c fiber.Ctx) (dir model.Direction, ok bool, err error) {
	var req model.VoteRequest
	if err := c.Bind().JSON(&req); err != nil {
		return "", false, middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body")
	}
	dir, errMsg := middleware.ValidateDirection(req.Direction)
	if errMsg != "" {
		return "", false, middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_DIRECTION", errMsg)
	}
	return dir, true, nil
}

// parseItemID reads the :id path parameter of a record vote.
func parseItemID(c fiber.Ctx) (model.RecordID, bool, error) {
	id, errMsg := middleware.ValidateItemID(c.Params("id"))
	if errMsg != "" {
		return "", false, middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}
	return model.RecordID(id), true, nil
}
