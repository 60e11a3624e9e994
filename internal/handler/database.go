package handler

import (
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/Spunkeroo/scam-stream/internal/listing"
	"github.com/Spunkeroo/scam-stream/internal/middleware"
	"github.com/Spunkeroo/scam-stream/internal/model"
	"github.com/Spunkeroo/scam-stream/internal/service"
)

// MaxSearchLen bounds the database search query.
const MaxSearchLen = 100

type DatabaseHandler struct {
	svc *service.DatabaseService
}

func NewDatabaseHandler(svc *service.DatabaseService) *DatabaseHandler {
	return &DatabaseHandler{svc: svc}
}

// List handles GET /api/database?filter=&q=&sort=&dir=
func (h *DatabaseHandler) List(c fiber.Ctx) error {
	search := strings.TrimSpace(c.Query("q"))
	if len(search) > MaxSearchLen {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", "q must be at most 100 characters")
	}

	resp, err := h.svc.Table(c.Context(), middleware.ClientID(c), service.DatabaseQuery{
		Filter: c.Query("filter"),
		Search: search,
		Sort:   listing.SortKey(c.Query("sort")),
		Dir:    listing.Direction(c.Query("dir")),
	})
	if err != nil {
		return serviceError(c, err, "Failed to load database")
	}
	return c.JSON(resp)
}

// Sort handles POST /api/database/sort
func (h *DatabaseHandler) Sort(c fiber.Ctx) error {
	var req model.SortRequest
	if err := c.Bind().JSON(&req); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body")
	}

	state, err := h.svc.ToggleSort(c.Context(), middleware.ClientID(c), listing.SortKey(strings.TrimSpace(req.Column)))
	if err != nil {
		return serviceError(c, err, "Failed to update sort")
	}
	return c.JSON(model.SortState{Column: string(state.Key), Dir: string(state.Dir)})
}

// Vote handles POST /api/database/:id/vote
func (h *DatabaseHandler) Vote(c fiber.Ctx) error {
	id, ok, err := parseItemID(c)
	if !ok {
		return err
	}
	dir, ok, err := parseVote(c)
	if !ok {
		return err
	}

	resp, err := h.svc.Vote(c.Context(), middleware.ClientID(c), id, dir)
	if err != nil {
		return serviceError(c, err, "Failed to record vote")
	}
	RecordVote(service.NamespaceDB, dir, resp.Action)
	return c.JSON(resp)
}
