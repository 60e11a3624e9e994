package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Spunkeroo/scam-stream/internal/listing"
	"github.com/Spunkeroo/scam-stream/internal/middleware"
	"github.com/Spunkeroo/scam-stream/internal/service"
)

type FeedHandler struct {
	svc *service.FeedService
}

func NewFeedHandler(svc *service.FeedService) *FeedHandler {
	return &FeedHandler{svc: svc}
}

// List handles GET /api/feed?filter=&sort=
func (h *FeedHandler) List(c fiber.Ctx) error {
	resp, err := h.svc.Feed(c.Context(), middleware.ClientID(c), c.Query("filter"), listing.SortKey(c.Query("sort")))
	if err != nil {
		return serviceError(c, err, "Failed to load feed")
	}
	return c.JSON(resp)
}

// Vote handles POST /api/feed/:id/vote
func (h *FeedHandler) Vote(c fiber.Ctx) error {
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
	RecordVote(service.NamespaceScam, dir, resp.Action)
	return c.JSON(resp)
}
