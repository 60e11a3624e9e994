package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Spunkeroo/scam-stream/internal/service"
)

type VideoHandler struct {
	svc *service.VideoService
}

func NewVideoHandler(svc *service.VideoService) *VideoHandler {
	return &VideoHandler{svc: svc}
}

// Vault handles GET /api/videos?category=&q=
func (h *VideoHandler) Vault(c fiber.Ctx) error {
	videos := h.svc.Vault(c.Query("category"), c.Query("q"))
	return c.JSON(fiber.Map{"videos": videos, "count": len(videos)})
}

// Featured handles GET /api/videos/featured
func (h *VideoHandler) Featured(c fiber.Ctx) error {
	return c.JSON(h.svc.Featured())
}
