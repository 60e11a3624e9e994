package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Spunkeroo/scam-stream/internal/service"
)

type AlertHandler struct {
	svc *service.AlertService
}

func NewAlertHandler(svc *service.AlertService) *AlertHandler {
	return &AlertHandler{svc: svc}
}

// List handles GET /api/alerts
func (h *AlertHandler) List(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"alerts": h.svc.Ticker()})
}
