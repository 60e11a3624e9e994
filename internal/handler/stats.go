package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Spunkeroo/scam-stream/internal/service"
)

type StatsHandler struct {
	worker *service.StatsWorker
}

func NewStatsHandler(worker *service.StatsWorker) *StatsHandler {
	return &StatsHandler{worker: worker}
}

// GetStats handles GET /api/stats
func (h *StatsHandler) GetStats(c fiber.Ctx) error {
	stats, err := h.worker.Latest(c.Context())
	if err != nil {
		return serviceError(c, err, "Failed to fetch statistics")
	}
	return c.JSON(stats)
}
