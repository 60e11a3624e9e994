package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/Spunkeroo/scam-stream/internal/repository"
	"github.com/Spunkeroo/scam-stream/internal/service"
)

type HealthHandler struct {
	store   repository.KV
	backend string
	catalog *service.Catalog
	startAt time.Time
}

func NewHealthHandler(store repository.KV, backend string, catalog *service.Catalog) *HealthHandler {
	return &HealthHandler{
		store:   store,
		backend: backend,
		catalog: catalog,
		startAt: time.Now(),
	}
}

// Live handles GET /health/live (liveness check).
func (h *HealthHandler) Live(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// Ready handles GET /health/ready. Storage must answer;
// fixture state is reported but a failed fixture only empties its view.
func (h *HealthHandler) Ready(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 3*time.Second)
	defer cancel()

	checks := make(fiber.Map)
	overallStatus := "healthy"

	storage := checkStorage(ctx, h.store)
	storage["backend"] = h.backend
	checks["storage"] = storage
	if storage["status"] != "up" {
		overallStatus = "degraded"
	}

	fixtures := make(fiber.Map)
	for name, status := range h.catalog.Status() {
		fixtures[name] = string(status)
	}
	checks["fixtures"] = fixtures

	resp := fiber.Map{
		"status":         overallStatus,
		"checks":         checks,
		"uptime_seconds": int(time.Since(h.startAt).Seconds()),
		"version":        "1.0.0",
	}

	status := fiber.StatusOK
	if overallStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
	}

	return c.Status(status).JSON(resp)
}

func checkStorage(ctx context.Context, store repository.KV) fiber.Map {
	pinger, ok := store.(repository.Pinger)
	if !ok {
		return fiber.Map{"status": "up"}
	}

	start := time.Now()
	err := pinger.Ping(ctx)
	latency := time.Since(start).Milliseconds()

	if err != nil {
		return fiber.Map{
			"status":     "down",
			"latency_ms": latency,
			"error":      "connection failed",
		}
	}
	return fiber.Map{
		"status":     "up",
		"latency_ms": latency,
	}
}
