package router

import (
	"github.com/gofiber/fiber/v3"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"

	"github.com/Spunkeroo/scam-stream/internal/handler"
	"github.com/Spunkeroo/scam-stream/internal/middleware"
)

// Handlers holds all handler instances needed by the router.
type Handlers struct {
	Health   *handler.HealthHandler
	Feed     *handler.FeedHandler
	Database *handler.DatabaseHandler
	Report   *handler.ReportHandler
	Video    *handler.VideoHandler
	Alert    *handler.AlertHandler
	Stats    *handler.StatsHandler
}

// Setup configures the middleware stack and all API routes on the given Fiber app.
func Setup(app *fiber.App, h *Handlers, corsOrigins string) {
	// Middleware stack (order matters)
	app.Use(recoverer.New())
	app.Use(handler.MetricsMiddleware())
	app.Use(middleware.NewCORS(corsOrigins))

	// Probes and metrics sit outside client identity and rate limits.
	app.Get("/health/live", h.Health.Live)
	app.Get("/health/ready", h.Health.Ready)
	app.Get("/metrics", handler.MetricsHandler())

	api := app.Group("/api",
		middleware.NewRequestLogger(),
		middleware.NewClientIdentity(),
	)

	read := middleware.NewReadRateLimiter().Handler()
	vote := middleware.NewVoteRateLimiter().Handler()
	submit := middleware.NewSubmitRateLimiter().Handler()

	// Feed routes
	api.Get("/feed", read, h.Feed.List)
	api.Post("/feed/:id/vote", vote, h.Feed.Vote)

	// Database routes
	api.Get("/database", read, h.Database.List)
	api.Post("/database/sort", read, h.Database.Sort)
	api.Post("/database/:id/vote", vote, h.Database.Vote)

	// Community report routes
	api.Get("/reports", read, h.Report.List)
	api.Get("/reports/promoted", read, h.Report.Promoted)
	api.Post("/reports", submit, h.Report.Submit)
	api.Post("/reports/:id/vote", vote, h.Report.Vote)

	// Video vault routes
	api.Get("/videos", read, h.Video.Vault)
	api.Get("/videos/featured", read, h.Video.Featured)

	// Ticker and hero stats
	api.Get("/alerts", read, h.Alert.List)
	api.Get("/stats", read, h.Stats.GetStats)
}
