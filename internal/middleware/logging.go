package middleware

import (
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Spunkeroo/scam-stream/pkg/hash"
)

// Logger is the package-level zerolog logger used throughout the application.
var Logger zerolog.Logger

// InitLogger sets up structured JSON logging and installs it as the global
// zerolog logger used by services and workers.
// Level is parsed from the given string (e.g. "debug", "info", "warn", "error").
func InitLogger(level, service string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.DurationFieldUnit = time.Millisecond
	zerolog.DurationFieldInteger = true

	Logger = zerolog.New(os.Stdout).With().
		Timestamp().
		Str("service", service).
		Logger()
	log.Logger = Logger
}

// sanitizePath replaces the item id of vote routes with a placeholder so log
// lines group by route.
func sanitizePath(path string) string {
	parts := strings.Split(path, "/")
	for i := 1; i < len(parts)-1; i++ {
		if parts[i+1] != "vote" {
			continue
		}
		switch parts[i-1] {
		case "feed", "database", "reports":
			parts[i] = ":id"
		}
	}
	return strings.Join(parts, "/")
}

// NewRequestLogger returns a Fiber middleware that logs each request as
// structured JSON. Raw IPs are hashed and item ids are folded out of paths.
func NewRequestLogger() fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start)
		status := c.Response().StatusCode()

		evt := Logger.Info()
		if status >= 500 {
			evt = Logger.Error()
		} else if status >= 400 {
			evt = Logger.Warn()
		}

		if id := ClientID(c); id != "" {
			evt = evt.Str("client", hash.Short(id, 12))
		}

		evt.
			Str("method", c.Method()).
			Str("path", sanitizePath(c.Path())).
			Int("status", status).
			Dur("duration_ms", duration).
			Str("ip_hash", hash.Short(c.IP(), 12)).
			Int("bytes_sent", len(c.Response().Body())).
			Msg("request")

		return err
	}
}
