package handler

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"

	"github.com/Spunkeroo/scam-stream/internal/model"
)

// Metrics holds all Prometheus collectors for the service. The collectors
// are nil until InitMetrics runs; the Record helpers are no-ops until then.
var Metrics = struct {
	VotesTotal       *prometheus.CounterVec
	SubmissionsTotal *prometheus.CounterVec
	FixtureLoads     *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge
	CatalogScams     prometheus.Gauge
	CommunityReports prometheus.Gauge
	PromotedReports  prometheus.Gauge
	DBPoolActive     prometheus.GaugeFunc
	DBPoolIdle       prometheus.GaugeFunc
}{}

// InitMetrics registers all Prometheus metrics. Call once at startup.
// pool is nil unless storage is backed by PostgreSQL.
func InitMetrics(pool *pgxpool.Pool) {
	Metrics.VotesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scamstream_votes_total",
			Help: "Total votes cast, by ledger namespace, direction and action.",
		},
		[]string{"namespace", "direction", "action"},
	)

	Metrics.SubmissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scamstream_submissions_total",
			Help: "Community report submissions, by result.",
		},
		[]string{"result"},
	)

	Metrics.FixtureLoads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scamstream_fixture_loads_total",
			Help: "Fixture load attempts, by fixture and result.",
		},
		[]string{"fixture", "result"},
	)

	Metrics.RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scamstream_api_request_duration_seconds",
			Help:    "HTTP request duration in seconds, by endpoint and method.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status"},
	)

	Metrics.RequestsInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "scamstream_requests_in_flight",
		Help: "Number of HTTP requests currently being served.",
	})

	Metrics.CatalogScams = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "scamstream_catalog_scams",
		Help: "Scam records loaded from the fixture.",
	})

	Metrics.CommunityReports = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "scamstream_community_reports",
		Help: "Stored community reports.",
	})

	Metrics.PromotedReports = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "scamstream_promoted_reports",
		Help: "Community reports currently promoted into the feed.",
	})

	if pool != nil {
		Metrics.DBPoolActive = prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "scamstream_db_connection_pool_active",
				Help: "Number of active database connections.",
			},
			func() float64 {
				return float64(pool.Stat().AcquiredConns())
			},
		)

		Metrics.DBPoolIdle = prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "scamstream_db_connection_pool_idle",
				Help: "Number of idle database connections.",
			},
			func() float64 {
				return float64(pool.Stat().IdleConns())
			},
		)

		prometheus.MustRegister(Metrics.DBPoolActive)
		prometheus.MustRegister(Metrics.DBPoolIdle)
	}

	prometheus.MustRegister(
		Metrics.VotesTotal,
		Metrics.SubmissionsTotal,
		Metrics.FixtureLoads,
		Metrics.RequestDuration,
		Metrics.RequestsInFlight,
		Metrics.CatalogScams,
		Metrics.CommunityReports,
		Metrics.PromotedReports,
	)
}

// RecordVote counts one vote.
func RecordVote(namespace string, dir model.Direction, action model.VoteAction) {
	if Metrics.VotesTotal == nil {
		return
	}
	Metrics.VotesTotal.WithLabelValues(namespace, string(dir), string(action)).Inc()
}

// RecordSubmission counts one report submission with result "accepted" or "rejected".
func RecordSubmission(result string) {
	if Metrics.SubmissionsTotal == nil {
		return
	}
	Metrics.SubmissionsTotal.WithLabelValues(result).Inc()
}

// RecordFixtureLoad counts one fixture load attempt. It matches the catalog's
// load callback.
func RecordFixtureLoad(fixture string, err error) {
	if Metrics.FixtureLoads == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	Metrics.FixtureLoads.WithLabelValues(fixture, result).Inc()
}

// PublishStats updates the catalog and report gauges. It matches the stats
// worker's publish callback.
func PublishStats(stats model.StatsResponse) {
	if Metrics.CatalogScams == nil {
		return
	}
	Metrics.CatalogScams.Set(float64(stats.Scams))
	Metrics.CommunityReports.Set(float64(stats.Reports))
	Metrics.PromotedReports.Set(float64(stats.Promoted))
}

// MetricsMiddleware records request duration and in-flight count for Prometheus.
func MetricsMiddleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		// Don't instrument the /metrics endpoint itself
		if c.Path() == "/metrics" || Metrics.RequestDuration == nil {
			return c.Next()
		}

		// Copy path and method into owned strings BEFORE c.Next(); Fiber
		// returns slices backed by the fasthttp buffer which can be reused
		// or overwritten by handlers (especially fasthttpadaptor).
		path := string([]byte(c.Path()))
		method := string([]byte(c.Method()))
		endpoint := sanitizeEndpoint(path)

		Metrics.RequestsInFlight.Inc()
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())

		Metrics.RequestDuration.WithLabelValues(endpoint, method, status).Observe(duration)
		Metrics.RequestsInFlight.Dec()

		return err
	}
}

// knownEndpoints are the routes recorded under their own label. Anything else
// is recorded as "other".
var knownEndpoints = map[string]bool{
	"/health/live":          true,
	"/health/ready":         true,
	"/metrics":              true,
	"/api/feed":             true,
	"/api/database":         true,
	"/api/database/sort":    true,
	"/api/reports":          true,
	"/api/reports/promoted": true,
	"/api/videos":           true,
	"/api/videos/featured":  true,
	"/api/alerts":           true,
	"/api/stats":            true,
}

// sanitizeEndpoint normalizes paths to avoid cardinality explosion.
func sanitizeEndpoint(path string) string {
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	if knownEndpoints[path] {
		return path
	}
	for _, prefix := range []string{"/api/feed/", "/api/database/", "/api/reports/"} {
		rest, ok := strings.CutPrefix(path, prefix)
		if !ok {
			continue
		}
		if id, tail, found := strings.Cut(rest, "/"); found && tail == "vote" && id != "" {
			return prefix + ":id/vote"
		}
	}
	return "other"
}

// MetricsHandler serves the Prometheus /metrics endpoint via Fiber.
func MetricsHandler() fiber.Handler {
	httpHandler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
	return func(c fiber.Ctx) error {
		httpHandler(c.RequestCtx())
		return nil
	}
}
