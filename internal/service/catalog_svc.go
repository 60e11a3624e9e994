package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/valyala/fasthttp"

	"github.com/Spunkeroo/scam-stream/internal/model"
)

// Fixture file names, relative to the fixture directory or base URL.
const (
	FixtureScams  = "scams.json"
	FixtureAlerts = "alerts.json"
	FixtureVideos = "videos.json"
)

type FixtureStatus string

const (
	FixturePending FixtureStatus = "pending"
	FixtureLoaded  FixtureStatus = "loaded"
	FixtureFailed  FixtureStatus = "failed"
)

const defaultFetchTimeout = 10 * time.Second

// Catalog holds the read-only fixtures: scam records, ticker alerts and the
// video vault. Each fixture loads independently; one that fails to load
// stays empty and the others are unaffected.
type Catalog struct {
	dir     string
	baseURL string
	client  *fasthttp.Client
	onLoad  func(fixture string, err error)

	mu     sync.RWMutex
	scams  []model.ScamRecord
	alerts []model.Alert
	videos []model.Video
	status map[string]FixtureStatus
}

// NewCatalog creates a catalog that reads fixtures from baseURL when set,
// else from dir. Nothing is loaded until Load is called.
func NewCatalog(dir, baseURL string) *Catalog {
	return &Catalog{
		dir:     dir,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &fasthttp.Client{Name: "scam-stream"},
		status: map[string]FixtureStatus{
			FixtureScams:  FixturePending,
			FixtureAlerts: FixturePending,
			FixtureVideos: FixturePending,
		},
	}
}

// NewCatalogFrom returns a catalog already holding the given fixtures.
func NewCatalogFrom(scams []model.ScamRecord, alerts []model.Alert, videos []model.Video) *Catalog {
	return &Catalog{
		scams:  scams,
		alerts: alerts,
		videos: videos,
		status: map[string]FixtureStatus{
			FixtureScams:  FixtureLoaded,
			FixtureAlerts: FixtureLoaded,
			FixtureVideos: FixtureLoaded,
		},
	}
}

// OnLoad registers a callback invoked after each fixture load attempt.
// It must be set before Load.
func (c *Catalog) OnLoad(fn func(fixture string, err error)) {
	c.onLoad = fn
}

// Load fetches all fixtures concurrently and waits for them. Failures are
// logged and returned joined; a failed fixture leaves its view empty.
func (c *Catalog) Load(ctx context.Context) error {
	var wg sync.WaitGroup
	errs := make([]error, 3)

	wg.Add(3)
	go func() {
		defer wg.Done()
		errs[0] = loadFixture(ctx, c, FixtureScams, func(items []model.ScamRecord) { c.scams = items })
	}()
	go func() {
		defer wg.Done()
		errs[1] = loadFixture(ctx, c, FixtureAlerts, func(items []model.Alert) { c.alerts = items })
	}()
	go func() {
		defer wg.Done()
		errs[2] = loadFixture(ctx, c, FixtureVideos, func(items []model.Video) { c.videos = items })
	}()
	wg.Wait()

	return errors.Join(errs...)
}

func loadFixture[T any](ctx context.Context, c *Catalog, name string, set func([]T)) error {
	start := time.Now()
	items, err := decodeFixture[T](ctx, c, name)

	c.mu.Lock()
	if err != nil {
		c.status[name] = FixtureFailed
	} else {
		set(items)
		c.status[name] = FixtureLoaded
	}
	c.mu.Unlock()

	if c.onLoad != nil {
		c.onLoad(name, err)
	}
	if err != nil {
		log.Error().Err(err).Str("fixture", name).Msg("catalog: fixture load failed")
		return fmt.Errorf("load %s: %w", name, err)
	}
	log.Info().Str("fixture", name).Int("items", len(items)).Dur("elapsed", time.Since(start)).Msg("catalog: fixture loaded")
	return nil
}

func decodeFixture[T any](ctx context.Context, c *Catalog, name string) ([]T, error) {
	data, err := c.fetch(ctx, name)
	if err != nil {
		return nil, err
	}
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func (c *Catalog) fetch(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if c.baseURL == "" {
		return os.ReadFile(filepath.Join(c.dir, name))
	}

	timeout := defaultFetchTimeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = min(timeout, time.Until(deadline))
	}

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + "/" + name)
	req.Header.SetMethod(fasthttp.MethodGet)

	if err := c.client.DoTimeout(req, resp, timeout); err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	if code := resp.StatusCode(); code != fasthttp.StatusOK {
		return nil, fmt.Errorf("fetch: unexpected status %d", code)
	}
	return slices.Clone(resp.Body()), nil
}

func (c *Catalog) Scams() []model.ScamRecord {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.scams)
}

func (c *Catalog) Alerts() []model.Alert {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.alerts)
}

func (c *Catalog) Videos() []model.Video {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.videos)
}

// Status returns the load state of every fixture.
func (c *Catalog) Status() map[string]FixtureStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return maps.Clone(c.status)
}
