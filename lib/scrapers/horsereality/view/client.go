package view

import (
	"context"
	"errors"
	"fmt"
	"hrtools/internal/assert"
	"hrtools/lib/chrono"
	"hrtools/lib/scrapers/horsereality/core"
	"log/slog"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var ErrNoFoal = errors.New("horsereality: dam has no foal on its page")

const DefaultCacheLifetime = 10 * time.Minute

type ClientOptions struct {
	// Cache, when set, keeps horse pages for CacheLifetime.
	Cache         *badger.DB
	CacheLifetime time.Duration
	Clock         chrono.API
}

// Client reads and parses pages through a core client.
type Client struct {
	Core     *core.Client
	cache    *pageCache
	lifetime time.Duration
	clock    chrono.API
}

func NewClient(coreClient *core.Client, opts ClientOptions) *Client {
	assert.NotNil(coreClient, "core client")
	if opts.Clock == nil {
		opts.Clock = chrono.StandardImpl{}
	}
	if opts.CacheLifetime <= 0 {
		opts.CacheLifetime = DefaultCacheLifetime
	}
	c := &Client{
		Core:     coreClient,
		lifetime: opts.CacheLifetime,
		clock:    opts.Clock,
	}
	if opts.Cache != nil {
		c.cache = &pageCache{db: opts.Cache, clock: opts.Clock}
	}
	return c
}

// page returns the contents at `path` and whether they came from the cache.
func (c *Client) page(ctx context.Context, path string) ([]byte, bool, error) {
	url := c.Core.Url(path)

	if c.cache != nil {
		contents, err := c.cache.get(ctx, url)
		if err == nil {
			return contents, true, nil
		}
		if !errors.Is(err, errPageNotCached) {
			slog.WarnContext(ctx, "page cache read failed", "url", url, "err", err)
		}
	}

	res, err := c.Core.Get(ctx, path)
	if err != nil {
		return nil, false, err
	}
	return res.Body, false, nil
}

func (c *Client) remember(ctx context.Context, path string, contents []byte) {
	if c.cache == nil {
		return
	}
	expiresAt := c.clock.Now().Add(c.lifetime).Unix()
	err := c.cache.set(ctx, c.Core.Url(path), contents, expiresAt)
	if err != nil {
		slog.WarnContext(ctx, "page cache write failed", "path", path, "err", err)
	}
}

// GetHorse fetches and parses the page of a horse.
func (c *Client) GetHorse(ctx context.Context, lifenumber int) (Horse, error) {
	ctx, span := tracer.Start(ctx, "client:GetHorse")
	defer span.End()
	span.SetAttributes(attribute.Int("lifenumber", lifenumber))

	path := HorsePath(lifenumber)
	page, cached, err := c.page(ctx, path)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch horse page")
		return Horse{}, err
	}
	horse, err := ParseHorse(page)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse horse page")
		return Horse{}, fmt.Errorf("horse %d: %w", lifenumber, err)
	}
	if !cached {
		c.remember(ctx, path, page)
	}
	return horse, nil
}

// FetchFoal fetches the foal shown on the page of a dam.
func (c *Client) FetchFoal(ctx context.Context, dam Horse) (Horse, error) {
	if dam.FoalLifenumber == 0 {
		return Horse{}, ErrNoFoal
	}
	return c.GetHorse(ctx, dam.FoalLifenumber)
}

// CreateLayer parses a one-off layer url, urls on the client's own host
// are accepted too.
func (c *Client) CreateLayer(url string) (Layer, error) {
	host := strings.TrimRight(c.Core.Host().String(), "/")
	if host != "" && strings.HasPrefix(url, host+"/") {
		url = strings.TrimPrefix(url, host)
	}
	return ParseLayer(url)
}

func (c *Client) ReadLayer(ctx context.Context, layer Layer, size Size) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "client:ReadLayer")
	defer span.End()
	span.SetAttributes(attribute.String("layer", layer.String()))

	data, err := layer.Read(ctx, c.Core, size)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to read layer")
	}
	return data, err
}
