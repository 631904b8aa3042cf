// Package openlibrary resolves book metadata from the Open Library search
// API. Results are cached in memory so repeated checks of the same ISBN,
// common during daily sweeps, do not hammer the upstream service.
package openlibrary

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/booktrackerapp/booktracker-server/internal/config"
	"github.com/booktrackerapp/booktracker-server/internal/domain"
)

// Client provides access to the Open Library search API.
type Client struct {
	httpCli     *http.Client
	rateLimiter *rate.Limiter
	cache       *cache.Cache
	baseURL     string
	coversURL   string
	logger      *slog.Logger
}

// NewClient creates a new Open Library client.
// Rate limited to 1 request per second with a small burst; Open Library asks
// bulk users to stay well under their courtesy limits.
func NewClient(cfg config.OpenLibraryConfig, logger *slog.Logger) *Client {
	return &Client{
		httpCli: &http.Client{
			Timeout: cfg.Timeout,
		},
		rateLimiter: rate.NewLimiter(rate.Every(time.Second), 3),
		cache:       cache.New(cfg.CacheTTL, 2*cfg.CacheTTL),
		baseURL:     cfg.BaseURL,
		coversURL:   cfg.CoversBaseURL,
		logger:      logger,
	}
}

// wait blocks until the rate limiter allows a request.
func (c *Client) wait(ctx context.Context) error {
	return c.rateLimiter.Wait(ctx)
}

// cachedLookup returns a previously resolved result for the ISBN, if any.
// Misses (no such book) are cached too, as a nil metadata pointer.
func (c *Client) cachedLookup(isbn string) (*domain.BookMetadata, bool, bool) {
	v, ok := c.cache.Get(isbn)
	if !ok {
		return nil, false, false
	}
	meta, _ := v.(*domain.BookMetadata)
	return meta, meta != nil, true
}
