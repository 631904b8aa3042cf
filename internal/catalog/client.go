// Package catalog probes a public library catalog's search pages for
// holdings. The catalog exposes no API, so availability comes from fetching
// the HTML search page for an ISBN and reading the results container.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/time/rate"

	"github.com/booktrackerapp/booktracker-server/internal/config"
	"github.com/booktrackerapp/booktracker-server/internal/normalize"
)

const resultsContainerID = "search-results-container"

// Client scrapes the library catalog's search pages.
type Client struct {
	httpCli         *http.Client
	rateLimiter     *rate.Limiter
	origin          string
	noResultsPhrase string
	logger          *slog.Logger
}

// NewClient creates a catalog client for the configured origin.
func NewClient(cfg config.CatalogConfig, logger *slog.Logger) *Client {
	return &Client{
		httpCli: &http.Client{
			Timeout: cfg.Timeout,
		},
		rateLimiter:     rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 2),
		origin:          strings.TrimRight(cfg.Origin, "/"),
		noResultsPhrase: cfg.NoResultsPhrase,
		logger:          logger,
	}
}

// SearchURL is the catalog search page for an ISBN. Stored alongside a
// tracked search as the fallback link when no canonical record URL is known.
func (c *Client) SearchURL(isbn string) string {
	return c.origin + "/search/catalog/" + isbn
}

// fetch retrieves and parses one catalog search page.
func (c *Client) fetch(ctx context.Context, isbn string) (*html.Node, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	pageURL := c.SearchURL(isbn)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpCli.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog page: status %d", resp.StatusCode)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse catalog page: %w", err)
	}
	return doc, nil
}

// Available reports whether the catalog holds the ISBN. The decision reads
// the results container and checks for the catalog's no-results phrase; a
// page without the container is treated as unavailable rather than guessed
// at, so markup drift degrades to missed availability, never false alerts.
func (c *Client) Available(ctx context.Context, isbn string) (bool, error) {
	doc, err := c.fetch(ctx, isbn)
	if err != nil {
		return false, err
	}

	container := findByID(doc, resultsContainerID)
	if container == nil {
		c.logger.Warn("results container missing from catalog page", "isbn", isbn)
		return false, nil
	}

	available := !strings.Contains(nodeText(container), c.noResultsPhrase)
	c.logger.Debug("catalog probe",
		"isbn", isbn,
		"available", available,
	)
	return available, nil
}

// RecordURL resolves the canonical catalog record link for an ISBN, but only
// when the first search result's title and author both match the expected
// metadata after normalization. A partial or missing match returns empty:
// the stored link falls back to the search page rather than pointing the
// owner at the wrong book.
func (c *Client) RecordURL(ctx context.Context, isbn, wantTitle, wantAuthor string) (string, error) {
	doc, err := c.fetch(ctx, isbn)
	if err != nil {
		return "", err
	}

	container := findByID(doc, resultsContainerID)
	if container == nil {
		return "", nil
	}
	result := findByClass(container, "search-result")
	if result == nil {
		return "", nil
	}

	titleLink := findByTagClass(result, "a", "title")
	authorLink := findByTagClass(result, "a", "author")
	if titleLink == nil || authorLink == nil {
		return "", nil
	}

	if !normalize.Equal(nodeText(titleLink), wantTitle) ||
		!normalize.Equal(nodeText(authorLink), wantAuthor) {
		c.logger.Debug("first catalog result did not match expected metadata",
			"isbn", isbn,
			"got_title", nodeText(titleLink),
			"want_title", wantTitle,
		)
		return "", nil
	}

	href := attr(titleLink, "href")
	if href == "" {
		return "", nil
	}
	if strings.HasPrefix(href, "/") {
		href = c.origin + href
	}
	return href, nil
}
