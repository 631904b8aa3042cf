package openlibrary

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"net/http"
	"net/url"

	"github.com/booktrackerapp/booktracker-server/internal/domain"
)

const (
	defaultTitle  = "Unknown Title"
	defaultAuthor = "Unknown Author"
)

// searchResponse is the subset of the Open Library search payload we read.
type searchResponse struct {
	NumFound int         `json:"numFound"`
	Docs     []searchDoc `json:"docs"`
}

type searchDoc struct {
	Title      string   `json:"title"`
	AuthorName []string `json:"author_name"`
}

// Lookup resolves title, author and a cover image URL for a normalized ISBN.
// The second return value is false when Open Library knows nothing about the
// ISBN at all; a known book with missing fields still resolves, with the
// Unknown placeholders filled in. The cover URL is synthesized from the ISBN
// and never verified; the covers service serves a placeholder for unknowns.
func (c *Client) Lookup(ctx context.Context, isbn string) (*domain.BookMetadata, bool, error) {
	if meta, found, hit := c.cachedLookup(isbn); hit {
		return meta, found, nil
	}

	if err := c.wait(ctx); err != nil {
		return nil, false, fmt.Errorf("rate limit: %w", err)
	}

	searchURL := c.baseURL + "/search.json?" + url.Values{"q": {isbn}}.Encode()

	c.logger.Debug("querying Open Library",
		"isbn", isbn,
		"url", searchURL,
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, false, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpCli.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, false, fmt.Errorf("search failed: status %d", resp.StatusCode)
	}

	var searchResp searchResponse
	if err := json.UnmarshalRead(resp.Body, &searchResp); err != nil {
		return nil, false, fmt.Errorf("parse response: %w", err)
	}

	if len(searchResp.Docs) == 0 {
		c.logger.Debug("no Open Library match", "isbn", isbn)
		c.cache.SetDefault(isbn, (*domain.BookMetadata)(nil))
		return nil, false, nil
	}

	doc := searchResp.Docs[0]
	meta := &domain.BookMetadata{
		Title:    doc.Title,
		Author:   defaultAuthor,
		CoverURL: c.CoverURL(isbn),
	}
	if meta.Title == "" {
		meta.Title = defaultTitle
	}
	if len(doc.AuthorName) > 0 && doc.AuthorName[0] != "" {
		meta.Author = doc.AuthorName[0]
	}

	c.cache.SetDefault(isbn, meta)
	return meta, true, nil
}

// CoverURL builds the medium-size cover image URL for an ISBN.
func (c *Client) CoverURL(isbn string) string {
	return fmt.Sprintf("%s/b/isbn/%s-M.jpg", c.coversURL, isbn)
}
