package notify

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/booktrackerapp/booktracker-server/internal/config"
	"github.com/booktrackerapp/booktracker-server/internal/domain"
)

func testSearch() *domain.TrackedSearch {
	now := time.Now().UTC()
	return &domain.TrackedSearch{
		ID:          "trk-1",
		OwnerID:     "usr-1",
		ISBN:        "9780060512750",
		Title:       "The Dispossessed",
		Author:      "Ursula K. Le Guin",
		CoverURL:    "https://covers.openlibrary.org/b/isbn/9780060512750-M.jpg",
		CatalogURL:  "https://aadl.org/catalog/record/12345",
		Available:   true,
		CreatedAt:   now,
		LastChecked: now,
	}
}

func TestNewMailerDisabled(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	m, err := NewMailer(config.NotifyConfig{Enabled: false}, logger)
	require.NoError(t, err)

	// A disabled mailer fails sends rather than silently swallowing them,
	// keeping the notification ledger undelivered.
	err = m.SendAvailable(context.Background(), testSearch(), "reader@example.com")
	require.Error(t, err)
}

func TestNewMailerBadServiceURL(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	_, err := NewMailer(config.NotifyConfig{
		Enabled:    true,
		ServiceURL: "not-a-service-url",
	}, logger)
	require.Error(t, err)
}

func TestAvailableTemplate(t *testing.T) {
	var body strings.Builder
	err := availableTemplate.Execute(&body, availableEmail(testSearch()))
	require.NoError(t, err)

	html := body.String()
	assert.Contains(t, html, "The Dispossessed")
	assert.Contains(t, html, "Ursula K. Le Guin")
	assert.Contains(t, html, "9780060512750")
	assert.Contains(t, html, `href="https://aadl.org/catalog/record/12345"`)
	assert.Contains(t, html, `img src=`)
}

func TestAvailableTemplateWithoutLink(t *testing.T) {
	s := testSearch()
	s.CatalogURL = ""
	s.CoverURL = ""

	var body strings.Builder
	err := availableTemplate.Execute(&body, availableEmail(s))
	require.NoError(t, err)

	html := body.String()
	assert.NotContains(t, html, "href=")
	assert.NotContains(t, html, "img src=")
	assert.Contains(t, html, "The Dispossessed")
}
