package service

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/booktrackerapp/booktracker-server/internal/domain"
	"github.com/booktrackerapp/booktracker-server/internal/store/sqlite"
)

// fakeMetadata serves canned Open Library responses.
type fakeMetadata struct {
	books map[string]*domain.BookMetadata
	err   error
}

func (f *fakeMetadata) Lookup(_ context.Context, isbn string) (*domain.BookMetadata, bool, error) {
	if f.err != nil {
		return nil, false, f.err
	}
	meta, ok := f.books[isbn]
	return meta, ok, nil
}

// fakeCatalog serves canned availability and record links.
type fakeCatalog struct {
	available map[string]bool
	records   map[string]string
	probeErr  error
	panicISBN string
	probes    []string
}

func (f *fakeCatalog) Available(_ context.Context, isbn string) (bool, error) {
	if isbn == f.panicISBN {
		panic("scraper blew up")
	}
	f.probes = append(f.probes, isbn)
	if f.probeErr != nil {
		return false, f.probeErr
	}
	return f.available[isbn], nil
}

func (f *fakeCatalog) RecordURL(_ context.Context, isbn, _, _ string) (string, error) {
	return f.records[isbn], nil
}

func (f *fakeCatalog) SearchURL(isbn string) string {
	return "https://catalog.test/search/catalog/" + isbn
}

// fakeNotifier records deliveries.
type fakeNotifier struct {
	sent []string // search IDs
	to   []string
	err  error
}

func (f *fakeNotifier) SendAvailable(_ context.Context, search *domain.TrackedSearch, email string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, search.ID)
	f.to = append(f.to, email)
	return nil
}

// harness wires real sqlite storage to fake upstreams.
type harness struct {
	store    *sqlite.Store
	metadata *fakeMetadata
	catalog  *fakeCatalog
	notifier *fakeNotifier
	dispatch *Dispatcher
	check    *CheckService
	sweep    *SweepService
	tracking *TrackingService
	owner    *domain.User
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))

	st, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	h := &harness{
		store:    st,
		metadata: &fakeMetadata{books: map[string]*domain.BookMetadata{}},
		catalog:  &fakeCatalog{available: map[string]bool{}, records: map[string]string{}},
		notifier: &fakeNotifier{},
	}
	h.dispatch = NewDispatcher(st, h.notifier, logger)
	dispatcher := h.dispatch
	h.check = NewCheckService(st, h.metadata, h.catalog, dispatcher, logger)
	h.sweep = NewSweepService(st, h.metadata, h.catalog, dispatcher, 0, logger)
	h.tracking = NewTrackingService(st, logger)

	owner := &domain.User{
		ID:        "usr-owner",
		Email:     "reader@example.com",
		Name:      "Reader",
		Role:      domain.RoleMember,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, st.CreateUser(context.Background(), owner))
	h.owner = owner
	return h
}

// addBook registers an ISBN with the fake metadata source.
func (h *harness) addBook(isbn, title, author string) {
	h.metadata.books[isbn] = &domain.BookMetadata{
		Title:    title,
		Author:   author,
		CoverURL: "https://covers.openlibrary.org/b/isbn/" + isbn + "-M.jpg",
	}
}
