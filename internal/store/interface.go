package store

import (
	"context"
	"time"

	"github.com/booktrackerapp/booktracker-server/internal/domain"
)

// UpsertSearch carries the reconciled state written back by one check.
// Manual override is deliberately absent: the store clears it only when
// Available is true and preserves it otherwise.
type UpsertSearch struct {
	ID          string // candidate ID; ignored when the (owner, isbn) row already exists
	OwnerID     string
	ISBN        string
	Title       string
	Author      string
	CoverURL    string
	CatalogURL  string // empty means no trusted canonical link
	Available   bool
	LastChecked time.Time
}

// CheckableSearch is a sweep candidate: the tracked row plus the owner's
// email address for notification delivery.
type CheckableSearch struct {
	domain.TrackedSearch
	OwnerEmail string
}

// Store is the persistence boundary for the tracker. The sqlite subpackage
// provides the production implementation.
type Store interface {
	// Users (boundary-minimal: searches need owners, sweeps need emails).
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)

	// Tracked searches.
	UpsertSearch(ctx context.Context, s *UpsertSearch) (string, error)
	GetSearch(ctx context.Context, id string) (*domain.TrackedSearch, error)
	ListSearchesByOwner(ctx context.Context, ownerID string) ([]*domain.TrackedSearch, error)
	ListCheckable(ctx context.Context) ([]*CheckableSearch, error)
	UpdateSearchISBN(ctx context.Context, id, isbn string) error
	SetManualUnavailable(ctx context.Context, id string, value bool) error
	DeleteSearch(ctx context.Context, ownerID, id string) error

	// Notification ledger.
	EnsureNotification(ctx context.Context, searchID string) (*domain.Notification, error)
	GetNotification(ctx context.Context, searchID string) (*domain.Notification, error)
	MarkNotified(ctx context.Context, searchID string, at time.Time) error

	Close() error
}
