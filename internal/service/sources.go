package service

import (
	"context"

	"github.com/booktrackerapp/booktracker-server/internal/domain"
)

// MetadataSource resolves bibliographic metadata for a normalized ISBN.
// The boolean is false when the source has never heard of the ISBN.
type MetadataSource interface {
	Lookup(ctx context.Context, isbn string) (*domain.BookMetadata, bool, error)
}

// CatalogSource probes the library catalog for holdings.
type CatalogSource interface {
	// Available reports whether the catalog currently holds the ISBN.
	Available(ctx context.Context, isbn string) (bool, error)
	// RecordURL returns the canonical record link, or empty when the first
	// result does not match the expected title and author.
	RecordURL(ctx context.Context, isbn, wantTitle, wantAuthor string) (string, error)
	// SearchURL is the catalog search page for the ISBN, always resolvable.
	SearchURL(isbn string) string
}

// Notifier delivers an availability notice to a search owner.
type Notifier interface {
	SendAvailable(ctx context.Context, search *domain.TrackedSearch, email string) error
}
