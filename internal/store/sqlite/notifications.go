package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/booktrackerapp/booktracker-server/internal/domain"
	"github.com/booktrackerapp/booktracker-server/internal/store"
)

// EnsureNotification creates the notification row for a search if one does
// not already exist and returns the current state. An existing row is left
// untouched, delivered or not, so the call is safe to repeat before every
// send attempt.
func (s *Store) EnsureNotification(ctx context.Context, searchID string) (*domain.Notification, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications (search_id, notified_at)
		VALUES (?, NULL)
		ON CONFLICT (search_id) DO NOTHING`, searchID)
	if err != nil {
		if strings.Contains(err.Error(), "FOREIGN KEY constraint failed") {
			return nil, store.ErrSearchNotFound.WithCause(err)
		}
		return nil, err
	}
	return s.GetNotification(ctx, searchID)
}

// GetNotification retrieves the notification state for a search.
// Returns store.ErrNotificationNotFound if no row exists for that search.
func (s *Store) GetNotification(ctx context.Context, searchID string) (*domain.Notification, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT search_id, notified_at
		FROM notifications
		WHERE search_id = ?`, searchID)

	var n domain.Notification
	var notifiedAt sql.NullString

	if err := row.Scan(&n.SearchID, &notifiedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotificationNotFound
		}
		return nil, err
	}

	var err error
	n.NotifiedAt, err = parseNullableTime(notifiedAt)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// MarkNotified records a successful delivery. Only called after the mail has
// actually been handed off, so a set timestamp means the owner was told.
// Returns store.ErrNotificationNotFound if the notification row does not exist.
func (s *Store) MarkNotified(ctx context.Context, searchID string, at time.Time) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE notifications SET notified_at = ? WHERE search_id = ?`,
		formatTime(at), searchID)
	if err != nil {
		return err
	}
	return requireRow(result, store.ErrNotificationNotFound)
}
