package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/booktrackerapp/booktracker-server/internal/store"
)

func TestEnsureNotificationIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	newTestUser(t, s, "usr-1", "reader@example.com")
	id := upsertTestSearch(t, s, "trk-1", "usr-1", "9780441478125", true)

	n, err := s.EnsureNotification(ctx, id)
	if err != nil {
		t.Fatalf("ensure notification: %v", err)
	}
	if n.Delivered() {
		t.Error("fresh notification should not be delivered")
	}

	at := time.Now().UTC()
	if err := s.MarkNotified(ctx, id, at); err != nil {
		t.Fatalf("mark notified: %v", err)
	}

	// Repeating must not reset the delivered state.
	n, err = s.EnsureNotification(ctx, id)
	if err != nil {
		t.Fatalf("ensure notification again: %v", err)
	}
	if !n.Delivered() {
		t.Error("ensure reset a delivered notification")
	}
	if n.NotifiedAt == nil || !n.NotifiedAt.Equal(at) {
		t.Errorf("notified_at: got %v, want %v", n.NotifiedAt, at)
	}
}

func TestEnsureNotificationMissingSearch(t *testing.T) {
	s := newTestStore(t)

	_, err := s.EnsureNotification(context.Background(), "trk-missing")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMarkNotifiedWithoutRow(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	newTestUser(t, s, "usr-1", "reader@example.com")
	id := upsertTestSearch(t, s, "trk-1", "usr-1", "9780441478125", true)

	err := s.MarkNotified(ctx, id, time.Now().UTC())
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound before ensure, got %v", err)
	}
}

func TestGetSearchJoinsNotification(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	newTestUser(t, s, "usr-1", "reader@example.com")
	id := upsertTestSearch(t, s, "trk-1", "usr-1", "9780441478125", true)

	if _, err := s.EnsureNotification(ctx, id); err != nil {
		t.Fatalf("ensure notification: %v", err)
	}
	got, err := s.GetSearch(ctx, id)
	if err != nil {
		t.Fatalf("get search: %v", err)
	}
	if got.NotifiedAt != nil {
		t.Error("undelivered notification should not surface a timestamp")
	}

	if err := s.MarkNotified(ctx, id, time.Now().UTC()); err != nil {
		t.Fatalf("mark notified: %v", err)
	}
	got, err = s.GetSearch(ctx, id)
	if err != nil {
		t.Fatalf("get search: %v", err)
	}
	if got.NotifiedAt == nil {
		t.Error("delivered notification timestamp missing from search read")
	}
}
