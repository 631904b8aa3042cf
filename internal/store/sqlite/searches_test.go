package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/booktrackerapp/booktracker-server/internal/store"
)

func upsertTestSearch(t *testing.T, s *Store, id, ownerID, isbn string, available bool) string {
	t.Helper()
	gotID, err := s.UpsertSearch(context.Background(), &store.UpsertSearch{
		ID:          id,
		OwnerID:     ownerID,
		ISBN:        isbn,
		Title:       "The Left Hand of Darkness",
		Author:      "Ursula K. Le Guin",
		CoverURL:    "https://covers.openlibrary.org/b/isbn/" + isbn + "-M.jpg",
		Available:   available,
		LastChecked: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("upsert search: %v", err)
	}
	return gotID
}

func TestUpsertSearchCreate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	newTestUser(t, s, "usr-1", "reader@example.com")

	id := upsertTestSearch(t, s, "trk-1", "usr-1", "9780441478125", false)
	if id != "trk-1" {
		t.Errorf("id: got %q, want trk-1", id)
	}

	got, err := s.GetSearch(ctx, id)
	if err != nil {
		t.Fatalf("get search: %v", err)
	}
	if got.Title != "The Left Hand of Darkness" {
		t.Errorf("title: got %q", got.Title)
	}
	if got.Available {
		t.Error("expected available=false")
	}
	if got.NotifiedAt != nil {
		t.Error("expected no notification timestamp on a fresh row")
	}
}

func TestUpsertSearchKeepsIDOnConflict(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	newTestUser(t, s, "usr-1", "reader@example.com")

	first := upsertTestSearch(t, s, "trk-1", "usr-1", "9780441478125", false)

	// Same owner and ISBN with a fresh candidate ID must reconcile into the
	// existing row, not create a second one.
	second, err := s.UpsertSearch(ctx, &store.UpsertSearch{
		ID:          "trk-2",
		OwnerID:     "usr-1",
		ISBN:        "9780441478125",
		Title:       "The Left Hand of Darkness",
		Author:      "Ursula K. Le Guin",
		Available:   true,
		LastChecked: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if second != first {
		t.Errorf("upsert minted a new id: got %q, want %q", second, first)
	}

	searches, err := s.ListSearchesByOwner(ctx, "usr-1")
	if err != nil {
		t.Fatalf("list searches: %v", err)
	}
	if len(searches) != 1 {
		t.Fatalf("expected 1 search, got %d", len(searches))
	}
	if !searches[0].Available {
		t.Error("expected availability updated by second upsert")
	}
}

func TestUpsertSearchOverrideLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	newTestUser(t, s, "usr-1", "reader@example.com")

	id := upsertTestSearch(t, s, "trk-1", "usr-1", "9780441478125", true)
	if err := s.SetManualUnavailable(ctx, id, true); err != nil {
		t.Fatalf("set override: %v", err)
	}

	// An unavailable probe must preserve the override.
	upsertTestSearch(t, s, "trk-x", "usr-1", "9780441478125", false)
	got, err := s.GetSearch(ctx, id)
	if err != nil {
		t.Fatalf("get search: %v", err)
	}
	if !got.ManualUnavailable {
		t.Error("override cleared by an unavailable probe")
	}
	if got.EffectiveAvailability() {
		t.Error("effective availability should be false under override")
	}

	// An available probe clears it.
	upsertTestSearch(t, s, "trk-y", "usr-1", "9780441478125", true)
	got, err = s.GetSearch(ctx, id)
	if err != nil {
		t.Fatalf("get search: %v", err)
	}
	if got.ManualUnavailable {
		t.Error("override not cleared by an available probe")
	}
	if !got.EffectiveAvailability() {
		t.Error("expected effective availability true")
	}
}

func TestListSearchesByOwnerOrdering(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	newTestUser(t, s, "usr-1", "reader@example.com")
	newTestUser(t, s, "usr-2", "other@example.com")

	upsertTestSearch(t, s, "trk-1", "usr-1", "9780441478125", false)
	upsertTestSearch(t, s, "trk-2", "usr-1", "9780306406157", true)
	upsertTestSearch(t, s, "trk-3", "usr-2", "9780441478125", true)

	searches, err := s.ListSearchesByOwner(ctx, "usr-1")
	if err != nil {
		t.Fatalf("list searches: %v", err)
	}
	if len(searches) != 2 {
		t.Fatalf("expected 2 searches, got %d", len(searches))
	}
	// Available rows sort first.
	if searches[0].ID != "trk-2" {
		t.Errorf("expected trk-2 first, got %s", searches[0].ID)
	}
}

func TestListCheckable(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	newTestUser(t, s, "usr-1", "reader@example.com")

	// Unavailable: checkable.
	waiting := upsertTestSearch(t, s, "trk-1", "usr-1", "9780441478125", false)
	// Available without override: settled, not checkable.
	upsertTestSearch(t, s, "trk-2", "usr-1", "9780306406157", true)
	// Available but overridden: still checkable.
	overridden := upsertTestSearch(t, s, "trk-3", "usr-1", "9780140328721", true)
	if err := s.SetManualUnavailable(ctx, overridden, true); err != nil {
		t.Fatalf("set override: %v", err)
	}

	checkable, err := s.ListCheckable(ctx)
	if err != nil {
		t.Fatalf("list checkable: %v", err)
	}
	if len(checkable) != 2 {
		t.Fatalf("expected 2 checkable, got %d", len(checkable))
	}
	for _, c := range checkable {
		if c.OwnerEmail != "reader@example.com" {
			t.Errorf("owner email: got %q", c.OwnerEmail)
		}
	}

	// An undelivered notification row does not exclude a search.
	if _, err := s.EnsureNotification(ctx, waiting); err != nil {
		t.Fatalf("ensure notification: %v", err)
	}
	checkable, err = s.ListCheckable(ctx)
	if err != nil {
		t.Fatalf("list checkable: %v", err)
	}
	if len(checkable) != 2 {
		t.Fatalf("undelivered notification excluded a search: got %d", len(checkable))
	}

	// A delivered one does.
	if err := s.MarkNotified(ctx, waiting, time.Now().UTC()); err != nil {
		t.Fatalf("mark notified: %v", err)
	}
	checkable, err = s.ListCheckable(ctx)
	if err != nil {
		t.Fatalf("list checkable: %v", err)
	}
	if len(checkable) != 1 {
		t.Fatalf("expected 1 checkable after delivery, got %d", len(checkable))
	}
	if checkable[0].ID != overridden {
		t.Errorf("expected %s, got %s", overridden, checkable[0].ID)
	}
}

func TestListCheckableOrderedByLastChecked(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	newTestUser(t, s, "usr-1", "reader@example.com")

	base := time.Now().UTC()
	for i, isbn := range []string{"9780441478125", "9780306406157", "9780140328721"} {
		_, err := s.UpsertSearch(ctx, &store.UpsertSearch{
			ID:      "trk-" + isbn,
			OwnerID: "usr-1",
			ISBN:    isbn,
			Title:   "Book",
			Author:  "Author",
			// Later list positions get older timestamps.
			LastChecked: base.Add(-time.Duration(i) * time.Hour),
		})
		if err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}

	checkable, err := s.ListCheckable(ctx)
	if err != nil {
		t.Fatalf("list checkable: %v", err)
	}
	if len(checkable) != 3 {
		t.Fatalf("expected 3 checkable, got %d", len(checkable))
	}
	if checkable[0].ISBN != "9780140328721" {
		t.Errorf("oldest last_checked should come first, got %s", checkable[0].ISBN)
	}
}

func TestUpdateSearchISBN(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	newTestUser(t, s, "usr-1", "reader@example.com")

	id := upsertTestSearch(t, s, "trk-1", "usr-1", "0-441-47812-3", false)
	if err := s.UpdateSearchISBN(ctx, id, "0441478123"); err != nil {
		t.Fatalf("update isbn: %v", err)
	}

	got, err := s.GetSearch(ctx, id)
	if err != nil {
		t.Fatalf("get search: %v", err)
	}
	if got.ISBN != "0441478123" {
		t.Errorf("isbn: got %q", got.ISBN)
	}

	err = s.UpdateSearchISBN(ctx, "trk-missing", "0441478123")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteSearch(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	newTestUser(t, s, "usr-1", "reader@example.com")
	newTestUser(t, s, "usr-2", "other@example.com")

	id := upsertTestSearch(t, s, "trk-1", "usr-1", "9780441478125", false)
	if _, err := s.EnsureNotification(ctx, id); err != nil {
		t.Fatalf("ensure notification: %v", err)
	}

	// Another owner cannot delete it.
	err := s.DeleteSearch(ctx, "usr-2", id)
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound for foreign owner, got %v", err)
	}

	if err := s.DeleteSearch(ctx, "usr-1", id); err != nil {
		t.Fatalf("delete search: %v", err)
	}
	_, err = s.GetSearch(ctx, id)
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}

	// The notification row went with it.
	_, err = s.GetNotification(ctx, id)
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected notification cascade delete, got %v", err)
	}
}

func TestDeleteUserCascades(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	newTestUser(t, s, "usr-1", "reader@example.com")
	id := upsertTestSearch(t, s, "trk-1", "usr-1", "9780441478125", false)

	if _, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, "usr-1"); err != nil {
		t.Fatalf("delete user: %v", err)
	}
	_, err := s.GetSearch(ctx, id)
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected search cascade delete, got %v", err)
	}
}
