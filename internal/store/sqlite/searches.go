package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/booktrackerapp/booktracker-server/internal/domain"
	"github.com/booktrackerapp/booktracker-server/internal/store"
)

// searchColumns is the ordered list of columns selected in search queries.
// Must match the scan order in scanSearch.
const searchColumns = `s.id, s.owner_id, s.isbn, s.title, s.author, s.cover_url,
	s.catalog_url, s.available, s.manual_unavailable, s.created_at, s.last_checked,
	n.notified_at`

// scanSearch scans a sql.Row (or sql.Rows via its Scan method) into a
// domain.TrackedSearch, including the joined notification timestamp.
func scanSearch(scanner interface{ Scan(dest ...any) error }, extra ...any) (*domain.TrackedSearch, error) {
	var ts domain.TrackedSearch

	var (
		catalogURL  sql.NullString
		available   int
		manual      int
		createdAt   string
		lastChecked string
		notifiedAt  sql.NullString
	)

	dest := []any{
		&ts.ID,
		&ts.OwnerID,
		&ts.ISBN,
		&ts.Title,
		&ts.Author,
		&ts.CoverURL,
		&catalogURL,
		&available,
		&manual,
		&createdAt,
		&lastChecked,
		&notifiedAt,
	}
	dest = append(dest, extra...)

	if err := scanner.Scan(dest...); err != nil {
		return nil, err
	}

	if catalogURL.Valid {
		ts.CatalogURL = catalogURL.String
	}
	ts.Available = available != 0
	ts.ManualUnavailable = manual != 0

	var err error
	ts.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	ts.LastChecked, err = parseTime(lastChecked)
	if err != nil {
		return nil, err
	}
	ts.NotifiedAt, err = parseNullableTime(notifiedAt)
	if err != nil {
		return nil, err
	}

	return &ts, nil
}

// UpsertSearch reconciles one check result into the searches table as a
// single atomic statement, keyed on (owner_id, isbn). An existing row keeps
// its id and created_at; title, author, cover, catalog link, availability and
// last_checked are overwritten. The manual override is cleared only when the
// observed availability is true, otherwise it is left untouched.
// Returns the row's id either way.
func (s *Store) UpsertSearch(ctx context.Context, u *store.UpsertSearch) (string, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO searches (
			id, owner_id, isbn, title, author, cover_url, catalog_url,
			available, manual_unavailable, created_at, last_checked
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?)
		ON CONFLICT (owner_id, isbn) DO UPDATE SET
			title = excluded.title,
			author = excluded.author,
			cover_url = excluded.cover_url,
			catalog_url = excluded.catalog_url,
			available = excluded.available,
			manual_unavailable = CASE
				WHEN excluded.available = 1 THEN 0
				ELSE searches.manual_unavailable
			END,
			last_checked = excluded.last_checked
		RETURNING id`,
		u.ID,
		u.OwnerID,
		u.ISBN,
		u.Title,
		u.Author,
		u.CoverURL,
		nullString(u.CatalogURL),
		boolInt(u.Available),
		formatTime(u.LastChecked),
		formatTime(u.LastChecked),
	)

	var id string
	if err := row.Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

// GetSearch retrieves a tracked search by ID, with its notification
// timestamp when one has been delivered or attempted.
// Returns store.ErrSearchNotFound if the row does not exist.
func (s *Store) GetSearch(ctx context.Context, id string) (*domain.TrackedSearch, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+searchColumns+`
		FROM searches s
		LEFT JOIN notifications n ON n.search_id = s.id
		WHERE s.id = ?`, id)

	ts, err := scanSearch(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrSearchNotFound
	}
	if err != nil {
		return nil, err
	}
	return ts, nil
}

// ListSearchesByOwner returns all of one owner's tracked searches, available
// rows first, newest first within each group.
func (s *Store) ListSearchesByOwner(ctx context.Context, ownerID string) ([]*domain.TrackedSearch, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+searchColumns+`
		FROM searches s
		LEFT JOIN notifications n ON n.search_id = s.id
		WHERE s.owner_id = ?
		ORDER BY s.available DESC, s.created_at DESC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var searches []*domain.TrackedSearch
	for rows.Next() {
		ts, err := scanSearch(rows)
		if err != nil {
			return nil, err
		}
		searches = append(searches, ts)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return searches, nil
}

// ListCheckable returns the sweep candidates: every search whose effective
// availability is false and which has no delivered notification, oldest
// last_checked first so the longest-waiting books are probed first. A
// notification row that exists but was never delivered does not exclude a
// search; delivery keeps being retried by later sweeps.
func (s *Store) ListCheckable(ctx context.Context) ([]*store.CheckableSearch, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+searchColumns+`, u.email
		FROM searches s
		INNER JOIN users u ON s.owner_id = u.id
		LEFT JOIN notifications n ON n.search_id = s.id
		WHERE (s.available = 0 OR s.manual_unavailable = 1)
		AND NOT EXISTS (
			SELECT 1 FROM notifications d
			WHERE d.search_id = s.id AND d.notified_at IS NOT NULL
		)
		ORDER BY s.last_checked ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var checkable []*store.CheckableSearch
	for rows.Next() {
		var email string
		ts, err := scanSearch(rows, &email)
		if err != nil {
			return nil, err
		}
		checkable = append(checkable, &store.CheckableSearch{
			TrackedSearch: *ts,
			OwnerEmail:    email,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return checkable, nil
}

// UpdateSearchISBN rewrites a row's stored ISBN in place. Used by the sweep
// to self-heal legacy rows whose ISBN predates normalization.
func (s *Store) UpdateSearchISBN(ctx context.Context, id, isbn string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE searches SET isbn = ? WHERE id = ?`, isbn, id)
	if err != nil {
		return err
	}
	return requireRow(result, store.ErrSearchNotFound)
}

// SetManualUnavailable sets or clears the manual override flag.
// Returns store.ErrSearchNotFound if the search does not exist.
func (s *Store) SetManualUnavailable(ctx context.Context, id string, value bool) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE searches SET manual_unavailable = ? WHERE id = ?`, boolInt(value), id)
	if err != nil {
		return err
	}
	return requireRow(result, store.ErrSearchNotFound)
}

// DeleteSearch removes a tracked search owned by the caller. The owner scope
// is part of the predicate so one owner cannot delete another's rows. The
// notification row, if any, goes with it via ON DELETE CASCADE.
// Returns store.ErrSearchNotFound if no matching row exists.
func (s *Store) DeleteSearch(ctx context.Context, ownerID, id string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM searches WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return err
	}
	return requireRow(result, store.ErrSearchNotFound)
}

// requireRow converts a zero-rows-affected result into the given not-found
// sentinel.
func requireRow(result sql.Result, missing *store.Error) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return missing
	}
	return nil
}
