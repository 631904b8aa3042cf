package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/booktrackerapp/booktracker-server/internal/isbn"
	"github.com/booktrackerapp/booktracker-server/internal/store"
)

// SweepService re-checks every tracked search that is still waiting: not
// effectively available, or never successfully notified. Designed to run
// once a day from a scheduler.
type SweepService struct {
	store      store.Store
	metadata   MetadataSource
	catalog    CatalogSource
	dispatcher *Dispatcher
	itemDelay  time.Duration
	logger     *slog.Logger
}

// NewSweepService creates a sweep service. itemDelay is the fixed pause
// between items, throttling calls against the catalog and Open Library.
func NewSweepService(s store.Store, metadata MetadataSource, catalog CatalogSource, dispatcher *Dispatcher, itemDelay time.Duration, logger *slog.Logger) *SweepService {
	return &SweepService{
		store:      s,
		metadata:   metadata,
		catalog:    catalog,
		dispatcher: dispatcher,
		itemDelay:  itemDelay,
		logger:     logger,
	}
}

// Summary reports what one sweep did.
type Summary struct {
	Checked           int `json:"checked"`
	BecameAvailable   int `json:"became_available"`
	NotificationsSent int `json:"notifications_sent"`
	Errors            int `json:"errors"`
}

// Run executes one full sweep. One failing item never aborts the batch; its
// error is counted and the sweep moves on. Context cancellation stops the
// sweep between items and returns the partial summary.
func (s *SweepService) Run(ctx context.Context) (*Summary, error) {
	items, err := s.store.ListCheckable(ctx)
	if err != nil {
		return nil, fmt.Errorf("list checkable searches: %w", err)
	}

	s.logger.Info("sweep started", "candidates", len(items))
	summary := &Summary{}

	for i, item := range items {
		if err := ctx.Err(); err != nil {
			s.logger.Warn("sweep cancelled", "processed", i, "remaining", len(items)-i)
			return summary, err
		}
		if i > 0 && s.itemDelay > 0 {
			time.Sleep(s.itemDelay)
		}
		s.sweepItem(ctx, item, summary)
	}

	s.logger.Info("sweep finished",
		"checked", summary.Checked,
		"became_available", summary.BecameAvailable,
		"notifications_sent", summary.NotificationsSent,
		"errors", summary.Errors,
	)
	return summary, nil
}

// sweepItem processes a single candidate. Panics are contained here so a
// poisoned row cannot take down the batch.
func (s *SweepService) sweepItem(ctx context.Context, item *store.CheckableSearch, summary *Summary) {
	defer func() {
		if r := recover(); r != nil {
			summary.Errors++
			s.logger.Error("sweep item panicked",
				"search_id", item.ID,
				"panic", r,
			)
		}
	}()

	summary.Checked++

	normalized, ok := s.healISBN(ctx, item)
	if !ok {
		summary.Errors++
		return
	}

	// Metadata refresh is best-effort; the stored fields carry a row whose
	// ISBN Open Library no longer resolves.
	title, author, coverURL := item.Title, item.Author, item.CoverURL
	if meta, found, err := s.metadata.Lookup(ctx, normalized); err != nil {
		s.logger.Warn("metadata refresh failed, keeping stored fields",
			"search_id", item.ID,
			"error", err,
		)
	} else if found {
		title, author, coverURL = meta.Title, meta.Author, meta.CoverURL
	}

	// A failed scrape reads as "not on the shelf". The row still reconciles
	// below so last_checked keeps advancing.
	observed, err := s.catalog.Available(ctx, normalized)
	if err != nil {
		observed = false
		s.logger.Warn("catalog probe failed, treating as unavailable",
			"search_id", item.ID,
			"isbn", normalized,
			"error", err,
		)
	}

	// A manual override pins the search unavailable for sweeps. Only an
	// interactive check with a positive probe lifts it.
	if item.ManualUnavailable {
		observed = false
	}

	s.logger.Info("swept",
		"search_id", item.ID,
		"isbn", normalized,
		"available", observed,
	)

	catalogURL := item.CatalogURL
	if observed {
		// A failed title/author match invalidates whatever record link was
		// stored before; the search page is always safe to hand out.
		recordURL, err := s.catalog.RecordURL(ctx, normalized, title, author)
		if err != nil {
			s.logger.Warn("record link resolution failed",
				"search_id", item.ID,
				"error", err,
			)
		}
		if recordURL != "" {
			catalogURL = recordURL
		} else {
			catalogURL = s.catalog.SearchURL(normalized)
		}
	}

	searchID, err := s.store.UpsertSearch(ctx, &store.UpsertSearch{
		ID:          item.ID,
		OwnerID:     item.OwnerID,
		ISBN:        normalized,
		Title:       title,
		Author:      author,
		CoverURL:    coverURL,
		CatalogURL:  catalogURL,
		Available:   observed,
		LastChecked: time.Now().UTC(),
	})
	if err != nil {
		summary.Errors++
		s.logger.Error("sweep reconcile failed", "search_id", item.ID, "error", err)
		return
	}

	if !observed {
		return
	}
	if !item.EffectiveAvailability() {
		summary.BecameAvailable++
	}

	updated := item.TrackedSearch
	updated.ID = searchID
	updated.ISBN = normalized
	updated.Title = title
	updated.Author = author
	updated.CoverURL = coverURL
	updated.CatalogURL = catalogURL
	updated.Available = true
	updated.ManualUnavailable = false

	sent, err := s.dispatcher.NotifyIfNeeded(ctx, &updated, item.OwnerEmail)
	if err != nil {
		summary.Errors++
		s.logger.Error("sweep notification failed",
			"search_id", item.ID,
			"error", err,
		)
		return
	}
	if sent {
		summary.NotificationsSent++
	}
}

// healISBN re-normalizes a stored ISBN and rewrites it when the stored form
// predates normalization. Returns false when even the normalized form is
// invalid; such rows are counted as errors and left for manual cleanup.
func (s *SweepService) healISBN(ctx context.Context, item *store.CheckableSearch) (string, bool) {
	normalized := isbn.Normalize(item.ISBN)
	if !isbn.Valid(normalized) {
		s.logger.Warn("stored ISBN is invalid, skipping",
			"search_id", item.ID,
			"isbn", item.ISBN,
		)
		return "", false
	}
	if normalized != item.ISBN {
		if err := s.store.UpdateSearchISBN(ctx, item.ID, normalized); err != nil {
			s.logger.Warn("ISBN normalization rewrite failed",
				"search_id", item.ID,
				"error", err,
			)
		}
	}
	return normalized, true
}
