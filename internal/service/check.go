package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/booktrackerapp/booktracker-server/internal/domain"
	"github.com/booktrackerapp/booktracker-server/internal/errors"
	"github.com/booktrackerapp/booktracker-server/internal/id"
	"github.com/booktrackerapp/booktracker-server/internal/isbn"
	"github.com/booktrackerapp/booktracker-server/internal/store"
)

// CheckService runs interactive availability checks: one ISBN, checked now,
// tracked from then on.
type CheckService struct {
	store      store.Store
	metadata   MetadataSource
	catalog    CatalogSource
	dispatcher *Dispatcher
	logger     *slog.Logger
}

// NewCheckService creates a check service.
func NewCheckService(s store.Store, metadata MetadataSource, catalog CatalogSource, dispatcher *Dispatcher, logger *slog.Logger) *CheckService {
	return &CheckService{
		store:      s,
		metadata:   metadata,
		catalog:    catalog,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// CheckResult is the outcome of one interactive check.
type CheckResult struct {
	Search *domain.TrackedSearch `json:"search"`
	// Available is the effective availability after the check, override
	// included.
	Available bool `json:"available"`
	// NotificationSent is true when this check triggered the one-time email.
	NotificationSent bool `json:"notification_sent"`
}

// Check validates and normalizes the ISBN, resolves metadata, probes the
// catalog and reconciles the result into the owner's tracked searches.
// Nothing is persisted when the ISBN is invalid or no book exists for it.
func (s *CheckService) Check(ctx context.Context, ownerID, rawISBN string) (*CheckResult, error) {
	normalized := isbn.Normalize(rawISBN)
	if !isbn.Valid(normalized) {
		return nil, errors.Validation("please enter a valid ISBN-10 or ISBN-13")
	}

	owner, err := s.store.GetUser(ctx, ownerID)
	if err != nil {
		return nil, mapStoreError(err, "owner")
	}

	meta, found, err := s.metadata.Lookup(ctx, normalized)
	if err != nil {
		// Upstream trouble reads the same as an unknown book: nothing is
		// persisted and the caller can try again.
		s.logger.Warn("metadata lookup failed",
			"isbn", normalized,
			"error", err,
		)
		found = false
	}
	if !found {
		return nil, errors.NotFoundf("could not find book information for ISBN %s", normalized)
	}

	observed := s.probe(ctx, normalized)
	catalogURL := s.catalogLink(ctx, normalized, meta, observed)

	candidateID, err := id.Generate("trk")
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "generate search ID")
	}

	searchID, err := s.store.UpsertSearch(ctx, &store.UpsertSearch{
		ID:          candidateID,
		OwnerID:     owner.ID,
		ISBN:        normalized,
		Title:       meta.Title,
		Author:      meta.Author,
		CoverURL:    meta.CoverURL,
		CatalogURL:  catalogURL,
		Available:   observed,
		LastChecked: time.Now().UTC(),
	})
	if err != nil {
		return nil, mapStoreError(err, "tracked search")
	}

	search, err := s.store.GetSearch(ctx, searchID)
	if err != nil {
		return nil, mapStoreError(err, "tracked search")
	}

	result := &CheckResult{
		Search:    search,
		Available: search.EffectiveAvailability(),
	}
	if result.Available {
		sent, err := s.dispatcher.NotifyIfNeeded(ctx, search, owner.Email)
		if err != nil {
			// The check itself succeeded; delivery is retried by the sweep.
			s.logger.Error("notification delivery failed",
				"search_id", search.ID,
				"error", err,
			)
		}
		result.NotificationSent = sent
	}

	s.logger.Info("interactive check completed",
		"owner_id", owner.ID,
		"isbn", normalized,
		"available", result.Available,
		"notified", result.NotificationSent,
	)
	return result, nil
}

// probe asks the catalog for holdings, treating any scrape failure as
// unavailable so upstream trouble never produces a false alert.
func (s *CheckService) probe(ctx context.Context, normalized string) bool {
	observed, err := s.catalog.Available(ctx, normalized)
	if err != nil {
		s.logger.Warn("catalog probe failed, treating as unavailable",
			"isbn", normalized,
			"error", err,
		)
		return false
	}
	return observed
}

// catalogLink picks the stored link: the canonical record when the catalog's
// first result matches the resolved metadata, the search page otherwise.
func (s *CheckService) catalogLink(ctx context.Context, normalized string, meta *domain.BookMetadata, observed bool) string {
	if observed {
		recordURL, err := s.catalog.RecordURL(ctx, normalized, meta.Title, meta.Author)
		if err != nil {
			s.logger.Warn("record link resolution failed",
				"isbn", normalized,
				"error", err,
			)
		} else if recordURL != "" {
			return recordURL
		}
	}
	return s.catalog.SearchURL(normalized)
}

// mapStoreError converts store sentinel errors into domain errors with the
// entity name in the message.
func mapStoreError(err error, entity string) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return errors.NotFoundf("%s not found", entity)
	case errors.Is(err, store.ErrAlreadyExists):
		return errors.AlreadyExists(fmt.Sprintf("%s already exists", entity))
	default:
		return errors.Wrapf(err, errors.CodeInternal, "%s lookup failed", entity)
	}
}
