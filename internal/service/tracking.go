package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/booktrackerapp/booktracker-server/internal/domain"
	"github.com/booktrackerapp/booktracker-server/internal/errors"
	"github.com/booktrackerapp/booktracker-server/internal/id"
	"github.com/booktrackerapp/booktracker-server/internal/store"
)

// TrackingService manages tracked searches and their owners outside the
// check/sweep flow: listing, removal, overrides, user provisioning.
type TrackingService struct {
	store  store.Store
	logger *slog.Logger
}

// NewTrackingService creates a tracking service.
func NewTrackingService(s store.Store, logger *slog.Logger) *TrackingService {
	return &TrackingService{
		store:  s,
		logger: logger,
	}
}

// TrackedList is an owner's searches partitioned by effective availability,
// shaped for a dashboard that shows ready-to-borrow books above the ones
// still being waited on.
type TrackedList struct {
	Available   []*domain.TrackedSearch `json:"available"`
	Unavailable []*domain.TrackedSearch `json:"unavailable"`
}

// ListTracked returns all of an owner's tracked searches, partitioned by
// effective availability.
func (s *TrackingService) ListTracked(ctx context.Context, ownerID string) (*TrackedList, error) {
	searches, err := s.store.ListSearchesByOwner(ctx, ownerID)
	if err != nil {
		return nil, mapStoreError(err, "tracked searches")
	}

	list := &TrackedList{
		Available:   []*domain.TrackedSearch{},
		Unavailable: []*domain.TrackedSearch{},
	}
	for _, search := range searches {
		if search.EffectiveAvailability() {
			list.Available = append(list.Available, search)
		} else {
			list.Unavailable = append(list.Unavailable, search)
		}
	}
	return list, nil
}

// Delete removes one of the owner's tracked searches, notification ledger
// included. Deleting a search another owner tracks is reported as not found
// rather than forbidden, so IDs cannot be probed across owners.
func (s *TrackingService) Delete(ctx context.Context, ownerID, searchID string) error {
	if err := s.store.DeleteSearch(ctx, ownerID, searchID); err != nil {
		return mapStoreError(err, "tracked search")
	}
	s.logger.Info("tracked search deleted",
		"owner_id", ownerID,
		"search_id", searchID,
	)
	return nil
}

// SetOverride sets or clears the manual unavailability override on a search
// and returns the updated row. With the override set, the search reads as
// unavailable and sweeps keep re-checking it without sending mail.
func (s *TrackingService) SetOverride(ctx context.Context, searchID string, value bool) (*domain.TrackedSearch, error) {
	if err := s.store.SetManualUnavailable(ctx, searchID, value); err != nil {
		return nil, mapStoreError(err, "tracked search")
	}
	search, err := s.store.GetSearch(ctx, searchID)
	if err != nil {
		return nil, mapStoreError(err, "tracked search")
	}
	s.logger.Info("manual override updated",
		"search_id", searchID,
		"manual_unavailable", value,
	)
	return search, nil
}

// CreateUser provisions an owner record. Email uniqueness is enforced by
// the store.
func (s *TrackingService) CreateUser(ctx context.Context, email, name string, role domain.Role) (*domain.User, error) {
	if role != domain.RoleAdmin && role != domain.RoleMember {
		return nil, errors.Validationf("unknown role %q", role)
	}

	userID, err := id.Generate("usr")
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "generate user ID")
	}

	user := &domain.User{
		ID:        userID,
		Email:     email,
		Name:      name,
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, mapStoreError(err, "user")
	}

	s.logger.Info("user created", "user_id", userID, "role", role)
	return user, nil
}

// GetUser fetches an owner record.
func (s *TrackingService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, mapStoreError(err, "user")
	}
	return user, nil
}
