package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/booktrackerapp/booktracker-server/internal/domain"
	"github.com/booktrackerapp/booktracker-server/internal/store"
)

// Dispatcher enforces at-most-one delivered notification per search. Both
// the interactive check and the sweep funnel through it, so neither path can
// double-notify the other's searches.
type Dispatcher struct {
	store    store.Store
	notifier Notifier
	logger   *slog.Logger
}

// NewDispatcher creates a notification dispatcher.
func NewDispatcher(s store.Store, notifier Notifier, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		store:    s,
		notifier: notifier,
		logger:   logger,
	}
}

// NotifyIfNeeded sends the availability email for a search unless one was
// already delivered. The ledger row is created before the send attempt and
// marked only after the mail was handed off, so a failed send leaves the
// search eligible for the next sweep while a failed mark after a successful
// send is logged but not retried here.
// Returns whether a mail actually went out in this call.
func (d *Dispatcher) NotifyIfNeeded(ctx context.Context, search *domain.TrackedSearch, email string) (bool, error) {
	n, err := d.store.EnsureNotification(ctx, search.ID)
	if err != nil {
		return false, fmt.Errorf("ensure notification: %w", err)
	}
	if n.Delivered() {
		return false, nil
	}

	if err := d.notifier.SendAvailable(ctx, search, email); err != nil {
		return false, fmt.Errorf("send notification: %w", err)
	}

	if err := d.store.MarkNotified(ctx, search.ID, time.Now().UTC()); err != nil {
		// The mail is out; a duplicate on the next sweep beats losing the
		// delivery record silently.
		d.logger.Error("mail sent but delivery could not be recorded",
			"search_id", search.ID,
			"error", err,
		)
	}
	return true, nil
}
