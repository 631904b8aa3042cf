// Package notify delivers availability emails. Delivery goes through a
// shoutrrr service URL, so the transport (SMTP in production) is a
// configuration concern rather than code.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"

	"github.com/k3a/html2text"
	shoutrrr "github.com/nicholas-fedor/shoutrrr"
	router "github.com/nicholas-fedor/shoutrrr/pkg/router"
	stypes "github.com/nicholas-fedor/shoutrrr/pkg/types"

	"github.com/booktrackerapp/booktracker-server/internal/config"
	"github.com/booktrackerapp/booktracker-server/internal/domain"
)

// Mailer sends availability notifications to search owners.
type Mailer struct {
	sender   *router.ServiceRouter
	enabled  bool
	html     bool
	fromName string
	logger   *slog.Logger
}

// NewMailer builds a mailer from the notification config. With delivery
// disabled the mailer is still usable; sends fail and the notification
// ledger keeps the searches eligible for a later sweep.
func NewMailer(cfg config.NotifyConfig, logger *slog.Logger) (*Mailer, error) {
	m := &Mailer{
		enabled:  cfg.Enabled,
		html:     cfg.HTML,
		fromName: cfg.FromName,
		logger:   logger,
	}
	if !cfg.Enabled {
		logger.Warn("email delivery disabled, availability notifications will not be sent")
		return m, nil
	}

	sender, err := shoutrrr.CreateSender(cfg.ServiceURL)
	if err != nil {
		return nil, fmt.Errorf("create notification sender: %w", err)
	}
	if cfg.Timeout > 0 {
		sender.Timeout = cfg.Timeout
	}
	sender.SetLogger(log.New(io.Discard, "", 0))
	m.sender = sender
	return m, nil
}

// SendAvailable emails the owner that a tracked book can now be borrowed.
// Returns an error when delivery cannot be confirmed; callers must not
// record the notification as delivered in that case.
func (m *Mailer) SendAvailable(ctx context.Context, search *domain.TrackedSearch, email string) error {
	if !m.enabled || m.sender == nil {
		return fmt.Errorf("email delivery disabled")
	}

	var body bytes.Buffer
	if err := availableTemplate.Execute(&body, availableEmail(search)); err != nil {
		return fmt.Errorf("render notification: %w", err)
	}

	params := stypes.Params{}
	params.SetTitle(fmt.Sprintf("Book Available: %s", search.Title))
	params["fromname"] = m.fromName
	params["toaddresses"] = email

	// One template serves both modes: relays that only take plain text get
	// the HTML body flattened instead of a second template to maintain.
	message := body.String()
	if m.html {
		params["usehtml"] = "Yes"
	} else {
		message = html2text.HTML2Text(message)
	}

	errs := m.sender.Send(message, &params)
	for _, err := range errs {
		if err != nil {
			return fmt.Errorf("send notification: %w", err)
		}
	}

	m.logger.Info("availability notification sent",
		"search_id", search.ID,
		"isbn", search.ISBN,
	)
	return nil
}
