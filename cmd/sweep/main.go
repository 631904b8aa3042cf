// Package main runs one availability sweep over every waiting tracked
// search. Intended to be invoked daily from cron or a systemd timer; it
// exits zero even when individual items failed, since those are counted in
// the summary and retried on the next run.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/do/v2"

	"github.com/booktrackerapp/booktracker-server/internal/di"
	"github.com/booktrackerapp/booktracker-server/internal/di/providers"
	"github.com/booktrackerapp/booktracker-server/internal/logger"
)

func main() {
	injector := di.NewContainer()

	sweeper, err := di.BootstrapSweep(injector)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap sweep: %v\n", err)
		os.Exit(1)
	}

	log := do.MustInvoke[*logger.Logger](injector)

	// A signal stops the sweep between items; partial progress is durable.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	summary, err := sweeper.Run(ctx)
	if err != nil && summary == nil {
		log.Error("Sweep failed", "error", err)
		shutdown(injector, log)
		os.Exit(1)
	}

	log.Info("Sweep summary",
		"checked", summary.Checked,
		"became_available", summary.BecameAvailable,
		"notifications_sent", summary.NotificationsSent,
		"errors", summary.Errors,
	)

	shutdown(injector, log)
}

func shutdown(injector *do.RootScope, log *logger.Logger) {
	if err := injector.Shutdown(); err != nil {
		log.Error("Shutdown error", "error", err)
	}
	if storeHandle, err := do.Invoke[*providers.StoreHandle](injector); err == nil {
		if err := storeHandle.Shutdown(); err != nil {
			log.Error("Failed to close database", "error", err)
		}
	}
}
