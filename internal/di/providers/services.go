package providers

import (
	"github.com/samber/do/v2"

	"github.com/booktrackerapp/booktracker-server/internal/catalog"
	"github.com/booktrackerapp/booktracker-server/internal/config"
	"github.com/booktrackerapp/booktracker-server/internal/logger"
	"github.com/booktrackerapp/booktracker-server/internal/metadata/openlibrary"
	"github.com/booktrackerapp/booktracker-server/internal/notify"
	"github.com/booktrackerapp/booktracker-server/internal/service"
)

// ProvideDispatcher provides the shared notification dispatcher. Both the
// interactive check path and the sweep must go through the same dispatcher
// so the exactly-once ledger covers them both.
func ProvideDispatcher(i do.Injector) (*service.Dispatcher, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	mailer := do.MustInvoke[*notify.Mailer](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewDispatcher(storeHandle.Store, mailer, log.Logger), nil
}

// ProvideCheckService provides the interactive check service.
func ProvideCheckService(i do.Injector) (*service.CheckService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	metadata := do.MustInvoke[*openlibrary.Client](i)
	cat := do.MustInvoke[*catalog.Client](i)
	dispatcher := do.MustInvoke[*service.Dispatcher](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewCheckService(storeHandle.Store, metadata, cat, dispatcher, log.Logger), nil
}

// ProvideSweepService provides the batch sweep service.
func ProvideSweepService(i do.Injector) (*service.SweepService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	metadata := do.MustInvoke[*openlibrary.Client](i)
	cat := do.MustInvoke[*catalog.Client](i)
	dispatcher := do.MustInvoke[*service.Dispatcher](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSweepService(storeHandle.Store, metadata, cat, dispatcher, cfg.Sweep.ItemDelay, log.Logger), nil
}

// ProvideTrackingService provides the tracked search management service.
func ProvideTrackingService(i do.Injector) (*service.TrackingService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewTrackingService(storeHandle.Store, log.Logger), nil
}
