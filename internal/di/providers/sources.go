package providers

import (
	"github.com/samber/do/v2"

	"github.com/booktrackerapp/booktracker-server/internal/catalog"
	"github.com/booktrackerapp/booktracker-server/internal/config"
	"github.com/booktrackerapp/booktracker-server/internal/logger"
	"github.com/booktrackerapp/booktracker-server/internal/metadata/openlibrary"
	"github.com/booktrackerapp/booktracker-server/internal/notify"
)

// ProvideOpenLibraryClient provides the bibliographic metadata source.
func ProvideOpenLibraryClient(i do.Injector) (*openlibrary.Client, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	return openlibrary.NewClient(cfg.OpenLibrary, log.Logger), nil
}

// ProvideCatalogClient provides the library catalog scraper.
func ProvideCatalogClient(i do.Injector) (*catalog.Client, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	return catalog.NewClient(cfg.Catalog, log.Logger), nil
}

// ProvideMailer provides the availability email sender.
func ProvideMailer(i do.Injector) (*notify.Mailer, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	return notify.NewMailer(cfg.Notify, log.Logger)
}
