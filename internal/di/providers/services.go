package providers

import (
	"github.com/samber/do/v2"

	"github.com/monomori/monomori-server/internal/logger"
	"github.com/monomori/monomori-server/internal/media/images"
	"github.com/monomori/monomori-server/internal/service"
	"github.com/monomori/monomori-server/internal/validation"
)

// ProvideCatalogService provides item CRUD, queries and watches.
func ProvideCatalogService(i do.Injector) (*service.CatalogService, error) {
	dbHandle := do.MustInvoke[*DatabaseHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewCatalogService(dbHandle.Store, validation.New(), log.WithComponent("catalog").Logger), nil
}

// ProvidePreferenceService provides per-category view modes.
func ProvidePreferenceService(i do.Injector) (*service.PreferenceService, error) {
	prefs := do.MustInvoke[*PreferenceStoreHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewPreferenceService(prefs.Store, sseHandle.Manager, log.WithComponent("preferences").Logger), nil
}

// ProvideCoverService provides cover caching.
func ProvideCoverService(i do.Injector) (*service.CoverService, error) {
	catalog := do.MustInvoke[*service.CatalogService](i)
	storage := do.MustInvoke[*images.Storage](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewCoverService(catalog, storage, sseHandle.Manager, log.WithComponent("covers").Logger), nil
}
