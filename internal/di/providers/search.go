package providers

import (
	"context"
	"time"

	"github.com/samber/do/v2"

	"github.com/monomori/monomori-server/internal/config"
	"github.com/monomori/monomori-server/internal/logger"
	"github.com/monomori/monomori-server/internal/search"
	"github.com/monomori/monomori-server/internal/service"
)

// SearchIndexHandle owns the Bleve index files.
type SearchIndexHandle struct {
	*search.SearchIndex
}

func (h *SearchIndexHandle) Shutdown() error {
	return h.Close()
}

func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i).WithComponent("search")

	index, err := search.NewSearchIndex(search.Options{
		DataPath: cfg.Data.BasePath,
		Logger:   log.Logger,
	})
	if err != nil {
		return nil, err
	}
	return &SearchIndexHandle{SearchIndex: index}, nil
}

// ProvideSearchService builds the search service and registers it as the
// database's indexer, so saves and deletes update the index from then on.
func ProvideSearchService(i do.Injector) (*service.SearchService, error) {
	index := do.MustInvoke[*SearchIndexHandle](i)
	db := do.MustInvoke[*DatabaseHandle](i)
	log := do.MustInvoke[*logger.Logger](i).WithComponent("search")

	svc := service.NewSearchService(index.SearchIndex, db.Store, log.Logger)
	db.SetSearchIndexer(svc)
	return svc, nil
}

// StartSearchBackfill fills an empty index from the database in the
// background. Searches return partial results until it finishes.
func StartSearchBackfill(i do.Injector) {
	svc := do.MustInvoke[*service.SearchService](i)
	log := do.MustInvoke[*logger.Logger](i).WithComponent("search")

	go func() {
		started := time.Now()
		if err := svc.EnsureIndexed(context.Background()); err != nil {
			log.WithError(err).Error("search backfill failed")
			return
		}
		docs, _ := svc.DocumentCount()
		log.Info("search index ready", "documents", docs, "took", time.Since(started))
	}()
}
