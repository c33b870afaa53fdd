package providers

import (
	"context"
	"fmt"
	"os"

	"github.com/samber/do/v2"

	"github.com/monomori/monomori-server/internal/config"
	"github.com/monomori/monomori-server/internal/logger"
	"github.com/monomori/monomori-server/internal/sse"
	"github.com/monomori/monomori-server/internal/store"
	"github.com/monomori/monomori-server/internal/store/sqlite"
)

// SSEManagerHandle wraps the SSE manager with its context for lifecycle management.
type SSEManagerHandle struct {
	*sse.Manager
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *SSEManagerHandle) Shutdown() error {
	h.cancel()
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Manager.Shutdown(ctx)
}

// ProvideSSEManager provides the server-sent events manager.
func ProvideSSEManager(i do.Injector) (*SSEManagerHandle, error) {
	log := do.MustInvoke[*logger.Logger](i)

	manager := sse.NewManager(log.WithComponent("sse").Logger)

	// Start in background
	ctx, cancel := context.WithCancel(context.Background())
	go manager.Start(ctx)

	log.Info("SSE manager started")

	return &SSEManagerHandle{
		Manager: manager,
		cancel:  cancel,
	}, nil
}

// DatabaseHandle wraps the collection database with shutdown capability.
type DatabaseHandle struct {
	*sqlite.Store
}

// Shutdown implements do.Shutdownable.
func (h *DatabaseHandle) Shutdown() error {
	return h.Close()
}

// ProvideDatabase opens the sqlite collection database and publishes its
// changes on the SSE manager.
func ProvideDatabase(i do.Injector) (*DatabaseHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)

	if err := os.MkdirAll(cfg.Data.BasePath, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	dbPath := cfg.DatabasePath()
	db, err := sqlite.Open(dbPath, log.WithComponent("database").Logger)
	if err != nil {
		return nil, err
	}
	db.SetChangeFeed(sseHandle.Manager)

	counts, err := db.Counts(context.Background())
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("read collection counts: %w", err)
	}
	total := 0
	for _, n := range counts {
		total += n
	}
	log.Info("Database initialized", "path", dbPath, "items", total)

	return &DatabaseHandle{Store: db}, nil
}

// PreferenceStoreHandle wraps the badger preference store with shutdown capability.
type PreferenceStoreHandle struct {
	*store.Store
}

// Shutdown implements do.Shutdownable.
func (h *PreferenceStoreHandle) Shutdown() error {
	return h.Close()
}

// ProvidePreferenceStore opens the badger store holding view modes.
func ProvidePreferenceStore(i do.Injector) (*PreferenceStoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)

	prefs, err := store.New(cfg.PreferencesPath(), log.WithComponent("preferences").Logger, sseHandle.Manager)
	if err != nil {
		return nil, err
	}

	return &PreferenceStoreHandle{Store: prefs}, nil
}
