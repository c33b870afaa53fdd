// Package providers builds the server's services for the DI container.
// Each provider that owns a resource returns a *Handle whose Shutdown
// releases it.
package providers

import (
	"time"

	"github.com/samber/do/v2"

	"github.com/monomori/monomori-server/internal/config"
	"github.com/monomori/monomori-server/internal/logger"
)

// Version is reported by the health and OpenAPI endpoints and advertised
// over mDNS. Release builds set it with -ldflags "-X".
//
//nolint:gochecknoglobals // Set by the linker
var Version = "dev"

// shutdownTimeout bounds how long the HTTP server waits for open requests.
const shutdownTimeout = 30 * time.Second

func ProvideConfig(do.Injector) (*config.Config, error) {
	return config.LoadConfig()
}

// ProvideLogger builds the root logger. Development builds log source
// locations.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg, err := do.Invoke[*config.Config](i)
	if err != nil {
		return nil, err
	}

	log := logger.New(logger.Config{
		Environment: cfg.App.Environment,
		Level:       logger.ParseLevel(cfg.Logger.Level),
		AddSource:   cfg.App.Environment == "development",
	})
	log.Info("monomori starting",
		"version", Version,
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"data_path", cfg.Data.BasePath,
		"port", cfg.Server.Port,
	)
	return log, nil
}
