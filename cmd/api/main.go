// Command api runs the monomori server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/do/v2"

	"github.com/monomori/monomori-server/internal/di"
	"github.com/monomori/monomori-server/internal/logger"
)

const stopTimeout = 45 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	injector := di.NewContainer()
	if err := di.Bootstrap(injector); err != nil {
		fmt.Fprintf(os.Stderr, "monomori: %v\n", err)
		os.Exit(1)
	}
	log := do.MustInvoke[*logger.Logger](injector)

	<-ctx.Done()
	stop()
	log.Info("Shutdown requested")

	// Providers are torn down in reverse dependency order: the HTTP server
	// and mDNS announcement go first, the stores last.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	if errs := injector.ShutdownWithContext(shutdownCtx); errs != nil && errs.Len() > 0 {
		log.Error("Shutdown finished with errors", "error", errs.Error())
		os.Exit(1)
	}
	log.Info("Server stopped")
}
