package providers

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/monomori/monomori-server/internal/api"
	"github.com/monomori/monomori-server/internal/config"
	"github.com/monomori/monomori-server/internal/logger"
	"github.com/monomori/monomori-server/internal/mdns"
	"github.com/monomori/monomori-server/internal/service"
)

// HTTPServerHandle is the running API listener.
type HTTPServerHandle struct {
	*http.Server
	api  *api.Server
	port int
}

// Shutdown drains open requests, then stops the lookup limiter.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := h.Server.Shutdown(ctx)
	h.api.Close()
	return err
}

// ProvideHTTPServer binds the API port and starts serving. Binding happens
// before returning so a port already in use fails startup.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	feed := do.MustInvoke[*SSEManagerHandle](i)
	log := do.MustInvoke[*logger.Logger](i).WithComponent("api")

	handler := api.NewServer(&api.Services{
		Catalog:     do.MustInvoke[*service.CatalogService](i),
		Preferences: do.MustInvoke[*service.PreferenceService](i),
		Search:      do.MustInvoke[*service.SearchService](i),
		Covers:      do.MustInvoke[*service.CoverService](i),
		Books:       do.MustInvoke[*service.BookService](i),
		Movies:      do.MustInvoke[*service.MovieService](i),
		Music:       do.MustInvoke[*service.MusicService](i),
	}, feed.Manager, api.Options{
		Version:          Version,
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		LookupsPerMinute: cfg.Metadata.LookupsPerMinute,
	}, log.Logger)

	ln, err := net.Listen("tcp", ":"+cfg.Server.Port)
	if err != nil {
		handler.Close()
		return nil, fmt.Errorf("listen on port %s: %w", cfg.Server.Port, err)
	}

	srv := &http.Server{
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("HTTP server stopped unexpectedly")
		}
	}()

	port := ln.Addr().(*net.TCPAddr).Port
	log.Info("HTTP server listening", "addr", ln.Addr().String())
	return &HTTPServerHandle{Server: srv, api: handler, port: port}, nil
}

// MDNSServiceHandle is the local network announcement. Service is nil when
// advertising is disabled.
type MDNSServiceHandle struct {
	*mdns.Service
}

func (h *MDNSServiceHandle) Shutdown() error {
	if h.Service != nil {
		h.Stop()
	}
	return nil
}

// ProvideMDNSService announces the server so clients on the LAN can find
// it. A missing Avahi daemon is logged and otherwise ignored.
func ProvideMDNSService(i do.Injector) (*MDNSServiceHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i).WithComponent("mdns")

	if !cfg.Server.AdvertiseMDNS {
		log.Info("mDNS advertisement disabled")
		return &MDNSServiceHandle{}, nil
	}

	// The announced port is the one actually bound, which differs from the
	// configured one when that is "0".
	server := do.MustInvoke[*HTTPServerHandle](i)

	svc := mdns.NewService(log.Logger)
	if err := svc.Start(mdns.Info{Name: cfg.Server.Name, Version: Version}, server.port); err != nil {
		log.WithError(err).Warn("mDNS advertisement unavailable")
	}
	return &MDNSServiceHandle{Service: svc}, nil
}
