// Package mdns advertises the server on the local network so clients can
// find it without typing an address. Advertisement goes through the Avahi
// daemon over the D-Bus system bus.
package mdns

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/holoplot/go-avahi"
)

const (
	// ServiceType is the DNS-SD service type clients browse for.
	ServiceType = "_monomori._tcp"

	// APIVersion is advertised in the TXT record.
	APIVersion = "v1"
)

// Info is what the TXT record tells a browsing client.
type Info struct {
	Name    string // Shown in client server pickers
	Version string
}

// TXT renders the record as key=value strings.
func (i Info) TXT() []string {
	txt := []string{
		"name=" + i.Name,
		"api=" + APIVersion,
	}
	if i.Version != "" {
		txt = append(txt, "version="+i.Version)
	}
	return txt
}

// publisher registers one service with a responder.
type publisher interface {
	Publish(name, serviceType string, port int, txt []string) error
	Close()
}

// Service manages the advertisement. Start and Stop may be called any
// number of times, from any goroutine.
type Service struct {
	logger  *slog.Logger
	connect func() (publisher, error)

	mu   sync.Mutex
	live publisher
}

// NewService creates a service that publishes through Avahi.
func NewService(logger *slog.Logger) *Service {
	return &Service{
		logger:  logger,
		connect: connectAvahi,
	}
}

// Start advertises the server on port, replacing any earlier
// advertisement. Failure is usually not fatal to the caller: containers
// commonly have no Avahi daemon or system bus.
func (s *Service) Start(info Info, port int) error {
	if port <= 0 || port > 65535 {
		return fmt.Errorf("invalid port %d", port)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.live != nil {
		s.live.Close()
		s.live = nil
	}

	p, err := s.connect()
	if err != nil {
		return fmt.Errorf("connect to avahi: %w", err)
	}
	if err := p.Publish(info.Name, ServiceType, port, info.TXT()); err != nil {
		p.Close()
		return fmt.Errorf("publish %s: %w", ServiceType, err)
	}
	s.live = p

	s.logger.Info("mDNS advertisement started",
		"service", ServiceType,
		"port", port,
		"name", info.Name,
	)
	return nil
}

// Running reports whether an advertisement is live.
func (s *Service) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.live != nil
}

// Stop withdraws the advertisement.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.live != nil {
		s.live.Close()
		s.live = nil
		s.logger.Info("mDNS advertisement stopped")
	}
}

// avahiPublisher holds a private system bus connection and the entry group
// the service lives in. Freeing the group withdraws the service.
type avahiPublisher struct {
	conn   *dbus.Conn
	server *avahi.Server
	group  *avahi.EntryGroup
}

func connectAvahi() (publisher, error) {
	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return nil, fmt.Errorf("system bus: %w", err)
	}
	server, err := avahi.ServerNew(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("avahi server: %w", err)
	}
	return &avahiPublisher{conn: conn, server: server}, nil
}

func (p *avahiPublisher) Publish(name, serviceType string, port int, txt []string) error {
	group, err := p.server.EntryGroupNew()
	if err != nil {
		return fmt.Errorf("entry group: %w", err)
	}

	host, err := p.server.GetHostNameFqdn()
	if err != nil {
		p.server.EntryGroupFree(group)
		return fmt.Errorf("host name: %w", err)
	}

	records := make([][]byte, 0, len(txt))
	for _, r := range txt {
		records = append(records, []byte(r))
	}

	err = group.AddService(avahi.InterfaceUnspec, avahi.ProtoUnspec, 0,
		name, serviceType, "local", host, uint16(port), records)
	if err != nil {
		p.server.EntryGroupFree(group)
		return err
	}
	if err := group.Commit(); err != nil {
		p.server.EntryGroupFree(group)
		return fmt.Errorf("commit: %w", err)
	}
	p.group = group
	return nil
}

func (p *avahiPublisher) Close() {
	if p.group != nil {
		p.server.EntryGroupFree(p.group)
		p.group = nil
	}
	p.server.Close()
	p.conn.Close()
}
