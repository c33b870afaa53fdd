package sse

import (
	"context"
	"iter"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/monomori/monomori-server/internal/domain"
	"github.com/monomori/monomori-server/internal/id"
)

const (
	queueSize         = 1000
	clientBufferSize  = 100
	heartbeatInterval = 30 * time.Second
)

// Client is one subscriber: an HTTP event stream or an in-process listener.
type Client struct {
	ConnectedAt time.Time
	EventChan   chan Event
	Done        chan struct{}
	ID          string
	// Category limits delivery to one collection. Empty receives all.
	Category domain.Category
}

// accepts reports whether e should reach c. Uncategorised events such as
// heartbeats go to everyone.
func (c *Client) accepts(e Event) bool {
	return e.Category == "" || c.Category == "" || e.Category == c.Category
}

// close ends the subscription. Callers hold the manager's client lock and
// have removed c from the registry, so this runs once per client.
func (c *Client) close() {
	close(c.Done)
	close(c.EventChan)
}

// Manager fans store and service events out to subscribers. Emit never
// blocks the writer; a subscriber that falls behind loses events.
type Manager struct {
	logger *slog.Logger
	queue  chan Event

	mu      sync.RWMutex
	clients map[string]*Client

	// queueMu guards closing queue against concurrent Emit.
	queueMu sync.RWMutex
	closed  bool

	running   sync.WaitGroup
	heartbeat time.Duration
}

// NewManager creates a Manager. Call Start to begin delivery.
func NewManager(logger *slog.Logger) *Manager {
	return &Manager{
		logger:    logger,
		queue:     make(chan Event, queueSize),
		clients:   make(map[string]*Client),
		heartbeat: heartbeatInterval,
	}
}

// Start delivers queued events and periodic heartbeats until ctx is done
// or the queue is closed by Shutdown. It blocks; run it in a goroutine.
func (m *Manager) Start(ctx context.Context) {
	m.running.Add(1)
	defer m.running.Done()

	ticker := time.NewTicker(m.heartbeat)
	defer ticker.Stop()

	m.logger.Info("event feed started")
	for {
		select {
		case <-ctx.Done():
			m.logger.Info("event feed stopped")
			m.dropAll()
			return
		case <-ticker.C:
			m.broadcast(NewHeartbeatEvent())
		case event, ok := <-m.queue:
			if !ok {
				return
			}
			m.broadcast(event)
		}
	}
}

// Shutdown stops accepting events, delivers what is still queued, and
// disconnects every client. Delivery is abandoned when ctx expires.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.queueMu.Lock()
	if m.closed {
		m.queueMu.Unlock()
		return nil
	}
	m.closed = true
	close(m.queue)
	m.queueMu.Unlock()

	drained := make(chan struct{})
	go func() {
		defer close(drained)
		for event := range m.queue {
			m.broadcast(event)
		}
	}()

	select {
	case <-drained:
	case <-ctx.Done():
		m.logger.Warn("event feed shutdown timed out, pending events dropped")
	}

	m.running.Wait()
	m.dropAll()
	m.logger.Info("event feed shut down")
	return nil
}

func (m *Manager) broadcast(event Event) {
	var sent, skipped, lost int

	m.mu.RLock()
	for _, c := range m.clients {
		if !c.accepts(event) {
			skipped++
			continue
		}
		select {
		case c.EventChan <- event:
			sent++
		default:
			lost++
			m.logger.Warn("subscriber too slow, event dropped",
				slog.String("client_id", c.ID),
				slog.String("event_type", string(event.Type)))
		}
	}
	m.mu.RUnlock()

	if event.Type == EventHeartbeat {
		return
	}
	m.logger.Debug("event delivered",
		slog.String("event_type", string(event.Type)),
		slog.String("category", string(event.Category)),
		slog.Int("sent", sent),
		slog.Int("skipped", skipped),
		slog.Int("dropped", lost))
}

// Connect registers a subscriber. A non-empty category restricts it to
// events of that collection.
func (m *Manager) Connect(category domain.Category) (*Client, error) {
	clientID, err := id.Generate("sse")
	if err != nil {
		return nil, err
	}
	c := &Client{
		ID:          clientID,
		Category:    category,
		EventChan:   make(chan Event, clientBufferSize),
		Done:        make(chan struct{}),
		ConnectedAt: time.Now(),
	}

	m.mu.Lock()
	m.clients[clientID] = c
	n := len(m.clients)
	m.mu.Unlock()

	m.logger.Debug("subscriber connected",
		slog.String("client_id", clientID),
		slog.String("category", string(category)),
		slog.Int("subscribers", n))
	return c, nil
}

// Disconnect unregisters a subscriber. Unknown ids are ignored.
func (m *Manager) Disconnect(clientID string) {
	m.mu.Lock()
	c, ok := m.clients[clientID]
	if ok {
		delete(m.clients, clientID)
		c.close()
	}
	n := len(m.clients)
	m.mu.Unlock()

	if ok {
		m.logger.Debug("subscriber disconnected",
			slog.String("client_id", clientID),
			slog.Duration("connected_for", time.Since(c.ConnectedAt)),
			slog.Int("subscribers", n))
	}
}

// Listen turns the feed for one category into bare change signals for
// watch queries. At most one signal is pending at a time, so a burst of
// writes costs one re-query. When types is empty any non-heartbeat event
// counts. The channel closes after stop is called or on shutdown.
func (m *Manager) Listen(category domain.Category, types ...EventType) (<-chan struct{}, func(), error) {
	c, err := m.Connect(category)
	if err != nil {
		return nil, nil, err
	}

	signals := make(chan struct{}, 1)
	go func() {
		defer close(signals)
		for event := range c.EventChan {
			if event.Type == EventHeartbeat || (len(types) > 0 && !slices.Contains(types, event.Type)) {
				continue
			}
			select {
			case signals <- struct{}{}:
			default:
			}
		}
	}()

	var once sync.Once
	return signals, func() { once.Do(func() { m.Disconnect(c.ID) }) }, nil
}

// Emit queues an event without blocking. It satisfies the store's change
// feed interface; values that are not an Event are logged and ignored.
func (m *Manager) Emit(event any) {
	e, ok := event.(Event)
	if !ok {
		m.logger.Error("ignoring non-event value on feed", slog.Any("value", event))
		return
	}

	m.queueMu.RLock()
	defer m.queueMu.RUnlock()
	if m.closed {
		return
	}
	select {
	case m.queue <- e:
	default:
		m.logger.Error("event queue full, event dropped", slog.String("event_type", string(e.Type)))
	}
}

// Clients iterates over a snapshot of the connected subscribers.
func (m *Manager) Clients() iter.Seq[*Client] {
	m.mu.RLock()
	snapshot := slices.Collect(maps.Values(m.clients))
	m.mu.RUnlock()
	return slices.Values(snapshot)
}

// ClientCount returns the number of connected subscribers.
func (m *Manager) ClientCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clients)
}

func (m *Manager) dropAll() {
	m.mu.Lock()
	for key, c := range m.clients {
		delete(m.clients, key)
		c.close()
	}
	m.mu.Unlock()
}
