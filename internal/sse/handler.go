package sse

import (
	"encoding/json/v2"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/monomori/monomori-server/internal/domain"
)

const (
	// writeTimeout bounds a single event write to a stalled client.
	writeTimeout = time.Minute
	// reconnectDelay is the retry hint sent to browsers, in milliseconds.
	reconnectDelay = 3000
)

// ConnectedEventData is the payload of the first event on every stream.
type ConnectedEventData struct {
	ClientID string          `json:"clientId"`
	Category domain.Category `json:"category,omitempty"`
	Types    []EventType     `json:"types,omitempty"`
}

// Handler streams collection changes at GET /api/v1/events.
//
// Query parameters:
//
//	category  only events for this collection (heartbeats always pass)
//	types     comma separated event types, e.g. item.created,item.deleted
type Handler struct {
	manager *Manager
	logger  *slog.Logger
}

// NewHandler creates a Handler backed by manager.
func NewHandler(manager *Manager, logger *slog.Logger) *Handler {
	return &Handler{manager: manager, logger: logger}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sub, err := parseSubscription(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if r.Context().Err() != nil {
		return
	}

	client, err := h.manager.Connect(sub.Category)
	if err != nil {
		h.logger.Error("register event stream", slog.String("error", err.Error()))
		http.Error(w, "Failed to establish connection", http.StatusInternalServerError)
		return
	}
	defer h.manager.Disconnect(client.ID)

	s, ok := openStream(w, h.logger.With(slog.String("client_id", client.ID)))
	if !ok {
		return
	}
	if err := s.send("connected", ConnectedEventData{
		ClientID: client.ID,
		Category: sub.Category,
		Types:    sub.Types,
	}); err != nil {
		s.logger.Debug("stream closed before handshake", slog.String("error", err.Error()))
		return
	}

	for {
		select {
		case event, ok := <-client.EventChan:
			if !ok {
				return
			}
			if !sub.wants(event.Type) {
				continue
			}
			if err := s.send(string(event.Type), event); err != nil {
				s.logger.Debug("stream write failed", slog.String("error", err.Error()))
				return
			}
		case <-client.Done:
			return
		case <-r.Context().Done():
			return
		}
	}
}

// subscription is what a client asked to receive.
type subscription struct {
	Category domain.Category
	Types    []EventType
}

func parseSubscription(r *http.Request) (subscription, error) {
	var sub subscription
	q := r.URL.Query()

	if raw := q.Get("category"); raw != "" {
		category, ok := domain.ParseCategory(raw)
		if !ok {
			return sub, fmt.Errorf("unknown category %q", raw)
		}
		sub.Category = category
	}

	if raw := q.Get("types"); raw != "" {
		for part := range strings.SplitSeq(raw, ",") {
			t := EventType(strings.TrimSpace(part))
			if t == "" {
				continue
			}
			if !t.Known() {
				return sub, fmt.Errorf("unknown event type %q", t)
			}
			sub.Types = append(sub.Types, t)
		}
	}
	return sub, nil
}

// wants reports whether events of type t go out on this subscription.
// Heartbeats always do; they keep proxies from closing idle streams.
func (s subscription) wants(t EventType) bool {
	if t == EventHeartbeat || len(s.Types) == 0 {
		return true
	}
	return slices.Contains(s.Types, t)
}

// ServeUpdates streams every value received from updates as an event
// named name, encoded by encode, until updates closes or the request ends.
// Idle streams get a comment line every heartbeat interval.
func ServeUpdates[T any](w http.ResponseWriter, r *http.Request, name string, updates <-chan T, encode func(T) any, logger *slog.Logger) {
	s, ok := openStream(w, logger)
	if !ok {
		return
	}
	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case v, ok := <-updates:
			if !ok {
				return
			}
			if err := s.send(name, encode(v)); err != nil {
				s.logger.Debug("stream write failed", slog.String("error", err.Error()))
				return
			}
		case <-ticker.C:
			if err := s.comment("ping"); err != nil {
				return
			}
		case <-r.Context().Done():
			return
		}
	}
}

// openStream sends the event stream headers and the retry hint. It answers
// 500 and reports false when w cannot flush.
func openStream(w http.ResponseWriter, logger *slog.Logger) (*stream, bool) {
	header := w.Header()
	header.Set("Content-Type", "text/event-stream")
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	header.Set("X-Accel-Buffering", "no")

	rc := http.NewResponseController(w)
	if err := rc.Flush(); err != nil {
		logger.Error("response does not support streaming", slog.String("error", err.Error()))
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return nil, false
	}
	s := &stream{w: w, rc: rc, logger: logger}
	s.retry(reconnectDelay)
	return s, true
}

// stream writes text/event-stream frames to one client.
type stream struct {
	w      io.Writer
	rc     *http.ResponseController
	logger *slog.Logger
	seq    uint64
}

func (s *stream) retry(ms int) {
	_, _ = io.WriteString(s.w, "retry: "+strconv.Itoa(ms)+"\n\n")
}

func (s *stream) comment(text string) error {
	if _, err := io.WriteString(s.w, ": "+text+"\n\n"); err != nil {
		return err
	}
	return s.rc.Flush()
}

// send frames payload as one event and flushes it:
//
//	id: <n>
//	event: <name>
//	data: <json>
func (s *stream) send(name string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", name, err)
	}

	s.seq++
	var b strings.Builder
	b.Grow(len(data) + len(name) + 32)
	b.WriteString("id: ")
	b.WriteString(strconv.FormatUint(s.seq, 10))
	b.WriteString("\nevent: ")
	b.WriteString(name)
	b.WriteString("\ndata: ")
	b.Write(data)
	b.WriteString("\n\n")

	if _, err := io.WriteString(s.w, b.String()); err != nil {
		return err
	}
	if err := s.rc.Flush(); err != nil {
		return err
	}
	if err := s.rc.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil && !errors.Is(err, http.ErrNotSupported) {
		s.logger.Debug("set write deadline", slog.String("error", err.Error()))
	}
	return nil
}
