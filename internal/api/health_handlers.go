package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
)

// Component and overall health states, ordered from best to worst.
const (
	statusHealthy   = "healthy"
	statusDegraded  = "degraded"
	statusUnhealthy = "unhealthy"
)

//nolint:gochecknoglobals // Static ranking
var statusRank = map[string]int{statusHealthy: 0, statusDegraded: 1, statusUnhealthy: 2}

func (s *Server) registerHealthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "healthCheck",
		Method:      http.MethodGet,
		Path:        "/api/v1/health",
		Summary:     "Health check",
		Description: "Reports the state of the database, search index and event feed, and which remote lookups are configured",
		Tags:        []string{"Health"},
	}, s.handleHealthCheck)
}

// ComponentHealth describes the health of a single component.
type ComponentHealth struct {
	Status  string `json:"status" doc:"healthy, degraded, or unhealthy"`
	Latency string `json:"latency,omitempty" doc:"Time the probe took"`
	Message string `json:"message,omitempty"`
}

// HealthResponse contains health check data in API responses.
type HealthResponse struct {
	Status     string                     `json:"status" doc:"Worst component status"`
	Version    string                     `json:"version"`
	Uptime     string                     `json:"uptime"`
	Items      int                        `json:"items" doc:"Items across all collections"`
	Components map[string]ComponentHealth `json:"components"`
	Lookups    map[string]bool            `json:"lookups" doc:"Remote lookups with credentials configured"`
}

// HealthOutput wraps the health response for Huma.
type HealthOutput struct {
	Body HealthResponse
}

func (s *Server) handleHealthCheck(ctx context.Context, _ *struct{}) (*HealthOutput, error) {
	resp := HealthResponse{
		Status:     statusHealthy,
		Version:    s.version,
		Uptime:     time.Since(s.startedAt).Truncate(time.Second).String(),
		Components: make(map[string]ComponentHealth, 3),
		Lookups: map[string]bool{
			"books":  s.services.Books != nil && s.services.Books.Available(),
			"movies": s.services.Movies != nil && s.services.Movies.Available(),
			"music":  s.services.Music != nil && s.services.Music.Available(),
		},
	}

	resp.Components["database"] = probe(func() (string, error) {
		counts, err := s.services.Catalog.Counts(ctx)
		for _, n := range counts {
			resp.Items += n
		}
		return "", err
	}, "database read failed")

	if s.services.Search == nil {
		resp.Components["search"] = ComponentHealth{Status: statusDegraded, Message: "search not configured"}
	} else {
		// An empty index is healthy; a new catalogue has nothing in it.
		resp.Components["search"] = probe(func() (string, error) {
			docs, err := s.services.Search.DocumentCount()
			return fmt.Sprintf("%d documents", docs), err
		}, "search index unreachable")
	}

	if s.sseManager == nil {
		resp.Components["sse"] = ComponentHealth{Status: statusDegraded, Message: "event feed not configured"}
	} else {
		resp.Components["sse"] = ComponentHealth{Status: statusHealthy, Message: clientsMessage(s.sseManager.ClientCount())}
	}

	for _, c := range resp.Components {
		if statusRank[c.Status] > statusRank[resp.Status] {
			resp.Status = c.Status
		}
	}
	return &HealthOutput{Body: resp}, nil
}

// probe times check. A failing check is unhealthy and reports failMsg
// rather than the underlying error.
func probe(check func() (string, error), failMsg string) ComponentHealth {
	start := time.Now()
	msg, err := check()
	h := ComponentHealth{Status: statusHealthy, Latency: time.Since(start).String(), Message: msg}
	if err != nil {
		h.Status = statusUnhealthy
		h.Message = failMsg
	}
	return h
}

func clientsMessage(n int) string {
	if n == 1 {
		return "1 connected client"
	}
	return fmt.Sprintf("%d connected clients", n)
}
