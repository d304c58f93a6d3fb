package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdhruv555/aura-assist/internal/api/handlers"
	"github.com/jdhruv555/aura-assist/internal/pipeline"
	"github.com/jdhruv555/aura-assist/pkg/logging"
)

type noopPipeline struct{}

func (noopPipeline) StartCall(context.Context, string, string) pipeline.StartResult {
	return pipeline.StartResult{CallID: "call-1", Created: true}
}

func (noopPipeline) ProcessTurn(context.Context, string, string, string) pipeline.TurnResult {
	return pipeline.TurnResult{Status: pipeline.StatusComplete}
}

func (noopPipeline) EndCall(context.Context, string, pipeline.Outcome) error { return nil }
func (noopPipeline) RecordSelection(string, string)                          {}
func (noopPipeline) Snapshot(string) (pipeline.CallState, bool)              { return pipeline.CallState{}, false }
func (noopPipeline) ActiveCalls() int                                        { return 0 }

func newTestHandler() http.Handler {
	reg := prometheus.NewRegistry()
	return New(&Config{
		Logger:             logging.Default(),
		CallsHandler:       handlers.NewCallsHandler(noopPipeline{}, logging.Default()),
		MetricsHandler:     promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		CORSAllowedOrigins: []string{"https://dashboard.example.com"},
	})
}

func TestRouterServesCoreRoutes(t *testing.T) {
	router := newTestHandler()

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodPost, "/calls/start", http.StatusCreated},
		{http.MethodGet, "/calls/missing", http.StatusNotFound},
		{http.MethodGet, "/nope", http.StatusNotFound},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, tt.path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, tt.want, rec.Code, "%s %s", tt.method, tt.path)
	}
}

func TestRouterAppliesCORS(t *testing.T) {
	router := newTestHandler()

	req := httptest.NewRequest(http.MethodOptions, "/calls/start", nil)
	req.Header.Set("Origin", "https://dashboard.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://dashboard.example.com", rec.Header().Get("Access-Control-Allow-Origin"))

	// Unknown origins get no CORS grant.
	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
