package metrics_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/serroba/snowlink/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingOutput struct {
	Body string `json:"body"`
}

func TestMetrics_Middleware(t *testing.T) {
	m := metrics.New()

	router := chi.NewMux()
	api := humachi.New(router, huma.DefaultConfig("Test", "1.0.0"))
	api.UseMiddleware(m.Middleware)

	huma.Get(api, "/items/{id}", func(_ context.Context, _ *struct {
		ID string `path:"id"`
	}) (*pingOutput, error) {
		return &pingOutput{Body: "ok"}, nil
	})

	for _, id := range []string{"1", "2"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/items/"+id, nil))
		require.Equal(t, http.StatusOK, w.Code)
	}

	assert.Equal(t, 2.0, counterValue(t, m.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/items/{id}", "200")))
}

func TestMetrics_Handler(t *testing.T) {
	m := metrics.New()
	m.Allocations.WithLabelValues(metrics.OutcomeCreated).Inc()
	m.Resolves.WithLabelValues(metrics.OutcomeNotFound).Add(3)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)

	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), `shortener_allocations_total{outcome="created"} 1`)
	assert.Contains(t, string(body), `shortener_resolves_total{outcome="not_found"} 3`)
	assert.Contains(t, string(body), "go_goroutines")
}

func TestNew_IndependentRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		_ = metrics.New()
		_ = metrics.New()
	})
}
