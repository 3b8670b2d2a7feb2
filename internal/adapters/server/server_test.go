package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hylla/pipeline/internal/adapters/server/common"
	"github.com/hylla/pipeline/internal/app"
	"github.com/hylla/pipeline/internal/domain"
)

// fixtureCatalog serves one column with two items.
type fixtureCatalog struct{}

// ListColumns returns fixture columns.
func (fixtureCatalog) ListColumns(context.Context) ([]domain.Column, error) {
	return []domain.Column{
		{ID: "planned", Name: "Planned", Position: 0},
		{ID: "done", Name: "Done", Position: 1},
	}, nil
}

// ListItems returns fixture items.
func (fixtureCatalog) ListItems(context.Context) ([]domain.Item, error) {
	return []domain.Item{
		{ID: "a", ColumnID: "planned"},
		{ID: "b", ColumnID: "planned"},
	}, nil
}

// newDependencies builds adapters over a loaded service.
func newDependencies(t *testing.T) Dependencies {
	t.Helper()
	svc := app.NewService(fixtureCatalog{}, nil, nil, app.ServiceConfig{})
	if _, err := svc.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	adapter := common.NewAppServiceAdapter(svc)
	return Dependencies{Board: adapter, Watcher: adapter}
}

// TestNewHandlerRoutes verifies health and API mounts on the composed mux.
func TestNewHandlerRoutes(t *testing.T) {
	handler, cfg, err := NewHandler(Config{}, newDependencies(t))
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}
	if cfg.HTTPBind != defaultBindAddress || cfg.APIEndpoint != "/api/v1" || cfg.MCPEndpoint != "/mcp" {
		t.Fatalf("unexpected normalized config %#v", cfg)
	}

	for _, path := range []string{"/healthz", "/readyz"} {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("%s status = %d, want %d", path, rec.Code, http.StatusOK)
		}
		if !strings.Contains(rec.Body.String(), `"ok"`) {
			t.Fatalf("%s body = %q", path, rec.Body.String())
		}
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/items/b/move", strings.NewReader(`{"target":{"kind":"column","id":"done"}}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("move status = %d, want %d body=%s", rec.Code, http.StatusOK, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/board", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("board status = %d, want %d", rec.Code, http.StatusOK)
	}
	var snap app.Snapshot
	if err := json.NewDecoder(rec.Body).Decode(&snap); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	item, ok := snap.Item("b")
	if !ok || item.ColumnID != "done" {
		t.Fatalf("item b = %#v, want column done", item)
	}
	if snap.LastOrigin != app.OriginHTTP {
		t.Fatalf("last origin = %q, want http", snap.LastOrigin)
	}
}

// TestReadyzBeforeLoad verifies readiness stays unavailable until the board is loaded.
func TestReadyzBeforeLoad(t *testing.T) {
	svc := app.NewService(fixtureCatalog{}, nil, nil, app.ServiceConfig{})
	adapter := common.NewAppServiceAdapter(svc)
	handler, _, err := NewHandler(Config{}, Dependencies{Board: adapter, Watcher: adapter})
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("readyz status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
	if !strings.Contains(rec.Body.String(), `"loading"`) {
		t.Fatalf("readyz body = %q", rec.Body.String())
	}

	if _, err := svc.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("readyz status = %d, want %d", rec.Code, http.StatusOK)
	}
	var body healthStatus
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if body.Items != 2 || body.Revision == 0 {
		t.Fatalf("readyz body = %#v, want 2 items and a revision", body)
	}
}

// TestNewHandlerValidation verifies dependency and endpoint checks.
func TestNewHandlerValidation(t *testing.T) {
	if _, _, err := NewHandler(Config{}, Dependencies{}); err == nil {
		t.Fatal("expected error without board dependency")
	}
	if _, _, err := NewHandler(Config{APIEndpoint: "/x", MCPEndpoint: "x/"}, newDependencies(t)); err == nil {
		t.Fatal("expected error for colliding endpoints")
	}
}

// TestNormalizeEndpoint verifies endpoint canonicalization.
func TestNormalizeEndpoint(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{in: "", want: "/api/v1"},
		{in: "/", want: "/api/v1"},
		{in: "api/v2/", want: "/api/v2"},
		{in: " /board ", want: "/board"},
	}
	for _, tc := range cases {
		if got := normalizeEndpoint(tc.in, "/api/v1"); got != tc.want {
			t.Fatalf("normalizeEndpoint(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

// TestRunStopsOnContextCancel verifies graceful shutdown.
func TestRunStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- Run(ctx, Config{HTTPBind: "127.0.0.1:0"}, newDependencies(t))
	}()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not stop after cancel")
	}
}
