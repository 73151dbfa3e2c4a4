package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/park285/playpad-server/internal/config"
)

func baseConfig() *config.AppConfig {
	return &config.AppConfig{
		HTTPAddr:            ":0",
		ShutdownTimeout:     time.Second,
		OutboundTimeout:     time.Second,
		ChessSessionTTLSec:  60,
		ChessEngineCapacity: 1,
		ChessRandomSeed:     7,
	}
}

func TestNewInMemory(t *testing.T) {
	deps, err := New(context.Background(), baseConfig(), nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer deps.Close()

	rec := httptest.NewRecorder()
	deps.Server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/chess/games", strings.NewReader(`{"mode":"ai"}`))
	deps.Server.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("new game status = %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestNewWithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := baseConfig()
	cfg.RedisURL = "redis://" + mr.Addr() + "/0"

	deps, err := New(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if len(deps.closers) != 1 {
		t.Fatalf("closers = %d", len(deps.closers))
	}
	if err := deps.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestNewRejectsBadInputs(t *testing.T) {
	if _, err := New(context.Background(), nil, nil); err == nil {
		t.Fatalf("expected nil config error")
	}
	cfg := baseConfig()
	cfg.ChessBookPath = t.TempDir() + "/missing.bin"
	if _, err := New(context.Background(), cfg, nil); err == nil {
		t.Fatalf("expected book load error")
	}
}
