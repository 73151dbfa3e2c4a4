package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"HTTP_ADDR", "PORT", "CORS_ORIGINS", "REDIS_URL", "DATABASE_URL", "GEMINI_API_KEY", "CHESS_REPLY_DELAY", "CHESS_SESSION_TTL"} {
		t.Setenv(k, "")
	}
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTPAddr != ":5000" {
		t.Fatalf("addr = %q", cfg.HTTPAddr)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "*" {
		t.Fatalf("cors = %v", cfg.CORSOrigins)
	}
	if cfg.GeminiAPIURL != DefaultGeminiURL {
		t.Fatalf("gemini url = %q", cfg.GeminiAPIURL)
	}
	if cfg.ChessReplyDelay != 0 || cfg.ChessSessionTTLSec != 86400 {
		t.Fatalf("chess defaults = %v / %d", cfg.ChessReplyDelay, cfg.ChessSessionTTLSec)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("PORT", "8080")
	t.Setenv("CORS_ORIGINS", "http://localhost:5173, https://playpad.app ,")
	t.Setenv("CHESS_REPLY_DELAY", "1500")
	t.Setenv("CHESS_SESSION_TTL", "60")
	t.Setenv("OUTBOUND_TIMEOUT", "3s")
	t.Setenv("CHESS_RANDOM_SEED", "17")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("addr = %q", cfg.HTTPAddr)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://playpad.app" {
		t.Fatalf("cors = %v", cfg.CORSOrigins)
	}
	if cfg.ChessReplyDelay != 1500*time.Millisecond {
		t.Fatalf("delay = %v", cfg.ChessReplyDelay)
	}
	if cfg.ChessSessionTTLSec != 60 || cfg.OutboundTimeout != 3*time.Second || cfg.ChessRandomSeed != 17 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestLoadChessEngineSettings(t *testing.T) {
	t.Setenv("STOCKFISH_PATH", " /usr/bin/stockfish ")
	t.Setenv("CHESS_BOOK_PATH", "/data/book.bin")
	t.Setenv("CHESS_ENGINE_CAPACITY", "0")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.StockfishPath != "/usr/bin/stockfish" || cfg.ChessBookPath != "/data/book.bin" {
		t.Fatalf("paths = %q %q", cfg.StockfishPath, cfg.ChessBookPath)
	}
	if cfg.ChessEngineCapacity != 2 {
		t.Fatalf("invalid capacity should keep the default, got %d", cfg.ChessEngineCapacity)
	}
}
