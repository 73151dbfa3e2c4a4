package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

type AppConfig struct {
	HTTPAddr        string
	CORSOrigins     []string
	ShutdownTimeout time.Duration

	RedisURL    string
	DatabaseURL string

	GeminiAPIKey     string
	GeminiAPIURL     string
	WikipediaAPIURL  string
	YouTubeSearchURL string
	OutboundTimeout  time.Duration

	StockfishPath       string
	ChessBookPath       string
	ChessEngineCapacity int
	ChessSessionTTLSec  int
	ChessReplyDelay     time.Duration
	ChessAnalysisDepth  int
	ChessRandomSeed     uint64
	ChessHistoryDisplay int

	MsgcatDir string
}

const (
	DefaultGeminiURL     = "https://generativelanguage.googleapis.com/v1beta/models/gemini-2.0-flash:generateContent"
	DefaultWikipediaURL  = "https://en.wikipedia.org/api/rest_v1/page/summary"
	DefaultYouTubeSearch = "https://www.youtube.com/results"
)

func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		HTTPAddr:            ":5000",
		CORSOrigins:         []string{"*"},
		ShutdownTimeout:     10 * time.Second,
		GeminiAPIURL:        DefaultGeminiURL,
		WikipediaAPIURL:     DefaultWikipediaURL,
		YouTubeSearchURL:    DefaultYouTubeSearch,
		OutboundTimeout:     15 * time.Second,
		ChessSessionTTLSec:  86400,
		ChessReplyDelay:     0,
		ChessAnalysisDepth:  12,
		ChessHistoryDisplay: 20,
		ChessEngineCapacity: 2,
	}

	if v := strings.TrimSpace(os.Getenv("HTTP_ADDR")); v != "" {
		cfg.HTTPAddr = v
	} else if v := strings.TrimSpace(os.Getenv("PORT")); v != "" {
		cfg.HTTPAddr = ":" + v
	}
	if v := strings.TrimSpace(os.Getenv("CORS_ORIGINS")); v != "" {
		cfg.CORSOrigins = splitList(v)
	}
	if d, ok := durationEnv("SHUTDOWN_TIMEOUT"); ok && d > 0 {
		cfg.ShutdownTimeout = d
	}

	cfg.RedisURL = strings.TrimSpace(os.Getenv("REDIS_URL"))
	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))

	cfg.GeminiAPIKey = strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
	if v := strings.TrimSpace(os.Getenv("GEMINI_API_URL")); v != "" {
		cfg.GeminiAPIURL = v
	}
	if v := strings.TrimSpace(os.Getenv("WIKIPEDIA_API_URL")); v != "" {
		cfg.WikipediaAPIURL = v
	}
	if v := strings.TrimSpace(os.Getenv("YOUTUBE_SEARCH_URL")); v != "" {
		cfg.YouTubeSearchURL = v
	}
	if d, ok := durationEnv("OUTBOUND_TIMEOUT"); ok && d > 0 {
		cfg.OutboundTimeout = d
	}

	// Chess specific
	cfg.StockfishPath = strings.TrimSpace(os.Getenv("STOCKFISH_PATH"))
	cfg.ChessBookPath = strings.TrimSpace(os.Getenv("CHESS_BOOK_PATH"))
	if v := strings.TrimSpace(os.Getenv("CHESS_ENGINE_CAPACITY")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ChessEngineCapacity = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("CHESS_SESSION_TTL")); v != "" { // seconds
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ChessSessionTTLSec = n
		}
	}
	if d, ok := durationEnv("CHESS_REPLY_DELAY"); ok && d >= 0 {
		cfg.ChessReplyDelay = d
	}
	if v := strings.TrimSpace(os.Getenv("CHESS_ANALYSIS_DEPTH")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ChessAnalysisDepth = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("CHESS_RANDOM_SEED")); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			cfg.ChessRandomSeed = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("CHESS_HISTORY_DISPLAY")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ChessHistoryDisplay = n
		}
	}

	cfg.MsgcatDir = strings.TrimSpace(os.Getenv("MSGCAT_DIR"))

	if cfg.HTTPAddr == "" {
		return nil, errors.New("HTTP_ADDR is required")
	}
	if len(cfg.CORSOrigins) == 0 {
		return nil, errors.New("CORS_ORIGINS must list at least one origin")
	}

	return cfg, nil
}

// durationEnv accepts Go durations ("750ms", "2s") or bare milliseconds.
func durationEnv(key string) (time.Duration, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0, false
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d, true
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Millisecond, true
	}
	return 0, false
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
