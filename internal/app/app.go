// Package app assembles the PlayPad services from configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/park285/playpad-server/internal/assistant"
	"github.com/park285/playpad-server/internal/board"
	corechess "github.com/park285/playpad-server/internal/chess"
	"github.com/park285/playpad-server/internal/chess/openingbook"
	"github.com/park285/playpad-server/internal/chess/uci"
	"github.com/park285/playpad-server/internal/config"
	"github.com/park285/playpad-server/internal/httpapi"
	"github.com/park285/playpad-server/internal/msgcat"
	"github.com/park285/playpad-server/internal/outbound"
	"github.com/park285/playpad-server/internal/service/cache"
	svcchess "github.com/park285/playpad-server/internal/service/chess"
	"github.com/park285/playpad-server/internal/service/scheduler"
	"go.uber.org/zap"
)

type Deps struct {
	Server    *httpapi.Server
	Chess     *svcchess.Service
	Scheduler *scheduler.Service
	Assistant *assistant.Assistant

	closers []func() error
}

// New builds every service. Redis, PostgreSQL and the UCI engine are used
// when configured; otherwise in-process stores and the book analyzer serve.
func New(ctx context.Context, cfg *config.AppConfig, logger *zap.Logger) (*Deps, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &Deps{}

	catalog, err := msgcat.New(cfg.MsgcatDir)
	if err != nil {
		return nil, fmt.Errorf("load messages: %w", err)
	}

	store, err := d.sessionStore(cfg, logger)
	if err != nil {
		return nil, d.fail(err)
	}
	repo, err := d.taskRepository(ctx, cfg, logger)
	if err != nil {
		return nil, d.fail(err)
	}
	analyzer, err := d.analyzer(cfg, catalog, logger)
	if err != nil {
		return nil, d.fail(err)
	}

	seed := cfg.ChessRandomSeed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	d.Chess, err = svcchess.NewService(store, board.NewRandomSelector(seed), analyzer, svcchess.NewSVGBoardRenderer(), catalog, svcchess.Config{
		SessionTTL:     time.Duration(cfg.ChessSessionTTLSec) * time.Second,
		ReplyDelay:     cfg.ChessReplyDelay,
		HistoryDisplay: cfg.ChessHistoryDisplay,
	}, logger.Named("chess"))
	if err != nil {
		return nil, d.fail(err)
	}

	d.Scheduler, err = scheduler.NewService(repo, catalog, logger.Named("scheduler"))
	if err != nil {
		return nil, d.fail(err)
	}

	client := outbound.NewClient(outbound.WithTimeout(cfg.OutboundTimeout))
	d.Assistant = assistant.New(client, catalog, assistant.Config{
		GeminiAPIKey:     cfg.GeminiAPIKey,
		GeminiURL:        cfg.GeminiAPIURL,
		WikipediaURL:     cfg.WikipediaAPIURL,
		YouTubeSearchURL: cfg.YouTubeSearchURL,
	}, logger.Named("assistant"))

	d.Server, err = httpapi.NewServer(d.Assistant, d.Chess, d.Scheduler, httpapi.Config{
		Addr:            cfg.HTTPAddr,
		CORSOrigins:     cfg.CORSOrigins,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger.Named("http"))
	if err != nil {
		return nil, d.fail(err)
	}
	return d, nil
}

func (d *Deps) sessionStore(cfg *config.AppConfig, logger *zap.Logger) (cache.Store, error) {
	if strings.TrimSpace(cfg.RedisURL) == "" {
		logger.Info("session_store", zap.String("kind", "memory"))
		return cache.NewMemoryStore(), nil
	}
	cconf, err := cache.ParseRedisURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	svc, err := cache.NewCacheService(*cconf, logger.Named("cache"))
	if err != nil {
		return nil, fmt.Errorf("init cache: %w", err)
	}
	d.closers = append(d.closers, svc.Close)
	logger.Info("session_store", zap.String("kind", "redis"), zap.String("host", cconf.Host))
	return svc, nil
}

func (d *Deps) taskRepository(ctx context.Context, cfg *config.AppConfig, logger *zap.Logger) (scheduler.Repository, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		logger.Info("task_repository", zap.String("kind", "memory"))
		return scheduler.NewMemoryRepository(), nil
	}
	db, err := scheduler.OpenPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	d.closers = append(d.closers, db.Close)
	if err := scheduler.EnsureSchema(ctx, db); err != nil {
		return nil, err
	}
	logger.Info("task_repository", zap.String("kind", "postgres"))
	return scheduler.NewRepository(db), nil
}

func (d *Deps) analyzer(cfg *config.AppConfig, catalog *msgcat.Catalog, logger *zap.Logger) (corechess.Analyzer, error) {
	book := openingbook.New()
	if cfg.ChessBookPath != "" {
		b, err := openingbook.NewWithPolyglot(cfg.ChessBookPath)
		if err != nil {
			return nil, fmt.Errorf("load opening book: %w", err)
		}
		book = b
	}
	fallback := corechess.NewBookAnalyzer(book, catalog)
	if cfg.StockfishPath == "" {
		logger.Info("chess_analyzer", zap.String("kind", "book"))
		return fallback, nil
	}
	engine, err := corechess.NewEngineAnalyzer(corechess.EngineConfig{
		Command:            uci.Command{Path: cfg.StockfishPath},
		MaxDepth:           cfg.ChessAnalysisDepth,
		PerOptionsCapacity: cfg.ChessEngineCapacity,
	}, fallback, logger.Named("engine"))
	if err != nil {
		return nil, fmt.Errorf("init engine: %w", err)
	}
	d.closers = append(d.closers, engine.Close)
	logger.Info("chess_analyzer", zap.String("kind", "engine"), zap.String("path", cfg.StockfishPath))
	return engine, nil
}

func (d *Deps) fail(err error) error {
	if cerr := d.Close(); cerr != nil {
		return errors.Join(err, cerr)
	}
	return err
}

// Close releases the engine pool and store connections, newest first.
func (d *Deps) Close() error {
	var errs []error
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	d.closers = nil
	return errors.Join(errs...)
}
