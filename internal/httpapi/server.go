// Package httpapi serves the PlayPad REST and websocket API.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/park285/playpad-server/internal/assistant"
	svcchess "github.com/park285/playpad-server/internal/service/chess"
	"github.com/park285/playpad-server/internal/service/scheduler"
	"go.uber.org/zap"
)

type Config struct {
	Addr            string
	CORSOrigins     []string
	ShutdownTimeout time.Duration
	// WSPingInterval is the keepalive period of chat websockets.
	WSPingInterval time.Duration
}

type Server struct {
	assistant *assistant.Assistant
	chess     *svcchess.Service
	tasks     *scheduler.Service
	cfg       Config
	logger    *zap.Logger
}

func NewServer(a *assistant.Assistant, chess *svcchess.Service, tasks *scheduler.Service, cfg Config, logger *zap.Logger) (*Server, error) {
	if a == nil || chess == nil || tasks == nil {
		return nil, fmt.Errorf("assistant, chess and scheduler services are required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	if cfg.WSPingInterval <= 0 {
		cfg.WSPingInterval = 30 * time.Second
	}
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{"*"}
	}
	return &Server{assistant: a, chess: chess, tasks: tasks, cfg: cfg, logger: logger}, nil
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(cors(s.cfg.CORSOrigins))

		r.Post("/chatbot", s.handleChat)
		r.Post("/voicechat", s.handleVoice)
		r.Get("/chat/ws", s.handleChatSocket)

		r.Get("/tasks", s.handleListTasks)
		r.Post("/tasks", s.handleCreateTask)
		r.Put("/tasks/{id}", s.handleUpdateTask)
		r.Delete("/tasks/{id}", s.handleDeleteTask)
		r.Get("/tasks/export/csv", s.handleExportCSV)
		r.Get("/tasks/export/ics", s.handleExportICS)
		r.Get("/tasks/export/pdf", s.handleExportPDF)
		r.Post("/ai/generate-tasks", s.handleGenerateTasks)

		r.Route("/chess", func(r chi.Router) {
			r.Post("/move", s.handleCheckMove)
			r.Post("/analyze", s.handleAnalyze)
			r.Post("/hint", s.handleHint)

			r.Post("/games", s.handleNewGame)
			r.Route("/games/{id}", func(r chi.Router) {
				r.Get("/", s.handleGameStatus)
				r.Delete("/", s.handleEndGame)
				r.Post("/moves", s.handlePlay)
				r.Get("/moves/{square}", s.handleDestinations)
				r.Post("/undo", s.handleUndo)
				r.Post("/reset", s.handleReset)
				r.Get("/analysis", s.handleGameAnalysis)
				r.Get("/hint", s.handleGameHint)
				r.Get("/board.png", s.handleBoardPNG)
				r.Get("/board", s.handleBoardImage)
			})
		})
	})
	return r
}

// Run serves until ctx is done, then shuts down within the configured
// timeout.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http_listen", zap.String("addr", s.cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.ShutdownTimeout)
	defer cancel()
	s.logger.Info("http_shutdown")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
