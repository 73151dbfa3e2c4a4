// Package chess runs PlayPad chess sessions: games stored in the cache,
// rebuilt by replay on every request, with automated replies, analysis and
// board images.
package chess

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/park285/playpad-server/internal/board"
	corechess "github.com/park285/playpad-server/internal/chess"
	"github.com/park285/playpad-server/internal/msgcat"
	"github.com/park285/playpad-server/internal/service/cache"
	"go.uber.org/zap"
)

var (
	ErrSessionNotFound  = errors.New("chess session not found")
	ErrInvalidMove      = errors.New("invalid chess move")
	ErrInvalidMode      = errors.New("invalid game mode")
	ErrUndoNotAvailable = errors.New("no moves available to undo")
	ErrCorruptSession   = errors.New("stored chess session cannot be replayed")
)

type Config struct {
	SessionTTL time.Duration
	// ReplyDelay is the pause before an automated reply.
	ReplyDelay time.Duration
	// HistoryDisplay limits history lines in a state; zero keeps all.
	HistoryDisplay int
}

type Service struct {
	store    cache.Store
	selector board.MoveSelector
	analyzer corechess.Analyzer
	renderer BoardRenderer
	catalog  *msgcat.Catalog
	cfg      Config
	logger   *zap.Logger
	now      func() time.Time
	locks    sessionLocks
}

func NewService(store cache.Store, selector board.MoveSelector, analyzer corechess.Analyzer, renderer BoardRenderer, catalog *msgcat.Catalog, cfg Config, logger *zap.Logger) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("session store is required")
	}
	if selector == nil {
		return nil, fmt.Errorf("move selector is required")
	}
	if analyzer == nil {
		return nil, fmt.Errorf("analyzer is required")
	}
	if renderer == nil {
		return nil, fmt.Errorf("board renderer is required")
	}
	if cfg.SessionTTL <= 0 {
		return nil, fmt.Errorf("session TTL must be greater than 0")
	}
	if cfg.ReplyDelay < 0 {
		cfg.ReplyDelay = 0
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:    store,
		selector: selector,
		analyzer: analyzer,
		renderer: renderer,
		catalog:  catalog,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}, nil
}

// NewGame starts a session at the initial position with white to move.
func (s *Service) NewGame(ctx context.Context, mode, difficulty string) (*SessionState, error) {
	m, err := ParseMode(mode)
	if err != nil {
		return nil, err
	}
	d, err := corechess.ParseDifficulty(difficulty)
	if err != nil {
		return nil, err
	}
	now := s.now()
	payload := &sessionPayload{
		SessionID:  uuid.NewString(),
		Mode:       m,
		Difficulty: d,
		Moves:      []storedMove{},
		StartedAt:  now,
	}
	if err := s.saveSession(ctx, payload); err != nil {
		return nil, err
	}
	s.logger.Info("chess_session_started",
		zap.String("session_id", payload.SessionID),
		zap.String("mode", string(m)),
		zap.String("difficulty", string(d)),
	)
	return s.stateFromGame(payload, board.NewGame()), nil
}

func (s *Service) Status(ctx context.Context, id string) (*SessionState, error) {
	payload, g, err := s.open(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.stateFromGame(payload, g), nil
}

// Destinations lists the squares the piece on from may move to. Squares
// without a piece of the side to move yield an empty list.
func (s *Service) Destinations(ctx context.Context, id, from string) ([]board.Square, error) {
	sq, err := board.ParseSquare(from)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMove, err)
	}
	_, g, err := s.open(ctx, id)
	if err != nil {
		return nil, err
	}
	return board.LegalMoves(g.Board(), g.Turn(), sq), nil
}

// Play applies the player's move. In ai mode the player has white and the
// automated black reply follows after the configured delay. A cancelled
// context during the delay leaves the reply pending; it is played at the
// start of the next Play.
func (s *Service) Play(ctx context.Context, id, from, to string) (*MoveResult, error) {
	fromSq, err := board.ParseSquare(from)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMove, err)
	}
	toSq, err := board.ParseSquare(to)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMove, err)
	}

	unlock := s.locks.lock(id)
	defer unlock()

	payload, g, err := s.open(ctx, id)
	if err != nil {
		return nil, err
	}

	if payload.Mode == ModeAI && g.Turn() == board.Black {
		if _, ok := g.PlayAutomated(s.selector); ok {
			storeHistory(payload, g)
			if err := s.saveSession(ctx, payload); err != nil {
				return nil, err
			}
			s.logger.Debug("chess_pending_reply_played", zap.String("session_id", id))
		}
	}
	if payload.Mode == ModeAI && g.Turn() == board.Black {
		return &MoveResult{State: s.stateFromGame(payload, g)}, nil
	}

	rec, ok := g.Play(fromSq, toSq)
	if !ok {
		s.logger.Debug("chess_move_rejected",
			zap.String("session_id", id),
			zap.String("from", fromSq.String()),
			zap.String("to", toSq.String()),
		)
		return &MoveResult{State: s.stateFromGame(payload, g)}, nil
	}
	storeHistory(payload, g)
	if err := s.saveSession(ctx, payload); err != nil {
		return nil, err
	}
	result := &MoveResult{Accepted: true, Move: &rec}

	if payload.Mode == ModeAI {
		if reply, ok, err := s.automatedReply(ctx, payload, g); err != nil {
			return nil, err
		} else if ok {
			result.Reply = &reply
		}
	}

	result.State = s.stateFromGame(payload, g)
	s.logger.Info("chess_move_played",
		zap.String("session_id", id),
		zap.String("move", rec.Notation()),
		zap.Bool("replied", result.Reply != nil),
		zap.Int("ply", g.Ply()),
	)
	return result, nil
}

func (s *Service) automatedReply(ctx context.Context, payload *sessionPayload, g *board.Game) (board.MoveRecord, bool, error) {
	if s.cfg.ReplyDelay > 0 {
		timer := time.NewTimer(s.cfg.ReplyDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			s.logger.Debug("chess_reply_deferred", zap.String("session_id", payload.SessionID))
			return board.MoveRecord{}, false, nil
		case <-timer.C:
		}
	}
	reply, ok := g.PlayAutomated(s.selector)
	if !ok {
		return board.MoveRecord{}, false, nil
	}
	storeHistory(payload, g)
	if err := s.saveSession(ctx, payload); err != nil {
		return board.MoveRecord{}, false, err
	}
	return reply, true, nil
}

// Undo takes back the last move, together with the automated reply that
// followed it.
func (s *Service) Undo(ctx context.Context, id string) (*SessionState, error) {
	unlock := s.locks.lock(id)
	defer unlock()

	payload, g, err := s.open(ctx, id)
	if err != nil {
		return nil, err
	}
	removed, err := g.Undo()
	if err != nil {
		if errors.Is(err, board.ErrNothingToUndo) {
			return nil, ErrUndoNotAvailable
		}
		return nil, err
	}
	storeHistory(payload, g)
	if err := s.saveSession(ctx, payload); err != nil {
		return nil, err
	}
	s.logger.Info("chess_undo", zap.String("session_id", id), zap.Int("removed", removed))
	return s.stateFromGame(payload, g), nil
}

// Reset returns the session to the initial position, keeping its settings.
func (s *Service) Reset(ctx context.Context, id string) (*SessionState, error) {
	unlock := s.locks.lock(id)
	defer unlock()

	payload, g, err := s.open(ctx, id)
	if err != nil {
		return nil, err
	}
	g.Reset()
	storeHistory(payload, g)
	if err := s.saveSession(ctx, payload); err != nil {
		return nil, err
	}
	s.logger.Info("chess_reset", zap.String("session_id", id))
	return s.stateFromGame(payload, g), nil
}

// End deletes the session.
func (s *Service) End(ctx context.Context, id string) error {
	unlock := s.locks.lock(id)
	defer unlock()

	if _, err := s.loadSession(ctx, id); err != nil {
		return err
	}
	if err := s.store.Del(ctx, sessionKey(id)); err != nil {
		return fmt.Errorf("delete chess session: %w", err)
	}
	s.logger.Info("chess_session_ended", zap.String("session_id", id))
	return nil
}

func (s *Service) Analyze(ctx context.Context, id string) (corechess.Analysis, error) {
	payload, g, err := s.open(ctx, id)
	if err != nil {
		return corechess.Analysis{}, err
	}
	return s.analyzer.Analyze(ctx, corechess.PositionFromGame(g, payload.Difficulty))
}

func (s *Service) Hint(ctx context.Context, id string) (corechess.Hint, error) {
	payload, g, err := s.open(ctx, id)
	if err != nil {
		return corechess.Hint{}, err
	}
	pos := corechess.PositionFromGame(g, payload.Difficulty)
	analysis, err := s.analyzer.Analyze(ctx, pos)
	if err != nil {
		return corechess.Hint{}, err
	}
	return corechess.HintFor(pos, analysis, s.catalog), nil
}

// BoardPNG renders the session board. A non-empty selected square is
// marked together with its legal destinations.
func (s *Service) BoardPNG(ctx context.Context, id, selected string) ([]byte, error) {
	payload, g, err := s.open(ctx, id)
	if err != nil {
		return nil, err
	}
	state := s.stateFromGame(payload, g)
	opts := RenderOptions{
		LastMove: state.LastMove,
		Header:   state.Status,
		Material: state.Material,
	}
	if selected != "" {
		sq, err := board.ParseSquare(selected)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidMove, err)
		}
		opts.Selected = &sq
		opts.Destinations = board.LegalMoves(state.Board, state.Turn, sq)
	}
	return s.renderer.RenderPNG(ctx, state.Board, opts)
}

// open loads and replays a session.
func (s *Service) open(ctx context.Context, id string) (*sessionPayload, *board.Game, error) {
	payload, err := s.loadSession(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	g, err := replaySession(payload)
	if err != nil {
		s.logger.Warn("chess_session_corrupt", zap.String("session_id", id), zap.Error(err))
		return nil, nil, err
	}
	return payload, g, nil
}
