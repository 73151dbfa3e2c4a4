package chess

import (
	"context"
	"errors"
	"fmt"

	"github.com/park285/playpad-server/internal/board"
	"github.com/park285/playpad-server/internal/chess/uci"
	"go.uber.org/zap"
)

type EngineConfig struct {
	Command uci.Command
	// MaxDepth caps every preset's search depth when positive.
	MaxDepth           int
	PerOptionsCapacity int
}

// EngineAnalyzer refines book analysis with a UCI engine search. Engine
// failures degrade to the book result.
type EngineAnalyzer struct {
	pool     *uci.Pool
	fallback *BookAnalyzer
	maxDepth int
	logger   *zap.Logger
}

func NewEngineAnalyzer(cfg EngineConfig, fallback *BookAnalyzer, logger *zap.Logger) (*EngineAnalyzer, error) {
	if fallback == nil {
		return nil, fmt.Errorf("fallback analyzer is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	for _, d := range []Difficulty{Easy, Medium, Hard} {
		if err := ValidatePreset(GetPreset(d)); err != nil {
			return nil, err
		}
	}
	pool, err := uci.NewPool(uci.PoolConfig{
		Command:            cfg.Command,
		PerOptionsCapacity: cfg.PerOptionsCapacity,
		Logger:             logger,
	})
	if err != nil {
		return nil, err
	}
	return &EngineAnalyzer{pool: pool, fallback: fallback, maxDepth: cfg.MaxDepth, logger: logger}, nil
}

func (e *EngineAnalyzer) Analyze(ctx context.Context, pos Position) (Analysis, error) {
	base, err := e.fallback.Analyze(ctx, pos)
	if err != nil {
		return Analysis{}, err
	}
	if !base.HasMove || !searchable(pos.Board) {
		return base, nil
	}
	res, err := e.search(ctx, pos, base)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return Analysis{}, err
		}
		e.logger.Warn("engine_analysis_failed", zap.String("fen", pos.FEN()), zap.Error(err))
		return base, nil
	}
	return res, nil
}

func (e *EngineAnalyzer) search(ctx context.Context, pos Position, base Analysis) (Analysis, error) {
	preset := GetPreset(pos.Difficulty)
	session, err := e.pool.Acquire(ctx, preset.options())
	if err != nil {
		return Analysis{}, err
	}
	var releaseErr error
	defer func() {
		e.pool.Release(session, releaseErr)
	}()

	if err := session.NewGame(ctx); err != nil {
		releaseErr = err
		return Analysis{}, err
	}
	resp, err := session.Search(ctx, uci.SearchRequest{FEN: pos.FEN(), Limits: preset.limits(e.maxDepth)})
	if err != nil {
		releaseErr = err
		return Analysis{}, err
	}
	cand, ok := resp.Best()
	if !ok {
		return base, nil
	}

	res := base
	res.Source = SourceEngine
	res.EvalCP, res.Mate = cand.EvalCP, cand.Mate
	if pos.Turn == board.Black {
		res.EvalCP, res.Mate = -res.EvalCP, -res.Mate
	}
	res.Evaluation = FormatEval(res.EvalCP, res.Mate)

	// Castling and promotions are outside the rule set; keep the book move
	// when the engine proposes one of them.
	if mv, err := ParseMove(cand.Move); err == nil && board.IsLegalMove(pos.Board, pos.Turn, mv.From, mv.To) {
		res.BestMove, res.HasMove, res.BookMove = mv, true, false
	}
	e.logger.Debug("engine_analysis",
		zap.String("difficulty", string(preset.Name)),
		zap.String("best", cand.Move),
		zap.Int("eval_cp", res.EvalCP),
		zap.Int("depth", cand.Depth),
	)
	return res, nil
}

func (e *EngineAnalyzer) Close() error {
	if e.pool == nil {
		return nil
	}
	return e.pool.Close()
}

// searchable reports whether a UCI engine can load the position: exactly one
// king per side.
func searchable(b board.Board) bool {
	var kings [2]int
	b.Pieces(func(_ board.Square, p board.Piece) {
		if p.Kind == board.King {
			kings[p.Side]++
		}
	})
	return kings[board.White] == 1 && kings[board.Black] == 1
}
