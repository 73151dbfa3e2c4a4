package chess

import (
	"context"
	"fmt"

	"github.com/park285/playpad-server/internal/board"
	corechess "github.com/park285/playpad-server/internal/chess"
)

// MoveCheck is the outcome of validating a move against a bare position.
type MoveCheck struct {
	Legal    bool
	Move     board.MoveRecord
	FEN      string
	Analysis corechess.Analysis
}

func parsePosition(fen, difficulty string) (corechess.Position, error) {
	pos, err := corechess.PositionFromFEN(fen)
	if err != nil {
		return corechess.Position{}, err
	}
	d, err := corechess.ParseDifficulty(difficulty)
	if err != nil {
		return corechess.Position{}, err
	}
	pos.Difficulty = d
	return pos, nil
}

// AnalyzePosition analyses a FEN without a session.
func (s *Service) AnalyzePosition(ctx context.Context, fen, difficulty string) (corechess.Analysis, error) {
	pos, err := parsePosition(fen, difficulty)
	if err != nil {
		return corechess.Analysis{}, err
	}
	return s.analyzer.Analyze(ctx, pos)
}

func (s *Service) HintPosition(ctx context.Context, fen, difficulty string) (corechess.Hint, error) {
	pos, err := parsePosition(fen, difficulty)
	if err != nil {
		return corechess.Hint{}, err
	}
	analysis, err := s.analyzer.Analyze(ctx, pos)
	if err != nil {
		return corechess.Hint{}, err
	}
	return corechess.HintFor(pos, analysis, s.catalog), nil
}

// CheckMove validates move for the side to move in fen. Legal moves are
// applied and the resulting position analysed for the opponent.
func (s *Service) CheckMove(ctx context.Context, fen, move string) (*MoveCheck, error) {
	pos, err := parsePosition(fen, "")
	if err != nil {
		return nil, err
	}
	mv, err := corechess.ParseMove(move)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMove, err)
	}
	if !board.IsLegalMove(pos.Board, pos.Turn, mv.From, mv.To) {
		return &MoveCheck{FEN: board.FEN(pos.Board, pos.Turn, board.FullmoveFromFEN(fen))}, nil
	}

	mover, _ := pos.Board.At(mv.From)
	captured, _ := pos.Board.At(mv.To)
	next := board.ApplyMove(pos.Board, mv.From, mv.To)
	fullmove := board.FullmoveFromFEN(fen)
	if pos.Turn == board.Black {
		fullmove++
	}
	after := corechess.Position{Board: next, Turn: pos.Turn.Opponent()}
	analysis, err := s.analyzer.Analyze(ctx, after)
	if err != nil {
		return nil, err
	}
	return &MoveCheck{
		Legal:    true,
		Move:     board.MoveRecord{From: mv.From, To: mv.To, Piece: mover, Captured: captured},
		FEN:      board.FEN(next, after.Turn, fullmove),
		Analysis: analysis,
	}, nil
}
