// Package chess analyses PlayPad board positions: opening names, material
// evaluation, best-move proposals and hints, optionally backed by a UCI
// engine.
package chess

import (
	"context"
	"fmt"
	"strings"

	"github.com/park285/playpad-server/internal/board"
)

// Analyzer evaluates a position. Implementations must be safe for
// concurrent use.
type Analyzer interface {
	Analyze(ctx context.Context, pos Position) (Analysis, error)
}

// Position is a board with the side to move. When FromStart is set, Moves
// holds every move played from the initial position.
type Position struct {
	Board      board.Board
	Turn       board.Side
	Moves      []board.Move
	FromStart  bool
	Difficulty Difficulty
}

// PositionFromFEN parses fen. The initial placement with white to move is
// treated as a game with no moves played.
func PositionFromFEN(fen string) (Position, error) {
	b, turn, err := board.ParseFEN(fen)
	if err != nil {
		return Position{}, err
	}
	return Position{
		Board:     b,
		Turn:      turn,
		FromStart: b == board.NewBoard() && turn == board.White,
	}, nil
}

// PositionFromGame captures g's current position and move list.
func PositionFromGame(g *board.Game, d Difficulty) Position {
	history := g.History()
	moves := make([]board.Move, len(history))
	for i, rec := range history {
		moves[i] = board.Move{From: rec.From, To: rec.To}
	}
	return Position{
		Board:      g.Board(),
		Turn:       g.Turn(),
		Moves:      moves,
		FromStart:  true,
		Difficulty: d,
	}
}

// FEN renders the position with a fullmove number derived from the move list.
func (p Position) FEN() string {
	return board.FEN(p.Board, p.Turn, len(p.Moves)/2+1)
}

func (p Position) uciHistory() []string {
	out := make([]string, len(p.Moves))
	for i, m := range p.Moves {
		out[i] = m.String()
	}
	return out
}

// Analysis is the result of evaluating a position. EvalCP is white-relative.
type Analysis struct {
	BestMove    board.Move
	HasMove     bool
	BookMove    bool
	EvalCP      int
	Mate        int
	Evaluation  string
	Summary     string
	Suggestions []string
	Opening     string
	OpeningCode string
	Source      string
}

// BestMoveText renders the best move as "e2e4", or "" when there is none.
func (a Analysis) BestMoveText() string {
	if !a.HasMove {
		return ""
	}
	return a.BestMove.String()
}

const (
	SourceBook   = "book"
	SourceEngine = "engine"
)

// ParseMove reads "e2e4", "e2-e4" or "e2 e4". A promotion suffix is ignored.
func ParseMove(raw string) (board.Move, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.NewReplacer("-", "", " ", "", "x", "").Replace(s)
	if len(s) != 4 && len(s) != 5 {
		return board.Move{}, fmt.Errorf("invalid move %q", raw)
	}
	from, err := board.ParseSquare(s[:2])
	if err != nil {
		return board.Move{}, err
	}
	to, err := board.ParseSquare(s[2:4])
	if err != nil {
		return board.Move{}, err
	}
	return board.Move{From: from, To: to}, nil
}
