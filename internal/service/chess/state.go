package chess

import (
	"fmt"
	"time"

	"github.com/park285/playpad-server/internal/board"
	corechess "github.com/park285/playpad-server/internal/chess"
)

// MaterialScore is the summed piece value per side.
type MaterialScore struct {
	White int
	Black int
}

func (m MaterialScore) Diff() int {
	return m.White - m.Black
}

// CapturedPieces lists pieces taken by each side, oldest first.
type CapturedPieces struct {
	ByWhite []board.Piece
	ByBlack []board.Piece
}

// SessionState is a session snapshot after replay.
type SessionState struct {
	SessionID  string
	Mode       Mode
	Difficulty corechess.Difficulty
	Board      board.Board
	Turn       board.Side
	FEN        string
	Status     string
	MoveNumber int
	History    []string
	LastMove   *board.MoveRecord
	Material   MaterialScore
	Captured   CapturedPieces
	StartedAt  time.Time
	UpdatedAt  time.Time
}

// MoveResult reports a Play call. Illegal moves are Accepted=false with the
// unchanged state.
type MoveResult struct {
	Accepted bool
	Move     *board.MoveRecord
	Reply    *board.MoveRecord
	State    *SessionState
}

func (s *Service) stateFromGame(payload *sessionPayload, g *board.Game) *SessionState {
	b := g.Board()
	white, black := b.Material()
	history := g.History()

	state := &SessionState{
		SessionID:  payload.SessionID,
		Mode:       payload.Mode,
		Difficulty: payload.Difficulty,
		Board:      b,
		Turn:       g.Turn(),
		FEN:        board.FEN(b, g.Turn(), g.MoveNumber()),
		Status:     s.statusText(payload.Mode, b, g.Turn()),
		MoveNumber: g.MoveNumber(),
		History:    historyLines(history, s.cfg.HistoryDisplay),
		Material:   MaterialScore{White: white, Black: black},
		Captured:   capturedPieces(history),
		StartedAt:  payload.StartedAt,
		UpdatedAt:  payload.UpdatedAt,
	}
	if last, ok := g.LastMove(); ok {
		state.LastMove = &last
	}
	return state
}

func (s *Service) statusText(mode Mode, b board.Board, turn board.Side) string {
	side := sideLabel(turn)
	if len(board.AllLegalMoves(b, turn)) == 0 {
		return s.catalog.Text("chess.status_no_moves", map[string]any{"Side": side}, side+" has no legal moves")
	}
	if mode == ModeAI && turn == board.Black {
		return s.catalog.Text("chess.status_thinking", nil, "Computer is thinking...")
	}
	return s.catalog.Text("chess.status_to_move", map[string]any{"Side": side}, side+" to move")
}

// historyLines numbers moves as "1. e2-e4" and "1... e7-e5". A positive
// limit keeps only the most recent lines.
func historyLines(history []board.MoveRecord, limit int) []string {
	lines := make([]string, len(history))
	for i, rec := range history {
		n := i/2 + 1
		if i%2 == 0 {
			lines[i] = fmt.Sprintf("%d. %s", n, rec.Notation())
		} else {
			lines[i] = fmt.Sprintf("%d... %s", n, rec.Notation())
		}
	}
	if limit > 0 && len(lines) > limit {
		lines = lines[len(lines)-limit:]
	}
	return lines
}

func capturedPieces(history []board.MoveRecord) CapturedPieces {
	out := CapturedPieces{ByWhite: []board.Piece{}, ByBlack: []board.Piece{}}
	for _, rec := range history {
		if !rec.IsCapture() {
			continue
		}
		if rec.Piece.Side == board.White {
			out.ByWhite = append(out.ByWhite, rec.Captured)
		} else {
			out.ByBlack = append(out.ByBlack, rec.Captured)
		}
	}
	return out
}

func sideLabel(side board.Side) string {
	if side == board.Black {
		return "Black"
	}
	return "White"
}
