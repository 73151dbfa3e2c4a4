package board

import (
	"errors"
	"fmt"
)

var (
	ErrIllegalReplay = errors.New("illegal move in replay")
	ErrNothingToUndo = errors.New("no moves to undo")
)

// Game is the mutable state of one board: layout, side to move and the
// ordered move history. A Game is owned by a single caller.
type Game struct {
	board   Board
	turn    Side
	history []MoveRecord
}

// NewGame returns a game at the initial layout with white to move.
func NewGame() *Game {
	return &Game{board: NewBoard(), turn: White, history: []MoveRecord{}}
}

func (g *Game) Board() Board { return g.board }

func (g *Game) Turn() Side { return g.turn }

// History returns a copy of the applied moves, oldest first.
func (g *Game) History() []MoveRecord {
	return append([]MoveRecord(nil), g.history...)
}

// Ply is the number of moves applied so far.
func (g *Game) Ply() int { return len(g.history) }

// MoveNumber is the full-move counter shown to players, starting at 1.
func (g *Game) MoveNumber() int { return len(g.history)/2 + 1 }

// LastMove returns the most recent record, if any.
func (g *Game) LastMove() (MoveRecord, bool) {
	if len(g.history) == 0 {
		return MoveRecord{}, false
	}
	return g.history[len(g.history)-1], true
}

// Play applies a move by the side to move. Illegal moves leave the game
// untouched and report false.
func (g *Game) Play(from, to Square) (MoveRecord, bool) {
	return g.play(from, to, false)
}

// PlayAutomated asks sel for a move for the side to move and applies it as
// an automated reply. It reports false when sel has no move.
func (g *Game) PlayAutomated(sel MoveSelector) (MoveRecord, bool) {
	mv, ok := sel.Select(g.board, g.turn)
	if !ok {
		return MoveRecord{}, false
	}
	return g.play(mv.From, mv.To, true)
}

func (g *Game) play(from, to Square, automated bool) (MoveRecord, bool) {
	if !IsLegalMove(g.board, g.turn, from, to) {
		return MoveRecord{}, false
	}
	rec := g.record(from, to, automated)
	g.board = ApplyMove(g.board, from, to)
	g.history = append(g.history, rec)
	g.turn = g.turn.Opponent()
	return rec, true
}

func (g *Game) record(from, to Square, automated bool) MoveRecord {
	mover, _ := g.board.At(from)
	captured, _ := g.board.At(to)
	return MoveRecord{From: from, To: to, Piece: mover, Captured: captured, Automated: automated}
}

// Undo takes back the last move, or the last two when the last move was an
// automated reply to a player move. The position is rebuilt by replaying
// the remaining history from the initial layout. It returns the number of
// moves removed.
func (g *Game) Undo() (int, error) {
	n := len(g.history)
	if n == 0 {
		return 0, ErrNothingToUndo
	}
	drop := 1
	if g.history[n-1].Automated && n >= 2 {
		drop = 2
	}
	rebuilt := replayRecords(g.history[:n-drop])
	*g = *rebuilt
	return drop, nil
}

// Reset restores the initial layout, white to move and an empty history.
func (g *Game) Reset() {
	*g = *NewGame()
}

// replayRecords rebuilds a game by applying records in order without
// validation. Records must come from a game that accepted them.
func replayRecords(records []MoveRecord) *Game {
	g := NewGame()
	for _, r := range records {
		rec := g.record(r.From, r.To, r.Automated)
		g.board = ApplyMove(g.board, r.From, r.To)
		g.history = append(g.history, rec)
		g.turn = g.turn.Opponent()
	}
	return g
}

// Replay rebuilds a game from persisted moves, checking each one against
// the rules in sequence. Piece and capture details are recomputed.
func Replay(records []MoveRecord) (*Game, error) {
	g := NewGame()
	for i, r := range records {
		if _, ok := g.play(r.From, r.To, r.Automated); !ok {
			return nil, fmt.Errorf("%w: ply %d %s-%s", ErrIllegalReplay, i+1, r.From, r.To)
		}
	}
	return g, nil
}
