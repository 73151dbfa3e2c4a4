// Package board implements the PlayPad chess board rules: piece geometry,
// path clearance, move application, turn alternation and undo by replay.
// It holds no shared state and performs no I/O.
package board

import (
	"fmt"
	"strings"
)

// Side is the colour of a piece or of the player to move.
type Side int

const (
	White Side = iota
	Black
)

func (s Side) String() string {
	if s == Black {
		return "black"
	}
	return "white"
}

// Opponent returns the other side.
func (s Side) Opponent() Side {
	if s == White {
		return Black
	}
	return White
}

// forward is the row delta of a pawn advance; white pawns move toward row 0.
func (s Side) forward() int {
	if s == White {
		return -1
	}
	return 1
}

// pawnStartRow is the row a pawn of this side may double push from.
func (s Side) pawnStartRow() int {
	if s == White {
		return 6
	}
	return 1
}

// ParseSide accepts "white"/"w" and "black"/"b" in any case.
func ParseSide(raw string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "white", "w":
		return White, nil
	case "black", "b":
		return Black, nil
	default:
		return White, fmt.Errorf("unknown side %q", raw)
	}
}

// Kind is a piece type. NoKind marks an empty square.
type Kind int

const (
	NoKind Kind = iota
	King
	Queen
	Rook
	Bishop
	Knight
	Pawn
)

var kindNames = [...]string{"", "king", "queen", "rook", "bishop", "knight", "pawn"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Letter is the upper-case FEN letter of the kind.
func (k Kind) Letter() byte {
	letters := []byte{' ', 'K', 'Q', 'R', 'B', 'N', 'P'}
	if k < 0 || int(k) >= len(letters) {
		return '?'
	}
	return letters[k]
}

// Value is the conventional material value in pawns. Kings count zero.
func (k Kind) Value() int {
	switch k {
	case Pawn:
		return 1
	case Knight, Bishop:
		return 3
	case Rook:
		return 5
	case Queen:
		return 9
	default:
		return 0
	}
}

// Piece is an immutable (kind, side) pair. The zero Piece is "no piece".
type Piece struct {
	Kind Kind
	Side Side
}

// NoPiece is the empty square marker.
var NoPiece = Piece{}

// IsZero reports whether p marks an empty square.
func (p Piece) IsZero() bool { return p.Kind == NoKind }

// Letter returns the FEN letter: upper case for white, lower case for black.
func (p Piece) Letter() byte {
	l := p.Kind.Letter()
	if p.Side == Black && l >= 'A' && l <= 'Z' {
		return l + ('a' - 'A')
	}
	return l
}

func (p Piece) String() string {
	if p.IsZero() {
		return "empty"
	}
	return p.Side.String() + " " + p.Kind.String()
}

// Square addresses a cell. Row 0 is black's back rank, row 7 is white's.
type Square struct {
	Row int
	Col int
}

// Valid reports whether both coordinates are within [0,7].
func (s Square) Valid() bool {
	return s.Row >= 0 && s.Row < Size && s.Col >= 0 && s.Col < Size
}

// String renders algebraic coordinates: file a+col, rank 8-row.
func (s Square) String() string {
	if !s.Valid() {
		return fmt.Sprintf("(%d,%d)", s.Row, s.Col)
	}
	return string([]byte{byte('a' + s.Col), byte('0' + (Size - s.Row))})
}

// ParseSquare converts algebraic coordinates such as "e2".
func ParseSquare(raw string) (Square, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if len(s) != 2 {
		return Square{}, fmt.Errorf("invalid square %q", raw)
	}
	file, rank := s[0], s[1]
	if file < 'a' || file > 'h' || rank < '1' || rank > '8' {
		return Square{}, fmt.Errorf("invalid square %q", raw)
	}
	return Square{Row: Size - int(rank-'0'), Col: int(file - 'a')}, nil
}

// Move is a from/to pair.
type Move struct {
	From Square
	To   Square
}

func (m Move) String() string { return m.From.String() + m.To.String() }

// MoveRecord is one applied move in a game's history.
type MoveRecord struct {
	From      Square
	To        Square
	Piece     Piece
	Captured  Piece
	Automated bool
}

// IsCapture reports whether the move removed an opposing piece.
func (r MoveRecord) IsCapture() bool { return !r.Captured.IsZero() }

// Notation renders the move as "e2-e4", with an "x" suffix on captures.
func (r MoveRecord) Notation() string {
	n := r.From.String() + "-" + r.To.String()
	if r.IsCapture() {
		n += "x"
	}
	return n
}
