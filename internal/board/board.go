package board

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Size is the number of rows and columns.
const Size = 8

var ErrInvalidFEN = errors.New("invalid FEN")

// Board is an 8x8 grid of optional pieces indexed [row][col]. It is a value
// type; copies never share cells.
type Board [Size][Size]Piece

var backRank = [Size]Kind{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

// NewBoard returns the standard initial layout.
func NewBoard() Board {
	var b Board
	for col := 0; col < Size; col++ {
		b[0][col] = Piece{Kind: backRank[col], Side: Black}
		b[1][col] = Piece{Kind: Pawn, Side: Black}
		b[6][col] = Piece{Kind: Pawn, Side: White}
		b[7][col] = Piece{Kind: backRank[col], Side: White}
	}
	return b
}

// At returns the piece on sq and whether the square is occupied.
// Off-board squares read as empty.
func (b Board) At(sq Square) (Piece, bool) {
	if !sq.Valid() {
		return NoPiece, false
	}
	p := b[sq.Row][sq.Col]
	return p, !p.IsZero()
}

// Set places p on sq (NoPiece clears it). Off-board squares are ignored.
func (b *Board) Set(sq Square, p Piece) {
	if !sq.Valid() {
		return
	}
	b[sq.Row][sq.Col] = p
}

// Pieces calls fn for every occupied square in row-major order.
func (b Board) Pieces(fn func(Square, Piece)) {
	for row := 0; row < Size; row++ {
		for col := 0; col < Size; col++ {
			if p := b[row][col]; !p.IsZero() {
				fn(Square{Row: row, Col: col}, p)
			}
		}
	}
}

// Material sums piece values per side.
func (b Board) Material() (white, black int) {
	b.Pieces(func(_ Square, p Piece) {
		if p.Side == White {
			white += p.Kind.Value()
		} else {
			black += p.Kind.Value()
		}
	})
	return white, black
}

// FEN renders the position. Castling and en passant are not modelled, so
// those fields are always "-".
func FEN(b Board, toMove Side, fullmove int) string {
	var sb strings.Builder
	for row := 0; row < Size; row++ {
		empty := 0
		for col := 0; col < Size; col++ {
			p := b[row][col]
			if p.IsZero() {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte(byte('0' + empty))
				empty = 0
			}
			sb.WriteByte(p.Letter())
		}
		if empty > 0 {
			sb.WriteByte(byte('0' + empty))
		}
		if row < Size-1 {
			sb.WriteByte('/')
		}
	}
	if fullmove < 1 {
		fullmove = 1
	}
	side := "w"
	if toMove == Black {
		side = "b"
	}
	fmt.Fprintf(&sb, " %s - - 0 %d", side, fullmove)
	return sb.String()
}

// ParseFEN reads the placement and side-to-move fields of a FEN. Remaining
// fields are accepted and ignored.
func ParseFEN(fen string) (Board, Side, error) {
	var b Board
	fields := strings.Fields(fen)
	if len(fields) == 0 {
		return b, White, fmt.Errorf("%w: empty", ErrInvalidFEN)
	}
	rows := strings.Split(fields[0], "/")
	if len(rows) != Size {
		return b, White, fmt.Errorf("%w: want %d ranks, got %d", ErrInvalidFEN, Size, len(rows))
	}
	for row, spec := range rows {
		col := 0
		for i := 0; i < len(spec); i++ {
			ch := spec[i]
			if ch >= '1' && ch <= '8' {
				col += int(ch - '0')
				continue
			}
			p, ok := pieceFromLetter(ch)
			if !ok {
				return b, White, fmt.Errorf("%w: unknown piece %q", ErrInvalidFEN, ch)
			}
			if col >= Size {
				return b, White, fmt.Errorf("%w: rank %d overflows", ErrInvalidFEN, Size-row)
			}
			b[row][col] = p
			col++
		}
		if col != Size {
			return b, White, fmt.Errorf("%w: rank %d has %d files", ErrInvalidFEN, Size-row, col)
		}
	}
	side := White
	if len(fields) > 1 {
		s, err := ParseSide(fields[1])
		if err != nil {
			return b, White, fmt.Errorf("%w: %v", ErrInvalidFEN, err)
		}
		side = s
	}
	return b, side, nil
}

// FullmoveFromFEN returns the sixth FEN field, defaulting to 1.
func FullmoveFromFEN(fen string) int {
	fields := strings.Fields(fen)
	if len(fields) < 6 {
		return 1
	}
	n, err := strconv.Atoi(fields[5])
	if err != nil || n < 1 {
		return 1
	}
	return n
}

func pieceFromLetter(ch byte) (Piece, bool) {
	side := White
	upper := ch
	if ch >= 'a' && ch <= 'z' {
		side = Black
		upper = ch - ('a' - 'A')
	}
	for k := King; k <= Pawn; k++ {
		if k.Letter() == upper {
			return Piece{Kind: k, Side: side}, true
		}
	}
	return NoPiece, false
}
