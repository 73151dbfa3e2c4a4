package board

// IsLegalMove reports whether side may move the piece on from to to.
// Self-check is not considered.
func IsLegalMove(b Board, side Side, from, to Square) bool {
	if from == to {
		return false
	}
	if !to.Valid() {
		return false
	}
	mover, ok := b.At(from)
	if !ok || mover.Side != side {
		return false
	}
	if target, occupied := b.At(to); occupied && target.Side == side {
		return false
	}
	return canReach(&b, mover, from, to)
}

// canReach checks piece geometry and path clearance. The caller has already
// rejected null moves, off-board targets and self-captures.
func canReach(b *Board, mover Piece, from, to Square) bool {
	dr := to.Row - from.Row
	dc := to.Col - from.Col
	adr, adc := abs(dr), abs(dc)

	switch mover.Kind {
	case Pawn:
		return pawnCanReach(b, mover.Side, from, to, dr, adc)
	case Rook:
		return (dr == 0 || dc == 0) && pathClear(b, from, to)
	case Bishop:
		return adr == adc && pathClear(b, from, to)
	case Queen:
		return (dr == 0 || dc == 0 || adr == adc) && pathClear(b, from, to)
	case King:
		return adr <= 1 && adc <= 1
	case Knight:
		return (adr == 1 && adc == 2) || (adr == 2 && adc == 1)
	default:
		return false
	}
}

func pawnCanReach(b *Board, side Side, from, to Square, dr, adc int) bool {
	dir := side.forward()
	_, occupied := b.At(to)

	switch {
	case adc == 1:
		// diagonal steps only capture; the target cannot be own-side here
		return dr == dir && occupied
	case adc != 0:
		return false
	case dr == dir:
		return !occupied
	case dr == 2*dir && from.Row == side.pawnStartRow():
		mid := Square{Row: from.Row + dir, Col: from.Col}
		_, blocked := b.At(mid)
		return !blocked && !occupied
	default:
		return false
	}
}

// pathClear reports whether every square strictly between from and to is
// empty. from and to must share a row, column or diagonal.
func pathClear(b *Board, from, to Square) bool {
	stepR := sign(to.Row - from.Row)
	stepC := sign(to.Col - from.Col)
	cur := Square{Row: from.Row + stepR, Col: from.Col + stepC}
	for cur != to {
		if _, occupied := b.At(cur); occupied {
			return false
		}
		cur = Square{Row: cur.Row + stepR, Col: cur.Col + stepC}
	}
	return true
}

// ApplyMove returns b with the piece on from moved to to, replacing any
// occupant. It performs no validation.
func ApplyMove(b Board, from, to Square) Board {
	p, _ := b.At(from)
	b.Set(to, p)
	b.Set(from, NoPiece)
	return b
}

// LegalMoves lists every destination reachable from from, scanning rows
// then columns. The result is empty, never nil, when there are none.
func LegalMoves(b Board, side Side, from Square) []Square {
	out := make([]Square, 0, 8)
	if p, ok := b.At(from); !ok || p.Side != side {
		return out
	}
	for row := 0; row < Size; row++ {
		for col := 0; col < Size; col++ {
			to := Square{Row: row, Col: col}
			if IsLegalMove(b, side, from, to) {
				out = append(out, to)
			}
		}
	}
	return out
}

// AllLegalMoves lists every legal (from, to) pair for side, ordered by the
// row-major position of from and then of to.
func AllLegalMoves(b Board, side Side) []Move {
	out := make([]Move, 0, 32)
	b.Pieces(func(from Square, p Piece) {
		if p.Side != side {
			return
		}
		for _, to := range LegalMoves(b, side, from) {
			out = append(out, Move{From: from, To: to})
		}
	})
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
