package chess

import (
	"fmt"
	"math"
	"strings"

	"github.com/park285/playpad-server/internal/board"
)

var centerSquares = map[board.Square]bool{
	{Row: 3, Col: 3}: true, {Row: 3, Col: 4}: true,
	{Row: 4, Col: 3}: true, {Row: 4, Col: 4}: true,
}

// FormatEval renders a white-relative score in pawns, "+0.3" or "-1.5".
// A non-zero mate renders as "#3" or "#-3".
func FormatEval(cp, mate int) string {
	if mate != 0 {
		return fmt.Sprintf("#%d", mate)
	}
	pawns := math.Round(float64(cp)/10) / 10
	if pawns == 0 { // drop the sign of negative zero
		pawns = 0
	}
	return fmt.Sprintf("%+.1f", pawns)
}

// formatPawns renders an absolute material gap, "3" or "1.5".
func formatPawns(cp int) string {
	if cp < 0 {
		cp = -cp
	}
	s := fmt.Sprintf("%.1f", float64(cp)/100)
	return strings.TrimSuffix(s, ".0")
}

// centrality ranks a square by distance to the four center squares; 0 is a
// center square, 3 is a corner.
func centrality(sq board.Square) int {
	dr := distance(sq.Row, 3, 4)
	dc := distance(sq.Col, 3, 4)
	return max(dr, dc)
}

func distance(v, lo, hi int) int {
	switch {
	case v < lo:
		return lo - v
	case v > hi:
		return v - hi
	default:
		return 0
	}
}

// isDevelopment reports a knight or bishop leaving its back rank.
func isDevelopment(p board.Piece, from board.Square) bool {
	if p.Kind != board.Knight && p.Kind != board.Bishop {
		return false
	}
	home := 7
	if p.Side == board.Black {
		home = 0
	}
	return from.Row == home
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
