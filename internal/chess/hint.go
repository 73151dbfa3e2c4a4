package chess

import (
	"github.com/park285/playpad-server/internal/board"
	"github.com/park285/playpad-server/internal/msgcat"
)

// Hint is a suggested move with a one-line explanation.
type Hint struct {
	Move        board.Move
	HasMove     bool
	Explanation string
	Evaluation  string
}

// HintFor explains the best move of a.
func HintFor(pos Position, a Analysis, catalog *msgcat.Catalog) Hint {
	h := Hint{Move: a.BestMove, HasMove: a.HasMove, Evaluation: a.Evaluation}
	if !a.HasMove {
		side := capitalize(pos.Turn.String())
		h.Explanation = catalog.Text("chess.status_no_moves", map[string]any{"Side": side}, side+" has no legal moves")
		return h
	}

	target, _ := pos.Board.At(a.BestMove.To)
	mover, _ := pos.Board.At(a.BestMove.From)
	switch {
	case !target.IsZero():
		h.Explanation = catalog.Text("chess.hint_capture",
			map[string]any{"Target": target.Kind.String(), "Square": a.BestMove.To.String()}, "")
	case a.BookMove && a.Opening != "":
		h.Explanation = catalog.Text("chess.hint_book", map[string]any{"Opening": a.Opening}, "")
	case centrality(a.BestMove.To) == 0:
		h.Explanation = catalog.Text("chess.hint_center", nil, "")
	case isDevelopment(mover, a.BestMove.From):
		h.Explanation = catalog.Text("chess.hint_develop", nil, "")
	default:
		h.Explanation = catalog.Text("chess.hint_any", nil, "")
	}
	return h
}
