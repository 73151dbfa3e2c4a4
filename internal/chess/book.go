package chess

import (
	"context"
	"strings"

	"github.com/park285/playpad-server/internal/board"
	"github.com/park285/playpad-server/internal/chess/openingbook"
	"github.com/park285/playpad-server/internal/msgcat"
)

// earlyGamePlies bounds the opening phase for suggestions.
const earlyGamePlies = 20

// BookAnalyzer evaluates by material and picks moves from the rules engine's
// own legal moves: the most valuable capture, else a book continuation, else
// the most central destination.
type BookAnalyzer struct {
	book    *openingbook.Book
	catalog *msgcat.Catalog
}

func NewBookAnalyzer(book *openingbook.Book, catalog *msgcat.Catalog) *BookAnalyzer {
	if book == nil {
		book = openingbook.New()
	}
	return &BookAnalyzer{book: book, catalog: catalog}
}

func (a *BookAnalyzer) Analyze(ctx context.Context, pos Position) (Analysis, error) {
	if err := ctx.Err(); err != nil {
		return Analysis{}, err
	}
	moves := board.AllLegalMoves(pos.Board, pos.Turn)
	white, black := pos.Board.Material()
	diff := white - black

	res := Analysis{EvalCP: diff * 100, Source: SourceBook}
	res.Evaluation = FormatEval(res.EvalCP, 0)

	var line openingbook.Line
	if pos.FromStart {
		if l, ok := a.book.Lookup(pos.uciHistory()); ok {
			line = l
			res.Opening = l.Title
			res.OpeningCode = l.Code
		}
	}

	if mv, ok := bestCapture(pos.Board, moves); ok {
		res.BestMove, res.HasMove = mv, true
	} else if mv, ok := bookMove(line, moves); ok {
		res.BestMove, res.HasMove, res.BookMove = mv, true, true
	} else if mv, ok := mostCentral(pos.Board, moves); ok {
		res.BestMove, res.HasMove = mv, true
	}

	res.Summary = a.summary(pos, res, len(moves), diff)
	res.Suggestions = a.suggestions(pos, diff)
	return res, nil
}

func (a *BookAnalyzer) summary(pos Position, res Analysis, mobility, diff int) string {
	parts := make([]string, 0, 3)
	if res.Opening != "" {
		parts = append(parts, a.catalog.Text("chess.analysis_opening", map[string]any{"Opening": res.Opening}, "Opening: "+res.Opening+"."))
	}
	switch {
	case diff == 0:
		parts = append(parts, a.catalog.Text("chess.analysis_material_even", nil, "Material is even."))
	default:
		leader := board.White
		if diff < 0 {
			leader = board.Black
		}
		parts = append(parts, a.catalog.Text("chess.analysis_material_ahead",
			map[string]any{"Side": capitalize(leader.String()), "Pawns": formatPawns(diff * 100)}, ""))
	}
	side := capitalize(pos.Turn.String())
	if mobility == 0 {
		parts = append(parts, a.catalog.Text("chess.status_no_moves", map[string]any{"Side": side}, side+" has no legal moves"))
	} else {
		parts = append(parts, a.catalog.Text("chess.analysis_mobility", map[string]any{"Side": side, "Count": mobility}, ""))
	}
	return joinNonEmpty(parts)
}

func (a *BookAnalyzer) suggestions(pos Position, diff int) []string {
	relative := diff
	if pos.Turn == board.Black {
		relative = -diff
	}
	var keys []string
	switch {
	case pos.FromStart && len(pos.Moves) < earlyGamePlies:
		keys = []string{"center", "develop", "king"}
	case relative >= 3:
		keys = []string{"trade", "king"}
	case relative <= -3:
		keys = []string{"activity", "king"}
	default:
		keys = []string{"center", "king"}
	}
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if text := a.catalog.Text("chess.suggestion_"+k, nil, ""); text != "" {
			out = append(out, text)
		}
	}
	return out
}

// victimValue ranks capture targets. Kings are capturable in this rule set
// and outrank everything.
func victimValue(k board.Kind) int {
	if k == board.King {
		return 100
	}
	return k.Value()
}

func bestCapture(b board.Board, moves []board.Move) (board.Move, bool) {
	var (
		best  board.Move
		score = -1 << 31
		found bool
	)
	for _, mv := range moves {
		target, _ := b.At(mv.To)
		if target.IsZero() {
			continue
		}
		mover, _ := b.At(mv.From)
		s := victimValue(target.Kind)*10 - mover.Kind.Value()
		if !found || s > score {
			best, score, found = mv, s, true
		}
	}
	return best, found
}

func bookMove(line openingbook.Line, moves []board.Move) (board.Move, bool) {
	legal := make(map[string]board.Move, len(moves))
	for _, mv := range moves {
		legal[mv.String()] = mv
	}
	for _, r := range line.Next {
		if mv, ok := legal[r.Move]; ok {
			return mv, true
		}
	}
	return board.Move{}, false
}

// mostCentral prefers central destinations and development; king moves are
// a last resort.
func mostCentral(b board.Board, moves []board.Move) (board.Move, bool) {
	var (
		best  board.Move
		score int
		found bool
	)
	for _, mv := range moves {
		mover, _ := b.At(mv.From)
		s := centrality(mv.To) * 2
		if isDevelopment(mover, mv.From) {
			s--
		}
		if mover.Kind == board.King {
			s += 8
		}
		if !found || s < score {
			best, score, found = mv, s, true
		}
	}
	return best, found
}

func joinNonEmpty(parts []string) string {
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}
