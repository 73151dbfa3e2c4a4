// Package chesspresenter converts chess service results into the JSON
// shapes of pkg/chessdto.
package chesspresenter

import (
	"github.com/park285/playpad-server/internal/board"
	corechess "github.com/park285/playpad-server/internal/chess"
	svc "github.com/park285/playpad-server/internal/service/chess"
	"github.com/park285/playpad-server/pkg/chessdto"
)

func ToDTOState(s *svc.SessionState) *chessdto.SessionState {
	if s == nil {
		return nil
	}
	return &chessdto.SessionState{
		GameID:     s.SessionID,
		Mode:       string(s.Mode),
		Difficulty: string(s.Difficulty),
		Board:      toDTOBoard(s.Board),
		Turn:       s.Turn.String(),
		FEN:        s.FEN,
		Status:     s.Status,
		MoveNumber: s.MoveNumber,
		History:    append([]string{}, s.History...),
		LastMove:   ToDTOMove(s.LastMove),
		Material: chessdto.MaterialScore{
			White: s.Material.White,
			Black: s.Material.Black,
			Diff:  s.Material.Diff(),
		},
		Captured:  toDTOCaptured(s.Captured),
		StartedAt: s.StartedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func ToDTOMoveResult(m *svc.MoveResult) *chessdto.PlayResponse {
	if m == nil {
		return nil
	}
	return &chessdto.PlayResponse{
		Success: m.Accepted,
		Move:    ToDTOMove(m.Move),
		Reply:   ToDTOMove(m.Reply),
		State:   ToDTOState(m.State),
	}
}

func ToDTOMove(r *board.MoveRecord) *chessdto.MoveRecord {
	if r == nil {
		return nil
	}
	out := &chessdto.MoveRecord{
		From:      r.From.String(),
		To:        r.To.String(),
		Piece:     toDTOPiece(r.Piece),
		Notation:  r.Notation(),
		Automated: r.Automated,
	}
	if r.IsCapture() {
		captured := toDTOPiece(r.Captured)
		out.Captured = &captured
	}
	return out
}

func ToDTODestinations(from string, squares []board.Square) *chessdto.DestinationsResponse {
	out := &chessdto.DestinationsResponse{From: from, Destinations: make([]string, 0, len(squares))}
	for _, sq := range squares {
		out.Destinations = append(out.Destinations, sq.String())
	}
	return out
}

func ToDTOAnalysis(a corechess.Analysis) *chessdto.AnalysisResponse {
	return &chessdto.AnalysisResponse{
		Evaluation:  a.Evaluation,
		BestMove:    a.BestMoveText(),
		Analysis:    a.Summary,
		Suggestions: append([]string{}, a.Suggestions...),
		Opening:     a.Opening,
		OpeningCode: a.OpeningCode,
		Source:      a.Source,
	}
}

func ToDTOHint(h corechess.Hint) *chessdto.HintResponse {
	out := &chessdto.HintResponse{Explanation: h.Explanation, Evaluation: h.Evaluation}
	if h.HasMove {
		out.Move = h.Move.String()
	}
	return out
}

// ToDTOMoveCheck answers /api/chess/move; the suggestion is the first
// analysis suggestion for the side now to move.
func ToDTOMoveCheck(raw string, c *svc.MoveCheck) *chessdto.MoveCheckResponse {
	if c == nil {
		return &chessdto.MoveCheckResponse{Move: raw}
	}
	out := &chessdto.MoveCheckResponse{Success: c.Legal, Move: raw, FEN: c.FEN}
	if !c.Legal {
		return out
	}
	out.Move = c.Move.Notation()
	out.Evaluation = c.Analysis.Evaluation
	if len(c.Analysis.Suggestions) > 0 {
		out.Suggestion = c.Analysis.Suggestions[0]
	}
	return out
}

func toDTOBoard(b board.Board) [][]*chessdto.Piece {
	rows := make([][]*chessdto.Piece, board.Size)
	for r := range rows {
		rows[r] = make([]*chessdto.Piece, board.Size)
	}
	b.Pieces(func(sq board.Square, p board.Piece) {
		piece := toDTOPiece(p)
		rows[sq.Row][sq.Col] = &piece
	})
	return rows
}

func toDTOPiece(p board.Piece) chessdto.Piece {
	return chessdto.Piece{Type: p.Kind.String(), Color: p.Side.String()}
}

func toDTOCaptured(c svc.CapturedPieces) chessdto.CapturedPieces {
	return chessdto.CapturedPieces{
		White: toPieceTokenList(c.ByWhite),
		Black: toPieceTokenList(c.ByBlack),
	}
}

func toPieceTokenList(list []board.Piece) []string {
	tokens := make([]string, 0, len(list))
	for _, p := range list {
		tokens = append(tokens, p.Kind.String())
	}
	return tokens
}
