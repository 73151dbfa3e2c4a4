package chess

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/park285/playpad-server/internal/board"
	"github.com/park285/playpad-server/internal/msgcat"
)

const startFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w - - 0 1"

func mustPosition(t *testing.T, fen string) Position {
	t.Helper()
	pos, err := PositionFromFEN(fen)
	if err != nil {
		t.Fatalf("parse %q: %v", fen, err)
	}
	return pos
}

func mustMove(t *testing.T, s string) board.Move {
	t.Helper()
	mv, err := ParseMove(s)
	if err != nil {
		t.Fatalf("parse move %q: %v", s, err)
	}
	return mv
}

func newBookAnalyzer() *BookAnalyzer {
	return NewBookAnalyzer(nil, msgcat.Default())
}

func TestBookAnalyzerInitialPosition(t *testing.T) {
	pos := mustPosition(t, startFEN)
	if !pos.FromStart {
		t.Fatalf("initial FEN should count as a fresh game")
	}
	got, err := newBookAnalyzer().Analyze(context.Background(), pos)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if !got.HasMove || !got.BookMove {
		t.Fatalf("expected a book move, got %+v", got)
	}
	if !board.IsLegalMove(pos.Board, board.White, got.BestMove.From, got.BestMove.To) {
		t.Fatalf("book move %s is not legal", got.BestMoveText())
	}
	if got.Evaluation != "+0.0" || got.Source != SourceBook {
		t.Fatalf("unexpected evaluation %q source %q", got.Evaluation, got.Source)
	}
	if !strings.Contains(got.Summary, "Material is even.") || !strings.Contains(got.Summary, "White has 20 legal moves.") {
		t.Fatalf("summary = %q", got.Summary)
	}
	want := []string{"Control the center squares", "Develop your pieces", "Keep your king protected"}
	if diff := cmp.Diff(want, got.Suggestions); diff != "" {
		t.Fatalf("suggestions mismatch (-want +got):\n%s", diff)
	}
}

func TestBookAnalyzerNamesOpeningFromGame(t *testing.T) {
	g := board.NewGame()
	for _, s := range []string{"e2e4", "e7e5"} {
		mv := mustMove(t, s)
		if _, ok := g.Play(mv.From, mv.To); !ok {
			t.Fatalf("move %s rejected", s)
		}
	}
	got, err := newBookAnalyzer().Analyze(context.Background(), PositionFromGame(g, Easy))
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if got.Opening == "" || got.OpeningCode == "" {
		t.Fatalf("expected an opening name, got %+v", got)
	}
	if !strings.HasPrefix(got.Summary, "Opening: ") {
		t.Fatalf("summary should lead with the opening: %q", got.Summary)
	}
}

func TestBookAnalyzerPrefersMostValuableCapture(t *testing.T) {
	pos := mustPosition(t, "4k3/8/8/p2r4/8/8/3Q4/4K3 w - - 0 1")
	got, err := newBookAnalyzer().Analyze(context.Background(), pos)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if got.BestMoveText() != "d2d5" {
		t.Fatalf("best move = %q, want d2d5", got.BestMoveText())
	}
	if got.Evaluation != "+3.0" {
		t.Fatalf("evaluation = %q", got.Evaluation)
	}
	if !strings.Contains(got.Summary, "White is ahead by 3 in material.") {
		t.Fatalf("summary = %q", got.Summary)
	}
	want := []string{"Trade pieces while ahead in material", "Keep your king protected"}
	if diff := cmp.Diff(want, got.Suggestions); diff != "" {
		t.Fatalf("suggestions mismatch (-want +got):\n%s", diff)
	}

	hint := HintFor(pos, got, msgcat.Default())
	if hint.Explanation != "Captures the rook on d5." {
		t.Fatalf("hint = %q", hint.Explanation)
	}
}

func TestBookAnalyzerCentralFallback(t *testing.T) {
	pos := mustPosition(t, "4k3/8/8/8/8/8/8/1N2K3 w - - 0 1")
	got, err := newBookAnalyzer().Analyze(context.Background(), pos)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if got.BestMoveText() != "b1c3" || got.BookMove {
		t.Fatalf("best move = %q book=%v", got.BestMoveText(), got.BookMove)
	}
	hint := HintFor(pos, got, msgcat.Default())
	if hint.Explanation != "Develops a piece toward the center." {
		t.Fatalf("hint = %q", hint.Explanation)
	}
}

func TestBookAnalyzerWithoutMoves(t *testing.T) {
	pos := mustPosition(t, "8/8/8/8/8/8/8/p7 b - - 0 1")
	got, err := newBookAnalyzer().Analyze(context.Background(), pos)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if got.HasMove || got.BestMoveText() != "" {
		t.Fatalf("expected no move, got %+v", got)
	}
	if got.Evaluation != "-1.0" || !strings.Contains(got.Summary, "Black has no legal moves") {
		t.Fatalf("unexpected analysis %+v", got)
	}
	if hint := HintFor(pos, got, msgcat.Default()); hint.HasMove || hint.Explanation != "Black has no legal moves" {
		t.Fatalf("unexpected hint %+v", hint)
	}
}

func TestBookAnalyzerHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := newBookAnalyzer().Analyze(ctx, mustPosition(t, startFEN)); err == nil {
		t.Fatalf("expected context error")
	}
}

func TestFormatEval(t *testing.T) {
	tests := []struct {
		cp, mate int
		want     string
	}{
		{30, 0, "+0.3"},
		{-150, 0, "-1.5"},
		{0, 0, "+0.0"},
		{-4, 0, "+0.0"},
		{25, 0, "+0.3"},
		{0, 3, "#3"},
		{-30000, -2, "#-2"},
	}
	for _, tt := range tests {
		if got := FormatEval(tt.cp, tt.mate); got != tt.want {
			t.Fatalf("FormatEval(%d, %d) = %q, want %q", tt.cp, tt.mate, got, tt.want)
		}
	}
}

func TestParseMove(t *testing.T) {
	want := board.Move{From: board.Square{Row: 6, Col: 4}, To: board.Square{Row: 4, Col: 4}}
	for _, in := range []string{"e2e4", "E2-E4", "e2 e4", "e2e4q"} {
		got, err := ParseMove(in)
		if err != nil || got != want {
			t.Fatalf("ParseMove(%q) = %v, %v", in, got, err)
		}
	}
	if mv, err := ParseMove("e4-d5x"); err != nil || mv.String() != "e4d5" {
		t.Fatalf("capture notation: %v %v", mv, err)
	}
	for _, in := range []string{"", "e2", "e9e4", "i2e4"} {
		if _, err := ParseMove(in); err == nil {
			t.Fatalf("ParseMove(%q) should fail", in)
		}
	}
}

func TestParseDifficulty(t *testing.T) {
	if d, err := ParseDifficulty(" HARD "); err != nil || d != Hard {
		t.Fatalf("hard: %v %v", d, err)
	}
	if d, err := ParseDifficulty(""); err != nil || d != DefaultDifficulty {
		t.Fatalf("default: %v %v", d, err)
	}
	if _, err := ParseDifficulty("grandmaster"); err == nil {
		t.Fatalf("expected unknown difficulty error")
	}
	if got := GetPreset(Hard).limits(12); got.Depth != 12 || got.MoveTimeMillis != 1500 {
		t.Fatalf("hard limits capped wrong: %+v", got)
	}
	if got := GetPreset(Easy).limits(12); got.Depth != 6 {
		t.Fatalf("easy limits = %+v", got)
	}
}
