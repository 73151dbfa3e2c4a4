package chess

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/park285/playpad-server/internal/board"
	corechess "github.com/park285/playpad-server/internal/chess"
	"github.com/park285/playpad-server/internal/msgcat"
	"github.com/park285/playpad-server/internal/service/cache"
)

// preferSelector plays the first listed move that is legal, else the first
// legal move.
func preferSelector(preferred ...string) board.MoveSelector {
	return board.SelectorFunc(func(b board.Board, side board.Side) (board.Move, bool) {
		for _, raw := range preferred {
			mv, err := corechess.ParseMove(raw)
			if err == nil && board.IsLegalMove(b, side, mv.From, mv.To) {
				return mv, true
			}
		}
		moves := board.AllLegalMoves(b, side)
		if len(moves) == 0 {
			return board.Move{}, false
		}
		return moves[0], true
	})
}

type stubRenderer struct {
	calls int
	last  RenderOptions
}

func (r *stubRenderer) RenderPNG(_ context.Context, _ board.Board, opts RenderOptions) ([]byte, error) {
	r.calls++
	r.last = opts
	return []byte("png"), nil
}

func newTestService(t *testing.T, cfg Config, renderer BoardRenderer) (*Service, *cache.MemoryStore) {
	t.Helper()
	if cfg.SessionTTL == 0 {
		cfg.SessionTTL = time.Hour
	}
	if renderer == nil {
		renderer = &stubRenderer{}
	}
	store := cache.NewMemoryStore()
	catalog := msgcat.Default()
	svc, err := NewService(store, preferSelector("e7e5", "d7d5"), corechess.NewBookAnalyzer(nil, catalog), renderer, catalog, cfg, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, store
}

func TestNewServiceValidatesDependencies(t *testing.T) {
	store := cache.NewMemoryStore()
	analyzer := corechess.NewBookAnalyzer(nil, nil)
	if _, err := NewService(nil, preferSelector(), analyzer, &stubRenderer{}, nil, Config{SessionTTL: time.Hour}, nil); err == nil {
		t.Fatalf("expected error for nil store")
	}
	if _, err := NewService(store, preferSelector(), analyzer, &stubRenderer{}, nil, Config{}, nil); err == nil {
		t.Fatalf("expected error for zero TTL")
	}
}

func TestNewGameStartsAtInitialPosition(t *testing.T) {
	svc, _ := newTestService(t, Config{}, nil)
	ctx := context.Background()

	state, err := svc.NewGame(ctx, "", "")
	if err != nil {
		t.Fatalf("new game: %v", err)
	}
	if state.Mode != ModeAI || state.Difficulty != corechess.DefaultDifficulty {
		t.Fatalf("unexpected settings: %s %s", state.Mode, state.Difficulty)
	}
	if state.Board != board.NewBoard() || state.Turn != board.White {
		t.Fatalf("expected initial position")
	}
	if state.Status != "White to move" {
		t.Fatalf("status = %q", state.Status)
	}
	if state.MoveNumber != 1 || len(state.History) != 0 || state.LastMove != nil {
		t.Fatalf("unexpected history: %+v", state)
	}

	loaded, err := svc.Status(ctx, state.SessionID)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if loaded.FEN != state.FEN {
		t.Fatalf("fen mismatch: %q vs %q", loaded.FEN, state.FEN)
	}
}

func TestNewGameRejectsBadSettings(t *testing.T) {
	svc, _ := newTestService(t, Config{}, nil)
	if _, err := svc.NewGame(context.Background(), "online", ""); !errors.Is(err, ErrInvalidMode) {
		t.Fatalf("expected ErrInvalidMode, got %v", err)
	}
	if _, err := svc.NewGame(context.Background(), "ai", "grandmaster"); !errors.Is(err, corechess.ErrUnknownDifficulty) {
		t.Fatalf("expected ErrUnknownDifficulty, got %v", err)
	}
}

func TestPlayWithAutomatedReply(t *testing.T) {
	svc, _ := newTestService(t, Config{}, nil)
	ctx := context.Background()
	state, err := svc.NewGame(ctx, "ai", "easy")
	if err != nil {
		t.Fatalf("new game: %v", err)
	}

	res, err := svc.Play(ctx, state.SessionID, "e2", "e4")
	if err != nil {
		t.Fatalf("play: %v", err)
	}
	if !res.Accepted || res.Move == nil || res.Move.Notation() != "e2-e4" {
		t.Fatalf("move not accepted: %+v", res)
	}
	if res.Reply == nil || res.Reply.Notation() != "e7-e5" || !res.Reply.Automated {
		t.Fatalf("unexpected reply: %+v", res.Reply)
	}
	if diff := cmp.Diff([]string{"1. e2-e4", "1... e7-e5"}, res.State.History); diff != "" {
		t.Fatalf("history mismatch (-want +got):\n%s", diff)
	}
	if res.State.Turn != board.White || res.State.MoveNumber != 2 {
		t.Fatalf("turn=%s move=%d", res.State.Turn, res.State.MoveNumber)
	}

	loaded, err := svc.Status(ctx, state.SessionID)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if loaded.FEN != res.State.FEN {
		t.Fatalf("persisted fen %q, want %q", loaded.FEN, res.State.FEN)
	}
}

func TestPlayRejectsIllegalMove(t *testing.T) {
	svc, _ := newTestService(t, Config{}, nil)
	ctx := context.Background()
	state, _ := svc.NewGame(ctx, "ai", "")

	res, err := svc.Play(ctx, state.SessionID, "e2", "e5")
	if err != nil {
		t.Fatalf("play: %v", err)
	}
	if res.Accepted || res.Move != nil || res.Reply != nil {
		t.Fatalf("illegal move accepted: %+v", res)
	}
	if res.State.Board != board.NewBoard() {
		t.Fatalf("board changed after illegal move")
	}

	if _, err := svc.Play(ctx, state.SessionID, "z9", "e4"); !errors.Is(err, ErrInvalidMove) {
		t.Fatalf("expected ErrInvalidMove, got %v", err)
	}
}

func TestLocalModeAlternatesSides(t *testing.T) {
	svc, _ := newTestService(t, Config{}, nil)
	ctx := context.Background()
	state, _ := svc.NewGame(ctx, "local", "")

	res, err := svc.Play(ctx, state.SessionID, "e2", "e4")
	if err != nil || !res.Accepted {
		t.Fatalf("white move: %v %+v", err, res)
	}
	if res.Reply != nil || res.State.Turn != board.Black || res.State.Status != "Black to move" {
		t.Fatalf("local mode should hand the move to black: %+v", res.State)
	}
	res, err = svc.Play(ctx, state.SessionID, "c7", "c5")
	if err != nil || !res.Accepted {
		t.Fatalf("black move: %v %+v", err, res)
	}
	if res.State.LastMove == nil || res.State.LastMove.Piece.Side != board.Black {
		t.Fatalf("last move should be black's: %+v", res.State.LastMove)
	}
}

func TestPendingReplyPlayedOnNextMove(t *testing.T) {
	svc, _ := newTestService(t, Config{ReplyDelay: time.Hour}, nil)
	state, _ := svc.NewGame(context.Background(), "ai", "")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := svc.Play(ctx, state.SessionID, "e2", "e4")
	if err != nil {
		t.Fatalf("play: %v", err)
	}
	if !res.Accepted || res.Reply != nil {
		t.Fatalf("expected deferred reply: %+v", res)
	}
	if res.State.Turn != board.Black || res.State.Status != "Computer is thinking..." {
		t.Fatalf("unexpected state: %s %q", res.State.Turn, res.State.Status)
	}

	res, err = svc.Play(ctx, state.SessionID, "d2", "d4")
	if err != nil {
		t.Fatalf("second play: %v", err)
	}
	if !res.Accepted {
		t.Fatalf("second move rejected")
	}
	want := []string{"1. e2-e4", "1... e7-e5", "2. d2-d4"}
	if diff := cmp.Diff(want, res.State.History); diff != "" {
		t.Fatalf("history mismatch (-want +got):\n%s", diff)
	}
}

func TestUndoRemovesReplyAndMove(t *testing.T) {
	svc, _ := newTestService(t, Config{}, nil)
	ctx := context.Background()
	state, _ := svc.NewGame(ctx, "ai", "")

	if _, err := svc.Undo(ctx, state.SessionID); !errors.Is(err, ErrUndoNotAvailable) {
		t.Fatalf("expected ErrUndoNotAvailable, got %v", err)
	}
	if _, err := svc.Play(ctx, state.SessionID, "e2", "e4"); err != nil {
		t.Fatalf("play: %v", err)
	}
	undone, err := svc.Undo(ctx, state.SessionID)
	if err != nil {
		t.Fatalf("undo: %v", err)
	}
	if len(undone.History) != 0 || undone.Board != board.NewBoard() || undone.Turn != board.White {
		t.Fatalf("undo should restore the initial position: %+v", undone.History)
	}
}

func TestResetAndEnd(t *testing.T) {
	svc, _ := newTestService(t, Config{}, nil)
	ctx := context.Background()
	state, _ := svc.NewGame(ctx, "local", "hard")

	if _, err := svc.Play(ctx, state.SessionID, "g1", "f3"); err != nil {
		t.Fatalf("play: %v", err)
	}
	reset, err := svc.Reset(ctx, state.SessionID)
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if len(reset.History) != 0 || reset.Mode != ModeLocal || reset.Difficulty != corechess.Hard {
		t.Fatalf("reset lost settings or history: %+v", reset)
	}

	if err := svc.End(ctx, state.SessionID); err != nil {
		t.Fatalf("end: %v", err)
	}
	if _, err := svc.Status(ctx, state.SessionID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound after end, got %v", err)
	}
	if err := svc.End(ctx, state.SessionID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("second end: %v", err)
	}
	if svc.locks.size() != 0 {
		t.Fatalf("session locks leaked: %d", svc.locks.size())
	}
}

func TestUnknownSessions(t *testing.T) {
	svc, _ := newTestService(t, Config{}, nil)
	ctx := context.Background()
	for _, id := range []string{"", "not-a-uuid", uuid.NewString()} {
		if _, err := svc.Status(ctx, id); !errors.Is(err, ErrSessionNotFound) {
			t.Fatalf("id %q: expected ErrSessionNotFound, got %v", id, err)
		}
	}
}

func TestCorruptSessionRejected(t *testing.T) {
	svc, store := newTestService(t, Config{}, nil)
	ctx := context.Background()
	id := uuid.NewString()
	payload := &sessionPayload{
		SessionID: id,
		Mode:      ModeAI,
		Moves:     []storedMove{{From: "e2", To: "e5"}},
	}
	if err := store.Set(ctx, sessionKey(id), payload, time.Hour); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := svc.Status(ctx, id); !errors.Is(err, ErrCorruptSession) {
		t.Fatalf("expected ErrCorruptSession, got %v", err)
	}
}

func TestDestinations(t *testing.T) {
	svc, _ := newTestService(t, Config{}, nil)
	ctx := context.Background()
	state, _ := svc.NewGame(ctx, "ai", "")

	got, err := svc.Destinations(ctx, state.SessionID, "e2")
	if err != nil {
		t.Fatalf("destinations: %v", err)
	}
	found := map[string]bool{}
	for _, sq := range got {
		found[sq.String()] = true
	}
	if len(got) != 2 || !found["e3"] || !found["e4"] {
		t.Fatalf("unexpected destinations: %v", got)
	}

	got, err = svc.Destinations(ctx, state.SessionID, "e7")
	if err != nil {
		t.Fatalf("destinations: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("black pawn should have no moves on white's turn: %v", got)
	}
}

func TestAnalyzeAndHint(t *testing.T) {
	svc, _ := newTestService(t, Config{}, nil)
	ctx := context.Background()
	state, _ := svc.NewGame(ctx, "ai", "")

	analysis, err := svc.Analyze(ctx, state.SessionID)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if !analysis.HasMove || analysis.Evaluation != "+0.0" {
		t.Fatalf("unexpected analysis: %+v", analysis)
	}
	hint, err := svc.Hint(ctx, state.SessionID)
	if err != nil {
		t.Fatalf("hint: %v", err)
	}
	if !hint.HasMove || hint.Explanation == "" {
		t.Fatalf("unexpected hint: %+v", hint)
	}
}

func TestBoardPNGPassesSelection(t *testing.T) {
	renderer := &stubRenderer{}
	svc, _ := newTestService(t, Config{}, renderer)
	ctx := context.Background()
	state, _ := svc.NewGame(ctx, "ai", "")
	if _, err := svc.Play(ctx, state.SessionID, "e2", "e4"); err != nil {
		t.Fatalf("play: %v", err)
	}

	if _, err := svc.BoardPNG(ctx, state.SessionID, "g1"); err != nil {
		t.Fatalf("board: %v", err)
	}
	if renderer.calls != 1 {
		t.Fatalf("renderer calls = %d", renderer.calls)
	}
	opts := renderer.last
	if opts.Selected == nil || opts.Selected.String() != "g1" {
		t.Fatalf("selection not passed: %+v", opts.Selected)
	}
	if len(opts.Destinations) != 3 {
		t.Fatalf("knight on g1 should have 3 destinations, got %v", opts.Destinations)
	}
	if opts.LastMove == nil || opts.LastMove.Notation() != "e7-e5" {
		t.Fatalf("last move = %+v", opts.LastMove)
	}
	if opts.Header != "White to move" {
		t.Fatalf("header = %q", opts.Header)
	}

	if _, err := svc.BoardPNG(ctx, state.SessionID, "k9"); !errors.Is(err, ErrInvalidMove) {
		t.Fatalf("expected ErrInvalidMove, got %v", err)
	}
}

func TestCheckMove(t *testing.T) {
	svc, _ := newTestService(t, Config{}, nil)
	ctx := context.Background()
	const start = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w - - 0 1"

	check, err := svc.CheckMove(ctx, start, "e2e4")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !check.Legal || check.Move.Notation() != "e2-e4" {
		t.Fatalf("expected legal e2-e4: %+v", check)
	}
	if check.FEN != "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b - - 0 1" {
		t.Fatalf("fen = %q", check.FEN)
	}
	if !check.Analysis.HasMove {
		t.Fatalf("expected a suggested reply for black")
	}

	check, err = svc.CheckMove(ctx, start, "e2e5")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if check.Legal {
		t.Fatalf("e2e5 should be illegal")
	}

	if _, err := svc.CheckMove(ctx, "not a fen", "e2e4"); err == nil {
		t.Fatalf("expected FEN error")
	}
}

func TestHistoryLinesLimit(t *testing.T) {
	g := board.NewGame()
	for _, mv := range [][2]string{{"e2", "e4"}, {"e7", "e5"}, {"g1", "f3"}} {
		from, _ := board.ParseSquare(mv[0])
		to, _ := board.ParseSquare(mv[1])
		if _, ok := g.Play(from, to); !ok {
			t.Fatalf("play %v", mv)
		}
	}
	if diff := cmp.Diff([]string{"1... e7-e5", "2. g1-f3"}, historyLines(g.History(), 2)); diff != "" {
		t.Fatalf("history mismatch (-want +got):\n%s", diff)
	}
	if got := historyLines(g.History(), 0); len(got) != 3 {
		t.Fatalf("zero limit should keep all lines: %v", got)
	}
}

func TestSVGRendererProducesPNG(t *testing.T) {
	renderer := NewSVGBoardRenderer()
	g := board.NewGame()
	from, _ := board.ParseSquare("e2")
	to, _ := board.ParseSquare("e4")
	rec, _ := g.Play(from, to)

	selected, _ := board.ParseSquare("g8")
	raw, err := renderer.RenderPNG(context.Background(), g.Board(), RenderOptions{
		LastMove:     &rec,
		Selected:     &selected,
		Destinations: board.LegalMoves(g.Board(), board.Black, selected),
		Header:       "Black to move",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	b := img.Bounds()
	if b.Dx() != boardPixels+sideMargin*2 || b.Dy() != hudHeight+gapToBoard+boardPixels+sideMargin {
		t.Fatalf("unexpected size %v", b)
	}

	// d5 is empty and untouched by highlights.
	r, g2, bl, _ := img.At(sideMargin+3*squareSize+2, hudHeight+gapToBoard+3*squareSize+2).RGBA()
	lr, lg, lb, _ := lightSquare.RGBA()
	if r != lr || g2 != lg || bl != lb {
		t.Fatalf("d5 should be a light square")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := renderer.RenderPNG(ctx, g.Board(), RenderOptions{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
