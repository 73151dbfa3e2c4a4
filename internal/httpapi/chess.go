package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/park285/playpad-server/internal/adapter/chesspresenter"
	"github.com/park285/playpad-server/internal/board"
	corechess "github.com/park285/playpad-server/internal/chess"
	svcchess "github.com/park285/playpad-server/internal/service/chess"
	"github.com/park285/playpad-server/pkg/chessdto"
	"go.uber.org/zap"
)

const initialFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w - - 0 1"

func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req chessdto.NewGameRequest
	if err := decodeJSON(w, r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	state, err := s.chess.NewGame(r.Context(), req.Mode, req.Difficulty)
	if err != nil {
		s.chessError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, chesspresenter.ToDTOState(state))
}

func (s *Server) handleGameStatus(w http.ResponseWriter, r *http.Request) {
	state, err := s.chess.Status(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.chessError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, chesspresenter.ToDTOState(state))
}

func (s *Server) handleEndGame(w http.ResponseWriter, r *http.Request) {
	if err := s.chess.End(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.chessError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	var req chessdto.PlayRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "No move provided")
		return
	}
	res, err := s.chess.Play(r.Context(), chi.URLParam(r, "id"), req.From, req.To)
	if err != nil {
		s.chessError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, chesspresenter.ToDTOMoveResult(res))
}

func (s *Server) handleDestinations(w http.ResponseWriter, r *http.Request) {
	from := chi.URLParam(r, "square")
	squares, err := s.chess.Destinations(r.Context(), chi.URLParam(r, "id"), from)
	if err != nil {
		s.chessError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, chesspresenter.ToDTODestinations(strings.ToLower(from), squares))
}

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	state, err := s.chess.Undo(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.chessError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, chesspresenter.ToDTOState(state))
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	state, err := s.chess.Reset(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.chessError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, chesspresenter.ToDTOState(state))
}

func (s *Server) handleGameAnalysis(w http.ResponseWriter, r *http.Request) {
	a, err := s.chess.Analyze(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.chessError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, chesspresenter.ToDTOAnalysis(a))
}

func (s *Server) handleGameHint(w http.ResponseWriter, r *http.Request) {
	h, err := s.chess.Hint(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.chessError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, chesspresenter.ToDTOHint(h))
}

func (s *Server) handleBoardPNG(w http.ResponseWriter, r *http.Request) {
	png, err := s.chess.BoardPNG(r.Context(), chi.URLParam(r, "id"), r.URL.Query().Get("selected"))
	if err != nil {
		s.chessError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

func (s *Server) handleBoardImage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	png, err := s.chess.BoardPNG(r.Context(), id, r.URL.Query().Get("selected"))
	if err != nil {
		s.chessError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, chesspresenter.BoardImage(id, png))
}

// handleCheckMove validates a move against a FEN; an empty position is the
// initial layout.
func (s *Server) handleCheckMove(w http.ResponseWriter, r *http.Request) {
	var req chessdto.MoveCheckRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "No data provided")
		return
	}
	move := strings.TrimSpace(req.Move)
	if move == "" && req.From != "" && req.To != "" {
		move = req.From + req.To
	}
	if move == "" {
		writeError(w, http.StatusBadRequest, "No move provided")
		return
	}
	fen := strings.TrimSpace(req.Position)
	if fen == "" {
		fen = initialFEN
	}
	check, err := s.chess.CheckMove(r.Context(), fen, move)
	if err != nil {
		s.chessError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, chesspresenter.ToDTOMoveCheck(move, check))
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req chessdto.PositionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "No data provided")
		return
	}
	var (
		a   corechess.Analysis
		err error
	)
	switch {
	case req.GameID != "":
		a, err = s.chess.Analyze(r.Context(), req.GameID)
	case strings.TrimSpace(req.Position) != "":
		a, err = s.chess.AnalyzePosition(r.Context(), req.Position, req.Difficulty)
	default:
		writeError(w, http.StatusBadRequest, "No position provided")
		return
	}
	if err != nil {
		s.chessError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, chesspresenter.ToDTOAnalysis(a))
}

func (s *Server) handleHint(w http.ResponseWriter, r *http.Request) {
	var req chessdto.PositionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "No data provided")
		return
	}
	var (
		h   corechess.Hint
		err error
	)
	switch {
	case req.GameID != "":
		h, err = s.chess.Hint(r.Context(), req.GameID)
	case strings.TrimSpace(req.Position) != "":
		h, err = s.chess.HintPosition(r.Context(), req.Position, req.Difficulty)
	default:
		writeError(w, http.StatusBadRequest, "No position provided")
		return
	}
	if err != nil {
		s.chessError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, chesspresenter.ToDTOHint(h))
}

func (s *Server) chessError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, svcchess.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, "Game not found")
	case errors.Is(err, svcchess.ErrUndoNotAvailable):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, svcchess.ErrInvalidMove),
		errors.Is(err, svcchess.ErrInvalidMode),
		errors.Is(err, corechess.ErrUnknownDifficulty),
		errors.Is(err, board.ErrInvalidFEN):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.Error("chess_request_failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
