package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/park285/playpad-server/internal/assistant"
	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

type textRequest struct {
	Text string `json:"text"`
}

type textResponse struct {
	Response string `json:"response"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "No data provided")
		return
	}
	reply, err := s.assistant.Chat(r.Context(), req.Text)
	if errors.Is(err, assistant.ErrNoGeminiKey) {
		writeJSON(w, http.StatusInternalServerError, textResponse{Response: reply})
		return
	}
	writeJSON(w, http.StatusOK, textResponse{Response: reply})
}

func (s *Server) handleVoice(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "No text provided")
		return
	}
	reply, err := s.assistant.Voice(r.Context(), req.Text)
	if err != nil {
		writeError(w, http.StatusBadRequest, "No text provided")
		return
	}
	writeJSON(w, http.StatusOK, textResponse{Response: reply})
}

// handleChatSocket answers every {text} frame with a {response} frame until
// the client goes away.
func (s *Server) handleChatSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns:  s.cfg.CORSOrigins,
		CompressionMode: websocket.CompressionNoContextTakeover,
	})
	if err != nil {
		s.logger.Debug("ws_accept_failed", zap.Error(err))
		return
	}
	defer conn.CloseNow()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go s.pingLoop(ctx, cancel, conn)

	for {
		var req textRequest
		if err := wsjson.Read(ctx, conn, &req); err != nil {
			if websocket.CloseStatus(err) != websocket.StatusNormalClosure && ctx.Err() == nil {
				s.logger.Debug("ws_read_failed", zap.Error(err))
			}
			return
		}
		reply, _ := s.assistant.Chat(ctx, req.Text)
		if err := wsjson.Write(ctx, conn, textResponse{Response: reply}); err != nil {
			s.logger.Debug("ws_write_failed", zap.Error(err))
			return
		}
	}
}

// pingLoop closes the socket after two consecutive failed pings.
func (s *Server) pingLoop(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn) {
	t := time.NewTicker(s.cfg.WSPingInterval)
	defer t.Stop()
	failures := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			pctx, pcancel := context.WithTimeout(ctx, 3*time.Second)
			err := conn.Ping(pctx)
			pcancel()
			if err == nil {
				failures = 0
				continue
			}
			failures++
			if failures >= 2 {
				s.logger.Debug("ws_ping_failed", zap.Error(err))
				_ = conn.Close(websocket.StatusGoingAway, "ping failure")
				cancel()
				return
			}
		}
	}
}
