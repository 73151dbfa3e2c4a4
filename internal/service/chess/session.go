package chess

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/park285/playpad-server/internal/board"
	corechess "github.com/park285/playpad-server/internal/chess"
)

const sessionKeyPrefix = "playpad:chess:session:"

// Mode selects who plays black.
type Mode string

const (
	ModeAI    Mode = "ai"
	ModeLocal Mode = "local"
)

// ParseMode accepts "ai" or "local" in any case. Empty selects ai.
func ParseMode(raw string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(raw))) {
	case "", ModeAI:
		return ModeAI, nil
	case ModeLocal:
		return ModeLocal, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, raw)
	}
}

type storedMove struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Automated bool   `json:"automated,omitempty"`
}

type sessionPayload struct {
	SessionID  string               `json:"session_id"`
	Mode       Mode                 `json:"mode"`
	Difficulty corechess.Difficulty `json:"difficulty"`
	Moves      []storedMove         `json:"moves"`
	StartedAt  time.Time            `json:"started_at"`
	UpdatedAt  time.Time            `json:"updated_at"`
}

func sessionKey(id string) string {
	return sessionKeyPrefix + id
}

func (s *Service) loadSession(ctx context.Context, id string) (*sessionPayload, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrSessionNotFound
	}
	var payload sessionPayload
	if err := s.store.Get(ctx, sessionKey(id), &payload); err != nil {
		return nil, fmt.Errorf("load chess session: %w", err)
	}
	if payload.SessionID == "" {
		return nil, ErrSessionNotFound
	}
	return &payload, nil
}

func (s *Service) saveSession(ctx context.Context, payload *sessionPayload) error {
	payload.UpdatedAt = s.now()
	if err := s.store.Set(ctx, sessionKey(payload.SessionID), payload, s.cfg.SessionTTL); err != nil {
		return fmt.Errorf("save chess session: %w", err)
	}
	return nil
}

// replaySession rebuilds the game from the stored moves, validating each.
func replaySession(payload *sessionPayload) (*board.Game, error) {
	records := make([]board.MoveRecord, 0, len(payload.Moves))
	for i, mv := range payload.Moves {
		from, err := board.ParseSquare(mv.From)
		if err != nil {
			return nil, fmt.Errorf("%w: ply %d: %v", ErrCorruptSession, i+1, err)
		}
		to, err := board.ParseSquare(mv.To)
		if err != nil {
			return nil, fmt.Errorf("%w: ply %d: %v", ErrCorruptSession, i+1, err)
		}
		records = append(records, board.MoveRecord{From: from, To: to, Automated: mv.Automated})
	}
	g, err := board.Replay(records)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSession, err)
	}
	return g, nil
}

// storeHistory writes g's history back into payload.
func storeHistory(payload *sessionPayload, g *board.Game) {
	history := g.History()
	payload.Moves = make([]storedMove, len(history))
	for i, rec := range history {
		payload.Moves[i] = storedMove{From: rec.From.String(), To: rec.To.String(), Automated: rec.Automated}
	}
}

// sessionLocks serialises work per session id. Entries are dropped once no
// caller holds or waits for them.
type sessionLocks struct {
	mu sync.Mutex
	m  map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func (l *sessionLocks) lock(id string) func() {
	l.mu.Lock()
	if l.m == nil {
		l.m = make(map[string]*lockEntry)
	}
	e, ok := l.m[id]
	if !ok {
		e = &lockEntry{}
		l.m[id] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		l.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(l.m, id)
		}
		l.mu.Unlock()
	}
}

func (l *sessionLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.m)
}
