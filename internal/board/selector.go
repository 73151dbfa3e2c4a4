package board

import (
	"math/rand/v2"
	"sync"
	"time"
)

// MoveSelector picks a reply move for side. It reports false when side has
// no legal move.
type MoveSelector interface {
	Select(b Board, side Side) (Move, bool)
}

// RandomSelector chooses uniformly among all legal moves.
type RandomSelector struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomSelector seeds the generator. A zero seed uses the clock.
func NewRandomSelector(seed uint64) *RandomSelector {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &RandomSelector{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (s *RandomSelector) Select(b Board, side Side) (Move, bool) {
	moves := AllLegalMoves(b, side)
	if len(moves) == 0 {
		return Move{}, false
	}
	s.mu.Lock()
	i := s.rng.IntN(len(moves))
	s.mu.Unlock()
	return moves[i], true
}

// SelectorFunc adapts a plain function to MoveSelector.
type SelectorFunc func(b Board, side Side) (Move, bool)

func (f SelectorFunc) Select(b Board, side Side) (Move, bool) { return f(b, side) }
