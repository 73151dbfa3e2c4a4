// Package openingbook names openings and proposes book continuations for a
// move list played from the initial position.
package openingbook

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	chesslib "github.com/corentings/chess/v2"
	"github.com/corentings/chess/v2/opening"
)

var (
	ecoOnce sync.Once
	ecoBook *opening.BookECO
)

// Line is what the book knows about a position.
type Line struct {
	Code  string
	Title string
	// Next lists continuations in UCI notation, most popular first.
	Next []Result
}

type Result struct {
	Move   string
	Weight uint16
}

// Book combines the built-in ECO catalogue with an optional weighted
// polyglot book.
type Book struct {
	eco      *opening.BookECO
	polyglot *chesslib.PolyglotBook
	hasher   *chesslib.ZobristHasher
}

// New returns a book backed by the ECO catalogue only.
func New() *Book {
	ecoOnce.Do(func() { ecoBook = opening.NewBookECO() })
	return &Book{eco: ecoBook}
}

// NewWithPolyglot also loads a polyglot .bin file. Its weighted entries take
// precedence over ECO continuations.
func NewWithPolyglot(path string) (*Book, error) {
	b := New()
	if strings.TrimSpace(path) == "" {
		return b, nil
	}
	poly, err := LoadFromPath(path)
	if err != nil {
		return nil, err
	}
	b.polyglot = poly
	b.hasher = chesslib.NewZobristHasher()
	return b, nil
}

func LoadFromPath(bookPath string) (*chesslib.PolyglotBook, error) {
	file, err := os.Open(bookPath)
	if err != nil {
		return nil, fmt.Errorf("open polyglot book %q: %w", bookPath, err)
	}
	defer file.Close()

	book, err := chesslib.LoadFromReader(file)
	if err != nil {
		return nil, fmt.Errorf("load polyglot book %q: %w", bookPath, err)
	}
	return book, nil
}

// Lookup replays history (UCI moves) and reports the named opening and the
// known continuations. ok is false when the history leaves standard chess or
// the book knows nothing about the position.
func (b *Book) Lookup(history []string) (Line, bool) {
	game := chesslib.NewGame()
	uci := chesslib.UCINotation{}
	for _, mv := range history {
		if err := game.PushNotationMove(mv, uci, nil); err != nil {
			return Line{}, false
		}
	}

	var line Line
	moves := game.Moves()
	if eco := b.eco.Find(moves); eco != nil {
		line.Code = eco.Code()
		line.Title = eco.Title()
	}
	line.Next = b.polyglotMoves(game)
	if len(line.Next) == 0 {
		line.Next = b.ecoContinuations(moves)
	}
	return line, line.Title != "" || len(line.Next) > 0
}

func (b *Book) polyglotMoves(game *chesslib.Game) []Result {
	if b.polyglot == nil {
		return nil
	}
	hashStr, err := b.hasher.HashPosition(game.FEN())
	if err != nil {
		return nil
	}
	entries := b.polyglot.FindMoves(chesslib.ZobristHashToUint64(hashStr))
	results := make([]Result, 0, len(entries))
	for _, entry := range entries {
		move := chesslib.DecodeMove(entry.Move).ToMove()
		results = append(results, Result{Move: move.String(), Weight: entry.Weight})
	}
	sortResults(results)
	return results
}

// ecoContinuations weighs each next move by how many catalogued openings
// continue with it. Catalogue lines are read as UCI text; Opening.Game
// caches into the shared book and must not be called here.
func (b *Book) ecoContinuations(moves []*chesslib.Move) []Result {
	played := make([]string, len(moves))
	for i, mv := range moves {
		played[i] = mv.String()
	}
	counts := make(map[string]int)
	for _, o := range b.eco.Possible(moves) {
		line := ecoLine(o.PGN())
		if len(line) <= len(played) || !hasPrefix(line, played) {
			continue
		}
		counts[line[len(played)]]++
	}
	results := make([]Result, 0, len(counts))
	for mv, n := range counts {
		if n > 0xffff {
			n = 0xffff
		}
		results = append(results, Result{Move: mv, Weight: uint16(n)})
	}
	sortResults(results)
	return results
}

// ecoLine splits a catalogue move list, dropping "1." style move numbers.
func ecoLine(pgn string) []string {
	fields := strings.Fields(pgn)
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if i := strings.LastIndex(f, "."); i >= 0 {
			f = f[i+1:]
		}
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

func hasPrefix(line, prefix []string) bool {
	for i, mv := range prefix {
		if line[i] != mv {
			return false
		}
	}
	return true
}

func sortResults(results []Result) {
	sort.Slice(results, func(i, j int) bool {
		if results[i].Weight == results[j].Weight {
			return results[i].Move < results[j].Move
		}
		return results[i].Weight > results[j].Weight
	})
}
