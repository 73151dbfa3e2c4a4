package openingbook

import (
	"strings"
	"sync"
	"testing"
)

func TestLookupNamesKingsPawnOpenings(t *testing.T) {
	line, ok := New().Lookup([]string{"e2e4", "e7e5", "g1f3"})
	if !ok {
		t.Fatalf("expected book hit")
	}
	if !strings.HasPrefix(line.Code, "C") || line.Title == "" {
		t.Fatalf("unexpected opening %q %q", line.Code, line.Title)
	}
	if len(line.Next) == 0 {
		t.Fatalf("expected continuations after 1.e4 e5 2.Nf3")
	}
}

func TestLookupInitialPositionOffersMainMoves(t *testing.T) {
	line, ok := New().Lookup(nil)
	if !ok {
		t.Fatalf("expected continuations from the initial position")
	}
	seen := make(map[string]bool)
	for _, r := range line.Next {
		seen[r.Move] = true
	}
	for _, mv := range []string{"e2e4", "d2d4"} {
		if !seen[mv] {
			t.Fatalf("missing continuation %s in %+v", mv, line.Next)
		}
	}
	for i := 1; i < len(line.Next); i++ {
		if line.Next[i].Weight > line.Next[i-1].Weight {
			t.Fatalf("continuations not sorted by weight: %+v", line.Next)
		}
	}
}

func TestLookupRejectsNonStandardHistory(t *testing.T) {
	if _, ok := New().Lookup([]string{"e2e5"}); ok {
		t.Fatalf("expected miss for an illegal move")
	}
}

func TestNewWithPolyglotMissingFile(t *testing.T) {
	if _, err := NewWithPolyglot("/nonexistent/book.bin"); err == nil {
		t.Fatalf("expected error for missing book")
	}
	b, err := NewWithPolyglot("")
	if err != nil || b == nil {
		t.Fatalf("empty path should fall back to ECO only: %v", err)
	}
}

func TestLookupContinuationsFollowPlayedLine(t *testing.T) {
	line, ok := New().Lookup([]string{"e2e4", "e7e5"})
	if !ok {
		t.Fatalf("expected book hit")
	}
	seen := make(map[string]bool)
	for _, r := range line.Next {
		seen[r.Move] = true
		if len(r.Move) < 4 || r.Weight == 0 {
			t.Fatalf("malformed continuation %+v", r)
		}
	}
	if !seen["g1f3"] {
		t.Fatalf("missing g1f3 in %+v", line.Next)
	}
	if seen["e2e4"] || seen["e7e5"] {
		t.Fatalf("continuations repeat played moves: %+v", line.Next)
	}
}

func TestEcoLine(t *testing.T) {
	got := ecoLine("1.e2e4 e7e5 2.g1f3")
	want := []string{"e2e4", "e7e5", "g1f3"}
	if strings.Join(got, " ") != strings.Join(want, " ") {
		t.Fatalf("ecoLine = %v, want %v", got, want)
	}
	if !hasPrefix(want, []string{"e2e4", "e7e5"}) || hasPrefix(want, []string{"d2d4"}) {
		t.Fatalf("hasPrefix mismatch")
	}
}

func TestLookupConcurrent(t *testing.T) {
	b := New()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				if line, ok := b.Lookup([]string{"e2e4"}); !ok || len(line.Next) == 0 {
					t.Errorf("lookup miss: %+v", line)
					return
				}
			}
		}()
	}
	wg.Wait()
}
