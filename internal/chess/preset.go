package chess

import (
	"errors"
	"fmt"
	"strings"

	"github.com/park285/playpad-server/internal/chess/uci"
)

var ErrUnknownDifficulty = errors.New("unknown difficulty")

// Difficulty is the level a game was started with. It scales analysis
// strength; automated replies are random at every level.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"

	DefaultDifficulty = Medium
)

// AnalysisPreset is the engine configuration used for one difficulty.
type AnalysisPreset struct {
	Name           Difficulty
	SkillLevel     int
	Threads        int
	HashMB         int
	MultiPV        int
	DepthCap       int
	MoveTimeMillis int
}

var presets = map[Difficulty]AnalysisPreset{
	Easy:   {Name: Easy, SkillLevel: 5, Threads: 1, HashMB: 16, MultiPV: 1, DepthCap: 6},
	Medium: {Name: Medium, SkillLevel: 12, Threads: 1, HashMB: 32, MultiPV: 1, DepthCap: 10},
	Hard:   {Name: Hard, SkillLevel: 20, Threads: 2, HashMB: 64, MultiPV: 1, DepthCap: 16, MoveTimeMillis: 1500},
}

// ParseDifficulty accepts a level name in any case. Empty selects the default.
func ParseDifficulty(raw string) (Difficulty, error) {
	d := Difficulty(strings.ToLower(strings.TrimSpace(raw)))
	if d == "" {
		return DefaultDifficulty, nil
	}
	if _, ok := presets[d]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownDifficulty, raw)
	}
	return d, nil
}

// GetPreset returns the preset for d, or the default level's preset when d
// is unknown.
func GetPreset(d Difficulty) AnalysisPreset {
	if p, ok := presets[d]; ok {
		return p
	}
	return presets[DefaultDifficulty]
}

func ValidatePreset(p AnalysisPreset) error {
	if p.SkillLevel < 0 || p.SkillLevel > 20 {
		return fmt.Errorf("preset %s: skill level %d out of range", p.Name, p.SkillLevel)
	}
	if p.HashMB <= 0 || p.MultiPV <= 0 {
		return fmt.Errorf("preset %s: hash and multipv must be positive", p.Name)
	}
	if p.DepthCap <= 0 && p.MoveTimeMillis <= 0 {
		return fmt.Errorf("preset %s does not define search limits", p.Name)
	}
	return nil
}

func (p AnalysisPreset) options() uci.Options {
	return uci.Options{
		Threads:    p.Threads,
		SkillLevel: p.SkillLevel,
		HashMB:     p.HashMB,
		MultiPV:    p.MultiPV,
	}
}

// limits caps the preset depth at maxDepth when maxDepth is positive.
func (p AnalysisPreset) limits(maxDepth int) uci.Limits {
	depth := p.DepthCap
	if maxDepth > 0 && (depth == 0 || depth > maxDepth) {
		depth = maxDepth
	}
	return uci.Limits{Depth: depth, MoveTimeMillis: p.MoveTimeMillis}
}
