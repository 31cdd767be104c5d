// Package leveling maps cumulative experience to levels.
//
// The curve is quadratic: reaching level L requires K*(L-1)^2 experience,
// so level(exp) = floor(sqrt(exp/K)) + 1. Both the check-in reward path and
// profile display go through this package so they always agree.
package leveling

import "math"

// DefaultConstant is the difficulty constant K
const DefaultConstant = 100

// Progress describes where an experience total sits on the curve
type Progress struct {
	CurrentLevel int   `json:"currentLevel"`
	CurrentExp   int64 `json:"currentExp"`
	LevelBaseExp int64 `json:"levelBaseExp"`
	NextLevelExp int64 `json:"nextLevelExp"`
	Progress     int   `json:"progress"`
}

// Engine computes levels for a fixed difficulty constant
type Engine struct {
	k int64
}

// New returns an engine for constant k. Non-positive k falls back to DefaultConstant.
func New(k int64) Engine {
	if k <= 0 {
		k = DefaultConstant
	}
	return Engine{k: k}
}

// Constant returns K
func (e Engine) Constant() int64 {
	return e.k
}

// Level returns the level for totalExp. Negative totals are treated as zero.
func (e Engine) Level(totalExp int64) int {
	if totalExp <= 0 {
		return 1
	}
	level := int(math.Floor(math.Sqrt(float64(totalExp)/float64(e.k)))) + 1

	// guard against float rounding at exact band boundaries
	for level > 1 && e.BaseExp(level) > totalExp {
		level--
	}
	for e.BaseExp(level+1) <= totalExp {
		level++
	}
	return level
}

// BaseExp returns the minimum experience for level, K*(level-1)^2
func (e Engine) BaseExp(level int) int64 {
	if level <= 1 {
		return 0
	}
	n := int64(level - 1)
	return e.k * n * n
}

// Progress returns the level band and percentage for totalExp
func (e Engine) Progress(totalExp int64) Progress {
	if totalExp < 0 {
		totalExp = 0
	}
	level := e.Level(totalExp)
	base := e.BaseExp(level)
	next := e.BaseExp(level + 1)

	pct := 0
	if width := next - base; width > 0 {
		pct = int((totalExp - base) * 100 / width)
	}
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}

	return Progress{
		CurrentLevel: level,
		CurrentExp:   totalExp,
		LevelBaseExp: base,
		NextLevelExp: next,
		Progress:     pct,
	}
}

var std = New(DefaultConstant)

// Level uses the default constant
func Level(totalExp int64) int {
	return std.Level(totalExp)
}

// Calculate uses the default constant
func Calculate(totalExp int64) Progress {
	return std.Progress(totalExp)
}
