package leveling

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevel_Boundaries(t *testing.T) {
	cases := []struct {
		exp   int64
		level int
	}{
		{0, 1},
		{99, 1},
		{100, 2},
		{399, 2},
		{400, 3},
		{899, 3},
		{900, 4},
		{1600, 5},
		{8100, 10},
		{-50, 1},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.level, Level(tc.exp), "exp=%d", tc.exp)
	}
}

func TestLevel_NonDecreasing(t *testing.T) {
	prev := Level(0)
	for exp := int64(1); exp <= 50000; exp += 7 {
		cur := Level(exp)
		assert.GreaterOrEqual(t, cur, prev, "exp=%d", exp)
		prev = cur
	}
}

func TestProgress_Range(t *testing.T) {
	for exp := int64(0); exp <= 20000; exp += 13 {
		p := Calculate(exp)
		assert.GreaterOrEqual(t, p.Progress, 0)
		assert.LessOrEqual(t, p.Progress, 100)
		assert.Equal(t, Level(exp), p.CurrentLevel)
	}
}

func TestProgress_ZeroAtBandStart(t *testing.T) {
	e := New(DefaultConstant)
	for level := 1; level <= 30; level++ {
		p := e.Progress(e.BaseExp(level))
		assert.Equal(t, level, p.CurrentLevel)
		assert.Equal(t, 0, p.Progress)
	}
}

func TestProgress_Fields(t *testing.T) {
	p := Calculate(250)
	assert.Equal(t, Progress{
		CurrentLevel: 2,
		CurrentExp:   250,
		LevelBaseExp: 100,
		NextLevelExp: 400,
		Progress:     50,
	}, p)
}

func TestNew_FallsBackOnInvalidConstant(t *testing.T) {
	assert.Equal(t, int64(DefaultConstant), New(0).Constant())
	assert.Equal(t, int64(DefaultConstant), New(-3).Constant())
	assert.Equal(t, 3, New(50).Level(200))
}
