package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ppiankov/giants/internal/model"
)

func tickYears(ticks []model.Tick) []int {
	out := make([]int, len(ticks))
	for i, tk := range ticks {
		out[i] = tk.Year
	}
	return out
}

func TestTickCandidates(t *testing.T) {
	assert.Equal(t, []int{1650, 1700, 1750, 1800, 1850, 1900, 1950, 2000, 2026}, TickCandidates(1643, 2026, 50))
	assert.Equal(t, []int{-350, -300, -250, -200}, TickCandidates(-384, -200, 50))
	assert.Equal(t, []int{2000, 2026}, TickCandidates(2000, 2026, 0))
}

func TestTicks_MinimumGap(t *testing.T) {
	axis := LinearAxis{Min: 1650, Max: 2026}
	ticks := Ticks(axis, []int{1950, 1900, 2000, 2026, 1900}, nil, 30)

	assert.Equal(t, []int{1900, 1950, 2000}, tickYears(ticks))
	assert.InDelta(t, axis.Position(1950), ticks[1].Position, 1e-9)
}

func TestTicks_ImportantYearWins(t *testing.T) {
	axis := LinearAxis{Min: 1650, Max: 2026}
	ticks := Ticks(axis, []int{1900, 1950, 2000}, []int{2026}, 30)

	assert.Equal(t, []int{1900, 1950, 2026}, tickYears(ticks))
	assert.True(t, ticks[2].Important)
}

func TestTicks_ReplacedYearShiftsSpacing(t *testing.T) {
	axis := LinearAxis{Min: 1650, Max: 2026}
	// 2010 replaces 2000, so 2030 is now too close and is dropped.
	ticks := Ticks(axis, []int{1970, 2000, 2030}, []int{2010}, 25)
	assert.Equal(t, []int{1970, 2010}, tickYears(ticks))
}

func TestTicks_ImportantDoesNotDisplaceImportant(t *testing.T) {
	axis := LinearAxis{Min: 0, Max: 100}
	ticks := Ticks(axis, nil, []int{10, 15}, 10)
	assert.Equal(t, []int{10}, tickYears(ticks))
}

func TestTicks_Empty(t *testing.T) {
	assert.Empty(t, Ticks(LinearAxis{Min: 0, Max: 1}, nil, nil, 10))
}
