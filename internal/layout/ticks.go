package layout

import (
	"sort"

	"github.com/ppiankov/giants/internal/model"
)

// DefaultTickStep is the spacing of generated tick candidates
const DefaultTickStep = 50

// TickCandidates returns every multiple of step from the first one at or
// after minYear up to now, followed by now itself.
func TickCandidates(minYear, now, step int) []int {
	if step <= 0 {
		step = DefaultTickStep
	}

	first := ceilDiv(minYear, step) * step
	var years []int
	for y := first; y < now; y += step {
		years = append(years, y)
	}
	return append(years, now)
}

// Ticks places axis labels. Candidates and important years are merged,
// sorted and de-duplicated, then kept greedily so that no two kept years are
// closer than minGap calendar years. When an important year competes with a
// non-important one that was kept just before it, the important year takes
// its place.
func Ticks(axis Axis, candidates, important []int, minGap int) []model.Tick {
	isImportant := make(map[int]bool, len(important))
	for _, y := range important {
		isImportant[y] = true
	}

	years := make([]int, 0, len(candidates)+len(important))
	years = append(years, candidates...)
	years = append(years, important...)
	sort.Ints(years)
	years = dedupe(years)

	var kept []model.Tick
	for _, y := range years {
		tick := model.Tick{Year: y, Important: isImportant[y]}
		if len(kept) == 0 {
			kept = append(kept, tick)
			continue
		}

		last := kept[len(kept)-1]
		if y-last.Year >= minGap {
			kept = append(kept, tick)
			continue
		}

		if tick.Important && !last.Important {
			kept[len(kept)-1] = tick
		}
	}

	for i := range kept {
		kept[i].Position = axis.Position(kept[i].Year)
	}
	return kept
}

func dedupe(sorted []int) []int {
	if len(sorted) == 0 {
		return sorted
	}
	out := sorted[:1]
	for _, y := range sorted[1:] {
		if y != out[len(out)-1] {
			out = append(out, y)
		}
	}
	return out
}

// ceilDiv rounds a/b towards positive infinity for positive b
func ceilDiv(a, b int) int {
	q := a / b
	if a%b != 0 && a > 0 {
		q++
	}
	return q
}
