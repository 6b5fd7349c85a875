// Package layout computes where figures go on the timeline: which lane each
// lifespan occupies and where a calendar year lands on the display axis.
// Everything here is a pure function of its inputs.
package layout

import (
	"sort"

	"github.com/ppiankov/giants/internal/model"
)

// Spanned is anything with a lifespan relative to "now"
type Spanned interface {
	Interval(now int) model.Interval
}

// Assign packs items into lanes greedily and returns the lane index of every
// item in input order, plus the number of lanes opened.
//
// Items are visited by ascending start year (ties keep input order) and each
// goes to the lowest lane whose members it does not overlap. For interval
// graphs this opens exactly as many lanes as the largest set of mutually
// overlapping lifespans.
func Assign[T Spanned](items []T, now int) ([]int, int) {
	intervals := make([]model.Interval, len(items))
	order := make([]int, len(items))
	for i, it := range items {
		intervals[i] = it.Interval(now)
		order[i] = i
	}

	sort.SliceStable(order, func(a, b int) bool {
		return intervals[order[a]].Start < intervals[order[b]].Start
	})

	assigned := make([]int, len(items))
	var lanes [][]model.Interval

	for _, idx := range order {
		iv := intervals[idx]
		lane := -1
		for l, members := range lanes {
			if !overlapsAny(members, iv) {
				lane = l
				break
			}
		}
		if lane < 0 {
			lanes = append(lanes, nil)
			lane = len(lanes) - 1
		}
		lanes[lane] = append(lanes[lane], iv)
		assigned[idx] = lane
	}

	return assigned, len(lanes)
}

// Pack groups items by lane. Each lane lists its members by ascending start year.
func Pack[T Spanned](items []T, now int) [][]T {
	assigned, count := Assign(items, now)
	if count == 0 {
		return nil
	}

	order := make([]int, len(items))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return items[order[a]].Interval(now).Start < items[order[b]].Interval(now).Start
	})

	lanes := make([][]T, count)
	for _, idx := range order {
		lanes[assigned[idx]] = append(lanes[assigned[idx]], items[idx])
	}
	return lanes
}

func overlapsAny(members []model.Interval, iv model.Interval) bool {
	for _, m := range members {
		if m.Overlaps(iv) {
			return true
		}
	}
	return false
}

// MaxOverlap returns the largest number of items alive in the same year
func MaxOverlap[T Spanned](items []T, now int) int {
	type event struct {
		year  int
		delta int
	}

	events := make([]event, 0, 2*len(items))
	for _, it := range items {
		iv := it.Interval(now)
		// Closed intervals: the item stops counting the year after it ends
		events = append(events, event{iv.Start, 1}, event{iv.End + 1, -1})
	}

	sort.Slice(events, func(i, j int) bool {
		if events[i].year != events[j].year {
			return events[i].year < events[j].year
		}
		return events[i].delta < events[j].delta
	})

	current, best := 0, 0
	for _, ev := range events {
		current += ev.delta
		if current > best {
			best = current
		}
	}
	return best
}

// Bucket counts items alive somewhere within [Year, Year+Span)
type Bucket struct {
	Year  int
	Span  int
	Count int
}

// Occupancy counts items alive in consecutive buckets of step years from
// from up to and including to.
func Occupancy[T Spanned](items []T, now, from, to, step int) []Bucket {
	if step <= 0 || to < from {
		return nil
	}

	intervals := make([]model.Interval, len(items))
	for i, it := range items {
		intervals[i] = it.Interval(now)
	}

	var buckets []Bucket
	for year := from; year <= to; year += step {
		window := model.Interval{Start: year, End: year + step - 1}
		count := 0
		for _, iv := range intervals {
			if iv.Overlaps(window) {
				count++
			}
		}
		buckets = append(buckets, Bucket{Year: year, Span: step, Count: count})
	}
	return buckets
}
