package layout

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/ppiankov/giants/internal/model"
)

// ErrInvalidEra is returned for era tables that cannot form an axis
var ErrInvalidEra = errors.New("invalid era table")

// Axis maps a calendar year to a percentage of the display axis
type Axis interface {
	Position(year int) float64
}

// LinearAxis spreads [Min, Max] evenly over [0, 100]
type LinearAxis struct {
	Min int
	Max int
}

// Position returns the linear position of year, clamped to [0, 100]
func (a LinearAxis) Position(year int) float64 {
	if a.Max <= a.Min {
		if year < a.Max {
			return 0
		}
		return 100
	}
	return clamp(float64(year-a.Min) / float64(a.Max-a.Min) * 100)
}

// Era is a contiguous span of years given a fixed share of the axis
type Era struct {
	Name  string
	Start int
	End   int
	Share float64
}

// EraAxis gives every era a fixed share of the axis regardless of how many
// years it spans.
type EraAxis struct {
	eras    []Era
	offsets []float64 // Cumulative share before each era
}

// NewEraAxis validates the table and normalises the shares to sum to 100.
// Eras must be ordered, contiguous and non-empty.
func NewEraAxis(eras []Era) (*EraAxis, error) {
	if len(eras) == 0 {
		return nil, fmt.Errorf("%w: no eras", ErrInvalidEra)
	}

	total := 0.0
	for i, e := range eras {
		if e.End <= e.Start {
			return nil, fmt.Errorf("%w: era %q ends at %d before it starts at %d", ErrInvalidEra, e.Name, e.End, e.Start)
		}
		if e.Share <= 0 {
			return nil, fmt.Errorf("%w: era %q has non-positive share %.2f", ErrInvalidEra, e.Name, e.Share)
		}
		if i > 0 && eras[i-1].End != e.Start {
			return nil, fmt.Errorf("%w: era %q starts at %d but %q ends at %d", ErrInvalidEra, e.Name, e.Start, eras[i-1].Name, eras[i-1].End)
		}
		total += e.Share
	}

	axis := &EraAxis{
		eras:    make([]Era, len(eras)),
		offsets: make([]float64, len(eras)),
	}
	offset := 0.0
	for i, e := range eras {
		e.Share = e.Share / total * 100
		axis.eras[i] = e
		axis.offsets[i] = offset
		offset += e.Share
	}
	return axis, nil
}

// Position returns the cumulative share of the preceding eras plus the
// fraction of the containing era. A boundary year belongs to the later era.
func (a *EraAxis) Position(year int) float64 {
	first, last := a.eras[0], a.eras[len(a.eras)-1]
	if year <= first.Start {
		return 0
	}
	if year >= last.End {
		return 100
	}

	i := sort.Search(len(a.eras), func(i int) bool {
		return a.eras[i].End > year
	})
	e := a.eras[i]
	frac := float64(year-e.Start) / float64(e.End-e.Start)
	return clamp(a.offsets[i] + frac*e.Share)
}

// Boundaries returns every era start plus the final end
func (a *EraAxis) Boundaries() []int {
	out := make([]int, 0, len(a.eras)+1)
	for _, e := range a.eras {
		out = append(out, e.Start)
	}
	return append(out, a.eras[len(a.eras)-1].End)
}

// NewAxis builds the configured axis. minYear and now bound the linear axis
// and close an open-ended last era.
func NewAxis(cfg model.AxisConfig, minYear, now int) (Axis, error) {
	switch strings.ToLower(cfg.Mode) {
	case "", model.AxisLinear:
		return LinearAxis{Min: minYear, Max: now}, nil

	case model.AxisEra:
		eras := make([]Era, len(cfg.Eras))
		for i, ec := range cfg.Eras {
			end := now
			switch {
			case ec.End != nil:
				end = *ec.End
			case i != len(cfg.Eras)-1:
				return nil, fmt.Errorf("%w: only the last era may omit its end (%q)", ErrInvalidEra, ec.Name)
			case end <= ec.Start:
				end = ec.Start + 1
			}
			eras[i] = Era{Name: ec.Name, Start: ec.Start, End: end, Share: ec.Share}
		}
		return NewEraAxis(eras)

	default:
		return nil, fmt.Errorf("unknown axis mode: %s (supported: linear, era)", cfg.Mode)
	}
}

func clamp(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
