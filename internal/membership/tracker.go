// Package membership computes meal-plan consumption across pause/resume
// ranges. Everything here is a pure function of calendar days.
package membership

import (
	"fmt"

	"github.com/shivig4545-12/Shivangi-Gupta-POS-Project/internal/calendar"
	"github.com/shivig4545-12/Shivangi-Gupta-POS-Project/internal/model"
)

// HoldRange pauses a plan from From through To. A zero To means the hold is
// still open. A closed range with To == From is a same-day hold that was
// lifted before it consumed anything and counts zero days.
type HoldRange struct {
	From calendar.Day `json:"from"`
	To   calendar.Day `json:"to"`
}

func (r HoldRange) Open() bool { return r.To.IsZero() }

// Plan is the membership subset of an order.
type Plan struct {
	Start calendar.Day
	End   calendar.Day
	Holds []HoldRange
}

type Stats struct {
	TotalDays    int  `json:"total_meals"`
	ConsumedDays int  `json:"consumed_meals"`
	PendingDays  int  `json:"pending_meals"`
	IsOnHold     bool `json:"is_on_hold"`
}

// OnHold reports whether the most recent range is still open.
func OnHold(holds []HoldRange) bool {
	return len(holds) > 0 && holds[len(holds)-1].Open()
}

// Compute returns the plan's consumption as of asOf.
func Compute(p Plan, asOf calendar.Day) Stats {
	total := calendar.InclusiveCount(p.Start, p.End)
	windowEnd := calendar.Min(asOf, p.End)
	active := calendar.InclusiveCount(p.Start, windowEnd)

	held := 0
	var counted calendar.Day // last day already added to held
	for _, r := range p.Holds {
		if !r.Open() && !r.To.After(r.From) {
			continue
		}
		to := r.To
		if r.Open() {
			to = asOf
		}
		from := calendar.Max(r.From, p.Start)
		if !counted.IsZero() && !from.After(counted) {
			from = counted.AddDays(1)
		}
		until := calendar.Min(to, windowEnd)
		if until.Before(from) {
			continue
		}
		held += calendar.InclusiveCount(from, until)
		counted = until
	}

	consumed := min(max(active-held, 0), total)
	return Stats{
		TotalDays:    total,
		ConsumedDays: consumed,
		PendingDays:  total - consumed,
		IsOnHold:     OnHold(p.Holds),
	}
}

// Hold opens a new range starting today. It is a no-op when already on hold.
func Hold(holds []HoldRange, today calendar.Day) ([]HoldRange, bool) {
	if OnHold(holds) {
		return holds, false
	}
	out := make([]HoldRange, len(holds), len(holds)+1)
	copy(out, holds)
	return append(out, HoldRange{From: today}), true
}

// Unhold closes the open range at today. It is a no-op when not on hold.
func Unhold(holds []HoldRange, today calendar.Day) ([]HoldRange, bool) {
	if !OnHold(holds) {
		return holds, false
	}
	out := make([]HoldRange, len(holds))
	copy(out, holds)
	last := &out[len(out)-1]
	last.To = calendar.Max(today, last.From)
	return out, true
}

// Validate checks that ranges are ordered by From, do not overlap (sharing a
// boundary day is allowed) and that only the last one is open.
func Validate(holds []HoldRange) error {
	for i, r := range holds {
		if r.From.IsZero() {
			return fmt.Errorf("%w: hold range %d has no start", model.ErrValidation, i)
		}
		if r.Open() && i != len(holds)-1 {
			return fmt.Errorf("%w: only the last hold range may be open", model.ErrValidation)
		}
		if !r.Open() && r.To.Before(r.From) {
			return fmt.Errorf("%w: hold range %d ends before it starts", model.ErrValidation, i)
		}
		if i > 0 {
			prev := holds[i-1]
			if r.From.Before(prev.From) {
				return fmt.Errorf("%w: hold ranges are out of order at %d", model.ErrValidation, i)
			}
			if r.From.Before(prev.To) {
				return fmt.Errorf("%w: hold range %d overlaps the previous one", model.ErrValidation, i)
			}
		}
	}
	return nil
}
