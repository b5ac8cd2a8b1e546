package app

import "tourbot/internal/domain"

// RangePhase names which side of the stay a picker event belongs to.
type RangePhase int

const (
	PhaseCheckIn RangePhase = iota
	PhaseCheckOut
)

// DateRangeSelector turns two independent calendar interactions into
// one committed check-in/check-out range. The check-out window is
// bounded below by check-in + 1 day, so a non-positive stay is
// unreachable rather than rejected after the fact.
type DateRangeSelector struct {
	horizonDays int
}

func NewDateRangeSelector() DateRangeSelector {
	return DateRangeSelector{horizonDays: 180}
}

// CheckInWindow is the allowed range for the first phase.
func (s DateRangeSelector) CheckInWindow(today domain.Date) (min, max domain.Date) {
	return today, today.AddDays(s.horizonDays)
}

// CheckOutWindow is the allowed range for the second phase.
func (s DateRangeSelector) CheckOutWindow(checkIn domain.Date) (min, max domain.Date) {
	return checkIn.AddDays(1), checkIn.AddDays(s.horizonDays)
}

// Observe folds one picker outcome into the range. It reports true
// once both phases have committed; a pending selection changes nothing.
func (s DateRangeSelector) Observe(r *domain.DateRange, phase RangePhase, sel domain.DateSelection) bool {
	if sel.Pending {
		return false
	}
	switch phase {
	case PhaseCheckIn:
		r.CheckIn = sel.Date
	case PhaseCheckOut:
		r.CheckOut = sel.Date
	}
	return r.Complete()
}
