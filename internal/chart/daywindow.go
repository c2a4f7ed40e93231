package chart

import (
	"time"

	"fatqt/internal/domain"
)

// LastSessionOnly narrows an intraday snapshot to its most recent trading
// session: only bars whose exchange-local calendar date equals the date of
// the snapshot's final bar are kept.
//
// The reference date comes from the data, not the wall clock, so outside
// trading hours and on non-trading days the filter still yields the last
// completed session instead of an empty chart.
func LastSessionOnly(bars []domain.Bar, loc *time.Location) []domain.Bar {
	if len(bars) == 0 {
		return nil
	}

	ref := bars[len(bars)-1].Timestamp

	// Bars are ordered, so the session is a suffix; find where it starts.
	first := len(bars) - 1
	for first > 0 && bars[first-1].SameDay(ref, loc) {
		first--
	}

	out := make([]domain.Bar, len(bars)-first)
	copy(out, bars[first:])
	return out
}
