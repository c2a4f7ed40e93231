package chart

import (
	"time"

	"fatqt/internal/domain"
)

// Series is an ordered sequence of bars with strictly increasing timestamps.
// The tail bar (last element) is the only element ever mutated in place by
// live updates.
type Series []domain.Bar

// Tail returns a pointer to the last bar, or nil for an empty series.
func (s Series) Tail() *domain.Bar {
	if len(s) == 0 {
		return nil
	}
	return &s[len(s)-1]
}

// Clone returns a deep copy of the series.
func (s Series) Clone() Series {
	if s == nil {
		return nil
	}
	out := make(Series, len(s))
	copy(out, s)
	return out
}

// Merger folds live quote ticks into the tail of a working series. The
// working series is seeded from a historical snapshot and owned exclusively
// by the merger; mutations vanish with it on session teardown.
type Merger struct {
	loc    *time.Location
	series Series
}

// NewMerger creates a Merger over a private copy of the seed bars.
func NewMerger(seed []domain.Bar, loc *time.Location) *Merger {
	return &Merger{
		loc:    loc,
		series: Series(seed).Clone(),
	}
}

// Series returns the current working series. The returned slice is the
// merger's own backing storage; callers must copy before mutating.
func (m *Merger) Series() Series {
	return m.series
}

// Apply folds one quote into the series tail and reports whether the series
// changed.
//
// Same-day quotes replace the tail in place: close follows the quote, high
// and low only ever widen. A quote dated after the tail appends a fresh
// single-price bar; one dated before the tail is dropped so timestamps stay
// strictly increasing. Quotes without a usable price, and quotes against an
// empty series, are ignored. Applying the same quote twice is a no-op after
// the first application.
func (m *Merger) Apply(q domain.Quote) bool {
	tail := m.series.Tail()
	if tail == nil {
		return false
	}
	if !q.HasPrice() {
		return false
	}

	// The tick's calendar date in exchange-local time. Using any other zone
	// would split or merge bars one day off around session boundaries.
	at := q.Timestamp
	if at.IsZero() {
		at = time.Now()
	}

	if tail.SameDay(at, m.loc) {
		changed := tail.Close != q.Price
		tail.Close = q.Price
		if q.Price > tail.High {
			tail.High = q.Price
			changed = true
		}
		if q.Price < tail.Low {
			tail.Low = q.Price
			changed = true
		}
		if q.Volume > 0 && q.Volume != tail.Volume {
			tail.Volume = q.Volume
			changed = true
		}
		return changed
	}

	// A tick dated before the tail is a late delivery; appending it would
	// put a bar behind the series and break timestamp ordering.
	y, mo, d := tail.Timestamp.In(m.loc).Date()
	if at.In(m.loc).Before(time.Date(y, mo, d, 0, 0, 0, 0, m.loc)) {
		return false
	}

	// Tail is from an earlier session: start a new bar at the tick price.
	m.series = append(m.series, domain.Bar{
		Symbol:    tail.Symbol,
		Timestamp: at.In(m.loc),
		Open:      q.Price,
		High:      q.Price,
		Low:       q.Price,
		Close:     q.Price,
		Volume:    q.Volume,
	})
	return true
}
