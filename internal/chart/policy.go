// Package chart implements the live candle engine behind the price chart:
// period-to-interval resolution under provider lookback ceilings, live quote
// reconciliation into the series tail, intraday day-window filtering, and
// the per-view chart session that ties them together.
package chart

import (
	"fmt"
	"time"

	"fatqt/internal/domain"
)

// Resolution is the outcome of resolving a display period: the sampling
// interval plus the fetch window. End is exclusive upstream.
type Resolution struct {
	Interval domain.Interval
	Start    time.Time
	End      time.Time
}

// Policy maps display periods to provider-compatible intervals and fetch
// windows, honouring per-interval lookback ceilings.
type Policy struct {
	loc *time.Location
}

// NewPolicy creates a Policy evaluating calendar dates in loc.
func NewPolicy(loc *time.Location) *Policy {
	return &Policy{loc: loc}
}

// defaultIntervals is the fixed period → interval table.
var defaultIntervals = map[domain.Period]domain.Interval{
	domain.Period1D:  domain.Interval1Min,
	domain.Period1W:  domain.Interval5Min,
	domain.Period1M:  domain.Interval1Day,
	domain.Period3M:  domain.Interval1Day,
	domain.Period6M:  domain.Interval1Day,
	domain.Period1Y:  domain.Interval1Day,
	domain.Period5Y:  domain.Interval1Week,
	domain.Period10Y: domain.Interval1Month,
	domain.PeriodMax: domain.Interval1Month,
}

// lookbackCeilingDays is the maximum trailing window, in days, the upstream
// provider serves per interval. Intervals absent from the map are unbounded.
var lookbackCeilingDays = map[domain.Interval]int{
	domain.Interval1Min:  7,
	domain.Interval2Min:  60,
	domain.Interval5Min:  60,
	domain.Interval15Min: 60,
	domain.Interval30Min: 60,
	domain.Interval1Hour: 730,
}

// coarser maps each bounded interval to the next coarser one, used when a
// window cannot fit under the interval's ceiling. The ladder ends at daily,
// which is unbounded.
var coarser = map[domain.Interval]domain.Interval{
	domain.Interval1Min:  domain.Interval5Min,
	domain.Interval2Min:  domain.Interval5Min,
	domain.Interval5Min:  domain.Interval1Hour,
	domain.Interval15Min: domain.Interval1Hour,
	domain.Interval30Min: domain.Interval1Hour,
	domain.Interval1Hour: domain.Interval1Day,
}

// maxHistoryStart bounds the MAX period window.
var maxHistoryStart = time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC)

// Resolve maps a period to its default interval and fetch window. When the
// period's window exceeds the default interval's lookback ceiling the
// interval is promoted to a coarser granularity rather than returning an
// empty or truncated result.
//
// End is always one calendar day past now: the upstream provider treats the
// end bound as exclusive, so anything earlier would drop the current
// trading day's bar.
func (p *Policy) Resolve(period domain.Period, now time.Time) (Resolution, error) {
	if !period.Valid() {
		return Resolution{}, fmt.Errorf("unknown period %q", period)
	}

	day := startOfDay(now, p.loc)
	end := day.AddDate(0, 0, 1)
	start := p.startFor(period, day)

	iv := defaultIntervals[period]
	for {
		ceiling, bounded := lookbackCeilingDays[iv]
		if !bounded || !end.After(start.AddDate(0, 0, ceiling)) {
			break
		}
		next, ok := coarser[iv]
		if !ok {
			break
		}
		iv = next
	}

	return Resolution{Interval: iv, Start: start, End: end}, nil
}

// ResolveOverride resolves a period window with a caller-chosen interval,
// bypassing the default table. The window is clamped (start moved forward)
// so its span never exceeds the override interval's own lookback ceiling.
func (p *Policy) ResolveOverride(period domain.Period, iv domain.Interval, now time.Time) (Resolution, error) {
	if !period.Valid() {
		return Resolution{}, fmt.Errorf("unknown period %q", period)
	}
	if !iv.Valid() {
		return Resolution{}, fmt.Errorf("unknown interval %q", iv)
	}

	day := startOfDay(now, p.loc)
	end := day.AddDate(0, 0, 1)
	start := p.startFor(period, day)

	if ceiling, bounded := lookbackCeilingDays[iv]; bounded {
		if floor := end.AddDate(0, 0, -ceiling); start.Before(floor) {
			start = floor
		}
	}

	return Resolution{Interval: iv, Start: start, End: end}, nil
}

// startFor computes the window start for a period, counting back from the
// given exchange-local day.
func (p *Policy) startFor(period domain.Period, day time.Time) time.Time {
	switch period {
	case domain.Period1D:
		// Fetch a few sessions so the last completed trading day is always
		// present; DayWindowFilter narrows to a single session afterwards.
		return day.AddDate(0, 0, -4)
	case domain.Period1W:
		return day.AddDate(0, 0, -7)
	case domain.Period1M:
		return day.AddDate(0, -1, 0)
	case domain.Period3M:
		return day.AddDate(0, -3, 0)
	case domain.Period6M:
		return day.AddDate(0, -6, 0)
	case domain.Period1Y:
		return day.AddDate(-1, 0, 0)
	case domain.Period5Y:
		return day.AddDate(-5, 0, 0)
	case domain.Period10Y:
		return day.AddDate(-10, 0, 0)
	case domain.PeriodMax:
		return maxHistoryStart.In(p.loc)
	}
	return day.AddDate(0, -1, 0)
}

// startOfDay truncates t to midnight in loc.
func startOfDay(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}
