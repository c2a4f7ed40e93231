package util

import (
	"strings"
	"time"
)

// TradingCalendar provides market-hours awareness for the IDX (Indonesia
// Stock Exchange). All checks are evaluated in the calendar's location,
// which should be Asia/Jakarta (WIB).
type TradingCalendar struct {
	loc *time.Location
}

// NewTradingCalendar creates a TradingCalendar evaluating sessions in loc.
func NewTradingCalendar(loc *time.Location) *TradingCalendar {
	return &TradingCalendar{loc: loc}
}

// Location returns the calendar's exchange-local location.
func (tc *TradingCalendar) Location() *time.Location {
	return tc.loc
}

// session is a trading session expressed as minutes since midnight.
type session struct {
	start, end int // inclusive bounds
}

// IDX sessions. Monday-Thursday trades 09:00-12:00 and 13:30-16:15;
// Friday trades 09:00-11:30 and 14:00-16:15 (prayer break).
var (
	idxMonThu = []session{{9 * 60, 12 * 60}, {13*60 + 30, 16*60 + 15}}
	idxFri    = []session{{9 * 60, 11*60 + 30}, {14 * 60, 16*60 + 15}}
)

// IsMarketOpen returns whether the IDX is open at time t. Public holidays
// are not accounted for; the caller only degrades poll cadence on a closed
// verdict, so a false open on a holiday is harmless.
func (tc *TradingCalendar) IsMarketOpen(t time.Time) bool {
	local := t.In(tc.loc)

	sessions := tc.sessionsFor(local.Weekday())
	if sessions == nil {
		return false
	}

	mins := local.Hour()*60 + local.Minute()
	for _, s := range sessions {
		if mins >= s.start && mins <= s.end {
			return true
		}
	}
	return false
}

// NextOpen returns the next session open time at or after t.
func (tc *TradingCalendar) NextOpen(t time.Time) time.Time {
	local := t.In(tc.loc)

	for day := 0; day < 8; day++ {
		d := local.AddDate(0, 0, day)
		sessions := tc.sessionsFor(d.Weekday())
		if sessions == nil {
			continue
		}
		for _, s := range sessions {
			open := time.Date(d.Year(), d.Month(), d.Day(), s.start/60, s.start%60, 0, 0, tc.loc)
			if !open.Before(local) {
				return open
			}
		}
	}
	return time.Time{}
}

func (tc *TradingCalendar) sessionsFor(day time.Weekday) []session {
	switch day {
	case time.Monday, time.Tuesday, time.Wednesday, time.Thursday:
		return idxMonThu
	case time.Friday:
		return idxFri
	default:
		return nil
	}
}

// IsIDXSymbol reports whether the symbol trades on the IDX: either a ".JK"
// listing or the composite index itself.
func IsIDXSymbol(symbol string) bool {
	return strings.HasSuffix(symbol, ".JK") || symbol == "^JKSE"
}
