// Package domain defines the core market-data types shared across the
// application: OHLCV bars, live quotes, tickers, and the chart period and
// interval enumerations.
package domain

import "time"

// Bar is a single OHLCV sample for one time bucket. Timestamps are in
// exchange-local time; at daily resolution there is at most one bar per
// calendar date.
type Bar struct {
	Symbol    string    `json:"symbol,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    int64     `json:"volume"`
}

// SameDay reports whether the bar's timestamp falls on the same calendar
// date as t, evaluated in the given location.
func (b Bar) SameDay(t time.Time, loc *time.Location) bool {
	by, bm, bd := b.Timestamp.In(loc).Date()
	ty, tm, td := t.In(loc).Date()
	return by == ty && bm == tm && bd == td
}

// Quote is the latest known trade state for a symbol: a point price, not an
// intraday high/low.
type Quote struct {
	Symbol        string    `json:"ticker"`
	Price         float64   `json:"price"`
	Change        float64   `json:"change"`
	ChangePercent float64   `json:"change_percent"`
	Volume        int64     `json:"volume"`
	Open          float64   `json:"open"`
	High          float64   `json:"high"`
	Low           float64   `json:"low"`
	PreviousClose float64   `json:"previous_close"`
	Timestamp     time.Time `json:"timestamp"`
}

// HasPrice reports whether the quote carries a usable price.
func (q Quote) HasPrice() bool {
	return q.Price > 0
}

// Ticker is one entry in the instrument catalog.
type Ticker struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

// Period is a user-facing display range selector.
type Period string

const (
	Period1D  Period = "1D"
	Period1W  Period = "1W"
	Period1M  Period = "1M"
	Period3M  Period = "3M"
	Period6M  Period = "6M"
	Period1Y  Period = "1Y"
	Period5Y  Period = "5Y"
	Period10Y Period = "10Y"
	PeriodMax Period = "MAX"
)

// Periods lists all valid periods in display order.
var Periods = []Period{
	Period1D, Period1W, Period1M, Period3M, Period6M,
	Period1Y, Period5Y, Period10Y, PeriodMax,
}

// Valid reports whether p is a known period.
func (p Period) Valid() bool {
	for _, q := range Periods {
		if p == q {
			return true
		}
	}
	return false
}

// Interval is the sampling granularity used to fetch and aggregate bars.
// Values follow the upstream chart API identifiers.
type Interval string

const (
	Interval1Min   Interval = "1m"
	Interval2Min   Interval = "2m"
	Interval5Min   Interval = "5m"
	Interval15Min  Interval = "15m"
	Interval30Min  Interval = "30m"
	Interval1Hour  Interval = "1h"
	Interval1Day   Interval = "1d"
	Interval1Week  Interval = "1wk"
	Interval1Month Interval = "1mo"
)

// Intraday reports whether the interval is finer than one day.
func (iv Interval) Intraday() bool {
	switch iv {
	case Interval1Min, Interval2Min, Interval5Min, Interval15Min, Interval30Min, Interval1Hour:
		return true
	}
	return false
}

// Valid reports whether iv is a known interval.
func (iv Interval) Valid() bool {
	switch iv {
	case Interval1Min, Interval2Min, Interval5Min, Interval15Min,
		Interval30Min, Interval1Hour, Interval1Day, Interval1Week, Interval1Month:
		return true
	}
	return false
}
