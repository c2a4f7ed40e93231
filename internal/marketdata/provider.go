// Package marketdata talks to the upstream market-data provider: historical
// OHLC bars and point-in-time quotes over the Yahoo Finance chart API, plus
// a polling streamer that turns quotes into live tick subscriptions.
package marketdata

import (
	"context"
	"time"

	"fatqt/internal/domain"
)

// HistoricalProvider serves historical OHLC bars for a symbol. The end bound
// is exclusive.
type HistoricalProvider interface {
	HistoricalBars(ctx context.Context, symbol string, start, end time.Time, interval domain.Interval) ([]domain.Bar, error)
}

// QuoteProvider serves the current quote for a symbol.
type QuoteProvider interface {
	Quote(ctx context.Context, symbol string) (domain.Quote, error)
}
