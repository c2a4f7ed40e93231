package marketdata

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"fatqt/internal/domain"
	"fatqt/internal/util"
)

// Streamer turns the point-in-time quote API into per-symbol tick channels
// by polling. The cadence adapts to trading hours: a tight interval while
// the exchange is open and a slow keepalive while it is closed.
type Streamer struct {
	quotes      QuoteProvider
	cal         *util.TradingCalendar
	openEvery   time.Duration
	closedEvery time.Duration
	log         *slog.Logger
}

// NewStreamer creates a Streamer polling at openEvery during trading hours
// and closedEvery outside them.
func NewStreamer(quotes QuoteProvider, cal *util.TradingCalendar, openEvery, closedEvery time.Duration) *Streamer {
	return &Streamer{
		quotes:      quotes,
		cal:         cal,
		openEvery:   openEvery,
		closedEvery: closedEvery,
		log:         slog.Default().With("component", "stream"),
	}
}

// Subscribe starts polling quotes for symbol. The returned channel closes
// when the subscription is cancelled; cancel is idempotent.
func (s *Streamer) Subscribe(symbol string) (<-chan domain.Quote, func(), error) {
	ch := make(chan domain.Quote, 16)
	ctx, cancel := context.WithCancel(context.Background())

	var once sync.Once
	stop := func() {
		once.Do(cancel)
	}

	go s.poll(ctx, symbol, ch)
	return ch, stop, nil
}

func (s *Streamer) poll(ctx context.Context, symbol string, ch chan<- domain.Quote) {
	defer close(ch)

	timer := time.NewTimer(0) // first fetch immediately
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		q, err := s.quotes.Quote(ctx, symbol)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.log.Debug("quote poll failed", "symbol", symbol, "error", err)
		} else {
			select {
			case ch <- q:
			default:
				// Consumer is behind; drop the tick rather than block the
				// poll loop. The next tick carries fresher data anyway.
			}
		}

		timer.Reset(s.cadence(symbol, time.Now()))
	}
}

// cadence picks the poll interval for a symbol. Only IDX listings follow the
// exchange calendar; anything else is assumed tradeable and polled at the
// open cadence.
func (s *Streamer) cadence(symbol string, now time.Time) time.Duration {
	if util.IsIDXSymbol(symbol) && !s.cal.IsMarketOpen(now) {
		return s.closedEvery
	}
	return s.openEvery
}

// MarketOpen reports whether the exchange backing symbol is currently open.
func (s *Streamer) MarketOpen(symbol string, now time.Time) bool {
	if util.IsIDXSymbol(symbol) {
		return s.cal.IsMarketOpen(now)
	}
	return true
}
