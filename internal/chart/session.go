package chart

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"fatqt/internal/domain"
	"fatqt/internal/indicator"
)

// BarLoader fetches historical bars. Owned by the transport layer.
type BarLoader interface {
	HistoricalBars(ctx context.Context, symbol string, start, end time.Time, interval domain.Interval) ([]domain.Bar, error)
}

// QuoteSource opens live quote subscriptions. The returned cancel func must
// be safe to call more than once.
type QuoteSource interface {
	Subscribe(symbol string) (<-chan domain.Quote, func(), error)
}

// Session owns the state of one active chart view: the working series, the
// live quote subscription, and the optional oscillator overlay. Exactly one
// series and one subscription exist per session; selector changes replace
// both wholesale.
type Session struct {
	policy *Policy
	bars   BarLoader
	quotes QuoteSource
	osc    *indicator.Adapter
	loc    *time.Location
	log    *slog.Logger

	mu          sync.Mutex
	symbol      string
	period      domain.Period
	res         Resolution
	snapshot    Series // historical bars after day filtering, pre-merge
	merger      *Merger
	overlay     *indicator.Overlay
	showOsc     bool
	unsubscribe func()
	closed      bool

	// gen identifies the current selector state; oscGen the current
	// indicator request. Results carrying an older value are discarded.
	gen    uint64
	oscGen uint64
}

// NewSession creates a Session. quotes and osc may be nil for views without
// live updates or indicator support.
func NewSession(policy *Policy, bars BarLoader, quotes QuoteSource, osc *indicator.Adapter, loc *time.Location) *Session {
	return &Session{
		policy: policy,
		bars:   bars,
		quotes: quotes,
		osc:    osc,
		loc:    loc,
		log:    slog.Default().With("component", "chart"),
	}
}

// Load switches the session to (symbol, period), discarding the previous
// series and subscription entirely. An empty override uses the period's
// default interval; a non-empty one is clamped to its own lookback ceiling.
//
// A failed historical fetch yields an empty series, not an error: the
// renderer shows its no-data state and the session stays usable.
func (s *Session) Load(ctx context.Context, symbol string, period domain.Period, override domain.Interval) error {
	var (
		res Resolution
		err error
	)
	if override != "" {
		res, err = s.policy.ResolveOverride(period, override, time.Now())
	} else {
		res, err = s.policy.Resolve(period, time.Now())
	}
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.gen++
	s.oscGen++
	gen := s.gen
	s.teardownLocked()
	s.symbol = symbol
	s.period = period
	s.res = res
	s.snapshot = nil
	s.merger = nil
	s.overlay = nil
	s.mu.Unlock()

	bars, fetchErr := s.bars.HistoricalBars(ctx, symbol, res.Start, res.End, res.Interval)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || gen != s.gen {
		// Superseded by a newer selector change while fetching.
		return nil
	}
	if fetchErr != nil {
		s.log.Warn("historical fetch failed", "symbol", symbol, "error", fetchErr)
		bars = nil
	}
	if period == domain.Period1D {
		bars = LastSessionOnly(bars, s.loc)
	}

	s.snapshot = Series(bars).Clone()
	s.merger = NewMerger(bars, s.loc)

	if s.quotes != nil {
		ch, cancel, err := s.quotes.Subscribe(symbol)
		if err != nil {
			s.log.Warn("quote subscription failed", "symbol", symbol, "error", err)
		} else {
			s.unsubscribe = cancel
			go s.consume(gen, ch)
		}
	}
	return nil
}

// consume applies quotes from one subscription until its channel closes.
// Channel closure freezes the series at its last reconciled state.
func (s *Session) consume(gen uint64, ch <-chan domain.Quote) {
	for q := range ch {
		s.applyQuote(gen, q)
	}
}

// applyQuote merges a quote into the working series after validating its
// provenance: the subscription generation must still be current and the
// quote must carry the session's symbol.
func (s *Session) applyQuote(gen uint64, q domain.Quote) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || gen != s.gen || s.merger == nil {
		return
	}
	if q.Symbol != "" && q.Symbol != s.symbol {
		s.log.Warn("dropping quote for foreign symbol", "got", q.Symbol, "want", s.symbol)
		return
	}
	s.merger.Apply(q)
}

// SetIndicator toggles the oscillator overlay. Turning it on issues a fetch
// whose result is discarded if the symbol, interval, or toggle state changed
// while it was in flight. A failed fetch hides the overlay and leaves the
// price series untouched.
func (s *Session) SetIndicator(ctx context.Context, show bool) {
	s.mu.Lock()
	s.oscGen++
	og := s.oscGen
	s.showOsc = show
	if !show || s.osc == nil || s.merger == nil {
		s.overlay = nil
		s.mu.Unlock()
		return
	}
	symbol, res := s.symbol, s.res
	s.mu.Unlock()

	osc, err := s.osc.Fetch(ctx, symbol, res.Start, res.End, res.Interval)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || og != s.oscGen {
		// Stale response; newer state wins.
		return
	}
	if err != nil {
		s.log.Warn("oscillator fetch failed", "symbol", symbol, "error", err)
		s.overlay = nil
		return
	}
	ov := indicator.AlignOverlay(len(s.merger.Series()), osc)
	s.overlay = &ov
}

// Bars returns a copy of the current working series.
func (s *Session) Bars() Series {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.merger == nil {
		return nil
	}
	return s.merger.Series().Clone()
}

// Overlay returns a copy of the current oscillator overlay, or nil when
// hidden.
func (s *Session) Overlay() *indicator.Overlay {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.overlay == nil {
		return nil
	}
	ov := indicator.Overlay{
		K: append([]float64(nil), s.overlay.K...),
		D: append([]float64(nil), s.overlay.D...),
	}
	return &ov
}

// Resolution returns the active interval and fetch window.
func (s *Session) Resolution() Resolution {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.res
}

// Close tears the session down: the subscription is cancelled, in-flight
// fetch results are invalidated, and the series is discarded.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.gen++
	s.oscGen++
	s.teardownLocked()
	s.merger = nil
	s.snapshot = nil
	s.overlay = nil
}

func (s *Session) teardownLocked() {
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
}
