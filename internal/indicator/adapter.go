package indicator

import (
	"context"
	"log/slog"
	"math"
	"time"

	"fatqt/internal/domain"
)

// The oscillator needs more history than a short visible window provides.
// Requests spanning fewer than MinSpanDays are widened back to WidenSpanDays
// before the end bound; only the query widens, never the displayed window.
const (
	MinSpanDays   = 60
	WidenSpanDays = 90
)

// Source produces an oscillator for a symbol over a window, typically by
// fetching the underlying bars from the market-data provider.
type Source interface {
	Oscillator(ctx context.Context, symbol string, start, end time.Time, interval domain.Interval) (Oscillator, error)
}

// Adapter fetches oscillator series, transparently widening queries whose
// visible window is too short to satisfy the indicator's minimum sample
// requirement.
type Adapter struct {
	src Source
	log *slog.Logger
}

// NewAdapter creates an Adapter over the given source.
func NewAdapter(src Source) *Adapter {
	return &Adapter{
		src: src,
		log: slog.Default().With("component", "indicator"),
	}
}

// Fetch returns the oscillator for the window. When end-start spans fewer
// than MinSpanDays the underlying query start is silently moved back to
// WidenSpanDays before end.
func (a *Adapter) Fetch(ctx context.Context, symbol string, start, end time.Time, interval domain.Interval) (Oscillator, error) {
	if span := end.Sub(start); span < MinSpanDays*24*time.Hour {
		widened := end.AddDate(0, 0, -WidenSpanDays)
		a.log.Debug("widening oscillator query",
			"symbol", symbol,
			"requested", start.Format("2006-01-02"),
			"widened", widened.Format("2006-01-02"),
		)
		start = widened
	}
	return a.src.Oscillator(ctx, symbol, start, end, interval)
}

// Overlay carries per-bar oscillator values for the renderer. Both slices
// have exactly one entry per displayed bar; positions without a value hold
// NaN.
type Overlay struct {
	K []float64
	D []float64
}

// AlignOverlay right-aligns an oscillator response against numBars displayed
// bars: the last len(K) bars receive %K values and, within those, the last
// len(D) receive %D values. Leading positions are NaN-padded.
func AlignOverlay(numBars int, osc Oscillator) Overlay {
	ov := Overlay{
		K: nanSlice(numBars),
		D: nanSlice(numBars),
	}

	k := osc.K
	if len(k) > numBars {
		k = k[len(k)-numBars:]
	}
	for i, v := range k {
		ov.K[numBars-len(k)+i] = v
	}

	d := osc.D
	if len(d) > numBars {
		d = d[len(d)-numBars:]
	}
	for i, v := range d {
		ov.D[numBars-len(d)+i] = v
	}

	return ov
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

// BarFetcher is the slice of the market-data provider the bar-backed source
// needs.
type BarFetcher interface {
	HistoricalBars(ctx context.Context, symbol string, start, end time.Time, interval domain.Interval) ([]domain.Bar, error)
}

// Compile-time interface check.
var _ Source = (*BarSource)(nil)

// BarSource computes the stochastic oscillator from bars fetched on demand.
type BarSource struct {
	bars     BarFetcher
	lookback int
	smoothK  int
	smoothD  int
}

// NewBarSource creates a BarSource with the default stochastic parameters.
func NewBarSource(bars BarFetcher) *BarSource {
	return &BarSource{
		bars:     bars,
		lookback: DefaultLookback,
		smoothK:  DefaultSmoothK,
		smoothD:  DefaultSmoothD,
	}
}

// Oscillator fetches bars for the window and computes the oscillator.
func (s *BarSource) Oscillator(ctx context.Context, symbol string, start, end time.Time, interval domain.Interval) (Oscillator, error) {
	bars, err := s.bars.HistoricalBars(ctx, symbol, start, end, interval)
	if err != nil {
		return Oscillator{}, err
	}
	return Stochastic(bars, s.lookback, s.smoothK, s.smoothD), nil
}
