// Package indicator computes the stochastic oscillator overlay for the
// price chart and aligns it against the displayed bars.
package indicator

import (
	"fatqt/internal/domain"
)

// Default stochastic parameters: a 14-bar lookback with 3-bar smoothing for
// %K and a 3-bar signal line.
const (
	DefaultLookback = 14
	DefaultSmoothK  = 3
	DefaultSmoothD  = 3
)

// Oscillator holds the %K (fast) and %D (signal) series. D is a smoothed
// transform of K and therefore shorter; both are ordered oldest-first and
// right-aligned to the bars they were computed from.
type Oscillator struct {
	K []float64 `json:"k"`
	D []float64 `json:"d"`
}

// MinSamples returns the number of bars needed before the oscillator
// produces a single %D value for the given parameters.
func MinSamples(lookback, smoothK, smoothD int) int {
	return lookback + smoothK + smoothD - 2
}

// Stochastic computes the slow stochastic oscillator over the bars.
// Returns empty series when there is not enough data.
func Stochastic(bars []domain.Bar, lookback, smoothK, smoothD int) Oscillator {
	if len(bars) < lookback {
		return Oscillator{}
	}

	// Raw %K: position of the close within the lookback high-low range.
	raw := make([]float64, 0, len(bars)-lookback+1)
	for i := lookback - 1; i < len(bars); i++ {
		hi, lo := bars[i].High, bars[i].Low
		for j := i - lookback + 1; j < i; j++ {
			if bars[j].High > hi {
				hi = bars[j].High
			}
			if bars[j].Low < lo {
				lo = bars[j].Low
			}
		}
		if hi == lo {
			// Flat range; by convention the close sits mid-band.
			raw = append(raw, 50)
			continue
		}
		raw = append(raw, 100*(bars[i].Close-lo)/(hi-lo))
	}

	k := sma(raw, smoothK)
	d := sma(k, smoothD)
	return Oscillator{K: k, D: d}
}

// sma returns the simple moving average of values with the given window.
// The result is len(values)-window+1 long; an oversized window yields nil.
func sma(values []float64, window int) []float64 {
	if window <= 1 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	if len(values) < window {
		return nil
	}

	out := make([]float64, 0, len(values)-window+1)
	var sum float64
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		if i >= window-1 {
			out = append(out, sum/float64(window))
		}
	}
	return out
}
