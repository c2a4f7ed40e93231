// Package analysis computes statistical reports over historical bars:
// seasonal tendencies, up-down day patterns, volatility metrics, and
// intraday behaviour. All results are JSON-safe; buckets without data
// report zeros rather than NaN.
package analysis

import (
	"math"
	"sort"

	"fatqt/internal/domain"
)

// closeReturns computes per-bar percentage returns. Element i is the return
// of bars[i+1] relative to bars[i]; the slice is one shorter than bars.
func closeReturns(bars []domain.Bar) []float64 {
	if len(bars) < 2 {
		return nil
	}
	out := make([]float64, len(bars)-1)
	for i := 1; i < len(bars); i++ {
		prev := bars[i-1].Close
		if prev == 0 {
			out[i-1] = 0
			continue
		}
		out[i-1] = (bars[i].Close - prev) / prev
	}
	return out
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stddev returns the sample standard deviation, zero for fewer than two
// values.
func stddev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	var sum float64
	for _, v := range values {
		d := v - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)-1))
}

// quantile returns the q-th quantile (0..1) with linear interpolation.
func quantile(values []float64, q float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// rollingStd computes the sample standard deviation over each full window.
// The result has len(values)-window+1 elements.
func rollingStd(values []float64, window int) []float64 {
	if window < 2 || len(values) < window {
		return nil
	}
	out := make([]float64, 0, len(values)-window+1)
	for i := window; i <= len(values); i++ {
		out = append(out, stddev(values[i-window:i]))
	}
	return out
}

func maxFloat(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func minFloat(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func winRate(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var wins int
	for _, v := range values {
		if v > 0 {
			wins++
		}
	}
	return float64(wins) / float64(len(values)) * 100
}

// weekdayNames indexes Monday=0 through Sunday=6.
var weekdayNames = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// mondayIndexed converts Go's Sunday-first weekday to a Monday=0 index.
func mondayIndexed(d int) int {
	return (d + 6) % 7
}
