package analysis

import (
	"math"

	"fatqt/internal/domain"
)

// tradingDaysPerYear annualizes daily volatility.
const tradingDaysPerYear = 252

// WindowStd summarizes a rolling standard deviation over one window size.
type WindowStd struct {
	WindowDays int     `json:"window_days"`
	Current    float64 `json:"current"`
	Mean       float64 `json:"mean"`
	Max        float64 `json:"max"`
	Min        float64 `json:"min"`
}

// HVStats is annualized historical volatility over one window size.
type HVStats struct {
	WindowDays   int     `json:"window_days"`
	Current      float64 `json:"current"`
	Mean         float64 `json:"mean"`
	Max          float64 `json:"max"`
	Min          float64 `json:"min"`
	Percentile25 float64 `json:"percentile_25"`
	Percentile75 float64 `json:"percentile_75"`
}

// RangeStats summarizes daily high-low ranges.
type RangeStats struct {
	AvgRange        float64 `json:"avg_range"`
	AvgRangePct     float64 `json:"avg_range_pct"`
	MaxRange        float64 `json:"max_range"`
	MinRange        float64 `json:"min_range"`
	CurrentRange    float64 `json:"current_range"`
	CurrentRangePct float64 `json:"current_range_pct"`
	StdRange        float64 `json:"std_range"`
}

// ATRStats is the average true range summary.
type ATRStats struct {
	Period  int     `json:"period"`
	Current float64 `json:"current_atr"`
	Avg     float64 `json:"avg_atr"`
	Max     float64 `json:"max_atr"`
	Min     float64 `json:"min_atr"`
	Pct     float64 `json:"atr_pct"`
}

// BollingerStats is the current Bollinger band state.
type BollingerStats struct {
	Period       int     `json:"period"`
	StdDev       float64 `json:"std_dev"`
	Upper        float64 `json:"upper_band"`
	Middle       float64 `json:"middle_band"`
	Lower        float64 `json:"lower_band"`
	CurrentPrice float64 `json:"current_price"`
	BandWidth    float64 `json:"band_width"`
	Position     float64 `json:"bb_position"`
}

// RegimeStats classifies the current volatility regime.
type RegimeStats struct {
	Current    float64 `json:"current_volatility"`
	Percentile float64 `json:"volatility_percentile"`
	Regime     string  `json:"regime"`
	Avg        float64 `json:"avg_volatility"`
	Max        float64 `json:"max_volatility"`
	Min        float64 `json:"min_volatility"`
}

// VolatilityReport bundles all volatility metrics.
type VolatilityReport struct {
	StdReturns []WindowStd     `json:"std_returns"`
	StdVolume  []WindowStd     `json:"std_volume"`
	Historical []HVStats       `json:"historical_volatility"`
	Range      RangeStats      `json:"intraday_range"`
	ATR        ATRStats        `json:"atr"`
	Bollinger  BollingerStats  `json:"bollinger_bands"`
	Regime     RegimeStats     `json:"volatility_regime"`
}

var (
	stdWindows = []int{5, 10, 20, 30, 60}
	hvWindows  = []int{10, 20, 30, 60}
)

// Volatility computes the volatility report over daily bars.
func Volatility(bars []domain.Bar) VolatilityReport {
	rets := closeReturns(bars)
	vols := make([]float64, len(bars))
	for i, b := range bars {
		vols[i] = float64(b.Volume)
	}

	report := VolatilityReport{}

	for _, w := range stdWindows {
		report.StdReturns = append(report.StdReturns, windowStd(rets, w))
		report.StdVolume = append(report.StdVolume, windowStd(vols, w))
	}

	for _, w := range hvWindows {
		rolling := rollingStd(rets, w)
		annualized := make([]float64, len(rolling))
		for i, v := range rolling {
			annualized[i] = v * math.Sqrt(tradingDaysPerYear)
		}
		hv := HVStats{WindowDays: w}
		if len(annualized) > 0 {
			hv.Current = annualized[len(annualized)-1]
			hv.Mean = mean(annualized)
			hv.Max = maxFloat(annualized)
			hv.Min = minFloat(annualized)
			hv.Percentile25 = quantile(annualized, 0.25)
			hv.Percentile75 = quantile(annualized, 0.75)
		}
		report.Historical = append(report.Historical, hv)
	}

	report.Range = rangeStats(bars)
	report.ATR = atr(bars, 14)
	report.Bollinger = bollinger(bars, 20, 2)
	report.Regime = regime(rets)

	return report
}

func windowStd(values []float64, w int) WindowStd {
	out := WindowStd{WindowDays: w}
	if len(values) >= w {
		out.Current = stddev(values[len(values)-w:])
	}
	rolling := rollingStd(values, w)
	if len(rolling) > 0 {
		out.Mean = mean(rolling)
		out.Max = maxFloat(rolling)
		out.Min = minFloat(rolling)
	}
	return out
}

func rangeStats(bars []domain.Bar) RangeStats {
	if len(bars) == 0 {
		return RangeStats{}
	}
	ranges := make([]float64, len(bars))
	pcts := make([]float64, len(bars))
	for i, b := range bars {
		ranges[i] = b.High - b.Low
		if b.Close != 0 {
			pcts[i] = ranges[i] / b.Close * 100
		}
	}
	return RangeStats{
		AvgRange:        mean(ranges),
		AvgRangePct:     mean(pcts),
		MaxRange:        maxFloat(ranges),
		MinRange:        minFloat(ranges),
		CurrentRange:    ranges[len(ranges)-1],
		CurrentRangePct: pcts[len(pcts)-1],
		StdRange:        stddev(ranges),
	}
}

func atr(bars []domain.Bar, period int) ATRStats {
	out := ATRStats{Period: period}
	if len(bars) < 2 {
		return out
	}

	// True range folds overnight gaps into the bar's high-low span.
	trs := make([]float64, len(bars)-1)
	for i := 1; i < len(bars); i++ {
		hl := bars[i].High - bars[i].Low
		hpc := math.Abs(bars[i].High - bars[i-1].Close)
		lpc := math.Abs(bars[i].Low - bars[i-1].Close)
		trs[i-1] = math.Max(hl, math.Max(hpc, lpc))
	}

	var series []float64
	for i := period; i <= len(trs); i++ {
		series = append(series, mean(trs[i-period:i]))
	}
	if len(series) == 0 {
		return out
	}
	out.Current = series[len(series)-1]
	out.Avg = mean(series)
	out.Max = maxFloat(series)
	out.Min = minFloat(series)
	if last := bars[len(bars)-1].Close; last != 0 {
		out.Pct = out.Current / last * 100
	}
	return out
}

func bollinger(bars []domain.Bar, period int, k float64) BollingerStats {
	out := BollingerStats{Period: period, StdDev: k}
	if len(bars) < period {
		return out
	}

	window := make([]float64, period)
	for i, b := range bars[len(bars)-period:] {
		window[i] = b.Close
	}
	mid := mean(window)
	sd := stddev(window)

	out.Middle = mid
	out.Upper = mid + k*sd
	out.Lower = mid - k*sd
	out.CurrentPrice = bars[len(bars)-1].Close
	out.BandWidth = out.Upper - out.Lower
	if out.BandWidth != 0 {
		out.Position = (out.CurrentPrice - out.Lower) / out.BandWidth * 100
	} else {
		out.Position = 50
	}
	return out
}

func regime(rets []float64) RegimeStats {
	rolling := rollingStd(rets, 30)
	out := RegimeStats{Regime: "Normal"}
	if len(rolling) == 0 {
		return out
	}
	annualized := make([]float64, len(rolling))
	for i, v := range rolling {
		annualized[i] = v * math.Sqrt(tradingDaysPerYear)
	}

	current := annualized[len(annualized)-1]
	var below int
	for _, v := range annualized {
		if v < current {
			below++
		}
	}
	pct := float64(below) / float64(len(annualized)) * 100

	out.Current = current
	out.Percentile = pct
	out.Avg = mean(annualized)
	out.Max = maxFloat(annualized)
	out.Min = minFloat(annualized)
	switch {
	case pct < 25:
		out.Regime = "Low"
	case pct > 75:
		out.Regime = "High"
	}
	return out
}
