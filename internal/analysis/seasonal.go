package analysis

import (
	"time"

	"fatqt/internal/domain"
)

// BucketStats summarizes returns falling into one calendar bucket.
type BucketStats struct {
	Label     string  `json:"label"`
	Count     int     `json:"count"`
	AvgReturn float64 `json:"avg_return"`
	StdReturn float64 `json:"std_return"`
	WinRate   float64 `json:"win_rate"`
	AvgVolume float64 `json:"avg_volume"`
}

// Extreme names the best or worst bucket of a grouping.
type Extreme struct {
	Label     string  `json:"label"`
	AvgReturn float64 `json:"avg_return"`
}

// SeasonalReport groups historical returns by month, weekday, quarter, and
// year.
type SeasonalReport struct {
	Monthly      []BucketStats `json:"monthly"`
	BestMonth    Extreme       `json:"best_month"`
	WorstMonth   Extreme       `json:"worst_month"`
	Weekly       []BucketStats `json:"weekly"`
	BestDay      Extreme       `json:"best_day"`
	WorstDay     Extreme       `json:"worst_day"`
	Quarterly    []BucketStats `json:"quarterly"`
	BestQuarter  Extreme       `json:"best_quarter"`
	WorstQuarter Extreme       `json:"worst_quarter"`

	AnnualReturns   map[int]float64 `json:"annual_returns"`
	AvgAnnualReturn float64         `json:"avg_annual_return"`
	TotalYears      int             `json:"total_years"`
}

// Seasonal computes the seasonal report over daily bars. Locations matter:
// calendar buckets use the bar timestamps as recorded.
func Seasonal(bars []domain.Bar) SeasonalReport {
	rets := closeReturns(bars)

	type sample struct {
		ret    float64
		volume float64
		at     time.Time
	}
	samples := make([]sample, len(rets))
	for i := range rets {
		b := bars[i+1]
		samples[i] = sample{ret: rets[i], volume: float64(b.Volume), at: b.Timestamp}
	}

	bucketize := func(n int, key func(time.Time) int, label func(int) string) ([]BucketStats, Extreme, Extreme) {
		groups := make([][]sample, n)
		for _, s := range samples {
			k := key(s.at)
			groups[k] = append(groups[k], s)
		}

		var out []BucketStats
		best := Extreme{AvgReturn: 0}
		worst := Extreme{AvgReturn: 0}
		for k, g := range groups {
			if len(g) == 0 {
				continue
			}
			rets := make([]float64, len(g))
			vols := make([]float64, len(g))
			for i, s := range g {
				rets[i] = s.ret
				vols[i] = s.volume
			}
			b := BucketStats{
				Label:     label(k),
				Count:     len(g),
				AvgReturn: mean(rets),
				StdReturn: stddev(rets),
				WinRate:   winRate(rets),
				AvgVolume: mean(vols),
			}
			out = append(out, b)
			if best.Label == "" || b.AvgReturn > best.AvgReturn {
				best = Extreme{Label: b.Label, AvgReturn: b.AvgReturn}
			}
			if worst.Label == "" || b.AvgReturn < worst.AvgReturn {
				worst = Extreme{Label: b.Label, AvgReturn: b.AvgReturn}
			}
		}
		return out, best, worst
	}

	report := SeasonalReport{AnnualReturns: map[int]float64{}}

	report.Monthly, report.BestMonth, report.WorstMonth = bucketize(12,
		func(t time.Time) int { return int(t.Month()) - 1 },
		func(k int) string { return time.Month(k + 1).String() })

	report.Weekly, report.BestDay, report.WorstDay = bucketize(7,
		func(t time.Time) int { return mondayIndexed(int(t.Weekday())) },
		func(k int) string { return weekdayNames[k] })

	report.Quarterly, report.BestQuarter, report.WorstQuarter = bucketize(4,
		func(t time.Time) int { return (int(t.Month()) - 1) / 3 },
		func(k int) string { return [4]string{"Q1", "Q2", "Q3", "Q4"}[k] })

	// Annual returns: first close to last close per calendar year.
	type span struct{ first, last float64 }
	years := map[int]*span{}
	for _, b := range bars {
		y := b.Timestamp.Year()
		if s, ok := years[y]; ok {
			s.last = b.Close
		} else {
			years[y] = &span{first: b.Close, last: b.Close}
		}
	}
	var total float64
	for y, s := range years {
		if s.first == 0 {
			continue
		}
		r := (s.last - s.first) / s.first * 100
		report.AnnualReturns[y] = r
		total += r
	}
	report.TotalYears = len(report.AnnualReturns)
	if report.TotalYears > 0 {
		report.AvgAnnualReturn = total / float64(report.TotalYears)
	}

	return report
}
