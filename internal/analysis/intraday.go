package analysis

import (
	"fmt"
	"sort"

	"fatqt/internal/domain"
)

// HourStats summarizes returns observed within one hour of the day.
type HourStats struct {
	Hour      int     `json:"hour"`
	Count     int     `json:"count"`
	AvgReturn float64 `json:"avg_return"`
	StdReturn float64 `json:"std_return"`
	WinRate   float64 `json:"win_rate"`
	AvgVolume float64 `json:"avg_volume"`
}

// PeriodBlock summarizes a multi-hour block of the day.
type PeriodBlock struct {
	Label     string  `json:"label"`
	Count     int     `json:"count"`
	AvgReturn float64 `json:"avg_return"`
	WinRate   float64 `json:"win_rate"`
}

// SessionStats covers the opening or closing hours of the trading day.
type SessionStats struct {
	AvgReturn float64 `json:"avg_return"`
	StdReturn float64 `json:"std_return"`
	AvgVolume float64 `json:"avg_volume"`
	WinRate   float64 `json:"win_rate"`
}

// IntradayReport bundles hour-of-day behaviour computed from intraday bars.
type IntradayReport struct {
	Hourly          []HourStats                `json:"hourly"`
	MostActiveHours []int                      `json:"most_active_hours"`
	BestHours       []int                      `json:"best_performing_hours"`
	WorstHours      []int                      `json:"worst_performing_hours"`
	Blocks6h        []PeriodBlock              `json:"period_6h"`
	Blocks12h       []PeriodBlock              `json:"period_12h"`
	Heatmap         map[string]map[int]float64 `json:"day_hour_heatmap"`
	Opening         SessionStats               `json:"opening_hours"`
	Closing         SessionStats               `json:"closing_hours"`
}

// heatmapDays indexes Monday=0 with the short names used as heatmap keys.
var heatmapDays = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// Intraday computes the intraday report. Bars should be hourly or finer;
// daily bars all land in a single hour bucket and produce a degenerate
// but valid report.
func Intraday(bars []domain.Bar) IntradayReport {
	rets := closeReturns(bars)

	type sample struct {
		ret    float64
		volume float64
		hour   int
		day    int // Monday=0
	}
	samples := make([]sample, len(rets))
	for i := range rets {
		b := bars[i+1]
		samples[i] = sample{
			ret:    rets[i],
			volume: float64(b.Volume),
			hour:   b.Timestamp.Hour(),
			day:    mondayIndexed(int(b.Timestamp.Weekday())),
		}
	}

	report := IntradayReport{Heatmap: map[string]map[int]float64{}}

	// Hourly buckets.
	byHour := make([][]sample, 24)
	for _, s := range samples {
		byHour[s.hour] = append(byHour[s.hour], s)
	}
	var ranks []hourRank
	for h, g := range byHour {
		if len(g) == 0 {
			continue
		}
		rets := make([]float64, len(g))
		vols := make([]float64, len(g))
		for i, s := range g {
			rets[i] = s.ret
			vols[i] = s.volume
		}
		report.Hourly = append(report.Hourly, HourStats{
			Hour:      h,
			Count:     len(g),
			AvgReturn: mean(rets),
			StdReturn: stddev(rets),
			WinRate:   winRate(rets),
			AvgVolume: mean(vols),
		})
		ranks = append(ranks, hourRank{hour: h, avgReturn: mean(rets), avgVolume: mean(vols)})
	}

	report.MostActiveHours = topHours(ranks, 5, func(a, b hourRank) bool { return a.avgVolume > b.avgVolume })
	report.BestHours = topHours(ranks, 5, func(a, b hourRank) bool { return a.avgReturn > b.avgReturn })
	report.WorstHours = topHours(ranks, 5, func(a, b hourRank) bool { return a.avgReturn < b.avgReturn })

	// Period blocks.
	blocks := func(hours int) []PeriodBlock {
		groups := make([][]float64, 24/hours)
		for _, s := range samples {
			groups[s.hour/hours] = append(groups[s.hour/hours], s.ret)
		}
		var out []PeriodBlock
		for i, g := range groups {
			if len(g) == 0 {
				continue
			}
			start := i * hours
			out = append(out, PeriodBlock{
				Label:     fmt.Sprintf("%02d:00-%02d:59", start, start+hours-1),
				Count:     len(g),
				AvgReturn: mean(g),
				WinRate:   winRate(g),
			})
		}
		return out
	}
	report.Blocks6h = blocks(6)
	report.Blocks12h = blocks(12)

	// Day-hour heatmap of average returns.
	cells := map[[2]int][]float64{}
	for _, s := range samples {
		k := [2]int{s.day, s.hour}
		cells[k] = append(cells[k], s.ret)
	}
	for k, g := range cells {
		day := heatmapDays[k[0]]
		if report.Heatmap[day] == nil {
			report.Heatmap[day] = map[int]float64{}
		}
		report.Heatmap[day][k[1]] = mean(g)
	}

	// Opening (09:00-10:59) and closing (15:00-16:59) sessions.
	session := func(hours ...int) SessionStats {
		var rets, vols []float64
		for _, s := range samples {
			for _, h := range hours {
				if s.hour == h {
					rets = append(rets, s.ret)
					vols = append(vols, s.volume)
				}
			}
		}
		return SessionStats{
			AvgReturn: mean(rets),
			StdReturn: stddev(rets),
			AvgVolume: mean(vols),
			WinRate:   winRate(rets),
		}
	}
	report.Opening = session(9, 10)
	report.Closing = session(15, 16)

	return report
}

type hourRank struct {
	hour      int
	avgReturn float64
	avgVolume float64
}

func topHours(ranks []hourRank, n int, less func(a, b hourRank) bool) []int {
	sorted := make([]hourRank, len(ranks))
	copy(sorted, ranks)
	sort.SliceStable(sorted, func(i, j int) bool { return less(sorted[i], sorted[j]) })
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	out := make([]int, len(sorted))
	for i, r := range sorted {
		out[i] = r.hour
	}
	return out
}
