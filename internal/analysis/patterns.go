package analysis

import (
	"fatqt/internal/domain"
)

// DayPattern describes up/down behaviour for one weekday.
type DayPattern struct {
	Day           string  `json:"day"`
	UpDays        int     `json:"up_days"`
	DownDays      int     `json:"down_days"`
	NeutralDays   int     `json:"neutral_days"`
	TotalDays     int     `json:"total_days"`
	UpPercentage  float64 `json:"up_percentage"`
	DownPercentage float64 `json:"down_percentage"`
	AvgReturn     float64 `json:"avg_return"`
	AvgUpReturn   float64 `json:"avg_up_return"`
	AvgDownReturn float64 `json:"avg_down_return"`
	Tendency      string  `json:"tendency"`
}

// ReversalProb is the probability that a streak of the given length and
// direction is followed by an up day.
type ReversalProb struct {
	Streak     int     `json:"streak"`
	Direction  string  `json:"direction"`
	NextUpPct  float64 `json:"next_up_pct"`
	SampleSize int     `json:"sample_size"`
}

// PatternsReport covers weekday tendencies and streak behaviour.
type PatternsReport struct {
	ByDay              []DayPattern   `json:"by_day"`
	MaxConsecutiveUp   int            `json:"max_consecutive_up_days"`
	MaxConsecutiveDown int            `json:"max_consecutive_down_days"`
	Reversals          []ReversalProb `json:"reversal_probabilities"`
}

// Patterns computes the up-down pattern report over daily bars.
func Patterns(bars []domain.Bar) PatternsReport {
	rets := closeReturns(bars)

	// Weekday buckets.
	byDay := make([][]float64, 7)
	for i, r := range rets {
		d := mondayIndexed(int(bars[i+1].Timestamp.Weekday()))
		byDay[d] = append(byDay[d], r)
	}

	report := PatternsReport{}
	for d, g := range byDay {
		if len(g) == 0 {
			continue
		}
		p := DayPattern{Day: weekdayNames[d], TotalDays: len(g), AvgReturn: mean(g)}
		var ups, downs []float64
		for _, r := range g {
			switch {
			case r > 0:
				p.UpDays++
				ups = append(ups, r)
			case r < 0:
				p.DownDays++
				downs = append(downs, r)
			default:
				p.NeutralDays++
			}
		}
		p.UpPercentage = float64(p.UpDays) / float64(p.TotalDays) * 100
		p.DownPercentage = float64(p.DownDays) / float64(p.TotalDays) * 100
		p.AvgUpReturn = mean(ups)
		p.AvgDownReturn = mean(downs)
		switch {
		case p.UpDays > p.DownDays:
			p.Tendency = "Up"
		case p.DownDays > p.UpDays:
			p.Tendency = "Down"
		default:
			p.Tendency = "Neutral"
		}
		report.ByDay = append(report.ByDay, p)
	}

	// Streaks. Directions: +1, -1, 0.
	dirs := make([]int, len(rets))
	for i, r := range rets {
		switch {
		case r > 0:
			dirs[i] = 1
		case r < 0:
			dirs[i] = -1
		}
	}

	streak := 0
	for i, d := range dirs {
		if d == 0 {
			streak = 0
			continue
		}
		if i > 0 && dirs[i-1] == d {
			streak++
		} else {
			streak = 1
		}
		if d == 1 && streak > report.MaxConsecutiveUp {
			report.MaxConsecutiveUp = streak
		}
		if d == -1 && streak > report.MaxConsecutiveDown {
			report.MaxConsecutiveDown = streak
		}
	}

	for n := 1; n <= 5; n++ {
		report.Reversals = append(report.Reversals,
			streakFollowThrough(dirs, n, 1),
			streakFollowThrough(dirs, n, -1))
	}

	return report
}

// streakFollowThrough computes how often a run of exactly-or-more n days in
// direction dir is followed by an up day.
func streakFollowThrough(dirs []int, n, dir int) ReversalProb {
	label := "up"
	if dir == -1 {
		label = "down"
	}
	p := ReversalProb{Streak: n, Direction: label}

	var nextUp int
	for i := n; i < len(dirs); i++ {
		run := true
		for j := i - n; j < i; j++ {
			if dirs[j] != dir {
				run = false
				break
			}
		}
		if !run {
			continue
		}
		p.SampleSize++
		if dirs[i] == 1 {
			nextUp++
		}
	}
	if p.SampleSize > 0 {
		p.NextUpPct = float64(nextUp) / float64(p.SampleSize) * 100
	}
	return p
}
