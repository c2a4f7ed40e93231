package chart

import (
	"testing"
	"time"

	"fatqt/internal/domain"
)

var wib = time.FixedZone("WIB", 7*3600)

func TestResolveDefaults(t *testing.T) {
	p := NewPolicy(wib)
	now := time.Date(2025, 3, 12, 14, 30, 0, 0, wib)

	cases := []struct {
		period domain.Period
		want   domain.Interval
	}{
		{domain.Period1D, domain.Interval1Min},
		{domain.Period1W, domain.Interval5Min},
		{domain.Period1M, domain.Interval1Day},
		{domain.Period3M, domain.Interval1Day},
		{domain.Period6M, domain.Interval1Day},
		{domain.Period1Y, domain.Interval1Day},
		{domain.Period5Y, domain.Interval1Week},
		{domain.Period10Y, domain.Interval1Month},
		{domain.PeriodMax, domain.Interval1Month},
	}
	for _, c := range cases {
		res, err := p.Resolve(c.period, now)
		if err != nil {
			t.Fatalf("Resolve(%s): %v", c.period, err)
		}
		if res.Interval != c.want {
			t.Errorf("Resolve(%s) interval = %s, want %s", c.period, res.Interval, c.want)
		}
		if !res.End.After(res.Start) {
			t.Errorf("Resolve(%s) window inverted: %v .. %v", c.period, res.Start, res.End)
		}
	}
}

func TestResolveEndIsTomorrow(t *testing.T) {
	p := NewPolicy(wib)
	now := time.Date(2025, 3, 12, 23, 59, 0, 0, wib)

	res, err := p.Resolve(domain.Period1M, now)
	if err != nil {
		t.Fatal(err)
	}
	want := time.Date(2025, 3, 13, 0, 0, 0, 0, wib)
	if !res.End.Equal(want) {
		t.Errorf("end = %v, want %v", res.End, want)
	}
}

func TestResolveHonoursCeilings(t *testing.T) {
	p := NewPolicy(wib)
	now := time.Date(2025, 3, 12, 10, 0, 0, 0, wib)

	for _, period := range domain.Periods {
		res, err := p.Resolve(period, now)
		if err != nil {
			t.Fatalf("Resolve(%s): %v", period, err)
		}
		ceiling, bounded := lookbackCeilingDays[res.Interval]
		if !bounded {
			continue
		}
		if res.End.After(res.Start.AddDate(0, 0, ceiling)) {
			t.Errorf("Resolve(%s): span %v..%v exceeds %d-day ceiling for %s",
				period, res.Start, res.End, ceiling, res.Interval)
		}
	}
}

func TestResolveUnknownPeriod(t *testing.T) {
	p := NewPolicy(wib)
	if _, err := p.Resolve(domain.Period("2W"), time.Now()); err == nil {
		t.Error("expected error for unknown period")
	}
}

func TestResolveOverrideClampsStart(t *testing.T) {
	p := NewPolicy(wib)
	now := time.Date(2025, 3, 12, 10, 0, 0, 0, wib)

	// A year of 1m data cannot exist upstream; the window must shrink to the
	// 7-day ceiling instead of the interval being promoted.
	res, err := p.ResolveOverride(domain.Period1Y, domain.Interval1Min, now)
	if err != nil {
		t.Fatal(err)
	}
	if res.Interval != domain.Interval1Min {
		t.Errorf("interval = %s, want 1m", res.Interval)
	}
	wantStart := res.End.AddDate(0, 0, -7)
	if !res.Start.Equal(wantStart) {
		t.Errorf("start = %v, want %v", res.Start, wantStart)
	}
}

func TestResolveOverrideUnbounded(t *testing.T) {
	p := NewPolicy(wib)
	now := time.Date(2025, 3, 12, 10, 0, 0, 0, wib)

	res, err := p.ResolveOverride(domain.Period1Y, domain.Interval1Day, now)
	if err != nil {
		t.Fatal(err)
	}
	wantStart := time.Date(2024, 3, 12, 0, 0, 0, 0, wib)
	if !res.Start.Equal(wantStart) {
		t.Errorf("start = %v, want %v", res.Start, wantStart)
	}
}

func TestResolveOverrideRejectsBadInterval(t *testing.T) {
	p := NewPolicy(wib)
	if _, err := p.ResolveOverride(domain.Period1M, domain.Interval("3m"), time.Now()); err == nil {
		t.Error("expected error for unknown interval")
	}
}
