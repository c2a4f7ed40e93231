package chart

import (
	"testing"
	"time"

	"fatqt/internal/domain"
)

func intradayBar(day, hour, min int, loc *time.Location) domain.Bar {
	return domain.Bar{
		Symbol:    "ANTM.JK",
		Timestamp: time.Date(2025, 3, day, hour, min, 0, 0, loc),
		Open:      100, High: 101, Low: 99, Close: 100,
	}
}

func TestLastSessionOnly(t *testing.T) {
	bars := []domain.Bar{
		intradayBar(10, 9, 0, wib),
		intradayBar(10, 15, 55, wib),
		intradayBar(11, 9, 0, wib),
		intradayBar(12, 9, 0, wib),
		intradayBar(12, 9, 1, wib),
		intradayBar(12, 16, 0, wib),
	}

	got := LastSessionOnly(bars, wib)
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	for i, b := range got {
		if b.Timestamp.In(wib).Day() != 12 {
			t.Errorf("bar %d dated %v, want March 12", i, b.Timestamp)
		}
	}
}

func TestLastSessionOnlySingleDay(t *testing.T) {
	bars := []domain.Bar{
		intradayBar(12, 9, 0, wib),
		intradayBar(12, 10, 0, wib),
	}
	if got := LastSessionOnly(bars, wib); len(got) != 2 {
		t.Errorf("len = %d, want all 2 bars", len(got))
	}
}

func TestLastSessionOnlyEmpty(t *testing.T) {
	if got := LastSessionOnly(nil, wib); got != nil {
		t.Errorf("want nil for empty input, got %v", got)
	}
}

func TestLastSessionOnlyCopies(t *testing.T) {
	bars := []domain.Bar{
		intradayBar(11, 9, 0, wib),
		intradayBar(12, 9, 0, wib),
	}
	got := LastSessionOnly(bars, wib)
	got[0].Close = 999
	if bars[1].Close == 999 {
		t.Error("filter must not alias the input slice")
	}
}
