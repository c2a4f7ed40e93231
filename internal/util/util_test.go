package util

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetryRecoversFromTransientErrors(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 5, 0, func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Retry: %v", err)
	}
	if calls != 3 {
		t.Errorf("fn called %d times, want 3", calls)
	}
}

func TestRetryReturnsLastError(t *testing.T) {
	calls := 0
	last := errors.New("still down")
	err := Retry(context.Background(), 3, 0, func() error {
		calls++
		if calls < 3 {
			return errors.New("earlier failure")
		}
		return last
	})
	if !errors.Is(err, last) {
		t.Fatalf("err = %v, want the final attempt's error", err)
	}
	if calls != 3 {
		t.Errorf("fn called %d times, want 3", calls)
	}
}

func TestRetryAbortsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := Retry(ctx, 5, time.Hour, func() error {
		calls++
		return errors.New("down")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if calls != 1 {
		t.Errorf("fn called %d times, want 1 (no retry after cancel)", calls)
	}
}

func TestRateLimiterBurstThenThrottle(t *testing.T) {
	rl := NewRateLimiter(60) // 1/sec refill, burst of 5

	// The initial burst goes through without blocking.
	for i := 0; i < 5; i++ {
		if err := rl.Wait(context.Background()); err != nil {
			t.Fatalf("burst Wait %d: %v", i, err)
		}
	}

	// Bucket drained: a cancelled context surfaces instead of sleeping.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := rl.Wait(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled once throttled", err)
	}
}

func TestRateLimiterLowBudgetBurst(t *testing.T) {
	// Budgets below the burst size cap the bucket at the budget itself.
	rl := NewRateLimiter(2)
	for i := 0; i < 2; i++ {
		if err := rl.Wait(context.Background()); err != nil {
			t.Fatalf("Wait %d: %v", i, err)
		}
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := rl.Wait(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled after budget spent", err)
	}
}

func TestTradingCalendarSessions(t *testing.T) {
	wib := time.FixedZone("WIB", 7*3600)
	cal := NewTradingCalendar(wib)

	cases := []struct {
		name string
		t    time.Time
		open bool
	}{
		// 2025-03-10 is a Monday.
		{"monday morning session", time.Date(2025, 3, 10, 10, 0, 0, 0, wib), true},
		{"monday lunch break", time.Date(2025, 3, 10, 12, 45, 0, 0, wib), false},
		{"monday afternoon session", time.Date(2025, 3, 10, 14, 0, 0, 0, wib), true},
		{"monday after close", time.Date(2025, 3, 10, 16, 30, 0, 0, wib), false},
		{"monday session close boundary", time.Date(2025, 3, 10, 16, 15, 0, 0, wib), true},
		// 2025-03-14 is a Friday: session 1 ends 11:30, session 2 opens 14:00.
		{"friday late morning closed", time.Date(2025, 3, 14, 11, 45, 0, 0, wib), false},
		{"friday early afternoon closed", time.Date(2025, 3, 14, 13, 30, 0, 0, wib), false},
		{"friday afternoon session", time.Date(2025, 3, 14, 14, 30, 0, 0, wib), true},
		// Weekend.
		{"saturday", time.Date(2025, 3, 15, 10, 0, 0, 0, wib), false},
		{"sunday", time.Date(2025, 3, 16, 10, 0, 0, 0, wib), false},
	}

	for _, c := range cases {
		if got := cal.IsMarketOpen(c.t); got != c.open {
			t.Errorf("%s: IsMarketOpen = %v, want %v", c.name, got, c.open)
		}
	}
}

func TestTradingCalendarNextOpen(t *testing.T) {
	wib := time.FixedZone("WIB", 7*3600)
	cal := NewTradingCalendar(wib)

	// Saturday → next open Monday 09:00.
	sat := time.Date(2025, 3, 15, 10, 0, 0, 0, wib)
	next := cal.NextOpen(sat)
	want := time.Date(2025, 3, 17, 9, 0, 0, 0, wib)
	if !next.Equal(want) {
		t.Errorf("NextOpen(saturday) = %v, want %v", next, want)
	}

	// Monday lunch break → next open is the afternoon session.
	lunch := time.Date(2025, 3, 10, 12, 30, 0, 0, wib)
	next = cal.NextOpen(lunch)
	want = time.Date(2025, 3, 10, 13, 30, 0, 0, wib)
	if !next.Equal(want) {
		t.Errorf("NextOpen(lunch) = %v, want %v", next, want)
	}
}

func TestIsIDXSymbol(t *testing.T) {
	cases := []struct {
		symbol string
		idx    bool
	}{
		{"BBCA.JK", true},
		{"^JKSE", true},
		{"AAPL", false},
		{"GOTO.JK", true},
		{"^GSPC", false},
	}
	for _, c := range cases {
		if got := IsIDXSymbol(c.symbol); got != c.idx {
			t.Errorf("IsIDXSymbol(%q) = %v, want %v", c.symbol, got, c.idx)
		}
	}
}
