package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"fatqt/internal/catalog"
	"fatqt/internal/chart"
	"fatqt/internal/domain"
	"fatqt/internal/indicator"
	"fatqt/internal/marketdata"
	"fatqt/internal/util"
)

var wib = time.FixedZone("WIB", 7*3600)

type fakeProvider struct {
	quote domain.Quote
	err   error
}

func (f *fakeProvider) HistoricalBars(_ context.Context, symbol string, start, end time.Time, iv domain.Interval) ([]domain.Bar, error) {
	if f.err != nil {
		return nil, f.err
	}

	step := 24 * time.Hour
	if iv.Intraday() {
		step = time.Hour
	}

	var bars []domain.Bar
	price := 100.0
	for t := start; t.Before(end); t = t.Add(step) {
		price += 0.5
		bars = append(bars, domain.Bar{
			Symbol:    symbol,
			Timestamp: t,
			Open:      price - 0.25,
			High:      price + 0.5,
			Low:       price - 0.5,
			Close:     price,
			Volume:    1000,
		})
	}
	return bars, nil
}

func (f *fakeProvider) Quote(context.Context, string) (domain.Quote, error) {
	if f.err != nil {
		return domain.Quote{}, f.err
	}
	return f.quote, nil
}

func newTestServer(t *testing.T, p *fakeProvider) *httptest.Server {
	t.Helper()

	cat, err := catalog.Open(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { cat.Close() })

	cal := util.NewTradingCalendar(wib)
	stream := marketdata.NewStreamer(p, cal, 10*time.Millisecond, 50*time.Millisecond)
	srv := NewServer(
		cat,
		p,
		p,
		stream,
		chart.NewPolicy(wib),
		indicator.NewAdapter(indicator.NewBarSource(p)),
		cal,
		10*time.Millisecond,
		50*time.Millisecond,
	)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func getJSON(t *testing.T, url string, out any) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatal(err)
		}
	}
	return resp
}

func TestRootEndpoint(t *testing.T) {
	ts := newTestServer(t, &fakeProvider{})

	var root RootResponse
	resp := getJSON(t, ts.URL+"/", &root)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if root.Name == "" || len(root.Endpoints) == 0 {
		t.Errorf("root = %+v", root)
	}
}

func TestTickersEndpoint(t *testing.T) {
	ts := newTestServer(t, &fakeProvider{})

	var got TickersResponse
	getJSON(t, ts.URL+"/api/tickers", &got)

	if got.Total == 0 || got.Total != len(got.Tickers) {
		t.Fatalf("total = %d, tickers = %d", got.Total, len(got.Tickers))
	}
	if got.Tickers[0].Symbol != "^JKSE" {
		t.Errorf("first ticker = %s, want ^JKSE", got.Tickers[0].Symbol)
	}
}

func TestRealtimeEndpoint(t *testing.T) {
	p := &fakeProvider{quote: domain.Quote{
		Symbol:        "BBCA.JK",
		Price:         9750,
		Change:        100,
		ChangePercent: 1.04,
		PreviousClose: 9650,
		Volume:        52_000_000,
		Timestamp:     time.Now(),
	}}
	ts := newTestServer(t, p)

	var got QuoteJSON
	resp := getJSON(t, ts.URL+"/api/realtime/BBCA.JK", &got)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if got.Price != 9750 || got.Ticker != "BBCA.JK" {
		t.Errorf("quote = %+v", got)
	}
}

func TestRealtimeEndpointNoQuote(t *testing.T) {
	ts := newTestServer(t, &fakeProvider{}) // zero price

	resp := getJSON(t, ts.URL+"/api/realtime/NOPE.JK", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestHistoricalEndpoint(t *testing.T) {
	ts := newTestServer(t, &fakeProvider{})

	body, _ := json.Marshal(HistoricalRequest{
		Ticker:    "BBCA.JK",
		StartDate: "2025-01-01",
		EndDate:   "2025-01-10",
		Interval:  "1d",
	})
	resp, err := http.Post(ts.URL+"/api/historical", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var got HistoricalResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if len(got.Data) == 0 {
		t.Fatal("no bars returned")
	}
	if got.Interval != "1d" || got.Ticker != "BBCA.JK" {
		t.Errorf("echo fields = %+v", got)
	}
}

func TestHistoricalEndpointRejectsBadInterval(t *testing.T) {
	ts := newTestServer(t, &fakeProvider{})

	body, _ := json.Marshal(HistoricalRequest{
		Ticker:    "BBCA.JK",
		StartDate: "2025-01-01",
		EndDate:   "2025-01-10",
		Interval:  "3m",
	})
	resp, err := http.Post(ts.URL+"/api/historical", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestChartEndpoint(t *testing.T) {
	p := &fakeProvider{quote: domain.Quote{Symbol: "BBCA.JK", Price: 9999, Timestamp: time.Now()}}
	ts := newTestServer(t, p)

	var got ChartResponse
	resp := getJSON(t, ts.URL+"/api/chart/BBCA.JK?period=1M", &got)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if got.Interval != "1d" {
		t.Errorf("interval = %s, want 1d for 1M", got.Interval)
	}
	if len(got.Bars) == 0 {
		t.Fatal("no bars")
	}
	// The live quote must be folded into the tail.
	if tail := got.Bars[len(got.Bars)-1]; tail.Close != 9999 {
		t.Errorf("tail close = %v, want merged quote 9999", tail.Close)
	}
	if got.Indicator != nil {
		t.Error("indicator present without being requested")
	}
}

func TestChartEndpointWithIndicator(t *testing.T) {
	ts := newTestServer(t, &fakeProvider{})

	var got ChartResponse
	getJSON(t, ts.URL+"/api/chart/BBCA.JK?period=3M&indicator=stochastic", &got)

	if got.Indicator == nil {
		t.Fatal("indicator overlay missing")
	}
	if len(got.Indicator.K) != len(got.Bars) || len(got.Indicator.D) != len(got.Bars) {
		t.Errorf("overlay lengths K=%d D=%d, want %d", len(got.Indicator.K), len(got.Indicator.D), len(got.Bars))
	}
	// Tail values must be present; the left edge is null-padded.
	if got.Indicator.K[len(got.Indicator.K)-1] == nil {
		t.Error("overlay tail is null")
	}
}

func TestChartEndpointBadPeriod(t *testing.T) {
	ts := newTestServer(t, &fakeProvider{})
	resp := getJSON(t, ts.URL+"/api/chart/BBCA.JK?period=2W", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestAnalysisEndpoint(t *testing.T) {
	ts := newTestServer(t, &fakeProvider{})

	var got AnalysisResponse
	resp := getJSON(t, ts.URL+"/api/analysis/BBCA.JK?start_date=2024-01-01&end_date=2024-06-30", &got)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if got.Period.Days == 0 {
		t.Error("period days missing")
	}
	if len(got.Seasonal.Monthly) == 0 {
		t.Error("seasonal analysis empty")
	}
	if len(got.Patterns.ByDay) == 0 {
		t.Error("pattern analysis empty")
	}
	if len(got.Volatility.Historical) == 0 {
		t.Error("volatility analysis empty")
	}
	if got.Intraday == nil {
		t.Error("intraday analysis missing with hourly data available")
	}
}

func TestRealtimeWebSocket(t *testing.T) {
	p := &fakeProvider{quote: domain.Quote{Symbol: "AAPL", Price: 210, Timestamp: time.Now()}}
	ts := newTestServer(t, p)

	// Non-IDX ticker so the feed is active regardless of wall-clock time.
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/realtime/AAPL"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg WSMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatal(err)
	}
	if msg.Type != "quote" || msg.Data == nil || msg.Data.Price != 210 {
		t.Errorf("message = %+v", msg)
	}

	// A second tick arrives on the poll cadence.
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatal(err)
	}
	if msg.Ticker != "AAPL" {
		t.Errorf("ticker = %s", msg.Ticker)
	}
}

func TestChartWebSocket(t *testing.T) {
	p := &fakeProvider{quote: domain.Quote{Symbol: "AAPL", Price: 500, Timestamp: time.Now()}}
	ts := newTestServer(t, p)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/chart/AAPL?period=1M"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var msg WSMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatal(err)
	}
	if msg.Type != "series" || len(msg.Bars) == 0 {
		t.Fatalf("first message = %+v, want series snapshot", msg.Type)
	}

	// Tail updates follow on the quote cadence, reconciled with the live
	// quote once the session's subscription delivers it.
	deadline := time.Now().Add(2 * time.Second)
	for {
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatal(err)
		}
		if msg.Type != "bar" || msg.Bar == nil {
			t.Fatalf("update message = %+v, want bar", msg.Type)
		}
		if msg.Bar.Close == 500 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("tail close = %v, want 500", msg.Bar.Close)
		}
	}
}
