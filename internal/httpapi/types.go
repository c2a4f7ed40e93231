package httpapi

import (
	"math"
	"time"

	"fatqt/internal/analysis"
	"fatqt/internal/domain"
	"fatqt/internal/indicator"
)

// RootResponse describes the service and its endpoints.
type RootResponse struct {
	Name      string            `json:"name"`
	Version   string            `json:"version"`
	Endpoints map[string]string `json:"endpoints"`
}

// TickerJSON is one catalog entry.
type TickerJSON struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

// TickersResponse lists the ticker universe.
type TickersResponse struct {
	Total   int          `json:"total"`
	Tickers []TickerJSON `json:"tickers"`
}

// QuoteJSON is a point-in-time quote.
type QuoteJSON struct {
	Ticker        string  `json:"ticker"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_percent"`
	Open          float64 `json:"open"`
	High          float64 `json:"high"`
	Low           float64 `json:"low"`
	PreviousClose float64 `json:"previous_close"`
	Volume        int64   `json:"volume"`
	MarketOpen    bool    `json:"market_open"`
	Timestamp     string  `json:"timestamp"`
}

// BarJSON is one OHLC bar.
type BarJSON struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

// HistoricalRequest is the POST /api/historical body.
type HistoricalRequest struct {
	Ticker    string `json:"ticker"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Interval  string `json:"interval"`
}

// HistoricalResponse carries bars for an explicit window.
type HistoricalResponse struct {
	Ticker    string    `json:"ticker"`
	StartDate string    `json:"start_date"`
	EndDate   string    `json:"end_date"`
	Interval  string    `json:"interval"`
	Data      []BarJSON `json:"data"`
}

// OverlayJSON carries per-bar oscillator values; positions without a value
// are null.
type OverlayJSON struct {
	K []*float64 `json:"k"`
	D []*float64 `json:"d"`
}

// ChartResponse is the resolved chart view for a ticker and period.
type ChartResponse struct {
	Ticker    string       `json:"ticker"`
	Period    string       `json:"period"`
	Interval  string       `json:"interval"`
	Start     string       `json:"start"`
	End       string       `json:"end"`
	Bars      []BarJSON    `json:"bars"`
	Indicator *OverlayJSON `json:"indicator,omitempty"`
}

// AnalysisPeriod describes the window an analysis covers.
type AnalysisPeriod struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Days  int    `json:"days"`
}

// AnalysisResponse bundles the full analysis suite.
type AnalysisResponse struct {
	Ticker     string                    `json:"ticker"`
	Period     AnalysisPeriod            `json:"period"`
	Seasonal   analysis.SeasonalReport   `json:"seasonal_analysis"`
	Patterns   analysis.PatternsReport   `json:"pattern_analysis"`
	Volatility analysis.VolatilityReport `json:"volatility_analysis"`
	Intraday   *analysis.IntradayReport  `json:"intraday_analysis,omitempty"`
}

// WSMessage is pushed over the realtime WebSocket. Type is "quote" or
// "market_closed".
type WSMessage struct {
	Type      string       `json:"type"`
	Ticker    string       `json:"ticker"`
	Data      *QuoteJSON   `json:"data,omitempty"`
	Bars      []BarJSON    `json:"bars,omitempty"`
	Bar       *BarJSON     `json:"bar,omitempty"`
	Indicator *OverlayJSON `json:"indicator,omitempty"`
	Message   string       `json:"message,omitempty"`
	Timestamp string       `json:"timestamp"`
}

func convertBars(bars []domain.Bar, loc *time.Location) []BarJSON {
	out := make([]BarJSON, len(bars))
	for i, b := range bars {
		out[i] = BarJSON{
			Date:   b.Timestamp.In(loc).Format(time.RFC3339),
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: b.Volume,
		}
	}
	return out
}

func convertQuote(ticker string, q domain.Quote, marketOpen bool) QuoteJSON {
	out := QuoteJSON{
		Ticker:        ticker,
		Price:         q.Price,
		Change:        q.Change,
		ChangePercent: q.ChangePercent,
		Open:          q.Open,
		High:          q.High,
		Low:           q.Low,
		PreviousClose: q.PreviousClose,
		Volume:        q.Volume,
		MarketOpen:    marketOpen,
	}
	if !q.Timestamp.IsZero() {
		out.Timestamp = q.Timestamp.Format(time.RFC3339)
	}
	return out
}

// convertOverlay turns NaN-padded oscillator slices into JSON-safe nullable
// values.
func convertOverlay(ov indicator.Overlay) *OverlayJSON {
	return &OverlayJSON{K: nullableFloats(ov.K), D: nullableFloats(ov.D)}
}

func nullableFloats(vals []float64) []*float64 {
	out := make([]*float64, len(vals))
	for i, v := range vals {
		if math.IsNaN(v) {
			continue
		}
		v := v
		out[i] = &v
	}
	return out
}
