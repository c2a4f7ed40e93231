package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"time"

	"fatqt/internal/config"
	"fatqt/internal/domain"
	"fatqt/internal/util"
)

// YahooClient fetches bars and quotes from the Yahoo Finance v8 chart API.
type YahooClient struct {
	baseURL string
	ua      string
	client  *http.Client
	limiter *util.RateLimiter
	log     *slog.Logger
}

// Compile-time interface checks.
var (
	_ HistoricalProvider = (*YahooClient)(nil)
	_ QuoteProvider      = (*YahooClient)(nil)
)

// NewYahooClient creates a YahooClient from configuration. A zero rate limit
// disables client-side throttling.
func NewYahooClient(cfg config.Yahoo, ratePerMin int) *YahooClient {
	transport := &http.Transport{}
	if cfg.ProxyURL != "" {
		if u, err := url.Parse(cfg.ProxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}

	c := &YahooClient{
		baseURL: cfg.BaseURL,
		ua:      cfg.UserAgent,
		client: &http.Client{
			Timeout:   time.Duration(cfg.TimeoutSec) * time.Second,
			Transport: transport,
		},
		log: slog.Default().With("component", "yahoo"),
	}
	if ratePerMin > 0 {
		c.limiter = util.NewRateLimiter(ratePerMin)
	}
	return c
}

// yahooChart is the wire shape of the v8 chart response. Bars on holidays
// and halts come back as JSON nulls, hence the pointer slices.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol               string  `json:"symbol"`
				RegularMarketPrice   float64 `json:"regularMarketPrice"`
				RegularMarketVolume  int64   `json:"regularMarketVolume"`
				RegularMarketDayHigh float64 `json:"regularMarketDayHigh"`
				RegularMarketDayLow  float64 `json:"regularMarketDayLow"`
				RegularMarketTime    int64   `json:"regularMarketTime"`
				ChartPreviousClose   float64 `json:"chartPreviousClose"`
				PreviousClose        float64 `json:"previousClose"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*int64   `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func derefInt(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}

// fetchChart issues one chart API call and decodes the response. The query
// values select either an explicit period1/period2 window or a named range.
func (c *YahooClient) fetchChart(ctx context.Context, symbol string, q url.Values) (*yahooChart, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	u := fmt.Sprintf("%s/v8/finance/chart/%s?%s", c.baseURL, url.PathEscape(symbol), q.Encode())

	var chart yahooChart
	err := util.Retry(ctx, 3, 500*time.Millisecond, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return err
		}
		req.Header.Set("User-Agent", c.ua)

		resp, err := c.client.Do(req)
		if err != nil {
			return fmt.Errorf("yahoo fetch: %w", err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("yahoo read body: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("yahoo: status %d for %s", resp.StatusCode, symbol)
		}

		chart = yahooChart{}
		if err := json.Unmarshal(body, &chart); err != nil {
			return fmt.Errorf("yahoo decode: %w", err)
		}
		if chart.Chart.Error != nil {
			return fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(chart.Chart.Result) == 0 {
		return nil, fmt.Errorf("yahoo: empty result for %s", symbol)
	}
	return &chart, nil
}

// HistoricalBars fetches OHLC history for the window. Null bars (holidays,
// halts) are skipped; the result is ordered oldest-first.
func (c *YahooClient) HistoricalBars(ctx context.Context, symbol string, start, end time.Time, interval domain.Interval) ([]domain.Bar, error) {
	q := url.Values{}
	q.Set("interval", string(interval))
	q.Set("period1", fmt.Sprintf("%d", start.Unix()))
	q.Set("period2", fmt.Sprintf("%d", end.Unix()))

	chart, err := c.fetchChart(ctx, symbol, q)
	if err != nil {
		return nil, err
	}

	result := chart.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, nil
	}
	quote := result.Indicators.Quote[0]

	bars := make([]domain.Bar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(quote.Close) {
			break
		}
		o, h, l, cl := deref(quote.Open[i]), deref(quote.High[i]), deref(quote.Low[i]), deref(quote.Close[i])
		if o == 0 && h == 0 && l == 0 && cl == 0 {
			continue
		}
		var vol int64
		if i < len(quote.Volume) {
			vol = derefInt(quote.Volume[i])
		}
		bars = append(bars, domain.Bar{
			Symbol:    symbol,
			Timestamp: time.Unix(ts, 0),
			Open:      o,
			High:      h,
			Low:       l,
			Close:     cl,
			Volume:    vol,
		})
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Timestamp.Before(bars[j].Timestamp) })
	return bars, nil
}

// Quote returns the current quote for a symbol, built from the chart meta of
// a minimal one-day request.
func (c *YahooClient) Quote(ctx context.Context, symbol string) (domain.Quote, error) {
	q := url.Values{}
	q.Set("interval", "1d")
	q.Set("range", "1d")

	chart, err := c.fetchChart(ctx, symbol, q)
	if err != nil {
		return domain.Quote{}, err
	}

	meta := chart.Chart.Result[0].Meta
	prev := meta.PreviousClose
	if prev == 0 {
		prev = meta.ChartPreviousClose
	}

	quote := domain.Quote{
		Symbol:        symbol,
		Price:         meta.RegularMarketPrice,
		High:          meta.RegularMarketDayHigh,
		Low:           meta.RegularMarketDayLow,
		Volume:        meta.RegularMarketVolume,
		PreviousClose: prev,
	}
	if meta.RegularMarketTime > 0 {
		quote.Timestamp = time.Unix(meta.RegularMarketTime, 0)
	}
	if prev > 0 && quote.Price > 0 {
		quote.Change = quote.Price - prev
		quote.ChangePercent = quote.Change / prev * 100
	}

	// The meta block omits the session open; recover it from the day's bar.
	result := chart.Chart.Result[0]
	if len(result.Indicators.Quote) > 0 && len(result.Indicators.Quote[0].Open) > 0 {
		quote.Open = deref(result.Indicators.Quote[0].Open[0])
	}

	return quote, nil
}
