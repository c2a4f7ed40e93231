// Package httpapi serves the dashboard HTTP and WebSocket API: ticker
// catalog, realtime quotes, historical bars, resolved chart views with the
// oscillator overlay, and the statistical analysis suite.
package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"fatqt/internal/analysis"
	"fatqt/internal/catalog"
	"fatqt/internal/chart"
	"fatqt/internal/domain"
	"fatqt/internal/indicator"
	"fatqt/internal/marketdata"
	"fatqt/internal/util"
)

// Version is reported on the root endpoint.
const Version = "1.0.0"

// Server serves the dashboard API.
type Server struct {
	catalog *catalog.Catalog
	bars    marketdata.HistoricalProvider
	quotes  marketdata.QuoteProvider
	stream  chart.QuoteSource
	policy  *chart.Policy
	osc     *indicator.Adapter
	cal     *util.TradingCalendar
	loc     *time.Location
	log     *slog.Logger

	// WebSocket push cadence, mirroring the quote streamer.
	quotePoll  time.Duration
	closedPoll time.Duration
}

// NewServer creates the API server.
func NewServer(
	cat *catalog.Catalog,
	bars marketdata.HistoricalProvider,
	quotes marketdata.QuoteProvider,
	stream chart.QuoteSource,
	policy *chart.Policy,
	osc *indicator.Adapter,
	cal *util.TradingCalendar,
	quotePoll, closedPoll time.Duration,
) *Server {
	return &Server{
		catalog:    cat,
		bars:       bars,
		quotes:     quotes,
		stream:     stream,
		policy:     policy,
		osc:        osc,
		cal:        cal,
		loc:        cal.Location(),
		log:        slog.Default().With("component", "httpapi"),
		quotePoll:  quotePoll,
		closedPoll: closedPoll,
	}
}

// RegisterRoutes registers all API routes on the given mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /", s.handleRoot)
	mux.HandleFunc("GET /api/tickers", s.handleTickers)
	mux.HandleFunc("GET /api/realtime/{ticker}", s.handleRealtime)
	mux.HandleFunc("POST /api/historical", s.handleHistorical)
	mux.HandleFunc("GET /api/chart/{ticker}", s.handleChart)
	mux.HandleFunc("GET /api/analysis/{ticker}", s.handleAnalysis)
	mux.HandleFunc("GET /ws/realtime/{ticker}", s.handleRealtimeWS)
	mux.HandleFunc("GET /ws/chart/{ticker}", s.handleChartWS)
}

// Handler returns an http.Handler with CORS middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return corsMiddleware(mux)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	writeJSON(w, RootResponse{
		Name:    "FATQT Stock Analysis API",
		Version: Version,
		Endpoints: map[string]string{
			"realtime":   "/api/realtime/{ticker}",
			"historical": "/api/historical",
			"chart":      "/api/chart/{ticker}",
			"analysis":   "/api/analysis/{ticker}",
			"tickers":    "/api/tickers",
			"websocket":  "/ws/realtime/{ticker}",
			"chart_ws":   "/ws/chart/{ticker}",
		},
	})
}

func (s *Server) handleTickers(w http.ResponseWriter, r *http.Request) {
	tickers, err := s.catalog.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list tickers")
		return
	}
	out := make([]TickerJSON, len(tickers))
	for i, t := range tickers {
		out[i] = TickerJSON{Symbol: t.Symbol, Name: t.Name, Category: t.Category}
	}
	writeJSON(w, TickersResponse{Total: len(out), Tickers: out})
}

func (s *Server) handleRealtime(w http.ResponseWriter, r *http.Request) {
	ticker := r.PathValue("ticker")

	q, err := s.quotes.Quote(r.Context(), ticker)
	if err != nil {
		writeError(w, http.StatusBadGateway, "quote fetch failed")
		return
	}
	if !q.HasPrice() {
		writeError(w, http.StatusNotFound, "no quote available")
		return
	}
	writeJSON(w, convertQuote(ticker, q, s.marketOpen(ticker, time.Now())))
}

func (s *Server) handleHistorical(w http.ResponseWriter, r *http.Request) {
	var req HistoricalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Ticker == "" {
		writeError(w, http.StatusBadRequest, "ticker required")
		return
	}
	if req.Interval == "" {
		req.Interval = string(domain.Interval1Day)
	}
	iv := domain.Interval(req.Interval)
	if !iv.Valid() {
		writeError(w, http.StatusBadRequest, "unknown interval")
		return
	}

	start, err := time.ParseInLocation("2006-01-02", req.StartDate, s.loc)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid start_date")
		return
	}
	end, err := time.ParseInLocation("2006-01-02", req.EndDate, s.loc)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid end_date")
		return
	}

	bars, err := s.bars.HistoricalBars(r.Context(), req.Ticker, start, end, iv)
	if err != nil {
		writeError(w, http.StatusBadGateway, "historical fetch failed")
		return
	}
	if len(bars) == 0 {
		writeError(w, http.StatusNotFound, "no data found")
		return
	}

	writeJSON(w, HistoricalResponse{
		Ticker:    req.Ticker,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Interval:  req.Interval,
		Data:      convertBars(bars, s.loc),
	})
}

// handleChart runs the full chart pipeline for one request: period
// resolution, historical fetch, last-session filtering for 1D, a live
// quote merged into the tail, and the optional oscillator overlay.
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	ticker := r.PathValue("ticker")
	period := domain.Period(r.URL.Query().Get("period"))
	if period == "" {
		period = domain.Period1M
	}

	var (
		res chart.Resolution
		err error
	)
	if override := r.URL.Query().Get("interval"); override != "" {
		res, err = s.policy.ResolveOverride(period, domain.Interval(override), time.Now())
	} else {
		res, err = s.policy.Resolve(period, time.Now())
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	bars, err := s.bars.HistoricalBars(r.Context(), ticker, res.Start, res.End, res.Interval)
	if err != nil {
		// An empty chart, not a failed request.
		s.log.Warn("chart fetch failed", "ticker", ticker, "error", err)
		bars = nil
	}
	if period == domain.Period1D {
		bars = chart.LastSessionOnly(bars, s.loc)
	}

	// Fold the current quote into the tail so the chart is live even
	// without a WebSocket.
	merger := chart.NewMerger(bars, s.loc)
	if q, err := s.quotes.Quote(r.Context(), ticker); err == nil {
		merger.Apply(q)
	}
	series := merger.Series()

	resp := ChartResponse{
		Ticker:   ticker,
		Period:   string(period),
		Interval: string(res.Interval),
		Start:    res.Start.Format(time.RFC3339),
		End:      res.End.Format(time.RFC3339),
		Bars:     convertBars(series, s.loc),
	}

	if r.URL.Query().Get("indicator") == "stochastic" && s.osc != nil {
		osc, err := s.osc.Fetch(r.Context(), ticker, res.Start, res.End, res.Interval)
		if err != nil {
			// Overlay is best-effort; the price series stands on its own.
			s.log.Warn("oscillator fetch failed", "ticker", ticker, "error", err)
		} else {
			resp.Indicator = convertOverlay(indicator.AlignOverlay(len(series), osc))
		}
	}

	writeJSON(w, resp)
}

// handleAnalysis fetches daily and hourly history concurrently and fans the
// report computations out per module.
func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	ticker := r.PathValue("ticker")

	end := time.Now()
	start := end.AddDate(0, 0, -730)
	if v := r.URL.Query().Get("end_date"); v != "" {
		t, err := time.ParseInLocation("2006-01-02", v, s.loc)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid end_date")
			return
		}
		end = t
	}
	if v := r.URL.Query().Get("start_date"); v != "" {
		t, err := time.ParseInLocation("2006-01-02", v, s.loc)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid start_date")
			return
		}
		start = t
	}

	var (
		daily  []domain.Bar
		hourly []domain.Bar
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		daily, err = s.bars.HistoricalBars(ctx, ticker, start, end, domain.Interval1Day)
		return err
	})
	g.Go(func() error {
		// Hourly history is capped upstream; two months is plenty for the
		// intraday report.
		var err error
		hourly, err = s.bars.HistoricalBars(ctx, ticker, end.AddDate(0, 0, -60), end, domain.Interval1Hour)
		if err != nil {
			// Intraday is optional; indices often lack hourly data.
			s.log.Debug("hourly fetch failed", "ticker", ticker, "error", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		writeError(w, http.StatusBadGateway, "historical fetch failed")
		return
	}
	if len(daily) == 0 {
		writeError(w, http.StatusNotFound, "no data found for analysis")
		return
	}

	resp := AnalysisResponse{
		Ticker: ticker,
		Period: AnalysisPeriod{
			Start: start.Format("2006-01-02"),
			End:   end.Format("2006-01-02"),
			Days:  len(daily),
		},
	}

	var rg errgroup.Group
	rg.Go(func() error { resp.Seasonal = analysis.Seasonal(daily); return nil })
	rg.Go(func() error { resp.Patterns = analysis.Patterns(daily); return nil })
	rg.Go(func() error { resp.Volatility = analysis.Volatility(daily); return nil })
	rg.Go(func() error {
		if len(hourly) > 0 {
			report := analysis.Intraday(hourly)
			resp.Intraday = &report
		}
		return nil
	})
	_ = rg.Wait()

	writeJSON(w, resp)
}

func (s *Server) marketOpen(ticker string, now time.Time) bool {
	if util.IsIDXSymbol(ticker) {
		return s.cal.IsMarketOpen(now)
	}
	return true
}
