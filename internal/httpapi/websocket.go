package httpapi

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"fatqt/internal/chart"
	"fatqt/internal/domain"
	"fatqt/internal/util"
)

var wsUpgrader = websocket.Upgrader{
	CheckOrigin:       func(*http.Request) bool { return true },
	EnableCompression: true,
}

// drainClient reads and discards client frames so close and ping/pong
// handling work; both feeds are one-directional otherwise. The returned
// channel closes when the client goes away.
func drainClient(conn *websocket.Conn) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
	return done
}

// handleRealtimeWS pushes quote messages for one ticker over a WebSocket,
// fed by the shared quote streamer. While the IDX is closed a market_closed
// notice is sent at the slow cadence instead.
func (s *Server) handleRealtimeWS(w http.ResponseWriter, r *http.Request) {
	ticker := r.PathValue("ticker")

	quotes, cancel, err := s.stream.Subscribe(ticker)
	if err != nil {
		writeError(w, http.StatusBadGateway, "quote subscription failed")
		return
	}
	defer cancel()

	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	done := drainClient(conn)

	s.log.Info("realtime subscription opened", "ticker", ticker, "remote", r.RemoteAddr)
	defer s.log.Info("realtime subscription closed", "ticker", ticker)

	notice := time.NewTicker(s.closedPoll)
	defer notice.Stop()

	for {
		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case q, ok := <-quotes:
			if !ok {
				return
			}
			data := convertQuote(ticker, q, s.marketOpen(ticker, time.Now()))
			msg := WSMessage{
				Type:      "quote",
				Ticker:    ticker,
				Data:      &data,
				Timestamp: time.Now().Format(time.RFC3339),
			}
			if err := conn.WriteJSON(msg); err != nil {
				return
			}
		case now := <-notice.C:
			if util.IsIDXSymbol(ticker) && !s.cal.IsMarketOpen(now) {
				msg := WSMessage{
					Type:      "market_closed",
					Ticker:    ticker,
					Message:   "IDX market is closed",
					Timestamp: now.Format(time.RFC3339),
				}
				if err := conn.WriteJSON(msg); err != nil {
					return
				}
			}
		}
	}
}

// handleChartWS runs a live chart session over a WebSocket: an initial
// series snapshot, then the reconciled tail bar on the quote cadence. The
// session holds its own quote subscription and tears it down on disconnect.
func (s *Server) handleChartWS(w http.ResponseWriter, r *http.Request) {
	ticker := r.PathValue("ticker")
	period := domain.Period(r.URL.Query().Get("period"))
	if period == "" {
		period = domain.Period1D
	}
	override := domain.Interval(r.URL.Query().Get("interval"))

	sess := chart.NewSession(s.policy, s.bars, s.stream, s.osc, s.loc)
	if err := sess.Load(r.Context(), ticker, period, override); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer sess.Close()

	if r.URL.Query().Get("indicator") == "stochastic" {
		sess.SetIndicator(r.Context(), true)
	}

	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	done := drainClient(conn)

	s.log.Info("chart session opened", "ticker", ticker, "period", period)
	defer s.log.Info("chart session closed", "ticker", ticker)

	snapshot := WSMessage{
		Type:      "series",
		Ticker:    ticker,
		Bars:      convertBars(sess.Bars(), s.loc),
		Timestamp: time.Now().Format(time.RFC3339),
	}
	if ov := sess.Overlay(); ov != nil {
		snapshot.Indicator = convertOverlay(*ov)
	}
	if err := conn.WriteJSON(snapshot); err != nil {
		return
	}

	push := time.NewTicker(s.quotePoll)
	defer push.Stop()

	for {
		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case now := <-push.C:
			bars := sess.Bars()
			if len(bars) == 0 {
				continue
			}
			tail := convertBars(bars[len(bars)-1:], s.loc)
			msg := WSMessage{
				Type:      "bar",
				Ticker:    ticker,
				Bar:       &tail[0],
				Timestamp: now.Format(time.RFC3339),
			}
			if err := conn.WriteJSON(msg); err != nil {
				return
			}
		}
	}
}
