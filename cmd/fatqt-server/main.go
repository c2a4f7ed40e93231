package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"fatqt/internal/catalog"
	"fatqt/internal/chart"
	"fatqt/internal/config"
	"fatqt/internal/httpapi"
	"fatqt/internal/indicator"
	"fatqt/internal/marketdata"
	"fatqt/internal/util"
)

func main() {
	// .env is optional; env overrides still apply without it.
	_ = godotenv.Load()

	cfgPath := "config/fatqt.yaml"
	if p := os.Getenv("FATQT_CONFIG"); p != "" {
		cfgPath = p
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Fatalf("loading config: %v", err)
		}
		cfg = config.Default()
	}

	logger := util.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	util.SetDefault(logger)

	loc, err := time.LoadLocation(cfg.Chart.ExchangeTimezone)
	if err != nil {
		log.Fatalf("loading exchange timezone %q: %v", cfg.Chart.ExchangeTimezone, err)
	}

	cat, err := catalog.Open(cfg.Storage.SQLitePath)
	if err != nil {
		log.Fatalf("opening ticker catalog: %v", err)
	}
	defer cat.Close()

	yahoo := marketdata.NewYahooClient(cfg.Yahoo, cfg.Fetch.RateLimitPerMin)
	cal := util.NewTradingCalendar(loc)
	quotePoll := time.Duration(cfg.Chart.QuotePollSec) * time.Second
	closedPoll := time.Duration(cfg.Chart.ClosedPollSec) * time.Second
	stream := marketdata.NewStreamer(yahoo, cal, quotePoll, closedPoll)

	srv := httpapi.NewServer(
		cat,
		yahoo,
		yahoo,
		stream,
		chart.NewPolicy(loc),
		indicator.NewAdapter(indicator.NewBarSource(yahoo)),
		cal,
		quotePoll,
		closedPoll,
	)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: srv.Handler(),
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	go func() {
		logger.Info("fatqt server listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down fatqt server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}
