// Package archive backfills daily bar history for the ticker universe into
// the local Parquet archive.
package archive

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"fatqt/internal/catalog"
	"fatqt/internal/domain"
	"fatqt/internal/marketdata"
	"fatqt/internal/store"
)

// Archiver fetches daily bars for every ticker in the catalog and writes
// them to the bar store. A run is idempotent: the store merges and dedupes
// per symbol-year, so refetching an already archived range is harmless.
type Archiver struct {
	catalog    *catalog.Catalog
	provider   marketdata.HistoricalProvider
	store      store.BarStore
	startDate  string
	maxWorkers int
	log        *slog.Logger
}

// NewArchiver creates an Archiver fetching history from startDate
// (YYYY-MM-DD) with up to maxWorkers concurrent symbol fetches.
func NewArchiver(cat *catalog.Catalog, p marketdata.HistoricalProvider, s store.BarStore, startDate string, maxWorkers int) *Archiver {
	return &Archiver{
		catalog:    cat,
		provider:   p,
		store:      s,
		startDate:  startDate,
		maxWorkers: maxWorkers,
		log:        slog.Default().With("component", "archive"),
	}
}

// Name returns the archiver identifier.
func (a *Archiver) Name() string { return "daily-archive" }

// Run fetches and stores daily bars for every catalog symbol. It returns
// after all symbols are processed or ctx is cancelled; individual symbol
// failures are logged and skipped.
func (a *Archiver) Run(ctx context.Context) error {
	start, err := time.Parse("2006-01-02", a.startDate)
	if err != nil {
		return fmt.Errorf("parsing start date %q: %w", a.startDate, err)
	}
	end := time.Now()

	tickers, err := a.catalog.List(ctx)
	if err != nil {
		return fmt.Errorf("listing tickers: %w", err)
	}

	a.log.Info("starting daily archive",
		"symbols", len(tickers),
		"start", a.startDate,
		"workers", a.maxWorkers,
	)

	symCh := make(chan string, len(tickers))
	for _, t := range tickers {
		symCh <- t.Symbol
	}
	close(symCh)

	var (
		wg       sync.WaitGroup
		archived atomic.Int64
		failed   atomic.Int64
		runStart = time.Now()
	)

	workers := min(a.maxWorkers, len(tickers))
	if workers < 1 {
		workers = 1
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for sym := range symCh {
				if ctx.Err() != nil {
					return
				}
				n, err := a.archiveSymbol(ctx, sym, start, end)
				if err != nil {
					failed.Add(1)
					a.log.Error("archiving symbol failed", "symbol", sym, "err", err)
					continue
				}
				archived.Add(1)
				a.log.Info("archived symbol", "symbol", sym, "bars", n)
			}
		}()
	}
	wg.Wait()

	a.log.Info("daily archive finished",
		"archived", archived.Load(),
		"failed", failed.Load(),
		"elapsed", time.Since(runStart).Round(time.Second),
	)

	if err := ctx.Err(); err != nil {
		return err
	}
	if f := failed.Load(); f > 0 {
		return fmt.Errorf("%d symbols failed", f)
	}
	return nil
}

func (a *Archiver) archiveSymbol(ctx context.Context, symbol string, start, end time.Time) (int, error) {
	bars, err := a.provider.HistoricalBars(ctx, symbol, start, end, domain.Interval1Day)
	if err != nil {
		return 0, fmt.Errorf("fetching bars: %w", err)
	}
	if len(bars) == 0 {
		return 0, nil
	}
	if err := a.store.WriteBars(ctx, bars); err != nil {
		return 0, fmt.Errorf("writing bars: %w", err)
	}
	return len(bars), nil
}
