// Package store persists archived OHLC bars as Parquet files on disk. The
// archive feeds offline analysis and is written by the fetch binary; the
// live chart never reads from it.
package store

import (
	"context"
	"time"

	"fatqt/internal/domain"
)

// BarStore persists and retrieves archived OHLC bars.
type BarStore interface {
	// WriteBars persists a batch of bars, merging with any already stored.
	WriteBars(ctx context.Context, bars []domain.Bar) error

	// ReadBars returns bars for the symbol within [start, end].
	ReadBars(ctx context.Context, symbol string, start, end time.Time) ([]domain.Bar, error)

	// ListSymbols returns all symbols present in the archive.
	ListSymbols(ctx context.Context) ([]string, error)
}
