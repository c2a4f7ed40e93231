// Package catalog stores the ticker universe in SQLite: the curated list of
// IDX listings served to the UI and used by the offline bar archiver.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"fatqt/internal/domain"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

// Catalog is a SQLite-backed ticker directory.
type Catalog struct {
	db  *sql.DB
	log *slog.Logger
}

// Open opens (or creates) the catalog database at dbPath, runs migrations,
// and seeds the default universe when the table is empty.
func Open(dbPath string) (*Catalog, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so API reads do not block archiver writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	c := &Catalog{
		db:  db,
		log: slog.Default().With("component", "catalog"),
	}
	if err := c.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	if err := c.seedIfEmpty(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("seed: %w", err)
	}
	return c, nil
}

func (c *Catalog) migrate() error {
	_, err := c.db.Exec(`CREATE TABLE IF NOT EXISTS tickers (
		symbol   TEXT PRIMARY KEY,
		name     TEXT NOT NULL,
		category TEXT NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("create tickers table: %w", err)
	}
	return nil
}

func (c *Catalog) seedIfEmpty(ctx context.Context) error {
	var n int
	if err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tickers`).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	c.log.Info("seeding default ticker universe", "count", len(defaultUniverse))
	return c.Upsert(ctx, defaultUniverse)
}

// Close closes the underlying database connection.
func (c *Catalog) Close() error {
	return c.db.Close()
}

// List returns all tickers, the index first, then alphabetically by symbol.
func (c *Catalog) List(ctx context.Context) ([]domain.Ticker, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT symbol, name, category FROM tickers
		 ORDER BY category = 'Index' DESC, symbol`)
	if err != nil {
		return nil, fmt.Errorf("list tickers: %w", err)
	}
	defer rows.Close()

	var out []domain.Ticker
	for rows.Next() {
		var t domain.Ticker
		if err := rows.Scan(&t.Symbol, &t.Name, &t.Category); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Get returns one ticker by symbol. Unknown symbols yield sql.ErrNoRows.
func (c *Catalog) Get(ctx context.Context, symbol string) (domain.Ticker, error) {
	var t domain.Ticker
	err := c.db.QueryRowContext(ctx,
		`SELECT symbol, name, category FROM tickers WHERE symbol = ?`, symbol).
		Scan(&t.Symbol, &t.Name, &t.Category)
	if err != nil {
		return domain.Ticker{}, err
	}
	return t, nil
}

// Upsert inserts or replaces tickers in one transaction.
func (c *Catalog) Upsert(ctx context.Context, tickers []domain.Ticker) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO tickers (symbol, name, category) VALUES (?, ?, ?)
		 ON CONFLICT(symbol) DO UPDATE SET name = excluded.name, category = excluded.category`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, t := range tickers {
		if _, err := stmt.ExecContext(ctx, t.Symbol, t.Name, t.Category); err != nil {
			return fmt.Errorf("upsert %s: %w", t.Symbol, err)
		}
	}
	return tx.Commit()
}

// defaultUniverse is the curated IDX set the service ships with: the
// composite index plus large-cap listings across sectors.
var defaultUniverse = []domain.Ticker{
	{Symbol: "^JKSE", Name: "IDX Composite (IHSG)", Category: "Index"},
	{Symbol: "BBCA.JK", Name: "Bank Central Asia", Category: "Banking"},
	{Symbol: "BMRI.JK", Name: "Bank Mandiri", Category: "Banking"},
	{Symbol: "BBRI.JK", Name: "Bank Rakyat Indonesia", Category: "Banking"},
	{Symbol: "BBNI.JK", Name: "Bank Negara Indonesia", Category: "Banking"},
	{Symbol: "TLKM.JK", Name: "Telkom Indonesia", Category: "Telecommunications"},
	{Symbol: "ASII.JK", Name: "Astra International", Category: "Automotive"},
	{Symbol: "UNVR.JK", Name: "Unilever Indonesia", Category: "Consumer Goods"},
	{Symbol: "ICBP.JK", Name: "Indofood CBP", Category: "Consumer Goods"},
	{Symbol: "INDF.JK", Name: "Indofood Sukses Makmur", Category: "Consumer Goods"},
	{Symbol: "KLBF.JK", Name: "Kalbe Farma", Category: "Healthcare"},
	{Symbol: "GGRM.JK", Name: "Gudang Garam", Category: "Consumer Goods"},
	{Symbol: "ADRO.JK", Name: "Adaro Energy", Category: "Energy"},
	{Symbol: "PTBA.JK", Name: "Bukit Asam", Category: "Energy"},
	{Symbol: "INCO.JK", Name: "Vale Indonesia", Category: "Mining"},
	{Symbol: "ANTM.JK", Name: "Aneka Tambang", Category: "Mining"},
	{Symbol: "SMGR.JK", Name: "Semen Indonesia", Category: "Construction"},
	{Symbol: "WIKA.JK", Name: "Wijaya Karya", Category: "Construction"},
	{Symbol: "PGAS.JK", Name: "Perusahaan Gas Negara", Category: "Energy"},
	{Symbol: "BSDE.JK", Name: "Bumi Serpong Damai", Category: "Property"},
	{Symbol: "BUVA.JK", Name: "Bukalapak", Category: "Technology"},
	{Symbol: "GOTO.JK", Name: "GoTo Gojek Tokopedia", Category: "Technology"},
	{Symbol: "EMTK.JK", Name: "Elang Mahkota Teknologi", Category: "Media"},
	{Symbol: "MEDC.JK", Name: "Medco Energi", Category: "Energy"},
	{Symbol: "EXCL.JK", Name: "XL Axiata", Category: "Telecommunications"},
}
