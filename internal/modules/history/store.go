// Package history persists daily closing prices in SQLite so repeated
// analysis runs do not have to re-fetch their input.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/riskscope/internal/database"
	"github.com/aristath/riskscope/internal/modules/panel"
	"github.com/aristath/riskscope/internal/utils"
)

const pricesSchema = `
CREATE TABLE IF NOT EXISTS prices (
	symbol TEXT NOT NULL,
	date   INTEGER NOT NULL,
	close  REAL NOT NULL,
	PRIMARY KEY (symbol, date)
)`

// Store reads and writes daily close prices. Dates are stored as Unix
// seconds at UTC midnight.
type Store struct {
	db  *database.DB
	log zerolog.Logger
}

// NewStore creates the prices table if missing and returns the store.
func NewStore(db *database.DB, log zerolog.Logger) (*Store, error) {
	if _, err := db.Exec(pricesSchema); err != nil {
		return nil, fmt.Errorf("create prices table: %w", err)
	}

	return &Store{
		db:  db,
		log: log.With().Str("component", "history").Logger(),
	}, nil
}

// UpsertPrices writes records, replacing rows that share a symbol and day.
func (s *Store) UpsertPrices(ctx context.Context, records []panel.PriceRecord) error {
	if len(records) == 0 {
		return nil
	}

	err := database.WithTransaction(s.db.Conn(), func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO prices (symbol, date, close)
			VALUES (?, ?, ?)
			ON CONFLICT (symbol, date) DO UPDATE SET close = excluded.close`)
		if err != nil {
			return fmt.Errorf("prepare upsert: %w", err)
		}
		defer stmt.Close()

		for _, r := range records {
			day := panel.Day(r.Date)
			if _, err := stmt.ExecContext(ctx, r.Symbol, day.Unix(), r.Close); err != nil {
				return fmt.Errorf("upsert %s@%s: %w", r.Symbol, day.Format(panel.DateLayout), err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Debug().Int("rows", len(records)).Msg("Stored price rows")
	return nil
}

// LoadRecords returns every stored price row, ordered by date then symbol.
func (s *Store) LoadRecords(ctx context.Context) ([]panel.PriceRecord, error) {
	return s.queryRecords(ctx, `
		SELECT symbol, date, close FROM prices
		ORDER BY date ASC, symbol ASC`)
}

// LoadRecordsRange returns price rows with dates inside [start, end],
// ordered by date then symbol.
func (s *Store) LoadRecordsRange(ctx context.Context, start, end time.Time) ([]panel.PriceRecord, error) {
	return s.queryRecords(ctx, `
		SELECT symbol, date, close FROM prices
		WHERE date >= ? AND date <= ?
		ORDER BY date ASC, symbol ASC`,
		panel.Day(start).Unix(), panel.Day(end).Unix())
}

// Symbols returns the distinct symbols present in the store.
func (s *Store) Symbols(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT symbol FROM prices ORDER BY symbol ASC`)
	if err != nil {
		return nil, fmt.Errorf("query symbols: %w", err)
	}
	defer rows.Close()

	var symbols []string
	for rows.Next() {
		var symbol string
		if err := rows.Scan(&symbol); err != nil {
			return nil, fmt.Errorf("scan symbol: %w", err)
		}
		symbols = append(symbols, symbol)
	}
	return symbols, rows.Err()
}

// Count returns the number of stored price rows.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM prices`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count prices: %w", err)
	}
	return n, nil
}

func (s *Store) queryRecords(ctx context.Context, query string, args ...interface{}) ([]panel.PriceRecord, error) {
	measure := utils.MeasureDBQuery("load_prices", s.log)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query prices: %w", err)
	}
	defer rows.Close()

	var records []panel.PriceRecord
	for rows.Next() {
		var (
			symbol string
			unix   int64
			price  float64
		)
		if err := rows.Scan(&symbol, &unix, &price); err != nil {
			return nil, fmt.Errorf("scan price row: %w", err)
		}
		records = append(records, panel.PriceRecord{
			Symbol: symbol,
			Date:   time.Unix(unix, 0).UTC(),
			Close:  price,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	measure(int64(len(records)))
	return records, nil
}
