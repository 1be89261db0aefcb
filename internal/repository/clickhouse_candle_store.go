package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"GapSight/internal/domain/models"
	"GapSight/internal/domain/repository"
)

// CandlesSchema creates the candle table (idempotent).
var CandlesSchema = []string{
	`CREATE TABLE IF NOT EXISTS candles (
		ts DateTime64(3, 'UTC'),
		symbol LowCardinality(String),
		open Float64,
		high Float64,
		low Float64,
		close Float64,
		volume Float64
	) ENGINE = ReplacingMergeTree
	PARTITION BY toYYYYMM(ts)
	ORDER BY (symbol, ts)`,
}

// ClickHouseCandleStore implements CandleStore for ClickHouse.
type ClickHouseCandleStore struct {
	db    *sql.DB
	table string
}

// NewClickHouseCandleStore creates a ClickHouse candle store.
func NewClickHouseCandleStore(db *sql.DB, table string) repository.CandleStore {
	if table == "" {
		table = "candles"
	}
	return &ClickHouseCandleStore{db: db, table: table}
}

func (s *ClickHouseCandleStore) StoreBatch(ctx context.Context, candles []*models.Candle) error {
	if len(candles) == 0 {
		return nil
	}
	const chunkSize = 2000
	for start := 0; start < len(candles); start += chunkSize {
		end := start + chunkSize
		if end > len(candles) {
			end = len(candles)
		}

		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*7)
		for _, c := range candles[start:end] {
			if c == nil || c.Symbol == "" || c.Timestamp.IsZero() {
				continue
			}
			values = append(values, "(?, ?, ?, ?, ?, ?, ?)")
			args = append(args, c.Timestamp, c.Symbol, c.Open, c.High, c.Low, c.Close, c.Volume)
		}
		if len(values) == 0 {
			continue
		}
		q := fmt.Sprintf("INSERT INTO %s (ts, symbol, open, high, low, close, volume) VALUES %s",
			s.table, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return err
		}
	}
	return nil
}

// LatestN returns the most recent n candles in ascending time order,
// ready to feed an engine.
func (s *ClickHouseCandleStore) LatestN(ctx context.Context, symbol string, n int) ([]models.Candle, error) {
	q := fmt.Sprintf("SELECT ts, symbol, open, high, low, close, volume FROM %s WHERE symbol = ? ORDER BY ts DESC LIMIT ?", s.table)
	rows, err := s.db.QueryContext(ctx, q, symbol, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	candles, err := scanCandles(rows)
	if err != nil {
		return nil, err
	}
	// reverse into ascending order
	for i, j := 0, len(candles)-1; i < j; i, j = i+1, j-1 {
		candles[i], candles[j] = candles[j], candles[i]
	}
	return candles, nil
}

func (s *ClickHouseCandleStore) Query(ctx context.Context, symbol string, from, to time.Time, limit int) ([]models.Candle, error) {
	q := fmt.Sprintf("SELECT ts, symbol, open, high, low, close, volume FROM %s WHERE symbol = ? AND ts >= ? AND ts <= ? ORDER BY ts ASC LIMIT ?", s.table)
	rows, err := s.db.QueryContext(ctx, q, symbol, from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCandles(rows)
}

func scanCandles(rows *sql.Rows) ([]models.Candle, error) {
	var candles []models.Candle
	for rows.Next() {
		var c models.Candle
		var ts time.Time
		if err := rows.Scan(&ts, &c.Symbol, &c.Open, &c.High, &c.Low, &c.Close, &c.Volume); err != nil {
			return nil, err
		}
		c.Timestamp = ts.UTC()
		candles = append(candles, c)
	}
	return candles, rows.Err()
}

func (s *ClickHouseCandleStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
