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

// GapSnapshotsSchema creates the gap snapshot table (idempotent).
// Snapshots are append-only: one row per observed state change.
var GapSnapshotsSchema = []string{
	`CREATE TABLE IF NOT EXISTS gap_snapshots (
		snapshot_ts DateTime64(3, 'UTC'),
		id String,
		symbol LowCardinality(String),
		gap_type LowCardinality(String),
		status LowCardinality(String),
		top Float64,
		bottom Float64,
		size_pct Float64,
		midpoint Float64,
		creation_volume Float64,
		volume_ratio Float64,
		volume_confirmed UInt8,
		fill_pct Float64,
		age_candles UInt32,
		touch_count UInt32,
		strength Float64,
		created_at DateTime64(3, 'UTC')
	) ENGINE = MergeTree
	PARTITION BY toYYYYMM(snapshot_ts)
	ORDER BY (symbol, id, snapshot_ts)`,
}

// ClickHouseGapStore implements GapStore for ClickHouse.
type ClickHouseGapStore struct {
	db    *sql.DB
	table string
}

// NewClickHouseGapStore creates a ClickHouse gap snapshot store.
func NewClickHouseGapStore(db *sql.DB, table string) repository.GapStore {
	if table == "" {
		table = "gap_snapshots"
	}
	return &ClickHouseGapStore{db: db, table: table}
}

const gapColumns = "snapshot_ts, id, symbol, gap_type, status, top, bottom, size_pct, midpoint, creation_volume, volume_ratio, volume_confirmed, fill_pct, age_candles, touch_count, strength, created_at"

func (s *ClickHouseGapStore) StoreSnapshot(ctx context.Context, gap *models.FairValueGap) error {
	if gap == nil {
		return nil
	}
	q := fmt.Sprintf("INSERT INTO %s (%s) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)", s.table, gapColumns)
	_, err := s.db.ExecContext(ctx, q, gapArgs(gap, time.Now().UTC())...)
	return err
}

func (s *ClickHouseGapStore) StoreSnapshotBatch(ctx context.Context, gaps []models.FairValueGap) error {
	if len(gaps) == 0 {
		return nil
	}
	now := time.Now().UTC()
	values := make([]string, 0, len(gaps))
	args := make([]interface{}, 0, len(gaps)*17)
	for i := range gaps {
		values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
		args = append(args, gapArgs(&gaps[i], now)...)
	}
	q := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s", s.table, gapColumns, strings.Join(values, ","))
	_, err := s.db.ExecContext(ctx, q, args...)
	return err
}

func gapArgs(g *models.FairValueGap, now time.Time) []interface{} {
	confirmed := uint8(0)
	if g.VolumeConfirmed {
		confirmed = 1
	}
	return []interface{}{
		now,
		g.ID,
		g.Symbol,
		string(g.Type),
		string(g.Status),
		g.Top,
		g.Bottom,
		g.Size,
		g.Midpoint,
		g.CreationVolume,
		g.VolumeRatio,
		confirmed,
		g.FillPercentage,
		uint32(g.AgeInCandles),
		uint32(g.TouchCount),
		g.Strength,
		g.CreatedAt,
	}
}

func (s *ClickHouseGapStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
