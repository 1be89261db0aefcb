package repository

import (
	"context"
	"time"

	"GapSight/internal/domain/models"
)

// MarketStream is a live candle feed for the configured symbols.
type MarketStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.Candle, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// SignalPublisher pushes emitted gap signals to downstream consumers.
type SignalPublisher interface {
	Publish(ctx context.Context, sig *models.GapSignal) error
	Close() error
}

// CandleStore is the historical candle source used for engine warm-up.
type CandleStore interface {
	StoreBatch(ctx context.Context, candles []*models.Candle) error
	LatestN(ctx context.Context, symbol string, n int) ([]models.Candle, error)
	Query(ctx context.Context, symbol string, from, to time.Time, limit int) ([]models.Candle, error)
	Health(ctx context.Context) error
}

// GapStore persists gap snapshots for the dashboard and offline analysis.
type GapStore interface {
	StoreSnapshot(ctx context.Context, gap *models.FairValueGap) error
	StoreSnapshotBatch(ctx context.Context, gaps []models.FairValueGap) error
	Health(ctx context.Context) error
}

// Metrics records operational metrics for the ingest and engine paths.
type Metrics interface {
	RecordCandle(symbol string)
	RecordGapDetected(symbol string, gapType string)
	RecordGapTerminal(symbol string, status string)
	RecordActiveGaps(symbol string, count int)
	RecordLastPrice(symbol string, price float64)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
}
