package usecase

import (
	"context"

	"GapSight/internal/domain/models"
	drepo "GapSight/internal/domain/repository"
	mid "GapSight/internal/middleware"
)

// CandleCollector pulls candles from the market stream and pushes them
// through the pipeline into the engine manager.
type CandleCollector struct {
	stream  drepo.MarketStream
	pipe    *mid.CandlePipeline
	metrics drepo.Metrics
}

// NewCandleCollector creates a new CandleCollector instance.
func NewCandleCollector(stream drepo.MarketStream, pipe *mid.CandlePipeline, metrics drepo.Metrics) *CandleCollector {
	return &CandleCollector{stream: stream, pipe: pipe, metrics: metrics}
}

// IsConnected returns true if the market stream is connected.
func (c *CandleCollector) IsConnected() bool {
	return c.stream.IsConnected()
}

func (c *CandleCollector) Start(ctx context.Context) error {
	if err := c.stream.Connect(ctx); err != nil {
		return err
	}
	if err := c.stream.Subscribe(ctx); err != nil {
		return err
	}
	c.pipe.Start(ctx)
	candleCh, errCh := c.stream.Read(ctx)
	go c.consume(ctx, candleCh, errCh)
	return nil
}

func (c *CandleCollector) consume(ctx context.Context, candleCh <-chan *models.Candle, errCh <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return
		case err := <-errCh:
			if err != nil {
				c.metrics.RecordError("stream")
				if rerr := c.stream.Reconnect(ctx); rerr == nil {
					candleCh, errCh = c.stream.Read(ctx)
				}
			}
		case candle := <-candleCh:
			if candle == nil {
				continue
			}
			_ = c.pipe.Process(ctx, candle)
		}
	}
}

// Shutdown stops the pipeline and closes the stream.
func (c *CandleCollector) Shutdown(ctx context.Context) error {
	c.pipe.Stop()
	return c.stream.Close()
}
