package middleware

import (
	"context"
	"fmt"
	"sync"
	"time"

	"GapSight/internal/domain/models"
	domrepo "GapSight/internal/domain/repository"
)

// Proc is the minimal processor interface the pipeline needs.
type Proc interface {
	Process(ctx context.Context, c *models.Candle) error
}

// CandlePipeline sits between the market feed and the engine manager.
// It validates candles, drops stale or duplicate bars per symbol, and
// buffers when downstream is temporarily unavailable.
type CandlePipeline struct {
	proc    Proc
	metrics domrepo.Metrics
	bufSize int
	bufCh   chan *models.Candle
	stopCh  chan struct{}
	started bool
	mu      sync.Mutex
	lastBar map[string]time.Time // per-symbol last accepted open time
}

type PipelineOption func(*CandlePipeline)

// WithBufferSize sets the temporary buffer size when downstream is unavailable.
func WithBufferSize(n int) PipelineOption {
	return func(p *CandlePipeline) {
		if n > 0 {
			p.bufSize = n
		}
	}
}

// NewCandlePipeline creates a new pipeline.
func NewCandlePipeline(proc Proc, metrics domrepo.Metrics, opts ...PipelineOption) *CandlePipeline {
	p := &CandlePipeline{
		proc:    proc,
		metrics: metrics,
		bufSize: 1000,
		stopCh:  make(chan struct{}),
		lastBar: make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.bufCh = make(chan *models.Candle, p.bufSize)
	return p
}

// Start launches background flushing of buffered candles.
func (p *CandlePipeline) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.mu.Unlock()

	go func() {
		backoff := 50 * time.Millisecond
		for {
			select {
			case <-p.stopCh:
				return
			case c := <-p.bufCh:
				if c == nil {
					continue
				}
				if err := p.proc.Process(ctx, c); err != nil {
					if backoff < 2*time.Second {
						backoff *= 2
					}
					p.metrics.RecordError("pipeline_flush")
					time.Sleep(backoff)
					// requeue if space; drop otherwise
					select {
					case p.bufCh <- c:
					default:
						p.metrics.RecordError("pipeline_buffer_drop")
					}
				} else {
					backoff = 50 * time.Millisecond
				}
			}
		}
	}()
}

// Stop stops the background flushing.
func (p *CandlePipeline) Stop() {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	p.started = false
	p.mu.Unlock()
	close(p.stopCh)
}

// Process validates and forwards a candle downstream, buffering on errors.
// Stale and duplicate bars are dropped so replays after a reconnect do
// not disturb engine state.
func (p *CandlePipeline) Process(ctx context.Context, c *models.Candle) error {
	start := time.Now()
	if err := validateCandle(c); err != nil {
		p.metrics.RecordError("pipeline_validate")
		return err
	}
	if !p.accept(c) {
		p.metrics.RecordError("pipeline_stale_bar")
		return nil
	}

	if err := p.proc.Process(ctx, c); err != nil {
		p.metrics.RecordError("pipeline_process")
		// buffer non-blocking
		select {
		case p.bufCh <- c:
		default:
			p.metrics.RecordError("pipeline_buffer_full")
		}
		return fmt.Errorf("pipeline downstream: %w", err)
	}
	p.metrics.RecordLatency("pipeline_process", time.Since(start).Seconds())
	return nil
}

func validateCandle(c *models.Candle) error {
	if c == nil {
		return fmt.Errorf("candle nil")
	}
	if c.Symbol == "" {
		return fmt.Errorf("symbol empty")
	}
	if c.Timestamp.IsZero() {
		return fmt.Errorf("timestamp invalid")
	}
	if !c.IsWellFormed() {
		return fmt.Errorf("malformed ohlcv")
	}
	return nil
}

func (p *CandlePipeline) accept(c *models.Candle) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	last, ok := p.lastBar[c.Symbol]
	if ok && !c.Timestamp.After(last) {
		return false
	}
	p.lastBar[c.Symbol] = c.Timestamp
	return true
}
