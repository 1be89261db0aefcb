package middleware

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"GapSight/internal/domain/models"
)

var t0 = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

type recordingProc struct {
	mu      sync.Mutex
	candles []models.Candle
	fail    bool
}

func (p *recordingProc) Process(_ context.Context, c *models.Candle) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return errors.New("downstream unavailable")
	}
	p.candles = append(p.candles, *c)
	return nil
}

func (p *recordingProc) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.candles)
}

type nopMetrics struct {
	mu   sync.Mutex
	errs map[string]int
}

func (m *nopMetrics) RecordCandle(string)              {}
func (m *nopMetrics) RecordGapDetected(string, string) {}
func (m *nopMetrics) RecordGapTerminal(string, string) {}
func (m *nopMetrics) RecordActiveGaps(string, int)     {}
func (m *nopMetrics) RecordLastPrice(string, float64)  {}
func (m *nopMetrics) RecordError(kind string) {
	m.mu.Lock()
	if m.errs == nil {
		m.errs = make(map[string]int)
	}
	m.errs[kind]++
	m.mu.Unlock()
}
func (m *nopMetrics) RecordLatency(string, float64) {}

func candle(i int, symbol string) *models.Candle {
	return &models.Candle{
		Symbol:    symbol,
		Timestamp: t0.Add(time.Duration(i) * time.Minute),
		Open:      100, High: 101, Low: 99, Close: 100.5,
		Volume: 10,
	}
}

func TestPipelineForwardsValidCandles(t *testing.T) {
	proc := &recordingProc{}
	p := NewCandlePipeline(proc, &nopMetrics{})

	for i := 0; i < 3; i++ {
		if err := p.Process(context.Background(), candle(i, "BTCUSDT")); err != nil {
			t.Fatalf("Process: %v", err)
		}
	}
	if proc.count() != 3 {
		t.Fatalf("expected 3 forwarded candles, got %d", proc.count())
	}
}

func TestPipelineDropsStaleAndDuplicateBars(t *testing.T) {
	proc := &recordingProc{}
	m := &nopMetrics{}
	p := NewCandlePipeline(proc, m)
	ctx := context.Background()

	if err := p.Process(ctx, candle(1, "BTCUSDT")); err != nil {
		t.Fatalf("Process: %v", err)
	}
	// duplicate and stale bars are dropped without error
	if err := p.Process(ctx, candle(1, "BTCUSDT")); err != nil {
		t.Fatalf("duplicate should not error: %v", err)
	}
	if err := p.Process(ctx, candle(0, "BTCUSDT")); err != nil {
		t.Fatalf("stale should not error: %v", err)
	}
	if proc.count() != 1 {
		t.Fatalf("expected 1 forwarded candle, got %d", proc.count())
	}
	if m.errs["pipeline_stale_bar"] != 2 {
		t.Fatalf("expected 2 stale drops recorded, got %v", m.errs)
	}
}

func TestPipelineTracksSymbolsIndependently(t *testing.T) {
	proc := &recordingProc{}
	p := NewCandlePipeline(proc, &nopMetrics{})
	ctx := context.Background()

	if err := p.Process(ctx, candle(5, "BTCUSDT")); err != nil {
		t.Fatalf("Process: %v", err)
	}
	// older bar for a different symbol still passes
	if err := p.Process(ctx, candle(1, "ETHUSDT")); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if proc.count() != 2 {
		t.Fatalf("expected 2 forwarded candles, got %d", proc.count())
	}
}

func TestPipelineRejectsMalformedCandles(t *testing.T) {
	proc := &recordingProc{}
	p := NewCandlePipeline(proc, &nopMetrics{})
	ctx := context.Background()

	if err := p.Process(ctx, nil); err == nil {
		t.Fatal("expected error for nil candle")
	}
	bad := candle(0, "BTCUSDT")
	bad.High, bad.Low = bad.Low, bad.High
	if err := p.Process(ctx, bad); err == nil {
		t.Fatal("expected error for inverted high/low")
	}
	noSym := candle(0, "")
	if err := p.Process(ctx, noSym); err == nil {
		t.Fatal("expected error for empty symbol")
	}
	if proc.count() != 0 {
		t.Fatalf("expected no forwarded candles, got %d", proc.count())
	}
}

func TestPipelineBuffersOnDownstreamError(t *testing.T) {
	proc := &recordingProc{fail: true}
	m := &nopMetrics{}
	p := NewCandlePipeline(proc, m, WithBufferSize(4))
	ctx := context.Background()

	if err := p.Process(ctx, candle(0, "BTCUSDT")); err == nil {
		t.Fatal("expected downstream error")
	}
	if m.errs["pipeline_process"] != 1 {
		t.Fatalf("expected process error recorded, got %v", m.errs)
	}
	if len(p.bufCh) != 1 {
		t.Fatalf("expected 1 buffered candle, got %d", len(p.bufCh))
	}

	// downstream recovers, background flush delivers the buffered bar
	proc.mu.Lock()
	proc.fail = false
	proc.mu.Unlock()
	p.Start(ctx)
	defer p.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for proc.count() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if proc.count() != 1 {
		t.Fatalf("expected buffered candle flushed, got %d", proc.count())
	}
}
