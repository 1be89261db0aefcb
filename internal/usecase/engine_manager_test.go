package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"GapSight/internal/domain/models"
	"GapSight/internal/fvg"
	xlogger "GapSight/pkg/logger"
)

var testBase = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

func testLogger(t *testing.T) *xlogger.Logger {
	t.Helper()
	l, err := xlogger.New(&xlogger.Config{Level: "error", Format: "console", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return l
}

func testEngineConfig() fvg.Config {
	cfg := fvg.PresetConfig(fvg.StyleDayTrading)
	cfg.GapThreshold = 1.0
	cfg.MinGapSize = 0.5
	return cfg
}

func candleAt(i int, o, h, l, c, v float64) *models.Candle {
	return &models.Candle{
		Symbol:    "BTCUSDT",
		Timestamp: testBase.Add(time.Duration(i) * time.Minute),
		Open:      o,
		High:      h,
		Low:       l,
		Close:     c,
		Volume:    v,
	}
}

func flatCandleAt(i int, px float64) *models.Candle {
	return candleAt(i, px, px, px, px, 10)
}

// bullishGapCandles produces one bullish gap [100, 102] on the third bar.
func bullishGapCandles() []*models.Candle {
	return []*models.Candle{
		flatCandleAt(0, 100),
		candleAt(1, 100, 102, 100, 102, 30),
		flatCandleAt(2, 102),
	}
}

type countingMetrics struct {
	mu       sync.Mutex
	candles  int
	detected int
	terminal map[string]int
	active   int
	errs     map[string]int
}

func newCountingMetrics() *countingMetrics {
	return &countingMetrics{terminal: make(map[string]int), errs: make(map[string]int)}
}

func (m *countingMetrics) RecordCandle(string) { m.mu.Lock(); m.candles++; m.mu.Unlock() }
func (m *countingMetrics) RecordGapDetected(string, string) {
	m.mu.Lock()
	m.detected++
	m.mu.Unlock()
}
func (m *countingMetrics) RecordGapTerminal(_ string, status string) {
	m.mu.Lock()
	m.terminal[status]++
	m.mu.Unlock()
}
func (m *countingMetrics) RecordActiveGaps(_ string, count int) {
	m.mu.Lock()
	m.active = count
	m.mu.Unlock()
}
func (m *countingMetrics) RecordLastPrice(string, float64) {}
func (m *countingMetrics) RecordError(kind string)         { m.mu.Lock(); m.errs[kind]++; m.mu.Unlock() }
func (m *countingMetrics) RecordLatency(string, float64)   {}

type fakeGapStore struct {
	mu        sync.Mutex
	snapshots []models.FairValueGap
	batches   int
}

func (s *fakeGapStore) StoreSnapshot(_ context.Context, g *models.FairValueGap) error {
	s.mu.Lock()
	s.snapshots = append(s.snapshots, *g)
	s.mu.Unlock()
	return nil
}

func (s *fakeGapStore) StoreSnapshotBatch(_ context.Context, gaps []models.FairValueGap) error {
	s.mu.Lock()
	s.snapshots = append(s.snapshots, gaps...)
	s.batches++
	s.mu.Unlock()
	return nil
}

func (s *fakeGapStore) Health(context.Context) error { return nil }

type fakePublisher struct {
	mu      sync.Mutex
	signals []models.GapSignal
}

func (p *fakePublisher) Publish(_ context.Context, sig *models.GapSignal) error {
	p.mu.Lock()
	p.signals = append(p.signals, *sig)
	p.mu.Unlock()
	return nil
}

func (p *fakePublisher) Close() error { return nil }

type fakeCandleStore struct {
	history []models.Candle
	stored  []models.Candle
}

func (s *fakeCandleStore) StoreBatch(_ context.Context, candles []*models.Candle) error {
	for _, c := range candles {
		s.stored = append(s.stored, *c)
	}
	return nil
}

func (s *fakeCandleStore) LatestN(_ context.Context, _ string, n int) ([]models.Candle, error) {
	if n > len(s.history) {
		n = len(s.history)
	}
	return s.history[len(s.history)-n:], nil
}

func (s *fakeCandleStore) Query(context.Context, string, time.Time, time.Time, int) ([]models.Candle, error) {
	return s.history, nil
}

func (s *fakeCandleStore) Health(context.Context) error { return nil }

func newTestManager(t *testing.T) (*EngineManager, *countingMetrics) {
	t.Helper()
	m := newCountingMetrics()
	mgr, err := NewEngineManager(testEngineConfig(), []string{"BTCUSDT"}, testLogger(t), m)
	if err != nil {
		t.Fatalf("NewEngineManager: %v", err)
	}
	return mgr, m
}

func TestProcessDetectsGapAndRecordsMetrics(t *testing.T) {
	mgr, m := newTestManager(t)
	ctx := context.Background()

	for _, c := range bullishGapCandles() {
		if err := mgr.Process(ctx, c); err != nil {
			t.Fatalf("Process: %v", err)
		}
	}

	gaps, err := mgr.Gaps("BTCUSDT")
	if err != nil {
		t.Fatalf("Gaps: %v", err)
	}
	if len(gaps) != 1 {
		t.Fatalf("expected 1 gap, got %d", len(gaps))
	}
	g := gaps[0]
	if g.Type != models.GapBullish || g.Top != 102 || g.Bottom != 100 {
		t.Fatalf("unexpected gap: %+v", g)
	}
	if m.candles != 3 {
		t.Fatalf("expected 3 candles recorded, got %d", m.candles)
	}
	if m.detected != 1 {
		t.Fatalf("expected 1 detection, got %d", m.detected)
	}
	if m.active != 1 {
		t.Fatalf("expected 1 active gap, got %d", m.active)
	}
}

func TestProcessPersistsSnapshotsAndTerminalTransition(t *testing.T) {
	mgr, m := newTestManager(t)
	store := &fakeGapStore{}
	mgr.SetGapStore(store)
	ctx := context.Background()

	for _, c := range bullishGapCandles() {
		if err := mgr.Process(ctx, c); err != nil {
			t.Fatalf("Process: %v", err)
		}
	}
	// close below the gap bottom fills it
	if err := mgr.Process(ctx, flatCandleAt(3, 99)); err != nil {
		t.Fatalf("Process fill: %v", err)
	}

	gaps, err := mgr.Gaps("BTCUSDT")
	if err != nil {
		t.Fatalf("Gaps: %v", err)
	}
	if gaps[0].Status != models.GapFilled {
		t.Fatalf("expected filled gap, got %s", gaps[0].Status)
	}
	if m.terminal["filled"] != 1 {
		t.Fatalf("expected 1 filled terminal transition, got %v", m.terminal)
	}

	store.mu.Lock()
	defer store.mu.Unlock()
	if len(store.snapshots) < 2 {
		t.Fatalf("expected creation + terminal snapshots, got %d", len(store.snapshots))
	}
	first, last := store.snapshots[0], store.snapshots[len(store.snapshots)-1]
	if first.Status != models.GapActive {
		t.Fatalf("first snapshot should be active, got %s", first.Status)
	}
	if last.Status != models.GapFilled || last.FillPercentage != 100 {
		t.Fatalf("last snapshot should be filled at 100%%, got %+v", last)
	}
	if store.batches == 0 {
		t.Fatalf("status transitions should be persisted as a batch")
	}
}

func TestProcessPublishesSignalOnDirectionFlip(t *testing.T) {
	mgr, _ := newTestManager(t)
	pub := &fakePublisher{}
	mgr.SetSignalPublisher(pub)
	ctx := context.Background()

	for _, c := range bullishGapCandles() {
		if err := mgr.Process(ctx, c); err != nil {
			t.Fatalf("Process: %v", err)
		}
	}
	// same direction on the next candle must not republish
	if err := mgr.Process(ctx, flatCandleAt(3, 102)); err != nil {
		t.Fatalf("Process: %v", err)
	}

	pub.mu.Lock()
	defer pub.mu.Unlock()
	if len(pub.signals) != 1 {
		t.Fatalf("expected exactly 1 published signal, got %d", len(pub.signals))
	}
	sig := pub.signals[0]
	if sig.Symbol != "BTCUSDT" || sig.Direction != models.SignalBullish {
		t.Fatalf("unexpected signal: %+v", sig)
	}
	if sig.Strength <= 0 {
		t.Fatalf("expected positive strength, got %f", sig.Strength)
	}
}

func TestProcessStoresCandles(t *testing.T) {
	mgr, _ := newTestManager(t)
	store := &fakeCandleStore{}
	mgr.SetCandleStore(store)
	ctx := context.Background()

	for _, c := range bullishGapCandles() {
		if err := mgr.Process(ctx, c); err != nil {
			t.Fatalf("Process: %v", err)
		}
	}
	if len(store.stored) != 3 {
		t.Fatalf("expected 3 stored candles, got %d", len(store.stored))
	}
}

func TestWarmupSeedsEngine(t *testing.T) {
	mgr, _ := newTestManager(t)
	series := bullishGapCandles()
	history := make([]models.Candle, 0, len(series))
	for _, c := range series {
		history = append(history, *c)
	}
	mgr.SetCandleStore(&fakeCandleStore{history: history})

	if err := mgr.Warmup(context.Background(), 10); err != nil {
		t.Fatalf("Warmup: %v", err)
	}

	gaps, err := mgr.Gaps("BTCUSDT")
	if err != nil {
		t.Fatalf("Gaps: %v", err)
	}
	if len(gaps) != 1 {
		t.Fatalf("expected warm engine with 1 gap, got %d", len(gaps))
	}
}

func TestQueriesUnknownSymbol(t *testing.T) {
	mgr, _ := newTestManager(t)
	if _, err := mgr.Gaps("DOGEUSDT"); err == nil {
		t.Fatal("expected error for untracked symbol")
	}
	if _, err := mgr.Statistics("DOGEUSDT"); err == nil {
		t.Fatal("expected error for untracked symbol")
	}
}

func TestProcessLazyEngineForNewSymbol(t *testing.T) {
	mgr, _ := newTestManager(t)
	c := flatCandleAt(0, 50)
	c.Symbol = "ETHUSDT"
	if err := mgr.Process(context.Background(), c); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if mgr.Engine("ETHUSDT") == nil {
		t.Fatal("expected engine created for new symbol")
	}
}
