package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"GapSight/internal/domain/models"
	drepo "GapSight/internal/domain/repository"
	"GapSight/internal/fvg"
	xlogger "GapSight/pkg/logger"
)

// EngineManager owns one gap engine per symbol and routes incoming
// candles to them. It is the downstream processor of the candle
// pipeline and the source of truth for the read-side API.
type EngineManager struct {
	cfg     fvg.Config
	logger  *xlogger.Logger
	metrics drepo.Metrics

	candles drepo.CandleStore // optional
	gaps    drepo.GapStore    // optional
	signals drepo.SignalPublisher

	mu      sync.RWMutex
	engines map[string]*fvg.Engine

	// last observed status per gap id, used to detect transitions
	seen map[string]map[string]models.GapStatus
	// last published signal direction per symbol
	lastDir map[string]models.SignalDirection
}

// NewEngineManager creates a manager with pre-registered engines for
// the given symbols. Unknown symbols arriving later get an engine
// lazily.
func NewEngineManager(cfg fvg.Config, symbols []string, logger *xlogger.Logger, metrics drepo.Metrics) (*EngineManager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	m := &EngineManager{
		cfg:     cfg,
		logger:  logger,
		metrics: metrics,
		engines: make(map[string]*fvg.Engine),
		seen:    make(map[string]map[string]models.GapStatus),
		lastDir: make(map[string]models.SignalDirection),
	}
	for _, s := range symbols {
		if _, err := m.engine(s); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// SetCandleStore enables candle persistence and warm-up reads.
func (m *EngineManager) SetCandleStore(s drepo.CandleStore) { m.candles = s }

// SetGapStore enables gap snapshot persistence.
func (m *EngineManager) SetGapStore(s drepo.GapStore) { m.gaps = s }

// SetSignalPublisher enables signal publishing on direction changes.
func (m *EngineManager) SetSignalPublisher(p drepo.SignalPublisher) { m.signals = p }

func (m *EngineManager) engine(symbol string) (*fvg.Engine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.engines[symbol]; ok {
		return e, nil
	}
	e, err := fvg.NewEngine(symbol, m.cfg)
	if err != nil {
		return nil, err
	}
	e.SetLogger(m.logger)
	m.engines[symbol] = e
	m.seen[symbol] = make(map[string]models.GapStatus)
	return e, nil
}

// Engine returns the engine for a symbol, or nil when the symbol is
// not tracked yet.
func (m *EngineManager) Engine(symbol string) *fvg.Engine {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.engines[symbol]
}

// Symbols lists the tracked symbols.
func (m *EngineManager) Symbols() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.engines))
	for s := range m.engines {
		out = append(out, s)
	}
	return out
}

// Warmup seeds each engine with recent history from the candle store
// so gap state is meaningful before the first live candle arrives.
func (m *EngineManager) Warmup(ctx context.Context, n int) error {
	if m.candles == nil || n < 3 {
		return nil
	}
	for _, symbol := range m.Symbols() {
		history, err := m.candles.LatestN(ctx, symbol, n)
		if err != nil {
			return fmt.Errorf("warmup %s: %w", symbol, err)
		}
		if len(history) < 3 {
			m.logger.Warn("warmup: not enough history",
				xlogger.String("symbol", symbol), xlogger.Int("candles", len(history)))
			continue
		}
		e, err := m.engine(symbol)
		if err != nil {
			return err
		}
		if err := e.Calculate(history); err != nil {
			return fmt.Errorf("warmup %s: %w", symbol, err)
		}
		m.observeTransitions(ctx, symbol, e)
		m.logger.Info("warmup: engine seeded",
			xlogger.String("symbol", symbol),
			xlogger.Int("candles", len(history)),
			xlogger.Int("gaps", len(e.Gaps())))
	}
	return nil
}

// Process ingests one candle, implementing the pipeline Proc interface.
func (m *EngineManager) Process(ctx context.Context, c *models.Candle) error {
	start := time.Now()
	e, err := m.engine(c.Symbol)
	if err != nil {
		return err
	}

	m.mu.Lock()
	created, err := e.AddCandle(*c)
	m.mu.Unlock()
	if err != nil {
		m.metrics.RecordError("engine_add_candle")
		return err
	}

	m.metrics.RecordCandle(c.Symbol)
	m.metrics.RecordLastPrice(c.Symbol, c.Close)

	if m.candles != nil {
		if err := m.candles.StoreBatch(ctx, []*models.Candle{c}); err != nil {
			m.metrics.RecordError("candle_store")
			m.logger.Warn("candle store failed", xlogger.String("symbol", c.Symbol), xlogger.Error(err))
		}
	}

	if created != nil {
		m.metrics.RecordGapDetected(c.Symbol, string(created.Type))
		m.logger.Info("gap detected",
			xlogger.String("symbol", c.Symbol),
			xlogger.String("id", created.ID),
			xlogger.String("type", string(created.Type)),
			xlogger.Float64("top", created.Top),
			xlogger.Float64("bottom", created.Bottom),
			xlogger.Float64("size_pct", created.Size))
		m.storeSnapshot(ctx, created)
	}

	m.observeTransitions(ctx, c.Symbol, e)
	m.publishSignal(ctx, c.Symbol, e, c.Close)

	m.metrics.RecordLatency("engine_process", time.Since(start).Seconds())
	return nil
}

// observeTransitions persists and counts gaps whose status changed
// since the last tick.
func (m *EngineManager) observeTransitions(ctx context.Context, symbol string, e *fvg.Engine) {
	m.mu.Lock()
	seen := m.seen[symbol]
	active := 0
	var changed []models.FairValueGap
	for _, g := range e.Gaps() {
		if g.IsOpen() {
			active++
		}
		prev, known := seen[g.ID]
		if known && prev == g.Status {
			continue
		}
		seen[g.ID] = g.Status
		if !known {
			continue
		}
		if g.IsTerminal() {
			m.metrics.RecordGapTerminal(symbol, string(g.Status))
		}
		changed = append(changed, g)
	}
	m.mu.Unlock()

	m.metrics.RecordActiveGaps(symbol, active)
	m.storeSnapshots(ctx, changed)
}

func (m *EngineManager) storeSnapshot(ctx context.Context, g *models.FairValueGap) {
	if m.gaps == nil {
		return
	}
	if err := m.gaps.StoreSnapshot(ctx, g); err != nil {
		m.metrics.RecordError("gap_store")
		m.logger.Warn("gap snapshot failed", xlogger.String("id", g.ID), xlogger.Error(err))
	}
}

func (m *EngineManager) storeSnapshots(ctx context.Context, gaps []models.FairValueGap) {
	if m.gaps == nil || len(gaps) == 0 {
		return
	}
	if err := m.gaps.StoreSnapshotBatch(ctx, gaps); err != nil {
		m.metrics.RecordError("gap_store")
		m.logger.Warn("gap snapshot batch failed", xlogger.Int("gaps", len(gaps)), xlogger.Error(err))
	}
}

// publishSignal emits the confluence signal when its direction flips
// to a non-neutral value.
func (m *EngineManager) publishSignal(ctx context.Context, symbol string, e *fvg.Engine, price float64) {
	if m.signals == nil {
		return
	}

	m.mu.Lock()
	sig := e.Signal(price)
	last := m.lastDir[symbol]
	if sig.Direction == last || sig.Direction == models.SignalNeutral {
		m.lastDir[symbol] = sig.Direction
		m.mu.Unlock()
		return
	}
	m.lastDir[symbol] = sig.Direction
	m.mu.Unlock()

	sig.Symbol = symbol
	if err := m.signals.Publish(ctx, &sig); err != nil {
		m.metrics.RecordError("signal_publish")
		m.logger.Warn("signal publish failed", xlogger.String("symbol", symbol), xlogger.Error(err))
		return
	}
	m.logger.Info("signal published",
		xlogger.String("symbol", symbol),
		xlogger.String("direction", string(sig.Direction)),
		xlogger.Float64("strength", sig.Strength))
}
