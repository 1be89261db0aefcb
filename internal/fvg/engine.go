package fvg

import (
	"fmt"

	"GapSight/internal/domain/models"
	xlogger "GapSight/pkg/logger"
)

// Engine is the single mutable owner of one symbol's candle history and gap
// fleet. It is not safe for concurrent use: the design is one engine per
// price stream, exclusively owned by one goroutine, with any sharing
// synchronized by the caller.
type Engine struct {
	cfg    Config
	symbol string
	logger *xlogger.Logger

	candles []models.Candle
	gaps    []*models.FairValueGap
	seq     int // id sequence, reset on Reset
	index   int // accepted candles since reset
}

// NewEngine constructs an engine for one symbol. The configuration is
// validated here and never again.
func NewEngine(symbol string, cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{cfg: cfg, symbol: symbol}, nil
}

// SetLogger attaches an optional logger for malformed-candle warnings
// during bulk replay.
func (e *Engine) SetLogger(l *xlogger.Logger) { e.logger = l }

// Symbol returns the symbol this engine tracks.
func (e *Engine) Symbol() string { return e.symbol }

// Config returns the engine's configuration bundle.
func (e *Engine) Config() Config { return e.cfg }

// Reset discards all candle history, gaps and the id sequence.
func (e *Engine) Reset() {
	e.candles = nil
	e.gaps = nil
	e.seq = 0
	e.index = 0
}

// Calculate replays an entire historical series from scratch: internal state
// is reset and every candle reprocessed. Fewer than three candles is an
// error. Malformed candles are skipped with a warning and do not abort the
// replay. Replaying the same input twice produces an identical gap
// collection.
func (e *Engine) Calculate(candles []models.Candle) error {
	if len(candles) < 3 {
		return ErrInsufficientData
	}
	e.Reset()
	for _, c := range candles {
		if _, err := e.AddCandle(c); err != nil {
			if e.logger != nil {
				e.logger.Warn("candle skipped",
					xlogger.String("symbol", e.symbol),
					xlogger.Error(err),
				)
			}
		}
	}
	return nil
}

// AddCandle ingests one candle: existing open gaps advance their lifecycle
// against the new close, then the trailing three-candle window is scanned for
// at most one new gap, then strength is recomputed for every open gap.
// Returns the newly created gap, if any. A malformed or out-of-order candle
// yields a *CandleError and leaves all state untouched.
func (e *Engine) AddCandle(c models.Candle) (*models.FairValueGap, error) {
	if !c.IsWellFormed() {
		return nil, &CandleError{Timestamp: c.Timestamp, Reason: "non-finite or inverted fields"}
	}
	if n := len(e.candles); n > 0 && !c.Timestamp.After(e.candles[n-1].Timestamp) {
		return nil, &CandleError{Timestamp: c.Timestamp, Reason: "timestamp not increasing"}
	}

	// Gaps that existed before this candle age and fill against it. The gap
	// created below finishes this tick at age zero, untouched by its own
	// displacement candle.
	for _, g := range e.gaps {
		UpdateLifecycle(g, c.Close, c.Timestamp, e.cfg.MaxGapAge)
	}

	e.candles = append(e.candles, c)
	e.index++
	e.trimHistory()

	var created *models.FairValueGap
	if n := len(e.candles); n >= 3 {
		c1, c2, c3 := e.candles[n-3], e.candles[n-2], e.candles[n-1]
		if cand, ok := Detect(c1, c2, c3); ok {
			if g, ok := ValidateCandidate(e.cfg, cand, c2, e.trailingAvgVolume()); ok {
				e.seq++
				g.ID = fmt.Sprintf("fvg_%d", e.seq)
				g.Symbol = e.symbol
				g.CreatedIndex = e.index - 2 // stream position of the displacement candle
				e.gaps = append(e.gaps, g)
				created = g
			}
		}
	}

	for _, g := range e.gaps {
		if !g.IsTerminal() {
			g.Strength = Score(g)
		}
	}
	return created, nil
}

// trailingAvgVolume averages volume over the configured window ending at the
// newest candle.
func (e *Engine) trailingAvgVolume() float64 {
	n := len(e.candles)
	if n == 0 {
		return 0
	}
	w := e.cfg.VolumeWindow
	if w > n {
		w = n
	}
	sum := 0.0
	for _, c := range e.candles[n-w:] {
		sum += c.Volume
	}
	return sum / float64(w)
}

// trimHistory bounds the candle buffer to max(2*MaxGapAge, 200) most recent
// candles.
func (e *Engine) trimHistory() {
	limit := 2 * e.cfg.MaxGapAge
	if limit < 200 {
		limit = 200
	}
	if extra := len(e.candles) - limit; extra > 0 {
		e.candles = append(e.candles[:0], e.candles[extra:]...)
	}
}

// CandleCount returns the number of candles accepted since the last reset.
func (e *Engine) CandleCount() int { return e.index }

// LastClose returns the most recent close price, or 0 with no history.
func (e *Engine) LastClose() float64 {
	if len(e.candles) == 0 {
		return 0
	}
	return e.candles[len(e.candles)-1].Close
}

// Gaps returns a copy of the full gap collection in creation order.
func (e *Engine) Gaps() []models.FairValueGap {
	out := make([]models.FairValueGap, len(e.gaps))
	for i, g := range e.gaps {
		out[i] = *g
	}
	return out
}

// Export returns the gap collection as plain records for any downstream
// store or renderer. Identical to Gaps; the name mirrors its purpose.
func (e *Engine) Export() []models.FairValueGap { return e.Gaps() }
