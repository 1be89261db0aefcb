package fvg

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"GapSight/internal/domain/models"
)

var t0 = time.Date(2024, 10, 10, 10, 0, 0, 0, time.UTC)

func candleAt(i int, o, h, l, c, v float64) models.Candle {
	return models.Candle{
		Timestamp: t0.Add(time.Duration(i) * time.Minute),
		Open:      o, High: h, Low: l, Close: c, Volume: v,
	}
}

func flatCandle(i int, price float64) models.Candle {
	return candleAt(i, price, price, price, price, 10)
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.GapThreshold = 1.0
	cfg.MinGapSize = 0.5
	cfg.MaxGapAge = 50
	return cfg
}

// bullishGapSeries is the three-candle setup of a 2% bullish gap:
// c1.High=100 < c3.Low=102, displacement candle c2 with a full body.
func bullishGapSeries() []models.Candle {
	return []models.Candle{
		candleAt(0, 99.5, 100, 99, 99.8, 10),
		candleAt(1, 100, 102, 100, 102, 30),
		candleAt(2, 102, 103, 102, 102.5, 10),
	}
}

func mustEngine(t *testing.T, cfg Config) *Engine {
	t.Helper()
	e, err := NewEngine("BTCUSDT", cfg)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return e
}

func TestCalculateDetectsBullishGap(t *testing.T) {
	e := mustEngine(t, testConfig())
	if err := e.Calculate(bullishGapSeries()); err != nil {
		t.Fatalf("calculate: %v", err)
	}

	gaps := e.Gaps()
	if len(gaps) != 1 {
		t.Fatalf("expected 1 gap, got %d", len(gaps))
	}
	g := gaps[0]
	if g.Type != models.GapBullish {
		t.Fatalf("expected bullish, got %s", g.Type)
	}
	if g.Top != 102 || g.Bottom != 100 {
		t.Fatalf("unexpected geometry top=%v bottom=%v", g.Top, g.Bottom)
	}
	if g.Size < 1.99 || g.Size > 2.01 {
		t.Fatalf("expected size ~2.0, got %v", g.Size)
	}
	if g.Midpoint != 101 {
		t.Fatalf("expected midpoint 101, got %v", g.Midpoint)
	}
	if g.Status != models.GapActive {
		t.Fatalf("expected active, got %s", g.Status)
	}
	if g.AgeInCandles != 0 {
		t.Fatalf("expected age 0 at creation, got %d", g.AgeInCandles)
	}
	if g.ID != "fvg_1" || g.CreatedIndex != 1 {
		t.Fatalf("unexpected identity id=%s index=%d", g.ID, g.CreatedIndex)
	}
	if !g.CreatedAt.Equal(t0.Add(time.Minute)) {
		t.Fatalf("creation timestamp should come from the middle candle, got %v", g.CreatedAt)
	}
	if g.CreationVolume != 30 {
		t.Fatalf("creation volume should come from the middle candle, got %v", g.CreationVolume)
	}
}

func TestPartialThenFullFill(t *testing.T) {
	e := mustEngine(t, testConfig())
	if err := e.Calculate(bullishGapSeries()); err != nil {
		t.Fatalf("calculate: %v", err)
	}

	// Close descends into the zone: fill = (102-100.5)/2 * 100 = 75.
	if _, err := e.AddCandle(candleAt(3, 101.5, 101.6, 100.4, 100.5, 10)); err != nil {
		t.Fatalf("add candle: %v", err)
	}
	g := e.Gaps()[0]
	if g.Status != models.GapPartiallyFilled {
		t.Fatalf("expected partially_filled, got %s", g.Status)
	}
	if g.FillPercentage < 74.9 || g.FillPercentage > 75.1 {
		t.Fatalf("expected fill ~75, got %v", g.FillPercentage)
	}
	if g.FirstTouchAt == nil || g.TouchCount != 1 {
		t.Fatalf("expected first touch recorded, touches=%d", g.TouchCount)
	}

	// Close below the bottom: fully filled.
	if _, err := e.AddCandle(candleAt(4, 100.4, 100.5, 98.9, 99, 10)); err != nil {
		t.Fatalf("add candle: %v", err)
	}
	g = e.Gaps()[0]
	if g.Status != models.GapFilled {
		t.Fatalf("expected filled, got %s", g.Status)
	}
	if g.FillPercentage != 100 {
		t.Fatalf("expected fill 100, got %v", g.FillPercentage)
	}
	if g.FilledAt == nil {
		t.Fatalf("expected fill timestamp")
	}

	// Terminal state never mutates.
	before := g
	if _, err := e.AddCandle(candleAt(5, 99, 110, 99, 110, 10)); err != nil {
		t.Fatalf("add candle: %v", err)
	}
	after := e.Gaps()[0]
	if after.Status != before.Status || after.FillPercentage != before.FillPercentage || after.AgeInCandles != before.AgeInCandles {
		t.Fatalf("terminal gap mutated: %+v -> %+v", before, after)
	}
}

func TestExpiryByAge(t *testing.T) {
	e := mustEngine(t, testConfig())
	if err := e.Calculate(bullishGapSeries()); err != nil {
		t.Fatalf("calculate: %v", err)
	}

	// 51 candles with no price contact (closes stay above the zone top).
	for i := 0; i < 51; i++ {
		if _, err := e.AddCandle(flatCandle(3+i, 102.9)); err != nil {
			t.Fatalf("add candle %d: %v", i, err)
		}
		g := e.Gaps()[0]
		if i < 50 && g.Status != models.GapActive {
			t.Fatalf("gap should stay active through candle %d, got %s", i, g.Status)
		}
	}
	g := e.Gaps()[0]
	if g.Status != models.GapExpired {
		t.Fatalf("expected expired after 51 untouched candles, got %s", g.Status)
	}
	if g.TouchCount != 0 || g.FillPercentage != 0 {
		t.Fatalf("expired gap should be untouched, touches=%d fill=%v", g.TouchCount, g.FillPercentage)
	}
}

func TestCalculateInsufficientData(t *testing.T) {
	e := mustEngine(t, testConfig())
	err := e.Calculate(bullishGapSeries()[:2])
	if !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
}

func TestCalculateIdempotent(t *testing.T) {
	series := bullishGapSeries()
	// Extend with a mixed tail: partial fill, recovery, a second gap setup.
	series = append(series,
		candleAt(3, 102.5, 102.6, 100.8, 101, 12),
		candleAt(4, 101, 104, 101, 104, 40),
		candleAt(5, 104.2, 106, 104.2, 105.8, 15),
		candleAt(6, 105.8, 106, 104.9, 105, 11),
	)

	e1 := mustEngine(t, testConfig())
	e2 := mustEngine(t, testConfig())
	if err := e1.Calculate(series); err != nil {
		t.Fatalf("first replay: %v", err)
	}
	if err := e2.Calculate(series); err != nil {
		t.Fatalf("second replay: %v", err)
	}
	if !reflect.DeepEqual(e1.Export(), e2.Export()) {
		t.Fatalf("bulk replay not idempotent:\n%+v\n%+v", e1.Export(), e2.Export())
	}

	// Replaying on the same engine also reproduces the collection.
	first := e1.Export()
	if err := e1.Calculate(series); err != nil {
		t.Fatalf("re-replay: %v", err)
	}
	if !reflect.DeepEqual(first, e1.Export()) {
		t.Fatalf("replay on same engine diverged")
	}
}

func TestMalformedCandleSkipped(t *testing.T) {
	e := mustEngine(t, testConfig())
	if err := e.Calculate(bullishGapSeries()); err != nil {
		t.Fatalf("calculate: %v", err)
	}

	var ce *CandleError
	if _, err := e.AddCandle(candleAt(3, 100, 99, 101, 100, 10)); !errors.As(err, &ce) {
		t.Fatalf("expected CandleError for inverted high/low, got %v", err)
	}
	// Out-of-order timestamp is rejected too.
	if _, err := e.AddCandle(candleAt(1, 102, 103, 102, 102.5, 10)); !errors.As(err, &ce) {
		t.Fatalf("expected CandleError for stale timestamp, got %v", err)
	}
	// The rejected candles left no trace.
	if e.CandleCount() != 3 {
		t.Fatalf("rejected candles must not be counted, got %d", e.CandleCount())
	}
	g := e.Gaps()[0]
	if g.AgeInCandles != 0 || g.Status != models.GapActive {
		t.Fatalf("rejected candle advanced gap state: %+v", g)
	}
}

func TestMonotonicFillAcrossTicks(t *testing.T) {
	e := mustEngine(t, testConfig())
	if err := e.Calculate(bullishGapSeries()); err != nil {
		t.Fatalf("calculate: %v", err)
	}

	closes := []float64{101.5, 100.6, 101.8, 100.2, 101.9, 100.1}
	prev := 0.0
	for i, cl := range closes {
		if _, err := e.AddCandle(candleAt(3+i, cl, cl+0.1, cl-0.1, cl, 10)); err != nil {
			t.Fatalf("add candle: %v", err)
		}
		g := e.Gaps()[0]
		if g.FillPercentage < prev {
			t.Fatalf("fill percentage decreased: %v -> %v", prev, g.FillPercentage)
		}
		prev = g.FillPercentage
	}
}

func TestHistoryBufferBounded(t *testing.T) {
	e := mustEngine(t, testConfig())
	for i := 0; i < 500; i++ {
		if _, err := e.AddCandle(flatCandle(i, 100)); err != nil {
			t.Fatalf("add candle: %v", err)
		}
	}
	// max(2*MaxGapAge, 200) with MaxGapAge=50 is 200.
	if len(e.candles) != 200 {
		t.Fatalf("expected buffer of 200 candles, got %d", len(e.candles))
	}
	if e.CandleCount() != 500 {
		t.Fatalf("stream index should keep counting, got %d", e.CandleCount())
	}
}

func TestResetClearsState(t *testing.T) {
	e := mustEngine(t, testConfig())
	if err := e.Calculate(bullishGapSeries()); err != nil {
		t.Fatalf("calculate: %v", err)
	}
	e.Reset()
	if len(e.Gaps()) != 0 || e.CandleCount() != 0 || e.LastClose() != 0 {
		t.Fatalf("reset left state behind")
	}
}
