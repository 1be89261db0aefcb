package fvg

import (
	"testing"

	"GapSight/internal/domain/models"
)

func TestDetectBullish(t *testing.T) {
	c1 := candleAt(0, 99.5, 100, 99, 99.8, 10)
	c2 := candleAt(1, 100, 102, 100, 102, 30)
	c3 := candleAt(2, 102, 103, 102, 102.5, 10)

	cand, ok := Detect(c1, c2, c3)
	if !ok {
		t.Fatalf("expected a candidate")
	}
	if cand.Type != models.GapBullish {
		t.Fatalf("expected bullish, got %s", cand.Type)
	}
	if cand.Top != c3.Low || cand.Bottom != c1.High {
		t.Fatalf("geometry must be [c1.High, c3.Low], got [%v, %v]", cand.Bottom, cand.Top)
	}
}

func TestDetectBearish(t *testing.T) {
	c1 := candleAt(0, 102.5, 103, 102, 102.5, 10)
	c2 := candleAt(1, 102, 102, 100, 100, 30)
	c3 := candleAt(2, 99.8, 100, 99, 99.5, 10)

	cand, ok := Detect(c1, c2, c3)
	if !ok {
		t.Fatalf("expected a candidate")
	}
	if cand.Type != models.GapBearish {
		t.Fatalf("expected bearish, got %s", cand.Type)
	}
	if cand.Top != c1.Low || cand.Bottom != c3.High {
		t.Fatalf("geometry must be [c3.High, c1.Low], got [%v, %v]", cand.Bottom, cand.Top)
	}
}

func TestDetectNoGapOnOverlap(t *testing.T) {
	c1 := candleAt(0, 100, 101, 99, 100.5, 10)
	c2 := candleAt(1, 100.5, 101.5, 100, 101, 10)
	c3 := candleAt(2, 101, 102, 100.5, 101.5, 10)

	if _, ok := Detect(c1, c2, c3); ok {
		t.Fatalf("overlapping candles must not produce a candidate")
	}
}

func TestDetectTouchingRangesAreNotGaps(t *testing.T) {
	// c1.High == c3.Low: no strict imbalance.
	c1 := candleAt(0, 99.5, 100, 99, 99.8, 10)
	c2 := candleAt(1, 100, 102, 100, 102, 30)
	c3 := candleAt(2, 100, 103, 100, 102.5, 10)

	if _, ok := Detect(c1, c2, c3); ok {
		t.Fatalf("touching ranges must not produce a candidate")
	}
}

func TestValidatorSizeFloor(t *testing.T) {
	cfg := testConfig() // floor is gap_threshold = 1%
	c2 := candleAt(1, 100, 102, 100, 102, 30)

	// 0.5% gap: below the floor.
	small := Candidate{Type: models.GapBullish, Top: 100.5, Bottom: 100}
	if _, ok := ValidateCandidate(cfg, small, c2, 10); ok {
		t.Fatalf("gap below size floor must be rejected")
	}

	// 2% gap: admitted.
	big := Candidate{Type: models.GapBullish, Top: 102, Bottom: 100}
	g, ok := ValidateCandidate(cfg, big, c2, 10)
	if !ok {
		t.Fatalf("gap above size floor must be admitted")
	}
	if g.Status != models.GapActive {
		t.Fatalf("admitted gap must start active, got %s", g.Status)
	}
}

func TestValidatorBodyAndWickFilters(t *testing.T) {
	cfg := testConfig()
	cand := Candidate{Type: models.GapBullish, Top: 102, Bottom: 100}

	// Tiny body relative to range.
	doji := candleAt(1, 101, 103, 99, 101.1, 30)
	if _, ok := ValidateCandidate(cfg, cand, doji, 10); ok {
		t.Fatalf("doji displacement candle must be rejected")
	}

	// Body passes (1.2/3.8 > 0.3) but wicks dominate: (1.3+1.3)/1.2 > max 2.0.
	spike := candleAt(1, 100, 102.5, 98.7, 101.2, 30)
	if _, ok := ValidateCandidate(cfg, cand, spike, 10); ok {
		t.Fatalf("wick-dominated displacement candle must be rejected")
	}
}

func TestValidatorVolumeConfirmation(t *testing.T) {
	cfg := testConfig() // multiplier 1.5, soft by default
	cand := Candidate{Type: models.GapBullish, Top: 102, Bottom: 100}
	c2 := candleAt(1, 100, 102, 100, 102, 30)

	// Ratio 30/25 = 1.2 < 1.5: created, flagged unconfirmed.
	g, ok := ValidateCandidate(cfg, cand, c2, 25)
	if !ok {
		t.Fatalf("soft volume policy must still create the gap")
	}
	if g.VolumeConfirmed {
		t.Fatalf("ratio below multiplier must not be confirmed")
	}
	if g.VolumeRatio < 1.19 || g.VolumeRatio > 1.21 {
		t.Fatalf("unexpected volume ratio %v", g.VolumeRatio)
	}

	// Hard policy rejects the same candidate.
	cfg.RequireVolumeConfirmation = true
	if _, ok := ValidateCandidate(cfg, cand, c2, 25); ok {
		t.Fatalf("hard volume policy must reject unconfirmed gaps")
	}

	// Confirmed either way with enough volume.
	g, ok = ValidateCandidate(cfg, cand, c2, 10)
	if !ok || !g.VolumeConfirmed {
		t.Fatalf("ratio 3.0 must confirm, got %+v ok=%v", g, ok)
	}
}
