package fvg

import (
	"math"
	"testing"

	"GapSight/internal/domain/models"
)

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	if s.Total != 0 || s.Active != 0 || s.Filled != 0 ||
		s.AvgStrength != 0 || s.AvgSize != 0 || s.FillRate != 0 {
		t.Fatalf("empty collection must yield a zeroed summary, got %+v", s)
	}
}

func TestSummarizeCounts(t *testing.T) {
	gaps := []*models.FairValueGap{
		{Type: models.GapBullish, Status: models.GapActive, Size: 1.0, Strength: 0.8},
		{Type: models.GapBullish, Status: models.GapPartiallyFilled, Size: 2.0, Strength: 0.6},
		{Type: models.GapBearish, Status: models.GapFilled, Size: 3.0, Strength: 0.2},
		{Type: models.GapBearish, Status: models.GapExpired, Size: 2.0, Strength: 0.0},
	}
	s := Summarize(gaps)

	if s.Total != 4 || s.Active != 2 || s.Filled != 1 || s.Expired != 1 {
		t.Fatalf("unexpected status counts: %+v", s)
	}
	if s.Bullish != 2 || s.Bearish != 2 {
		t.Fatalf("unexpected type counts: %+v", s)
	}
	if math.Abs(s.AvgSize-2.0) > 1e-9 {
		t.Fatalf("expected avg size 2.0, got %v", s.AvgSize)
	}
	if math.Abs(s.AvgStrength-0.4) > 1e-9 {
		t.Fatalf("expected avg strength 0.4, got %v", s.AvgStrength)
	}
	if math.Abs(s.FillRate-25.0) > 1e-9 {
		t.Fatalf("expected fill rate 25, got %v", s.FillRate)
	}
}

func TestEngineStatisticsMatchesSummarize(t *testing.T) {
	e := mustEngine(t, testConfig())
	if err := e.Calculate(bullishGapSeries()); err != nil {
		t.Fatalf("calculate: %v", err)
	}
	s := e.Statistics()
	if s.Total != 1 || s.Active != 1 || s.Bullish != 1 {
		t.Fatalf("unexpected engine statistics: %+v", s)
	}
}
