package fvg

import (
	"math"
	"testing"

	"GapSight/internal/domain/models"
)

func TestScoreMaximal(t *testing.T) {
	// Size at cap, confirmed volume at cap, brand new, untouched.
	g := &models.FairValueGap{
		Size:            2.0,
		VolumeRatio:     3.0,
		VolumeConfirmed: true,
	}
	if s := Score(g); math.Abs(s-1.0) > 1e-9 {
		t.Fatalf("expected strength 1.0, got %v", s)
	}
}

func TestScoreComponents(t *testing.T) {
	// Half-size, unconfirmed, half-aged, two touches:
	// 0.4*0.5 + 0 + 0.2*0.5 + 0.1*0.6 = 0.36
	g := &models.FairValueGap{
		Size:            1.0,
		VolumeRatio:     2.5,
		VolumeConfirmed: false,
		AgeInCandles:    25,
		TouchCount:      2,
	}
	if s := Score(g); math.Abs(s-0.36) > 1e-9 {
		t.Fatalf("expected strength 0.36, got %v", s)
	}
}

func TestScoreBounded(t *testing.T) {
	cases := []*models.FairValueGap{
		{},
		{Size: 50, VolumeRatio: 100, VolumeConfirmed: true},
		{AgeInCandles: 10000, TouchCount: 10000},
		{Size: 0.01, VolumeRatio: 0.01, VolumeConfirmed: true, AgeInCandles: 49, TouchCount: 4},
	}
	for i, g := range cases {
		s := Score(g)
		if s < 0 || s > 1 {
			t.Fatalf("case %d: strength out of bounds: %v", i, s)
		}
	}
}

func TestEngineRecomputesStrength(t *testing.T) {
	e := mustEngine(t, testConfig())
	if err := e.Calculate(bullishGapSeries()); err != nil {
		t.Fatalf("calculate: %v", err)
	}
	young := e.Gaps()[0].Strength
	if young <= 0 || young > 1 {
		t.Fatalf("strength out of bounds: %v", young)
	}

	// Aging with no contact decays the age component.
	for i := 0; i < 10; i++ {
		if _, err := e.AddCandle(flatCandle(3+i, 102.9)); err != nil {
			t.Fatalf("add candle: %v", err)
		}
	}
	aged := e.Gaps()[0].Strength
	if aged >= young {
		t.Fatalf("strength should decay with age: %v -> %v", young, aged)
	}
}
