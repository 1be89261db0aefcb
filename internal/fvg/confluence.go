package fvg

import (
	"math"
	"sort"

	"GapSight/internal/domain/models"
)

// Read-side projections over the gap fleet. None of these mutate gap state.

// ActiveGaps returns copies of all open gaps, optionally filtered by age
// (maxAge <= 0 disables the filter).
func (e *Engine) ActiveGaps(maxAge int) []models.FairValueGap {
	var out []models.FairValueGap
	for _, g := range e.gaps {
		if !g.IsOpen() {
			continue
		}
		if maxAge > 0 && g.AgeInCandles > maxAge {
			continue
		}
		out = append(out, *g)
	}
	return out
}

// StrongGaps returns open gaps with strength at or above the threshold.
func (e *Engine) StrongGaps(minStrength float64) []models.FairValueGap {
	var out []models.FairValueGap
	for _, g := range e.gaps {
		if g.IsOpen() && g.Strength >= minStrength {
			out = append(out, *g)
		}
	}
	return out
}

// NearPrice returns open gaps whose zone lies within tolerancePct of price,
// sorted by absolute distance to midpoint ascending. Proximity is measured
// to the nearest zone edge, not the midpoint: a wide gap whose edge reaches
// into the band qualifies even when its midpoint sits outside it.
func (e *Engine) NearPrice(price, tolerancePct float64) []models.FairValueGap {
	tol := price * tolerancePct / 100
	var out []models.FairValueGap
	for _, g := range e.gaps {
		if g.IsOpen() && distanceToZone(price, g.Bottom, g.Top) <= tol {
			out = append(out, *g)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return math.Abs(out[i].Midpoint-price) < math.Abs(out[j].Midpoint-price)
	})
	return out
}

// Signal aggregates the directional bias of gaps near the current price.
// A single-direction cluster emits that direction with the cluster's mean
// strength; mixed or empty clusters are neutral with zero strength. Up to
// five key levels are drawn from the strong gaps regardless of direction.
func (e *Engine) Signal(price float64) models.GapSignal {
	sig := models.GapSignal{
		Symbol:    e.symbol,
		Price:     price,
		Direction: models.SignalNeutral,
		KeyLevels: e.keyLevels(),
	}

	var bullish, bearish []models.FairValueGap
	for _, g := range e.NearPrice(price, e.cfg.SignalTolerancePct) {
		switch g.Type {
		case models.GapBullish:
			bullish = append(bullish, g)
		case models.GapBearish:
			bearish = append(bearish, g)
		}
	}

	switch {
	case len(bullish) > 0 && len(bearish) == 0:
		sig.Direction = models.SignalBullish
		sig.Strength = meanStrength(bullish)
	case len(bearish) > 0 && len(bullish) == 0:
		sig.Direction = models.SignalBearish
		sig.Strength = meanStrength(bearish)
	}
	return sig
}

// Statistics summarizes the full gap fleet.
func (e *Engine) Statistics() models.GapStatistics {
	return Summarize(e.gaps)
}

func (e *Engine) keyLevels() []models.KeyLevel {
	strong := e.StrongGaps(e.cfg.MinKeyLevelStrength)
	sort.Slice(strong, func(i, j int) bool { return strong[i].Strength > strong[j].Strength })
	if len(strong) > 5 {
		strong = strong[:5]
	}
	levels := make([]models.KeyLevel, 0, len(strong))
	for _, g := range strong {
		levels = append(levels, models.KeyLevel{Price: g.Midpoint, Type: g.Type, Strength: g.Strength})
	}
	return levels
}

// distanceToZone is 0 when price is inside [bottom, top], otherwise the gap
// to the nearest edge.
func distanceToZone(price, bottom, top float64) float64 {
	switch {
	case price < bottom:
		return bottom - price
	case price > top:
		return price - top
	default:
		return 0
	}
}

func meanStrength(gaps []models.FairValueGap) float64 {
	sum := 0.0
	for _, g := range gaps {
		sum += g.Strength
	}
	return sum / float64(len(gaps))
}
