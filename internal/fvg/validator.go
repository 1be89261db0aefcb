package fvg

import (
	"math"

	"GapSight/internal/domain/models"
)

// ValidateCandidate applies admission filters to a raw candidate. c2 is the
// displacement candle (the middle of the detection window), avgVolume the
// trailing average volume at detection time. On acceptance it returns a gap
// in state Active with geometry and provenance populated; identity fields
// are assigned by the engine.
func ValidateCandidate(cfg Config, cand Candidate, c2 models.Candle, avgVolume float64) (*models.FairValueGap, bool) {
	if cand.Bottom <= 0 || cand.Top <= cand.Bottom {
		return nil, false
	}

	sizePct := (cand.Top - cand.Bottom) / cand.Bottom * 100
	if sizePct < cfg.sizeFloor() {
		return nil, false
	}

	// The displacement candle must be a decisive move: a real body,
	// not a wick-dominated spike.
	if bodyRatio(c2) < cfg.MinCandleBody {
		return nil, false
	}
	if wickRatio(c2) > cfg.MaxWickRatio {
		return nil, false
	}

	volRatio := 0.0
	if avgVolume > 0 {
		volRatio = c2.Volume / avgVolume
	}
	confirmed := volRatio >= cfg.VolumeMultiplier
	if cfg.RequireVolumeConfirmation && !confirmed {
		return nil, false
	}

	return &models.FairValueGap{
		CreatedAt:       c2.Timestamp,
		Type:            cand.Type,
		Status:          models.GapActive,
		Top:             cand.Top,
		Bottom:          cand.Bottom,
		Size:            sizePct,
		Midpoint:        (cand.Top + cand.Bottom) / 2,
		CreationVolume:  c2.Volume,
		VolumeRatio:     volRatio,
		VolumeConfirmed: confirmed,
	}, true
}

// bodyRatio is |close-open| / (high-low), 0 when the candle has no range.
func bodyRatio(c models.Candle) float64 {
	r := c.Range()
	if r <= 0 {
		return 0
	}
	return c.Body() / r
}

// wickRatio is (upper+lower wick) / body. A body of zero with any wick is
// treated as infinitely wick-dominated.
func wickRatio(c models.Candle) float64 {
	wicks := c.UpperWick() + c.LowerWick()
	body := c.Body()
	if body <= 0 {
		if wicks <= 0 {
			return 0
		}
		return math.Inf(1)
	}
	return wicks / body
}
