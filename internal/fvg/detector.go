package fvg

import "GapSight/internal/domain/models"

// Candidate is a raw gap proposal before admission filtering.
type Candidate struct {
	Type   models.GapType
	Top    float64
	Bottom float64
}

// Detect scans a three-candle window (c1 oldest, c3 newest) for an imbalance.
// A bullish gap exists when the newest low cleared the oldest high without
// overlap; bearish is the mirror. The checks are mutually exclusive, so at
// most one candidate is produced per window. Pure function.
func Detect(c1, _, c3 models.Candle) (Candidate, bool) {
	if c1.High < c3.Low {
		return Candidate{Type: models.GapBullish, Top: c3.Low, Bottom: c1.High}, true
	}
	if c1.Low > c3.High {
		return Candidate{Type: models.GapBearish, Top: c1.Low, Bottom: c3.High}, true
	}
	return Candidate{}, false
}
