package fvg

import "GapSight/internal/domain/models"

// Summarize derives fleet-level statistics from a gap collection.
// An empty collection yields a zeroed summary, not an error.
func Summarize(gaps []*models.FairValueGap) models.GapStatistics {
	var s models.GapStatistics
	if len(gaps) == 0 {
		return s
	}

	var strengthSum, sizeSum float64
	for _, g := range gaps {
		s.Total++
		switch g.Status {
		case models.GapActive, models.GapPartiallyFilled:
			s.Active++
		case models.GapFilled:
			s.Filled++
		case models.GapExpired:
			s.Expired++
		}
		switch g.Type {
		case models.GapBullish:
			s.Bullish++
		case models.GapBearish:
			s.Bearish++
		}
		strengthSum += g.Strength
		sizeSum += g.Size
	}

	n := float64(s.Total)
	s.AvgStrength = strengthSum / n
	s.AvgSize = sizeSum / n
	s.FillRate = float64(s.Filled) / n * 100
	return s
}
