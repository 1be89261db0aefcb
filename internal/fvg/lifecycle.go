package fvg

import (
	"time"

	"GapSight/internal/domain/models"
)

// UpdateLifecycle advances one non-terminal gap by one candle tick. price is
// the candle's close, ts its timestamp. Fill percentage is monotone
// non-decreasing and touch count only grows; terminal gaps are never mutated.
func UpdateLifecycle(g *models.FairValueGap, price float64, ts time.Time, maxAge int) {
	if g.IsTerminal() {
		return
	}

	g.AgeInCandles++
	if g.AgeInCandles > maxAge {
		g.Status = models.GapExpired
		return
	}

	switch g.Type {
	case models.GapBullish:
		// Price descends into the zone from above.
		if price > g.Top {
			return
		}
		touch(g, ts)
		if price <= g.Bottom {
			fill(g, ts)
			return
		}
		partialFill(g, (g.Top-price)/(g.Top-g.Bottom)*100)
	case models.GapBearish:
		// Mirror: price ascends into the zone from below.
		if price < g.Bottom {
			return
		}
		touch(g, ts)
		if price >= g.Top {
			fill(g, ts)
			return
		}
		partialFill(g, (price-g.Bottom)/(g.Top-g.Bottom)*100)
	}
}

func touch(g *models.FairValueGap, ts time.Time) {
	if g.FirstTouchAt == nil {
		t := ts
		g.FirstTouchAt = &t
	}
	g.TouchCount++
}

func fill(g *models.FairValueGap, ts time.Time) {
	g.FillPercentage = 100
	g.Status = models.GapFilled
	if g.FilledAt == nil {
		t := ts
		g.FilledAt = &t
	}
}

func partialFill(g *models.FairValueGap, pct float64) {
	if pct > g.FillPercentage {
		g.FillPercentage = pct
	}
	g.Status = models.GapPartiallyFilled
}
