package fvg

import (
	"math"

	"GapSight/internal/domain/models"
)

// Strength component weights. Larger, volume-confirmed, younger, untouched
// gaps are structurally stronger and more likely to still attract price.
const (
	sizeWeight   = 0.4
	volumeWeight = 0.3
	ageWeight    = 0.2
	touchWeight  = 0.1

	sizeCapPct     = 2.0
	volumeRatioCap = 3.0
	ageHalfLife    = 50.0
	touchCap       = 5.0
)

// Score computes the composite 0..1 strength of a gap from its size, volume
// confirmation, age and touch history.
func Score(g *models.FairValueGap) float64 {
	sizeScore := clamp01(g.Size / sizeCapPct)

	volScore := 0.0
	if g.VolumeConfirmed {
		volScore = clamp01(g.VolumeRatio / volumeRatioCap)
	}

	ageScore := math.Max(0, (ageHalfLife-float64(g.AgeInCandles))/ageHalfLife)
	touchScore := math.Max(0, (touchCap-float64(g.TouchCount))/touchCap)

	return clamp01(sizeWeight*sizeScore + volumeWeight*volScore + ageWeight*ageScore + touchWeight*touchScore)
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
