package models

import (
	"math"
	"time"
)

// Candle represents a single OHLCV interval. Immutable once ingested.
type Candle struct {
	Symbol    string    `json:"symbol,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
}

// Body returns the absolute body size |close - open|.
func (c Candle) Body() float64 {
	return math.Abs(c.Close - c.Open)
}

// Range returns the full high-low range.
func (c Candle) Range() float64 {
	return c.High - c.Low
}

// UpperWick returns the distance from the body top to the high.
func (c Candle) UpperWick() float64 {
	return c.High - math.Max(c.Open, c.Close)
}

// LowerWick returns the distance from the body bottom to the low.
func (c Candle) LowerWick() float64 {
	return math.Min(c.Open, c.Close) - c.Low
}

// IsWellFormed reports whether all price/volume fields are finite
// and high >= low.
func (c Candle) IsWellFormed() bool {
	for _, v := range []float64{c.Open, c.High, c.Low, c.Close, c.Volume} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return c.High >= c.Low && c.Volume >= 0
}
