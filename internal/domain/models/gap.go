package models

import "time"

// GapType classifies the direction of the imbalance.
type GapType string

const (
	GapBullish GapType = "bullish"
	GapBearish GapType = "bearish"
)

// GapStatus is the lifecycle state of a gap. Transitions are one-directional:
// active -> partially_filled -> filled, and any non-filled state may become
// expired. Filled and expired are terminal.
type GapStatus string

const (
	GapActive          GapStatus = "active"
	GapPartiallyFilled GapStatus = "partially_filled"
	GapFilled          GapStatus = "filled"
	GapExpired         GapStatus = "expired"
)

// FairValueGap is a price interval left unfilled by a fast three-candle move.
type FairValueGap struct {
	ID           string    `json:"id"`
	Symbol       string    `json:"symbol,omitempty"`
	CreatedIndex int       `json:"created_index"`
	CreatedAt    time.Time `json:"created_at"`

	Type   GapType   `json:"type"`
	Status GapStatus `json:"status"`

	Top      float64 `json:"top"`
	Bottom   float64 `json:"bottom"`
	Size     float64 `json:"size"` // (top-bottom)/bottom as a percentage
	Midpoint float64 `json:"midpoint"`

	CreationVolume  float64 `json:"creation_volume"`
	VolumeRatio     float64 `json:"volume_ratio"`
	VolumeConfirmed bool    `json:"volume_confirmed"`

	FillPercentage float64    `json:"fill_percentage"`
	FirstTouchAt   *time.Time `json:"first_touch_at,omitempty"`
	FilledAt       *time.Time `json:"filled_at,omitempty"`
	AgeInCandles   int        `json:"age_in_candles"`
	TouchCount     int        `json:"touch_count"`

	Strength float64 `json:"strength"`
}

// IsOpen reports whether the gap can still attract price.
func (g *FairValueGap) IsOpen() bool {
	return g.Status == GapActive || g.Status == GapPartiallyFilled
}

// IsTerminal reports whether the gap will never mutate again.
func (g *FairValueGap) IsTerminal() bool {
	return g.Status == GapFilled || g.Status == GapExpired
}

// SignalDirection is the aggregate bias emitted by the confluence view.
type SignalDirection string

const (
	SignalBullish SignalDirection = "bullish"
	SignalBearish SignalDirection = "bearish"
	SignalNeutral SignalDirection = "neutral"
)

// KeyLevel is a notable price level backed by a strong gap.
type KeyLevel struct {
	Price    float64 `json:"price"`
	Type     GapType `json:"type"`
	Strength float64 `json:"strength"`
}

// GapSignal is the directional bias synthesized from gaps near a price.
type GapSignal struct {
	Symbol    string          `json:"symbol,omitempty"`
	Price     float64         `json:"price"`
	Direction SignalDirection `json:"direction"`
	Strength  float64         `json:"strength"`
	KeyLevels []KeyLevel      `json:"key_levels,omitempty"`
}

// GapStatistics summarizes the tracked gap fleet.
type GapStatistics struct {
	Total       int     `json:"total"`
	Active      int     `json:"active"`
	Filled      int     `json:"filled"`
	Expired     int     `json:"expired"`
	Bullish     int     `json:"bullish"`
	Bearish     int     `json:"bearish"`
	AvgStrength float64 `json:"avg_strength"`
	AvgSize     float64 `json:"avg_size"`
	FillRate    float64 `json:"fill_rate"` // filled/total * 100
}
