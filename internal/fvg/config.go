package fvg

// Style names a trading-horizon preset. Each successive style roughly doubles
// the size/age thresholds and volume strictness of the previous one, trading
// detection frequency for signal quality.
type Style string

const (
	StyleScalping        Style = "scalping"
	StyleDayTrading      Style = "day_trading"
	StyleSwingTrading    Style = "swing_trading"
	StylePositionTrading Style = "position_trading"
)

// Config parameterizes detection, validation and lifecycle tracking.
// It is validated once at engine construction and never mutated afterwards.
type Config struct {
	// GapThreshold is the minimum detectable gap size in percent.
	GapThreshold float64
	// MinGapSize is a secondary size floor in percent; must stay below
	// GapThreshold. The effective floor is the larger of the two.
	MinGapSize float64
	// MaxGapAge is the number of candles after which an unfilled gap expires.
	MaxGapAge int

	// VolumeMultiplier is the creation-volume / trailing-average ratio
	// required for volume confirmation.
	VolumeMultiplier float64
	// VolumeWindow is the trailing-average window in candles.
	VolumeWindow int
	// RequireVolumeConfirmation turns the confirmation flag into a hard
	// admission filter. Off by default: unconfirmed gaps are still created
	// and carry VolumeConfirmed=false.
	RequireVolumeConfirmation bool

	// MinCandleBody is the minimum body/range ratio of the displacement
	// candle, in [0,1).
	MinCandleBody float64
	// MaxWickRatio is the maximum (upper+lower wick)/body ratio of the
	// displacement candle.
	MaxWickRatio float64

	// SignalTolerancePct is the default proximity window for signal
	// synthesis, in percent of the query price.
	SignalTolerancePct float64
	// MinKeyLevelStrength is the strength floor for key levels.
	MinKeyLevelStrength float64

	// Display hints consumed by the chart layer; validated here because
	// configuration validation is shared, otherwise unused by the engine.
	BullishOpacity float64
	BearishOpacity float64
}

// PresetConfig returns the configuration bundle for a named style.
// Unknown styles fall back to day trading.
func PresetConfig(style Style) Config {
	cfg := Config{
		VolumeWindow:        20,
		MinCandleBody:       0.3,
		MaxWickRatio:        2.0,
		MinKeyLevelStrength: 0.6,
		BullishOpacity:      0.3,
		BearishOpacity:      0.3,
	}
	switch style {
	case StyleScalping:
		cfg.GapThreshold = 0.15
		cfg.MinGapSize = 0.1
		cfg.MaxGapAge = 25
		cfg.VolumeMultiplier = 1.2
		cfg.SignalTolerancePct = 0.5
	case StyleSwingTrading:
		cfg.GapThreshold = 0.6
		cfg.MinGapSize = 0.4
		cfg.MaxGapAge = 100
		cfg.VolumeMultiplier = 2.0
		cfg.SignalTolerancePct = 2.0
	case StylePositionTrading:
		cfg.GapThreshold = 1.2
		cfg.MinGapSize = 0.8
		cfg.MaxGapAge = 200
		cfg.VolumeMultiplier = 2.5
		cfg.SignalTolerancePct = 4.0
	default: // day trading
		cfg.GapThreshold = 0.3
		cfg.MinGapSize = 0.2
		cfg.MaxGapAge = 50
		cfg.VolumeMultiplier = 1.5
		cfg.SignalTolerancePct = 1.0
	}
	return cfg
}

// DefaultConfig returns the day-trading preset.
func DefaultConfig() Config { return PresetConfig(StyleDayTrading) }

// Validate checks threshold relationships. Fatal to construction;
// never raised mid-stream.
func (c Config) Validate() error {
	if c.GapThreshold <= 0 {
		return configErrorf("gap_threshold must be positive, got %v", c.GapThreshold)
	}
	if c.MinGapSize <= 0 {
		return configErrorf("min_gap_size must be positive, got %v", c.MinGapSize)
	}
	if c.MinGapSize >= c.GapThreshold {
		return configErrorf("min_gap_size %v must be below gap_threshold %v", c.MinGapSize, c.GapThreshold)
	}
	if c.MaxGapAge <= 0 {
		return configErrorf("max_gap_age must be positive, got %d", c.MaxGapAge)
	}
	if c.VolumeWindow <= 0 {
		return configErrorf("volume_window must be positive, got %d", c.VolumeWindow)
	}
	if c.VolumeMultiplier <= 0 {
		return configErrorf("volume_multiplier must be positive, got %v", c.VolumeMultiplier)
	}
	if c.MinCandleBody < 0 || c.MinCandleBody >= 1 {
		return configErrorf("min_candle_body must be in [0,1), got %v", c.MinCandleBody)
	}
	if c.MaxWickRatio <= 0 {
		return configErrorf("max_wick_ratio must be positive, got %v", c.MaxWickRatio)
	}
	if c.SignalTolerancePct <= 0 {
		return configErrorf("signal_tolerance_pct must be positive, got %v", c.SignalTolerancePct)
	}
	if c.MinKeyLevelStrength < 0 || c.MinKeyLevelStrength > 1 {
		return configErrorf("min_key_level_strength must be in [0,1], got %v", c.MinKeyLevelStrength)
	}
	if c.BullishOpacity < 0 || c.BullishOpacity > 1 {
		return configErrorf("bullish_opacity must be in [0,1], got %v", c.BullishOpacity)
	}
	if c.BearishOpacity < 0 || c.BearishOpacity > 1 {
		return configErrorf("bearish_opacity must be in [0,1], got %v", c.BearishOpacity)
	}
	return nil
}

// sizeFloor returns the effective minimum gap size in percent.
func (c Config) sizeFloor() float64 {
	if c.MinGapSize > c.GapThreshold {
		return c.MinGapSize
	}
	return c.GapThreshold
}
