package fvg

import (
	"errors"
	"testing"
)

func TestPresetsAreValid(t *testing.T) {
	for _, style := range []Style{StyleScalping, StyleDayTrading, StyleSwingTrading, StylePositionTrading} {
		if err := PresetConfig(style).Validate(); err != nil {
			t.Fatalf("preset %s invalid: %v", style, err)
		}
	}
	if err := PresetConfig("no-such-style").Validate(); err != nil {
		t.Fatalf("unknown style should fall back to a valid preset: %v", err)
	}
}

func TestPresetsScaleUp(t *testing.T) {
	order := []Style{StyleScalping, StyleDayTrading, StyleSwingTrading, StylePositionTrading}
	prev := PresetConfig(order[0])
	for _, style := range order[1:] {
		cur := PresetConfig(style)
		if cur.GapThreshold <= prev.GapThreshold {
			t.Fatalf("%s gap_threshold should exceed previous style", style)
		}
		if cur.MaxGapAge <= prev.MaxGapAge {
			t.Fatalf("%s max_gap_age should exceed previous style", style)
		}
		if cur.VolumeMultiplier <= prev.VolumeMultiplier {
			t.Fatalf("%s volume_multiplier should exceed previous style", style)
		}
		prev = cur
	}
}

func TestConfigValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero gap_threshold", func(c *Config) { c.GapThreshold = 0 }},
		{"negative gap_threshold", func(c *Config) { c.GapThreshold = -1 }},
		{"min_gap_size above threshold", func(c *Config) { c.MinGapSize = c.GapThreshold + 1 }},
		{"min_gap_size equals threshold", func(c *Config) { c.MinGapSize = c.GapThreshold }},
		{"zero max_gap_age", func(c *Config) { c.MaxGapAge = 0 }},
		{"zero volume_window", func(c *Config) { c.VolumeWindow = 0 }},
		{"opacity above 1", func(c *Config) { c.BullishOpacity = 1.5 }},
		{"negative opacity", func(c *Config) { c.BearishOpacity = -0.1 }},
	}
	for _, tc := range cases {
		cfg := DefaultConfig()
		tc.mutate(&cfg)
		err := cfg.Validate()
		if !errors.Is(err, ErrInvalidConfig) {
			t.Fatalf("%s: expected ErrInvalidConfig, got %v", tc.name, err)
		}
		if _, err := NewEngine("X", cfg); err == nil {
			t.Fatalf("%s: engine construction should fail", tc.name)
		}
	}
}
