package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Ingest struct {
		// Source selects where candles come from: the exchange websocket
		// or a Kafka candle topic.
		Source string `yaml:"source"`
	} `yaml:"ingest"`
	Engine struct {
		// Style preset: scalping, day_trading, swing_trading, position_trading.
		Style string `yaml:"style"`
		// Optional per-field overrides on top of the preset; zero values
		// keep the preset's defaults.
		GapThreshold              float64 `yaml:"gap_threshold"`
		MinGapSize                float64 `yaml:"min_gap_size"`
		MaxGapAge                 int     `yaml:"max_gap_age"`
		VolumeMultiplier          float64 `yaml:"volume_multiplier"`
		VolumeWindow              int     `yaml:"volume_window"`
		RequireVolumeConfirmation bool    `yaml:"require_volume_confirmation"`
		SignalTolerancePct        float64 `yaml:"signal_tolerance_pct"`
		MinKeyLevelStrength       float64 `yaml:"min_key_level_strength"`
	} `yaml:"engine"`
	Feed struct {
		WebSocketURL   string        `yaml:"websocket_url"`
		Symbols        []string      `yaml:"symbols"`
		Interval       string        `yaml:"interval"`
		ReconnectDelay time.Duration `yaml:"reconnect_delay"`
		PingInterval   time.Duration `yaml:"ping_interval"`
	} `yaml:"feed"`
	Warmup struct {
		Enabled bool `yaml:"enabled"`
		Candles int  `yaml:"candles"`
	} `yaml:"warmup"`
	Kafka struct {
		Brokers      []string `yaml:"brokers"`
		CandlesTopic string   `yaml:"candles_topic"`
		SignalsTopic string   `yaml:"signals_topic"`
		RequiredAcks int      `yaml:"required_acks"`
		Compression  string   `yaml:"compression"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			Linger       time.Duration `yaml:"linger"`
			BatchBytes   int           `yaml:"batch_bytes"`
			BatchSize    int           `yaml:"batch_size"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
		Consumer struct {
			GroupID    string        `yaml:"group_id"`
			Workers    int           `yaml:"workers"`
			BufferSize int           `yaml:"buffer_size"`
			RetryMax   int           `yaml:"retry_max"`
			BackoffMin time.Duration `yaml:"backoff_min"`
			BackoffMax time.Duration `yaml:"backoff_max"`
			DLQTopic   string        `yaml:"dlq_topic"`
			MinBytes   int           `yaml:"min_bytes"`
			MaxBytes   int           `yaml:"max_bytes"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		WriteTimeout     time.Duration `yaml:"write_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
	Cache struct {
		TTL struct {
			Gaps       time.Duration `yaml:"gaps"`
			Signal     time.Duration `yaml:"signal"`
			Statistics time.Duration `yaml:"statistics"`
		} `yaml:"ttl"`
		Redis struct {
			Enabled  bool   `yaml:"enabled"`
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"cache"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("SYMBOLS"); v != "" {
		c.Feed.Symbols = strings.Split(v, ",")
	}
	if v := os.Getenv("INGEST_SOURCE"); v != "" {
		c.Ingest.Source = v
	}
	if v := os.Getenv("ENGINE_STYLE"); v != "" {
		c.Engine.Style = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_CANDLES_TOPIC"); v != "" {
		c.Kafka.CandlesTopic = v
	}

	return c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Ingest.Source == "" {
		return fmt.Errorf("ingest.source is required")
	}
	if c.Ingest.Source != "websocket" && c.Ingest.Source != "kafka" {
		return fmt.Errorf("ingest.source must be 'websocket' or 'kafka', got '%s'", c.Ingest.Source)
	}
	if len(c.Feed.Symbols) == 0 {
		return fmt.Errorf("feed.symbols cannot be empty")
	}
	if c.Ingest.Source == "websocket" && c.Feed.WebSocketURL == "" {
		return fmt.Errorf("feed.websocket_url is required for websocket ingest")
	}
	if c.Ingest.Source == "kafka" && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers are required for kafka ingest")
	}
	// Engine threshold relationships are validated again at engine
	// construction; only the obvious cases fail fast here.
	if c.Engine.GapThreshold < 0 || c.Engine.MinGapSize < 0 || c.Engine.MaxGapAge < 0 {
		return fmt.Errorf("engine thresholds cannot be negative")
	}
	return nil
}
