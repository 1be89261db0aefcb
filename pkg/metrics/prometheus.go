package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain repository.Metrics using Prometheus.
type Recorder struct {
	candlesTotal *prometheus.CounterVec
	gapsDetected *prometheus.CounterVec
	gapsTerminal *prometheus.CounterVec
	activeGaps   *prometheus.GaugeVec
	lastPrice    *prometheus.GaugeVec
	errorsTotal  *prometheus.CounterVec
	latency      *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		candlesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gapsight_candles_total",
				Help: "Total number of candles ingested",
			},
			[]string{"symbol"},
		),
		gapsDetected: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gapsight_gaps_detected_total",
				Help: "Total number of fair value gaps detected",
			},
			[]string{"symbol", "type"},
		),
		gapsTerminal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gapsight_gaps_terminal_total",
				Help: "Total number of gaps reaching a terminal state",
			},
			[]string{"symbol", "status"},
		),
		activeGaps: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "gapsight_active_gaps",
				Help: "Current number of open gaps per symbol",
			},
			[]string{"symbol"},
		),
		lastPrice: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "gapsight_last_price",
				Help: "Last recorded close price for a symbol",
			},
			[]string{"symbol"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gapsight_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gapsight_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordCandle records a single ingested candle.
func (r *Recorder) RecordCandle(symbol string) {
	r.candlesTotal.WithLabelValues(symbol).Inc()
}

// RecordGapDetected records a newly detected gap.
func (r *Recorder) RecordGapDetected(symbol string, gapType string) {
	r.gapsDetected.WithLabelValues(symbol, gapType).Inc()
}

// RecordGapTerminal records a gap transition into Filled or Expired.
func (r *Recorder) RecordGapTerminal(symbol string, status string) {
	r.gapsTerminal.WithLabelValues(symbol, status).Inc()
}

// RecordActiveGaps records the current open gap count for a symbol.
func (r *Recorder) RecordActiveGaps(symbol string, count int) {
	r.activeGaps.WithLabelValues(symbol).Set(float64(count))
}

// RecordLastPrice records the last close price for a symbol.
func (r *Recorder) RecordLastPrice(symbol string, price float64) {
	r.lastPrice.WithLabelValues(symbol).Set(price)
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
