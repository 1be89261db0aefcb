package usecase

import (
	"context"
	"encoding/json"
	"time"

	"GapSight/internal/domain/models"
	domrepo "GapSight/internal/domain/repository"
	mid "GapSight/internal/middleware"
	pkgkafka "GapSight/pkg/kafka"
)

// KafkaCandlesHandler consumes candle messages and feeds the pipeline.
type KafkaCandlesHandler struct {
	topic   string
	pipe    *mid.CandlePipeline
	metrics domrepo.Metrics
}

func NewKafkaCandlesHandler(topic string, pipe *mid.CandlePipeline, metrics domrepo.Metrics) *KafkaCandlesHandler {
	return &KafkaCandlesHandler{topic: topic, pipe: pipe, metrics: metrics}
}

func (h *KafkaCandlesHandler) Topic() string { return h.topic }

// incoming message schema: {symbol, t(ms), o, h, l, c, v}
func (h *KafkaCandlesHandler) Handle(ctx context.Context, b []byte) error {
	var m struct {
		Symbol string  `json:"symbol"`
		T      int64   `json:"t"`
		O      float64 `json:"o"`
		H      float64 `json:"h"`
		L      float64 `json:"l"`
		C      float64 `json:"c"`
		V      float64 `json:"v"`
	}
	if err := json.Unmarshal(b, &m); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return err
	}
	if m.T < 1e11 { // seconds
		m.T = m.T * 1000
	}
	ts := time.UnixMilli(m.T).UTC()
	h.metrics.RecordLatency("ingest_e2e_seconds", time.Since(ts).Seconds())

	return h.pipe.Process(ctx, &models.Candle{
		Symbol:    m.Symbol,
		Timestamp: ts,
		Open:      m.O,
		High:      m.H,
		Low:       m.L,
		Close:     m.C,
		Volume:    m.V,
	})
}

var _ pkgkafka.MessageHandler = (*KafkaCandlesHandler)(nil)
