package di

import (
	"context"
	"fmt"
	"time"

	"GapSight/internal/domain/repository"
	"GapSight/internal/fvg"
	"GapSight/internal/handler/api"
	mid "GapSight/internal/middleware"
	internalrepo "GapSight/internal/repository"
	"GapSight/internal/service/binance"
	icache "GapSight/internal/service/cache"
	"GapSight/internal/usecase"
	pkgch "GapSight/pkg/clickhouse"
	"GapSight/pkg/config"
	pkgkafka "GapSight/pkg/kafka"
	xlogger "GapSight/pkg/logger"
	"GapSight/pkg/metrics"
	"GapSight/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*xlogger.Logger, error) {
	level := "info"
	format := "json"
	if cfg.Environment == "development" {
		level = "debug"
		format = "console"
	}
	return xlogger.New(&xlogger.Config{Level: level, Format: format, Output: "stdout"})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideEngineConfig builds the engine config from the style preset
// plus any explicit overrides.
func ProvideEngineConfig(cfg *config.Config) fvg.Config {
	ec := fvg.PresetConfig(fvg.Style(cfg.Engine.Style))
	if v := cfg.Engine.GapThreshold; v > 0 {
		ec.GapThreshold = v
	}
	if v := cfg.Engine.MinGapSize; v > 0 {
		ec.MinGapSize = v
	}
	if v := cfg.Engine.MaxGapAge; v > 0 {
		ec.MaxGapAge = v
	}
	if v := cfg.Engine.VolumeMultiplier; v > 0 {
		ec.VolumeMultiplier = v
	}
	if v := cfg.Engine.VolumeWindow; v > 0 {
		ec.VolumeWindow = v
	}
	if v := cfg.Engine.SignalTolerancePct; v > 0 {
		ec.SignalTolerancePct = v
	}
	if v := cfg.Engine.MinKeyLevelStrength; v > 0 {
		ec.MinKeyLevelStrength = v
	}
	ec.RequireVolumeConfirmation = cfg.Engine.RequireVolumeConfirmation
	return ec
}

// ProvideClickHouseClient creates a ClickHouse client, or nil when
// ClickHouse is not configured.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if cfg.ClickHouse.Host == "" {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stmts := append([]string{}, internalrepo.CandlesSchema...)
	stmts = append(stmts, internalrepo.GapSnapshotsSchema...)
	if err := client.InitSchema(ctx, stmts); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return client, nil
}

// ProvideCandleStore creates the ClickHouse candle store when available.
func ProvideCandleStore(chClient *pkgch.Client) repository.CandleStore {
	if chClient == nil {
		return nil
	}
	return internalrepo.NewClickHouseCandleStore(chClient.DB(), "candles")
}

// ProvideGapStore creates the ClickHouse gap snapshot store when available.
func ProvideGapStore(chClient *pkgch.Client) repository.GapStore {
	if chClient == nil {
		return nil
	}
	return internalrepo.NewClickHouseGapStore(chClient.DB(), "gap_snapshots")
}

// ProvideKafkaProducer creates a Kafka producer for signal publishing,
// or nil when signals are not configured.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if len(cfg.Kafka.Brokers) == 0 || cfg.Kafka.SignalsTopic == "" {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatching(cfg.Kafka.Producer.BatchSize, cfg.Kafka.Producer.Linger),
		pkgkafka.WithWriteTimeout(cfg.Kafka.Producer.WriteTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideSignalPublisher creates the Kafka signal publisher when available.
func ProvideSignalPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.SignalPublisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaSignalPublisher(producer, cfg.Kafka.SignalsTopic)
}

// ProvideEngineManager creates the per-symbol engine manager.
func ProvideEngineManager(
	cfg *config.Config,
	engineCfg fvg.Config,
	logger *xlogger.Logger,
	m repository.Metrics,
	candles repository.CandleStore,
	gaps repository.GapStore,
	signals repository.SignalPublisher,
) (*usecase.EngineManager, error) {
	mgr, err := usecase.NewEngineManager(engineCfg, cfg.Feed.Symbols, logger, m)
	if err != nil {
		return nil, fmt.Errorf("engine manager: %w", err)
	}
	if candles != nil {
		mgr.SetCandleStore(candles)
	}
	if gaps != nil {
		mgr.SetGapStore(gaps)
	}
	if signals != nil {
		mgr.SetSignalPublisher(signals)
	}
	return mgr, nil
}

// ProvideCandlePipeline creates the ingest pipeline in front of the manager.
func ProvideCandlePipeline(mgr *usecase.EngineManager, m repository.Metrics) *mid.CandlePipeline {
	return mid.NewCandlePipeline(mgr, m, mid.WithBufferSize(2000))
}

// ProvideMarketStream creates the Binance websocket stream, or nil when
// ingest runs from Kafka.
func ProvideMarketStream(cfg *config.Config) repository.MarketStream {
	if cfg.Ingest.Source != "websocket" {
		return nil
	}
	return binance.New(
		cfg.Feed.WebSocketURL,
		cfg.Feed.Symbols,
		cfg.Feed.Interval,
		cfg.Feed.ReconnectDelay,
		cfg.Feed.PingInterval,
	)
}

// ProvideCandleCollector creates the websocket collector when streaming.
func ProvideCandleCollector(stream repository.MarketStream, pipe *mid.CandlePipeline, m repository.Metrics) *usecase.CandleCollector {
	if stream == nil {
		return nil
	}
	return usecase.NewCandleCollector(stream, pipe, m)
}

// ProvideKafkaConsumer creates a Kafka consumer when ingest runs from Kafka.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	if cfg.Ingest.Source != "kafka" {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideKafkaCandlesHandler registers the handler for the candle topic.
func ProvideKafkaCandlesHandler(pipe *mid.CandlePipeline, m repository.Metrics, cfg *config.Config) *usecase.KafkaCandlesHandler {
	if cfg.Ingest.Source != "kafka" {
		return nil
	}
	return usecase.NewKafkaCandlesHandler(cfg.Kafka.CandlesTopic, pipe, m)
}

// ProvideBytesCache creates the response cache: Redis when enabled,
// in-process TTL cache otherwise.
func ProvideBytesCache(cfg *config.Config) icache.BytesCache {
	if cfg.Cache.Redis.Enabled {
		return icache.NewRedisCache(icache.RedisConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
		})
	}
	return icache.NewTTLCache()
}

// ProvideGapsUseCase creates the read-side query usecase.
func ProvideGapsUseCase(mgr *usecase.EngineManager, logger *xlogger.Logger, cache icache.BytesCache, cfg *config.Config) *usecase.GapsUseCase {
	uc := usecase.NewGapsUseCase(mgr, logger)
	uc.SetCache(cache)
	ttls := usecase.CacheTTLs{
		Gaps:       cfg.Cache.TTL.Gaps,
		Signal:     cfg.Cache.TTL.Signal,
		Statistics: cfg.Cache.TTL.Statistics,
	}
	if ttls.Gaps > 0 || ttls.Signal > 0 || ttls.Statistics > 0 {
		uc.SetTTLs(ttls)
	}
	return uc
}

// ProvideHTTPHandler creates the Echo API handler with health checks.
func ProvideHTTPHandler(logger *xlogger.Logger, gaps *usecase.GapsUseCase, candles repository.CandleStore, chClient *pkgch.Client) *api.GapsEchoHandler {
	h := api.NewGapsEchoHandler(logger, gaps)
	if candles != nil {
		h.SetCandlesUseCase(usecase.NewCandlesUseCase(candles))
	}
	if chClient != nil {
		h.AddHealthCheck("clickhouse", chClient)
	}
	return h
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	logger *xlogger.Logger,
	mgr *usecase.EngineManager,
	pipe *mid.CandlePipeline,
	collector *usecase.CandleCollector,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaCandlesHandler,
	publisher repository.SignalPublisher,
	chClient *pkgch.Client,
	handler *api.GapsEchoHandler,
) *server.App {
	return server.New(cfg, logger, mgr, pipe, collector, consumer, kh, publisher, chClient, handler)
}
