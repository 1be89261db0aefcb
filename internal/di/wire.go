//go:build wireinject
// +build wireinject

package di

import (
	"GapSight/pkg/config"
	"GapSight/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,
		ProvideBytesCache,

		// Repositories
		ProvideCandleStore,
		ProvideGapStore,
		ProvideSignalPublisher,
		ProvideMarketStream,

		// Engine and use cases
		ProvideEngineConfig,
		ProvideEngineManager,
		ProvideCandlePipeline,
		ProvideCandleCollector,
		ProvideKafkaCandlesHandler,
		ProvideGapsUseCase,

		// HTTP
		ProvideHTTPHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
