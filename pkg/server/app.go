package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	repository "GapSight/internal/domain/repository"
	"GapSight/internal/handler/api"
	mid "GapSight/internal/middleware"
	"GapSight/internal/usecase"
	pkgch "GapSight/pkg/clickhouse"
	"GapSight/pkg/config"
	xhttp "GapSight/pkg/http"
	pkgkafka "GapSight/pkg/kafka"
	applogger "GapSight/pkg/logger"
)

// App encapsulates the application lifecycle: warm-up, ingest, the
// HTTP API, and graceful shutdown.
type App struct {
	cfg        *config.Config
	logger     *applogger.Logger
	mgr        *usecase.EngineManager
	pipe       *mid.CandlePipeline
	collector  *usecase.CandleCollector
	consumer   *pkgkafka.Consumer
	kh         *usecase.KafkaCandlesHandler
	publisher  repository.SignalPublisher
	chClient   *pkgch.Client
	handler    *api.GapsEchoHandler
	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	logger *applogger.Logger,
	mgr *usecase.EngineManager,
	pipe *mid.CandlePipeline,
	collector *usecase.CandleCollector,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaCandlesHandler,
	publisher repository.SignalPublisher,
	chClient *pkgch.Client,
	handler *api.GapsEchoHandler,
) *App {
	return &App{
		cfg:       cfg,
		logger:    logger,
		mgr:       mgr,
		pipe:      pipe,
		collector: collector,
		consumer:  consumer,
		kh:        kh,
		publisher: publisher,
		chClient:  chClient,
		handler:   handler,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l := a.logger

	// Seed engines with recent history before live data arrives.
	if a.cfg.Warmup.Enabled {
		if err := a.mgr.Warmup(ctx, a.cfg.Warmup.Candles); err != nil {
			l.Warn("warmup failed, starting cold", applogger.Error(err))
		}
	}

	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithLogger(l),
	)

	switch {
	case a.collector != nil:
		go func() {
			if err := a.collector.Start(ctx); err != nil {
				l.Error("collector error", applogger.Error(err))
			}
		}()
		l.Info("collector started", applogger.Strings("symbols", a.cfg.Feed.Symbols))
	case a.consumer != nil && a.kh != nil:
		a.pipe.Start(ctx)
		a.consumer.RegisterHandler(a.kh)
		go func() {
			if err := a.consumer.Start(); err != nil {
				l.Error("kafka consumer error", applogger.Error(err))
			}
		}()
		l.Info("kafka consumer started", applogger.String("topic", a.kh.Topic()))
	default:
		l.Warn("no ingest source configured, serving warm-up state only")
	}

	if err := a.httpServer.Start(); err != nil {
		l.Error("http server start error", applogger.Error(err))
		return err
	}
	l.Info("http server started", applogger.Int("port", a.cfg.Server.Port))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	l.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	l := a.logger

	if a.collector != nil {
		if err := a.collector.Shutdown(ctx); err != nil {
			l.Warn("collector stop error", applogger.Error(err))
		}
	}
	if a.consumer != nil {
		if err := a.consumer.Stop(ctx); err != nil {
			l.Warn("kafka consumer stop error", applogger.Error(err))
		}
		a.pipe.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		l.Error("http shutdown error", applogger.Error(err))
	}

	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			l.Warn("signal publisher close error", applogger.Error(err))
		}
	}
	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			l.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	l.Info("shutdown complete")
	return nil
}
