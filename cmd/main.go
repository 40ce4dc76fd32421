package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/mateusmacedo/airline-registry/internal/airline"
	"github.com/mateusmacedo/airline-registry/internal/airline/application"
	"github.com/mateusmacedo/airline-registry/internal/airline/infrastructure"
	"github.com/mateusmacedo/airline-registry/internal/config"
	pkgApp "github.com/mateusmacedo/airline-registry/pkg/application"
	zapAdapter "github.com/mateusmacedo/airline-registry/pkg/infrastructure/zaplogger/adapter"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	appLogger, err := zapAdapter.NewZapAppLogger(cfg.ServiceName, cfg.LogLevel)
	if err != nil {
		panic(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx, cancel, cfg, appLogger); err != nil {
		pkgApp.LogError(context.Background(), appLogger, "Erro ao executar o serviço", err, nil)
		os.Exit(1)
	}
}

func run(ctx context.Context, cancel context.CancelFunc, cfg config.Config, appLogger pkgApp.AppLogger) error {
	checks := map[string]infrastructure.ReadinessCheck{}
	var closers []func()
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}()

	repository, closeRepository, err := newRepository(cfg, appLogger, checks)
	if err != nil {
		return err
	}
	closers = append(closers, closeRepository)

	commandBuses, queryBuses, eventBus := airline.NewSimpleBuses(appLogger)

	var brokerBuses *airline.WatermillBuses
	if cfg.Broker() {
		pubSub, closeBackend, err := newPubSub(ctx, cfg, appLogger, checks)
		if err != nil {
			return err
		}
		closers = append(closers, closeBackend)

		brokerBuses = airline.NewWatermillBuses(pubSub, appLogger)
		closers = append(closers, brokerBuses.Close)
		eventBus = brokerBuses.Events
	}

	slice, err := airline.NewAirlineSlice(ctx, repository, eventBus, appLogger)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics, err := infrastructure.NewMetrics(registry, slice.Registry())
	if err != nil {
		return err
	}
	slice.SetRecorder(metrics)

	airline.RegisterEventHandlers(eventBus, application.NewNotificationLogHandler(appLogger), metrics.EventHandler())
	slice.RegisterCommands(commandBuses)
	slice.RegisterQueries(queryBuses)

	if cfg.IntakeEnabled && brokerBuses != nil {
		slice.RegisterCommands(brokerBuses.Commands)
		slice.RegisterQueries(brokerBuses.Queries)
		pkgApp.LogInfo(ctx, appLogger, "Intake pelo broker habilitado", map[string]interface{}{
			"backend": cfg.EventBackend,
		})
	}

	if cfg.SeedDemoFlights && slice.Registry().Count() == 0 {
		seedDemoFlights(ctx, commandBuses.AddFlight, cfg.DemoOwner, appLogger)
	}

	router := chi.NewRouter()
	infrastructure.NewOpsHTTPHandler(registry, metrics, checks, appLogger).RegisterRoutes(router)

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		select {
		case sig := <-sigChan:
			appLogger.Info(ctx, "Sinal capturado", map[string]interface{}{"signal": sig.String()})
			cancel()
		case <-ctx.Done():
		}
	}()

	server := &http.Server{
		Addr:    cfg.OpsAddr,
		Handler: router,
	}

	go func() {
		appLogger.Info(ctx, "Server starting on:"+cfg.OpsAddr, nil)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			pkgApp.LogError(ctx, appLogger, "Erro ao iniciar o servidor", err, nil)
			cancel()
		}
	}()

	<-ctx.Done()
	appLogger.Info(context.Background(), "Encerrando servidor...", nil)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		pkgApp.LogError(context.Background(), appLogger, "Erro ao encerrar servidor", err, nil)
	}

	appLogger.Info(context.Background(), "Servidor encerrado", map[string]interface{}{
		"flights": slice.Registry().Count(),
	})
	return nil
}
