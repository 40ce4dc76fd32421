package main

import (
	"context"
	"time"

	"github.com/mateusmacedo/airline-registry/internal/airline"
	"github.com/mateusmacedo/airline-registry/internal/config"
	pkgApp "github.com/mateusmacedo/airline-registry/pkg/application"
	"github.com/mateusmacedo/airline-registry/pkg/infrastructure/kafka/adapter"
	zapAdapter "github.com/mateusmacedo/airline-registry/pkg/infrastructure/zaplogger/adapter"
)

// Cliente do registro pelo kafka. Requer o serviço rodando com EVENT_BACKEND=kafka e
// INTAKE_ENABLED=true.
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	appLogger, err := zapAdapter.NewZapAppLogger(cfg.ServiceName+"-client", cfg.LogLevel)
	if err != nil {
		panic(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pubSub, err := adapter.NewKafkaPubSub(adapter.Config{
		Brokers:       cfg.KafkaBrokers,
		ConsumerGroup: cfg.ConsumerGroup + "-client",
		ClientID:      cfg.ServiceName + "-client",
	}, appLogger)
	if err != nil {
		panic(err)
	}
	defer pubSub.Close()

	if err := adapter.InitializeTopics(pubSub, airline.Topics()...); err != nil {
		panic(err)
	}

	buses := airline.NewWatermillBuses(pubSub, appLogger)
	defer buses.Close()

	walkthrough := airline.Walkthrough{
		Commands: buses.Commands,
		Queries:  buses.Queries,
		Owner:    cfg.DemoOwner,
		Logger:   appLogger,
		Timeout:  30 * time.Second,
	}
	id, err := walkthrough.Run(ctx)
	if err != nil {
		pkgApp.LogError(ctx, appLogger, "Erro no passeio pelo kafka", err, nil)
		return
	}
	appLogger.Info(ctx, "Passeio concluído", map[string]interface{}{"flightId": id})
}
