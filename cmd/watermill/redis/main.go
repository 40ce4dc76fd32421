package main

import (
	"context"
	"time"

	"github.com/mateusmacedo/airline-registry/internal/airline"
	"github.com/mateusmacedo/airline-registry/internal/config"
	pkgApp "github.com/mateusmacedo/airline-registry/pkg/application"
	"github.com/mateusmacedo/airline-registry/pkg/infrastructure/redis/adapter"
	zapAdapter "github.com/mateusmacedo/airline-registry/pkg/infrastructure/zaplogger/adapter"
)

// Cliente do registro pelo redis streams. Requer o serviço rodando com EVENT_BACKEND=redis e
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

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	client := adapter.NewRedisClient(cfg.RedisAddr, adapter.PoolSizeFor(len(airline.Topics())))
	defer client.Close()
	if err := adapter.Ping(ctx, client); err != nil {
		panic(err)
	}

	pubSub, err := adapter.NewRedisStreamPubSub(client, cfg.ConsumerGroup+"-client", appLogger)
	if err != nil {
		panic(err)
	}
	defer pubSub.Close()

	buses := airline.NewWatermillBuses(pubSub, appLogger)
	defer buses.Close()

	walkthrough := airline.Walkthrough{
		Commands: buses.Commands,
		Queries:  buses.Queries,
		Owner:    cfg.DemoOwner,
		Logger:   appLogger,
		Timeout:  15 * time.Second,
	}
	id, err := walkthrough.Run(ctx)
	if err != nil {
		pkgApp.LogError(ctx, appLogger, "Erro no passeio pelo redis", err, nil)
		return
	}
	appLogger.Info(ctx, "Passeio concluído", map[string]interface{}{"flightId": id})
}
