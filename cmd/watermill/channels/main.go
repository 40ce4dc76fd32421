package main

import (
	"context"
	"time"

	"github.com/mateusmacedo/airline-registry/internal/airline"
	"github.com/mateusmacedo/airline-registry/internal/airline/application"
	"github.com/mateusmacedo/airline-registry/internal/airline/infrastructure"
	pkgApp "github.com/mateusmacedo/airline-registry/pkg/application"
	"github.com/mateusmacedo/airline-registry/pkg/infrastructure/channels/adapter"
	zapAdapter "github.com/mateusmacedo/airline-registry/pkg/infrastructure/zaplogger/adapter"
)

// Registro e cliente no mesmo processo, conversando por um broker em memória.
func main() {
	appLogger, err := zapAdapter.NewZapAppLogger("airline-walkthrough", "debug")
	if err != nil {
		panic(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pubSub := adapter.NewGoChannelPubSub(appLogger)
	defer pubSub.Close()

	buses := airline.NewWatermillBuses(pubSub, appLogger)
	defer buses.Close()

	slice, err := airline.NewAirlineSlice(ctx, infrastructure.NewInMemoryFlightRepository(appLogger), buses.Events, appLogger)
	if err != nil {
		panic(err)
	}
	airline.RegisterEventHandlers(buses.Events, application.NewNotificationLogHandler(appLogger))
	slice.RegisterCommands(buses.Commands)
	slice.RegisterQueries(buses.Queries)

	walkthrough := airline.Walkthrough{
		Commands: buses.Commands,
		Queries:  buses.Queries,
		Owner:    "airline-demo",
		Logger:   appLogger,
		Timeout:  5 * time.Second,
	}
	id, err := walkthrough.Run(ctx)
	if err != nil {
		pkgApp.LogError(ctx, appLogger, "Erro no passeio pelo registro", err, nil)
		return
	}

	appLogger.Info(ctx, "Passeio concluído", map[string]interface{}{
		"flightId": id,
		"flights":  slice.Registry().Count(),
	})
}
