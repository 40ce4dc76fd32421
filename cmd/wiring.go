package main

import (
	"context"
	"time"

	"github.com/mateusmacedo/airline-registry/internal/airline"
	"github.com/mateusmacedo/airline-registry/internal/airline/application"
	"github.com/mateusmacedo/airline-registry/internal/airline/domain"
	"github.com/mateusmacedo/airline-registry/internal/airline/infrastructure"
	"github.com/mateusmacedo/airline-registry/internal/config"
	pkgApp "github.com/mateusmacedo/airline-registry/pkg/application"
	pkgInfra "github.com/mateusmacedo/airline-registry/pkg/infrastructure"
	channelsAdapter "github.com/mateusmacedo/airline-registry/pkg/infrastructure/channels/adapter"
	kafkaAdapter "github.com/mateusmacedo/airline-registry/pkg/infrastructure/kafka/adapter"
	redisAdapter "github.com/mateusmacedo/airline-registry/pkg/infrastructure/redis/adapter"
	watermillAdapter "github.com/mateusmacedo/airline-registry/pkg/infrastructure/watermill/adapter"
)

func newRepository(cfg config.Config, appLogger pkgApp.AppLogger, checks map[string]infrastructure.ReadinessCheck) (domain.FlightRepository, func(), error) {
	if cfg.StorageDriver == config.StorageMemory {
		return infrastructure.NewInMemoryFlightRepository(appLogger), func() {}, nil
	}

	db, err := infrastructure.OpenPostgres(cfg.PostgresDSN)
	if err != nil {
		return nil, nil, err
	}
	if err := infrastructure.Migrate(db); err != nil {
		return nil, nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, err
	}

	checks["postgres"] = sqlDB.PingContext
	closeDB := func() {
		if err := sqlDB.Close(); err != nil {
			pkgApp.LogError(context.Background(), appLogger, "Erro ao fechar o banco", err, nil)
		}
	}
	return infrastructure.NewGormFlightRepository(db, appLogger), closeDB, nil
}

func newPubSub(ctx context.Context, cfg config.Config, appLogger pkgApp.AppLogger, checks map[string]infrastructure.ReadinessCheck) (watermillAdapter.PubSub, func(), error) {
	var (
		pubSub  watermillAdapter.PubSub
		cleanup []func() error
		err     error
	)

	switch cfg.EventBackend {
	case config.BackendChannel:
		pubSub = channelsAdapter.NewGoChannelPubSub(appLogger)
	case config.BackendRedis:
		client := redisAdapter.NewRedisClient(cfg.RedisAddr, redisPoolSize(cfg))
		if err := redisAdapter.Ping(ctx, client); err != nil {
			_ = client.Close()
			return watermillAdapter.PubSub{}, nil, err
		}
		checks["redis"] = func(ctx context.Context) error {
			return redisAdapter.Ping(ctx, client)
		}
		cleanup = append(cleanup, client.Close)

		pubSub, err = redisAdapter.NewRedisStreamPubSub(client, cfg.ConsumerGroup, appLogger)
		if err != nil {
			_ = client.Close()
			return watermillAdapter.PubSub{}, nil, err
		}
	case config.BackendKafka:
		pubSub, err = kafkaAdapter.NewKafkaPubSub(kafkaAdapter.Config{
			Brokers:       cfg.KafkaBrokers,
			ConsumerGroup: cfg.ConsumerGroup,
			ClientID:      cfg.ServiceName,
		}, appLogger)
		if err != nil {
			return watermillAdapter.PubSub{}, nil, err
		}
		if err := kafkaAdapter.InitializeTopics(pubSub, airline.Topics()...); err != nil {
			_ = pubSub.Close()
			return watermillAdapter.PubSub{}, nil, err
		}
	}

	closeBackend := func() {
		if err := pubSub.Close(); err != nil {
			pkgApp.LogError(context.Background(), appLogger, "Erro ao fechar o broker", err, nil)
		}
		for _, closeFn := range cleanup {
			if err := closeFn(); err != nil {
				pkgApp.LogError(context.Background(), appLogger, "Erro ao fechar o cliente", err, nil)
			}
		}
	}

	pkgApp.LogInfo(ctx, appLogger, "Broker configurado", map[string]interface{}{
		"backend": cfg.EventBackend,
	})
	return pubSub, closeBackend, nil
}

// redisPoolSize cobre uma leitura bloqueante por tópico do registro, salvo se REDIS_POOL_SIZE
// foi definido.
func redisPoolSize(cfg config.Config) int {
	if cfg.RedisPoolSize > 0 {
		return cfg.RedisPoolSize
	}
	return redisAdapter.PoolSizeFor(len(airline.Topics()))
}

// seedDemoFlights cadastra voos de demonstração pelo barramento local.
func seedDemoFlights(ctx context.Context, bus application.AddFlightBus, owner string, appLogger pkgApp.AppLogger) {
	departure := time.Now().Add(24 * time.Hour).Truncate(time.Hour)
	demo := []domain.FlightInput{
		{FlightNumber: "FFA0001", Origin: "LHR", Destination: "RDU", PlaneType: "B772", DepartureTime: departure.Unix(), ArrivalTime: departure.Add(8 * time.Hour).Unix()},
		{FlightNumber: "FFA0002", Origin: "RDU", Destination: "JFK", PlaneType: "E195", DepartureTime: departure.Add(2 * time.Hour).Unix(), ArrivalTime: departure.Add(4 * time.Hour).Unix()},
		{FlightNumber: "FFA0003", Origin: "JFK", Destination: "SFO", PlaneType: "A320", DepartureTime: departure.Add(6 * time.Hour).Unix(), ArrivalTime: departure.Add(12 * time.Hour).Unix()},
	}

	for _, in := range demo {
		command := application.NewAddFlightCommand(application.AddFlightData{Flight: in, Caller: owner})
		if err := bus.Dispatch(pkgInfra.WithNewRequestID(ctx), command); err != nil {
			pkgApp.LogError(ctx, appLogger, "Erro ao cadastrar voo de demonstração", err, map[string]interface{}{
				"flightNumber": in.FlightNumber,
			})
		}
	}
}
