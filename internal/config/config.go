package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"

	BackendMemory  = "memory"
	BackendChannel = "channel"
	BackendRedis   = "redis"
	BackendKafka   = "kafka"
)

// Config é a configuração do serviço, lida do ambiente.
type Config struct {
	ServiceName string `env:"SERVICE_NAME" envDefault:"airline-registry"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	OpsAddr     string `env:"OPS_ADDR" envDefault:":8081"`

	StorageDriver string `env:"STORAGE_DRIVER" envDefault:"memory"`
	PostgresDSN   string `env:"POSTGRES_DSN"`

	EventBackend string `env:"EVENT_BACKEND" envDefault:"memory"`
	RedisAddr    string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	// RedisPoolSize 0 dimensiona o pool pelo número de tópicos.
	RedisPoolSize int      `env:"REDIS_POOL_SIZE" envDefault:"0"`
	KafkaBrokers  []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`
	ConsumerGroup string   `env:"CONSUMER_GROUP" envDefault:"airline-registry"`

	IntakeEnabled   bool   `env:"INTAKE_ENABLED" envDefault:"false"`
	SeedDemoFlights bool   `env:"SEED_DEMO_FLIGHTS" envDefault:"false"`
	DemoOwner       string `env:"DEMO_OWNER" envDefault:"airline-demo"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Load lê e valida a configuração.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.StorageDriver {
	case StorageMemory:
	case StoragePostgres:
		if c.PostgresDSN == "" {
			return errors.New("POSTGRES_DSN is required when STORAGE_DRIVER is postgres")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.StorageDriver)
	}

	switch c.EventBackend {
	case BackendMemory:
		if c.IntakeEnabled {
			return errors.New("INTAKE_ENABLED requires a broker backend")
		}
	case BackendChannel, BackendRedis:
	case BackendKafka:
		if len(c.KafkaBrokers) == 0 {
			return errors.New("KAFKA_BROKERS is required when EVENT_BACKEND is kafka")
		}
	default:
		return fmt.Errorf("unknown event backend %q", c.EventBackend)
	}

	if c.RedisPoolSize < 0 {
		return errors.New("REDIS_POOL_SIZE must not be negative")
	}
	if c.ShutdownTimeout <= 0 {
		return errors.New("SHUTDOWN_TIMEOUT must be positive")
	}
	return nil
}

// Broker informa se os barramentos passam por watermill.
func (c Config) Broker() bool {
	return c.EventBackend != BackendMemory
}
