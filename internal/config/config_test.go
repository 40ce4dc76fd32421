package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "airline-registry", cfg.ServiceName)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, ":8081", cfg.OpsAddr)
	assert.Equal(t, StorageMemory, cfg.StorageDriver)
	assert.Equal(t, BackendMemory, cfg.EventBackend)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "airline-demo", cfg.DemoOwner)
	assert.False(t, cfg.IntakeEnabled)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 0, cfg.RedisPoolSize)
	assert.False(t, cfg.Broker())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "postgres")
	t.Setenv("POSTGRES_DSN", "host=db user=airline dbname=airline")
	t.Setenv("EVENT_BACKEND", "kafka")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092,kafka-2:9092")
	t.Setenv("INTAKE_ENABLED", "true")
	t.Setenv("SHUTDOWN_TIMEOUT", "3s")
	t.Setenv("REDIS_POOL_SIZE", "32")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StoragePostgres, cfg.StorageDriver)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.IntakeEnabled)
	assert.True(t, cfg.Broker())
	assert.Equal(t, 3*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 32, cfg.RedisPoolSize)
}

func TestLoadRejectsMalformedValues(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "soon")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env")
}

func TestValidate(t *testing.T) {
	valid := Config{StorageDriver: StorageMemory, EventBackend: BackendMemory, ShutdownTimeout: time.Second}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "unknown driver", mutate: func(c *Config) { c.StorageDriver = "sqlite" }, wantErr: `unknown storage driver "sqlite"`},
		{name: "postgres without dsn", mutate: func(c *Config) { c.StorageDriver = StoragePostgres }, wantErr: "POSTGRES_DSN is required"},
		{name: "unknown backend", mutate: func(c *Config) { c.EventBackend = "nats" }, wantErr: `unknown event backend "nats"`},
		{name: "intake without broker", mutate: func(c *Config) { c.IntakeEnabled = true }, wantErr: "requires a broker backend"},
		{name: "intake on channel", mutate: func(c *Config) { c.EventBackend = BackendChannel; c.IntakeEnabled = true }},
		{name: "kafka without brokers", mutate: func(c *Config) { c.EventBackend = BackendKafka }, wantErr: "KAFKA_BROKERS is required"},
		{name: "negative redis pool", mutate: func(c *Config) { c.RedisPoolSize = -1 }, wantErr: "REDIS_POOL_SIZE must not be negative"},
		{name: "zero shutdown timeout", mutate: func(c *Config) { c.ShutdownTimeout = 0 }, wantErr: "SHUTDOWN_TIMEOUT must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
