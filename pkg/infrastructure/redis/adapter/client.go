package adapter

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// PoolHeadroom são as conexões além das assinaturas, livres para publish e comandos avulsos.
const PoolHeadroom = 10

// PoolSizeFor dimensiona o pool para subscriptions leituras bloqueantes simultâneas.
// Cada assinatura de stream ocupa uma conexão enquanto espera mensagens.
func PoolSizeFor(subscriptions int) int {
	if subscriptions < 0 {
		subscriptions = 0
	}
	return subscriptions + PoolHeadroom
}

// NewRedisClient cria o cliente. poolSize <= 0 mantém o padrão do go-redis.
func NewRedisClient(addr string, poolSize int) redis.UniversalClient {
	options := &redis.Options{
		Addr:     addr,
		Password: "",
		DB:       0,
	}
	if poolSize > 0 {
		options.PoolSize = poolSize
	}
	return redis.NewClient(options)
}

// Ping verifica a conexão; usado pelo readiness do serviço.
func Ping(ctx context.Context, client redis.UniversalClient) error {
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}
	return nil
}
