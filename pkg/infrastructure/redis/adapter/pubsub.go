package adapter

import (
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/redis/go-redis/v9"

	"github.com/mateusmacedo/airline-registry/pkg/application"
	watermillAdapter "github.com/mateusmacedo/airline-registry/pkg/infrastructure/watermill/adapter"
)

// NewRedisStreamPubSub cria publisher e subscribers sobre Redis Streams. O subscriber
// principal usa o consumer group; o de respostas não usa grupo (fan-out) e começa cada
// tópico depois da última entrada existente.
func NewRedisStreamPubSub(client redis.UniversalClient, consumerGroup string, logger application.AppLogger) (watermillAdapter.PubSub, error) {
	wmLogger := watermillAdapter.NewWatermillLoggerAdapter(logger)

	publisher, err := redisstream.NewPublisher(redisstream.PublisherConfig{
		Client: client,
	}, wmLogger)
	if err != nil {
		return watermillAdapter.PubSub{}, fmt.Errorf("failed to create redis stream publisher: %w", err)
	}

	subscriber, err := redisstream.NewSubscriber(redisstream.SubscriberConfig{
		Client:        client,
		ConsumerGroup: consumerGroup,
		Consumer:      watermill.NewShortUUID(),
	}, wmLogger)
	if err != nil {
		_ = publisher.Close()
		return watermillAdapter.PubSub{}, fmt.Errorf("failed to create redis stream subscriber: %w", err)
	}

	return watermillAdapter.PubSub{
		Publisher:  publisher,
		Subscriber: subscriber,
		Replies:    newReplySubscriber(client, wmLogger),
	}, nil
}
