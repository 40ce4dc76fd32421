package adapter

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/redis/go-redis/v9"
)

var errReplySubscriberClosed = errors.New("redis reply subscriber closed")

// replySubscriber assina cada tópico de respostas em fan-out a partir do último id gravado
// no stream no momento do Subscribe: toda resposta publicada depois do Subscribe é entregue.
type replySubscriber struct {
	client redis.UniversalClient
	logger watermill.LoggerAdapter

	mu          sync.Mutex
	subscribers []*redisstream.Subscriber
	closed      bool
}

func newReplySubscriber(client redis.UniversalClient, logger watermill.LoggerAdapter) *replySubscriber {
	return &replySubscriber{client: client, logger: logger}
}

func (s *replySubscriber) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	lastID, err := lastStreamID(ctx, s.client, topic)
	if err != nil {
		return nil, err
	}

	subscriber, err := redisstream.NewSubscriber(redisstream.SubscriberConfig{
		Client:         s.client,
		FanOutOldestId: lastID,
	}, s.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create redis stream reply subscriber: %w", err)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		_ = subscriber.Close()
		return nil, errReplySubscriberClosed
	}
	s.subscribers = append(s.subscribers, subscriber)
	s.mu.Unlock()

	return subscriber.Subscribe(ctx, topic)
}

func (s *replySubscriber) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	var errs []error
	for _, subscriber := range s.subscribers {
		errs = append(errs, subscriber.Close())
	}
	return errors.Join(errs...)
}

// lastStreamID retorna o id da entrada mais recente do stream, ou "0" se ele está vazio
// ou ainda não existe.
func lastStreamID(ctx context.Context, client redis.UniversalClient, stream string) (string, error) {
	entries, err := client.XRevRangeN(ctx, stream, "+", "-", 1).Result()
	if err != nil {
		return "", fmt.Errorf("failed to read last id of stream %s: %w", stream, err)
	}
	if len(entries) == 0 {
		return "0", nil
	}
	return entries[0].ID, nil
}
