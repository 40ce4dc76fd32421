package adapter

import (
	"errors"
	"fmt"

	"github.com/Shopify/sarama"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"

	"github.com/mateusmacedo/airline-registry/pkg/application"
	watermillAdapter "github.com/mateusmacedo/airline-registry/pkg/infrastructure/watermill/adapter"
)

type Config struct {
	Brokers       []string
	ConsumerGroup string
	ClientID      string
}

func (c Config) saramaSubscriberConfig(initialOffset int64) *sarama.Config {
	saramaConfig := kafka.DefaultSaramaSubscriberConfig()
	saramaConfig.Version = sarama.V1_0_0_0
	saramaConfig.Consumer.Offsets.Initial = initialOffset
	saramaConfig.Consumer.Return.Errors = true
	if c.ClientID != "" {
		saramaConfig.ClientID = c.ClientID
	}
	return saramaConfig
}

// NewKafkaPubSub cria publisher e subscribers Kafka. Comandos, consultas e eventos são
// consumidos no consumer group configurado; respostas de consultas são lidas sem grupo,
// a partir das mensagens mais novas, para que toda instância veja as suas.
func NewKafkaPubSub(config Config, logger application.AppLogger) (watermillAdapter.PubSub, error) {
	if len(config.Brokers) == 0 {
		return watermillAdapter.PubSub{}, errors.New("kafka: at least one broker is required")
	}
	wmLogger := watermillAdapter.NewWatermillLoggerAdapter(logger)
	marshaler := kafka.DefaultMarshaler{}

	publisherSarama := kafka.DefaultSaramaSyncPublisherConfig()
	publisherSarama.Version = sarama.V1_0_0_0
	if config.ClientID != "" {
		publisherSarama.ClientID = config.ClientID
	}

	publisher, err := kafka.NewPublisher(kafka.PublisherConfig{
		Brokers:               config.Brokers,
		Marshaler:             marshaler,
		OverwriteSaramaConfig: publisherSarama,
	}, wmLogger)
	if err != nil {
		return watermillAdapter.PubSub{}, fmt.Errorf("failed to create kafka publisher: %w", err)
	}

	topicDetails := &sarama.TopicDetail{
		NumPartitions:     1,
		ReplicationFactor: 1,
	}

	subscriber, err := kafka.NewSubscriber(kafka.SubscriberConfig{
		Brokers:                config.Brokers,
		Unmarshaler:            marshaler,
		ConsumerGroup:          config.ConsumerGroup,
		OverwriteSaramaConfig:  config.saramaSubscriberConfig(sarama.OffsetOldest),
		InitializeTopicDetails: topicDetails,
	}, wmLogger)
	if err != nil {
		_ = publisher.Close()
		return watermillAdapter.PubSub{}, fmt.Errorf("failed to create kafka subscriber: %w", err)
	}

	replies, err := kafka.NewSubscriber(kafka.SubscriberConfig{
		Brokers:                config.Brokers,
		Unmarshaler:            marshaler,
		OverwriteSaramaConfig:  config.saramaSubscriberConfig(sarama.OffsetNewest),
		InitializeTopicDetails: topicDetails,
	}, wmLogger)
	if err != nil {
		_ = publisher.Close()
		_ = subscriber.Close()
		return watermillAdapter.PubSub{}, fmt.Errorf("failed to create kafka reply subscriber: %w", err)
	}

	return watermillAdapter.PubSub{
		Publisher:  publisher,
		Subscriber: subscriber,
		Replies:    replies,
	}, nil
}

// InitializeTopics cria os tópicos ainda inexistentes antes das assinaturas.
func InitializeTopics(pubSub watermillAdapter.PubSub, topics ...string) error {
	initializer, ok := pubSub.Subscriber.(interface{ SubscribeInitialize(topic string) error })
	if !ok {
		return nil
	}
	for _, topic := range topics {
		if err := initializer.SubscribeInitialize(topic); err != nil {
			return fmt.Errorf("failed to initialize kafka topic %q: %w", topic, err)
		}
	}
	return nil
}
