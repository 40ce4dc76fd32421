package adapter

import (
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/mateusmacedo/airline-registry/pkg/application"
	watermillAdapter "github.com/mateusmacedo/airline-registry/pkg/infrastructure/watermill/adapter"
)

// NewGoChannelPubSub cria um broker em memória. O publish só retorna depois que todos os
// assinantes confirmaram a mensagem, de modo que a ordem de publicação é a ordem de entrega.
func NewGoChannelPubSub(logger application.AppLogger) watermillAdapter.PubSub {
	pubSub := gochannel.NewGoChannel(gochannel.Config{
		BlockPublishUntilSubscriberAck: true,
	}, watermillAdapter.NewWatermillLoggerAdapter(logger))

	return watermillAdapter.PubSub{
		Publisher:  pubSub,
		Subscriber: pubSub,
		Replies:    pubSub,
	}
}
