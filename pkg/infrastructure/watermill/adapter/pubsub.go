package adapter

import (
	"errors"

	"github.com/ThreeDotsLabs/watermill/message"
)

// PubSub agrupa os lados de um broker usados pelos barramentos.
// Replies recebe as respostas de consultas; deve entregar cada mensagem a todas as
// instâncias (sem consumer group), senão uma resposta pode cair na instância errada.
type PubSub struct {
	Publisher  message.Publisher
	Subscriber message.Subscriber
	Replies    message.Subscriber
}

func (p PubSub) Close() error {
	var errs []error
	if p.Publisher != nil {
		errs = append(errs, p.Publisher.Close())
	}
	if p.Subscriber != nil {
		errs = append(errs, p.Subscriber.Close())
	}
	if p.Replies != nil && p.Replies != p.Subscriber {
		errs = append(errs, p.Replies.Close())
	}
	return errors.Join(errs...)
}
