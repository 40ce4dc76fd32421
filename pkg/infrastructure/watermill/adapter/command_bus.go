package adapter

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/mateusmacedo/airline-registry/pkg/application"
	"github.com/mateusmacedo/airline-registry/pkg/domain"
)

// WatermillCommandBus publica comandos no tópico de mesmo nome e, quando há manipulador
// registrado, consome esse tópico em ordem, uma mensagem por vez.
//
// C precisa ser um tipo interface satisfeito por dynamicCommand (tipicamente domain.Command[T]).
type WatermillCommandBus[C domain.Command[T], T any] struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	handlers   map[string]application.CommandHandler[C, T]
	mu         sync.RWMutex
	logger     application.AppLogger
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
}

func NewWatermillCommandBus[C domain.Command[T], T any](publisher message.Publisher, subscriber message.Subscriber, logger application.AppLogger) *WatermillCommandBus[C, T] {
	ctx, cancel := context.WithCancel(context.Background())
	return &WatermillCommandBus[C, T]{
		publisher:  publisher,
		subscriber: subscriber,
		handlers:   make(map[string]application.CommandHandler[C, T]),
		logger:     logger,
		ctx:        ctx,
		cancel:     cancel,
	}
}

func (bus *WatermillCommandBus[C, T]) RegisterHandler(commandName string, handler application.CommandHandler[C, T]) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	if _, exists := bus.handlers[commandName]; exists {
		bus.handlers[commandName] = handler
		return
	}
	bus.handlers[commandName] = handler

	messages, err := bus.subscriber.Subscribe(bus.ctx, commandName)
	if err != nil {
		application.LogError(bus.ctx, bus.logger, "error subscribing to command", err, map[string]interface{}{
			"command_name": commandName,
		})
		return
	}

	bus.wg.Add(1)
	go func() {
		defer bus.wg.Done()
		for msg := range messages {
			bus.handle(commandName, msg)
		}
	}()
}

func (bus *WatermillCommandBus[C, T]) handle(commandName string, msg *message.Message) {
	// O comando é confirmado mesmo quando falha: a rejeição é definitiva e já foi logada.
	defer msg.Ack()

	ctx := messageContext(bus.ctx, msg)

	var payload T
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		application.LogError(ctx, bus.logger, "error unmarshalling command payload", err, map[string]interface{}{
			"command_name": commandName,
			"message_uuid": msg.UUID,
		})
		return
	}

	typedCommand, ok := interface{}(&dynamicCommand[T]{commandName: commandName, payload: payload}).(C)
	if !ok {
		application.LogError(ctx, bus.logger, "error asserting command type", nil, map[string]interface{}{
			"command_name": commandName,
		})
		return
	}

	bus.mu.RLock()
	handler := bus.handlers[commandName]
	bus.mu.RUnlock()

	if err := handler.Handle(ctx, typedCommand); err != nil {
		application.LogError(ctx, bus.logger, "error handling command", err, map[string]interface{}{
			"command_name": commandName,
			"message_uuid": msg.UUID,
		})
		return
	}

	application.LogTrace(ctx, bus.logger, "command handled", map[string]interface{}{
		"command_name": commandName,
		"message_uuid": msg.UUID,
	})
}

// Dispatch é assíncrono: retorna assim que o broker aceita a mensagem.
func (bus *WatermillCommandBus[C, T]) Dispatch(ctx context.Context, command C) error {
	payload, err := application.MarshalPayload(command.Payload())
	if err != nil {
		application.LogError(ctx, bus.logger, "error marshalling command payload", err, map[string]interface{}{
			"command_name": command.CommandName(),
		})
		return err
	}

	msg := newMessage(ctx, payload)
	if err := bus.publisher.Publish(command.CommandName(), msg); err != nil {
		application.LogError(ctx, bus.logger, "error publishing command", err, map[string]interface{}{
			"command_name": command.CommandName(),
		})
		return err
	}

	application.LogTrace(ctx, bus.logger, "command dispatched", map[string]interface{}{
		"command_name": command.CommandName(),
		"message_uuid": msg.UUID,
	})
	return nil
}

// Close encerra as assinaturas e aguarda a mensagem em processamento.
func (bus *WatermillCommandBus[C, T]) Close() {
	bus.cancel()
	bus.wg.Wait()
}

type dynamicCommand[T any] struct {
	commandName string
	payload     T
}

func (c *dynamicCommand[T]) CommandName() string {
	return c.commandName
}

func (c *dynamicCommand[T]) Payload() T {
	return c.payload
}
