package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/mateusmacedo/airline-registry/pkg/application"
	"github.com/mateusmacedo/airline-registry/pkg/domain"
)

// WatermillEventBus publica eventos no tópico de mesmo nome. Manipuladores registrados
// consomem o tópico; cada mensagem é entregue a todos eles, em ordem de chegada.
type WatermillEventBus[E domain.Event[D], D any] struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	handlers   map[string][]application.EventHandler[E, D]
	mu         sync.RWMutex
	logger     application.AppLogger
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
}

func NewWatermillEventBus[E domain.Event[D], D any](publisher message.Publisher, subscriber message.Subscriber, logger application.AppLogger) *WatermillEventBus[E, D] {
	ctx, cancel := context.WithCancel(context.Background())
	return &WatermillEventBus[E, D]{
		publisher:  publisher,
		subscriber: subscriber,
		handlers:   make(map[string][]application.EventHandler[E, D]),
		logger:     logger,
		ctx:        ctx,
		cancel:     cancel,
	}
}

func (bus *WatermillEventBus[E, D]) RegisterHandler(eventName string, handler application.EventHandler[E, D]) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	_, subscribed := bus.handlers[eventName]
	bus.handlers[eventName] = append(bus.handlers[eventName], handler)
	if subscribed {
		return
	}

	messages, err := bus.subscriber.Subscribe(bus.ctx, eventName)
	if err != nil {
		application.LogError(bus.ctx, bus.logger, "error subscribing to event", err, map[string]interface{}{
			"event_name": eventName,
		})
		return
	}

	bus.wg.Add(1)
	go func() {
		defer bus.wg.Done()
		for msg := range messages {
			bus.handle(eventName, msg)
		}
	}()
}

func (bus *WatermillEventBus[E, D]) handle(eventName string, msg *message.Message) {
	defer msg.Ack()

	ctx := messageContext(bus.ctx, msg)

	var payload D
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		application.LogError(ctx, bus.logger, "error unmarshalling event payload", err, map[string]interface{}{
			"event_name":   eventName,
			"message_uuid": msg.UUID,
		})
		return
	}

	typedEvent, ok := interface{}(&dynamicEvent[D]{eventName: eventName, payload: payload}).(E)
	if !ok {
		application.LogError(ctx, bus.logger, "error asserting event type", nil, map[string]interface{}{
			"event_name": eventName,
		})
		return
	}

	bus.mu.RLock()
	handlers := append([]application.EventHandler[E, D](nil), bus.handlers[eventName]...)
	bus.mu.RUnlock()

	var errs []error
	for _, handler := range handlers {
		if err := handler.Handle(ctx, typedEvent); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		application.LogError(ctx, bus.logger, "error handling event", err, map[string]interface{}{
			"event_name":   eventName,
			"message_uuid": msg.UUID,
		})
	}
}

func (bus *WatermillEventBus[E, D]) Publish(ctx context.Context, event E) error {
	eventName := event.EventName()

	payload, err := application.MarshalPayload(event.Payload())
	if err != nil {
		application.LogError(ctx, bus.logger, "error marshalling event payload", err, map[string]interface{}{
			"event_name": eventName,
		})
		return err
	}

	msg := newMessage(ctx, payload)
	if err := bus.publisher.Publish(eventName, msg); err != nil {
		application.LogError(ctx, bus.logger, "error publishing event", err, map[string]interface{}{
			"event_name": eventName,
		})
		return err
	}

	application.LogTrace(ctx, bus.logger, "event published", map[string]interface{}{
		"event_name":   eventName,
		"message_uuid": msg.UUID,
	})
	return nil
}

func (bus *WatermillEventBus[E, D]) Close() {
	bus.cancel()
	bus.wg.Wait()
}

type dynamicEvent[D any] struct {
	eventName string
	payload   D
}

func (e *dynamicEvent[D]) EventName() string {
	return e.eventName
}

func (e *dynamicEvent[D]) Payload() D {
	return e.payload
}
