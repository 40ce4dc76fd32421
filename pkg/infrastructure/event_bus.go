package infrastructure

import (
	"context"
	"errors"
	"sync"

	"github.com/mateusmacedo/airline-registry/pkg/application"
	"github.com/mateusmacedo/airline-registry/pkg/domain"
)

// simpleEventBus é uma implementação simples de um barramento de eventos que utiliza goroutines.
// Publish só retorna quando todos os manipuladores terminaram, preservando a ordem entre eventos.
type simpleEventBus[E domain.Event[T], T any] struct {
	handlers map[string][]application.EventHandler[E, T]
	mu       sync.RWMutex
	logger   application.AppLogger
}

// NewSimpleEventBus cria uma nova instância do SimpleEventBus.
func NewSimpleEventBus[E domain.Event[T], T any](logger application.AppLogger) application.EventBus[E, T] {
	return &simpleEventBus[E, T]{
		handlers: make(map[string][]application.EventHandler[E, T]),
		logger:   logger,
	}
}

// RegisterHandler registra um manipulador para um evento específico.
func (bus *simpleEventBus[E, T]) RegisterHandler(eventName string, handler application.EventHandler[E, T]) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	bus.handlers[eventName] = append(bus.handlers[eventName], handler)
}

// Publish publica um evento para os manipuladores registrados usando goroutines.
func (bus *simpleEventBus[E, T]) Publish(ctx context.Context, event E) error {
	bus.mu.RLock()
	handlers, found := bus.handlers[event.EventName()]
	bus.mu.RUnlock()

	if !found {
		application.LogDebug(ctx, bus.logger, "no handler registered for event", map[string]interface{}{
			"event_name": event.EventName(),
		})
		return nil // Nenhum manipulador registrado, consideramos um sucesso silencioso
	}

	var wg sync.WaitGroup
	errChan := make(chan error, len(handlers))
	done := make(chan struct{})

	for _, handler := range handlers {
		wg.Add(1)
		go func(h application.EventHandler[E, T]) {
			defer wg.Done()
			if err := h.Handle(ctx, event); err != nil {
				errChan <- err
			}
		}(handler)
	}

	go func() {
		wg.Wait()
		close(errChan)
		close(done)
	}()

	select {
	case <-ctx.Done():
		application.LogError(ctx, bus.logger, "error publishing event", ctx.Err(), map[string]interface{}{
			"event_name": event.EventName(),
		})
		return ctx.Err()
	case <-done:
		application.LogTrace(ctx, bus.logger, "event published", map[string]interface{}{
			"event_name": event.EventName(),
			"handlers":   len(handlers),
		})
		return bus.collectErrors(ctx, event.EventName(), errChan)
	}
}

// collectErrors coleta todos os erros de um canal e retorna um erro agregando todos eles.
func (bus *simpleEventBus[E, T]) collectErrors(ctx context.Context, eventName string, errChan <-chan error) error {
	var errs []error
	for err := range errChan {
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return nil
	}
	joined := errors.Join(errs...)
	application.LogError(ctx, bus.logger, "error handling event", joined, map[string]interface{}{
		"event_name": eventName,
		"failures":   len(errs),
	})
	return joined
}
