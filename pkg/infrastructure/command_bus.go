package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/mateusmacedo/airline-registry/pkg/application"
	"github.com/mateusmacedo/airline-registry/pkg/domain"
)

// ErrNoHandler é retornado quando nenhum manipulador foi registrado para o nome despachado.
var ErrNoHandler = errors.New("no handler registered")

type simpleCommandBus[C domain.Command[D], D any] struct {
	handlers map[string]application.CommandHandler[C, D]
	mu       sync.RWMutex
}

func NewSimpleCommandBus[C domain.Command[D], D any]() application.CommandBus[C, D] {
	return &simpleCommandBus[C, D]{
		handlers: make(map[string]application.CommandHandler[C, D]),
	}
}

func (bus *simpleCommandBus[C, D]) RegisterHandler(commandName string, handler application.CommandHandler[C, D]) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	bus.handlers[commandName] = handler
}

func (bus *simpleCommandBus[C, D]) Dispatch(ctx context.Context, command C) error {
	bus.mu.RLock()
	handler, found := bus.handlers[command.CommandName()]
	bus.mu.RUnlock()

	if !found {
		return fmt.Errorf("%w for command %s", ErrNoHandler, command.CommandName())
	}

	return handler.Handle(ctx, command)
}
