package infrastructure

import (
	"context"
	"fmt"
	"sync"

	"github.com/mateusmacedo/airline-registry/pkg/application"
	"github.com/mateusmacedo/airline-registry/pkg/domain"
)

type simpleQueryBus[Q domain.Query[D], D any, R any] struct {
	handlers map[string]application.QueryHandler[Q, D, R]
	mu       sync.RWMutex
}

func NewSimpleQueryBus[Q domain.Query[D], D any, R any]() application.QueryBus[Q, D, R] {
	return &simpleQueryBus[Q, D, R]{
		handlers: make(map[string]application.QueryHandler[Q, D, R]),
	}
}

func (bus *simpleQueryBus[Q, D, R]) RegisterHandler(queryName string, handler application.QueryHandler[Q, D, R]) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	bus.handlers[queryName] = handler
}

func (bus *simpleQueryBus[Q, D, R]) Dispatch(ctx context.Context, query Q) (R, error) {
	bus.mu.RLock()
	handler, found := bus.handlers[query.QueryName()]
	bus.mu.RUnlock()

	var zero R
	if !found {
		return zero, fmt.Errorf("%w for query %s", ErrNoHandler, query.QueryName())
	}

	type outcome struct {
		result R
		err    error
	}
	done := make(chan outcome, 1)

	go func() {
		result, err := handler.Handle(ctx, query)
		done <- outcome{result: result, err: err}
	}()

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case out := <-done:
		return out.result, out.err
	}
}
