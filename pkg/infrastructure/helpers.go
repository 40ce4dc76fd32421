package infrastructure

import (
	"context"

	"github.com/google/uuid"

	"github.com/mateusmacedo/airline-registry/pkg/application"
)

func GenerateUUID() string {
	return uuid.New().String()
}

// WithNewRequestID anexa um novo request id ao contexto, preservando um já existente.
func WithNewRequestID(ctx context.Context) context.Context {
	if _, ok := application.RequestIDFrom(ctx); ok {
		return ctx
	}
	return application.WithRequestID(ctx, GenerateUUID())
}
