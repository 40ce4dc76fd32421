package adapter

import (
	"context"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/mateusmacedo/airline-registry/pkg/application"
)

const (
	correlationIDKey = "correlation_id"
	requestIDKey     = "request_id"
	errorCodeKey     = "error_code"
	errorKey         = "error"

	responseSuffix = "_response"
)

// ResponseTopic é o tópico em que as respostas de uma consulta são publicadas.
func ResponseTopic(queryName string) string {
	return queryName + responseSuffix
}

func newMessage(ctx context.Context, payload []byte) *message.Message {
	msg := message.NewMessage(watermill.NewUUID(), payload)
	if requestID, ok := application.RequestIDFrom(ctx); ok {
		msg.Metadata.Set(requestIDKey, requestID)
	}
	return msg
}

// messageContext restaura o request id que viajou nos metadados.
func messageContext(parent context.Context, msg *message.Message) context.Context {
	if requestID := msg.Metadata.Get(requestIDKey); requestID != "" {
		return application.WithRequestID(parent, requestID)
	}
	return parent
}
