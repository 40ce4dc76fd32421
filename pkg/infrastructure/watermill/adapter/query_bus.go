package adapter

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/mateusmacedo/airline-registry/pkg/application"
	"github.com/mateusmacedo/airline-registry/pkg/domain"
)

// DefaultQueryTimeout limita Dispatch quando o contexto do chamador não tem prazo.
const DefaultQueryTimeout = 10 * time.Second

// InternalErrorCode marca falhas do próprio barramento nas respostas.
const InternalErrorCode = "internal"

var errUnsupportedQueryType = busError{code: InternalErrorCode, message: "query type not supported by the bus"}

type busError struct {
	code    string
	message string
}

func (e busError) Error() string {
	return e.message
}

func (e busError) ErrorCode() string {
	return e.code
}

// WatermillQueryBus implementa request/response sobre pub/sub: a consulta vai para o tópico
// com o nome da consulta e a resposta volta em ResponseTopic, casada pelo correlation_id.
// Falhas do manipulador viajam nos metadados error_code/error e voltam como *application.RemoteError.
type WatermillQueryBus[Q domain.Query[D], D any, R any] struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	replies    message.Subscriber
	handlers   map[string]application.QueryHandler[Q, D, R]
	mu         sync.RWMutex
	logger     application.AppLogger
	timeout    time.Duration
	pending    map[string]chan *message.Message
	listening  map[string]bool
	pendingMu  sync.Mutex
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
}

func NewWatermillQueryBus[Q domain.Query[D], D any, R any](pubSub PubSub, logger application.AppLogger) *WatermillQueryBus[Q, D, R] {
	replies := pubSub.Replies
	if replies == nil {
		replies = pubSub.Subscriber
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &WatermillQueryBus[Q, D, R]{
		publisher:  pubSub.Publisher,
		subscriber: pubSub.Subscriber,
		replies:    replies,
		handlers:   make(map[string]application.QueryHandler[Q, D, R]),
		logger:     logger,
		timeout:    DefaultQueryTimeout,
		pending:    make(map[string]chan *message.Message),
		listening:  make(map[string]bool),
		ctx:        ctx,
		cancel:     cancel,
	}
}

func (bus *WatermillQueryBus[Q, D, R]) RegisterHandler(queryName string, handler application.QueryHandler[Q, D, R]) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	if _, exists := bus.handlers[queryName]; exists {
		bus.handlers[queryName] = handler
		return
	}
	bus.handlers[queryName] = handler

	messages, err := bus.subscriber.Subscribe(bus.ctx, queryName)
	if err != nil {
		application.LogError(bus.ctx, bus.logger, "error subscribing to query", err, map[string]interface{}{
			"query_name": queryName,
		})
		return
	}

	bus.wg.Add(1)
	go func() {
		defer bus.wg.Done()
		for msg := range messages {
			bus.handle(queryName, msg)
		}
	}()
}

func (bus *WatermillQueryBus[Q, D, R]) handle(queryName string, msg *message.Message) {
	// Confirma antes de responder: em brokers que bloqueiam o publish até o ack,
	// o solicitante só passa a ler respostas depois que a consulta foi confirmada.
	msg.Ack()

	ctx := messageContext(bus.ctx, msg)
	correlationID := msg.Metadata.Get(correlationIDKey)

	var payload D
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		application.LogError(ctx, bus.logger, "error unmarshalling query payload", err, map[string]interface{}{
			"query_name": queryName,
		})
		bus.reply(ctx, queryName, correlationID, nil, err)
		return
	}

	typedQuery, ok := interface{}(&dynamicQuery[D]{queryName: queryName, payload: payload}).(Q)
	if !ok {
		application.LogError(ctx, bus.logger, "error asserting query type", errUnsupportedQueryType, map[string]interface{}{
			"query_name": queryName,
		})
		bus.reply(ctx, queryName, correlationID, nil, errUnsupportedQueryType)
		return
	}

	bus.mu.RLock()
	handler := bus.handlers[queryName]
	bus.mu.RUnlock()

	result, err := handler.Handle(ctx, typedQuery)
	if err != nil {
		application.LogDebug(ctx, bus.logger, "query rejected", map[string]interface{}{
			"query_name": queryName,
			"error":      err,
		})
	}

	responsePayload, marshalErr := application.MarshalPayload(result)
	if marshalErr != nil {
		application.LogError(ctx, bus.logger, "error marshalling query result", marshalErr, map[string]interface{}{
			"query_name": queryName,
		})
		bus.reply(ctx, queryName, correlationID, nil, marshalErr)
		return
	}
	bus.reply(ctx, queryName, correlationID, responsePayload, err)
}

func (bus *WatermillQueryBus[Q, D, R]) reply(ctx context.Context, queryName, correlationID string, payload []byte, handlerErr error) {
	responseMsg := newMessage(ctx, payload)
	responseMsg.Metadata.Set(correlationIDKey, correlationID)
	if handlerErr != nil {
		responseMsg.Metadata.Set(errorKey, handlerErr.Error())
		responseMsg.Metadata.Set(errorCodeKey, application.ErrorCodeOf(handlerErr))
	}

	if err := bus.publisher.Publish(ResponseTopic(queryName), responseMsg); err != nil {
		application.LogError(ctx, bus.logger, "error publishing query response", err, map[string]interface{}{
			"query_name": queryName,
		})
		return
	}

	application.LogTrace(ctx, bus.logger, "query handled", map[string]interface{}{
		"query_name":     queryName,
		"correlation_id": correlationID,
	})
}

func (bus *WatermillQueryBus[Q, D, R]) Dispatch(ctx context.Context, query Q) (R, error) {
	var zero R
	queryName := query.QueryName()

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		bus.mu.RLock()
		timeout := bus.timeout
		bus.mu.RUnlock()

		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	payload, err := application.MarshalPayload(query.Payload())
	if err != nil {
		application.LogError(ctx, bus.logger, "error marshalling query payload", err, map[string]interface{}{
			"query_name": queryName,
		})
		return zero, err
	}

	if err := bus.listenReplies(queryName); err != nil {
		application.LogError(ctx, bus.logger, "error subscribing to query response", err, map[string]interface{}{
			"query_name": queryName,
		})
		return zero, err
	}

	correlationID := watermill.NewUUID()
	response := make(chan *message.Message, 1)
	bus.pendingMu.Lock()
	bus.pending[correlationID] = response
	bus.pendingMu.Unlock()
	defer func() {
		bus.pendingMu.Lock()
		delete(bus.pending, correlationID)
		bus.pendingMu.Unlock()
	}()

	msg := newMessage(ctx, payload)
	msg.Metadata.Set(correlationIDKey, correlationID)
	if err := bus.publisher.Publish(queryName, msg); err != nil {
		application.LogError(ctx, bus.logger, "error publishing query", err, map[string]interface{}{
			"query_name": queryName,
		})
		return zero, err
	}

	select {
	case <-ctx.Done():
		application.LogError(ctx, bus.logger, "error dispatching query", ctx.Err(), map[string]interface{}{
			"query_name":     queryName,
			"correlation_id": correlationID,
		})
		return zero, ctx.Err()
	case responseMsg := <-response:
		return bus.decode(ctx, queryName, responseMsg)
	}
}

// listenReplies assina o tópico de respostas uma única vez por consulta e
// entrega cada resposta ao Dispatch que aguarda o seu correlation_id.
func (bus *WatermillQueryBus[Q, D, R]) listenReplies(queryName string) error {
	bus.pendingMu.Lock()
	defer bus.pendingMu.Unlock()
	if bus.listening[queryName] {
		return nil
	}

	responses, err := bus.replies.Subscribe(bus.ctx, ResponseTopic(queryName))
	if err != nil {
		return err
	}
	bus.listening[queryName] = true

	bus.wg.Add(1)
	go func() {
		defer bus.wg.Done()
		for responseMsg := range responses {
			responseMsg.Ack()
			correlationID := responseMsg.Metadata.Get(correlationIDKey)

			bus.pendingMu.Lock()
			waiting, found := bus.pending[correlationID]
			bus.pendingMu.Unlock()
			if !found {
				continue
			}
			select {
			case waiting <- responseMsg:
			default:
			}
		}
	}()
	return nil
}

func (bus *WatermillQueryBus[Q, D, R]) decode(ctx context.Context, queryName string, responseMsg *message.Message) (R, error) {
	var result R
	if len(responseMsg.Payload) > 0 {
		if err := json.Unmarshal(responseMsg.Payload, &result); err != nil {
			application.LogError(ctx, bus.logger, "error unmarshalling query response", err, map[string]interface{}{
				"query_name": queryName,
			})
			var zero R
			return zero, err
		}
	}

	if errMessage := responseMsg.Metadata.Get(errorKey); errMessage != "" {
		return result, &application.RemoteError{
			Name:    queryName,
			Code:    responseMsg.Metadata.Get(errorCodeKey),
			Message: errMessage,
		}
	}
	return result, nil
}

// SetTimeout altera o prazo aplicado quando o contexto do chamador não tem um.
func (bus *WatermillQueryBus[Q, D, R]) SetTimeout(timeout time.Duration) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	bus.timeout = timeout
}

// Close encerra as assinaturas de consultas e de respostas.
func (bus *WatermillQueryBus[Q, D, R]) Close() {
	bus.cancel()
	bus.wg.Wait()
}

type dynamicQuery[D any] struct {
	queryName string
	payload   D
}

func (q *dynamicQuery[D]) QueryName() string {
	return q.queryName
}

func (q *dynamicQuery[D]) Payload() D {
	return q.payload
}
