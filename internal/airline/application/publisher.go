package application

import (
	"context"

	"github.com/mateusmacedo/airline-registry/internal/airline/domain"
	pkgApp "github.com/mateusmacedo/airline-registry/pkg/application"
)

// NotificationPublisher entrega as notificações do registro no barramento de eventos.
// A mutação já foi confirmada quando Publish é chamado: o cancelamento do contexto do
// chamador não interrompe a entrega e falhas de publicação são apenas logadas.
type NotificationPublisher struct {
	eventBus NotificationBus
	logger   pkgApp.AppLogger
}

func NewNotificationPublisher(eventBus NotificationBus, logger pkgApp.AppLogger) *NotificationPublisher {
	return &NotificationPublisher{eventBus: eventBus, logger: logger}
}

func (p *NotificationPublisher) Publish(ctx context.Context, notification domain.Notification) {
	ctx = context.WithoutCancel(ctx)
	if err := p.eventBus.Publish(ctx, NewNotificationEvent(notification)); err != nil {
		pkgApp.LogError(ctx, p.logger, "Erro ao publicar evento", err, map[string]interface{}{
			"event":     notification.Name,
			"flight_id": notification.Payload.FlightID,
		})
	}
}
