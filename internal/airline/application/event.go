package application

import (
	"github.com/mateusmacedo/airline-registry/internal/airline/domain"
	pkgDomain "github.com/mateusmacedo/airline-registry/pkg/domain"
)

// EventNames lista os eventos emitidos pelo registro.
var EventNames = []string{domain.EventFlightAdded, domain.EventFlightChanged, domain.EventSeatChanged}

type NotificationEvent = pkgDomain.Event[domain.NotificationPayload]

type notificationEvent struct {
	name    string
	payload domain.NotificationPayload
}

func (e notificationEvent) EventName() string {
	return e.name
}

func (e notificationEvent) Payload() domain.NotificationPayload {
	return e.payload
}

// NewNotificationEvent converte uma notificação do registro em evento do barramento.
func NewNotificationEvent(notification domain.Notification) NotificationEvent {
	return notificationEvent{name: notification.Name, payload: notification.Payload}
}
