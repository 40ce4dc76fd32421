package application

import (
	"github.com/mateusmacedo/airline-registry/internal/airline/domain"
	pkgApp "github.com/mateusmacedo/airline-registry/pkg/application"
	pkgDomain "github.com/mateusmacedo/airline-registry/pkg/domain"
)

type (
	AddFlightBus    = pkgApp.CommandBus[pkgDomain.Command[AddFlightData], AddFlightData]
	UpdateFlightBus = pkgApp.CommandBus[pkgDomain.Command[UpdateFlightData], UpdateFlightData]
	DeleteFlightBus = pkgApp.CommandBus[pkgDomain.Command[DeleteFlightData], DeleteFlightData]
	SeatBus         = pkgApp.CommandBus[pkgDomain.Command[SeatData], SeatData]

	GetFlightBus             = pkgApp.QueryBus[pkgDomain.Query[FlightData], FlightData, domain.FlightView]
	ListFlightIDsBus         = pkgApp.QueryBus[pkgDomain.Query[ListFlightIDsData], ListFlightIDsData, []domain.FlightID]
	SeatAvailabilityBus      = pkgApp.QueryBus[pkgDomain.Query[FlightData], FlightData, [][]bool]
	SeatPassengerNamesBus    = pkgApp.QueryBus[pkgDomain.Query[SeatPassengerNamesData], SeatPassengerNamesData, [][]string]
	NotificationBus          = pkgApp.EventBus[NotificationEvent, domain.NotificationPayload]
	NotificationEventHandler = pkgApp.EventHandler[NotificationEvent, domain.NotificationPayload]
)

// CommandBuses agrupa um barramento por comando. BookSeat e CancelSeat compartilham o payload,
// mas cada um tem o seu barramento.
type CommandBuses struct {
	AddFlight    AddFlightBus
	UpdateFlight UpdateFlightBus
	DeleteFlight DeleteFlightBus
	BookSeat     SeatBus
	CancelSeat   SeatBus
}

type QueryBuses struct {
	GetFlight             GetFlightBus
	ListFlightIDs         ListFlightIDsBus
	GetSeatAvailability   SeatAvailabilityBus
	GetSeatPassengerNames SeatPassengerNamesBus
}
