package airline

import (
	"github.com/mateusmacedo/airline-registry/internal/airline/application"
	"github.com/mateusmacedo/airline-registry/internal/airline/domain"
	pkgApp "github.com/mateusmacedo/airline-registry/pkg/application"
	pkgDomain "github.com/mateusmacedo/airline-registry/pkg/domain"
	pkgInfra "github.com/mateusmacedo/airline-registry/pkg/infrastructure"
	watermillAdapter "github.com/mateusmacedo/airline-registry/pkg/infrastructure/watermill/adapter"
)

// NewSimpleBuses cria barramentos em processo.
func NewSimpleBuses(logger pkgApp.AppLogger) (application.CommandBuses, application.QueryBuses, application.NotificationBus) {
	commands := application.CommandBuses{
		AddFlight:    pkgInfra.NewSimpleCommandBus[pkgDomain.Command[application.AddFlightData], application.AddFlightData](),
		UpdateFlight: pkgInfra.NewSimpleCommandBus[pkgDomain.Command[application.UpdateFlightData], application.UpdateFlightData](),
		DeleteFlight: pkgInfra.NewSimpleCommandBus[pkgDomain.Command[application.DeleteFlightData], application.DeleteFlightData](),
		BookSeat:     pkgInfra.NewSimpleCommandBus[pkgDomain.Command[application.SeatData], application.SeatData](),
		CancelSeat:   pkgInfra.NewSimpleCommandBus[pkgDomain.Command[application.SeatData], application.SeatData](),
	}
	queries := application.QueryBuses{
		GetFlight:             pkgInfra.NewSimpleQueryBus[pkgDomain.Query[application.FlightData], application.FlightData, domain.FlightView](),
		ListFlightIDs:         pkgInfra.NewSimpleQueryBus[pkgDomain.Query[application.ListFlightIDsData], application.ListFlightIDsData, []domain.FlightID](),
		GetSeatAvailability:   pkgInfra.NewSimpleQueryBus[pkgDomain.Query[application.FlightData], application.FlightData, [][]bool](),
		GetSeatPassengerNames: pkgInfra.NewSimpleQueryBus[pkgDomain.Query[application.SeatPassengerNamesData], application.SeatPassengerNamesData, [][]string](),
	}
	events := pkgInfra.NewSimpleEventBus[application.NotificationEvent, domain.NotificationPayload](logger)
	return commands, queries, events
}

// WatermillBuses são os barramentos sobre um broker; Close encerra todas as assinaturas.
type WatermillBuses struct {
	Commands application.CommandBuses
	Queries  application.QueryBuses
	Events   application.NotificationBus

	closers []func()
}

func (b *WatermillBuses) Close() {
	for _, closeFn := range b.closers {
		closeFn()
	}
}

func NewWatermillBuses(pubSub watermillAdapter.PubSub, logger pkgApp.AppLogger) *WatermillBuses {
	addFlight := watermillAdapter.NewWatermillCommandBus[pkgDomain.Command[application.AddFlightData], application.AddFlightData](pubSub.Publisher, pubSub.Subscriber, logger)
	updateFlight := watermillAdapter.NewWatermillCommandBus[pkgDomain.Command[application.UpdateFlightData], application.UpdateFlightData](pubSub.Publisher, pubSub.Subscriber, logger)
	deleteFlight := watermillAdapter.NewWatermillCommandBus[pkgDomain.Command[application.DeleteFlightData], application.DeleteFlightData](pubSub.Publisher, pubSub.Subscriber, logger)
	bookSeat := watermillAdapter.NewWatermillCommandBus[pkgDomain.Command[application.SeatData], application.SeatData](pubSub.Publisher, pubSub.Subscriber, logger)
	cancelSeat := watermillAdapter.NewWatermillCommandBus[pkgDomain.Command[application.SeatData], application.SeatData](pubSub.Publisher, pubSub.Subscriber, logger)

	getFlight := watermillAdapter.NewWatermillQueryBus[pkgDomain.Query[application.FlightData], application.FlightData, domain.FlightView](pubSub, logger)
	listFlightIDs := watermillAdapter.NewWatermillQueryBus[pkgDomain.Query[application.ListFlightIDsData], application.ListFlightIDsData, []domain.FlightID](pubSub, logger)
	seatAvailability := watermillAdapter.NewWatermillQueryBus[pkgDomain.Query[application.FlightData], application.FlightData, [][]bool](pubSub, logger)
	passengerNames := watermillAdapter.NewWatermillQueryBus[pkgDomain.Query[application.SeatPassengerNamesData], application.SeatPassengerNamesData, [][]string](pubSub, logger)

	events := watermillAdapter.NewWatermillEventBus[application.NotificationEvent, domain.NotificationPayload](pubSub.Publisher, pubSub.Subscriber, logger)

	return &WatermillBuses{
		Commands: application.CommandBuses{
			AddFlight:    addFlight,
			UpdateFlight: updateFlight,
			DeleteFlight: deleteFlight,
			BookSeat:     bookSeat,
			CancelSeat:   cancelSeat,
		},
		Queries: application.QueryBuses{
			GetFlight:             getFlight,
			ListFlightIDs:         listFlightIDs,
			GetSeatAvailability:   seatAvailability,
			GetSeatPassengerNames: passengerNames,
		},
		Events: events,
		closers: []func(){
			addFlight.Close, updateFlight.Close, deleteFlight.Close, bookSeat.Close, cancelSeat.Close,
			getFlight.Close, listFlightIDs.Close, seatAvailability.Close, passengerNames.Close,
			events.Close,
		},
	}
}

// Topics lista todos os tópicos usados pelo registro, inclusive os de resposta.
func Topics() []string {
	topics := append([]string{}, application.CommandNames...)
	for _, query := range application.QueryNames {
		topics = append(topics, query, watermillAdapter.ResponseTopic(query))
	}
	return append(topics, application.EventNames...)
}
