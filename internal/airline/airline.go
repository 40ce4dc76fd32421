package airline

import (
	"context"

	"github.com/mateusmacedo/airline-registry/internal/airline/application"
	"github.com/mateusmacedo/airline-registry/internal/airline/domain"
	pkgApp "github.com/mateusmacedo/airline-registry/pkg/application"
)

// AirlineSlice liga o registro de voos aos barramentos. O mesmo registro pode atender
// mais de um conjunto de barramentos (local e broker).
type AirlineSlice struct {
	registry *domain.Registry
	logger   pkgApp.AppLogger
	recorder application.Recorder
}

// NewAirlineSlice cria o registro publicando no eventBus e restaura o estado salvo no repositório.
func NewAirlineSlice(
	ctx context.Context,
	repository domain.FlightRepository,
	eventBus application.NotificationBus,
	logger pkgApp.AppLogger,
) (*AirlineSlice, error) {
	publisher := application.NewNotificationPublisher(eventBus, logger)
	registry := domain.NewRegistry(repository, publisher)
	if err := registry.Restore(ctx); err != nil {
		pkgApp.LogError(ctx, logger, "Erro ao restaurar o registro", err, nil)
		return nil, err
	}

	pkgApp.LogInfo(ctx, logger, "Registro restaurado", map[string]interface{}{
		"flights": registry.Count(),
	})
	return &AirlineSlice{registry: registry, logger: logger}, nil
}

func (s *AirlineSlice) Registry() *domain.Registry {
	return s.registry
}

// SetRecorder define quem recebe o resultado dos comandos. Vale para os registros seguintes.
func (s *AirlineSlice) SetRecorder(recorder application.Recorder) {
	s.recorder = recorder
}

func (s *AirlineSlice) RegisterCommands(buses application.CommandBuses) {
	buses.AddFlight.RegisterHandler(application.AddFlightCommand, application.NewAddFlightHandler(s.registry, s.logger, s.recorder))
	buses.UpdateFlight.RegisterHandler(application.UpdateFlightCommand, application.NewUpdateFlightHandler(s.registry, s.logger, s.recorder))
	buses.DeleteFlight.RegisterHandler(application.DeleteFlightCommand, application.NewDeleteFlightHandler(s.registry, s.logger, s.recorder))
	buses.BookSeat.RegisterHandler(application.BookSeatCommand, application.NewBookSeatHandler(s.registry, s.logger, s.recorder))
	buses.CancelSeat.RegisterHandler(application.CancelSeatCommand, application.NewCancelSeatHandler(s.registry, s.logger, s.recorder))
}

func (s *AirlineSlice) RegisterQueries(buses application.QueryBuses) {
	buses.GetFlight.RegisterHandler(application.GetFlightQuery, application.NewGetFlightHandler(s.registry, s.logger))
	buses.ListFlightIDs.RegisterHandler(application.ListFlightIDsQuery, application.NewListFlightIDsHandler(s.registry, s.logger))
	buses.GetSeatAvailability.RegisterHandler(application.GetSeatAvailabilityQuery, application.NewSeatAvailabilityHandler(s.registry, s.logger))
	buses.GetSeatPassengerNames.RegisterHandler(application.GetSeatPassengerNamesQuery, application.NewSeatPassengerNamesHandler(s.registry, s.logger))
}

// RegisterEventHandlers assina os handlers em todos os eventos do registro.
func RegisterEventHandlers(eventBus application.NotificationBus, handlers ...application.NotificationEventHandler) {
	for _, eventName := range application.EventNames {
		for _, handler := range handlers {
			eventBus.RegisterHandler(eventName, handler)
		}
	}
}
