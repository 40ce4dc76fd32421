package application

import (
	"context"

	"github.com/mateusmacedo/airline-registry/internal/airline/domain"
	pkgApp "github.com/mateusmacedo/airline-registry/pkg/application"
	pkgDomain "github.com/mateusmacedo/airline-registry/pkg/domain"
)

// FlightRegistry é o que os manipuladores usam do registro.
type FlightRegistry interface {
	AddFlight(ctx context.Context, in domain.FlightInput, caller string) (domain.FlightID, error)
	UpdateFlight(ctx context.Context, id domain.FlightID, in domain.FlightInput, status domain.FlightStatus, caller string) error
	DeleteFlight(ctx context.Context, id domain.FlightID, caller string) error
	GetFlight(ctx context.Context, id domain.FlightID) (domain.FlightView, error)
	GetAllFlightIDs(ctx context.Context) []domain.FlightID
	BookSeat(ctx context.Context, id domain.FlightID, row, column int, passengerName, caller string) error
	CancelSeat(ctx context.Context, id domain.FlightID, row, column int, passengerName, caller string) error
	GetSeatAvailability(ctx context.Context, id domain.FlightID) ([][]bool, error)
	GetSeatPassengerNames(ctx context.Context, id domain.FlightID, caller string) ([][]string, error)
}

// Recorder recebe o resultado de cada comando processado.
type Recorder interface {
	ObserveCommand(command string, err error)
}

type nopRecorder struct{}

func (nopRecorder) ObserveCommand(string, error) {}

type commandHandler struct {
	registry FlightRegistry
	logger   pkgApp.AppLogger
	recorder Recorder
}

func newCommandHandler(registry FlightRegistry, logger pkgApp.AppLogger, recorder Recorder) commandHandler {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return commandHandler{registry: registry, logger: logger, recorder: recorder}
}

func (h commandHandler) canceled(ctx context.Context, command string) error {
	if ctx.Err() == nil {
		return nil
	}
	pkgApp.LogError(ctx, h.logger, "Contexto cancelado", ctx.Err(), map[string]interface{}{"command": command})
	h.recorder.ObserveCommand(command, ctx.Err())
	return ctx.Err()
}

// finish registra o resultado. Rejeições de regra de negócio são informativas;
// só falhas internas são logadas como erro.
func (h commandHandler) finish(ctx context.Context, command, accepted string, err error, fields map[string]interface{}) error {
	h.recorder.ObserveCommand(command, err)
	if err == nil {
		pkgApp.LogInfo(ctx, h.logger, accepted, fields)
		return nil
	}

	logFields := map[string]interface{}{"command": command, "kind": string(domain.KindOf(err))}
	for k, v := range fields {
		logFields[k] = v
	}
	if domain.KindOf(err) == domain.KindInternal {
		pkgApp.LogError(ctx, h.logger, "Erro ao processar comando", err, logFields)
	} else {
		logFields["reason"] = err.Error()
		pkgApp.LogInfo(ctx, h.logger, "Comando rejeitado", logFields)
	}
	return err
}

type addFlightHandler struct {
	commandHandler
}

func (h *addFlightHandler) Handle(ctx context.Context, command pkgDomain.Command[AddFlightData]) error {
	if err := h.canceled(ctx, AddFlightCommand); err != nil {
		return err
	}

	data := command.Payload()
	id, err := h.registry.AddFlight(ctx, data.Flight, data.Caller)
	return h.finish(ctx, AddFlightCommand, "Voo cadastrado", err, map[string]interface{}{
		"flight_id":     id,
		"flight_number": data.Flight.FlightNumber,
		"caller":        data.Caller,
	})
}

func NewAddFlightHandler(registry FlightRegistry, logger pkgApp.AppLogger, recorder Recorder) pkgApp.CommandHandler[pkgDomain.Command[AddFlightData], AddFlightData] {
	return &addFlightHandler{commandHandler: newCommandHandler(registry, logger, recorder)}
}

type updateFlightHandler struct {
	commandHandler
}

func (h *updateFlightHandler) Handle(ctx context.Context, command pkgDomain.Command[UpdateFlightData]) error {
	if err := h.canceled(ctx, UpdateFlightCommand); err != nil {
		return err
	}

	data := command.Payload()
	err := h.registry.UpdateFlight(ctx, data.FlightID, data.Flight, data.Status, data.Caller)
	return h.finish(ctx, UpdateFlightCommand, "Voo atualizado", err, map[string]interface{}{
		"flight_id": data.FlightID,
		"status":    data.Status.String(),
		"caller":    data.Caller,
	})
}

func NewUpdateFlightHandler(registry FlightRegistry, logger pkgApp.AppLogger, recorder Recorder) pkgApp.CommandHandler[pkgDomain.Command[UpdateFlightData], UpdateFlightData] {
	return &updateFlightHandler{commandHandler: newCommandHandler(registry, logger, recorder)}
}

type deleteFlightHandler struct {
	commandHandler
}

func (h *deleteFlightHandler) Handle(ctx context.Context, command pkgDomain.Command[DeleteFlightData]) error {
	if err := h.canceled(ctx, DeleteFlightCommand); err != nil {
		return err
	}

	data := command.Payload()
	err := h.registry.DeleteFlight(ctx, data.FlightID, data.Caller)
	return h.finish(ctx, DeleteFlightCommand, "Voo removido", err, map[string]interface{}{
		"flight_id": data.FlightID,
		"caller":    data.Caller,
	})
}

func NewDeleteFlightHandler(registry FlightRegistry, logger pkgApp.AppLogger, recorder Recorder) pkgApp.CommandHandler[pkgDomain.Command[DeleteFlightData], DeleteFlightData] {
	return &deleteFlightHandler{commandHandler: newCommandHandler(registry, logger, recorder)}
}

type bookSeatHandler struct {
	commandHandler
}

func (h *bookSeatHandler) Handle(ctx context.Context, command pkgDomain.Command[SeatData]) error {
	if err := h.canceled(ctx, BookSeatCommand); err != nil {
		return err
	}

	data := command.Payload()
	err := h.registry.BookSeat(ctx, data.FlightID, data.Row, data.Column, data.PassengerName, data.Caller)
	return h.finish(ctx, BookSeatCommand, "Assento reservado", err, seatFields(data))
}

func NewBookSeatHandler(registry FlightRegistry, logger pkgApp.AppLogger, recorder Recorder) pkgApp.CommandHandler[pkgDomain.Command[SeatData], SeatData] {
	return &bookSeatHandler{commandHandler: newCommandHandler(registry, logger, recorder)}
}

type cancelSeatHandler struct {
	commandHandler
}

func (h *cancelSeatHandler) Handle(ctx context.Context, command pkgDomain.Command[SeatData]) error {
	if err := h.canceled(ctx, CancelSeatCommand); err != nil {
		return err
	}

	data := command.Payload()
	err := h.registry.CancelSeat(ctx, data.FlightID, data.Row, data.Column, data.PassengerName, data.Caller)
	return h.finish(ctx, CancelSeatCommand, "Reserva cancelada", err, seatFields(data))
}

func NewCancelSeatHandler(registry FlightRegistry, logger pkgApp.AppLogger, recorder Recorder) pkgApp.CommandHandler[pkgDomain.Command[SeatData], SeatData] {
	return &cancelSeatHandler{commandHandler: newCommandHandler(registry, logger, recorder)}
}

// O nome do passageiro fica fora dos logs.
func seatFields(data SeatData) map[string]interface{} {
	return map[string]interface{}{
		"flight_id": data.FlightID,
		"row":       data.Row,
		"column":    data.Column,
		"caller":    data.Caller,
	}
}

type getFlightHandler struct {
	registry FlightRegistry
	logger   pkgApp.AppLogger
}

func (h *getFlightHandler) Handle(ctx context.Context, query pkgDomain.Query[FlightData]) (domain.FlightView, error) {
	if ctx.Err() != nil {
		pkgApp.LogError(ctx, h.logger, "Contexto cancelado", ctx.Err(), nil)
		return domain.FlightView{}, ctx.Err()
	}

	data := query.Payload()
	view, err := h.registry.GetFlight(ctx, data.FlightID)
	if err != nil {
		pkgApp.LogDebug(ctx, h.logger, "Voo não encontrado", map[string]interface{}{"flight_id": data.FlightID})
		return view, err
	}
	return view, nil
}

func NewGetFlightHandler(registry FlightRegistry, logger pkgApp.AppLogger) pkgApp.QueryHandler[pkgDomain.Query[FlightData], FlightData, domain.FlightView] {
	return &getFlightHandler{registry: registry, logger: logger}
}

type listFlightIDsHandler struct {
	registry FlightRegistry
	logger   pkgApp.AppLogger
}

func (h *listFlightIDsHandler) Handle(ctx context.Context, _ pkgDomain.Query[ListFlightIDsData]) ([]domain.FlightID, error) {
	if ctx.Err() != nil {
		pkgApp.LogError(ctx, h.logger, "Contexto cancelado", ctx.Err(), nil)
		return nil, ctx.Err()
	}
	return h.registry.GetAllFlightIDs(ctx), nil
}

func NewListFlightIDsHandler(registry FlightRegistry, logger pkgApp.AppLogger) pkgApp.QueryHandler[pkgDomain.Query[ListFlightIDsData], ListFlightIDsData, []domain.FlightID] {
	return &listFlightIDsHandler{registry: registry, logger: logger}
}

type seatAvailabilityHandler struct {
	registry FlightRegistry
	logger   pkgApp.AppLogger
}

func (h *seatAvailabilityHandler) Handle(ctx context.Context, query pkgDomain.Query[FlightData]) ([][]bool, error) {
	if ctx.Err() != nil {
		pkgApp.LogError(ctx, h.logger, "Contexto cancelado", ctx.Err(), nil)
		return nil, ctx.Err()
	}
	return h.registry.GetSeatAvailability(ctx, query.Payload().FlightID)
}

func NewSeatAvailabilityHandler(registry FlightRegistry, logger pkgApp.AppLogger) pkgApp.QueryHandler[pkgDomain.Query[FlightData], FlightData, [][]bool] {
	return &seatAvailabilityHandler{registry: registry, logger: logger}
}

type seatPassengerNamesHandler struct {
	registry FlightRegistry
	logger   pkgApp.AppLogger
}

func (h *seatPassengerNamesHandler) Handle(ctx context.Context, query pkgDomain.Query[SeatPassengerNamesData]) ([][]string, error) {
	if ctx.Err() != nil {
		pkgApp.LogError(ctx, h.logger, "Contexto cancelado", ctx.Err(), nil)
		return nil, ctx.Err()
	}

	data := query.Payload()
	names, err := h.registry.GetSeatPassengerNames(ctx, data.FlightID, data.Caller)
	if err != nil {
		pkgApp.LogInfo(ctx, h.logger, "Consulta de passageiros rejeitada", map[string]interface{}{
			"flight_id": data.FlightID,
			"caller":    data.Caller,
			"kind":      string(domain.KindOf(err)),
		})
		return nil, err
	}
	return names, nil
}

func NewSeatPassengerNamesHandler(registry FlightRegistry, logger pkgApp.AppLogger) pkgApp.QueryHandler[pkgDomain.Query[SeatPassengerNamesData], SeatPassengerNamesData, [][]string] {
	return &seatPassengerNamesHandler{registry: registry, logger: logger}
}

type notificationLogHandler struct {
	logger pkgApp.AppLogger
}

func (h *notificationLogHandler) Handle(ctx context.Context, event NotificationEvent) error {
	payload := event.Payload()
	fields := map[string]interface{}{
		"event":         event.EventName(),
		"flight_id":     payload.FlightID,
		"flight_number": payload.FlightNumber,
	}
	if payload.FlightDetails != nil {
		fields["status"] = payload.Status.String()
	}
	pkgApp.LogInfo(ctx, h.logger, "Evento recebido", fields)
	return nil
}

func NewNotificationLogHandler(logger pkgApp.AppLogger) NotificationEventHandler {
	return &notificationLogHandler{logger: logger}
}
