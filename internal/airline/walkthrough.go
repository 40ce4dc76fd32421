package airline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mateusmacedo/airline-registry/internal/airline/application"
	"github.com/mateusmacedo/airline-registry/internal/airline/domain"
	pkgApp "github.com/mateusmacedo/airline-registry/pkg/application"
	pkgDomain "github.com/mateusmacedo/airline-registry/pkg/domain"
	pkgInfra "github.com/mateusmacedo/airline-registry/pkg/infrastructure"
)

const pollInterval = 50 * time.Millisecond

var errWalkthroughTimeout = errors.New("walkthrough: condition not reached before deadline")

// Walkthrough executa o ciclo de vida de um voo pelos barramentos: cadastro, reserva,
// atraso, cancelamento e remoção. Os comandos podem ser assíncronos, então cada passo
// espera o efeito aparecer nas consultas.
type Walkthrough struct {
	Commands application.CommandBuses
	Queries  application.QueryBuses
	Owner    string
	Logger   pkgApp.AppLogger
	// Timeout limita a espera de cada passo.
	Timeout time.Duration
}

func (w Walkthrough) Run(ctx context.Context) (domain.FlightID, error) {
	known, err := w.Queries.ListFlightIDs.Dispatch(ctx, application.NewListFlightIDsQuery())
	if err != nil {
		return 0, err
	}

	now := time.Now().Truncate(time.Second)
	flight := domain.FlightInput{
		FlightNumber:  "FFA0001",
		Origin:        "LHR",
		Destination:   "RDU",
		DepartureTime: now.Add(time.Hour).Unix(),
		ArrivalTime:   now.Add(9 * time.Hour).Unix(),
		PlaneType:     "B772",
	}
	if err := dispatch(ctx, w.Commands.AddFlight, application.NewAddFlightCommand(application.AddFlightData{Flight: flight, Caller: w.Owner})); err != nil {
		return 0, err
	}

	var id domain.FlightID
	err = w.waitFor(ctx, "flight added", func() (bool, error) {
		ids, err := w.Queries.ListFlightIDs.Dispatch(ctx, application.NewListFlightIDsQuery())
		if err != nil {
			return false, err
		}
		id = newestUnknown(known, ids)
		return id != 0, nil
	})
	if err != nil {
		return 0, err
	}
	w.log(ctx, "Voo cadastrado", id, nil)

	seat := application.SeatData{FlightID: id, Row: 0, Column: 0, PassengerName: "Jane Doe", Caller: w.Owner}
	if err := dispatch(ctx, w.Commands.BookSeat, application.NewBookSeatCommand(seat)); err != nil {
		return id, err
	}
	if err := w.waitForSeat(ctx, id, seat.Row, seat.Column, true); err != nil {
		return id, err
	}

	names, err := w.Queries.GetSeatPassengerNames.Dispatch(ctx, application.NewGetSeatPassengerNamesQuery(application.SeatPassengerNamesData{FlightID: id, Caller: w.Owner}))
	if err != nil {
		return id, err
	}
	w.log(ctx, "Assento reservado", id, map[string]interface{}{"passengerName": names[seat.Row][seat.Column]})

	update := application.UpdateFlightData{FlightID: id, Flight: flight, Status: domain.StatusDelayed, Caller: w.Owner}
	if err := dispatch(ctx, w.Commands.UpdateFlight, application.NewUpdateFlightCommand(update)); err != nil {
		return id, err
	}
	err = w.waitFor(ctx, "flight delayed", func() (bool, error) {
		view, err := w.Queries.GetFlight.Dispatch(ctx, application.NewGetFlightQuery(application.FlightData{FlightID: id}))
		return view.Status == domain.StatusDelayed, err
	})
	if err != nil {
		return id, err
	}
	w.log(ctx, "Voo atrasado", id, nil)

	// Voo atrasado não aceita reservas.
	rejected := application.SeatData{FlightID: id, Row: 1, Column: 1, PassengerName: "John Doe", Caller: w.Owner}
	err = w.Commands.BookSeat.Dispatch(pkgInfra.WithNewRequestID(ctx), application.NewBookSeatCommand(rejected))
	if err != nil && domain.KindOf(err) != domain.KindInvalidState {
		return id, err
	}

	if err := dispatch(ctx, w.Commands.CancelSeat, application.NewCancelSeatCommand(seat)); err != nil {
		return id, err
	}
	if err := w.waitForSeat(ctx, id, seat.Row, seat.Column, false); err != nil {
		return id, err
	}
	availability, err := w.Queries.GetSeatAvailability.Dispatch(ctx, application.NewGetSeatAvailabilityQuery(application.FlightData{FlightID: id}))
	if err != nil {
		return id, err
	}
	if availability[rejected.Row][rejected.Column] {
		return id, fmt.Errorf("walkthrough: seat %d,%d booked on a delayed flight", rejected.Row, rejected.Column)
	}

	if err := dispatch(ctx, w.Commands.DeleteFlight, application.NewDeleteFlightCommand(application.DeleteFlightData{FlightID: id, Caller: w.Owner})); err != nil {
		return id, err
	}
	err = w.waitFor(ctx, "flight deleted", func() (bool, error) {
		_, err := w.Queries.GetFlight.Dispatch(ctx, application.NewGetFlightQuery(application.FlightData{FlightID: id}))
		if domain.KindOf(err) == domain.KindNotFound {
			return true, nil
		}
		return false, err
	})
	if err != nil {
		return id, err
	}
	w.log(ctx, "Voo removido", id, nil)
	return id, nil
}

func dispatch[D any](ctx context.Context, bus pkgApp.CommandBus[pkgDomain.Command[D], D], command pkgDomain.Command[D]) error {
	return bus.Dispatch(pkgInfra.WithNewRequestID(ctx), command)
}

func (w Walkthrough) waitForSeat(ctx context.Context, id domain.FlightID, row, column int, booked bool) error {
	return w.waitFor(ctx, "seat change", func() (bool, error) {
		seats, err := w.Queries.GetSeatAvailability.Dispatch(ctx, application.NewGetSeatAvailabilityQuery(application.FlightData{FlightID: id}))
		if err != nil {
			return false, err
		}
		return seats[row][column] == booked, nil
	})
}

func (w Walkthrough) waitFor(ctx context.Context, step string, done func() (bool, error)) error {
	timeout := w.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		ok, err := done()
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %s", errWalkthroughTimeout, step)
		case <-ticker.C:
		}
	}
}

func (w Walkthrough) log(ctx context.Context, msg string, id domain.FlightID, fields map[string]interface{}) {
	if w.Logger == nil {
		return
	}
	if fields == nil {
		fields = map[string]interface{}{}
	}
	fields["flightId"] = id
	pkgApp.LogInfo(ctx, w.Logger, msg, fields)
}

func newestUnknown(known, ids []domain.FlightID) domain.FlightID {
	seen := make(map[domain.FlightID]bool, len(known))
	for _, id := range known {
		seen[id] = true
	}
	var newest domain.FlightID
	for _, id := range ids {
		if !seen[id] && id > newest {
			newest = id
		}
	}
	return newest
}
