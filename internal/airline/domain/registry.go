package domain

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Registry é a máquina de estados de voos e assentos. Toda mutação acontece sob um único
// lock de escrita, que cobre validação, persistência, commit em memória e publicação;
// assim as mudanças e as notificações têm ordem total.
type Registry struct {
	mu        sync.RWMutex
	flights   map[FlightID]*Flight
	nextID    FlightID
	repo      FlightRepository
	publisher Publisher
}

func NewRegistry(repo FlightRepository, publisher Publisher) *Registry {
	if publisher == nil {
		publisher = nopPublisher{}
	}
	return &Registry{
		flights:   make(map[FlightID]*Flight),
		nextID:    1,
		repo:      repo,
		publisher: publisher,
	}
}

// Restore carrega voos e contador de ids do repositório, substituindo o estado em memória.
func (r *Registry) Restore(ctx context.Context) error {
	flights, err := r.repo.FindAll(ctx)
	if err != nil {
		return internal("failed to load flights", err)
	}
	lastID, err := r.repo.LastID(ctx)
	if err != nil {
		return internal("failed to load flight sequence", err)
	}

	for _, flight := range flights {
		layout, ok := flight.PlaneType.Layout()
		if !ok || !flight.Seats.Matches(layout) {
			return internal(fmt.Sprintf("stored flight %d has a seat map that does not match plane type %q", flight.ID, flight.PlaneType), nil)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.flights = make(map[FlightID]*Flight, len(flights))
	for i := range flights {
		flight := flights[i].Clone()
		r.flights[flight.ID] = &flight
		if flight.ID > lastID {
			lastID = flight.ID
		}
	}
	r.nextID = lastID + 1
	return nil
}

func (r *Registry) AddFlight(ctx context.Context, in FlightInput, caller string) (FlightID, error) {
	if err := in.Validate(); err != nil {
		return 0, err
	}
	if strings.TrimSpace(caller) == "" {
		return 0, NewError(KindInvalidInput, "caller is required")
	}
	layout, _ := in.PlaneType.Layout()

	r.mu.Lock()
	defer r.mu.Unlock()

	flight := Flight{
		ID:     r.nextID,
		Status: StatusOnTime,
		Owner:  caller,
		Seats:  NewSeatMap(layout),
	}
	flight.apply(in)

	if err := r.repo.Save(ctx, flight); err != nil {
		return 0, internal("failed to save flight", err)
	}
	r.flights[flight.ID] = &flight
	r.nextID++

	r.publisher.Publish(ctx, flightNotification(EventFlightAdded, flight))
	return flight.ID, nil
}

// UpdateFlight sobrescreve os campos mutáveis. Id, dono e mapa de assentos não mudam,
// mesmo quando o tipo de aeronave muda.
func (r *Registry) UpdateFlight(ctx context.Context, id FlightID, in FlightInput, status FlightStatus, caller string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.flights[id]
	if !ok {
		return ErrNotFound
	}
	if current.Owner != caller {
		return NewError(KindUnauthorized, "only the owning airline can update the flight")
	}
	if err := in.Validate(); err != nil {
		return err
	}
	if !status.Valid() {
		return NewError(KindInvalidInput, "invalid flight status")
	}

	updated := *current
	updated.apply(in)
	updated.Status = status

	if err := r.repo.Update(ctx, updated); err != nil {
		return internal("failed to update flight", err)
	}
	*current = updated

	r.publisher.Publish(ctx, flightNotification(EventFlightChanged, updated))
	return nil
}

func (r *Registry) DeleteFlight(ctx context.Context, id FlightID, caller string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.flights[id]
	if !ok {
		return ErrNotFound
	}
	if current.Owner != caller {
		return NewError(KindUnauthorized, "only the owning airline can delete the flight")
	}

	if err := r.repo.Delete(ctx, id); err != nil {
		return internal("failed to delete flight", err)
	}
	delete(r.flights, id)

	r.publisher.Publish(ctx, briefNotification(EventFlightChanged, *current))
	return nil
}

// GetFlight retorna a visão zero (origem vazia) junto com ErrNotFound para voos inexistentes.
func (r *Registry) GetFlight(_ context.Context, id FlightID) (FlightView, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	flight, ok := r.flights[id]
	if !ok {
		return FlightView{}, ErrNotFound
	}
	return flight.View(), nil
}

func (r *Registry) GetAllFlightIDs(_ context.Context) []FlightID {
	r.mu.RLock()
	ids := make([]FlightID, 0, len(r.flights))
	for id := range r.flights {
		ids = append(ids, id)
	}
	r.mu.RUnlock()

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (r *Registry) BookSeat(ctx context.Context, id FlightID, row, column int, passengerName, caller string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.flights[id]
	if !ok {
		return ErrNotFound
	}
	if current.Status != StatusOnTime {
		return NewError(KindInvalidState, "flight must be On Time to book seats")
	}
	if current.Owner != caller {
		return NewError(KindUnauthorized, "only the owning airline can book seats")
	}
	if !current.Seats.InRange(row, column) {
		return NewError(KindOutOfRange, "seat out of range")
	}
	if strings.TrimSpace(passengerName) == "" {
		return NewError(KindInvalidInput, "passenger name is required")
	}
	if current.Seats.Booked[row][column] {
		return NewError(KindConflict, "seat already booked")
	}

	updated := current.Clone()
	updated.Seats.Booked[row][column] = true
	updated.Seats.Passengers[row][column] = passengerName

	if err := r.repo.Update(ctx, updated); err != nil {
		return internal("failed to book seat", err)
	}
	*current = updated

	r.publisher.Publish(ctx, briefNotification(EventSeatChanged, updated))
	return nil
}

func (r *Registry) CancelSeat(ctx context.Context, id FlightID, row, column int, passengerName, caller string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.flights[id]
	if !ok {
		return ErrNotFound
	}
	if current.Owner != caller {
		return NewError(KindUnauthorized, "only the owning airline can cancel seats")
	}
	if !current.Seats.InRange(row, column) {
		return NewError(KindOutOfRange, "seat out of range")
	}
	if !current.Seats.Booked[row][column] {
		return NewError(KindInvalidState, "seat not booked")
	}
	if current.Seats.Passengers[row][column] != passengerName {
		return NewError(KindInvalidInput, "passenger name does not match booking")
	}

	updated := current.Clone()
	updated.Seats.Booked[row][column] = false
	updated.Seats.Passengers[row][column] = ""

	if err := r.repo.Update(ctx, updated); err != nil {
		return internal("failed to cancel seat", err)
	}
	*current = updated

	r.publisher.Publish(ctx, briefNotification(EventSeatChanged, updated))
	return nil
}

func (r *Registry) GetSeatAvailability(_ context.Context, id FlightID) ([][]bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	flight, ok := r.flights[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneGrid(flight.Seats.Booked), nil
}

func (r *Registry) GetSeatPassengerNames(_ context.Context, id FlightID, caller string) ([][]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	flight, ok := r.flights[id]
	if !ok {
		return nil, ErrNotFound
	}
	if flight.Owner != caller {
		return nil, NewError(KindUnauthorized, "only the owning airline can view passenger names")
	}
	return cloneGrid(flight.Seats.Passengers), nil
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.flights)
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, Notification) {}
