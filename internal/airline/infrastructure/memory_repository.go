package infrastructure

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/mateusmacedo/airline-registry/internal/airline/domain"
	pkgApp "github.com/mateusmacedo/airline-registry/pkg/application"
)

// InMemoryFlightRepository guarda cópias dos voos; nada do que é salvo ou retornado é compartilhado com o registro.
type InMemoryFlightRepository struct {
	mu     sync.RWMutex
	data   map[domain.FlightID]domain.Flight
	lastID domain.FlightID
	logger pkgApp.AppLogger
}

func NewInMemoryFlightRepository(logger pkgApp.AppLogger) *InMemoryFlightRepository {
	return &InMemoryFlightRepository{
		data:   make(map[domain.FlightID]domain.Flight),
		logger: logger,
	}
}

func (r *InMemoryFlightRepository) Save(ctx context.Context, flight domain.Flight) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.data[flight.ID]; exists {
		pkgApp.LogError(ctx, r.logger, "flight already exists", nil, map[string]interface{}{
			"flight_id": flight.ID,
		})
		return fmt.Errorf("flight %d already exists", flight.ID)
	}

	r.data[flight.ID] = flight.Clone()
	if flight.ID > r.lastID {
		r.lastID = flight.ID
	}

	pkgApp.LogDebug(ctx, r.logger, "flight saved", map[string]interface{}{
		"flight_id": flight.ID,
	})
	return nil
}

func (r *InMemoryFlightRepository) Update(ctx context.Context, flight domain.Flight) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.data[flight.ID]; !exists {
		pkgApp.LogError(ctx, r.logger, "flight not found", nil, map[string]interface{}{
			"flight_id": flight.ID,
		})
		return fmt.Errorf("flight %d not found", flight.ID)
	}

	r.data[flight.ID] = flight.Clone()

	pkgApp.LogDebug(ctx, r.logger, "flight updated", map[string]interface{}{
		"flight_id": flight.ID,
	})
	return nil
}

func (r *InMemoryFlightRepository) Delete(ctx context.Context, id domain.FlightID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.data[id]; !exists {
		pkgApp.LogError(ctx, r.logger, "flight not found", nil, map[string]interface{}{
			"flight_id": id,
		})
		return fmt.Errorf("flight %d not found", id)
	}
	delete(r.data, id)

	pkgApp.LogDebug(ctx, r.logger, "flight deleted", map[string]interface{}{
		"flight_id": id,
	})
	return nil
}

func (r *InMemoryFlightRepository) FindAll(_ context.Context) ([]domain.Flight, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	flights := make([]domain.Flight, 0, len(r.data))
	for _, flight := range r.data {
		flights = append(flights, flight.Clone())
	}
	sort.Slice(flights, func(i, j int) bool { return flights[i].ID < flights[j].ID })
	return flights, nil
}

func (r *InMemoryFlightRepository) LastID(_ context.Context) (domain.FlightID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lastID, nil
}
