package domain

import "context"

// FlightRepository persiste os voos e o contador de ids.
type FlightRepository interface {
	// Save insere um voo novo e registra o id como o último alocado.
	Save(ctx context.Context, flight Flight) error
	Update(ctx context.Context, flight Flight) error
	Delete(ctx context.Context, id FlightID) error
	FindAll(ctx context.Context) ([]Flight, error)
	// LastID retorna o maior id já alocado, inclusive de voos removidos.
	LastID(ctx context.Context) (FlightID, error)
}
