package infrastructure

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mateusmacedo/airline-registry/internal/airline/domain"
	pkgApp "github.com/mateusmacedo/airline-registry/pkg/application"
)

const flightSequenceName = "flights"

var errFlightNotFound = errors.New("flight not found")

// flightRecord é a linha da tabela flights; as grades de assentos ficam em colunas JSON.
type flightRecord struct {
	ID            uint64     `gorm:"primaryKey;autoIncrement:false"`
	FlightNumber  string     `gorm:"size:16;not null"`
	Status        uint8      `gorm:"not null"`
	Origin        string     `gorm:"size:3;not null"`
	Destination   string     `gorm:"size:3;not null"`
	DepartureTime int64      `gorm:"not null"`
	ArrivalTime   int64      `gorm:"not null"`
	PlaneType     string     `gorm:"size:8;not null"`
	Owner         string     `gorm:"size:128;not null;index"`
	Booked        [][]bool   `gorm:"serializer:json"`
	Passengers    [][]string `gorm:"serializer:json"`
}

func (flightRecord) TableName() string {
	return "flights"
}

// flightSequence guarda o último id alocado, que sobrevive à remoção dos voos.
type flightSequence struct {
	Name   string `gorm:"primaryKey;size:32"`
	LastID uint64 `gorm:"not null"`
}

func (flightSequence) TableName() string {
	return "flight_sequences"
}

func toRecord(flight domain.Flight) flightRecord {
	return flightRecord{
		ID:            uint64(flight.ID),
		FlightNumber:  flight.FlightNumber,
		Status:        uint8(flight.Status),
		Origin:        flight.Origin,
		Destination:   flight.Destination,
		DepartureTime: flight.DepartureTime,
		ArrivalTime:   flight.ArrivalTime,
		PlaneType:     string(flight.PlaneType),
		Owner:         flight.Owner,
		Booked:        flight.Seats.Booked,
		Passengers:    flight.Seats.Passengers,
	}
}

func (r flightRecord) toDomain() domain.Flight {
	return domain.Flight{
		ID:            domain.FlightID(r.ID),
		FlightNumber:  r.FlightNumber,
		Status:        domain.FlightStatus(r.Status),
		Origin:        r.Origin,
		Destination:   r.Destination,
		DepartureTime: r.DepartureTime,
		ArrivalTime:   r.ArrivalTime,
		PlaneType:     domain.PlaneType(r.PlaneType),
		Owner:         r.Owner,
		Seats: domain.SeatMap{
			Booked:     r.Booked,
			Passengers: r.Passengers,
		},
	}
}

// OpenPostgres abre a conexão gorm com o banco.
func OpenPostgres(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	return db, nil
}

// Migrate cria ou atualiza as tabelas flights e flight_sequences.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&flightRecord{}, &flightSequence{}); err != nil {
		return fmt.Errorf("failed to migrate flight tables: %w", err)
	}
	return nil
}

type GormFlightRepository struct {
	db     *gorm.DB
	logger pkgApp.AppLogger
}

func NewGormFlightRepository(db *gorm.DB, logger pkgApp.AppLogger) *GormFlightRepository {
	return &GormFlightRepository{
		db:     db,
		logger: logger,
	}
}

func (r *GormFlightRepository) Save(ctx context.Context, flight domain.Flight) error {
	record := toRecord(flight)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&record).Error; err != nil {
			return err
		}
		sequence := flightSequence{Name: flightSequenceName, LastID: record.ID}
		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "name"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"last_id": gorm.Expr("GREATEST(flight_sequences.last_id, EXCLUDED.last_id)"),
			}),
		}).Create(&sequence).Error
	})
	if err != nil {
		pkgApp.LogError(ctx, r.logger, "failed to save flight", err, map[string]interface{}{
			"flight_id": flight.ID,
		})
		return fmt.Errorf("failed to save flight %d: %w", flight.ID, err)
	}

	pkgApp.LogDebug(ctx, r.logger, "flight saved", map[string]interface{}{
		"flight_id": flight.ID,
	})
	return nil
}

func (r *GormFlightRepository) Update(ctx context.Context, flight domain.Flight) error {
	record := toRecord(flight)
	result := r.db.WithContext(ctx).Model(&flightRecord{ID: record.ID}).Select("*").Omit("id").Updates(&record)
	if err := rowsError(result); err != nil {
		pkgApp.LogError(ctx, r.logger, "failed to update flight", err, map[string]interface{}{
			"flight_id": flight.ID,
		})
		return fmt.Errorf("failed to update flight %d: %w", flight.ID, err)
	}

	pkgApp.LogDebug(ctx, r.logger, "flight updated", map[string]interface{}{
		"flight_id": flight.ID,
	})
	return nil
}

func (r *GormFlightRepository) Delete(ctx context.Context, id domain.FlightID) error {
	result := r.db.WithContext(ctx).Delete(&flightRecord{}, uint64(id))
	if err := rowsError(result); err != nil {
		pkgApp.LogError(ctx, r.logger, "failed to delete flight", err, map[string]interface{}{
			"flight_id": id,
		})
		return fmt.Errorf("failed to delete flight %d: %w", id, err)
	}

	pkgApp.LogDebug(ctx, r.logger, "flight deleted", map[string]interface{}{
		"flight_id": id,
	})
	return nil
}

func (r *GormFlightRepository) FindAll(ctx context.Context) ([]domain.Flight, error) {
	var records []flightRecord
	if err := r.db.WithContext(ctx).Order("id").Find(&records).Error; err != nil {
		pkgApp.LogError(ctx, r.logger, "failed to load flights", err, nil)
		return nil, fmt.Errorf("failed to load flights: %w", err)
	}

	flights := make([]domain.Flight, len(records))
	for i, record := range records {
		flights[i] = record.toDomain()
	}

	pkgApp.LogInfo(ctx, r.logger, "flights loaded", map[string]interface{}{
		"count": len(flights),
	})
	return flights, nil
}

func (r *GormFlightRepository) LastID(ctx context.Context) (domain.FlightID, error) {
	var sequences []flightSequence
	if err := r.db.WithContext(ctx).Where("name = ?", flightSequenceName).Limit(1).Find(&sequences).Error; err != nil {
		pkgApp.LogError(ctx, r.logger, "failed to load flight sequence", err, nil)
		return 0, fmt.Errorf("failed to load flight sequence: %w", err)
	}
	if len(sequences) == 0 {
		return 0, nil
	}
	return domain.FlightID(sequences[0].LastID), nil
}

func rowsError(result *gorm.DB) error {
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errFlightNotFound
	}
	return nil
}
