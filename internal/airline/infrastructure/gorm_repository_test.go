package infrastructure

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/mateusmacedo/airline-registry/internal/airline/domain"
	pkgApp "github.com/mateusmacedo/airline-registry/pkg/application"
)

func newMockRepository(t *testing.T) (*GormFlightRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{})
	require.NoError(t, err)

	return NewGormFlightRepository(gormDB, pkgApp.NopLogger{}), mock
}

func TestGormFlightRepositorySave(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "flights"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO "flight_sequences" .* ON CONFLICT \("name"\) DO UPDATE SET "last_id"=GREATEST`).
		WithArgs("flights", uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Save(context.Background(), sampleFlight(7)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormFlightRepositorySaveRollsBack(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "flights"`).WillReturnError(errors.New("duplicate key value"))
	mock.ExpectRollback()

	err := repo.Save(context.Background(), sampleFlight(7))
	assert.ErrorContains(t, err, "failed to save flight 7")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormFlightRepositoryUpdate(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "flights" SET`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Update(context.Background(), sampleFlight(3)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormFlightRepositoryUpdateMissingRow(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "flights" SET`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := repo.Update(context.Background(), sampleFlight(3))
	assert.ErrorIs(t, err, errFlightNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormFlightRepositoryDelete(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "flights" WHERE "flights"."id" = \$1`).
		WithArgs(uint64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(context.Background(), 3))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormFlightRepositoryFindAll(t *testing.T) {
	repo, mock := newMockRepository(t)

	rows := sqlmock.NewRows([]string{"id", "flight_number", "status", "origin", "destination", "departure_time", "arrival_time", "plane_type", "owner", "booked", "passengers"}).
		AddRow(1, "FFA0001", 5, "LHR", "RDU", 1000, 2000, "B772", "airline-a", []byte(`[[true,false]]`), []byte(`[["Dan",""]]`)).
		AddRow(2, "FFA0002", 0, "GRU", "LIS", 3000, 4000, "A320", "airline-b", []byte(`[[false]]`), []byte(`[[""]]`))
	mock.ExpectQuery(`SELECT \* FROM "flights" ORDER BY id`).WillReturnRows(rows)

	flights, err := repo.FindAll(context.Background())
	require.NoError(t, err)
	require.Len(t, flights, 2)

	assert.Equal(t, domain.FlightID(1), flights[0].ID)
	assert.Equal(t, domain.StatusDelayed, flights[0].Status)
	assert.Equal(t, domain.PlaneType("B772"), flights[0].PlaneType)
	assert.Equal(t, [][]bool{{true, false}}, flights[0].Seats.Booked)
	assert.Equal(t, [][]string{{"Dan", ""}}, flights[0].Seats.Passengers)
	assert.Equal(t, "airline-b", flights[1].Owner)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormFlightRepositoryFindAllError(t *testing.T) {
	repo, mock := newMockRepository(t)
	mock.ExpectQuery(`SELECT \* FROM "flights"`).WillReturnError(sql.ErrConnDone)

	_, err := repo.FindAll(context.Background())
	assert.ErrorIs(t, err, sql.ErrConnDone)
}

func TestGormFlightRepositoryLastID(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(`SELECT \* FROM "flight_sequences" WHERE name = \$1 LIMIT`).
		WillReturnRows(sqlmock.NewRows([]string{"name", "last_id"}).AddRow("flights", 12))

	lastID, err := repo.LastID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.FlightID(12), lastID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormFlightRepositoryLastIDWithoutSequence(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(`SELECT \* FROM "flight_sequences"`).
		WillReturnRows(sqlmock.NewRows([]string{"name", "last_id"}))

	lastID, err := repo.LastID(context.Background())
	require.NoError(t, err)
	assert.Zero(t, lastID)
}

func TestFlightRecordRoundTrip(t *testing.T) {
	flight := sampleFlight(4)
	flight.Status = domain.StatusBoarding
	flight.Seats.Booked[1][2] = true
	flight.Seats.Passengers[1][2] = "Ana"

	assert.Equal(t, flight, toRecord(flight).toDomain())
}
