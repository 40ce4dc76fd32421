package airline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mateusmacedo/airline-registry/internal/airline/application"
	"github.com/mateusmacedo/airline-registry/internal/airline/domain"
	"github.com/mateusmacedo/airline-registry/internal/airline/infrastructure"
	pkgApp "github.com/mateusmacedo/airline-registry/pkg/application"
	channelsAdapter "github.com/mateusmacedo/airline-registry/pkg/infrastructure/channels/adapter"
	watermillAdapter "github.com/mateusmacedo/airline-registry/pkg/infrastructure/watermill/adapter"
)

type eventRecorder struct {
	mu     sync.Mutex
	events []string
}

func (r *eventRecorder) Handle(_ context.Context, event application.NotificationEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event.EventName())
	return nil
}

func (r *eventRecorder) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

type commandRecorder struct {
	mu       sync.Mutex
	outcomes map[string]int
}

func (r *commandRecorder) ObserveCommand(command string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.outcomes == nil {
		r.outcomes = map[string]int{}
	}
	r.outcomes[command+":"+string(domain.KindOf(err))]++
}

type failingRepository struct {
	domain.FlightRepository
}

func (failingRepository) FindAll(context.Context) ([]domain.Flight, error) {
	return nil, errors.New("connection refused")
}

func (failingRepository) LastID(context.Context) (domain.FlightID, error) {
	return 0, errors.New("connection refused")
}

func sampleFlight() domain.FlightInput {
	now := time.Now().Unix()
	return domain.FlightInput{
		FlightNumber:  "FFA0001",
		Origin:        "LHR",
		Destination:   "RDU",
		DepartureTime: now + 3600,
		ArrivalTime:   now + 7200,
		PlaneType:     "E195",
	}
}

// runScenario percorre o fluxo completo de um voo pelos barramentos.
func runScenario(t *testing.T, ctx context.Context, commands application.CommandBuses, queries application.QueryBuses) {
	t.Helper()

	require.NoError(t, commands.AddFlight.Dispatch(ctx, application.NewAddFlightCommand(application.AddFlightData{
		Flight: sampleFlight(),
		Caller: "airline-a",
	})))

	ids, err := queries.ListFlightIDs.Dispatch(ctx, application.NewListFlightIDsQuery())
	require.NoError(t, err)
	require.Equal(t, []domain.FlightID{1}, ids)

	view, err := queries.GetFlight.Dispatch(ctx, application.NewGetFlightQuery(application.FlightData{FlightID: 1}))
	require.NoError(t, err)
	assert.Equal(t, "FFA0001", view.FlightNumber)
	assert.Equal(t, "airline-a", view.Owner)
	assert.Equal(t, domain.StatusOnTime, view.Status)

	require.NoError(t, commands.BookSeat.Dispatch(ctx, application.NewBookSeatCommand(application.SeatData{
		FlightID: 1, Row: 3, Column: 2, PassengerName: "Ada", Caller: "airline-a",
	})))

	availability, err := queries.GetSeatAvailability.Dispatch(ctx, application.NewGetSeatAvailabilityQuery(application.FlightData{FlightID: 1}))
	require.NoError(t, err)
	assert.True(t, availability[3][2])
	assert.False(t, availability[0][0])

	names, err := queries.GetSeatPassengerNames.Dispatch(ctx, application.NewGetSeatPassengerNamesQuery(application.SeatPassengerNamesData{
		FlightID: 1, Caller: "airline-a",
	}))
	require.NoError(t, err)
	assert.Equal(t, "Ada", names[3][2])

	_, err = queries.GetSeatPassengerNames.Dispatch(ctx, application.NewGetSeatPassengerNamesQuery(application.SeatPassengerNamesData{
		FlightID: 1, Caller: "airline-b",
	}))
	assert.Equal(t, domain.KindUnauthorized, domain.KindOf(err))

	require.NoError(t, commands.CancelSeat.Dispatch(ctx, application.NewCancelSeatCommand(application.SeatData{
		FlightID: 1, Row: 3, Column: 2, PassengerName: "Ada", Caller: "airline-a",
	})))

	require.NoError(t, commands.DeleteFlight.Dispatch(ctx, application.NewDeleteFlightCommand(application.DeleteFlightData{
		FlightID: 1, Caller: "airline-a",
	})))

	view, err = queries.GetFlight.Dispatch(ctx, application.NewGetFlightQuery(application.FlightData{FlightID: 1}))
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
	assert.False(t, view.Exists())
}

var scenarioEvents = []string{
	domain.EventFlightAdded,
	domain.EventSeatChanged,
	domain.EventSeatChanged,
	domain.EventFlightChanged,
}

func TestSliceOverSimpleBuses(t *testing.T) {
	ctx := context.Background()
	logger := pkgApp.NopLogger{}

	commands, queries, events := NewSimpleBuses(logger)
	recorder := &eventRecorder{}
	RegisterEventHandlers(events, recorder)

	slice, err := NewAirlineSlice(ctx, infrastructure.NewInMemoryFlightRepository(logger), events, logger)
	require.NoError(t, err)
	outcomes := &commandRecorder{}
	slice.SetRecorder(outcomes)
	slice.RegisterCommands(commands)
	slice.RegisterQueries(queries)

	runScenario(t, ctx, commands, queries)

	assert.Equal(t, scenarioEvents, recorder.names())
	assert.Equal(t, 0, slice.Registry().Count())
	assert.Equal(t, 1, outcomes.outcomes[application.AddFlightCommand+":"])
	assert.Equal(t, 1, outcomes.outcomes[application.DeleteFlightCommand+":"])
}

func TestSimpleBusesReturnDomainErrors(t *testing.T) {
	ctx := context.Background()
	logger := pkgApp.NopLogger{}

	commands, queries, events := NewSimpleBuses(logger)
	slice, err := NewAirlineSlice(ctx, infrastructure.NewInMemoryFlightRepository(logger), events, logger)
	require.NoError(t, err)
	slice.RegisterCommands(commands)
	slice.RegisterQueries(queries)

	err = commands.BookSeat.Dispatch(ctx, application.NewBookSeatCommand(application.SeatData{
		FlightID: 42, PassengerName: "Ada", Caller: "airline-a",
	}))
	assert.ErrorIs(t, err, domain.ErrNotFound)

	in := sampleFlight()
	in.Origin = "L1"
	err = commands.AddFlight.Dispatch(ctx, application.NewAddFlightCommand(application.AddFlightData{Flight: in, Caller: "airline-a"}))
	assert.Equal(t, domain.KindInvalidInput, domain.KindOf(err))
}

func TestSliceOverWatermillChannels(t *testing.T) {
	ctx := context.Background()
	logger := pkgApp.NopLogger{}

	pubSub := channelsAdapter.NewGoChannelPubSub(logger)
	t.Cleanup(func() { _ = pubSub.Close() })

	buses := NewWatermillBuses(pubSub, logger)
	t.Cleanup(buses.Close)

	recorder := &eventRecorder{}
	RegisterEventHandlers(buses.Events, recorder)

	slice, err := NewAirlineSlice(ctx, infrastructure.NewInMemoryFlightRepository(logger), buses.Events, logger)
	require.NoError(t, err)
	slice.RegisterCommands(buses.Commands)
	slice.RegisterQueries(buses.Queries)

	runScenario(t, ctx, buses.Commands, buses.Queries)

	assert.Eventually(t, func() bool {
		return len(recorder.names()) == len(scenarioEvents)
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, scenarioEvents, recorder.names())
}

func TestNewAirlineSliceFailsWhenRestoreFails(t *testing.T) {
	logger := pkgApp.NopLogger{}
	_, _, events := NewSimpleBuses(logger)

	slice, err := NewAirlineSlice(context.Background(), failingRepository{}, events, logger)

	assert.Nil(t, slice)
	assert.Equal(t, domain.KindInternal, domain.KindOf(err))
}

func TestTopicsIncludeReplyTopics(t *testing.T) {
	topics := Topics()

	for _, name := range application.CommandNames {
		assert.Contains(t, topics, name)
	}
	for _, name := range application.QueryNames {
		assert.Contains(t, topics, name)
		assert.Contains(t, topics, watermillAdapter.ResponseTopic(name))
	}
	for _, name := range application.EventNames {
		assert.Contains(t, topics, name)
	}
}
