package adapter

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mateusmacedo/airline-registry/pkg/application"
	"github.com/mateusmacedo/airline-registry/pkg/domain"
)

type seatData struct {
	FlightID uint64 `json:"flightId"`
	Row      int    `json:"row"`
}

type seatCommand struct{ data seatData }

func (c seatCommand) CommandName() string { return "BookSeat" }
func (c seatCommand) Payload() seatData   { return c.data }

type seatQuery struct{ data seatData }

func (q seatQuery) QueryName() string { return "GetSeat" }
func (q seatQuery) Payload() seatData { return q.data }

type seatEvent struct{ data seatData }

func (e seatEvent) EventName() string { return "SeatChanged" }
func (e seatEvent) Payload() seatData { return e.data }

type commandHandlerFunc func(ctx context.Context, cmd domain.Command[seatData]) error

func (f commandHandlerFunc) Handle(ctx context.Context, cmd domain.Command[seatData]) error {
	return f(ctx, cmd)
}

type queryHandlerFunc func(ctx context.Context, q domain.Query[seatData]) ([]bool, error)

func (f queryHandlerFunc) Handle(ctx context.Context, q domain.Query[seatData]) ([]bool, error) {
	return f(ctx, q)
}

type eventHandlerFunc func(ctx context.Context, e domain.Event[seatData]) error

func (f eventHandlerFunc) Handle(ctx context.Context, e domain.Event[seatData]) error {
	return f(ctx, e)
}

type codedError struct{}

func (codedError) Error() string     { return "flight not found" }
func (codedError) ErrorCode() string { return "not_found" }

func newPubSub(t *testing.T) PubSub {
	t.Helper()
	goChannel := gochannel.NewGoChannel(gochannel.Config{BlockPublishUntilSubscriberAck: true}, watermill.NopLogger{})
	t.Cleanup(func() { _ = goChannel.Close() })
	return PubSub{Publisher: goChannel, Subscriber: goChannel, Replies: goChannel}
}

func TestWatermillCommandBusDeliversInOrder(t *testing.T) {
	pubSub := newPubSub(t)
	bus := NewWatermillCommandBus[domain.Command[seatData], seatData](pubSub.Publisher, pubSub.Subscriber, application.NopLogger{})
	defer bus.Close()

	var (
		mu       sync.Mutex
		received []int
	)
	bus.RegisterHandler("BookSeat", commandHandlerFunc(func(_ context.Context, cmd domain.Command[seatData]) error {
		mu.Lock()
		defer mu.Unlock()
		received = append(received, cmd.Payload().Row)
		if cmd.Payload().Row == 2 {
			return errors.New("seat already booked")
		}
		return nil
	}))

	for row := 0; row < 5; row++ {
		require.NoError(t, bus.Dispatch(context.Background(), seatCommand{data: seatData{FlightID: 1, Row: row}}))
	}

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(received) == 5
	}, time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{0, 1, 2, 3, 4}, received)
}

func TestWatermillCommandBusCarriesRequestID(t *testing.T) {
	pubSub := newPubSub(t)
	bus := NewWatermillCommandBus[domain.Command[seatData], seatData](pubSub.Publisher, pubSub.Subscriber, application.NopLogger{})
	defer bus.Close()

	got := make(chan string, 1)
	bus.RegisterHandler("BookSeat", commandHandlerFunc(func(ctx context.Context, _ domain.Command[seatData]) error {
		requestID, _ := application.RequestIDFrom(ctx)
		got <- requestID
		return nil
	}))

	ctx := application.WithRequestID(context.Background(), "req-7")
	require.NoError(t, bus.Dispatch(ctx, seatCommand{}))

	select {
	case requestID := <-got:
		assert.Equal(t, "req-7", requestID)
	case <-time.After(time.Second):
		t.Fatal("command not delivered")
	}
}

func TestWatermillQueryBusRoundTrip(t *testing.T) {
	pubSub := newPubSub(t)
	bus := NewWatermillQueryBus[domain.Query[seatData], seatData, []bool](pubSub, application.NopLogger{})
	defer bus.Close()

	bus.RegisterHandler("GetSeat", queryHandlerFunc(func(_ context.Context, q domain.Query[seatData]) ([]bool, error) {
		if q.Payload().FlightID == 0 {
			return nil, codedError{}
		}
		seats := make([]bool, q.Payload().Row)
		seats[0] = true
		return seats, nil
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	seats, err := bus.Dispatch(ctx, seatQuery{data: seatData{FlightID: 1, Row: 3}})
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false, false}, seats)

	seats, err = bus.Dispatch(ctx, seatQuery{data: seatData{FlightID: 0, Row: 3}})
	var remote *application.RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, "not_found", remote.Code)
	assert.Equal(t, "flight not found", remote.Message)
	assert.Equal(t, "GetSeat", remote.Name)
	assert.Nil(t, seats)
}

func TestWatermillQueryBusConcurrentDispatch(t *testing.T) {
	pubSub := newPubSub(t)
	bus := NewWatermillQueryBus[domain.Query[seatData], seatData, []bool](pubSub, application.NopLogger{})
	defer bus.Close()

	bus.RegisterHandler("GetSeat", queryHandlerFunc(func(_ context.Context, q domain.Query[seatData]) ([]bool, error) {
		return make([]bool, q.Payload().Row), nil
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var wg sync.WaitGroup
	for i := 1; i <= 8; i++ {
		wg.Add(1)
		go func(rows int) {
			defer wg.Done()
			seats, err := bus.Dispatch(ctx, seatQuery{data: seatData{FlightID: 1, Row: rows}})
			assert.NoError(t, err)
			assert.Len(t, seats, rows)
		}(i)
	}
	wg.Wait()
}

func TestWatermillQueryBusTimesOutWithoutHandler(t *testing.T) {
	pubSub := newPubSub(t)
	bus := NewWatermillQueryBus[domain.Query[seatData], seatData, []bool](pubSub, application.NopLogger{})
	defer bus.Close()
	bus.SetTimeout(50 * time.Millisecond)

	_, err := bus.Dispatch(context.Background(), seatQuery{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

type seatQueryHandlerFunc func(ctx context.Context, q seatQuery) ([]bool, error)

func (f seatQueryHandlerFunc) Handle(ctx context.Context, q seatQuery) ([]bool, error) {
	return f(ctx, q)
}

func TestWatermillQueryBusRepliesWhenQueryTypeIsUnsupported(t *testing.T) {
	pubSub := newPubSub(t)
	// Tipo concreto: a consulta reconstruída a partir da mensagem não pode ser convertida nele.
	bus := NewWatermillQueryBus[seatQuery, seatData, []bool](pubSub, application.NopLogger{})
	defer bus.Close()

	called := false
	bus.RegisterHandler("GetSeat", seatQueryHandlerFunc(func(context.Context, seatQuery) ([]bool, error) {
		called = true
		return nil, nil
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	started := time.Now()
	seats, err := bus.Dispatch(ctx, seatQuery{data: seatData{FlightID: 1}})

	var remote *application.RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, InternalErrorCode, remote.Code)
	assert.Equal(t, "GetSeat", remote.Name)
	assert.Nil(t, seats)
	assert.False(t, called)
	assert.Less(t, time.Since(started), time.Second)
}

func TestWatermillQueryBusSetTimeoutDuringDispatch(t *testing.T) {
	pubSub := newPubSub(t)
	bus := NewWatermillQueryBus[domain.Query[seatData], seatData, []bool](pubSub, application.NopLogger{})
	defer bus.Close()

	bus.RegisterHandler("GetSeat", queryHandlerFunc(func(_ context.Context, q domain.Query[seatData]) ([]bool, error) {
		return make([]bool, q.Payload().Row), nil
	}))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 20; i++ {
			bus.SetTimeout(time.Duration(2+i) * time.Second)
		}
	}()

	for i := 1; i <= 20; i++ {
		seats, err := bus.Dispatch(context.Background(), seatQuery{data: seatData{FlightID: 1, Row: i}})
		require.NoError(t, err)
		assert.Len(t, seats, i)
	}
	wg.Wait()
}

func TestWatermillEventBusFansOut(t *testing.T) {
	pubSub := newPubSub(t)
	bus := NewWatermillEventBus[domain.Event[seatData], seatData](pubSub.Publisher, pubSub.Subscriber, application.NopLogger{})
	defer bus.Close()

	require.NoError(t, bus.Publish(context.Background(), seatEvent{data: seatData{FlightID: 9}}))

	var (
		mu     sync.Mutex
		first  []uint64
		second []uint64
	)
	bus.RegisterHandler("SeatChanged", eventHandlerFunc(func(_ context.Context, e domain.Event[seatData]) error {
		mu.Lock()
		defer mu.Unlock()
		first = append(first, e.Payload().FlightID)
		return nil
	}))
	bus.RegisterHandler("SeatChanged", eventHandlerFunc(func(_ context.Context, e domain.Event[seatData]) error {
		mu.Lock()
		defer mu.Unlock()
		second = append(second, e.Payload().FlightID)
		return errors.New("ignored")
	}))

	for id := uint64(1); id <= 3; id++ {
		require.NoError(t, bus.Publish(context.Background(), seatEvent{data: seatData{FlightID: id}}))
	}

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(first) == 3 && len(second) == 3
	}, time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []uint64{1, 2, 3}, first)
	assert.Equal(t, []uint64{1, 2, 3}, second)
}
