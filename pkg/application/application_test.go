package application

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockLogger struct {
	mock.Mock
}

func (m *mockLogger) Info(ctx context.Context, msg string, fields map[string]interface{}) {
	m.Called(ctx, msg, fields)
}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields map[string]interface{}) {
	m.Called(ctx, msg, fields)
}

func (m *mockLogger) Error(ctx context.Context, msg string, fields map[string]interface{}) {
	m.Called(ctx, msg, fields)
}

func (m *mockLogger) Trace(ctx context.Context, msg string, fields map[string]interface{}) {
	m.Called(ctx, msg, fields)
}

func TestLogErrorCopiesFieldsAndAddsError(t *testing.T) {
	ctx := context.Background()
	logger := new(mockLogger)
	boom := errors.New("boom")
	fields := map[string]interface{}{"flight_id": 7}

	logger.On("Error", ctx, "failed", map[string]interface{}{"flight_id": 7, "error": boom}).Once()

	LogError(ctx, logger, "failed", boom, fields)

	logger.AssertExpectations(t)
	assert.NotContains(t, fields, "error")
}

func TestLogInfoWithNilFields(t *testing.T) {
	ctx := context.Background()
	logger := new(mockLogger)
	logger.On("Info", ctx, "ok", map[string]interface{}{}).Once()

	LogInfo(ctx, logger, "ok", nil)

	logger.AssertExpectations(t)
}

func TestRequestID(t *testing.T) {
	_, ok := RequestIDFrom(context.Background())
	assert.False(t, ok)

	ctx := WithRequestID(context.Background(), "req-1")
	id, ok := RequestIDFrom(ctx)
	assert.True(t, ok)
	assert.Equal(t, "req-1", id)

	_, ok = RequestIDFrom(WithRequestID(context.Background(), ""))
	assert.False(t, ok)
}

type codedError struct{ code string }

func (e codedError) Error() string     { return "coded" }
func (e codedError) ErrorCode() string { return e.code }

func TestErrorCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "plain", err: errors.New("x"), want: ""},
		{name: "coded", err: codedError{code: "not_found"}, want: "not_found"},
		{name: "wrapped", err: fmt.Errorf("ctx: %w", codedError{code: "conflict"}), want: "conflict"},
		{name: "remote", err: &RemoteError{Name: "GetFlight", Code: "unauthorized", Message: "no"}, want: "unauthorized"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ErrorCodeOf(tt.err))
		})
	}
}

func TestRemoteErrorMessage(t *testing.T) {
	assert.Equal(t, "GetFlight: not_found: flight not found", (&RemoteError{Name: "GetFlight", Code: "not_found", Message: "flight not found"}).Error())
	assert.Equal(t, "GetFlight: timeout", (&RemoteError{Name: "GetFlight", Message: "timeout"}).Error())
}

func TestMarshalPayload(t *testing.T) {
	data, err := MarshalPayload(struct {
		FlightNumber string `json:"flightNumber"`
	}{FlightNumber: "FFA0001"})
	assert.NoError(t, err)
	assert.JSONEq(t, `{"flightNumber":"FFA0001"}`, string(data))
}
