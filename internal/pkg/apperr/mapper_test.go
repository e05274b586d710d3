package apperr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

var errConflict = errors.New("conflict")

func TestMapper_Map(t *testing.T) {
	m := NewMapper("Booking failed. Please try again.").
		With(errConflict, http.StatusConflict, "CONFLICT", "already handled")

	cases := []struct {
		name   string
		err    error
		status int
		code   string
		msg    string
	}{
		{"validation", Validation("phone", "Phone number is required"), http.StatusBadRequest, "VALIDATION_ERROR", "Phone number is required"},
		{"registered sentinel", fmt.Errorf("approve: %w", errConflict), http.StatusConflict, "CONFLICT", "already handled"},
		{"backend message passthrough", &BackendError{Status: 409, Message: "Reservation already confirmed"}, http.StatusConflict, "BACKEND_REJECTED", "Reservation already confirmed"},
		{"backend 500 without message", &BackendError{Status: 500}, http.StatusBadGateway, "BACKEND_ERROR", "Booking failed. Please try again."},
		{"backend 401", &BackendError{Status: 401, Message: "token expired"}, http.StatusUnauthorized, "UNAUTHORIZED", "token expired"},
		{"network", &NetworkError{Op: "create reservation", Err: errors.New("connection refused")}, http.StatusBadGateway, "NETWORK_ERROR", "Booking failed. Please try again."},
		{"deadline", &NetworkError{Op: "list", Err: context.DeadlineExceeded}, http.StatusGatewayTimeout, "TIMEOUT", "Request timed out. Please try again."},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR", "Booking failed. Please try again."},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			info := m.Map(tc.err)
			assert.Equal(t, tc.status, info.Status)
			assert.Equal(t, tc.code, info.Code)
			assert.Equal(t, tc.msg, info.Message)
		})
	}
}

func TestMapper_BackendMessageBeatsSentinel(t *testing.T) {
	m := NewMapper("Booking failed. Please try again.").
		With(ErrForbidden, http.StatusForbidden, "FORBIDDEN", "You are not allowed to manage this reservation").
		With(ErrAuthRequired, http.StatusUnauthorized, "AUTH_REQUIRED", "Please sign in to continue")

	info := m.Map(fmt.Errorf("approve: %w", &BackendError{Status: http.StatusForbidden, Message: "Only the listing owner can approve"}))
	assert.Equal(t, http.StatusForbidden, info.Status)
	assert.Equal(t, "Only the listing owner can approve", info.Message)

	info = m.Map(&BackendError{Status: http.StatusForbidden})
	assert.Equal(t, "Booking failed. Please try again.", info.Message)

	info = m.Map(fmt.Errorf("approve: %w", ErrForbidden))
	assert.Equal(t, "FORBIDDEN", info.Code)
	assert.Equal(t, "You are not allowed to manage this reservation", info.Message)

	info = m.Map(ErrAuthRequired)
	assert.Equal(t, "AUTH_REQUIRED", info.Code)
}

func TestBackendError_Is(t *testing.T) {
	err := fmt.Errorf("get: %w", &BackendError{Status: http.StatusNotFound})

	assert.ErrorIs(t, err, ErrBackend)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrForbidden)
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "bad dates", UserMessage(Validation("period", "bad dates"), "x"))
	assert.Equal(t, "Room unavailable", UserMessage(&BackendError{Status: 400, Message: "Room unavailable"}, "x"))
	assert.Equal(t, "x", UserMessage(&BackendError{Status: 500}, "x"))
	assert.Equal(t, "x", UserMessage(errors.New("raw payload"), "x"))
}
