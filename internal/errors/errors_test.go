package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAPIError_Error(t *testing.T) {
	err := StatusError("memory", "GET /api/memory", 502, "bad gateway")
	assert.Equal(t, "memory GET /api/memory: status 502: bad gateway", err.Error())

	assert.Equal(t, "agents: status 500: boom", NewAPIError("agents", 500, "boom").Error())
}

func TestTransportError_Unwraps(t *testing.T) {
	inner := errors.New("connection refused")
	err := TransportError("agents", "GET /api/agents", inner)
	assert.ErrorIs(t, err, inner)
	assert.Equal(t, "agents GET /api/agents: connection refused", err.Error())
	assert.True(t, IsRetryable(err))
}

func TestStatusError_WrapsSentinel(t *testing.T) {
	cases := map[int]error{
		404: ErrNotFound,
		429: ErrRateLimit,
		503: ErrUnavailable,
		504: ErrTimeout,
	}
	for code, want := range cases {
		assert.ErrorIs(t, StatusError("memory", "GET /api/memory", code, ""), want, code)
	}
	assert.NoError(t, errors.Unwrap(StatusError("memory", "POST /api/memory", 400, "bad")))
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(NewAPIError("memory", 0, "transport")))
	assert.True(t, IsRetryable(NewAPIError("memory", 429, "rate limit")))
	assert.True(t, IsRetryable(NewAPIError("memory", 503, "unavailable")))
	assert.True(t, IsRetryable(NewAPIError("memory", 507, "insufficient storage")))
	assert.True(t, IsRetryable(fmt.Errorf("wrapped: %w", ErrTimeout)))
	assert.True(t, IsRetryable(ErrUnavailable))

	assert.False(t, IsRetryable(NewAPIError("memory", 400, "bad request")))
	assert.False(t, IsRetryable(StatusError("agents", "GET /api/agents/x/files", 404, "not found")))
	assert.False(t, IsRetryable(ErrInvalidInput))
	assert.False(t, IsRetryable(ErrConfirmationRequired))
}
