package errors

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithDetailDoesNotMutatePredefined(t *testing.T) {
	err := ErrOutOfRange.WithDetail("temperature 2.50 out of range")

	assert.Equal(t, "temperature 2.50 out of range", err.Detail)
	assert.Empty(t, ErrOutOfRange.Detail)
	assert.Equal(t, ErrOutOfRange.Code, err.Code)
}

func TestClientMessagePrefersDetail(t *testing.T) {
	assert.Equal(t, "upstream LLM call failed", ErrUpstreamError.ClientMessage())
	assert.Equal(t, "rate limited", ErrUpstreamError.WithDetail("rate limited").ClientMessage())
}

func TestCodeToHTTPStatus(t *testing.T) {
	cases := map[*AppError]int{
		ErrUnsupportedMode:       http.StatusBadRequest,
		ErrOutOfRange:            http.StatusBadRequest,
		ErrFieldTooLong:          http.StatusBadRequest,
		ErrUpstreamNotConfigured: http.StatusInternalServerError,
		ErrUpstreamError:         http.StatusInternalServerError,
		ErrInternalError:         http.StatusInternalServerError,
	}
	for appErr, want := range cases {
		assert.Equal(t, want, appErr.HTTPStatus, "code %s", appErr.Code)
	}
}

func TestAsAppError(t *testing.T) {
	appErr := AsAppError(ErrUpstreamError)
	assert.Same(t, ErrUpstreamError, appErr)

	plain := errors.New("boom")
	wrapped := AsAppError(plain)
	require.NotNil(t, wrapped)
	assert.Equal(t, CodeUnknown, wrapped.Code)
	assert.ErrorIs(t, wrapped, plain)
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := ErrUpstreamError.WithError(cause)
	assert.ErrorIs(t, err, cause)
}
