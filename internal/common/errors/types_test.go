package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appError *AppError
		want     string
	}{
		{
			name: "basic error",
			appError: &AppError{
				Type:    ErrTypeConfig,
				Message: "configuration is invalid",
			},
			want: "config: configuration is invalid",
		},
		{
			name: "error with code",
			appError: &AppError{
				Type:    ErrTypeAuth,
				Message: "invalid init data signature",
				Code:    "signature_mismatch",
			},
			want: "authentication: invalid init data signature: code=signature_mismatch",
		},
		{
			name: "error with cause",
			appError: &AppError{
				Type:    ErrTypeConnection,
				Message: "openfort request failed",
				Cause:   errors.New("network timeout"),
			},
			want: "connection: openfort request failed: cause=network timeout",
		},
		{
			name: "error with sorted context",
			appError: &AppError{
				Type:    ErrTypeValidation,
				Message: "field validation failed",
				Context: map[string]interface{}{
					"value": "invalid",
					"field": "chain_id",
				},
			},
			want: "validation: field validation failed: context={field=chain_id, value=invalid}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.appError.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := InternalError("wrapped", cause)

	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, cause, errors.Unwrap(err))
}

func TestAppError_WithContextRedactsSensitiveKeys(t *testing.T) {
	err := AuthError("rejected").
		WithContext("bot_token", "123:abc").
		WithContext("hash", "deadbeef").
		WithContext("user_id", 42)

	assert.Equal(t, "[REDACTED]", err.Context["bot_token"])
	assert.Equal(t, "[REDACTED]", err.Context["hash"])
	assert.Equal(t, 42, err.Context["user_id"])
	assert.NotContains(t, err.Error(), "123:abc")
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		typ  ErrorType
		msg  string
	}{
		{"connection", ConnectionError("db down", nil), ErrTypeConnection, "db down"},
		{"validation", ValidationError("bad input"), ErrTypeValidation, "bad input"},
		{"config", ConfigError("missing token"), ErrTypeConfig, "missing token"},
		{"auth", AuthError("expired"), ErrTypeAuth, "expired"},
		{"not found", NotFoundError("player"), ErrTypeNotFound, "player not found"},
		{"internal", InternalError("boom", nil), ErrTypeInternal, "boom"},
		{"unavailable", UnavailableError("wallet provisioning"), ErrTypeUnavailable, "wallet provisioning is not configured"},
		{"rate limit", RateLimitError("127.0.0.1"), ErrTypeRateLimit, "rate limit exceeded for 127.0.0.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.typ, tt.err.Type)
			assert.Equal(t, tt.msg, tt.err.Message)
		})
	}
}

func TestIsTypeAndGetType(t *testing.T) {
	wrapped := fmt.Errorf("provision: %w", NotFoundError("account"))

	assert.True(t, IsType(wrapped, ErrTypeNotFound))
	assert.False(t, IsType(wrapped, ErrTypeAuth))
	assert.False(t, IsType(nil, ErrTypeAuth))

	assert.Equal(t, ErrTypeNotFound, GetType(wrapped))
	assert.Equal(t, ErrTypeInternal, GetType(errors.New("plain")))
	assert.Equal(t, ErrorType(""), GetType(nil))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{ValidationError("x"), http.StatusBadRequest},
		{AuthError("x"), http.StatusUnauthorized},
		{NotFoundError("x"), http.StatusNotFound},
		{RateLimitError("x"), http.StatusTooManyRequests},
		{UnavailableError("x"), http.StatusServiceUnavailable},
		{ConnectionError("x", nil), http.StatusBadGateway},
		{ConfigError("x"), http.StatusInternalServerError},
		{InternalError("x", nil), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, HTTPStatus(tt.err), "%v", tt.err)
	}
}

func TestPublicMessage(t *testing.T) {
	assert.Equal(t, "init data has expired", PublicMessage(AuthError("init data has expired")))
	assert.Equal(t, "internal server error", PublicMessage(InternalError("sql: no rows", nil)))
	assert.Equal(t, "internal server error", PublicMessage(ConnectionError("dial tcp 10.0.0.1", nil)))
	assert.Equal(t, "internal server error", PublicMessage(errors.New("plain")))
}

func TestIsSensitiveKey(t *testing.T) {
	for _, key := range []string{"TELEGRAM_BOT_TOKEN", "jwt_secret", "hash", "initData", "api_key", "Password"} {
		assert.True(t, IsSensitiveKey(key), key)
	}
	for _, key := range []string{"user_id", "status", "path", "chain_id"} {
		assert.False(t, IsSensitiveKey(key), key)
	}
}
