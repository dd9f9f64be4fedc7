package session

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"miniapp-auth/internal/common/errors"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestManager(t *testing.T, now time.Time) *Manager {
	t.Helper()
	m, err := NewManager(testSecret, time.Hour)
	require.NoError(t, err)
	m.now = func() time.Time { return now }
	return m
}

func TestNewManager(t *testing.T) {
	_, err := NewManager("short", time.Hour)
	assert.True(t, errors.IsType(err, errors.ErrTypeConfig))

	_, err = NewManager(testSecret, 0)
	assert.True(t, errors.IsType(err, errors.ErrTypeConfig))

	m, err := NewManager(testSecret, 30*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, m.TTL())
}

func TestIssueAndParse(t *testing.T) {
	now := time.Unix(1700000000, 0)
	m := newTestManager(t, now)

	token, expiresAt, err := m.Issue(42, "Ann", "ann")
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour), expiresAt)

	claims, err := m.Parse(token)
	require.NoError(t, err)

	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	assert.Equal(t, "Ann", claims.FirstName)
	assert.Equal(t, "ann", claims.Username)
	assert.Equal(t, "miniapp-auth", claims.Issuer)
}

func TestParse_Expired(t *testing.T) {
	now := time.Unix(1700000000, 0)
	m := newTestManager(t, now)

	token, _, err := m.Issue(42, "Ann", "")
	require.NoError(t, err)

	m.now = func() time.Time { return now.Add(2 * time.Hour) }
	_, err = m.Parse(token)
	require.Error(t, err)

	var appErr *errors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, errors.ErrTypeAuth, appErr.Type)
	assert.Equal(t, "session_expired", appErr.Code)
}

func TestParse_Rejects(t *testing.T) {
	now := time.Now()
	m := newTestManager(t, now)

	other, err := NewManager("fedcba9876543210fedcba9876543210", time.Hour)
	require.NoError(t, err)
	foreign, _, err := other.Issue(42, "", "")
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   "42",
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	badSubject := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   "not-a-number",
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	})
	badSubjectToken, err := badSubject.SignedString([]byte(testSecret))
	require.NoError(t, err)

	noExpiry := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Issuer: issuer, Subject: "42"},
	})
	noExpiryToken, err := noExpiry.SignedString([]byte(testSecret))
	require.NoError(t, err)

	tests := map[string]string{
		"garbage":        "not.a.token",
		"empty":          "",
		"foreign secret": foreign,
		"alg none":       unsigned,
		"bad subject":    badSubjectToken,
		"no expiry":      noExpiryToken,
	}

	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := m.Parse(token)
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.ErrTypeAuth))
			assert.Equal(t, "authentication: invalid session token: code=invalid_session", err.Error())
		})
	}
}
