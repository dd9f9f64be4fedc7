// Package session issues short-lived HS256 tokens for users whose launch
// payload was accepted, so follow-up API calls do not resend init data.
package session

import (
	stderrors "errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"miniapp-auth/internal/common/errors"
)

const issuer = "miniapp-auth"

// MinSecretLength is the shortest signing secret NewManager accepts
const MinSecretLength = 32

// Claims carries the verified Telegram user. Subject is the user id.
type Claims struct {
	jwt.RegisteredClaims
	FirstName string `json:"first_name,omitempty"`
	Username  string `json:"username,omitempty"`
}

// UserID parses the subject back into the Telegram user id
func (c *Claims) UserID() (int64, error) {
	return strconv.ParseInt(c.Subject, 10, 64)
}

// Manager signs and parses session tokens
type Manager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewManager(secret string, ttl time.Duration) (*Manager, error) {
	if len(secret) < MinSecretLength {
		return nil, errors.ConfigError(fmt.Sprintf("session secret must be at least %d characters", MinSecretLength))
	}
	if ttl <= 0 {
		return nil, errors.ConfigError("session ttl must be positive")
	}
	return &Manager{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// TTL returns the lifetime of issued tokens
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Issue returns a signed token for the user and its expiry time
func (m *Manager) Issue(userID int64, firstName, username string) (string, time.Time, error) {
	now := m.now()
	expiresAt := now.Add(m.ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		FirstName: firstName,
		Username:  username,
	})

	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, errors.InternalError("failed to sign session token", err)
	}
	return signed, expiresAt, nil
}

// Parse validates the signature, algorithm, issuer and expiry of a token.
// Every failure is an auth error without details about the token.
func (m *Manager) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if stderrors.Is(err, jwt.ErrTokenExpired) {
			return nil, errors.AuthError("session expired").WithCode("session_expired")
		}
		return nil, errors.AuthError("invalid session token").WithCode("invalid_session")
	}
	if !token.Valid {
		return nil, errors.AuthError("invalid session token").WithCode("invalid_session")
	}

	if _, err := claims.UserID(); err != nil {
		return nil, errors.AuthError("invalid session token").WithCode("invalid_session")
	}
	return claims, nil
}
