package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"miniapp-auth/internal/common/errors"
	"miniapp-auth/internal/common/logging"
	"miniapp-auth/internal/session"
)

type claimsKey struct{}

// SessionParser validates a bearer token
type SessionParser interface {
	Parse(token string) (*session.Claims, error)
}

// RequireSession rejects requests without a valid "Authorization: Bearer"
// session token and stores the claims for ClaimsFromContext
func RequireSession(parser SessionParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				writeAuthError(w, errors.AuthError("missing session token").WithCode("missing_session"))
				return
			}

			claims, err := parser.Parse(token)
			if err != nil {
				writeAuthError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey{}, claims)
			if userID, err := claims.UserID(); err == nil {
				ctx = logging.ContextWithUserID(ctx, userID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext returns the claims stored by RequireSession
func ClaimsFromContext(ctx context.Context) (*session.Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*session.Claims)
	return claims, ok
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func writeAuthError(w http.ResponseWriter, err error) {
	code := "invalid_session"
	if appErr, ok := err.(*errors.AppError); ok && appErr.Code != "" {
		code = appErr.Code
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="miniapp-auth"`)
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error": errors.PublicMessage(err),
		"code":  code,
	})
}
