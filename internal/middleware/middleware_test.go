package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"miniapp-auth/internal/common/logging"
	"miniapp-auth/internal/session"
)

type recordingObserver struct {
	method string
	route  string
	status int
}

func (o *recordingObserver) ObserveRequest(method, route string, status int, _ time.Duration) {
	o.method, o.route, o.status = method, route, status
}

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	logger, err := logging.NewZapLogger(logging.LogConfig{Level: logging.DebugLevel, Output: buf, JSON: true})
	require.NoError(t, err)

	original := logging.GetGlobalLogger()
	logging.SetGlobalLogger(logger)
	t.Cleanup(func() { logging.SetGlobalLogger(original) })
	return buf
}

func TestRequestID(t *testing.T) {
	var seen string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = r.Context().Value(logging.RequestIDKey).(string)
	}))

	t.Run("generates when absent", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		_, err := uuid.Parse(seen)
		assert.NoError(t, err)
		assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))
	})

	t.Run("reuses a valid incoming id", func(t *testing.T) {
		id := uuid.NewString()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, id)

		handler.ServeHTTP(httptest.NewRecorder(), req)
		assert.Equal(t, id, seen)
	})

	t.Run("replaces a malformed id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "<script>")

		handler.ServeHTTP(httptest.NewRecorder(), req)
		assert.NotEqual(t, "<script>", seen)
	})
}

func TestLogging(t *testing.T) {
	buf := captureLogs(t)
	observer := &recordingObserver{}

	router := mux.NewRouter()
	router.Use(Logging(observer))
	router.HandleFunc("/api/validate", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}).Methods(http.MethodPost)

	req := httptest.NewRequest(http.MethodPost, "/api/validate?initData=auth_date%3D1%26hash%3Dabc", nil)
	router.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, http.MethodPost, observer.method)
	assert.Equal(t, "/api/validate", observer.route)
	assert.Equal(t, http.StatusUnauthorized, observer.status)

	output := buf.String()
	assert.Contains(t, output, "HTTP request completed")
	assert.Contains(t, output, `"level":"WARN"`)
	assert.Contains(t, output, `"status":401`)
	assert.NotContains(t, output, "hash")
}

func TestRequireSession(t *testing.T) {
	manager, err := session.NewManager("0123456789abcdef0123456789abcdef", time.Hour)
	require.NoError(t, err)
	token, _, err := manager.Issue(42, "Ann", "ann")
	require.NoError(t, err)

	var got *session.Claims
	handler := RequireSession(manager)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = ClaimsFromContext(r.Context())
		userID, _ := r.Context().Value(logging.UserIDKey).(int64)
		assert.Equal(t, int64(42), userID)
		w.WriteHeader(http.StatusNoContent)
	}))

	t.Run("valid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/wallet", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		require.NotNil(t, got)
		assert.Equal(t, "ann", got.Username)
	})

	tests := map[string]struct {
		header string
		code   string
	}{
		"missing header": {"", "missing_session"},
		"wrong scheme":   {"Basic " + token, "missing_session"},
		"empty token":    {"Bearer ", "missing_session"},
		"bad token":      {"Bearer abc.def.ghi", "invalid_session"},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/wallet", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Contains(t, rec.Header().Get("WWW-Authenticate"), "Bearer")
			assert.Contains(t, rec.Body.String(), `"code":"`+tt.code+`"`)
		})
	}
}
