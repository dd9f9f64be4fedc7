package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	m, err := New()
	require.NoError(t, err)

	m.Verified(true, "")
	m.Verified(false, "expired")
	m.Verified(false, "expired")
	m.Verified(false, "signature_mismatch")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Verifications.WithLabelValues("accepted", "")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Verifications.WithLabelValues("rejected", "expired")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Verifications.WithLabelValues("rejected", "signature_mismatch")))

	m.Provisioned(nil)
	m.Provisioned(errors.New("openfort down"))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Provisions.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Provisions.WithLabelValues("failure")))

	m.ObserveRequest(http.MethodPost, "/api/validate", 200, 15*time.Millisecond)
	assert.Equal(t, 1, testutil.CollectAndCount(m.RequestDuration))
}

func TestHandler(t *testing.T) {
	m, err := New()
	require.NoError(t, err)
	m.Verified(false, "expired")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `miniapp_auth_initdata_verifications_total{kind="expired",result="rejected"} 1`)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
