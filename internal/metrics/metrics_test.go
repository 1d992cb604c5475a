package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReminderOutcomes(t *testing.T) {
	before := testutil.ToFloat64(ReminderOutcomes.WithLabelValues(OutcomeSent))
	ReminderOutcomes.WithLabelValues(OutcomeSent).Inc()
	assert.InDelta(t, before+1, testutil.ToFloat64(ReminderOutcomes.WithLabelValues(OutcomeSent)), 0.0001)
}

func TestTimer_ObserveDuration(t *testing.T) {
	h := prometheus.NewHistogram(prometheus.HistogramOpts{Name: "test_duration_seconds"})
	timer := NewTimer()
	time.Sleep(10 * time.Millisecond)

	d := timer.ObserveDuration(h)
	assert.GreaterOrEqual(t, d, 10*time.Millisecond)
	assert.Equal(t, 1, testutil.CollectAndCount(h))
}

func TestHandler_ExposesMetrics(t *testing.T) {
	Transitions.WithLabelValues("cancel", "ok").Inc()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "subscription_manager_transitions_total")
}
