package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Record(t *testing.T) {
	m := New()

	m.ObserveFetch(OutcomeSuccess, "", 120*time.Millisecond)
	m.ObserveFetch(OutcomeError, "http", 50*time.Millisecond)
	m.ObserveFetch(OutcomeThrottled, "", 0)
	m.ObserveCacheLookup(true)
	m.ObserveCacheLookup(false)
	m.ObserveCacheLookup(false)
	m.ObserveCoalesced()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.fetchTotal.WithLabelValues(OutcomeSuccess, "")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.fetchTotal.WithLabelValues(OutcomeError, "http")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.cacheLookups.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.coalesced))
}

func TestMetrics_ObserveFlight(t *testing.T) {
	m := New()
	m.ObserveFlight(1)
	m.ObserveFlight(16)

	families, err := m.Registry().Gather()
	require.NoError(t, err)

	var found bool
	for _, mf := range families {
		if mf.GetName() != "ratesvc_coordinator_flight_waiters" {
			continue
		}
		found = true
		h := mf.GetMetric()[0].GetHistogram()
		assert.Equal(t, uint64(2), h.GetSampleCount())
		assert.Equal(t, 17.0, h.GetSampleSum())
	}
	assert.True(t, found, "flight_waiters histogram registered")
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveFetch(OutcomeSuccess, "", time.Second)
		m.ObserveCacheLookup(true)
		m.ObserveCoalesced()
		m.ObserveFlight(3)
		m.ObserveStoreError("save")
		m.SetTableFetchedAt(time.Now())
		m.SetFavorites(3)
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.ObserveCoalesced()

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "ratesvc_coordinator_coalesced_waiters_total 1")
}
