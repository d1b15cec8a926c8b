package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_RecordOutcome(t *testing.T) {
	m := NewWithRegistry("test", prometheus.NewRegistry())

	m.RecordOutcome("submit", "confirmed")
	m.RecordOutcome("submit", "confirmed")
	m.RecordOutcome("submit", "conflict_room")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.reservationOutcomes.WithLabelValues("submit", "confirmed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.reservationOutcomes.WithLabelValues("submit", "conflict_room")))
}

func TestMetrics_ObserveDBCall_CountsErrors(t *testing.T) {
	m := NewWithRegistry("test", prometheus.NewRegistry())

	m.ObserveDBCall("exec", time.Millisecond, nil)
	m.ObserveDBCall("exec", time.Millisecond, errors.New("boom"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.dbQueryErrors.WithLabelValues("exec")))
}

func TestMetrics_SetDBStats(t *testing.T) {
	m := NewWithRegistry("test", prometheus.NewRegistry())

	m.SetDBStats(10, 3, 7, 42)

	assert.Equal(t, 10.0, testutil.ToFloat64(m.dbOpenConnections))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.dbInUse))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.dbIdle))
	assert.Equal(t, 42.0, testutil.ToFloat64(m.dbWaitCount))
}

func TestMetrics_ObserveHTTPRequest(t *testing.T) {
	m := NewWithRegistry("test", prometheus.NewRegistry())

	m.ObserveHTTPRequest("POST", "/api/v1/reservations", 201, 10*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("POST", "/api/v1/reservations", "201")))
}
