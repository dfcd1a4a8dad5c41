package monitoring

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMonitor_TrackLookup(t *testing.T) {
	m := NewMonitor(true)
	before := testutil.ToFloat64(ticketLookups.WithLabelValues(ResultNotFound))

	m.TrackLookup(ResultNotFound, 3, 120*time.Millisecond)

	assert.Equal(t, before+1, testutil.ToFloat64(ticketLookups.WithLabelValues(ResultNotFound)))
}

func TestMonitor_Disabled(t *testing.T) {
	m := NewMonitor(false)
	before := testutil.ToFloat64(upstreamFetches.WithLabelValues("ok"))

	m.TrackPageFetch("ok")

	assert.Equal(t, before, testutil.ToFloat64(upstreamFetches.WithLabelValues("ok")))
}

func TestMonitor_Nil(t *testing.T) {
	var m *Monitor

	assert.NotPanics(t, func() {
		m.TrackLookup(ResultFound, 1, time.Millisecond)
		m.TrackTransfer("accepted")
		m.TrackRateLimited()
	})
}
