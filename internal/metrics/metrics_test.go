package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveUpstream(t *testing.T) {
	before := testutil.ToFloat64(UpstreamRequests.WithLabelValues("diagnosis", OutcomeSuccess))

	ObserveUpstream("diagnosis", OutcomeSuccess, time.Now().Add(-50*time.Millisecond))

	after := testutil.ToFloat64(UpstreamRequests.WithLabelValues("diagnosis", OutcomeSuccess))
	assert.Equal(t, before+1, after)
	assert.Greater(t, testutil.CollectAndCount(UpstreamDuration), 0)
}

func TestCacheLookups(t *testing.T) {
	counter := CacheLookups.WithLabelValues("test", CacheMiss)
	before := testutil.ToFloat64(counter)

	counter.Inc()

	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}
