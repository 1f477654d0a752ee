package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsRecord(t *testing.T) {
	m := NewWithRegisterer(prometheus.NewRegistry())

	m.IncrementNamesAssigned()
	m.IncrementNamesAssigned()
	m.RecordRejection("registry", "assign_name", "name_taken")
	m.RecordCacheHit("name")
	m.RecordCacheMiss("name")
	m.RecordCacheMiss("name")
	m.RecordEvent("kafka", "dropped")
	m.ObserveLookup("name", time.Now())

	assert.Equal(t, 2.0, testutil.ToFloat64(m.NamesAssigned))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Rejections.WithLabelValues("registry", "assign_name", "name_taken")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("name", "hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("name", "miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EventsEmitted.WithLabelValues("kafka", "dropped")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.LookupDuration))
}
