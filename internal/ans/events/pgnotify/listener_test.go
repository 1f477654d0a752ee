package pgnotify

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ans/internal/ans/events"
	"ans/internal/ans/metrics"
	"ans/pkg/domain"
)

func TestDeliverDecodesPayload(t *testing.T) {
	var got []events.NameAssigned
	sink := events.PublisherFunc(func(_ context.Context, e events.NameAssigned) error {
		got = append(got, e)
		return nil
	})
	m := metrics.NewWithRegisterer(prometheus.NewRegistry())
	l := NewListener("postgres://unused", sink, WithMetrics(m))

	l.deliver(context.Background(), `{"address":"0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed","name":"alice","assigned_at":"2026-01-02T03:04:05Z"}`)

	require.Len(t, got, 1)
	assert.Equal(t, "alice", got[0].Name)
	assert.Equal(t, domain.MustParseAddress("0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed"), got[0].Address)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.EventsEmitted.WithLabelValues("pgnotify", "delivered")))
}

func TestDeliverDropsMalformedAndFailed(t *testing.T) {
	sink := events.PublisherFunc(func(context.Context, events.NameAssigned) error {
		return errors.New("closed")
	})
	m := metrics.NewWithRegisterer(prometheus.NewRegistry())
	l := NewListener("postgres://unused", sink, WithMetrics(m))

	l.deliver(context.Background(), `not json`)
	l.deliver(context.Background(), `{"address":"0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed","name":"a"}`)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.EventsEmitted.WithLabelValues("pgnotify", "malformed")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.EventsEmitted.WithLabelValues("pgnotify", "failed")))
}

func TestChannelOption(t *testing.T) {
	assert.Equal(t, DefaultChannel, NewListener("dsn", nil).Channel())
	assert.Equal(t, "custom", NewListener("dsn", nil, WithChannel("custom")).Channel())
}
