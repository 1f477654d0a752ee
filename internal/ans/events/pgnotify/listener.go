// Package pgnotify relays NameAssigned events committed by any replica to a
// local sink, using Postgres LISTEN/NOTIFY.
package pgnotify

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/lib/pq"

	"ans/internal/ans/events"
	"ans/internal/ans/metrics"
)

const (
	sinkName = "pgnotify"

	// DefaultChannel is the NOTIFY channel the postgres store writes to.
	DefaultChannel = "ans_name_assigned"
)

// Listener forwards notifications on one channel to sink.
type Listener struct {
	dsn          string
	channel      string
	sink         events.Publisher
	logger       *slog.Logger
	metrics      *metrics.Metrics
	minReconnect time.Duration
	maxReconnect time.Duration
	pingInterval time.Duration
}

// Option configures a Listener.
type Option func(*Listener)

func WithChannel(channel string) Option {
	return func(l *Listener) {
		if channel != "" {
			l.channel = channel
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(l *Listener) {
		l.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(l *Listener) {
		l.metrics = m
	}
}

func NewListener(dsn string, sink events.Publisher, opts ...Option) *Listener {
	l := &Listener{
		dsn:          dsn,
		channel:      DefaultChannel,
		sink:         sink,
		logger:       slog.Default(),
		minReconnect: time.Second,
		maxReconnect: time.Minute,
		pingInterval: 90 * time.Second,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	return l
}

// Channel is the channel listened on.
func (l *Listener) Channel() string {
	return l.channel
}

// Run listens until ctx is cancelled. Connection loss is retried by the
// driver; notifications sent while disconnected are lost.
func (l *Listener) Run(ctx context.Context) error {
	listener := pq.NewListener(l.dsn, l.minReconnect, l.maxReconnect, func(ev pq.ListenerEventType, err error) {
		switch ev {
		case pq.ListenerEventConnectionAttemptFailed, pq.ListenerEventDisconnected:
			l.logger.WarnContext(ctx, "pg listener connection problem", "channel", l.channel, "error", err)
		case pq.ListenerEventReconnected:
			l.logger.InfoContext(ctx, "pg listener reconnected", "channel", l.channel)
		}
	})
	defer listener.Close()

	if err := listener.Listen(l.channel); err != nil {
		return err
	}
	l.logger.InfoContext(ctx, "pg listener started", "channel", l.channel)

	ticker := time.NewTicker(l.pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case n := <-listener.Notify:
			// nil after a reconnect
			if n == nil {
				continue
			}
			l.deliver(ctx, n.Extra)
		case <-ticker.C:
			if err := listener.Ping(); err != nil {
				l.logger.WarnContext(ctx, "pg listener ping failed", "error", err)
			}
		}
	}
}

func (l *Listener) deliver(ctx context.Context, payload string) {
	var event events.NameAssigned
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		l.record("malformed")
		l.logger.WarnContext(ctx, "dropping malformed notification", "channel", l.channel, "error", err)
		return
	}
	if err := l.sink.Publish(ctx, event); err != nil {
		l.record("failed")
		l.logger.WarnContext(ctx, "failed to relay notification", "name", event.Name, "error", err)
		return
	}
	l.record("delivered")
}

func (l *Listener) record(outcome string) {
	if l.metrics != nil {
		l.metrics.RecordEvent(sinkName, outcome)
	}
}
