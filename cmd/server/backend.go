package main

import (
	"context"
	"fmt"
	"log/slog"

	"ans/internal/ans/events"
	"ans/internal/ans/events/pgnotify"
	ansmetrics "ans/internal/ans/metrics"
	"ans/internal/ans/storage"
	"ans/internal/ans/store"
	"ans/internal/platform/config"
	"ans/internal/platform/postgres"
	"ans/internal/platform/redis"
)

// backend is the selected store plus whatever it needs at runtime.
type backend struct {
	store      storage.Backend
	health     func(ctx context.Context) error
	background func(ctx context.Context) error
	close      func()
}

func openBackend(ctx context.Context, cfg config.Server, log *slog.Logger, m *ansmetrics.Metrics, bus *events.Bus) (*backend, error) {
	switch cfg.Backend {
	case config.BackendPostgres:
		db, err := postgres.Open(ctx, postgres.Config{
			URL:             cfg.Database.URL,
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		})
		if err != nil {
			return nil, err
		}
		if err := postgres.Migrate(db, store.Migrations, "migrations"); err != nil {
			_ = db.Close()
			return nil, err
		}
		pg := store.NewPostgres(db,
			store.WithTxTimeout(cfg.Database.TxTimeout),
			store.WithNotifyChannel(cfg.Database.NotifyChannel),
		)
		listener := pgnotify.NewListener(cfg.Database.URL, bus,
			pgnotify.WithChannel(cfg.Database.NotifyChannel),
			pgnotify.WithLogger(log),
			pgnotify.WithMetrics(m),
		)
		log.Info("postgres backend ready", "notify_channel", listener.Channel())
		return &backend{
			store:      pg,
			health:     pg.Health,
			background: listener.Run,
			close:      func() { _ = db.Close() },
		}, nil

	case config.BackendRedis:
		client, err := redis.New(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		rs := store.NewRedis(client.Client,
			store.WithKeyPrefix(cfg.Redis.KeyPrefix),
			store.WithMaxRetries(cfg.Redis.MaxRetries),
		)
		log.Info("redis backend ready", "key_prefix", cfg.Redis.KeyPrefix)
		return &backend{
			store:  rs,
			health: rs.Health,
			close:  func() { _ = client.Close() },
		}, nil

	case config.BackendMemory:
		log.Warn("in-memory backend: bindings are lost on restart")
		return &backend{
			store:  store.NewInMemory(),
			health: func(context.Context) error { return nil },
			close:  func() {},
		}, nil
	}
	return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
}
