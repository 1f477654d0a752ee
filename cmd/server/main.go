package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"ans/internal/ans/deploy"
	"ans/internal/ans/events"
	"ans/internal/ans/events/kafka"
	"ans/internal/ans/handler"
	ansmetrics "ans/internal/ans/metrics"
	"ans/internal/ans/registry"
	"ans/internal/ans/storage"
	jwttoken "ans/internal/jwt_token"
	"ans/internal/platform/config"
	"ans/internal/platform/httpserver"
	"ans/internal/platform/logger"
	httpmetrics "ans/internal/platform/metrics"
	"ans/internal/platform/telemetry"
	authmw "ans/pkg/platform/middleware/auth"
	"ans/pkg/platform/middleware/metadata"
	"ans/pkg/platform/middleware/request"
	"ans/pkg/platform/middleware/requesttime"
	"ans/pkg/platform/httputil"
)

const (
	serviceName     = "ans"
	kafkaPartitions = 3
	kafkaReplicas   = 1
)

// main wires the backend, the registry deployment and the HTTP surface, then
// blocks until SIGINT/SIGTERM.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	shutdownTracing, err := telemetry.Setup(ctx, serviceName, cfg.OTLPEndpoint)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			log.Warn("failed to flush traces", "error", err)
		}
	}()

	domainMetrics := ansmetrics.New()
	bus := events.NewBus()
	defer bus.Close()

	be, err := openBackend(ctx, cfg, log, domainMetrics, bus)
	if err != nil {
		return err
	}
	defer be.close()

	// The bus is fed directly unless a backend-level notifier delivers
	// assignments from every replica.
	var publishers events.Fanout
	if be.background == nil {
		publishers = append(publishers, bus)
	}
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err := kafka.New(cfg.Kafka.Brokers, cfg.Kafka.Topic,
			kafka.WithLogger(log),
			kafka.WithMetrics(domainMetrics),
			kafka.WithPublishTimeout(cfg.Kafka.PublishTimeout),
		)
		if err != nil {
			return err
		}
		defer producer.Close()
		if err := producer.EnsureTopic(ctx, kafkaPartitions, kafkaReplicas); err != nil {
			log.Warn("kafka topic not ensured; publishing anyway", "topic", cfg.Kafka.Topic, "error", err)
		}
		publishers = append(publishers, producer)
	}

	dep, err := deploy.Setup(ctx, deploy.Config{
		Deployer: cfg.Deployer,
		Owner:    cfg.Owner,
		RegistryOptions: []registry.Option{
			registry.WithResolveCache(cfg.ResolveCacheTTL),
			registry.WithMetrics(domainMetrics),
			registry.WithLogger(log),
		},
		StorageOptions: []storage.Option{
			storage.WithPublisher(publishers),
			storage.WithMetrics(domainMetrics),
			storage.WithLogger(log),
		},
		Logger: log,
	}, be.store)
	if err != nil {
		return err
	}

	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, cfg.JWTIssuer, cfg.JWTAudience)
	requireCaller := authmw.RequireCaller(jwttoken.NewJWTServiceAdapter(jwtService), log)

	router := newRouter(log, httpmetrics.New(), be)
	handler.New(dep.Registry, bus, log, requireCaller, handler.WithStorage(dep.Storage)).Register(router)

	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	if be.background != nil {
		g.Go(func() error {
			return be.background(gctx)
		})
	}
	g.Go(func() error {
		log.Info("starting ans", "addr", cfg.Addr, "backend", cfg.Backend, "registry", dep.RegistryAddress.Hex())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		// SSE subscribers return once the bus closes their channels.
		bus.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func newRouter(log *slog.Logger, m *httpmetrics.Metrics, be *backend) chi.Router {
	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(request.Recovery(log))
	r.Use(request.Logger(log))
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)
	r.Use(m.Middleware)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := be.health(ctx); err != nil {
			log.WarnContext(ctx, "health check failed", "error", err, "request_id", request.GetRequestID(r))
			httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())
	return r
}
