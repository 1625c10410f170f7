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

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"realmgov/internal/governance"
	jwttoken "realmgov/internal/jwt_token"
	"realmgov/internal/platform/config"
	"realmgov/internal/platform/httpserver"
	"realmgov/internal/platform/kafka"
	"realmgov/internal/platform/logger"
	httpmetrics "realmgov/internal/platform/metrics"
	"realmgov/pkg/platform/audit/worker"
	"realmgov/pkg/platform/httputil"
	authmw "realmgov/pkg/platform/middleware/auth"
	"realmgov/pkg/platform/middleware/metadata"
	"realmgov/pkg/platform/middleware/request"
	"realmgov/pkg/platform/middleware/requesttime"
)

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the governance HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(globalFlags.configFile)
			if err != nil {
				return err
			}
			log := logger.New(cfg.Log.Level, cfg.Log.Format)
			slog.SetDefault(log)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, log)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	a, err := buildApp(ctx, cfg, log, reg)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Warn("failed to release resources", "error", err)
		}
	}()

	var replay jwttoken.ReplayGuard = jwttoken.NewInMemoryReplayGuard()
	if a.redis != nil {
		replay = jwttoken.NewRedisReplayGuard(a.redis.Client)
	}
	verifier := jwttoken.NewSignerVerifier(
		jwttoken.NewSignerTokenService(cfg.ProgramID, cfg.Signer.MaxAge, jwttoken.WithLeeway(cfg.Signer.Leeway)),
		replay,
		jwttoken.WithAuditPublisher(a.audit),
		jwttoken.WithLogger(log),
	)

	var relay *worker.Worker
	if a.outbox != nil && len(cfg.Kafka.Brokers) > 0 {
		producer, err := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
		if err != nil {
			return err
		}
		defer producer.Close()
		if err := producer.EnsureTopic(ctx, 3, 1); err != nil {
			log.Warn("could not ensure audit topic", "topic", cfg.Kafka.Topic, "error", err)
		}
		relay = worker.NewWorker(a.outbox, producer,
			worker.WithLogger(log),
			worker.WithPollInterval(cfg.Kafka.PollInterval),
			worker.WithBatchSize(cfg.Kafka.BatchSize),
		)
	}

	router := newRouter(a, verifier, log, reg)
	srv := httpserver.New(cfg.HTTPAddr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting "+programName, "addr", cfg.HTTPAddr, "store", cfg.Store.Backend, "oracle", cfg.Oracle.Backend)
		return httpserver.Run(gctx, srv, nil, cfg.ShutdownWait, log)
	})

	if relay != nil {
		g.Go(func() error {
			if err := relay.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("outbox relay: %w", err)
			}
			return nil
		})
	}

	if a.badger != nil {
		g.Go(func() error {
			a.badger.RunGC(gctx)
			return nil
		})
	}

	return g.Wait()
}

func newRouter(a *app, verifier authmw.SignerValidator, log *slog.Logger, reg *prometheus.Registry) http.Handler {
	r := chi.NewRouter()
	r.Use(request.Recovery(log))
	r.Use(request.RequestID)
	r.Use(request.Logger(log))
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)
	r.Use(httpmetrics.NewHTTP(reg).Middleware)

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		status := map[string]string{"status": "ok"}
		if a.db != nil {
			if err := a.db.PingContext(req.Context()); err != nil {
				httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "postgres unavailable"})
				return
			}
		}
		if a.redis != nil {
			if err := a.redis.Health(req.Context()); err != nil {
				httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "redis unavailable"})
				return
			}
		}
		httputil.WriteJSON(w, http.StatusOK, status)
	})
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	h := governance.NewHandler(a.service, log)
	h.RegisterPublic(r)
	r.Group(func(r chi.Router) {
		r.Use(authmw.RequireSigners(verifier, log))
		h.RegisterSigned(r)
	})
	return r
}
