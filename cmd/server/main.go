package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"geovault/internal/analysis"
	"geovault/internal/governance"
	governancehandler "geovault/internal/governance/handler"
	httpapi "geovault/internal/http"
	"geovault/internal/platform/config"
	"geovault/internal/platform/httpserver"
	"geovault/internal/platform/logger"
	"geovault/internal/platform/metrics"
	"geovault/internal/platform/postgres"
	redisplatform "geovault/internal/platform/redis"
	"geovault/internal/vault"
	vaulthandler "geovault/internal/vault/handler"
	audit "geovault/pkg/platform/audit"
	auditmem "geovault/pkg/platform/audit/store/memory"
	auditpg "geovault/pkg/platform/audit/store/postgres"
	auditworker "geovault/pkg/platform/audit/worker"
)

// main wires dependencies and keeps the server lifecycle small. Business
// logic lives in the internal service packages. Postgres, Redis, and Kafka
// are all optional: with nothing configured the service runs fully in
// memory, which is how the demo uses it.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	var (
		vaultStore      vault.Store
		governanceStore governance.Store
		auditStore      audit.Store
		outbox          *auditpg.Store
	)
	checks := make(map[string]func(ctx context.Context) error)
	if cfg.Postgres.DSN != "" {
		db, err := postgres.Open(cfg.Postgres.DSN)
		if err != nil {
			log.Error("postgres open failed", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		vaultStore = vault.NewPostgresStore(db)
		governanceStore = governance.NewPostgresStore(db)
		outbox = auditpg.New(db)
		auditStore = outbox
		checks["postgres"] = db.PingContext
	} else {
		log.Info("no postgres DSN configured, using in-memory stores")
		vaultStore = vault.NewInMemoryStore()
		governanceStore = governance.NewInMemoryStore()
		auditStore = auditmem.New()
	}

	auditPub := audit.NewPublisher(auditStore, audit.WithLogger(log))

	vaultOpts := []vault.ServiceOption{vault.WithMetrics(m)}
	redisClient, err := redisplatform.New(cfg.Redis)
	if err != nil {
		log.Error("redis connect failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		vaultOpts = append(vaultOpts, vault.WithCache(
			vault.NewMetadataCache(redisClient, cfg.Redis.DescribeTTL, m)))
		checks["redis"] = redisClient.Health
	}

	vaultSvc := vault.NewService(vaultStore, auditPub, log, vaultOpts...)
	governanceSvc := governance.NewService(
		governanceStore,
		vaultSvc,
		analysis.NewCatalog(analysis.Config{MinAggregateCount: cfg.Governance.MinAggregateCount}),
		governance.Policy{
			MaxGridSize:       cfg.Governance.MaxGridSize,
			MinAggregateCount: cfg.Governance.MinAggregateCount,
		},
		auditPub,
		log,
		governance.WithMetrics(m),
	)

	router := httpapi.NewRouter(httpapi.Deps{
		Containers:     vaulthandler.New(vaultSvc, log),
		Requests:       governancehandler.New(governanceSvc, log, cfg.Governance.SubmitRatePerMinute),
		Metrics:        m,
		Logger:         log,
		Checks:         checks,
		RequestTimeout: cfg.Server.RequestTimeout,
	})
	srv := httpserver.New(cfg.Server.Addr, router)

	group, groupCtx := errgroup.WithContext(ctx)

	if len(cfg.Kafka.Brokers) > 0 && outbox != nil {
		kafkaClient, err := auditworker.NewKafkaClient(ctx, cfg.Kafka.Brokers, cfg.Kafka.AuditTopic)
		if err != nil {
			log.Error("kafka connect failed", "error", err)
			os.Exit(1)
		}
		defer kafkaClient.Close()
		worker := auditworker.New(outbox, kafkaClient, cfg.Kafka.AuditTopic, log)
		group.Go(func() error {
			err := worker.Run(groupCtx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}

	group.Go(func() error {
		log.Info("starting geovault", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
	log.Info("shutdown complete")
}
