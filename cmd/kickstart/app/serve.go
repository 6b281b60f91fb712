package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/kickstart"
	"github.com/dmitrymomot/kickstart/internal/config"
	"github.com/dmitrymomot/kickstart/internal/events"
	"github.com/dmitrymomot/kickstart/internal/hello"
	"github.com/dmitrymomot/kickstart/internal/jobs"
	"github.com/dmitrymomot/kickstart/internal/sample"
	"github.com/dmitrymomot/kickstart/middlewares"
	"github.com/dmitrymomot/kickstart/pkg/db"
	"github.com/dmitrymomot/kickstart/pkg/lifecycle"
	"github.com/dmitrymomot/kickstart/pkg/poller"
	"github.com/dmitrymomot/kickstart/pkg/redis"
	"github.com/dmitrymomot/kickstart/pkg/scheduler"
	"github.com/dmitrymomot/kickstart/pkg/telemetry"
)

func newServeCmd() *cobra.Command {
	var runMigrations bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the API server, the event poller and the scheduler",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), runMigrations)
		},
	}
	cmd.Flags().BoolVar(&runMigrations, "migrate", false, "Apply database migrations before serving")
	return cmd
}

func runServe(ctx context.Context, runMigrations bool) (err error) {
	cfg, log, flush, err := bootstrap()
	if err != nil {
		return err
	}

	tel, err := telemetry.New(ctx, cfg.Metrics,
		telemetry.WithServiceName(cfg.ServiceName),
		telemetry.WithServiceVersion(Version),
		telemetry.WithLogger(log),
	)
	if err != nil {
		return err
	}
	mp := tel.MeterProvider()

	var release cleanup
	release.add("telemetry", tel.Shutdown)
	// Release what was opened so far when wiring or the startup hook fails.
	// Once the coordinator has started it owns these resources; closing them
	// twice is safe.
	defer func() {
		if err != nil {
			release.run(context.WithoutCancel(ctx), log)
		}
	}()

	pool, err := db.Connect(ctx, cfg.DB)
	if err != nil {
		return err
	}
	release.add("postgres", db.Shutdown(pool))

	if runMigrations {
		if err := migrate(ctx, cfg, pool, log); err != nil {
			return err
		}
	}

	svc := sample.NewService(sample.NewPostgresRepository(pool), sample.WithLogger(log))

	store := scheduler.NewPostgresStore(pool, cfg.JobStoreSchema)
	if err := store.EnsureSchema(ctx); err != nil {
		return err
	}
	sched, err := scheduler.New(
		scheduler.WithLogger(log),
		scheduler.WithStore(store),
		scheduler.WithLocation(cfg.Scheduler.Location()),
		scheduler.WithMeterProvider(mp),
		scheduler.WithDefaults(cfg.Scheduler.Coalesce, cfg.Scheduler.MisfireGrace()),
	)
	if err != nil {
		return err
	}
	if err := jobs.Register(sched, jobs.NewSampleJob(svc, cfg.Scheduler.SampleJobFrequency, log)); err != nil {
		return err
	}

	health := []kickstart.HealthOption{
		kickstart.WithServiceName(cfg.ServiceName),
		kickstart.WithReadinessCheck("db", db.Healthcheck(pool)),
	}
	coordOpts := []lifecycle.Option{
		lifecycle.WithScheduler(sched),
		lifecycle.WithLogger(log),
		lifecycle.WithSchedulerStopTimeout(cfg.ShutdownTimeout),
	}

	var source poller.Fetcher = events.NopSource{}
	if cfg.RedisURL != "" {
		client, err := redis.Open(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		release.add("redis", redis.Shutdown(client))
		source = events.NewRedisSource(client, cfg.Events.Queue, cfg.Events.BatchSize)
		health = append(health, kickstart.WithReadinessCheck("redis", redis.Healthcheck(client)))
		coordOpts = append(coordOpts, lifecycle.WithResource("redis", redis.Shutdown(client)))
	} else {
		log.WarnContext(ctx, "REDIS_URL is not set, sample event poller will idle")
	}

	p, err := poller.New(source, events.NewSampleProcessor(svc, events.WithLogger(log)),
		poller.WithName("sample_events"),
		poller.WithBackoff(cfg.Events.BackoffInitial(), cfg.Events.BackoffMax()),
		poller.WithLogger(log),
		poller.WithMeterProvider(mp),
	)
	if err != nil {
		return err
	}

	coordinator := lifecycle.New(append(coordOpts,
		lifecycle.WithPoller(p),
		lifecycle.WithResource("postgres", db.Shutdown(pool)),
		lifecycle.WithResource("telemetry", tel.Shutdown),
	)...)
	health = append(health, kickstart.WithReadinessCheck("poller", coordinator.Healthcheck()))

	app, err := newApp(cfg, log, tel, svc, health)
	if err != nil {
		return err
	}

	log.InfoContext(ctx, "starting kickstart",
		slog.String("addr", cfg.Addr()),
		slog.String("version", Version),
	)
	return app.Run(cfg.Addr(),
		kickstart.WithContext(ctx),
		kickstart.Logger(log),
		kickstart.ShutdownTimeout(cfg.ShutdownTimeout),
		kickstart.StartupHook(coordinator.Start),
		kickstart.ShutdownHook(coordinator.Stop),
		kickstart.ShutdownHook(flush),
	)
}

func newApp(cfg *config.Config, log *slog.Logger, tel *telemetry.Provider, svc *sample.Service, health []kickstart.HealthOption) (*kickstart.App, error) {
	httpMetrics, err := telemetry.NewHTTPMetrics(tel.MeterProvider())
	if err != nil {
		return nil, fmt.Errorf("http metrics: %w", err)
	}

	opts := []kickstart.Option{
		kickstart.WithLogger(log),
		kickstart.WithHTTPMiddleware(
			httpMetrics.Middleware,
			middlewares.Timeout(cfg.RequestTimeout),
		),
		kickstart.WithMiddleware(
			middlewares.RequestID(),
			middlewares.RequestLogger(),
			middlewares.CORS(
				middlewares.WithAllowOrigins(cfg.CORSOrigins...),
				middlewares.WithAllowCredentials(),
			),
			middlewares.Recover(),
		),
		kickstart.WithErrorHandler(middlewares.JSONErrorHandler(middlewares.WithErrorDetail(cfg.IsLocal()))),
		kickstart.WithNotFoundHandler(middlewares.NotFound),
		kickstart.WithMethodNotAllowedHandler(middlewares.MethodNotAllowed),
		kickstart.WithHealthChecks(health...),
		kickstart.WithHandlers(hello.NewHandler(), sample.NewHandler(svc)),
	}
	if cfg.Metrics.Enabled {
		opts = append(opts, kickstart.WithMount(cfg.Metrics.Path, tel.Handler()))
	}
	return kickstart.New(opts...), nil
}
