package components

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"rescueDispatch/internal/api"
	"rescueDispatch/internal/api/handlers/http/admin"
	"rescueDispatch/internal/api/handlers/http/dispatch"
	"rescueDispatch/internal/api/handlers/http/public"
	"rescueDispatch/internal/api/handlers/http/system"
	"rescueDispatch/internal/auth"
	"rescueDispatch/internal/config"
	"rescueDispatch/internal/domain"
	"rescueDispatch/internal/geo"
	"rescueDispatch/internal/media"
	"rescueDispatch/internal/metrics"
	"rescueDispatch/internal/notify"
	"rescueDispatch/internal/redis"
	"rescueDispatch/internal/service"
	"rescueDispatch/internal/storage/memory"
	"rescueDispatch/internal/storage/postgres"
	"rescueDispatch/internal/triage"
	"rescueDispatch/internal/workers"
	"rescueDispatch/pkg/logger"
)

type Components struct {
	logger        *slog.Logger
	HttpServer    *api.Server
	Service       *service.Service
	Tokens        *auth.TokenService
	Relay         *workers.NotificationRelay
	DispatchRetry *workers.DispatchRetry
	Postgres      *postgres.Postgres
	Redis         *redis.Redis
	NATS          *nats.Conn
}

type stores struct {
	incidents  service.IncidentRepository
	drivers    service.DriverDirectory
	facilities service.FacilityDirectory
	allDrivers func(ctx context.Context) ([]domain.Driver, error)
}

func InitComponents(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Components, error) {
	c := &Components{logger: logger}

	st, err := c.initStorage(ctx, cfg)
	if err != nil {
		c.ShutdownAll()
		return nil, err
	}

	var (
		queue   service.NotificationQueue
		source  workers.NotificationSource
		locator service.DriverLocator
	)
	if cfg.Redis.Enabled {
		logger.Info("Initializing Redis")
		rdb, err := redis.NewRedis(ctx, cfg.Redis, logger)
		if err != nil {
			c.ShutdownAll()
			return nil, fmt.Errorf("failed to init redis: %w", err)
		}
		c.Redis = rdb
		q := redis.NewNotificationQueue(rdb.Client, cfg.Redis.QueueKey)
		queue, source = q, q
		locator = redis.NewDriverLocations(rdb.Client, cfg.Redis.GeoKey)
	} else {
		q := memory.NewNotificationQueue(cfg.Notify.QueueSize)
		queue, source = q, q
		locator = geo.NewMemoryIndex()
	}

	if err := seedLocator(ctx, st.allDrivers, locator); err != nil {
		c.ShutdownAll()
		return nil, fmt.Errorf("failed to seed driver locations: %w", err)
	}

	classifier := triage.New()
	if cfg.Triage.RulesPath != "" {
		if classifier, err = triage.Load(cfg.Triage.RulesPath); err != nil {
			c.ShutdownAll()
			return nil, fmt.Errorf("failed to load triage rules: %w", err)
		}
		logger.Info("Loaded triage rules", slog.String("path", cfg.Triage.RulesPath))
	}

	resolver, err := initMedia(ctx, cfg.Media)
	if err != nil {
		c.ShutdownAll()
		return nil, err
	}

	sinks, err := c.initSinks(cfg.Notify)
	if err != nil {
		c.ShutdownAll()
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	fallback := geo.Point{Lat: cfg.Dispatch.FallbackLat, Lng: cfg.Dispatch.FallbackLng}
	notifier := service.NewNotifier(queue, m, logger, cfg.Notify.EnqueueTimeout)
	lifecycle := service.NewLifecycle(st.incidents, classifier, notifier, m, logger, fallback)
	dispatcher := service.NewDispatcher(lifecycle, st.incidents, st.drivers, locator, st.facilities, m, logger, service.DispatchConfig{
		DriverRadiusKM:   cfg.Dispatch.DriverRadiusKM,
		FacilityRadiusKM: cfg.Dispatch.FacilityRadiusKM,
		IncidentRadiusKM: cfg.Dispatch.IncidentRadiusKM,
		CandidateLimit:   cfg.Dispatch.CandidateLimit,
		ListLimit:        cfg.Dispatch.ListLimit,
	})
	stats := service.NewStatsService(st.incidents, logger)
	c.Service = service.NewService(lifecycle, dispatcher, stats)

	c.Tokens = auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)
	c.Relay = workers.NewNotificationRelay(logger, source, sinks, m, cfg.Notify.MaxRetries)
	if cfg.Dispatch.RetryInterval > 0 {
		c.DispatchRetry = workers.NewDispatchRetry(logger, st.incidents, dispatcher, cfg.Dispatch.RetryInterval, cfg.Dispatch.RetryBatch, cfg.Dispatch.RetryWorkers)
	}

	var checks []system.Check
	if c.Postgres != nil {
		checks = append(checks, system.Check{Name: "postgres", Pinger: c.Postgres})
	}
	if c.Redis != nil {
		checks = append(checks, system.Check{Name: "redis", Pinger: c.Redis})
	}

	c.HttpServer = api.NewServer(ctx, cfg, logger, api.Handlers{
		Public:   public.NewHandler(logger, lifecycle, resolver),
		Dispatch: dispatch.NewHandler(logger, lifecycle, dispatcher, stats, resolver),
		Admin:    admin.NewHandler(logger, lifecycle, resolver),
		System:   system.NewHandler(logger, checks...),
		Metrics:  metrics.Handler(reg),
		Tokens:   c.Tokens,
	})
	logger.Info("Initialized server")

	return c, nil
}

func (c *Components) initStorage(ctx context.Context, cfg *config.Config) (stores, error) {
	if cfg.Storage.Driver == config.StoragePostgres {
		c.logger.Info("Initializing Postgres")
		pg, err := postgres.NewPostgres(ctx, cfg.Postgres, c.logger)
		if err != nil {
			c.logger.Error("Failed to init postgres", slog.Any("error", err))
			return stores{}, fmt.Errorf("failed to init postgres: %w", err)
		}
		c.Postgres = pg
		return stores{
			incidents:  pg.Incidents,
			drivers:    pg.Drivers,
			facilities: pg.Facilities,
			allDrivers: pg.Drivers.List,
		}, nil
	}

	seed, err := memory.LoadSeed(cfg.Storage.SeedPath)
	if err != nil {
		return stores{}, fmt.Errorf("failed to load directory seed: %w", err)
	}
	c.logger.Info("Using in-memory storage",
		slog.Int("drivers", len(seed.Drivers)),
		slog.Int("facilities", len(seed.Facilities)))

	drivers := memory.NewDriverDirectory(seed.Drivers)
	return stores{
		incidents:  memory.NewIncidentStore(),
		drivers:    drivers,
		facilities: memory.NewFacilityDirectory(seed.Facilities),
		allDrivers: drivers.List,
	}, nil
}

// seedLocator publishes the last known position of every directory driver.
func seedLocator(ctx context.Context, list func(context.Context) ([]domain.Driver, error), locator service.DriverLocator) error {
	drivers, err := list(ctx)
	if err != nil {
		return err
	}
	for _, d := range drivers {
		if !d.Coordinates.Valid() || d.Coordinates.IsZero() {
			continue
		}
		if err := locator.Upsert(ctx, d.ID, d.Coordinates); err != nil {
			return err
		}
	}
	return nil
}

func initMedia(ctx context.Context, cfg config.MediaConfig) (media.Resolver, error) {
	if cfg.Backend == config.MediaS3 {
		s3, err := media.NewS3(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to init s3 media: %w", err)
		}
		return s3, nil
	}
	return media.NewStatic(cfg.BaseURL), nil
}

func (c *Components) initSinks(cfg config.NotifyConfig) ([]notify.Sink, error) {
	var sinks []notify.Sink

	if !cfg.WebhookDisabled && cfg.WebhookURL != "" {
		sinks = append(sinks, notify.NewWebhook(cfg.WebhookURL, 5*time.Second))
	}
	if cfg.NATSURL != "" {
		conn, err := notify.ConnectNATS(cfg.NATSURL)
		if err != nil {
			return nil, err
		}
		c.NATS = conn
		sinks = append(sinks, notify.NewNATS(conn, cfg.NATSSubject))
	}
	if cfg.SlackWebhookURL != "" {
		sinks = append(sinks, notify.NewSlack(cfg.SlackWebhookURL, 5*time.Second))
	}

	names := make([]string, 0, len(sinks))
	for _, s := range sinks {
		names = append(names, s.Name())
	}
	c.logger.Info("Notification sinks configured", slog.Any("sinks", names))
	return sinks, nil
}

func SetupLogger(env string) *slog.Logger {
	switch env {
	case "local":
		return logger.SetupPrettySlog()
	case "dev":
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			}),
		)
	default:
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}),
		)
	}
}

func (c *Components) ShutdownAll() {
	start := time.Now()
	c.logger.Info("Shutting down components")

	if c.NATS != nil {
		if err := c.NATS.Drain(); err != nil {
			c.logger.Error("NATS drain failed", slog.String("err", err.Error()))
		}
	}
	if c.Postgres != nil {
		c.Postgres.Close()
	}
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			c.logger.Error("Redis close failed", slog.String("err", err.Error()))
		}
	}

	c.logger.Info("All components stopped",
		slog.Duration("latency", time.Since(start)))
}
