package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/asoflow/asoflow/internal/db"
	"github.com/asoflow/asoflow/internal/handler"
	"github.com/asoflow/asoflow/internal/notify"
	"github.com/asoflow/asoflow/internal/store"
	"github.com/asoflow/asoflow/pkg/billing"
	"github.com/asoflow/asoflow/pkg/config"
	"github.com/asoflow/asoflow/pkg/entitlement"
	"github.com/asoflow/asoflow/pkg/httpserver"
	"github.com/asoflow/asoflow/pkg/logger"
	"github.com/asoflow/asoflow/pkg/mailer"
	"github.com/asoflow/asoflow/pkg/objstore"
	"github.com/asoflow/asoflow/pkg/pg"
	"github.com/asoflow/asoflow/pkg/redis"
	"github.com/asoflow/asoflow/pkg/tenant"
)

type appConfig struct {
	Env            string        `env:"APP_ENV" envDefault:"development"`
	PlansFile      string        `env:"PLANS_FILE"`
	CacheTTL       time.Duration `env:"ENTITLEMENT_CACHE_TTL" envDefault:"10m"`
	ExpiryWindow   time.Duration `env:"CERT_EXPIRY_WINDOW" envDefault:"720h"`
	SweepInterval  time.Duration `env:"CERT_SWEEP_INTERVAL" envDefault:"1h"`
	StorageEnabled bool          `env:"S3_ENABLED" envDefault:"false"`
}

func main() {
	if err := run(); err != nil {
		slog.Error("asoflow exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load[appConfig]()
	if err != nil {
		return err
	}

	log := logger.New(
		logger.WithEnvironment(cfg.Env, "asoflow"),
		logger.WithContextExtractors(tenant.LoggerExtractor()),
	)
	logger.SetAsDefault(log)

	pgCfg, err := config.Load[pg.Config]()
	if err != nil {
		return err
	}
	pool, err := pg.Connect(ctx, pgCfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool, db.Migrations, db.MigrationsDir, log); err != nil {
		return err
	}

	redisCfg, err := config.Load[redis.Config]()
	if err != nil {
		return err
	}
	redisClient, err := redis.Connect(ctx, redisCfg)
	if err != nil {
		return err
	}
	defer func() { _ = redisClient.Close() }()

	st := store.New(pool, redisClient, log)

	if cfg.PlansFile != "" {
		if err := seedCatalog(ctx, st.Plans, cfg.PlansFile, log); err != nil {
			return err
		}
	}

	resolver := entitlement.NewResolver(st.Tenants, st.Plans,
		entitlement.WithCache(entitlement.NewMemoryCache(ctx)),
		entitlement.WithTTL(cfg.CacheTTL),
		entitlement.WithLogger(log),
	)

	sender, err := buildMailer(log)
	if err != nil {
		return err
	}

	paddleCfg, err := config.Load[billing.PaddleConfig]()
	if err != nil {
		return err
	}
	provider, err := billing.NewPaddleProvider(paddleCfg)
	if err != nil {
		return err
	}
	billingSvc := billing.NewService(st.Plans, st.Tenants, provider,
		billing.WithCacheInvalidator(resolver),
		billing.WithMailer(sender),
		billing.WithLogger(log),
	)

	handlerOpts := []handler.Option{
		handler.WithLogger(log),
		handler.WithHealthChecks(pg.Healthcheck(pool), redis.Healthcheck(redisClient)),
	}
	if cfg.StorageEnabled {
		s3Cfg, err := config.Load[objstore.Config]()
		if err != nil {
			return err
		}
		docs, err := objstore.NewS3Storage(ctx, s3Cfg)
		if err != nil {
			return err
		}
		handlerOpts = append(handlerOpts, handler.WithDocumentStorage(docs))
	}

	api := handler.New(resolver, st.Usage, billingSvc, st.Tenants,
		st.Employees, st.RHUsers, st.Certificates, handlerOpts...)

	notifier := notify.New(st.Certificates, sender,
		notify.WithExpiryWindow(cfg.ExpiryWindow),
		notify.WithSweepInterval(cfg.SweepInterval),
		notify.WithLogger(log),
	)

	srvCfg, err := config.Load[httpserver.Config]()
	if err != nil {
		return err
	}
	srv := httpserver.New(srvCfg, httpserver.WithLogger(log))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(ctx, api.Router()) })
	g.Go(func() error {
		err := notifier.Run(ctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	return g.Wait()
}

func seedCatalog(ctx context.Context, plans *store.PlanStore, path string, log *slog.Logger) error {
	catalog, err := entitlement.LoadCatalogFile(path)
	if err != nil {
		return err
	}
	seeded := catalog.Plans()
	for _, plan := range seeded {
		if err := plans.Upsert(ctx, plan); err != nil {
			return err
		}
	}
	log.InfoContext(ctx, "plan catalog seeded", "path", path, "plans", len(seeded))
	return nil
}

// buildMailer prefers Postmark when a server token is configured and falls
// back to the log-only sender for development.
func buildMailer(log *slog.Logger) (mailer.Sender, error) {
	cfg, err := config.Load[mailer.Config]()
	if err != nil {
		return nil, err
	}
	if cfg.PostmarkServerToken == "" {
		log.Warn("no postmark token configured, using dev mailer")
		return mailer.NewDevSender(log), nil
	}
	return mailer.NewPostmarkSender(cfg)
}
