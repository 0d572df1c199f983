// Package server wires configuration, storage, services and transports
// together and runs the HTTP server, the gRPC server and the expiry sweeper
// until the process is asked to stop.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/gophcourse/internal/catalog"
	"github.com/dmitrijs2005/gophcourse/internal/cryptox"
	"github.com/dmitrijs2005/gophcourse/internal/logging"
	"github.com/dmitrijs2005/gophcourse/internal/server/config"
	gs "github.com/dmitrijs2005/gophcourse/internal/server/grpc"
	"github.com/dmitrijs2005/gophcourse/internal/server/httpapi"
	"github.com/dmitrijs2005/gophcourse/internal/server/metrics"
	"github.com/dmitrijs2005/gophcourse/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/gophcourse/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophcourse/internal/server/services"
	"github.com/dmitrijs2005/gophcourse/internal/server/storage"
	"github.com/dmitrijs2005/gophcourse/internal/server/vault"
)

const shutdownTimeout = 10 * time.Second

var (
	openDB               = repomanager.OpenDB
	newRepositoryManager = repomanager.NewPostgresRepositoryManager
	newAssetSigner       = func(ctx context.Context, o storage.S3Options) (services.AssetSigner, error) {
		return storage.NewS3Presigner(ctx, o)
	}
	// dbBackOff paces database pings at startup.
	dbBackOff = func() backoff.BackOff {
		b := backoff.NewExponentialBackOff()
		b.InitialInterval = 500 * time.Millisecond
		b.MaxInterval = 5 * time.Second
		b.MaxElapsedTime = time.Minute
		return b
	}
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	metrics *metrics.Metrics

	vault         *vault.Vault
	refreshTokens refreshtokens.Repository

	httpServer *http.Server
	grpcServer *gs.GRPCServer

	now func() time.Time
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(c.LogFormat, c.LogLevel, os.Stdout)

	db, err := openDB(c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	app, err := newApp(ctx, c, logger, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return app, nil
}

func newApp(ctx context.Context, c *config.Config, logger logging.Logger, db *sql.DB) (*App, error) {
	if err := waitForDB(ctx, db, logger); err != nil {
		return nil, fmt.Errorf("db unreachable: %w", err)
	}

	repos := newRepositoryManager()
	if err := repos.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migrations: %w", err)
	}

	cat, err := loadCatalog(c.CatalogFile)
	if err != nil {
		return nil, err
	}

	v, err := vault.New(repos.Secrets(db), cryptox.DeriveSealingKey(c.SecretKey), vault.WithRetention(c.SecretRetention))
	if err != nil {
		return nil, fmt.Errorf("vault init error: %w", err)
	}

	assets, err := newAssetSigner(ctx, storage.S3Options{
		Region:       c.S3Region,
		AccessKey:    c.S3RootUser,
		SecretKey:    c.S3RootPassword,
		Bucket:       c.S3Bucket,
		BaseEndpoint: c.S3BaseEndpoint,
		Expires:      c.S3PresignTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("asset storage init error: %w", err)
	}

	m := metrics.New()

	identity := services.NewIdentityService(db, repos, c)
	provisioning := services.NewProvisioningService(identity, v, repos.Accounts(db), c, logger, m)
	reveal := services.NewRevealService(v, c.RequestTimeout, logger, m)
	course := services.NewCourseService(db, repos, cat, assets, m)

	var limiter *httpapi.RateLimiter
	if c.RevealRateLimit > 0 {
		limiter = httpapi.NewRateLimiter(c.RevealRateLimit, time.Minute)
	}

	router := httpapi.NewRouter(httpapi.Deps{
		Provisioning:   provisioning,
		Reveal:         reveal,
		Identity:       identity,
		Course:         course,
		Logger:         logger.With("module", "http_server"),
		Metrics:        m,
		WebhookSecret:  c.WebhookSecret,
		RevealLimiter:  limiter,
		AllowedOrigins: c.AllowedOrigins,
	})

	return &App{
		config:        c,
		logger:        logger,
		db:            db,
		metrics:       m,
		vault:         v,
		refreshTokens: repos.RefreshTokens(db),
		httpServer: &http.Server{
			Addr:              c.EndpointAddrHTTP,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		grpcServer: gs.NewGRPCServer(c.EndpointAddrGRPC, logger, reveal),
		now:        time.Now,
	}, nil
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default()
	}
	cat, err := catalog.Load(path)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return cat, nil
}

// waitForDB pings the database until it answers or the backoff gives up.
func waitForDB(ctx context.Context, db *sql.DB, logger logging.Logger) error {
	op := func() error {
		return db.PingContext(ctx)
	}
	notify := func(err error, wait time.Duration) {
		logger.Warn(ctx, "database not ready", "error", err, "retry_in", wait)
	}
	return backoff.RetryNotify(op, backoff.WithContext(dbBackOff(), ctx), notify)
}

// Run serves until ctx is cancelled, a termination signal arrives or one of
// the servers fails. It closes the database before returning.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	app.logger.Info(ctx, "Starting app...")

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return app.grpcServer.Run(gctx)
	})

	g.Go(func() error {
		app.logger.Info(gctx, "Starting HTTP server", "address", app.httpServer.Addr)
		if err := app.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		app.logger.Info(gctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return app.httpServer.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		app.runSweeper(gctx)
		return nil
	})

	err := g.Wait()
	if cerr := app.db.Close(); cerr != nil {
		app.logger.Error(ctx, "db close error", "error", cerr)
	}
	app.logger.Info(ctx, "App stopped")
	return err
}

// runSweeper removes expired credentials and refresh tokens every
// SweepInterval until ctx is done.
func (app *App) runSweeper(ctx context.Context) {
	interval := app.config.SweepInterval
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			app.sweep(ctx)
		}
	}
}

func (app *App) sweep(ctx context.Context) {
	now := app.now()

	n, err := app.vault.Sweep(ctx, now)
	if err != nil {
		app.logger.Error(ctx, "secret sweep failed", "error", err)
	} else if n > 0 {
		app.metrics.SecretsSwept(n)
		app.logger.Info(ctx, "expired credentials removed", "count", n)
	}

	if _, err := app.refreshTokens.DeleteExpired(ctx, now); err != nil {
		app.logger.Error(ctx, "refresh token sweep failed", "error", err)
	}
}
