// Package server wires the DraftKeeper server together: storage, the
// optional idempotency store and revision archive, the gRPC API and the
// health endpoints. It owns graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/draftkeeper/internal/logging"
	"github.com/dmitrijs2005/draftkeeper/internal/server/archive"
	"github.com/dmitrijs2005/draftkeeper/internal/server/config"
	"github.com/dmitrijs2005/draftkeeper/internal/server/health"
	"github.com/dmitrijs2005/draftkeeper/internal/server/idempotency"
	"github.com/dmitrijs2005/draftkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/draftkeeper/internal/server/services"

	gs "github.com/dmitrijs2005/draftkeeper/internal/server/grpc"
)

type runner interface {
	Run(ctx context.Context) error
}

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	idem   *idempotency.RedisStore

	grpcServer runner
	httpServer runner
}

func NewApp(ctx context.Context, cfg *config.Config, logger logging.Logger) (*App, error) {
	db, err := repomanager.OpenDB(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	m := repomanager.NewPostgresRepositoryManager()
	if err := m.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	app := &App{config: cfg, logger: logger, db: db}
	checks := map[string]health.Check{"database": db.PingContext}

	var opts []services.DocumentOption
	if cfg.RedisURL != "" {
		store, err := idempotency.NewRedisStore(ctx, cfg.RedisURL)
		if err != nil {
			app.close(ctx)
			return nil, fmt.Errorf("redis init error: %w", err)
		}
		app.idem = store
		opts = append(opts, services.WithIdempotency(store, cfg.IdempotencyTTL))
		checks["redis"] = store.Ping
	} else {
		logger.Warn(ctx, "no redis configured, create retries are not deduplicated")
	}

	if cfg.S3Bucket != "" {
		a, err := archive.NewS3Archive(ctx, archive.Options{
			Bucket:       cfg.S3Bucket,
			Region:       cfg.S3Region,
			BaseEndpoint: cfg.S3BaseEndpoint,
			AccessKey:    cfg.S3AccessKey,
			SecretKey:    cfg.S3SecretKey,
		})
		if err != nil {
			app.close(ctx)
			return nil, fmt.Errorf("s3 init error: %w", err)
		}
		opts = append(opts, services.WithArchive(a))
	}

	us := services.NewUserService(db, m, cfg, logger)
	ds := services.NewDocumentService(db, m, logger, opts...)

	app.grpcServer = gs.NewGRPCServer(cfg.GRPCAddr, logger, us, ds, cfg.SecretKey)
	if cfg.HTTPAddr != "" {
		app.httpServer = health.NewServer(cfg.HTTPAddr, health.NewRouter(logger, checks), logger)
	}

	return app, nil
}

// Migrate applies pending schema migrations and exits.
func Migrate(ctx context.Context, cfg *config.Config, logger logging.Logger) error {
	db, err := repomanager.OpenDB(ctx, cfg.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("db init error: %w", err)
	}
	defer db.Close()

	if err := repomanager.NewPostgresRepositoryManager().RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	logger.Info(ctx, "migrations applied")
	return nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves until a signal arrives, ctx is cancelled or one of the
// servers fails. The first server error is returned.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")
	app.initSignalHandler(cancelFunc)

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)
	start := func(name string, r runner) {
		if r == nil {
			return
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := r.Run(ctx); err != nil {
				app.logger.Error(ctx, "server stopped", "server", name, "error", err)
				errOnce.Do(func() { firstErr = fmt.Errorf("%s: %w", name, err) })
				cancelFunc()
			}
		}()
	}

	start("grpc", app.grpcServer)
	start("http", app.httpServer)
	wg.Wait()

	app.close(context.Background())
	app.logger.Info(context.Background(), "App stopped")
	return firstErr
}

func (app *App) close(ctx context.Context) {
	var errs []error
	if app.idem != nil {
		errs = append(errs, app.idem.Close())
	}
	if app.db != nil {
		errs = append(errs, app.db.Close())
	}
	if err := errors.Join(errs...); err != nil {
		app.logger.Warn(ctx, "close error", "error", err)
	}
}
