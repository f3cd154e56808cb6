// Package server wires configuration, storage backends and transports into a
// running filevault process and handles graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/dmitrijs2005/filevault/internal/logging"
	"github.com/dmitrijs2005/filevault/internal/server/config"
	"github.com/dmitrijs2005/filevault/internal/server/httpapi"
	"github.com/dmitrijs2005/filevault/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/filevault/internal/server/revocation"
	"github.com/dmitrijs2005/filevault/internal/server/services"
	"github.com/dmitrijs2005/filevault/internal/server/storage"

	gs "github.com/dmitrijs2005/filevault/internal/server/grpc"
)

const startupTimeout = 30 * time.Second

var (
	openDB = func(ctx context.Context, dsn string) (*sql.DB, error) {
		db, err := sql.Open("pgx", dsn)
		if err != nil {
			return nil, err
		}
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(30 * time.Minute)
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, err
		}
		return db, nil
	}
	newObjectStore = func(ctx context.Context, c *config.Config) (storage.ObjectStore, func(context.Context) error, error) {
		g, err := storage.NewS3Gateway(ctx, c)
		if err != nil {
			return nil, nil, err
		}
		return g, g.EnsureBucket, nil
	}
	newRevocationStore = func(ctx context.Context, c *config.Config) (revocation.Store, io.Closer, error) {
		if c.RedisAddr == "" {
			return revocation.NopStore{}, nil, nil
		}
		rdb, err := revocation.NewRedisClient(ctx, c.RedisAddr, c.RedisPassword, c.RedisDB)
		if err != nil {
			return nil, nil, err
		}
		return revocation.NewRedisStore(rdb), rdb, nil
	}
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	closers []io.Closer
	http    *httpapi.Server
	health  *gs.HealthServer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)
	return newApp(ctx, c, logger)
}

func newApp(ctx context.Context, c *config.Config, logger logging.Logger) (_ *App, err error) {
	ctx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()

	if c.SecretKey == config.DefaultSecretKey {
		logger.Warn(ctx, "using the default JWT secret; set JWT_SECRET in production")
	}
	if c.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := openDB(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	app := &App{config: c, logger: logger, db: db}
	defer func() {
		if err != nil {
			app.close()
		}
	}()

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	store, ensureBucket, err := newObjectStore(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("object store init error: %w", err)
	}
	if err := ensureBucket(ctx); err != nil {
		logger.Warn(ctx, "bucket check failed", "bucket", c.S3Bucket, "error", err)
	}

	revocations, closer, err := newRevocationStore(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("redis init error: %w", err)
	}
	if closer != nil {
		app.closers = append(app.closers, closer)
	} else {
		logger.Info(ctx, "token revocation disabled; sign-out only discards the client token")
	}

	authSvc := services.NewAuthService(db, rm, revocations, c, logger)
	filesSvc := services.NewFilesService(db, rm, store, logger)

	app.http = httpapi.NewServer(c.HTTPAddr, c.CORSOrigins, authSvc, filesSvc, logger)
	if c.GRPCHealthAddr != "" {
		app.health = gs.NewHealthServer(c.GRPCHealthAddr, logger, map[string]gs.Check{
			"postgres": db.PingContext,
		})
	}

	return app, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// serve runs one transport; a failure stops the whole app.
func (app *App) serve(ctx context.Context, cancelFunc context.CancelFunc, name string, run func(context.Context) error) {
	if err := run(ctx); err != nil {
		app.logger.Error(ctx, "server failed", "server", name, "error", err)
		cancelFunc()
	}
}

// Run blocks until a signal arrives, ctx is cancelled or a server fails.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.serve(ctx, cancelFunc, "http", app.http.Run)
	}()

	if app.health != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.serve(ctx, cancelFunc, "grpc_health", app.health.Run)
		}()
	}

	wg.Wait()

	app.close()
	app.logger.Info(context.Background(), "App stopped")
}

func (app *App) close() {
	for _, c := range app.closers {
		if err := c.Close(); err != nil {
			app.logger.Warn(context.Background(), "close error", "error", err)
		}
	}
	app.closers = nil
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Warn(context.Background(), "db close error", "error", err)
		}
		app.db = nil
	}
}
