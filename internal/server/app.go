// Package server wires the storage backend, services and transports together
// and runs them until the process is told to stop.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/focustodo/internal/logging"
	"github.com/dmitrijs2005/focustodo/internal/server/config"
	"github.com/dmitrijs2005/focustodo/internal/server/httpapi"
	"github.com/dmitrijs2005/focustodo/internal/server/mailer"
	"github.com/dmitrijs2005/focustodo/internal/server/metrics"
	"github.com/dmitrijs2005/focustodo/internal/server/objectstore"
	"github.com/dmitrijs2005/focustodo/internal/server/ratelimit"
	"github.com/dmitrijs2005/focustodo/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/focustodo/internal/server/services"

	gs "github.com/dmitrijs2005/focustodo/internal/server/grpc"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	handler http.Handler
}

// NewApp opens storage (running migrations for Postgres) and builds the
// HTTP handler over all services.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	var (
		db    *sql.DB
		repos repomanager.RepositoryManager
	)
	switch c.Storage {
	case config.StorageMemory:
		repos = repomanager.NewMemoryRepositoryManager()
	case config.StoragePostgres:
		var err error
		db, err = sql.Open("pgx", c.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("db open error: %w", err)
		}
		pg := repomanager.NewPostgresRepositoryManager()
		if err := pg.RunMigrations(ctx, db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migration error: %w", err)
		}
		repos = pg
	default:
		return nil, fmt.Errorf("unknown storage %q", c.Storage)
	}

	m := metrics.New()
	deps := services.Deps{
		DB:      db,
		Repos:   repos,
		Limiter: ratelimit.New(ratelimit.DefaultPolicies()),
		Metrics: m,
		Logger:  logger,
	}

	var sender mailer.Sender
	if c.MailProvider == config.MailProviderResend {
		sender = mailer.NewResendSender(c.ResendAPIKey, c.ResendBaseURL, &http.Client{Timeout: 10 * time.Second})
	} else {
		sender = mailer.NewLogSender(logger)
	}

	notifications := services.NewNotificationService(deps, sender, mailer.FormatFrom(c.FromName, c.FromEmail), c.SiteURL)
	svc := httpapi.Services{
		Accounts:      services.NewAccountService(deps, c, notifications),
		Todos:         services.NewTodoService(deps),
		Dashboard:     services.NewDashboardService(deps),
		Agent:         services.NewAgentService(deps, nil),
		Preferences:   services.NewPreferencesService(deps),
		Notifications: notifications,
		Export:        services.NewExportService(deps, objectstore.NewS3Store(c)),
	}

	app := &App{config: c, logger: logger, db: db}
	app.handler = httpapi.NewRouter(svc, m, logger, app.ping)
	return app, nil
}

// ping reports database reachability; the memory backend is always ready.
func (app *App) ping(ctx context.Context) error {
	if app.db == nil {
		return nil
	}
	return app.db.PingContext(ctx)
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	srv := &http.Server{
		Addr:              app.config.HTTPAddr,
		Handler:           app.handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(shutdownCtx, "http shutdown error", "error", err)
		}
	}()

	app.logger.Info(ctx, "HTTP server started", "address", app.config.HTTPAddr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, "http server error", "error", err)
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.GRPCAddr, app.logger, app.ping)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, "grpc server error", "error", err)
		cancelFunc()
	}
}

// Run serves HTTP and gRPC until ctx is cancelled or a termination signal
// arrives, then closes the database.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "storage", app.config.Storage)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error(ctx, "db close error", "error", err)
		}
	}
	app.logger.Info(ctx, "App stopped")
}
