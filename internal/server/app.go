// Package server assembles the CodePulse API: it opens the database, applies
// migrations, seeds the admin identity and runs the HTTP API and the gRPC
// health endpoint until a shutdown signal arrives.
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

	"github.com/dmitrijs2005/codepulse/internal/logging"
	"github.com/dmitrijs2005/codepulse/internal/server/auth"
	"github.com/dmitrijs2005/codepulse/internal/server/config"
	"github.com/dmitrijs2005/codepulse/internal/server/metrics"
	"github.com/dmitrijs2005/codepulse/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/codepulse/internal/server/rest"
	"github.com/dmitrijs2005/codepulse/internal/server/services"
	"github.com/dmitrijs2005/codepulse/internal/server/storage"

	gs "github.com/dmitrijs2005/codepulse/internal/server/grpc"
)

// Runner is a long-lived component that stops when ctx is cancelled.
type Runner interface {
	Run(ctx context.Context) error
}

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	userService *services.UserService
	runners     []Runner
}

var openDB = func(dsn string) (*sql.DB, error) {
	return sql.Open("pgx", dsn)
}

// NewApp builds every component from cfg. A config the server cannot run
// with is rejected here, before anything listens.
func NewApp(cfg *config.Config, out io.Writer) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := logging.NewJSONLogger(out, cfg.LogLevel)

	issuer, err := auth.NewIssuer(cfg)
	if err != nil {
		return nil, err
	}
	validator, err := auth.NewValidator(cfg)
	if err != nil {
		return nil, err
	}

	db, err := openDB(cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	m := metrics.New()

	us := services.NewUserService(db, rm, cfg, issuer, logger)
	router := rest.NewRouter(rest.Deps{
		Users:           us,
		Categories:      services.NewCategoryService(db, rm, logger),
		BlogPosts:       services.NewBlogPostService(db, rm, logger),
		Images:          services.NewImageService(db, rm, storage.NewS3Store(cfg), cfg, logger),
		Guard:           validator,
		Metrics:         m,
		Logger:          logger,
		AllowAllOrigins: cfg.AllowAllOrigins,
		MaxUploadBytes:  cfg.MaxImageSize,
	})

	return &App{
		config:      cfg,
		logger:      logger,
		db:          db,
		repomanager: rm,
		userService: us,
		runners: []Runner{
			rest.NewHTTPServer(cfg.EndpointAddrHTTP, router, logger),
			gs.NewHealthServer(cfg.EndpointAddrGRPC, db, logger),
		},
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// prepare brings the schema up to date and seeds the admin identity.
func (app *App) prepare(ctx context.Context) error {
	if err := app.repomanager.RunMigrations(ctx, app.db); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	if err := app.userService.EnsureAdmin(ctx, app.config.AdminEmail, app.config.AdminPassword); err != nil {
		return fmt.Errorf("admin seed: %w", err)
	}
	return nil
}

// Run blocks until a signal arrives, ctx is cancelled or a component fails.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()
	defer app.db.Close()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	if err := app.prepare(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		return err
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)

	for _, r := range app.runners {
		wg.Add(1)
		go func(r Runner) {
			defer wg.Done()
			if err := r.Run(ctx); err != nil {
				app.logger.Error(ctx, err.Error())
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				cancelFunc()
			}
		}(r)
	}

	wg.Wait()
	app.logger.Info(ctx, "App stopped")

	return firstErr
}
