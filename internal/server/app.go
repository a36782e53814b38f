// Package server wires the upscaler server together: configuration, optional
// PostgreSQL persistence, the preview registry, sessions, the processor, and
// the HTTP and gRPC endpoints. It also handles graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/upscaler/internal/logging"
	"github.com/dmitrijs2005/upscaler/internal/server/assets"
	"github.com/dmitrijs2005/upscaler/internal/server/config"
	"github.com/dmitrijs2005/upscaler/internal/server/intake"
	"github.com/dmitrijs2005/upscaler/internal/server/preview"
	"github.com/dmitrijs2005/upscaler/internal/server/processing"
	"github.com/dmitrijs2005/upscaler/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/upscaler/internal/server/rest"
	"github.com/dmitrijs2005/upscaler/internal/server/services"
	"github.com/gin-gonic/gin"

	gs "github.com/dmitrijs2005/upscaler/internal/server/grpc"
)

const (
	previewBasePath = "/previews"
	sweepInterval   = time.Minute
)

type App struct {
	config    *config.Config
	logger    logging.Logger
	db        *sql.DB
	previews  rest.PreviewSource
	sessions  *services.SessionService
	processor *processing.Processor
	validator *intake.Validator
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(c.LogBackend, os.Stdout)

	var (
		db *sql.DB
		rm repomanager.RepositoryManager
	)
	if c.DatabaseDSN != "" {
		var err error
		db, err = repomanager.OpenPostgres(ctx, c.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}
		rm = repomanager.NewPostgresRepositoryManager()
		if err := rm.RunMigrations(ctx, db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migrations error: %w", err)
		}
	} else {
		logger.Warn(ctx, "no database configured, processed metadata will not be persisted")
	}

	registry, previews, err := newPreviewRegistry(ctx, c)
	if err != nil {
		if db != nil {
			_ = db.Close()
		}
		return nil, err
	}

	sessions := services.NewSessionService(db, rm, registry, c, logger)
	processor := processing.NewProcessor(processing.PassthroughUpscaler{Delay: c.ProcessingDelay}, sessions, logger)
	sessions.SetCanceller(processor)

	return &App{
		config:    c,
		logger:    logger,
		db:        db,
		previews:  previews,
		sessions:  sessions,
		processor: processor,
		validator: intake.NewValidator(c.MaxUploadSize, logger),
	}, nil
}

// newPreviewRegistry picks the registry backend. Only the memory backend
// needs the HTTP server to serve preview bytes.
func newPreviewRegistry(ctx context.Context, c *config.Config) (assets.PreviewRegistry, rest.PreviewSource, error) {
	switch c.PreviewBackend {
	case config.PreviewBackendMemory, "":
		m := preview.NewMemory(previewBasePath)
		return m, m, nil
	case config.PreviewBackendS3:
		r, err := preview.NewS3(ctx, preview.S3Options{
			User:         c.S3RootUser,
			Password:     c.S3RootPassword,
			Bucket:       c.S3Bucket,
			Region:       c.S3Region,
			BaseEndpoint: c.S3BaseEndpoint,
			Expires:      c.PreviewURLExpiry,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("s3 preview init error: %w", err)
		}
		return r, nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown preview backend %q", c.PreviewBackend)
	}
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

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := rest.NewServer(app.config.EndpointAddrHTTP, app.logger, app.sessions, app.processor, app.validator, app.previews)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// sweepSessions drops idle sessions until ctx ends.
func (app *App) sweepSessions(ctx context.Context) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			app.sessions.Sweep(ctx)
		}
	}
}

// Run serves until a signal arrives or ctx is cancelled, then stops the
// endpoints, cancels outstanding jobs and revokes every preview handle.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(3)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.sweepSessions(ctx)
	}()

	wg.Wait()

	app.shutdown(context.WithoutCancel(ctx))
}

func (app *App) shutdown(ctx context.Context) {
	app.processor.Shutdown()
	app.sessions.Close(ctx)

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error(ctx, "db close failed", "error", err)
		}
	}
	app.logger.Info(ctx, "App stopped")
}

func init() {
	gin.SetMode(gin.ReleaseMode)
}
