// Package rest is the HTTP API of the upscaler server, built on gin.
package rest

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/upscaler/internal/logging"
	"github.com/dmitrijs2005/upscaler/internal/server/assets"
	"github.com/dmitrijs2005/upscaler/internal/server/intake"
	"github.com/dmitrijs2005/upscaler/internal/server/preview"
	"github.com/dmitrijs2005/upscaler/internal/server/services"
	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 5 * time.Second

// Sessions is what the API needs from the session service.
type Sessions interface {
	Create(ctx context.Context) (*services.Session, string, error)
	Authenticate(ctx context.Context, token string) (*services.Session, error)
	Clear(ctx context.Context, id string) error
}

// Processor starts and cancels processing runs.
type Processor interface {
	Start(sessionID string, store *assets.Store, assetID string, settings assets.ProcessingSettings) error
	Cancel(sessionID, assetID string) bool
}

// PreviewSource resolves in-process preview tokens. It is nil when previews
// live in object storage.
type PreviewSource interface {
	Open(token string) (preview.Preview, bool)
}

type Server struct {
	address   string
	sessions  Sessions
	processor Processor
	validator *intake.Validator
	previews  PreviewSource
	logger    logging.Logger
}

func NewServer(address string, l logging.Logger, s Sessions, p Processor, v *intake.Validator, previews PreviewSource) *Server {
	return &Server{
		address:   address,
		sessions:  s,
		processor: p,
		validator: v,
		previews:  previews,
		logger:    l.With("module", "http_server"),
	}
}

// Router builds the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(LoggingMiddleware(s.logger))
	router.Use(gin.CustomRecovery(HandlePanics(s.logger)))

	router.GET("/healthz", s.health)
	router.GET("/previews/:token", s.getPreview)

	apiV1 := router.Group("/api")
	{
		apiV1.POST("/session", s.createSession)

		authed := apiV1.Group("", s.authMiddleware())
		authed.DELETE("/session", s.clearSession)

		authed.GET("/assets", s.listAssets)
		authed.POST("/assets", s.uploadAssets)
		authed.GET("/assets/:id", s.getAsset)
		authed.DELETE("/assets/:id", s.removeAsset)
		authed.POST("/assets/:id/process", s.startProcessing)
		authed.DELETE("/assets/:id/process", s.cancelProcessing)

		authed.GET("/selection", s.getSelection)
		authed.PUT("/selection", s.putSelection)
		authed.PUT("/processing", s.putProcessing)

		authed.GET("/processed", s.listProcessed)
		authed.GET("/processed/:id/download", s.downloadProcessed)
	}

	return router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
