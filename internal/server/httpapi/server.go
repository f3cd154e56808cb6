// Package httpapi exposes the auth and files services over HTTP using gin.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/dmitrijs2005/filevault/internal/logging"
	"github.com/dmitrijs2005/filevault/internal/server/services"
)

const (
	readHeaderTimeout = 10 * time.Second
	idleTimeout       = 120 * time.Second
	shutdownTimeout   = 10 * time.Second

	// multipartOverhead leaves room for boundaries and form fields on top
	// of the largest accepted file.
	multipartOverhead = 1 << 20
)

type Server struct {
	address string
	engine  *gin.Engine
	log     logging.Logger
}

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("mimetype", func(fl validator.FieldLevel) bool {
			return services.IsAllowedMimeType(fl.Field().String())
		})
	}
}

// NewServer builds the router. corsOrigins may contain "*" to allow any
// origin.
func NewServer(address string, corsOrigins []string, authSvc AuthService, filesSvc FilesService, log logging.Logger) *Server {
	log = log.With("module", "http")

	r := gin.New()
	r.MaxMultipartMemory = services.MaxFileSize + multipartOverhead
	r.Use(gin.Recovery(), RequestID(), RequestLogger(log), cors.New(corsConfig(corsOrigins)))

	h := &handler{auth: authSvc, files: filesSvc}

	api := r.Group("/api")
	api.GET("/health", h.health)

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/sign-up", h.register)
		authGroup.POST("/register", h.register)
		authGroup.POST("/sign-in", h.signIn)
		authGroup.POST("/login", h.signIn)

		guarded := authGroup.Group("", AuthGuard(authSvc))
		guarded.POST("/sign-out", h.signOut)
		guarded.GET("/me", h.me)
	}

	files := api.Group("/files", AuthGuard(authSvc))
	{
		files.GET("", h.listFiles)
		files.POST("/upload", h.upload)
		files.POST("/upload-url", h.uploadURL)
		files.POST("/metadata", h.recordMetadata)
		files.GET("/:id/download", h.downloadURL)
		files.GET("/:id/content", h.content)
		files.DELETE("/:id", h.deleteFile)
	}

	return &Server{address: address, engine: r, log: log}
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowHeaders = append(cfg.AllowHeaders, "Authorization", RequestIDHeader)
	cfg.ExposeHeaders = []string{RequestIDHeader, "Content-Disposition"}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	cfg.AllowOrigins = origins
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	}
	return cfg
}

// Handler returns the router, mostly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run listens on the configured address until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	lis, err := net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	return s.Serve(ctx, lis)
}

// Serve handles requests on lis and shuts down gracefully on ctx.Done.
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	srv := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: readHeaderTimeout,
		IdleTimeout:       idleTimeout,
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		s.log.Info(context.Background(), "Shutting down HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Error(context.Background(), "HTTP shutdown error", "error", err)
		}
	}()

	s.log.Info(ctx, "HTTP server listening", "address", lis.Addr().String())
	err := srv.Serve(lis)
	if errors.Is(err, http.ErrServerClosed) {
		<-done
		return nil
	}
	return err
}
