// Package api exposes transactions, the dashboard and the theme as a JSON
// HTTP API.
package api

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/Veraticus/fintrack/internal/certs"
	"github.com/Veraticus/fintrack/internal/form"
	"github.com/Veraticus/fintrack/internal/service"
	"github.com/Veraticus/fintrack/internal/theme"
)

const shutdownTimeout = 5 * time.Second

// Server routes API requests to the repository and theme resolver.
type Server struct {
	repo   service.TransactionRepository
	theme  *theme.Resolver
	engine *gin.Engine
	now    func() time.Time
}

// NewServer builds the router.
func NewServer(repo service.TransactionRepository, resolver *theme.Resolver) *Server {
	registerValidators()

	s := &Server{
		repo:  repo,
		theme: resolver,
		now:   time.Now,
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogging())

	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	transactions := v1.Group("/transactions")
	transactions.GET("", s.listTransactions)
	transactions.POST("", s.createTransaction)
	transactions.GET("/:id", s.getTransaction)
	transactions.PATCH("/:id", s.updateTransaction)
	transactions.DELETE("/:id", s.deleteTransaction)

	v1.GET("/dashboard", s.dashboard)
	v1.GET("/categories", s.listCategories)

	themes := v1.Group("/theme")
	themes.GET("", s.getTheme)
	themes.PUT("", s.setTheme)
	themes.POST("/toggle", s.toggleTheme)

	s.engine = router
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves plain HTTP on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	return s.serve(ctx, s.newHTTPServer(addr), false)
}

// RunTLS is Run over HTTPS with the certificate from certificates.
func (s *Server) RunTLS(ctx context.Context, addr string, certificates certs.Manager) error {
	cert, err := certificates.GetOrCreateCertificate()
	if err != nil {
		return fmt.Errorf("failed to load certificate: %w", err)
	}

	srv := s.newHTTPServer(addr)
	srv.TLSConfig = &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}
	return s.serve(ctx, srv, true)
}

func (s *Server) newHTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func (s *Server) serve(ctx context.Context, srv *http.Server, useTLS bool) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("Starting API server", "addr", srv.Addr, "tls", useTLS)
		if useTLS {
			errCh <- srv.ListenAndServeTLS("", "")
			return
		}
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	slog.Info("Shutting down API server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}

// registerValidators adds the form tags to gin's binding engine so query
// structs can use them.
func registerValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		form.Register(v)
	}
}
