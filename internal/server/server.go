package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/janisto/devsecops-backend/internal/config"
	"github.com/janisto/devsecops-backend/internal/http/health"
	applog "github.com/janisto/devsecops-backend/internal/platform/logging"
)

// Server owns the public and optional admin http.Server instances.
type Server struct {
	public          *http.Server
	admin           *http.Server
	tls             config.TLSConfig
	checker         *health.Checker
	shutdownTimeout time.Duration
	drainDelay      time.Duration
}

// New configures the listeners. A nil admin handler or an empty admin address
// leaves the admin listener off.
func New(cfg *config.Config, public, admin http.Handler, checker *health.Checker) *Server {
	s := &Server{
		public:          newHTTPServer(cfg.Addr(), public, cfg.Timeouts),
		tls:             cfg.TLS,
		checker:         checker,
		shutdownTimeout: cfg.Timeouts.Shutdown,
		drainDelay:      cfg.Timeouts.DrainDelay,
	}
	if admin != nil && cfg.AdminAddr() != "" {
		s.admin = newHTTPServer(cfg.AdminAddr(), admin, cfg.Timeouts)
	}
	return s
}

func newHTTPServer(addr string, h http.Handler, t config.TimeoutConfig) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadTimeout:       t.Read,
		ReadHeaderTimeout: t.ReadHeader,
		WriteTimeout:      t.Write,
		IdleTimeout:       t.Idle,
		MaxHeaderBytes:    64 << 10, // 64 KB
	}
}

// Run binds the configured addresses and serves until ctx is cancelled or a
// listener fails.
func (s *Server) Run(ctx context.Context) error {
	var lc net.ListenConfig
	publicLn, err := lc.Listen(ctx, "tcp", s.public.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.public.Addr, err)
	}
	var adminLn net.Listener
	if s.admin != nil {
		adminLn, err = lc.Listen(ctx, "tcp", s.admin.Addr)
		if err != nil {
			_ = publicLn.Close()
			return fmt.Errorf("listen %s: %w", s.admin.Addr, err)
		}
	}
	return s.Serve(ctx, publicLn, adminLn)
}

// Serve serves on already-bound listeners. When ctx is cancelled or either
// server fails, readiness switches to draining and both servers are shut down
// within the shutdown timeout. On cancellation the listeners keep serving for
// the drain delay first, so /ready reports 503 while traffic is still accepted. adminLn is ignored when no admin server is configured.
func (s *Server) Serve(ctx context.Context, publicLn, adminLn net.Listener) error {
	errCh := make(chan error, 2)

	go func() {
		applog.LogInfo(ctx, "public server listening",
			zap.String("addr", publicLn.Addr().String()),
			zap.Bool("tls", s.tls.Enabled()),
		)
		var err error
		if s.tls.Enabled() {
			err = s.public.ServeTLS(publicLn, s.tls.CertFile, s.tls.KeyFile)
		} else {
			err = s.public.Serve(publicLn)
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("public server: %w", err)
		}
	}()

	if s.admin != nil && adminLn != nil {
		go func() {
			applog.LogInfo(ctx, "admin server listening", zap.String("addr", adminLn.Addr().String()))
			if err := s.admin.Serve(adminLn); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("admin server: %w", err)
			}
		}()
	}

	var serveErr error
	select {
	case <-ctx.Done():
		applog.LogInfo(ctx, "shutdown signal received")
	case serveErr = <-errCh:
		applog.LogError(ctx, "server failed", serveErr)
	}

	if s.checker != nil {
		s.checker.SetDraining()
	}
	if serveErr == nil && s.drainDelay > 0 {
		applog.LogInfo(ctx, "draining before shutdown", zap.Duration("delay", s.drainDelay))
		time.Sleep(s.drainDelay)
	}
	return errors.Join(serveErr, s.shutdown(ctx))
}

func (s *Server) shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.shutdownTimeout)
	defer cancel()

	var errs []error
	if err := s.public.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("public shutdown: %w", err))
	}
	if s.admin != nil {
		if err := s.admin.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("admin shutdown: %w", err))
		}
	}
	if len(errs) == 0 {
		applog.LogInfo(ctx, "server exited")
	}
	return errors.Join(errs...)
}
