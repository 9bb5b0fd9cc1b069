package httpapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/oakmontlabs/timepunch/internal/admin"
	"github.com/oakmontlabs/timepunch/internal/approval"
	"github.com/oakmontlabs/timepunch/internal/auth"
	"github.com/oakmontlabs/timepunch/internal/clock"
	"github.com/oakmontlabs/timepunch/internal/config"
	"github.com/oakmontlabs/timepunch/internal/project"
	"github.com/oakmontlabs/timepunch/internal/reports"
	"github.com/oakmontlabs/timepunch/internal/settings"
	"github.com/oakmontlabs/timepunch/internal/share"
)

const shutdownTimeout = 10 * time.Second

// Server owns the HTTP surface: routing, middleware, rate limiting,
// and graceful shutdown.
type Server struct {
	cfg      *config.Config
	auth     *auth.Service
	engine   *clock.Engine
	reports  *reports.Service
	projects *project.Service
	settings *settings.Service
	admin    *admin.Service
	approval *approval.Service
	share    *share.Service

	authLimiter *rateLimiter
	apiLimiter  *rateLimiter
	sweepDone   chan struct{}
}

func NewServer(
	cfg *config.Config,
	authSvc *auth.Service,
	engine *clock.Engine,
	reportsSvc *reports.Service,
	projectsSvc *project.Service,
	settingsSvc *settings.Service,
	adminSvc *admin.Service,
	approvalSvc *approval.Service,
	shareSvc *share.Service,
) *Server {
	return &Server{
		cfg:      cfg,
		auth:     authSvc,
		engine:   engine,
		reports:  reportsSvc,
		projects: projectsSvc,
		settings: settingsSvc,
		admin:    adminSvc,
		approval: approvalSvc,
		share:    shareSvc,
		authLimiter: newRateLimiter(
			cfg.AuthRatePerWindow,
			time.Duration(cfg.AuthRateWindowMin)*time.Minute,
		),
		apiLimiter: newRateLimiter(cfg.APIRatePerMinute, time.Minute),
		sweepDone:  make(chan struct{}),
	}
}

// Router assembles the full route tree. Auth endpoints sit behind the
// tighter limiter; everything else behind the general one.
func (s *Server) Router() http.Handler {
	private := requireAuth(s.auth.VerifyAccessToken)

	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	authH := &authHandler{auth: s.auth}
	sessionH := &sessionHandler{engine: s.engine}
	projectH := &projectHandler{projects: s.projects}
	settingsH := &settingsHandler{settings: s.settings}
	reportH := &reportHandler{reports: s.reports, now: time.Now}
	approvalH := &approvalHandler{approval: s.approval}
	adminH := &adminHandler{admin: s.admin, approval: s.approval, now: time.Now}
	shareH := &shareHandler{share: s.share, now: time.Now}

	r.Route("/api/v1", func(r chi.Router) {
		r.With(s.authLimiter.middleware).Mount("/auth", authH.routes(private))
		r.Group(func(r chi.Router) {
			r.Use(s.apiLimiter.middleware)
			r.Use(private)
			r.Mount("/sessions", sessionH.routes())
			r.Mount("/projects", projectH.routes())
			r.Mount("/settings", settingsH.routes())
			r.Mount("/reports", reportH.routes())
			r.Mount("/share", shareH.routes())
			r.Mount("/requests", approvalH.routes())
			r.Mount("/admin", adminH.routes())
		})
	})
	return r
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	s.authLimiter.startSweeping(s.sweepDone)
	s.apiLimiter.startSweeping(s.sweepDone)
	defer close(s.sweepDone)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "port", s.cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	slog.Info("http server stopped")
	return nil
}
