package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"rescueDispatch/internal/api/handlers/http/admin"
	"rescueDispatch/internal/api/handlers/http/dispatch"
	"rescueDispatch/internal/api/handlers/http/public"
	"rescueDispatch/internal/api/handlers/http/system"
	"rescueDispatch/internal/auth"
	"rescueDispatch/internal/config"
	"rescueDispatch/internal/domain"
	"rescueDispatch/internal/middleware"
)

type Server struct {
	logger *slog.Logger
	router *chi.Mux
	cfg    config.Config
}

type Handlers struct {
	Public   *public.Handler
	Dispatch *dispatch.Handler
	Admin    *admin.Handler
	System   *system.Handler
	Metrics  http.Handler
	Tokens   auth.TokenParser
}

func NewServer(ctx context.Context, cfg *config.Config, logger *slog.Logger, h Handlers) *Server {
	r := InitRouter(ctx, cfg, h, logger)
	logger.Info("Initialized router")

	return &Server{
		logger: logger,
		router: r,
		cfg:    *cfg,
	}
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func InitRouter(ctx context.Context, cfg *config.Config, h Handlers, logger *slog.Logger) *chi.Mux {
	r := chi.NewMux()

	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Logger)

	staff := auth.RequireRole(domain.RoleAdmin, domain.RoleOperator)
	field := auth.RequireRole(domain.RoleAdmin, domain.RoleOperator, domain.RoleDriver)

	if h.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.Metrics)
	}

	r.Route("/api/v1", func(api chi.Router) {
		// SYSTEM
		api.Get("/health", h.System.SystemHealth)

		// PUBLIC
		api.Group(func(pr chi.Router) {
			pr.Use(auth.Optional(h.Tokens))
			pr.Use(middleware.Limit(ctx, cfg.RateLimit.RPS, cfg.RateLimit.Burst, 10*time.Minute, logger))
			pr.Post("/reports", h.Public.CreateReport)
		})

		// AUTHENTICATED
		api.Group(func(ar chi.Router) {
			ar.Use(auth.Authenticate(h.Tokens))

			ar.Route("/incidents", func(ir chi.Router) {
				ir.With(staff).Get("/", h.Dispatch.ListIncidents)
				ir.With(field).Get("/nearby", h.Dispatch.NearbyIncidents)

				ir.Route("/{id}", func(rr chi.Router) {
					rr.Get("/", h.Dispatch.GetIncident)
					rr.With(staff).Get("/candidates", h.Dispatch.Candidates)
					rr.With(field).Get("/facilities", h.Dispatch.IncidentFacilities)
					rr.With(field).Post("/assign", h.Dispatch.Assign)
					rr.With(staff).Post("/auto-assign", h.Dispatch.AutoAssign)
					rr.With(auth.RequireRole(domain.RoleDriver)).Post("/respond", h.Dispatch.Respond)
					rr.With(field).Post("/progress", h.Dispatch.Progress)
				})
			})

			ar.With(field).Get("/facilities/nearby", h.Dispatch.NearbyFacilities)

			ar.Route("/drivers", func(dr chi.Router) {
				dr.With(field).Get("/{id}/stats", h.Dispatch.DriverStatistics)
				dr.With(auth.RequireRole(domain.RoleDriver)).Put("/me/location", h.Dispatch.UpdateLocation)
			})

			// ADMIN
			ar.Route("/admin/incidents/{id}", func(adm chi.Router) {
				adm.Use(staff)
				adm.Post("/transition", h.Admin.AdminIncidentTransition)
				adm.Patch("/", h.Admin.AdminIncidentUpdate)
				adm.Post("/notes", h.Admin.AdminIncidentNote)
				adm.Post("/retriage", h.Admin.AdminIncidentRetriage)
			})
		})
	})

	return r
}

func (s *Server) Run(ctx context.Context) error {
	port := s.cfg.Http.Port
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}

	srv := &http.Server{
		Addr:         port,
		Handler:      s.router,
		ReadTimeout:  s.cfg.Http.ReadTimeout,
		WriteTimeout: s.cfg.Http.WriteTimeout,
		IdleTimeout:  30 * time.Second,
	}

	errChan := make(chan error, 1)

	go func() {
		s.logger.Info("Starting HTTP server",
			slog.String("addr", srv.Addr),
			slog.Duration("read_timeout", s.cfg.Http.ReadTimeout),
			slog.Duration("write_timeout", s.cfg.Http.WriteTimeout),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("ListenAndServe error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("Shutting down HTTP server", slog.String("reason", ctx.Err().Error()))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Http.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("Server shutdown failed", slog.Any("error", err))
			return err
		}
		return nil

	case err := <-errChan:
		return err
	}
}
