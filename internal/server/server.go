package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/hbnb/apiserver/config"
	"github.com/hbnb/apiserver/internal/auth"
	"github.com/hbnb/apiserver/internal/db"
	"github.com/hbnb/apiserver/internal/handlers"
	"github.com/hbnb/apiserver/internal/mq"
	"github.com/hbnb/apiserver/internal/seed"
	"github.com/hbnb/apiserver/internal/services"
	"github.com/hbnb/apiserver/internal/storage"
	"github.com/hbnb/apiserver/internal/store"
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sqlx.DB
	events     *mq.EventBus
	photos     *storage.Storage
	logger     *zap.Logger
}

// New constructs a Server from cfg: it opens the database, runs start-up
// migrations and seeding, and connects the optional event and photo
// backends.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	dbConn, err := db.Open(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	s := &Server{db: dbConn, logger: logger}

	if cfg.Database.AutoMigrate || cfg.Database.InMemory() {
		if err := db.MigrateUp(cfg.Database); err != nil {
			s.close()
			return nil, err
		}
	}

	st := store.New(dbConn)
	verifier := auth.NewVerifier(cfg.Auth.JWTSecret, auth.WithTokenTTL(cfg.Auth.TokenTTL))
	if err := bootstrap(ctx, cfg.Bootstrap, st, verifier, logger); err != nil {
		s.close()
		return nil, err
	}

	opts := []services.Option{services.WithLogger(logger)}

	queue, err := mq.Connect(ctx, cfg.Events)
	if err != nil {
		s.close()
		return nil, fmt.Errorf("connect events: %w", err)
	}
	if queue != nil {
		s.events = mq.NewEventBus(queue, cfg.Events.Channel)
		opts = append(opts, services.WithEvents(s.events))
		logger.Info("publishing entity events",
			zap.String("backend", cfg.Events.Backend),
			zap.String("channel", cfg.Events.Channel),
		)
	}

	photos, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		s.close()
		return nil, fmt.Errorf("open photo storage: %w", err)
	}
	if photos != nil {
		s.photos = photos
		opts = append(opts, services.WithPhotoStorage(photos))
		logger.Info("storing place photos",
			zap.String("backend", cfg.Storage.Backend),
			zap.String("bucket", photos.Bucket()),
		)
	}

	coordinator := services.NewCoordinator(st, verifier, opts...)
	s.router = NewRouter(coordinator, verifier, logger)

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

// NewRouter builds the HTTP routes over coordinator. Bearer tokens are
// resolved with resolver before any route runs.
func NewRouter(coordinator *services.Coordinator, resolver handlers.TokenResolver, logger *zap.Logger) *chi.Mux {
	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		handlers.RequestLogger(logger),
		middleware.Timeout(60*time.Second),
	)
	router.Get("/healthz", handlers.Healthz)

	router.Group(func(r chi.Router) {
		r.Use(handlers.Authenticate(resolver))

		r.Route("/auth", func(r chi.Router) {
			handlers.AuthRouter(r, coordinator)
		})
		r.Route("/users", func(r chi.Router) {
			handlers.UserRouter(r, coordinator)
		})
		r.Route("/countries", func(r chi.Router) {
			handlers.CountryRouter(r, coordinator)
		})
		r.Route("/cities", func(r chi.Router) {
			handlers.CityRouter(r, coordinator)
		})
		r.Route("/amenities", func(r chi.Router) {
			handlers.AmenityRouter(r, coordinator)
		})
		r.Route("/places", func(r chi.Router) {
			handlers.PlaceRouter(r, coordinator)
		})
		r.Route("/reviews", func(r chi.Router) {
			handlers.ReviewRouter(r, coordinator)
		})
	})
	return router
}

func bootstrap(ctx context.Context, cfg config.BootstrapConfig, st *store.Store, hasher seed.Hasher, logger *zap.Logger) error {
	if cfg.SeedCountries {
		inserted, err := seed.Countries(ctx, st)
		if err != nil {
			return err
		}
		logger.Info("seeded countries", zap.Int("inserted", inserted))
	}
	if cfg.AdminEmail != "" {
		admin, err := seed.Admin(ctx, st, hasher, cfg.AdminEmail, cfg.AdminPassword)
		if err != nil {
			return err
		}
		logger.Info("bootstrap admin ready", zap.String("user_id", admin.ID), zap.String("email", admin.Email))
	}
	return nil
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server until it is shut down.
func (s *Server) Start() error {
	s.logger.Info("starting server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests, waits for in-flight ones until ctx is
// done, and releases the backends.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	return errors.Join(err, s.close())
}

func (s *Server) close() error {
	var errs []error
	if s.events != nil {
		errs = append(errs, s.events.Close())
	}
	if s.photos != nil {
		errs = append(errs, s.photos.Close())
	}
	if s.db != nil {
		errs = append(errs, s.db.Close())
	}
	return errors.Join(errs...)
}
