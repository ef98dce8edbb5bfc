package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/staffdesk/apiserver/config"
	"github.com/staffdesk/apiserver/internal/auth"
	"github.com/staffdesk/apiserver/internal/db"
	"github.com/staffdesk/apiserver/internal/handlers"
	"github.com/staffdesk/apiserver/internal/mq"
	"github.com/staffdesk/apiserver/internal/services"
	"github.com/staffdesk/apiserver/internal/storage"
	"github.com/staffdesk/apiserver/internal/store"
)

// Server wraps the HTTP server, router and shared resources.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	bus        *mq.Bus
}

// New constructs a fully wired Server. Missing auth secrets are a
// configuration error and abort startup.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	if strings.TrimSpace(cfg.Auth.Pepper) == "" {
		return nil, errors.New("PEPPER is required")
	}
	if strings.TrimSpace(cfg.Auth.Secret) == "" {
		return nil, errors.New("SECRET is required")
	}
	if cfg.Auth.SaltRounds < 1 {
		return nil, errors.New("SALT is required")
	}

	vault, err := auth.NewVault(cfg.Auth.Pepper, cfg.Auth.SaltRounds)
	if err != nil {
		return nil, err
	}
	tokens, err := auth.NewTokenService(cfg.Auth.Secret)
	if err != nil {
		return nil, err
	}

	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	documents, err := newDocumentStorage(ctx, cfg.Storage)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}
	if err := documents.EnsureBucket(ctx); err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	bus, err := newEventBus(ctx, cfg.MQ)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}
	var events services.EventPublisher
	if bus != nil {
		events = bus
	}

	userRepo := store.NewUserRepository(dbConn)
	teamRepo := store.NewTeamRepository(dbConn)
	payslipRepo := store.NewPayslipRepository(dbConn)
	requestRepo := store.NewRequestRepository(dbConn)
	payslipRequestRepo := store.NewPayslipRequestRepository(dbConn)

	authService := services.NewAuthService(userRepo, vault, tokens)
	userService := services.NewUserService(userRepo, payslipRepo, vault, documents)
	rosterService := services.NewRosterService(teamRepo, userRepo, events)
	intakeService := services.NewIntakeService(requestRepo, payslipRequestRepo, events)

	authMiddleware := handlers.RequireAuth(tokens)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
	)
	router.Get("/healthz", handlers.Healthz)
	router.Route("/auth", func(r chi.Router) {
		handlers.AuthRouter(r, authService, tokens)
	})
	router.Route("/users", func(r chi.Router) {
		handlers.UserRouter(r, userService, authService, authMiddleware)
	})
	router.Route("/teams", func(r chi.Router) {
		handlers.TeamRouter(r, rosterService, authMiddleware)
	})
	router.Route("/requests", func(r chi.Router) {
		handlers.RequestRouter(r, intakeService, authMiddleware)
	})
	router.Route("/payslip-requests", func(r chi.Router) {
		handlers.PayslipRequestRouter(r, intakeService, authMiddleware)
	})

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
		bus:        bus,
	}, nil
}

func newDocumentStorage(ctx context.Context, cfg config.StorageConfig) (*storage.Storage, error) {
	switch cfg.Backend {
	case "minio":
		client, err := storage.NewMinioClient(cfg.Minio)
		if err != nil {
			return nil, err
		}
		return storage.NewStorage(client), nil
	case "gcs":
		client, err := storage.NewGCSClient(ctx, cfg.GCS)
		if err != nil {
			return nil, err
		}
		return storage.NewStorage(client), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// newEventBus returns nil when no broker is configured; event publishing
// is then disabled.
func newEventBus(ctx context.Context, cfg config.MQConfig) (*mq.Bus, error) {
	switch cfg.Backend {
	case "":
		return nil, nil
	case "rabbitmq":
		client, err := mq.NewRabbitMQClient(cfg.RabbitMQ)
		if err != nil {
			return nil, err
		}
		return mq.NewBus(client), nil
	case "pubsub":
		client, err := mq.NewPubSubClient(ctx, cfg.PubSub)
		if err != nil {
			return nil, err
		}
		return mq.NewBus(client), nil
	default:
		return nil, fmt.Errorf("unknown mq backend %q", cfg.Backend)
	}
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown attempts a graceful shutdown.
func (s *Server) Shutdown() error {
	if s.bus != nil {
		_ = s.bus.Close()
	}
	if s.db != nil {
		_ = s.db.Close()
	}
	return s.httpServer.Close()
}
