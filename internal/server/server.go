package server

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/camptrades/apiserver/config"
	"github.com/camptrades/apiserver/internal/db"
	"github.com/camptrades/apiserver/internal/handlers"
	"github.com/camptrades/apiserver/internal/mq"
	"github.com/camptrades/apiserver/internal/services"
	"github.com/camptrades/apiserver/internal/storage"
	"github.com/camptrades/apiserver/internal/store"
)

// Server wraps the HTTP server and its backing connections.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	broker     *mq.MQ
}

// New constructs a Server with all repositories, services and routes
// wired up.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	userRepo := store.NewUserRepository(dbConn)
	sessionRepo := store.NewSessionRepository(dbConn)
	itemRepo := store.NewItemRepository(dbConn)
	ledgerRepo := store.NewLedgerRepository(dbConn)
	purchaseRepo := store.NewPurchaseRepository(dbConn)

	broker, err := newBroker(ctx, cfg.MQ)
	if err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("connect broker: %w", err)
	}

	var publisher services.EventPublisher
	if broker != nil {
		publisher = broker
	}

	authService := services.NewAuthService(userRepo, sessionRepo)
	itemService := services.NewItemService(itemRepo)
	ledgerService := services.NewLedgerService(ledgerRepo)
	purchaseService := services.NewPurchaseService(purchaseRepo, publisher)
	dealFinder := services.NewDealFinder(cfg.DealFinder)

	objectStore, err := newObjectStorage(ctx, cfg.Storage)
	if err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("connect object storage: %w", err)
	}

	authMiddleware := handlers.RequireAuth(authService)

	purchaseHandler := handlers.NewPurchaseHandler(purchaseService)
	ledgerHandler := handlers.NewLedgerHandler(ledgerService)
	dealHandler := handlers.NewDealHandler(dealFinder, itemService)

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
		handlers.AuthRouter(r, authService)
	})
	router.Route("/items", func(r chi.Router) {
		handlers.ItemRouter(r, itemService, authMiddleware)
		if objectStore != nil {
			imageHandler := handlers.NewImageHandler(objectStore)
			r.With(authMiddleware).Post("/image", imageHandler.Upload)
		}
	})
	if objectStore != nil {
		imageHandler := handlers.NewImageHandler(objectStore)
		router.Get("/images/{key}", imageHandler.Serve)
	}
	router.With(authMiddleware).Post("/purchase", purchaseHandler.Purchase)
	router.With(authMiddleware).Get("/transactions", ledgerHandler.ListTransactions)
	router.With(authMiddleware).Post("/deals/find", dealHandler.FindDeal)

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
		broker:     broker,
	}, nil
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	log.Info().Str("addr", s.httpServer.Addr).Msg("server listening")
	return s.httpServer.ListenAndServe()
}

// Shutdown closes the server and its backing connections.
func (s *Server) Shutdown() error {
	if s.broker != nil {
		_ = s.broker.Close()
	}
	if s.db != nil {
		_ = s.db.Close()
	}
	return s.httpServer.Close()
}

// newBroker builds the configured event broker, or nil for "none".
func newBroker(ctx context.Context, cfg config.MQConfig) (*mq.MQ, error) {
	switch cfg.Backend {
	case "", "none":
		return nil, nil
	case "rabbitmq":
		client, err := mq.NewRabbitMQClient(cfg.AMQPURL)
		if err != nil {
			return nil, err
		}
		return mq.New(client), nil
	case "pubsub":
		client, err := mq.NewPubSubClient(ctx, cfg.PubSub)
		if err != nil {
			return nil, err
		}
		return mq.New(client), nil
	default:
		return nil, fmt.Errorf("unknown mq backend %q", cfg.Backend)
	}
}

// newObjectStorage builds the configured image store, or nil for "none".
func newObjectStorage(ctx context.Context, cfg config.StorageConfig) (*storage.Storage, error) {
	switch cfg.Backend {
	case "", "none":
		return nil, nil
	case "minio":
		client, err := storage.NewMinioClient(cfg.Minio)
		if err != nil {
			return nil, err
		}
		wrapped := storage.NewStorage(client)
		if err := wrapped.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return wrapped, nil
	case "gcs":
		client, err := storage.NewGCSClient(ctx, cfg.GCS)
		if err != nil {
			return nil, err
		}
		wrapped := storage.NewStorage(client)
		if err := wrapped.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return wrapped, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
