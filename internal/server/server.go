package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/inkwell-press/apiserver/config"
	"github.com/inkwell-press/apiserver/internal/db"
	"github.com/inkwell-press/apiserver/internal/handlers"
	"github.com/inkwell-press/apiserver/internal/services"
	"github.com/inkwell-press/apiserver/internal/storage"
	"github.com/inkwell-press/apiserver/internal/store"
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
}

// New constructs a Server with basic middleware and defaults.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	uploadStorage, err := newStorage(ctx, cfg)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	userRepo := store.NewUserRepository(dbConn)
	followRepo := store.NewFollowRepository(dbConn)
	postRepo := store.NewPostRepository(dbConn)
	commentRepo := store.NewCommentRepository(dbConn)

	userService := services.NewUserService(userRepo)
	socialService := services.NewSocialService(userRepo, followRepo)
	postService := services.NewPostService(postRepo)
	commentService := services.NewCommentService(commentRepo, postRepo)
	uploadService := services.NewUploadService(uploadStorage)

	jwtSecret := strings.TrimSpace(os.Getenv("JWT_SECRET"))
	if jwtSecret == "" {
		_ = dbConn.Close()
		return nil, errors.New("JWT_SECRET is required")
	}

	cookieSecure := cfg.Env == "production"
	authMiddleware := handlers.RequireAuth(jwtSecret)

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
		handlers.AuthRouter(r, userService, socialService, uploadService, jwtSecret, cookieSecure)
	})
	router.Route("/users", func(r chi.Router) {
		handlers.UserRouter(r, userService, socialService, uploadService, authMiddleware)
	})
	router.Route("/posts", func(r chi.Router) {
		handlers.PostRouter(r, postService, commentService, uploadService, authMiddleware)
	})
	router.Route("/comments", func(r chi.Router) {
		handlers.CommentRouter(r, commentService, authMiddleware)
	})
	router.Route("/uploads", func(r chi.Router) {
		handlers.UploadRouter(r, uploadService)
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
	}, nil
}

// newStorage selects and initializes the upload storage backend.
func newStorage(ctx context.Context, cfg config.Config) (*storage.Storage, error) {
	var backend storage.ObjectStorage
	switch cfg.Storage.Backend {
	case "minio":
		client, err := storage.NewMinioClient(cfg.Storage.Minio)
		if err != nil {
			return nil, err
		}
		backend = client
	case "gcs":
		client, err := storage.NewGCSClient(ctx, cfg.Storage.GCS)
		if err != nil {
			return nil, err
		}
		backend = client
	default:
		client, err := storage.NewLocalClient(cfg.Storage.Local)
		if err != nil {
			return nil, err
		}
		backend = client
	}

	s := storage.NewStorage(backend)
	if err := s.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	return s, nil
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
	if s.db != nil {
		_ = s.db.Close()
	}
	return s.httpServer.Close()
}
