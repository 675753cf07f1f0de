package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"focustracks/cache"
	"focustracks/config"
	"focustracks/core/artwork"
	"focustracks/core/auth"
	"focustracks/core/events"
	"focustracks/core/playlist"
	"focustracks/db"
	"focustracks/logger"
	"focustracks/repository"
	"focustracks/storage"

	"github.com/gorilla/mux"
)

// Start wires up all dependencies, registers the routes and runs the HTTP
// server until interrupted.
func Start() {
	cfg := config.Load()

	logger.InitLogger(logger.Config{
		Level:      logger.LogLevel(cfg.LogLevel),
		OutputPath: cfg.LogOutput,
		MaxSize:    100,
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	})

	auth.Init(cfg.JWTSecret, cfg.TokenTTL)

	if err := db.ConnectDB(cfg); err != nil {
		logger.Fatal("Failed to connect to database", logger.ErrorField(err))
	}
	defer db.DB.Close()

	if err := db.InitDB(); err != nil {
		logger.Fatal("Failed to initialize database schema", logger.ErrorField(err))
	}

	if err := db.ConnectGormDB(cfg); err != nil {
		logger.Fatal("Failed to connect to database with GORM", logger.ErrorField(err))
	}
	defer db.CloseGormDB()

	// Redis and MinIO are optional at startup: the playlist cache degrades
	// to direct reads and cover uploads fail per-request.
	if err := cache.ConnectRedis(cfg); err != nil {
		logger.Warn("Redis unavailable, playlist caching disabled", logger.ErrorField(err))
	} else {
		defer cache.CloseRedis()
	}

	if err := storage.InitMinio(cfg); err != nil {
		logger.Warn("MinIO unavailable, cover art uploads disabled", logger.ErrorField(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if ingestor := artwork.NewIngestor(cfg); ingestor != nil {
		go func() {
			if err := ingestor.Run(ctx); err != nil {
				logger.Error("Artwork ingest stopped", logger.ErrorField(err))
			}
		}()
	}

	userRepo := repository.NewMySQLUserRepository(db.DB)
	trackRepo := repository.NewMySQLTrackRepository(db.DB)
	playlistRepo := repository.NewMySQLPlaylistRepository(db.DB)
	submissionRepo := repository.NewGormSubmissionRepository(db.GormDB)
	membershipStore := repository.NewMySQLPlaylistTrackRepository(db.DB)

	manager := playlist.NewManager(membershipStore)
	hub := events.NewHub()

	handler := NewAPIHandler(cfg, userRepo, trackRepo, playlistRepo, submissionRepo, manager, hub)
	router := newRouter(handler)

	srv := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      corsMiddleware(router),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Server starting", logger.String("addr", cfg.ServerAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", logger.ErrorField(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", logger.ErrorField(err))
	}

	logger.Info("Server exited")
}

// newRouter registers all API routes.
func newRouter(h *APIHandler) *mux.Router {
	r := mux.NewRouter()

	api := r.PathPrefix("/api").Subrouter()

	// Auth
	api.HandleFunc("/auth/register", h.RegisterHandler).Methods("POST")
	api.HandleFunc("/auth/login", h.LoginHandler).Methods("POST")

	// Track catalog
	api.HandleFunc("/tracks", h.GetTracksHandler).Methods("GET")
	api.HandleFunc("/tracks/{id}", h.GetTrackHandler).Methods("GET")
	api.HandleFunc("/tracks/{id}", h.AdminMiddleware(h.DeleteTrackHandler)).Methods("DELETE")
	api.HandleFunc("/tracks/{id}/cover", h.AdminMiddleware(h.UploadTrackCoverHandler)).Methods("POST")

	// Submissions and moderation
	api.HandleFunc("/submissions", h.AuthMiddleware(h.CreateSubmissionHandler)).Methods("POST")
	api.HandleFunc("/submissions", h.AuthMiddleware(h.ListSubmissionsHandler)).Methods("GET")
	api.HandleFunc("/submissions/{id}/approve", h.AdminMiddleware(h.ApproveSubmissionHandler)).Methods("POST")
	api.HandleFunc("/submissions/{id}/reject", h.AdminMiddleware(h.RejectSubmissionHandler)).Methods("POST")

	// Playlists
	api.HandleFunc("/playlists", h.AuthMiddleware(h.GetPlaylistsHandler)).Methods("GET")
	api.HandleFunc("/playlists", h.AuthMiddleware(h.CreatePlaylistHandler)).Methods("POST")
	api.HandleFunc("/playlists/{id}", h.AuthMiddleware(h.GetPlaylistHandler)).Methods("GET")
	api.HandleFunc("/playlists/{id}", h.AuthMiddleware(h.UpdatePlaylistHandler)).Methods("PUT")
	api.HandleFunc("/playlists/{id}", h.AuthMiddleware(h.DeletePlaylistHandler)).Methods("DELETE")

	// Playlist memberships
	api.HandleFunc("/playlists/{id}/tracks", h.AuthMiddleware(h.AddPlaylistTrackHandler)).Methods("POST")
	api.HandleFunc("/playlists/{id}/tracks/{trackId}", h.AuthMiddleware(h.RemovePlaylistTrackHandler)).Methods("DELETE")
	api.HandleFunc("/playlists/{id}/tracks/{trackId}/position", h.AuthMiddleware(h.MovePlaylistTrackHandler)).Methods("PUT")

	// Live playlist events
	api.HandleFunc("/playlists/{id}/events", h.AuthMiddleware(h.PlaylistEventsHandler)).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods("GET")

	return r
}

// corsMiddleware adds CORS headers and answers preflight requests.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
