package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rhythmfm/cache"
	"rhythmfm/config"
	"rhythmfm/core/feed"
	"rhythmfm/db"
	"rhythmfm/logger"
	"rhythmfm/repository"
	"rhythmfm/storage"

	"github.com/gorilla/mux"
)

// APIHandler bundles the dependencies shared by all HTTP handlers.
type APIHandler struct {
	cfg       *config.Config
	users     repository.UserRepository
	catalog   repository.CatalogRepository
	activity  repository.ActivityRepository
	playlists repository.PlaylistRepository
	ads       repository.AdRepository
	feed      *feed.Service
}

// NewAPIHandler creates the handler set.
func NewAPIHandler(
	cfg *config.Config,
	users repository.UserRepository,
	catalog repository.CatalogRepository,
	activity repository.ActivityRepository,
	playlists repository.PlaylistRepository,
	ads repository.AdRepository,
	feedService *feed.Service,
) *APIHandler {
	return &APIHandler{
		cfg:       cfg,
		users:     users,
		catalog:   catalog,
		activity:  activity,
		playlists: playlists,
		ads:       ads,
		feed:      feedService,
	}
}

// NewRouter builds the full route table for the handler set.
func NewRouter(h *APIHandler) *mux.Router {
	router := mux.NewRouter()
	router.Use(requestIDMiddleware)
	router.Use(corsMiddleware)

	// Public endpoints.
	router.HandleFunc("/api/auth/register", h.RegisterHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/login", h.LoginHandler).Methods(http.MethodPost)

	router.HandleFunc("/api/music", h.ListTracksHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/music/search", h.SearchTracksHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/music/trending", h.TrendingTracksHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/music/discover", h.DiscoverTracksHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/music/{id:[0-9]+}", h.GetTrackHandler).Methods(http.MethodGet)

	router.HandleFunc("/api/artists", h.ListArtistsHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/albums", h.ListAlbumsHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/tags", h.ListTagsHandler).Methods(http.MethodGet)

	router.HandleFunc("/api/ads", h.ListAdsHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/ads/{id:[0-9]+}/impression", h.AdImpressionHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/ads/{id:[0-9]+}/click", h.AdClickHandler).Methods(http.MethodPost)

	// Authenticated endpoints.
	protected := router.PathPrefix("/api").Subrouter()
	protected.Use(h.AuthMiddleware)

	protected.HandleFunc("/auth/me", h.MeHandler).Methods(http.MethodGet)
	protected.HandleFunc("/auth/me", h.UpdateProfileHandler).Methods(http.MethodPut)

	protected.HandleFunc("/home", h.HomeHandler).Methods(http.MethodGet)
	protected.HandleFunc("/home/section/{slug}", h.HomeSectionHandler).Methods(http.MethodGet)

	protected.HandleFunc("/music", h.requireBroadcaster(h.UploadTrackHandler)).Methods(http.MethodPost)
	protected.HandleFunc("/music/{id:[0-9]+}/stream", h.StreamTrackHandler).Methods(http.MethodPost)

	protected.HandleFunc("/favorites", h.ListFavoritesHandler).Methods(http.MethodGet)
	protected.HandleFunc("/favorites", h.AddFavoriteHandler).Methods(http.MethodPost)
	protected.HandleFunc("/favorites/{id:[0-9]+}", h.RemoveFavoriteHandler).Methods(http.MethodDelete)

	protected.HandleFunc("/recently-played", h.ListRecentlyPlayedHandler).Methods(http.MethodGet)

	protected.HandleFunc("/playlists", h.ListPlaylistsHandler).Methods(http.MethodGet)
	protected.HandleFunc("/playlists", h.CreatePlaylistHandler).Methods(http.MethodPost)
	protected.HandleFunc("/playlists/{id:[0-9]+}", h.GetPlaylistHandler).Methods(http.MethodGet)
	protected.HandleFunc("/playlists/{id:[0-9]+}/tracks", h.AddPlaylistTrackHandler).Methods(http.MethodPost)
	protected.HandleFunc("/playlists/{id:[0-9]+}/tracks/{trackId:[0-9]+}", h.RemovePlaylistTrackHandler).Methods(http.MethodDelete)

	return router
}

// Start initializes dependencies and runs the HTTP server until interrupted.
func Start() {
	cfg := config.Load()
	logger.InitLogger(logger.Config{
		Level:      logger.LogLevel(cfg.LogLevel),
		OutputPath: cfg.LogPath,
		MaxSize:    100,
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	})

	if err := db.ConnectDB(cfg); err != nil {
		logger.Fatal("failed to connect to database", logger.ErrorField(err))
	}
	defer db.CloseDB()

	if err := db.AutoMigrate(); err != nil {
		logger.Fatal("failed to migrate schema", logger.ErrorField(err))
	}

	var feedCache cache.FeedCache
	if cfg.RedisEnabled {
		if err := db.ConnectRedis(cfg); err != nil {
			logger.Fatal("failed to connect to Redis", logger.ErrorField(err))
		}
		defer db.CloseRedis()
		feedCache = cache.NewRedisFeedCache(db.RedisClient)
		logger.Info("feed cache backed by Redis")
	} else {
		feedCache = cache.NewMemoryFeedCache()
		logger.Info("feed cache backed by process memory")
	}

	if err := storage.InitMinio(cfg); err != nil {
		// Uploads will fail until object storage comes back; the rest of
		// the API stays up.
		logger.Warn("object storage unavailable, uploads disabled", logger.ErrorField(err))
	}

	userRepo := repository.NewUserRepository(db.DB)
	catalogRepo := repository.NewCatalogRepository(db.GormDB)
	activityRepo := repository.NewActivityRepository(db.DB)
	playlistRepo := repository.NewPlaylistRepository(db.DB)
	adRepo := repository.NewAdRepository(db.DB)

	feedService := feed.NewService(catalogRepo, activityRepo, userRepo, feedCache, cfg.FeedCacheTTL)

	apiHandler := NewAPIHandler(cfg, userRepo, catalogRepo, activityRepo, playlistRepo, adRepo, feedService)

	server := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      NewRouter(apiHandler),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("server starting", logger.String("addr", cfg.ServerAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", logger.ErrorField(err))
		}
	}()

	<-stop
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", logger.ErrorField(err))
	}

	logger.Info("server stopped")
}
