package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"impostorhunt/internal/cache"
	"impostorhunt/internal/config"
	"impostorhunt/internal/logging"
	"impostorhunt/internal/random"
	"impostorhunt/internal/repository"
	"impostorhunt/internal/service"
	"impostorhunt/internal/transport/rest"

	"github.com/kelseyhightower/envconfig"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const historyCacheSize = 256

func main() {
	logger := logging.DefaultLogger().Named("server")
	defer logger.Sync()

	var cfg config.Config
	if err := envconfig.Process("", &cfg); err != nil {
		logger.Fatalw("processing environment config failed", "error", err)
	}

	aiConfig := config.DefaultAIConfig()
	if aiConfig.IsEnabled() {
		logger.Infow("AI generation enabled", "baseUrl", aiConfig.BaseURL)
	} else {
		logger.Warnw("OPENAI_API_KEY not set, AI players will use placeholder answers")
	}

	ctx := logging.WithLogger(context.Background(), logger)

	// MongoDB connection
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		logger.Fatalw("connecting to MongoDB failed", "error", err)
	}
	defer mongoClient.Disconnect(ctx)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		logger.Fatalw("pinging MongoDB failed", "error", err)
	}
	logger.Infow("connected to MongoDB", "db", cfg.MongoDB)

	db := mongoClient.Database(cfg.MongoDB)

	// Redis connection
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer rdb.Close()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		logger.Fatalw("pinging Redis failed", "error", err)
	}
	logger.Infow("connected to Redis", "addr", cfg.RedisAddr)

	// Initialize repositories
	gameRepo := repository.NewGameRepo(db)
	messageRepo := repository.NewMessageRepo(db)
	resultRepo := repository.NewResultRepo(db)

	// Initialize caches
	lobbyCache := cache.NewLobbyCache(rdb, cfg.LobbyCacheTTL)
	historyCache, err := cache.NewHistoryCache(historyCacheSize)
	if err != nil {
		logger.Fatalw("creating history cache failed", "error", err)
	}

	// Initialize services
	rng := random.New()
	authSvc := service.NewAuthService(cfg.JWTSecret)
	responder := service.NewResponderService(aiConfig, rng)
	archiver := service.NewArchiveService(messageRepo, resultRepo)
	gameSvc := service.NewGameService(gameRepo, messageRepo, lobbyCache, historyCache, responder, archiver, rng, &cfg)

	// Create router with container
	router := rest.NewRouter(&rest.Container{
		AuthService: authSvc,
		GameService: gameSvc,
		Logger:      logger,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
	}

	go func() {
		logger.Infow("server starting", "port", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalw("listen and serve failed", "error", err)
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Infow("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatalw("server forced to shutdown", "error", err)
	}

	logger.Infow("server exited")
}
