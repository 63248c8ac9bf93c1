package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/classpulse/engagement-service/internal/auth"
	"github.com/classpulse/engagement-service/internal/config"
	"github.com/classpulse/engagement-service/internal/events"
	"github.com/classpulse/engagement-service/internal/handlers"
	"github.com/classpulse/engagement-service/internal/repositories/postgres"
	"github.com/classpulse/engagement-service/internal/services"
	"github.com/classpulse/engagement-service/internal/utils"
	"github.com/classpulse/engagement-service/internal/validator"
	"github.com/classpulse/engagement-service/pkg"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	slogLogger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	logger := utils.NewSlogLogger(slogLogger)

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	var redisClient *redis.Client
	if cfg.Redis.URL != "" {
		redisClient, err = pkg.NewRedisClient(cfg)
		if err != nil {
			log.Printf("Warning: failed to initialize Redis, caching disabled: %v", err)
		}
	}

	repoManager := postgres.NewRepositoryManager(postgres.RepositoryConfig{
		DB:          db,
		RedisClient: redisClient,
	})
	if err := repoManager.Initialize(); err != nil {
		log.Fatalf("Failed to initialize repositories: %v", err)
	}
	repo := repoManager.GetRepository()

	var publisher events.EventPublisher
	if len(cfg.Events.Brokers) > 0 {
		publisher, err = events.NewKafkaPublisher(cfg.Events.Brokers, cfg.Events.Topic, slogLogger)
		if err != nil {
			log.Fatalf("Failed to connect to event brokers: %v", err)
		}
	} else {
		publisher = events.NewChannelPublisher(cfg.Events.Topic, slogLogger)
	}

	v := validator.New()
	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Expiry)
	serviceManager := services.NewServiceManager(repo, publisher, jwtService, slogLogger, v)
	handlerManager := handlers.NewHandlerManager(serviceManager, jwtService, logger, repo)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handlers.SetupMiddleware(router, logger)
	handlerManager.SetupRoutes(router)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: router,
	}

	go func() {
		logger.Info("Starting server", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	if err := publisher.Close(); err != nil {
		log.Printf("Failed to close event publisher: %v", err)
	}

	if err := repoManager.Shutdown(ctx); err != nil {
		log.Printf("Failed to shutdown repositories: %v", err)
	}

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Printf("Failed to close redis: %v", err)
		}
	}

	logger.Info("Server stopped")
}
