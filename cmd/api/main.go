package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"scope-chat/internal/config"
	"scope-chat/internal/db"
	apihttp "scope-chat/internal/http"
	"scope-chat/internal/llm"
	"scope-chat/internal/metrics"
	"scope-chat/internal/service"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	store, err := db.Open(ctx, cfg)
	if err != nil {
		logger.Fatal("db open", zap.String("driver", cfg.DatabaseDriver), zap.Error(err))
	}
	defer store.Close()

	loaded, err := service.LoadMockResponses(ctx, store.MockResponses, cfg.MockFile, logger)
	if err != nil {
		logger.Fatal("load mock responses", zap.Error(err))
	}
	sampleRange, poolSize := service.MockBounds(cfg.MockSampleRange, cfg.MockPoolSize, loaded)

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer client.Close()
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := client.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed, using in-memory stores", zap.Error(err))
		} else {
			redisClient = client
		}
		cancel()
	}

	var seen service.SeenStore
	if cfg.MockTrackSeen {
		seen = service.NewMemorySeenStore()
		if redisClient != nil {
			seen = service.NewRedisSeenStore(redisClient)
		}
	}

	var limiter service.TurnLimiter
	if cfg.ChatRateLimit > 0 {
		window := time.Duration(cfg.ChatRateWindowSeconds) * time.Second
		limiter = service.NewMemoryTurnLimiter(window, cfg.ChatRateLimit)
		if redisClient != nil {
			limiter = service.NewRedisTurnLimiter(redisClient, window, cfg.ChatRateLimit)
		}
	}

	if cfg.LLMAPIKey == "" {
		logger.Warn("llm api key not configured")
	}
	llmClient := llm.NewHTTPClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, logger)

	identitySvc := service.NewIdentityService(logger, store.Users)
	historySvc := service.NewHistoryService(store.Messages)
	selector := service.NewSourceSelector(cfg.GroupsStartingID)
	mockEngine := service.NewMockEngine(store.MockResponses, sampleRange, poolSize)
	chatSvc := service.NewChatService(
		logger,
		identitySvc,
		historySvc,
		service.NewScopeGate(),
		selector,
		mockEngine,
		llmClient,
		seen,
	)

	m := metrics.New()
	chatHandler := apihttp.NewChatHandler(logger, chatSvc, m, limiter, cfg.DefaultTemperature)
	configHandler := apihttp.NewConfigHandler(selector)
	healthHandler := apihttp.NewHealthHandler(logger, store)
	router := apihttp.NewRouter(logger, m, chatHandler, configHandler, healthHandler, cfg.StaticDir)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server",
		zap.String("port", cfg.HTTPPort),
		zap.String("driver", store.Driver),
		zap.Int("groups_starting_id", cfg.GroupsStartingID),
		zap.Int("mock_sample_range", sampleRange),
		zap.Int("mock_pool_size", poolSize),
	)

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Fatal("server error", zap.Error(err))
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown", zap.Error(err))
		}
	}
}
