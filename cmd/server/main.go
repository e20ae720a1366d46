package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	httpAdapter "github.com/edufarias/bancoledger/internal/adapter/http"
	"github.com/edufarias/bancoledger/internal/adapter/http/handler"
	"github.com/edufarias/bancoledger/internal/adapter/http/middleware"
	postgresRepo "github.com/edufarias/bancoledger/internal/adapter/repository/postgres"
	redisRepo "github.com/edufarias/bancoledger/internal/adapter/repository/redis"
	"github.com/edufarias/bancoledger/internal/infrastructure/auth"
	"github.com/edufarias/bancoledger/internal/infrastructure/config"
	"github.com/edufarias/bancoledger/internal/infrastructure/logger"
	"github.com/edufarias/bancoledger/internal/infrastructure/postgres"
	"github.com/edufarias/bancoledger/internal/infrastructure/redis"
	"github.com/edufarias/bancoledger/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Setup logger
	appLogger := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})
	log.Logger = appLogger

	ctx := context.Background()

	// Connect to PostgreSQL
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	// Run migrations
	if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	fee, err := cfg.Fee()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid transfer fee")
	}

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	accountRepo := postgresRepo.NewAccountRepository(pool)
	movementRepo := postgresRepo.NewMovementRepository(pool)
	transferRepo := postgresRepo.NewTransferRepository(pool)
	idemRepo := postgresRepo.NewIdempotencyRepository(pool)
	replayCache := redisRepo.NewReplayCache(redisClient)
	idGen := postgresRepo.NewULIDGenerator()
	numberGen := postgresRepo.NewRandomNumberGenerator()
	clock := postgresRepo.NewSystemClock()
	retrier := postgresRepo.NewRetrier(appLogger)

	// Initialize use cases
	accountUC := usecase.NewAccountUseCase(accountRepo, idGen, numberGen, clock)
	movementUC := usecase.NewMovementUseCase(txManager, accountRepo, movementRepo, idemRepo, idGen, clock, retrier)
	movementUC.SetTransactionTimeout(cfg.DatabaseTimeout)
	transferUC := usecase.NewTransferUseCase(txManager, accountRepo, movementRepo, transferRepo, idemRepo, idGen, clock, retrier, fee)
	transferUC.SetTransactionTimeout(cfg.DatabaseTimeout)

	// Initialize handlers
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)
	accountHandler := handler.NewAccountHandler(accountUC, jwtManager)
	movementHandler := handler.NewMovementHandler(movementUC)
	transferHandler := handler.NewTransferHandler(transferUC)
	healthHandler := handler.NewHealthHandler(pool, redisClient)

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AccountHandler:   accountHandler,
		MovementHandler:  movementHandler,
		TransferHandler:  transferHandler,
		HealthHandler:    healthHandler,
		JWTManager:       jwtManager,
		ReplayMiddleware: middleware.NewIdempotencyMiddleware(replayCache, cfg.ReplayCacheTTL),
		LoginLimiter:     middleware.NewRateLimiter(cfg.LoginRateLimit, cfg.LoginRateBurst),
		Logger:           appLogger,
	})

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
