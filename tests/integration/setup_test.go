package integration

import (
	"context"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	adaptershttp "github.com/edufarias/bancoledger/internal/adapter/http"
	"github.com/edufarias/bancoledger/internal/adapter/http/handler"
	"github.com/edufarias/bancoledger/internal/adapter/http/middleware"
	"github.com/edufarias/bancoledger/internal/adapter/repository/postgres"
	redisrepo "github.com/edufarias/bancoledger/internal/adapter/repository/redis"
	"github.com/edufarias/bancoledger/internal/infrastructure/auth"
	infraredis "github.com/edufarias/bancoledger/internal/infrastructure/redis"
	"github.com/edufarias/bancoledger/internal/usecase"
	"github.com/edufarias/bancoledger/tests/testutil"
)

// newAPIServer wires the full router against the test database, the way
// cmd/server does in production.
func newAPIServer(t *testing.T, testDB *testutil.TestDB, fee decimal.Decimal) http.Handler {
	t.Helper()

	ctx := context.Background()

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}
	redisClient, err := infraredis.NewClient(ctx, redisURL)
	if err != nil {
		t.Fatalf("failed to connect to redis: %v", err)
	}
	t.Cleanup(func() { redisClient.Close() })

	pool := testDB.Pool
	accountRepo := postgres.NewAccountRepository(pool)
	movementRepo := postgres.NewMovementRepository(pool)
	transferRepo := postgres.NewTransferRepository(pool)
	idemRepo := postgres.NewIdempotencyRepository(pool)
	txManager := postgres.NewTxManager(pool)
	idGen := postgres.NewULIDGenerator()
	numberGen := postgres.NewRandomNumberGenerator()
	clock := postgres.NewSystemClock()
	retrier := postgres.NewRetrier(zerolog.Nop())

	accountUC := usecase.NewAccountUseCase(accountRepo, idGen, numberGen, clock)
	movementUC := usecase.NewMovementUseCase(txManager, accountRepo, movementRepo, idemRepo, idGen, clock, retrier)
	transferUC := usecase.NewTransferUseCase(txManager, accountRepo, movementRepo, transferRepo, idemRepo, idGen, clock, retrier, fee)

	jwtManager := auth.NewJWTManager("integration-test-secret", time.Hour)
	replayCache := redisrepo.NewReplayCache(redisClient)

	return adaptershttp.NewRouter(adaptershttp.RouterConfig{
		AccountHandler:   handler.NewAccountHandler(accountUC, jwtManager),
		MovementHandler:  handler.NewMovementHandler(movementUC),
		TransferHandler:  handler.NewTransferHandler(transferUC),
		HealthHandler:    handler.NewHealthHandler(pool, redisClient),
		JWTManager:       jwtManager,
		ReplayMiddleware: middleware.NewIdempotencyMiddleware(replayCache, time.Minute),
		Logger:           zerolog.Nop(),
	})
}
