package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/edufarias/bancoledger/internal/domain"
	"github.com/edufarias/bancoledger/internal/usecase"
)

// IdempotencyRepository implements usecase.IdempotencyRepository on the
// idempotency_keys table. Keys are permanent; the primary-key constraint is
// what resolves races between identical concurrent requests.
type IdempotencyRepository struct {
	pool *pgxpool.Pool
}

// NewIdempotencyRepository creates a new IdempotencyRepository.
func NewIdempotencyRepository(pool *pgxpool.Pool) *IdempotencyRepository {
	return &IdempotencyRepository{pool: pool}
}

const existsKeySQL = `SELECT EXISTS (SELECT 1 FROM idempotency_keys WHERE key = $1)`

// Exists reports whether the request key has been processed.
func (r *IdempotencyRepository) Exists(ctx context.Context, key string) (bool, error) {
	var exists bool

	err := r.pool.QueryRow(ctx, existsKeySQL, key).Scan(&exists)

	return exists, err
}

// ExistsTx reports whether the key has been processed, observed from inside
// the given transaction.
func (r *IdempotencyRepository) ExistsTx(ctx context.Context, tx usecase.Transaction, key string) (bool, error) {
	pgxTx := tx.(*Tx).PgxTx()

	var exists bool

	err := pgxTx.QueryRow(ctx, existsKeySQL, key).Scan(&exists)

	return exists, err
}

// Record writes the key with the request and result snapshots inside the
// given transaction, so the key becomes visible atomically with the ledger
// writes it guards. A key conflict surfaces as domain.ErrDuplicateRequest.
func (r *IdempotencyRepository) Record(ctx context.Context, tx usecase.Transaction, record *domain.IdempotencyRecord) error {
	pgxTx := tx.(*Tx).PgxTx()

	_, err := pgxTx.Exec(ctx,
		`INSERT INTO idempotency_keys (key, request, result, created_at)
		 VALUES ($1, $2, $3, $4)`,
		record.Key,
		record.Request,
		record.Result,
		timeToPgTimestamptz(record.CreatedAt),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgErrUniqueViolation {
			return domain.ErrDuplicateRequest
		}

		return err
	}

	return nil
}
