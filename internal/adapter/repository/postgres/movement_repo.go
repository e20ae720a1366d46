package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/edufarias/bancoledger/internal/domain"
	"github.com/edufarias/bancoledger/internal/usecase"
)

// Balance is derived by summation over the append-only movements table.
// It is computed fresh on every call; nothing is persisted or cached.
const sumMovementsSQL = `
SELECT COALESCE(SUM(CASE WHEN type = 'C' THEN amount ELSE 0 END), 0)
     - COALESCE(SUM(CASE WHEN type = 'D' THEN amount ELSE 0 END), 0)
FROM movements
WHERE account_id = $1`

// MovementRepository implements usecase.MovementRepository.
type MovementRepository struct {
	pool *pgxpool.Pool
}

// NewMovementRepository creates a new MovementRepository.
func NewMovementRepository(pool *pgxpool.Pool) *MovementRepository {
	return &MovementRepository{pool: pool}
}

// Append inserts one ledger entry inside the given transaction.
func (r *MovementRepository) Append(ctx context.Context, tx usecase.Transaction, movement *domain.Movement) error {
	pgxTx := tx.(*Tx).PgxTx()

	amount, err := decimalToNumeric(movement.Amount)
	if err != nil {
		return err
	}

	_, err = pgxTx.Exec(ctx,
		`INSERT INTO movements (id, account_id, type, amount, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		movement.ID,
		movement.AccountID,
		string(movement.Type),
		amount,
		timeToPgTimestamptz(movement.CreatedAt),
	)

	return err
}

// SumByAccount derives the account balance from its movements.
func (r *MovementRepository) SumByAccount(ctx context.Context, accountID string) (decimal.Decimal, error) {
	return sumMovements(ctx, r.pool, accountID)
}

// SumByAccountTx derives the balance inside a transaction, observing the
// transaction's own uncommitted appends.
func (r *MovementRepository) SumByAccountTx(ctx context.Context, tx usecase.Transaction, accountID string) (decimal.Decimal, error) {
	return sumMovements(ctx, tx.(*Tx).PgxTx(), accountID)
}

type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func sumMovements(ctx context.Context, q rowQuerier, accountID string) (decimal.Decimal, error) {
	var sum pgtype.Numeric

	err := q.QueryRow(ctx, sumMovementsSQL, accountID).Scan(&sum)
	if err != nil {
		return decimal.Zero, err
	}

	return numericToDecimal(sum), nil
}

// ListByAccount retrieves an account's ledger entries, newest first.
func (r *MovementRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Movement, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, account_id, type, amount, created_at
		 FROM movements
		 WHERE account_id = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2 OFFSET $3`,
		accountID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	movements := []*domain.Movement{}
	for rows.Next() {
		var (
			m         domain.Movement
			mType     string
			amount    pgtype.Numeric
			createdAt pgtype.Timestamptz
		)
		if err := rows.Scan(&m.ID, &m.AccountID, &mType, &amount, &createdAt); err != nil {
			return nil, err
		}

		m.Type = domain.MovementType(mType)
		m.Amount = numericToDecimal(amount)
		m.CreatedAt = createdAt.Time
		movements = append(movements, &m)
	}

	return movements, rows.Err()
}
