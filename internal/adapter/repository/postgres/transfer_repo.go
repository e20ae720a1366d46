package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/edufarias/bancoledger/internal/domain"
	"github.com/edufarias/bancoledger/internal/usecase"
)

// TransferRepository implements usecase.TransferRepository. Transfers and
// fees are metadata records; the money movement lives in the movements table.
type TransferRepository struct {
	pool *pgxpool.Pool
}

// NewTransferRepository creates a new TransferRepository.
func NewTransferRepository(pool *pgxpool.Pool) *TransferRepository {
	return &TransferRepository{pool: pool}
}

// Append inserts a transfer metadata record inside the given transaction.
func (r *TransferRepository) Append(ctx context.Context, tx usecase.Transaction, transfer *domain.Transfer) error {
	pgxTx := tx.(*Tx).PgxTx()

	amount, err := decimalToNumeric(transfer.Amount)
	if err != nil {
		return err
	}

	_, err = pgxTx.Exec(ctx,
		`INSERT INTO transfers (id, origin_account_id, destination_account_id, amount, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		transfer.ID,
		transfer.OriginAccountID,
		transfer.DestinationAccountID,
		amount,
		timeToPgTimestamptz(transfer.CreatedAt),
	)

	return err
}

// AppendFee inserts a fee metadata record inside the given transaction.
func (r *TransferRepository) AppendFee(ctx context.Context, tx usecase.Transaction, fee *domain.Fee) error {
	pgxTx := tx.(*Tx).PgxTx()

	amount, err := decimalToNumeric(fee.Amount)
	if err != nil {
		return err
	}

	_, err = pgxTx.Exec(ctx,
		`INSERT INTO fees (id, account_id, amount, created_at)
		 VALUES ($1, $2, $3, $4)`,
		fee.ID,
		fee.AccountID,
		amount,
		timeToPgTimestamptz(fee.CreatedAt),
	)

	return err
}

// GetByID retrieves a transfer record by ID.
func (r *TransferRepository) GetByID(ctx context.Context, id string) (*domain.Transfer, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, origin_account_id, destination_account_id, amount, created_at
		 FROM transfers WHERE id = $1`, id)

	transfer, err := scanTransfer(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransferNotFound
		}

		return nil, err
	}

	return transfer, nil
}

// ListByAccount lists transfer records where the account is origin or
// destination, newest first.
func (r *TransferRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Transfer, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, origin_account_id, destination_account_id, amount, created_at
		 FROM transfers
		 WHERE origin_account_id = $1 OR destination_account_id = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2 OFFSET $3`,
		accountID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	transfers := []*domain.Transfer{}
	for rows.Next() {
		transfer, err := scanTransfer(rows)
		if err != nil {
			return nil, err
		}
		transfers = append(transfers, transfer)
	}

	return transfers, rows.Err()
}

func scanTransfer(row pgx.Row) (*domain.Transfer, error) {
	var (
		t         domain.Transfer
		amount    pgtype.Numeric
		createdAt pgtype.Timestamptz
	)

	err := row.Scan(&t.ID, &t.OriginAccountID, &t.DestinationAccountID, &amount, &createdAt)
	if err != nil {
		return nil, err
	}

	t.Amount = numericToDecimal(amount)
	t.CreatedAt = createdAt.Time

	return &t, nil
}
