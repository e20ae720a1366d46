package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/edufarias/bancoledger/internal/domain"
	"github.com/edufarias/bancoledger/internal/usecase"
)

const pgErrUniqueViolation = "23505"

const accountColumns = "id, number, holder_name, cpf, password_hash, active, created_at"

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

// Create creates a new account. Unique constraint violations are reported as
// domain errors so the use case can distinguish CPF from number collisions.
func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO accounts (id, number, holder_name, cpf, password_hash, active, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		account.ID,
		account.Number,
		account.HolderName,
		account.CPF,
		account.PasswordHash,
		account.Active,
		timeToPgTimestamptz(account.CreatedAt),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgErrUniqueViolation {
			switch pgErr.ConstraintName {
			case "accounts_cpf_key":
				return domain.ErrDuplicateCPF
			case "accounts_number_key":
				return domain.ErrDuplicateAccountNumber
			}
		}

		return err
	}

	return nil
}

// FindByNumber retrieves an account by its number. Returns (nil, nil) when no
// account matches.
func (r *AccountRepository) FindByNumber(ctx context.Context, number int64) (*domain.Account, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE number = $1`, number)

	return scanAccount(row)
}

// FindByCPF retrieves an account by CPF. Returns (nil, nil) when no account
// matches.
func (r *AccountRepository) FindByCPF(ctx context.Context, cpf string) (*domain.Account, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE cpf = $1`, cpf)

	return scanAccount(row)
}

// FindByNumberForUpdate retrieves an account by number with a FOR UPDATE lock
// held until the transaction ends. Returns (nil, nil) when no account matches.
func (r *AccountRepository) FindByNumberForUpdate(ctx context.Context, tx usecase.Transaction, number int64) (*domain.Account, error) {
	pgxTx := tx.(*Tx).PgxTx()

	row := pgxTx.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE number = $1 FOR UPDATE`, number)

	return scanAccount(row)
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var (
		account   domain.Account
		createdAt pgtype.Timestamptz
	)

	err := row.Scan(
		&account.ID,
		&account.Number,
		&account.HolderName,
		&account.CPF,
		&account.PasswordHash,
		&account.Active,
		&createdAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}

		return nil, err
	}

	account.CreatedAt = createdAt.Time

	return &account, nil
}
