package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/edufarias/bancoledger/internal/domain"
)

// AccountRepository is the account directory. Lookups return (nil, nil) when
// no account matches; they never report "not found" as an error.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	FindByNumber(ctx context.Context, number int64) (*domain.Account, error)
	FindByCPF(ctx context.Context, cpf string) (*domain.Account, error)
	// FindByNumberForUpdate locks the account row for the duration of the
	// transaction. All balance-affecting operations go through this lock.
	FindByNumberForUpdate(ctx context.Context, tx Transaction, number int64) (*domain.Account, error)
}

// MovementRepository is the append-only ledger store.
type MovementRepository interface {
	Append(ctx context.Context, tx Transaction, movement *domain.Movement) error
	// SumByAccount computes sum(credits) - sum(debits) fresh on every call.
	SumByAccount(ctx context.Context, accountID string) (decimal.Decimal, error)
	SumByAccountTx(ctx context.Context, tx Transaction, accountID string) (decimal.Decimal, error)
	ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Movement, error)
}

// TransferRepository stores transfer and fee metadata records.
type TransferRepository interface {
	Append(ctx context.Context, tx Transaction, transfer *domain.Transfer) error
	AppendFee(ctx context.Context, tx Transaction, fee *domain.Fee) error
	GetByID(ctx context.Context, id string) (*domain.Transfer, error)
	ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Transfer, error)
}

// IdempotencyRepository stores processed request keys. Record must run inside
// the same transaction as the ledger writes it guards; a primary-key conflict
// surfaces as domain.ErrDuplicateRequest.
type IdempotencyRepository interface {
	Exists(ctx context.Context, key string) (bool, error)
	ExistsTx(ctx context.Context, tx Transaction, key string) (bool, error)
	Record(ctx context.Context, tx Transaction, record *domain.IdempotencyRecord) error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique entity IDs.
type IDGenerator interface {
	Generate() string
}

// NumberGenerator generates human-facing account numbers. The generation
// strategy is an external policy; tests supply deterministic values.
type NumberGenerator interface {
	Next() int64
}

// Clock supplies timestamps so tests can pin time.
type Clock interface {
	Now() time.Time
}

// Retrier re-runs an operation on transient storage conflicts.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}
