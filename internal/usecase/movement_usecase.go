package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/edufarias/bancoledger/internal/domain"
)

// MovementUseCase records single ledger entries and derives balances.
type MovementUseCase struct {
	txManager    TransactionManager
	accountRepo  AccountRepository
	movementRepo MovementRepository
	idemRepo     IdempotencyRepository
	idGen        IDGenerator
	clock        Clock
	retrier      Retrier
	txTimeout    time.Duration
}

// NewMovementUseCase creates a new MovementUseCase.
func NewMovementUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	movementRepo MovementRepository,
	idemRepo IdempotencyRepository,
	idGen IDGenerator,
	clock Clock,
	retrier Retrier,
) *MovementUseCase {
	return &MovementUseCase{
		txManager:    txManager,
		accountRepo:  accountRepo,
		movementRepo: movementRepo,
		idemRepo:     idemRepo,
		idGen:        idGen,
		clock:        clock,
		retrier:      retrier,
		txTimeout:    DefaultTransactionTimeout,
	}
}

// SetTransactionTimeout overrides the deadline applied to each ledger
// transaction. Non-positive values keep the default.
func (uc *MovementUseCase) SetTransactionTimeout(d time.Duration) {
	if d > 0 {
		uc.txTimeout = d
	}
}

// MovementInput represents a request to append one ledger entry.
type MovementInput struct {
	RequestID     string
	AccountNumber int64
	Type          domain.MovementType
	Amount        decimal.Decimal
}

// AddMovement appends a single credit or debit. A replayed request key is a
// successful no-op. Debit sufficiency is re-validated under the account lock
// immediately before the append.
func (uc *MovementUseCase) AddMovement(ctx context.Context, input MovementInput) error {
	if strings.TrimSpace(input.RequestID) == "" {
		return domain.ErrMissingRequestID
	}

	exists, err := uc.idemRepo.Exists(ctx, input.RequestID)
	if err != nil {
		return fmt.Errorf("idempotency lookup: %w", err)
	}
	if exists {
		return nil
	}

	return uc.retrier.Retry(ctx, func() error {
		return uc.addMovementOnce(ctx, input)
	})
}

func (uc *MovementUseCase) addMovementOnce(ctx context.Context, input MovementInput) error {
	ctx, cancel := context.WithTimeout(ctx, uc.txTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	account, err := uc.accountRepo.FindByNumberForUpdate(ctx, tx, input.AccountNumber)
	if err != nil {
		return fmt.Errorf("lock account %d: %w", input.AccountNumber, err)
	}

	if err := domain.ValidateMovement(account, input.Type, input.Amount); err != nil {
		return err
	}

	exists, err := uc.idemRepo.ExistsTx(ctx, tx, input.RequestID)
	if err != nil {
		return fmt.Errorf("idempotency lookup: %w", err)
	}
	if exists {
		return nil
	}

	if input.Type == domain.MovementDebit {
		balance, err := uc.movementRepo.SumByAccountTx(ctx, tx, account.ID)
		if err != nil {
			return fmt.Errorf("account balance: %w", err)
		}
		if balance.LessThan(input.Amount) {
			return domain.ErrInsufficientBalance
		}
	}

	movement := &domain.Movement{
		ID:        uc.idGen.Generate(),
		AccountID: account.ID,
		Type:      input.Type,
		Amount:    input.Amount,
		CreatedAt: uc.clock.Now(),
	}
	if err := uc.movementRepo.Append(ctx, tx, movement); err != nil {
		return fmt.Errorf("append movement: %w", err)
	}

	record, err := uc.buildRecord(input, movement.ID)
	if err != nil {
		return err
	}
	if err := uc.idemRepo.Record(ctx, tx, record); err != nil {
		if errors.Is(err, domain.ErrDuplicateRequest) {
			// An identical concurrent request committed first; this attempt
			// rolls back and the outcome is the same no-op success.
			return nil
		}
		return fmt.Errorf("record idempotency key: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit movement: %w", err)
	}

	return nil
}

func (uc *MovementUseCase) buildRecord(input MovementInput, movementID string) (*domain.IdempotencyRecord, error) {
	request, err := json.Marshal(struct {
		Account int64               `json:"account"`
		Type    domain.MovementType `json:"type"`
		Amount  decimal.Decimal     `json:"amount"`
	}{input.AccountNumber, input.Type, input.Amount})
	if err != nil {
		return nil, fmt.Errorf("serialize request snapshot: %w", err)
	}

	result, err := json.Marshal(struct {
		Status     string `json:"status"`
		MovementID string `json:"movement_id"`
	}{"OK", movementID})
	if err != nil {
		return nil, fmt.Errorf("serialize result snapshot: %w", err)
	}

	return &domain.IdempotencyRecord{
		Key:       input.RequestID,
		Request:   string(request),
		Result:    string(result),
		CreatedAt: uc.clock.Now(),
	}, nil
}

// GetBalance derives the current balance of an account by summing its
// movements. Nothing is cached; concurrent writers may append at any time.
func (uc *MovementUseCase) GetBalance(ctx context.Context, accountNumber int64) (decimal.Decimal, error) {
	account, err := uc.accountRepo.FindByNumber(ctx, accountNumber)
	if err != nil {
		return decimal.Zero, fmt.Errorf("find account %d: %w", accountNumber, err)
	}
	if account == nil {
		return decimal.Zero, domain.ErrAccountNotFound
	}

	return uc.movementRepo.SumByAccount(ctx, account.ID)
}

// ListMovementsInput represents input for listing ledger entries.
type ListMovementsInput struct {
	AccountNumber int64
	Limit         int
	Offset        int
}

// ListMovements lists the ledger entries of an account, newest first.
func (uc *MovementUseCase) ListMovements(ctx context.Context, input ListMovementsInput) ([]*domain.Movement, error) {
	if input.Limit <= 0 {
		input.Limit = 20
	}
	if input.Limit > 100 {
		input.Limit = 100
	}

	account, err := uc.accountRepo.FindByNumber(ctx, input.AccountNumber)
	if err != nil {
		return nil, fmt.Errorf("find account %d: %w", input.AccountNumber, err)
	}
	if account == nil {
		return nil, domain.ErrAccountNotFound
	}

	return uc.movementRepo.ListByAccount(ctx, account.ID, input.Limit, input.Offset)
}
