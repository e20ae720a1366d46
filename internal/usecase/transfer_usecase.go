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

// TransferUseCase orchestrates a transfer as a sequence of ledger writes:
// debit origin, credit destination, optional fee debit, transfer metadata,
// idempotency record. All five succeed or none take visible effect.
type TransferUseCase struct {
	txManager    TransactionManager
	accountRepo  AccountRepository
	movementRepo MovementRepository
	transferRepo TransferRepository
	idemRepo     IdempotencyRepository
	idGen        IDGenerator
	clock        Clock
	retrier      Retrier
	fee          decimal.Decimal
	txTimeout    time.Duration
}

// NewTransferUseCase creates a new TransferUseCase. The fee is a single
// configured value charged on every transfer; zero disables it.
func NewTransferUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	movementRepo MovementRepository,
	transferRepo TransferRepository,
	idemRepo IdempotencyRepository,
	idGen IDGenerator,
	clock Clock,
	retrier Retrier,
	fee decimal.Decimal,
) *TransferUseCase {
	return &TransferUseCase{
		txManager:    txManager,
		accountRepo:  accountRepo,
		movementRepo: movementRepo,
		transferRepo: transferRepo,
		idemRepo:     idemRepo,
		idGen:        idGen,
		clock:        clock,
		retrier:      retrier,
		fee:          fee,
		txTimeout:    DefaultTransactionTimeout,
	}
}

// SetTransactionTimeout overrides the deadline applied to each ledger
// transaction. Non-positive values keep the default.
func (uc *TransferUseCase) SetTransactionTimeout(d time.Duration) {
	if d > 0 {
		uc.txTimeout = d
	}
}

// TransferInput represents a transfer request.
type TransferInput struct {
	RequestID         string
	OriginNumber      int64
	DestinationNumber int64
	Amount            decimal.Decimal
}

// Transfer executes a transfer between two accounts. Business rule failures
// come back as a non-success TransferResult with a nil error; only storage
// faults travel the error return. Replaying a processed request key returns
// success with an "already processed" indication and no new ledger writes.
func (uc *TransferUseCase) Transfer(ctx context.Context, input TransferInput) (*domain.TransferResult, error) {
	if strings.TrimSpace(input.RequestID) == "" {
		return failure(input, domain.CodeMissingRequestID, "request id is required"), nil
	}

	// Fast-path replay check before opening a transaction. The authoritative
	// check runs again under the account locks.
	exists, err := uc.idemRepo.Exists(ctx, input.RequestID)
	if err != nil {
		return nil, fmt.Errorf("idempotency lookup: %w", err)
	}
	if exists {
		return alreadyProcessed(input), nil
	}

	if input.OriginNumber == input.DestinationNumber {
		return failure(input, domain.CodeSameAccount, "transfer to the same account is not allowed"), nil
	}

	var result *domain.TransferResult

	err = uc.retrier.Retry(ctx, func() error {
		r, err := uc.transferOnce(ctx, input)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// transferOnce runs one attempt of the transfer inside a single transaction.
// The account rows are locked in ascending number order before the balance is
// read, so concurrent operations on the same accounts serialize here.
func (uc *TransferUseCase) transferOnce(ctx context.Context, input TransferInput) (*domain.TransferResult, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.txTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	accounts := make(map[int64]*domain.Account, 2)
	for _, number := range lockOrder(input.OriginNumber, input.DestinationNumber) {
		account, err := uc.accountRepo.FindByNumberForUpdate(ctx, tx, number)
		if err != nil {
			return nil, fmt.Errorf("lock account %d: %w", number, err)
		}
		accounts[number] = account
	}

	// A concurrent twin may have committed between the fast-path check and
	// the locks; re-check under them.
	exists, err := uc.idemRepo.ExistsTx(ctx, tx, input.RequestID)
	if err != nil {
		return nil, fmt.Errorf("idempotency lookup: %w", err)
	}
	if exists {
		return alreadyProcessed(input), nil
	}

	origin := accounts[input.OriginNumber]
	if origin == nil {
		return failure(input, domain.CodeOriginNotFound, "origin account not found"), nil
	}

	destination := accounts[input.DestinationNumber]
	if destination == nil {
		return failure(input, domain.CodeDestinationNotFound, "destination account not found"), nil
	}

	if !origin.Active {
		return failure(input, domain.CodeAccountInactive, "origin account is inactive"), nil
	}
	if !destination.Active {
		return failure(input, domain.CodeAccountInactive, "destination account is inactive"), nil
	}

	if input.Amount.LessThanOrEqual(decimal.Zero) {
		return failure(input, domain.CodeInvalidAmount, "amount must be positive"), nil
	}

	fee := uc.fee.Round(2)
	totalDebit := input.Amount.Add(fee)

	balance, err := uc.movementRepo.SumByAccountTx(ctx, tx, origin.ID)
	if err != nil {
		return nil, fmt.Errorf("origin balance: %w", err)
	}
	if balance.LessThan(totalDebit) {
		return failure(input, domain.CodeInsufficientBalance,
			"insufficient balance for the transfer including the fee"), nil
	}

	now := uc.clock.Now()

	debit := &domain.Movement{
		ID:        uc.idGen.Generate(),
		AccountID: origin.ID,
		Type:      domain.MovementDebit,
		Amount:    input.Amount,
		CreatedAt: now,
	}
	if err := uc.movementRepo.Append(ctx, tx, debit); err != nil {
		return nil, fmt.Errorf("append debit: %w", err)
	}

	credit := &domain.Movement{
		ID:        uc.idGen.Generate(),
		AccountID: destination.ID,
		Type:      domain.MovementCredit,
		Amount:    input.Amount,
		CreatedAt: now,
	}
	if err := uc.movementRepo.Append(ctx, tx, credit); err != nil {
		return nil, fmt.Errorf("append credit: %w", err)
	}

	if fee.IsPositive() {
		feeDebit := &domain.Movement{
			ID:        uc.idGen.Generate(),
			AccountID: origin.ID,
			Type:      domain.MovementDebit,
			Amount:    fee,
			CreatedAt: now,
		}
		if err := uc.movementRepo.Append(ctx, tx, feeDebit); err != nil {
			return nil, fmt.Errorf("append fee debit: %w", err)
		}

		// The fee record is metadata only; the balance effect lives solely in
		// the debit movement above.
		feeRecord := &domain.Fee{
			ID:        uc.idGen.Generate(),
			AccountID: origin.ID,
			Amount:    fee,
			CreatedAt: now,
		}
		if err := uc.transferRepo.AppendFee(ctx, tx, feeRecord); err != nil {
			return nil, fmt.Errorf("append fee record: %w", err)
		}
	}

	transfer := &domain.Transfer{
		ID:                   uc.idGen.Generate(),
		OriginAccountID:      origin.ID,
		DestinationAccountID: destination.ID,
		Amount:               input.Amount,
		CreatedAt:            now,
	}
	if err := uc.transferRepo.Append(ctx, tx, transfer); err != nil {
		return nil, fmt.Errorf("append transfer record: %w", err)
	}

	record, err := uc.buildRecord(input, fee, now)
	if err != nil {
		return nil, err
	}
	if err := uc.idemRepo.Record(ctx, tx, record); err != nil {
		if errors.Is(err, domain.ErrDuplicateRequest) {
			// Lost the race to an identical request; our writes roll back.
			return alreadyProcessed(input), nil
		}
		return nil, fmt.Errorf("record idempotency key: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transfer: %w", err)
	}

	return &domain.TransferResult{
		Success:           true,
		Code:              domain.CodeOK,
		Message:           "transfer completed",
		OriginNumber:      input.OriginNumber,
		DestinationNumber: input.DestinationNumber,
		Amount:            input.Amount,
	}, nil
}

func (uc *TransferUseCase) buildRecord(input TransferInput, fee decimal.Decimal, now time.Time) (*domain.IdempotencyRecord, error) {
	request, err := json.Marshal(struct {
		Origin      int64           `json:"origin"`
		Destination int64           `json:"destination"`
		Amount      decimal.Decimal `json:"amount"`
		Fee         decimal.Decimal `json:"fee"`
	}{input.OriginNumber, input.DestinationNumber, input.Amount, fee})
	if err != nil {
		return nil, fmt.Errorf("serialize request snapshot: %w", err)
	}

	result, err := json.Marshal(struct {
		Status string          `json:"status"`
		Amount decimal.Decimal `json:"amount"`
	}{"OK", input.Amount})
	if err != nil {
		return nil, fmt.Errorf("serialize result snapshot: %w", err)
	}

	return &domain.IdempotencyRecord{
		Key:       input.RequestID,
		Request:   string(request),
		Result:    string(result),
		CreatedAt: now,
	}, nil
}

// GetTransfer retrieves a transfer metadata record by ID.
func (uc *TransferUseCase) GetTransfer(ctx context.Context, id string) (*domain.Transfer, error) {
	return uc.transferRepo.GetByID(ctx, id)
}

// ListTransfersByAccountInput represents input for listing transfers.
type ListTransfersByAccountInput struct {
	AccountID string
	Limit     int
	Offset    int
}

// ListTransfersByAccount lists transfer records touching an account.
func (uc *TransferUseCase) ListTransfersByAccount(ctx context.Context, input ListTransfersByAccountInput) ([]*domain.Transfer, error) {
	if input.Limit <= 0 {
		input.Limit = 20
	}
	if input.Limit > 100 {
		input.Limit = 100
	}

	return uc.transferRepo.ListByAccount(ctx, input.AccountID, input.Limit, input.Offset)
}

// lockOrder returns the account numbers in ascending order so that every
// operation acquires row locks in the same order (deadlock prevention).
func lockOrder(a, b int64) []int64 {
	if a < b {
		return []int64{a, b}
	}
	return []int64{b, a}
}

func failure(input TransferInput, code domain.ResultCode, message string) *domain.TransferResult {
	return &domain.TransferResult{
		Success:           false,
		Code:              code,
		Message:           message,
		OriginNumber:      input.OriginNumber,
		DestinationNumber: input.DestinationNumber,
		Amount:            input.Amount,
	}
}

func alreadyProcessed(input TransferInput) *domain.TransferResult {
	return &domain.TransferResult{
		Success:           true,
		Code:              domain.CodeAlreadyProcessed,
		Message:           "operation already processed",
		OriginNumber:      input.OriginNumber,
		DestinationNumber: input.DestinationNumber,
		Amount:            input.Amount,
	}
}
