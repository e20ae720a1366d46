package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"

	"github.com/edufarias/bancoledger/internal/domain"
	"github.com/edufarias/bancoledger/internal/usecase"
	"github.com/edufarias/bancoledger/internal/usecase/mocks"
)

type transferFixture struct {
	accountRepo  *mocks.MockAccountRepository
	movementRepo *mocks.MockMovementRepository
	transferRepo *mocks.MockTransferRepository
	idemRepo     *mocks.MockIdempotencyRepository
	uc           *usecase.TransferUseCase
}

func newTransferFixture(t *testing.T, fee decimal.Decimal) *transferFixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	idGen := mocks.NewMockIDGenerator(ctrl)
	counter := 0
	idGen.EXPECT().Generate().DoAndReturn(func() string {
		counter++
		return fmt.Sprintf("id-%03d", counter)
	}).AnyTimes()

	clock := mocks.NewMockClock(ctrl)
	clock.EXPECT().Now().Return(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)).AnyTimes()

	f := &transferFixture{
		accountRepo:  mocks.NewMockAccountRepository(),
		movementRepo: mocks.NewMockMovementRepository(),
		transferRepo: mocks.NewMockTransferRepository(),
		idemRepo:     mocks.NewMockIdempotencyRepository(),
	}
	f.uc = usecase.NewTransferUseCase(
		mocks.NewMockTransactionManager(),
		f.accountRepo,
		f.movementRepo,
		f.transferRepo,
		f.idemRepo,
		idGen,
		clock,
		mocks.NewMockRetrier(),
		fee,
	)

	return f
}

func TestTransferUseCase_TransactionTimeout(t *testing.T) {
	ctrl := gomock.NewController(t)

	idGen := mocks.NewMockIDGenerator(ctrl)
	counter := 0
	idGen.EXPECT().Generate().DoAndReturn(func() string {
		counter++
		return fmt.Sprintf("id-%03d", counter)
	}).AnyTimes()

	clock := mocks.NewMockClock(ctrl)
	clock.EXPECT().Now().Return(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)).AnyTimes()

	txManager := mocks.NewMockTransactionManager()
	var deadline time.Time
	var hasDeadline bool
	txManager.BeginFunc = func(ctx context.Context) (usecase.Transaction, error) {
		deadline, hasDeadline = ctx.Deadline()
		return &mocks.MockTransaction{}, nil
	}

	accountRepo := mocks.NewMockAccountRepository()
	movementRepo := mocks.NewMockMovementRepository()
	accountRepo.Seed(&domain.Account{ID: "acc-1", Number: 10001, Active: true})
	accountRepo.Seed(&domain.Account{ID: "acc-2", Number: 10002, Active: true})
	movementRepo.Append(context.Background(), &mocks.MockTransaction{}, &domain.Movement{
		ID:        "seed-acc-1",
		AccountID: "acc-1",
		Type:      domain.MovementCredit,
		Amount:    decimal.NewFromInt(100),
	})

	uc := usecase.NewTransferUseCase(
		txManager,
		accountRepo,
		movementRepo,
		mocks.NewMockTransferRepository(),
		mocks.NewMockIdempotencyRepository(),
		idGen,
		clock,
		mocks.NewMockRetrier(),
		decimal.Zero,
	)
	uc.SetTransactionTimeout(42 * time.Second)

	start := time.Now()
	result, err := uc.Transfer(context.Background(), usecase.TransferInput{
		RequestID:         "req-timeout",
		OriginNumber:      10001,
		DestinationNumber: 10002,
		Amount:            decimal.NewFromInt(10),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Success {
		t.Fatalf("expected success, got %+v", result)
	}

	if !hasDeadline {
		t.Fatal("expected the transaction context to carry a deadline")
	}
	// The default is 10s; a deadline past that proves the override took
	if d := deadline.Sub(start); d < 20*time.Second || d > 43*time.Second {
		t.Errorf("expected deadline around 42s out, got %s", d)
	}
}

// seedAccount registers an active account and credits it with the given
// opening balance.
func (f *transferFixture) seedAccount(id string, number int64, balance decimal.Decimal) {
	f.accountRepo.Seed(&domain.Account{
		ID:     id,
		Number: number,
		Active: true,
	})
	if balance.IsPositive() {
		f.movementRepo.Append(context.Background(), &mocks.MockTransaction{}, &domain.Movement{
			ID:        "seed-" + id,
			AccountID: id,
			Type:      domain.MovementCredit,
			Amount:    balance,
		})
	}
}

func TestTransferUseCase_Transfer(t *testing.T) {
	t.Run("successful transfer debits amount plus fee", func(t *testing.T) {
		f := newTransferFixture(t, decimal.NewFromInt(1))
		f.seedAccount("acc-origin", 11111, decimal.NewFromInt(100))
		f.seedAccount("acc-dest", 22222, decimal.Zero)

		result, err := f.uc.Transfer(context.Background(), usecase.TransferInput{
			RequestID:         "req-1",
			OriginNumber:      11111,
			DestinationNumber: 22222,
			Amount:            decimal.NewFromInt(10),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.Success || result.Code != domain.CodeOK {
			t.Fatalf("expected success, got %+v", result)
		}

		originBalance, _ := f.movementRepo.SumByAccount(context.Background(), "acc-origin")
		if !originBalance.Equal(decimal.NewFromInt(89)) {
			t.Errorf("expected origin balance 89, got %s", originBalance)
		}

		destBalance, _ := f.movementRepo.SumByAccount(context.Background(), "acc-dest")
		if !destBalance.Equal(decimal.NewFromInt(10)) {
			t.Errorf("expected destination balance 10, got %s", destBalance)
		}
	})

	t.Run("writes three movements one transfer and one fee record", func(t *testing.T) {
		f := newTransferFixture(t, decimal.NewFromInt(1))
		f.seedAccount("acc-origin", 11111, decimal.NewFromInt(100))
		f.seedAccount("acc-dest", 22222, decimal.Zero)

		_, err := f.uc.Transfer(context.Background(), usecase.TransferInput{
			RequestID:         "req-1",
			OriginNumber:      11111,
			DestinationNumber: 22222,
			Amount:            decimal.NewFromInt(10),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		// One seed credit plus debit, credit and fee debit.
		if got := len(f.movementRepo.Movements()); got != 4 {
			t.Errorf("expected 4 movements, got %d", got)
		}
		if got := len(f.transferRepo.Transfers()); got != 1 {
			t.Errorf("expected 1 transfer record, got %d", got)
		}

		fees := f.transferRepo.Fees()
		if len(fees) != 1 {
			t.Fatalf("expected 1 fee record, got %d", len(fees))
		}
		if fees[0].AccountID != "acc-origin" || !fees[0].Amount.Equal(decimal.NewFromInt(1)) {
			t.Errorf("unexpected fee record: %+v", fees[0])
		}
	})

	t.Run("zero fee writes two movements and no fee record", func(t *testing.T) {
		f := newTransferFixture(t, decimal.Zero)
		f.seedAccount("acc-origin", 11111, decimal.NewFromInt(100))
		f.seedAccount("acc-dest", 22222, decimal.Zero)

		result, err := f.uc.Transfer(context.Background(), usecase.TransferInput{
			RequestID:         "req-1",
			OriginNumber:      11111,
			DestinationNumber: 22222,
			Amount:            decimal.NewFromInt(10),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.Success {
			t.Fatalf("expected success, got %+v", result)
		}

		if got := len(f.movementRepo.Movements()); got != 3 {
			t.Errorf("expected 3 movements including seed, got %d", got)
		}
		if got := len(f.transferRepo.Fees()); got != 0 {
			t.Errorf("expected no fee records, got %d", got)
		}
	})

	t.Run("insufficient balance counts the fee", func(t *testing.T) {
		f := newTransferFixture(t, decimal.NewFromInt(1))
		// Balance 10 covers the amount but not amount plus fee.
		f.seedAccount("acc-origin", 11111, decimal.NewFromInt(10))
		f.seedAccount("acc-dest", 22222, decimal.Zero)

		result, err := f.uc.Transfer(context.Background(), usecase.TransferInput{
			RequestID:         "req-1",
			OriginNumber:      11111,
			DestinationNumber: 22222,
			Amount:            decimal.NewFromInt(10),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Success || result.Code != domain.CodeInsufficientBalance {
			t.Fatalf("expected insufficient balance rejection, got %+v", result)
		}

		if got := len(f.movementRepo.Movements()); got != 1 {
			t.Errorf("expected only the seed movement, got %d", got)
		}
	})

	t.Run("replayed request key writes nothing new", func(t *testing.T) {
		f := newTransferFixture(t, decimal.NewFromInt(1))
		f.seedAccount("acc-origin", 11111, decimal.NewFromInt(100))
		f.seedAccount("acc-dest", 22222, decimal.Zero)

		input := usecase.TransferInput{
			RequestID:         "req-1",
			OriginNumber:      11111,
			DestinationNumber: 22222,
			Amount:            decimal.NewFromInt(10),
		}

		first, err := f.uc.Transfer(context.Background(), input)
		if err != nil {
			t.Fatalf("unexpected error on first call: %v", err)
		}
		if !first.Success || first.Code != domain.CodeOK {
			t.Fatalf("expected first call to succeed, got %+v", first)
		}

		movementsAfterFirst := len(f.movementRepo.Movements())

		second, err := f.uc.Transfer(context.Background(), input)
		if err != nil {
			t.Fatalf("unexpected error on replay: %v", err)
		}
		if !second.Success || second.Code != domain.CodeAlreadyProcessed {
			t.Fatalf("expected already-processed replay, got %+v", second)
		}
		if !second.Replayed() {
			t.Error("expected Replayed() to report true")
		}

		if got := len(f.movementRepo.Movements()); got != movementsAfterFirst {
			t.Errorf("replay appended movements: had %d, now %d", movementsAfterFirst, got)
		}
		if got := len(f.transferRepo.Transfers()); got != 1 {
			t.Errorf("replay appended transfer records: got %d", got)
		}
	})

	t.Run("missing request id is rejected before any lookup", func(t *testing.T) {
		f := newTransferFixture(t, decimal.NewFromInt(1))

		result, err := f.uc.Transfer(context.Background(), usecase.TransferInput{
			RequestID:         "   ",
			OriginNumber:      11111,
			DestinationNumber: 22222,
			Amount:            decimal.NewFromInt(10),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Success || result.Code != domain.CodeMissingRequestID {
			t.Fatalf("expected missing request id rejection, got %+v", result)
		}
	})

	t.Run("self transfer is rejected without touching storage", func(t *testing.T) {
		f := newTransferFixture(t, decimal.NewFromInt(1))
		f.seedAccount("acc-origin", 11111, decimal.NewFromInt(100))

		result, err := f.uc.Transfer(context.Background(), usecase.TransferInput{
			RequestID:         "req-1",
			OriginNumber:      11111,
			DestinationNumber: 11111,
			Amount:            decimal.NewFromInt(10),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Success || result.Code != domain.CodeSameAccount {
			t.Fatalf("expected same-account rejection, got %+v", result)
		}

		if got := len(f.movementRepo.Movements()); got != 1 {
			t.Errorf("expected only the seed movement, got %d", got)
		}
	})

	t.Run("unknown origin account", func(t *testing.T) {
		f := newTransferFixture(t, decimal.NewFromInt(1))
		f.seedAccount("acc-dest", 22222, decimal.Zero)

		result, err := f.uc.Transfer(context.Background(), usecase.TransferInput{
			RequestID:         "req-1",
			OriginNumber:      11111,
			DestinationNumber: 22222,
			Amount:            decimal.NewFromInt(10),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Success || result.Code != domain.CodeOriginNotFound {
			t.Fatalf("expected origin-not-found rejection, got %+v", result)
		}
	})

	t.Run("unknown destination account", func(t *testing.T) {
		f := newTransferFixture(t, decimal.NewFromInt(1))
		f.seedAccount("acc-origin", 11111, decimal.NewFromInt(100))

		result, err := f.uc.Transfer(context.Background(), usecase.TransferInput{
			RequestID:         "req-1",
			OriginNumber:      11111,
			DestinationNumber: 22222,
			Amount:            decimal.NewFromInt(10),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Success || result.Code != domain.CodeDestinationNotFound {
			t.Fatalf("expected destination-not-found rejection, got %+v", result)
		}
	})

	t.Run("inactive origin account", func(t *testing.T) {
		f := newTransferFixture(t, decimal.NewFromInt(1))
		f.accountRepo.Seed(&domain.Account{ID: "acc-origin", Number: 11111, Active: false})
		f.seedAccount("acc-dest", 22222, decimal.Zero)

		result, err := f.uc.Transfer(context.Background(), usecase.TransferInput{
			RequestID:         "req-1",
			OriginNumber:      11111,
			DestinationNumber: 22222,
			Amount:            decimal.NewFromInt(10),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Success || result.Code != domain.CodeAccountInactive {
			t.Fatalf("expected inactive-account rejection, got %+v", result)
		}
	})

	t.Run("non positive amount", func(t *testing.T) {
		f := newTransferFixture(t, decimal.NewFromInt(1))
		f.seedAccount("acc-origin", 11111, decimal.NewFromInt(100))
		f.seedAccount("acc-dest", 22222, decimal.Zero)

		result, err := f.uc.Transfer(context.Background(), usecase.TransferInput{
			RequestID:         "req-1",
			OriginNumber:      11111,
			DestinationNumber: 22222,
			Amount:            decimal.Zero,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Success || result.Code != domain.CodeInvalidAmount {
			t.Fatalf("expected invalid-amount rejection, got %+v", result)
		}
	})

	t.Run("losing the idempotency race reports already processed", func(t *testing.T) {
		f := newTransferFixture(t, decimal.NewFromInt(1))
		f.seedAccount("acc-origin", 11111, decimal.NewFromInt(100))
		f.seedAccount("acc-dest", 22222, decimal.Zero)

		// The key is absent on both lookups but a twin commits it first.
		f.idemRepo.ExistsFunc = func(ctx context.Context, key string) (bool, error) {
			return false, nil
		}
		f.idemRepo.ExistsTxFunc = func(ctx context.Context, tx usecase.Transaction, key string) (bool, error) {
			return false, nil
		}
		f.idemRepo.RecordFunc = func(ctx context.Context, tx usecase.Transaction, record *domain.IdempotencyRecord) error {
			return domain.ErrDuplicateRequest
		}

		result, err := f.uc.Transfer(context.Background(), usecase.TransferInput{
			RequestID:         "req-1",
			OriginNumber:      11111,
			DestinationNumber: 22222,
			Amount:            decimal.NewFromInt(10),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.Success || result.Code != domain.CodeAlreadyProcessed {
			t.Fatalf("expected already-processed result, got %+v", result)
		}
	})

	t.Run("storage fault travels the error return", func(t *testing.T) {
		f := newTransferFixture(t, decimal.NewFromInt(1))
		f.seedAccount("acc-origin", 11111, decimal.NewFromInt(100))
		f.seedAccount("acc-dest", 22222, decimal.Zero)

		f.movementRepo.AppendFunc = func(ctx context.Context, tx usecase.Transaction, movement *domain.Movement) error {
			return errors.New("connection reset")
		}

		result, err := f.uc.Transfer(context.Background(), usecase.TransferInput{
			RequestID:         "req-1",
			OriginNumber:      11111,
			DestinationNumber: 22222,
			Amount:            decimal.NewFromInt(10),
		})
		if err == nil {
			t.Fatalf("expected error, got result %+v", result)
		}
	})
}

func TestTransferUseCase_ListTransfersByAccount(t *testing.T) {
	f := newTransferFixture(t, decimal.Zero)
	f.seedAccount("acc-origin", 11111, decimal.NewFromInt(100))
	f.seedAccount("acc-dest", 22222, decimal.Zero)

	_, err := f.uc.Transfer(context.Background(), usecase.TransferInput{
		RequestID:         "req-1",
		OriginNumber:      11111,
		DestinationNumber: 22222,
		Amount:            decimal.NewFromInt(10),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, accountID := range []string{"acc-origin", "acc-dest"} {
		transfers, err := f.uc.ListTransfersByAccount(context.Background(), usecase.ListTransfersByAccountInput{
			AccountID: accountID,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(transfers) != 1 {
			t.Errorf("expected 1 transfer for %s, got %d", accountID, len(transfers))
		}
	}
}
