package mocks

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/edufarias/bancoledger/internal/domain"
	"github.com/edufarias/bancoledger/internal/usecase"
)

// MockTransaction is a mock implementation of Transaction. Row locks taken
// through MockAccountRepository are held until Commit or Rollback, matching
// the database behavior the use cases rely on.
type MockTransaction struct {
	mu      sync.Mutex
	done    bool
	unlocks []func()

	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error
}

func (m *MockTransaction) addUnlock(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unlocks = append(m.unlocks, fn)
}

func (m *MockTransaction) release() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.done {
		return
	}
	m.done = true
	for i := len(m.unlocks) - 1; i >= 0; i-- {
		m.unlocks[i]()
	}
	m.unlocks = nil
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	defer m.release()
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx)
	}
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	defer m.release()
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	return nil
}

// MockTransactionManager is a mock implementation of TransactionManager.
type MockTransactionManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	return &MockTransaction{}, nil
}

// MockAccountRepository is a mock implementation of AccountRepository.
type MockAccountRepository struct {
	mu       sync.RWMutex
	byNumber map[int64]*domain.Account
	locks    map[int64]*sync.Mutex

	CreateFunc                func(ctx context.Context, account *domain.Account) error
	FindByNumberFunc          func(ctx context.Context, number int64) (*domain.Account, error)
	FindByCPFFunc             func(ctx context.Context, cpf string) (*domain.Account, error)
	FindByNumberForUpdateFunc func(ctx context.Context, tx usecase.Transaction, number int64) (*domain.Account, error)
}

func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{
		byNumber: make(map[int64]*domain.Account),
		locks:    make(map[int64]*sync.Mutex),
	}
}

// Seed stores an account without going through Create hooks.
func (m *MockAccountRepository) Seed(account *domain.Account) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byNumber[account.Number] = account
}

func (m *MockAccountRepository) Create(ctx context.Context, account *domain.Account) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, account)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.byNumber {
		if existing.CPF == account.CPF {
			return domain.ErrDuplicateCPF
		}
	}
	if _, ok := m.byNumber[account.Number]; ok {
		return domain.ErrDuplicateAccountNumber
	}
	m.byNumber[account.Number] = account
	return nil
}

func (m *MockAccountRepository) FindByNumber(ctx context.Context, number int64) (*domain.Account, error) {
	if m.FindByNumberFunc != nil {
		return m.FindByNumberFunc(ctx, number)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.byNumber[number], nil
}

func (m *MockAccountRepository) FindByCPF(ctx context.Context, cpf string) (*domain.Account, error) {
	if m.FindByCPFFunc != nil {
		return m.FindByCPFFunc(ctx, cpf)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, acc := range m.byNumber {
		if acc.CPF == cpf {
			return acc, nil
		}
	}
	return nil, nil
}

// FindByNumberForUpdate takes the per-account lock and holds it until the
// transaction commits or rolls back.
func (m *MockAccountRepository) FindByNumberForUpdate(ctx context.Context, tx usecase.Transaction, number int64) (*domain.Account, error) {
	if m.FindByNumberForUpdateFunc != nil {
		return m.FindByNumberForUpdateFunc(ctx, tx, number)
	}

	lock := m.lockFor(number)
	lock.Lock()

	if mt, ok := tx.(*MockTransaction); ok {
		mt.addUnlock(lock.Unlock)
	} else {
		lock.Unlock()
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.byNumber[number], nil
}

func (m *MockAccountRepository) lockFor(number int64) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	lock, ok := m.locks[number]
	if !ok {
		lock = &sync.Mutex{}
		m.locks[number] = lock
	}
	return lock
}

// MockMovementRepository is a mock implementation of MovementRepository.
type MockMovementRepository struct {
	mu        sync.RWMutex
	movements []*domain.Movement

	AppendFunc         func(ctx context.Context, tx usecase.Transaction, movement *domain.Movement) error
	SumByAccountFunc   func(ctx context.Context, accountID string) (decimal.Decimal, error)
	SumByAccountTxFunc func(ctx context.Context, tx usecase.Transaction, accountID string) (decimal.Decimal, error)
	ListByAccountFunc  func(ctx context.Context, accountID string, limit, offset int) ([]*domain.Movement, error)
}

func NewMockMovementRepository() *MockMovementRepository {
	return &MockMovementRepository{}
}

func (m *MockMovementRepository) Append(ctx context.Context, tx usecase.Transaction, movement *domain.Movement) error {
	if m.AppendFunc != nil {
		return m.AppendFunc(ctx, tx, movement)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.movements = append(m.movements, movement)
	return nil
}

func (m *MockMovementRepository) SumByAccount(ctx context.Context, accountID string) (decimal.Decimal, error) {
	if m.SumByAccountFunc != nil {
		return m.SumByAccountFunc(ctx, accountID)
	}
	return m.sum(accountID), nil
}

func (m *MockMovementRepository) SumByAccountTx(ctx context.Context, tx usecase.Transaction, accountID string) (decimal.Decimal, error) {
	if m.SumByAccountTxFunc != nil {
		return m.SumByAccountTxFunc(ctx, tx, accountID)
	}
	return m.sum(accountID), nil
}

func (m *MockMovementRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Movement, error) {
	if m.ListByAccountFunc != nil {
		return m.ListByAccountFunc(ctx, accountID, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Movement
	for _, mv := range m.movements {
		if mv.AccountID == accountID {
			result = append(result, mv)
		}
	}
	return result, nil
}

// Movements returns a snapshot of all stored movements.
func (m *MockMovementRepository) Movements() []*domain.Movement {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.Movement, len(m.movements))
	copy(out, m.movements)
	return out
}

func (m *MockMovementRepository) sum(accountID string) decimal.Decimal {
	m.mu.RLock()
	defer m.mu.RUnlock()
	total := decimal.Zero
	for _, mv := range m.movements {
		if mv.AccountID != accountID {
			continue
		}
		total = total.Add(mv.Signed())
	}
	return total
}

// MockTransferRepository is a mock implementation of TransferRepository.
type MockTransferRepository struct {
	mu        sync.RWMutex
	transfers map[string]*domain.Transfer
	fees      []*domain.Fee

	AppendFunc        func(ctx context.Context, tx usecase.Transaction, transfer *domain.Transfer) error
	AppendFeeFunc     func(ctx context.Context, tx usecase.Transaction, fee *domain.Fee) error
	GetByIDFunc       func(ctx context.Context, id string) (*domain.Transfer, error)
	ListByAccountFunc func(ctx context.Context, accountID string, limit, offset int) ([]*domain.Transfer, error)
}

func NewMockTransferRepository() *MockTransferRepository {
	return &MockTransferRepository{
		transfers: make(map[string]*domain.Transfer),
	}
}

func (m *MockTransferRepository) Append(ctx context.Context, tx usecase.Transaction, transfer *domain.Transfer) error {
	if m.AppendFunc != nil {
		return m.AppendFunc(ctx, tx, transfer)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transfers[transfer.ID] = transfer
	return nil
}

func (m *MockTransferRepository) AppendFee(ctx context.Context, tx usecase.Transaction, fee *domain.Fee) error {
	if m.AppendFeeFunc != nil {
		return m.AppendFeeFunc(ctx, tx, fee)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fees = append(m.fees, fee)
	return nil
}

func (m *MockTransferRepository) GetByID(ctx context.Context, id string) (*domain.Transfer, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if t, ok := m.transfers[id]; ok {
		return t, nil
	}
	return nil, domain.ErrTransferNotFound
}

func (m *MockTransferRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Transfer, error) {
	if m.ListByAccountFunc != nil {
		return m.ListByAccountFunc(ctx, accountID, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var transfers []*domain.Transfer
	for _, t := range m.transfers {
		if t.OriginAccountID == accountID || t.DestinationAccountID == accountID {
			transfers = append(transfers, t)
		}
	}
	return transfers, nil
}

// Transfers returns a snapshot of all stored transfer records.
func (m *MockTransferRepository) Transfers() []*domain.Transfer {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.Transfer, 0, len(m.transfers))
	for _, t := range m.transfers {
		out = append(out, t)
	}
	return out
}

// Fees returns a snapshot of all stored fee records.
func (m *MockTransferRepository) Fees() []*domain.Fee {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.Fee, len(m.fees))
	copy(out, m.fees)
	return out
}

// MockIdempotencyRepository is a mock implementation of IdempotencyRepository.
type MockIdempotencyRepository struct {
	mu   sync.RWMutex
	keys map[string]*domain.IdempotencyRecord

	ExistsFunc   func(ctx context.Context, key string) (bool, error)
	ExistsTxFunc func(ctx context.Context, tx usecase.Transaction, key string) (bool, error)
	RecordFunc   func(ctx context.Context, tx usecase.Transaction, record *domain.IdempotencyRecord) error
}

func NewMockIdempotencyRepository() *MockIdempotencyRepository {
	return &MockIdempotencyRepository{
		keys: make(map[string]*domain.IdempotencyRecord),
	}
}

func (m *MockIdempotencyRepository) Exists(ctx context.Context, key string) (bool, error) {
	if m.ExistsFunc != nil {
		return m.ExistsFunc(ctx, key)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.keys[key]
	return ok, nil
}

func (m *MockIdempotencyRepository) ExistsTx(ctx context.Context, tx usecase.Transaction, key string) (bool, error) {
	if m.ExistsTxFunc != nil {
		return m.ExistsTxFunc(ctx, tx, key)
	}
	return m.Exists(ctx, key)
}

func (m *MockIdempotencyRepository) Record(ctx context.Context, tx usecase.Transaction, record *domain.IdempotencyRecord) error {
	if m.RecordFunc != nil {
		return m.RecordFunc(ctx, tx, record)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.keys[record.Key]; ok {
		return domain.ErrDuplicateRequest
	}
	m.keys[record.Key] = record
	return nil
}

// MockRetrier is a mock implementation of Retrier that runs the operation
// exactly once.
type MockRetrier struct {
	RetryFunc func(ctx context.Context, operation func() error) error
}

func NewMockRetrier() *MockRetrier {
	return &MockRetrier{}
}

func (m *MockRetrier) Retry(ctx context.Context, operation func() error) error {
	if m.RetryFunc != nil {
		return m.RetryFunc(ctx, operation)
	}
	return operation()
}
