package usecase

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/edufarias/bancoledger/internal/domain"
)

// accountNumberAttempts bounds retries when a generated number collides.
const accountNumberAttempts = 5

// AccountUseCase handles account creation and holder authentication.
type AccountUseCase struct {
	accountRepo AccountRepository
	idGen       IDGenerator
	numberGen   NumberGenerator
	clock       Clock
}

// NewAccountUseCase creates a new AccountUseCase.
func NewAccountUseCase(accountRepo AccountRepository, idGen IDGenerator, numberGen NumberGenerator, clock Clock) *AccountUseCase {
	return &AccountUseCase{
		accountRepo: accountRepo,
		idGen:       idGen,
		numberGen:   numberGen,
		clock:       clock,
	}
}

// CreateAccountInput represents input for creating an account.
type CreateAccountInput struct {
	HolderName string
	CPF        string
	Password   string
}

// CreateAccount validates the holder data, hashes the password and stores the
// account with a generated number. The CPF is unique across all accounts.
func (uc *AccountUseCase) CreateAccount(ctx context.Context, input CreateAccountInput) (*domain.Account, error) {
	if err := domain.ValidateHolderName(input.HolderName); err != nil {
		return nil, err
	}
	if err := domain.ValidateCPF(input.CPF); err != nil {
		return nil, err
	}
	if err := domain.ValidatePassword(input.Password); err != nil {
		return nil, err
	}

	cpf := domain.NormalizeCPF(input.CPF)

	existing, err := uc.accountRepo.FindByCPF(ctx, cpf)
	if err != nil {
		return nil, fmt.Errorf("find by cpf: %w", err)
	}
	if existing != nil {
		return nil, domain.ErrDuplicateCPF
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	account := &domain.Account{
		ID:           uc.idGen.Generate(),
		HolderName:   input.HolderName,
		CPF:          cpf,
		PasswordHash: string(hash),
		Active:       true,
		CreatedAt:    uc.clock.Now(),
	}

	// Generated numbers can collide with existing accounts; the unique
	// constraint reports it and we draw again.
	for attempt := 0; attempt < accountNumberAttempts; attempt++ {
		account.Number = uc.numberGen.Next()

		err = uc.accountRepo.Create(ctx, account)
		if err == nil {
			return account, nil
		}
		if !errors.Is(err, domain.ErrDuplicateAccountNumber) {
			return nil, fmt.Errorf("create account: %w", err)
		}
	}

	return nil, fmt.Errorf("create account: %w", err)
}

// AuthenticateInput represents login credentials.
type AuthenticateInput struct {
	AccountNumber int64
	Password      string
}

// Authenticate verifies the holder's credentials. An unknown number, a wrong
// password and an inactive account all fail; the caller maps them to 401.
func (uc *AccountUseCase) Authenticate(ctx context.Context, input AuthenticateInput) (*domain.Account, error) {
	account, err := uc.accountRepo.FindByNumber(ctx, input.AccountNumber)
	if err != nil {
		return nil, fmt.Errorf("find by number: %w", err)
	}
	if account == nil {
		return nil, domain.ErrUnauthorized
	}

	if !account.Active {
		return nil, domain.ErrAccountInactive
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(input.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}

	return account, nil
}

// GetByNumber retrieves an account by its human-facing number.
func (uc *AccountUseCase) GetByNumber(ctx context.Context, number int64) (*domain.Account, error) {
	account, err := uc.accountRepo.FindByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, domain.ErrAccountNotFound
	}
	return account, nil
}
