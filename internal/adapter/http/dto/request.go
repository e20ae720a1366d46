package dto

import (
	"github.com/shopspring/decimal"

	"github.com/edufarias/bancoledger/internal/domain"
	"github.com/edufarias/bancoledger/internal/usecase"
)

// CreateAccountRequest represents a request to open an account.
type CreateAccountRequest struct {
	HolderName string `json:"holder_name"`
	CPF        string `json:"cpf"`
	Password   string `json:"password"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateAccountRequest) ToUseCaseInput() usecase.CreateAccountInput {
	return usecase.CreateAccountInput{
		HolderName: r.HolderName,
		CPF:        r.CPF,
		Password:   r.Password,
	}
}

// LoginRequest represents an authentication request.
type LoginRequest struct {
	Number   int64  `json:"number"`
	Password string `json:"password"`
}

// MovementRequest represents a request to record a credit or debit.
type MovementRequest struct {
	RequestID     string          `json:"request_id"`
	AccountNumber int64           `json:"account_number"`
	Type          string          `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
}

// ToUseCaseInput converts to use case input.
func (r *MovementRequest) ToUseCaseInput() usecase.MovementInput {
	return usecase.MovementInput{
		RequestID:     r.RequestID,
		AccountNumber: r.AccountNumber,
		Type:          domain.MovementType(r.Type),
		Amount:        r.Amount,
	}
}

// TransferRequest represents a request to move funds between accounts.
type TransferRequest struct {
	RequestID         string          `json:"request_id"`
	OriginNumber      int64           `json:"origin"`
	DestinationNumber int64           `json:"destination"`
	Amount            decimal.Decimal `json:"amount"`
}

// ToUseCaseInput converts to use case input.
func (r *TransferRequest) ToUseCaseInput() usecase.TransferInput {
	return usecase.TransferInput{
		RequestID:         r.RequestID,
		OriginNumber:      r.OriginNumber,
		DestinationNumber: r.DestinationNumber,
		Amount:            r.Amount,
	}
}

// PaginationRequest represents pagination parameters.
type PaginationRequest struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}
