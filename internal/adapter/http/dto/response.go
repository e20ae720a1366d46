package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/edufarias/bancoledger/internal/domain"
)

// AccountResponse represents an account in API responses.
// The password hash never leaves the service.
type AccountResponse struct {
	ID         string    `json:"id"`
	Number     int64     `json:"number"`
	HolderName string    `json:"holder_name"`
	Active     bool      `json:"active"`
	CreatedAt  time.Time `json:"created_at"`
}

// AccountFromDomain converts domain account to response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		ID:         a.ID,
		Number:     a.Number,
		HolderName: a.HolderName,
		Active:     a.Active,
		CreatedAt:  a.CreatedAt,
	}
}

// LoginResponse carries the token issued on successful authentication.
type LoginResponse struct {
	Token string `json:"token"`
}

// BalanceResponse represents an account balance in API responses.
type BalanceResponse struct {
	AccountNumber int64           `json:"account_number"`
	Balance       decimal.Decimal `json:"balance"`
}

// MovementResponse represents a ledger movement in API responses.
type MovementResponse struct {
	ID        string          `json:"id"`
	AccountID string          `json:"account_id"`
	Type      string          `json:"type"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedAt time.Time       `json:"created_at"`
}

// MovementFromDomain converts domain movement to response.
func MovementFromDomain(m *domain.Movement) *MovementResponse {
	return &MovementResponse{
		ID:        m.ID,
		AccountID: m.AccountID,
		Type:      string(m.Type),
		Amount:    m.Amount,
		CreatedAt: m.CreatedAt,
	}
}

// MovementsFromDomain converts domain movements to responses.
func MovementsFromDomain(movements []*domain.Movement) []*MovementResponse {
	result := make([]*MovementResponse, len(movements))
	for i, m := range movements {
		result[i] = MovementFromDomain(m)
	}
	return result
}

// TransferResponse represents a transfer record in API responses.
type TransferResponse struct {
	ID                   string          `json:"id"`
	OriginAccountID      string          `json:"origin_account_id"`
	DestinationAccountID string          `json:"destination_account_id"`
	Amount               decimal.Decimal `json:"amount"`
	CreatedAt            time.Time       `json:"created_at"`
}

// TransferFromDomain converts domain transfer to response.
func TransferFromDomain(t *domain.Transfer) *TransferResponse {
	return &TransferResponse{
		ID:                   t.ID,
		OriginAccountID:      t.OriginAccountID,
		DestinationAccountID: t.DestinationAccountID,
		Amount:               t.Amount,
		CreatedAt:            t.CreatedAt,
	}
}

// TransfersFromDomain converts domain transfers to responses.
func TransfersFromDomain(transfers []*domain.Transfer) []*TransferResponse {
	result := make([]*TransferResponse, len(transfers))
	for i, t := range transfers {
		result[i] = TransferFromDomain(t)
	}
	return result
}

// TransferResultResponse reports the outcome of a transfer attempt.
type TransferResultResponse struct {
	Success           bool            `json:"success"`
	Code              string          `json:"code"`
	Message           string          `json:"message"`
	OriginNumber      int64           `json:"origin,omitempty"`
	DestinationNumber int64           `json:"destination,omitempty"`
	Amount            decimal.Decimal `json:"amount"`
}

// TransferResultFromDomain converts a domain transfer result to response.
func TransferResultFromDomain(r *domain.TransferResult) *TransferResultResponse {
	return &TransferResultResponse{
		Success:           r.Success,
		Code:              string(r.Code),
		Message:           r.Message,
		OriginNumber:      r.OriginNumber,
		DestinationNumber: r.DestinationNumber,
		Amount:            r.Amount,
	}
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
