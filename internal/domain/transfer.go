package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transfer is the metadata record of a completed transfer. It does not move
// money itself; the balance effect lives in the associated movements.
type Transfer struct {
	ID                   string
	OriginAccountID      string
	DestinationAccountID string
	Amount               decimal.Decimal
	CreatedAt            time.Time
}

// Fee is the metadata record of a fee charged during a transfer. Like
// Transfer it is a side record; the debit movement carries the effect.
type Fee struct {
	ID        string
	AccountID string
	Amount    decimal.Decimal
	CreatedAt time.Time
}

// IdempotencyRecord maps a caller-supplied request key to the serialized
// request and result of the operation that first used it. Permanent once
// written.
type IdempotencyRecord struct {
	Key       string
	Request   string
	Result    string
	CreatedAt time.Time
}

// ResultCode classifies a transfer outcome for callers that render it.
type ResultCode string

const (
	CodeOK                  ResultCode = "OK"
	CodeAlreadyProcessed    ResultCode = "ALREADY_PROCESSED"
	CodeMissingRequestID    ResultCode = "MISSING_REQUEST_ID"
	CodeSameAccount         ResultCode = "SAME_ACCOUNT"
	CodeOriginNotFound      ResultCode = "ORIGIN_NOT_FOUND"
	CodeDestinationNotFound ResultCode = "DESTINATION_NOT_FOUND"
	CodeAccountInactive     ResultCode = "ACCOUNT_INACTIVE"
	CodeInvalidAmount       ResultCode = "INVALID_AMOUNT"
	CodeInsufficientBalance ResultCode = "INSUFFICIENT_BALANCE"
)

// TransferResult is the structured outcome of a transfer request. Business
// rule failures travel through this struct, not through Go errors, so callers
// can render them directly.
type TransferResult struct {
	Success           bool
	Code              ResultCode
	Message           string
	OriginNumber      int64
	DestinationNumber int64
	Amount            decimal.Decimal
}

// Replayed reports whether the result is the no-op outcome of a replayed
// request key.
func (r *TransferResult) Replayed() bool {
	return r.Success && r.Code == CodeAlreadyProcessed
}
