package domain

import "errors"

var (
	// Account errors
	ErrAccountNotFound = errors.New("account not found")
	ErrAccountInactive = errors.New("account is inactive")
	ErrDuplicateCPF    = errors.New("cpf already registered")

	// ErrDuplicateAccountNumber reports a collision of the generated
	// human-facing account number.
	ErrDuplicateAccountNumber = errors.New("account number already taken")
	ErrInvalidCPF             = errors.New("invalid cpf")
	ErrInvalidHolderName      = errors.New("invalid holder name")
	ErrInvalidPassword        = errors.New("invalid password")

	// Ledger errors
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrInvalidMovementType = errors.New("movement type must be credit or debit")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrSameAccount         = errors.New("cannot transfer to same account")
	ErrMissingRequestID    = errors.New("request id is required")

	// Transfer errors
	ErrTransferNotFound = errors.New("transfer not found")

	// Idempotency errors
	ErrDuplicateRequest = errors.New("request key already processed")

	// Storage errors. Conflicts and timeouts are safe to retry with the same
	// request key; the idempotency guard makes the retry exactly-once.
	ErrStorageConflict = errors.New("storage conflict, retry the operation")

	// Authentication errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)
