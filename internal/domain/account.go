package domain

import (
	"time"
)

// Account is a checking account owned by a single holder. The balance is not
// stored on the account; it is always derived from the movement ledger.
type Account struct {
	ID           string
	Number       int64
	HolderName   string
	CPF          string
	PasswordHash string
	Active       bool
	CreatedAt    time.Time
}

// CanOperate reports whether the account may take part in ledger operations.
func (a *Account) CanOperate() error {
	if a == nil {
		return ErrAccountNotFound
	}
	if !a.Active {
		return ErrAccountInactive
	}
	return nil
}
