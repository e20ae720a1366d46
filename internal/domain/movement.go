package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementType tags a ledger entry as a credit or a debit. The sign of the
// balance effect comes from the tag alone; Amount is always positive.
type MovementType string

const (
	MovementCredit MovementType = "C"
	MovementDebit  MovementType = "D"
)

// IsValid checks if the type is one of the two recognized tags.
func (t MovementType) IsValid() bool {
	return t == MovementCredit || t == MovementDebit
}

// Movement is a single immutable ledger entry against one account.
// Movements are append-only; they are never updated or deleted.
type Movement struct {
	ID        string
	AccountID string
	Type      MovementType
	Amount    decimal.Decimal
	CreatedAt time.Time
}

// Signed returns the movement amount with the sign implied by its type tag.
func (m *Movement) Signed() decimal.Decimal {
	if m.Type == MovementDebit {
		return m.Amount.Neg()
	}
	return m.Amount
}

// ValidateMovement runs the pure per-movement checks: recognized type tag,
// positive amount, target account present and active. Balance sufficiency for
// debits is checked separately under the ledger's locking discipline.
func ValidateMovement(account *Account, movementType MovementType, amount decimal.Decimal) error {
	if !movementType.IsValid() {
		return ErrInvalidMovementType
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}
	return account.CanOperate()
}
