package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Validation constants
const (
	MinPasswordLength = 8
	MaxPasswordLength = 128

	MaxHolderNameLength = 255

	// MaxMovementAmount bounds a single ledger entry.
	MaxMovementAmount = "1000000000" // 1 billion
)

// ValidateCPF checks the CPF check digits (Brazilian national id).
// Formatting characters are ignored; repeated-digit sequences are rejected.
func ValidateCPF(cpf string) error {
	digits := make([]int, 0, 11)
	for _, r := range cpf {
		if r >= '0' && r <= '9' {
			digits = append(digits, int(r-'0'))
		}
	}
	if len(digits) != 11 {
		return ErrInvalidCPF
	}

	allSame := true
	for _, d := range digits[1:] {
		if d != digits[0] {
			allSame = false
			break
		}
	}
	if allSame {
		return ErrInvalidCPF
	}

	if digits[9] != cpfCheckDigit(digits[:9], 10) {
		return ErrInvalidCPF
	}
	if digits[10] != cpfCheckDigit(digits[:10], 11) {
		return ErrInvalidCPF
	}

	return nil
}

func cpfCheckDigit(digits []int, weight int) int {
	sum := 0
	for _, d := range digits {
		sum += d * weight
		weight--
	}
	remainder := sum % 11
	if remainder < 2 {
		return 0
	}
	return 11 - remainder
}

// NormalizeCPF strips formatting so only the 11 digits are stored.
func NormalizeCPF(cpf string) string {
	var b strings.Builder
	for _, r := range cpf {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidateHolderName validates the account holder's name.
func ValidateHolderName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: holder name cannot be empty", ErrInvalidHolderName)
	}
	if len(name) > MaxHolderNameLength {
		return fmt.Errorf("%w: holder name exceeds %d characters", ErrInvalidHolderName, MaxHolderNameLength)
	}
	return nil
}

// ValidatePassword validates password length bounds. Hashing embeds its own
// salt, so no separate salt is kept.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("%w: must be at least %d characters", ErrInvalidPassword, MinPasswordLength)
	}
	if len(password) > MaxPasswordLength {
		return fmt.Errorf("%w: must not exceed %d characters", ErrInvalidPassword, MaxPasswordLength)
	}
	return nil
}

// ValidateAmount validates a movement or transfer amount.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	maxAmount, _ := decimal.NewFromString(MaxMovementAmount)
	if amount.GreaterThan(maxAmount) {
		return fmt.Errorf("%w: maximum amount is %s", ErrInvalidAmount, MaxMovementAmount)
	}

	return nil
}
