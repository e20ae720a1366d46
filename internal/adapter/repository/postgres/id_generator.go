package postgres

import (
	"math/rand/v2"
	"time"

	"github.com/oklog/ulid/v2"
)

// ULIDGenerator generates ULID-based entity IDs.
type ULIDGenerator struct{}

// NewULIDGenerator creates a new ULIDGenerator.
func NewULIDGenerator() *ULIDGenerator {
	return &ULIDGenerator{}
}

// Generate generates a new ULID.
func (g *ULIDGenerator) Generate() string {
	return ulid.Make().String()
}

// Account number bounds for generated numbers.
const (
	minAccountNumber = 10000
	maxAccountNumber = 99999
)

// RandomNumberGenerator draws human-facing account numbers at random.
// Collisions are possible; the accounts table's unique constraint catches
// them and the caller draws again.
type RandomNumberGenerator struct{}

// NewRandomNumberGenerator creates a new RandomNumberGenerator.
func NewRandomNumberGenerator() *RandomNumberGenerator {
	return &RandomNumberGenerator{}
}

// Next returns a random five-digit account number.
func (g *RandomNumberGenerator) Next() int64 {
	return minAccountNumber + rand.Int64N(maxAccountNumber-minAccountNumber+1)
}

// SystemClock implements usecase.Clock with the wall clock in UTC.
type SystemClock struct{}

// NewSystemClock creates a new SystemClock.
func NewSystemClock() *SystemClock {
	return &SystemClock{}
}

// Now returns the current time in UTC.
func (c *SystemClock) Now() time.Time {
	return time.Now().UTC()
}
