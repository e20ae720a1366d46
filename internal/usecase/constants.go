package usecase

import "time"

const (
	// DefaultTransactionTimeout bounds a ledger transaction. Locks held past
	// this point are released by aborting the transaction.
	DefaultTransactionTimeout = 10 * time.Second
)
