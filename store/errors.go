package store

import "errors"

var (
	// ErrCorruptedLedgerDb For some reason, db on disk representation have changed
	ErrCorruptedLedgerDb = errors.New("ledger db is corrupted")

	// ErrAccountNotFound The account we try to fetch is not registered
	ErrAccountNotFound = errors.New("account not found")

	// ErrPoolNotFound The pool record has not been initialized
	ErrPoolNotFound = errors.New("pool not found")

	// ErrSagaNotFound The saga we try to fetch does not exist
	ErrSagaNotFound = errors.New("saga not found")
)
