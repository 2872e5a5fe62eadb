package storage

import "errors"

// Sentinel errors shared by the ledger, daily series and snapshot stores.
// Implementations wrap or return them directly; match with errors.Is.
var (
	// ErrNotFound is returned when a lookup matches no row, such as
	// GetLatest on an empty snapshot store.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey is returned when an insert repeats a dedupe key, day or
	// run id that is already stored. Stored rows are only replaced wholesale
	// through LedgerStore.ReplaceAll.
	ErrDuplicateKey = errors.New("duplicate key: row already stored")

	// ErrInvalidInput is returned for nil entries, empty keys and inverted
	// day ranges.
	ErrInvalidInput = errors.New("invalid input")
)
