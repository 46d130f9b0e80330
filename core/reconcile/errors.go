package reconcile

import "errors"

// Invocation-level errors abort a sync; record and row errors are counted and skipped.
var (
	// ErrEmptyBatch is returned when no records were supplied.
	ErrEmptyBatch = errors.New("empty batch")

	// ErrMissingKey marks a record without a key value.
	ErrMissingKey = errors.New("missing key")

	// ErrUnknownField marks a record with fields outside the header under SchemaStrict.
	ErrUnknownField = errors.New("unknown field")

	// ErrSchemaConflict is returned when the key field cannot be located.
	ErrSchemaConflict = errors.New("schema conflict")

	// ErrStoreRead is returned when the store's header or rows cannot be read.
	ErrStoreRead = errors.New("store read failure")

	// ErrStoreWrite marks a rejected write.
	ErrStoreWrite = errors.New("store write failure")

	// ErrSort marks a failed sort. It is reported as a warning.
	ErrSort = errors.New("sort failure")
)
