// Package reconcile provides the upsert engine that merges machine snapshots
// into a shared tabular store keyed by machine identity.
//
// Every machine's latest snapshot appears in the store exactly once, the
// column schema stays consistent across writers that never coordinate, and
// data rows stay sorted by key.
//
// # Architecture
//
// A sync pass runs five steps in order, once, with no retry:
//
// 1. SyncSchema: reconciles the batch's field names with the store's header
// row. The store header is the only source of column order. New fields are
// appended to it (SchemaGrow) or rejected (SchemaStrict).
//
// 2. BuildKeyIndex: scans the existing data rows once and maps key values to
// row positions. Rows with an empty key are orphans and are never matched.
//
// 3. PlanUpserts: de-duplicates the batch by key (last record wins), skips
// records without a key, and classifies each remaining record as an update
// or an insert projected onto the canonical header.
//
// 4. ApplyPlan: overwrites full rows in place and appends new ones. Each
// write is independent; a rejected write is recorded and the pass goes on.
//
// 5. SortStore: stably sorts data rows ascending by key, header untouched.
//
// # Stores
//
// The engine talks to a backend only through the Store interface. Optional
// capabilities are discovered by type assertion: HeaderFormatter styles a
// freshly created header row, RowCounter reports the row total, and Flusher
// persists buffered stores at the end of the pass.
//
// # Errors
//
// Engine.Sync always returns a Report. Invocation-level errors (ErrEmptyBatch,
// ErrSchemaConflict, ErrStoreRead, ErrStoreWrite on the header or flush)
// abort the pass and are available through Report.Err. Record-level
// (ErrMissingKey, ErrUnknownField) and row-level (ErrStoreWrite) errors are
// listed in the report and counted. ErrSort is only a warning.
//
// # Concurrency
//
// At most one pass may run against a store at a time. The engine does not
// lock the store; callers serialize invocations themselves.
//
// # Usage Example
//
//	engine := reconcile.NewEngine(store, reconcile.Options{
//	    KeyField:      "ComputerName",
//	    WriteInterval: 100 * time.Millisecond,
//	}, logger)
//
//	report := engine.Sync(ctx, records)
//	if err := report.Err(); err != nil {
//	    return err
//	}
//	fmt.Println(report.Updated, report.Added, report.Total)
package reconcile
