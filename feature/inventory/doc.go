// Package inventory exposes the reconciliation engine as a service.
//
// It chooses the store a pass runs against, serializes passes, serves read
// views of the synced table and registers the HTTP routes.
//
// # Backends
//
// A Backend hands out the reconcile.Store for one pass:
//
//   - memory: an in-process sheet.Sheet. Lost on exit; useful for tests and dry runs.
//   - sql: a database.SheetStore on MySQL or SQLite. Writes go straight to the table.
//   - object: a storage.ObjectSheet, a CSV (optionally gzipped) object in S3/MinIO.
//     The object is downloaded on every Open and uploaded once at the end of a pass.
//
// NewBackend picks one from the sync configuration.
//
// # Reads
//
// View and Machine read the whole table through a cache. The cache keeps the
// last view for the configured TTL, lets concurrent misses share a single
// read (singleflight) and is dropped after every pass that changed the store.
//
// # HTTP Endpoints
//
//   - POST /inventory/sync : Upserts a batch. Body is an array of records or
//     {"records": [...], "dry_run": bool}; ?dry_run=true works as well.
//     200 on success, 400 for an empty batch or a schema conflict, 500 when
//     the store fails.
//   - GET /inventory : Header and rows (?limit=n).
//   - GET /inventory/:key : One machine as an ordered object, 404 when unknown.
//
// # Push
//
// PushClient posts a batch to a remote server's sync endpoint, so machines
// can report without store credentials.
package inventory
