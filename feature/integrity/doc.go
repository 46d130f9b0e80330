// Package integrity verifies that the synced store is well-formed.
//
// A sync pass assumes the store it reads was left consistent by the previous
// one. This package checks that assumption without writing anything, so that
// stores edited by hand or by older writers can be inspected before a sync.
//
// # Checks Provided
//
//   - Store: header present and free of repeated names, key column present,
//     each key stored once, no rows without a key, no row wider than the
//     header, data rows sorted ascending by key.
//   - Schema: the sheet_rows table of the SQL backend has every column the
//     store uses, with the declared types. Runs only with a database.
//   - Bucket: the object backend's bucket exists; lists the CSV sheets it
//     holds and whether the configured one is among them. Runs only with a
//     storage client.
//
// Only ordering and a missing bucket are repaired automatically. Duplicate
// keys and orphan rows are reported for a human to resolve.
//
// # HTTP Endpoints
//
//   - GET /integrity : Runs all checks.
//   - GET /integrity/store : Runs the store check.
//   - POST /integrity/store/fix : Sorts an unsorted store while sync passes wait.
//   - GET /integrity/schema : Runs the SQL table check.
//   - GET /integrity/bucket : Runs the bucket check.
//   - POST /integrity/bucket/fix : Creates a missing bucket.
package integrity
