// Package sheet provides an in-memory table that satisfies reconcile.Store,
// plus a CSV codec for persisting it.
//
// A Sheet backs the "memory" backend directly and is the working copy of the
// object storage backend, which downloads the CSV, lets the engine mutate the
// sheet, and uploads it again on flush.
package sheet
