// Package snapshot reads and writes batches of records as JSON or YAML files.
//
// The format follows the file extension. A file holds either one record or
// a list of records, and field order survives a round trip in both formats.
package snapshot
