package reconcile

import "context"

// Store is the tabular backend a sync pass reads from and writes to.
// Row 0 holds the header; data rows are addressed by their 1-based data-row
// offset, the same Position that DataRows reports.
type Store interface {
	// HeaderRow returns the header, or an empty HeaderSet when the store is uninitialized.
	HeaderRow(ctx context.Context) (HeaderSet, error)

	// DataRows returns every data row in store order.
	DataRows(ctx context.Context) ([]Row, error)

	// WriteHeaderRow replaces the header row.
	WriteHeaderRow(ctx context.Context, header HeaderSet) error

	// WriteRow overwrites the full row at position.
	// It must be idempotent so a failed write can be retried on its own.
	WriteRow(ctx context.Context, position int, values []string) error

	// AppendRow adds a data row after the last one.
	AppendRow(ctx context.Context, values []string) error

	// SortDataRows stably reorders the data rows by the cell at keyColumn,
	// leaving the header row in place.
	SortDataRows(ctx context.Context, keyColumn int, ascending bool) error
}

// HeaderFormatter is implemented by stores that can style the header row.
// It is called once, right after the header is first written.
type HeaderFormatter interface {
	FormatHeaderRow(ctx context.Context, width int, style HeaderStyle) error
}

// RowCounter is implemented by stores that can count data rows cheaply.
type RowCounter interface {
	DataRowCount(ctx context.Context) (int, error)
}

// Flusher is implemented by buffered stores that persist at the end of a pass.
type Flusher interface {
	Flush(ctx context.Context) error
}
