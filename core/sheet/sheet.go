package sheet

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"inventory-sync/core/reconcile"
)

// ErrPositionOutOfRange is returned when a write addresses a row that does not exist.
var ErrPositionOutOfRange = errors.New("row position out of range")

// Sheet is an in-memory table: one header row followed by data rows.
// It implements reconcile.Store, reconcile.HeaderFormatter and reconcile.RowCounter.
type Sheet struct {
	mu     sync.RWMutex
	header reconcile.HeaderSet
	rows   [][]string
	style  *reconcile.HeaderStyle
}

// New creates an empty, uninitialized sheet.
func New() *Sheet {
	return &Sheet{}
}

// FromTable creates a sheet holding a copy of header and rows.
func FromTable(header []string, rows [][]string) *Sheet {
	s := &Sheet{header: reconcile.HeaderSet(header).Clone()}
	for _, row := range rows {
		s.rows = append(s.rows, cloneRow(row))
	}
	return s
}

// HeaderRow returns the header row.
func (s *Sheet) HeaderRow(ctx context.Context) (reconcile.HeaderSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.header.Clone(), nil
}

// DataRows returns the data rows padded to the header width.
func (s *Sheet) DataRows(ctx context.Context) ([]reconcile.Row, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]reconcile.Row, len(s.rows))
	for i, row := range s.rows {
		out[i] = reconcile.Row{Position: i + 1, Values: s.padded(row)}
	}
	return out, nil
}

// DataRowCount returns the number of data rows.
func (s *Sheet) DataRowCount(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rows), nil
}

// WriteHeaderRow replaces the header row.
func (s *Sheet) WriteHeaderRow(ctx context.Context, header reconcile.HeaderSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.header = header.Clone()
	return nil
}

// WriteRow overwrites the data row at position.
func (s *Sheet) WriteRow(ctx context.Context, position int, values []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if position < 1 || position > len(s.rows) {
		return fmt.Errorf("%w: %d (rows: %d)", ErrPositionOutOfRange, position, len(s.rows))
	}
	s.rows[position-1] = cloneRow(values)
	return nil
}

// AppendRow adds a data row at the end.
func (s *Sheet) AppendRow(ctx context.Context, values []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, cloneRow(values))
	return nil
}

// SortDataRows stably sorts the data rows by keyColumn.
func (s *Sheet) SortDataRows(ctx context.Context, keyColumn int, ascending bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := make([]reconcile.Row, len(s.rows))
	for i, values := range s.rows {
		rows[i] = reconcile.Row{Position: i + 1, Values: values}
	}
	reconcile.SortRows(rows, keyColumn, ascending)
	for i, row := range rows {
		s.rows[i] = row.Values
	}
	return nil
}

// FormatHeaderRow records the header style.
func (s *Sheet) FormatHeaderRow(ctx context.Context, width int, style reconcile.HeaderStyle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.style = &style
	return nil
}

// HeaderStyle returns the header style and whether one was applied.
func (s *Sheet) HeaderStyle() (reconcile.HeaderStyle, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.style == nil {
		return reconcile.HeaderStyle{}, false
	}
	return *s.style, true
}

// SetHeaderStyle restores a style persisted next to the sheet.
func (s *Sheet) SetHeaderStyle(style reconcile.HeaderStyle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.style = &style
}

// Table returns copies of the header and the data rows padded to the header width.
func (s *Sheet) Table() (reconcile.HeaderSet, [][]string) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := make([][]string, len(s.rows))
	for i, row := range s.rows {
		rows[i] = s.padded(row)
	}
	return s.header.Clone(), rows
}

func (s *Sheet) padded(row []string) []string {
	width := len(s.header)
	if len(row) > width {
		width = len(row)
	}
	out := make([]string, width)
	copy(out, row)
	return out
}

func cloneRow(row []string) []string {
	out := make([]string, len(row))
	copy(out, row)
	return out
}
