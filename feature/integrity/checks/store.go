package checks

import (
	"context"
	"fmt"

	"inventory-sync/core/reconcile"
)

// Check names used in StoreReport.Issues.
const (
	CheckHeaderMissing   = "header_missing"
	CheckHeaderDuplicate = "header_duplicate"
	CheckKeyColumn       = "key_column_missing"
	CheckDuplicateKeys   = "duplicate_keys"
	CheckOrphanRows      = "orphan_rows"
	CheckWideRows        = "wide_rows"
	CheckUnsorted        = "unsorted"
)

// Issue is one violated store invariant.
type Issue struct {
	Check     string   `json:"check"`
	Detail    string   `json:"detail"`
	Positions []int    `json:"positions,omitempty"`
	Values    []string `json:"values,omitempty"`
}

// StoreReport strictly types the result of a store integrity check.
type StoreReport struct {
	KeyField  string              `json:"key_field"`
	Header    reconcile.HeaderSet `json:"header"`
	KeyColumn int                 `json:"key_column"`
	Rows      int                 `json:"rows"`
	Healthy   bool                `json:"healthy"`
	Issues    []Issue             `json:"issues"`
}

// Has reports whether the check named check failed.
func (r *StoreReport) Has(check string) bool {
	for _, i := range r.Issues {
		if i.Check == check {
			return true
		}
	}
	return false
}

func (r *StoreReport) add(issue Issue) {
	r.Issues = append(r.Issues, issue)
	r.Healthy = false
}

// CheckStore reads the whole store once and verifies that the header exists
// and is unique, that it carries keyField, that every key appears once, that
// no row lacks a key or outgrows the header, and that rows are sorted by key.
// Read failures are returned as errors; violations go into the report.
func CheckStore(ctx context.Context, store reconcile.Store, keyField string) (*StoreReport, error) {
	if keyField == "" {
		keyField = reconcile.DefaultKeyField
	}

	header, err := store.HeaderRow(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read header row: %w", err)
	}
	rows, err := store.DataRows(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read data rows: %w", err)
	}

	report := &StoreReport{
		KeyField:  keyField,
		Header:    header,
		KeyColumn: header.Index(keyField),
		Rows:      len(rows),
		Healthy:   true,
		Issues:    []Issue{},
	}

	if len(header) == 0 {
		if len(rows) > 0 {
			report.add(Issue{Check: CheckHeaderMissing, Detail: fmt.Sprintf("%d data rows without a header row", len(rows))})
		}
		return report, nil
	}

	seen := make(map[string]struct{}, len(header))
	var dupCols []string
	for _, name := range header {
		if _, ok := seen[name]; ok {
			dupCols = append(dupCols, name)
			continue
		}
		seen[name] = struct{}{}
	}
	if len(dupCols) > 0 {
		report.add(Issue{Check: CheckHeaderDuplicate, Detail: "header repeats column names", Values: dupCols})
	}

	var wide []int
	for _, row := range rows {
		if len(row.Values) > len(header) {
			wide = append(wide, row.Position)
		}
	}
	if len(wide) > 0 {
		report.add(Issue{Check: CheckWideRows, Detail: fmt.Sprintf("rows wider than the %d-column header", len(header)), Positions: wide})
	}

	if report.KeyColumn < 0 {
		report.add(Issue{Check: CheckKeyColumn, Detail: fmt.Sprintf("header has no %q column", keyField)})
		return report, nil
	}

	index := reconcile.BuildKeyIndex(rows, report.KeyColumn)
	if len(index.Duplicates) > 0 {
		keyAt := make(map[int]string, len(rows))
		for _, row := range rows {
			keyAt[row.Position] = row.Value(report.KeyColumn)
		}
		var keys []string
		for _, pos := range index.Duplicates {
			keys = append(keys, keyAt[pos])
		}
		report.add(Issue{Check: CheckDuplicateKeys, Detail: "keys stored more than once", Positions: index.Duplicates, Values: keys})
	}
	if len(index.Orphans) > 0 {
		report.add(Issue{Check: CheckOrphanRows, Detail: "rows without a key", Positions: index.Orphans})
	}

	for i := 1; i < len(rows); i++ {
		prev, cur := rows[i-1].Value(report.KeyColumn), rows[i].Value(report.KeyColumn)
		if cur < prev {
			report.add(Issue{
				Check:     CheckUnsorted,
				Detail:    fmt.Sprintf("%q follows %q", cur, prev),
				Positions: []int{rows[i].Position},
			})
			break
		}
	}

	return report, nil
}

// FixOrder sorts the store by its key column and persists buffered stores.
// Only ordering is repaired; duplicates and orphans need a human decision.
func FixOrder(ctx context.Context, store reconcile.Store, report *StoreReport) error {
	if report.KeyColumn < 0 || !report.Has(CheckUnsorted) {
		return nil
	}
	if err := reconcile.SortStore(ctx, store, report.Rows, report.KeyColumn); err != nil {
		return err
	}
	if f, ok := store.(reconcile.Flusher); ok {
		if err := f.Flush(ctx); err != nil {
			return fmt.Errorf("failed to persist sorted rows: %w", err)
		}
	}
	return nil
}
