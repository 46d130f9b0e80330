package reconcile

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/time/rate"
)

// ApplyResult counts the operations a store accepted.
type ApplyResult struct {
	Updated int
	Added   int
	Failed  []RowFailure
}

// ApplyPlan executes the plan's operations one row at a time.
// A rejected write is recorded and the remaining operations are still attempted.
// When pacer is non-nil each write waits for it first.
// Once ctx is done every remaining operation is recorded as failed.
func ApplyPlan(ctx context.Context, store Store, plan *Plan, pacer *rate.Limiter) ApplyResult {
	var res ApplyResult

	for _, op := range plan.Operations {
		if err := ctx.Err(); err != nil {
			res.Failed = append(res.Failed, rowFailure(op, err))
			continue
		}
		if pacer != nil {
			if err := pacer.Wait(ctx); err != nil {
				res.Failed = append(res.Failed, rowFailure(op, err))
				continue
			}
		}

		var err error
		switch op.Type {
		case OpUpdate:
			err = store.WriteRow(ctx, op.Position, op.Values)
		case OpInsert:
			err = store.AppendRow(ctx, op.Values)
		default:
			err = fmt.Errorf("unknown operation %q", op.Type)
		}

		if err != nil {
			res.Failed = append(res.Failed, rowFailure(op, err))
			continue
		}

		switch op.Type {
		case OpUpdate:
			res.Updated++
		case OpInsert:
			res.Added++
		}
	}

	return res
}

func rowFailure(op Operation, err error) RowFailure {
	wrapped := fmt.Errorf("%w: %s %s: %v", ErrStoreWrite, op.Type, op.Key, err)
	return RowFailure{
		Operation: op.Type,
		Key:       op.Key,
		Position:  op.Position,
		Reason:    wrapped.Error(),
		Err:       wrapped,
	}
}

// SortStore sorts the store's data rows ascending by keyColumn.
// It is a no-op when there are no data rows or the key column is unknown.
func SortStore(ctx context.Context, store Store, rowCount, keyColumn int) error {
	if rowCount == 0 || keyColumn < 0 {
		return nil
	}
	if err := store.SortDataRows(ctx, keyColumn, true); err != nil {
		return fmt.Errorf("%w: %v", ErrSort, err)
	}
	return nil
}

// SortRows stably sorts rows by the cell at keyColumn and renumbers their
// positions from 1. Stores that hold their rows in memory use it to
// implement SortDataRows.
func SortRows(rows []Row, keyColumn int, ascending bool) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i].Value(keyColumn), rows[j].Value(keyColumn)
		if ascending {
			return a < b
		}
		return a > b
	})
	for i := range rows {
		rows[i].Position = i + 1
	}
}
