package reconcile

import (
	"context"
	"fmt"
	"time"

	"inventory-sync/core/metrics"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Engine reconciles record batches into a Store.
// It holds no state between invocations and assumes at most one Sync runs
// against a given store at a time; callers needing concurrency must serialize.
type Engine struct {
	store  Store
	opts   Options
	logger *zap.Logger
	pacer  *rate.Limiter
}

// NewEngine creates an engine for store. A nil logger disables logging.
func NewEngine(store Store, opts Options, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts = opts.withDefaults()

	var pacer *rate.Limiter
	if opts.WriteInterval > 0 {
		pacer = rate.NewLimiter(rate.Every(opts.WriteInterval), 1)
	}

	return &Engine{
		store:  store,
		opts:   opts,
		logger: logger,
		pacer:  pacer,
	}
}

// Options returns the effective options.
func (e *Engine) Options() Options {
	return e.opts
}

// Plan reads the store and plans a batch without mutating anything.
// It also returns the number of existing data rows.
func (e *Engine) Plan(ctx context.Context, batch []Record) (*Plan, SchemaChange, int, error) {
	if len(batch) == 0 {
		return nil, SchemaChange{}, 0, ErrEmptyBatch
	}

	existing, err := e.store.HeaderRow(ctx)
	if err != nil {
		return nil, SchemaChange{}, 0, fmt.Errorf("%w: header row: %v", ErrStoreRead, err)
	}

	rows, err := e.store.DataRows(ctx)
	if err != nil {
		return nil, SchemaChange{}, 0, fmt.Errorf("%w: data rows: %v", ErrStoreRead, err)
	}

	if len(existing) == 0 && len(rows) > 0 {
		return nil, SchemaChange{}, len(rows), fmt.Errorf("%w: store has %d data rows but no header row", ErrSchemaConflict, len(rows))
	}

	change, err := SyncSchema(existing, BatchFields(batch), e.opts.KeyField, e.opts.SchemaPolicy)
	if err != nil {
		return nil, change, len(rows), err
	}

	index := BuildKeyIndex(rows, change.KeyColumn)
	if len(index.Duplicates) > 0 {
		e.logger.Warn("Store holds duplicate keys; later rows are ignored",
			zap.Ints("positions", index.Duplicates))
	}
	if len(index.Orphans) > 0 {
		e.logger.Debug("Store holds rows without a key", zap.Ints("positions", index.Orphans))
	}

	plan := PlanUpserts(batch, change, e.opts.KeyField, index, e.opts.SchemaPolicy)
	return plan, change, len(rows), nil
}

// Sync runs one full pass: schema, index, plan, mutate, sort.
// It always returns a report; Report.Err carries invocation-level failures.
func (e *Engine) Sync(ctx context.Context, batch []Record) *Report {
	start := time.Now()
	report := &Report{DryRun: e.opts.DryRun}
	defer func() { e.observe(report, time.Since(start)) }()

	plan, change, existingRows, err := e.Plan(ctx, batch)
	if err != nil {
		e.logger.Error("Sync aborted", zap.Error(err), zap.Int("records", len(batch)))
		return report.fail(err)
	}

	report.Header = plan.Header
	report.Skipped = plan.Skipped
	for _, s := range plan.Skipped {
		e.logger.Warn("Skipping record", zap.Int("index", s.Index), zap.String("key", s.Key), zap.String("reason", s.Reason))
	}
	if plan.Summary.Duplicates > 0 {
		e.logger.Info("Collapsed duplicate keys in batch", zap.Int("duplicates", plan.Summary.Duplicates))
	}

	if e.opts.DryRun {
		report.Success = true
		report.Updated = plan.Summary.Updates
		report.Added = plan.Summary.Inserts
		report.Total = existingRows + plan.Summary.Inserts
		report.Message = fmt.Sprintf("dry run: %d records would update %d rows and add %d", len(batch), report.Updated, report.Added)
		return report
	}

	if change.NeedsWrite() {
		if err := e.store.WriteHeaderRow(ctx, change.Header); err != nil {
			return report.fail(fmt.Errorf("%w: header row: %v", ErrStoreWrite, err))
		}
		if change.Initialized {
			e.logger.Info("Initialized store header", zap.Strings("header", change.Header))
			if f, ok := e.store.(HeaderFormatter); ok {
				if err := f.FormatHeaderRow(ctx, len(change.Header), *e.opts.HeaderStyle); err != nil {
					report.Warnings = append(report.Warnings, fmt.Sprintf("format header: %v", err))
					e.logger.Warn("Failed to format header row", zap.Error(err))
				}
			}
		} else {
			e.logger.Info("Extended store header", zap.Strings("added", change.Added))
		}
	}

	applied := ApplyPlan(ctx, e.store, plan, e.pacer)
	report.Updated = applied.Updated
	report.Added = applied.Added
	report.Failed = applied.Failed
	for _, f := range applied.Failed {
		e.logger.Warn("Row write failed", zap.String("operation", string(f.Operation)), zap.String("key", f.Key), zap.Error(f.Err))
	}

	report.Total = existingRows + applied.Added
	if counter, ok := e.store.(RowCounter); ok {
		if n, err := counter.DataRowCount(ctx); err == nil {
			report.Total = n
		} else {
			e.logger.Warn("Failed to count rows, using computed total", zap.Error(err))
		}
	}

	if err := SortStore(ctx, e.store, report.Total, change.KeyColumn); err != nil {
		report.Warnings = append(report.Warnings, err.Error())
		e.logger.Warn("Sort failed", zap.Error(err))
	}

	if f, ok := e.store.(Flusher); ok {
		if err := f.Flush(ctx); err != nil {
			report.Updated, report.Added, report.Total = 0, 0, existingRows
			return report.fail(fmt.Errorf("%w: flush: %v", ErrStoreWrite, err))
		}
	}

	report.Success = true
	report.Message = fmt.Sprintf("synced %d records: %d updated, %d added, %d skipped, %d failed",
		len(batch), report.Updated, report.Added, len(report.Skipped), len(report.Failed))

	e.logger.Info("Sync completed",
		zap.Int("records", len(batch)),
		zap.Int("updated", report.Updated),
		zap.Int("added", report.Added),
		zap.Int("total", report.Total),
		zap.Int("skipped", len(report.Skipped)),
		zap.Int("failed", len(report.Failed)),
	)

	return report
}

func (e *Engine) observe(report *Report, d time.Duration) {
	status := "success"
	switch {
	case !report.Success:
		status = "failure"
	case report.DryRun:
		status = "dry_run"
	}

	outcome := metrics.SyncOutcome{
		Status:         status,
		Skipped:        len(report.Skipped),
		Duration:       d,
		Total:          report.Total,
		TotalIsCurrent: report.Success && !report.DryRun,
	}
	if !report.DryRun {
		outcome.Updated = report.Updated
		outcome.Added = report.Added
	}
	for _, f := range report.Failed {
		if f.Operation == OpUpdate {
			outcome.FailedUpdates++
		} else {
			outcome.FailedInserts++
		}
	}
	metrics.ObserveSync(outcome)
}
