package integrity

import (
	"context"
	"fmt"

	"inventory-sync/core/reconcile"
	"inventory-sync/core/storage"
	"inventory-sync/feature/integrity/checks"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// StoreSource hands out the store to inspect. inventory.Service implements it.
// Repair must keep sync passes out while fn runs.
type StoreSource interface {
	Store(ctx context.Context) (reconcile.Store, error)
	Repair(ctx context.Context, fn func(ctx context.Context, store reconcile.Store) error) error
	KeyField() string
}

// Report combines every check that could run.
// Schema and Bucket are nil when no database or storage client is configured.
type Report struct {
	Healthy bool                 `json:"healthy"`
	Store   *checks.StoreReport  `json:"store,omitempty"`
	Schema  *checks.SchemaReport `json:"schema,omitempty"`
	Bucket  *checks.BucketReport `json:"bucket,omitempty"`
	Errors  map[string]string    `json:"errors,omitempty"`
}

// Service handles integrity checks.
type Service struct {
	source  StoreSource
	db      *gorm.DB
	client  storage.Client
	storage storage.Config
	object  string
	logger  *zap.Logger
}

// NewService creates a new integrity service. db and client may be nil.
func NewService(source StoreSource, db *gorm.DB, client storage.Client, cfg storage.Config, object string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		source:  source,
		db:      db,
		client:  client,
		storage: cfg,
		object:  object,
		logger:  logger,
	}
}

// CheckStore verifies the invariants of the synced store.
func (s *Service) CheckStore(ctx context.Context) (*checks.StoreReport, error) {
	store, err := s.source.Store(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	return checks.CheckStore(ctx, store, s.source.KeyField())
}

// FixStore re-sorts an unsorted store and returns the report after the fix.
// The check and the sort run inside one repair of the source.
func (s *Service) FixStore(ctx context.Context) (*checks.StoreReport, error) {
	var report *checks.StoreReport
	err := s.source.Repair(ctx, func(ctx context.Context, store reconcile.Store) error {
		var err error
		report, err = checks.CheckStore(ctx, store, s.source.KeyField())
		if err != nil {
			return err
		}
		if !report.Has(checks.CheckUnsorted) {
			return nil
		}

		s.logger.Info("Sorting store", zap.Int("rows", report.Rows))
		if err := checks.FixOrder(ctx, store, report); err != nil {
			s.logger.Error("Failed to sort store", zap.Error(err))
			return err
		}
		report, err = checks.CheckStore(ctx, store, s.source.KeyField())
		return err
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

// HasDatabase reports whether the schema check can run.
func (s *Service) HasDatabase() bool {
	return s.db != nil
}

// CheckSchema verifies the sheet_rows table.
func (s *Service) CheckSchema() (*checks.SchemaReport, error) {
	return checks.CheckSheetTable(s.db)
}

// HasStorage reports whether the bucket check can run.
func (s *Service) HasStorage() bool {
	return s.client != nil
}

// CheckBucket verifies the sheet bucket.
func (s *Service) CheckBucket(ctx context.Context) (*checks.BucketReport, error) {
	if s.client == nil {
		return nil, fmt.Errorf("storage client is not configured")
	}
	return checks.CheckBucket(ctx, s.client, s.storage.Bucket, s.object)
}

// FixBucket creates the sheet bucket.
func (s *Service) FixBucket(ctx context.Context) error {
	if s.client == nil {
		return fmt.Errorf("storage client is not configured")
	}
	return checks.FixBucket(ctx, s.client, s.storage.Bucket, s.storage.Region, s.logger)
}

// Run executes every available check. Failures of one check do not stop the others.
func (s *Service) Run(ctx context.Context) *Report {
	report := &Report{Healthy: true, Errors: map[string]string{}}
	fail := func(check string, err error) {
		s.logger.Warn("Integrity check failed", zap.String("check", check), zap.Error(err))
		report.Errors[check] = err.Error()
		report.Healthy = false
	}

	if store, err := s.CheckStore(ctx); err != nil {
		fail("store", err)
	} else {
		report.Store = store
		report.Healthy = report.Healthy && store.Healthy
	}

	if s.HasDatabase() {
		if schema, err := s.CheckSchema(); err != nil {
			fail("schema", err)
		} else {
			report.Schema = schema
			report.Healthy = report.Healthy && schema.Matched
		}
	}

	if s.HasStorage() {
		if bucket, err := s.CheckBucket(ctx); err != nil {
			fail("bucket", err)
		} else {
			report.Bucket = bucket
			report.Healthy = report.Healthy && bucket.Exists
		}
	}

	if len(report.Errors) == 0 {
		report.Errors = nil
	}
	return report
}
