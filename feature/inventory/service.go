package inventory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"inventory-sync/core/reconcile"

	"go.uber.org/zap"
)

// Service runs sync passes and serves the read views of one backend.
type Service struct {
	backend Backend
	opts    reconcile.Options
	logger  *zap.Logger
	cache   *viewCache

	// mu serializes sync passes and repairs; the engine assumes a single writer.
	mu sync.Mutex
}

// NewService creates a service. A zero cacheTTL disables the view cache.
func NewService(backend Backend, opts reconcile.Options, cacheTTL time.Duration, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		backend: backend,
		opts:    opts,
		logger:  logger,
	}
	s.cache = newViewCache(cacheTTL, s.buildView)
	return s
}

// KeyField returns the configured machine identity field.
func (s *Service) KeyField() string {
	if s.opts.KeyField == "" {
		return reconcile.DefaultKeyField
	}
	return s.opts.KeyField
}

// Sync reconciles records into the backend. dryRun overrides the configured option.
func (s *Service) Sync(ctx context.Context, records []reconcile.Record, dryRun bool) *reconcile.Report {
	s.mu.Lock()
	defer s.mu.Unlock()

	store, err := s.backend.Open(ctx)
	if err != nil {
		s.logger.Error("Failed to open store", zap.String("backend", s.backend.Name()), zap.Error(err))
		return reconcile.FailedReport(fmt.Errorf("%w: open %s store: %v", reconcile.ErrStoreRead, s.backend.Name(), err))
	}

	opts := s.opts
	opts.DryRun = opts.DryRun || dryRun
	report := reconcile.NewEngine(store, opts, s.logger.With(zap.String("backend", s.backend.Name()))).Sync(ctx, records)

	if !report.DryRun && (report.Updated > 0 || report.Added > 0 || report.Err() != nil) {
		s.cache.Invalidate()
	}
	return report
}

// View returns the store content, cached for the configured TTL.
func (s *Service) View(ctx context.Context) (*View, error) {
	return s.cache.Get(ctx)
}

// Machine returns the latest snapshot stored for key.
func (s *Service) Machine(ctx context.Context, key string) (reconcile.Record, bool, error) {
	view, err := s.View(ctx)
	if err != nil {
		return reconcile.Record{}, false, err
	}
	rec, ok := view.Lookup(s.KeyField(), key)
	return rec, ok, nil
}

// Store opens the backend's store for read-only inspection.
func (s *Service) Store(ctx context.Context) (reconcile.Store, error) {
	return s.backend.Open(ctx)
}

// Repair runs fn against a freshly opened store while no sync pass can run,
// then drops the cached view.
func (s *Service) Repair(ctx context.Context, fn func(ctx context.Context, store reconcile.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	store, err := s.backend.Open(ctx)
	if err != nil {
		return fmt.Errorf("open %s store: %w", s.backend.Name(), err)
	}
	defer s.cache.Invalidate()

	s.logger.Info("Repairing store", zap.String("backend", s.backend.Name()))
	return fn(ctx, store)
}

func (s *Service) buildView(ctx context.Context) (*View, error) {
	store, err := s.backend.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", s.backend.Name(), err)
	}
	header, err := store.HeaderRow(ctx)
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	rows, err := store.DataRows(ctx)
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}

	view := &View{Header: header, Rows: make([][]string, 0, len(rows))}
	for _, r := range rows {
		values := make([]string, len(header))
		copy(values, r.Values)
		view.Rows = append(view.Rows, values)
	}
	return view, nil
}
