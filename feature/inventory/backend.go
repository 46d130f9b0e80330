package inventory

import (
	"context"
	"fmt"

	"inventory-sync/core/database"
	"inventory-sync/core/reconcile"
	"inventory-sync/core/sheet"
	"inventory-sync/core/storage"

	"gorm.io/gorm"
)

// Backend hands out the store a sync pass or a read runs against.
type Backend interface {
	// Name identifies the backend in logs and reports.
	Name() string
	// Open returns the store. Buffered stores are loaded fresh on every call.
	Open(ctx context.Context) (reconcile.Store, error)
}

type memoryBackend struct {
	sheet *sheet.Sheet
}

// NewMemoryBackend keeps the sheet in process memory. Its content is lost on exit.
func NewMemoryBackend(s *sheet.Sheet) Backend {
	if s == nil {
		s = sheet.New()
	}
	return &memoryBackend{sheet: s}
}

func (b *memoryBackend) Name() string { return reconcile.BackendMemory }

func (b *memoryBackend) Open(ctx context.Context) (reconcile.Store, error) {
	return b.sheet, nil
}

type sqlBackend struct {
	store *database.SheetStore
}

// NewSQLBackend serves a SheetStore.
func NewSQLBackend(store *database.SheetStore) Backend {
	return &sqlBackend{store: store}
}

func (b *sqlBackend) Name() string { return reconcile.BackendSQL }

func (b *sqlBackend) Open(ctx context.Context) (reconcile.Store, error) {
	return b.store, nil
}

type objectBackend struct {
	client storage.Client
	bucket string
	object string
	region string
}

// NewObjectBackend serves a CSV object. Every Open downloads it again.
func NewObjectBackend(client storage.Client, bucket, object, region string) Backend {
	return &objectBackend{client: client, bucket: bucket, object: object, region: region}
}

func (b *objectBackend) Name() string { return reconcile.BackendObject }

func (b *objectBackend) Open(ctx context.Context) (reconcile.Store, error) {
	return storage.OpenObjectSheet(ctx, b.client, b.bucket, b.object, b.region)
}

// BackendDeps carries the connections a backend may need. Unused ones may be nil.
type BackendDeps struct {
	DB      *gorm.DB
	Storage storage.Client
	Config  storage.Config
}

// NewBackend builds the backend selected by cfg.Backend.
func NewBackend(cfg reconcile.Config, deps BackendDeps) (Backend, error) {
	switch cfg.Backend {
	case "", reconcile.BackendMemory:
		return NewMemoryBackend(nil), nil
	case reconcile.BackendSQL:
		if deps.DB == nil {
			return nil, fmt.Errorf("sql backend requires a database connection")
		}
		store, err := database.NewSheetStore(deps.DB, cfg.Sheet)
		if err != nil {
			return nil, err
		}
		return NewSQLBackend(store), nil
	case reconcile.BackendObject:
		if deps.Storage == nil {
			return nil, fmt.Errorf("object backend requires a storage client")
		}
		return NewObjectBackend(deps.Storage, deps.Config.Bucket, cfg.Sheet, deps.Config.Region), nil
	default:
		return nil, fmt.Errorf("unknown sync backend %q", cfg.Backend)
	}
}
