package ports

import (
	"context"

	"repo-mirror/internal/types"
)

// StorePort persists a complete batch of records. InitializeSchema must be
// called once before Store.
type StorePort interface {
	InitializeSchema(ctx context.Context) error
	Store(ctx context.Context, records []types.PackageRecord) error
}

type PackageQueryPort interface {
	ListPackages(ctx context.Context, filter types.PackageFilter) ([]types.PackageRecord, error)
}

type SyncHistoryPort interface {
	RecordRun(ctx context.Context, report types.SyncReport) error
	ListRuns(ctx context.Context, limit int) ([]types.SyncRun, error)
}

type PackageExportPort interface {
	Write(path string, format string, records []types.PackageRecord) error
}
