package ports

import (
	"context"

	"repo-mirror/internal/types"
)

// RepositoryHandler is the capability set of one upstream repository format.
// Supporting another format means adding an implementation, not changing the
// sync pipeline.
type RepositoryHandler interface {
	Name() string
	FetchAll(ctx context.Context, sources []types.SourceDescriptor) []types.FetchResult
	Parse(text string) types.ParseResult
	InitializeSchema(ctx context.Context) error
	Store(ctx context.Context, records []types.PackageRecord) error
}
