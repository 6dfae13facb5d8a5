package ports

import (
	"context"

	"repo-mirror/internal/types"
)

type FetchPipelinePort interface {
	FetchAll(ctx context.Context, sources []types.SourceDescriptor) []types.FetchResult
}

type ProgressObserver interface {
	TransferStarted(source string, total int64)
	TransferProgressed(progress types.TransferProgress)
	TransferFinished(source string, err error)
}
