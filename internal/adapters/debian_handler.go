package adapters

import (
	"context"

	"repo-mirror/internal/core"
	"repo-mirror/internal/ports"
	"repo-mirror/internal/types"
)

// DebianHandler handles flat Debian "Packages" indexes.
type DebianHandler struct {
	Pipeline ports.FetchPipelinePort
	Backend  ports.StorePort
}

func NewDebianHandler(pipeline ports.FetchPipelinePort, store ports.StorePort) DebianHandler {
	return DebianHandler{Pipeline: pipeline, Backend: store}
}

func (h DebianHandler) Name() string {
	return "debian"
}

func (h DebianHandler) FetchAll(ctx context.Context, sources []types.SourceDescriptor) []types.FetchResult {
	return h.Pipeline.FetchAll(ctx, sources)
}

func (h DebianHandler) Parse(text string) types.ParseResult {
	return core.ParseIndex(text)
}

func (h DebianHandler) InitializeSchema(ctx context.Context) error {
	return h.Backend.InitializeSchema(ctx)
}

func (h DebianHandler) Store(ctx context.Context, records []types.PackageRecord) error {
	return h.Backend.Store(ctx, records)
}

var _ ports.RepositoryHandler = DebianHandler{}
