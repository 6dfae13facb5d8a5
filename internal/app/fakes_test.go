package app

import (
	"context"

	"repo-mirror/internal/core"
	"repo-mirror/internal/types"
)

type fakeHandler struct {
	results   []types.FetchResult
	schemaErr error
	storeErr  error

	fetchCalls  int
	schemaCalls int
	storeCalls  int
	stored      []types.PackageRecord
}

func (h *fakeHandler) Name() string { return "fake" }

func (h *fakeHandler) FetchAll(_ context.Context, _ []types.SourceDescriptor) []types.FetchResult {
	h.fetchCalls++
	return h.results
}

func (h *fakeHandler) Parse(text string) types.ParseResult {
	return core.ParseIndex(text)
}

func (h *fakeHandler) InitializeSchema(context.Context) error {
	h.schemaCalls++
	return h.schemaErr
}

func (h *fakeHandler) Store(_ context.Context, records []types.PackageRecord) error {
	h.storeCalls++
	if h.storeErr != nil {
		return h.storeErr
	}
	h.stored = records
	return nil
}

type fakeHistory struct {
	err     error
	reports []types.SyncReport
}

func (h *fakeHistory) RecordRun(_ context.Context, report types.SyncReport) error {
	if h.err != nil {
		return h.err
	}
	h.reports = append(h.reports, report)
	return nil
}

func (h *fakeHistory) ListRuns(_ context.Context, limit int) ([]types.SyncRun, error) {
	runs := make([]types.SyncRun, 0, len(h.reports))
	for _, report := range h.reports {
		runs = append(runs, types.SyncRun{RunID: report.RunID, State: report.State, Records: report.Records})
	}
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}
