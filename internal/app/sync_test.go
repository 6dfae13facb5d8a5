package app

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/google/go-cmp/cmp"
	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"repo-mirror/internal/core"
	"repo-mirror/internal/types"
)

func gzipText(t *testing.T, text string) []byte {
	t.Helper()
	var buf bytes.Buffer
	writer := gzip.NewWriter(&buf)
	_, err := writer.Write([]byte(text))
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return buf.Bytes()
}

func fixedClock() func() time.Time {
	at := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		at = at.Add(time.Second)
		return at
	}
}

func TestSyncRejectsMissingSources(t *testing.T) {
	handler := &fakeHandler{}
	history := &fakeHistory{}
	syncer := NewSyncer(handler, history, fixedClock(), "run-1")

	report, err := syncer.Run(t.Context(), []string{"", "  "})
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
	assert.Equal(t, types.SyncStateFailed, report.State)
	assert.Equal(t, types.SyncStateFailed, syncer.State())
	assert.Zero(t, handler.fetchCalls)
	assert.Zero(t, handler.schemaCalls)
	assert.Empty(t, history.reports)
}

func TestSyncPartialFailure(t *testing.T) {
	urls := []string{"http://m/a.gz", "http://m/b.gz", "http://m/c.gz", "http://m/d.gz"}
	sources := types.NewSourceDescriptors(urls)
	handler := &fakeHandler{results: []types.FetchResult{
		{Source: sources[3], Data: gzipText(t, "Package: zsh\nVersion: 5.9-6\nArchitecture: amd64\n")},
		{Source: sources[2], Data: []byte("definitely not gzip")},
		{Source: sources[1], Err: &types.TransferError{URL: urls[1], Status: 404, Err: errors.New("not found")}},
		{Source: sources[0], Data: gzipText(t, "Package: bash\nVersion: 5.2-1\nArchitecture: sparc\n\nPackage: curl\nVersion: 8.5.0-2\n")},
	}}
	history := &fakeHistory{}
	syncer := NewSyncer(handler, history, fixedClock(), "run-2")

	report, err := syncer.Run(t.Context(), urls)
	require.NoError(t, err)
	assert.Equal(t, types.SyncStateDone, report.State)
	assert.Equal(t, 4, report.Sources)
	assert.Equal(t, 2, report.SourcesSucceeded)
	assert.Equal(t, 2, report.SourcesFailed)
	assert.Equal(t, 3, report.Records)
	assert.Equal(t, 1, report.RecordErrors)
	assert.Equal(t, "run-2", report.RunID)
	assert.True(t, report.FinishedAt.After(report.StartedAt))

	var names []string
	for _, record := range handler.stored {
		names = append(names, record.Name)
	}
	if diff := cmp.Diff([]string{"bash", "curl", "zsh"}, names); diff != "" {
		t.Fatalf("unexpected store order (-want +got):\n%s", diff)
	}
	assert.Equal(t, types.ArchitectureAll, handler.stored[0].Architecture)

	stages := []types.FailureStage{}
	for _, failure := range report.Failures {
		stages = append(stages, failure.Stage)
	}
	if diff := cmp.Diff([]types.FailureStage{types.FailureStageFetch, types.FailureStageDecode}, stages); diff != "" {
		t.Fatalf("unexpected failure stages (-want +got):\n%s", diff)
	}
	assert.Equal(t, urls[1], report.Failures[0].URL)
	assert.Equal(t, 1, handler.schemaCalls)
	assert.Equal(t, 1, handler.storeCalls)
	require.Len(t, history.reports, 1)
	assert.Equal(t, types.SyncStateDone, history.reports[0].State)
}

func TestSyncAllSourcesFailStillStoresEmptyBatch(t *testing.T) {
	urls := []string{"http://m/a.gz"}
	handler := &fakeHandler{results: []types.FetchResult{
		{Source: types.NewSourceDescriptors(urls)[0], Err: errors.New("connection refused")},
	}}
	syncer := NewSyncer(handler, nil, fixedClock(), "run-3")

	report, err := syncer.Run(t.Context(), urls)
	require.NoError(t, err)
	assert.Equal(t, types.SyncStateDone, report.State)
	assert.Equal(t, 1, report.SourcesFailed)
	assert.Equal(t, 1, handler.schemaCalls)
	assert.Equal(t, 1, handler.storeCalls)
	assert.NotNil(t, handler.stored)
	assert.Empty(t, handler.stored)
}

func TestSyncSchemaFailureSkipsStore(t *testing.T) {
	urls := []string{"http://m/a.gz"}
	handler := &fakeHandler{
		results: []types.FetchResult{
			{Source: types.NewSourceDescriptors(urls)[0], Data: gzipText(t, "Package: bash\nVersion: 5.2-1\n")},
		},
		schemaErr: errors.New("disk full"),
	}
	history := &fakeHistory{}
	syncer := NewSyncer(handler, history, fixedClock(), "run-4")

	report, err := syncer.Run(t.Context(), urls)
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeFailedPrecondition, errbuilder.CodeOf(err))
	assert.Equal(t, types.SyncStateFailed, report.State)
	assert.Zero(t, report.Records)
	assert.Zero(t, handler.storeCalls)
	assert.Empty(t, history.reports)
}

func TestSyncStoreFailure(t *testing.T) {
	urls := []string{"http://m/a.gz"}
	handler := &fakeHandler{
		results: []types.FetchResult{
			{Source: types.NewSourceDescriptors(urls)[0], Data: gzipText(t, "Package: bash\nVersion: 5.2-1\n")},
		},
		storeErr: errors.New("constraint failed"),
	}
	history := &fakeHistory{}
	syncer := NewSyncer(handler, history, fixedClock(), "run-5")

	report, err := syncer.Run(t.Context(), urls)
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInternal, errbuilder.CodeOf(err))
	assert.Equal(t, types.SyncStateFailed, report.State)
	assert.Zero(t, report.Records)
	require.Len(t, history.reports, 1)
	assert.Equal(t, types.SyncStateFailed, history.reports[0].State)
}

func TestSyncHistoryFailureIsNotFatal(t *testing.T) {
	urls := []string{"http://m/a.gz"}
	handler := &fakeHandler{results: []types.FetchResult{
		{Source: types.NewSourceDescriptors(urls)[0], Data: gzipText(t, "Package: bash\nVersion: 5.2-1\n")},
	}}
	syncer := NewSyncer(handler, &fakeHistory{err: errors.New("locked")}, fixedClock(), "run-6")

	report, err := syncer.Run(t.Context(), urls)
	require.NoError(t, err)
	assert.Equal(t, types.SyncStateDone, report.State)
	assert.Equal(t, 1, report.Records)
}

func TestOrderResultsFillsMissingSources(t *testing.T) {
	sources := types.NewSourceDescriptors([]string{"http://m/a", "http://m/b", "http://m/c"})
	results := []types.FetchResult{
		{Source: sources[2], Data: []byte("c")},
		{Source: sources[0], Data: []byte("a")},
		{Source: sources[0], Data: []byte("duplicate")},
	}
	ordered := orderResults(sources, results)
	require.Len(t, ordered, 3)
	assert.Equal(t, []byte("a"), ordered[0].Data)
	assert.Equal(t, []byte("c"), ordered[2].Data)

	var transferErr *types.TransferError
	require.True(t, errors.As(ordered[1].Err, &transferErr))
	assert.Equal(t, "http://m/b", transferErr.URL)
	assert.ErrorIs(t, ordered[1].Err, errNoResult)
}

func TestServiceSyncAssignsRunID(t *testing.T) {
	urls := []string{"http://m/a.gz"}
	handler := &fakeHandler{results: []types.FetchResult{
		{Source: types.NewSourceDescriptors(urls)[0], Data: gzipText(t, "Package: bash\nVersion: 5.2-1\n")},
	}}
	service := Service{
		Handler:  handler,
		History:  &fakeHistory{},
		Clock:    fixedClock(),
		NewRunID: func() string { return "fixed-run" },
	}
	result, err := service.Sync(t.Context(), SyncRequest{Sources: urls})
	require.NoError(t, err)
	assert.Equal(t, "fixed-run", result.Report.RunID)
	assert.Equal(t, core.ParseRecords("Package: bash\nVersion: 5.2-1\n"), handler.stored)
}
