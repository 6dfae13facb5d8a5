package types

import "time"

type SyncState string

const (
	SyncStateIdle     SyncState = "idle"
	SyncStateFetching SyncState = "fetching"
	SyncStateParsing  SyncState = "parsing"
	SyncStateStoring  SyncState = "storing"
	SyncStateDone     SyncState = "done"
	SyncStateFailed   SyncState = "failed"
)

type FailureStage string

const (
	FailureStageFetch  FailureStage = "fetch"
	FailureStageDecode FailureStage = "decode"
)

type SourceFailure struct {
	URL   string
	Stage FailureStage
	Err   string
}

type SyncReport struct {
	RunID            string
	State            SyncState
	Sources          int
	SourcesSucceeded int
	SourcesFailed    int
	Records          int
	RecordErrors     int
	Failures         []SourceFailure
	StartedAt        time.Time
	FinishedAt       time.Time
}

func (r SyncReport) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

type SyncRun struct {
	RunID            string
	State            SyncState
	SourcesSucceeded int
	SourcesFailed    int
	Records          int
	StartedAt        time.Time
	FinishedAt       time.Time
}
