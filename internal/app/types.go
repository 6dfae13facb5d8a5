package app

import "repo-mirror/internal/types"

type SyncRequest struct {
	Sources []string
}

type SyncResult struct {
	Report types.SyncReport
}

type ListRequest struct {
	NameContains string
	Architecture string
	Limit        int
}

type ListResult struct {
	Packages []types.PackageRecord
}

type ExportRequest struct {
	Output       string
	Format       string
	NameContains string
	Architecture string
}

type ExportResult struct {
	OutputPath string
	Format     string
	Count      int
}

type HistoryRequest struct {
	Limit int
}

type HistoryResult struct {
	Runs []types.SyncRun
}
