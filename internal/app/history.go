package app

import (
	"context"

	"github.com/ZanzyTHEbar/errbuilder-go"
)

func (s Service) SyncHistory(ctx context.Context, req HistoryRequest) (HistoryResult, error) {
	if req.Limit < 0 {
		return HistoryResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("limit must not be negative")
	}
	if err := s.Handler.InitializeSchema(ctx); err != nil {
		return HistoryResult{}, errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg("failed to open package store").
			WithCause(err)
	}
	runs, err := s.History.ListRuns(ctx, req.Limit)
	if err != nil {
		return HistoryResult{}, err
	}
	return HistoryResult{Runs: runs}, nil
}
