package app

import (
	"context"
	"errors"
	"time"

	assert "github.com/ZanzyTHEbar/assert-lib"
	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"repo-mirror/internal/core"
	"repo-mirror/internal/ports"
	"repo-mirror/internal/shared"
	"repo-mirror/internal/types"
)

var errNoResult = errors.New("fetch pipeline returned no result for source")

// Syncer drives one sync cycle: fetch every source, decode and parse the
// successful ones, then hand the combined batch to the store in one call.
// A Syncer is single use.
type Syncer struct {
	Handler ports.RepositoryHandler
	History ports.SyncHistoryPort
	Clock   func() time.Time
	RunID   string

	state types.SyncState
}

func NewSyncer(handler ports.RepositoryHandler, history ports.SyncHistoryPort, clock func() time.Time, runID string) *Syncer {
	if clock == nil {
		clock = time.Now
	}
	return &Syncer{
		Handler: handler,
		History: history,
		Clock:   clock,
		RunID:   runID,
		state:   types.SyncStateIdle,
	}
}

func (s *Syncer) State() types.SyncState {
	if s.state == "" {
		return types.SyncStateIdle
	}
	return s.state
}

func (s *Syncer) Run(ctx context.Context, urls []string) (types.SyncReport, error) {
	assert.NotEmpty(ctx, s.RunID, "sync run id must be set")
	logger := log.Ctx(ctx).With().Str("run_id", s.RunID).Str("handler", s.Handler.Name()).Logger()
	ctx = logger.WithContext(ctx)

	report := types.SyncReport{
		RunID:     s.RunID,
		State:     s.State(),
		StartedAt: s.Clock(),
	}

	urls = shared.NonEmptyTrimmed(urls)
	if len(urls) == 0 {
		s.fail(&report, &logger)
		return report, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("no sources configured")
	}
	sources := types.NewSourceDescriptors(urls)
	report.Sources = len(sources)

	s.transition(&report, &logger, types.SyncStateFetching)
	results := orderResults(sources, s.Handler.FetchAll(ctx, sources))

	s.transition(&report, &logger, types.SyncStateParsing)
	records := s.parseAll(&report, &logger, results)

	s.transition(&report, &logger, types.SyncStateStoring)
	if err := s.Handler.InitializeSchema(ctx); err != nil {
		s.fail(&report, &logger)
		return report, errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg("failed to initialize store schema").
			WithCause(err)
	}
	if err := s.Handler.Store(ctx, records); err != nil {
		s.fail(&report, &logger)
		s.recordHistory(ctx, &logger, report)
		return report, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to store records").
			WithCause(err)
	}
	report.Records = len(records)

	s.transition(&report, &logger, types.SyncStateDone)
	report.FinishedAt = s.Clock()
	logger.Info().
		Int("sources_succeeded", report.SourcesSucceeded).
		Int("sources_failed", report.SourcesFailed).
		Int("records", report.Records).
		Msg("sync finished")
	s.recordHistory(ctx, &logger, report)
	return report, nil
}

func (s *Syncer) parseAll(report *types.SyncReport, logger *zerolog.Logger, results []types.FetchResult) []types.PackageRecord {
	var records []types.PackageRecord
	for _, result := range results {
		url := result.Source.URL
		if !result.Succeeded() {
			s.sourceFailed(report, logger, url, types.FailureStageFetch, result.Err)
			continue
		}
		text, err := core.Decompress(result.Data)
		if err != nil {
			s.sourceFailed(report, logger, url, types.FailureStageDecode, err)
			continue
		}
		parsed := s.Handler.Parse(text)
		for _, parseErr := range parsed.Errors {
			logger.Debug().Str("source", url).Err(parseErr).Msg("record field rejected")
		}
		report.SourcesSucceeded++
		report.RecordErrors += len(parsed.Errors)
		records = append(records, parsed.Records...)
		logger.Info().
			Str("source", url).
			Int("records", len(parsed.Records)).
			Int("record_errors", len(parsed.Errors)).
			Msg("source parsed")
	}
	if records == nil {
		records = []types.PackageRecord{}
	}
	return records
}

func (s *Syncer) sourceFailed(report *types.SyncReport, logger *zerolog.Logger, url string, stage types.FailureStage, err error) {
	report.SourcesFailed++
	report.Failures = append(report.Failures, types.SourceFailure{
		URL:   url,
		Stage: stage,
		Err:   err.Error(),
	})
	logger.Warn().Str("source", url).Str("stage", string(stage)).Err(err).Msg("source skipped")
}

func (s *Syncer) transition(report *types.SyncReport, logger *zerolog.Logger, next types.SyncState) {
	logger.Debug().Str("from", string(s.State())).Str("to", string(next)).Msg("sync state")
	s.state = next
	report.State = next
}

func (s *Syncer) fail(report *types.SyncReport, logger *zerolog.Logger) {
	s.transition(report, logger, types.SyncStateFailed)
	report.FinishedAt = s.Clock()
}

func (s *Syncer) recordHistory(ctx context.Context, logger *zerolog.Logger, report types.SyncReport) {
	if s.History == nil {
		return
	}
	if err := s.History.RecordRun(ctx, report); err != nil {
		logger.Warn().Err(err).Msg("failed to record sync history")
	}
}

// orderResults lines results up with sources by index. A source the
// pipeline never reported on counts as a failed transfer.
func orderResults(sources []types.SourceDescriptor, results []types.FetchResult) []types.FetchResult {
	byIndex := make(map[int]types.FetchResult, len(results))
	for _, result := range results {
		if _, seen := byIndex[result.Source.Index]; seen {
			continue
		}
		byIndex[result.Source.Index] = result
	}
	ordered := make([]types.FetchResult, 0, len(sources))
	for _, source := range sources {
		result, ok := byIndex[source.Index]
		if !ok {
			result = types.FetchResult{
				Source: source,
				Err:    &types.TransferError{URL: source.URL, Err: errNoResult},
			}
		}
		result.Source = source
		ordered = append(ordered, result)
	}
	return ordered
}

func (s Service) Sync(ctx context.Context, req SyncRequest) (SyncResult, error) {
	syncer := NewSyncer(s.Handler, s.History, s.now, s.runID())
	report, err := syncer.Run(ctx, req.Sources)
	return SyncResult{Report: report}, err
}
