package app

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"repo-mirror/internal/adapters"
)

func (s Service) Export(ctx context.Context, req ExportRequest) (ExportResult, error) {
	output := strings.TrimSpace(req.Output)
	format, err := adapters.ResolveExportFormat(output, req.Format)
	if err != nil {
		return ExportResult{}, err
	}
	filter, err := packageFilter(req.NameContains, req.Architecture, 0)
	if err != nil {
		return ExportResult{}, err
	}
	records, err := s.queryPackages(ctx, filter)
	if err != nil {
		return ExportResult{}, err
	}
	if err := s.Exporter.Write(output, format, records); err != nil {
		return ExportResult{}, err
	}
	log.Ctx(ctx).Info().Str("output", output).Str("format", format).Int("records", len(records)).Msg("mirror exported")
	return ExportResult{
		OutputPath: output,
		Format:     format,
		Count:      len(records),
	}, nil
}
