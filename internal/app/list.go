package app

import (
	"context"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"repo-mirror/internal/core"
	"repo-mirror/internal/types"
)

func (s Service) List(ctx context.Context, req ListRequest) (ListResult, error) {
	filter, err := packageFilter(req.NameContains, req.Architecture, req.Limit)
	if err != nil {
		return ListResult{}, err
	}
	records, err := s.queryPackages(ctx, filter)
	if err != nil {
		return ListResult{}, err
	}
	return ListResult{Packages: records}, nil
}

func packageFilter(name string, arch string, limit int) (types.PackageFilter, error) {
	if limit < 0 {
		return types.PackageFilter{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("limit must not be negative")
	}
	filter := types.PackageFilter{
		NameContains: strings.TrimSpace(name),
		Limit:        limit,
	}
	if strings.TrimSpace(arch) == "" {
		return filter, nil
	}
	parsed, err := types.ParseArchitecture(arch)
	if err != nil {
		return types.PackageFilter{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("invalid architecture filter").
			WithCause(err)
	}
	filter.Architecture = parsed
	return filter, nil
}

// queryPackages returns matching records ordered by name and Debian version.
func (s Service) queryPackages(ctx context.Context, filter types.PackageFilter) ([]types.PackageRecord, error) {
	if err := s.Handler.InitializeSchema(ctx); err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg("failed to open package store").
			WithCause(err)
	}
	records, err := s.Packages.ListPackages(ctx, filter)
	if err != nil {
		return nil, err
	}
	records = core.SortPackageRecords(records)
	if filter.Limit > 0 && len(records) > filter.Limit {
		records = records[:filter.Limit]
	}
	return records, nil
}
