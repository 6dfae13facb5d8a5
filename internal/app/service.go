package app

import (
	"io"
	"time"

	"github.com/google/uuid"

	"repo-mirror/internal/adapters"
	"repo-mirror/internal/ports"
)

type Service struct {
	Handler  ports.RepositoryHandler
	Packages ports.PackageQueryPort
	History  ports.SyncHistoryPort
	Exporter ports.PackageExportPort
	Clock    func() time.Time
	NewRunID func() string
	Closer   io.Closer
}

type ServiceConfig struct {
	DatabasePath   string
	Concurrency    int
	HTTPTimeoutSec int
	UserAgent      string
	Observer       ports.ProgressObserver
}

func NewService(cfg ServiceConfig) Service {
	store := adapters.NewSQLiteStore(cfg.DatabasePath)
	pipeline := adapters.NewHTTPFetchPipeline(cfg.Concurrency, cfg.HTTPTimeoutSec, cfg.UserAgent, cfg.Observer)
	return Service{
		Handler:  adapters.NewDebianHandler(pipeline, store),
		Packages: store,
		History:  store,
		Exporter: adapters.NewPackageExportAdapter(),
		Clock:    time.Now,
		NewRunID: uuid.NewString,
		Closer:   store,
	}
}

func (s Service) Close() error {
	if s.Closer == nil {
		return nil
	}
	return s.Closer.Close()
}

func (s Service) now() time.Time {
	if s.Clock == nil {
		return time.Now()
	}
	return s.Clock()
}

func (s Service) runID() string {
	if s.NewRunID == nil {
		return uuid.NewString()
	}
	return s.NewRunID()
}
