package cli

import (
	"context"
	"io"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/spf13/cobra"

	"repo-mirror/internal/adapters"
	"repo-mirror/internal/app"
	"repo-mirror/internal/ports"
)

const (
	progressBar  = "bar"
	progressLog  = "log"
	progressNone = "none"
)

func databasePath(cmd *cobra.Command) string {
	value := ""
	if cmd != nil {
		if flag := cmd.Flags().Lookup("database"); flag != nil {
			value = flag.Value.String()
		}
	}
	path := strings.TrimSpace(resolveString(cmd, value, "database", "database"))
	if path == "" {
		return defaultDatabasePath
	}
	return path
}

func newAppService(cmd *cobra.Command, cfg app.ServiceConfig) app.Service {
	cfg.DatabasePath = databasePath(cmd)
	return app.NewService(cfg)
}

func progressObserver(ctx context.Context, mode string, out io.Writer) (ports.ProgressObserver, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", progressBar:
		return adapters.NewProgressBarObserver(out), nil
	case progressLog:
		return adapters.NewLogProgressObserver(ctx), nil
	case progressNone:
		return adapters.NopProgressObserver{}, nil
	default:
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("unknown progress mode " + mode + " (expected bar, log or none)")
	}
}
