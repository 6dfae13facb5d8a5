package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"repo-mirror/internal/app"
	"repo-mirror/internal/types"
)

const defaultSourceURL = "http://deb.debian.org/debian/dists/stable/main/binary-amd64/Packages.gz"

type syncOptions struct {
	Sources        []string
	Concurrency    int
	HTTPTimeoutSec int
	UserAgent      string
	Progress       string
}

func newSyncCommand() *cobra.Command {
	opts := syncOptions{}
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Fetch package indexes and replace the local mirror",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSync(cmd.Context(), cmd, opts)
		},
	}
	cmd.Flags().StringSliceVar(&opts.Sources, "source", []string{defaultSourceURL}, "Index URL to mirror (repeatable)")
	cmd.Flags().IntVar(&opts.Concurrency, "concurrency", 5, "Maximum parallel downloads (0 = default)")
	cmd.Flags().IntVar(&opts.HTTPTimeoutSec, "http-timeout", 60, "HTTP timeout in seconds (0 = default)")
	cmd.Flags().StringVar(&opts.UserAgent, "user-agent", "repo-mirror", "HTTP User-Agent header")
	cmd.Flags().StringVar(&opts.Progress, "progress", progressBar, "Progress output: bar, log or none")

	_ = viper.BindPFlag("sources", cmd.Flags().Lookup("source"))
	_ = viper.BindPFlag("concurrency", cmd.Flags().Lookup("concurrency"))
	_ = viper.BindPFlag("http_timeout_sec", cmd.Flags().Lookup("http-timeout"))
	_ = viper.BindPFlag("user_agent", cmd.Flags().Lookup("user-agent"))
	_ = viper.BindPFlag("progress", cmd.Flags().Lookup("progress"))
	return cmd
}

func runSync(ctx context.Context, cmd *cobra.Command, opts syncOptions) error {
	observer, err := progressObserver(ctx, resolveString(cmd, opts.Progress, "progress", "progress"), cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	service := newAppService(cmd, app.ServiceConfig{
		Concurrency:    resolveInt(cmd, opts.Concurrency, "concurrency", "concurrency"),
		HTTPTimeoutSec: resolveInt(cmd, opts.HTTPTimeoutSec, "http_timeout_sec", "http-timeout"),
		UserAgent:      resolveString(cmd, opts.UserAgent, "user_agent", "user-agent"),
		Observer:       observer,
	})
	defer service.Close()

	result, err := service.Sync(ctx, app.SyncRequest{
		Sources: resolveStrings(cmd, opts.Sources, "sources", "source"),
	})
	if bar, ok := observer.(interface{ Finish() }); ok {
		bar.Finish()
	}
	if err != nil {
		return err
	}
	printSyncReport(cmd.OutOrStdout(), result.Report)
	return nil
}

func printSyncReport(out io.Writer, report types.SyncReport) {
	bold := color.New(color.Bold)
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)

	bold.Fprintf(out, "sync %s\n", report.RunID)
	green.Fprintf(out, "  sources ok:     %d\n", report.SourcesSucceeded)
	if report.SourcesFailed > 0 {
		red.Fprintf(out, "  sources failed: %d\n", report.SourcesFailed)
		for _, failure := range report.Failures {
			red.Fprintf(out, "    %s (%s): %s\n", failure.URL, failure.Stage, failure.Err)
		}
	}
	fmt.Fprintf(out, "  records:        %s\n", humanize.Comma(int64(report.Records)))
	if report.RecordErrors > 0 {
		color.New(color.FgYellow).Fprintf(out, "  field warnings: %s\n", humanize.Comma(int64(report.RecordErrors)))
	}
	fmt.Fprintf(out, "  took:           %s\n", report.Duration().Round(10*time.Millisecond))
}
