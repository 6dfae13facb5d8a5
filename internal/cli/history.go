package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"repo-mirror/internal/app"
	"repo-mirror/internal/types"
)

type historyOptions struct {
	Limit int
}

func newHistoryCommand() *cobra.Command {
	opts := historyOptions{}
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent sync runs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHistory(cmd.Context(), cmd, opts)
		},
	}
	cmd.Flags().IntVar(&opts.Limit, "limit", 10, "Number of runs to show (0 = all)")
	_ = viper.BindPFlag("history_limit", cmd.Flags().Lookup("limit"))
	return cmd
}

func runHistory(ctx context.Context, cmd *cobra.Command, opts historyOptions) error {
	service := newAppService(cmd, app.ServiceConfig{})
	defer service.Close()

	result, err := service.SyncHistory(ctx, app.HistoryRequest{
		Limit: resolveInt(cmd, opts.Limit, "history_limit", "limit"),
	})
	if err != nil {
		return err
	}
	printRuns(cmd.OutOrStdout(), result.Runs)
	return nil
}

func printRuns(out io.Writer, runs []types.SyncRun) {
	if len(runs) == 0 {
		fmt.Fprintln(out, "no sync runs recorded")
		return
	}
	for _, run := range runs {
		state := color.New(color.FgGreen)
		if run.State != types.SyncStateDone {
			state = color.New(color.FgRed)
		}
		fmt.Fprintf(out, "%s  ", run.RunID)
		state.Fprintf(out, "%-6s", run.State)
		fmt.Fprintf(out, "  %s records  %d ok / %d failed  %s\n",
			humanize.Comma(int64(run.Records)),
			run.SourcesSucceeded,
			run.SourcesFailed,
			humanize.Time(run.StartedAt))
	}
}
