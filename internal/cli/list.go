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

type listOptions struct {
	Name         string
	Architecture string
	Limit        int
}

func newListCommand() *cobra.Command {
	opts := listOptions{}
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List mirrored packages",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd.Context(), cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.Name, "name", "", "Only packages whose name contains this text")
	cmd.Flags().StringVar(&opts.Architecture, "arch", "", "Only packages built for this architecture")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "Maximum number of packages (0 = all)")
	_ = viper.BindPFlag("list_limit", cmd.Flags().Lookup("limit"))
	return cmd
}

func runList(ctx context.Context, cmd *cobra.Command, opts listOptions) error {
	service := newAppService(cmd, app.ServiceConfig{})
	defer service.Close()

	result, err := service.List(ctx, app.ListRequest{
		NameContains: opts.Name,
		Architecture: opts.Architecture,
		Limit:        resolveInt(cmd, opts.Limit, "list_limit", "limit"),
	})
	if err != nil {
		return err
	}
	printPackages(cmd.OutOrStdout(), result.Packages)
	return nil
}

func printPackages(out io.Writer, records []types.PackageRecord) {
	name := color.New(color.Bold)
	for _, record := range records {
		name.Fprintf(out, "%-32s", record.Name)
		fmt.Fprintf(out, " %-24s %-8s %s\n", record.Version, record.Architecture, record.DescriptionOr(""))
	}
	fmt.Fprintf(out, "%s packages\n", humanize.Comma(int64(len(records))))
}
