package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"repo-mirror/internal/app"
)

type exportOptions struct {
	Output       string
	Format       string
	Name         string
	Architecture string
}

func newExportCommand() *cobra.Command {
	opts := exportOptions{}
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the mirrored packages to a YAML or TOML file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runExport(cmd.Context(), cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.Output, "output", "repo-mirror.yaml", "Output path")
	cmd.Flags().StringVar(&opts.Format, "format", "", "Output format: yaml or toml (default from extension)")
	cmd.Flags().StringVar(&opts.Name, "name", "", "Only packages whose name contains this text")
	cmd.Flags().StringVar(&opts.Architecture, "arch", "", "Only packages built for this architecture")
	_ = viper.BindPFlag("export_output", cmd.Flags().Lookup("output"))
	_ = viper.BindPFlag("export_format", cmd.Flags().Lookup("format"))
	return cmd
}

func runExport(ctx context.Context, cmd *cobra.Command, opts exportOptions) error {
	service := newAppService(cmd, app.ServiceConfig{})
	defer service.Close()

	result, err := service.Export(ctx, app.ExportRequest{
		Output:       resolveString(cmd, opts.Output, "export_output", "output"),
		Format:       resolveString(cmd, opts.Format, "export_format", "format"),
		NameContains: opts.Name,
		Architecture: opts.Architecture,
	})
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	color.New(color.FgGreen).Fprintf(out, "exported %d packages", result.Count)
	fmt.Fprintf(out, " to %s (%s)\n", result.OutputPath, result.Format)
	return nil
}
