// Package exportcmder provides the export command, which writes the
// warehouse to an Excel workbook.
package exportcmder

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/tubestar/cmd/tubestar/wiring"
	"github.com/papercomputeco/tubestar/pkg/cliui"
	"github.com/papercomputeco/tubestar/pkg/config"
	"github.com/papercomputeco/tubestar/pkg/export"
)

const exportLongDesc string = `Export the warehouse to an Excel workbook.

The workbook has two sheets:
  Videos     one row per video with its channel, labels and latest statistics
  Snapshots  every statistics snapshot, in ingestion order

Examples:
  tubestar export
  tubestar export --output reports/tubestar-2024-05.xlsx`

const exportShortDesc string = "Export the warehouse to an xlsx workbook"

const defaultOutput = "tubestar.xlsx"

var flagKeys = []string{
	config.FlagDriver,
	config.FlagSQLite,
	config.FlagDBHost,
	config.FlagDBPort,
	config.FlagDBName,
	config.FlagDBUser,
}

type exportCommander struct {
	output string

	driver     string
	sqlitePath string
	dbHost     string
	dbPort     uint
	dbName     string
	dbUser     string
}

func NewExportCmd() *cobra.Command {
	cmder := &exportCommander{}

	cmd := &cobra.Command{
		Use:   "export",
		Short: exportShortDesc,
		Long:  exportLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := wiring.Load(cmd, flagKeys...)
			if err != nil {
				return err
			}
			defer rt.Close()
			return cmder.run(cmd.Context(), cmd.OutOrStdout(), rt)
		},
	}

	cmd.Flags().StringVarP(&cmder.output, "output", "o", defaultOutput, "Path of the workbook to write")
	config.AddStringFlag(cmd, config.Flags, config.FlagDriver, &cmder.driver)
	config.AddStringFlag(cmd, config.Flags, config.FlagSQLite, &cmder.sqlitePath)
	config.AddStringFlag(cmd, config.Flags, config.FlagDBHost, &cmder.dbHost)
	config.AddUintFlag(cmd, config.Flags, config.FlagDBPort, &cmder.dbPort)
	config.AddStringFlag(cmd, config.Flags, config.FlagDBName, &cmder.dbName)
	config.AddStringFlag(cmd, config.Flags, config.FlagDBUser, &cmder.dbUser)

	return cmd
}

func (c *exportCommander) run(ctx context.Context, out io.Writer, rt *wiring.Runtime) error {
	store, err := rt.OpenStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.EnsureSchema(ctx); err != nil {
		return err
	}

	summary, err := export.WriteFile(ctx, store, c.output)
	if err != nil {
		return err
	}

	rt.Logger.Info("workbook written", "path", summary.Path, "videos", summary.Videos, "snapshots", summary.Snapshots)
	fmt.Fprintf(out, "  %s Wrote %s (%d videos, %d snapshots)\n",
		cliui.SuccessMark,
		cliui.KeyStyle.Render(summary.Path),
		summary.Videos,
		summary.Snapshots,
	)
	return nil
}
