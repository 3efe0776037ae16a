// Package tubestarcmder
package tubestarcmder

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	configcmder "github.com/papercomputeco/tubestar/cmd/tubestar/config"
	enrichcmder "github.com/papercomputeco/tubestar/cmd/tubestar/enrich"
	exportcmder "github.com/papercomputeco/tubestar/cmd/tubestar/export"
	ingestcmder "github.com/papercomputeco/tubestar/cmd/tubestar/ingest"
	initcmder "github.com/papercomputeco/tubestar/cmd/tubestar/init"
	statuscmder "github.com/papercomputeco/tubestar/cmd/tubestar/status"
	"github.com/papercomputeco/tubestar/cmd/tubestar/wiring"
	versioncmder "github.com/papercomputeco/tubestar/cmd/version"
)

const tubestarLongDesc string = `Tubestar loads YouTube videos into an analytics star schema.

Video metadata, engagement snapshots and transcripts are written to a
PostgreSQL (or SQLite) warehouse, then enriched with sentiment and
popularity labels from pre-trained models.

Typical run:
  tubestar init                    Create the schema and time dimension
  tubestar ingest                  Ingest every video staged on the volume
  tubestar enrich sentiment        Label transcripts as positive or negative
  tubestar enrich popularity       Label videos as populair or unpopulair
  tubestar status                  Show what the warehouse holds`

const tubestarShortDesc string = "Tubestar - YouTube analytics warehouse"

func NewTubestarCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tubestar",
		Short: tubestarShortDesc,
		Long:  tubestarLongDesc,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return loadDotEnv()
		},
	}

	cmd.SilenceUsage = true

	// Global flags
	cmd.PersistentFlags().BoolP(wiring.FlagDebug, "d", false, "Enable debug logging")
	cmd.PersistentFlags().String(wiring.FlagConfigDir, "", "Override path to .tubestar/ config directory")
	cmd.PersistentFlags().Bool(wiring.FlagJSONLogs, false, "Write logs as JSON")
	cmd.PersistentFlags().String(wiring.FlagLogFile, "", "Also append JSON logs, debug included, to this file")

	// Add subcommands
	cmd.AddCommand(initcmder.NewInitCmd())
	cmd.AddCommand(ingestcmder.NewIngestCmd())
	cmd.AddCommand(enrichcmder.NewEnrichCmd())
	cmd.AddCommand(statuscmder.NewStatusCmd())
	cmd.AddCommand(exportcmder.NewExportCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}

// loadDotEnv reads a .env file from the working directory into the process
// environment. Variables that are already set win.
func loadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}
	return nil
}
