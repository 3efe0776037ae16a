// Package ingestcmder provides the ingest command, which loads video
// metadata, engagement snapshots and transcripts into the warehouse.
package ingestcmder

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/tubestar/cmd/tubestar/wiring"
	"github.com/papercomputeco/tubestar/pkg/config"
	"github.com/papercomputeco/tubestar/pkg/ingest"
	"github.com/papercomputeco/tubestar/pkg/youtube"
)

const ingestLongDesc string = `Ingest videos into the warehouse.

For every video id, fetches the metadata and current statistics from the
YouTube Data API and the caption transcript, then writes in one transaction:

  - the channel (once per run) and the video dimension rows
  - the publication date into the time dimension
  - the transcript as a single segment, skipped when already stored
  - a statistics snapshot tagged with this run's batch id

Video ids come from the arguments or, when none are given, from the entries
of the media volume (--volume). A video that fails is logged and skipped.

Examples:
  tubestar ingest
  tubestar ingest dQw4w9WgXcQ 9bZkp7q19f0
  tubestar ingest --volume /video-container --languages en,nl
  tubestar ingest --channel UC_x5XG1OV2P6uZZ5FSM9Ttw --dry-run`

const ingestShortDesc string = "Ingest videos, statistics and transcripts"

var flagKeys = []string{
	config.FlagDriver,
	config.FlagSQLite,
	config.FlagDBHost,
	config.FlagDBPort,
	config.FlagDBName,
	config.FlagDBUser,
	config.FlagAPIKey,
	config.FlagChannel,
	config.FlagLanguages,
	config.FlagVolume,
	config.FlagRedisURL,
	config.FlagMetricsFile,
}

type ingestCommander struct {
	dryRun bool

	driver     string
	sqlitePath string
	dbHost     string
	dbPort     uint
	dbName     string
	dbUser     string
	apiKey     string
	channel    string
	languages  string
	volume     string
	redisURL   string
	textfile   string
}

func NewIngestCmd() *cobra.Command {
	cmder := &ingestCommander{}

	cmd := &cobra.Command{
		Use:   "ingest [video-id...]",
		Short: ingestShortDesc,
		Long:  ingestLongDesc,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := wiring.Load(cmd, flagKeys...)
			if err != nil {
				return err
			}
			defer rt.Close()
			return cmder.run(cmd.Context(), cmd.OutOrStdout(), rt, args)
		},
	}

	cmd.Flags().BoolVar(&cmder.dryRun, "dry-run", false, "Fetch and validate videos without writing to the warehouse")
	config.AddStringFlag(cmd, config.Flags, config.FlagDriver, &cmder.driver)
	config.AddStringFlag(cmd, config.Flags, config.FlagSQLite, &cmder.sqlitePath)
	config.AddStringFlag(cmd, config.Flags, config.FlagDBHost, &cmder.dbHost)
	config.AddUintFlag(cmd, config.Flags, config.FlagDBPort, &cmder.dbPort)
	config.AddStringFlag(cmd, config.Flags, config.FlagDBName, &cmder.dbName)
	config.AddStringFlag(cmd, config.Flags, config.FlagDBUser, &cmder.dbUser)
	config.AddStringFlag(cmd, config.Flags, config.FlagAPIKey, &cmder.apiKey)
	config.AddStringFlag(cmd, config.Flags, config.FlagChannel, &cmder.channel)
	config.AddStringFlag(cmd, config.Flags, config.FlagLanguages, &cmder.languages)
	config.AddStringFlag(cmd, config.Flags, config.FlagVolume, &cmder.volume)
	config.AddStringFlag(cmd, config.Flags, config.FlagRedisURL, &cmder.redisURL)
	config.AddStringFlag(cmd, config.Flags, config.FlagMetricsFile, &cmder.textfile)

	return cmd
}

func (c *ingestCommander) run(ctx context.Context, out io.Writer, rt *wiring.Runtime, args []string) error {
	source, closeSource, err := rt.NewSource(ctx)
	if err != nil {
		return err
	}
	defer closeSource()

	return c.ingest(ctx, out, rt, source, args)
}

// ingest runs the orchestrator against source.
func (c *ingestCommander) ingest(ctx context.Context, out io.Writer, rt *wiring.Runtime, source youtube.Source, args []string) error {
	started := time.Now()
	defer rt.Finish("ingest", started)

	videoIDs, err := rt.VideoIDs(args)
	if err != nil {
		return err
	}

	store, err := rt.OpenStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.EnsureSchema(ctx); err != nil {
		return err
	}

	orch := ingest.New(source, store,
		ingest.WithLogger(rt.Logger),
		ingest.WithMetrics(rt.Metrics),
		ingest.WithChannelOverride(rt.Config.YouTube.ChannelID),
		ingest.WithDryRun(c.dryRun),
	)

	result, err := orch.Run(ctx, videoIDs)
	if result != nil {
		fmt.Fprintln(out, result.Summary())
	}
	return err
}
