// Package statuscmder provides the status command for summarizing what the
// warehouse holds.
package statuscmder

import (
	"context"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/tubestar/cmd/tubestar/wiring"
	"github.com/papercomputeco/tubestar/pkg/cliui"
	"github.com/papercomputeco/tubestar/pkg/config"
	"github.com/papercomputeco/tubestar/pkg/logger"
	"github.com/papercomputeco/tubestar/pkg/timedim"
	"github.com/papercomputeco/tubestar/pkg/warehouse"
)

const statusLongDesc string = `Show what the warehouse holds.

Prints the row count of every table, the latest ingestion batch, how many
videos carry each sentiment and popularity label, and the most recently
published videos with their latest statistics.

Output is rendered for the terminal; when piped it is plain markdown.

Examples:
  tubestar status
  tubestar status --limit 25
  tubestar status --sqlite ./warehouse.db > status.md`

const statusShortDesc string = "Show warehouse contents"

const (
	titleWidth   = 48
	channelWidth = 24
)

var flagKeys = []string{
	config.FlagDriver,
	config.FlagSQLite,
	config.FlagDBHost,
	config.FlagDBPort,
	config.FlagDBName,
	config.FlagDBUser,
}

type statusCommander struct {
	limit int

	driver     string
	sqlitePath string
	dbHost     string
	dbPort     uint
	dbName     string
	dbUser     string
}

func NewStatusCmd() *cobra.Command {
	cmder := &statusCommander{}

	cmd := &cobra.Command{
		Use:   "status",
		Short: statusShortDesc,
		Long:  statusLongDesc,
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

	cmd.Flags().IntVar(&cmder.limit, "limit", 10, "Number of recent videos to list (0 for all)")
	config.AddStringFlag(cmd, config.Flags, config.FlagDriver, &cmder.driver)
	config.AddStringFlag(cmd, config.Flags, config.FlagSQLite, &cmder.sqlitePath)
	config.AddStringFlag(cmd, config.Flags, config.FlagDBHost, &cmder.dbHost)
	config.AddUintFlag(cmd, config.Flags, config.FlagDBPort, &cmder.dbPort)
	config.AddStringFlag(cmd, config.Flags, config.FlagDBName, &cmder.dbName)
	config.AddStringFlag(cmd, config.Flags, config.FlagDBUser, &cmder.dbUser)

	return cmd
}

func (c *statusCommander) run(ctx context.Context, out io.Writer, rt *wiring.Runtime) error {
	store, err := rt.OpenStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.EnsureSchema(ctx); err != nil {
		return err
	}
	if err := store.EnsureEnrichmentColumns(ctx); err != nil {
		return err
	}

	report, err := c.report(ctx, store)
	if err != nil {
		return err
	}

	if !logger.IsTerminal(out) {
		_, err := io.WriteString(out, report)
		return err
	}

	rendered, err := cliui.RenderMarkdown(report)
	if err != nil {
		rt.Logger.Debug("rendering markdown", "error", err)
	}
	_, err = io.WriteString(out, rendered)
	return err
}

// report builds the markdown status document.
func (c *statusCommander) report(ctx context.Context, store *warehouse.Store) (string, error) {
	counts, err := store.Counts(ctx)
	if err != nil {
		return "", err
	}
	batch, err := store.LatestBatch(ctx)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("# Warehouse\n\n")
	b.WriteString("| table | rows |\n|---|---:|\n")
	fmt.Fprintf(&b, "| %s | %d |\n", warehouse.TableTime, counts.Dates)
	fmt.Fprintf(&b, "| %s | %d |\n", warehouse.TableChannel, counts.Channels)
	fmt.Fprintf(&b, "| %s | %d |\n", warehouse.TableVideo, counts.Videos)
	fmt.Fprintf(&b, "| %s | %d |\n", warehouse.TableTranscript, counts.Transcripts)
	fmt.Fprintf(&b, "| %s | %d |\n", warehouse.TableStatistics, counts.Snapshots)

	if batch > 0 {
		fmt.Fprintf(&b, "\nLatest batch: `%d` (%s)\n", batch, time.Unix(batch, 0).UTC().Format(time.RFC3339))
	} else {
		b.WriteString("\nNo ingestion batches yet.\n")
	}

	for _, section := range []struct {
		title  string
		column warehouse.LabelColumn
	}{
		{"Sentiment", warehouse.SentimentColumn},
		{"Popularity", warehouse.PopularityColumn},
	} {
		dist, err := store.LabelDistribution(ctx, section.column)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "\n## %s\n\n", section.title)
		if len(dist) == 0 {
			b.WriteString("No videos.\n")
			continue
		}
		b.WriteString("| label | videos |\n|---|---:|\n")
		for _, label := range slices.Sorted(maps.Keys(dist)) {
			name := label
			if name == "" {
				name = "_unlabelled_"
			}
			fmt.Fprintf(&b, "| %s | %d |\n", name, dist[label])
		}
	}

	reports, err := store.VideoReports(ctx, c.limit)
	if err != nil {
		return "", err
	}

	b.WriteString("\n## Recent videos\n\n")
	if len(reports) == 0 {
		b.WriteString("No videos ingested yet.\n")
		return b.String(), nil
	}

	b.WriteString("| video | title | channel | published | views | likes | comments | sentiment | popularity |\n")
	b.WriteString("|---|---|---|---|---:|---:|---:|---|---|\n")
	for _, r := range reports {
		fmt.Fprintf(&b, "| `%s` | %s | %s | %s | %d | %d | %d | %s | %s |\n",
			r.ID,
			cliui.MarkdownCell(r.Title, titleWidth),
			cliui.MarkdownCell(r.ChannelName, channelWidth),
			timedim.Format(r.PublishedAt),
			r.Views, r.Likes, r.Comments,
			orDash(r.Sentiment),
			orDash(r.PopularityRating),
		)
	}
	return b.String(), nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
