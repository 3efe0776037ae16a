// Package enrichcmder provides the enrich command and its sentiment and
// popularity subcommands, which label videos with pre-trained models.
package enrichcmder

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/tubestar/cmd/tubestar/wiring"
	"github.com/papercomputeco/tubestar/pkg/config"
	"github.com/papercomputeco/tubestar/pkg/enrich"
	"github.com/papercomputeco/tubestar/pkg/warehouse"
)

const enrichLongDesc string = `Label videos in the warehouse with pre-trained models.

Each pipeline reads its inputs from the warehouse, predicts a label per
video and writes it to a derived column of the video dimension. A run is a
single transaction; a video that cannot be labelled is logged and skipped.

Use subcommands to pick the pipeline:
  tubestar enrich sentiment     Transcript text -> positive / negative
  tubestar enrich popularity    Latest statistics -> populair / unpopulair`

const enrichShortDesc string = "Label videos with sentiment and popularity"

// storeFlagKeys are the registry flags every pipeline needs to reach the warehouse.
var storeFlagKeys = []string{
	config.FlagDriver,
	config.FlagSQLite,
	config.FlagDBHost,
	config.FlagDBPort,
	config.FlagDBName,
	config.FlagDBUser,
	config.FlagMetricsFile,
}

// storeFlags holds the flag targets shared by both subcommands.
type storeFlags struct {
	driver     string
	sqlitePath string
	dbHost     string
	dbPort     uint
	dbName     string
	dbUser     string
	textfile   string
}

func (f *storeFlags) register(cmd *cobra.Command) {
	config.AddStringFlag(cmd, config.Flags, config.FlagDriver, &f.driver)
	config.AddStringFlag(cmd, config.Flags, config.FlagSQLite, &f.sqlitePath)
	config.AddStringFlag(cmd, config.Flags, config.FlagDBHost, &f.dbHost)
	config.AddUintFlag(cmd, config.Flags, config.FlagDBPort, &f.dbPort)
	config.AddStringFlag(cmd, config.Flags, config.FlagDBName, &f.dbName)
	config.AddStringFlag(cmd, config.Flags, config.FlagDBUser, &f.dbUser)
	config.AddStringFlag(cmd, config.Flags, config.FlagMetricsFile, &f.textfile)
}

// pipeline is satisfied by every enrich.Pipeline instantiation.
type pipeline interface {
	Name() string
	Column() warehouse.LabelColumn
	Run(ctx context.Context, store *warehouse.Store) (*enrich.Result, error)
}

func NewEnrichCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "enrich",
		Short: enrichShortDesc,
		Long:  enrichLongDesc,
	}

	cmd.AddCommand(newSentimentCmd())
	cmd.AddCommand(newPopularityCmd())

	return cmd
}

// runPipeline opens the warehouse, runs p and prints its summary.
func runPipeline(ctx context.Context, out io.Writer, rt *wiring.Runtime, p pipeline) error {
	started := time.Now()
	defer rt.Finish("enrich_"+p.Name(), started)

	store, err := rt.OpenStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.EnsureSchema(ctx); err != nil {
		return err
	}

	result, err := p.Run(ctx, store)
	if err != nil {
		return fmt.Errorf("%s enrichment: %w", p.Name(), err)
	}

	fmt.Fprintln(out, result.Summary())
	return nil
}
