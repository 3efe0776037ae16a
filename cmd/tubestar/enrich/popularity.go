package enrichcmder

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/tubestar/cmd/tubestar/wiring"
	"github.com/papercomputeco/tubestar/pkg/config"
	"github.com/papercomputeco/tubestar/pkg/enrich"
	"github.com/papercomputeco/tubestar/pkg/mlmodel"
)

const popularityLongDesc string = `Label video popularity from engagement statistics.

For each video id, the most recent statistics snapshot is turned into the
feature vector [views, likes, comments, duration in seconds], scaled and
assigned to a cluster: cluster 0 is "populair", anything else
"unpopulair". Only the popularity_rating column is written.

Video ids come from the arguments or, when none are given, from the entries
of the media volume (--volume). Ids without a snapshot are skipped.

Examples:
  tubestar enrich popularity
  tubestar enrich popularity abc123 def456
  tubestar enrich popularity --scaler models/scaler.json --popularity-model models/kmeans_model.json`

const popularityShortDesc string = "Label video popularity from statistics"

type popularityCommander struct {
	storeFlags

	volume     string
	scaler     string
	classifier string
}

func newPopularityCmd() *cobra.Command {
	cmder := &popularityCommander{}

	cmd := &cobra.Command{
		Use:   "popularity [video-id...]",
		Short: popularityShortDesc,
		Long:  popularityLongDesc,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := wiring.Load(cmd, append(storeFlagKeys, config.FlagVolume, config.FlagScaler, config.FlagPopularity)...)
			if err != nil {
				return err
			}
			defer rt.Close()
			return cmder.run(cmd.Context(), cmd.OutOrStdout(), rt, args)
		},
	}

	cmder.register(cmd)
	config.AddStringFlag(cmd, config.Flags, config.FlagVolume, &cmder.volume)
	config.AddStringFlag(cmd, config.Flags, config.FlagScaler, &cmder.scaler)
	config.AddStringFlag(cmd, config.Flags, config.FlagPopularity, &cmder.classifier)

	return cmd
}

func (c *popularityCommander) run(ctx context.Context, out io.Writer, rt *wiring.Runtime, args []string) error {
	models := rt.Config.Models

	scaler, err := mlmodel.LoadVectorTransformer(models.Scaler)
	if err != nil {
		return fmt.Errorf("loading scaler: %w", err)
	}
	classifier, err := mlmodel.LoadPredictor(models.PopularityClassifier)
	if err != nil {
		return fmt.Errorf("loading popularity classifier: %w", err)
	}

	videoIDs, err := rt.VideoIDs(args)
	if err != nil {
		return err
	}

	p := enrich.NewPopularityPipeline(videoIDs, scaler, classifier,
		enrich.WithLogger(rt.Logger),
		enrich.WithMetrics(rt.Metrics),
	)
	return runPipeline(ctx, out, rt, p)
}
