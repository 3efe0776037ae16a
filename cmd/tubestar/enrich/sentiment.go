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

const sentimentLongDesc string = `Label video sentiment from transcripts.

Every video with transcript text and no sentiment yet is labelled. The
transcript segments are joined in order of start time, turned into a
feature vector by the vectorizer and classified: class 1 is "positive",
anything else "negative". Use --relabel to label all videos again.

Examples:
  tubestar enrich sentiment
  tubestar enrich sentiment --relabel
  tubestar enrich sentiment --vectorizer models/nlp_model.json --sentiment-model models/classificatie_model.json`

const sentimentShortDesc string = "Label video sentiment from transcripts"

type sentimentCommander struct {
	storeFlags

	relabel    bool
	vectorizer string
	classifier string
}

func newSentimentCmd() *cobra.Command {
	cmder := &sentimentCommander{}

	cmd := &cobra.Command{
		Use:   "sentiment",
		Short: sentimentShortDesc,
		Long:  sentimentLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := wiring.Load(cmd, append(storeFlagKeys, config.FlagVectorizer, config.FlagSentiment)...)
			if err != nil {
				return err
			}
			defer rt.Close()
			return cmder.run(cmd.Context(), cmd.OutOrStdout(), rt)
		},
	}

	cmd.Flags().BoolVar(&cmder.relabel, "relabel", false, "Label videos that already have a sentiment again")
	cmder.register(cmd)
	config.AddStringFlag(cmd, config.Flags, config.FlagVectorizer, &cmder.vectorizer)
	config.AddStringFlag(cmd, config.Flags, config.FlagSentiment, &cmder.classifier)

	return cmd
}

func (c *sentimentCommander) run(ctx context.Context, out io.Writer, rt *wiring.Runtime) error {
	models := rt.Config.Models

	vectorizer, err := mlmodel.LoadTextTransformer(models.Vectorizer)
	if err != nil {
		return fmt.Errorf("loading vectorizer: %w", err)
	}
	classifier, err := mlmodel.LoadPredictor(models.SentimentClassifier)
	if err != nil {
		return fmt.Errorf("loading sentiment classifier: %w", err)
	}

	p := enrich.NewSentimentPipeline(vectorizer, classifier,
		enrich.WithLogger(rt.Logger),
		enrich.WithMetrics(rt.Metrics),
		enrich.WithRelabel(c.relabel),
	)
	return runPipeline(ctx, out, rt, p)
}
