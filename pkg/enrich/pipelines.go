package enrich

import (
	"context"

	"github.com/papercomputeco/tubestar/pkg/mlmodel"
	"github.com/papercomputeco/tubestar/pkg/warehouse"
)

// Pipeline names.
const (
	SentimentPipeline  = "sentiment"
	PopularityPipeline = "popularity"
)

// Label values.
const (
	Positive  = "positive"
	Negative  = "negative"
	Popular   = "populair"
	Unpopular = "unpopulair"
)

// SentimentLabel maps a sentiment classifier output to its label.
func SentimentLabel(class int) string {
	if class == 1 {
		return Positive
	}
	return Negative
}

// PopularityLabel maps a popularity classifier output to its label. Class 0
// is the popular cluster.
func PopularityLabel(class int) string {
	if class == 0 {
		return Popular
	}
	return Unpopular
}

// NewSentimentPipeline labels videos that have transcript text. The text
// fed to the vectorizer is every segment of the video ordered by start time.
// Videos already carrying a sentiment are left alone unless WithRelabel is
// set.
func NewSentimentPipeline(vectorizer mlmodel.Transformer[string], classifier mlmodel.Predictor, opts ...Option) *Pipeline[string, string] {
	s := newSettings(opts)
	relabel := s.relabel
	return &Pipeline[string, string]{
		name:   SentimentPipeline,
		column: warehouse.SentimentColumn,
		candidates: func(ctx context.Context, q *warehouse.Queries) ([]string, error) {
			return q.SentimentCandidates(ctx, relabel)
		},
		load: func(ctx context.Context, q *warehouse.Queries, videoID string) (string, error) {
			return q.TranscriptText(ctx, videoID)
		},
		features:    func(text string) (string, error) { return text, nil },
		transformer: vectorizer,
		predictor:   classifier,
		label:       SentimentLabel,
		settings:    s,
	}
}

// NewPopularityPipeline labels the given videos from their most recent
// statistics snapshot. The feature vector is views, likes, comments and
// duration in seconds, in that order.
func NewPopularityPipeline(videoIDs []string, scaler mlmodel.Transformer[[]float64], classifier mlmodel.Predictor, opts ...Option) *Pipeline[*warehouse.VideoStatistics, []float64] {
	ids := append([]string(nil), videoIDs...)
	return &Pipeline[*warehouse.VideoStatistics, []float64]{
		name:   PopularityPipeline,
		column: warehouse.PopularityColumn,
		candidates: func(context.Context, *warehouse.Queries) ([]string, error) {
			return ids, nil
		},
		load: func(ctx context.Context, q *warehouse.Queries, videoID string) (*warehouse.VideoStatistics, error) {
			return q.LatestStatistics(ctx, videoID)
		},
		features:    PopularityFeatures,
		transformer: scaler,
		predictor:   classifier,
		label:       PopularityLabel,
		settings:    newSettings(opts),
	}
}

// PopularityFeatures builds the popularity feature vector from a snapshot.
func PopularityFeatures(st *warehouse.VideoStatistics) ([]float64, error) {
	return []float64{
		float64(st.Views),
		float64(st.Likes),
		float64(st.Comments),
		float64(st.DurationSeconds),
	}, nil
}
