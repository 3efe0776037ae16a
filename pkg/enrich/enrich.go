// Package enrich derives labels for videos already in the warehouse by
// running pre-trained models over stored data and writing the predicted
// label back onto the Video dimension.
package enrich

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/papercomputeco/tubestar/pkg/logger"
	"github.com/papercomputeco/tubestar/pkg/metrics"
	"github.com/papercomputeco/tubestar/pkg/mlmodel"
	"github.com/papercomputeco/tubestar/pkg/warehouse"
)

// Pipeline labels candidate videos. R is the record loaded from the
// warehouse for a video and F is the input handed to the transformer.
type Pipeline[R, F any] struct {
	name   string
	column warehouse.LabelColumn

	candidates  func(ctx context.Context, q *warehouse.Queries) ([]string, error)
	load        func(ctx context.Context, q *warehouse.Queries, videoID string) (R, error)
	features    func(R) (F, error)
	transformer mlmodel.Transformer[F]
	predictor   mlmodel.Predictor
	label       func(class int) string

	settings
}

type settings struct {
	logger  *slog.Logger
	metrics *metrics.Recorder
	now     func() time.Time
	relabel bool
}

// Option configures a Pipeline.
type Option func(*settings)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *settings) {
		s.logger = l
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m *metrics.Recorder) Option {
	return func(s *settings) {
		s.metrics = m
	}
}

// WithClock replaces time.Now for run timing.
func WithClock(now func() time.Time) Option {
	return func(s *settings) {
		s.now = now
	}
}

// WithRelabel makes the sentiment pipeline label videos that already carry a
// sentiment. It has no effect on the popularity pipeline, whose candidates
// are given explicitly.
func WithRelabel(relabel bool) Option {
	return func(s *settings) {
		s.relabel = relabel
	}
}

func newSettings(opts []Option) settings {
	s := settings{
		logger: logger.Nop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// Name returns the pipeline name used in logs and metrics.
func (p *Pipeline[R, F]) Name() string {
	return p.name
}

// Column returns the label column the pipeline writes.
func (p *Pipeline[R, F]) Column() warehouse.LabelColumn {
	return p.column
}

// Run ensures the label column exists, then labels every candidate inside a
// single transaction. Each candidate is isolated by a savepoint: a candidate
// that fails is rolled back, logged and counted, and the run moves on. The
// labels become visible only when the transaction commits at the end.
func (p *Pipeline[R, F]) Run(ctx context.Context, store *warehouse.Store) (*Result, error) {
	started := p.now()
	log := p.logger.With("pipeline", p.name)

	if _, err := store.EnsureLabelColumn(ctx, p.column); err != nil {
		return nil, fmt.Errorf("preparing %s column: %w", p.column, err)
	}

	tx, err := store.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("starting %s enrichment: %w", p.name, err)
	}
	defer func() { _ = tx.Rollback() }()

	ids, err := p.candidates(ctx, tx.Queries)
	if err != nil {
		return nil, fmt.Errorf("listing %s candidates: %w", p.name, err)
	}
	log.Info("enrichment started", "candidates", len(ids))

	result := &Result{
		Pipeline:   p.name,
		Column:     p.column,
		Candidates: len(ids),
		Labels:     make(map[string]int),
	}

	for i, videoID := range ids {
		if err := ctx.Err(); err != nil {
			log.Warn("enrichment interrupted, discarding labels", "labelled", result.Labelled, "error", err)
			return nil, err
		}

		savepoint := fmt.Sprintf("enrich_%d", i)
		if err := tx.Savepoint(ctx, savepoint); err != nil {
			return nil, err
		}

		label, err := p.labelOne(ctx, tx, videoID)
		if err != nil {
			if rbErr := tx.RollbackTo(ctx, savepoint); rbErr != nil {
				return nil, fmt.Errorf("recovering from %s: %w", videoID, rbErr)
			}

			if errors.Is(err, warehouse.ErrNotFound) {
				log.Info("nothing to label", "video_id", videoID, "error", err)
				result.Skipped = append(result.Skipped, videoID)
				p.metrics.Label(p.name, metrics.OutcomeSkipped)
				continue
			}

			log.Error("labelling failed", "video_id", videoID, "error", err)
			result.Failures = append(result.Failures, Failure{VideoID: videoID, Err: err})
			p.metrics.Label(p.name, metrics.OutcomeFailed)
			continue
		}

		if err := tx.Release(ctx, savepoint); err != nil {
			return nil, err
		}

		result.Labelled++
		result.Labels[label]++
		p.metrics.Label(p.name, metrics.OutcomeOK)
		log.Debug("video labelled", "video_id", videoID, "label", label)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing %s labels: %w", p.name, err)
	}

	result.Duration = p.now().Sub(started)
	log.Info("enrichment finished",
		"labelled", result.Labelled,
		"skipped", len(result.Skipped),
		"failed", len(result.Failures),
		"duration", result.Duration,
	)
	return result, nil
}

// Predict runs the model chain over one loaded record and returns the label.
func (p *Pipeline[R, F]) Predict(record R) (string, error) {
	input, err := p.features(record)
	if err != nil {
		return "", fmt.Errorf("extracting features: %w", err)
	}
	vec, err := p.transformer.Transform(input)
	if err != nil {
		return "", fmt.Errorf("transforming features: %w", err)
	}
	class, err := p.predictor.Predict(vec)
	if err != nil {
		return "", fmt.Errorf("predicting: %w", err)
	}
	return p.label(class), nil
}

func (p *Pipeline[R, F]) labelOne(ctx context.Context, tx *warehouse.Tx, videoID string) (string, error) {
	record, err := p.load(ctx, tx.Queries, videoID)
	if err != nil {
		return "", err
	}

	label, err := p.Predict(record)
	if err != nil {
		return "", err
	}

	if err := tx.SetVideoLabel(ctx, p.column, videoID, label); err != nil {
		return "", err
	}
	return label, nil
}
