// Package ingest pulls video metadata, engagement statistics and transcripts
// from the platform and writes them into the warehouse, one video at a time.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/papercomputeco/tubestar/pkg/isoduration"
	"github.com/papercomputeco/tubestar/pkg/logger"
	"github.com/papercomputeco/tubestar/pkg/metrics"
	"github.com/papercomputeco/tubestar/pkg/warehouse"
	"github.com/papercomputeco/tubestar/pkg/youtube"
)

// Orchestrator runs ingestion over a list of video ids.
type Orchestrator struct {
	source  youtube.Source
	store   *warehouse.Store
	logger  *slog.Logger
	metrics *metrics.Recorder
	now     func() time.Time

	channelOverride string
	dryRun          bool
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = l
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m *metrics.Recorder) Option {
	return func(o *Orchestrator) {
		o.metrics = m
	}
}

// WithClock replaces time.Now for batch ids and retrieval times.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		o.now = now
	}
}

// WithChannelOverride files every video under channelID instead of the
// channel reported by the platform.
func WithChannelOverride(channelID string) Option {
	return func(o *Orchestrator) {
		o.channelOverride = channelID
	}
}

// WithDryRun fetches and validates every video without writing anything.
func WithDryRun(dryRun bool) Option {
	return func(o *Orchestrator) {
		o.dryRun = dryRun
	}
}

// New creates an Orchestrator reading from source and writing to store.
func New(source youtube.Source, store *warehouse.Store, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		source: source,
		store:  store,
		logger: logger.Nop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Batch identifies one ingestion run. Every fact appended during the run
// carries the same batch id.
type Batch struct {
	ID        int64
	RunID     string
	StartedAt time.Time

	// channels holds the channels already written during this run.
	channels map[string]bool
}

// NewBatch derives the batch id for a run starting now.
func (o *Orchestrator) NewBatch(ctx context.Context) (*Batch, error) {
	started := o.now()
	id, err := o.store.NextBatchID(ctx, started)
	if err != nil {
		return nil, err
	}
	return &Batch{
		ID:        id,
		RunID:     uuid.NewString(),
		StartedAt: started,
		channels:  make(map[string]bool),
	}, nil
}

// Run ingests every video in videoIDs in order. A video that fails at any
// step is logged, recorded in the result and skipped; the run carries on
// with the next one. Run stops early only when ctx is cancelled.
func (o *Orchestrator) Run(ctx context.Context, videoIDs []string) (*Result, error) {
	batch, err := o.NewBatch(ctx)
	if err != nil {
		return nil, fmt.Errorf("starting ingestion: %w", err)
	}

	log := o.logger.With("run_id", batch.RunID, "batch_id", batch.ID)
	log.Info("ingestion started", "videos", len(videoIDs), "dry_run", o.dryRun)

	result := &Result{BatchID: batch.ID, RunID: batch.RunID}
	for _, raw := range videoIDs {
		videoID := strings.TrimSpace(raw)
		if videoID == "" {
			continue
		}

		if err := ctx.Err(); err != nil {
			result.Duration = o.now().Sub(batch.StartedAt)
			log.Warn("ingestion interrupted", "processed", result.Requested, "error", err)
			return result, err
		}

		result.Requested++
		out, err := o.ProcessVideo(ctx, batch, videoID)
		if err != nil {
			log.Error("video ingestion failed", "video_id", videoID, "error", err)
			result.Failures = append(result.Failures, Failure{VideoID: videoID, Err: err})
			o.metrics.VideoProcessed(metrics.OutcomeFailed)
			continue
		}

		result.record(out)
		o.metrics.VideoProcessed(metrics.OutcomeOK)
		o.metrics.Transcript(string(out.Transcript))
		log.Debug("video ingested",
			"video_id", videoID,
			"channel_id", out.ChannelID,
			"transcript", out.Transcript,
			"stats_id", out.StatsID,
		)
	}

	result.Duration = o.now().Sub(batch.StartedAt)
	log.Info("ingestion finished",
		"ingested", result.Ingested,
		"failed", len(result.Failures),
		"duration", result.Duration,
	)
	return result, nil
}

// ProcessVideo fetches one video and writes its channel, video, calendar
// date, transcript segment and statistics snapshot in one transaction.
func (o *Orchestrator) ProcessVideo(ctx context.Context, batch *Batch, videoID string) (*Outcome, error) {
	meta, err := o.source.Video(ctx, videoID)
	if err != nil {
		return nil, fmt.Errorf("fetching metadata: %w", err)
	}
	if err := meta.Validate(); err != nil {
		return nil, err
	}

	durationSeconds, err := isoduration.WholeSeconds(meta.Duration)
	if err != nil {
		return nil, fmt.Errorf("parsing duration: %w", err)
	}

	transcript, err := o.source.Transcript(ctx, videoID)
	if err != nil {
		return nil, fmt.Errorf("fetching transcript: %w", err)
	}
	if !transcript.Available {
		o.logger.Info("no transcript available", "video_id", videoID)
	}

	channelID := meta.ChannelID
	if o.channelOverride != "" {
		channelID = o.channelOverride
	}

	var channel *youtube.ChannelMetadata
	if !batch.channels[channelID] {
		channel, err = o.source.Channel(ctx, channelID)
		if err != nil {
			return nil, fmt.Errorf("fetching channel %s: %w", channelID, err)
		}
	}

	out := &Outcome{
		VideoID:    videoID,
		ChannelID:  channelID,
		Transcript: TranscriptMissing,
	}

	segment, hasSegment := warehouse.AssembleSegment(videoID, fragments(transcript))

	if o.dryRun {
		if hasSegment {
			out.Transcript = TranscriptStored
		}
		return out, nil
	}

	retrievedAt := o.now().UTC()
	err = o.store.WithTx(ctx, func(tx *warehouse.Tx) error {
		if channel != nil {
			err := tx.UpsertChannel(ctx, warehouse.Channel{
				ID:          channelID,
				Name:        channel.Title,
				Subscribers: channel.Subscribers,
			})
			if err != nil {
				return err
			}
			out.ChannelUpserted = true
		}

		err := tx.UpsertVideo(ctx, warehouse.Video{
			ID:              videoID,
			Title:           meta.Title,
			Description:     meta.Description,
			URL:             meta.URL(),
			PublishedAt:     meta.PublishedAt,
			DurationSeconds: durationSeconds,
			ChannelID:       channelID,
		})
		if err != nil {
			return err
		}

		if _, err := tx.InsertDate(ctx, meta.PublishedAt); err != nil {
			return err
		}

		if hasSegment {
			id, created, err := tx.InsertTranscriptSegment(ctx, segment)
			if err != nil {
				return err
			}
			out.SegmentID = id
			out.Transcript = TranscriptDuplicate
			if created {
				out.Transcript = TranscriptStored
			}
		}

		out.StatsID, err = tx.AppendStatistics(ctx, warehouse.StatisticsSnapshot{
			ChannelID:     channelID,
			BatchID:       batch.ID,
			VideoID:       videoID,
			PublishedDate: meta.PublishedAt,
			Views:         meta.Views,
			Likes:         meta.Likes,
			Comments:      meta.Comments,
			RetrievedAt:   retrievedAt,
		})
		return err
	})
	if err != nil {
		if errors.Is(err, warehouse.ErrForeignKey) {
			return nil, fmt.Errorf("writing video: %w (channel %s missing?)", err, channelID)
		}
		return nil, fmt.Errorf("writing video: %w", err)
	}

	if out.ChannelUpserted {
		batch.channels[channelID] = true
	}
	return out, nil
}

func fragments(t youtube.Transcript) []warehouse.Fragment {
	if !t.Available {
		return nil
	}
	out := make([]warehouse.Fragment, len(t.Fragments))
	for i, f := range t.Fragments {
		out[i] = warehouse.Fragment{Text: f.Text, Start: f.Start, Duration: f.Duration}
	}
	return out
}
