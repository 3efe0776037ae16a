package ingest

import (
	"fmt"
	"strings"
	"time"

	"github.com/papercomputeco/tubestar/pkg/metrics"
)

// TranscriptOutcome is what happened to a video's transcript.
type TranscriptOutcome string

const (
	TranscriptStored    TranscriptOutcome = metrics.TranscriptStored
	TranscriptDuplicate TranscriptOutcome = metrics.TranscriptDuplicate
	TranscriptMissing   TranscriptOutcome = metrics.TranscriptMissing
)

// Outcome describes one successfully ingested video.
type Outcome struct {
	VideoID         string
	ChannelID       string
	ChannelUpserted bool
	Transcript      TranscriptOutcome
	SegmentID       int64
	StatsID         int64
}

// Failure is a video that was skipped.
type Failure struct {
	VideoID string
	Err     error
}

// Result contains statistics from an ingestion run.
type Result struct {
	BatchID  int64
	RunID    string
	Duration time.Duration

	Requested            int
	Ingested             int
	ChannelsUpserted     int
	TranscriptsStored    int
	TranscriptsDuplicate int
	TranscriptsMissing   int

	Failures []Failure
}

func (r *Result) record(out *Outcome) {
	r.Ingested++
	if out.ChannelUpserted {
		r.ChannelsUpserted++
	}
	switch out.Transcript {
	case TranscriptStored:
		r.TranscriptsStored++
	case TranscriptDuplicate:
		r.TranscriptsDuplicate++
	default:
		r.TranscriptsMissing++
	}
}

// Summary returns a human-readable summary of the ingestion result.
func (r *Result) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Ingestion complete (batch %d): %d of %d videos ingested, %d failed\n",
		r.BatchID, r.Ingested, r.Requested, len(r.Failures))
	fmt.Fprintf(&b, "Channels upserted: %d\n", r.ChannelsUpserted)
	fmt.Fprintf(&b, "Transcripts: %d stored, %d already present, %d unavailable",
		r.TranscriptsStored, r.TranscriptsDuplicate, r.TranscriptsMissing)
	for _, f := range r.Failures {
		fmt.Fprintf(&b, "\n  %s: %v", f.VideoID, f.Err)
	}
	return b.String()
}
