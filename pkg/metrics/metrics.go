// Package metrics counts what a tubestar run did and writes the counters in
// the Prometheus text format for the node exporter textfile collector.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "tubestar"

// Outcome label values.
const (
	OutcomeOK      = "ok"
	OutcomeFailed  = "failed"
	OutcomeSkipped = "skipped"
)

// Transcript label values.
const (
	TranscriptStored    = "stored"
	TranscriptDuplicate = "duplicate"
	TranscriptMissing   = "missing"
)

// Recorder holds the run counters. A nil *Recorder discards everything.
type Recorder struct {
	registry *prometheus.Registry

	videos      *prometheus.CounterVec
	transcripts *prometheus.CounterVec
	labels      *prometheus.CounterVec
	duration    *prometheus.GaugeVec
	lastRun     *prometheus.GaugeVec
}

// New creates a Recorder with its own registry.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		videos: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "videos_processed_total",
			Help:      "Videos handled by ingestion, by outcome.",
		}, []string{"outcome"}),
		transcripts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transcripts_total",
			Help:      "Transcript lookups, by result.",
		}, []string{"result"}),
		labels: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "labels_total",
			Help:      "Enrichment labels written, by pipeline and outcome.",
		}, []string{"pipeline", "outcome"}),
		duration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of the last run, by command.",
		}, []string{"command"}),
		lastRun: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished, by command.",
		}, []string{"command"}),
	}

	r.registry.MustRegister(r.videos, r.transcripts, r.labels, r.duration, r.lastRun)
	return r
}

// VideoProcessed counts one ingested or failed video.
func (r *Recorder) VideoProcessed(outcome string) {
	if r == nil {
		return
	}
	r.videos.WithLabelValues(outcome).Inc()
}

// Transcript counts one transcript lookup result.
func (r *Recorder) Transcript(result string) {
	if r == nil {
		return
	}
	r.transcripts.WithLabelValues(result).Inc()
}

// Label counts one enrichment row.
func (r *Recorder) Label(pipeline, outcome string) {
	if r == nil {
		return
	}
	r.labels.WithLabelValues(pipeline, outcome).Inc()
}

// RunFinished records the duration and completion time of a command.
func (r *Recorder) RunFinished(command string, started, finished time.Time) {
	if r == nil {
		return
	}
	r.duration.WithLabelValues(command).Set(finished.Sub(started).Seconds())
	r.lastRun.WithLabelValues(command).Set(float64(finished.Unix()))
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// WriteTextfile atomically writes every metric to path. An empty path is a no-op.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, r.registry)
}
