package enrich

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/papercomputeco/tubestar/pkg/warehouse"
)

// Failure is a candidate that could not be labelled.
type Failure struct {
	VideoID string
	Err     error
}

// Result contains statistics from an enrichment run.
type Result struct {
	Pipeline string
	Column   warehouse.LabelColumn
	Duration time.Duration

	Candidates int
	Labelled   int
	Labels     map[string]int

	// Skipped holds candidates with nothing to label from, such as a video
	// without statistics.
	Skipped  []string
	Failures []Failure
}

// Summary returns a human-readable summary of the enrichment result.
func (r *Result) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s enrichment complete: %d of %d videos labelled, %d skipped, %d failed",
		r.Pipeline, r.Labelled, r.Candidates, len(r.Skipped), len(r.Failures))
	for _, label := range slices.Sorted(maps.Keys(r.Labels)) {
		fmt.Fprintf(&b, "\n  %s: %d", label, r.Labels[label])
	}
	for _, f := range r.Failures {
		fmt.Fprintf(&b, "\n  %s: %v", f.VideoID, f.Err)
	}
	return b.String()
}
