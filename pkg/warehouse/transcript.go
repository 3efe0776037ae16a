package warehouse

import "strings"

// Fragment is one timed caption line as delivered by the platform.
type Fragment struct {
	Text     string
	Start    float64
	Duration float64
}

// AssembleSegment merges caption fragments into a single segment. The text
// is the fragments joined with single spaces, the start is the first
// fragment's start and the duration runs to the end of the last fragment.
// Fragments are taken in the order given. It returns false when there is
// nothing to assemble.
func AssembleSegment(videoID string, fragments []Fragment) (TranscriptSegment, bool) {
	if len(fragments) == 0 {
		return TranscriptSegment{}, false
	}

	texts := make([]string, len(fragments))
	for i, f := range fragments {
		texts[i] = f.Text
	}

	first := fragments[0]
	last := fragments[len(fragments)-1]

	return TranscriptSegment{
		VideoID:  videoID,
		Text:     strings.Join(texts, " "),
		Start:    first.Start,
		Duration: last.Start + last.Duration - first.Start,
	}, true
}
