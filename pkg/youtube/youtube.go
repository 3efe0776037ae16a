// Package youtube fetches channel metadata, video metadata with engagement
// statistics, and caption transcripts from the video platform.
package youtube

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// WatchURL is the public page of a video.
const WatchURL = "https://www.youtube.com/watch?v="

// ErrNotFound is returned when the platform has no channel or video with the
// requested id.
var ErrNotFound = errors.New("not found on platform")

// ErrInvalidRecord is returned when a platform response fails validation.
var ErrInvalidRecord = errors.New("invalid platform record")

// Source is everything ingestion needs from the platform.
type Source interface {
	// Channel returns channel metadata.
	Channel(ctx context.Context, channelID string) (*ChannelMetadata, error)

	// Video returns video metadata and current engagement statistics.
	Video(ctx context.Context, videoID string) (*VideoMetadata, error)

	// Transcript returns the caption fragments of a video. A video without
	// captions yields a Transcript that is not Available and a nil error.
	Transcript(ctx context.Context, videoID string) (Transcript, error)
}

// ChannelMetadata describes a channel.
type ChannelMetadata struct {
	ID          string
	Title       string
	Subscribers int64
}

// VideoMetadata describes a video and its engagement at retrieval time.
// Statistics the platform hides (e.g. disabled likes) are zero.
type VideoMetadata struct {
	ID          string
	ChannelID   string
	Title       string
	Description string
	PublishedAt time.Time

	// Duration is the ISO-8601 content length, e.g. "PT1H2M3S".
	Duration string

	Views    int64
	Likes    int64
	Comments int64
}

// URL returns the watch page of the video.
func (v *VideoMetadata) URL() string {
	return WatchURL + v.ID
}

// Validate checks the fields ingestion relies on.
func (v *VideoMetadata) Validate() error {
	switch {
	case v.ID == "":
		return fmt.Errorf("%w: video without id", ErrInvalidRecord)
	case v.ChannelID == "":
		return fmt.Errorf("%w: video %s without channel", ErrInvalidRecord, v.ID)
	case v.PublishedAt.IsZero():
		return fmt.Errorf("%w: video %s without publish time", ErrInvalidRecord, v.ID)
	case v.Duration == "":
		return fmt.Errorf("%w: video %s without duration", ErrInvalidRecord, v.ID)
	case v.Views < 0 || v.Likes < 0 || v.Comments < 0:
		return fmt.Errorf("%w: video %s with negative statistics", ErrInvalidRecord, v.ID)
	}
	return nil
}

// Fragment is one timed caption line. Start and Duration are seconds.
type Fragment struct {
	Text     string
	Start    float64
	Duration float64
}

// Transcript is the outcome of a caption lookup.
type Transcript struct {
	// Available is false when the video has no captions in any requested
	// language.
	Available bool

	// Language is the language code of the fetched track.
	Language string

	Fragments []Fragment
}

// NoTranscript is the result for a video without captions.
func NoTranscript() Transcript {
	return Transcript{}
}
