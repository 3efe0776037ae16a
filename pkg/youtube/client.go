package youtube

import "context"

// MetadataSource is the part of Source served by the Data API.
type MetadataSource interface {
	Channel(ctx context.Context, channelID string) (*ChannelMetadata, error)
	Video(ctx context.Context, videoID string) (*VideoMetadata, error)
}

// TranscriptSource is the part of Source served by the caption endpoint.
type TranscriptSource interface {
	Transcript(ctx context.Context, videoID string) (Transcript, error)
}

// Client combines a metadata source and a caption source into a Source.
type Client struct {
	MetadataSource
	TranscriptSource
}

var _ Source = (*Client)(nil)

// NewClient returns a Source reading metadata from meta and captions from captions.
func NewClient(meta MetadataSource, captions TranscriptSource) *Client {
	return &Client{MetadataSource: meta, TranscriptSource: captions}
}
