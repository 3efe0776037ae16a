package youtube

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/api/option"
	yt "google.golang.org/api/youtube/v3"
)

// maxInt64 caps unsigned platform counters when converting to int64.
const maxInt64 = 1<<63 - 1

// DataAPI reads channel and video resources from the YouTube Data API v3.
type DataAPI struct {
	svc *yt.Service
}

// NewDataAPI creates a Data API client. Callers normally pass
// option.WithAPIKey; tests can point it at a fake with option.WithEndpoint.
func NewDataAPI(ctx context.Context, opts ...option.ClientOption) (*DataAPI, error) {
	svc, err := yt.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating youtube client: %w", err)
	}
	return &DataAPI{svc: svc}, nil
}

// Channel returns the snippet title and subscriber count of a channel.
func (d *DataAPI) Channel(ctx context.Context, channelID string) (*ChannelMetadata, error) {
	resp, err := d.svc.Channels.List([]string{"snippet", "statistics"}).
		Id(channelID).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("listing channel %s: %w", channelID, err)
	}
	if len(resp.Items) == 0 {
		return nil, fmt.Errorf("channel %s: %w", channelID, ErrNotFound)
	}

	item := resp.Items[0]
	ch := &ChannelMetadata{ID: item.Id}
	if item.Snippet != nil {
		ch.Title = item.Snippet.Title
	}
	if item.Statistics != nil {
		ch.Subscribers = clampCount(item.Statistics.SubscriberCount)
	}
	return ch, nil
}

// Video returns the snippet, content details and statistics of a video.
func (d *DataAPI) Video(ctx context.Context, videoID string) (*VideoMetadata, error) {
	resp, err := d.svc.Videos.List([]string{"snippet", "contentDetails", "statistics"}).
		Id(videoID).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("listing video %s: %w", videoID, err)
	}
	if len(resp.Items) == 0 {
		return nil, fmt.Errorf("video %s: %w", videoID, ErrNotFound)
	}

	item := resp.Items[0]
	v := &VideoMetadata{ID: item.Id}

	if s := item.Snippet; s != nil {
		v.ChannelID = s.ChannelId
		v.Title = s.Title
		v.Description = s.Description
		if s.PublishedAt != "" {
			published, err := time.Parse(time.RFC3339, s.PublishedAt)
			if err != nil {
				return nil, fmt.Errorf("%w: video %s publish time %q: %w", ErrInvalidRecord, videoID, s.PublishedAt, err)
			}
			v.PublishedAt = published.UTC()
		}
	}
	if cd := item.ContentDetails; cd != nil {
		v.Duration = cd.Duration
	}
	if st := item.Statistics; st != nil {
		v.Views = clampCount(st.ViewCount)
		v.Likes = clampCount(st.LikeCount)
		v.Comments = clampCount(st.CommentCount)
	}

	if err := v.Validate(); err != nil {
		return nil, err
	}
	return v, nil
}

// Transcript is not offered by the Data API for third-party videos.
func (d *DataAPI) Transcript(context.Context, string) (Transcript, error) {
	return NoTranscript(), nil
}

func clampCount(n uint64) int64 {
	if n > maxInt64 {
		return maxInt64
	}
	return int64(n)
}
