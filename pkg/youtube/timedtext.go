package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/papercomputeco/tubestar/pkg/logger"
)

// DefaultTimedTextURL is the caption track endpoint.
const DefaultTimedTextURL = "https://www.youtube.com/api/timedtext"

// TimedText fetches caption tracks in the json3 format.
type TimedText struct {
	endpoint   string
	languages  []string
	httpClient *http.Client
	maxRetries uint64
	logger     *slog.Logger
}

// TimedTextOption configures a TimedText fetcher.
type TimedTextOption func(*TimedText)

// WithTimedTextEndpoint overrides the caption endpoint.
func WithTimedTextEndpoint(endpoint string) TimedTextOption {
	return func(t *TimedText) {
		t.endpoint = endpoint
	}
}

// WithLanguages sets the caption languages to try, in order.
func WithLanguages(langs ...string) TimedTextOption {
	return func(t *TimedText) {
		if len(langs) > 0 {
			t.languages = langs
		}
	}
}

// WithHTTPClient sets the HTTP client used for caption requests.
func WithHTTPClient(c *http.Client) TimedTextOption {
	return func(t *TimedText) {
		t.httpClient = c
	}
}

// WithMaxRetries bounds retries of transient failures per request.
func WithMaxRetries(n uint64) TimedTextOption {
	return func(t *TimedText) {
		t.maxRetries = n
	}
}

// WithTimedTextLogger sets the logger.
func WithTimedTextLogger(l *slog.Logger) TimedTextOption {
	return func(t *TimedText) {
		t.logger = l
	}
}

// NewTimedText creates a caption fetcher trying English by default.
func NewTimedText(opts ...TimedTextOption) *TimedText {
	t := &TimedText{
		endpoint:   DefaultTimedTextURL,
		languages:  []string{"en"},
		httpClient: &http.Client{Timeout: 30 * time.Second},
		maxRetries: 3,
		logger:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

type json3Track struct {
	Events []struct {
		StartMs    float64 `json:"tStartMs"`
		DurationMs float64 `json:"dDurationMs"`
		Segs       []struct {
			UTF8 string `json:"utf8"`
		} `json:"segs"`
	} `json:"events"`
}

// errNoTrack marks a language without a caption track.
var errNoTrack = errors.New("no caption track")

// Transcript returns the first available caption track among the configured
// languages. Missing tracks are reported through the result, not an error.
func (t *TimedText) Transcript(ctx context.Context, videoID string) (Transcript, error) {
	for _, lang := range t.languages {
		frags, err := t.fetch(ctx, videoID, lang)
		if errors.Is(err, errNoTrack) {
			t.logger.Debug("no caption track", "video_id", videoID, "language", lang)
			continue
		}
		if err != nil {
			return Transcript{}, err
		}
		return Transcript{Available: true, Language: lang, Fragments: frags}, nil
	}
	return NoTranscript(), nil
}

func (t *TimedText) fetch(ctx context.Context, videoID, lang string) ([]Fragment, error) {
	q := url.Values{}
	q.Set("v", videoID)
	q.Set("lang", lang)
	q.Set("fmt", "json3")
	target := t.endpoint + "?" + q.Encode()

	var body []byte
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return backoff.Permanent(err)
		}

		resp, err := t.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return backoff.Permanent(errNoTrack)
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			return fmt.Errorf("caption request for %s: %s", videoID, resp.Status)
		case resp.StatusCode != http.StatusOK:
			return backoff.Permanent(fmt.Errorf("caption request for %s: %s", videoID, resp.Status))
		}

		body, err = io.ReadAll(resp.Body)
		return err
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), t.maxRetries),
		ctx,
	)
	notify := func(err error, wait time.Duration) {
		t.logger.Warn("caption request failed, retrying", "video_id", videoID, "error", err, "wait", wait)
	}
	if err := backoff.RetryNotify(op, policy, notify); err != nil {
		return nil, err
	}

	if len(strings.TrimSpace(string(body))) == 0 {
		return nil, errNoTrack
	}

	var track json3Track
	if err := json.Unmarshal(body, &track); err != nil {
		return nil, fmt.Errorf("decoding captions for %s: %w", videoID, err)
	}

	var frags []Fragment
	for _, ev := range track.Events {
		var b strings.Builder
		for _, s := range ev.Segs {
			b.WriteString(s.UTF8)
		}
		text := strings.Join(strings.Fields(b.String()), " ")
		if text == "" {
			continue
		}
		frags = append(frags, Fragment{
			Text:     text,
			Start:    ev.StartMs / 1000,
			Duration: ev.DurationMs / 1000,
		})
	}
	if len(frags) == 0 {
		return nil, errNoTrack
	}
	return frags, nil
}
