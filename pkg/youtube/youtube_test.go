package youtube_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"google.golang.org/api/option"

	"github.com/papercomputeco/tubestar/pkg/youtube"
)

var _ = Describe("VideoMetadata", func() {
	valid := func() *youtube.VideoMetadata {
		return &youtube.VideoMetadata{
			ID:          "abc123",
			ChannelID:   "UC1",
			PublishedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			Duration:    "PT1M",
		}
	}

	It("accepts a complete record", func() {
		Expect(valid().Validate()).To(Succeed())
	})

	It("builds the watch URL", func() {
		Expect(valid().URL()).To(Equal("https://www.youtube.com/watch?v=abc123"))
	})

	DescribeTable("rejects incomplete records",
		func(mutate func(v *youtube.VideoMetadata)) {
			v := valid()
			mutate(v)
			Expect(v.Validate()).To(MatchError(youtube.ErrInvalidRecord))
		},
		Entry("no id", func(v *youtube.VideoMetadata) { v.ID = "" }),
		Entry("no channel", func(v *youtube.VideoMetadata) { v.ChannelID = "" }),
		Entry("no publish time", func(v *youtube.VideoMetadata) { v.PublishedAt = time.Time{} }),
		Entry("no duration", func(v *youtube.VideoMetadata) { v.Duration = "" }),
		Entry("negative views", func(v *youtube.VideoMetadata) { v.Views = -1 }),
	)
})

var _ = Describe("TimedText", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	It("parses json3 events into fragments", func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer GinkgoRecover()
			Expect(r.URL.Query().Get("v")).To(Equal("abc123"))
			Expect(r.URL.Query().Get("fmt")).To(Equal("json3"))
			w.Write([]byte(`{"events":[
				{"tStartMs":0,"dDurationMs":1500,"segs":[{"utf8":"hello "},{"utf8":"world"}]},
				{"tStartMs":1500,"dDurationMs":0,"segs":[{"utf8":"\n"}]},
				{"tStartMs":2000,"dDurationMs":2500,"segs":[{"utf8":"again"}]},
				{"tStartMs":4500}
			]}`))
		}))
		DeferCleanup(srv.Close)

		tt := youtube.NewTimedText(youtube.WithTimedTextEndpoint(srv.URL))
		tr, err := tt.Transcript(ctx, "abc123")
		Expect(err).NotTo(HaveOccurred())
		Expect(tr.Available).To(BeTrue())
		Expect(tr.Language).To(Equal("en"))
		Expect(tr.Fragments).To(Equal([]youtube.Fragment{
			{Text: "hello world", Start: 0, Duration: 1.5},
			{Text: "again", Start: 2, Duration: 2.5},
		}))
	})

	It("reports no transcript for a missing track", func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		DeferCleanup(srv.Close)

		tt := youtube.NewTimedText(youtube.WithTimedTextEndpoint(srv.URL))
		tr, err := tt.Transcript(ctx, "abc123")
		Expect(err).NotTo(HaveOccurred())
		Expect(tr.Available).To(BeFalse())
	})

	It("falls back to the next language on an empty body", func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("lang") == "nl" {
				return
			}
			w.Write([]byte(`{"events":[{"tStartMs":1000,"dDurationMs":1000,"segs":[{"utf8":"hi"}]}]}`))
		}))
		DeferCleanup(srv.Close)

		tt := youtube.NewTimedText(youtube.WithTimedTextEndpoint(srv.URL), youtube.WithLanguages("nl", "en"))
		tr, err := tt.Transcript(ctx, "abc123")
		Expect(err).NotTo(HaveOccurred())
		Expect(tr.Available).To(BeTrue())
		Expect(tr.Language).To(Equal("en"))
	})

	It("retries transient server errors", func() {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) == 1 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			w.Write([]byte(`{"events":[{"tStartMs":0,"dDurationMs":1000,"segs":[{"utf8":"ok"}]}]}`))
		}))
		DeferCleanup(srv.Close)

		tt := youtube.NewTimedText(youtube.WithTimedTextEndpoint(srv.URL), youtube.WithMaxRetries(2))
		tr, err := tt.Transcript(ctx, "abc123")
		Expect(err).NotTo(HaveOccurred())
		Expect(tr.Available).To(BeTrue())
		Expect(calls.Load()).To(Equal(int32(2)))
	})

	It("fails without retrying on a client error", func() {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusForbidden)
		}))
		DeferCleanup(srv.Close)

		tt := youtube.NewTimedText(youtube.WithTimedTextEndpoint(srv.URL))
		_, err := tt.Transcript(ctx, "abc123")
		Expect(err).To(HaveOccurred())
		Expect(calls.Load()).To(Equal(int32(1)))
	})
})

var _ = Describe("DataAPI", func() {
	var (
		ctx context.Context
		api *youtube.DataAPI
	)

	BeforeEach(func() {
		ctx = context.Background()
		mux := http.NewServeMux()
		mux.HandleFunc("/youtube/v3/videos", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			if r.URL.Query().Get("id") != "abc123" {
				w.Write([]byte(`{"items":[]}`))
				return
			}
			w.Write([]byte(`{"items":[{
				"id":"abc123",
				"snippet":{"channelId":"UC1","title":"A title","description":"desc","publishedAt":"2024-02-29T12:00:00Z"},
				"contentDetails":{"duration":"PT1H2M3S"},
				"statistics":{"viewCount":"1000","likeCount":"50","commentCount":"7"}
			}]}`))
		})
		mux.HandleFunc("/youtube/v3/channels", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"items":[{"id":"UC1","snippet":{"title":"Chan"},"statistics":{"subscriberCount":"1234"}}]}`))
		})
		srv := httptest.NewServer(mux)
		DeferCleanup(srv.Close)

		var err error
		api, err = youtube.NewDataAPI(ctx,
			option.WithAPIKey("test-key"),
			option.WithEndpoint(srv.URL+"/"),
		)
		Expect(err).NotTo(HaveOccurred())
	})

	It("maps a video resource", func() {
		v, err := api.Video(ctx, "abc123")
		Expect(err).NotTo(HaveOccurred())
		Expect(v.ChannelID).To(Equal("UC1"))
		Expect(v.Title).To(Equal("A title"))
		Expect(v.Duration).To(Equal("PT1H2M3S"))
		Expect(v.Views).To(Equal(int64(1000)))
		Expect(v.Likes).To(Equal(int64(50)))
		Expect(v.Comments).To(Equal(int64(7)))
		Expect(v.PublishedAt).To(Equal(time.Date(2024, 2, 29, 12, 0, 0, 0, time.UTC)))
	})

	It("returns ErrNotFound for an unknown video", func() {
		_, err := api.Video(ctx, "missing")
		Expect(err).To(MatchError(youtube.ErrNotFound))
	})

	It("maps a channel resource", func() {
		ch, err := api.Channel(ctx, "UC1")
		Expect(err).NotTo(HaveOccurred())
		Expect(ch.Title).To(Equal("Chan"))
		Expect(ch.Subscribers).To(Equal(int64(1234)))
	})
})

type countingSource struct {
	youtube.Source
	channels int
}

func (c *countingSource) Channel(_ context.Context, id string) (*youtube.ChannelMetadata, error) {
	c.channels++
	return &youtube.ChannelMetadata{ID: id, Title: "Chan"}, nil
}

var _ = Describe("CachedSource", func() {
	It("passes through when no redis client is configured", func() {
		inner := &countingSource{}
		src := youtube.NewCachedSource(inner, nil, 0, nil)

		for range 2 {
			ch, err := src.Channel(context.Background(), "UC1")
			Expect(err).NotTo(HaveOccurred())
			Expect(ch.Title).To(Equal("Chan"))
		}
		Expect(inner.channels).To(Equal(2))
	})
})

var _ = Describe("Client", func() {
	It("routes metadata and captions to their sources", func() {
		meta := &countingSource{}
		captions := youtube.NewTimedText(youtube.WithTimedTextEndpoint("http://127.0.0.1:0"), youtube.WithMaxRetries(0))
		c := youtube.NewClient(meta, captions)

		_, err := c.Channel(context.Background(), "UC1")
		Expect(err).NotTo(HaveOccurred())
		Expect(meta.channels).To(Equal(1))
	})
})
