package warehouse

import "time"

// Table names.
const (
	TableTime       = "time_dimension"
	TableChannel    = "channel_dimension"
	TableVideo      = "video_dimension"
	TableTranscript = "video_transcript_dimension"
	TableStatistics = "statistics_fact"
)

// LabelColumn names a derived label column on the Video dimension.
type LabelColumn string

const (
	SentimentColumn  LabelColumn = "sentiment"
	PopularityColumn LabelColumn = "popularity_rating"
)

// labelColumnType is the SQL type of every derived label column.
const labelColumnType = "VARCHAR(50)"

// Channel is a row of the Channel dimension.
type Channel struct {
	ID          string
	Name        string
	Subscribers int64
}

// Video is a row of the Video dimension. Derived labels are written
// separately through SetVideoLabel.
type Video struct {
	ID              string
	Title           string
	Description     string
	URL             string
	PublishedAt     time.Time
	DurationSeconds int64
	ChannelID       string
}

// TranscriptSegment is a contiguous span of caption text. Its natural key is
// (VideoID, Start, Duration).
type TranscriptSegment struct {
	ID       int64
	VideoID  string
	Text     string
	Start    float64
	Duration float64
}

// StatisticsSnapshot is one append-only engagement fact.
type StatisticsSnapshot struct {
	ID            int64
	ChannelID     string
	BatchID       int64
	VideoID       string
	PublishedDate time.Time
	Views         int64
	Likes         int64
	Comments      int64
	RetrievedAt   time.Time
}

// VideoStatistics is the most recent snapshot of a video joined with its
// duration, the feature row for popularity classification.
type VideoStatistics struct {
	VideoID         string
	Views           int64
	Likes           int64
	Comments        int64
	DurationSeconds int64
	RetrievedAt     time.Time
}

// VideoReport is a Video with its channel name, labels and latest statistics.
type VideoReport struct {
	Video

	ChannelName      string
	Sentiment        string
	PopularityRating string
	Views            int64
	Likes            int64
	Comments         int64
	RetrievedAt      time.Time
}

// TableCounts holds the row count of every warehouse table.
type TableCounts struct {
	Dates       int64
	Channels    int64
	Videos      int64
	Transcripts int64
	Snapshots   int64
}
